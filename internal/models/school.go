package models

// School is the singleton profile. It is replaced wholesale on update,
// never patched field by field.
type School struct {
	ID        string `json:"id"`
	Year      string `json:"year"`
	Semester  string `json:"semester"`
	Name      string `json:"name"`
	NPSN      string `json:"npsn"`
	Address   string `json:"address"`
	Principal string `json:"principal"`
	Logo      string `json:"logo"`
}

// DefaultSchool returns the built-in profile used when the school slot
// is missing or unreadable at startup.
func DefaultSchool() School {
	return School{
		ID:        "1",
		Year:      "2023/2024",
		Semester:  "Ganjil",
		Name:      "SMA Negeri Percontohan",
		NPSN:      "12345678",
		Address:   "Jl. Pendidikan No. 123, Kota Cerdas",
		Principal: "Dr. Ahmad Sukamto, M.Pd.",
		Logo:      "",
	}
}
