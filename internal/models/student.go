package models

// Gender enumerates the student/teacher gender values used across the
// roster. The short codes mirror the national administration forms.
type Gender string

const (
	GenderMale   Gender = "L"
	GenderFemale Gender = "P"
)

// Valid returns true when the gender is a supported value.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Student is a roster entry. NISN doubles as the QR scan key: QRCode is
// always kept equal to NISN.
type Student struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Gender    Gender `json:"gender"`
	NISN      string `json:"nisn"`
	ClassName string `json:"className"`
	Photo     string `json:"photo"`
	QRCode    string `json:"qrCode"`
}
