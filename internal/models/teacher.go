package models

// Teacher is a staff roster entry. NIP is the administrative identifier
// and is treated as an opaque string.
type Teacher struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Gender Gender `json:"gender"`
	NIP    string `json:"nip"`
	Photo  string `json:"photo"`
}
