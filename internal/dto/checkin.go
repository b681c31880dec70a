package dto

import "github.com/noah-isme/presensi-qr-api/internal/models"

// ScanRequest carries a decoded QR payload into the check-in gate.
type ScanRequest struct {
	Code string `json:"code" binding:"required"`
}

// CheckinStatus is the gate decision for one scan.
type CheckinStatus string

const (
	CheckinSuccess   CheckinStatus = "success"
	CheckinDuplicate CheckinStatus = "duplicate"
	CheckinInvalid   CheckinStatus = "invalid"
)

// CheckinResult reports the outcome of a scan. Attendance is set only
// on success; CheckedInAt carries the existing record's time-of-day on
// a duplicate.
type CheckinResult struct {
	Status      CheckinStatus      `json:"status"`
	Message     string             `json:"message"`
	Student     *models.Student    `json:"student,omitempty"`
	Attendance  *models.Attendance `json:"attendance,omitempty"`
	CheckedInAt string             `json:"checked_in_at,omitempty"`
}
