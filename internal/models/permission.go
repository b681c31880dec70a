package models

// PermissionStatus tracks the verification lifecycle of a request.
type PermissionStatus string

const (
	PermissionStatusPending  PermissionStatus = "Menunggu"
	PermissionStatusApproved PermissionStatus = "Disetujui"
	PermissionStatusRejected PermissionStatus = "Ditolak"
)

// Valid returns true when the status is a supported value.
func (s PermissionStatus) Valid() bool {
	switch s {
	case PermissionStatusPending, PermissionStatusApproved, PermissionStatusRejected:
		return true
	default:
		return false
	}
}

// PermissionType is the excused-absence category a request carries.
type PermissionType string

const (
	PermissionTypeSakit PermissionType = "Sakit"
	PermissionTypeIzin  PermissionType = "Izin"
)

// Valid returns true when the type is a supported value.
func (t PermissionType) Valid() bool {
	return t == PermissionTypeSakit || t == PermissionTypeIzin
}

// AttendanceStatus maps the permission type onto the attendance status
// materialized on approval.
func (t PermissionType) AttendanceStatus() AttendanceStatus {
	if t == PermissionTypeSakit {
		return AttendanceStatusSakit
	}
	return AttendanceStatusIzin
}

// PermissionRequest is an excused-absence submission awaiting admin
// verification. Created Pending; transitions once to Approved or
// Rejected.
type PermissionRequest struct {
	ID          string           `json:"id"`
	StudentID   string           `json:"studentId"`
	Date        string           `json:"date"`
	Type        PermissionType   `json:"type"`
	Description string           `json:"description"`
	Evidence    string           `json:"evidence,omitempty"`
	Status      PermissionStatus `json:"status"`
}
