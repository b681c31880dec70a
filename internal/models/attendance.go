package models

// DateLayout is the calendar-day format used for attendance dates,
// permission dates and calendar events.
const DateLayout = "2006-01-02"

// TimeUnspecified is the sentinel time-of-day recorded when attendance
// is materialized from an approved permission rather than a scan.
const TimeUnspecified = "--:--"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusHadir AttendanceStatus = "Hadir"
	AttendanceStatusSakit AttendanceStatus = "Sakit"
	AttendanceStatusIzin  AttendanceStatus = "Izin"
	AttendanceStatusAlpha AttendanceStatus = "Alpha"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusHadir, AttendanceStatusSakit, AttendanceStatusIzin, AttendanceStatusAlpha:
		return true
	default:
		return false
	}
}

// Attendance is one ledger row. The intended invariant is at most one
// row per (StudentID, Date); it is guarded at the check-in gate, not by
// the storage layer. Alpha is never stored, only derived by reports.
type Attendance struct {
	ID        string           `json:"id"`
	StudentID string           `json:"studentId"`
	Date      string           `json:"date"`
	Time      string           `json:"time"`
	Status    AttendanceStatus `json:"status"`
}
