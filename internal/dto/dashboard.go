package dto

import "github.com/noah-isme/presensi-qr-api/internal/models"

// TodayStats counts today's ledger by status. Alpha here is the live
// complement: enrolled students minus recorded rows.
type TodayStats struct {
	Date          string `json:"date"`
	TotalStudents int    `json:"total_students"`
	Hadir         int    `json:"hadir"`
	Sakit         int    `json:"sakit"`
	Izin          int    `json:"izin"`
	Alpha         int    `json:"alpha"`
}

// TrendPoint is one day in the 7-day attendance trend. Excused groups
// Izin and Sakit together, matching the dashboard chart.
type TrendPoint struct {
	Date    string `json:"date"`
	Label   string `json:"label"`
	Hadir   int    `json:"hadir"`
	Excused int    `json:"excused"`
}

// ClassBreakdown splits today's presence per class.
type ClassBreakdown struct {
	ClassName string `json:"class_name"`
	Hadir     int    `json:"hadir"`
	Alpha     int    `json:"alpha"`
}

// PendingPermission is a queue entry awaiting verification.
type PendingPermission struct {
	Request     models.PermissionRequest `json:"request"`
	StudentName string                   `json:"student_name"`
	ClassName   string                   `json:"class_name"`
}

// DashboardSummary is the composed dashboard payload.
type DashboardSummary struct {
	Today    TodayStats          `json:"today"`
	Trend    []TrendPoint        `json:"trend"`
	Classes  []ClassBreakdown    `json:"classes"`
	Pending  []PendingPermission `json:"pending_permissions"`
	PendingN int                 `json:"pending_total"`
}
