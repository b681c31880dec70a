package dto

// ReportRequest scopes a recap: inclusive date range plus an optional
// class-name filter (empty means every student).
type ReportRequest struct {
	StartDate string `json:"start_date" form:"startDate"`
	EndDate   string `json:"end_date" form:"endDate"`
	ClassName string `json:"class_name" form:"className"`
}

// StudentRecapRow is one student's aggregated attendance over the range.
type StudentRecapRow struct {
	StudentID       string  `json:"student_id"`
	NISN            string  `json:"nisn"`
	Name            string  `json:"name"`
	ClassName       string  `json:"class_name"`
	Hadir           int     `json:"hadir"`
	Sakit           int     `json:"sakit"`
	Izin            int     `json:"izin"`
	Alpha           int     `json:"alpha"`
	Percentage      float64 `json:"percentage"`
	PercentageLabel string  `json:"percentage_label"`
}

// RecapSummary aggregates the filtered student set.
type RecapSummary struct {
	TotalStudents      int     `json:"total_students"`
	TotalDays          int     `json:"total_days"`
	Hadir              int     `json:"hadir"`
	Sakit              int     `json:"sakit"`
	Izin               int     `json:"izin"`
	Alpha              int     `json:"alpha"`
	AvgPercentage      float64 `json:"avg_percentage"`
	AvgPercentageLabel string  `json:"avg_percentage_label"`
}

// AttendanceRecap is the full report projection.
type AttendanceRecap struct {
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date"`
	ClassName string            `json:"class_name,omitempty"`
	Rows      []StudentRecapRow `json:"rows"`
	Summary   RecapSummary      `json:"summary"`
}
