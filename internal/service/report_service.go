package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/presensi-qr-api/internal/dto"
	"github.com/noah-isme/presensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/presensi-qr-api/pkg/errors"
)

type reportState interface {
	Students() []models.Student
	Attendances() []models.Attendance
}

// ReportService computes attendance recaps over an inclusive date
// range. The projection is pure: recomputed on every call, no caching,
// and independent of the wall clock once the range is fixed. Every
// calendar day in range counts as a required school day; calendar
// holidays are deliberately not excluded, matching the recap sheet this
// report feeds.
type ReportService struct {
	state  reportState
	logger *zap.Logger
}

// NewReportService constructs the report engine.
func NewReportService(state reportState, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{state: state, logger: logger}
}

// Recap aggregates per-student and summary statistics for the range.
// A start date after the end date yields an empty range: zero days,
// zero counts, 0.0 percentages.
func (s *ReportService) Recap(_ context.Context, req dto.ReportRequest) (*dto.AttendanceRecap, error) {
	start, err := time.Parse(models.DateLayout, req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "startDate must be formatted as YYYY-MM-DD")
	}
	end, err := time.Parse(models.DateLayout, req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must be formatted as YYYY-MM-DD")
	}

	totalDays := daysInclusive(start, end)

	students := s.state.Students()
	if req.ClassName != "" {
		filtered := students[:0]
		for _, st := range students {
			if st.ClassName == req.ClassName {
				filtered = append(filtered, st)
			}
		}
		students = filtered
	}
	ledger := s.state.Attendances()

	rows := make([]dto.StudentRecapRow, 0, len(students))
	summary := dto.RecapSummary{TotalStudents: len(students), TotalDays: totalDays}

	for _, st := range students {
		row := dto.StudentRecapRow{
			StudentID: st.ID,
			NISN:      st.NISN,
			Name:      st.Name,
			ClassName: st.ClassName,
		}
		for _, a := range ledger {
			if a.StudentID != st.ID || a.Date < req.StartDate || a.Date > req.EndDate {
				continue
			}
			switch a.Status {
			case models.AttendanceStatusHadir:
				row.Hadir++
			case models.AttendanceStatusSakit:
				row.Sakit++
			case models.AttendanceStatusIzin:
				row.Izin++
			}
		}

		// Alpha is never stored: it is the complement of recorded days,
		// floored at zero so anomalous duplicate rows cannot go negative.
		row.Alpha = totalDays - (row.Hadir + row.Sakit + row.Izin)
		if row.Alpha < 0 {
			row.Alpha = 0
		}
		if totalDays > 0 {
			row.Percentage = float64(row.Hadir) / float64(totalDays) * 100
		}
		row.PercentageLabel = formatPercent(row.Percentage)

		summary.Hadir += row.Hadir
		summary.Sakit += row.Sakit
		summary.Izin += row.Izin
		summary.Alpha += row.Alpha
		rows = append(rows, row)
	}

	if possible := summary.TotalStudents * totalDays; possible > 0 {
		summary.AvgPercentage = float64(summary.Hadir) / float64(possible) * 100
	}
	summary.AvgPercentageLabel = formatPercent(summary.AvgPercentage)

	return &dto.AttendanceRecap{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		ClassName: req.ClassName,
		Rows:      rows,
		Summary:   summary,
	}, nil
}

func daysInclusive(start, end time.Time) int {
	if start.After(end) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
