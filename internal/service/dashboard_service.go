package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/presensi-qr-api/internal/dto"
	"github.com/noah-isme/presensi-qr-api/internal/models"
)

type dashboardState interface {
	Students() []models.Student
	StudentByID(id string) (models.Student, bool)
	Attendances() []models.Attendance
	Permissions() []models.PermissionRequest
}

// Indonesian short weekday labels, Sunday first.
var weekdayLabels = [7]string{"Min", "Sen", "Sel", "Rab", "Kam", "Jum", "Sab"}

const pendingPermissionLimit = 5

// DashboardService composes the live overview: today's counts, the
// seven-day trend, per-class presence and the verification queue.
type DashboardService struct {
	state  dashboardState
	logger *zap.Logger
	now    func() time.Time
}

// NewDashboardService constructs the dashboard composer.
func NewDashboardService(state dashboardState, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{state: state, logger: logger, now: time.Now}
}

// Summary builds the dashboard payload for the current day.
func (s *DashboardService) Summary(_ context.Context) (*dto.DashboardSummary, error) {
	now := s.now()
	today := now.Format(models.DateLayout)

	students := s.state.Students()
	ledger := s.state.Attendances()

	summary := &dto.DashboardSummary{
		Today: dto.TodayStats{Date: today, TotalStudents: len(students)},
	}

	todayRecorded := 0
	recordedByStudent := make(map[string]models.AttendanceStatus)
	for _, a := range ledger {
		if a.Date != today {
			continue
		}
		todayRecorded++
		recordedByStudent[a.StudentID] = a.Status
		switch a.Status {
		case models.AttendanceStatusHadir:
			summary.Today.Hadir++
		case models.AttendanceStatusSakit:
			summary.Today.Sakit++
		case models.AttendanceStatusIzin:
			summary.Today.Izin++
		}
	}
	summary.Today.Alpha = len(students) - todayRecorded
	if summary.Today.Alpha < 0 {
		summary.Today.Alpha = 0
	}

	summary.Trend = s.trend(ledger, now)
	summary.Classes = classBreakdown(students, recordedByStudent)
	summary.Pending, summary.PendingN = s.pendingQueue()

	return summary, nil
}

// trend counts the last seven days, oldest first.
func (s *DashboardService) trend(ledger []models.Attendance, now time.Time) []dto.TrendPoint {
	points := make([]dto.TrendPoint, 0, 7)
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		date := day.Format(models.DateLayout)
		point := dto.TrendPoint{Date: date, Label: weekdayLabels[day.Weekday()]}
		for _, a := range ledger {
			if a.Date != date {
				continue
			}
			switch a.Status {
			case models.AttendanceStatusHadir:
				point.Hadir++
			case models.AttendanceStatusSakit, models.AttendanceStatusIzin:
				point.Excused++
			}
		}
		points = append(points, point)
	}
	return points
}

func classBreakdown(students []models.Student, recorded map[string]models.AttendanceStatus) []dto.ClassBreakdown {
	byClass := make(map[string]*dto.ClassBreakdown)
	for _, st := range students {
		name := st.ClassName
		if name == "" {
			name = "Tanpa Kelas"
		}
		entry, ok := byClass[name]
		if !ok {
			entry = &dto.ClassBreakdown{ClassName: name}
			byClass[name] = entry
		}
		if recorded[st.ID] == models.AttendanceStatusHadir {
			entry.Hadir++
		} else {
			entry.Alpha++
		}
	}

	out := make([]dto.ClassBreakdown, 0, len(byClass))
	for _, entry := range byClass {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClassName < out[j].ClassName })
	return out
}

func (s *DashboardService) pendingQueue() ([]dto.PendingPermission, int) {
	pending := make([]dto.PendingPermission, 0, pendingPermissionLimit)
	total := 0
	for _, p := range s.state.Permissions() {
		if p.Status != models.PermissionStatusPending {
			continue
		}
		total++
		if len(pending) >= pendingPermissionLimit {
			continue
		}
		entry := dto.PendingPermission{Request: p, StudentName: "Siswa tidak ditemukan"}
		if student, ok := s.state.StudentByID(p.StudentID); ok {
			entry.StudentName = student.Name
			entry.ClassName = student.ClassName
		}
		pending = append(pending, entry)
	}
	return pending, total
}
