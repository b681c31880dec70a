package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/presensi-qr-api/internal/models"
)

type fakeDashboardState struct {
	students    []models.Student
	attendances []models.Attendance
	permissions []models.PermissionRequest
}

func (f *fakeDashboardState) Students() []models.Student { return f.students }

func (f *fakeDashboardState) StudentByID(id string) (models.Student, bool) {
	for _, st := range f.students {
		if st.ID == id {
			return st, true
		}
	}
	return models.Student{}, false
}

func (f *fakeDashboardState) Attendances() []models.Attendance        { return f.attendances }
func (f *fakeDashboardState) Permissions() []models.PermissionRequest { return f.permissions }

func newDashboardFixture(state *fakeDashboardState) *DashboardService {
	svc := NewDashboardService(state, nil)
	svc.now = func() time.Time {
		// A Monday.
		return time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestDashboardTodayCounts(t *testing.T) {
	state := &fakeDashboardState{
		students: []models.Student{
			{ID: "stu-1", Name: "Budi", ClassName: "X-A"},
			{ID: "stu-2", Name: "Sari", ClassName: "X-A"},
			{ID: "stu-3", Name: "Andi", ClassName: "X-B"},
		},
		attendances: []models.Attendance{
			{ID: "a1", StudentID: "stu-1", Date: "2024-03-11", Status: models.AttendanceStatusHadir},
			{ID: "a2", StudentID: "stu-2", Date: "2024-03-11", Status: models.AttendanceStatusSakit},
			{ID: "a3", StudentID: "stu-3", Date: "2024-03-10", Status: models.AttendanceStatusHadir},
		},
	}
	svc := newDashboardFixture(state)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2024-03-11", summary.Today.Date)
	assert.Equal(t, 3, summary.Today.TotalStudents)
	assert.Equal(t, 1, summary.Today.Hadir)
	assert.Equal(t, 1, summary.Today.Sakit)
	assert.Equal(t, 0, summary.Today.Izin)
	assert.Equal(t, 1, summary.Today.Alpha, "unrecorded students count as alpha")
}

func TestDashboardTrendCoversSevenDaysOldestFirst(t *testing.T) {
	state := &fakeDashboardState{
		attendances: []models.Attendance{
			{ID: "a1", StudentID: "stu-1", Date: "2024-03-05", Status: models.AttendanceStatusHadir},
			{ID: "a2", StudentID: "stu-1", Date: "2024-03-11", Status: models.AttendanceStatusIzin},
		},
	}
	svc := newDashboardFixture(state)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Trend, 7)
	assert.Equal(t, "2024-03-05", summary.Trend[0].Date)
	assert.Equal(t, "Sel", summary.Trend[0].Label)
	assert.Equal(t, 1, summary.Trend[0].Hadir)
	assert.Equal(t, "2024-03-11", summary.Trend[6].Date)
	assert.Equal(t, "Sen", summary.Trend[6].Label)
	assert.Equal(t, 1, summary.Trend[6].Excused)
}

func TestDashboardClassBreakdown(t *testing.T) {
	state := &fakeDashboardState{
		students: []models.Student{
			{ID: "stu-1", ClassName: "X-A"},
			{ID: "stu-2", ClassName: "X-A"},
			{ID: "stu-3", ClassName: ""},
		},
		attendances: []models.Attendance{
			{ID: "a1", StudentID: "stu-1", Date: "2024-03-11", Status: models.AttendanceStatusHadir},
		},
	}
	svc := newDashboardFixture(state)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Classes, 2)
	assert.Equal(t, "Tanpa Kelas", summary.Classes[0].ClassName)
	assert.Equal(t, 1, summary.Classes[0].Alpha)
	assert.Equal(t, "X-A", summary.Classes[1].ClassName)
	assert.Equal(t, 1, summary.Classes[1].Hadir)
	assert.Equal(t, 1, summary.Classes[1].Alpha)
}

func TestDashboardPendingQueueCapped(t *testing.T) {
	state := &fakeDashboardState{
		students: []models.Student{{ID: "stu-1", Name: "Budi", ClassName: "X-A"}},
	}
	for i := 0; i < 7; i++ {
		state.permissions = append(state.permissions, models.PermissionRequest{
			ID:        string(rune('a' + i)),
			StudentID: "stu-1",
			Date:      "2024-03-11",
			Type:      models.PermissionTypeIzin,
			Status:    models.PermissionStatusPending,
		})
	}
	state.permissions = append(state.permissions, models.PermissionRequest{
		ID: "done", StudentID: "stu-1", Status: models.PermissionStatusApproved,
	})
	svc := newDashboardFixture(state)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	assert.Len(t, summary.Pending, 5)
	assert.Equal(t, 7, summary.PendingN)
	assert.Equal(t, "Budi", summary.Pending[0].StudentName)
}

func TestDashboardPendingDanglingStudent(t *testing.T) {
	state := &fakeDashboardState{
		permissions: []models.PermissionRequest{
			{ID: "perm-1", StudentID: "ghost", Status: models.PermissionStatusPending},
		},
	}
	svc := newDashboardFixture(state)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Pending, 1)
	assert.Equal(t, "Siswa tidak ditemukan", summary.Pending[0].StudentName)
}
