package state

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/presensi-qr-api/internal/models"
	"github.com/noah-isme/presensi-qr-api/internal/store"
)

type memoryKV struct {
	data    map[store.Slot][]byte
	failSet bool
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: make(map[store.Slot][]byte)}
}

func (m *memoryKV) Get(_ context.Context, key store.Slot) ([]byte, bool, error) {
	raw, ok := m.data[key]
	return raw, ok, nil
}

func (m *memoryKV) Set(_ context.Context, key store.Slot, value []byte) error {
	if m.failSet {
		return errors.New("disk full")
	}
	m.data[key] = value
	return nil
}

func (m *memoryKV) Delete(_ context.Context, key store.Slot) error {
	delete(m.data, key)
	return nil
}

func TestLoadFallsBackOnMissingSlots(t *testing.T) {
	s := New(newMemoryKV(), nil)
	s.Load(context.Background())

	assert.Equal(t, models.DefaultSchool(), s.School())
	assert.Empty(t, s.Students())
	assert.Empty(t, s.Calendar())
}

func TestLoadToleratesCorruptSlot(t *testing.T) {
	kv := newMemoryKV()
	kv.data[store.SlotStudents] = []byte("{not json")
	kv.data[store.SlotTeachers] = []byte(`[{"id":"t-1","name":"Pak Ahmad"}]`)

	s := New(kv, nil)
	s.Load(context.Background())

	assert.Empty(t, s.Students(), "corrupt slot starts empty")
	require.Len(t, s.Teachers(), 1, "healthy slots still load")
	assert.Equal(t, "Pak Ahmad", s.Teachers()[0].Name)
}

func TestMutationPersistsSlot(t *testing.T) {
	kv := newMemoryKV()
	s := New(kv, nil)
	ctx := context.Background()

	require.NoError(t, s.AddStudent(ctx, models.Student{ID: "stu-1", Name: "Budi", NISN: "001"}))

	raw, ok := kv.data[store.SlotStudents]
	require.True(t, ok, "mutation must mirror the collection into its slot")
	assert.Contains(t, string(raw), "Budi")

	reloaded := New(kv, nil)
	reloaded.Load(ctx)
	require.Len(t, reloaded.Students(), 1)
}

func TestMutationRollsBackOnPersistFailure(t *testing.T) {
	kv := newMemoryKV()
	s := New(kv, nil)
	ctx := context.Background()

	require.NoError(t, s.AddStudent(ctx, models.Student{ID: "stu-1", Name: "Budi"}))

	kv.failSet = true
	err := s.AddStudent(ctx, models.Student{ID: "stu-2", Name: "Sari"})
	require.Error(t, err)
	assert.Len(t, s.Students(), 1, "memory must match storage after a failed write")

	err = s.RemoveStudent(ctx, "stu-1")
	require.Error(t, err)
	assert.Len(t, s.Students(), 1)
}

func TestCalendarStaysSortedByDate(t *testing.T) {
	s := New(newMemoryKV(), nil)
	ctx := context.Background()

	require.NoError(t, s.AddCalendarEvent(ctx, models.CalendarEvent{ID: "e1", Date: "2024-06-01", Title: "Ujian Akhir", Type: models.CalendarEventUjian}))
	require.NoError(t, s.AddCalendarEvent(ctx, models.CalendarEvent{ID: "e2", Date: "2024-01-15", Title: "Rapat", Type: models.CalendarEventAgenda}))
	require.NoError(t, s.AddCalendarEvent(ctx, models.CalendarEvent{ID: "e3", Date: "2024-03-20", Title: "Libur", Type: models.CalendarEventLibur}))

	events := s.Calendar()
	require.Len(t, events, 3)
	assert.Equal(t, []string{"e2", "e3", "e1"}, []string{events[0].ID, events[1].ID, events[2].ID})

	// Moving an event re-sorts the list.
	require.NoError(t, s.UpdateCalendarEvent(ctx, models.CalendarEvent{ID: "e2", Date: "2024-12-01", Title: "Rapat", Type: models.CalendarEventAgenda}))
	events = s.Calendar()
	assert.Equal(t, "e2", events[2].ID)
}

func TestPermissionsNewestFirst(t *testing.T) {
	s := New(newMemoryKV(), nil)
	ctx := context.Background()

	require.NoError(t, s.AddPermission(ctx, models.PermissionRequest{ID: "perm-1", Status: models.PermissionStatusPending}))
	require.NoError(t, s.AddPermission(ctx, models.PermissionRequest{ID: "perm-2", Status: models.PermissionStatusPending}))

	list := s.Permissions()
	require.Len(t, list, 2)
	assert.Equal(t, "perm-2", list[0].ID)
}

func TestAccessorsReturnCopies(t *testing.T) {
	s := New(newMemoryKV(), nil)
	ctx := context.Background()
	require.NoError(t, s.AddStudent(ctx, models.Student{ID: "stu-1", Name: "Budi"}))

	snapshot := s.Students()
	snapshot[0].Name = "mutated"

	assert.Equal(t, "Budi", s.Students()[0].Name)
}

func TestSetAuthenticatedMirrorsSessionSlot(t *testing.T) {
	kv := newMemoryKV()
	s := New(kv, nil)
	ctx := context.Background()

	require.NoError(t, s.SetAuthenticated(ctx, true))
	_, ok := kv.data[store.SlotSession]
	assert.True(t, ok)

	require.NoError(t, s.SetAuthenticated(ctx, false))
	_, ok = kv.data[store.SlotSession]
	assert.False(t, ok)
}

func TestAttendanceForMatchesStudentAndDay(t *testing.T) {
	s := New(newMemoryKV(), nil)
	ctx := context.Background()

	require.NoError(t, s.AddAttendance(ctx, models.Attendance{ID: "a1", StudentID: "stu-1", Date: "2024-03-11", Status: models.AttendanceStatusHadir}))

	_, found := s.AttendanceFor("stu-1", "2024-03-11")
	assert.True(t, found)
	_, found = s.AttendanceFor("stu-1", "2024-03-12")
	assert.False(t, found)
	_, found = s.AttendanceFor("stu-2", "2024-03-11")
	assert.False(t, found)
}
