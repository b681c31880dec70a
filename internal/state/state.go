package state

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/presensi-qr-api/internal/models"
	"github.com/noah-isme/presensi-qr-api/internal/store"
	appErrors "github.com/noah-isme/presensi-qr-api/pkg/errors"
)

// AppState owns the seven top-level collections. All reads and
// mutations go through its methods; every mutation re-serializes the
// owning collection into its slot before returning, so storage always
// mirrors memory (whole-collection overwrite, last writer wins).
type AppState struct {
	mu     sync.RWMutex
	kv     store.KV
	logger *zap.Logger

	school      models.School
	students    []models.Student
	teachers    []models.Teacher
	classes     []models.SchoolClass
	attendances []models.Attendance
	permissions []models.PermissionRequest
	calendar    []models.CalendarEvent
}

// New constructs an empty AppState bound to the given snapshot store.
func New(kv store.KV, logger *zap.Logger) *AppState {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AppState{
		kv:     kv,
		logger: logger,
		school: models.DefaultSchool(),
	}
}

// Load rehydrates every slot independently. A missing or unparsable
// slot falls back to an empty collection (the school profile falls back
// to the built-in default) with a warning; startup never fails on bad
// stored data.
func (s *AppState) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loadSlot(ctx, store.SlotSchool, &s.school) {
		s.school = models.DefaultSchool()
	}
	if !s.loadSlot(ctx, store.SlotStudents, &s.students) {
		s.students = nil
	}
	if !s.loadSlot(ctx, store.SlotTeachers, &s.teachers) {
		s.teachers = nil
	}
	if !s.loadSlot(ctx, store.SlotClasses, &s.classes) {
		s.classes = nil
	}
	if !s.loadSlot(ctx, store.SlotAttendances, &s.attendances) {
		s.attendances = nil
	}
	if !s.loadSlot(ctx, store.SlotPermissions, &s.permissions) {
		s.permissions = nil
	}
	if !s.loadSlot(ctx, store.SlotCalendar, &s.calendar) {
		s.calendar = nil
	}
}

func (s *AppState) loadSlot(ctx context.Context, key store.Slot, dest interface{}) bool {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Warn("slot read failed, starting empty", zap.String("slot", string(key)), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.logger.Warn("slot unreadable, starting empty", zap.String("slot", string(key)), zap.Error(err))
		return false
	}
	return true
}

// persist must be called with the write lock held.
func (s *AppState) persist(ctx context.Context, key store.Slot, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to serialize "+string(key))
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to persist "+string(key))
	}
	return nil
}

// --- school ---

// School returns the current profile.
func (s *AppState) School() models.School {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.school
}

// SetSchool replaces the singleton profile.
func (s *AppState) SetSchool(ctx context.Context, school models.School) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.school
	s.school = school
	if err := s.persist(ctx, store.SlotSchool, s.school); err != nil {
		s.school = prev
		return err
	}
	return nil
}

// --- students ---

// Students returns a copy of the roster.
func (s *AppState) Students() []models.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Student(nil), s.students...)
}

// StudentByID resolves a student by identifier.
func (s *AppState) StudentByID(id string) (models.Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.students {
		if st.ID == id {
			return st, true
		}
	}
	return models.Student{}, false
}

// StudentByNISN resolves a student by exact scan key match.
func (s *AppState) StudentByNISN(nisn string) (models.Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.students {
		if st.NISN == nisn {
			return st, true
		}
	}
	return models.Student{}, false
}

// AddStudent appends a roster entry.
func (s *AppState) AddStudent(ctx context.Context, student models.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.students = append(s.students, student)
	if err := s.persist(ctx, store.SlotStudents, s.students); err != nil {
		s.students = s.students[:len(s.students)-1]
		return err
	}
	return nil
}

// UpdateStudent replaces the entry with a matching ID.
func (s *AppState) UpdateStudent(ctx context.Context, student models.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, st := range s.students {
		if st.ID == student.ID {
			prev := s.students[i]
			s.students[i] = student
			if err := s.persist(ctx, store.SlotStudents, s.students); err != nil {
				s.students[i] = prev
				return err
			}
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "student not found")
}

// RemoveStudent filters the entry with a matching ID out of the roster.
func (s *AppState) RemoveStudent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]models.Student, 0, len(s.students))
	found := false
	for _, st := range s.students {
		if st.ID == id {
			found = true
			continue
		}
		next = append(next, st)
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	prev := s.students
	s.students = next
	if err := s.persist(ctx, store.SlotStudents, s.students); err != nil {
		s.students = prev
		return err
	}
	return nil
}

// --- teachers ---

// Teachers returns a copy of the staff roster.
func (s *AppState) Teachers() []models.Teacher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Teacher(nil), s.teachers...)
}

// TeacherByID resolves a teacher by identifier.
func (s *AppState) TeacherByID(id string) (models.Teacher, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.teachers {
		if t.ID == id {
			return t, true
		}
	}
	return models.Teacher{}, false
}

// AddTeacher appends a staff entry.
func (s *AppState) AddTeacher(ctx context.Context, teacher models.Teacher) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teachers = append(s.teachers, teacher)
	if err := s.persist(ctx, store.SlotTeachers, s.teachers); err != nil {
		s.teachers = s.teachers[:len(s.teachers)-1]
		return err
	}
	return nil
}

// UpdateTeacher replaces the entry with a matching ID.
func (s *AppState) UpdateTeacher(ctx context.Context, teacher models.Teacher) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.teachers {
		if t.ID == teacher.ID {
			prev := s.teachers[i]
			s.teachers[i] = teacher
			if err := s.persist(ctx, store.SlotTeachers, s.teachers); err != nil {
				s.teachers[i] = prev
				return err
			}
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
}

// RemoveTeacher filters the entry with a matching ID.
func (s *AppState) RemoveTeacher(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]models.Teacher, 0, len(s.teachers))
	found := false
	for _, t := range s.teachers {
		if t.ID == id {
			found = true
			continue
		}
		next = append(next, t)
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	prev := s.teachers
	s.teachers = next
	if err := s.persist(ctx, store.SlotTeachers, s.teachers); err != nil {
		s.teachers = prev
		return err
	}
	return nil
}

// --- classes ---

// Classes returns a copy of the class list.
func (s *AppState) Classes() []models.SchoolClass {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.SchoolClass(nil), s.classes...)
}

// ClassByID resolves a class by identifier.
func (s *AppState) ClassByID(id string) (models.SchoolClass, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.classes {
		if c.ID == id {
			return c, true
		}
	}
	return models.SchoolClass{}, false
}

// AddClass appends a class.
func (s *AppState) AddClass(ctx context.Context, class models.SchoolClass) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.classes = append(s.classes, class)
	if err := s.persist(ctx, store.SlotClasses, s.classes); err != nil {
		s.classes = s.classes[:len(s.classes)-1]
		return err
	}
	return nil
}

// UpdateClass replaces the entry with a matching ID.
func (s *AppState) UpdateClass(ctx context.Context, class models.SchoolClass) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.classes {
		if c.ID == class.ID {
			prev := s.classes[i]
			s.classes[i] = class
			if err := s.persist(ctx, store.SlotClasses, s.classes); err != nil {
				s.classes[i] = prev
				return err
			}
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "class not found")
}

// RemoveClass filters the entry with a matching ID.
func (s *AppState) RemoveClass(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]models.SchoolClass, 0, len(s.classes))
	found := false
	for _, c := range s.classes {
		if c.ID == id {
			found = true
			continue
		}
		next = append(next, c)
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}
	prev := s.classes
	s.classes = next
	if err := s.persist(ctx, store.SlotClasses, s.classes); err != nil {
		s.classes = prev
		return err
	}
	return nil
}

// --- attendances ---

// Attendances returns a copy of the ledger.
func (s *AppState) Attendances() []models.Attendance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Attendance(nil), s.attendances...)
}

// AttendanceFor finds the record for a (student, calendar day) pair.
func (s *AppState) AttendanceFor(studentID, date string) (models.Attendance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.attendances {
		if a.StudentID == studentID && a.Date == date {
			return a, true
		}
	}
	return models.Attendance{}, false
}

// AddAttendance appends one ledger row.
func (s *AppState) AddAttendance(ctx context.Context, attendance models.Attendance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attendances = append(s.attendances, attendance)
	if err := s.persist(ctx, store.SlotAttendances, s.attendances); err != nil {
		s.attendances = s.attendances[:len(s.attendances)-1]
		return err
	}
	return nil
}

// --- permissions ---

// Permissions returns a copy of the request list, newest first.
func (s *AppState) Permissions() []models.PermissionRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.PermissionRequest(nil), s.permissions...)
}

// PermissionByID resolves a request by identifier.
func (s *AppState) PermissionByID(id string) (models.PermissionRequest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.permissions {
		if p.ID == id {
			return p, true
		}
	}
	return models.PermissionRequest{}, false
}

// AddPermission prepends a request so the newest submission lists first.
func (s *AppState) AddPermission(ctx context.Context, req models.PermissionRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.permissions
	s.permissions = append([]models.PermissionRequest{req}, s.permissions...)
	if err := s.persist(ctx, store.SlotPermissions, s.permissions); err != nil {
		s.permissions = prev
		return err
	}
	return nil
}

// UpdatePermission replaces the entry with a matching ID.
func (s *AppState) UpdatePermission(ctx context.Context, req models.PermissionRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.permissions {
		if p.ID == req.ID {
			prev := s.permissions[i]
			s.permissions[i] = req
			if err := s.persist(ctx, store.SlotPermissions, s.permissions); err != nil {
				s.permissions[i] = prev
				return err
			}
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "permission request not found")
}

// --- calendar ---

// Calendar returns a copy of the event list, date ascending.
func (s *AppState) Calendar() []models.CalendarEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.CalendarEvent(nil), s.calendar...)
}

// AddCalendarEvent inserts an event keeping the collection sorted by date.
func (s *AppState) AddCalendarEvent(ctx context.Context, event models.CalendarEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.calendar
	next := append(append([]models.CalendarEvent(nil), s.calendar...), event)
	sort.SliceStable(next, func(i, j int) bool { return next[i].Date < next[j].Date })
	s.calendar = next
	if err := s.persist(ctx, store.SlotCalendar, s.calendar); err != nil {
		s.calendar = prev
		return err
	}
	return nil
}

// UpdateCalendarEvent replaces the entry with a matching ID and re-sorts.
func (s *AppState) UpdateCalendarEvent(ctx context.Context, event models.CalendarEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.calendar {
		if e.ID == event.ID {
			prev := append([]models.CalendarEvent(nil), s.calendar...)
			s.calendar[i] = event
			sort.SliceStable(s.calendar, func(a, b int) bool { return s.calendar[a].Date < s.calendar[b].Date })
			if err := s.persist(ctx, store.SlotCalendar, s.calendar); err != nil {
				s.calendar = prev
				return err
			}
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "calendar event not found")
}

// RemoveCalendarEvent filters the entry with a matching ID.
func (s *AppState) RemoveCalendarEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]models.CalendarEvent, 0, len(s.calendar))
	found := false
	for _, e := range s.calendar {
		if e.ID == id {
			found = true
			continue
		}
		next = append(next, e)
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "calendar event not found")
	}
	prev := s.calendar
	s.calendar = next
	if err := s.persist(ctx, store.SlotCalendar, s.calendar); err != nil {
		s.calendar = prev
		return err
	}
	return nil
}

// --- session flag ---

// SetAuthenticated mirrors the admin session flag into storage.
func (s *AppState) SetAuthenticated(ctx context.Context, authenticated bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !authenticated {
		if err := s.kv.Delete(ctx, store.SlotSession); err != nil {
			return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to clear session flag")
		}
		return nil
	}
	if err := s.kv.Set(ctx, store.SlotSession, []byte("true")); err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to persist session flag")
	}
	return nil
}
