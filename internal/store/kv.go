package store

import "context"

// Slot is a fixed storage key. Each top-level collection is mirrored
// wholesale into its own slot after every mutation; there is no
// incremental write and no transaction spanning slots.
type Slot string

const (
	SlotSchool      Slot = "school_data"
	SlotStudents    Slot = "students_data"
	SlotTeachers    Slot = "teachers_data"
	SlotClasses     Slot = "classes_data"
	SlotAttendances Slot = "attendance_data"
	SlotPermissions Slot = "permissions_data"
	SlotCalendar    Slot = "calendar_data"
	SlotSession     Slot = "is_logged_in"
)

// Slots enumerates every collection slot (the session flag excluded).
var Slots = []Slot{
	SlotSchool,
	SlotStudents,
	SlotTeachers,
	SlotClasses,
	SlotAttendances,
	SlotPermissions,
	SlotCalendar,
}

// KV is the snapshot storage collaborator. Get reports absence through
// the boolean rather than an error so a missing slot never fails
// startup.
type KV interface {
	Get(ctx context.Context, key Slot) ([]byte, bool, error)
	Set(ctx context.Context, key Slot, value []byte) error
	Delete(ctx context.Context, key Slot) error
}
