package models

// SchoolClass groups students under a homeroom teacher. TeacherID is a
// weak reference: the teacher may have been removed, in which case the
// class renders as unassigned rather than failing.
type SchoolClass struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TeacherID string `json:"teacherId"`
}
