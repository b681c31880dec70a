package models

// CalendarEventType categorizes academic calendar entries.
type CalendarEventType string

const (
	CalendarEventLibur  CalendarEventType = "Libur"
	CalendarEventAgenda CalendarEventType = "Agenda"
	CalendarEventUjian  CalendarEventType = "Ujian"
)

// Valid returns true when the type is a supported value.
func (t CalendarEventType) Valid() bool {
	switch t {
	case CalendarEventLibur, CalendarEventAgenda, CalendarEventUjian:
		return true
	default:
		return false
	}
}

// CalendarEvent is an academic calendar entry. The owning collection is
// kept sorted ascending by date on insert.
type CalendarEvent struct {
	ID          string            `json:"id"`
	Date        string            `json:"date"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Type        CalendarEventType `json:"type"`
}
