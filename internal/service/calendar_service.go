package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/presensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/presensi-qr-api/pkg/errors"
)

type calendarState interface {
	Calendar() []models.CalendarEvent
	AddCalendarEvent(ctx context.Context, event models.CalendarEvent) error
	UpdateCalendarEvent(ctx context.Context, event models.CalendarEvent) error
	RemoveCalendarEvent(ctx context.Context, id string) error
}

// CalendarEventRequest is the calendar payload for create and update.
type CalendarEventRequest struct {
	Date        string                   `json:"date" validate:"required,datetime=2006-01-02"`
	Title       string                   `json:"title" validate:"required"`
	Description string                   `json:"description"`
	Type        models.CalendarEventType `json:"type" validate:"required"`
}

// CalendarService manages academic calendar entries. The event list
// stays sorted ascending by date; overlapping events on one day are
// allowed.
type CalendarService struct {
	state     calendarState
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCalendarService constructs a CalendarService.
func NewCalendarService(state calendarState, validate *validator.Validate, logger *zap.Logger) *CalendarService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{state: state, validator: validate, logger: logger}
}

// List returns the event list, date ascending. Month filters by
// "2006-01" prefix when non-empty.
func (s *CalendarService) List(_ context.Context, month string) ([]models.CalendarEvent, error) {
	events := s.state.Calendar()
	if month == "" {
		return events, nil
	}
	filtered := make([]models.CalendarEvent, 0, len(events))
	for _, e := range events {
		if len(e.Date) >= len(month) && e.Date[:len(month)] == month {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// Create validates and inserts an event at its sorted position.
func (s *CalendarService) Create(ctx context.Context, req CalendarEventRequest) (*models.CalendarEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid calendar payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "type must be Libur, Agenda or Ujian")
	}

	event := models.CalendarEvent{
		ID:          uuid.NewString(),
		Date:        req.Date,
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
	}
	if err := s.state.AddCalendarEvent(ctx, event); err != nil {
		return nil, err
	}
	return &event, nil
}

// Update replaces the identified event and re-sorts the list.
func (s *CalendarService) Update(ctx context.Context, id string, req CalendarEventRequest) (*models.CalendarEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid calendar payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "type must be Libur, Agenda or Ujian")
	}

	event := models.CalendarEvent{
		ID:          id,
		Date:        req.Date,
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
	}
	if err := s.state.UpdateCalendarEvent(ctx, event); err != nil {
		return nil, err
	}
	return &event, nil
}

// Delete removes the identified event.
func (s *CalendarService) Delete(ctx context.Context, id string) error {
	return s.state.RemoveCalendarEvent(ctx, id)
}
