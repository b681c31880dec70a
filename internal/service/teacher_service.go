package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/presensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/presensi-qr-api/pkg/errors"
)

type teacherState interface {
	Teachers() []models.Teacher
	TeacherByID(id string) (models.Teacher, bool)
	AddTeacher(ctx context.Context, teacher models.Teacher) error
	UpdateTeacher(ctx context.Context, teacher models.Teacher) error
	RemoveTeacher(ctx context.Context, id string) error
}

// TeacherRequest is the staff payload for both create and update.
type TeacherRequest struct {
	Name   string        `json:"name" validate:"required"`
	Gender models.Gender `json:"gender" validate:"required"`
	NIP    string        `json:"nip" validate:"required"`
	Photo  string        `json:"photo"`
}

// TeacherService manages the staff roster.
type TeacherService struct {
	state     teacherState
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(state teacherState, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{state: state, validator: validate, logger: logger}
}

// List returns the staff roster.
func (s *TeacherService) List(_ context.Context) ([]models.Teacher, error) {
	return s.state.Teachers(), nil
}

// Get resolves one teacher.
func (s *TeacherService) Get(_ context.Context, id string) (*models.Teacher, error) {
	teacher, ok := s.state.TeacherByID(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	return &teacher, nil
}

// Create validates and appends a staff entry.
func (s *TeacherService) Create(ctx context.Context, req TeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	if !req.Gender.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "gender must be L or P")
	}

	teacher := models.Teacher{
		ID:     uuid.NewString(),
		Name:   req.Name,
		Gender: req.Gender,
		NIP:    req.NIP,
		Photo:  req.Photo,
	}
	if err := s.state.AddTeacher(ctx, teacher); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// Update replaces the identified teacher.
func (s *TeacherService) Update(ctx context.Context, id string, req TeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	if !req.Gender.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "gender must be L or P")
	}
	if _, ok := s.state.TeacherByID(id); !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}

	teacher := models.Teacher{
		ID:     id,
		Name:   req.Name,
		Gender: req.Gender,
		NIP:    req.NIP,
		Photo:  req.Photo,
	}
	if err := s.state.UpdateTeacher(ctx, teacher); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// Delete removes the identified teacher. Classes referencing the
// teacher keep their weak reference and render as unassigned.
func (s *TeacherService) Delete(ctx context.Context, id string) error {
	return s.state.RemoveTeacher(ctx, id)
}
