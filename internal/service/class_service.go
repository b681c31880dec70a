package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/presensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/presensi-qr-api/pkg/errors"
)

type classState interface {
	Classes() []models.SchoolClass
	ClassByID(id string) (models.SchoolClass, bool)
	AddClass(ctx context.Context, class models.SchoolClass) error
	UpdateClass(ctx context.Context, class models.SchoolClass) error
	RemoveClass(ctx context.Context, id string) error
	TeacherByID(id string) (models.Teacher, bool)
}

// ClassRequest is the class payload for both create and update.
// TeacherID is optional and may dangle.
type ClassRequest struct {
	Name      string `json:"name" validate:"required"`
	TeacherID string `json:"teacherId"`
}

// ClassDetail pairs a class with its resolved homeroom teacher name.
type ClassDetail struct {
	models.SchoolClass
	TeacherName string `json:"teacher_name"`
}

const teacherUnassigned = "Belum ditentukan"

// ClassService manages class groupings.
type ClassService struct {
	state     classState
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a ClassService.
func NewClassService(state classState, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{state: state, validator: validate, logger: logger}
}

// List returns every class with its teacher reference resolved. A
// dangling teacherId renders as unassigned rather than failing.
func (s *ClassService) List(_ context.Context) ([]ClassDetail, error) {
	classes := s.state.Classes()
	out := make([]ClassDetail, 0, len(classes))
	for _, c := range classes {
		detail := ClassDetail{SchoolClass: c, TeacherName: teacherUnassigned}
		if teacher, ok := s.state.TeacherByID(c.TeacherID); ok {
			detail.TeacherName = teacher.Name
		}
		out = append(out, detail)
	}
	return out, nil
}

// Create validates and appends a class.
func (s *ClassService) Create(ctx context.Context, req ClassRequest) (*models.SchoolClass, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	class := models.SchoolClass{
		ID:        uuid.NewString(),
		Name:      req.Name,
		TeacherID: req.TeacherID,
	}
	if err := s.state.AddClass(ctx, class); err != nil {
		return nil, err
	}
	return &class, nil
}

// Update replaces the identified class.
func (s *ClassService) Update(ctx context.Context, id string, req ClassRequest) (*models.SchoolClass, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	if _, ok := s.state.ClassByID(id); !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	class := models.SchoolClass{
		ID:        id,
		Name:      req.Name,
		TeacherID: req.TeacherID,
	}
	if err := s.state.UpdateClass(ctx, class); err != nil {
		return nil, err
	}
	return &class, nil
}

// Delete removes the identified class.
func (s *ClassService) Delete(ctx context.Context, id string) error {
	return s.state.RemoveClass(ctx, id)
}
