package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/presensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/presensi-qr-api/pkg/errors"
)

type studentState interface {
	Students() []models.Student
	StudentByID(id string) (models.Student, bool)
	StudentByNISN(nisn string) (models.Student, bool)
	AddStudent(ctx context.Context, student models.Student) error
	UpdateStudent(ctx context.Context, student models.Student) error
	RemoveStudent(ctx context.Context, id string) error
}

// CreateStudentRequest is the roster submission payload.
type CreateStudentRequest struct {
	Name      string        `json:"name" validate:"required"`
	Gender    models.Gender `json:"gender" validate:"required"`
	NISN      string        `json:"nisn" validate:"required"`
	ClassName string        `json:"className"`
	Photo     string        `json:"photo"`
}

// UpdateStudentRequest mirrors create; the record is replaced by ID.
type UpdateStudentRequest struct {
	Name      string        `json:"name" validate:"required"`
	Gender    models.Gender `json:"gender" validate:"required"`
	NISN      string        `json:"nisn" validate:"required"`
	ClassName string        `json:"className"`
	Photo     string        `json:"photo"`
}

// StudentService manages the roster. NISN stays unique across students
// and QRCode always mirrors NISN, keeping scan keys unambiguous.
type StudentService struct {
	state     studentState
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(state studentState, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{state: state, validator: validate, logger: logger}
}

// List returns the roster, optionally filtered by class name.
func (s *StudentService) List(_ context.Context, className string) ([]models.Student, error) {
	students := s.state.Students()
	if className == "" {
		return students, nil
	}
	filtered := make([]models.Student, 0, len(students))
	for _, st := range students {
		if st.ClassName == className {
			filtered = append(filtered, st)
		}
	}
	return filtered, nil
}

// Get resolves one student.
func (s *StudentService) Get(_ context.Context, id string) (*models.Student, error) {
	student, ok := s.state.StudentByID(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	return &student, nil
}

// Create validates and appends a roster entry.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if !req.Gender.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "gender must be L or P")
	}
	if _, exists := s.state.StudentByNISN(req.NISN); exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a student with this NISN already exists")
	}

	student := models.Student{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Gender:    req.Gender,
		NISN:      req.NISN,
		ClassName: req.ClassName,
		Photo:     req.Photo,
		QRCode:    req.NISN,
	}
	if err := s.state.AddStudent(ctx, student); err != nil {
		return nil, err
	}
	return &student, nil
}

// Update replaces the identified student.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if !req.Gender.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "gender must be L or P")
	}
	current, ok := s.state.StudentByID(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	if other, exists := s.state.StudentByNISN(req.NISN); exists && other.ID != id {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a student with this NISN already exists")
	}

	student := models.Student{
		ID:        current.ID,
		Name:      req.Name,
		Gender:    req.Gender,
		NISN:      req.NISN,
		ClassName: req.ClassName,
		Photo:     req.Photo,
		QRCode:    req.NISN,
	}
	if err := s.state.UpdateStudent(ctx, student); err != nil {
		return nil, err
	}
	return &student, nil
}

// Delete removes the identified student.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	return s.state.RemoveStudent(ctx, id)
}
