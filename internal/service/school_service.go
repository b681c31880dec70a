package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/presensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/presensi-qr-api/pkg/errors"
)

type schoolState interface {
	School() models.School
	SetSchool(ctx context.Context, school models.School) error
}

// UpdateSchoolRequest replaces the singleton profile wholesale.
type UpdateSchoolRequest struct {
	Year      string `json:"year" validate:"required"`
	Semester  string `json:"semester" validate:"required"`
	Name      string `json:"name" validate:"required"`
	NPSN      string `json:"npsn" validate:"required"`
	Address   string `json:"address" validate:"required"`
	Principal string `json:"principal" validate:"required"`
	Logo      string `json:"logo"`
}

// SchoolService manages the singleton school profile.
type SchoolService struct {
	state     schoolState
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSchoolService constructs a SchoolService.
func NewSchoolService(state schoolState, validate *validator.Validate, logger *zap.Logger) *SchoolService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchoolService{state: state, validator: validate, logger: logger}
}

// Get returns the current profile.
func (s *SchoolService) Get(_ context.Context) (*models.School, error) {
	school := s.state.School()
	return &school, nil
}

// Update replaces the profile. The ID is preserved; the profile is a
// singleton and is never created or deleted.
func (s *SchoolService) Update(ctx context.Context, req UpdateSchoolRequest) (*models.School, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid school payload")
	}

	school := models.School{
		ID:        s.state.School().ID,
		Year:      req.Year,
		Semester:  req.Semester,
		Name:      req.Name,
		NPSN:      req.NPSN,
		Address:   req.Address,
		Principal: req.Principal,
		Logo:      req.Logo,
	}
	if err := s.state.SetSchool(ctx, school); err != nil {
		return nil, err
	}
	return &school, nil
}
