package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/presensi-qr-api/internal/models"
	"github.com/noah-isme/presensi-qr-api/pkg/config"
	appErrors "github.com/noah-isme/presensi-qr-api/pkg/errors"
)

type permissionState interface {
	Permissions() []models.PermissionRequest
	PermissionByID(id string) (models.PermissionRequest, bool)
	AddPermission(ctx context.Context, req models.PermissionRequest) error
	UpdatePermission(ctx context.Context, req models.PermissionRequest) error
	AttendanceFor(studentID, date string) (models.Attendance, bool)
	AddAttendance(ctx context.Context, attendance models.Attendance) error
}

type evidenceSaver interface {
	Save(filename string, data []byte) (string, error)
}

// CreatePermissionRequest is the submission payload. The referenced
// student is not required to exist; the queue tolerates dangling
// references and renders them as not found.
type CreatePermissionRequest struct {
	StudentID   string                `json:"studentId" validate:"required"`
	Date        string                `json:"date" validate:"required,datetime=2006-01-02"`
	Type        models.PermissionType `json:"type" validate:"required"`
	Description string                `json:"description" validate:"required"`
	Evidence    string                `json:"evidence"`
}

// VerifyPermissionResult reports the transition outcome.
// AttendanceRecorded distinguishes an approval that materialized a
// ledger row from one that found the day already recorded.
type VerifyPermissionResult struct {
	Request            models.PermissionRequest `json:"request"`
	AttendanceRecorded bool                     `json:"attendance_recorded"`
}

// PermissionService manages the excused-absence queue: submissions stay
// Menunggu until an admin verifies them exactly once.
type PermissionService struct {
	state     permissionState
	validator *validator.Validate
	logger    *zap.Logger
	evidence  evidenceSaver
	cfg       config.EvidenceConfig
}

// NewPermissionService constructs the resolver. The evidence saver is
// optional; without one, evidence payloads are kept verbatim.
func NewPermissionService(state permissionState, validate *validator.Validate, logger *zap.Logger, evidence evidenceSaver, cfg config.EvidenceConfig) *PermissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = 5 << 20
	}
	return &PermissionService{state: state, validator: validate, logger: logger, evidence: evidence, cfg: cfg}
}

// List returns the queue, optionally filtered by status.
func (s *PermissionService) List(_ context.Context, status models.PermissionStatus) ([]models.PermissionRequest, error) {
	all := s.state.Permissions()
	if status == "" {
		return all, nil
	}
	if !status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported permission status filter")
	}
	filtered := make([]models.PermissionRequest, 0, len(all))
	for _, p := range all {
		if p.Status == status {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

// Create appends a new Pending request.
func (s *PermissionService) Create(ctx context.Context, req CreatePermissionRequest) (*models.PermissionRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid permission payload")
	}
	if !req.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "type must be Sakit or Izin")
	}

	id := uuid.NewString()
	evidence, err := s.storeEvidence(id, req.Evidence)
	if err != nil {
		return nil, err
	}

	permission := models.PermissionRequest{
		ID:          id,
		StudentID:   req.StudentID,
		Date:        req.Date,
		Type:        req.Type,
		Description: req.Description,
		Evidence:    evidence,
		Status:      models.PermissionStatusPending,
	}
	if err := s.state.AddPermission(ctx, permission); err != nil {
		return nil, err
	}
	return &permission, nil
}

// storeEvidence offloads inline base64 data URLs to the evidence store
// and returns the stored filename. Anything that is not a data URL, or
// any evidence when no store is configured, passes through untouched.
func (s *PermissionService) storeEvidence(id, raw string) (string, error) {
	if s.evidence == nil || !strings.HasPrefix(raw, "data:") {
		return raw, nil
	}
	mime, payload, found := strings.Cut(strings.TrimPrefix(raw, "data:"), ";base64,")
	if !found {
		return "", appErrors.Clone(appErrors.ErrValidation, "evidence must be a base64 data URL")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "evidence payload is not valid base64")
	}
	if int64(len(data)) > s.cfg.MaxFileSizeBytes {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("evidence exceeds the %d byte limit", s.cfg.MaxFileSizeBytes))
	}
	name, err := s.evidence.Save(fmt.Sprintf("%s.%s", id, evidenceExtension(mime)), data)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store evidence")
	}
	return name, nil
}

func evidenceExtension(mime string) string {
	switch mime {
	case "image/png":
		return "png"
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "application/pdf":
		return "pdf"
	default:
		return "bin"
	}
}

// Verify transitions a request to Disetujui or Ditolak. Approval
// materializes exactly one attendance row mirroring the permission
// type, with the unspecified-time sentinel, unless the day already has
// a record; the one-per-day invariant wins over the append in that
// case. A request that already left Menunggu cannot transition again.
func (s *PermissionService) Verify(ctx context.Context, id string, newStatus models.PermissionStatus) (*VerifyPermissionResult, error) {
	if newStatus != models.PermissionStatusApproved && newStatus != models.PermissionStatusRejected {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be Disetujui or Ditolak")
	}

	permission, ok := s.state.PermissionByID(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "permission request not found")
	}
	if permission.Status != models.PermissionStatusPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "permission request already verified")
	}

	permission.Status = newStatus
	if err := s.state.UpdatePermission(ctx, permission); err != nil {
		return nil, err
	}

	result := &VerifyPermissionResult{Request: permission}
	if newStatus != models.PermissionStatusApproved {
		return result, nil
	}

	if existing, found := s.state.AttendanceFor(permission.StudentID, permission.Date); found {
		s.logger.Warn("approval skipped attendance append, day already recorded",
			zap.String("permission_id", permission.ID),
			zap.String("student_id", permission.StudentID),
			zap.String("date", permission.Date),
			zap.String("existing_status", string(existing.Status)),
		)
		return result, nil
	}

	attendance := models.Attendance{
		ID:        uuid.NewString(),
		StudentID: permission.StudentID,
		Date:      permission.Date,
		Time:      models.TimeUnspecified,
		Status:    permission.Type.AttendanceStatus(),
	}
	if err := s.state.AddAttendance(ctx, attendance); err != nil {
		return nil, err
	}
	result.AttendanceRecorded = true
	return result, nil
}
