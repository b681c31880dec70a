package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/presensi-qr-api/internal/dto"
	"github.com/noah-isme/presensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/presensi-qr-api/pkg/errors"
)

type checkinState interface {
	StudentByNISN(nisn string) (models.Student, bool)
	AttendanceFor(studentID, date string) (models.Attendance, bool)
	AddAttendance(ctx context.Context, attendance models.Attendance) error
}

type scanObserver interface {
	ObserveScan(status string)
}

// CheckinService is the check-in gate: it turns a scanned code into an
// attendance decision and guards the one-record-per-day invariant for
// scans. After any decision the gate cools down and refuses further
// scans until Reset, so a code lingering in the camera frame cannot
// produce repeated check-ins.
type CheckinService struct {
	state   checkinState
	metrics scanObserver
	logger  *zap.Logger
	now     func() time.Time

	mu          sync.Mutex
	coolingDown bool
}

// NewCheckinService constructs the gate.
func NewCheckinService(state checkinState, metrics scanObserver, logger *zap.Logger) *CheckinService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckinService{
		state:   state,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Scan resolves one scanned code. Exactly one ledger append happens on
// success; invalid and duplicate outcomes leave the ledger untouched.
// The scanned code must equal a student's NISN exactly, no
// normalization.
func (s *CheckinService) Scan(ctx context.Context, code string) (*dto.CheckinResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.coolingDown {
		return nil, appErrors.ErrScannerCooldown
	}

	now := s.now()
	today := now.Format(models.DateLayout)

	student, ok := s.state.StudentByNISN(code)
	if !ok {
		s.coolingDown = true
		s.observe(string(dto.CheckinInvalid))
		s.logger.Info("scan rejected", zap.String("reason", "unknown_code"))
		return &dto.CheckinResult{
			Status:  dto.CheckinInvalid,
			Message: "QR Code tidak valid atau siswa tidak terdaftar",
		}, nil
	}

	if existing, found := s.state.AttendanceFor(student.ID, today); found {
		s.coolingDown = true
		s.observe(string(dto.CheckinDuplicate))
		s.logger.Info("scan rejected", zap.String("reason", "already_checked_in"), zap.String("student_id", student.ID))
		return &dto.CheckinResult{
			Status:      dto.CheckinDuplicate,
			Message:     "Siswa sudah melakukan presensi hari ini",
			Student:     &student,
			CheckedInAt: existing.Time,
		}, nil
	}

	attendance := models.Attendance{
		ID:        uuid.NewString(),
		StudentID: student.ID,
		Date:      today,
		Time:      now.Format("15:04:05"),
		Status:    models.AttendanceStatusHadir,
	}
	if err := s.state.AddAttendance(ctx, attendance); err != nil {
		// Ledger unchanged; leave the gate open so the scan can be retried.
		return nil, err
	}

	s.coolingDown = true
	s.observe(string(dto.CheckinSuccess))
	s.logger.Info("student checked in",
		zap.String("student_id", student.ID),
		zap.String("nisn", student.NISN),
		zap.String("date", today),
	)
	return &dto.CheckinResult{
		Status:     dto.CheckinSuccess,
		Message:    "Presensi berhasil dicatat",
		Student:    &student,
		Attendance: &attendance,
	}, nil
}

// Reset returns the gate to its accepting state.
func (s *CheckinService) Reset() {
	s.mu.Lock()
	s.coolingDown = false
	s.mu.Unlock()
}

// CoolingDown reports whether the gate is refusing scans. Frame loops
// consult this before decoding so cooldown frames are skipped entirely.
func (s *CheckinService) CoolingDown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coolingDown
}

func (s *CheckinService) observe(status string) {
	if s.metrics != nil {
		s.metrics.ObserveScan(status)
	}
}
