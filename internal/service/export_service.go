package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/presensi-qr-api/internal/dto"
	"github.com/noah-isme/presensi-qr-api/internal/models"
	appErrors "github.com/noah-isme/presensi-qr-api/pkg/errors"
	"github.com/noah-isme/presensi-qr-api/pkg/export"
	"github.com/noah-isme/presensi-qr-api/pkg/jobs"
	"github.com/noah-isme/presensi-qr-api/pkg/storage"
)

type recapBuilder interface {
	Recap(ctx context.Context, req dto.ReportRequest) (*dto.AttendanceRecap, error)
}

type schoolProvider interface {
	School() models.School
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type exportObserver interface {
	ObserveExport(status string)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

type exportJob struct {
	ID        string
	Request   dto.ExportRequest
	Status    dto.ExportStatus
	ResultURL string
	Err       string
	ExpiresAt *time.Time
}

// ExportService renders attendance recaps as downloadable CSV or PDF
// files. Requests are queued and processed by background workers; job
// state lives in memory and download links are short-lived signed URLs.
type ExportService struct {
	reports recapBuilder
	school  schoolProvider
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.DownloadSigner
	metrics exportObserver
	logger  *zap.Logger
	cfg     ExportConfig

	mu   sync.RWMutex
	jobs map[string]*exportJob
}

// NewExportService constructs an ExportService.
func NewExportService(reports recapBuilder, school schoolProvider, store fileStorage, signer *storage.DownloadSigner, metrics exportObserver, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		reports: reports,
		school:  school,
		storage: store,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		jobs:    make(map[string]*exportJob),
	}
}

// Enqueue registers a queued job and pushes it onto the worker queue.
func (s *ExportService) Enqueue(queue *jobs.Queue, req dto.ExportRequest) (*dto.ExportJobResponse, error) {
	if req.Format != dto.ExportFormatCSV && req.Format != dto.ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if _, err := time.Parse(models.DateLayout, req.StartDate); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_date must be formatted as YYYY-MM-DD")
	}
	if _, err := time.Parse(models.DateLayout, req.EndDate); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must be formatted as YYYY-MM-DD")
	}

	job := &exportJob{
		ID:      uuid.NewString(),
		Request: req,
		Status:  dto.ExportStatusQueued,
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	if err := queue.Enqueue(jobs.Job{ID: job.ID}); err != nil {
		s.mu.Lock()
		job.Status = dto.ExportStatusFailed
		job.Err = "queue unavailable"
		s.mu.Unlock()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue export")
	}
	return s.snapshot(job), nil
}

// Status reports job state.
func (s *ExportService) Status(jobID string) (*dto.ExportJobResponse, error) {
	s.mu.RLock()
	job, ok := s.jobs[jobID]
	if !ok {
		s.mu.RUnlock()
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	resp := s.snapshot(job)
	s.mu.RUnlock()
	return resp, nil
}

// HandleJob is the queue handler: it builds the recap, renders the
// requested format and stores the result behind a signed URL.
func (s *ExportService) HandleJob(ctx context.Context, job jobs.Job) error {
	s.mu.Lock()
	record, ok := s.jobs[job.ID]
	if !ok {
		s.mu.Unlock()
		s.logger.Warn("export job unknown, dropping", zap.String("job_id", job.ID))
		return nil
	}
	record.Status = dto.ExportStatusProcessing
	req := record.Request
	s.mu.Unlock()

	result, expiresAt, err := s.generate(ctx, job.ID, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		record.Status = dto.ExportStatusFailed
		record.Err = err.Error()
		s.observe(record.Status)
		return err
	}
	record.Status = dto.ExportStatusFinished
	record.ResultURL = result
	record.ExpiresAt = &expiresAt
	s.observe(record.Status)
	return nil
}

func (s *ExportService) observe(status dto.ExportStatus) {
	if s.metrics != nil {
		s.metrics.ObserveExport(string(status))
	}
}

func (s *ExportService) generate(ctx context.Context, jobID string, req dto.ExportRequest) (string, time.Time, error) {
	recap, err := s.reports.Recap(ctx, dto.ReportRequest{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		ClassName: req.ClassName,
	})
	if err != nil {
		return "", time.Time{}, err
	}

	dataset, title := s.buildDataset(recap)

	var payload []byte
	switch req.Format {
	case dto.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case dto.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", req.Format)
	}
	if err != nil {
		return "", time.Time{}, err
	}

	filename := s.buildFilename(req)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return "", time.Time{}, err
	}

	token, expiresAt, err := s.signer.Sign(jobID, relPath)
	if err != nil {
		return "", time.Time{}, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return fmt.Sprintf("%s/exports/download/%s", prefix, token), expiresAt, nil
}

// VerifyToken validates a download token and returns its claims.
func (s *ExportService) VerifyToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Verify(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Cleanup removes files older than ttl (defaults to ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) snapshot(job *exportJob) *dto.ExportJobResponse {
	return &dto.ExportJobResponse{
		ID:        job.ID,
		Status:    job.Status,
		ResultURL: job.ResultURL,
		Error:     job.Err,
		ExpiresAt: job.ExpiresAt,
	}
}

func (s *ExportService) buildDataset(recap *dto.AttendanceRecap) (export.Dataset, string) {
	school := s.school.School()

	scope := recap.ClassName
	if scope == "" {
		scope = "Semua Kelas"
	}
	preamble := [][]string{
		{"Rekap Kehadiran Siswa"},
		{school.Name, "NPSN " + school.NPSN},
		{"Tahun Ajaran " + school.Year, "Semester " + school.Semester},
		{"Periode", recap.StartDate + " s.d. " + recap.EndDate, scope},
		{},
	}

	headers := []string{"No", "NISN", "Nama", "Kelas", "Hadir", "Sakit", "Izin", "Alpha", "Persentase"}
	rows := make([]map[string]string, 0, len(recap.Rows)+1)
	for i, r := range recap.Rows {
		rows = append(rows, map[string]string{
			"No":         strconv.Itoa(i + 1),
			"NISN":       r.NISN,
			"Nama":       r.Name,
			"Kelas":      r.ClassName,
			"Hadir":      strconv.Itoa(r.Hadir),
			"Sakit":      strconv.Itoa(r.Sakit),
			"Izin":       strconv.Itoa(r.Izin),
			"Alpha":      strconv.Itoa(r.Alpha),
			"Persentase": r.PercentageLabel + "%",
		})
	}
	rows = append(rows, map[string]string{
		"Nama":       "Total",
		"Kelas":      fmt.Sprintf("%d siswa, %d hari", recap.Summary.TotalStudents, recap.Summary.TotalDays),
		"Hadir":      strconv.Itoa(recap.Summary.Hadir),
		"Sakit":      strconv.Itoa(recap.Summary.Sakit),
		"Izin":       strconv.Itoa(recap.Summary.Izin),
		"Alpha":      strconv.Itoa(recap.Summary.Alpha),
		"Persentase": recap.Summary.AvgPercentageLabel + "%",
	})

	title := fmt.Sprintf("Rekap Kehadiran %s - %s", recap.StartDate, recap.EndDate)
	return export.Dataset{Preamble: preamble, Headers: headers, Rows: rows}, title
}

func (s *ExportService) buildFilename(req dto.ExportRequest) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	scope := sanitizeFilename(req.ClassName)
	return fmt.Sprintf("rekap_%s_%s_%s_%s.%s", req.StartDate, req.EndDate, scope, timestamp, req.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "semua"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
