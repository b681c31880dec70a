package dto

import "time"

// ExportFormat selects the rendered output.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportStatus tracks a queued export job.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "queued"
	ExportStatusProcessing ExportStatus = "processing"
	ExportStatusFinished   ExportStatus = "finished"
	ExportStatusFailed     ExportStatus = "failed"
)

// ExportRequest asks for a recap rendered as CSV or PDF.
type ExportRequest struct {
	Format    ExportFormat `json:"format" binding:"required"`
	StartDate string       `json:"start_date" binding:"required"`
	EndDate   string       `json:"end_date" binding:"required"`
	ClassName string       `json:"class_name"`
}

// ExportJobResponse reports job state to clients.
type ExportJobResponse struct {
	ID        string       `json:"id"`
	Status    ExportStatus `json:"status"`
	ResultURL string       `json:"result_url,omitempty"`
	Error     string       `json:"error,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
}
