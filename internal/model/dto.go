package model

import (
	"encoding/json"
	"time"
)

// Envelope wraps every backend response.
type Envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type ExportStatus string

const (
	ExportStatusPending ExportStatus = "PENDING"
	ExportStatusDone    ExportStatus = "DONE"
	ExportStatusFailed  ExportStatus = "FAILED"
)

// ReportExport is one row of the export ledger.
type ReportExport struct {
	ID           string       `json:"id" db:"id"`
	ReportType   ReportType   `json:"report_type" db:"report_type"`
	Title        string       `json:"title" db:"title"`
	CreatedBy    ID           `json:"created_by" db:"created_by"`
	S3Path       *string      `json:"s3_path,omitempty" db:"s3_path"`
	Status       ExportStatus `json:"status" db:"status"`
	ErrorMessage *string      `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}

// ExportJob is the queue message; the report is already assembled.
type ExportJob struct {
	ExportID string      `json:"export_id"`
	Report   SavedReport `json:"report"`
}

type ExportRequest struct {
	Type        ReportType `json:"type" validate:"required,oneof=student_bulletin class_summary"`
	Title       string     `json:"title" validate:"max=200"`
	Period      string     `json:"period" validate:"max=50"`
	StudentID   ID         `json:"student_id" validate:"required_if=Type student_bulletin"`
	ClassroomID ID         `json:"classroom_id" validate:"required_if=Type class_summary"`
}

type ExportStatusResponse struct {
	ID        string       `json:"id"`
	Status    ExportStatus `json:"status"`
	S3Path    string       `json:"s3_path,omitempty"`
	Error     string       `json:"error,omitempty"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type ImportResponse struct {
	Created int      `json:"created"`
	Total   int      `json:"total"`
	Errors  []string `json:"errors,omitempty"`
}
