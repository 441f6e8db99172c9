package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"klaso-client/internal/model"
)

var ErrExportNotFound = errors.New("export not found")

// Repository is the report-export ledger.
type Repository interface {
	InsertExport(ctx context.Context, export *model.ReportExport) error
	UpdateExportStatus(ctx context.Context, id string, status model.ExportStatus, s3Path, errorMessage *string) error
	GetExport(ctx context.Context, id string) (*model.ReportExport, error)
	ListExports(ctx context.Context, createdBy model.ID, limit int) ([]model.ReportExport, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) InsertExport(ctx context.Context, export *model.ReportExport) error {
	query := `INSERT INTO report_exports (id, report_type, title, created_by, status, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, export.ID, export.ReportType, export.Title,
		export.CreatedBy, export.Status, export.CreatedAt, export.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert export %s: %w", export.ID, err)
	}
	return nil
}

func (r *repository) UpdateExportStatus(ctx context.Context, id string, status model.ExportStatus, s3Path, errorMessage *string) error {
	query := `UPDATE report_exports SET status = ?, s3_path = COALESCE(?, s3_path), error_message = ?, updated_at = NOW() WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, status, s3Path, errorMessage, id); err != nil {
		return fmt.Errorf("failed to update export %s: %w", id, err)
	}
	return nil
}

func (r *repository) GetExport(ctx context.Context, id string) (*model.ReportExport, error) {
	query := `SELECT id, report_type, title, created_by, s3_path, status, error_message, created_at, updated_at
			  FROM report_exports WHERE id = ?`

	var export model.ReportExport
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&export.ID, &export.ReportType, &export.Title, &export.CreatedBy, &export.S3Path,
		&export.Status, &export.ErrorMessage, &export.CreatedAt, &export.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrExportNotFound
	}
	if err != nil {
		return nil, err
	}

	return &export, nil
}

func (r *repository) ListExports(ctx context.Context, createdBy model.ID, limit int) ([]model.ReportExport, error) {
	query := `SELECT id, report_type, title, created_by, s3_path, status, error_message, created_at, updated_at
			  FROM report_exports WHERE created_by = ? ORDER BY created_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, createdBy, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exports := []model.ReportExport{}
	for rows.Next() {
		var export model.ReportExport
		err := rows.Scan(&export.ID, &export.ReportType, &export.Title, &export.CreatedBy, &export.S3Path,
			&export.Status, &export.ErrorMessage, &export.CreatedAt, &export.UpdatedAt)
		if err != nil {
			return nil, err
		}
		exports = append(exports, export)
	}

	return exports, rows.Err()
}
