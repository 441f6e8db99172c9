package db

import (
	"context"
	"regexp"
	"testing"
	"time"

	"klaso-client/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exportColumns = []string{"id", "report_type", "title", "created_by", "s3_path", "status", "error_message", "created_at", "updated_at"}

func TestInsertExport(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	export := &model.ReportExport{
		ID: "x1", ReportType: model.ReportTypeClassSummary, Title: "6A",
		CreatedBy: "u1", Status: model.ExportStatusPending, CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_exports")).
		WithArgs("x1", model.ReportTypeClassSummary, "6A", model.ID("u1"), model.ExportStatusPending, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewRepository(conn).InsertExport(context.Background(), export))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateExportStatus(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	path := "exports/x1.xlsx"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE report_exports SET status = ?")).
		WithArgs(model.ExportStatusDone, &path, nil, "x1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewRepository(conn).UpdateExportStatus(context.Background(), "x1", model.ExportStatusDone, &path, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetExport(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM report_exports WHERE id = ?")).
		WithArgs("x1").
		WillReturnRows(sqlmock.NewRows(exportColumns).
			AddRow("x1", "student_bulletin", "Ada", "u1", "exports/x1.xlsx", "DONE", nil, now, now))

	mock.ExpectQuery(regexp.QuoteMeta("FROM report_exports WHERE id = ?")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(exportColumns))

	repo := NewRepository(conn)

	export, err := repo.GetExport(context.Background(), "x1")
	require.NoError(t, err)
	assert.Equal(t, model.ExportStatusDone, export.Status)
	assert.Equal(t, model.ReportTypeStudentBulletin, export.ReportType)
	require.NotNil(t, export.S3Path)
	assert.Equal(t, "exports/x1.xlsx", *export.S3Path)
	assert.Nil(t, export.ErrorMessage)

	_, err = repo.GetExport(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrExportNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListExports(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE created_by = ? ORDER BY created_at DESC LIMIT ?")).
		WithArgs(model.ID("u1"), 10).
		WillReturnRows(sqlmock.NewRows(exportColumns).
			AddRow("x2", "class_summary", "6A", "u1", nil, "PENDING", nil, now, now).
			AddRow("x1", "class_summary", "6A", "u1", nil, "FAILED", "boom", now, now))

	exports, err := NewRepository(conn).ListExports(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, exports, 2)
	assert.Equal(t, "x2", exports[0].ID)
	require.NotNil(t, exports[1].ErrorMessage)
	assert.Equal(t, "boom", *exports[1].ErrorMessage)
	assert.NoError(t, mock.ExpectationsWereMet())
}
