package db

import (
	"context"
	"database/sql"
	"fmt"

	"klaso-client/internal/config"

	_ "github.com/go-sql-driver/mysql"
)

func NewConnection(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DatabaseDSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.Database.ConnectionLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

const schema = `CREATE TABLE IF NOT EXISTS report_exports (
	id            CHAR(36)     NOT NULL PRIMARY KEY,
	report_type   VARCHAR(32)  NOT NULL,
	title         VARCHAR(200) NOT NULL,
	created_by    VARCHAR(64)  NOT NULL,
	s3_path       VARCHAR(512) NULL,
	status        VARCHAR(16)  NOT NULL,
	error_message TEXT         NULL,
	created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
	INDEX idx_report_exports_created_by (created_by)
)`

// EnsureSchema creates the export ledger table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create report_exports: %w", err)
	}
	return nil
}
