package storage

import (
	"context"
	"io"
)

// Storage keeps exported report workbooks.
type Storage interface {
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Upload(ctx context.Context, key string, data io.ReadSeeker, contentType string) error
	Delete(ctx context.Context, key string) error
}

const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
