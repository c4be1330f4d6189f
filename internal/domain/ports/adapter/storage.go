package adapter

import (
	"context"
	"io"
)

// StoredObject describes a file after upload.
type StoredObject struct {
	Key  string
	URL  string
	Size int64
}

// ObjectStorage keeps uploaded files outside the database.
type ObjectStorage interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (*StoredObject, error)
	Delete(ctx context.Context, key string) error
}
