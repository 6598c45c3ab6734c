package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotConfigured is returned by Disabled for every write.
var ErrNotConfigured = errors.New("object storage is not configured")

type PutResult struct {
	Key      string
	Location string
	ETag     string
}

// ObjectStore persists export bundles under slash-separated keys.
type ObjectStore interface {
	Put(ctx context.Context, key string, contentType string, body io.Reader) (*PutResult, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// Disabled stands in when no bucket is configured.
type Disabled struct{}

func (Disabled) Put(context.Context, string, string, io.Reader) (*PutResult, error) {
	return nil, ErrNotConfigured
}

func (Disabled) Delete(context.Context, string) error { return ErrNotConfigured }

func (Disabled) PublicURL(string) string { return "" }
