// Package storage keeps captured agent test output outside the database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var (
	// ErrFileNotFound is returned when nothing is stored under a path.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidPath is returned for empty, absolute or escaping paths.
	ErrInvalidPath = errors.New("invalid path")
)

// BlobStorage stores opaque blobs under slash-separated relative paths.
type BlobStorage interface {
	Upload(ctx context.Context, path string, reader io.Reader) error
	Download(ctx context.Context, path string) (io.ReadCloser, error)
	Exists(ctx context.Context, path string) (bool, error)
}

// Config selects and configures a BlobStorage implementation.
type Config struct {
	// Type is "local" or "s3".
	Type    string
	BaseDir string
	S3      S3Config
}

// NewBlobStorage builds the storage described by cfg.
func NewBlobStorage(cfg Config) (BlobStorage, error) {
	switch strings.ToLower(cfg.Type) {
	case "local":
		return NewLocalStorage(cfg.BaseDir)
	case "s3":
		s, err := NewS3Storage(context.Background(), cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %q", cfg.Type)
	}
}

// cleanKey validates path and returns it in slash form.
func cleanKey(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: path cannot be empty", ErrInvalidPath)
	}
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return "", fmt.Errorf("%w: absolute paths not allowed", ErrInvalidPath)
	}
	clean := filepath.ToSlash(filepath.Clean(path))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: path traversal detected", ErrInvalidPath)
	}
	return clean, nil
}
