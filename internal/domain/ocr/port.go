package ocr

import (
	"context"
	"errors"
)

// Extractor reads text lines from an encoded JPEG image.
type Extractor interface {
	Extract(ctx context.Context, jpeg []byte) ([]string, error)
}

// ArtifactStore keeps a copy of processed uploads.
type ArtifactStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// ErrInvalidImage indicates the upload could not be decoded as an image.
var ErrInvalidImage = errors.New("invalid image")

// ErrNotConfigured is returned when the deployment has no OCR engine.
var ErrNotConfigured = errors.New("ocr not configured")
