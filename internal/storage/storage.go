package storage

import (
	"context"
	"errors"
	"io"
)

// DefaultMaxImageBytes is the upload size ceiling used when no limit is
// configured
const DefaultMaxImageBytes = 5 * 1024 * 1024

// Validation errors for product image uploads
var (
	ErrUnsupportedType = errors.New("unsupported file type, use JPEG, PNG or WebP")
	ErrFileTooLarge    = errors.New("file too large")
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ObjectStorage stores uploaded product images and serves them by public URL
type ObjectStorage interface {
	// Upload stores the object and returns its public URL
	Upload(ctx context.Context, contentType string, size int64, r io.Reader) (string, error)
	// Remove deletes the object behind a previously returned URL
	Remove(ctx context.Context, url string) error
}

// ValidateImage checks an upload's declared content type and size against
// the configured ceiling before it is handed to the object storage
func ValidateImage(contentType string, size, maxBytes int64) error {
	if _, ok := allowedImageTypes[contentType]; !ok {
		return ErrUnsupportedType
	}
	if size > maxBytes {
		return ErrFileTooLarge
	}
	return nil
}
