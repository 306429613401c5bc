package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DiskStorage keeps uploads on the local filesystem and exposes them under
// a public URL prefix served by the HTTP layer.
type DiskStorage struct {
	Dir       string
	PublicURL string
	MaxBytes  int64
}

// NewDiskStorage creates the upload directory if needed. maxBytes <= 0
// falls back to DefaultMaxImageBytes.
func NewDiskStorage(dir, publicURL string, maxBytes int64) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	return &DiskStorage{Dir: dir, PublicURL: strings.TrimRight(publicURL, "/"), MaxBytes: maxBytes}, nil
}

// Upload writes the object under a random name and returns its public URL.
// The declared size is not trusted: a body that turns out to exceed the
// ceiling is discarded and the upload fails, never leaving a truncated
// object behind a published URL.
func (s *DiskStorage) Upload(ctx context.Context, contentType string, size int64, r io.Reader) (string, error) {
	if err := ValidateImage(contentType, size, s.MaxBytes); err != nil {
		return "", err
	}

	name := uuid.New().String() + allowedImageTypes[contentType]
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create object: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.LimitReader(r, s.MaxBytes+1))
	if err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if written > s.MaxBytes {
		os.Remove(dst.Name())
		return "", ErrFileTooLarge
	}

	return s.PublicURL + "/" + name, nil
}

// Remove deletes the object behind the URL. The object name is the URL tail.
func (s *DiskStorage) Remove(ctx context.Context, url string) error {
	name := path.Base(url)
	if name == "" || name == "." || name == "/" || strings.Contains(name, "..") {
		return errors.New("invalid image URL")
	}
	if err := os.Remove(filepath.Join(s.Dir, name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("object not found: %s", name)
		}
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}
