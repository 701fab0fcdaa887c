// Package storage keeps leave attachments on the local filesystem.
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

	"github.com/frahmantamala/leave-management/internal"
	"github.com/google/uuid"
)

// URLPrefix is where the router serves stored files.
const URLPrefix = "/uploads/"

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

var (
	ErrUnsupportedType = internal.NewValidationError("attachment must be a pdf, png or jpeg file", internal.ErrCodeInvalidAttachment)
	ErrTooLarge        = internal.NewValidationError("attachment exceeds the upload limit", internal.ErrCodeInvalidAttachment)
	ErrEmptyFile       = internal.NewValidationError("attachment is empty", internal.ErrCodeInvalidAttachment)
)

type Local struct {
	dir      string
	maxBytes int64
}

func NewLocal(cfg internal.StorageConfig) (*Local, error) {
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: cfg.UploadDir, maxBytes: cfg.MaxUploadBytes}, nil
}

func (l *Local) Dir() string {
	return l.dir
}

// Save writes r under a random name keeping the original extension and
// returns the public URL.
func (l *Local) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedType
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.New().String() + ext
	full := filepath.Join(l.dir, name)

	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create attachment: %w", err)
	}

	n, err := io.Copy(f, io.LimitReader(r, l.maxBytes+1))
	closeErr := f.Close()
	switch {
	case err != nil:
		_ = os.Remove(full)
		return "", fmt.Errorf("write attachment: %w", err)
	case closeErr != nil:
		_ = os.Remove(full)
		return "", fmt.Errorf("close attachment: %w", closeErr)
	case n == 0:
		_ = os.Remove(full)
		return "", ErrEmptyFile
	case n > l.maxBytes:
		_ = os.Remove(full)
		return "", ErrTooLarge
	}

	return URLPrefix + name, nil
}

// Remove deletes a file previously returned by Save. Missing files are ignored.
func (l *Local) Remove(_ context.Context, url string) error {
	if !strings.HasPrefix(url, URLPrefix) {
		return fmt.Errorf("not a stored attachment: %s", url)
	}
	name := path.Base(strings.TrimPrefix(url, URLPrefix))
	if name == "." || name == "/" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid attachment name: %s", url)
	}

	err := os.Remove(filepath.Join(l.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
