// Package storage persists uploaded files and removes them again.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/aridlab/labsite/config"
)

// ErrInvalidName is returned for object names that are not a single path element.
var ErrInvalidName = errors.New("storage: invalid object name")

// Store saves and deletes uploaded objects addressed by a generated filename.
type Store interface {
	// Save writes r under name and returns the public path recorded in the database.
	Save(ctx context.Context, name string, r io.Reader) (publicPath string, err error)
	// Delete removes name; a missing object is not an error.
	Delete(ctx context.Context, name string) error
	// URL turns a stored public path into an absolute URL when a base URL is configured.
	URL(publicPath string) string
}

// New builds the store selected by cfg.StorageDriver.
func New(ctx context.Context, cfg config.AppConfig) (Store, error) {
	switch cfg.StorageDriver {
	case "local", "":
		return NewLocalStore(cfg.UploadDir, cfg.UploadURLPrefix, cfg.PublicBaseURL)
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

// NewFilename generates a collision-free filename keeping the extension of original.
func NewFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(original)))
	if len(ext) > 16 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return uuid.NewString() + ext
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	return nil
}

func joinURL(base, p string) string {
	if base == "" {
		return p
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(p, "/")
}

func publicPath(prefix, name string) string {
	return path.Join("/", prefix, name)
}
