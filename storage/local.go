package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore writes uploads into a directory served statically under urlPrefix.
type LocalStore struct {
	dir       string
	urlPrefix string
	baseURL   string
}

// NewLocalStore creates dir if needed.
func NewLocalStore(dir, urlPrefix, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, urlPrefix: urlPrefix, baseURL: baseURL}, nil
}

// Dir is the directory holding the uploaded files.
func (s *LocalStore) Dir() string { return s.dir }

// Save writes r to dir/name in one pass; a partially written file is removed.
func (s *LocalStore) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	dst := filepath.Join(s.dir, name)

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return publicPath(s.urlPrefix, name), nil
}

// Delete removes dir/name, tolerating a file that is already gone.
func (s *LocalStore) Delete(_ context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// URL prefixes publicPath with the configured public base URL.
func (s *LocalStore) URL(publicPath string) string {
	return joinURL(s.baseURL, publicPath)
}
