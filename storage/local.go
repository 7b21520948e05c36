// Package storage keeps generated and uploaded files on the local filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrInvalidName is returned for names that would escape the base directory.
var ErrInvalidName = errors.New("invalid file name")

// FileInfo describes a stored file.
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Local stores files under a base directory and exposes them under a URL prefix.
type Local struct {
	basePath string
	baseURL  string
}

// NewLocal creates the base directory if needed.
func NewLocal(basePath, baseURL string) (*Local, error) {
	if basePath == "" {
		return nil, errors.New("storage base path is empty")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &Local{basePath: basePath, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// BasePath returns the directory files are written to.
func (s *Local) BasePath() string { return s.basePath }

func (s *Local) fullPath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.basePath, name), nil
}

// Save writes r to name. A partially written file is removed on failure.
func (s *Local) Save(ctx context.Context, name string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.fullPath(name)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

// Open returns a reader for name.
func (s *Local) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	full, err := s.fullPath(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// ReadFile returns the content of name.
func (s *Local) ReadFile(ctx context.Context, name string) ([]byte, error) {
	full, err := s.fullPath(name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}

// Delete removes name. Missing files are not an error.
func (s *Local) Delete(ctx context.Context, name string) error {
	full, err := s.fullPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists reports whether name is present.
func (s *Local) Exists(ctx context.Context, name string) (bool, error) {
	full, err := s.fullPath(name)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Path returns the filesystem path of name.
func (s *Local) Path(name string) (string, error) {
	return s.fullPath(name)
}

// URL returns the public URL path of name.
func (s *Local) URL(name string) string {
	return path.Join("/", s.baseURL, name)
}

// List returns the regular files in the base directory, sorted by name.
func (s *Local) List(ctx context.Context) ([]FileInfo, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}
