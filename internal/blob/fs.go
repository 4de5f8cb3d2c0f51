package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPublicPrefix is where the HTTP server mounts a FileStore.
const DefaultPublicPrefix = "/uploads/"

// FileStore keeps objects in a local directory served under a URL prefix.
type FileStore struct {
	root   string
	prefix string
}

// NewFileStore creates root if needed. prefix defaults to DefaultPublicPrefix.
func NewFileStore(root, prefix string) (*FileStore, error) {
	if prefix == "" {
		prefix = DefaultPublicPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &FileStore{root: root, prefix: prefix}, nil
}

// Root is the directory served under the public prefix.
func (s *FileStore) Root() string { return s.root }

func (s *FileStore) Upload(_ context.Context, key, _ string, r io.Reader) (string, error) {
	path, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create object dir: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create object: %w", err)
	}
	defer func() { _ = os.Remove(f.Name()) }()

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	if err := os.Rename(f.Name(), path); err != nil {
		return "", fmt.Errorf("failed to commit object: %w", err)
	}

	return s.prefix + key, nil
}

func (s *FileStore) Delete(_ context.Context, url string) error {
	if !s.Owns(url) {
		return fmt.Errorf("url %q is not in this store", url)
	}
	path, err := s.path(strings.TrimPrefix(url, s.prefix))
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Ping checks that root is still a directory.
func (s *FileStore) Ping(_ context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("upload dir unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("upload dir %s is not a directory", s.root)
	}
	return nil
}

func (s *FileStore) Owns(url string) bool {
	return strings.HasPrefix(url, s.prefix) && len(url) > len(s.prefix)
}

// path maps key into root, rejecting keys that escape it.
func (s *FileStore) path(key string) (string, error) {
	if !fs.ValidPath(key) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}
