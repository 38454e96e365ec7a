package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ArtifactStore persists rendered PDFs and returns the URL they are served
// from.
type ArtifactStore interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// FileStore writes artifacts to a local directory served as static files.
type FileStore struct {
	dir     string
	baseURL string
}

// NewFileStore constructs a store rooted at dir. baseURL is the public path
// prefix the directory is mounted under.
func NewFileStore(dir, baseURL string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &FileStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the directory artifacts are written to.
func (s *FileStore) Dir() string {
	return s.dir
}

// Save writes one artifact. name must be a bare file name.
func (s *FileStore) Save(_ context.Context, name string, data []byte) (string, error) {
	name = filepath.Base(name)
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return s.baseURL + "/" + name, nil
}
