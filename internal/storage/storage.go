// Package storage saves rendered receipts on disk or in Google Cloud Storage.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store persists named artefacts and returns where they were written.
type Store interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// Local writes artefacts into a directory.
type Local struct {
	Dir string
}

// NewLocal returns a Local store rooted at dir, defaulting to tmp/recibos
// under the system temp directory.
func NewLocal(dir string) *Local {
	if strings.TrimSpace(dir) == "" {
		dir = filepath.Join(os.TempDir(), "recibos")
	}
	return &Local{Dir: dir}
}

// Save writes data to Dir/name and returns the file path.
func (l *Local) Save(_ context.Context, name string, data []byte) (string, error) {
	clean, err := cleanName(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: mkdir %s: %w", l.Dir, err)
	}
	path := filepath.Join(l.Dir, clean)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write %s: %w", path, err)
	}
	return path, nil
}

// cleanName rejects names that would escape the store root.
func cleanName(name string) (string, error) {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) || base == "" || base == ".." {
		return "", fmt.Errorf("storage: invalid object name %q", name)
	}
	return base, nil
}
