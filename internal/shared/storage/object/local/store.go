package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bootstrappedbetas/EOB-explainer/internal/shared/storage/object"
	"github.com/bootstrappedbetas/EOB-explainer/internal/shared/telemetry"
	"github.com/bootstrappedbetas/EOB-explainer/internal/shared/util"
)

// Store implements object.Store using the local filesystem.
type Store struct {
	baseDir string
}

// New creates a local store rooted at baseDir, creating the directory if absent.
func New(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Save writes the payload to disk as "<timestamp>-<sanitized-name>".
func (s *Store) Save(ctx context.Context, userID string, fileName string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	_ = userID // local paths are not namespaced by user

	sanitized, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), sanitized)
	fullPath := filepath.Join(s.baseDir, name)
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return name, nil
}

// Open reads a stored payload.
func (s *Store) Open(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean := filepath.Clean(path)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("invalid storage path")
	}

	data, err := os.ReadFile(filepath.Join(s.baseDir, clean))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, object.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Delete removes a stored payload. An already-absent file counts as success;
// any other I/O error is logged and reported as failure.
func (s *Store) Delete(ctx context.Context, path string) bool {
	if err := ctx.Err(); err != nil {
		return false
	}

	clean := filepath.Clean(path)
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return false
	}

	err := os.Remove(filepath.Join(s.baseDir, clean))
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return true
	}
	telemetry.Warn("storage.delete_failed", map[string]any{"path": clean, "error": err.Error()})
	return false
}

var _ object.Store = (*Store)(nil)
