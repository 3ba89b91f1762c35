package state

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore persists fingerprints as small files under a state directory,
// one subdirectory per entity kind and one file per entity.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed fingerprint store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(kind, key string) string {
	return filepath.Join(s.dir, kind, key+".sum")
}

// Load returns the stored fingerprint for the entity.
func (s *FileStore) Load(_ context.Context, kind, key string) (string, bool, error) {
	raw, err := os.ReadFile(s.path(kind, key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read fingerprint %s/%s: %w", kind, key, err)
	}
	return strings.TrimSpace(string(raw)), true, nil
}

// Save records the fingerprint, creating the kind directory on demand.
func (s *FileStore) Save(_ context.Context, kind, key, fingerprint string) error {
	if err := os.MkdirAll(filepath.Join(s.dir, kind), 0o755); err != nil {
		return fmt.Errorf("failed to create state dir for %s: %w", kind, err)
	}
	if err := os.WriteFile(s.path(kind, key), []byte(fingerprint+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write fingerprint %s/%s: %w", kind, key, err)
	}
	return nil
}

// Delete removes the fingerprint record. Deleting an absent record is not
// an error.
func (s *FileStore) Delete(_ context.Context, kind, key string) error {
	err := os.Remove(s.path(kind, key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete fingerprint %s/%s: %w", kind, key, err)
	}
	return nil
}

// List enumerates stored fingerprints for one entity kind.
func (s *FileStore) List(ctx context.Context, kind string) (map[string]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.dir, kind))
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list fingerprints for %s: %w", kind, err)
	}

	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sum") {
			continue
		}
		key := strings.TrimSuffix(name, ".sum")

		sum, ok, err := s.Load(ctx, kind, key)
		if err != nil {
			return nil, err
		}
		if ok {
			out[key] = sum
		}
	}
	return out, nil
}
