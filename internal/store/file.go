package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	apperrors "github.com/rajasatyajit/bousai/internal/errors"
	"github.com/rajasatyajit/bousai/internal/logger"
	"github.com/rajasatyajit/bousai/internal/models"
)

// FileStore keeps the registry in a JSON document that is fully rewritten on
// every Put
type FileStore struct {
	path string

	mu  sync.Mutex
	mem *MemoryStore
}

// NewFileStore loads path if it exists. A missing file is an empty registry.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, mem: NewMemoryStore()}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, apperrors.StoreError{Backend: "file", Operation: "load", Err: err}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return s, nil
	}

	if err := json.Unmarshal(data, &s.mem.users); err != nil {
		return nil, apperrors.StoreError{Backend: "file", Operation: "load", Err: fmt.Errorf("decode %s: %w", path, err)}
	}
	if s.mem.users == nil {
		s.mem.users = make(map[string]models.UserRecord)
	}

	logger.Debug("User registry loaded", "path", path, "users", s.mem.Len())
	return s, nil
}

func (s *FileStore) Get(ctx context.Context, userID string) (models.UserRecord, bool, error) {
	return s.mem.Get(ctx, userID)
}

// Put rewrites the whole file with the user recorded. Memory only changes
// once the file is written, so a failed write leaves both untouched.
func (s *FileStore) Put(ctx context.Context, userID string, rec models.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.write(s.mem.snapshot(userID, rec)); err != nil {
		return apperrors.StoreError{Backend: "file", Operation: "put", Err: err}
	}
	return s.mem.Put(ctx, userID, rec)
}

// Health checks the registry directory is still there
func (s *FileStore) Health(ctx context.Context) error {
	dir := filepath.Dir(s.path)
	if _, err := os.Stat(dir); err != nil {
		return apperrors.StoreError{Backend: "file", Operation: "health", Err: err}
	}
	return nil
}

// write replaces the file via a temp file in the same directory
func (s *FileStore) write(users map[string]models.UserRecord) error {
	var buf bytes.Buffer
	if err := encodeUsers(&buf, users); err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".users-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	return os.Rename(tmp.Name(), s.path)
}
