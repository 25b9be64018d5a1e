package store

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/rajasatyajit/bousai/internal/models"
)

// MemoryStore implements Store in process memory
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]models.UserRecord
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]models.UserRecord)}
}

func (s *MemoryStore) Get(ctx context.Context, userID string) (models.UserRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.users[userID]
	return rec, ok, nil
}

func (s *MemoryStore) Put(ctx context.Context, userID string, rec models.UserRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users[userID] = rec
	return nil
}

// Health always returns nil for in-memory store
func (s *MemoryStore) Health(ctx context.Context) error {
	return nil
}

// Len returns the number of registered users
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// Flush writes the whole registry to w in the users.json layout
func (s *MemoryStore) Flush(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return encodeUsers(w, s.users)
}

// snapshot copies the registry with userID set to rec
func (s *MemoryStore) snapshot(userID string, rec models.UserRecord) map[string]models.UserRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.UserRecord, len(s.users)+1)
	for id, r := range s.users {
		out[id] = r
	}
	out[userID] = rec
	return out
}

func encodeUsers(w io.Writer, users map[string]models.UserRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(users)
}

