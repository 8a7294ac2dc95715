package store

import (
	"context"
	"sync"

	"github.com/voxdj/voxdj/internal/domain/session"
)

// MemoryStore keeps session records in process memory. Records are stored in
// their encoded form so every Load hands out an independent copy.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

// Load returns the user's record, or a fresh default one.
func (s *MemoryStore) Load(_ context.Context, userID string) (*session.Record, error) {
	s.mu.RLock()
	data, ok := s.records[userID]
	s.mu.RUnlock()

	if !ok {
		return session.NewRecord(), nil
	}
	return decodeRecord(data)
}

// Save stores the user's record.
func (s *MemoryStore) Save(_ context.Context, userID string, rec *session.Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.records[userID] = data
	s.mu.Unlock()
	return nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}
