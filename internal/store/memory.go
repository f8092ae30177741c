package store

import (
	"context"
	"sync"
	"time"

	"github.com/currentspace/mychat-api/internal/models"
)

// MemoryStore is the in-process fallback used when no DATABASE_URL is
// configured, and the backend of choice in tests. Same TTL semantics as the
// Postgres store, enforced lazily on read.
type MemoryStore struct {
	mu      sync.Mutex
	data    map[string]memoryEntry
	nowFunc func() time.Time
}

type memoryEntry struct {
	messages  []models.ChatMessage
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:    make(map[string]memoryEntry),
		nowFunc: time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) ([]models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[sessionID]
	if !ok {
		return nil, nil
	}
	if s.nowFunc().After(e.expiresAt) {
		delete(s.data, sessionID)
		return nil, nil
	}
	out := make([]models.ChatMessage, len(e.messages))
	copy(out, e.messages)
	return out, nil
}

func (s *MemoryStore) Put(_ context.Context, sessionID string, messages []models.ChatMessage, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := make([]models.ChatMessage, len(messages))
	copy(msgs, messages)
	s.data[sessionID] = memoryEntry{
		messages:  msgs,
		expiresAt: s.nowFunc().Add(ttl),
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }
