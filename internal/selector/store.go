// internal/selector/store.go
package selector

import (
	"context"
	"sync"
	"time"
)

// Store is the external key-value state the selector persists its
// distribution state into. Selection runs are one-shot per request, so
// counters and usage maps must outlive the process.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key string, value string, ttl time.Duration) error
}

// State TTLs. Counters and per-session usage are short-lived distribution
// state; performance metrics accumulate over a longer window.
const (
	CounterTTL = 24 * time.Hour
	UsageTTL   = 24 * time.Hour
	MetricsTTL = 7 * 24 * time.Hour
)

// MemoryStore is an in-process Store with per-key expiry. It backs tests and
// local runs without a database.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.entries, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}
