package weatherstore

import (
	"context"
	"sync"
	"time"

	"github.com/yanqian/packwise/internal/domain/weather"
)

type entryRecord struct {
	payload   weather.Entry
	expiresAt time.Time
}

// MemoryStore keeps weather summaries in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]entryRecord
	now     func() time.Time
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entryRecord),
		now:     time.Now,
	}
}

// Get implements weather.Store. Expired entries are removed on read.
func (s *MemoryStore) Get(_ context.Context, key string) (weather.Entry, bool, error) {
	s.mu.RLock()
	record, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return weather.Entry{}, false, nil
	}
	if s.hasExpired(record.expiresAt) {
		s.mu.Lock()
		if current, still := s.entries[key]; still && current.expiresAt.Equal(record.expiresAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return weather.Entry{}, false, nil
	}
	return record.payload, true, nil
}

// Put caches the entry with optional TTL.
func (s *MemoryStore) Put(_ context.Context, key string, entry weather.Entry, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.entries[key] = entryRecord{
		payload:   entry,
		expiresAt: exp,
	}
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(s.now())
}

var _ weather.Store = (*MemoryStore)(nil)
