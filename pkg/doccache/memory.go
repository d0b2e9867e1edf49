package doccache

import (
	"context"
	"sync"
	"time"
)

// ensure memoryStore implements Store
var _ Store = (*memoryStore)(nil)

type entry struct {
	body      []byte
	expiresAt time.Time
}

type memoryStore struct {
	mu  sync.RWMutex
	m   map[string]entry
	now func() time.Time
}

// NewMemory returns an in-process Store. It keeps single-binary
// deployments and tests independent of redis.
func NewMemory() Store {
	return &memoryStore{
		m:   make(map[string]entry),
		now: time.Now,
	}
}

func (s *memoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	e, ok := s.m[key]
	s.mu.RUnlock()

	if !ok || s.now().After(e.expiresAt) {
		return nil, false, nil
	}
	return e.body, true, nil
}

func (s *memoryStore) SetWithTTL(_ context.Context, key string, body []byte, ttl time.Duration) error {
	copied := make([]byte, len(body))
	copy(copied, body)

	s.mu.Lock()
	s.m[key] = entry{body: copied, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	s.m = make(map[string]entry)
	s.mu.Unlock()
	return nil
}
