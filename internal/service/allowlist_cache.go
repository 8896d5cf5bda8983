package service

import (
	"context"
	"sync"
	"time"
)

// AllowlistCacheStore memoizes allow-list membership lookups.
type AllowlistCacheStore interface {
	Get(ctx context.Context, email string) (allowed bool, found bool, err error)
	Set(ctx context.Context, email string, allowed bool, ttl time.Duration) error
}

type NoopAllowlistCacheStore struct{}

func NewNoopAllowlistCacheStore() *NoopAllowlistCacheStore {
	return &NoopAllowlistCacheStore{}
}

func (s *NoopAllowlistCacheStore) Get(context.Context, string) (bool, bool, error) {
	return false, false, nil
}

func (s *NoopAllowlistCacheStore) Set(context.Context, string, bool, time.Duration) error {
	return nil
}

type allowlistCacheEntry struct {
	allowed   bool
	expiresAt time.Time
}

type InMemoryAllowlistCacheStore struct {
	mu      sync.RWMutex
	entries map[string]allowlistCacheEntry
}

func NewInMemoryAllowlistCacheStore() *InMemoryAllowlistCacheStore {
	return &InMemoryAllowlistCacheStore{entries: map[string]allowlistCacheEntry{}}
}

func (s *InMemoryAllowlistCacheStore) Get(_ context.Context, email string) (bool, bool, error) {
	now := time.Now().UTC()
	s.mu.RLock()
	entry, ok := s.entries[email]
	s.mu.RUnlock()
	if !ok {
		return false, false, nil
	}
	if now.After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, email)
		s.mu.Unlock()
		return false, false, nil
	}
	return entry.allowed, true, nil
}

func (s *InMemoryAllowlistCacheStore) Set(_ context.Context, email string, allowed bool, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	s.entries[email] = allowlistCacheEntry{allowed: allowed, expiresAt: time.Now().UTC().Add(ttl)}
	s.mu.Unlock()
	return nil
}
