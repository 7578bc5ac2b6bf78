package blacklist

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of the BlacklistRepository interface
type MemoryStore struct {
	domains map[string]struct{}
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewMemoryStore creates a new in-memory store seeded with domains
func NewMemoryStore(logger *zap.Logger, seed ...string) *MemoryStore {
	store := &MemoryStore{
		domains: make(map[string]struct{}, len(seed)),
		logger:  logger,
	}
	for _, domain := range seed {
		store.domains[strings.ToLower(domain)] = struct{}{}
	}

	logger.Info("Initialized in-memory blacklist store", zap.Int("domains", len(store.domains)))
	return store
}

// Exists checks if a domain is in the store
func (s *MemoryStore) Exists(ctx context.Context, domain string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.domains[strings.ToLower(domain)]
	return ok, nil
}

// AddDomains inserts domains that are not already present
func (s *MemoryStore) AddDomains(ctx context.Context, domains []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, domain := range domains {
		domain = strings.ToLower(domain)
		if _, ok := s.domains[domain]; ok {
			continue
		}
		s.domains[domain] = struct{}{}
		inserted++
	}

	s.logger.Debug("Added domains to in-memory blacklist", zap.Int("inserted", inserted))
	return inserted, nil
}

// Count returns the number of stored domains
func (s *MemoryStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.domains)), nil
}

// Stop is a no-op for the in-memory store
func (s *MemoryStore) Stop() {}
