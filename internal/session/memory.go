package session

import (
	"context"
	"sync"
	"time"
)

const sweepInterval = time.Minute

// MemoryStore is the in-process fallback used when no Redis is configured.
// Access is guarded by an RWMutex since the HTTP server handles requests
// concurrently; entries expire after the configured TTL and are swept by Run.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time // session id -> expiry deadline
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore constructs a MemoryStore. A non-positive ttl selects DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		entries: make(map[string]time.Time),
		ttl:     ttl,
		now:     time.Now,
	}
}

// CityRequested reports whether the session has already been asked for a city.
func (s *MemoryStore) CityRequested(_ context.Context, sessionID string) (bool, error) {
	s.mu.RLock()
	deadline, ok := s.entries[sessionID]
	s.mu.RUnlock()

	return ok && s.now().Before(deadline), nil
}

// MarkCityRequested records that the session has been asked for a city.
func (s *MemoryStore) MarkCityRequested(_ context.Context, sessionID string) error {
	s.mu.Lock()
	s.entries[sessionID] = s.now().Add(s.ttl)
	s.mu.Unlock()
	return nil
}

// Run sweeps expired entries once a minute until ctx is cancelled.
func (s *MemoryStore) Run(ctx context.Context) error {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	now := s.now()
	s.mu.Lock()
	for id, deadline := range s.entries {
		if !now.Before(deadline) {
			delete(s.entries, id)
		}
	}
	s.mu.Unlock()
}
