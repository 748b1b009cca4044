package services

import (
	"sync"

	"github.com/lorrc/queue-backend/internal/core/domain"
)

// scopeLocks hands out one mutex per allocation scope so that joins and
// call-next for the same queue serialize in-process while different queues
// proceed in parallel. The store's uniqueness constraint remains the final
// arbiter when multiple instances run behind a load balancer.
type scopeLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newScopeLocks() *scopeLocks {
	return &scopeLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for the scope, creating it on first use, and
// returns the matching unlock. Lock entries are never removed; the map grows
// by one small entry per service per day, which is negligible.
func (s *scopeLocks) lock(scope domain.ScopeKey) func() {
	key := scope.String()

	s.mu.Lock()
	m, ok := s.locks[key]
	if !ok {
		m = &sync.Mutex{}
		s.locks[key] = m
	}
	s.mu.Unlock()

	m.Lock()
	return m.Unlock
}
