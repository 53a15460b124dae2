// Package session keeps per-browser explorer filters in memory so a
// returning visitor lands on the view they left. State is best effort
// and disappears on restart.
package session

import (
	"sync"
	"time"
)

// Filters is the explorer state remembered per session.
type Filters struct {
	Metric      string
	Granularity string
	From        string
	To          string
}

type entry struct {
	filters   Filters
	expiresAt time.Time
}

// Store is an in-memory session store with a sliding TTL.
type Store struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[string]entry

	now func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the filters stored for id and refreshes its expiry.
func (s *Store) Get(id string) (Filters, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return Filters{}, false
	}
	now := s.now()
	if now.After(e.expiresAt) {
		delete(s.entries, id)
		return Filters{}, false
	}
	e.expiresAt = now.Add(s.ttl)
	s.entries[id] = e
	return e.filters, true
}

// Put stores filters for id, replacing any previous state.
func (s *Store) Put(id string, f Filters) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
	s.entries[id] = entry{filters: f, expiresAt: now.Add(s.ttl)}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
