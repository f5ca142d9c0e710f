package navigation

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps client states in memory, keyed by an opaque client id.
// Nothing here survives a restart.
type Store struct {
	mu          sync.Mutex
	clients     map[string]*State
	idleTimeout time.Duration
	now         func() time.Time
}

// NewStore creates a store. A zero idleTimeout keeps entries forever.
func NewStore(idleTimeout time.Duration) *Store {
	return &Store{
		clients:     make(map[string]*State),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

// Get returns the state for id and refreshes its LastSeen.
// Expired entries are treated as missing.
func (s *Store) Get(id string) (*State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.clients[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if s.expired(st, now) {
		delete(s.clients, id)
		return nil, false
	}
	st.LastSeen = now
	return st, true
}

// Create registers a new unauthenticated client. Idle entries are swept here,
// so there is no background goroutine.
func (s *Store) Create() *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)
	st := newState(uuid.NewString(), now)
	s.clients[st.ID] = st
	return st
}

// Reset discards everything known about the client and returns a fresh,
// unauthenticated state under the same id.
func (s *Store) Reset(id string) *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := newState(id, s.now())
	s.clients[id] = st
	return st
}

// Len returns the number of tracked clients.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Store) expired(st *State, now time.Time) bool {
	return s.idleTimeout > 0 && now.Sub(st.LastSeen) > s.idleTimeout
}

func (s *Store) sweep(now time.Time) {
	removed := 0
	for id, st := range s.clients {
		if s.expired(st, now) {
			delete(s.clients, id)
			removed++
		}
	}
	if removed > 0 {
		slog.Debug("Swept idle client states", "removed", removed, "remaining", len(s.clients))
	}
}
