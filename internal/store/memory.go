// internal/store/memory.go
//
// In-memory implementation of Store.
//
// Characteristics:
//   - Sessions keyed by ID in a map; values are deep copies so callers never
//     alias stored state.
//   - One mutex guards the map; Update holds it across load/mutate/save.
//   - Idle sessions expire lazily after TTL (zero TTL disables expiry).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"
	"time"

	"github.com/robalobadob/numguess/internal/common/clock"
	"github.com/robalobadob/numguess/internal/game"
)

type memoryEntry struct {
	session  *game.Session
	lastSeen time.Time
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.Mutex              // guards sessions
	sessions map[string]*memoryEntry // keyed by Session.ID
	ttl      time.Duration
	clock    clock.Clock
}

// MemoryConfig configures the in-memory store.
type MemoryConfig struct {
	TTL   time.Duration
	Clock clock.Clock // defaults to the system clock
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore(cfg *MemoryConfig) Store {
	m := &memory{sessions: make(map[string]*memoryEntry), clock: clock.New()}
	if cfg != nil {
		m.ttl = cfg.TTL
		if cfg.Clock != nil {
			m.clock = cfg.Clock
		}
	}
	return m
}

// lookup returns the live entry for id, dropping it if expired. Caller holds mu.
func (m *memory) lookup(id string, now time.Time) (*memoryEntry, bool) {
	e, ok := m.sessions[id]
	if !ok {
		return nil, false
	}
	if m.ttl > 0 && now.Sub(e.lastSeen) > m.ttl {
		delete(m.sessions, id)
		return nil, false
	}
	return e, true
}

func (m *memory) Get(ctx context.Context, id string) (*game.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(id, m.clock.Now())
	if !ok {
		return nil, ErrNotFound
	}
	return e.session.Clone(), nil
}

func (m *memory) Save(ctx context.Context, s *game.Session) error {
	if s == nil || s.ID == "" {
		return ErrNilSession
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = &memoryEntry{session: s.Clone(), lastSeen: m.clock.Now()}
	return nil
}

func (m *memory) Update(ctx context.Context, id string, create NewSessionFunc, fn MutateFunc) (*game.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	var s *game.Session
	if e, ok := m.lookup(id, now); ok {
		s = e.session.Clone()
	} else if create != nil {
		s = create(id)
	} else {
		return nil, ErrNotFound
	}

	if err := fn(s); err != nil {
		return s, err
	}
	m.sessions[id] = &memoryEntry{session: s.Clone(), lastSeen: now}
	return s, nil
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
