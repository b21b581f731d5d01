// internal/store/store.go
//
// Session persistence for the number guessing game.
// A session lives only as long as the browser session that owns it; backends
// expire idle sessions after a TTL. Two backends:
//   - memory (memory.go): map + mutex, the default for a single process.
//   - redis  (redis.go):  JSON values with TTL, optimistic WATCH/MULTI updates.

package store

import (
	"context"
	"errors"

	"github.com/robalobadob/numguess/internal/game"
)

// ErrNotFound is returned when no live session has the given ID.
var ErrNotFound = errors.New("session not found")

// ErrNilSession is returned by Save for a nil session or one without an ID.
var ErrNilSession = errors.New("session cannot be nil or unnamed")

// NewSessionFunc builds a fresh session for an ID that has none yet.
type NewSessionFunc func(id string) *game.Session

// MutateFunc applies one command to a loaded session. Returning an error
// aborts the update; nothing is written.
type MutateFunc func(s *game.Session) error

// Store defines the persistence interface for game sessions.
type Store interface {
	// Get retrieves a session by ID.
	// Returns ErrNotFound if the session is missing or expired.
	Get(ctx context.Context, id string) (*game.Session, error)

	// Save persists or replaces a session.
	Save(ctx context.Context, s *game.Session) error

	// Update loads the session (creating it with create when missing, if
	// create is non-nil), applies fn and saves the result atomically with
	// respect to other Updates on the same ID.
	// The returned session reflects fn's changes even when fn fails, so
	// callers can still render the current state.
	Update(ctx context.Context, id string, create NewSessionFunc, fn MutateFunc) (*game.Session, error)

	// Delete removes a session. Missing sessions are not an error.
	Delete(ctx context.Context, id string) error
}
