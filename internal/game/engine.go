// internal/game/engine.go
//
// Round controller for the number guessing game.
// Responsibilities:
//   - Difficulty selection (blocked while a round is active).
//   - Secret generation in [1, max number] via an injected Roller.
//   - Guess evaluation: too low / too high / correct, attempt counting.
//   - Timing (elapsed seconds, two decimals) and scoreboard accrual on a win.
//   - Full session reset.
//
// Notes:
//   - The controller holds no session state; every command takes the *Session
//     it mutates, so the shell decides where sessions live.
//   - State transitions: idle → active → over; over → idle only via Reset.

package game

import (
	"math"
	"time"

	"github.com/robalobadob/numguess/internal/common/clock"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_roller.go github.com/robalobadob/numguess/internal/game Roller

// Roller produces a uniform integer in [1, sides].
type Roller interface {
	Roll(sides int) int
}

// ControllerConfig carries the controller's dependencies.
type ControllerConfig struct {
	Roller Roller
	Clock  clock.Clock
}

// Controller applies game commands to sessions.
type Controller struct {
	roller Roller
	clock  clock.Clock
}

// NewController validates the config and builds a Controller.
func NewController(cfg *ControllerConfig) (*Controller, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Roller == nil {
		return nil, ErrNilRoller
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}
	return &Controller{roller: cfg.Roller, clock: cfg.Clock}, nil
}

// NewSession returns an idle session on Easy with an empty scoreboard.
func (c *Controller) NewSession(id string) *Session {
	now := c.clock.Now()
	return &Session{
		ID:         id,
		Difficulty: DifficultyEasy,
		Scoreboard: []ScoreEntry{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// SelectDifficulty changes the level used by the next round.
// It is rejected while a round is active; a finished round is unaffected
// because it carries its own difficulty.
func (c *Controller) SelectDifficulty(s *Session, d Difficulty) error {
	if s == nil {
		return ErrNilSession
	}
	if !d.Valid() {
		return ErrUnknownDifficulty
	}
	if s.State() == StateActive {
		return ErrRoundInProgress
	}
	s.Difficulty = d
	s.UpdatedAt = c.clock.Now()
	return nil
}

// StartRound rolls a secret for the selected difficulty.
// If the session already has a round (active or over) nothing changes and
// started is false.
func (c *Controller) StartRound(s *Session) (round *Round, started bool, err error) {
	if s == nil {
		return nil, false, ErrNilSession
	}
	if s.Round != nil {
		return s.Round, false, nil
	}
	if !s.Difficulty.Valid() {
		return nil, false, ErrUnknownDifficulty
	}

	maxNumber := s.Difficulty.Params().MaxNumber
	secret := c.roller.Roll(maxNumber)
	if secret < 1 {
		secret = 1
	} else if secret > maxNumber {
		secret = maxNumber
	}

	now := c.clock.Now()
	s.Round = &Round{
		Difficulty: s.Difficulty,
		Secret:     secret,
		StartedAt:  now,
	}
	s.UpdatedAt = now
	return s.Round, true, nil
}

// SubmitGuess evaluates value against the active round's secret.
//
// Validation rules:
//   - A round must exist and not be over.
//   - value must lie in [1, max number]; out-of-range guesses do not count.
//
// State transitions:
//   - value == secret → over, won, ScoreEntry appended.
//   - otherwise, if the attempt budget is now spent → over, secret revealed.
func (c *Controller) SubmitGuess(s *Session, value int) (*Feedback, error) {
	if s == nil {
		return nil, ErrNilSession
	}
	r := s.Round
	if r == nil {
		return nil, ErrNoActiveRound
	}
	if r.Over {
		return nil, ErrRoundOver
	}
	p := r.Difficulty.Params()
	if value < 1 || value > p.MaxNumber {
		return nil, ErrGuessOutOfRange
	}

	now := c.clock.Now()
	r.Attempts++
	fb := &Feedback{Guess: value, Attempts: r.Attempts}

	switch {
	case value < r.Secret:
		fb.Result = ResultTooLow
	case value > r.Secret:
		fb.Result = ResultTooHigh
	default:
		fb.Result = ResultCorrect
		fb.Elapsed = elapsedSeconds(r.StartedAt, now)
		r.Over, r.Won = true, true
		s.Scoreboard = append(s.Scoreboard, ScoreEntry{
			Difficulty: r.Difficulty,
			Attempts:   r.Attempts,
			Elapsed:    fb.Elapsed,
			FinishedAt: now,
		})
	}

	if !r.Won && r.Attempts >= p.MaxAttempts {
		r.Over = true
		fb.Hint, fb.Result = fb.Result, ResultGameOver
		fb.Secret = r.Secret
	}

	fb.Remaining = r.Remaining()
	r.Last = fb
	s.UpdatedAt = now
	return fb, nil
}

// Reset wipes the round and the scoreboard. The selected difficulty stays.
func (c *Controller) Reset(s *Session) error {
	if s == nil {
		return ErrNilSession
	}
	s.Round = nil
	s.Scoreboard = []ScoreEntry{}
	s.UpdatedAt = c.clock.Now()
	return nil
}

// elapsedSeconds rounds to two decimals; negative spans (clock skew) clamp to zero.
func elapsedSeconds(from, to time.Time) float64 {
	d := to.Sub(from)
	if d < 0 {
		return 0
	}
	return math.Round(d.Seconds()*100) / 100
}
