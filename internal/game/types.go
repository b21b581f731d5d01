// internal/game/types.go
//
// Core type definitions for the number guessing game.
// Defines:
//   - Difficulty: the three fixed levels and their (max number, max attempts) pairs.
//   - Round: state for a single play-through, from secret to terminal outcome.
//   - ScoreEntry: a record of one round that ended in a correct guess.
//   - Session: one browser session's selected difficulty, round and scoreboard.
//   - Feedback/Cue: the outcome of a single guess and its audio cue.

package game

import (
	"strings"
	"time"
)

// Difficulty selects the number range and attempt budget of a round.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Params is the fixed parameter pair for a difficulty.
type Params struct {
	MaxNumber   int `json:"maxNumber"`
	MaxAttempts int `json:"maxAttempts"`
}

// difficultyTable is immutable; it is never written after init.
var difficultyTable = map[Difficulty]Params{
	DifficultyEasy:   {MaxNumber: 50, MaxAttempts: 10},
	DifficultyMedium: {MaxNumber: 100, MaxAttempts: 7},
	DifficultyHard:   {MaxNumber: 200, MaxAttempts: 5},
}

// Difficulties lists the levels in selector order.
func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

// ParseDifficulty accepts "easy", "Easy", " HARD " etc.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := difficultyTable[d]; !ok {
		return "", ErrUnknownDifficulty
	}
	return d, nil
}

// Params returns the (max number, max attempts) pair. Unknown values yield zero Params.
func (d Difficulty) Params() Params { return difficultyTable[d] }

// Valid reports whether d is one of the known levels.
func (d Difficulty) Valid() bool {
	_, ok := difficultyTable[d]
	return ok
}

// Label is the display name ("Easy", "Medium", "Hard").
func (d Difficulty) Label() string {
	if d == "" {
		return ""
	}
	return strings.ToUpper(string(d[:1])) + string(d[1:])
}

// Result classifies a single guess.
//   - "too_low":   guess below the secret, round continues.
//   - "too_high":  guess above the secret, round continues.
//   - "correct":   guess equals the secret, round won.
//   - "game_over": wrong guess on the last allowed attempt, round lost.
type Result string

const (
	ResultTooLow   Result = "too_low"
	ResultTooHigh  Result = "too_high"
	ResultCorrect  Result = "correct"
	ResultGameOver Result = "game_over"
)

// Cue is the audio cue that accompanies a result.
type Cue string

const (
	CueNone    Cue = ""
	CueSuccess Cue = "success"
	CueFailure Cue = "failure"
)

// Cue maps a result to its cue; only a correct guess plays the success sound.
func (r Result) Cue() Cue {
	switch r {
	case ResultCorrect:
		return CueSuccess
	case ResultTooLow, ResultTooHigh, ResultGameOver:
		return CueFailure
	}
	return CueNone
}

// Feedback is what a guess reports back to the shell.
type Feedback struct {
	Guess     int     `json:"guess"`
	Result    Result  `json:"result"`
	Hint      Result  `json:"hint,omitempty"` // game_over only: too_low or too_high
	Attempts  int     `json:"attempts"`
	Remaining int     `json:"remaining"`
	Elapsed   float64 `json:"elapsedSeconds,omitempty"` // correct only
	Secret    int     `json:"secret,omitempty"`         // game_over only
}

// State is the coarse position of a session in Idle → Active → Over.
type State string

const (
	StateIdle   State = "idle"
	StateActive State = "active"
	StateOver   State = "over"
)

// Round holds one play-through. The difficulty is captured at start.
type Round struct {
	Difficulty Difficulty `json:"difficulty"`
	Secret     int        `json:"secret"`
	Attempts   int        `json:"attempts"`
	StartedAt  time.Time  `json:"startedAt"`
	Over       bool       `json:"over"`
	Won        bool       `json:"won"`
	Last       *Feedback  `json:"last,omitempty"` // most recent guess, for re-rendering
}

// Remaining is the number of guesses left in the round.
func (r *Round) Remaining() int {
	return r.Difficulty.Params().MaxAttempts - r.Attempts
}

// ScoreEntry records a won round. Entries are never modified once appended.
type ScoreEntry struct {
	Difficulty Difficulty `json:"difficulty"`
	Attempts   int        `json:"attempts"`
	Elapsed    float64    `json:"elapsedSeconds"`
	FinishedAt time.Time  `json:"finishedAt"`
}

// Session is the per-browser scope: zero or one round plus the scoreboard.
type Session struct {
	ID         string       `json:"id"`
	Difficulty Difficulty   `json:"difficulty"`
	Round      *Round       `json:"round,omitempty"`
	Scoreboard []ScoreEntry `json:"scoreboard"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// State reports idle (no round), active or over.
func (s *Session) State() State {
	switch {
	case s.Round == nil:
		return StateIdle
	case s.Round.Over:
		return StateOver
	default:
		return StateActive
	}
}

// Clone returns a deep copy so stores never share mutable state with callers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Round != nil {
		r := *s.Round
		if s.Round.Last != nil {
			fb := *s.Round.Last
			r.Last = &fb
		}
		c.Round = &r
	}
	c.Scoreboard = make([]ScoreEntry, len(s.Scoreboard))
	copy(c.Scoreboard, s.Scoreboard)
	return &c
}
