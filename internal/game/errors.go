package game

// GameError is a string-constant error for round controller failures.
type GameError string

// Error implements the error interface
func (e GameError) Error() string {
	return string(e)
}

const (
	ErrNoActiveRound     GameError = "no active round"
	ErrRoundOver         GameError = "round is over"
	ErrRoundInProgress   GameError = "round in progress"
	ErrGuessOutOfRange   GameError = "guess out of range"
	ErrUnknownDifficulty GameError = "unknown difficulty"
	ErrNilSession        GameError = "session cannot be nil"
	ErrNilConfig         GameError = "config cannot be nil"
	ErrNilRoller         GameError = "roller cannot be nil"
	ErrNilClock          GameError = "clock cannot be nil"
)
