package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	clockMocks "github.com/robalobadob/numguess/internal/common/clock/mocks"
	"github.com/robalobadob/numguess/internal/dice"
	"github.com/robalobadob/numguess/internal/game/mocks"
)

type ControllerTestSuite struct {
	suite.Suite
	mockCtrl   *gomock.Controller
	mockRoller *mocks.MockRoller
	mockClock  *clockMocks.MockClock
	controller *Controller

	testTime      time.Time
	now           time.Time
	testSessionID string
	session       *Session
}

func (s *ControllerTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockRoller = mocks.NewMockRoller(s.mockCtrl)
	s.mockClock = clockMocks.NewMockClock(s.mockCtrl)

	s.testTime = time.Date(2025, 4, 19, 12, 0, 0, 0, time.UTC)
	s.testSessionID = "test-session-id"

	controller, err := NewController(&ControllerConfig{
		Roller: s.mockRoller,
		Clock:  s.mockClock,
	})
	s.Require().NoError(err)
	s.controller = controller

	s.now = s.testTime
	s.mockClock.EXPECT().Now().DoAndReturn(func() time.Time { return s.now }).AnyTimes()
	s.session = s.controller.NewSession(s.testSessionID)
}

func (s *ControllerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestControllerTestSuite(t *testing.T) {
	suite.Run(t, new(ControllerTestSuite))
}

// startWithSecret starts a round on d whose secret is fixed to secret.
func (s *ControllerTestSuite) startWithSecret(d Difficulty, secret int) {
	s.Require().NoError(s.controller.SelectDifficulty(s.session, d))
	s.mockRoller.EXPECT().Roll(d.Params().MaxNumber).Return(secret)
	_, started, err := s.controller.StartRound(s.session)
	s.Require().NoError(err)
	s.Require().True(started)
}

func (s *ControllerTestSuite) TestNewControllerValidatesConfig() {
	_, err := NewController(nil)
	s.ErrorIs(err, ErrNilConfig)

	_, err = NewController(&ControllerConfig{Clock: s.mockClock})
	s.ErrorIs(err, ErrNilRoller)

	_, err = NewController(&ControllerConfig{Roller: s.mockRoller})
	s.ErrorIs(err, ErrNilClock)
}

func (s *ControllerTestSuite) TestNewSessionIsIdle() {
	s.Equal(s.testSessionID, s.session.ID)
	s.Equal(DifficultyEasy, s.session.Difficulty)
	s.Equal(StateIdle, s.session.State())
	s.Empty(s.session.Scoreboard)
	s.Equal(s.testTime, s.session.CreatedAt)
}

func (s *ControllerTestSuite) TestUpdatedAtTracksClock() {
	s.now = s.testTime.Add(time.Minute)
	s.Require().NoError(s.controller.SelectDifficulty(s.session, DifficultyHard))
	s.Equal(s.now, s.session.UpdatedAt)
	s.Equal(s.testTime, s.session.CreatedAt)
}

func (s *ControllerTestSuite) TestStartRoundSnapshotsDifficulty() {
	s.startWithSecret(DifficultyMedium, 64)

	r := s.session.Round
	s.Require().NotNil(r)
	s.Equal(DifficultyMedium, r.Difficulty)
	s.Equal(64, r.Secret)
	s.Equal(0, r.Attempts)
	s.Equal(s.testTime, r.StartedAt)
	s.False(r.Over)
	s.Equal(StateActive, s.session.State())
	s.Equal(7, r.Remaining())
}

func (s *ControllerTestSuite) TestStartRoundTwiceIsNoOp() {
	s.startWithSecret(DifficultyEasy, 12)

	// no second Roll expected
	r, started, err := s.controller.StartRound(s.session)
	s.NoError(err)
	s.False(started)
	s.Same(s.session.Round, r)
	s.Equal(12, r.Secret)
}

func (s *ControllerTestSuite) TestStartRoundClampsRollerOutput() {
	s.mockRoller.EXPECT().Roll(50).Return(999)
	r, _, err := s.controller.StartRound(s.session)
	s.Require().NoError(err)
	s.Equal(50, r.Secret)
}

func (s *ControllerTestSuite) TestEasyScenarioWin() {
	s.startWithSecret(DifficultyEasy, 27)

	fb, err := s.controller.SubmitGuess(s.session, 10)
	s.Require().NoError(err)
	s.Equal(ResultTooLow, fb.Result)
	s.Equal(1, fb.Attempts)
	s.Equal(9, fb.Remaining)
	s.Equal(CueFailure, fb.Result.Cue())

	fb, err = s.controller.SubmitGuess(s.session, 40)
	s.Require().NoError(err)
	s.Equal(ResultTooHigh, fb.Result)
	s.Equal(2, fb.Attempts)

	// the winning guess lands 12.345s after the start
	s.now = s.testTime.Add(12345 * time.Millisecond)

	fb, err = s.controller.SubmitGuess(s.session, 27)
	s.Require().NoError(err)
	s.Equal(ResultCorrect, fb.Result)
	s.Equal(3, fb.Attempts)
	s.InDelta(12.35, fb.Elapsed, 1e-9)
	s.Equal(CueSuccess, fb.Result.Cue())

	s.True(s.session.Round.Over)
	s.True(s.session.Round.Won)
	s.Equal(StateOver, s.session.State())
	s.Require().Len(s.session.Scoreboard, 1)
	entry := s.session.Scoreboard[0]
	s.Equal(DifficultyEasy, entry.Difficulty)
	s.Equal(3, entry.Attempts)
	s.InDelta(12.35, entry.Elapsed, 1e-9)
}

func (s *ControllerTestSuite) TestHardScenarioExhaustsAttempts() {
	s.startWithSecret(DifficultyHard, 5)

	for i, g := range []int{1, 2, 3, 4} {
		fb, err := s.controller.SubmitGuess(s.session, g)
		s.Require().NoError(err)
		s.Equal(ResultTooLow, fb.Result)
		s.Equal(i+1, fb.Attempts)
		s.False(s.session.Round.Over)
	}

	fb, err := s.controller.SubmitGuess(s.session, 6)
	s.Require().NoError(err)
	s.Equal(ResultGameOver, fb.Result)
	s.Equal(ResultTooHigh, fb.Hint)
	s.Equal(5, fb.Secret)
	s.Equal(0, fb.Remaining)
	s.Equal(CueFailure, fb.Result.Cue())

	s.True(s.session.Round.Over)
	s.False(s.session.Round.Won)
	s.Equal(5, s.session.Round.Attempts)
	s.Empty(s.session.Scoreboard)

	_, err = s.controller.SubmitGuess(s.session, 5)
	s.ErrorIs(err, ErrRoundOver)
	s.Equal(5, s.session.Round.Attempts)
}

func (s *ControllerTestSuite) TestCorrectOnLastAttemptIsAWin() {
	s.startWithSecret(DifficultyHard, 100)
	for _, g := range []int{1, 2, 3, 4} {
		_, err := s.controller.SubmitGuess(s.session, g)
		s.Require().NoError(err)
	}
	fb, err := s.controller.SubmitGuess(s.session, 100)
	s.Require().NoError(err)
	s.Equal(ResultCorrect, fb.Result)
	s.Zero(fb.Secret)
	s.Len(s.session.Scoreboard, 1)
}

func (s *ControllerTestSuite) TestGuessWithoutRound() {
	_, err := s.controller.SubmitGuess(s.session, 10)
	s.ErrorIs(err, ErrNoActiveRound)
}

func (s *ControllerTestSuite) TestOutOfRangeGuessDoesNotCount() {
	s.startWithSecret(DifficultyEasy, 20)

	for _, g := range []int{0, -3, 51, 1000} {
		_, err := s.controller.SubmitGuess(s.session, g)
		s.ErrorIs(err, ErrGuessOutOfRange)
	}
	s.Equal(0, s.session.Round.Attempts)
}

func (s *ControllerTestSuite) TestSelectDifficultyBlockedWhileActive() {
	s.startWithSecret(DifficultyEasy, 20)

	err := s.controller.SelectDifficulty(s.session, DifficultyHard)
	s.ErrorIs(err, ErrRoundInProgress)
	s.Equal(DifficultyEasy, s.session.Difficulty)
	s.Equal(DifficultyEasy, s.session.Round.Difficulty)
}

func (s *ControllerTestSuite) TestSelectDifficultyAfterOverAppliesAfterReset() {
	s.startWithSecret(DifficultyEasy, 20)
	_, err := s.controller.SubmitGuess(s.session, 20)
	s.Require().NoError(err)

	s.Require().NoError(s.controller.SelectDifficulty(s.session, DifficultyHard))
	s.Equal(DifficultyEasy, s.session.Round.Difficulty)

	// over → idle only via reset
	_, started, err := s.controller.StartRound(s.session)
	s.Require().NoError(err)
	s.False(started)

	s.Require().NoError(s.controller.Reset(s.session))
	s.mockRoller.EXPECT().Roll(200).Return(150)
	r, started, err := s.controller.StartRound(s.session)
	s.Require().NoError(err)
	s.True(started)
	s.Equal(DifficultyHard, r.Difficulty)
}

func (s *ControllerTestSuite) TestSelectUnknownDifficulty() {
	s.ErrorIs(s.controller.SelectDifficulty(s.session, Difficulty("nightmare")), ErrUnknownDifficulty)
}

func (s *ControllerTestSuite) TestResetClearsEverything() {
	s.startWithSecret(DifficultyMedium, 50)
	_, err := s.controller.SubmitGuess(s.session, 50)
	s.Require().NoError(err)
	s.Require().Len(s.session.Scoreboard, 1)

	s.Require().NoError(s.controller.Reset(s.session))
	s.Nil(s.session.Round)
	s.NotNil(s.session.Scoreboard)
	s.Empty(s.session.Scoreboard)
	s.Equal(StateIdle, s.session.State())
	s.Equal(DifficultyMedium, s.session.Difficulty)
}

func (s *ControllerTestSuite) TestNilSession() {
	s.ErrorIs(s.controller.SelectDifficulty(nil, DifficultyEasy), ErrNilSession)
	_, _, err := s.controller.StartRound(nil)
	s.ErrorIs(err, ErrNilSession)
	_, err = s.controller.SubmitGuess(nil, 1)
	s.ErrorIs(err, ErrNilSession)
	s.ErrorIs(s.controller.Reset(nil), ErrNilSession)
}

func (s *ControllerTestSuite) TestCloneIsDeep() {
	s.startWithSecret(DifficultyEasy, 30)
	_, err := s.controller.SubmitGuess(s.session, 10)
	s.Require().NoError(err)

	c := s.session.Clone()
	c.Round.Attempts = 9
	c.Round.Last.Guess = 49
	c.Scoreboard = append(c.Scoreboard, ScoreEntry{Attempts: 1})

	s.Equal(1, s.session.Round.Attempts)
	s.Equal(10, s.session.Round.Last.Guess)
	s.Empty(s.session.Scoreboard)
}

// Property checks against the real roller: secrets stay in range and
// attempts never exceed the budget, for every difficulty.
func TestRoundInvariantsWithRealRoller(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := clockMocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)).AnyTimes()

	c, err := NewController(&ControllerConfig{Roller: dice.New(&dice.Config{Seed: 99}), Clock: clock})
	if err != nil {
		t.Fatal(err)
	}

	for _, d := range Difficulties() {
		p := d.Params()
		for i := 0; i < 200; i++ {
			sess := c.NewSession("s")
			if err := c.SelectDifficulty(sess, d); err != nil {
				t.Fatal(err)
			}
			r, _, err := c.StartRound(sess)
			if err != nil {
				t.Fatal(err)
			}
			if r.Secret < 1 || r.Secret > p.MaxNumber {
				t.Fatalf("%s: secret %d outside [1,%d]", d, r.Secret, p.MaxNumber)
			}

			// always guess 1 until the round ends
			for !r.Over {
				if _, err := c.SubmitGuess(sess, 1); err != nil {
					t.Fatal(err)
				}
				if r.Attempts > p.MaxAttempts {
					t.Fatalf("%s: attempts %d exceed %d", d, r.Attempts, p.MaxAttempts)
				}
			}
			if r.Won {
				if len(sess.Scoreboard) != 1 {
					t.Fatalf("%s: won round must add exactly one entry", d)
				}
			} else if r.Attempts != p.MaxAttempts || len(sess.Scoreboard) != 0 {
				t.Fatalf("%s: lost round must spend all attempts and add nothing", d)
			}
		}
	}
}

func TestParseDifficulty(t *testing.T) {
	cases := map[string]Difficulty{
		"easy":    DifficultyEasy,
		"Medium":  DifficultyMedium,
		" HARD  ": DifficultyHard,
	}
	for in, want := range cases {
		got, err := ParseDifficulty(in)
		if err != nil || got != want {
			t.Errorf("ParseDifficulty(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseDifficulty("insane"); err != ErrUnknownDifficulty {
		t.Errorf("expected ErrUnknownDifficulty, got %v", err)
	}
}

func TestDifficultyTable(t *testing.T) {
	want := map[Difficulty]Params{
		DifficultyEasy:   {50, 10},
		DifficultyMedium: {100, 7},
		DifficultyHard:   {200, 5},
	}
	for d, p := range want {
		if d.Params() != p {
			t.Errorf("%s params = %+v, want %+v", d, d.Params(), p)
		}
	}
	if DifficultyMedium.Label() != "Medium" {
		t.Errorf("label = %q", DifficultyMedium.Label())
	}
}
