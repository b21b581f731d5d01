// internal/httpserver/routes_api.go
//
// JSON API for the game, mounted under /api:
//   - GET  /api/session       → current session (state, round, scoreboard)
//   - GET  /api/difficulties  → the fixed difficulty table
//   - POST /api/difficulty    → {"difficulty":"hard"}
//   - POST /api/start         → start a round (no-op if one exists)
//   - POST /api/guess         → {"guess":42}
//   - POST /api/reset         → clear round and scoreboard
//
// Errors are {"error":"<code>"} with 400/409/500 (see errorCode).
// The secret is only revealed once a round is over.

package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/numguess/internal/game"
)

// mountAPI registers the /api routes on r.
func (s *Server) mountAPI(r chi.Router) {
	r.Get("/session", s.handleAPISession)
	r.Get("/difficulties", s.handleAPIDifficulties)
	r.Post("/difficulty", s.handleAPIDifficulty)
	r.Post("/start", s.handleAPIStart)
	r.Post("/guess", s.handleAPIGuess)
	r.Post("/reset", s.handleAPIReset)
}

// ------------------------------ payloads -----------------------------------

type difficultyRes struct {
	Value       game.Difficulty `json:"value"`
	Label       string          `json:"label"`
	MaxNumber   int             `json:"maxNumber"`
	MaxAttempts int             `json:"maxAttempts"`
}

type roundRes struct {
	Difficulty  game.Difficulty `json:"difficulty"`
	MaxNumber   int             `json:"maxNumber"`
	MaxAttempts int             `json:"maxAttempts"`
	Attempts    int             `json:"attempts"`
	Remaining   int             `json:"remaining"`
	StartedAt   time.Time       `json:"startedAt"`
	Over        bool            `json:"over"`
	Won         bool            `json:"won"`
	Secret      int             `json:"secret,omitempty"` // only once over
	Last        *game.Feedback  `json:"last,omitempty"`
}

type sessionRes struct {
	State      game.State        `json:"state"`
	Difficulty difficultyRes     `json:"difficulty"`
	Round      *roundRes         `json:"round,omitempty"`
	Scoreboard []game.ScoreEntry `json:"scoreboard"`
}

type difficultyReq struct {
	Difficulty string `json:"difficulty"`
}

type startRes struct {
	Started bool       `json:"started"`
	Session sessionRes `json:"session"`
}

type guessReq struct {
	Guess *int `json:"guess"`
}

type guessRes struct {
	Feedback *game.Feedback `json:"feedback"`
	Cue      game.Cue       `json:"cue"`
	Session  sessionRes     `json:"session"`
}

func toDifficultyRes(d game.Difficulty) difficultyRes {
	p := d.Params()
	return difficultyRes{Value: d, Label: d.Label(), MaxNumber: p.MaxNumber, MaxAttempts: p.MaxAttempts}
}

func toSessionRes(sess *game.Session) sessionRes {
	out := sessionRes{
		State:      sess.State(),
		Difficulty: toDifficultyRes(sess.Difficulty),
		Scoreboard: sess.Scoreboard,
	}
	if out.Scoreboard == nil {
		out.Scoreboard = []game.ScoreEntry{}
	}
	if r := sess.Round; r != nil {
		p := r.Difficulty.Params()
		rr := &roundRes{
			Difficulty:  r.Difficulty,
			MaxNumber:   p.MaxNumber,
			MaxAttempts: p.MaxAttempts,
			Attempts:    r.Attempts,
			Remaining:   r.Remaining(),
			StartedAt:   r.StartedAt,
			Over:        r.Over,
			Won:         r.Won,
			Last:        r.Last,
		}
		if r.Over {
			rr.Secret = r.Secret
		}
		out.Round = rr
	}
	return out
}

// ------------------------------ handlers -----------------------------------

func (s *Server) handleAPISession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.current(w, r)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionRes(sess))
}

func (s *Server) handleAPIDifficulties(w http.ResponseWriter, r *http.Request) {
	out := []difficultyRes{}
	for _, d := range game.Difficulties() {
		out = append(out, toDifficultyRes(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPIDifficulty(w http.ResponseWriter, r *http.Request) {
	var req difficultyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad_json"})
		return
	}
	d, err := game.ParseDifficulty(req.Difficulty)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	sess, err := s.apply(w, r, func(sess *game.Session) error {
		return s.controller.SelectDifficulty(sess, d)
	})
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionRes(sess))
}

func (s *Server) handleAPIStart(w http.ResponseWriter, r *http.Request) {
	var started bool
	sess, err := s.apply(w, r, func(sess *game.Session) error {
		var err error
		_, started, err = s.controller.StartRound(sess)
		return err
	})
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, startRes{Started: started, Session: toSessionRes(sess)})
}

func (s *Server) handleAPIGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Guess == nil {
		writeJSON(w, http.StatusBadRequest, errorRes{Error: "bad_json"})
		return
	}
	var fb *game.Feedback
	sess, err := s.apply(w, r, func(sess *game.Session) error {
		var err error
		fb, err = s.controller.SubmitGuess(sess, *req.Guess)
		return err
	})
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, guessRes{Feedback: fb, Cue: fb.Result.Cue(), Session: toSessionRes(sess)})
}

func (s *Server) handleAPIReset(w http.ResponseWriter, r *http.Request) {
	sess, err := s.apply(w, r, s.controller.Reset)
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionRes(sess))
}

// ------------------------------- helpers -----------------------------------

type errorRes struct {
	Error string `json:"error"`
}

func writeAPIError(w http.ResponseWriter, err error) {
	status, code := errorCode(err)
	writeJSON(w, status, errorRes{Error: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
