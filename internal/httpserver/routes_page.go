// internal/httpserver/routes_page.go
//
// Server-rendered UI. Every button on the page is a plain form post that
// redirects back to GET / (Post/Redirect/Get), so reloading never repeats a
// guess.
//   - GET  /            → render the page for the caller's session
//   - POST /difficulty  → form field "difficulty"
//   - POST /start       → start a round
//   - POST /guess       → form field "guess"; redirects to /?cue=1 so the
//                         page plays the audio cue once
//   - POST /restart     → full session reset
//
// Failures are carried back as /?error=<code>.

package httpserver

import (
	"bytes"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/numguess/internal/game"
)

// mountPage registers the HTML routes on r.
func (s *Server) mountPage(r chi.Router) {
	r.Get("/", s.handlePage)
	r.Post("/difficulty", s.handleFormDifficulty)
	r.Post("/start", s.handleFormStart)
	r.Post("/guess", s.handleFormGuess)
	r.Post("/restart", s.handleFormRestart)
}

// errorMessages are the user-facing texts for ?error= codes.
var errorMessages = map[string]string{
	"round_in_progress":  "Finish or restart the current game before changing difficulty.",
	"no_active_round":    "Start a game first.",
	"round_over":         "This game is over. Restart to play again.",
	"unknown_difficulty": "Unknown difficulty.",
	"guess_out_of_range": "Your guess is outside the allowed range.",
	"bad_guess":          "Enter a whole number.",
	"store_failed":       "Something went wrong. Please try again.",
}

// ------------------------------- view --------------------------------------

type difficultyOption struct {
	Value       game.Difficulty
	Label       string
	MaxNumber   int
	MaxAttempts int
	Selected    bool
}

type feedbackView struct {
	Kind     string // "success" | "warning"
	Message  string
	Attempts int
	Elapsed  string
	GameOver bool
	Secret   int
	Cue      template.URL
}

type scoreRow struct {
	Difficulty string
	Attempts   int
	Elapsed    string
}

type pageView struct {
	Error        string
	Difficulties []difficultyOption
	Locked       bool // selector disabled while a round is active
	CanStart     bool
	Active       bool
	MaxNumber    int
	Remaining    int
	Feedback     *feedbackView
	Scoreboard   []scoreRow
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func hintMessage(r game.Result) string {
	switch r {
	case game.ResultTooLow:
		return "📉 Too Low!"
	case game.ResultTooHigh:
		return "📈 Too High!"
	}
	return ""
}

// buildView turns a session into template data. playCue attaches the audio
// cue for the last guess.
func (s *Server) buildView(sess *game.Session, errCode string, playCue bool) pageView {
	state := sess.State()
	v := pageView{
		Locked:   state == game.StateActive,
		CanStart: state == game.StateIdle,
		Active:   state == game.StateActive,
	}
	if errCode != "" {
		msg, ok := errorMessages[errCode]
		if !ok {
			msg = errorMessages["store_failed"]
		}
		v.Error = msg
	}

	for _, d := range game.Difficulties() {
		p := d.Params()
		v.Difficulties = append(v.Difficulties, difficultyOption{
			Value:       d,
			Label:       d.Label(),
			MaxNumber:   p.MaxNumber,
			MaxAttempts: p.MaxAttempts,
			Selected:    d == sess.Difficulty,
		})
	}

	if r := sess.Round; r != nil {
		v.MaxNumber = r.Difficulty.Params().MaxNumber
		v.Remaining = r.Remaining()
		if fb := r.Last; fb != nil {
			fv := &feedbackView{Kind: "warning", Attempts: fb.Attempts}
			switch fb.Result {
			case game.ResultCorrect:
				fv.Kind = "success"
				fv.Elapsed = formatSeconds(fb.Elapsed)
			case game.ResultGameOver:
				fv.Message = hintMessage(fb.Hint)
				fv.GameOver = true
				fv.Secret = fb.Secret
			default:
				fv.Message = hintMessage(fb.Result)
			}
			if playCue {
				fv.Cue = s.cues[fb.Result.Cue()]
			}
			v.Feedback = fv
		}
	}

	for _, e := range sess.Scoreboard {
		v.Scoreboard = append(v.Scoreboard, scoreRow{
			Difficulty: e.Difficulty.Label(),
			Attempts:   e.Attempts,
			Elapsed:    formatSeconds(e.Elapsed),
		})
	}
	return v
}

// ------------------------------ handlers -----------------------------------

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.current(w, r)
	if err != nil {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	q := r.URL.Query()
	view := s.buildView(sess, q.Get("error"), q.Get("cue") == "1")

	var buf bytes.Buffer
	if err := s.page.ExecuteTemplate(&buf, "index.html", view); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("render page")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleFormDifficulty(w http.ResponseWriter, r *http.Request) {
	d, err := game.ParseDifficulty(r.FormValue("difficulty"))
	if err != nil {
		s.redirectError(w, r, err)
		return
	}
	_, err = s.apply(w, r, func(sess *game.Session) error {
		return s.controller.SelectDifficulty(sess, d)
	})
	s.redirect(w, r, err, false)
}

func (s *Server) handleFormStart(w http.ResponseWriter, r *http.Request) {
	_, err := s.apply(w, r, func(sess *game.Session) error {
		_, _, err := s.controller.StartRound(sess)
		return err
	})
	s.redirect(w, r, err, false)
}

func (s *Server) handleFormGuess(w http.ResponseWriter, r *http.Request) {
	value, err := strconv.Atoi(strings.TrimSpace(r.FormValue("guess")))
	if err != nil {
		http.Redirect(w, r, "/?error=bad_guess", http.StatusSeeOther)
		return
	}
	_, err = s.apply(w, r, func(sess *game.Session) error {
		_, err := s.controller.SubmitGuess(sess, value)
		return err
	})
	s.redirect(w, r, err, true)
}

func (s *Server) handleFormRestart(w http.ResponseWriter, r *http.Request) {
	_, err := s.apply(w, r, s.controller.Reset)
	s.redirect(w, r, err, false)
}

// redirect sends the browser back to the page, carrying err or the cue flag.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, err error, cue bool) {
	if err != nil {
		s.redirectError(w, r, err)
		return
	}
	target := "/"
	if cue {
		target = "/?cue=1"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) redirectError(w http.ResponseWriter, r *http.Request, err error) {
	_, code := errorCode(err)
	http.Redirect(w, r, "/?"+url.Values{"error": {code}}.Encode(), http.StatusSeeOther)
}
