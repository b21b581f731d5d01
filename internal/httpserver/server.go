// internal/httpserver/server.go
//
// HTTP server wiring for the number guessing game.
// Responsibilities:
//   - Router + middleware (request IDs, real IP, zerolog access log, panic
//     recovery, timeouts).
//   - Public endpoints: "/health".
//   - HTML UI (routes_page.go): GET /, POST /difficulty, /start, /guess, /restart.
//   - JSON API (routes_api.go): mounted under /api.
//   - Session cookie handling (session.go).
//
// Notes:
//   - The server owns no game state. Every command loads the caller's session
//     from the store, applies one controller call, and writes it back inside
//     Store.Update.
//   - HTML routes answer text/html; /api and diagnostics answer JSON.

package httpserver

import (
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/numguess/assets"
	"github.com/robalobadob/numguess/internal/common/clock"
	"github.com/robalobadob/numguess/internal/common/uuid"
	"github.com/robalobadob/numguess/internal/game"
	"github.com/robalobadob/numguess/internal/store"
)

// Config carries the server's collaborators and cookie settings.
type Config struct {
	Store          store.Store
	Controller     *game.Controller
	IDs            uuid.UUID   // defaults to random UUIDs
	Clock          clock.Clock // defaults to the system clock
	SessionSecret  string
	CookieName     string
	CookieSecure   bool
	RequestTimeout time.Duration
}

// Server bundles router, session store and round controller.
type Server struct {
	r          *chi.Mux
	store      store.Store
	controller *game.Controller
	ids        uuid.UUID
	clock      clock.Clock
	secret     []byte
	cookieName string
	secure     bool
	page       *template.Template
	cues       map[game.Cue]template.URL
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Store == nil {
		return nil, errors.New("store cannot be nil")
	}
	if cfg.Controller == nil {
		return nil, errors.New("controller cannot be nil")
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret cannot be empty")
	}

	page, err := assets.Templates(template.FuncMap{})
	if err != nil {
		return nil, err
	}
	cues := make(map[game.Cue]template.URL, 2)
	for _, c := range []game.Cue{game.CueSuccess, game.CueFailure} {
		uri, err := assets.AudioDataURI(string(c))
		if err != nil {
			return nil, err
		}
		cues[c] = uri
	}

	s := &Server{
		r:          chi.NewRouter(),
		store:      cfg.Store,
		controller: cfg.Controller,
		ids:        cfg.IDs,
		clock:      cfg.Clock,
		secret:     []byte(cfg.SessionSecret),
		cookieName: cfg.CookieName,
		secure:     cfg.CookieSecure,
		page:       page,
		cues:       cues,
	}
	if s.ids == nil {
		s.ids = uuid.New()
	}
	if s.clock == nil {
		s.clock = clock.New()
	}
	if s.cookieName == "" {
		s.cookieName = "numguess_session"
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)               // add X-Request-ID
	s.r.Use(chimw.RealIP)                  // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(log.Logger))   // request-scoped logger
	s.r.Use(requestIDField)                // tag request logs with the chi request ID
	s.r.Use(hlog.RemoteAddrHandler("ip"))  // client address on every line
	s.r.Use(hlog.AccessHandler(accessLog)) // one line per request
	s.r.Use(chimw.Recoverer)               // recover from panics
	s.r.Use(chimw.Timeout(timeout))        // bound handler time

	// --- diagnostics ---
	s.r.With(jsonContentType).Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	// HTML UI
	s.mountPage(s.r)

	// JSON API
	s.r.Route("/api", func(r chi.Router) {
		r.Use(jsonContentType)
		s.mountAPI(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s, nil
}

// Router exposes the internal router (used by main and tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// requestIDField copies chi's request ID into the request logger.
func requestIDField(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			l := zerolog.Ctx(r.Context())
			l.UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("req_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Stringer("url", r.URL).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}

// ------------------------------ commands -----------------------------------

// apply runs fn against the caller's session (created on first use) and
// persists the result. Domain errors come back unwrapped alongside the
// current session so callers can still render it.
func (s *Server) apply(w http.ResponseWriter, r *http.Request, fn store.MutateFunc) (*game.Session, error) {
	id := s.sessionID(w, r)
	sess, err := s.store.Update(r.Context(), id, s.controller.NewSession, fn)
	if err != nil && !isDomainError(err) {
		hlog.FromRequest(r).Error().Err(err).Str("session", id).Msg("update session")
	}
	return sess, err
}

// current loads the caller's session without writing; unknown sessions get
// a fresh, unsaved one.
func (s *Server) current(w http.ResponseWriter, r *http.Request) (*game.Session, error) {
	id := s.sessionID(w, r)
	sess, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return s.controller.NewSession(id), nil
	}
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("session", id).Msg("load session")
		return nil, err
	}
	return sess, nil
}

func isDomainError(err error) bool {
	var ge game.GameError
	return errors.As(err, &ge)
}

// errorCode maps an error to an HTTP status and a stable machine code.
func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, game.ErrRoundInProgress):
		return http.StatusConflict, "round_in_progress"
	case errors.Is(err, game.ErrNoActiveRound):
		return http.StatusConflict, "no_active_round"
	case errors.Is(err, game.ErrRoundOver):
		return http.StatusConflict, "round_over"
	case errors.Is(err, game.ErrUnknownDifficulty):
		return http.StatusBadRequest, "unknown_difficulty"
	case errors.Is(err, game.ErrGuessOutOfRange):
		return http.StatusBadRequest, "guess_out_of_range"
	}
	return http.StatusInternalServerError, "store_failed"
}
