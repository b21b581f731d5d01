package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/hlog"
)

// cookieLifetime bounds how long a browser keeps its session token. The
// session itself may expire sooner in the store; the ID is then reused for a
// fresh session.
const cookieLifetime = 180 * 24 * time.Hour

const sessionIssuer = "numguess"

// sessionID returns the caller's session ID from a valid signed cookie, or
// issues a new ID and cookie. Tampered or expired tokens are replaced.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(s.cookieName); err == nil && c.Value != "" {
		id, err := s.parseSessionToken(c.Value)
		if err == nil {
			return id
		}
		hlog.FromRequest(r).Warn().Err(err).Msg("rejecting session cookie")
	}

	id := s.ids.NewUUID()
	tok, exp, err := s.signSessionToken(id)
	if err != nil {
		// HS256 signing with a non-empty key does not fail in practice;
		// play on with an unsaved cookie rather than 500.
		hlog.FromRequest(r).Error().Err(err).Msg("sign session token")
		return id
	}
	s.setSessionCookie(w, tok, exp)
	return id
}

// signSessionToken creates an HS256 JWT whose subject is the session ID.
func (s *Server) signSessionToken(id string) (string, time.Time, error) {
	now := s.clock.Now()
	exp := now.Add(cookieLifetime)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    sessionIssuer,
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString(s.secret)
	return ss, exp, err
}

// parseSessionToken verifies signature, algorithm, issuer and expiry.
func (s *Server) parseSessionToken(tok string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tok, claims,
		func(t *jwt.Token) (interface{}, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("session token has no subject")
	}
	return claims.Subject, nil
}

// setSessionCookie writes the session cookie with appropriate security attributes.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	sameSite := http.SameSiteLaxMode
	if s.secure {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}
