package renku

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// SessionState is the authentication state owned by one client.
type SessionState int32

const (
	// SessionAuthenticated is the initial state.
	SessionAuthenticated SessionState = iota
	// SessionRenewing means a renewal navigation has been started. Further
	// expiries are short-circuited without navigating until Reset is called,
	// either by an explicit Login or by the caller once new credentials are
	// in place.
	SessionRenewing
)

// String implements fmt.Stringer.
func (s SessionState) String() string {
	switch s {
	case SessionAuthenticated:
		return "authenticated"
	case SessionRenewing:
		return "renewing"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

// Session tracks whether a renewal is in flight. It is safe for concurrent use.
type Session struct {
	state atomic.Int32
}

// NewSession returns an authenticated session.
func NewSession() *Session {
	return &Session{}
}

// State returns the current state.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// Renewing reports whether a renewal was started.
func (s *Session) Renewing() bool {
	return s.State() == SessionRenewing
}

// BeginRenewal moves the session to Renewing. Only the caller that performs
// the transition gets true and must start the navigation.
func (s *Session) BeginRenewal() bool {
	return s.state.CompareAndSwap(int32(SessionAuthenticated), int32(SessionRenewing))
}

// Reset moves the session back to Authenticated so that the next expiry
// starts a new renewal.
func (s *Session) Reset() {
	s.state.Store(int32(SessionAuthenticated))
}

// TokenClaims is the subset of bearer token claims shown to users.
type TokenClaims struct {
	Subject           string    `json:"subject"            yaml:"subject"`
	PreferredUsername string    `json:"preferred_username" yaml:"preferred_username"`
	Email             string    `json:"email"              yaml:"email"`
	ExpiresAt         time.Time `json:"expires_at"         yaml:"expires_at"`
}

// Expired reports whether the token expiry is before now. Tokens without an
// expiry never expire.
func (c *TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

type tokenClaims struct {
	jwt.RegisteredClaims

	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
}

// ParseTokenClaims reads the claims of a JWT bearer token without verifying
// its signature. The gateway verifies tokens; this is for display only.
func ParseTokenClaims(token string) (*TokenClaims, error) {
	var claims tokenClaims

	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil {
		return nil, fmt.Errorf("parsing token claims: %w", err)
	}

	result := &TokenClaims{
		Subject:           claims.Subject,
		PreferredUsername: claims.PreferredUsername,
		Email:             claims.Email,
	}

	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}

	return result, nil
}
