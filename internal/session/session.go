package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is a stored auth session. ExpiresAt is zero when unknown.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Expired reports whether the session is past its expiry at the given
// instant. A session with unknown expiry is never considered expired;
// the server is the final authority in that case.
func (s Session) Expired(at time.Time) bool {
	return !s.ExpiresAt.IsZero() && !at.Before(s.ExpiresAt)
}

// Provider answers authentication queries for the flush controller.
type Provider interface {
	// IsAuthenticated reports whether a usable session exists.
	IsAuthenticated(ctx context.Context) bool
	// Current returns the active session, if any.
	Current(ctx context.Context) (Session, bool)
}

// expiryFromToken derives an expiry from the access token's exp claim.
// The parse is unverified; only the claim payload is read. Returns the
// zero time when the token or claim is unusable.
func expiryFromToken(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
