package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is the lifetime of a session token minted after a
// successful passkey ceremony.
const DefaultSessionTTL = 30 * 24 * time.Hour

// Claims are the session-token claims. Only sub, iat and exp are populated
// from the registered set so the payload stays {sub, role, iat, exp}.
type Claims struct {
	jwt.RegisteredClaims

	// Role of the user at the time the token was minted ("admin" or "user").
	Role string `json:"role"`
}

// NewSessionClaims builds the claims for a user session. Times are truncated
// to whole seconds, so exp-iat is exactly ttl.
func NewSessionClaims(subject, role string, ttl time.Duration, now time.Time) Claims {
	iat := now.UTC().Truncate(time.Second)
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(iat.Add(ttl)),
		},
		Role: role,
	}
}

// ValidateExpiry ensures the token hasn't expired (exp).
func (c *Claims) ValidateExpiry() error {
	if c.ExpiresAt == nil {
		return ErrInvalidClaim
	}
	if time.Now().UTC().After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	return nil
}
