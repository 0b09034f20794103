package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretSize is the smallest HMAC secret accepted, matching the SHA-256
// block output.
const MinSecretSize = 32

// ErrWeakSecret is returned when an HMAC secret is shorter than MinSecretSize.
var ErrWeakSecret = fmt.Errorf("jwtx: secret must be at least %d bytes", MinSecretSize)

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// HS256Signer signs session tokens with HMAC-SHA256.
type HS256Signer struct {
	secret []byte
}

// NewSignerHS256 returns an HS256 signer for the shared secret.
func NewSignerHS256(secret []byte) (*HS256Signer, error) {
	if len(secret) < MinSecretSize {
		return nil, ErrWeakSecret
	}
	return &HS256Signer{secret: append([]byte(nil), secret...)}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

// Sign produces a compact JWS with header {"alg":"HS256","typ":"JWT"}.
func (s *HS256Signer) Sign(c Claims) (string, error) {
	if c.Subject == "" {
		return "", errors.New("jwtx: missing subject")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}
