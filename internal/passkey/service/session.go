package service

import (
	"time"

	"github.com/aussiebroadwan/passkey/internal/passkey/domain"
	"github.com/aussiebroadwan/passkey/pkg/jwtx"
)

// SessionService mints bearer tokens for authenticated users.
type SessionService struct {
	Signer jwtx.Signer
	TTL    time.Duration
	Now    func() time.Time
}

func (s *SessionService) Issue(u domain.User) (string, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultSessionTTL
	}
	return s.Signer.Sign(jwtx.NewSessionClaims(u.ID, string(u.Role), ttl, nowFunc(s.Now)))
}

// AuthResult is returned by both finish ceremonies.
type AuthResult struct {
	User  domain.User
	Token string
}
