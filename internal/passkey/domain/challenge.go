package domain

import "time"

type ChallengeType string

const (
	ChallengeRegistration   ChallengeType = "registration"
	ChallengeAuthentication ChallengeType = "authentication"
)

// Challenge is a pending WebAuthn ceremony.
//
// For registration, InviteID is the presented invite and UserID is the user
// handle generated for the account about to be created. For authentication,
// UserID is set only when the client asked to log in as a known user.
type Challenge struct {
	ID          string
	Challenge   string // base64url of 32 random bytes
	Type        ChallengeType
	InviteID    string
	UserID      string
	DisplayName string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

func (c Challenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
