package domain

import "time"

// Invite is a single-use, role-scoped registration ticket. Only the SHA-256
// fingerprint of the raw token is stored.
type Invite struct {
	ID        string
	TokenHash string
	Role      Role
	CreatedBy string // empty when minted from the CLI
	ExpiresAt time.Time
	Used      bool
	UsedBy    string
	UsedAt    *time.Time
	CreatedAt time.Time
}

func (i Invite) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
