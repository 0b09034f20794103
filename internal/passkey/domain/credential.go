package domain

import "time"

// Credential is a registered WebAuthn public key. SignCount only ever grows.
type Credential struct {
	ID           string
	UserID       string
	CredentialID []byte
	PublicKey    []byte // COSE_Key
	Algorithm    int64
	SignCount    uint32
	AAGUID       []byte
	Transports   []string
	Revoked      bool
	LastUsedAt   *time.Time
	CreatedAt    time.Time
}
