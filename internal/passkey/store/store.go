package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/passkey/internal/passkey/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	// ErrConflict is returned by conditional writes that matched no row.
	ErrConflict = errors.New("store: conflict")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. Sub-repositories are exposed as methods so a Tx can hand out
// the same repos bound to the transaction.
type Store interface {
	Users() Users
	Invites() Invites
	Challenges() Challenges
	Credentials() Credentials

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	CreateUser(ctx context.Context, u domain.User) error
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// TouchLastSeen records a successful login.
	TouchLastSeen(ctx context.Context, userID string, at time.Time) error

	// SetUserActive returns ErrNotFound for an unknown user.
	SetUserActive(ctx context.Context, userID string, active bool) error

	// DeleteUser removes the user and, by cascade, their credentials.
	// Invites they created or used keep their rows with the reference nulled.
	DeleteUser(ctx context.Context, userID string) error
}

type Invites interface {
	CreateInvite(ctx context.Context, inv domain.Invite) error
	GetInviteByID(ctx context.Context, id string) (domain.Invite, error)
	GetInviteByTokenHash(ctx context.Context, hash string) (domain.Invite, error)

	// MarkInviteUsed flips used=true only if the invite is still unused.
	// It returns ErrConflict when another redemption got there first.
	MarkInviteUsed(ctx context.Context, inviteID, usedByUserID string, at time.Time) error
}

type Challenges interface {
	CreateChallenge(ctx context.Context, c domain.Challenge) error
	GetChallenge(ctx context.Context, id string) (domain.Challenge, error)

	// DeleteChallenge removes the challenge and returns ErrNotFound when no
	// row was deleted, so exactly one caller can consume a challenge.
	DeleteChallenge(ctx context.Context, id string) error
}

type Credentials interface {
	// CreateCredential returns ErrAlreadyExists for a duplicate credential id.
	CreateCredential(ctx context.Context, c domain.Credential) error
	GetCredentialByCredentialID(ctx context.Context, credentialID []byte) (domain.Credential, error)
	ListActiveCredentialsByUser(ctx context.Context, userID string) ([]domain.Credential, error)

	// UpdateSignCount stores newCount only if it is strictly greater than the
	// stored counter and returns ErrConflict otherwise.
	UpdateSignCount(ctx context.Context, id string, newCount uint32, usedAt time.Time) error

	// RevokeCredential returns ErrNotFound for an unknown credential.
	RevokeCredential(ctx context.Context, id string) error
}
