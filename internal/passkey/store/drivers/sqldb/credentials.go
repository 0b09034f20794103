package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aussiebroadwan/passkey/internal/passkey/domain"
	"github.com/aussiebroadwan/passkey/internal/passkey/store"
	"github.com/aussiebroadwan/passkey/pkg/cryptox"
)

type credentialsRepo struct {
	c conn
}

// Credential ids are stored as base64url text so both backends can index them
// with a plain unique constraint.
func (r *credentialsRepo) CreateCredential(ctx context.Context, cred domain.Credential) error {
	_, err := r.c.exec(ctx, createCredential,
		cred.ID,
		cred.UserID,
		cryptox.EncodeBase64URL(cred.CredentialID),
		cred.PublicKey,
		cred.Algorithm,
		int64(cred.SignCount),
		cred.AAGUID,
		joinFields(cred.Transports),
		cred.CreatedAt.UTC(),
	)
	return r.c.mapInsert(err)
}

func (r *credentialsRepo) GetCredentialByCredentialID(ctx context.Context, credentialID []byte) (domain.Credential, error) {
	cred, err := scanCredential(r.c.queryRow(ctx, getCredentialByCredentialID, cryptox.EncodeBase64URL(credentialID)))
	if err != nil {
		return domain.Credential{}, mapNotFound(err)
	}
	return cred, nil
}

func (r *credentialsRepo) ListActiveCredentialsByUser(ctx context.Context, userID string) ([]domain.Credential, error) {
	rows, err := r.c.query(ctx, listActiveCredentialsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Credential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cred)
	}
	return out, rows.Err()
}

func (r *credentialsRepo) UpdateSignCount(ctx context.Context, id string, newCount uint32, usedAt time.Time) error {
	res, err := r.c.exec(ctx, updateSignCount, int64(newCount), usedAt.UTC(), id, int64(newCount))
	return expectOne(res, err, store.ErrConflict)
}

func (r *credentialsRepo) RevokeCredential(ctx context.Context, id string) error {
	res, err := r.c.exec(ctx, revokeCredential, id)
	return expectOne(res, err, store.ErrNotFound)
}

func scanCredential(row rowScanner) (domain.Credential, error) {
	var (
		cred       domain.Credential
		credID     string
		signCount  int64
		aaguid     []byte
		transports string
		lastUsed   sql.NullTime
	)
	err := row.Scan(
		&cred.ID,
		&cred.UserID,
		&credID,
		&cred.PublicKey,
		&cred.Algorithm,
		&signCount,
		&aaguid,
		&transports,
		&cred.Revoked,
		&lastUsed,
		&cred.CreatedAt,
	)
	if err != nil {
		return domain.Credential{}, err
	}

	raw, err := cryptox.DecodeBase64URL(credID)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("credential %s: stored credential id: %w", cred.ID, err)
	}
	cred.CredentialID = raw
	cred.SignCount = uint32(signCount)
	cred.AAGUID = aaguid
	cred.Transports = splitFields(transports)
	cred.LastUsedAt = mapNullTimePtr(lastUsed)
	cred.CreatedAt = cred.CreatedAt.UTC()
	return cred, nil
}
