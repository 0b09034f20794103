package sqldb

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/passkey/internal/passkey/domain"
	"github.com/aussiebroadwan/passkey/internal/passkey/store"
)

type challengesRepo struct {
	c conn
}

func (r *challengesRepo) CreateChallenge(ctx context.Context, ch domain.Challenge) error {
	_, err := r.c.exec(ctx, createChallenge,
		ch.ID,
		ch.Challenge,
		string(ch.Type),
		mapStringNull(ch.InviteID),
		mapStringNull(ch.UserID),
		mapStringNull(ch.DisplayName),
		ch.ExpiresAt.UTC(),
		ch.CreatedAt.UTC(),
	)
	return r.c.mapInsert(err)
}

func (r *challengesRepo) GetChallenge(ctx context.Context, id string) (domain.Challenge, error) {
	var (
		ch          domain.Challenge
		typ         string
		inviteID    sql.NullString
		userID      sql.NullString
		displayName sql.NullString
	)
	err := r.c.queryRow(ctx, getChallenge, id).Scan(
		&ch.ID,
		&ch.Challenge,
		&typ,
		&inviteID,
		&userID,
		&displayName,
		&ch.ExpiresAt,
		&ch.CreatedAt,
	)
	if err != nil {
		return domain.Challenge{}, mapNotFound(err)
	}
	ch.Type = domain.ChallengeType(typ)
	ch.InviteID = mapNullString(inviteID)
	ch.UserID = mapNullString(userID)
	ch.DisplayName = mapNullString(displayName)
	ch.ExpiresAt = ch.ExpiresAt.UTC()
	ch.CreatedAt = ch.CreatedAt.UTC()
	return ch, nil
}

func (r *challengesRepo) DeleteChallenge(ctx context.Context, id string) error {
	res, err := r.c.exec(ctx, deleteChallenge, id)
	return expectOne(res, err, store.ErrNotFound)
}
