package sqldb

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/passkey/internal/passkey/domain"
	"github.com/aussiebroadwan/passkey/internal/passkey/store"
)

type invitesRepo struct {
	c conn
}

func (r *invitesRepo) CreateInvite(ctx context.Context, inv domain.Invite) error {
	_, err := r.c.exec(ctx, createInvite,
		inv.ID,
		inv.TokenHash,
		string(inv.Role),
		mapStringNull(inv.CreatedBy),
		inv.ExpiresAt.UTC(),
		inv.CreatedAt.UTC(),
	)
	return r.c.mapInsert(err)
}

func (r *invitesRepo) GetInviteByID(ctx context.Context, id string) (domain.Invite, error) {
	inv, err := scanInvite(r.c.queryRow(ctx, getInviteByID, id))
	if err != nil {
		return domain.Invite{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitesRepo) GetInviteByTokenHash(ctx context.Context, hash string) (domain.Invite, error) {
	inv, err := scanInvite(r.c.queryRow(ctx, getInviteByTokenHash, hash))
	if err != nil {
		return domain.Invite{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitesRepo) MarkInviteUsed(ctx context.Context, inviteID, usedByUserID string, at time.Time) error {
	res, err := r.c.exec(ctx, markInviteUsed, mapStringNull(usedByUserID), at.UTC(), inviteID)
	return expectOne(res, err, store.ErrConflict)
}

func scanInvite(row rowScanner) (domain.Invite, error) {
	var (
		inv       domain.Invite
		role      string
		createdBy sql.NullString
		usedBy    sql.NullString
		usedAt    sql.NullTime
	)
	err := row.Scan(
		&inv.ID,
		&inv.TokenHash,
		&role,
		&createdBy,
		&inv.ExpiresAt,
		&inv.Used,
		&usedBy,
		&usedAt,
		&inv.CreatedAt,
	)
	if err != nil {
		return domain.Invite{}, err
	}
	inv.Role = domain.Role(role)
	inv.CreatedBy = mapNullString(createdBy)
	inv.UsedBy = mapNullString(usedBy)
	inv.UsedAt = mapNullTimePtr(usedAt)
	inv.ExpiresAt = inv.ExpiresAt.UTC()
	inv.CreatedAt = inv.CreatedAt.UTC()
	return inv, nil
}
