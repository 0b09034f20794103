package sqldb

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/passkey/internal/passkey/domain"
	"github.com/aussiebroadwan/passkey/internal/passkey/store"
)

type usersRepo struct {
	c conn
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.c.exec(ctx, createUser,
		u.ID,
		u.DisplayName,
		string(u.Role),
		u.Active,
		u.CreatedAt.UTC(),
		u.UpdatedAt.UTC(),
	)
	return r.c.mapInsert(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	u, err := scanUser(r.c.queryRow(ctx, getUserByID, id))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) TouchLastSeen(ctx context.Context, userID string, at time.Time) error {
	res, err := r.c.exec(ctx, touchLastSeen, at.UTC(), at.UTC(), userID)
	return expectOne(res, err, store.ErrNotFound)
}

func (r *usersRepo) SetUserActive(ctx context.Context, userID string, active bool) error {
	res, err := r.c.exec(ctx, setUserActive, active, time.Now().UTC(), userID)
	return expectOne(res, err, store.ErrNotFound)
}

func (r *usersRepo) DeleteUser(ctx context.Context, userID string) error {
	res, err := r.c.exec(ctx, deleteUser, userID)
	return expectOne(res, err, store.ErrNotFound)
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u        domain.User
		role     string
		lastSeen sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.DisplayName, &role, &u.Active, &lastSeen, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return domain.User{}, err
	}
	u.Role = domain.Role(role)
	u.LastSeenAt = mapNullTimePtr(lastSeen)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}
