package sqldb_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aussiebroadwan/passkey/internal/passkey/domain"
	"github.com/aussiebroadwan/passkey/internal/passkey/store"
	"github.com/aussiebroadwan/passkey/internal/passkey/store/drivers/sqldb"
	"github.com/stretchr/testify/require"
)

var errDuplicate = errors.New("duplicate key")

type dollarDialect struct{}

func (dollarDialect) Name() string                     { return "test" }
func (dollarDialect) Rebind(q string) string           { return sqldb.RebindDollar(q) }
func (dollarDialect) IsUniqueViolation(err error) bool { return errors.Is(err, errDuplicate) }

func newMockStore(t *testing.T) (*sqldb.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return sqldb.New(db, dollarDialect{}), mock
}

func TestRebindDollar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"SELECT 1", "SELECT 1"},
		{"SELECT * FROM t WHERE id = ?", "SELECT * FROM t WHERE id = $1"},
		{"UPDATE t SET a = ?, b = ? WHERE id = ? AND n < ?", "UPDATE t SET a = $1, b = $2 WHERE id = $3 AND n < $4"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, sqldb.RebindDollar(tt.in))
	}
}

func TestMarkInviteUsed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	const q = `UPDATE invites SET used = TRUE, used_by = \$1, used_at = \$2 WHERE id = \$3 AND used = FALSE`

	t.Run("first redemption wins", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)
		mock.ExpectExec(q).
			WithArgs("user-1", sqlmock.AnyArg(), "inv-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Invites().MarkInviteUsed(ctx, "inv-1", "user-1", time.Now()))
	})

	t.Run("already used is a conflict", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)
		mock.ExpectExec(q).
			WithArgs("user-2", sqlmock.AnyArg(), "inv-1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := s.Invites().MarkInviteUsed(ctx, "inv-1", "user-2", time.Now())
		require.ErrorIs(t, err, store.ErrConflict)
	})
}

func TestDeleteChallenge(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	const q = `DELETE FROM challenges WHERE id = \$1`

	s, mock := newMockStore(t)
	mock.ExpectExec(q).WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Challenges().DeleteChallenge(ctx, "c1"))
	require.ErrorIs(t, s.Challenges().DeleteChallenge(ctx, "c1"), store.ErrNotFound)
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	const q = `DELETE FROM users WHERE id = \$1`

	s, mock := newMockStore(t)
	mock.ExpectExec(q).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("u1").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Users().DeleteUser(ctx, "u1"))
	require.ErrorIs(t, s.Users().DeleteUser(ctx, "u1"), store.ErrNotFound)
}

func TestUpdateSignCount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	const q = `UPDATE credentials SET sign_count = \$1, last_used_at = \$2 WHERE id = \$3 AND sign_count < \$4`

	t.Run("increasing counter", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)
		mock.ExpectExec(q).
			WithArgs(int64(6), sqlmock.AnyArg(), "cred-1", int64(6)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Credentials().UpdateSignCount(ctx, "cred-1", 6, time.Now()))
	})

	t.Run("stale counter is a conflict", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)
		mock.ExpectExec(q).
			WithArgs(int64(5), sqlmock.AnyArg(), "cred-1", int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := s.Credentials().UpdateSignCount(ctx, "cred-1", 5, time.Now())
		require.ErrorIs(t, err, store.ErrConflict)
	})
}

func TestCreateCredential_Duplicate(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	mock.ExpectExec(`INSERT INTO credentials`).
		WithArgs("cred-row", "user-1", "AQID", sqlmock.AnyArg(), int64(-7), int64(0), sqlmock.AnyArg(), "hybrid internal", sqlmock.AnyArg()).
		WillReturnError(errDuplicate)

	err := s.Credentials().CreateCredential(context.Background(), domain.Credential{
		ID:           "cred-row",
		UserID:       "user-1",
		CredentialID: []byte{1, 2, 3},
		PublicKey:    []byte{0xa5},
		Algorithm:    -7,
		Transports:   []string{"hybrid", "internal"},
		CreatedAt:    time.Now(),
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestGetUserByID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	const q = `SELECT id, display_name, role, active, last_seen_at, created_at, updated_at FROM users WHERE id = \$1`

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)
		now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
		mock.ExpectQuery(q).WithArgs("u1").WillReturnRows(
			sqlmock.NewRows([]string{"id", "display_name", "role", "active", "last_seen_at", "created_at", "updated_at"}).
				AddRow("u1", "Ada", "admin", true, nil, now, now),
		)

		u, err := s.Users().GetUserByID(ctx, "u1")
		require.NoError(t, err)
		require.Equal(t, domain.RoleAdmin, u.Role)
		require.True(t, u.Active)
		require.Nil(t, u.LastSeenAt)
		require.Equal(t, now, u.CreatedAt)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)
		mock.ExpectQuery(q).WithArgs("nope").WillReturnError(sql.ErrNoRows)

		_, err := s.Users().GetUserByID(ctx, "nope")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestWithTx(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM challenges`).WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := s.WithTx(ctx, func(tx store.Tx) error {
			return tx.Challenges().DeleteChallenge(ctx, "c1")
		})
		require.NoError(t, err)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE invites SET used = TRUE`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := s.WithTx(ctx, func(tx store.Tx) error {
			return tx.Invites().MarkInviteUsed(ctx, "inv-1", "u1", time.Now())
		})
		require.ErrorIs(t, err, store.ErrConflict)
	})

	t.Run("nested transactions are refused", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := s.WithTx(ctx, func(tx store.Tx) error {
			return tx.WithTx(ctx, func(store.Tx) error { return nil })
		})
		require.ErrorIs(t, err, sql.ErrTxDone)
	})
}
