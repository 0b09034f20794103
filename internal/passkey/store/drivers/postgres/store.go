// Package postgres is the PostgreSQL store driver, using pgx through
// database/sql.
package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/passkey/internal/passkey/store"
	"github.com/aussiebroadwan/passkey/internal/passkey/store/drivers/sqldb"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const uniqueViolation = "23505"

var _ store.Store = (*Store)(nil)

type Store struct {
	*sqldb.Store
}

// NewStore opens a connection pool for dsn and verifies it with a ping.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{Store: sqldb.New(db, dialect{})}, nil
}

type dialect struct{}

func (dialect) Name() string { return "postgres" }

func (dialect) Rebind(query string) string { return sqldb.RebindDollar(query) }

func (dialect) IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
