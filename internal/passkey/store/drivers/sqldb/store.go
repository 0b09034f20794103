package sqldb

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aussiebroadwan/passkey/internal/passkey/store"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn binds a DBTX to a dialect so repos can write ? placeholders.
type conn struct {
	db DBTX
	d  Dialect
}

func (c conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.db.ExecContext(ctx, c.d.Rebind(query), args...)
}

func (c conn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.db.QueryContext(ctx, c.d.Rebind(query), args...)
}

func (c conn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.db.QueryRowContext(ctx, c.d.Rebind(query), args...)
}

// Store implements every store.Store method except ApplyMigrations, which
// each driver supplies.
type Store struct {
	db *sql.DB
	d  Dialect
}

func New(db *sql.DB, d Dialect) *Store {
	return &Store{db: db, d: d}
}

// DB exposes the pool for migration drivers.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Dialect() Dialect { return s.d }

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx, s.d), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) conn() conn { return conn{db: s.db, d: s.d} }

func (s *Store) Users() store.Users             { return &usersRepo{c: s.conn()} }
func (s *Store) Invites() store.Invites         { return &invitesRepo{c: s.conn()} }
func (s *Store) Challenges() store.Challenges   { return &challengesRepo{c: s.conn()} }
func (s *Store) Credentials() store.Credentials { return &credentialsRepo{c: s.conn()} }

type txStore struct {
	tx *sql.Tx
	c  conn
}

func newTx(tx *sql.Tx, d Dialect) *txStore {
	return &txStore{tx: tx, c: conn{db: tx, d: d}}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error                   { return nil }
func (t *txStore) Ping(ctx context.Context) error { return nil }

// ApplyMigrations is a no-op; migrations run before any transaction.
func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users             { return &usersRepo{c: t.c} }
func (t *txStore) Invites() store.Invites         { return &invitesRepo{c: t.c} }
func (t *txStore) Challenges() store.Challenges   { return &challengesRepo{c: t.c} }
func (t *txStore) Credentials() store.Credentials { return &credentialsRepo{c: t.c} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func (c conn) mapInsert(err error) error {
	if err != nil && c.d.IsUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// expectOne converts a zero-row write into miss.
func expectOne(res sql.Result, err error, miss error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return miss
	}
	return nil
}
