package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/passkey/internal/passkey/store"
	"github.com/aussiebroadwan/passkey/internal/passkey/store/drivers/sqldb"
	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

var _ store.Store = (*Store)(nil)

type Store struct {
	*sqldb.Store
	path string
}

// DSN builds a modernc.org/sqlite DSN for path. Write transactions take the
// lock up front (BEGIN IMMEDIATE) so concurrent registrations serialise on
// the busy timeout instead of failing with SQLITE_BUSY at commit.
func DSN(path string) string {
	if path == MemoryPath {
		return MemoryPath + "?_pragma=foreign_keys(1)"
	}
	return fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate",
		path,
	)
}

func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, err
	}

	// Every connection to :memory: is a separate database.
	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	return &Store{
		Store: sqldb.New(db, dialect{}),
		path:  path,
	}, nil
}

type dialect struct{}

func (dialect) Name() string { return "sqlite" }

func (dialect) Rebind(query string) string { return query }

func (dialect) IsUniqueViolation(err error) bool {
	var se *sqlitedrv.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
