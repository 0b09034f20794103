// Package sqldb is the database/sql implementation of store.Store shared by
// the sqlite and postgres drivers. Queries are written with ? placeholders and
// rebound per dialect.
package sqldb

import (
	"strconv"
	"strings"
)

// Dialect captures the differences between SQL backends.
type Dialect interface {
	Name() string
	Rebind(query string) string
	IsUniqueViolation(err error) bool
}

// RebindDollar rewrites ? placeholders to $1, $2, ... for postgres.
func RebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c != '?' {
			b.WriteByte(c)
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}
