// Package refdata holds the reference data store: seven delimited tables
// loaded once at startup into a relational backend and exposed for ad-hoc
// querying. The tables are read-only after load.
package refdata

import (
	"context"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Store is the relational backend behind the reference tables. The default
// backend is an in-memory SQLite database; a shared Postgres instance can be
// used instead when several dashboards serve the same reference data.
type Store interface {
	// Migrate creates the reference tables and indexes.
	Migrate(ctx context.Context) error

	// InsertRows bulk-inserts rows into a reference table during load.
	// The store is never written to after Load completes.
	InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// Query runs a relational query and returns the generic result table.
	// Queries use ? placeholders; each backend adapts them to its dialect.
	Query(ctx context.Context, query string, args ...any) (*Table, error)

	Close() error
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, driver, databaseURL string) (Store, error) {
	switch driver {
	case "", "sqlite":
		return NewSQLite(databaseURL)
	case "postgres":
		return NewPostgres(ctx, databaseURL)
	default:
		return nil, eris.Errorf("refdata: unknown store driver %q", driver)
	}
}

// Rebind converts ? placeholders to the $n form used by Postgres. Literal
// question marks inside single-quoted strings are left alone; the reference
// queries never contain any, so the scan is a straight pass.
func Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
