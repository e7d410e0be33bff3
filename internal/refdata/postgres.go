package refdata

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/gfc-explorer/internal/db"
)

// PostgresStore implements Store using pgxpool. It exists for deployments
// where several dashboard instances share one copy of the reference tables;
// the SQLite store remains the default.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	if connString == "" {
		return nil, eris.New("postgres: database_url is required")
	}

	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: pool.Close}
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, migration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// InsertRows bulk-inserts via COPY.
func (s *PostgresStore) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	n, err := db.CopyFrom(ctx, s.pool, table, columns, rows)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: load %s", table)
	}
	return n, nil
}

func (s *PostgresStore) Query(ctx context.Context, query string, args ...any) (*Table, error) {
	rows, err := s.pool.Query(ctx, Rebind(query), args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query")
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}

	t := &Table{Columns: cols}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, eris.Wrap(err, "postgres: row values")
		}
		row := make([]any, len(vals))
		copy(row, vals)
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate")
	}
	return t, nil
}
