// Package postgres implements the Postgres backend using pgx v5. Rows are
// loaded with COPY FROM STDIN, one COPY per batch.
//
// Importing the package registers the "postgres" kind with the storage
// factory.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"moviecatalog/internal/storage"
)

// Repository is a Postgres-backed storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
}

var _ storage.Repository = (*Repository)(nil)

// NewRepository opens a pgx pool for dsn and verifies connectivity.
func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &Repository{pool: pool}, nil
}

// CopyFrom streams rows into table via COPY.
func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := r.pool.CopyFrom(ctx, Identifier(table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return n, fmt.Errorf("copy into %s: %s (%s)", table, pgErr.Detail, pgErr.SQLState())
		}
		return n, fmt.Errorf("copy into %s: %w", table, err)
	}
	return n, nil
}

// Exec executes a SQL statement against the pool.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("postgres exec: %w", err)
	}
	return nil
}

// Close releases the pool.
func (r *Repository) Close() { r.pool.Close() }

// Identifier splits a possibly schema-qualified table name for pgx.
func Identifier(table string) pgx.Identifier {
	return pgx.Identifier(strings.Split(table, "."))
}

func quote(id string) string { return pgx.Identifier{id}.Sanitize() }

// Dialect renders Postgres DDL.
type Dialect struct{}

func (Dialect) CreateTable(t storage.TableDef) (string, error) {
	stmt, err := storage.BuildCreateTable(t, quote, mapType)
	if err != nil {
		return "", err
	}
	return strings.Replace(stmt, "CREATE TABLE ", "CREATE TABLE IF NOT EXISTS ", 1), nil
}

func (Dialect) ClearTable(table string) string {
	return "TRUNCATE TABLE " + Identifier(table).Sanitize()
}

func mapType(c storage.ColumnDef) string {
	switch c.Type {
	case storage.TypeInt:
		return "BIGINT"
	case storage.TypeReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, err := newRepository(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return r, nil
	})
	storage.RegisterDialect("postgres", Dialect{})
}
