package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/partnerdesk/platform/internal/infra"
)

// Transactor hands out the shared connection pool for reads and runs write
// paths inside a transaction.
type Transactor interface {
	Conn() DBTX
	WithinTx(ctx context.Context, fn func(tx DBTX) error) error
}

type poolTransactor struct {
	pool *pgxpool.Pool
}

// NewTransactor returns a Transactor backed by a pgx pool.
func NewTransactor(pool *pgxpool.Pool) Transactor {
	return &poolTransactor{pool: pool}
}

func (t *poolTransactor) Conn() DBTX { return t.pool }

func (t *poolTransactor) WithinTx(ctx context.Context, fn func(tx DBTX) error) error {
	return infra.WithTx(ctx, t.pool, func(tx pgx.Tx) error {
		return fn(tx)
	})
}

// IsUniqueViolation reports whether err is a Postgres unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
