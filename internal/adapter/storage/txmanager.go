package storage

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/supawitsnnrk/bluepi-backend/internal/core/domain"
	"github.com/supawitsnnrk/bluepi-backend/internal/core/port"
)

// PgxTxManager is the transaction coordinator over a pgx pool. Commit happens
// only when fn returns nil; the deferred rollback is a no-op after commit and
// releases the connection on every other exit path.
type PgxTxManager struct {
	Db *pgxpool.Pool
}

func (m *PgxTxManager) WithinTx(ctx context.Context, fn func(tx port.Tx) error) error {
	tx, err := m.Db.Begin(ctx)
	if err != nil {
		return domain.Internal(err, "begin transaction")
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Internal(err, "commit transaction")
	}
	return nil
}

// querier is the query surface shared by the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// queries resolves an optional transaction handle to something queryable.
func queries(db *pgxpool.Pool, tx port.Tx) querier {
	if tx == nil {
		return db
	}
	return tx.(pgx.Tx)
}

// inTx runs fn inside the supplied transaction, or inside a fresh one when tx
// is nil. Multi-statement read-modify-write sequences go through here so a
// bare repository call still gets row-lock atomicity.
func inTx[T any](ctx context.Context, db *pgxpool.Pool, tx port.Tx, fn func(tx pgx.Tx) (T, error)) (T, error) {
	if tx != nil {
		return fn(tx.(pgx.Tx))
	}

	var zero T
	own, err := db.Begin(ctx)
	if err != nil {
		return zero, domain.Internal(err, "begin transaction")
	}
	defer own.Rollback(ctx)

	out, err := fn(own)
	if err != nil {
		return zero, err
	}
	if err := own.Commit(ctx); err != nil {
		return zero, domain.Internal(err, "commit transaction")
	}
	return out, nil
}
