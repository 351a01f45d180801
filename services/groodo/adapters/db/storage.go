package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/gregory-chris/groodo-api-sub000/services/groodo/core"
)

// queryer is what *sqlx.DB and *sqlx.Tx have in common.
type queryer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// repo runs every query on q, which is either the pool or one transaction.
type repo struct {
	q queryer
}

type DB struct {
	repo

	log  *slog.Logger
	conn *sqlx.DB
}

func New(log *slog.Logger, address string) (*DB, error) {
	conn, err := sqlx.Connect("pgx", address)
	if err != nil {
		log.Error("connection problem", "address", address, "error", err)
		return nil, err
	}
	return newDB(log, conn), nil
}

func newDB(log *slog.Logger, conn *sqlx.DB) *DB {
	return &DB{repo: repo{q: conn}, log: log, conn: conn}
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// InTx runs fn in one transaction. It rolls back when fn fails or ctx is
// cancelled and commits otherwise.
func (db *DB) InTx(ctx context.Context, fn func(repo core.Repository) error) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return storageErr("begin tx", err)
	}

	if err := fn(repo{q: tx}); err != nil {
		if rErr := tx.Rollback(); rErr != nil && !errors.Is(rErr, sql.ErrTxDone) {
			db.log.Error("rollback failed", "error", rErr)
			return errors.Join(err, rErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageErr("commit tx", err)
	}
	return nil
}

const lockQuery = `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`

// Lock takes transaction-scoped advisory locks. Outside a transaction the
// lock is released as soon as the statement finishes.
func (r repo) Lock(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := r.q.ExecContext(ctx, lockQuery, key); err != nil {
			return storageErr("advisory lock "+key, err)
		}
	}
	return nil
}

// pg helpers

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", core.ErrStorage, op, err)
}

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	ok := errors.As(err, &pgErr)
	return pgErr, ok
}

func isUniqueViolation(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == "23503"
}

func isCheckViolation(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == "23514"
}

func constraintName(err error) string {
	if pgErr, ok := pgError(err); ok {
		return pgErr.ConstraintName
	}
	return ""
}
