package repository

import (
	"context"
	"fmt"

	"github.com/grovelab/grove-engine/internal/core/domain"
	"github.com/jmoiron/sqlx"
)

type txCtxKey struct{}

// SqlxAtomic implements domain.Atomic on a sqlx database. The open
// transaction travels inside the context, so every repository call made
// within RunAtomic joins it; calls outside a transaction hit the pool
// directly.
type SqlxAtomic struct {
	db *sqlx.DB
}

func NewSqlxAtomic(db *sqlx.DB) *SqlxAtomic {
	return &SqlxAtomic{db: db}
}

func (a *SqlxAtomic) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txCtxKey{}).(*sqlx.Tx); ok {
		// Already inside a transaction: join it.
		return fn(ctx)
	}

	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrPersistenceFailure, err)
	}

	if err := fn(context.WithValue(ctx, txCtxKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrPersistenceFailure, err)
	}

	return nil
}

// ext returns the executor for ctx: the enclosing transaction when
// present, the pool otherwise.
func ext(ctx context.Context, db *sqlx.DB) sqlx.ExtContext {
	if tx, ok := ctx.Value(txCtxKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db
}
