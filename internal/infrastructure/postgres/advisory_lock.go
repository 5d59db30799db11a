package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// SeedLockKey is the pg_advisory_xact_lock key of the catalog seeder.
const SeedLockKey int64 = 7_340_001

// AdvisoryLock holds a transaction-scoped advisory lock around a callback.
// Other sessions asking for the same key block until the callback returns.
type AdvisoryLock struct {
	db  DB
	key int64
}

func NewAdvisoryLock(db DB, key int64) *AdvisoryLock {
	return &AdvisoryLock{db: db, key: key}
}

func (l *AdvisoryLock) WithLock(ctx context.Context, fn func(ctx context.Context) error) error {
	return inTx(ctx, l.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, l.key); err != nil {
			return err
		}
		return fn(ctx)
	})
}
