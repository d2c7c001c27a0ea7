package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// referralWriteLockKey names the Postgres advisory lock every write
// transaction holds, so writers in separate processes sharing one database
// are serialized the same way the semaphore serializes them in-process.
const referralWriteLockKey int64 = 0x726566657272616c

const sqlAcquireWriteLock = `SELECT pg_advisory_xact_lock($1)`

// Tx is a ReferralTx bound to one database transaction.
type Tx struct {
	tx       *sqlx.Tx
	s        *Store
	readOnly bool
}

// WithWriteTx runs fn in a write transaction. Writers are admitted one at a
// time in arrival order and exclude all readers. On Postgres the writer also
// holds a transaction-scoped advisory lock shared by every process. The transaction commits when
// fn returns nil and rolls back otherwise.
func (s *Store) WithWriteTx(ctx context.Context, fn TxFunc) error {
	if err := s.rw.Acquire(ctx, maxConcurrentReaders); err != nil {
		return err
	}
	defer s.rw.Release(maxConcurrentReaders)

	return s.runTx(ctx, false, fn)
}

// WithReadTx runs fn in a read-only transaction. Any write attempted through
// the transaction fails with ErrReadOnlyTx before it reaches the database.
func (s *Store) WithReadTx(ctx context.Context, fn TxFunc) error {
	if err := s.rw.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.rw.Release(1)

	return s.runTx(ctx, true, fn)
}

func (s *Store) runTx(ctx context.Context, readOnly bool, fn TxFunc) (err error) {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: readOnly})
	if err != nil {
		s.logger.Error(ctx, "failed to begin transaction", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if !readOnly && s.driver == DriverPostgres {
		// Released by commit or rollback.
		if _, err := tx.ExecContext(ctx, sqlAcquireWriteLock, referralWriteLockKey); err != nil {
			_ = tx.Rollback()
			s.logger.Error(ctx, "failed to acquire referral write lock", err)
			return fmt.Errorf("failed to acquire referral write lock: %w", err)
		}
	}

	if err := fn(ctx, &Tx{tx: tx, s: s, readOnly: readOnly}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error(ctx, "failed to rollback transaction", rbErr)
		}
		return err
	}

	if readOnly {
		return tx.Rollback()
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error(ctx, "failed to commit transaction", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *Tx) checkWritable() error {
	if t.readOnly {
		return ErrReadOnlyTx
	}
	return nil
}
