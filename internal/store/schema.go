package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const sqlCreateReferralRecordsTable = `
CREATE TABLE IF NOT EXISTS referral_records (
    contact_id  TEXT PRIMARY KEY NOT NULL,
    referrer_id TEXT
)
`

const sqlCreateReferrerIndex = `
CREATE INDEX IF NOT EXISTS idx_referral_records_referrer_id
ON referral_records (referrer_id)
`

const sqlDropReferralRecordsTable = `DROP TABLE IF EXISTS referral_records`

var schemaStatements = []string{
	sqlCreateReferralRecordsTable,
	sqlCreateReferrerIndex,
}

// CreateSchema creates the referral table if it does not exist yet. It is safe
// to call repeatedly.
func (s *Store) CreateSchema(ctx context.Context) error {
	if err := s.rw.Acquire(ctx, maxConcurrentReaders); err != nil {
		return err
	}
	defer s.rw.Release(maxConcurrentReaders)

	if err := createSchema(ctx, s.db); err != nil {
		s.logger.Error(ctx, "failed to create referral schema", err)
		return err
	}
	return nil
}

func createSchema(ctx context.Context, execer sqlx.ExecerContext) error {
	for _, stmt := range schemaStatements {
		if _, err := execer.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
