package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const sqlGetReferralRecord = `
SELECT contact_id, referrer_id
FROM referral_records
WHERE contact_id = ?
`

// GetReferralRecord retrieves the record for a contact
func (t *Tx) GetReferralRecord(ctx context.Context, contactID string) (ReferralRecord, error) {
	var record ReferralRecord
	err := t.tx.GetContext(ctx, &record, t.tx.Rebind(sqlGetReferralRecord), contactID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ReferralRecord{}, ErrNotFound
		}
		t.s.logger.Error(ctx, "failed to get referral record", err)
		return ReferralRecord{}, fmt.Errorf("failed to get referral record: %w", err)
	}
	return record, nil
}

const sqlListReferralRecords = `
SELECT contact_id, referrer_id
FROM referral_records
ORDER BY contact_id
`

// ListReferralRecords retrieves every record in the table
func (t *Tx) ListReferralRecords(ctx context.Context) ([]ReferralRecord, error) {
	records := []ReferralRecord{}
	err := t.tx.SelectContext(ctx, &records, sqlListReferralRecords)
	if err != nil {
		t.s.logger.Error(ctx, "failed to list referral records", err)
		return nil, fmt.Errorf("failed to list referral records: %w", err)
	}
	return records, nil
}

const sqlListReferralRecordsByReferrer = `
SELECT contact_id, referrer_id
FROM referral_records
WHERE referrer_id = ? AND contact_id <> referrer_id
ORDER BY contact_id
`

// ListReferralRecordsByReferrer retrieves every record referred by referrerID
func (t *Tx) ListReferralRecordsByReferrer(ctx context.Context, referrerID string) ([]ReferralRecord, error) {
	records := []ReferralRecord{}
	err := t.tx.SelectContext(ctx, &records, t.tx.Rebind(sqlListReferralRecordsByReferrer), referrerID)
	if err != nil {
		t.s.logger.Error(ctx, "failed to list referral records by referrer", err)
		return nil, fmt.Errorf("failed to list referral records by referrer: %w", err)
	}
	return records, nil
}

const sqlInsertReferralRecord = `
INSERT INTO referral_records (contact_id, referrer_id)
VALUES (?, ?)
`

// InsertReferralRecord inserts a new record, failing if the contact already has one
func (t *Tx) InsertReferralRecord(ctx context.Context, record ReferralRecord) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	_, err := t.tx.ExecContext(ctx, t.tx.Rebind(sqlInsertReferralRecord), record.ContactID, record.ReferrerID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateRecord, record.ContactID)
		}
		t.s.logger.Error(ctx, "failed to insert referral record", err)
		return fmt.Errorf("failed to insert referral record: %w", err)
	}
	return nil
}

const sqlUpsertReferralRecord = `
INSERT INTO referral_records (contact_id, referrer_id)
VALUES (?, ?)
ON CONFLICT (contact_id) DO UPDATE SET referrer_id = excluded.referrer_id
WHERE referral_records.referrer_id IS NULL
`

// UpsertReferralRecord inserts the record or overwrites an unreferred
// placeholder. A contact that already has a referrer is left untouched and
// ErrDuplicateRecord is returned.
func (t *Tx) UpsertReferralRecord(ctx context.Context, record ReferralRecord) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	res, err := t.tx.ExecContext(ctx, t.tx.Rebind(sqlUpsertReferralRecord), record.ContactID, record.ReferrerID)
	if err != nil {
		t.s.logger.Error(ctx, "failed to upsert referral record", err)
		return fmt.Errorf("failed to upsert referral record: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		t.s.logger.Error(ctx, "failed to get rows affected", err)
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateRecord, record.ContactID)
	}

	return nil
}

const sqlUpdateReferralRecord = `
UPDATE referral_records
SET referrer_id = ?
WHERE contact_id = ?
`

// UpdateReferralRecord overwrites the referrer of an existing record
func (t *Tx) UpdateReferralRecord(ctx context.Context, record ReferralRecord) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	res, err := t.tx.ExecContext(ctx, t.tx.Rebind(sqlUpdateReferralRecord), record.ReferrerID, record.ContactID)
	if err != nil {
		t.s.logger.Error(ctx, "failed to update referral record", err)
		return fmt.Errorf("failed to update referral record: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		t.s.logger.Error(ctx, "failed to get rows affected", err)
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

const sqlDeleteReferralRecord = `
DELETE FROM referral_records
WHERE contact_id = ?
`

// DeleteReferralRecord removes the record for a contact, reporting whether a row existed
func (t *Tx) DeleteReferralRecord(ctx context.Context, contactID string) (bool, error) {
	if err := t.checkWritable(); err != nil {
		return false, err
	}
	res, err := t.tx.ExecContext(ctx, t.tx.Rebind(sqlDeleteReferralRecord), contactID)
	if err != nil {
		t.s.logger.Error(ctx, "failed to delete referral record", err)
		return false, fmt.Errorf("failed to delete referral record: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		t.s.logger.Error(ctx, "failed to get rows affected", err)
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

// ResetReferralRecords drops the table and recreates the schema
func (t *Tx) ResetReferralRecords(ctx context.Context) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(ctx, sqlDropReferralRecordsTable); err != nil {
		t.s.logger.Error(ctx, "failed to drop referral records", err)
		return fmt.Errorf("failed to drop referral records: %w", err)
	}
	if err := createSchema(ctx, t.tx); err != nil {
		t.s.logger.Error(ctx, "failed to recreate referral schema", err)
		return err
	}
	return nil
}

const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
