package store

import "context"

// TxFunc is a unit of work executed inside a store transaction.
type TxFunc func(ctx context.Context, tx ReferralTx) error

// ReferralTx exposes the raw row operations on the referral_records table.
// Implementations perform no business-rule checks.
type ReferralTx interface {
	GetReferralRecord(ctx context.Context, contactID string) (ReferralRecord, error)
	ListReferralRecords(ctx context.Context) ([]ReferralRecord, error)
	// ListReferralRecordsByReferrer never returns a row that refers to itself.
	ListReferralRecordsByReferrer(ctx context.Context, referrerID string) ([]ReferralRecord, error)

	InsertReferralRecord(ctx context.Context, record ReferralRecord) error
	UpsertReferralRecord(ctx context.Context, record ReferralRecord) error
	UpdateReferralRecord(ctx context.Context, record ReferralRecord) error
	DeleteReferralRecord(ctx context.Context, contactID string) (bool, error)
	// ResetReferralRecords drops every row and recreates the schema.
	ResetReferralRecords(ctx context.Context) error
}

// Storer is the transactional boundary around the referral table.
// Writes are serialized; reads may run concurrently with each other but never
// with a write.
type Storer interface {
	CreateSchema(ctx context.Context) error
	WithReadTx(ctx context.Context, fn TxFunc) error
	WithWriteTx(ctx context.Context, fn TxFunc) error
	Close() error
}
