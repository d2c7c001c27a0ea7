package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"
)

// MemoryStore is an in-memory Storer used by tests and local development.
// Write transactions operate on a copy of the table that replaces the live
// table only on commit, so a failed unit of work leaves no trace.
type MemoryStore struct {
	rw *semaphore.Weighted

	mu      sync.Mutex
	records map[string]ReferralRecord
	closed  bool
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rw:      semaphore.NewWeighted(maxConcurrentReaders),
		records: make(map[string]ReferralRecord),
	}
}

// CreateSchema is a noop for the in-memory store.
func (s *MemoryStore) CreateSchema(_ context.Context) error { return nil }

// Close marks the store closed; later transactions fail.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// WithReadTx runs fn against the live table.
func (s *MemoryStore) WithReadTx(ctx context.Context, fn TxFunc) error {
	if err := s.rw.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.rw.Release(1)

	table, err := s.table()
	if err != nil {
		return err
	}
	return fn(ctx, &memTx{records: table, readOnly: true})
}

// WithWriteTx runs fn against a private copy of the table and swaps it in if fn succeeds.
func (s *MemoryStore) WithWriteTx(ctx context.Context, fn TxFunc) error {
	if err := s.rw.Acquire(ctx, maxConcurrentReaders); err != nil {
		return err
	}
	defer s.rw.Release(maxConcurrentReaders)

	table, err := s.table()
	if err != nil {
		return err
	}

	working := make(map[string]ReferralRecord, len(table))
	for k, v := range table {
		working[k] = v
	}

	if err := fn(ctx, &memTx{records: working}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.records = working
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) table() (map[string]ReferralRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("memory store is closed")
	}
	return s.records, nil
}

type memTx struct {
	records  map[string]ReferralRecord
	readOnly bool
}

func (t *memTx) GetReferralRecord(ctx context.Context, contactID string) (ReferralRecord, error) {
	if err := ctx.Err(); err != nil {
		return ReferralRecord{}, err
	}
	record, ok := t.records[contactID]
	if !ok {
		return ReferralRecord{}, ErrNotFound
	}
	return record.Clone(), nil
}

func (t *memTx) ListReferralRecords(ctx context.Context) ([]ReferralRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]ReferralRecord, 0, len(t.records))
	for _, record := range t.records {
		out = append(out, record.Clone())
	}
	sortRecords(out)
	return out, nil
}

func (t *memTx) ListReferralRecordsByReferrer(ctx context.Context, referrerID string) ([]ReferralRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []ReferralRecord{}
	for _, record := range t.records {
		if record.ReferrerIs(referrerID) && record.ContactID != referrerID {
			out = append(out, record.Clone())
		}
	}
	sortRecords(out)
	return out, nil
}

func (t *memTx) InsertReferralRecord(ctx context.Context, record ReferralRecord) error {
	if t.readOnly {
		return ErrReadOnlyTx
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := t.records[record.ContactID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateRecord, record.ContactID)
	}
	t.records[record.ContactID] = record.Clone()
	return nil
}

func (t *memTx) UpsertReferralRecord(ctx context.Context, record ReferralRecord) error {
	if t.readOnly {
		return ErrReadOnlyTx
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if existing, ok := t.records[record.ContactID]; ok && existing.HasReferrer() {
		return fmt.Errorf("%w: %s", ErrDuplicateRecord, record.ContactID)
	}
	t.records[record.ContactID] = record.Clone()
	return nil
}

func (t *memTx) UpdateReferralRecord(ctx context.Context, record ReferralRecord) error {
	if t.readOnly {
		return ErrReadOnlyTx
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := t.records[record.ContactID]; !ok {
		return ErrNotFound
	}
	t.records[record.ContactID] = record.Clone()
	return nil
}

func (t *memTx) DeleteReferralRecord(ctx context.Context, contactID string) (bool, error) {
	if t.readOnly {
		return false, ErrReadOnlyTx
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, ok := t.records[contactID]; !ok {
		return false, nil
	}
	delete(t.records, contactID)
	return true, nil
}

func (t *memTx) ResetReferralRecords(ctx context.Context) error {
	if t.readOnly {
		return ErrReadOnlyTx
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for k := range t.records {
		delete(t.records, k)
	}
	return nil
}

func sortRecords(records []ReferralRecord) {
	sort.Slice(records, func(i, j int) bool { return records[i].ContactID < records[j].ContactID })
}
