package processor

import (
	"context"
	"errors"

	"referral-graph/internal/events"
	"referral-graph/internal/observability"
	"referral-graph/internal/referral/notifier"
	"referral-graph/internal/store"
)

// ReferralProcessor enforces the referral invariants around the store. Every
// write runs as one serialized transaction; committed writes are published.
type ReferralProcessor struct {
	store     ReferralStore
	publisher ChangePublisher
	logger    *observability.Logger
}

// New creates a processor. publisher may be nil.
func New(store ReferralStore, publisher ChangePublisher, logger *observability.Logger) *ReferralProcessor {
	return &ReferralProcessor{
		store:     store,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateRecord records that referrerID referred contactID. An empty referrerID
// creates an unreferred placeholder. A placeholder may later be overwritten by
// another CreateRecord; a contact that already has a referrer may not.
func (p *ReferralProcessor) CreateRecord(ctx context.Context, contactID, referrerID string) error {
	ctx = withRecordFields(ctx, contactID, referrerID)

	if err := validateEdge(contactID, referrerID); err != nil {
		return err
	}

	change := events.ReferralChange{
		Kind:       events.ChangeCreated,
		ContactID:  contactID,
		ReferrerID: referrerID,
	}

	err := p.store.WithWriteTx(ctx, func(ctx context.Context, tx store.ReferralTx) error {
		existing, err := tx.GetReferralRecord(ctx, contactID)
		switch {
		case err == nil:
			if existing.HasReferrer() {
				return ErrAlreadyReferred
			}
			change.Kind = events.ChangeUpdated
		case errors.Is(err, store.ErrNotFound):
		default:
			return err
		}

		if err := checkBackReference(ctx, tx, contactID, referrerID); err != nil {
			return err
		}

		err = tx.UpsertReferralRecord(ctx, store.NewReferralRecord(contactID, referrerID))
		if errors.Is(err, store.ErrDuplicateRecord) {
			// Another writer referred the contact after the read above.
			return ErrAlreadyReferred
		}
		return err
	})
	if err != nil {
		return p.writeError(ctx, "failed to create referral record", ErrSaveFailed, err)
	}

	p.logger.Info(ctx, "created referral record")
	p.publish(ctx, change)
	return nil
}

// UpdateRecord replaces the referrer of an existing record. An empty
// referrerID clears it.
func (p *ReferralProcessor) UpdateRecord(ctx context.Context, contactID, referrerID string) error {
	ctx = withRecordFields(ctx, contactID, referrerID)

	if err := validateEdge(contactID, referrerID); err != nil {
		return err
	}

	change := events.ReferralChange{
		Kind:       events.ChangeUpdated,
		ContactID:  contactID,
		ReferrerID: referrerID,
	}

	err := p.store.WithWriteTx(ctx, func(ctx context.Context, tx store.ReferralTx) error {
		existing, err := tx.GetReferralRecord(ctx, contactID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNoExistingRecord
		}
		if err != nil {
			return err
		}
		change.PreviousReferrerID = existing.Referrer()

		if err := checkBackReference(ctx, tx, contactID, referrerID); err != nil {
			return err
		}

		return tx.UpdateReferralRecord(ctx, store.NewReferralRecord(contactID, referrerID))
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// The row vanished between the check and the update.
			err = ErrNoExistingRecord
		}
		return p.writeError(ctx, "failed to update referral record", ErrSaveFailed, err)
	}

	p.logger.Info(ctx, "updated referral record")
	p.publish(ctx, change)
	return nil
}

// DeleteRecord removes the record for contactID and reports whether one
// existed.
func (p *ReferralProcessor) DeleteRecord(ctx context.Context, contactID string) (bool, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "contact_id", Value: contactID})

	if contactID == "" {
		return false, ErrInvalidContactID
	}

	change := events.ReferralChange{
		Kind:      events.ChangeDeleted,
		ContactID: contactID,
	}

	var deleted bool
	err := p.store.WithWriteTx(ctx, func(ctx context.Context, tx store.ReferralTx) error {
		existing, err := tx.GetReferralRecord(ctx, contactID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		change.PreviousReferrerID = existing.Referrer()

		deleted, err = tx.DeleteReferralRecord(ctx, contactID)
		return err
	})
	if err != nil {
		return false, p.writeError(ctx, "failed to delete referral record", ErrDeleteFailed, err)
	}

	if deleted {
		p.logger.Info(ctx, "deleted referral record")
		p.publish(ctx, change)
	}
	return deleted, nil
}

// FetchRecord returns the record for contactID, or nil when there is none.
func (p *ReferralProcessor) FetchRecord(ctx context.Context, contactID string) (*store.ReferralRecord, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "contact_id", Value: contactID})

	if contactID == "" {
		return nil, ErrInvalidContactID
	}

	var record *store.ReferralRecord
	err := p.store.WithReadTx(ctx, func(ctx context.Context, tx store.ReferralTx) error {
		var err error
		record, err = getOptional(ctx, tx, contactID)
		return err
	})
	if err != nil {
		return nil, p.readError(ctx, "failed to fetch referral record", err)
	}
	return record, nil
}

// FetchReferrer returns the record of the contact that referred contactID.
// It fails with ErrNotFound when contactID has no record, and returns nil
// when the contact is unreferred or its referrer has no record of its own.
func (p *ReferralProcessor) FetchReferrer(ctx context.Context, contactID string) (*store.ReferralRecord, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "contact_id", Value: contactID})

	if contactID == "" {
		return nil, ErrInvalidContactID
	}

	var referrer *store.ReferralRecord
	err := p.store.WithReadTx(ctx, func(ctx context.Context, tx store.ReferralTx) error {
		own, err := tx.GetReferralRecord(ctx, contactID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if !own.HasReferrer() {
			return nil
		}

		referrer, err = getOptional(ctx, tx, own.Referrer())
		return err
	})
	if err != nil {
		return nil, p.readError(ctx, "failed to fetch referrer", err)
	}
	return referrer, nil
}

// FetchReferredContacts returns every record naming contactID as referrer,
// ordered by contact id. Self-referencing rows are excluded.
func (p *ReferralProcessor) FetchReferredContacts(ctx context.Context, contactID string) ([]store.ReferralRecord, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "contact_id", Value: contactID})

	if contactID == "" {
		return nil, ErrInvalidContactID
	}

	var referred []store.ReferralRecord
	err := p.store.WithReadTx(ctx, func(ctx context.Context, tx store.ReferralTx) error {
		var err error
		referred, err = tx.ListReferralRecordsByReferrer(ctx, contactID)
		return err
	})
	if err != nil {
		return nil, p.readError(ctx, "failed to fetch referred contacts", err)
	}
	if referred == nil {
		referred = []store.ReferralRecord{}
	}
	return referred, nil
}

// FetchAllRecords returns the whole table ordered by contact id.
func (p *ReferralProcessor) FetchAllRecords(ctx context.Context) ([]store.ReferralRecord, error) {
	var records []store.ReferralRecord
	err := p.store.WithReadTx(ctx, func(ctx context.Context, tx store.ReferralTx) error {
		var err error
		records, err = tx.ListReferralRecords(ctx)
		return err
	})
	if err != nil {
		return nil, p.readError(ctx, "failed to fetch referral records", err)
	}
	if records == nil {
		records = []store.ReferralRecord{}
	}
	return records, nil
}

// Snapshot reads a contact's own record and referred set in one transaction.
func (p *ReferralProcessor) Snapshot(ctx context.Context, contactID string) (notifier.Snapshot, error) {
	if contactID == "" {
		return notifier.Snapshot{}, ErrInvalidContactID
	}

	var snap notifier.Snapshot
	err := p.store.WithReadTx(ctx, func(ctx context.Context, tx store.ReferralTx) error {
		record, err := getOptional(ctx, tx, contactID)
		if err != nil {
			return err
		}
		referred, err := tx.ListReferralRecordsByReferrer(ctx, contactID)
		if err != nil {
			return err
		}
		if referred == nil {
			referred = []store.ReferralRecord{}
		}
		snap = notifier.Snapshot{Record: record, Referred: referred}
		return nil
	})
	if err != nil {
		return notifier.Snapshot{}, p.readError(ctx, "failed to compute referral snapshot", err)
	}
	return snap, nil
}

// ResetAll erases every record and recreates the schema. Irreversible.
func (p *ReferralProcessor) ResetAll(ctx context.Context) error {
	err := p.store.WithWriteTx(ctx, func(ctx context.Context, tx store.ReferralTx) error {
		return tx.ResetReferralRecords(ctx)
	})
	if err != nil {
		return p.writeError(ctx, "failed to reset referral records", ErrSaveFailed, err)
	}

	p.logger.Warn(ctx, "reset all referral records")
	p.publish(ctx, events.ReferralChange{Kind: events.ChangeReset})
	return nil
}

func (p *ReferralProcessor) publish(ctx context.Context, change events.ReferralChange) {
	if p.publisher == nil {
		return
	}
	// The write is committed; a failing destination is only logged.
	if err := p.publisher.Publish(ctx, change); err != nil {
		p.logger.Error(ctx, "failed to publish referral change", err)
	}
}

func (p *ReferralProcessor) writeError(ctx context.Context, msg string, kind, err error) error {
	wrapped := wrapStorageError(kind, err)
	if errors.Is(wrapped, kind) {
		p.logger.Error(ctx, msg, err)
	} else {
		p.logger.Info(ctx, msg+": "+err.Error())
	}
	return wrapped
}

func (p *ReferralProcessor) readError(ctx context.Context, msg string, err error) error {
	return p.writeError(ctx, msg, ErrFetchFailed, err)
}

func validateEdge(contactID, referrerID string) error {
	if contactID == "" {
		return ErrInvalidContactID
	}
	if referrerID == contactID {
		return ErrSelfReferral
	}
	return nil
}

// checkBackReference rejects contactID -> referrerID when referrerID is
// already referred by contactID. Only the direct pair is inspected.
func checkBackReference(ctx context.Context, tx store.ReferralTx, contactID, referrerID string) error {
	if referrerID == "" {
		return nil
	}
	other, err := tx.GetReferralRecord(ctx, referrerID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if other.ReferrerIs(contactID) {
		return ErrInvalidReferralRelationship
	}
	return nil
}

func getOptional(ctx context.Context, tx store.ReferralTx, contactID string) (*store.ReferralRecord, error) {
	record, err := tx.GetReferralRecord(ctx, contactID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func withRecordFields(ctx context.Context, contactID, referrerID string) context.Context {
	return observability.WithFields(ctx,
		observability.Field{Key: "contact_id", Value: contactID},
		observability.Field{Key: "referrer_id", Value: referrerID},
	)
}
