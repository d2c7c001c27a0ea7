package events

import "time"

// ChangeKind names the write that produced a ReferralChange.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "referral.created"
	ChangeUpdated ChangeKind = "referral.updated"
	ChangeDeleted ChangeKind = "referral.deleted"
	ChangeReset   ChangeKind = "referral.reset"
)

// ReferralChange describes one committed write to the referral table.
// PreviousReferrerID is the referrer before the write and ReferrerID the
// referrer after it; either is empty when there was none.
type ReferralChange struct {
	ID                 string     `json:"id"`
	Kind               ChangeKind `json:"kind"`
	ContactID          string     `json:"contact_id,omitempty"`
	PreviousReferrerID string     `json:"previous_referrer_id,omitempty"`
	ReferrerID         string     `json:"referrer_id,omitempty"`
	CommittedAt        time.Time  `json:"committed_at"`
}

// AffectedContacts lists every contact whose own record or referred-by set
// the change may have altered. A reset affects everyone and returns nil.
func (c ReferralChange) AffectedContacts() []string {
	if c.Kind == ChangeReset {
		return nil
	}
	ids := []string{c.ContactID}
	if c.PreviousReferrerID != "" && c.PreviousReferrerID != c.ContactID {
		ids = append(ids, c.PreviousReferrerID)
	}
	if c.ReferrerID != "" && c.ReferrerID != c.ContactID && c.ReferrerID != c.PreviousReferrerID {
		ids = append(ids, c.ReferrerID)
	}
	return ids
}
