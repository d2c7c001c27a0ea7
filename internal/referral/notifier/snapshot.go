package notifier

import (
	"context"

	"referral-graph/internal/store"
)

// Snapshot is the live view of one contact: its own record, if any, and the
// records it referred ordered by contact id.
type Snapshot struct {
	Record   *store.ReferralRecord  `json:"record"`
	Referred []store.ReferralRecord `json:"referred"`
}

// Equal reports whether both snapshots describe the same state.
func (s Snapshot) Equal(other Snapshot) bool {
	switch {
	case s.Record == nil && other.Record == nil:
	case s.Record == nil || other.Record == nil:
		return false
	case !s.Record.Equal(*other.Record):
		return false
	}

	if len(s.Referred) != len(other.Referred) {
		return false
	}
	for i := range s.Referred {
		if !s.Referred[i].Equal(other.Referred[i]) {
			return false
		}
	}
	return true
}

// SnapshotSource computes the current snapshot for a contact in a single
// consistent read.
type SnapshotSource interface {
	Snapshot(ctx context.Context, contactID string) (Snapshot, error)
}
