package processor

import (
	"context"
	"sync"
	"testing"

	"referral-graph/internal/events"
	"referral-graph/internal/observability"
	"referral-graph/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type changeRecorder struct {
	mu      sync.Mutex
	changes []events.ReferralChange
}

func (r *changeRecorder) Publish(_ context.Context, change events.ReferralChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, change)
	return nil
}

func (r *changeRecorder) kinds() []events.ChangeKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]events.ChangeKind, 0, len(r.changes))
	for _, c := range r.changes {
		kinds = append(kinds, c.Kind)
	}
	return kinds
}

type backend struct {
	name string
	open func(t *testing.T) store.Storer
}

var backends = []backend{
	{"sqlite", func(t *testing.T) store.Storer {
		return store.SetupTestDB(t, store.TestDBTypeSQLiteMemory)
	}},
	{"memory", func(t *testing.T) store.Storer {
		return store.NewMemoryStore()
	}},
}

// forEachBackend runs fn against a fresh processor on every store backend.
func forEachBackend(t *testing.T, fn func(t *testing.T, p *ReferralProcessor, s store.Storer, rec *changeRecorder)) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			rec := &changeRecorder{}
			fn(t, New(s, rec, observability.NewNopLogger()), s, rec)
		})
	}
}

func referrerOf(t *testing.T, p *ReferralProcessor, contactID string) string {
	t.Helper()
	record, err := p.FetchRecord(context.Background(), contactID)
	require.NoError(t, err)
	require.NotNil(t, record, "expected a record for %s", contactID)
	return record.Referrer()
}

func contactIDs(records []store.ReferralRecord) []string {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ContactID)
	}
	return ids
}

func TestUniqueness_PlaceholderOverwrite(t *testing.T) {
	forEachBackend(t, func(t *testing.T, p *ReferralProcessor, _ store.Storer, _ *changeRecorder) {
		ctx := context.Background()

		require.NoError(t, p.CreateRecord(ctx, "A", ""))
		require.NoError(t, p.CreateRecord(ctx, "A", "B"), "placeholder without referrer is overwritten")
		assert.Equal(t, "B", referrerOf(t, p, "A"))

		err := p.CreateRecord(ctx, "A", "C")
		assert.ErrorIs(t, err, ErrAlreadyReferred)
		assert.Equal(t, "B", referrerOf(t, p, "A"), "failed create leaves the row untouched")

		err = p.CreateRecord(ctx, "A", "")
		assert.ErrorIs(t, err, ErrAlreadyReferred, "cannot clear a referrer through create")
	})
}

func TestBackReference_Rejected(t *testing.T) {
	forEachBackend(t, func(t *testing.T, p *ReferralProcessor, _ store.Storer, _ *changeRecorder) {
		ctx := context.Background()

		require.NoError(t, p.CreateRecord(ctx, "B", "A"))

		err := p.CreateRecord(ctx, "A", "B")
		assert.ErrorIs(t, err, ErrInvalidReferralRelationship)

		record, err := p.FetchRecord(ctx, "A")
		require.NoError(t, err)
		assert.Nil(t, record, "rejected create must not leave a row")

		require.NoError(t, p.CreateRecord(ctx, "A", ""))
		err = p.UpdateRecord(ctx, "A", "B")
		assert.ErrorIs(t, err, ErrInvalidReferralRelationship)
		assert.Equal(t, "", referrerOf(t, p, "A"))
	})
}

func TestSelfReferral_Rejected(t *testing.T) {
	forEachBackend(t, func(t *testing.T, p *ReferralProcessor, _ store.Storer, _ *changeRecorder) {
		ctx := context.Background()

		assert.ErrorIs(t, p.CreateRecord(ctx, "A", "A"), ErrSelfReferral)
		require.NoError(t, p.CreateRecord(ctx, "A", ""))
		assert.ErrorIs(t, p.UpdateRecord(ctx, "A", "A"), ErrSelfReferral)
	})
}

func TestUpdateRecord_RequiresExistingRecord(t *testing.T) {
	forEachBackend(t, func(t *testing.T, p *ReferralProcessor, _ store.Storer, _ *changeRecorder) {
		ctx := context.Background()

		assert.ErrorIs(t, p.UpdateRecord(ctx, "A", "B"), ErrNoExistingRecord)

		require.NoError(t, p.CreateRecord(ctx, "A", "B"))
		require.NoError(t, p.UpdateRecord(ctx, "A", "C"))
		assert.Equal(t, "C", referrerOf(t, p, "A"))

		require.NoError(t, p.UpdateRecord(ctx, "A", ""), "update may clear the referrer")
		assert.Equal(t, "", referrerOf(t, p, "A"))
	})
}

func TestReferredSet_ExactAndExcludesSelf(t *testing.T) {
	forEachBackend(t, func(t *testing.T, p *ReferralProcessor, s store.Storer, _ *changeRecorder) {
		ctx := context.Background()

		require.NoError(t, p.CreateRecord(ctx, "C", "A"))
		require.NoError(t, p.CreateRecord(ctx, "B", "A"))
		require.NoError(t, p.CreateRecord(ctx, "D", "X"))
		// Self-referential rows can only come in through the raw store.
		store.SeedRecords(t, s, store.NewReferralRecord("A", "A"))

		referred, err := p.FetchReferredContacts(ctx, "A")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"B", "C"}, contactIDs(referred))

		none, err := p.FetchReferredContacts(ctx, "nobody")
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})
}

func TestDelete_RoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, p *ReferralProcessor, _ store.Storer, rec *changeRecorder) {
		ctx := context.Background()

		require.NoError(t, p.CreateRecord(ctx, "A", ""))
		record, err := p.FetchRecord(ctx, "A")
		require.NoError(t, err)
		require.NotNil(t, record)

		deleted, err := p.DeleteRecord(ctx, record.ContactID)
		require.NoError(t, err)
		assert.True(t, deleted)

		record, err = p.FetchRecord(ctx, "A")
		require.NoError(t, err)
		assert.Nil(t, record)

		deleted, err = p.DeleteRecord(ctx, "A")
		require.NoError(t, err)
		assert.False(t, deleted)

		assert.Equal(t, []events.ChangeKind{events.ChangeCreated, events.ChangeDeleted}, rec.kinds())
	})
}

func TestFetchReferrer_States(t *testing.T) {
	forEachBackend(t, func(t *testing.T, p *ReferralProcessor, _ store.Storer, _ *changeRecorder) {
		ctx := context.Background()

		_, err := p.FetchReferrer(ctx, "A")
		assert.ErrorIs(t, err, ErrNotFound, "no record at all")

		require.NoError(t, p.CreateRecord(ctx, "A", ""))
		referrer, err := p.FetchReferrer(ctx, "A")
		require.NoError(t, err)
		assert.Nil(t, referrer, "unreferred contact")

		require.NoError(t, p.CreateRecord(ctx, "B", "ghost"))
		referrer, err = p.FetchReferrer(ctx, "B")
		require.NoError(t, err)
		assert.Nil(t, referrer, "referrer without a record of its own")

		require.NoError(t, p.CreateRecord(ctx, "C", "A"))
		referrer, err = p.FetchReferrer(ctx, "C")
		require.NoError(t, err)
		require.NotNil(t, referrer)
		assert.Equal(t, "A", referrer.ContactID)
	})
}

func TestResetAll_ClearsTable(t *testing.T) {
	forEachBackend(t, func(t *testing.T, p *ReferralProcessor, _ store.Storer, rec *changeRecorder) {
		ctx := context.Background()

		require.NoError(t, p.CreateRecord(ctx, "A", ""))
		require.NoError(t, p.CreateRecord(ctx, "B", "A"))
		require.NoError(t, p.ResetAll(ctx))

		all, err := p.FetchAllRecords(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		require.NoError(t, p.CreateRecord(ctx, "A", ""), "schema is usable after reset")
		assert.Contains(t, rec.kinds(), events.ChangeReset)
	})
}

func TestSnapshot_OwnRecordAndReferredSet(t *testing.T) {
	forEachBackend(t, func(t *testing.T, p *ReferralProcessor, _ store.Storer, _ *changeRecorder) {
		ctx := context.Background()

		snap, err := p.Snapshot(ctx, "A")
		require.NoError(t, err)
		assert.Nil(t, snap.Record)
		assert.NotNil(t, snap.Referred)
		assert.Empty(t, snap.Referred)

		require.NoError(t, p.CreateRecord(ctx, "A", ""))
		require.NoError(t, p.CreateRecord(ctx, "C", "A"))
		require.NoError(t, p.CreateRecord(ctx, "B", "A"))

		snap, err = p.Snapshot(ctx, "A")
		require.NoError(t, err)
		require.NotNil(t, snap.Record)
		assert.Equal(t, "A", snap.Record.ContactID)
		assert.Equal(t, []string{"B", "C"}, contactIDs(snap.Referred), "ordered by contact id")
	})
}

func TestScenario_OneHopCycleCheckOnly(t *testing.T) {
	forEachBackend(t, func(t *testing.T, p *ReferralProcessor, _ store.Storer, _ *changeRecorder) {
		ctx := context.Background()

		require.NoError(t, p.CreateRecord(ctx, "root", ""))
		require.NoError(t, p.CreateRecord(ctx, "child1", "root"))
		require.NoError(t, p.CreateRecord(ctx, "child2", "root"))

		referred, err := p.FetchReferredContacts(ctx, "root")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"child1", "child2"}, contactIDs(referred))

		require.NoError(t, p.CreateRecord(ctx, "grandchild", "child1"))
		referred, err = p.FetchReferredContacts(ctx, "child1")
		require.NoError(t, err)
		assert.Equal(t, []string{"grandchild"}, contactIDs(referred))

		// root -> grandchild -> child1 -> root is a three-hop cycle and is allowed.
		require.NoError(t, p.UpdateRecord(ctx, "root", "grandchild"))
		assert.Equal(t, "grandchild", referrerOf(t, p, "root"))
	})
}

func TestConcurrentCreates_ExactlyOneWins(t *testing.T) {
	forEachBackend(t, func(t *testing.T, p *ReferralProcessor, _ store.Storer, _ *changeRecorder) {
		ctx := context.Background()

		const writers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			conflicts int
		)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				err := p.CreateRecord(ctx, "target", string(rune('a'+i)))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					successes++
				case assert.ErrorIs(t, err, ErrAlreadyReferred):
					conflicts++
				}
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 1, successes)
		assert.Equal(t, writers-1, conflicts)
	})
}
