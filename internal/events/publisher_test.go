package events

import (
	"context"
	"errors"
	"testing"

	"referral-graph/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	name    string
	err     error
	changes []ReferralChange
}

func (s *recordingSink) Handle(_ context.Context, change ReferralChange) error {
	s.changes = append(s.changes, change)
	return s.err
}

func (s *recordingSink) Name() string { return s.name }

type recordingSubmitter struct {
	changes []ReferralChange
}

func (s *recordingSubmitter) Submit(_ context.Context, change ReferralChange) error {
	s.changes = append(s.changes, change)
	return nil
}

func TestPublisher_PublishStampsAndFansOut(t *testing.T) {
	first := &recordingSink{name: "first"}
	second := &recordingSink{name: "second"}
	submitter := &recordingSubmitter{}

	p := NewPublisher(observability.NewNopLogger(), first)
	p.AddSink(second)
	p.AddSubmitter(submitter)

	err := p.Publish(context.Background(), ReferralChange{Kind: ChangeCreated, ContactID: "a"})
	require.NoError(t, err)

	require.Len(t, first.changes, 1)
	require.Len(t, second.changes, 1)
	require.Len(t, submitter.changes, 1)

	got := first.changes[0]
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.CommittedAt.IsZero())
	assert.Equal(t, got, second.changes[0])
	assert.Equal(t, got, submitter.changes[0])
}

func TestPublisher_PublishKeepsExistingID(t *testing.T) {
	sink := &recordingSink{name: "sink"}
	p := NewPublisher(observability.NewNopLogger(), sink)

	require.NoError(t, p.Publish(context.Background(), ReferralChange{ID: "fixed", Kind: ChangeReset}))
	assert.Equal(t, "fixed", sink.changes[0].ID)
}

func TestPublisher_FailingSinkDoesNotStopDelivery(t *testing.T) {
	boom := errors.New("boom")
	failing := &recordingSink{name: "failing", err: boom}
	healthy := &recordingSink{name: "healthy"}

	p := NewPublisher(observability.NewNopLogger(), failing, healthy)

	err := p.Publish(context.Background(), ReferralChange{Kind: ChangeDeleted, ContactID: "a"})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, healthy.changes, 1)
}
