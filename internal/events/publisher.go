package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"referral-graph/internal/observability"

	"github.com/google/uuid"
)

// Sink receives a change synchronously on the committing goroutine. Handle
// must not block on slow consumers.
type Sink interface {
	Handle(ctx context.Context, change ReferralChange) error
	Name() string
}

// Submitter hands a change to an asynchronous pipeline (a worker pool).
type Submitter interface {
	Submit(ctx context.Context, change ReferralChange) error
}

// Publisher fans committed referral changes out to local sinks and
// asynchronous submitters.
type Publisher struct {
	sinks      []Sink
	submitters []Submitter
	logger     *observability.Logger
}

// NewPublisher creates a new event publisher
func NewPublisher(logger *observability.Logger, sinks ...Sink) *Publisher {
	return &Publisher{
		sinks:  sinks,
		logger: logger,
	}
}

// AddSink registers a synchronous sink.
func (p *Publisher) AddSink(sink Sink) {
	p.sinks = append(p.sinks, sink)
}

// AddSubmitter registers an asynchronous pipeline.
func (p *Publisher) AddSubmitter(submitter Submitter) {
	p.submitters = append(p.submitters, submitter)
}

// Publish delivers the change to every sink and submitter. A failing
// destination does not stop delivery to the others; all failures are joined.
func (p *Publisher) Publish(ctx context.Context, change ReferralChange) error {
	if change.ID == "" {
		change.ID = uuid.New().String()
	}
	if change.CommittedAt.IsZero() {
		change.CommittedAt = time.Now().UTC()
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "event_id", Value: change.ID},
		observability.Field{Key: "event_type", Value: string(change.Kind)},
	)

	var errs []error
	for _, sink := range p.sinks {
		if err := sink.Handle(ctx, change); err != nil {
			p.logger.Error(ctx, fmt.Sprintf("sink %s failed to handle change", sink.Name()), err)
			errs = append(errs, fmt.Errorf("sink %s: %w", sink.Name(), err))
		}
	}
	for _, submitter := range p.submitters {
		if err := submitter.Submit(ctx, change); err != nil {
			p.logger.Error(ctx, "failed to submit change to worker pool", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
