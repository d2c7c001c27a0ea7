package events

import (
	"context"
	"fmt"
	"time"

	kafka "referral-graph/internal/clients/kafka"
	"referral-graph/internal/observability"
)

const (
	dataPreviousReferrerID = "previous_referrer_id"
	dataReferrerID         = "referrer_id"
	dataOrigin             = "origin"
)

type eventProducer interface {
	PublishEvent(ctx context.Context, event kafka.EventMessage) error
}

type eventConsumer interface {
	ConsumeEvents(ctx context.Context, handler func(context.Context, kafka.EventMessage) error) error
}

// ToEventMessage converts a change into the Kafka wire message. origin names
// the instance that committed the change.
func ToEventMessage(change ReferralChange, origin string) kafka.EventMessage {
	return kafka.EventMessage{
		ID:        change.ID,
		Type:      string(change.Kind),
		ContactID: change.ContactID,
		Data: map[string]interface{}{
			dataPreviousReferrerID: change.PreviousReferrerID,
			dataReferrerID:         change.ReferrerID,
			dataOrigin:             origin,
		},
		Timestamp: change.CommittedAt.UTC().Format(time.RFC3339Nano),
	}
}

// FromEventMessage decodes a Kafka wire message and reports the origin
// instance recorded on it.
func FromEventMessage(msg kafka.EventMessage) (ReferralChange, string, error) {
	kind := ChangeKind(msg.Type)
	switch kind {
	case ChangeCreated, ChangeUpdated, ChangeDeleted, ChangeReset:
	default:
		return ReferralChange{}, "", fmt.Errorf("unknown referral event type %q", msg.Type)
	}

	change := ReferralChange{
		ID:                 msg.ID,
		Kind:               kind,
		ContactID:          msg.ContactID,
		PreviousReferrerID: stringData(msg.Data, dataPreviousReferrerID),
		ReferrerID:         stringData(msg.Data, dataReferrerID),
	}
	if msg.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339Nano, msg.Timestamp)
		if err != nil {
			return ReferralChange{}, "", fmt.Errorf("invalid event timestamp: %w", err)
		}
		change.CommittedAt = ts
	}
	return change, stringData(msg.Data, dataOrigin), nil
}

func stringData(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

// KafkaForwarder writes committed changes to the referral changes topic. It
// runs behind a worker pool so a slow broker never holds a writer.
type KafkaForwarder struct {
	producer eventProducer
	origin   string
}

// NewKafkaForwarder creates a forwarder that stamps messages with origin.
func NewKafkaForwarder(producer eventProducer, origin string) *KafkaForwarder {
	return &KafkaForwarder{producer: producer, origin: origin}
}

// Process publishes one change.
func (f *KafkaForwarder) Process(ctx context.Context, change ReferralChange) error {
	return f.producer.PublishEvent(ctx, ToEventMessage(change, f.origin))
}

// Name returns the processor name.
func (f *KafkaForwarder) Name() string {
	return "kafka-forwarder"
}

// InvalidationRelay feeds changes committed by other instances into a local
// sink, normally the notifier. Messages stamped with the local origin are
// skipped since the local sink already saw them.
type InvalidationRelay struct {
	consumer eventConsumer
	sink     Sink
	origin   string
	logger   *observability.Logger
}

// NewInvalidationRelay creates a relay from consumer into sink.
func NewInvalidationRelay(consumer eventConsumer, sink Sink, origin string, logger *observability.Logger) *InvalidationRelay {
	return &InvalidationRelay{
		consumer: consumer,
		sink:     sink,
		origin:   origin,
		logger:   logger,
	}
}

// Run consumes until ctx is done.
func (r *InvalidationRelay) Run(ctx context.Context) error {
	return r.consumer.ConsumeEvents(ctx, r.handle)
}

func (r *InvalidationRelay) handle(ctx context.Context, msg kafka.EventMessage) error {
	change, origin, err := FromEventMessage(msg)
	if err != nil {
		// Undecodable messages are skipped rather than redelivered forever.
		r.logger.Warn(ctx, fmt.Sprintf("skipping referral event: %v", err))
		return nil
	}
	if origin == r.origin {
		return nil
	}
	return r.sink.Handle(ctx, change)
}
