package workers

import (
	"context"

	"referral-graph/internal/events"
)

// EventMessage is an alias for the committed referral change type.
// This allows processors to reference EventMessage without importing events directly.
type EventMessage = events.ReferralChange

// EventProcessor defines the interface for processing committed referral changes.
// Implementations should be idempotent where possible; a failed event is logged
// and reported through OnResult but not retried.
type EventProcessor interface {
	// Process handles a single change.
	Process(ctx context.Context, event EventMessage) error

	// Name returns the processor name for logging.
	Name() string
}

// WorkerPool defines the interface for managing a pool of event processing workers.
type WorkerPool interface {
	// Start initializes the worker pool with N workers.
	// Each worker will process events by calling the EventProcessor.
	Start(ctx context.Context) error

	// Submit adds an event to the worker pool for processing.
	// Blocks if the event queue is full.
	Submit(ctx context.Context, event EventMessage) error

	// Drain stops accepting new events and waits for in-flight events to complete.
	// Returns after all workers have finished processing or context is cancelled.
	Drain(ctx context.Context) error

	// Stop immediately stops all workers.
	Stop()
}
