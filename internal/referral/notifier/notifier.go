package notifier

import (
	"context"
	"errors"
	"sync"

	"referral-graph/internal/events"
	"referral-graph/internal/observability"

	"github.com/google/uuid"
)

var (
	ErrNotifierClosed = errors.New("notifier closed")
	ErrEmptyContactID = errors.New("contact id is required to observe")
)

// Options tunes subscription delivery.
type Options struct {
	// Buffer is the capacity of each subscription's output channel.
	Buffer int
}

// Notifier keeps a registry of live subscriptions keyed by contact id and
// recomputes the affected ones whenever a committed change is reported.
type Notifier struct {
	source SnapshotSource
	logger *observability.Logger
	opts   Options

	mu        sync.Mutex
	subs      map[string]*Subscription
	byContact map[string]map[string]*Subscription
	closing   chan struct{}
	closed    bool
}

// New creates a notifier reading snapshots from source.
func New(source SnapshotSource, logger *observability.Logger, opts Options) *Notifier {
	if opts.Buffer < 0 {
		opts.Buffer = 0
	}
	return &Notifier{
		source:    source,
		logger:    logger,
		opts:      opts,
		subs:      make(map[string]*Subscription),
		byContact: make(map[string]map[string]*Subscription),
		closing:   make(chan struct{}),
	}
}

// Observe opens a subscription for contactID. The current snapshot is sent
// first, then a new one after every change that alters it. The sequence runs
// until the subscription is closed, ctx is cancelled, a read fails or the
// notifier shuts down.
func (n *Notifier) Observe(ctx context.Context, contactID string) (*Subscription, error) {
	if contactID == "" {
		return nil, ErrEmptyContactID
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		id:        uuid.New().String(),
		contactID: contactID,
		n:         n,
		cancel:    cancel,
		updates:   make(chan Snapshot, n.opts.Buffer),
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		cancel()
		return nil, ErrNotifierClosed
	}
	n.subs[sub.id] = sub
	if n.byContact[contactID] == nil {
		n.byContact[contactID] = make(map[string]*Subscription)
	}
	n.byContact[contactID][sub.id] = sub
	n.mu.Unlock()

	// Registered before the first read, so no commit can slip between them.
	sub.notify()

	logCtx := observability.WithFields(ctx,
		observability.Field{Key: "subscription_id", Value: sub.id},
		observability.Field{Key: "contact_id", Value: contactID},
	)
	n.logger.Debug(logCtx, "opened referral subscription")

	go sub.run(observability.WithFields(subCtx,
		observability.Field{Key: "subscription_id", Value: sub.id},
		observability.Field{Key: "contact_id", Value: contactID},
	))

	return sub, nil
}

// Invalidate schedules a recompute for every subscription on the given
// contacts. It never blocks.
func (n *Notifier) Invalidate(contactIDs ...string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, id := range contactIDs {
		for _, sub := range n.byContact[id] {
			sub.notify()
		}
	}
}

// InvalidateAll schedules a recompute for every subscription.
func (n *Notifier) InvalidateAll() {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, sub := range n.subs {
		sub.notify()
	}
}

// Handle invalidates the subscriptions a committed change may affect.
func (n *Notifier) Handle(_ context.Context, change events.ReferralChange) error {
	if change.Kind == events.ChangeReset {
		n.InvalidateAll()
		return nil
	}
	n.Invalidate(change.AffectedContacts()...)
	return nil
}

// Name returns the sink name.
func (n *Notifier) Name() string {
	return "notifier"
}

// ActiveSubscriptions returns the number of registered subscriptions.
func (n *Notifier) ActiveSubscriptions() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

// Close ends every subscription with ErrNotifierClosed and waits for their
// delivery goroutines to exit. Later Observe calls fail.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	close(n.closing)
	subs := make([]*Subscription, 0, len(n.subs))
	for _, sub := range n.subs {
		subs = append(subs, sub)
	}
	n.mu.Unlock()

	for _, sub := range subs {
		<-sub.done
	}
}

func (n *Notifier) remove(sub *Subscription) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.subs[sub.id]; !ok {
		return
	}
	delete(n.subs, sub.id)
	if byID := n.byContact[sub.contactID]; byID != nil {
		delete(byID, sub.id)
		if len(byID) == 0 {
			delete(n.byContact, sub.contactID)
		}
	}
}
