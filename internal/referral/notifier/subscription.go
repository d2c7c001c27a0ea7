package notifier

import (
	"context"
	"sync"
)

// Subscription is one live sequence of snapshots for a contact.
type Subscription struct {
	id        string
	contactID string
	n         *Notifier
	cancel    context.CancelFunc

	updates chan Snapshot
	// wake holds at most one pending recompute; further invalidations
	// coalesce into it.
	wake chan struct{}
	done chan struct{}

	errMu sync.Mutex
	err   error
}

// ID returns the subscription id.
func (s *Subscription) ID() string {
	return s.id
}

// ContactID returns the observed contact.
func (s *Subscription) ContactID() string {
	return s.contactID
}

// Updates returns the snapshot channel. It is closed when the sequence ends.
func (s *Subscription) Updates() <-chan Snapshot {
	return s.updates
}

// Done is closed once the delivery goroutine has exited.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Err returns the error that ended the sequence. It is nil while the sequence
// is live and when it was ended by Close or by cancelling the Observe context.
func (s *Subscription) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Close deregisters the subscription and waits for delivery to stop. No
// snapshot is sent after Close returns. Safe to call more than once and from
// several goroutines.
func (s *Subscription) Close() {
	s.n.remove(s)
	s.cancel()
	<-s.done
}

func (s *Subscription) notify() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription) setErr(err error) {
	s.errMu.Lock()
	s.err = err
	s.errMu.Unlock()
}

// run is the per-subscription delivery loop. Writers only ever touch wake, so
// a slow reader delays nobody but itself.
func (s *Subscription) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.updates)
	defer s.n.remove(s)
	defer s.cancel()

	var (
		last    Snapshot
		emitted bool
	)

	for {
		// Shutdown wins over a pending wake.
		select {
		case <-s.n.closing:
			s.setErr(ErrNotifierClosed)
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case <-s.n.closing:
			s.setErr(ErrNotifierClosed)
			return
		case <-s.wake:
		}

		snap, err := s.n.source.Snapshot(ctx, s.contactID)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.n.logger.Error(ctx, "failed to recompute referral snapshot", err)
			s.setErr(err)
			return
		}

		if emitted && snap.Equal(last) {
			continue
		}

		select {
		case s.updates <- snap:
			last, emitted = snap, true
		case <-ctx.Done():
			return
		case <-s.n.closing:
			s.setErr(ErrNotifierClosed)
			return
		}
	}
}
