package processor

//go:generate go run go.uber.org/mock/mockgen@latest -source=interfaces.go -destination=mocks_test.go -package=processor
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks_tx_test.go -package=processor referral-graph/internal/store ReferralTx

import (
	"context"

	"referral-graph/internal/events"
	"referral-graph/internal/store"
)

// ReferralStore is the transactional boundary the processor runs its units
// of work in.
type ReferralStore interface {
	WithReadTx(ctx context.Context, fn store.TxFunc) error
	WithWriteTx(ctx context.Context, fn store.TxFunc) error
}

// ChangePublisher receives every committed change.
type ChangePublisher interface {
	Publish(ctx context.Context, change events.ReferralChange) error
}
