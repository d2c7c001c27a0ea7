package leaderboard

//go:generate go run go.uber.org/mock/mockgen@latest -source=interfaces.go -destination=mocks_test.go -package=leaderboard

import (
	"context"

	"referral-graph/internal/store"

	redisLib "github.com/redis/go-redis/v9"
)

// RankingStore is the subset of the Redis client the leaderboard needs.
type RankingStore interface {
	IncrementScores(ctx context.Context, key string, deltas map[string]float64) error
	ReplaceSortedSet(ctx context.Context, key string, members []redisLib.Z) error
	ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]redisLib.Z, error)
	ZScore(ctx context.Context, key, member string) (float64, error)
	IsEnabled() bool
}

// RecordSource supplies the full referral table for rebuilds.
type RecordSource interface {
	FetchAllRecords(ctx context.Context) ([]store.ReferralRecord, error)
}
