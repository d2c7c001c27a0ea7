package leaderboard

import (
	"context"
	"errors"
	"fmt"

	"referral-graph/internal/events"
	"referral-graph/internal/observability"

	redisLib "github.com/redis/go-redis/v9"
)

// LeaderboardKey holds referrer ids scored by how many contacts name them.
const LeaderboardKey = "referrals:leaderboard"

var ErrLeaderboardDisabled = errors.New("leaderboard is not enabled")

// RedisLeaderboardService keeps a Redis ZSET of referral counts in step with
// committed changes.
type RedisLeaderboardService struct {
	redis   RankingStore
	records RecordSource
	logger  *observability.Logger
}

// LeaderboardEntry represents a referrer's position in the leaderboard
type LeaderboardEntry struct {
	ContactID string `json:"contact_id"`
	Referrals int64  `json:"referrals"`
	Rank      int    `json:"rank"`
}

// NewRedisLeaderboardService creates a new Redis-based leaderboard service
func NewRedisLeaderboardService(redis RankingStore, records RecordSource, logger *observability.Logger) *RedisLeaderboardService {
	return &RedisLeaderboardService{
		redis:   redis,
		records: records,
		logger:  logger,
	}
}

// IsEnabled reports whether Redis backs the leaderboard.
func (s *RedisLeaderboardService) IsEnabled() bool {
	return s.redis != nil && s.redis.IsEnabled()
}

// Name returns the processor name.
func (s *RedisLeaderboardService) Name() string {
	return "leaderboard"
}

// Process applies one committed change to the referral counts.
func (s *RedisLeaderboardService) Process(ctx context.Context, change events.ReferralChange) error {
	if !s.IsEnabled() {
		return ErrLeaderboardDisabled
	}

	if change.Kind == events.ChangeReset {
		// Writes may already have landed after the reset, so recount.
		return s.Rebuild(ctx)
	}

	deltas := scoreDeltas(change)
	if len(deltas) == 0 {
		return nil
	}

	if err := s.redis.IncrementScores(ctx, LeaderboardKey, deltas); err != nil {
		s.logger.Error(ctx, "failed to update leaderboard scores", err)
		return fmt.Errorf("failed to update scores: %w", err)
	}
	return nil
}

// Handle lets the service consume relayed changes directly. A failure leaves
// the message uncommitted so it is redelivered.
func (s *RedisLeaderboardService) Handle(ctx context.Context, change events.ReferralChange) error {
	return s.Process(ctx, change)
}

// scoreDeltas returns the referral count change per referrer. A contact
// never counts toward its own score.
func scoreDeltas(change events.ReferralChange) map[string]float64 {
	if change.PreviousReferrerID == change.ReferrerID {
		return nil
	}
	deltas := make(map[string]float64, 2)
	if change.PreviousReferrerID != "" && change.PreviousReferrerID != change.ContactID {
		deltas[change.PreviousReferrerID]--
	}
	if change.ReferrerID != "" && change.ReferrerID != change.ContactID {
		deltas[change.ReferrerID]++
	}
	return deltas
}

// Rebuild recomputes every score from the referral table.
func (s *RedisLeaderboardService) Rebuild(ctx context.Context) error {
	if !s.IsEnabled() {
		return ErrLeaderboardDisabled
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "operation", Value: "rebuild_leaderboard"},
	)

	records, err := s.records.FetchAllRecords(ctx)
	if err != nil {
		s.logger.Error(ctx, "failed to get referral records", err)
		return fmt.Errorf("failed to get records: %w", err)
	}

	counts := make(map[string]float64)
	var order []string
	for _, r := range records {
		if !r.HasReferrer() || r.ReferrerIs(r.ContactID) {
			continue
		}
		ref := r.Referrer()
		if _, seen := counts[ref]; !seen {
			order = append(order, ref)
		}
		counts[ref]++
	}

	members := make([]redisLib.Z, 0, len(order))
	for _, ref := range order {
		members = append(members, redisLib.Z{Score: counts[ref], Member: ref})
	}

	if err := s.redis.ReplaceSortedSet(ctx, LeaderboardKey, members); err != nil {
		s.logger.Error(ctx, "failed to replace leaderboard", err)
		return fmt.Errorf("failed to rebuild leaderboard: %w", err)
	}

	s.logger.Info(observability.WithFields(ctx,
		observability.Field{Key: "referrer_count", Value: len(members)},
	), "rebuilt leaderboard from referral records")
	return nil
}

// Top returns the referrers with the most referred contacts.
func (s *RedisLeaderboardService) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if !s.IsEnabled() {
		return nil, ErrLeaderboardDisabled
	}
	if limit <= 0 {
		return []LeaderboardEntry{}, nil
	}

	results, err := s.redis.ZRevRangeWithScores(ctx, LeaderboardKey, 0, int64(limit-1))
	if err != nil {
		s.logger.Error(ctx, "failed to get top referrers from Redis", err)
		return nil, fmt.Errorf("failed to get top referrers: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(results))
	for _, result := range results {
		member, ok := result.Member.(string)
		// Referrers whose last referral went away are not ranked.
		if !ok || result.Score <= 0 {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			ContactID: member,
			Referrals: int64(result.Score),
			Rank:      len(entries) + 1,
		})
	}
	return entries, nil
}

// GetReferralCount returns how many contacts name contactID as referrer.
func (s *RedisLeaderboardService) GetReferralCount(ctx context.Context, contactID string) (int64, error) {
	if !s.IsEnabled() {
		return 0, ErrLeaderboardDisabled
	}
	score, err := s.redis.ZScore(ctx, LeaderboardKey, contactID)
	if err != nil {
		s.logger.Error(ctx, "failed to get referral count from Redis", err)
		return 0, fmt.Errorf("failed to get referral count: %w", err)
	}
	return int64(score), nil
}
