package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"referral-graph/internal/observability"
)

const window = time.Minute

// RateLimitResult represents the result of a rate limit check
type RateLimitResult struct {
	Allowed      bool      `json:"allowed"`
	Limit        int       `json:"limit"`
	Remaining    int       `json:"remaining"`
	ResetAt      time.Time `json:"reset_at"`
	RetryAfterMs int       `json:"retry_after_ms,omitempty"`
}

// WindowStore keeps per-key sliding windows of request timestamps.
type WindowStore interface {
	IsEnabled() bool
	WindowCount(ctx context.Context, key string, since time.Time) (int64, time.Time, error)
	AddToWindow(ctx context.Context, key string, at time.Time, ttl time.Duration) error
}

// Service rate limits callers of the write endpoints. Redis gives a limit
// shared across instances; without it each instance counts on its own.
type Service struct {
	redis  WindowStore
	limit  int
	logger *observability.Logger
	now    func() time.Time

	mu    sync.Mutex
	local map[string]*slidingWindow
}

// slidingWindow holds the timestamps of one key's requests, oldest first.
type slidingWindow struct {
	timestamps []time.Time
}

// NewService creates a rate limiter allowing limit requests per minute per
// key. A limit of zero or less disables limiting.
func NewService(redis WindowStore, limit int, logger *observability.Logger) *Service {
	return &Service{
		redis:  redis,
		limit:  limit,
		logger: logger,
		now:    time.Now,
		local:  make(map[string]*slidingWindow),
	}
}

// Enabled reports whether any limit is enforced.
func (s *Service) Enabled() bool {
	return s.limit > 0
}

// CheckRateLimit records one request for key and reports whether it is allowed.
func (s *Service) CheckRateLimit(ctx context.Context, key string) (RateLimitResult, error) {
	if !s.Enabled() {
		return RateLimitResult{Allowed: true}, nil
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "rate_limit_key", Value: key},
		observability.Field{Key: "rate_limit", Value: s.limit},
	)

	if s.redis != nil && s.redis.IsEnabled() {
		result, err := s.checkRateLimitRedis(ctx, key)
		if err != nil {
			s.logger.Warn(ctx, fmt.Sprintf("Redis rate limit check failed, falling back to local window: %v", err))
			return s.checkRateLimitLocal(key), nil
		}
		return result, nil
	}

	return s.checkRateLimitLocal(key), nil
}

// checkRateLimitRedis implements a sliding window over a Redis sorted set
// keyed rl:{key} whose scores are request timestamps in milliseconds.
func (s *Service) checkRateLimitRedis(ctx context.Context, key string) (RateLimitResult, error) {
	redisKey := "rl:" + key
	now := s.now()

	count, oldest, err := s.redis.WindowCount(ctx, redisKey, now.Add(-window))
	if err != nil {
		return RateLimitResult{}, fmt.Errorf("failed to count requests: %w", err)
	}

	if int(count) >= s.limit {
		resetAt := now.Add(window)
		if !oldest.IsZero() {
			resetAt = oldest.Add(window)
		}
		return s.denied(now, resetAt), nil
	}

	if err := s.redis.AddToWindow(ctx, redisKey, now, 2*window); err != nil {
		return RateLimitResult{}, fmt.Errorf("failed to add request: %w", err)
	}

	return RateLimitResult{
		Allowed:   true,
		Limit:     s.limit,
		Remaining: s.limit - int(count) - 1,
		ResetAt:   now.Add(window),
	}, nil
}

// checkRateLimitLocal implements a sliding one-minute window per key over
// the request timestamps kept in memory.
func (s *Service) checkRateLimitLocal(key string) RateLimitResult {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.local[key]
	if !ok {
		s.evictExpired(now)
		w = &slidingWindow{}
		s.local[key] = w
	}
	w.cleanup(now)

	if len(w.timestamps) >= s.limit {
		return s.denied(now, w.timestamps[0].Add(window))
	}
	w.timestamps = append(w.timestamps, now)

	return RateLimitResult{
		Allowed:   true,
		Limit:     s.limit,
		Remaining: s.limit - len(w.timestamps),
		ResetAt:   w.timestamps[0].Add(window),
	}
}

// evictExpired drops keys with no request left in the window. Callers hold s.mu.
func (s *Service) evictExpired(now time.Time) {
	for key, w := range s.local {
		w.cleanup(now)
		if len(w.timestamps) == 0 {
			delete(s.local, key)
		}
	}
}

// cleanup removes timestamps that have left the window.
func (w *slidingWindow) cleanup(now time.Time) {
	cutoff := now.Add(-window)
	i := 0
	for ; i < len(w.timestamps); i++ {
		if w.timestamps[i].After(cutoff) {
			break
		}
	}
	w.timestamps = w.timestamps[i:]
}

func (s *Service) denied(now, resetAt time.Time) RateLimitResult {
	retryAfter := resetAt.Sub(now)
	if retryAfter < 0 {
		retryAfter = 0
	}
	return RateLimitResult{
		Allowed:      false,
		Limit:        s.limit,
		Remaining:    0,
		ResetAt:      resetAt,
		RetryAfterMs: int(retryAfter.Milliseconds()),
	}
}
