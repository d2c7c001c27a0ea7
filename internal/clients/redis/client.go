package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"referral-graph/internal/config"
	"referral-graph/internal/observability"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrNotInitialized = errors.New("redis client not initialized")

// Client wraps the Redis client with observability
type Client struct {
	client *redis.Client
	logger *observability.Logger
}

// NewClient creates a new Redis client. A disabled config yields a nil client
// whose methods report ErrNotInitialized.
func NewClient(cfg config.RedisConfig, logger *observability.Logger) (*Client, error) {
	if !cfg.Enabled {
		logger.Info(context.Background(), "Redis is disabled, skipping client initialization")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "host", Value: cfg.Host},
		observability.Field{Key: "port", Value: cfg.Port},
		observability.Field{Key: "db", Value: cfg.DB},
	)
	logger.Info(ctx, "successfully connected to Redis")

	return &Client{
		client: client,
		logger: logger,
	}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// IncrementScores applies every delta to members of a sorted set in a single
// MULTI/EXEC and then drops members whose score fell to zero or below.
func (c *Client) IncrementScores(ctx context.Context, key string, deltas map[string]float64) error {
	if !c.IsEnabled() {
		return ErrNotInitialized
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for member, delta := range deltas {
			pipe.ZIncrBy(ctx, key, delta, member)
		}
		pipe.ZRemRangeByScore(ctx, key, "-inf", "0")
		return nil
	})
	return err
}

// ReplaceSortedSet atomically swaps the contents of a sorted set.
func (c *Client) ReplaceSortedSet(ctx context.Context, key string, members []redis.Z) error {
	if !c.IsEnabled() {
		return ErrNotInitialized
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(members) > 0 {
			pipe.ZAdd(ctx, key, members...)
		}
		return nil
	})
	return err
}

// WindowCount drops sorted set members scored before since (unix millis) and
// returns how many remain along with the oldest remaining timestamp.
func (c *Client) WindowCount(ctx context.Context, key string, since time.Time) (int64, time.Time, error) {
	if !c.IsEnabled() {
		return 0, time.Time{}, ErrNotInitialized
	}
	var (
		card   *redis.IntCmd
		oldest *redis.ZSliceCmd
	)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(since.UnixMilli(), 10))
		card = pipe.ZCard(ctx, key)
		oldest = pipe.ZRangeWithScores(ctx, key, 0, 0)
		return nil
	})
	if err != nil {
		return 0, time.Time{}, err
	}

	var oldestAt time.Time
	if zs := oldest.Val(); len(zs) > 0 {
		oldestAt = time.UnixMilli(int64(zs[0].Score))
	}
	return card.Val(), oldestAt, nil
}

// AddToWindow records one hit at time at and refreshes the key's expiry.
func (c *Client) AddToWindow(ctx context.Context, key string, at time.Time, ttl time.Duration) error {
	if !c.IsEnabled() {
		return ErrNotInitialized
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, redis.Z{
			Score:  float64(at.UnixMilli()),
			Member: fmt.Sprintf("%d-%s", at.UnixMilli(), uuid.New().String()),
		})
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	return err
}

// ZRevRangeWithScores returns members with scores in a sorted set (descending)
func (c *Client) ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]redis.Z, error) {
	if !c.IsEnabled() {
		return nil, ErrNotInitialized
	}
	return c.client.ZRevRangeWithScores(ctx, key, start, stop).Result()
}

// ZScore returns the score of a member, or 0 when it is absent.
func (c *Client) ZScore(ctx context.Context, key, member string) (float64, error) {
	if !c.IsEnabled() {
		return 0, ErrNotInitialized
	}
	score, err := c.client.ZScore(ctx, key, member).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return score, err
}

// IsEnabled returns whether Redis is enabled
func (c *Client) IsEnabled() bool {
	return c != nil && c.client != nil
}
