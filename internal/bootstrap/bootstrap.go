package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"referral-graph/internal/apierrors"
	kafkaClient "referral-graph/internal/clients/kafka"
	redisClient "referral-graph/internal/clients/redis"
	"referral-graph/internal/config"
	"referral-graph/internal/events"
	"referral-graph/internal/leaderboard"
	"referral-graph/internal/observability"
	"referral-graph/internal/ratelimit"
	referralHandler "referral-graph/internal/referral/handler"
	"referral-graph/internal/referral/notifier"
	referralProcessor "referral-graph/internal/referral/processor"
	"referral-graph/internal/store"
	"referral-graph/internal/workers"

	"github.com/google/uuid"
)

// Dependencies holds all initialized application dependencies
type Dependencies struct {
	// Core
	Store      store.Storer
	Logger     *observability.Logger
	InstanceID string

	Publisher   *events.Publisher
	Processor   *referralProcessor.ReferralProcessor
	Notifier    *notifier.Notifier
	Leaderboard *leaderboard.RedisLeaderboardService

	// Handlers
	ReferralHandler    referralHandler.Handler
	LeaderboardHandler *leaderboard.Handler
	RateLimiter        *ratelimit.Service

	// Background work
	Relay *events.InvalidationRelay
	pools []workers.WorkerPool

	// Clients (for cleanup)
	KafkaProducer *kafkaClient.Producer
	KafkaConsumer *kafkaClient.Consumer
	RedisClient   *redisClient.Client
}

// Initialize sets up all application dependencies
func Initialize(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Logger:     logger,
		InstanceID: uuid.New().String(),
	}
	ctx = observability.WithFields(ctx, observability.Field{Key: "instance_id", Value: deps.InstanceID})

	apierrors.SetLogger(logger)
	apierrors.UseJSONFieldNames()

	// Initialize referral store
	referralStore, err := store.New(cfg.Database.Driver, cfg.Database.DSN, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	deps.Store = referralStore
	if err := deps.Store.CreateSchema(ctx); err != nil {
		deps.Store.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	// Initialize processor and live notifications
	deps.Publisher = events.NewPublisher(logger)
	deps.Processor = referralProcessor.New(deps.Store, deps.Publisher, logger)
	deps.Notifier = notifier.New(deps.Processor, logger, notifier.Options{Buffer: cfg.Notifier.Buffer})
	deps.Publisher.AddSink(deps.Notifier)

	deps.ReferralHandler = referralHandler.New(deps.Processor, deps.Notifier, logger, referralHandler.Options{
		AllowReset:     cfg.Server.AllowReset,
		AllowedOrigins: []string{cfg.Server.WebAppURI},
	})

	// Forward committed changes to Kafka
	if cfg.Kafka.Enabled {
		deps.KafkaProducer = kafkaClient.NewProducer(kafkaClient.ProducerConfig{
			Brokers: cfg.Kafka.BrokerList(),
			Topic:   cfg.Kafka.Topic,
		}, logger)

		forwarder := events.NewKafkaForwarder(deps.KafkaProducer, deps.InstanceID)
		if err := deps.startPool(ctx, cfg.WorkerPool, forwarder); err != nil {
			deps.Cleanup()
			return nil, err
		}
	}

	// Invalidate local subscriptions on changes committed elsewhere. Every
	// instance needs every message, so each gets its own consumer group.
	if cfg.Kafka.ConsumeEnabled {
		deps.KafkaConsumer = kafkaClient.NewConsumer(kafkaClient.ConsumerConfig{
			Brokers: cfg.Kafka.BrokerList(),
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.ConsumerGroup + "-" + deps.InstanceID,
		}, logger)
		deps.Relay = events.NewInvalidationRelay(deps.KafkaConsumer, deps.Notifier, deps.InstanceID, logger)
	}

	// Initialize Redis-backed services
	deps.RedisClient, err = redisClient.NewClient(cfg.Redis, logger)
	if err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	var (
		ranking leaderboard.RankingStore
		windows ratelimit.WindowStore
	)
	if deps.RedisClient != nil {
		ranking = deps.RedisClient
		windows = deps.RedisClient
	}
	deps.RateLimiter = ratelimit.NewService(windows, cfg.RateLimit.WritesPerMinute, logger)

	deps.Leaderboard = leaderboard.NewRedisLeaderboardService(ranking, deps.Processor, logger)
	deps.LeaderboardHandler = leaderboard.NewHandler(deps.Leaderboard, logger)

	if deps.Leaderboard.IsEnabled() && cfg.Leaderboard.Projector == config.ProjectorInline {
		if err := deps.Leaderboard.Rebuild(ctx); err != nil {
			logger.Error(ctx, "failed to rebuild leaderboard on startup", err)
		}
		// One worker keeps increments in commit order.
		leaderboardPool := config.WorkerPoolConfig{EventWorkers: 1, EventQueueSize: cfg.WorkerPool.EventQueueSize}
		if err := deps.startPool(ctx, leaderboardPool, deps.Leaderboard); err != nil {
			deps.Cleanup()
			return nil, err
		}
	}

	return deps, nil
}

// startPool runs processor behind a worker pool fed by the publisher.
func (d *Dependencies) startPool(ctx context.Context, cfg config.WorkerPoolConfig, processor workers.EventProcessor) error {
	pool := workers.NewWorkerPool(workers.WorkerPoolConfig{
		NumWorkers:   cfg.EventWorkers,
		QueueSize:    cfg.EventQueueSize,
		DrainTimeout: 10 * time.Second,
		OnResult: func(result workers.ProcessingResult) {
			if result.Error != nil {
				d.Logger.Error(observability.WithFields(context.Background(),
					observability.Field{Key: "processor", Value: processor.Name()},
					observability.Field{Key: "event_id", Value: result.Event.ID},
				), "async change processing failed", result.Error)
			}
		},
	}, processor, d.Logger)

	if err := pool.Start(ctx); err != nil {
		return fmt.Errorf("failed to start %s pool: %w", processor.Name(), err)
	}
	d.pools = append(d.pools, pool)
	d.Publisher.AddSubmitter(pool)
	return nil
}

// RunRelay consumes remote changes until ctx is done. It returns immediately
// when consumption is disabled.
func (d *Dependencies) RunRelay(ctx context.Context) error {
	if d.Relay == nil {
		return nil
	}
	err := d.Relay.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Cleanup closes all resources that need cleanup
func (d *Dependencies) Cleanup() {
	ctx := context.Background()

	for _, pool := range d.pools {
		if err := pool.Drain(ctx); err != nil {
			d.Logger.Error(ctx, "failed to drain worker pool", err)
		}
	}
	if d.Notifier != nil {
		d.Notifier.Close()
	}
	if d.KafkaProducer != nil {
		d.KafkaProducer.Close()
	}
	if d.KafkaConsumer != nil {
		d.KafkaConsumer.Close()
	}
	if d.RedisClient != nil {
		d.RedisClient.Close()
	}
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			d.Logger.Error(ctx, "failed to close store", err)
		}
	}
}
