package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"referral-graph/internal/clients/kafka"
	redisClient "referral-graph/internal/clients/redis"
	"referral-graph/internal/config"
	"referral-graph/internal/events"
	"referral-graph/internal/leaderboard"
	"referral-graph/internal/observability"
	referralProcessor "referral-graph/internal/referral/processor"
	"referral-graph/internal/store"
)

// workerOrigin never matches a server instance, so every change is applied.
const workerOrigin = "leaderboard-worker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	logger := observability.NewLogger()
	defer logger.Sync()
	ctx := observability.WithFields(context.Background(),
		observability.Field{Key: "component", Value: workerOrigin},
	)

	logger.Info(ctx, "Starting Kafka leaderboard worker...")

	if !cfg.Redis.Enabled {
		logger.Fatal(ctx, "leaderboard worker requires Redis", errors.New("REDIS_ENABLED is false"))
	}
	if cfg.Kafka.Brokers == "" {
		logger.Fatal(ctx, "leaderboard worker requires Kafka", config.ErrEmptyEnvironmentVariable)
	}

	// Initialize store for full rebuilds
	referralStore, err := store.New(cfg.Database.Driver, cfg.Database.DSN, logger)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize store", err)
	}
	defer referralStore.Close()
	if err := referralStore.CreateSchema(ctx); err != nil {
		logger.Fatal(ctx, "failed to create schema", err)
	}

	// The worker only reads, so nothing is published.
	records := referralProcessor.New(referralStore, events.NewPublisher(logger), logger)

	redis, err := redisClient.NewClient(cfg.Redis, logger)
	if err != nil {
		logger.Fatal(ctx, "failed to connect to Redis", err)
	}
	defer redis.Close()

	service := leaderboard.NewRedisLeaderboardService(redis, records, logger)
	if err := service.Rebuild(ctx); err != nil {
		logger.Fatal(ctx, "failed to rebuild leaderboard", err)
	}

	// Workers share one consumer group so each change is counted once.
	groupID := cfg.Kafka.ConsumerGroup + "-leaderboard"
	consumer := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.Kafka.BrokerList(),
		Topic:   cfg.Kafka.Topic,
		GroupID: groupID,
	}, logger)
	defer consumer.Close()

	relay := events.NewInvalidationRelay(consumer, service, workerOrigin, logger)

	logger.Info(ctx, fmt.Sprintf(`Kafka leaderboard worker configuration:
  - Kafka brokers: %v
  - Kafka topic: %s
  - Consumer group: %s`,
		cfg.Kafka.BrokerList(), cfg.Kafka.Topic, groupID))

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error(ctx, "leaderboard consumer error", err)
		}
	}()

	logger.Info(ctx, "Kafka leaderboard worker started successfully")

	// Wait for shutdown signal or consumer exit
	select {
	case <-sigChan:
		logger.Info(ctx, "Received shutdown signal, stopping worker...")
	case <-done:
	}
	cancel()
	<-done

	logger.Info(ctx, "Kafka leaderboard worker stopped")
}
