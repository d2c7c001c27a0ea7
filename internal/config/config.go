package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var ErrEmptyEnvironmentVariable = errors.New("empty environment variable")

// Config holds all application configuration
type Config struct {
	Database    DatabaseConfig
	Server      ServerConfig
	Notifier    NotifierConfig
	Kafka       KafkaConfig
	Redis       RedisConfig
	Leaderboard LeaderboardConfig
	RateLimit   RateLimitConfig
	WorkerPool  WorkerPoolConfig
}

// DatabaseConfig holds the referral store settings
type DatabaseConfig struct {
	// Driver is either "sqlite" (embedded, default) or "pgx" (Postgres).
	Driver string
	DSN    string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port      int
	WebAppURI string
	// AllowReset exposes the destructive full-table reset endpoint.
	AllowReset bool
}

// NotifierConfig holds live subscription settings
type NotifierConfig struct {
	Buffer int
}

// KafkaConfig holds change-event streaming configuration
type KafkaConfig struct {
	Enabled        bool
	ConsumeEnabled bool
	Brokers        string
	Topic          string
	ConsumerGroup  string
}

// BrokerList splits the comma separated broker string.
func (k KafkaConfig) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// RedisConfig holds Redis connection settings for the leaderboard projection
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Leaderboard projector modes.
const (
	// ProjectorInline applies changes in the server process.
	ProjectorInline = "inline"
	// ProjectorKafka leaves projection to the kafka-worker binary.
	ProjectorKafka = "kafka"
)

// LeaderboardConfig selects where referral counts are projected into Redis
type LeaderboardConfig struct {
	Projector string
}

// RateLimitConfig holds the per-client limit on write endpoints
type RateLimitConfig struct {
	// WritesPerMinute of zero disables limiting.
	WritesPerMinute int
}

// WorkerPoolConfig holds worker pool configuration for async event sinks
type WorkerPoolConfig struct {
	EventWorkers   int
	EventQueueSize int
}

// Load reads and validates all environment variables
func Load() (*Config, error) {
	// Load env.local in non-production environments
	if os.Getenv("GO_ENV") != "production" {
		if err := godotenv.Load("env.local"); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env.local: %w", err)
		}
	}

	cfg := &Config{}
	var err error

	cfg.Database.Driver = getEnvWithDefault("DB_DRIVER", "sqlite")
	switch cfg.Database.Driver {
	case "sqlite":
		cfg.Database.DSN = getEnvWithDefault("DB_DSN", "file:referrals.db")
	case "pgx":
		if cfg.Database.DSN, err = requireEnv("DB_DSN"); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}

	if cfg.Server.Port, err = getEnvInt("SERVER_PORT", 8080); err != nil {
		return nil, err
	}
	cfg.Server.WebAppURI = getEnvWithDefault("WEBAPP_URI", "http://localhost:3000")
	if cfg.Server.AllowReset, err = getEnvBool("ALLOW_RESET", false); err != nil {
		return nil, err
	}

	if cfg.Notifier.Buffer, err = getEnvInt("NOTIFIER_BUFFER", 1); err != nil {
		return nil, err
	}

	// Kafka configuration
	if cfg.Kafka.Enabled, err = getEnvBool("KAFKA_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.Kafka.ConsumeEnabled, err = getEnvBool("KAFKA_CONSUME_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.Kafka.Enabled || cfg.Kafka.ConsumeEnabled {
		if cfg.Kafka.Brokers, err = requireEnv("KAFKA_BROKERS"); err != nil {
			return nil, err
		}
	}
	cfg.Kafka.Topic = getEnvWithDefault("KAFKA_TOPIC", "referrals.changes")
	cfg.Kafka.ConsumerGroup = getEnvWithDefault("KAFKA_CONSUMER_GROUP", "referral-notifier")

	// Redis configuration
	if cfg.Redis.Enabled, err = getEnvBool("REDIS_ENABLED", false); err != nil {
		return nil, err
	}
	cfg.Redis.Host = getEnvWithDefault("REDIS_HOST", "localhost")
	if cfg.Redis.Port, err = getEnvInt("REDIS_PORT", 6379); err != nil {
		return nil, err
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	if cfg.Redis.DB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}

	cfg.Leaderboard.Projector = getEnvWithDefault("LEADERBOARD_PROJECTOR", ProjectorInline)
	switch cfg.Leaderboard.Projector {
	case ProjectorInline, ProjectorKafka:
	default:
		return nil, fmt.Errorf("unsupported LEADERBOARD_PROJECTOR %q", cfg.Leaderboard.Projector)
	}

	if cfg.RateLimit.WritesPerMinute, err = getEnvInt("RATE_LIMIT_WRITES_PER_MINUTE", 0); err != nil {
		return nil, err
	}

	// Worker pool configuration
	if cfg.WorkerPool.EventWorkers, err = getEnvInt("EVENT_WORKERS", 1); err != nil {
		return nil, err
	}
	if cfg.WorkerPool.EventQueueSize, err = getEnvInt("EVENT_QUEUE_SIZE", 256); err != nil {
		return nil, err
	}

	return cfg, nil
}

// requireEnv retrieves an environment variable or returns an error if it's empty
func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set: %w", key, ErrEmptyEnvironmentVariable)
	}
	return value, nil
}

// getEnvWithDefault retrieves an environment variable or returns a default value
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return parsed, nil
}
