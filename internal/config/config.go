// Package config centralises configuration parsing for the activities service.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config captures runtime configuration values for the API and consumer binaries.
type Config struct {
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"activities-api"`
	HTTPAddress     string        `env:"HTTP_ADDRESS" envDefault:":8000"`
	MetricsAddress  string        `env:"METRICS_ADDRESS" envDefault:":9102"` // Consumer-only metrics listener.
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	SeedFile        string `env:"SEED_FILE"`
	EnforceCapacity bool   `env:"ENFORCE_CAPACITY" envDefault:"true"`

	KafkaBrokers        []string      `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic          string        `env:"KAFKA_TOPIC" envDefault:"activity_roster_events"`
	ConsumerGroupID     string        `env:"CONSUMER_GROUP_ID" envDefault:"activity-roster-audit"`
	OutboxBatchSize     int           `env:"OUTBOX_BATCH_SIZE" envDefault:"25"`
	OutboxFlushInterval time.Duration `env:"OUTBOX_FLUSH_INTERVAL" envDefault:"1s"`
	OutboxQueueSize     int           `env:"OUTBOX_QUEUE_SIZE" envDefault:"1024"`
	OutboxMaxRetries    int           `env:"OUTBOX_MAX_RETRIES" envDefault:"5"`
	OutboxRetryDelay    time.Duration `env:"OUTBOX_RETRY_BASE_DELAY" envDefault:"1s"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`

	// EnvFile is the dotenv file that was loaded, if any.
	EnvFile string
}

// Load reads an optional .env file (existing variables win) and then the environment.
func Load() (Config, error) {
	envFile, err := loadDotEnv(".env")
	if err != nil {
		return Config{}, err
	}
	return parse(envFile)
}

func parse(envFile string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.EnvFile = envFile
	cfg.CORSOrigins = splitAndTrim(cfg.CORSOrigins)
	cfg.KafkaBrokers = splitAndTrim(cfg.KafkaBrokers)

	if cfg.OutboxBatchSize <= 0 {
		cfg.OutboxBatchSize = 25
	}
	if cfg.OutboxQueueSize <= 0 {
		cfg.OutboxQueueSize = 1024
	}
	if cfg.OutboxFlushInterval <= 0 {
		cfg.OutboxFlushInterval = time.Second
	}
	return cfg, nil
}

// EventsEnabled reports whether roster events should be published to Kafka.
func (c Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func loadDotEnv(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return "", fmt.Errorf("load %s: %w", path, err)
	}
	return path, nil
}

func splitAndTrim(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
