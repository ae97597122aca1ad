package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := parse("")
	require.NoError(t, err)

	assert.Equal(t, "activities-api", cfg.ServiceName)
	assert.Equal(t, ":8000", cfg.HTTPAddress)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.True(t, cfg.EnforceCapacity)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.EventsEnabled())
	assert.Equal(t, "activity_roster_events", cfg.KafkaTopic)
	assert.Equal(t, 25, cfg.OutboxBatchSize)
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDRESS", ":9000")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://school.example ,")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("ENFORCE_CAPACITY", "false")
	t.Setenv("OUTBOX_FLUSH_INTERVAL", "250ms")
	t.Setenv("OUTBOX_BATCH_SIZE", "0")
	t.Setenv("SEED_FILE", "/etc/activities/seed.yaml")

	cfg, err := parse("")
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddress)
	assert.Equal(t, []string{"http://localhost:3000", "https://school.example"}, cfg.CORSOrigins)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.EventsEnabled())
	assert.False(t, cfg.EnforceCapacity)
	assert.Equal(t, 250*time.Millisecond, cfg.OutboxFlushInterval)
	assert.Equal(t, 25, cfg.OutboxBatchSize)
	assert.Equal(t, "/etc/activities/seed.yaml", cfg.SeedFile)
}

func TestParseRejectsMalformedValues(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT", "soon")

	_, err := parse("")
	require.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_LEVEL=debug\nKAFKA_TOPIC=from_file\n"), 0o600))

	// Variables already set in the environment take precedence over the file.
	t.Setenv("KAFKA_TOPIC", "from_env")
	t.Setenv("LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("LOG_LEVEL"))

	loaded, err := loadDotEnv(path)
	require.NoError(t, err)
	assert.Equal(t, path, loaded)

	cfg, err := parse(loaded)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "from_env", cfg.KafkaTopic)
	assert.Equal(t, path, cfg.EnvFile)
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	loaded, err := loadDotEnv(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)
	assert.Empty(t, loaded)
}
