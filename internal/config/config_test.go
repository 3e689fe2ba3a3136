package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := ParseMap(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "memory", cfg.StorageType)
	assert.Equal(t, "dicegame-events", cfg.KafkaTopic)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Minute, cfg.FeedCleanup)
	assert.Equal(t, "uscrt", cfg.StakeDenom)
	assert.Equal(t, uint64(1_000_000), cfg.RequiredDeposit)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestParseOverrides(t *testing.T) {
	cfg, err := ParseMap(map[string]string{
		"HOST":             "127.0.0.1",
		"PORT":             "9090",
		"LOG_LEVEL":        "debug",
		"STORAGE_TYPE":     "postgres",
		"DATABASE_DSN":     "postgres://dice@localhost/dice?sslmode=disable",
		"KAFKA_BROKERS":    "k1:9092,k2:9092",
		"KAFKA_TOPIC":      "dice",
		"ALLOWED_ORIGINS":  "http://a.example,http://b.example",
		"STAKE_DENOM":      "ucoin",
		"REQUIRED_DEPOSIT": "42",
		"SHUTDOWN_TIMEOUT": "5s",
	})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "postgres", cfg.StorageType)
	assert.Equal(t, "postgres://dice@localhost/dice?sslmode=disable", cfg.DatabaseDSN)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "dice", cfg.KafkaTopic)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "ucoin", cfg.StakeDenom)
	assert.Equal(t, uint64(42), cfg.RequiredDeposit)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestParseRejectsMalformedValues(t *testing.T) {
	_, err := ParseMap(map[string]string{"PORT": "eighty"})
	assert.ErrorContains(t, err, "parse env")

	_, err = ParseMap(map[string]string{"REQUIRED_DEPOSIT": "-1"})
	assert.ErrorContains(t, err, "parse env")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
		wantErr string
	}{
		{"unknown storage", map[string]string{"STORAGE_TYPE": "cassandra"}, "invalid STORAGE_TYPE"},
		{"redis without url", map[string]string{"STORAGE_TYPE": "redis"}, "REDIS_URL required"},
		{"sqlite without dsn", map[string]string{"STORAGE_TYPE": "sqlite"}, "DATABASE_DSN required"},
		{"zero deposit", map[string]string{"REQUIRED_DEPOSIT": "0"}, "REQUIRED_DEPOSIT"},
		{"blank denom", map[string]string{"STAKE_DENOM": " "}, "STAKE_DENOM"},
		{"port out of range", map[string]string{"PORT": "70000"}, "invalid PORT"},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}, "invalid LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMap(tt.environ)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateAcceptsBackends(t *testing.T) {
	for _, environ := range []map[string]string{
		{"STORAGE_TYPE": "redis", "REDIS_URL": "redis://localhost:6379"},
		{"STORAGE_TYPE": "sqlite", "DATABASE_DSN": "dice.db"},
	} {
		_, err := ParseMap(environ)
		assert.NoError(t, err, environ)
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte("DICEGAME_TEST_ONLY=from-file\n"), 0o600))
	t.Setenv("DICEGAME_TEST_ONLY", "")
	require.NoError(t, os.Unsetenv("DICEGAME_TEST_ONLY"))

	_, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "from-file", os.Getenv("DICEGAME_TEST_ONLY"))
}

func TestLoadSkipsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}
