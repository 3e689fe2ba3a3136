// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every server setting read from the environment
type Config struct {
	// HTTP server
	Host            string        `env:"HOST"`
	Port            int           `env:"PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`

	// Storage
	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL"`
	DatabaseDSN string `env:"DATABASE_DSN"`

	// Events
	KafkaBrokers   []string      `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic     string        `env:"KAFKA_TOPIC" envDefault:"dicegame-events"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	FeedCleanup    time.Duration `env:"FEED_CLEANUP_INTERVAL" envDefault:"5m"`

	// Stake
	StakeDenom      string `env:"STAKE_DENOM" envDefault:"uscrt"`
	RequiredDeposit uint64 `env:"REQUIRED_DEPOSIT" envDefault:"1000000"`
}

// Load reads envFiles (missing files are skipped) into the process
// environment without overriding variables already set, then parses Config.
func Load(envFiles ...string) (Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}
	return Parse()
}

// Parse reads Config from the process environment
func Parse() (Config, error) {
	return parse(env.Options{})
}

// ParseMap reads Config from environ instead of the process environment
func ParseMap(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that depend on each other
func (c Config) Validate() error {
	switch c.StorageType {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
	case "sqlite", "postgres":
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN required when STORAGE_TYPE=%s", c.StorageType)
		}
	default:
		return fmt.Errorf("invalid STORAGE_TYPE %q: must be one of memory, redis, sqlite, postgres", c.StorageType)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if strings.TrimSpace(c.StakeDenom) == "" {
		return errors.New("STAKE_DENOM must not be empty")
	}
	if c.RequiredDeposit == 0 {
		return errors.New("REQUIRED_DEPOSIT must be positive")
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return errors.New("KAFKA_TOPIC required when KAFKA_BROKERS is set")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel (debug, info, warn, error)
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}
