package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/dicegame/internal/dependencies/clock"
	"github.com/mcoot/dicegame/internal/dependencies/random"
	"github.com/mcoot/dicegame/internal/events"
	"github.com/mcoot/dicegame/internal/events/feed"
	"github.com/mcoot/dicegame/internal/events/kafka"
	"github.com/mcoot/dicegame/internal/services/escrow"
	"github.com/mcoot/dicegame/internal/services/game"
	"github.com/mcoot/dicegame/internal/services/rules"
	"github.com/mcoot/dicegame/internal/storage"
	"github.com/mcoot/dicegame/internal/storage/memory"
	redisstorage "github.com/mcoot/dicegame/internal/storage/redis"
	"github.com/mcoot/dicegame/internal/storage/sqlstore"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypeSQLite   = "sqlite"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Event delivery
	Feed      *feed.Feed
	Kafka     *kafka.Producer
	Publisher events.Publisher

	// Services
	Machine        *rules.Machine
	GameController *game.Controller
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLConfig holds database settings (required if StorageType is "sqlite" or "postgres")
	SQLConfig *sqlstore.Config
	// Terms fixes the stake; zero value uses escrow.DefaultTerms()
	Terms escrow.Terms
	// KafkaBrokers enables the Kafka event publisher when non-empty
	KafkaBrokers []string
	KafkaTopic   string
	// AllowedOrigins restricts websocket subscribers; empty accepts every origin
	AllowedOrigins []string
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	terms := cfg.Terms
	if terms.Denom == "" {
		terms = escrow.DefaultTerms()
	}

	eventFeed := feed.New(logger, cfg.AllowedOrigins)
	publishers := events.Multi{eventFeed}

	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("create kafka producer: %w", err)
		}
		publishers = append(publishers, producer)
	}

	app := newWithDependencies(store, clock.New(), random.New(), terms, publishers, logger)
	app.Feed = eventFeed
	app.Kafka = producer
	return app, nil
}

func newStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		store, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StorageTypeSQLite, StorageTypePostgres:
		if cfg.SQLConfig == nil {
			return nil, fmt.Errorf("SQLConfig required when StorageType is %s", storageType)
		}
		sqlCfg := *cfg.SQLConfig
		sqlCfg.Driver = storageType
		store, err := sqlstore.Open(sqlCfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be one of memory, redis, sqlite, postgres", storageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	terms escrow.Terms,
	publisher events.Publisher,
	logger *slog.Logger,
) *App {
	machine := rules.New(terms)
	gameController := game.NewController(store, machine, publisher, clk, rnd, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		Publisher:      publisher,
		Machine:        machine,
		GameController: gameController,
	}
}

// Close releases the event publishers and the storage backend
func (a *App) Close() error {
	var errs []error
	if a.Feed != nil {
		a.Feed.Close()
	}
	if a.Kafka != nil {
		if err := a.Kafka.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close kafka producer: %w", err))
		}
	}
	if err := a.Storage.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	return errors.Join(errs...)
}
