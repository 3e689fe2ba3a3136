package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcoot/dicegame/internal/api"
	"github.com/mcoot/dicegame/internal/config"
	"github.com/mcoot/dicegame/internal/factory"
	"github.com/mcoot/dicegame/internal/model"
	"github.com/mcoot/dicegame/internal/services/escrow"
	redisstorage "github.com/mcoot/dicegame/internal/storage/redis"
	"github.com/mcoot/dicegame/internal/storage/sqlstore"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	level, _ := cfg.SlogLevel()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Create application factory
	app, err := factory.New(factoryConfig(cfg, logger))
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close application", slog.String("error", err.Error()))
		}
	}()

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		GameController: app.GameController,
		Feed:           app.Feed,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	serverConfig.ShutdownTimeout = cfg.ShutdownTimeout
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go cleanupFeed(ctx, app, cfg.FeedCleanup)

	logger.Info("server starting",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.StorageType),
		slog.String("denom", cfg.StakeDenom),
		slog.Uint64("required_deposit", cfg.RequiredDeposit),
		slog.Bool("kafka", app.Kafka != nil),
	)

	// Serve until a shutdown signal arrives
	if err := server.Run(ctx); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}

func factoryConfig(cfg config.Config, logger *slog.Logger) factory.Config {
	fc := factory.Config{
		Logger:      logger,
		StorageType: cfg.StorageType,
		Terms: escrow.Terms{
			Denom:           cfg.StakeDenom,
			RequiredDeposit: model.Amount(cfg.RequiredDeposit),
		},
		KafkaBrokers:   cfg.KafkaBrokers,
		KafkaTopic:     cfg.KafkaTopic,
		AllowedOrigins: cfg.AllowedOrigins,
	}

	switch cfg.StorageType {
	case factory.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		fc.RedisConfig = &redisCfg
	case factory.StorageTypeSQLite, factory.StorageTypePostgres:
		sqlCfg := sqlstore.DefaultConfig()
		sqlCfg.DSN = cfg.DatabaseDSN
		fc.SQLConfig = &sqlCfg
	}
	return fc
}

// cleanupFeed periodically drops event hubs nobody is watching
func cleanupFeed(ctx context.Context, app *factory.App, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			app.Feed.CleanupEmptyHubs()
		}
	}
}
