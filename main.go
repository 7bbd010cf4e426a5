package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"stock-intelligence/config"
	"stock-intelligence/internal/api"
	"stock-intelligence/internal/checkpoint"
	"stock-intelligence/internal/decision"
	"stock-intelligence/internal/logging"
	"stock-intelligence/internal/market"
)

func main() {
	// Local .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LoggingConfig.Level)
	logger.Info().Str("default_symbol", cfg.MarketConfig.DefaultSymbol).Msg("configuration loaded")

	// Market data client
	client := market.NewClient(
		cfg.MarketConfig.BaseURL,
		time.Duration(cfg.MarketConfig.TimeoutSeconds)*time.Second,
		logging.Component(logger, "market"),
	)

	// Decision pipeline
	pipeline := decision.NewPipeline(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// Checkpoint store, Redis optional
	var redisClient *redis.Client
	if cfg.RedisConfig.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisConfig.Address,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
		})
	}
	store := checkpoint.NewStore(redisClient)
	if redisClient != nil {
		// Re-probe Redis so the store recovers after a transient outage
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for range ticker.C {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				if err := store.CheckConnection(ctx); err != nil {
					logger.Debug().Err(err).Msg("redis health check failed")
				}
				cancel()
			}
		}()
	}
	runner := checkpoint.NewRunner(client, pipeline, store, logging.Component(logger, "checkpoint"))

	// Checkpoint scheduler
	var scheduler *checkpoint.Scheduler
	if cfg.SchedulerConfig.Enabled {
		scheduler = checkpoint.NewScheduler(runner, cfg.SchedulerConfig.Symbols, logging.Component(logger, "scheduler"))
		if err := scheduler.Start(); err != nil {
			logger.Fatal().Err(err).Msg("failed to start checkpoint scheduler")
		}
	}

	// HTTP API
	server := api.NewServer(
		api.ServerConfig{
			Port:           cfg.ServerConfig.Port,
			Host:           cfg.ServerConfig.Host,
			AllowedOrigins: cfg.ServerConfig.AllowedOrigins,
			ProductionMode: cfg.ServerConfig.ProductionMode,
			MetricsEnabled: cfg.MetricsConfig.Enabled,
			DefaultSymbol:  cfg.MarketConfig.DefaultSymbol,
		},
		client,
		pipeline,
		store,
		runner,
		logging.Component(logger, "api"),
	)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutdown signal received")

	if scheduler != nil {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.ServerConfig.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}

	logger.Info().Msg("stopped")
}
