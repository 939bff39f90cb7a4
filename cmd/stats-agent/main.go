package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkaczor/gymflow/internal/analytics"
	"github.com/mkaczor/gymflow/internal/schedule"
	"github.com/mkaczor/gymflow/internal/statsapi"
	"github.com/mkaczor/gymflow/pkg/config"
	"github.com/mkaczor/gymflow/pkg/health"
	"github.com/mkaczor/gymflow/pkg/postgres"
	"github.com/mkaczor/gymflow/pkg/redis"
)

func main() {
	// Load configuration with hierarchy: defaults → env → flags → file
	cfg := config.NewConfig()
	cfg.ServiceName = "stats-agent"
	cfg.LoadFromEnv()
	cfg.LoadFromFlags()
	if err := cfg.LoadFromFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration file error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	logger.Info("Starting gymflow stats agent",
		"service_name", cfg.ServiceName,
		"postgres_host", cfg.PostgresHost,
		"redis_host", cfg.RedisAddress(),
		"api_port", cfg.APIPort,
		"log_level", cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Initialize clients
	pgClient := postgres.NewClient(cfg, logger)
	if err := pgClient.Connect(ctx); err != nil {
		logger.Error("Failed to connect to Postgres", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(cfg, logger)
	if err := redisClient.Ping(ctx); err != nil {
		// The service degrades to uncached computation, so a cache outage
		// at startup is not fatal
		logger.Warn("Redis unavailable, stats will be computed per request", "error", err)
	}

	store := analytics.NewStore(pgClient, logger)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Error("Failed to ensure database schema", "error", err)
		os.Exit(1)
	}

	// Assemble the stats pipeline: store -> engine -> cached service -> HTTP
	engine := analytics.NewEngine(store, schedule.FromConfig(cfg), analytics.Options{
		TrailingDays: cfg.TrailingDays,
		Thresholds: analytics.Thresholds{
			MaxMissingHours: cfg.MaxMissingHours,
			MaxZeroRun:      cfg.MaxZeroRun,
		},
		TopResults: cfg.TopResults,
	}, logger)

	service := statsapi.NewService(engine, redisClient, cfg.StatsCacheTTL(), logger)
	server := statsapi.NewServer(service, store, logger)

	apiServer := startAPIServer(cfg.APIPort, server, logger)

	checker := health.NewChecker(nil, pgClient, logger)
	healthServer := startHealthServer(cfg.HealthPort, checker, logger)

	// Wait for shutdown signal
	<-sigChan
	logger.Info("Shutdown signal received (SIGTERM/SIGINT)")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down API server", "error", err)
	}
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down health server", "error", err)
	}

	if err := redisClient.Close(); err != nil {
		logger.Error("Error closing Redis connection", "error", err)
	}
	if err := pgClient.Disconnect(); err != nil {
		logger.Error("Error disconnecting from Postgres", "error", err)
	}

	logger.Info("Stats agent shutdown complete")
}

func startAPIServer(port int, server *statsapi.Server, logger *slog.Logger) *http.Server {
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: server.Routes(),
	}

	go func() {
		logger.Info("Starting stats API server", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	return httpServer
}

func startHealthServer(port int, checker *health.Checker, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", checker.HandlerFunc())
	mux.HandleFunc("/health/detailed", checker.DetailedHandlerFunc())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		logger.Info("Starting health check server", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Health server error", "error", err)
		}
	}()

	return server
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
