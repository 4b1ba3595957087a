package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/isuckplshelpmetestimony/Kairos/internal/api"
	"github.com/isuckplshelpmetestimony/Kairos/internal/config"
	"github.com/isuckplshelpmetestimony/Kairos/internal/crawler"
	"github.com/isuckplshelpmetestimony/Kairos/internal/fetch"
	"github.com/isuckplshelpmetestimony/Kairos/internal/monitoring"
	"github.com/isuckplshelpmetestimony/Kairos/internal/normalize"
	"github.com/isuckplshelpmetestimony/Kairos/internal/orchestrator"
	"github.com/isuckplshelpmetestimony/Kairos/internal/search"
	"github.com/isuckplshelpmetestimony/Kairos/internal/storage"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("could not load config", zap.Error(err))
	}

	// Storage is optional: the crawl works without either backend.
	var pgStore *storage.PostgresStore
	if cfg.PostgresURL != "" {
		pgStore, err = storage.NewPostgresStore(context.Background(), cfg.PostgresURL)
		if err != nil {
			logger.Warn("postgres unavailable, diagnostics disabled", zap.Error(err))
			pgStore = nil
		}
	}
	var redisStore *storage.RedisStore
	if cfg.RedisAddr != "" {
		redisStore = storage.NewRedisStore(cfg.RedisAddr)
	}

	metrics := monitoring.NewMetrics()

	// Core crawl pipeline
	client := fetch.NewClient(
		cfg.FetchTimeout(),
		cfg.ScraperBaseURL,
		time.Duration(cfg.DetailDelayMinMs)*time.Millisecond,
		time.Duration(cfg.DetailDelayMaxMs)*time.Millisecond,
	)
	normalizer := normalize.New(logger)
	pipeline := crawler.New(cfg, client, normalizer, metrics, logger)
	crawls := orchestrator.New(cfg, pipeline, pgStore, redisStore, metrics, logger)

	addresses := search.New(cfg.SearchRatePerMin, cfg.SearchCacheSize, logger)

	// Initialize API Server
	server := api.NewServer(cfg, crawls, addresses, pgStore, redisStore, logger)

	// Graceful Shutdown
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("could not start server", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("port", cfg.ServerPort))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	pgStore.Close()

	logger.Info("server exiting")
}
