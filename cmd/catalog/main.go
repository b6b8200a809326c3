package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookservice/pkg/api"
	"bookservice/pkg/config"
	"bookservice/pkg/database"
	"bookservice/pkg/library"
	"bookservice/pkg/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting catalog service", zap.String("storage", cfg.Storage))

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := setup(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialise catalog", zap.Error(err))
	}
	defer svc.close()

	limiter := api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Stop()

	router := api.NewRouter(api.NewHandler(svc.lib, logger), logger, limiter, svc.health)
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Fatal("invalid trusted proxies", zap.Error(err))
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: router,
	}

	logger.Info("catalog service listening", zap.Int("port", cfg.HTTPPort))

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-errChan:
		logger.Fatal("server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("catalog service stopped")
}

type service struct {
	lib    library.Library
	health api.HealthFunc
	close  func()
}

// setup opens the configured storage, seeds it and wraps it with the redis
// cache when REDIS_URL is set.
func setup(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*service, error) {
	svc := &service{close: func() {}}

	switch cfg.Storage {
	case config.StorageMemory:
		provider := library.Snapshot{}
		if cfg.SeedData {
			provider = library.DefaultData()
		}
		svc.lib = library.NewMemory(provider)
	default:
		db, err := database.Open(ctx, cfg.Storage, cfg.DB, logger)
		if err != nil {
			return nil, err
		}
		if cfg.SeedData {
			if err := library.Seed(ctx, db, library.DefaultData()); err != nil {
				return nil, err
			}
			logger.Info("catalog seed data applied")
		}
		svc.lib = library.NewStore(db)
		svc.health = func(ctx context.Context) error {
			return database.Ping(ctx, db)
		}
		svc.close = func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
	}

	if cfg.RedisURL != "" {
		client, err := library.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			svc.close()
			return nil, err
		}
		closeStorage := svc.close
		svc.close = func() {
			_ = client.Close()
			closeStorage()
		}
		svc.lib = library.NewCached(svc.lib, client, cfg.CacheTTL, logger)
		logger.Info("redis cache enabled", zap.Duration("ttl", cfg.CacheTTL))
	}

	return svc, nil
}
