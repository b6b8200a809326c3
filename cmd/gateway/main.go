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

	"bookservice/pkg/circuitbreaker"
	"bookservice/pkg/config"
	"bookservice/pkg/logging"
	"bookservice/pkg/queue"

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

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	g := &gateway{
		catalogURL: cfg.CatalogServiceURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		breaker: circuitbreaker.New(cfg.BreakerMaxFailures, cfg.BreakerTimeout,
			circuitbreaker.WithStateChange(func(from, to circuitbreaker.State) {
				logger.Warn("circuit breaker state changed",
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			})),
		retries:        queue.New(),
		maxAttempts:    cfg.RetryMaxAttempts,
		retryInterval:  cfg.RetryInterval,
		trustedProxies: cfg.TrustedProxies,
		logger:         logger,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go g.runRetries(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.GatewayPort),
		Handler: g.router(),
	}

	logger.Info("gateway service starting",
		zap.Int("port", cfg.GatewayPort),
		zap.String("catalog", cfg.CatalogServiceURL))

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
	if n := g.retries.Len(); n > 0 {
		logger.Warn("pending retries dropped on shutdown", zap.Int("count", n))
	}
}
