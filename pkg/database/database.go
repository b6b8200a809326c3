package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookservice/pkg/config"
	"bookservice/pkg/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var ErrUnsupportedStorage = errors.New("unsupported storage")

// Open connects to the relational store named by storage, tunes the pool
// and migrates the catalog models.
func Open(ctx context.Context, storage string, cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch storage {
	case config.StoragePostgres:
		logger.Info("connecting to database",
			zap.String("host", cfg.Host),
			zap.String("port", cfg.Port),
			zap.String("db", cfg.Name))
		dialector = postgres.Open(cfg.DSN())
	case config.StorageSQLite:
		logger.Info("opening sqlite database", zap.String("path", cfg.SQLitePath))
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedStorage, storage)
	}

	db, err := connect(ctx, dialector, cfg, logger)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	if storage == config.StorageSQLite {
		// one connection keeps :memory: databases and pragmas shared
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database ping: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logger.Info("database connection established")
	return db, nil
}

// Migrate creates or updates the catalog tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	return nil
}

// Ping reports whether the underlying connection is alive.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func connect(ctx context.Context, dialector gorm.Dialector, cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}

	retries := cfg.ConnectRetries
	if retries < 1 {
		retries = 1
	}

	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < retries; i++ {
		db, err = gorm.Open(dialector, gormCfg)
		if err == nil {
			return db, nil
		}
		logger.Warn("database connection attempt failed",
			zap.Int("attempt", i+1),
			zap.Int("max", retries),
			zap.Error(err))
		if i < retries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(cfg.ConnectRetryDelay):
			}
		}
	}
	return nil, fmt.Errorf("failed to connect to database: %w", err)
}
