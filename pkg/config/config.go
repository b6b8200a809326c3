package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
	StorageMemory   = "memory"
)

type Config struct {
	Env      string
	HTTPPort int
	Storage  string
	SeedData bool

	DB DatabaseConfig

	// Redis read cache, disabled when RedisURL is empty
	RedisURL string
	CacheTTL time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	// Peers allowed to set X-Forwarded-For / X-Real-IP
	TrustedProxies []string

	LogLevel  string
	LogFormat string

	// Gateway
	GatewayPort        int
	CatalogServiceURL  string
	BreakerMaxFailures int
	BreakerTimeout     time.Duration
	RetryInterval      time.Duration
	RetryMaxAttempts   int
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string

	SQLitePath string

	MaxOpenConns      int
	MaxIdleConns      int
	ConnMaxLifetime   time.Duration
	ConnectRetries    int
	ConnectRetryDelay time.Duration
}

// DSN builds the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port)
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first; variables already set win.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	loadEnvString(&cfg.Env, "APP_ENV", "development")
	if err := loadEnvInt(&cfg.HTTPPort, "HTTP_PORT", 8060); err != nil {
		return nil, err
	}
	loadEnvString(&cfg.Storage, "STORAGE", StoragePostgres)
	if err := loadEnvBool(&cfg.SeedData, "SEED_DATA", true); err != nil {
		return nil, err
	}

	// Database
	loadEnvString(&cfg.DB.Host, "DB_HOST", "postgres")
	loadEnvString(&cfg.DB.Port, "DB_PORT", "5432")
	loadEnvString(&cfg.DB.User, "DB_USER", "program")
	loadEnvString(&cfg.DB.Password, "DB_PASSWORD", "test")
	loadEnvString(&cfg.DB.Name, "DB_NAME", "catalog")
	loadEnvString(&cfg.DB.SQLitePath, "SQLITE_PATH", "catalog.db")
	if err := loadEnvInt(&cfg.DB.MaxOpenConns, "DB_MAX_OPEN_CONNS", 25); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&cfg.DB.MaxIdleConns, "DB_MAX_IDLE_CONNS", 10); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&cfg.DB.ConnMaxLifetime, "DB_CONN_MAX_LIFETIME", 5*time.Minute); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&cfg.DB.ConnectRetries, "DB_CONNECT_RETRIES", 10); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&cfg.DB.ConnectRetryDelay, "DB_CONNECT_RETRY_DELAY", 5*time.Second); err != nil {
		return nil, err
	}

	// Cache
	loadEnvString(&cfg.RedisURL, "REDIS_URL", "")
	if err := loadEnvDuration(&cfg.CacheTTL, "CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}

	if err := loadEnvFloat(&cfg.RateLimitRPS, "RATE_LIMIT_RPS", 20); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&cfg.RateLimitBurst, "RATE_LIMIT_BURST", 40); err != nil {
		return nil, err
	}

	loadEnvList(&cfg.TrustedProxies, "TRUSTED_PROXIES", []string{"127.0.0.1", "::1"})

	loadEnvString(&cfg.LogLevel, "LOG_LEVEL", "info")
	loadEnvString(&cfg.LogFormat, "LOG_FORMAT", "json")

	// Gateway
	if err := loadEnvInt(&cfg.GatewayPort, "GATEWAY_PORT", 8080); err != nil {
		return nil, err
	}
	loadEnvString(&cfg.CatalogServiceURL, "CATALOG_SERVICE_URL", "http://localhost:8060")
	if err := loadEnvInt(&cfg.BreakerMaxFailures, "BREAKER_MAX_FAILURES", 3); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&cfg.BreakerTimeout, "BREAKER_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&cfg.RetryInterval, "RETRY_INTERVAL", 5*time.Second); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&cfg.RetryMaxAttempts, "RETRY_MAX_ATTEMPTS", 5); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate performs validation on the loaded configuration
func (c *Config) Validate() error {
	var errs []string

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errs = append(errs, "HTTP_PORT must be between 1 and 65535")
	}
	if c.GatewayPort < 1 || c.GatewayPort > 65535 {
		errs = append(errs, "GATEWAY_PORT must be between 1 and 65535")
	}

	validStorages := []string{StoragePostgres, StorageSQLite, StorageMemory}
	if !contains(validStorages, c.Storage) {
		errs = append(errs, fmt.Sprintf("STORAGE must be one of: %s", strings.Join(validStorages, ", ")))
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	validLogFormats := []string{"console", "json"}
	if !contains(validLogFormats, c.LogFormat) {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be one of: %s", strings.Join(validLogFormats, ", ")))
	}

	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		errs = append(errs, "RATE_LIMIT_RPS must be positive and RATE_LIMIT_BURST at least 1")
	}
	for _, proxy := range c.TrustedProxies {
		if net.ParseIP(proxy) == nil {
			if _, _, err := net.ParseCIDR(proxy); err != nil {
				errs = append(errs, fmt.Sprintf("TRUSTED_PROXIES entry %q is not an IP or CIDR", proxy))
			}
		}
	}
	if c.BreakerMaxFailures < 1 {
		errs = append(errs, "BREAKER_MAX_FAILURES must be at least 1")
	}
	if c.RetryMaxAttempts < 1 {
		errs = append(errs, "RETRY_MAX_ATTEMPTS must be at least 1")
	}
	if c.RetryInterval <= 0 {
		errs = append(errs, "RETRY_INTERVAL must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func loadEnvString(target *string, key, defaultValue string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
}

// loadEnvList splits a comma separated value. "none" yields an empty list.
func loadEnvList(target *[]string, key string, defaultValue []string) {
	value := os.Getenv(key)
	switch {
	case value == "":
		*target = defaultValue
	case value == "none":
		*target = nil
	default:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		*target = items
	}
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvFloat(target *float64, key string, defaultValue float64) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvBool(target *bool, key string, defaultValue bool) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
