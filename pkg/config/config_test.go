package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE", "")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("TRUSTED_PROXIES", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8060, cfg.HTTPPort)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, "postgres", cfg.DB.Host)
	assert.Equal(t, 5*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.True(t, cfg.SeedData)
	assert.Equal(t, []string{"127.0.0.1", "::1"}, cfg.TrustedProxies)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE", "sqlite")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("SEED_DATA", "false")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageSQLite, cfg.Storage)
	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.False(t, cfg.SeedData)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "port", key: "HTTP_PORT", val: "http"},
		{name: "duration", key: "CACHE_TTL", val: "soon"},
		{name: "bool", key: "SEED_DATA", val: "maybe"},
		{name: "float", key: "RATE_LIMIT_RPS", val: "fast"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		HTTPPort:           70000,
		GatewayPort:        8080,
		Storage:            "mongo",
		LogLevel:           "trace",
		LogFormat:          "json",
		RateLimitRPS:       1,
		RateLimitBurst:     1,
		BreakerMaxFailures: 1,
		RetryMaxAttempts:   1,
		RetryInterval:      time.Second,
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_PORT")
	assert.Contains(t, err.Error(), "STORAGE")
	assert.Contains(t, err.Error(), "LOG_LEVEL")
	assert.NotContains(t, err.Error(), "LOG_FORMAT")
}

func TestTrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", " 10.0.0.5, 172.16.0.0/12 ,")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.5", "172.16.0.0/12"}, cfg.TrustedProxies)

	t.Setenv("TRUSTED_PROXIES", "none")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.TrustedProxies)

	t.Setenv("TRUSTED_PROXIES", "gateway")
	cfg, err = Load()
	require.NoError(t, err)
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRUSTED_PROXIES")
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: "5433", User: "u", Password: "p", Name: "catalog"}
	assert.Equal(t, "host=db user=u password=p dbname=catalog port=5433 sslmode=disable TimeZone=UTC", db.DSN())
}
