package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setDBEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "articles")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "catalog")
}

func TestFromEnvDefaults(t *testing.T) {
	setDBEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreGorm, cfg.Store)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, 4*1024*1024, cfg.BodyLimitBytes)
	assert.Equal(t, 60, cfg.RateLimitMax)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.True(t, cfg.IdempotencyEnabled)
	assert.False(t, cfg.OTelEnabled)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestFromEnvOverrides(t *testing.T) {
	setDBEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("BODY_LIMIT_MB", "1")
	t.Setenv("RATE_LIMIT_WINDOW_SECONDS", "5")
	t.Setenv("IDEMPOTENCY_ENABLED", "false")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3306, cfg.DBPort)
	assert.Equal(t, 1024*1024, cfg.BodyLimitBytes)
	assert.Equal(t, 5*time.Second, cfg.RateLimitWindow)
	assert.False(t, cfg.IdempotencyEnabled)
	assert.Equal(t, "articles:secret@tcp(db:3306)/catalog?charset=utf8mb4&parseTime=True&loc=UTC", cfg.DSN())
}

func TestFromEnvPostgresDSN(t *testing.T) {
	setDBEnv(t)
	t.Setenv("DB_HOST", "localhost")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t,
		"host=localhost user=articles password=secret dbname=catalog port=5432 sslmode=disable TimeZone=UTC",
		cfg.DSN())
}

func TestFromEnvMemoryStoreNeedsNoDatabase(t *testing.T) {
	t.Setenv("STORE", "memory")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store)
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown store", env: map[string]string{"STORE": "redis"}},
		{name: "unknown driver", env: map[string]string{"DB_DRIVER": "sqlite"}},
		{name: "sql store on mysql", env: map[string]string{"STORE": "sql", "DB_DRIVER": "mysql"}},
		{name: "missing db name", env: map[string]string{"DB_NAME": ""}},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "verbose"}},
		{name: "non numeric port", env: map[string]string{"PORT": "http"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setDBEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
