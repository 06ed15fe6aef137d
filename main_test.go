package main

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"articles-service/config"
	"articles-service/controllers"
	"articles-service/routes"
	"articles-service/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Port:               "8080",
		Store:              config.StoreMemory,
		BodyLimitBytes:     1 << 20,
		AllowedOrigins:     "*",
		RateLimitMax:       2,
		RateLimitWindow:    time.Minute,
		IdempotencyEnabled: true,
		LogLevel:           "info",
		ServiceName:        "articles-service",
	}
}

func TestOpenStoresMemory(t *testing.T) {
	articles, idempotency, db, err := openStores(memoryConfig())
	require.NoError(t, err)
	assert.NotNil(t, articles)
	assert.NotNil(t, idempotency)
	assert.Nil(t, db)

	cfg := memoryConfig()
	cfg.IdempotencyEnabled = false
	_, idempotency, _, err = openStores(cfg)
	require.NoError(t, err)
	assert.Nil(t, idempotency)
}

func TestNewAppServesRoutesAndLimits(t *testing.T) {
	cfg := memoryConfig()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	articles, idempotency, _, err := openStores(cfg)
	require.NoError(t, err)
	svc, err := services.NewArticleService(articles)
	require.NoError(t, err)

	app := newApp(cfg, logger)
	routes.Register(app, controllers.NewArticleController(svc), idempotency)

	req := httptest.NewRequest(http.MethodPost, "/Articles", strings.NewReader(`{"name":"Pen"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/Articles", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// third request inside the window trips the limiter
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/Articles", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
