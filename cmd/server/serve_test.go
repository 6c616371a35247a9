package main

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexassist/internal/config"
	"lexassist/internal/health"
	"lexassist/internal/models"
	"lexassist/internal/providers"
)

func testResolver(t *testing.T, env map[string]string) *config.Resolver {
	t.Helper()
	resolver := config.NewResolver(nil)
	resolver.Getenv = func(key string) string { return env[key] }
	return resolver
}

func testConfig() *config.Config {
	return &config.Config{
		Port:           "0",
		Environment:    "test",
		AllowedOrigins: "*",
		OllamaTimeout:  time.Second,
		RateLimitChat:  30,
		BodyLimitMB:    1,
	}
}

func TestRoutesServeSimulatedChat(t *testing.T) {
	cfg := testConfig()
	resolver := testResolver(t, map[string]string{config.EnvModelProvider: "mock"})
	cache := health.NewService(providers.NewFactory(resolver, false, time.Second), 0)

	app := newApp(cfg)
	registerRoutes(app, cfg, resolver, cache)

	req := httptest.NewRequest("POST", "/api/chat", strings.NewReader(`{"userInput":"Can my employer fire me for this?"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, 200, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var body models.ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "Mock Legal AI", body.ModelUsed)
	assert.Contains(t, body.Response, providers.Disclaimer)
}

func TestRoutesHealth(t *testing.T) {
	cfg := testConfig()
	resolver := testResolver(t, map[string]string{config.EnvModelProvider: "ollama-remote"})
	cache := health.NewService(providers.NewFactory(resolver, false, time.Second), 0)

	app := newApp(cfg)
	registerRoutes(app, cfg, resolver, cache)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, 200, resp.StatusCode)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "ollama-remote", body["provider"])
	assert.Equal(t, false, body["configured"])
}

func TestUnknownRouteUsesErrorShape(t *testing.T) {
	app := newApp(testConfig())

	resp, err := app.Test(httptest.NewRequest("GET", "/nope", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 404, resp.StatusCode)
	data, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(data), `"success":false`)
}

func TestLoadProviderTableFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, config.DefaultProviderTable(), loadProviderTable(filepath.Join(dir, "missing.yaml")))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("providers:\n  - provider: openai\n    textModel: gpt\n"), 0o644))
	assert.Equal(t, config.DefaultProviderTable(), loadProviderTable(bad))
}
