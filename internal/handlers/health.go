package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"lexassist/internal/config"
)

// CacheStatus reports the state of the provider cache
type CacheStatus interface {
	GetStatus() map[string]interface{}
}

// HealthHandler handles health check requests
type HealthHandler struct {
	resolver ConfigResolver
	cache    CacheStatus
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(resolver ConfigResolver, cache CacheStatus) *HealthHandler {
	return &HealthHandler{resolver: resolver, cache: cache}
}

// Handle responds with server health status. It never contacts a model backend.
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	cfg := h.resolver.ResolveConfig()

	return c.JSON(fiber.Map{
		"status":         "healthy",
		"provider":       cfg.Provider,
		"configured":     config.IsProviderConfigured(cfg),
		"provider_cache": h.cache.GetStatus(),
		"timestamp":      time.Now().Format(time.RFC3339),
	})
}
