package handlers

import (
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"lexassist/internal/config"
	"lexassist/internal/middleware"
)

// ModelsHandler reports which provider and models would serve a chat request right now
type ModelsHandler struct {
	resolver ConfigResolver
	source   ProviderSource
}

// NewModelsHandler creates a new model status handler
func NewModelsHandler(resolver ConfigResolver, source ProviderSource) *ModelsHandler {
	return &ModelsHandler{resolver: resolver, source: source}
}

// Handle handles GET /api/models
func (h *ModelsHandler) Handle(c *fiber.Ctx) error {
	cfg := h.resolver.ResolveConfig()

	if !config.IsProviderConfigured(cfg) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success":    false,
			"configured": false,
			"config":     cfg,
			"error":      "Model provider " + string(cfg.Provider) + " is not configured",
		})
	}

	selection, availability, err := h.source.Select(c.UserContext(), cfg)
	if err != nil {
		log.WithFields(log.Fields{
			"request_id": middleware.GetRequestID(c),
			"provider":   cfg.Provider,
			"error":      err.Error(),
		}).Error("Model status check failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"success":    false,
			"configured": true,
			"config":     cfg,
			"error":      err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"configured":   true,
		"config":       cfg,
		"selected":     selection.Config,
		"fell_back":    selection.FellBack,
		"availability": availability,
	})
}
