package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"lexassist/internal/config"
	"lexassist/internal/logging"
	"lexassist/internal/middleware"
	"lexassist/internal/models"
	"lexassist/internal/providers"
	"lexassist/internal/services"
	"lexassist/internal/utils"
)

const (
	errInvalidBody     = "Invalid request body"
	errUserInput       = "userInput is required and must be a non-empty string"
	errGenerateGeneric = "Failed to generate response"
)

// ConfigResolver resolves the provider configuration for the current request
type ConfigResolver interface {
	ResolveConfig() models.ModelConfig
}

// ProviderSource selects the provider serving a configuration, with fallback applied
type ProviderSource interface {
	Select(ctx context.Context, cfg models.ModelConfig) (*providers.Selection, models.ModelAvailability, error)
}

// Orchestrator runs the vision and text stages for one request
type Orchestrator interface {
	Orchestrate(ctx context.Context, userInput string, images []models.ImageData, attachments []models.Attachment) models.ModelResponse
}

// ChatHandler handles POST /api/chat
type ChatHandler struct {
	resolver        ConfigResolver
	source          ProviderSource
	validate        *validator.Validate
	metrics         *services.Metrics
	newOrchestrator func(p providers.Provider, cfg models.ModelConfig) Orchestrator
}

// NewChatHandler creates a new chat handler
func NewChatHandler(resolver ConfigResolver, source ProviderSource) *ChatHandler {
	return &ChatHandler{
		resolver: resolver,
		source:   source,
		validate: NewValidator(),
		metrics:  services.GetMetrics(),
		newOrchestrator: func(p providers.Provider, cfg models.ModelConfig) Orchestrator {
			return services.NewOrchestrator(p, cfg)
		},
	}
}

// NewValidator returns a validator with the "notblank" rule registered
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Handle validates the request, selects a provider and runs the orchestration
func (h *ChatHandler) Handle(c *fiber.Ctx) error {
	start := time.Now()
	h.metrics.RecordChatRequest()
	defer func() { h.metrics.RecordChatLatency(time.Since(start).Seconds()) }()

	requestID := middleware.GetRequestID(c)
	logger := log.WithField("request_id", requestID)

	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WithFields(log.Fields{"event": "validated", "error": err.Error()}).Warn("Malformed chat request")
		return h.fail(c, fiber.StatusBadRequest, "invalid_body", errInvalidBody)
	}
	if err := h.validate.Struct(&req); err != nil {
		logger.WithFields(log.Fields{"event": "validated", "error": err.Error()}).Warn("Invalid chat request")
		return h.fail(c, fiber.StatusBadRequest, "validation", errUserInput)
	}

	images := utils.FilterImages(req.Images)
	if rejected := len(req.Images) - len(images); rejected > 0 {
		h.metrics.RecordImages(0, rejected)
	}
	logger.WithFields(log.Fields{
		"event":       "validated",
		"images":      len(images),
		"attachments": len(req.Attachments),
	}).Info("Chat request accepted")

	cfg := h.resolver.ResolveConfig()
	logger = logging.WithRequest(requestID, string(cfg.Provider))

	if !config.IsProviderConfigured(cfg) {
		logger.WithField("event", "provider_selected").Error("Provider is not configured")
		return h.fail(c, fiber.StatusServiceUnavailable, "not_configured",
			fmt.Sprintf("Model provider %s is not configured. Set %s to the remote Ollama URL.", cfg.Provider, config.EnvRemoteURL))
	}

	selection, availability, err := h.source.Select(c.UserContext(), cfg)
	if err != nil {
		logger.WithFields(log.Fields{"event": "provider_selected", "error": err.Error()}).Error("Provider selection failed")
		return h.fail(c, fiber.StatusServiceUnavailable, "selection", "Model provider unavailable: "+err.Error())
	}

	logger = logger.WithFields(log.Fields{"selected": selection.Config.Provider, "fell_back": selection.FellBack})
	logger.WithField("event", "provider_selected").Info("Provider selected")

	if len(images) > 0 && !availability.VisionModel {
		logger.WithField("diagnostics", availability.Errors).Warn("Vision model unavailable")
		return h.fail(c, fiber.StatusServiceUnavailable, "vision_unavailable",
			unavailableMessage("Vision model unavailable, cannot analyze images", availability))
	}
	if !availability.TextModel {
		logger.WithField("diagnostics", availability.Errors).Warn("Text model unavailable")
		return h.fail(c, fiber.StatusServiceUnavailable, "text_unavailable",
			unavailableMessage("Text model unavailable", availability))
	}

	orchestrator := h.newOrchestrator(selection.Provider, selection.Config)
	resp, panicked := h.orchestrate(c.UserContext(), logger, orchestrator, req.UserInput, images, req.Attachments)
	if panicked {
		return h.fail(c, fiber.StatusInternalServerError, "panic", errGenerateGeneric)
	}
	if !resp.Success {
		return h.fail(c, fiber.StatusInternalServerError, "orchestration", resp.Error)
	}

	logger.WithFields(log.Fields{
		"event":       "completed",
		"model_used":  resp.ModelUsed,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Chat response generated")

	h.metrics.RecordChatResponse("200")
	return c.JSON(models.ChatResponse{
		Success:   true,
		Response:  resp.Content,
		ModelUsed: resp.ModelUsed,
	})
}

// orchestrate runs the pipeline, converting a panic into a reported failure
func (h *ChatHandler) orchestrate(ctx context.Context, logger *log.Entry, o Orchestrator, input string, images []models.ImageData, attachments []models.Attachment) (resp models.ModelResponse, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(log.Fields{"event": "completed", "panic": fmt.Sprint(r)}).Error("Recovered from orchestration panic")
			panicked = true
		}
	}()
	return o.Orchestrate(ctx, input, images, attachments), false
}

func (h *ChatHandler) fail(c *fiber.Ctx, status int, errorType, message string) error {
	h.metrics.RecordChatError(errorType)
	h.metrics.RecordChatResponse(fmt.Sprint(status))
	return c.Status(status).JSON(models.ChatResponse{Success: false, Error: message})
}

func unavailableMessage(prefix string, availability models.ModelAvailability) string {
	if len(availability.Errors) == 0 {
		return prefix
	}
	return prefix + ": " + strings.Join(availability.Errors, "; ")
}
