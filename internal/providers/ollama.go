package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"lexassist/internal/models"
	"lexassist/internal/ollama"
)

// OllamaProvider delegates generation and image analysis to an Ollama runtime,
// either the local instance or a remote one bound to the config's API URL
type OllamaProvider struct {
	config models.ModelConfig
	client *ollama.Client
}

// NewOllamaProvider creates a runtime adapter for cfg
func NewOllamaProvider(cfg models.ModelConfig, timeout time.Duration) *OllamaProvider {
	return &OllamaProvider{
		config: cfg,
		client: ollama.NewClient(cfg.APIURL, timeout),
	}
}

func (p *OllamaProvider) isLocal() bool {
	return p.config.Provider == models.ProviderOllamaLocal
}

func (p *OllamaProvider) location() string {
	if p.isLocal() {
		return "local"
	}
	return fmt.Sprintf("remote (%s)", p.config.APIURL)
}

// pullHint tells the operator how to install a missing model
func (p *OllamaProvider) pullHint(model string) string {
	if p.isLocal() {
		return "Run: ollama pull " + model
	}
	return fmt.Sprintf("Pull %s on your remote Ollama instance (%s)", model, p.config.APIURL)
}

// CheckAvailability lists installed models and looks for the configured text and vision models
func (p *OllamaProvider) CheckAvailability(ctx context.Context) models.ModelAvailability {
	availability := models.ModelAvailability{Errors: []string{}}

	installed, err := p.client.ListModels(ctx)
	if err != nil {
		availability.Errors = append(availability.Errors,
			fmt.Sprintf("Failed to connect to %s Ollama instance: %v", p.location(), err))
		return availability
	}

	names := make([]string, 0, len(installed))
	for _, m := range installed {
		names = append(names, m.Name)
	}

	availability.VisionModel = HasModel(names, p.config.VisionModel)
	availability.TextModel = HasModel(names, p.config.TextModel)

	if !availability.VisionModel {
		availability.Errors = append(availability.Errors,
			fmt.Sprintf("Vision model %s not found. %s", p.config.VisionModel, p.pullHint(p.config.VisionModel)))
	}
	if !availability.TextModel {
		availability.Errors = append(availability.Errors,
			fmt.Sprintf("Text model %s not found. %s", p.config.TextModel, p.pullHint(p.config.TextModel)))
	}

	return availability
}

// HasModel reports whether a required "base:tag" model is among the installed names.
// An installed name matches when it contains the base and its tag is the required tag,
// either exactly or followed by a "-" variant suffix ("4b" matches "4b-it-q4_K_M", not "14b").
// A required name without a tag matches on the base alone.
func HasModel(installed []string, required string) bool {
	required = strings.ToLower(strings.TrimSpace(required))
	if required == "" {
		return false
	}
	base, tag, _ := strings.Cut(required, ":")

	for _, name := range installed {
		nameBase, nameTag, _ := strings.Cut(strings.ToLower(name), ":")
		if !strings.Contains(nameBase, base) {
			continue
		}
		if tag == "" || nameTag == tag || strings.HasPrefix(nameTag, tag+"-") {
			return true
		}
	}
	return false
}

// GenerateText sends the conversation to the text model
func (p *OllamaProvider) GenerateText(ctx context.Context, messages []models.ModelMessage) models.ModelResponse {
	wire := make([]ollama.Message, 0, len(messages))
	for _, m := range messages {
		wire = append(wire, ollama.Message{Role: m.Role, Content: m.Content, Images: m.Images})
	}

	result, err := p.client.Chat(ctx, p.config.TextModel, wire)
	if err != nil {
		log.WithFields(log.Fields{
			"provider": p.config.Provider,
			"model":    p.config.TextModel,
			"error":    err.Error(),
		}).Error("Ollama text generation failed")
		return models.Failed("Ollama text generation failed: "+p.describeFailure(err, p.config.TextModel), p.config.TextModel)
	}
	if strings.TrimSpace(result.Message.Content) == "" {
		log.WithFields(log.Fields{
			"provider": p.config.Provider,
			"model":    p.config.TextModel,
		}).Warn("Ollama returned an empty answer")
		return models.Failed("Ollama text generation returned an empty response", p.config.TextModel)
	}

	return models.Succeeded(result.Message.Content, fmt.Sprintf("%s (%s)", p.config.TextModel, p.config.Description))
}

// AnalyzeImage asks the vision model to describe one image
func (p *OllamaProvider) AnalyzeImage(ctx context.Context, image models.ImageData, prompt string) models.ModelResponse {
	result, err := p.client.Chat(ctx, p.config.VisionModel, []ollama.Message{
		{
			Role:    models.RoleUser,
			Content: VisionPrompt(prompt),
			Images:  []string{stripDataURL(image.Base64)},
		},
	})
	if err != nil {
		log.WithFields(log.Fields{
			"provider":  p.config.Provider,
			"model":     p.config.VisionModel,
			"file_name": image.FileName,
			"error":     err.Error(),
		}).Error("Ollama image analysis failed")
		return models.Failed("Ollama image analysis failed: "+p.describeFailure(err, p.config.VisionModel), p.config.VisionModel)
	}
	if strings.TrimSpace(result.Message.Content) == "" {
		log.WithFields(log.Fields{
			"provider":  p.config.Provider,
			"model":     p.config.VisionModel,
			"file_name": image.FileName,
		}).Warn("Ollama returned an empty image description")
		return models.Failed("Ollama image analysis returned an empty response", p.config.VisionModel)
	}

	return models.Succeeded(result.Message.Content, fmt.Sprintf("%s (%s)", p.config.VisionModel, p.config.Description))
}

// describeFailure turns a client error into caller-facing text. Transport causes
// (endpoint URLs, dial errors) stay in the logs.
func (p *OllamaProvider) describeFailure(err error, model string) string {
	switch {
	case ollama.IsModelNotFound(err):
		return fmt.Sprintf("model %s not found. %s", model, p.pullHint(model))
	case ollama.IsTimeout(err):
		return "request timed out"
	case ollama.IsNotRunning(err):
		return "Ollama is not reachable"
	}

	var clientErr *ollama.ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Message
	}
	return "unexpected error"
}

// VisionPrompt builds the instruction sent with every image
func VisionPrompt(userContext string) string {
	return "Please analyze this image and provide a detailed description. Context from user: " + userContext
}

// stripDataURL removes a "data:<mime>;base64," prefix; the runtime wants raw base64
func stripDataURL(payload string) string {
	if strings.HasPrefix(payload, "data:") {
		if i := strings.Index(payload, ","); i >= 0 {
			return payload[i+1:]
		}
	}
	return payload
}
