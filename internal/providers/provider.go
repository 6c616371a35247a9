// Package providers implements the model provider capability set and its two variants:
// a runtime adapter backed by Ollama and an offline simulator returning scripted text.
package providers

//go:generate mockgen -destination=mocks/mock_provider.go -package=mocks lexassist/internal/providers Provider

import (
	"context"
	"errors"

	"lexassist/internal/models"
)

var (
	// ErrUnknownProvider is returned by the factory for an unrecognized provider identity
	ErrUnknownProvider = errors.New("unknown model provider")
	// ErrNotConfigured is returned when a provider lacks required settings
	ErrNotConfigured = errors.New("model provider is not configured")
)

// Provider is the capability set every backend implements. Backend faults are reported
// through ModelResponse/ModelAvailability, never as Go errors or panics.
type Provider interface {
	// CheckAvailability reports whether the required text and vision models exist
	CheckAvailability(ctx context.Context) models.ModelAvailability

	// GenerateText answers a conversation with one assistant message
	GenerateText(ctx context.Context, messages []models.ModelMessage) models.ModelResponse

	// AnalyzeImage describes one image, using prompt as context from the user
	AnalyzeImage(ctx context.Context, image models.ImageData, prompt string) models.ModelResponse
}

// Selection is the outcome of provider selection: the provider to use and the configuration
// it was built from. Availability is set when the selector already probed this provider.
type Selection struct {
	Provider     Provider
	Config       models.ModelConfig
	Availability *models.ModelAvailability
	FellBack     bool
	Primary      models.ModelConfig
}
