package models

import "fmt"

// ProviderID names one of the closed set of model provider variants
type ProviderID string

const (
	ProviderOllamaLocal  ProviderID = "ollama-local"
	ProviderOllamaRemote ProviderID = "ollama-remote"
	ProviderMock         ProviderID = "mock"
)

// KnownProviders lists every provider identity the factory can build
var KnownProviders = []ProviderID{ProviderOllamaLocal, ProviderOllamaRemote, ProviderMock}

// IsKnown reports whether id names one of the supported provider variants
func (id ProviderID) IsKnown() bool {
	for _, known := range KnownProviders {
		if id == known {
			return true
		}
	}
	return false
}

// IsRuntime reports whether the provider talks to a live Ollama runtime
func (id ProviderID) IsRuntime() bool {
	return id == ProviderOllamaLocal || id == ProviderOllamaRemote
}

// ModelConfig is the resolved, immutable provider configuration for one request
type ModelConfig struct {
	Provider    ProviderID `json:"provider" yaml:"provider"`
	TextModel   string     `json:"text_model" yaml:"text_model"`
	VisionModel string     `json:"vision_model" yaml:"vision_model"`
	APIURL      string     `json:"api_url,omitempty" yaml:"api_url,omitempty"` // Only meaningful for ollama-remote
	Description string     `json:"description" yaml:"description"`
}

// Key fingerprints the config so cached providers are dropped when any field changes
func (c ModelConfig) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s", c.Provider, c.TextModel, c.VisionModel, c.APIURL)
}

// ModelAvailability reports which required models a backend currently serves
type ModelAvailability struct {
	TextModel   bool     `json:"text_model"`
	VisionModel bool     `json:"vision_model"`
	Errors      []string `json:"errors"`
}

// OK is true when the availability check produced no diagnostics
func (a ModelAvailability) OK() bool {
	return len(a.Errors) == 0
}
