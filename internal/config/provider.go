package config

import (
	"os"
	"strings"
	"sync"

	"lexassist/internal/models"
)

// Environment variables read on every resolution
const (
	EnvModelProvider   = "MODEL_PROVIDER"
	EnvRemoteURL       = "OLLAMA_REMOTE_URL"
	EnvLocalHost       = "OLLAMA_HOST"
	EnvHostedPolicy    = "HOSTED_PROVIDER_POLICY"
	EnvEnvironment     = "ENVIRONMENT"
	EnvVercel          = "VERCEL"
	EnvNetlify         = "NETLIFY"
	DefaultOllamaLocal = "http://127.0.0.1:11434"
)

// HostedPolicy decides which provider a hosted deployment without an explicit remote URL uses
type HostedPolicy string

const (
	// HostedPolicySimulated serves the offline simulator when hosted
	HostedPolicySimulated HostedPolicy = "simulated"
	// HostedPolicyRemote expects a remote runtime when hosted
	HostedPolicyRemote HostedPolicy = "remote"
)

// ProviderTable maps each provider identity to its default configuration
type ProviderTable map[models.ProviderID]models.ModelConfig

// DefaultProviderTable returns the built-in provider defaults
func DefaultProviderTable() ProviderTable {
	return ProviderTable{
		models.ProviderOllamaLocal: {
			Provider:    models.ProviderOllamaLocal,
			TextModel:   "gemma3:4b",
			VisionModel: "llava:7b",
			Description: "Local Ollama instance",
		},
		models.ProviderOllamaRemote: {
			Provider:    models.ProviderOllamaRemote,
			TextModel:   "gemma3:4b",
			VisionModel: "llava:7b",
			Description: "Remote Ollama instance",
		},
		models.ProviderMock: {
			Provider:    models.ProviderMock,
			TextModel:   "Mock Legal AI",
			VisionModel: "Mock Vision AI",
			Description: "Mock AI for demo/testing",
		},
	}
}

// Resolver maps environment state to a provider selection. It keeps no per-request state;
// every method re-reads the environment through Getenv.
type Resolver struct {
	Getenv func(string) string

	mu    sync.RWMutex
	table ProviderTable
}

// NewResolver creates a resolver over the process environment
func NewResolver(table ProviderTable) *Resolver {
	if table == nil {
		table = DefaultProviderTable()
	}
	return &Resolver{table: table, Getenv: os.Getenv}
}

// SetTable replaces the provider table, e.g. after the providers file changed
func (r *Resolver) SetTable(table ProviderTable) {
	if table == nil {
		table = DefaultProviderTable()
	}
	r.mu.Lock()
	r.table = table
	r.mu.Unlock()
}

func (r *Resolver) lookup(id models.ProviderID) (models.ModelConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.table[id]
	return cfg, ok
}

func (r *Resolver) env(key string) string {
	if r.Getenv == nil {
		return strings.TrimSpace(os.Getenv(key))
	}
	return strings.TrimSpace(r.Getenv(key))
}

// IsHosted reports whether the process runs in a recognized hosted/production environment
func (r *Resolver) IsHosted() bool {
	return r.env(EnvVercel) != "" ||
		r.env(EnvNetlify) != "" ||
		strings.EqualFold(r.env(EnvEnvironment), "production")
}

// Policy returns the configured hosted policy, defaulting to the simulator
func (r *Resolver) Policy() HostedPolicy {
	if HostedPolicy(strings.ToLower(r.env(EnvHostedPolicy))) == HostedPolicyRemote {
		return HostedPolicyRemote
	}
	return HostedPolicySimulated
}

// hostedPolicyTable is the provider chosen when no override and no remote URL is set,
// keyed by the hosted flag
func hostedPolicyTable(policy HostedPolicy) map[bool]models.ProviderID {
	hosted := models.ProviderMock
	if policy == HostedPolicyRemote {
		hosted = models.ProviderOllamaRemote
	}
	return map[bool]models.ProviderID{
		false: models.ProviderOllamaLocal,
		true:  hosted,
	}
}

// ResolveProviderIdentity picks the provider; first match wins:
// manual override, explicit remote URL, hosted policy, local runtime.
func (r *Resolver) ResolveProviderIdentity() models.ProviderID {
	if manual := models.ProviderID(strings.ToLower(r.env(EnvModelProvider))); manual != "" {
		if _, ok := r.lookup(manual); ok {
			return manual
		}
	}

	if r.env(EnvRemoteURL) != "" {
		return models.ProviderOllamaRemote
	}

	return hostedPolicyTable(r.Policy())[r.IsHosted()]
}

// ResolveConfig resolves the full configuration for the selected provider
func (r *Resolver) ResolveConfig() models.ModelConfig {
	return r.ConfigFor(r.ResolveProviderIdentity())
}

// ConfigFor builds the configuration of a given provider identity, binding connection
// parameters from the environment
func (r *Resolver) ConfigFor(id models.ProviderID) models.ModelConfig {
	cfg, ok := r.lookup(id)
	if !ok {
		return models.ModelConfig{Provider: id}
	}

	switch id {
	case models.ProviderOllamaRemote:
		if url := r.env(EnvRemoteURL); url != "" {
			cfg.APIURL = url
		}
	case models.ProviderOllamaLocal:
		cfg.APIURL = r.env(EnvLocalHost)
		if cfg.APIURL == "" {
			cfg.APIURL = DefaultOllamaLocal
		}
		if !strings.Contains(cfg.APIURL, "://") {
			cfg.APIURL = "http://" + cfg.APIURL
		}
	}

	return cfg
}

// IsProviderConfigured checks if the provider has every setting it needs
func IsProviderConfigured(cfg models.ModelConfig) bool {
	switch cfg.Provider {
	case models.ProviderOllamaLocal, models.ProviderMock:
		return true
	case models.ProviderOllamaRemote:
		return strings.TrimSpace(cfg.APIURL) != ""
	default:
		return false
	}
}
