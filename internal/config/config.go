package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"lexassist/internal/models"
)

// Config holds process-level settings. Provider selection is not part of it: that is
// resolved from the environment on every request (see Resolver).
type Config struct {
	Port           string
	Environment    string
	LogLevel       string
	AllowedOrigins string
	EnvFile        string

	// ProvidersFile is an optional YAML table overriding default model names
	ProvidersFile string

	// ProviderCacheTTL bounds how long a selected provider is reused. Zero disables reuse.
	ProviderCacheTTL time.Duration
	// AvailabilityCheckInterval is the cadence of background availability re-checks
	AvailabilityCheckInterval time.Duration

	OllamaTimeout  time.Duration
	SimulatedDelay bool

	RateLimitChat int
	BodyLimitMB   int
}

// Load loads configuration from environment variables (and an optional CONFIG_FILE) with defaults
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "3001")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("ENV_FILE", ".env")
	v.SetDefault("PROVIDERS_FILE", "providers.yaml")
	v.SetDefault("PROVIDER_CACHE_TTL", "60s")
	v.SetDefault("AVAILABILITY_CHECK_INTERVAL", "5m")
	v.SetDefault("OLLAMA_TIMEOUT", "5m")
	v.SetDefault("SIMULATED_DELAY", true)
	v.SetDefault("RATE_LIMIT_CHAT", 30)
	v.SetDefault("BODY_LIMIT_MB", 25)

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		Port:                      v.GetString("PORT"),
		Environment:               strings.ToLower(v.GetString("ENVIRONMENT")),
		LogLevel:                  v.GetString("LOG_LEVEL"),
		AllowedOrigins:            v.GetString("ALLOWED_ORIGINS"),
		EnvFile:                   v.GetString("ENV_FILE"),
		ProvidersFile:             v.GetString("PROVIDERS_FILE"),
		ProviderCacheTTL:          v.GetDuration("PROVIDER_CACHE_TTL"),
		AvailabilityCheckInterval: v.GetDuration("AVAILABILITY_CHECK_INTERVAL"),
		OllamaTimeout:             v.GetDuration("OLLAMA_TIMEOUT"),
		SimulatedDelay:            v.GetBool("SIMULATED_DELAY"),
		RateLimitChat:             v.GetInt("RATE_LIMIT_CHAT"),
		BodyLimitMB:               v.GetInt("BODY_LIMIT_MB"),
	}

	if cfg.AvailabilityCheckInterval <= 0 {
		cfg.AvailabilityCheckInterval = 5 * time.Minute
	}
	if cfg.RateLimitChat <= 0 {
		cfg.RateLimitChat = 30
	}
	if cfg.BodyLimitMB <= 0 {
		cfg.BodyLimitMB = 25
	}

	return cfg, nil
}

// IsProduction reports whether the process runs with ENVIRONMENT=production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// ProvidersFileConfig is the on-disk shape of the provider table
type ProvidersFileConfig struct {
	Providers []models.ModelConfig `yaml:"providers"`
}

// LoadProviders loads the provider table from a YAML file and merges it over the defaults.
// Entries for unknown provider identities are rejected.
func LoadProviders(filePath string) (ProviderTable, error) {
	table := DefaultProviderTable()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return table, fmt.Errorf("failed to read providers file: %w", err)
	}

	var file ProvidersFileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return table, fmt.Errorf("failed to parse providers YAML: %w", err)
	}

	for _, entry := range file.Providers {
		if !entry.Provider.IsKnown() {
			return DefaultProviderTable(), fmt.Errorf("unknown provider %q in %s", entry.Provider, filePath)
		}
		merged := table[entry.Provider]
		if entry.TextModel != "" {
			merged.TextModel = entry.TextModel
		}
		if entry.VisionModel != "" {
			merged.VisionModel = entry.VisionModel
		}
		if entry.Description != "" {
			merged.Description = entry.Description
		}
		if entry.APIURL != "" {
			merged.APIURL = entry.APIURL
		}
		table[entry.Provider] = merged
	}

	return table, nil
}
