package preflight

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"lexassist/internal/config"
	"lexassist/internal/models"
	"lexassist/internal/providers"
)

// CheckResult represents the result of a preflight check
type CheckResult struct {
	Name    string
	Status  string // "pass", "fail", "warning"
	Message string
	Error   error
}

// ProviderBuilder constructs the provider for a configuration
type ProviderBuilder interface {
	CreateProvider(cfg models.ModelConfig) (providers.Provider, error)
}

// Checker verifies the model setup before the server starts and backs the `models` command
type Checker struct {
	resolver      *config.Resolver
	builder       ProviderBuilder
	providersPath string
}

// NewChecker creates a new preflight checker
func NewChecker(resolver *config.Resolver, builder ProviderBuilder, providersPath string) *Checker {
	return &Checker{
		resolver:      resolver,
		builder:       builder,
		providersPath: providersPath,
	}
}

// RunAll runs all preflight checks and returns results
func (c *Checker) RunAll(ctx context.Context) []CheckResult {
	log.Info("Running pre-flight checks")

	cfg := c.resolver.ResolveConfig()
	results := []CheckResult{
		c.checkProvidersFile(),
		c.checkProviderIdentity(cfg),
		c.checkProviderConfiguration(cfg),
	}
	if config.IsProviderConfigured(cfg) {
		results = append(results, c.checkModelAvailability(ctx, cfg)...)
	}

	passed, failed, warnings := 0, 0, 0
	for _, result := range results {
		entry := log.WithField("check", result.Name)
		switch result.Status {
		case "pass":
			entry.Info(result.Message)
			passed++
		case "fail":
			if result.Error != nil {
				entry = entry.WithField("error", result.Error.Error())
			}
			entry.Error(result.Message)
			failed++
		case "warning":
			entry.Warn(result.Message)
			warnings++
		}
	}

	log.WithFields(log.Fields{
		"passed":   passed,
		"failed":   failed,
		"warnings": warnings,
	}).Info("Pre-flight summary")

	return results
}

// HasFailures returns true if any check failed
func HasFailures(results []CheckResult) bool {
	for _, result := range results {
		if result.Status == "fail" {
			return true
		}
	}
	return false
}

// HasIssues returns true if any check failed or warned
func HasIssues(results []CheckResult) bool {
	for _, result := range results {
		if result.Status != "pass" {
			return true
		}
	}
	return false
}

// checkProvidersFile verifies the optional provider table parses
func (c *Checker) checkProvidersFile() CheckResult {
	if c.providersPath == "" {
		return CheckResult{Name: "Provider Table", Status: "pass", Message: "Using built-in model defaults"}
	}

	if _, err := os.Stat(c.providersPath); errors.Is(err, fs.ErrNotExist) {
		return CheckResult{
			Name:    "Provider Table",
			Status:  "pass",
			Message: fmt.Sprintf("%s not found, using built-in model defaults", c.providersPath),
		}
	}

	if _, err := config.LoadProviders(c.providersPath); err != nil {
		return CheckResult{
			Name:    "Provider Table",
			Status:  "fail",
			Message: fmt.Sprintf("Invalid provider table %s", c.providersPath),
			Error:   err,
		}
	}

	return CheckResult{
		Name:    "Provider Table",
		Status:  "pass",
		Message: fmt.Sprintf("Loaded model overrides from %s", c.providersPath),
	}
}

// checkProviderIdentity reports which provider the environment selects
func (c *Checker) checkProviderIdentity(cfg models.ModelConfig) CheckResult {
	msg := fmt.Sprintf("Selected %s (%s): text=%s vision=%s", cfg.Provider, cfg.Description, cfg.TextModel, cfg.VisionModel)
	if c.resolver.IsHosted() {
		msg += fmt.Sprintf(", hosted deployment, policy=%s", c.resolver.Policy())
	}
	return CheckResult{Name: "Provider Selection", Status: "pass", Message: msg}
}

// checkProviderConfiguration verifies the provider has every setting it needs
func (c *Checker) checkProviderConfiguration(cfg models.ModelConfig) CheckResult {
	if !config.IsProviderConfigured(cfg) {
		return CheckResult{
			Name:    "Provider Configuration",
			Status:  "fail",
			Message: fmt.Sprintf("%s requires %s to be set", cfg.Provider, config.EnvRemoteURL),
			Error:   providers.ErrNotConfigured,
		}
	}

	msg := "No connection settings required"
	if cfg.APIURL != "" {
		msg = "Endpoint " + cfg.APIURL
	}
	return CheckResult{Name: "Provider Configuration", Status: "pass", Message: msg}
}

// checkModelAvailability asks the provider which models are installed; one warning per diagnostic
func (c *Checker) checkModelAvailability(ctx context.Context, cfg models.ModelConfig) []CheckResult {
	provider, err := c.builder.CreateProvider(cfg)
	if err != nil {
		return []CheckResult{{
			Name:    "Model Availability",
			Status:  "fail",
			Message: "Cannot build provider",
			Error:   err,
		}}
	}

	availability := provider.CheckAvailability(ctx)
	if availability.OK() {
		return []CheckResult{{
			Name:    "Model Availability",
			Status:  "pass",
			Message: fmt.Sprintf("%s and %s are available", cfg.TextModel, cfg.VisionModel),
		}}
	}

	results := make([]CheckResult, 0, len(availability.Errors))
	for _, diagnostic := range availability.Errors {
		results = append(results, CheckResult{
			Name:    "Model Availability",
			Status:  "warning",
			Message: diagnostic,
		})
	}
	return results
}

// PullCommands extracts the suggested install commands from availability warnings
func PullCommands(results []CheckResult) []string {
	var commands []string
	for _, r := range results {
		if r.Status != "warning" {
			continue
		}
		if i := strings.Index(r.Message, "Run: "); i >= 0 {
			commands = append(commands, r.Message[i+len("Run: "):])
		}
	}
	return commands
}
