package providers

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"lexassist/internal/config"
	"lexassist/internal/models"
)

// Factory builds providers from resolved configurations and applies the one-shot
// fallback policy when the primary backend is missing models
type Factory struct {
	resolver       *config.Resolver
	simulatedDelay bool
	timeout        time.Duration

	// OnFallback is called once per fallback; used for metrics
	OnFallback func(from, to models.ProviderID)

	// build constructs a provider for a known config; replaceable in tests
	build func(cfg models.ModelConfig) Provider
}

// NewFactory creates a factory. timeout bounds each runtime request.
func NewFactory(resolver *config.Resolver, simulatedDelay bool, timeout time.Duration) *Factory {
	f := &Factory{
		resolver:       resolver,
		simulatedDelay: simulatedDelay,
		timeout:        timeout,
	}
	f.build = f.construct
	return f
}

// WithBuilder replaces provider construction, keeping the identity checks
func (f *Factory) WithBuilder(build func(cfg models.ModelConfig) Provider) *Factory {
	f.build = build
	return f
}

// Resolver returns the resolver used for alternates
func (f *Factory) Resolver() *config.Resolver {
	return f.resolver
}

func (f *Factory) construct(cfg models.ModelConfig) Provider {
	if cfg.Provider == models.ProviderMock {
		return NewSimulatedProvider(cfg, f.simulatedDelay)
	}
	return NewOllamaProvider(cfg, f.timeout)
}

// CreateProvider builds the provider for cfg
func (f *Factory) CreateProvider(cfg models.ModelConfig) (Provider, error) {
	if !cfg.Provider.IsKnown() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	if !config.IsProviderConfigured(cfg) {
		return nil, fmt.Errorf("%w: %s requires an API URL", ErrNotConfigured, cfg.Provider)
	}
	return f.build(cfg), nil
}

// CreateFallbackProvider builds the provider for cfg and, if its availability check reports
// diagnostics, exactly one alternate: the other runtime when it is configured, otherwise the
// simulator. The alternate is returned without being checked again.
func (f *Factory) CreateFallbackProvider(ctx context.Context, cfg models.ModelConfig) (*Selection, error) {
	primary, err := f.CreateProvider(cfg)
	if err != nil {
		return nil, err
	}

	selection := &Selection{Provider: primary, Config: cfg, Primary: cfg}
	if cfg.Provider == models.ProviderMock {
		return selection, nil
	}

	availability := primary.CheckAvailability(ctx)
	if availability.OK() {
		selection.Availability = &availability
		return selection, nil
	}

	altCfg := f.alternateConfig(cfg)
	alternate, err := f.CreateProvider(altCfg)
	if err != nil {
		// Only reachable for a broken table; keep the primary and its diagnostics
		log.WithFields(log.Fields{
			"event":    "fallback",
			"provider": cfg.Provider,
			"error":    err.Error(),
		}).Error("Failed to build fallback provider")
		selection.Availability = &availability
		return selection, nil
	}

	log.WithFields(log.Fields{
		"event":       "fallback",
		"from":        cfg.Provider,
		"to":          altCfg.Provider,
		"diagnostics": availability.Errors,
	}).Warn("Primary provider unavailable, using fallback")

	if f.OnFallback != nil {
		f.OnFallback(cfg.Provider, altCfg.Provider)
	}

	return &Selection{
		Provider: alternate,
		Config:   altCfg,
		FellBack: true,
		Primary:  cfg,
	}, nil
}

// alternateConfig picks the single substitute for a runtime provider
func (f *Factory) alternateConfig(cfg models.ModelConfig) models.ModelConfig {
	var swap models.ProviderID
	switch cfg.Provider {
	case models.ProviderOllamaLocal:
		swap = models.ProviderOllamaRemote
	case models.ProviderOllamaRemote:
		swap = models.ProviderOllamaLocal
	}

	if swap != "" {
		if alt := f.resolver.ConfigFor(swap); config.IsProviderConfigured(alt) && alt.Key() != cfg.Key() {
			return alt
		}
	}
	return f.resolver.ConfigFor(models.ProviderMock)
}
