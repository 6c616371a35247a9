// Package health keeps selected providers for reuse across requests and re-checks their
// availability on a cadence so a backend that goes down stops being served.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"

	"lexassist/internal/models"
	"lexassist/internal/providers"
)

// Selector builds providers and applies the fallback policy
type Selector interface {
	CreateProvider(cfg models.ModelConfig) (providers.Provider, error)
	CreateFallbackProvider(ctx context.Context, cfg models.ModelConfig) (*providers.Selection, error)
}

// entry is one cached selection together with its last availability result
type entry struct {
	mu           sync.Mutex
	selection    *providers.Selection
	availability models.ModelAvailability
	health       ProviderHealth
}

// Service caches provider selections keyed by the resolved config fingerprint. A zero TTL
// disables reuse: every Select builds and checks a fresh provider.
type Service struct {
	selector Selector
	ttl      time.Duration
	cache    *cache.Cache
}

// NewService creates a provider cache over selector
func NewService(selector Selector, ttl time.Duration) *Service {
	s := &Service{selector: selector, ttl: ttl}
	if ttl > 0 {
		s.cache = cache.New(ttl, ttl)
		s.cache.OnEvicted(func(key string, value interface{}) {
			if e, ok := value.(*entry); ok {
				log.WithFields(log.Fields{
					"event":    "provider_evicted",
					"provider": e.health.Provider,
				}).Debug("Cached provider expired")
			}
		})
	}
	return s
}

// Enabled reports whether selections are reused between requests
func (s *Service) Enabled() bool {
	return s.cache != nil
}

// Select returns a provider for cfg and its availability. Cached selections are returned
// without contacting the backend; fresh ones are checked once and cached only when the check
// reported no diagnostics.
func (s *Service) Select(ctx context.Context, cfg models.ModelConfig) (*providers.Selection, models.ModelAvailability, error) {
	if s.cache != nil {
		if value, found := s.cache.Get(cfg.Key()); found {
			e := value.(*entry)
			e.mu.Lock()
			defer e.mu.Unlock()
			return e.selection, e.availability, nil
		}
	}

	selection, err := s.selector.CreateFallbackProvider(ctx, cfg)
	if err != nil {
		return nil, models.ModelAvailability{}, err
	}

	var availability models.ModelAvailability
	if selection.Availability != nil {
		availability = *selection.Availability
	} else {
		availability = selection.Provider.CheckAvailability(ctx)
	}

	if s.cache != nil && availability.OK() {
		now := time.Now()
		e := &entry{
			selection:    selection,
			availability: availability,
			health: ProviderHealth{
				Provider:      selection.Config.Provider,
				Primary:       selection.Primary.Provider,
				FellBack:      selection.FellBack,
				TextModel:     selection.Config.TextModel,
				VisionModel:   selection.Config.VisionModel,
				Status:        StatusHealthy,
				Capabilities:  capabilitiesOf(availability),
				LastChecked:   now,
				LastSuccessAt: now,
				ExpiresAt:     now.Add(s.ttl),
			},
		}
		s.cache.Set(cfg.Key(), e, cache.DefaultExpiration)

		log.WithFields(log.Fields{
			"event":     "provider_cached",
			"provider":  selection.Config.Provider,
			"fell_back": selection.FellBack,
		}).Debug("Cached provider selection")
	}

	return selection, availability, nil
}

// Refresh re-runs the availability check of every cached selection. An entry is dropped
// when its check reports diagnostics, or when it is a fallback and the primary recovered.
func (s *Service) Refresh(ctx context.Context) (checked, dropped int) {
	if s.cache == nil {
		return 0, 0
	}

	for key, item := range s.cache.Items() {
		select {
		case <-ctx.Done():
			return checked, dropped
		default:
		}

		e, ok := item.Object.(*entry)
		if !ok {
			continue
		}
		checked++

		if !s.refreshEntry(ctx, e) {
			s.cache.Delete(key)
			dropped++
		}
	}

	if dropped > 0 {
		log.WithFields(log.Fields{
			"event":   "provider_refresh",
			"checked": checked,
			"dropped": dropped,
		}).Info("Dropped stale provider selections")
	}
	return checked, dropped
}

// refreshEntry re-checks one entry and reports whether it should stay cached
func (s *Service) refreshEntry(ctx context.Context, e *entry) bool {
	e.mu.Lock()
	selection := e.selection
	e.mu.Unlock()

	availability := selection.Provider.CheckAvailability(ctx)
	now := time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.health.LastChecked = now
	e.health.Capabilities = capabilitiesOf(availability)
	if !availability.OK() {
		e.health.Status = StatusUnhealthy
		e.health.FailureCount++
		e.health.LastError = truncateStr(availability.Errors[0], 200)

		log.WithFields(log.Fields{
			"event":       "provider_unavailable",
			"provider":    selection.Config.Provider,
			"diagnostics": availability.Errors,
		}).Warn("Cached provider failed availability check")
		return false
	}

	e.availability = availability
	e.health.Status = StatusHealthy
	e.health.LastSuccessAt = now
	e.health.LastError = ""

	if selection.FellBack && s.primaryRecovered(ctx, selection.Primary) {
		log.WithFields(log.Fields{
			"event":    "provider_recovered",
			"provider": selection.Primary.Provider,
		}).Info("Primary provider available again")
		return false
	}
	return true
}

func (s *Service) primaryRecovered(ctx context.Context, cfg models.ModelConfig) bool {
	primary, err := s.selector.CreateProvider(cfg)
	if err != nil {
		return false
	}
	return primary.CheckAvailability(ctx).OK()
}

// Invalidate drops every cached selection
func (s *Service) Invalidate() {
	if s.cache == nil {
		return
	}
	n := s.cache.ItemCount()
	s.cache.Flush()
	log.WithFields(log.Fields{
		"event":   "provider_cache_flushed",
		"entries": n,
	}).Info("Provider cache invalidated")
}

// Snapshot returns the health of every cached selection
func (s *Service) Snapshot() []ProviderHealth {
	if s.cache == nil {
		return []ProviderHealth{}
	}

	items := s.cache.Items()
	result := make([]ProviderHealth, 0, len(items))
	for _, item := range items {
		if e, ok := item.Object.(*entry); ok {
			e.mu.Lock()
			result = append(result, e.health)
			e.mu.Unlock()
		}
	}
	return result
}

// GetStatus returns a health summary of the provider cache
func (s *Service) GetStatus() map[string]interface{} {
	snapshot := s.Snapshot()

	counts := map[HealthStatus]int{StatusHealthy: 0, StatusUnhealthy: 0, StatusUnknown: 0}
	for _, h := range snapshot {
		counts[h.Status]++
	}

	return map[string]interface{}{
		"reuse_enabled": s.Enabled(),
		"ttl_seconds":   int(s.ttl.Seconds()),
		"total":         len(snapshot),
		"healthy":       counts[StatusHealthy],
		"unhealthy":     counts[StatusUnhealthy],
		"providers":     snapshot,
	}
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
