package jobs

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// ProviderRefresher re-checks cached provider selections
type ProviderRefresher interface {
	Refresh(ctx context.Context) (checked, dropped int)
}

// ProviderHealthChecker re-runs availability checks on cached providers at a fixed cadence
type ProviderHealthChecker struct {
	refresher ProviderRefresher
	interval  time.Duration

	mu      sync.Mutex
	lastRun time.Time
}

// NewProviderHealthChecker creates a new provider health checker job
func NewProviderHealthChecker(refresher ProviderRefresher, interval time.Duration) *ProviderHealthChecker {
	return &ProviderHealthChecker{
		refresher: refresher,
		interval:  interval,
	}
}

// Run checks every cached provider once
func (p *ProviderHealthChecker) Run(ctx context.Context) error {
	p.mu.Lock()
	p.lastRun = time.Now()
	p.mu.Unlock()

	checked, dropped := p.refresher.Refresh(ctx)
	log.WithFields(log.Fields{
		"event":   "availability_check",
		"checked": checked,
		"dropped": dropped,
	}).Debug("Provider availability checks complete")

	return ctx.Err()
}

// Interval returns how often the job runs
func (p *ProviderHealthChecker) Interval() time.Duration {
	return p.interval
}

// LastRun returns when the job last started
func (p *ProviderHealthChecker) LastRun() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastRun
}
