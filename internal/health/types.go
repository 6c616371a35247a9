package health

import (
	"time"

	"lexassist/internal/models"
)

// CapabilityType identifies which model a provider must serve
type CapabilityType string

const (
	CapabilityText   CapabilityType = "text"
	CapabilityVision CapabilityType = "vision"
)

// HealthStatus represents the health state of a cached provider
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusUnknown   HealthStatus = "unknown"
)

// ProviderHealth tracks the last availability result of one cached selection
type ProviderHealth struct {
	Provider      models.ProviderID `json:"provider"`
	Primary       models.ProviderID `json:"primary"`
	FellBack      bool              `json:"fell_back"`
	TextModel     string            `json:"text_model"`
	VisionModel   string            `json:"vision_model"`
	Status        HealthStatus      `json:"status"`
	Capabilities  []CapabilityType  `json:"capabilities"`
	LastChecked   time.Time         `json:"last_checked"`
	LastSuccessAt time.Time         `json:"last_success_at"`
	FailureCount  int               `json:"failure_count"`
	LastError     string            `json:"last_error,omitempty"`
	ExpiresAt     time.Time         `json:"expires_at"`
}

// capabilitiesOf lists the capabilities an availability result reports as served
func capabilitiesOf(a models.ModelAvailability) []CapabilityType {
	caps := []CapabilityType{}
	if a.TextModel {
		caps = append(caps, CapabilityText)
	}
	if a.VisionModel {
		caps = append(caps, CapabilityVision)
	}
	return caps
}
