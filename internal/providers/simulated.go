package providers

import (
	"context"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"lexassist/internal/models"
)

// Latency ranges of the simulator, matching typical local-model response times
var (
	TextDelayMin   = 1 * time.Second
	TextDelayMax   = 3 * time.Second
	VisionDelayMin = 2 * time.Second
	VisionDelayMax = 5 * time.Second
)

// SimulatedProvider answers from templates without any network I/O. It backs demo
// deployments and is the last-resort fallback.
type SimulatedProvider struct {
	config models.ModelConfig
	delay  bool
}

// NewSimulatedProvider creates a simulator. With delay set, responses are held back
// for a random interval to mimic a real model.
func NewSimulatedProvider(cfg models.ModelConfig, delay bool) *SimulatedProvider {
	return &SimulatedProvider{config: cfg, delay: delay}
}

// CheckAvailability always reports both models present
func (p *SimulatedProvider) CheckAvailability(ctx context.Context) models.ModelAvailability {
	return models.ModelAvailability{TextModel: true, VisionModel: true, Errors: []string{}}
}

// GenerateText classifies the first user message and returns the matching template
func (p *SimulatedProvider) GenerateText(ctx context.Context, messages []models.ModelMessage) models.ModelResponse {
	if err := p.wait(ctx, TextDelayMin, TextDelayMax); err != nil {
		return models.Failed(fmt.Sprintf("Mock text generation failed: %v", err), p.config.TextModel)
	}

	input := firstUserMessage(messages)
	log.WithFields(log.Fields{
		"provider": p.config.Provider,
		"topic":    ClassifyTopic(input),
		"messages": len(messages),
	}).Debug("Simulated text generation")

	return models.Succeeded(LegalAnswer(input), p.config.TextModel+" (Mock Demo)")
}

// AnalyzeImage returns a description keyed off the file extension
func (p *SimulatedProvider) AnalyzeImage(ctx context.Context, image models.ImageData, prompt string) models.ModelResponse {
	if err := p.wait(ctx, VisionDelayMin, VisionDelayMax); err != nil {
		return models.Failed(fmt.Sprintf("Mock image analysis failed: %v", err), p.config.VisionModel)
	}
	return models.Succeeded(ImageAnalysis(image.FileName), p.config.VisionModel+" (Mock Demo)")
}

func (p *SimulatedProvider) wait(ctx context.Context, lo, hi time.Duration) error {
	if !p.delay {
		return ctx.Err()
	}
	d := lo
	if hi > lo {
		d += rand.N(hi - lo)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func firstUserMessage(messages []models.ModelMessage) string {
	for _, m := range messages {
		if m.Role == models.RoleUser {
			return m.Content
		}
	}
	return ""
}

// documentExtensions are rendered as scanned documents; everything else gets the generic text
var documentExtensions = map[string]bool{"jpg": true, "jpeg": true, "png": true, "gif": true}

// ImageAnalysis renders the simulated vision output for fileName
func ImageAnalysis(fileName string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")

	if documentExtensions[ext] {
		return fmt.Sprintf(`**Document Analysis** (Mock Demo):

You uploaded the image "%s". With the vision model active it would be read to extract text, identify the document type and pick out legally relevant content.

**Possible Document Types**:
- Contract or agreement pages
- Court documents or legal notices
- Insurance forms or claims
- Property documents or leases

**What a Full Analysis Covers**: key terms and clauses, dates, signatures and monetary amounts.

*Note: This is a demonstration response. Real document analysis requires the vision model to be running.*`, fileName)
	}

	return fmt.Sprintf(`**Image Analysis** (Mock Demo):

You uploaded "%s". With the vision model active this image would be examined for legal relevance, such as accident scenes, property damage or incident evidence.

**Legal Context**: Keep the original and a backup copy if this image is evidence in a legal matter.

*Note: This is a demonstration. Full image analysis requires the vision model to be running.*`, fileName)
}
