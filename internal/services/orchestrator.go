package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"lexassist/internal/models"
	"lexassist/internal/providers"
)

// Stage names a step of the orchestration pipeline
type Stage string

const (
	StageVision Stage = "vision"
	StageText   Stage = "text"
)

// StageError is a backend failure tagged with the stage it happened in
type StageError struct {
	Stage    Stage
	Index    int // 1-based image position, vision stage only
	FileName string
	Cause    error
}

func (e *StageError) Error() string {
	if e.Stage == StageVision {
		return fmt.Sprintf("Image analysis failed for image %d (%s): %v", e.Index, e.FileName, e.Cause)
	}
	return fmt.Sprintf("Text generation failed: %v", e.Cause)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}

const (
	systemPrompt = "You are a helpful legal assistant AI. Provide general legal information and guidance, " +
		"but always remind users to consult with a qualified attorney for specific legal advice. " +
		"Be helpful, accurate, and professional. Please limit your responses to 2 or 3 paragraphs."
	visionSystemSuffix = " You will receive image analysis from a vision model to help you provide more comprehensive responses."
	synthesisPrompt    = "Please provide a comprehensive response considering both the user's text query and the image analysis."
)

// Orchestrator runs the two-stage pipeline against one provider: concurrent image analysis,
// then exactly one text generation call
type Orchestrator struct {
	provider providers.Provider
	config   models.ModelConfig
	metrics  *Metrics
}

// NewOrchestrator creates an orchestrator for provider, labelled by cfg
func NewOrchestrator(provider providers.Provider, cfg models.ModelConfig) *Orchestrator {
	return &Orchestrator{
		provider: provider,
		config:   cfg,
		metrics:  GetMetrics(),
	}
}

// Orchestrate answers userInput, analyzing images first when there are any. Failures of either
// stage are reported in the returned ModelResponse; no text is generated after a vision failure.
func (o *Orchestrator) Orchestrate(ctx context.Context, userInput string, images []models.ImageData, attachments []models.Attachment) models.ModelResponse {
	logger := log.WithFields(log.Fields{
		"provider":    o.config.Provider,
		"images":      len(images),
		"attachments": len(attachments),
	})

	analysis := ""
	if len(images) > 0 {
		result, err := o.analyzeImages(ctx, userInput, images)
		if err != nil {
			logger.WithFields(log.Fields{"event": "vision_stage", "error": err.Error()}).Error("Image analysis failed")
			return models.Failed(err.Error(), o.modelUsed(true))
		}
		analysis = result
		logger.WithField("event", "vision_stage").Info("Image analysis complete")
	}

	messages := BuildMessages(userInput, analysis, attachments)

	start := time.Now()
	resp := o.provider.GenerateText(ctx, messages)
	o.metrics.RecordProviderCall(string(o.config.Provider), "generate_text", resp.Success, time.Since(start).Seconds())

	if !resp.Success {
		err := &StageError{Stage: StageText, Cause: errors.New(resp.Error)}
		logger.WithFields(log.Fields{"event": "text_stage", "error": err.Error()}).Error("Text generation failed")
		return models.Failed(err.Error(), o.modelUsed(len(images) > 0))
	}

	logger.WithField("event", "text_stage").Info("Text generation complete")
	return models.Succeeded(resp.Content, o.modelUsed(len(images) > 0))
}

// analyzeImages analyzes every image concurrently and joins the results in input order.
// The first failure cancels the others and is returned.
func (o *Orchestrator) analyzeImages(ctx context.Context, userInput string, images []models.ImageData) (string, error) {
	results := make([]string, len(images))
	g, gctx := errgroup.WithContext(ctx)

	for i, image := range images {
		g.Go(func() error {
			start := time.Now()
			resp := o.provider.AnalyzeImage(gctx, image, userInput)
			o.metrics.RecordProviderCall(string(o.config.Provider), "analyze_image", resp.Success, time.Since(start).Seconds())

			if !resp.Success {
				return &StageError{Stage: StageVision, Index: i + 1, FileName: image.FileName, Cause: errors.New(resp.Error)}
			}
			results[i] = resp.Content
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", err
	}
	o.metrics.RecordImages(len(images), 0)

	return AggregateAnalyses(images, results), nil
}

func (o *Orchestrator) modelUsed(withVision bool) string {
	if withVision {
		return o.config.VisionModel + " + " + o.config.TextModel
	}
	return o.config.TextModel
}

// AggregateAnalyses labels each analysis with its 1-based position and file name
func AggregateAnalyses(images []models.ImageData, analyses []string) string {
	entries := make([]string, len(analyses))
	for i, analysis := range analyses {
		entries[i] = fmt.Sprintf("Image %d (%s): %s", i+1, images[i].FileName, analysis)
	}
	return strings.Join(entries, "\n\n")
}

// SystemPrompt returns the persona instruction, mentioning image analysis when present
func SystemPrompt(withAnalysis bool) string {
	if withAnalysis {
		return systemPrompt + visionSystemSuffix
	}
	return systemPrompt
}

// BuildMessages assembles the system and user messages for the text stage
func BuildMessages(userInput, analysis string, attachments []models.Attachment) []models.ModelMessage {
	content := userInput
	if analysis != "" {
		content = fmt.Sprintf("User query: %s\n\nImage Analysis: %s\n\n%s", userInput, analysis, synthesisPrompt)
	}

	if len(attachments) > 0 {
		names := make([]string, len(attachments))
		for i, a := range attachments {
			names[i] = a.Name
		}
		content += fmt.Sprintf("\n\nNote: The user has also uploaded %d file(s): %s", len(attachments), strings.Join(names, ", "))
	}

	return []models.ModelMessage{
		{Role: models.RoleSystem, Content: SystemPrompt(analysis != "")},
		{Role: models.RoleUser, Content: content},
	}
}
