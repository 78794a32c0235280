// Package oracle is the analysis gateway: it turns an image and a reading
// type into one validated reading from an external vision model.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lehigh-university-libraries/oracle/internal/capture"
	"github.com/lehigh-university-libraries/oracle/internal/models"
	"github.com/lehigh-university-libraries/oracle/internal/providers"
)

// DefaultTimeout bounds a single analysis call
const DefaultTimeout = 60 * time.Second

// Config tunes the request sent to the provider
type Config struct {
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// Gateway calls a provider exactly once per Analyze
type Gateway struct {
	provider providers.Provider
	config   Config
}

func New(provider providers.Provider, config Config) *Gateway {
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	return &Gateway{provider: provider, config: config}
}

// Analyze sends img for a reading of type t. Every failure is returned as an
// *AnalysisFailure; no partial result is ever returned.
func (g *Gateway) Analyze(ctx context.Context, img *capture.Image, t models.ReadingType) (*models.AnalysisResult, error) {
	if !t.Valid() {
		return nil, fail(fmt.Errorf("invalid reading type %q", t))
	}
	if img == nil || len(img.Data) == 0 {
		return nil, fail(capture.ErrEmpty)
	}

	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	start := time.Now()
	req := providers.Request{
		Model:        g.config.Model,
		Temperature:  g.config.Temperature,
		SystemPrompt: buildSystemPrompt(t),
		Prompt:       buildUserPrompt(t),
		MIMEType:     img.MIMEType,
		Image:        img.Data,
		Schema:       buildSchema(t),
	}

	slog.Debug("Requesting reading", "provider", g.provider.Name(), "model", g.config.Model, "type", t, "bytes", len(img.Data))

	response, err := g.provider.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("analysis timed out after %s: %w", g.config.Timeout, err)
		}
		slog.Error("Reading request failed", "provider", g.provider.Name(), "type", t, "err", err)
		return nil, fail(err)
	}

	result, err := parseResult(response, t)
	if err != nil {
		slog.Error("Failed to parse reading response", "provider", g.provider.Name(), "type", t, "err", err, "length", len(response))
		return nil, fail(err)
	}

	slog.Info("Reading generated", "provider", g.provider.Name(), "model", g.config.Model, "type", t, "duration", time.Since(start))
	return result, nil
}
