package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/geoinsight/geoinsight/internal/ai/ollama"
	"github.com/geoinsight/geoinsight/internal/ai/openai"
	"github.com/geoinsight/geoinsight/internal/config"
	"github.com/geoinsight/geoinsight/pkg/models"
)

// NewSummarizer constructs the appropriate summarizer based on config.
// Called once at server startup. Provider "none" selects a deterministic
// template summarizer that needs no external service.
func NewSummarizer(cfg config.AIConfig) (models.Summarizer, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.NewProvider(cfg.Ollama), nil
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	case "none":
		return &staticSummarizer{}, nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q: must be one of ollama, openai, none", cfg.Provider)
	}
}

// staticSummarizer composes a summary from the report fields directly.
type staticSummarizer struct{}

var _ models.Summarizer = (*staticSummarizer)(nil)

func (s *staticSummarizer) Name() string { return "static" }

func (s *staticSummarizer) Summarize(_ context.Context, report *models.Report) (string, error) {
	var parts []string

	if report.Walkability != nil {
		parts = append(parts, fmt.Sprintf("Walkability scores %.0f/100 with %d amenities within reach",
			report.Walkability.Score, report.Walkability.TotalAmenities))
	}
	if report.Vegetation != nil {
		parts = append(parts, fmt.Sprintf("green space covers %.0f%% of the surrounding area",
			report.Vegetation.Coverage*100))
	}
	if report.Investment != nil {
		parts = append(parts, fmt.Sprintf("the investment yields a %.1f%% cap rate and %.1f%% cash-on-cash return",
			report.Investment.CapRate*100, report.Investment.CashOnCash*100))
	}
	if len(report.Similar) > 0 {
		parts = append(parts, fmt.Sprintf("%d comparable properties were found", len(report.Similar)))
	}

	if len(parts) == 0 {
		return fmt.Sprintf("Analysis of %s completed with no sections available.", report.Address), nil
	}
	return fmt.Sprintf("Analysis of %s: %s.", report.Address, strings.Join(parts, "; ")), nil
}
