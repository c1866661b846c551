package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoinsight/geoinsight/internal/config"
	"github.com/geoinsight/geoinsight/pkg/models"
)

func TestNewSummarizer_KnownProviders(t *testing.T) {
	tests := []struct {
		provider string
		wantName string
	}{
		{"ollama", "ollama"},
		{"openai", "openai"},
		{"none", "static"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			s, err := NewSummarizer(config.AIConfig{
				Provider: tt.provider,
				OpenAI:   config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4"},
				Ollama:   config.OllamaConfig{BaseURL: "http://localhost:11434", Model: "llama3"},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, s.Name())
		})
	}
}

func TestNewSummarizer_UnknownProvider(t *testing.T) {
	_, err := NewSummarizer(config.AIConfig{Provider: "bard"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bard")
}

func TestStaticSummarizer_MentionsAvailableSections(t *testing.T) {
	s := &staticSummarizer{}
	summary, err := s.Summarize(context.Background(), &models.Report{
		Address:     "221B Baker Street",
		Walkability: &models.WalkabilityReport{Score: 82, TotalAmenities: 14},
		Vegetation:  &models.VegetationReport{Coverage: 0.31},
	})
	require.NoError(t, err)
	assert.Contains(t, summary, "221B Baker Street")
	assert.Contains(t, summary, "82/100")
	assert.Contains(t, summary, "31%")
	assert.NotContains(t, summary, "cap rate")
}

func TestStaticSummarizer_EmptyReport(t *testing.T) {
	s := &staticSummarizer{}
	summary, err := s.Summarize(context.Background(), &models.Report{Address: "Nowhere"})
	require.NoError(t, err)
	assert.Contains(t, summary, "no sections available")
}

func TestBuildPrompt_OmitsMissingSections(t *testing.T) {
	prompt := BuildPrompt(&models.Report{
		Address:     "221B Baker Street",
		RadiusM:     1000,
		Walkability: &models.WalkabilityReport{Score: 75.5, TotalAmenities: 9},
		Degraded: []models.DegradedSection{
			{Section: models.SectionVegetation, Reason: "tile fetch failed"},
		},
	})

	assert.True(t, strings.Contains(prompt, "Walkability score: 75.5"))
	assert.False(t, strings.Contains(prompt, "Green coverage"))
	assert.True(t, strings.Contains(prompt, models.SectionVegetation))
}
