package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	ai "github.com/geoinsight/geoinsight/internal/ai/core"
	"github.com/geoinsight/geoinsight/internal/config"
	"github.com/geoinsight/geoinsight/pkg/models"
)

const apiURL = "https://api.openai.com/v1/chat/completions"

// Provider implements models.Summarizer using the OpenAI chat API.
type Provider struct {
	cfg    config.OpenAIConfig
	url    string
	client *http.Client
}

func NewProvider(cfg config.OpenAIConfig) *Provider {
	return &Provider{cfg: cfg, url: apiURL, client: &http.Client{}}
}

func (p *Provider) Name() string { return "openai" }

func (p *Provider) Summarize(ctx context.Context, report *models.Report) (string, error) {
	reqBody, err := json.Marshal(map[string]any{
		"model": p.cfg.Model,
		"messages": []map[string]string{
			{"role": "user", "content": ai.BuildPrompt(report)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %v", ai.ErrInferenceTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ai.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ai.ErrProviderUnavailable, resp.StatusCode)
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("%w: %v", ai.ErrInvalidResponse, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ai.ErrInvalidResponse)
	}

	summary := strings.TrimSpace(completion.Choices[0].Message.Content)
	if summary == "" {
		return "", fmt.Errorf("%w: empty content", ai.ErrInvalidResponse)
	}
	return summary, nil
}

var _ models.Summarizer = (*Provider)(nil)
