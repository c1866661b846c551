package ollama

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

// Provider implements models.Summarizer using Ollama's generate API.
type Provider struct {
	cfg    config.OllamaConfig
	client *http.Client
}

func NewProvider(cfg config.OllamaConfig) *Provider {
	return &Provider{cfg: cfg, client: &http.Client{}}
}

func (p *Provider) Name() string { return "ollama" }

func (p *Provider) Summarize(ctx context.Context, report *models.Report) (string, error) {
	reqBody, err := json.Marshal(map[string]any{
		"model":  p.cfg.Model,
		"prompt": ai.BuildPrompt(report),
		"stream": false,
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	u := fmt.Sprintf("%s/api/generate", p.cfg.BaseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

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

	var generated struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&generated); err != nil {
		return "", fmt.Errorf("%w: %v", ai.ErrInvalidResponse, err)
	}

	summary := strings.TrimSpace(generated.Response)
	if summary == "" {
		return "", fmt.Errorf("%w: empty response", ai.ErrInvalidResponse)
	}
	return summary, nil
}

var _ models.Summarizer = (*Provider)(nil)
