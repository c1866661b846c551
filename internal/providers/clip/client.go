package clip

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/geoinsight/geoinsight/internal/scoring"
	"github.com/geoinsight/geoinsight/pkg/models"
)

// Sentinel errors for embedding service failures.
var (
	ErrUnreachable = errors.New("embedding service unreachable")
	ErrBadResponse = errors.New("embedding service bad response")
	ErrTimeout     = errors.New("embedding service timeout")
)

// Client calls a CLIP-style embedding service over HTTP. It implements
// models.Embedder.
type Client struct {
	baseURL string
	dim     int
	client  *http.Client
}

var _ models.Embedder = (*Client)(nil)

// NewClient creates a new embedding client. dim is the expected vector
// dimension; responses with any other length are rejected.
func NewClient(baseURL string, dim int, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		dim:     dim,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) Embed(ctx context.Context, image []byte) ([]float32, error) {
	u := fmt.Sprintf("%s/embed", c.baseURL)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}

	var embedResp struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("decoding embedding response: %w", err)
	}

	if len(embedResp.Embedding) != c.dim {
		return nil, &scoring.DimensionMismatchError{Got: len(embedResp.Embedding), Want: c.dim}
	}
	return embedResp.Embedding, nil
}

func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}
