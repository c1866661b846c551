package mock

import (
	"context"

	"github.com/geoinsight/geoinsight/internal/ai"
	"github.com/geoinsight/geoinsight/pkg/models"
)

// MockProvider satisfies models.Summarizer for testing.
type MockProvider struct {
	Name_         string
	SummarizeFunc func(ctx context.Context, report *models.Report) (string, error)
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Summarize(ctx context.Context, report *models.Report) (string, error) {
	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, report)
	}
	return "", nil
}

// NewMockProvider returns a MockProvider with a sensible default response.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock",
		SummarizeFunc: func(_ context.Context, _ *models.Report) (string, error) {
			return "Mock summary of the property analysis", nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		SummarizeFunc: func(_ context.Context, _ *models.Report) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		SummarizeFunc: func(ctx context.Context, _ *models.Report) (string, error) {
			<-ctx.Done()
			return "", ai.ErrInferenceTimeout
		},
	}
}

// Compile-time check that MockProvider implements Summarizer.
var _ models.Summarizer = (*MockProvider)(nil)
