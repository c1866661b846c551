package ai

import "github.com/geoinsight/geoinsight/internal/ai/core"

// Sentinel errors shared by the summarizer providers. The orchestrator
// treats all of them as a degraded summary section, never a failed job.
// The values are declared in internal/ai/core so the provider
// subpackages can wrap them without importing this package back;
// errors.Is matches either spelling.
var (
	ErrProviderUnavailable = core.ErrProviderUnavailable
	ErrInferenceTimeout    = core.ErrInferenceTimeout
	ErrInvalidResponse     = core.ErrInvalidResponse
)
