package core

import "errors"

// Sentinel errors shared by the summarizer providers. The orchestrator
// treats all of them as a degraded summary section, never a failed job.
var (
	ErrProviderUnavailable = errors.New("summarizer unavailable")
	ErrInferenceTimeout    = errors.New("summary generation timed out")
	ErrInvalidResponse     = errors.New("summarizer returned an invalid response")
)
