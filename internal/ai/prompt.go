package ai

import (
	"github.com/geoinsight/geoinsight/internal/ai/core"
	"github.com/geoinsight/geoinsight/pkg/models"
)

// BuildPrompt renders a report into a summarization prompt. Sections
// that failed during analysis are simply absent from the prompt.
// The implementation lives in internal/ai/core so the provider
// subpackages can share it without importing this package back.
func BuildPrompt(report *models.Report) string {
	return core.BuildPrompt(report)
}
