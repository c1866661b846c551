package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusSucceeded = "succeeded"
	JobStatusFailed    = "failed"
)

// Subtask section names, used as keys in Job.Sections.
const (
	SectionWalkability = "walkability"
	SectionVegetation  = "vegetation"
	SectionInvestment  = "investment"
	SectionSimilar     = "similar_properties"
	SectionSummary     = "summary"
)

// Job tracks one asynchronous property analysis. The API returns a job id on
// POST /api/v1/analyses; the client polls GET /api/v1/analyses/{jobID} until
// status is succeeded or failed. Succeeded and failed are terminal: once a job
// reaches either, no further writes are accepted for it.
type Job struct {
	ID           uuid.UUID                 `db:"id"            json:"id"`
	Status       string                    `db:"status"        json:"status"`
	Input        AnalysisInput             `db:"input"         json:"input"`
	Sections     map[string]SectionOutcome `db:"sections"      json:"sections,omitempty"`
	Result       *Report                   `db:"result"        json:"result,omitempty"`
	ErrorMessage *string                   `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time                 `db:"created_at"    json:"created_at"`
	CompletedAt  *time.Time                `db:"completed_at"  json:"completed_at,omitempty"`
}

// Terminal reports whether the job has reached a final status.
func (j *Job) Terminal() bool {
	return j.Status == JobStatusSucceeded || j.Status == JobStatusFailed
}

// AnalysisInput is the request payload for an analysis job. Immutable once
// the job is accepted.
type AnalysisInput struct {
	Address    string                `json:"address"`
	RadiusM    int                   `json:"radius_m"`
	Investment *InvestmentParameters `json:"investment,omitempty"`
}

// SectionOutcome records how one subtask of a job ended: either OK with its
// payload, or an error marker. One subtask's failure never erases a sibling's
// outcome.
type SectionOutcome struct {
	OK    bool            `json:"ok"`
	Error string          `json:"error,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}
