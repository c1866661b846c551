package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/geoinsight/geoinsight/pkg/models"
)

var ErrNotFound = errors.New("resource not found")

// ErrJobTerminal is returned for writes against a job that already reached
// succeeded or failed. Terminal jobs are immutable.
var ErrJobTerminal = errors.New("job already terminal")

// Store is the data access interface for job records. All database
// operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error)
	// UpdateJobStatus advances a non-terminal job. Moving to a terminal
	// status also stamps completed_at; attempts against terminal jobs fail
	// with ErrJobTerminal.
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, opts ...JobUpdateOption) error
	// SaveSection merges one subtask outcome into the job's sections map
	// in a single atomic statement. Rejected once the job is terminal.
	SaveSection(ctx context.Context, id uuid.UUID, name string, outcome models.SectionOutcome) error
}

// JobUpdate collects the optional fields of an UpdateJobStatus call.
type JobUpdate struct {
	ErrorMessage *string
	Result       *models.Report
}

type JobUpdateOption func(*JobUpdate)

// BuildJobUpdate applies the options. Exposed so alternative Store
// implementations can interpret them.
func BuildJobUpdate(opts ...JobUpdateOption) JobUpdate {
	var u JobUpdate
	for _, opt := range opts {
		opt(&u)
	}
	return u
}

func WithErrorMessage(msg string) JobUpdateOption {
	return func(u *JobUpdate) {
		u.ErrorMessage = &msg
	}
}

func WithResult(report *models.Report) JobUpdateOption {
	return func(u *JobUpdate) {
		u.Result = report
	}
}
