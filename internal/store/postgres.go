package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geoinsight/geoinsight/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) CreateJob(ctx context.Context, job *models.Job) error {
	input, err := json.Marshal(job.Input)
	if err != nil {
		return fmt.Errorf("marshal job input: %w", err)
	}
	sections, err := json.Marshal(job.Sections)
	if err != nil {
		return fmt.Errorf("marshal job sections: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO jobs (id, status, input, sections, created_at)
		 VALUES ($1, $2, $3, COALESCE($4, '{}'::jsonb), $5)`,
		job.ID, job.Status, input, sections, job.CreatedAt)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var (
		j        models.Job
		input    []byte
		sections []byte
		result   []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, status, input, sections, result, error_message, created_at, completed_at
		 FROM jobs WHERE id = $1`, id,
	).Scan(&j.ID, &j.Status, &input, &sections, &result, &j.ErrorMessage, &j.CreatedAt, &j.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}

	if err := json.Unmarshal(input, &j.Input); err != nil {
		return nil, fmt.Errorf("unmarshal job input: %w", err)
	}
	if len(sections) > 0 {
		if err := json.Unmarshal(sections, &j.Sections); err != nil {
			return nil, fmt.Errorf("unmarshal job sections: %w", err)
		}
	}
	if len(result) > 0 {
		if err := json.Unmarshal(result, &j.Result); err != nil {
			return nil, fmt.Errorf("unmarshal job result: %w", err)
		}
	}
	return &j, nil
}

func (s *PostgresStore) UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, opts ...JobUpdateOption) error {
	params := BuildJobUpdate(opts...)

	var result []byte
	if params.Result != nil {
		var err error
		result, err = json.Marshal(params.Result)
		if err != nil {
			return fmt.Errorf("marshal job result: %w", err)
		}
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs
		 SET status = $2,
		     error_message = COALESCE($3, error_message),
		     result = COALESCE($4, result),
		     completed_at = CASE WHEN $2 IN ('succeeded', 'failed') THEN NOW() ELSE completed_at END
		 WHERE id = $1 AND status IN ('pending', 'running')`,
		id, status, params.ErrorMessage, result)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.missingOrTerminal(ctx, id)
	}
	return nil
}

func (s *PostgresStore) SaveSection(ctx context.Context, id uuid.UUID, name string, outcome models.SectionOutcome) error {
	data, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("marshal section outcome: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs
		 SET sections = COALESCE(sections, '{}'::jsonb) || jsonb_build_object($2::text, $3::jsonb)
		 WHERE id = $1 AND status IN ('pending', 'running')`,
		id, name, data)
	if err != nil {
		return fmt.Errorf("save section %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return s.missingOrTerminal(ctx, id)
	}
	return nil
}

// missingOrTerminal distinguishes "no such job" from "job already terminal"
// after a guarded update touched zero rows.
func (s *PostgresStore) missingOrTerminal(ctx context.Context, id uuid.UUID) error {
	var status string
	err := s.pool.QueryRow(ctx, `SELECT status FROM jobs WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check job status: %w", err)
	}
	return ErrJobTerminal
}

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
