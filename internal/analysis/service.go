package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/geoinsight/geoinsight/internal/cache"
	"github.com/geoinsight/geoinsight/internal/scoring"
	"github.com/geoinsight/geoinsight/internal/simindex"
	"github.com/geoinsight/geoinsight/internal/store"
	"github.com/geoinsight/geoinsight/pkg/models"
)

// ErrInvalidInput marks a rejected analysis request.
var ErrInvalidInput = errors.New("invalid analysis input")

const (
	defaultRadiusM = 1000
	minRadiusM     = 100
	maxRadiusM     = 5000
)

// Config tunes the orchestration and the scoring subtasks.
type Config struct {
	SubtaskTimeout   time.Duration
	SummaryTimeout   time.Duration
	StatusTTL        time.Duration
	Walk             scoring.WalkConfig
	Vegetation       scoring.VegetationConfig
	Finance          scoring.FinanceConfig
	SimilarLimit     int
	SimilarThreshold float64
}

// Deps are the collaborators the service orchestrates.
type Deps struct {
	Store      store.Store
	Cache      cache.Cache
	Amenities  models.AmenityProvider
	Images     models.ImageProvider
	Embedder   models.Embedder
	Index      simindex.Index
	Summarizer models.Summarizer
	Logger     *slog.Logger
}

// Service runs property analyses as asynchronous jobs. Submit returns
// immediately with a pending job; a background goroutine fans out the
// scoring subtasks, persists each outcome as it lands, and finalizes
// the job. All section and status writes for one job go through that
// single goroutine, so concurrent subtask completions cannot overwrite
// each other.
type Service struct {
	deps Deps
	cfg  Config
	wg   sync.WaitGroup
}

// NewService creates a new analysis Service.
func NewService(deps Deps, cfg Config) *Service {
	return &Service{deps: deps, cfg: cfg}
}

// Submit validates the input, creates a pending job, and dispatches the
// analysis in a background goroutine.
func (s *Service) Submit(ctx context.Context, input models.AnalysisInput) (*models.Job, error) {
	if input.Address == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidInput)
	}
	if input.RadiusM == 0 {
		input.RadiusM = defaultRadiusM
	}
	if input.RadiusM < minRadiusM || input.RadiusM > maxRadiusM {
		return nil, fmt.Errorf("%w: radius_m must be between %d and %d, got %d",
			ErrInvalidInput, minRadiusM, maxRadiusM, input.RadiusM)
	}
	if input.Investment != nil {
		normalized := input.Investment.Normalize()
		if err := normalized.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		input.Investment = &normalized
	}

	job := &models.Job{
		ID:        uuid.New(),
		Status:    models.JobStatusPending,
		Input:     input,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.deps.Store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}

	if err := s.deps.Cache.SetJobStatus(ctx, job.ID, job.Status, s.cfg.StatusTTL); err != nil {
		s.deps.Logger.Warn("caching job status failed", "job_id", job.ID, "error", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.deps.Logger.Error("analysis panicked", "job_id", job.ID, "panic", r)
				s.failJob(context.Background(), job.ID, fmt.Sprintf("internal fault: %v", r))
			}
		}()
		s.run(context.Background(), job)
	}()

	return job, nil
}

// GetJob returns the current state of a job.
func (s *Service) GetJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	return s.deps.Store.GetJob(ctx, id)
}

// Cancel marks a non-terminal job as failed with a cancellation reason.
// Returns store.ErrJobTerminal if the job already finished.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) error {
	if reason == "" {
		reason = "canceled by client"
	}
	if status, ok, err := s.deps.Cache.GetJobStatus(ctx, id); err == nil && ok {
		if status == models.JobStatusSucceeded || status == models.JobStatusFailed {
			return store.ErrJobTerminal
		}
	}
	err := s.deps.Store.UpdateJobStatus(ctx, id, models.JobStatusFailed,
		store.WithErrorMessage(reason))
	if err != nil {
		return err
	}
	if err := s.deps.Cache.SetJobStatus(ctx, id, models.JobStatusFailed, s.cfg.StatusTTL); err != nil {
		s.deps.Logger.Warn("caching job status failed", "job_id", id, "error", err)
	}
	return nil
}

// Wait blocks until all in-flight analyses finish. Used during shutdown.
func (s *Service) Wait() {
	s.wg.Wait()
}

// outcome is one subtask's result, sent to the collecting goroutine.
type outcome struct {
	section string
	data    any
	err     error
}

func (s *Service) run(ctx context.Context, job *models.Job) {
	logger := s.deps.Logger.With("job_id", job.ID, "address", job.Input.Address)

	if err := s.deps.Store.UpdateJobStatus(ctx, job.ID, models.JobStatusRunning); err != nil {
		// Canceled before it started, or gone. Nothing to do.
		logger.Warn("could not mark job running", "error", err)
		return
	}
	if err := s.deps.Cache.SetJobStatus(ctx, job.ID, models.JobStatusRunning, s.cfg.StatusTTL); err != nil {
		logger.Warn("caching job status failed", "error", err)
	}

	started := time.Now()
	results := make(chan outcome)
	subtasks := s.launchSubtasks(ctx, job, results)

	// Single collector: every section write for this job happens here,
	// in arrival order, after all subtasks were dispatched.
	collected := map[string]outcome{}
	for i := 0; i < subtasks; i++ {
		o := <-results
		collected[o.section] = o
		s.saveOutcome(ctx, logger, job.ID, o)
	}

	if critical, ok := collected[models.SectionWalkability]; ok && critical.err != nil {
		logger.Error("critical subtask failed, failing job",
			"section", models.SectionWalkability, "error", critical.err)
		s.failJob(ctx, job.ID, fmt.Sprintf("walkability: %v", critical.err))
		return
	}

	report := s.buildReport(job, collected)
	s.summarize(ctx, logger, job.ID, report)
	report.GeneratedAt = time.Now().UTC()

	err := s.deps.Store.UpdateJobStatus(ctx, job.ID, models.JobStatusSucceeded, store.WithResult(report))
	if err != nil {
		// A concurrent cancel can beat the finalizer; the terminal
		// status stands.
		logger.Warn("could not finalize job", "error", err)
		return
	}
	if err := s.deps.Cache.SetJobStatus(ctx, job.ID, models.JobStatusSucceeded, s.cfg.StatusTTL); err != nil {
		logger.Warn("caching job status failed", "error", err)
	}

	logger.Info("analysis completed",
		"duration", time.Since(started),
		"degraded_sections", len(report.Degraded))
}

// launchSubtasks starts one goroutine per applicable subtask and returns
// how many were started. Each subtask gets its own timeout and its own
// panic recovery so one fault never takes down a sibling.
func (s *Service) launchSubtasks(ctx context.Context, job *models.Job, results chan<- outcome) int {
	type subtask struct {
		section string
		fn      func(context.Context) (any, error)
	}

	tasks := []subtask{
		{models.SectionWalkability, func(ctx context.Context) (any, error) {
			return s.runWalkability(ctx, job.Input)
		}},
		{models.SectionVegetation, func(ctx context.Context) (any, error) {
			return s.runVegetation(ctx, job.Input)
		}},
		{models.SectionSimilar, func(ctx context.Context) (any, error) {
			return s.runSimilar(ctx, job.Input)
		}},
	}
	if job.Input.Investment != nil {
		tasks = append(tasks, subtask{models.SectionInvestment, func(ctx context.Context) (any, error) {
			return s.runInvestment(ctx, job.Input)
		}})
	}

	for _, task := range tasks {
		go func(task subtask) {
			var (
				data any
				err  error
			)
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("subtask panic: %v", r)
				}
				results <- outcome{section: task.section, data: data, err: err}
			}()

			taskCtx, cancel := context.WithTimeout(ctx, s.cfg.SubtaskTimeout)
			defer cancel()
			data, err = task.fn(taskCtx)
		}(task)
	}
	return len(tasks)
}

func (s *Service) saveOutcome(ctx context.Context, logger *slog.Logger, jobID uuid.UUID, o outcome) {
	section := models.SectionOutcome{OK: o.err == nil}
	if o.err != nil {
		section.Error = o.err.Error()
		logger.Warn("subtask failed", "section", o.section, "error", o.err)
	} else if o.data != nil {
		raw, err := json.Marshal(o.data)
		if err != nil {
			logger.Error("marshaling section data failed", "section", o.section, "error", err)
		} else {
			section.Data = raw
		}
	}

	if err := s.deps.Store.SaveSection(ctx, jobID, o.section, section); err != nil {
		logger.Error("persisting section failed", "section", o.section, "error", err)
	}
}

// buildReport assembles the final report from the collected outcomes.
// Failed non-critical sections become Degraded entries.
func (s *Service) buildReport(job *models.Job, collected map[string]outcome) *models.Report {
	report := &models.Report{
		Address: job.Input.Address,
		RadiusM: job.Input.RadiusM,
	}

	for _, o := range []string{
		models.SectionWalkability,
		models.SectionVegetation,
		models.SectionInvestment,
		models.SectionSimilar,
	} {
		res, ok := collected[o]
		if !ok {
			continue
		}
		if res.err != nil {
			report.Degraded = append(report.Degraded, models.DegradedSection{
				Section: o,
				Reason:  res.err.Error(),
			})
			continue
		}
		switch data := res.data.(type) {
		case models.WalkabilityReport:
			report.Walkability = &data
		case models.VegetationReport:
			report.Vegetation = &data
		case *models.InvestmentReport:
			report.Investment = data
		case []models.SimilarProperty:
			report.Similar = data
		}
	}
	return report
}

// summarize runs the summarizer over the assembled report. A failed
// summary degrades the section, never the job.
func (s *Service) summarize(ctx context.Context, logger *slog.Logger, jobID uuid.UUID, report *models.Report) {
	summaryCtx, cancel := context.WithTimeout(ctx, s.cfg.SummaryTimeout)
	defer cancel()

	summary, err := s.deps.Summarizer.Summarize(summaryCtx, report)
	if err != nil {
		logger.Warn("summarizer failed", "provider", s.deps.Summarizer.Name(), "error", err)
		report.Degraded = append(report.Degraded, models.DegradedSection{
			Section: models.SectionSummary,
			Reason:  err.Error(),
		})
		s.saveOutcome(ctx, logger, jobID, outcome{section: models.SectionSummary, err: err})
		return
	}

	report.Summary = summary
	s.saveOutcome(ctx, logger, jobID, outcome{
		section: models.SectionSummary,
		data:    map[string]string{"summary": summary, "provider": s.deps.Summarizer.Name()},
	})
}

func (s *Service) failJob(ctx context.Context, jobID uuid.UUID, reason string) {
	err := s.deps.Store.UpdateJobStatus(ctx, jobID, models.JobStatusFailed,
		store.WithErrorMessage(reason))
	if err != nil {
		s.deps.Logger.Error("could not mark job failed", "job_id", jobID, "error", err)
		return
	}
	if err := s.deps.Cache.SetJobStatus(ctx, jobID, models.JobStatusFailed, s.cfg.StatusTTL); err != nil {
		s.deps.Logger.Warn("caching job status failed", "job_id", jobID, "error", err)
	}
}

// --- subtasks ---

func (s *Service) runWalkability(ctx context.Context, input models.AnalysisInput) (any, error) {
	amenities, err := s.deps.Amenities.FetchAmenities(ctx, input.Address, float64(input.RadiusM))
	if err != nil {
		return nil, fmt.Errorf("fetching amenities: %w", err)
	}
	return scoring.Walk(amenities, s.cfg.Walk), nil
}

func (s *Service) runVegetation(ctx context.Context, input models.AnalysisInput) (any, error) {
	raw, err := s.deps.Images.FetchImage(ctx, input.Address, float64(input.RadiusM))
	if err != nil {
		return nil, fmt.Errorf("fetching imagery: %w", err)
	}
	img, err := scoring.DecodeImage(raw)
	if err != nil {
		return nil, err
	}
	report, _, err := scoring.Vegetation(img, s.cfg.Vegetation)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *Service) runInvestment(_ context.Context, input models.AnalysisInput) (any, error) {
	return scoring.Investment(*input.Investment, s.cfg.Finance)
}

func (s *Service) runSimilar(ctx context.Context, input models.AnalysisInput) (any, error) {
	raw, err := s.deps.Images.FetchImage(ctx, input.Address, float64(input.RadiusM))
	if err != nil {
		return nil, fmt.Errorf("fetching imagery: %w", err)
	}
	vector, err := s.deps.Embedder.Embed(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("embedding imagery: %w", err)
	}
	matches, err := s.deps.Index.Search(ctx, vector, s.cfg.SimilarLimit, s.cfg.SimilarThreshold)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	similar := make([]models.SimilarProperty, 0, len(matches))
	for _, m := range matches {
		similar = append(similar, models.SimilarProperty{
			PropertyID: m.PropertyID,
			Similarity: m.Similarity,
			Metadata:   m.Metadata,
		})
	}
	return similar, nil
}
