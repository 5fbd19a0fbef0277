// Package supervisor launches scraping runs as detached background jobs.
//
// A trigger returns as soon as the runner has started. The job then runs on
// the supervisor's own context, so it is unaffected by the triggering
// request finishing or being canceled. Its outcome is recorded in the job
// store, the logs and the scrape_jobs_total metric, and is never reported
// back to the caller.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/JakeFAU/books-catalog-api/internal/catalog"
	"github.com/JakeFAU/books-catalog-api/internal/metrics"
)

var (
	// ErrLaunch is matched by every LaunchError.
	ErrLaunch = errors.New("scrape job failed to launch")
	// ErrNoSubject is returned when Trigger is called without an identity.
	ErrNoSubject = errors.New("trigger requires an authenticated subject")
	// ErrShuttingDown is returned by Trigger after Shutdown has begun.
	ErrShuttingDown = errors.New("supervisor is shutting down")
)

// LaunchError reports a runner that could not be started.
type LaunchError struct {
	JobID string
	Err   error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch job %s: %v", e.JobID, e.Err)
}

// Is makes errors.Is(err, ErrLaunch) hold.
func (e *LaunchError) Is(target error) bool {
	return target == ErrLaunch
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Handle is a started scraping run.
type Handle interface {
	// Wait blocks until the run finishes and returns its outcome.
	Wait() (Result, error)
}

// Result is what a finished run reports back.
type Result struct {
	BooksScraped int
}

// Runner starts the external scraping collaborator. Start must not block
// for the duration of the run; an error from Start means nothing is running.
type Runner interface {
	Name() string
	Start(ctx context.Context, job catalog.ScrapeJob) (Handle, error)
}

// Config controls Supervisor behavior.
type Config struct {
	// SingleFlight makes a trigger join the running job instead of starting
	// a second one.
	SingleFlight bool
}

// Accepted acknowledges a trigger.
type Accepted struct {
	Job    catalog.ScrapeJob
	Joined bool
}

// Supervisor owns the handles of running scrape jobs.
type Supervisor struct {
	runner Runner
	jobs   catalog.JobStore
	ids    catalog.IDGenerator
	clock  catalog.Clock
	cfg    Config
	logger *zap.Logger

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu       sync.Mutex
	running  map[string]catalog.ScrapeJob
	stopping bool
}

// New constructs a Supervisor. Jobs run on a context owned by the
// supervisor and canceled only by Shutdown.
func New(
	runner Runner,
	jobs catalog.JobStore,
	ids catalog.IDGenerator,
	clock catalog.Clock,
	cfg Config,
	logger *zap.Logger,
) *Supervisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics.Init()
	ctx, cancel := context.WithCancel(context.Background())
	return &Supervisor{
		runner:  runner,
		jobs:    jobs,
		ids:     ids,
		clock:   clock,
		cfg:     cfg,
		logger:  logger,
		baseCtx: ctx,
		cancel:  cancel,
		running: make(map[string]catalog.ScrapeJob),
	}
}

// Trigger starts a scraping run on behalf of subject and returns without
// waiting for it. ctx bounds only the synchronous bookkeeping.
func (s *Supervisor) Trigger(ctx context.Context, subject string) (Accepted, error) {
	if subject == "" {
		return Accepted{}, ErrNoSubject
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopping {
		return Accepted{}, ErrShuttingDown
	}
	if s.cfg.SingleFlight {
		for _, job := range s.running {
			s.logger.Info("scrape trigger joined running job",
				zap.String("job_id", job.ID),
				zap.String("triggered_by", subject),
			)
			return Accepted{Job: job, Joined: true}, nil
		}
	}

	jobID, err := s.ids.NewID()
	if err != nil {
		return Accepted{}, fmt.Errorf("generate job id: %w", err)
	}
	job := catalog.ScrapeJob{
		ID:          jobID,
		Status:      catalog.JobStatusPending,
		TriggeredBy: subject,
		Runner:      s.runner.Name(),
		Created:     s.clock.Now(),
	}
	if err := s.jobs.CreateJob(ctx, job); err != nil {
		return Accepted{}, fmt.Errorf("create job: %w", err)
	}
	logger := s.logger.With(zap.String("job_id", jobID), zap.String("triggered_by", subject))

	handle, err := s.runner.Start(s.baseCtx, job)
	if err != nil {
		logger.Error("scrape job failed to launch", zap.Error(err))
		s.finish(job.ID, catalog.JobStatusFailed, err.Error(), 0, logger)
		return Accepted{}, &LaunchError{JobID: jobID, Err: err}
	}

	if err := s.jobs.UpdateJobStatus(ctx, jobID, catalog.JobStatusRunning, "", 0); err != nil {
		logger.Warn("record running status failed", zap.Error(err))
	}
	job.Status = catalog.JobStatusRunning
	started := s.clock.Now()
	job.Started = &started
	s.running[jobID] = job
	metrics.IncActiveScrapeJobs()
	logger.Info("scrape job started", zap.String("runner", job.Runner), zap.Int("concurrent", len(s.running)))

	s.wg.Add(1)
	go s.supervise(job, handle, logger)

	return Accepted{Job: job}, nil
}

func (s *Supervisor) supervise(job catalog.ScrapeJob, handle Handle, logger *zap.Logger) {
	defer s.wg.Done()
	defer metrics.DecActiveScrapeJobs()

	result, err := handle.Wait()

	s.mu.Lock()
	delete(s.running, job.ID)
	s.mu.Unlock()

	if err != nil {
		logger.Error("scrape job failed", zap.Error(err), zap.Int("books_scraped", result.BooksScraped))
		s.finish(job.ID, catalog.JobStatusFailed, err.Error(), result.BooksScraped, logger)
		return
	}
	logger.Info("scrape job succeeded", zap.Int("books_scraped", result.BooksScraped))
	metrics.ObserveBooksScraped(result.BooksScraped)
	s.finish(job.ID, catalog.JobStatusSucceeded, "", result.BooksScraped, logger)
}

func (s *Supervisor) finish(jobID string, status catalog.JobStatus, errText string, books int, logger *zap.Logger) {
	metrics.ObserveScrapeJob(string(status))
	// The triggering request may be long gone; record on a fresh context.
	if err := s.jobs.UpdateJobStatus(context.Background(), jobID, status, errText, books); err != nil {
		logger.Warn("record terminal status failed", zap.String("status", string(status)), zap.Error(err))
	}
}

// Running returns a snapshot of the jobs currently running.
func (s *Supervisor) Running() []catalog.ScrapeJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]catalog.ScrapeJob, 0, len(s.running))
	for _, job := range s.running {
		out = append(out, job)
	}
	return out
}

// Jobs lists every recorded job, oldest first.
func (s *Supervisor) Jobs(ctx context.Context) ([]catalog.ScrapeJob, error) {
	jobs, err := s.jobs.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// Job fetches one job record. Unknown IDs match catalog.ErrJobNotFound.
func (s *Supervisor) Job(ctx context.Context, id string) (catalog.ScrapeJob, error) {
	job, err := s.jobs.GetJob(ctx, id)
	if err != nil {
		return catalog.ScrapeJob{}, fmt.Errorf("job %s: %w", id, err)
	}
	return job, nil
}

// Shutdown stops accepting triggers and waits for running jobs. If ctx ends
// first, the jobs' context is canceled and ctx's error is returned.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		<-done
		return fmt.Errorf("shutdown supervisor: %w", ctx.Err())
	}
}
