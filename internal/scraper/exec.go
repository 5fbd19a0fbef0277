package scraper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/books-catalog-api/internal/catalog"
	"github.com/JakeFAU/books-catalog-api/internal/supervisor"
)

// Environment variables exposed to the external scraper.
const (
	EnvJobID       = "BOOKS_SCRAPE_JOB_ID"
	EnvTriggeredBy = "BOOKS_SCRAPE_TRIGGERED_BY"
)

// ExecConfig configures ExecRunner.
type ExecConfig struct {
	Command string
	Args    []string
	// TailBytes bounds how much stderr is kept for the failure message.
	TailBytes int
}

// ExecRunner runs an external scraper process per job.
type ExecRunner struct {
	cfg    ExecConfig
	logger *zap.Logger
}

// NewExecRunner builds an ExecRunner.
func NewExecRunner(cfg ExecConfig, logger *zap.Logger) (*ExecRunner, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, errors.New("scraper command is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecRunner{cfg: cfg, logger: logger}, nil
}

// Name implements supervisor.Runner.
func (r *ExecRunner) Name() string {
	return "exec"
}

// Start launches the command and returns once the process exists. A missing
// executable is reported here; non-zero exits are reported by Wait.
func (r *ExecRunner) Start(ctx context.Context, job catalog.ScrapeJob) (supervisor.Handle, error) {
	cmd := exec.CommandContext(ctx, r.cfg.Command, r.cfg.Args...)
	cmd.Env = append(os.Environ(),
		EnvJobID+"="+job.ID,
		EnvTriggeredBy+"="+job.TriggeredBy,
	)
	stdout := newTailBuffer(r.cfg.TailBytes)
	stderr := newTailBuffer(r.cfg.TailBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", r.cfg.Command, err)
	}
	logger := r.logger.With(zap.String("job_id", job.ID), zap.Int("pid", cmd.Process.Pid))
	logger.Debug("scraper process started", zap.String("command", r.cfg.Command))

	h := newRun()
	go func() {
		err := cmd.Wait()
		if out := strings.TrimSpace(stdout.String()); out != "" {
			logger.Debug("scraper output", zap.String("stdout_tail", out))
		}
		if err != nil {
			tail := strings.TrimSpace(stderr.String())
			if tail != "" {
				err = fmt.Errorf("%s: %w: %s", r.cfg.Command, err, tail)
			} else {
				err = fmt.Errorf("%s: %w", r.cfg.Command, err)
			}
		}
		h.finish(supervisor.Result{}, err)
	}()
	return h, nil
}
