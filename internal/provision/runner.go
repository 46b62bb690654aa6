package provision

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jbweber/sower/internal/config"
)

// Runner executes the provisioning procedure once, to completion or abort.
type Runner struct {
	cfg *config.Provision
	ex  Execer

	// stdout receives the same stream as the log file. Defaults to
	// os.Stdout; tests point it elsewhere.
	stdout io.Writer

	// logPath overrides cfg.LogPath in tests.
	logPath string
}

// NewRunner creates a Runner with the production Execer.
func NewRunner(cfg *config.Provision) *Runner {
	return &Runner{
		cfg:    cfg,
		ex:     NewExecer(),
		stdout: os.Stdout,
	}
}

// Run executes every step in order. The returned Report is non-nil even on
// failure and records which step failed and which were never reached.
//
// The log file is opened in append mode: a re-run after a failed attempt
// extends the same file rather than truncating the evidence of the first
// attempt.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	logPath := r.logPath
	if logPath == "" {
		logPath = r.cfg.LogPath
	}

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}
	defer func() {
		if closeErr := logFile.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", closeErr)
		}
	}()

	out := io.MultiWriter(r.stdout, logFile)

	steps := Steps(r.cfg)
	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Steps:     make([]StepResult, len(steps)),
	}
	for i, step := range steps {
		report.Steps[i] = StepResult{Name: step.Name(), Status: StatusSkipped}
	}

	fmt.Fprintf(out, "sower run %s starting (%d steps)\n", report.RunID, len(steps))

	for i, step := range steps {
		if ctxErr := ctx.Err(); ctxErr != nil {
			report.FinishedAt = time.Now()
			report.Steps[i].Status = StatusFailed
			report.Steps[i].Error = ctxErr.Error()
			return report, fmt.Errorf("run cancelled before step %s: %w", step.Name(), ctxErr)
		}

		fmt.Fprintf(out, "[%d/%d] %s\n", i+1, len(steps), step.Name())
		start := time.Now()

		runErr := step.Run(ctx, r.ex, out)
		report.Steps[i].Duration = time.Since(start)

		if runErr == nil {
			report.Steps[i].Status = StatusOK
			continue
		}

		if step.Tolerated() {
			fmt.Fprintf(out, "step %s failed (tolerated, continuing): %v\n", step.Name(), runErr)
			report.Steps[i].Status = StatusTolerated
			report.Steps[i].Error = runErr.Error()
			continue
		}

		fmt.Fprintf(out, "step %s failed: %v\n", step.Name(), runErr)
		report.Steps[i].Status = StatusFailed
		report.Steps[i].Error = runErr.Error()
		report.FinishedAt = time.Now()
		return report, fmt.Errorf("step %s: %w", step.Name(), runErr)
	}

	fmt.Fprintln(out, config.CompletionMessage)

	report.Completed = true
	report.FinishedAt = time.Now()
	return report, nil
}
