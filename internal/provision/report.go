package provision

import "time"

// StepStatus is the terminal state of a step within one run.
type StepStatus string

const (
	// StatusOK means the step completed successfully.
	StatusOK StepStatus = "ok"
	// StatusTolerated means the step failed but the failure was swallowed.
	StatusTolerated StepStatus = "tolerated"
	// StatusFailed means the step failed fatally, aborting the run.
	StatusFailed StepStatus = "failed"
	// StatusSkipped means an earlier fatal failure prevented the step
	// from running.
	StatusSkipped StepStatus = "skipped"
)

// StepResult records the outcome of one step.
type StepResult struct {
	Name     string        `json:"name" yaml:"name"`
	Status   StepStatus    `json:"status" yaml:"status"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration `json:"duration_ns,omitempty" yaml:"duration_ns,omitempty"`
}

// Report is the outcome of one provisioning run.
type Report struct {
	// RunID uniquely identifies the run in the shared log file, which is
	// append-only across runs.
	RunID string `json:"run_id" yaml:"run_id"`

	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`

	// Completed is true only when every step reached ok or tolerated.
	Completed bool `json:"completed" yaml:"completed"`

	Steps []StepResult `json:"steps" yaml:"steps"`
}
