// Package bootstrap sequences the launch pipeline: interpreter
// discovery, dependency installation, browser provisioning, and
// finally handing control to the application.
package bootstrap

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hpb-tools/hpblaunch/pkg/launch/logging"
)

// logger is the package-level logger for pipeline runs.
var logger = logging.Get("bootstrap")

// StepStatus is the outcome of a single pipeline step.
type StepStatus string

// Step outcomes.
const (
	StatusPassed  StepStatus = "passed"
	StatusFailed  StepStatus = "failed"
	StatusWarned  StepStatus = "warned"
	StatusSkipped StepStatus = "skipped"
)

// Step is one unit of the pipeline. Fatal steps stop the run on
// failure; non-fatal steps degrade to a warning and the run continues.
type Step struct {
	// Name identifies the step in logs and reports.
	Name string

	// Fatal marks whether a failure aborts the remaining steps.
	Fatal bool

	// Run does the work and returns a human-readable detail line.
	Run func(ctx context.Context) (string, error)

	// Skip, if set and returning true, bypasses Run entirely.
	Skip func() (bool, string)
}

// StepResult records what happened to one step.
type StepResult struct {
	Name     string        `json:"name"`
	Status   StepStatus    `json:"status"`
	Detail   string        `json:"detail,omitempty"`
	Err      string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Result is the outcome of a full pipeline run.
type Result struct {
	// RunID uniquely identifies this run across log lines and reports.
	RunID string `json:"run_id"`

	// Steps are the per-step outcomes in execution order.
	Steps []StepResult `json:"steps"`

	// Failed names the fatal step that stopped the run, empty on success.
	Failed string `json:"failed,omitempty"`

	// Duration is the wall time of the whole run.
	Duration time.Duration `json:"duration"`
}

// Ok reports whether the run completed without a fatal failure.
func (r *Result) Ok() bool {
	return r.Failed == ""
}

// ExitCode maps the run outcome to the process exit code: 0 on
// success (warnings included), 1 when a fatal step failed.
func (r *Result) ExitCode() int {
	if r.Ok() {
		return 0
	}
	return 1
}

// Runner executes steps in order.
type Runner struct {
	steps []Step
}

// NewRunner creates a Runner over the given steps.
func NewRunner(steps []Step) *Runner {
	return &Runner{steps: steps}
}

// Run executes the steps sequentially. A fatal step failure or context
// cancellation stops the run; non-fatal failures are recorded as
// warnings and execution continues.
func (r *Runner) Run(ctx context.Context) *Result {
	result := &Result{RunID: uuid.NewString()}
	start := time.Now()

	logger.Info("pipeline started", "run_id", result.RunID, "steps", len(r.steps))

	for _, step := range r.steps {
		if err := ctx.Err(); err != nil {
			result.Failed = step.Name
			result.Steps = append(result.Steps, StepResult{
				Name:   step.Name,
				Status: StatusFailed,
				Err:    err.Error(),
			})
			break
		}

		if step.Skip != nil {
			if skip, reason := step.Skip(); skip {
				logger.Info("step skipped", "run_id", result.RunID, "step", step.Name, "reason", reason)
				result.Steps = append(result.Steps, StepResult{
					Name:   step.Name,
					Status: StatusSkipped,
					Detail: reason,
				})
				continue
			}
		}

		stepStart := time.Now()
		detail, err := step.Run(ctx)
		elapsed := time.Since(stepStart)

		sr := StepResult{Name: step.Name, Detail: detail, Duration: elapsed}
		switch {
		case err == nil:
			sr.Status = StatusPassed
			logger.Info("step passed", "run_id", result.RunID, "step", step.Name, "duration", elapsed)
		case step.Fatal:
			sr.Status = StatusFailed
			sr.Err = err.Error()
			result.Failed = step.Name
			logger.Error("step failed", "run_id", result.RunID, "step", step.Name, "error", err)
		default:
			sr.Status = StatusWarned
			sr.Err = err.Error()
			logger.Warn("step failed, continuing", "run_id", result.RunID, "step", step.Name, "error", err)
		}

		result.Steps = append(result.Steps, sr)
		if result.Failed != "" {
			break
		}
	}

	result.Duration = time.Since(start)
	logger.Info("pipeline finished",
		"run_id", result.RunID, "ok", result.Ok(), "duration", result.Duration)
	return result
}
