// Package pipeline executes a fixed, ordered sequence of named steps.
//
// Each step receives the previous step's output (the original input for step
// zero). On the first failure the run halts: later steps are never invoked,
// outputs collected so far are kept, and the failing step is identified in
// the result. A run never panics past its boundary.
package pipeline

import (
	"context"
	"fmt"
)

// ProbeStepName identifies a pre-run connectivity probe failure in a Result.
const ProbeStepName = "connectivity-probe"

// Step is one named unit of work in a pipeline.
type Step struct {
	// Name identifies the step in results and logs.
	Name string

	// Run transforms the prior step's output into this step's output.
	Run func(ctx context.Context, input string) (string, error)
}

// StepOutput is one step's recorded output, in execution order.
type StepOutput struct {
	Name   string `json:"name"`
	Output string `json:"output"`
}

// StepError identifies the step a run failed on.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("pipeline step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Result is a run's outcome: outputs for every step that succeeded, in
// execution order, plus the failure (if any). Steps at and after the failing
// step have no output.
type Result struct {
	Steps []StepOutput
	Err   *StepError
}

// Failed reports whether the run stopped on a step failure.
func (r *Result) Failed() bool {
	return r.Err != nil
}

// Output returns the named step's output, if that step succeeded.
func (r *Result) Output(name string) (string, bool) {
	for _, step := range r.Steps {
		if step.Name == name {
			return step.Output, true
		}
	}
	return "", false
}

// Option configures a Runner.
type Option func(*Runner)

// WithProbe installs a pre-run connectivity check. A probe failure fails the
// whole run as a single ProbeStepName failure without invoking any step,
// so a run doesn't burn minutes on steps doomed to fail.
func WithProbe(probe func(ctx context.Context) error) Option {
	return func(r *Runner) {
		r.probe = probe
	}
}

// Runner executes a statically declared step sequence.
type Runner struct {
	steps []Step
	probe func(ctx context.Context) error
}

// NewRunner creates a runner over the given steps. The step list is fixed
// for the runner's lifetime.
func NewRunner(steps []Step, opts ...Option) *Runner {
	r := &Runner{steps: steps}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the steps in order, threading each output into the next
// step's input. It always returns a Result, never an error or a panic.
func (r *Runner) Run(ctx context.Context, initialInput string) *Result {
	result := &Result{Steps: make([]StepOutput, 0, len(r.steps))}

	if r.probe != nil {
		if err := r.probe(ctx); err != nil {
			result.Err = &StepError{Step: ProbeStepName, Err: err}
			return result
		}
	}

	input := initialInput
	for _, step := range r.steps {
		output, err := runStep(ctx, step, input)
		if err != nil {
			result.Err = &StepError{Step: step.Name, Err: err}
			return result
		}

		result.Steps = append(result.Steps, StepOutput{Name: step.Name, Output: output})
		input = output
	}

	return result
}

// runStep invokes a step, converting panics into step failures so a bad step
// can never take down the caller.
func runStep(ctx context.Context, step Step, input string) (output string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("step panicked: %v", recovered)
		}
	}()

	return step.Run(ctx, input)
}
