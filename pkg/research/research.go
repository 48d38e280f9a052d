// Package research composes the multi-step research assistant: a web search
// feeds a summarization pass, the summary is fact-checked, and a final report
// is generated from the summary and the corrections together.
package research

import (
	"context"
	"log/slog"

	"github.com/parchmentco/lore/pkg/llm"
	"github.com/parchmentco/lore/pkg/pipeline"
	"github.com/parchmentco/lore/pkg/prompt"
	"github.com/parchmentco/lore/pkg/search"
)

// Step names, in execution order.
const (
	StepSearch    = "search"
	StepSummarize = "summarize"
	StepFactCheck = "fact-check"
	StepReport    = "report"
)

// Placeholder fills result fields for steps that never produced output.
const Placeholder = "N/A"

// Result is one research run. Fields for steps that did not complete hold
// Placeholder, so callers always see the full shape regardless of where a
// run stopped.
type Result struct {
	Topic string
	Model string

	// Steps holds the completed steps' outputs in execution order.
	Steps []pipeline.StepOutput

	Search      string
	Summary     string
	Corrections string
	Report      string

	// Err identifies the failing step when the run stopped early.
	Err *pipeline.StepError
}

// Failed reports whether the run stopped before producing a report.
func (r *Result) Failed() bool {
	return r.Err != nil
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithLogger sets the logger for per-step progress.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) {
		a.logger = logger
	}
}

// WithProbe toggles the pre-run backend connectivity probe. Enabled by
// default; tests and callers that already verified the backend can skip it.
func WithProbe(enabled bool) Option {
	return func(a *Assistant) {
		a.probe = enabled
	}
}

// Assistant runs research pipelines. It is safe for concurrent use: each run
// carries its own intermediate state.
type Assistant struct {
	searcher  search.Searcher
	generator llm.Generator
	prompts   *prompt.Registry
	logger    *slog.Logger
	probe     bool
}

// NewAssistant wires a research assistant over a searcher, a text generation
// backend, and a prompt registry holding the summarize, fact-check, and
// generate-report tasks.
func NewAssistant(searcher search.Searcher, generator llm.Generator, prompts *prompt.Registry, opts ...Option) *Assistant {
	a := &Assistant{
		searcher:  searcher,
		generator: generator,
		prompts:   prompts,
		logger:    slog.New(slog.DiscardHandler),
		probe:     true,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run researches topic with model. It never returns an error: failures are
// reported in the Result with the failing step identified, and every step
// that completed before the failure keeps its output.
func (a *Assistant) Run(ctx context.Context, topic, model string) *Result {
	// Report needs both the summary and the corrections, but the pipeline
	// threads a single string between steps. Each run collects the
	// intermediate outputs on the side.
	var summary, corrections string

	steps := []pipeline.Step{
		{
			Name: StepSearch,
			Run: func(ctx context.Context, input string) (string, error) {
				a.logger.Info("searching", "topic", input)
				return a.searcher.Search(ctx, input)
			},
		},
		{
			Name: StepSummarize,
			Run: func(ctx context.Context, input string) (string, error) {
				a.logger.Info("summarizing search results", "topic", topic)
				output, err := a.generate(ctx, model, prompt.TaskSummarize, map[string]string{
					"text": input,
				})
				if err != nil {
					return "", err
				}
				summary = output
				return output, nil
			},
		},
		{
			Name: StepFactCheck,
			Run: func(ctx context.Context, input string) (string, error) {
				a.logger.Info("fact-checking summary", "topic", topic)
				output, err := a.generate(ctx, model, prompt.TaskFactCheck, map[string]string{
					"text": input,
				})
				if err != nil {
					return "", err
				}
				corrections = output
				return output, nil
			},
		},
		{
			Name: StepReport,
			Run: func(ctx context.Context, _ string) (string, error) {
				a.logger.Info("generating report", "topic", topic)
				return a.generate(ctx, model, prompt.TaskGenerateReport, map[string]string{
					"summary":     summary,
					"corrections": corrections,
				})
			},
		},
	}

	var opts []pipeline.Option
	if a.probe {
		opts = append(opts, pipeline.WithProbe(func(ctx context.Context) error {
			return a.generator.Probe(ctx, model)
		}))
	}

	run := pipeline.NewRunner(steps, opts...).Run(ctx, topic)
	if run.Failed() {
		a.logger.Error("research run failed", "topic", topic, "step", run.Err.Step, "error", run.Err.Err)
	}

	return assemble(topic, model, run)
}

func (a *Assistant) generate(ctx context.Context, model, task string, bindings map[string]string) (string, error) {
	rendered, err := a.prompts.Render(task, bindings)
	if err != nil {
		return "", err
	}
	return a.generator.Generate(ctx, model, rendered)
}

func assemble(topic, model string, run *pipeline.Result) *Result {
	result := &Result{
		Topic:       topic,
		Model:       model,
		Steps:       run.Steps,
		Search:      Placeholder,
		Summary:     Placeholder,
		Corrections: Placeholder,
		Report:      Placeholder,
		Err:         run.Err,
	}

	if output, ok := run.Output(StepSearch); ok {
		result.Search = output
	}
	if output, ok := run.Output(StepSummarize); ok {
		result.Summary = output
	}
	if output, ok := run.Output(StepFactCheck); ok {
		result.Corrections = output
	}
	if output, ok := run.Output(StepReport); ok {
		result.Report = output
	}

	return result
}
