package pipeline

import (
	"context"
	"fmt"
	"log/slog"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each one reading what the previous
// steps stored in the Extraction and adding its own output.
type Step interface {
	// Do executes the pipeline step.
	// A returned error stops the pipeline; it is already wrapped in the
	// error kind of the stage.
	Do(ctx context.Context, x *Extraction) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence and stops at the first
// failure. Cancellation is checked before each step; a step in flight is
// expected to honor ctx itself.
//
// The failing step's name is recorded as the "stage" value of the
// extraction context and in x.FailedStage.
func (p *Pipeline) Execute(ctx context.Context, x *Extraction) error {
	for i, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.WarnContext(ctx, "pipeline cancelled",
				"step", step.Name(),
				"url", x.URL,
				"reason", ctx.Err(),
			)
			x.FailedStage = step.Name()
			return ctx.Err()
		default:
		}

		p.logger.DebugContext(ctx, "executing step",
			"step", step.Name(),
			"position", fmt.Sprintf("%d/%d", i+1, p.StepCount()),
			"url", x.URL,
		)

		if err := step.Do(ctx, x); err != nil {
			x.FailedStage = step.Name()
			if x.Context != nil {
				x.Context.Set("stage", step.Name())
			}
			p.logger.ErrorContext(ctx, "step failed",
				"step", step.Name(),
				"url", x.URL,
				"error", err,
			)
			return err
		}

		x.CompletedStages = append(x.CompletedStages, step.Name())
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
