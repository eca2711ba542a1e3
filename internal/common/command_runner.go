package common

import (
	"context"
	"fmt"
	"os"

	"cvforge/internal/ai"
	"cvforge/internal/errors"
)

// Runner bundles the helpers shared by file-based CLI commands: input
// validation, token usage accounting across multiple AI calls, and output
// formatting.
type Runner struct {
	logger *errors.Logger
	files  *FileProcessor
	output *OutputHandler
	usage  ai.TokenUsage
}

// NewRunner creates a command runner
func NewRunner(logger *errors.Logger) *Runner {
	return &Runner{
		logger: logger,
		files:  NewFileProcessor(logger),
		output: NewOutputHandler(logger),
	}
}

// ReadInputs validates and reads the command's input files
func (r *Runner) ReadInputs(paths ...string) ([]string, error) {
	return r.files.ValidateAndReadFiles(paths...)
}

// AIOperationFunc is a generic function signature for any AI operation with
// context and token usage.
type AIOperationFunc[Input, Output any] func(context.Context, Input) (Output, *ai.TokenUsage, error)

// CallAI executes one AI operation and folds its token usage into the
// runner's running total.
func CallAI[Input, Output any](ctx context.Context, r *Runner, operation AIOperationFunc[Input, Output], input Input) (Output, error) {
	result, usage, err := operation(ctx, input)
	if err != nil {
		var zero Output
		return zero, err
	}
	r.AddUsage(usage)
	return result, nil
}

// AddUsage accumulates token usage from one AI call
func (r *Runner) AddUsage(usage *ai.TokenUsage) {
	if usage == nil {
		return
	}
	r.usage.InputTokens += usage.InputTokens
	r.usage.OutputTokens += usage.OutputTokens
	r.usage.TotalTokens += usage.TotalTokens
}

// ReportUsage logs the accumulated token usage for the whole command
func (r *Runner) ReportUsage() {
	if r.usage.TotalTokens == 0 {
		return
	}
	if r.logger != nil {
		r.logger.Info("AI token usage",
			"input_tokens", r.usage.InputTokens,
			"output_tokens", r.usage.OutputTokens,
			"total_tokens", r.usage.TotalTokens)
	} else {
		fmt.Fprintf(os.Stderr, "AI token usage: input=%d, output=%d, total=%d\n",
			r.usage.InputTokens, r.usage.OutputTokens, r.usage.TotalTokens)
	}
}

// WriteResult formats the command result and writes it to the configured
// destination.
func (r *Runner) WriteResult(data any, cfg CommandConfig) error {
	r.ReportUsage()
	return r.output.HandleOutput(data, cfg)
}
