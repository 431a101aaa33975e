package cmdkit

import (
	"io"
	"os"

	"github.com/mwantia/cmdkit/log"
)

type RunnerOptions struct {
	Logger   *log.Logger
	Prompter Prompter
	Usage    io.Writer
	Defaults map[string]any
}

type RunnerOption func(*RunnerOptions)

func newDefaultRunnerOptions() *RunnerOptions {
	return &RunnerOptions{
		Logger: log.NewLogger("cmdkit", log.Warn, "", false),
		Usage:  os.Stdout,
	}
}

// WithLogger replaces the logger used for non-fatal validation warnings.
func WithLogger(logger *log.Logger) RunnerOption {
	return func(opts *RunnerOptions) {
		opts.Logger = logger
	}
}

// WithPrompter supplies the collaborator used for interactive prompting.
// Without one, interactive mode is silently skipped.
func WithPrompter(prompter Prompter) RunnerOption {
	return func(opts *RunnerOptions) {
		opts.Prompter = prompter
	}
}

// WithUsageWriter redirects the usage dump emitted when an invocation lacks
// required positional arguments.
func WithUsageWriter(w io.Writer) RunnerOption {
	return func(opts *RunnerOptions) {
		opts.Usage = w
	}
}

// WithDefaults passes ambient configuration into assoc validation as an
// explicit base mapping; a key present here satisfies a missing required
// assoc parameter.
func WithDefaults(defaults map[string]any) RunnerOption {
	return func(opts *RunnerOptions) {
		opts.Defaults = defaults
	}
}
