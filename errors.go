package cmdkit

import "errors"

// Standard dispatch errors surfaced by the runner and command tree.
var (
	ErrUnknownCommand   = errors.New("cmdkit: unknown command")
	ErrNotInvocable     = errors.New("cmdkit: command group is not invocable")
	ErrInvalidArguments = errors.New("cmdkit: invalid arguments")

	// ErrPromptCancelled is returned by a Prompter when the operator aborts
	// the prompt walk. Cancellation is not an invocation error: the walk
	// stops early and whatever was collected so far is dispatched.
	ErrPromptCancelled = errors.New("cmdkit: prompt cancelled")
)
