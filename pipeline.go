package cmdkit

import (
	"fmt"
	"io"
	"strings"

	"github.com/mwantia/cmdkit/log"
)

// Runner drives one invocation of a leaf command: validation, optional
// interactive prompting, then handler dispatch. A Runner holds no
// per-invocation state and can be reused across invocations.
type Runner struct {
	log      *log.Logger
	prompter Prompter
	usage    io.Writer
	defaults map[string]any
}

func NewRunner(opts ...RunnerOption) *Runner {
	options := newDefaultRunnerOptions()
	for _, opt := range opts {
		opt(options)
	}

	return &Runner{
		log:      options.Logger,
		prompter: options.Prompter,
		usage:    options.Usage,
		defaults: options.Defaults,
	}
}

// Run validates the invocation arguments against the leaf's synopsis and,
// on success, dispatches the handler. With interactive set and a non-empty
// synopsis, unsatisfied slots are collected from the operator between
// validation and dispatch; a cancelled prompt keeps whatever was gathered.
// The returned error aggregates every fatal validation problem into one
// message. Warnings are logged and never abort.
func (r *Runner) Run(leaf *LeafNode, args []string, assoc map[string]any, interactive bool) error {
	if assoc == nil {
		assoc = make(map[string]any)
	}

	validator := NewValidator(leaf.spec)

	for _, token := range validator.UnknownTokens() {
		r.log.Warn("unrecognized synopsis token %q in command %q", token, leaf.Path())
	}

	var fatals []string

	if !validator.EnoughPositionals(args) {
		// The one fatal case that also emits usage text before aborting.
		fmt.Fprintln(r.usage, leaf.Usage("usage:"))
		fatals = append(fatals, "not enough positional arguments")
	}

	if !leaf.uncheckedPositionals {
		for _, value := range validator.InvalidPositionals(args) {
			fatals = append(fatals, fmt.Sprintf("invalid positional argument %q", value))
		}
	}

	if extra := validator.UnknownPositionals(args); len(extra) > 0 {
		fatals = append(fatals, fmt.Sprintf("too many positional arguments: %s", strings.Join(extra, " ")))
	}

	if unknown := validator.UnknownAssoc(assoc); len(unknown) > 0 {
		fatals = append(fatals, fmt.Sprintf("unknown --%s parameter", strings.Join(unknown, " parameter, unknown --")))
	}

	assocFatals, warnings, toDrop := validator.ValidateAssoc(assoc, r.defaults)
	fatals = append(fatals, assocFatals...)

	for _, warning := range warnings {
		r.log.Warn("%s", warning)
	}
	for _, key := range toDrop {
		delete(assoc, key)
	}

	if len(fatals) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidArguments, strings.Join(fatals, "; "))
	}

	if interactive && len(leaf.spec) > 0 && r.prompter != nil {
		args, assoc = r.promptWalk(leaf.spec, args, assoc)
	}

	leaf.handler.Run(args, assoc)
	return nil
}

// Dispatch resolves a command path against the tree and runs the resulting
// leaf. The positional list must start with the command words; everything
// after the deepest match is passed to the leaf as arguments.
func (r *Runner) Dispatch(root *CompositeNode, args []string, assoc map[string]any, interactive bool) error {
	var node Node = root

	for len(args) > 0 {
		composite, ok := node.(*CompositeNode)
		if !ok {
			break
		}

		child, found := composite.Find(args[0])
		if !found {
			break
		}
		node = child
		args = args[1:]
	}

	leaf, ok := node.(*LeafNode)
	if !ok {
		if composite, isGroup := node.(*CompositeNode); isGroup && node != Node(root) {
			for _, child := range composite.Children() {
				fmt.Fprintln(r.usage, child.Usage("usage:"))
			}
			return fmt.Errorf("%w: %s", ErrNotInvocable, composite.Path())
		}
		if len(args) > 0 {
			return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
		}
		return ErrUnknownCommand
	}

	return r.Run(leaf, args, assoc, interactive)
}
