package cmdkit

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter collects a single line of operator input. Implementations block
// until the operator answers or cancels; there is no timeout.
type Prompter interface {
	// Prompt shows text together with a default hint and returns the typed
	// response, empty when the operator just pressed enter. Cancellation is
	// signalled with ErrPromptCancelled.
	Prompt(text, hint string) (string, error)
}

// promptAffirmative is the exact response that sets a flag during the walk.
const promptAffirmative = "Y"

// promptRequiredHint is shown as the default for a required field, so
// pressing enter there looks different from satisfying an optional one.
const promptRequiredHint = "<required>"

// LinePrompter reads operator responses line by line from an input stream.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

func (p *LinePrompter) Prompt(text, hint string) (string, error) {
	if hint != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", text, hint)
	} else {
		fmt.Fprintf(p.out, "%s: ", text)
	}

	line, err := p.in.ReadString('\n')
	if err != nil {
		// EOF (ctrl-d) cancels the walk.
		return "", ErrPromptCancelled
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// promptWalk iterates the parsed synopsis in order and collects responses
// for every slot the invocation has not satisfied yet. Any cancellation
// stops the walk early and returns the arguments accumulated so far.
func (r *Runner) promptWalk(spec []Argument, args []string, assoc map[string]any) ([]string, map[string]any) {
	supplied := len(args)

	for i, arg := range spec {
		hint := promptRequiredHint
		if arg.Optional {
			hint = ""
		}
		label := fmt.Sprintf("%d/%d %s", i+1, len(spec), arg.Token)

		switch arg.Kind {
		case KindGeneric:
			// Repeats until the operator submits an empty key.
			for {
				key, err := r.prompter.Prompt(label+" key", hint)
				if err != nil {
					return args, assoc
				}
				if key == "" {
					break
				}
				value, err := r.prompter.Prompt(label+" value", hint)
				if err != nil {
					return args, assoc
				}
				assoc[key] = value
			}

		case KindPositional:
			if supplied > 0 {
				supplied--
				continue
			}
			response, err := r.prompter.Prompt(label, hint)
			if err != nil {
				return args, assoc
			}
			if response == "" {
				continue
			}
			if arg.Repeating {
				args = append(args, strings.Fields(response)...)
			} else {
				args = append(args, response)
			}

		case KindAssoc:
			if _, ok := assoc[arg.Name]; ok {
				continue
			}
			response, err := r.prompter.Prompt(label, hint)
			if err != nil {
				return args, assoc
			}
			if response != "" {
				assoc[arg.Name] = response
			}

		case KindFlag:
			if _, ok := assoc[arg.Name]; ok {
				continue
			}
			response, err := r.prompter.Prompt(label+" (Y/n)", hint)
			if err != nil {
				return args, assoc
			}
			if response == promptAffirmative {
				assoc[arg.Name] = true
			}
		}
	}

	return args, assoc
}
