package cmdkit

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/mwantia/cmdkit/log"
)

// scriptedPrompter replays canned responses; an empty script cancels.
type scriptedPrompter struct {
	responses []string
}

func (p *scriptedPrompter) Prompt(text, hint string) (string, error) {
	if len(p.responses) == 0 {
		return "", ErrPromptCancelled
	}
	response := p.responses[0]
	p.responses = p.responses[1:]
	return response, nil
}

type capturedCall struct {
	args  []string
	assoc map[string]any
}

func captureHandler(calls *[]capturedCall) Handler {
	return HandlerFunc(func(args []string, assoc map[string]any) {
		*calls = append(*calls, capturedCall{args: args, assoc: assoc})
	})
}

func newTestRunner(usage *bytes.Buffer, opts ...RunnerOption) *Runner {
	base := []RunnerOption{
		WithLogger(log.NewWriterLogger(&bytes.Buffer{}, log.Warn)),
		WithUsageWriter(usage),
	}
	return NewRunner(append(base, opts...)...)
}

func TestRunner_DispatchesValidInvocation(t *testing.T) {
	var calls []capturedCall
	leaf := NewLeafNode("create", "<name> [--format=<format>]", captureHandler(&calls))

	runner := newTestRunner(&bytes.Buffer{})
	if err := runner.Run(leaf, []string{"site1"}, map[string]any{}, false); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(calls) != 1 {
		t.Fatalf("Expected one dispatch, got %d", len(calls))
	}
	if !reflect.DeepEqual(calls[0].args, []string{"site1"}) {
		t.Errorf("Expected args [site1], got %v", calls[0].args)
	}
	if len(calls[0].assoc) != 0 {
		t.Errorf("Expected empty assoc, got %v", calls[0].assoc)
	}
}

func TestRunner_InsufficientPositionalsPrintsUsage(t *testing.T) {
	var calls []capturedCall
	root := NewCompositeNode("")
	leaf := NewLeafNode("create", "<name>", captureHandler(&calls))
	root.Add(leaf)

	var usage bytes.Buffer
	runner := newTestRunner(&usage)

	err := runner.Run(leaf, nil, nil, false)
	if !errors.Is(err, ErrInvalidArguments) {
		t.Fatalf("Expected ErrInvalidArguments, got %v", err)
	}

	if !strings.Contains(usage.String(), "usage: create <name>") {
		t.Errorf("Expected usage dump, got %q", usage.String())
	}
	if len(calls) != 0 {
		t.Error("Handler must never run after a fatal error")
	}
}

func TestRunner_UnknownAssocIsFatal(t *testing.T) {
	var calls []capturedCall
	leaf := NewLeafNode("create", "<name>", captureHandler(&calls))

	runner := newTestRunner(&bytes.Buffer{})
	err := runner.Run(leaf, []string{"site1"}, map[string]any{"bogus": "1"}, false)
	if !errors.Is(err, ErrInvalidArguments) {
		t.Fatalf("Expected ErrInvalidArguments, got %v", err)
	}
	if !strings.Contains(err.Error(), "unknown --bogus parameter") {
		t.Errorf("Expected aggregated message to name the key, got %v", err)
	}
	if len(calls) != 0 {
		t.Error("Handler must never run after a fatal error")
	}
}

func TestRunner_WarningsDropKeysButProceed(t *testing.T) {
	var calls []capturedCall
	leaf := NewLeafNode("create", "<name> [--force]", captureHandler(&calls))

	var logged bytes.Buffer
	runner := newTestRunner(&bytes.Buffer{}, WithLogger(log.NewWriterLogger(&logged, log.Warn)))

	assoc := map[string]any{"force": "maybe"}
	if err := runner.Run(leaf, []string{"site1"}, assoc, false); err != nil {
		t.Fatalf("Warnings must not abort: %v", err)
	}

	if len(calls) != 1 {
		t.Fatalf("Expected dispatch, got %d calls", len(calls))
	}
	if _, present := calls[0].assoc["force"]; present {
		t.Error("Dropped key must not reach the handler")
	}
	if !strings.Contains(logged.String(), "--force") {
		t.Errorf("Expected logged warning about --force, got %q", logged.String())
	}
}

func TestRunner_UnknownSynopsisTokensWarnOnly(t *testing.T) {
	var calls []capturedCall
	leaf := NewLeafNode("create", "<name> wat", captureHandler(&calls))

	var logged bytes.Buffer
	runner := newTestRunner(&bytes.Buffer{}, WithLogger(log.NewWriterLogger(&logged, log.Warn)))

	if err := runner.Run(leaf, []string{"site1"}, nil, false); err != nil {
		t.Fatalf("Malformed declaration must not block the command: %v", err)
	}
	if len(calls) != 1 {
		t.Error("Expected dispatch despite unknown synopsis token")
	}
	if !strings.Contains(logged.String(), "wat") {
		t.Errorf("Expected warning naming the token, got %q", logged.String())
	}
}

func TestRunner_DefaultsSatisfyRequiredAssoc(t *testing.T) {
	var calls []capturedCall
	leaf := NewLeafNode("create", "--url=<url>", captureHandler(&calls))

	runner := newTestRunner(&bytes.Buffer{}, WithDefaults(map[string]any{"url": "https://example.com"}))
	if err := runner.Run(leaf, nil, nil, false); err != nil {
		t.Fatalf("Default must satisfy required parameter: %v", err)
	}
	if len(calls) != 1 {
		t.Error("Expected dispatch")
	}
}

func TestRunner_UncheckedPositionals(t *testing.T) {
	var calls []capturedCall
	leaf := NewLeafNode("help", "[<add|remove>]", captureHandler(&calls), WithUncheckedPositionals())

	runner := newTestRunner(&bytes.Buffer{})
	if err := runner.Run(leaf, []string{"frobnicate"}, nil, false); err != nil {
		t.Fatalf("Exempted leaf must skip shape checks: %v", err)
	}
	if len(calls) != 1 {
		t.Error("Expected dispatch")
	}
}

func TestRunner_PromptFillsMissingArguments(t *testing.T) {
	var calls []capturedCall
	leaf := NewLeafNode("create", "<name> [--format=<format>] [--force]", captureHandler(&calls))

	prompter := &scriptedPrompter{responses: []string{"json", "Y"}}
	runner := newTestRunner(&bytes.Buffer{}, WithPrompter(prompter))

	if err := runner.Run(leaf, []string{"site1"}, map[string]any{}, true); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(calls) != 1 {
		t.Fatalf("Expected one dispatch, got %d", len(calls))
	}
	assoc := calls[0].assoc
	if assoc["format"] != "json" {
		t.Errorf("Expected format=json, got %v", assoc["format"])
	}
	if assoc["force"] != true {
		t.Errorf("Expected force=true, got %v", assoc["force"])
	}
}

func TestRunner_PromptFlagRequiresExactAffirmative(t *testing.T) {
	var calls []capturedCall
	leaf := NewLeafNode("create", "[--force]", captureHandler(&calls))

	prompter := &scriptedPrompter{responses: []string{"yes"}}
	runner := newTestRunner(&bytes.Buffer{}, WithPrompter(prompter))

	if err := runner.Run(leaf, nil, map[string]any{}, true); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, set := calls[0].assoc["force"]; set {
		t.Error("Only the exact affirmative token may set a flag")
	}
}

func TestRunner_PromptGenericLoop(t *testing.T) {
	var calls []capturedCall
	leaf := NewLeafNode("create", "[--<field>=<value>]", captureHandler(&calls))

	prompter := &scriptedPrompter{responses: []string{"color", "blue", "size", "large", ""}}
	runner := newTestRunner(&bytes.Buffer{}, WithPrompter(prompter))

	if err := runner.Run(leaf, nil, map[string]any{}, true); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	assoc := calls[0].assoc
	if assoc["color"] != "blue" || assoc["size"] != "large" {
		t.Errorf("Expected collected pairs, got %v", assoc)
	}
}

func TestRunner_PromptRepeatingPositionalSplits(t *testing.T) {
	var calls []capturedCall
	leaf := NewLeafNode("add", "[<file>...]", captureHandler(&calls))

	prompter := &scriptedPrompter{responses: []string{"a.txt b.txt c.txt"}}
	runner := newTestRunner(&bytes.Buffer{}, WithPrompter(prompter))

	if err := runner.Run(leaf, nil, map[string]any{}, true); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !reflect.DeepEqual(calls[0].args, []string{"a.txt", "b.txt", "c.txt"}) {
		t.Errorf("Expected split positional values, got %v", calls[0].args)
	}
}

func TestRunner_PromptCancellationKeepsPartialResult(t *testing.T) {
	var calls []capturedCall
	leaf := NewLeafNode("add", "[<a>] [<b>]", captureHandler(&calls))

	// One answer, then cancellation.
	prompter := &scriptedPrompter{responses: []string{"first"}}
	runner := newTestRunner(&bytes.Buffer{}, WithPrompter(prompter))

	if err := runner.Run(leaf, nil, map[string]any{}, true); err != nil {
		t.Fatalf("Cancellation must not be an error: %v", err)
	}

	if len(calls) != 1 {
		t.Fatal("Handler must still run with the partial result")
	}
	if !reflect.DeepEqual(calls[0].args, []string{"first"}) {
		t.Errorf("Expected partial args [first], got %v", calls[0].args)
	}
}

func TestRunner_DispatchResolvesPathAndAlias(t *testing.T) {
	var calls []capturedCall
	root := NewCompositeNode("")
	group := NewCompositeNode("cache")
	group.Add(NewLeafNode("remove", "<key>", captureHandler(&calls), WithAlias("rm")))
	root.Add(group)

	runner := newTestRunner(&bytes.Buffer{})
	if err := runner.Dispatch(root, []string{"cache", "rm", "some-key"}, nil, false); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if !reflect.DeepEqual(calls[0].args, []string{"some-key"}) {
		t.Errorf("Expected leaf to receive remaining args, got %v", calls[0].args)
	}

	if err := runner.Dispatch(root, []string{"nope"}, nil, false); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Expected ErrUnknownCommand, got %v", err)
	}

	var usage bytes.Buffer
	runner = newTestRunner(&usage)
	if err := runner.Dispatch(root, []string{"cache"}, nil, false); !errors.Is(err, ErrNotInvocable) {
		t.Errorf("Expected ErrNotInvocable for a group, got %v", err)
	}
	if !strings.Contains(usage.String(), "cache remove <key>") {
		t.Errorf("Expected group usage listing, got %q", usage.String())
	}
}
