package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mwantia/cmdkit"
	"github.com/mwantia/cmdkit/builtin"
	"github.com/mwantia/cmdkit/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := LoadConfig(os.Getenv("CMDKIT_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	level, err := log.Parse(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	logger := log.NewLogger("cmdkit", level, cfg.LogFile, false)

	store, err := openCache(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open cache: %v\n", err)
		return 1
	}
	defer store.Close(context.Background())

	root := cmdkit.NewCompositeNode("")
	builtin.InitBuiltin(root, store, os.Stdout)

	args, assoc := SplitArgs(os.Args[1:])

	// The prompt flag belongs to the pipeline, not to any one command.
	interactive := false
	if _, ok := assoc["prompt"]; ok {
		interactive = true
		delete(assoc, "prompt")
	}

	if len(args) == 0 {
		for _, child := range root.Children() {
			fmt.Fprintln(os.Stdout, child.Usage("usage:"))
		}
		return 1
	}

	defaults := make(map[string]any, len(cfg.Defaults))
	for key, value := range cfg.Defaults {
		defaults[key] = value
	}

	runner := cmdkit.NewRunner(
		cmdkit.WithLogger(logger),
		cmdkit.WithPrompter(cmdkit.NewLinePrompter(os.Stdin, os.Stdout)),
		cmdkit.WithUsageWriter(os.Stdout),
		cmdkit.WithDefaults(defaults),
	)

	if err := runner.Dispatch(root, args, assoc, interactive); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}
