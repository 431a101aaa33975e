package builtin

import (
	"fmt"
	"io"

	"github.com/mwantia/cmdkit"
)

func registerHelp(root *cmdkit.CompositeNode, out io.Writer) {
	// Help echoes back whatever command path was typed, even a partial or
	// misspelled one, so positional shape checks are disabled for it.
	root.Add(cmdkit.NewLeafNode("help", "[<command>...]", cmdkit.HandlerFunc(func(args []string, assoc map[string]any) {
		var node cmdkit.Node = root

		for _, name := range args {
			composite, ok := node.(*cmdkit.CompositeNode)
			if !ok {
				break
			}
			child, found := composite.Find(name)
			if !found {
				fmt.Fprintf(out, "unknown command: %s\n", name)
				node = root
				break
			}
			node = child
		}

		if composite, ok := node.(*cmdkit.CompositeNode); ok {
			for _, child := range composite.Children() {
				fmt.Fprintln(out, child.Usage("usage:"))
			}
			return
		}
		fmt.Fprintln(out, node.Usage("usage:"))
	}), cmdkit.WithUncheckedPositionals()))
}
