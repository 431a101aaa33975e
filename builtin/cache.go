package builtin

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mwantia/cmdkit"
	"github.com/mwantia/cmdkit/cache"
)

func registerCache(root *cmdkit.CompositeNode, store *cache.Cache, out io.Writer) {
	group := cmdkit.NewCompositeNode("cache")

	group.Add(cmdkit.NewLeafNode("info", "", cmdkit.HandlerFunc(func(args []string, assoc map[string]any) {
		entries, ok := store.Entries(context.Background())
		if !ok {
			fmt.Fprintln(out, "cache is disabled")
			return
		}

		var total int64
		for _, entry := range entries {
			total += entry.Size
		}
		fmt.Fprintf(out, "%d entries, %d bytes\n", len(entries), total)
	})))

	group.Add(cmdkit.NewLeafNode("clean", "", cmdkit.HandlerFunc(func(args []string, assoc map[string]any) {
		if store.Clean(context.Background()) {
			fmt.Fprintln(out, "cache cleaned")
		} else {
			fmt.Fprintln(out, "cache is disabled")
		}
	})))

	group.Add(cmdkit.NewLeafNode("get", "<key> [--ttl=<seconds>]", cmdkit.HandlerFunc(func(args []string, assoc map[string]any) {
		ttl := ttlOverride(assoc)
		data, ok := store.Read(context.Background(), args[0], ttl)
		if !ok {
			fmt.Fprintf(out, "no fresh entry for %q\n", args[0])
			return
		}
		out.Write(data)
		fmt.Fprintln(out)
	})))

	group.Add(cmdkit.NewLeafNode("set", "<key> <value>...", cmdkit.HandlerFunc(func(args []string, assoc map[string]any) {
		value := strings.Join(args[1:], " ")
		if store.Write(context.Background(), args[0], []byte(value)) {
			fmt.Fprintf(out, "stored %q\n", args[0])
		} else {
			fmt.Fprintf(out, "failed to store %q\n", args[0])
		}
	})))

	group.Add(cmdkit.NewLeafNode("remove", "<key>", cmdkit.HandlerFunc(func(args []string, assoc map[string]any) {
		if store.Remove(context.Background(), args[0]) {
			fmt.Fprintf(out, "removed %q\n", args[0])
		} else {
			fmt.Fprintf(out, "no entry for %q\n", args[0])
		}
	}), cmdkit.WithAlias("rm")))

	group.Add(cmdkit.NewLeafNode("import", "<key> <file>", cmdkit.HandlerFunc(func(args []string, assoc map[string]any) {
		if store.Import(context.Background(), args[0], args[1]) {
			fmt.Fprintf(out, "imported %q from %s\n", args[0], args[1])
		} else {
			fmt.Fprintf(out, "failed to import %q\n", args[0])
		}
	})))

	group.Add(cmdkit.NewLeafNode("export", "<key> <file>", cmdkit.HandlerFunc(func(args []string, assoc map[string]any) {
		if store.Export(context.Background(), args[0], args[1]) {
			fmt.Fprintf(out, "exported %q to %s\n", args[0], args[1])
		} else {
			fmt.Fprintf(out, "no entry for %q\n", args[0])
		}
	})))

	root.Add(group)
}

func ttlOverride(assoc map[string]any) time.Duration {
	raw, ok := assoc["ttl"].(string)
	if !ok {
		return 0
	}

	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
