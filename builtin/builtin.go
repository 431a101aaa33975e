// Package builtin provides the command set shipped with the cmdkit CLI.
// Every command is an ordinary handler behind the dispatch engine; the
// engine itself stays ignorant of what they do.
package builtin

import (
	"io"

	"github.com/mwantia/cmdkit"
	"github.com/mwantia/cmdkit/cache"
)

// InitBuiltin registers the builtin command set on the root node. The tree
// is considered frozen once this returns.
func InitBuiltin(root *cmdkit.CompositeNode, store *cache.Cache, out io.Writer) {
	registerCache(root, store, out)
	registerDB(root, out)
	registerHelp(root, out)
}
