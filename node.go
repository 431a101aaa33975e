package cmdkit

import "strings"

// Handler is the opaque unit of behavior behind a leaf command. The engine
// validates and normalizes arguments, then hands them over; it never
// inspects what the handler does with them or whether it succeeded.
type Handler interface {
	Run(args []string, assoc map[string]any)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(args []string, assoc map[string]any)

func (f HandlerFunc) Run(args []string, assoc map[string]any) { f(args, assoc) }

// Node is a single entry in the command tree. Composite nodes group
// subcommands; leaf nodes are invocable. The tree is built once during
// registration and is read-only afterwards.
type Node interface {
	// Name returns the command identifier.
	Name() string

	// Alias returns the alternative lookup name, empty when none is set.
	Alias() string

	// Path returns the full invocation path from the root to this node.
	Path() string

	// CanHaveSubcommands reports whether this node groups subcommands.
	CanHaveSubcommands() bool

	// Usage returns a usage line prefixed with the given string.
	Usage(prefix string) string
}

type baseNode struct {
	name   string
	parent Node
}

func (b *baseNode) Name() string { return b.name }

func (b *baseNode) Path() string {
	var parts []string
	if b.parent != nil {
		if p := b.parent.Path(); p != "" {
			parts = append(parts, p)
		}
	}
	if b.name != "" {
		parts = append(parts, b.name)
	}
	return strings.Join(parts, " ")
}

// CompositeNode groups subcommands under a shared name.
type CompositeNode struct {
	baseNode

	order    []string
	children map[string]Node
}

func NewCompositeNode(name string) *CompositeNode {
	return &CompositeNode{
		baseNode: baseNode{name: name},
		children: make(map[string]Node),
	}
}

func (c *CompositeNode) CanHaveSubcommands() bool { return true }

func (c *CompositeNode) Alias() string { return "" }

func (c *CompositeNode) Usage(prefix string) string {
	return strings.TrimSpace(strings.Join([]string{prefix, c.Path(), "<command>"}, " "))
}

// Add registers a child under its name. Registering the same name twice
// replaces the earlier child but keeps its position.
func (c *CompositeNode) Add(child Node) {
	switch n := child.(type) {
	case *CompositeNode:
		n.parent = c
	case *LeafNode:
		n.parent = c
	}

	if _, exists := c.children[child.Name()]; !exists {
		c.order = append(c.order, child.Name())
	}
	c.children[child.Name()] = child
}

// Find resolves a child by exact name first, falling back to the alias of
// any leaf child when no name matches.
func (c *CompositeNode) Find(name string) (Node, bool) {
	if child, ok := c.children[name]; ok {
		return child, true
	}

	for _, key := range c.order {
		if leaf, ok := c.children[key].(*LeafNode); ok && leaf.alias != "" && leaf.alias == name {
			return leaf, true
		}
	}

	return nil, false
}

// Children returns every child in registration order.
func (c *CompositeNode) Children() []Node {
	nodes := make([]Node, 0, len(c.order))
	for _, name := range c.order {
		nodes = append(nodes, c.children[name])
	}
	return nodes
}

// LeafNode is an invocable command holding a synopsis, an optional alias
// and the handler dispatched after validation.
type LeafNode struct {
	baseNode

	alias    string
	synopsis string
	spec     []Argument
	handler  Handler

	uncheckedPositionals bool
}

type LeafOption func(*LeafNode)

// WithAlias sets an alternative lookup name resolved by the parent node.
func WithAlias(alias string) LeafOption {
	return func(l *LeafNode) {
		l.alias = alias
	}
}

// WithUncheckedPositionals disables positional shape validation for this
// leaf. Meant for commands that echo back arbitrary positional values, like
// a help command invoked with a partial or misspelled command path.
func WithUncheckedPositionals() LeafOption {
	return func(l *LeafNode) {
		l.uncheckedPositionals = true
	}
}

// WithLongDescription supplies documentation text used to synthesize a
// synopsis when none was registered explicitly.
func WithLongDescription(longdesc string) LeafOption {
	return func(l *LeafNode) {
		if l.synopsis == "" {
			l.synopsis = ExtractSynopsis(longdesc)
			l.spec = ParseSynopsis(l.synopsis)
		}
	}
}

func NewLeafNode(name, synopsis string, handler Handler, opts ...LeafOption) *LeafNode {
	leaf := &LeafNode{
		baseNode: baseNode{name: name},
		synopsis: synopsis,
		spec:     ParseSynopsis(synopsis),
		handler:  handler,
	}

	for _, opt := range opts {
		opt(leaf)
	}

	return leaf
}

func (l *LeafNode) CanHaveSubcommands() bool { return false }

func (l *LeafNode) Alias() string { return l.alias }

// Synopsis returns the declared synopsis text.
func (l *LeafNode) Synopsis() string { return l.synopsis }

// Spec returns the parsed argument sequence.
func (l *LeafNode) Spec() []Argument { return l.spec }

func (l *LeafNode) Handler() Handler { return l.handler }

func (l *LeafNode) Usage(prefix string) string {
	return strings.TrimSpace(strings.Join([]string{prefix, l.Path(), l.synopsis}, " "))
}
