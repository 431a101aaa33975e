package cmdkit

import "strings"

// ArgKind classifies a single synopsis token.
type ArgKind int

const (
	// KindPositional is an argument identified by position, e.g. "<name>".
	KindPositional ArgKind = iota
	// KindAssoc is a named "--key=<value>" argument.
	KindAssoc
	// KindFlag is a named boolean "--key" argument without a value.
	KindFlag
	// KindGeneric is a wildcard "--<field>=<value>" argument whose key is
	// not fixed in advance.
	KindGeneric
	// KindUnknown marks a token the parser could not classify.
	KindUnknown
)

func (k ArgKind) String() string {
	switch k {
	case KindPositional:
		return "positional"
	case KindAssoc:
		return "assoc"
	case KindFlag:
		return "flag"
	case KindGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// Argument is one parsed synopsis token.
type Argument struct {
	Kind ArgKind

	// Name is the key of an assoc or flag argument. Positional and generic
	// tokens carry no fixed name.
	Name string

	// Token preserves the original textual form for prompts and usage strings.
	Token string

	// Optional is set when the token was wrapped in "[...]".
	Optional bool

	// Repeating is set on a positional token ending in "...".
	Repeating bool
}

// ParseSynopsis parses a synopsis string into an ordered argument sequence.
// Tokens split on whitespace; decoration determines the kind. The parse
// never fails: tokens that cannot be classified become KindUnknown entries
// so the validator can report them as warnings instead of blocking an
// otherwise working command.
func ParseSynopsis(synopsis string) []Argument {
	var spec []Argument

	for _, token := range strings.Fields(synopsis) {
		arg := Argument{Token: token}

		body := token
		if strings.HasPrefix(body, "[") && strings.HasSuffix(body, "]") && len(body) > 2 {
			arg.Optional = true
			body = body[1 : len(body)-1]
		}

		switch {
		case strings.HasPrefix(body, "--"):
			rest := body[2:]
			if eq := strings.Index(rest, "="); eq >= 0 {
				key := rest[:eq]
				switch {
				case strings.HasPrefix(key, "<"):
					arg.Kind = KindGeneric
				case key != "":
					arg.Kind = KindAssoc
					arg.Name = key
				default:
					arg.Kind = KindUnknown
				}
			} else if rest != "" {
				arg.Kind = KindFlag
				arg.Name = rest
			} else {
				arg.Kind = KindUnknown
			}

		case isPlaceholder(body):
			arg.Kind = KindPositional
			arg.Repeating = strings.HasSuffix(body, "...")

		case strings.Contains(body, "="):
			arg.Kind = KindGeneric

		default:
			arg.Kind = KindUnknown
		}

		spec = append(spec, arg)
	}

	return spec
}

func isPlaceholder(body string) bool {
	body = strings.TrimSuffix(body, "...")
	return len(body) > 2 && strings.HasPrefix(body, "<") && strings.HasSuffix(body, ">")
}

// ExtractSynopsis recovers a synopsis from a long-form description when no
// explicit synopsis was registered. Documentation blocks list one token per
// line, each followed by an indented description line ending in a colon; the
// token lines are collected in order and joined with spaces. Best effort
// only, used when the primary parse path finds nothing.
func ExtractSynopsis(longdesc string) string {
	var tokens []string
	var prev string

	for _, line := range strings.Split(longdesc, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasSuffix(trimmed, ":") && prev != "" {
			tokens = append(tokens, prev)
		}
		if trimmed != "" {
			prev = trimmed
		}
	}

	return strings.Join(tokens, " ")
}
