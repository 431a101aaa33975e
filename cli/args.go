package main

import "strings"

// SplitArgs separates raw argv into the shape the dispatch engine consumes:
// a positional list and an assoc map. "--key=value" becomes an assoc entry,
// a bare "--key" becomes a boolean true, and everything after a lone "--"
// is taken verbatim as positional. Later occurrences of the same key
// overwrite earlier ones, matching ordinary map semantics.
func SplitArgs(raw []string) ([]string, map[string]any) {
	args := []string{}
	assoc := make(map[string]any)

	for i := 0; i < len(raw); i++ {
		arg := raw[i]

		if arg == "--" {
			args = append(args, raw[i+1:]...)
			break
		}

		if strings.HasPrefix(arg, "--") && len(arg) > 2 {
			key, value, hasValue := parseLongFlag(arg)
			if hasValue {
				assoc[key] = value
			} else {
				assoc[key] = true
			}
			continue
		}

		args = append(args, arg)
	}

	return args, assoc
}

func parseLongFlag(arg string) (key, value string, hasValue bool) {
	arg = strings.TrimPrefix(arg, "--")
	if idx := strings.Index(arg, "="); idx >= 0 {
		return arg[:idx], arg[idx+1:], true
	}
	return arg, "", false
}
