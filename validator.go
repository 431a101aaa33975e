package cmdkit

import (
	"fmt"
	"sort"
	"strings"
)

// Validator checks real invocation arguments against one parsed synopsis.
type Validator struct {
	spec []Argument
}

func NewValidator(spec []Argument) *Validator {
	return &Validator{spec: spec}
}

// UnknownTokens returns the original form of every synopsis token the parser
// could not classify. Callers log one warning per entry; a malformed
// declaration never blocks usage of the command.
func (v *Validator) UnknownTokens() []string {
	var tokens []string
	for _, arg := range v.spec {
		if arg.Kind == KindUnknown {
			tokens = append(tokens, arg.Token)
		}
	}
	return tokens
}

// EnoughPositionals reports whether the supplied positional arguments cover
// every required positional slot. A repeating spec satisfies all remaining
// required slots from its position onward.
func (v *Validator) EnoughPositionals(args []string) bool {
	required := 0
	for _, arg := range v.spec {
		if arg.Kind != KindPositional || arg.Optional {
			continue
		}
		required++
		if arg.Repeating {
			break
		}
	}
	return len(args) >= required
}

// InvalidPositionals returns the supplied positional values that violate a
// constraint declared in the spec. The only constraint currently understood
// is an alternatives token like "<add|remove>", which restricts the value to
// one of the listed choices.
func (v *Validator) InvalidPositionals(args []string) []string {
	var invalid []string

	index := 0
	for _, arg := range v.spec {
		if arg.Kind != KindPositional {
			continue
		}
		if index >= len(args) {
			break
		}

		choices := tokenChoices(arg.Token)

		if arg.Repeating {
			// The repeating spec consumes every remaining value.
			for ; index < len(args); index++ {
				if len(choices) > 0 && !containsString(choices, args[index]) {
					invalid = append(invalid, args[index])
				}
			}
			break
		}

		if len(choices) > 0 && !containsString(choices, args[index]) {
			invalid = append(invalid, args[index])
		}
		index++
	}

	return invalid
}

// UnknownPositionals returns extra positional values beyond what the
// sequence declares. Only a repeating spec in final position lifts the
// upper bound; one followed by more positionals still counts as a single
// slot.
func (v *Validator) UnknownPositionals(args []string) []string {
	declared := 0
	lastRepeating := false
	for _, arg := range v.spec {
		if arg.Kind != KindPositional {
			continue
		}
		declared++
		lastRepeating = arg.Repeating
	}
	if lastRepeating {
		return nil
	}

	if len(args) <= declared {
		return nil
	}
	return args[declared:]
}

// UnknownAssoc returns the keys in the caller's map that no assoc, flag or
// generic spec accounts for. A generic spec accepts any key.
func (v *Validator) UnknownAssoc(assoc map[string]any) []string {
	known := make(map[string]bool)
	for _, arg := range v.spec {
		switch arg.Kind {
		case KindGeneric:
			return nil
		case KindAssoc, KindFlag:
			known[arg.Name] = true
		}
	}

	var unknown []string
	for key := range assoc {
		if !known[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// ValidateAssoc checks the caller's named arguments against every declared
// assoc and flag spec. Ambient defaults are passed in explicitly and satisfy
// a missing key without shape checking. Fatal messages abort the invocation;
// warnings are logged and the offending keys returned in toDrop must be
// removed from the map before dispatch.
func (v *Validator) ValidateAssoc(assoc, defaults map[string]any) (fatals, warnings, toDrop []string) {
	for _, arg := range v.spec {
		switch arg.Kind {
		case KindAssoc:
			value, ok := assoc[arg.Name]
			if !ok {
				if _, has := defaults[arg.Name]; has {
					continue
				}
				if !arg.Optional {
					fatals = append(fatals, fmt.Sprintf("missing --%s parameter", arg.Name))
				}
				continue
			}
			// A bare "--key" tokenizes to a boolean true, which is not a value.
			if _, bare := value.(bool); bare {
				if arg.Optional {
					warnings = append(warnings, fmt.Sprintf("--%s parameter needs a value", arg.Name))
					toDrop = append(toDrop, arg.Name)
				} else {
					fatals = append(fatals, fmt.Sprintf("--%s parameter needs a value", arg.Name))
				}
			}

		case KindFlag:
			value, ok := assoc[arg.Name]
			if !ok {
				if _, has := defaults[arg.Name]; has {
					continue
				}
				if !arg.Optional {
					fatals = append(fatals, fmt.Sprintf("missing --%s flag", arg.Name))
				}
				continue
			}
			if !isBooleanLike(value) {
				warnings = append(warnings, fmt.Sprintf("--%s is a flag and does not take a value", arg.Name))
				toDrop = append(toDrop, arg.Name)
			}
		}
	}

	return fatals, warnings, toDrop
}

// tokenChoices extracts the alternatives from a token like "[<add|remove>]".
// Tokens without a "|" declare no constraint.
func tokenChoices(token string) []string {
	body := strings.Trim(token, "[]")
	body = strings.TrimSuffix(body, "...")
	body = strings.Trim(body, "<>")
	if !strings.Contains(body, "|") {
		return nil
	}
	return strings.Split(body, "|")
}

func isBooleanLike(value any) bool {
	switch v := value.(type) {
	case bool:
		return true
	case string:
		switch strings.ToLower(v) {
		case "true", "false", "0", "1", "yes", "no":
			return true
		}
	}
	return false
}

func containsString(list []string, value string) bool {
	for _, entry := range list {
		if entry == value {
			return true
		}
	}
	return false
}
