package ldargs

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/js-bindgen-ld/errors"
)

// Invocation is the structured view of a backing linker command line.
// It is immutable after Parse.
type Invocation struct {
	values  map[string][]string
	present map[string]bool
	args    []string
	inputs  []string
	unknown []string
}

// Parse classifies argv (without the program name). Tokens not starting with
// a dash are inputs. Option names are matched longest prefix first, the way
// LLVM's option parser does.
func Parse(argv []string) (*Invocation, error) {
	inv := &Invocation{
		values:  make(map[string][]string),
		present: make(map[string]bool),
		args:    append([]string(nil), argv...),
	}

	for i := 0; i < len(argv); i++ {
		arg := argv[i]

		var stripped string
		switch {
		case strings.HasPrefix(arg, "--"):
			stripped = arg[2:]
		case strings.HasPrefix(arg, "-"):
			stripped = arg[1:]
		default:
			inv.inputs = append(inv.inputs, arg)
			continue
		}

		name, kind, rest, ok := match(stripped)
		if !ok {
			// An unknown option taking a separate value leaves that value to
			// be read as an input.
			Logger().Warn("encountered unknown wasm-ld option", zap.String("option", arg))
			inv.unknown = append(inv.unknown, arg)
			continue
		}

		inv.present[name] = true

		next := func() (string, error) {
			if i+1 >= len(argv) {
				return "", errors.New(errors.PhaseArgs, errors.KindInvalidInput).
					Path(arg).
					Detail("`%s` argument should have a value", arg).
					Build()
			}
			i++
			return argv[i], nil
		}

		var value string
		switch kind {
		case KindFlag:
			continue
		case KindSeparate:
			v, err := next()
			if err != nil {
				return nil, err
			}
			value = v
		case KindJoined, KindCommaJoined:
			value = rest
		case KindJoinedOrSeparate:
			if rest != "" {
				value = rest
				break
			}
			v, err := next()
			if err != nil {
				return nil, err
			}
			value = v
		}
		inv.values[name] = append(inv.values[name], value)
	}

	return inv, nil
}

// match finds the longest known option name that prefixes s.
func match(s string) (name string, kind Kind, rest string, ok bool) {
	for end := len(s); end >= 0; end-- {
		if k, found := options[s[:end]]; found {
			return s[:end], k, s[end:], true
		}
	}
	return "", 0, "", false
}

// Single returns the one value recorded for name. ok is false when the option
// was not given. An option given without a value, or more than once, is an
// error.
func (inv *Invocation) Single(name string) (value string, ok bool, err error) {
	if !inv.present[name] {
		return "", false, nil
	}
	values := inv.values[name]
	switch len(values) {
	case 1:
		return values[0], true, nil
	case 0:
		return "", false, errors.New(errors.PhaseArgs, errors.KindInvalidInput).
			Path(name).
			Detail("found unexpected empty argument for `%s`", name).
			Build()
	default:
		return "", false, errors.New(errors.PhaseArgs, errors.KindInvalidInput).
			Path(name).
			Value(values).
			Detail("found unexpected multiple arguments of `%s`", name).
			Build()
	}
}

// Flag reports whether the value-less option name was given.
func (inv *Invocation) Flag(name string) (bool, error) {
	if !inv.present[name] {
		return false, nil
	}
	if values := inv.values[name]; len(values) > 0 {
		return false, errors.New(errors.PhaseArgs, errors.KindInvalidInput).
			Path(name).
			Value(values).
			Detail("found unexpected values for argument `%s`", name).
			Build()
	}
	return true, nil
}

// Values returns every value recorded for name in command-line order.
// Comma joined options are split into their elements.
func (inv *Invocation) Values(name string) []string {
	values := inv.values[name]
	if kind, ok := options[name]; ok && kind == KindCommaJoined {
		var split []string
		for _, v := range values {
			split = append(split, strings.Split(v, ",")...)
		}
		return split
	}
	return append([]string(nil), values...)
}

// Has reports whether name was given in any form.
func (inv *Invocation) Has(name string) bool {
	return inv.present[name]
}

// Inputs returns the positional inputs in command-line order.
func (inv *Invocation) Inputs() []string {
	return append([]string(nil), inv.inputs...)
}

// Unknown returns the options that did not match the option table.
func (inv *Invocation) Unknown() []string {
	return append([]string(nil), inv.unknown...)
}

// Args returns the parsed command line.
func (inv *Invocation) Args() []string {
	return append([]string(nil), inv.args...)
}

// Append returns the parsed command line followed by extra.
func (inv *Invocation) Append(extra ...string) []string {
	out := make([]string, 0, len(inv.args)+len(extra))
	out = append(out, inv.args...)
	return append(out, extra...)
}

func (inv *Invocation) String() string {
	return fmt.Sprintf("wasm-ld %s", strings.Join(inv.args, " "))
}
