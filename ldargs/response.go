package ldargs

import (
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/js-bindgen-ld/errors"
)

// maxResponseDepth bounds nested response file expansion.
const maxResponseDepth = 32

// ExpandResponseFiles replaces every `@path` token with the arguments read
// from path. Files are tokenized with GNU quoting rules and may nest.
func ExpandResponseFiles(argv []string) ([]string, error) {
	return expand(argv, 0)
}

func expand(argv []string, depth int) ([]string, error) {
	if depth > maxResponseDepth {
		return nil, errors.New(errors.PhaseArgs, errors.KindInvalidInput).
			Detail("response files nested deeper than %d levels", maxResponseDepth).
			Build()
	}

	out := make([]string, 0, len(argv))
	for _, arg := range argv {
		path, ok := strings.CutPrefix(arg, "@")
		if !ok || path == "" {
			out = append(out, arg)
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.IO(errors.PhaseArgs, path, err)
		}
		Logger().Debug("expanding response file", zap.String("path", path))

		nested, err := expand(TokenizeGNU(string(data)), depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, nested...)
	}
	return out, nil
}

// TokenizeGNU splits s into arguments the way GNU tools read response files:
// whitespace separates arguments, single and double quotes group, and a
// backslash escapes the next character outside single quotes.
func TokenizeGNU(s string) []string {
	var (
		args    []string
		cur     strings.Builder
		inToken bool
	)

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			if inToken {
				args = append(args, cur.String())
				cur.Reset()
				inToken = false
			}
		case c == '\\':
			inToken = true
			if i+1 < len(s) {
				i++
				cur.WriteByte(s[i])
			}
		case c == '\'' || c == '"':
			inToken = true
			quote := c
			for i++; i < len(s) && s[i] != quote; i++ {
				if quote == '"' && s[i] == '\\' && i+1 < len(s) {
					i++
				}
				cur.WriteByte(s[i])
			}
		default:
			inToken = true
			cur.WriteByte(c)
		}
	}
	if inToken {
		args = append(args, cur.String())
	}
	return args
}
