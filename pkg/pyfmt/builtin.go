package pyfmt

import (
	"context"
	"strings"
)

// Builtin is an Engine that needs nothing outside the process. It validates
// the code and normalises whitespace only: trailing spaces outside string
// literals, leading blank lines, runs of more than two blank lines, and the
// final newline. Formatting its own output again returns it unchanged.
type Builtin struct{}

var _ Engine = Builtin{}

func (Builtin) Format(ctx context.Context, code string, _ Style) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := Validate(code); err != nil {
		return "", err
	}
	return normalizeWhitespace(code), nil
}

func normalizeWhitespace(code string) string {
	spans := TripleQuotedSpans(code)

	var out []string
	blanks := 0
	offset := 0
	for _, line := range strings.SplitAfter(code, "\n") {
		if line == "" {
			continue
		}
		start := offset
		offset += len(line)

		body := strings.TrimSuffix(line, "\n")
		// the line break itself sits inside a literal: leave the line alone
		if InLiteral(spans, start+len(body)) {
			out = append(out, body)
			blanks = 0
			continue
		}
		if InLiteral(spans, start) {
			// closing line of a literal; trailing space after the delimiter
			// is still ours to strip
			out = append(out, strings.TrimRight(body, " \t"))
			blanks = 0
			continue
		}

		body = strings.TrimRight(body, " \t")
		if body == "" {
			if len(out) == 0 {
				continue
			}
			blanks++
			if blanks > 2 {
				continue
			}
		} else {
			blanks = 0
		}
		out = append(out, body)
	}

	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, "\n") + "\n"
}
