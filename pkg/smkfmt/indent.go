package smkfmt

import (
	"strings"

	"github.com/vito/smkfmt/pkg/pyfmt"
)

// IndentPreservingLiterals shifts every line of code right by depth levels.
//
// Multi-line triple-quoted literals are first stripped of their common
// leading whitespace and then shifted as one unit, so their internal relative
// indentation is kept no matter how deeply they were indented before. The line
// holding the opening delimiter does not count towards that whitespace, and
// the rest of the literal lines up with that line's own indentation.
// Single-line literals are indented like any other text.
func IndentPreservingLiterals(code string, depth int) string {
	if depth <= 0 {
		return code
	}
	prefix := indentation(depth)

	var sb strings.Builder
	pos := 0
	for _, span := range pyfmt.TripleQuotedSpans(code) {
		sb.WriteString(indentLines(code[pos:span.Start], prefix, atLineStart(code, pos)))

		lit := code[span.Start:span.End]
		if span.Multiline(code) && span.Terminated(code) {
			d := span.Delim
			lit = d + dedentLiteral(lit[len(d):len(lit)-len(d)]) + d
			first, rest, _ := strings.Cut(lit, "\n")
			sb.WriteString(indentLines(first+"\n", prefix, atLineStart(code, span.Start)))
			sb.WriteString(indentLines(rest, prefix+lineIndent(code, span.Start), true))
		} else {
			sb.WriteString(indentLines(lit, prefix, atLineStart(code, span.Start)))
		}
		pos = span.End
	}
	sb.WriteString(indentLines(code[pos:], prefix, atLineStart(code, pos)))
	return sb.String()
}

// lineIndent returns the leading whitespace of the line holding offset.
func lineIndent(code string, offset int) string {
	start := strings.LastIndexByte(code[:offset], '\n') + 1
	line := code[start:offset]
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

func atLineStart(code string, offset int) bool {
	return offset == 0 || code[offset-1] == '\n'
}

// indentLines prefixes every line of text except blank ones. The first line
// is only prefixed when it starts a line of the surrounding code. A trailing
// fragment without a newline continues into the next piece and is always
// prefixed, even when it is only whitespace.
func indentLines(text, prefix string, first bool) string {
	var sb strings.Builder
	for i, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		blank := strings.HasSuffix(line, "\n") && strings.TrimSpace(line) == ""
		if (i > 0 || first) && !blank {
			sb.WriteString(prefix)
		}
		sb.WriteString(line)
	}
	return sb.String()
}

// dedentLiteral removes the whitespace common to every line of a literal
// body after the first. The last line holds the closing delimiter, so its
// indentation counts even when it is otherwise blank. Other whitespace-only
// lines are emptied and do not count.
func dedentLiteral(body string) string {
	lines := strings.Split(body, "\n")
	if len(lines) < 2 {
		return body
	}
	last := len(lines) - 1

	margin, found := "", false
	for i, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" && i+1 != last {
			continue
		}
		ws := line[:len(line)-len(trimmed)]
		if !found {
			margin, found = ws, true
			continue
		}
		margin = commonPrefix(margin, ws)
	}

	for i := 1; i < len(lines); i++ {
		if i != last && strings.TrimLeft(lines[i], " \t") == "" {
			lines[i] = ""
			continue
		}
		lines[i] = strings.TrimPrefix(lines[i], margin)
	}
	return strings.Join(lines, "\n")
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
