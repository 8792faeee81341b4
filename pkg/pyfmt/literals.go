package pyfmt

import "strings"

// Span is the byte range [Start, End) of a triple-quoted string literal,
// delimiters included.
type Span struct {
	Start int
	End   int
	Delim string
}

// Multiline reports whether the literal spans more than one line of code.
func (s Span) Multiline(code string) bool {
	return strings.Contains(code[s.Start:s.End], "\n")
}

// Terminated reports whether the literal has its closing delimiter.
func (s Span) Terminated(code string) bool {
	lit := code[s.Start:s.End]
	return len(lit) >= 2*len(s.Delim) && strings.HasSuffix(lit, s.Delim)
}

// TripleQuotedSpans finds every triple-quoted literal in code. Single-line
// strings and comments are skipped so quotes inside them are never mistaken
// for delimiters, and backslash escapes are honoured inside literals.
func TripleQuotedSpans(code string) []Span {
	var spans []Span
	i := 0
	for i < len(code) {
		c := code[i]
		switch {
		case c == '#':
			for i < len(code) && code[i] != '\n' {
				i++
			}
		case c == '"' || c == '\'':
			if delim := strings.Repeat(string(c), 3); strings.HasPrefix(code[i:], delim) {
				end := scanTriple(code, i+3, delim)
				spans = append(spans, Span{Start: i, End: end, Delim: delim})
				i = end
				continue
			}
			i = scanString(code, i+1, c)
		default:
			i++
		}
	}
	return spans
}

// InLiteral reports whether the byte offset lies strictly inside one of the
// spans, i.e. after its first byte and before its last.
func InLiteral(spans []Span, offset int) bool {
	for _, s := range spans {
		if offset > s.Start && offset < s.End {
			return true
		}
		if s.Start >= offset {
			break
		}
	}
	return false
}

func scanTriple(code string, i int, delim string) int {
	for i < len(code) {
		if code[i] == '\\' {
			i += 2
			continue
		}
		if strings.HasPrefix(code[i:], delim) {
			return i + len(delim)
		}
		i++
	}
	return len(code)
}

// scanString skips a single-line string and returns the offset after its
// closing quote. Unterminated strings end at the line break.
func scanString(code string, i int, quote byte) int {
	for i < len(code) {
		switch code[i] {
		case '\\':
			i += 2
			continue
		case quote:
			return i + 1
		case '\n':
			return i
		}
		i++
	}
	return len(code)
}
