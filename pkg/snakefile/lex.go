package snakefile

import "strings"

// tabWidth is the indentation width of a tab character.
const tabWidth = 4

// logicalLine is one statement-sized piece of the file: a physical line
// plus every line it continues onto through open brackets, unterminated
// triple-quoted strings or a trailing backslash.
type logicalLine struct {
	// Line is the 1-indexed line the statement starts on.
	Line   int
	Indent int
	Lines  []string
	// InLiteral marks physical lines that start inside a triple-quoted
	// string, where leading whitespace is content.
	InLiteral []bool
}

func (l logicalLine) blank() bool {
	return len(l.Lines) == 1 && strings.TrimSpace(l.Lines[0]) == ""
}

func (l logicalLine) comment() bool {
	return strings.HasPrefix(l.head(), "#")
}

// head is the first physical line without its indentation.
func (l logicalLine) head() string {
	return strings.TrimLeft(l.Lines[0], " \t")
}

func (l logicalLine) text() string {
	return strings.Join(l.Lines, "\n")
}

// lexState is carried from one physical line to the next.
type lexState struct {
	depth  int
	triple string
}

func (s lexState) open() bool {
	return s.depth > 0 || s.triple != ""
}

// splitLines groups src into logical lines.
func splitLines(src string) []logicalLine {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	physical := strings.Split(strings.TrimSuffix(src, "\n"), "\n")
	if src == "" {
		return nil
	}

	var out []logicalLine
	var cur *logicalLine
	var state lexState
	for i, line := range physical {
		inLiteral := state.triple != ""
		if cur == nil {
			out = append(out, logicalLine{Line: i + 1, Indent: indentWidth(line)})
			cur = &out[len(out)-1]
		}
		cur.Lines = append(cur.Lines, line)
		cur.InLiteral = append(cur.InLiteral, inLiteral)

		var backslash bool
		state, backslash = scanLine(line, state)
		if !state.open() && !backslash {
			cur = nil
		}
	}
	return out
}

// scanLine advances the lexer over one physical line. It reports whether the
// line ends with a backslash continuation.
func scanLine(line string, state lexState) (lexState, bool) {
	i := 0
	for i < len(line) {
		if state.triple != "" {
			switch {
			case line[i] == '\\':
				i += 2
			case strings.HasPrefix(line[i:], state.triple):
				i += len(state.triple)
				state.triple = ""
			default:
				i++
			}
			continue
		}

		switch c := line[i]; c {
		case '#':
			return state, false
		case '"', '\'':
			if delim := strings.Repeat(string(c), 3); strings.HasPrefix(line[i:], delim) {
				state.triple = delim
				i += 3
				continue
			}
			i = skipString(line, i+1, c)
		case '(', '[', '{':
			state.depth++
			i++
		case ')', ']', '}':
			if state.depth > 0 {
				state.depth--
			}
			i++
		case '\\':
			if i == len(line)-1 {
				return state, true
			}
			i += 2
		default:
			i++
		}
	}
	return state, false
}

// skipString returns the offset after a single-quoted string that started
// before i, or the end of the line if it is not closed.
func skipString(line string, i int, quote byte) int {
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case quote:
			return i + 1
		default:
			i++
		}
	}
	return len(line)
}

// splitComment separates a trailing comment from a single line of code.
// The comment is returned with its '#'.
func splitComment(line string) (string, string) {
	i := 0
	for i < len(line) {
		switch c := line[i]; c {
		case '#':
			return strings.TrimRight(line[:i], " \t"), strings.TrimRight(line[i:], " \t")
		case '"', '\'':
			if delim := strings.Repeat(string(c), 3); strings.HasPrefix(line[i:], delim) {
				end := strings.Index(line[i+3:], delim)
				if end < 0 {
					return line, ""
				}
				i += 3 + end + 3
				continue
			}
			i = skipString(line, i+1, c)
		default:
			i++
		}
	}
	return strings.TrimRight(line, " \t"), ""
}

func indentWidth(line string) int {
	w := 0
	for _, c := range line {
		switch c {
		case ' ':
			w++
		case '\t':
			w += tabWidth
		default:
			return w
		}
	}
	return w
}

// dedent removes up to width columns of leading whitespace.
func dedent(line string, width int) string {
	w := 0
	for i, c := range line {
		if w >= width {
			return line[i:]
		}
		switch c {
		case ' ':
			w++
		case '\t':
			w += tabWidth
		default:
			return line[i:]
		}
	}
	return ""
}
