package snakefile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vito/smkfmt/pkg/smkfmt"
)

// SyntaxError reports workflow syntax that could not be parsed.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("L%d: %s", e.Line, e.Msg)
}

var (
	headerRe = regexp.MustCompile(`^([A-Za-z_]\w*)(?:[ \t]+([A-Za-z_]\w*))?[ \t]*:(.*)$`)
	useRe    = regexp.MustCompile(`^use[ \t]+rule\b`)
)

// header is a "keyword [name]:" line.
type header struct {
	word   string
	name   string
	indent int
	line   int
	// rest is the text after the colon followed by any lines the statement
	// continues onto. The first entry keeps its column.
	rest []string
	// comment is the header's own comment, set only when nothing else
	// follows the colon.
	comment string
}

func (h header) empty() bool {
	return len(h.rest) == 1 && strings.TrimSpace(h.rest[0]) == ""
}

func parseHeader(l logicalLine) (header, bool) {
	m := headerRe.FindStringSubmatch(l.head())
	if m == nil {
		return header{}, false
	}
	h := header{word: m[1], name: m[2], indent: l.Indent, line: l.Line}

	after := m[3]
	if len(l.Lines) == 1 {
		if code, comment := splitComment(after); strings.TrimSpace(code) == "" {
			h.comment = spaceComment(comment)
			after = ""
		}
	}
	value := strings.TrimLeft(after, " \t")
	if value != "" {
		value = strings.Repeat(" ", len(l.Lines[0])-len(value)) + value
	}
	h.rest = append([]string{value}, l.Lines[1:]...)
	return h, true
}

func spaceComment(comment string) string {
	if comment == "" {
		return ""
	}
	return "  " + comment
}

func indent(depth int) string {
	return strings.Repeat("    ", depth)
}

type parser struct {
	lines  []logicalLine
	pos    int
	events []smkfmt.Event
}

// Parse scans a workflow file into the events a smkfmt.Formatter consumes.
func Parse(src string) ([]smkfmt.Event, error) {
	p := &parser{lines: splitLines(src)}
	for p.pos < len(p.lines) {
		if err := p.parseTopLevel(); err != nil {
			return nil, err
		}
	}
	return p.events, nil
}

func (p *parser) emit(ev smkfmt.Event) {
	p.events = append(p.events, ev)
}

// topLevelKeyword reports whether l starts a top-level section.
func topLevelKeyword(l logicalLine) (header, keyword, bool) {
	if l.Indent != 0 || l.blank() || l.comment() {
		return header{}, keyword{}, false
	}
	h, ok := parseHeader(l)
	if !ok {
		return header{}, keyword{}, false
	}
	kw, ok := topLevelKeywords[h.word]
	if !ok || (h.name != "" && !kw.named) {
		return header{}, keyword{}, false
	}
	return h, kw, true
}

func (p *parser) parseTopLevel() error {
	l := p.lines[p.pos]
	if l.Indent == 0 && useRe.MatchString(l.head()) {
		return p.parseUse(l)
	}
	if h, kw, ok := topLevelKeyword(l); ok {
		p.pos++
		end := p.bodyEnd(h.indent, len(p.lines))
		return p.parseKeyword(h, kw, end, 0, "")
	}
	p.parseCode()
	return nil
}

// parseCode collects plain code up to the next top-level section.
func (p *parser) parseCode() {
	for p.pos < len(p.lines) && p.lines[p.pos].blank() {
		p.pos++
	}
	start := p.pos
	for p.pos < len(p.lines) {
		l := p.lines[p.pos]
		if l.Indent == 0 && useRe.MatchString(l.head()) {
			break
		}
		if _, _, ok := topLevelKeyword(l); ok {
			break
		}
		p.pos++
	}

	end := p.pos
	for end > start && p.lines[end-1].blank() {
		end--
	}
	if end == start {
		return
	}

	var text []string
	for _, l := range p.lines[start:end] {
		text = append(text, l.Lines...)
	}
	p.emit(smkfmt.PlainText{
		Text:         strings.Join(text, "\n") + "\n",
		TargetIndent: 0,
		Line:         p.lines[start].Line,
	})
}

// bodyEnd finds where the body under a header indented by width ends,
// without looking past limit. Trailing blank lines are left out.
func (p *parser) bodyEnd(width, limit int) int {
	end := p.pos
	for end < limit {
		l := p.lines[end]
		if !l.blank() && l.Indent <= width {
			break
		}
		end++
	}
	for end > p.pos && p.lines[end-1].blank() {
		end--
	}
	return end
}

func (p *parser) parseKeyword(h header, kw keyword, end, depth int, context string) error {
	switch kw.body {
	case ruleBody, moduleBody:
		if !h.empty() {
			return &SyntaxError{Line: h.line, Msg: fmt.Sprintf("unexpected text after %s header", h.word)}
		}
		name := h.word
		if h.name != "" {
			name += " " + h.name
		}
		p.emit(smkfmt.KeywordContext{
			Name:         name,
			TargetIndent: depth,
			Comment:      h.comment,
			Line:         h.line,
		})
		return p.parseSection(end, depth+1, vocabulary(kw.body), h.word)
	case pythonBody:
		p.emit(smkfmt.KeywordContext{
			Name:         h.word,
			TargetIndent: depth,
			Comment:      h.comment,
			Line:         h.line,
		})
		return p.parsePythonBody(h, end, depth+1)
	default:
		return p.parseParams(h, kw, end, depth, context)
	}
}

// parseSection reads the keywords of a rule-like or module body.
func (p *parser) parseSection(end, depth int, vocab map[string]keyword, context string) error {
	if p.pos == end {
		return &SyntaxError{Line: p.lines[p.pos-1].Line, Msg: fmt.Sprintf("empty %s definition", context)}
	}
	for p.pos < end {
		l := p.lines[p.pos]
		switch {
		case l.blank():
			p.pos++
		case l.comment():
			p.emit(smkfmt.PlainText{
				Text:         indent(depth) + strings.TrimRight(l.head(), " \t") + "\n",
				TargetIndent: depth,
				Structural:   true,
				Line:         l.Line,
			})
			p.pos++
		case docstring(l):
			text := smkfmt.IndentPreservingLiterals(dedentLines(l, l.Indent)+"\n", depth)
			p.emit(smkfmt.PlainText{
				Text:         strings.TrimRight(text, " \t"),
				TargetIndent: depth,
				Structural:   true,
				Line:         l.Line,
			})
			p.pos++
		default:
			h, ok := parseHeader(l)
			if !ok {
				return &SyntaxError{Line: l.Line, Msg: fmt.Sprintf("unexpected %q in %s definition", l.head(), context)}
			}
			kw, known := vocab[h.word]
			if !known || h.name != "" {
				return &SyntaxError{Line: l.Line, Msg: fmt.Sprintf("unrecognised keyword %q in %s definition", h.word, context)}
			}
			p.pos++
			if err := p.parseKeyword(h, kw, p.bodyEnd(h.indent, end), depth, context); err != nil {
				return err
			}
		}
	}
	return nil
}

func docstring(l logicalLine) bool {
	head := strings.TrimLeft(l.head(), "rRbBuUfF")
	return strings.HasPrefix(head, `"`) || strings.HasPrefix(head, `'`)
}

// parsePythonBody emits the code under a run-style keyword, dedented to
// column zero.
func (p *parser) parsePythonBody(h header, end, depth int) error {
	var code []string
	if !h.empty() {
		code = append(code, strings.TrimLeft(h.rest[0], " \t"))
		code = append(code, h.rest[1:]...)
	}

	body := p.lines[p.pos:end]
	p.pos = end

	margin := -1
	for _, l := range body {
		if !l.blank() && (margin < 0 || l.Indent < margin) {
			margin = l.Indent
		}
	}
	for _, l := range body {
		code = append(code, dedentLines(l, margin))
	}

	text := strings.Trim(strings.Join(code, "\n"), "\n")
	if strings.TrimSpace(text) == "" {
		return &SyntaxError{Line: h.line, Msg: fmt.Sprintf("empty %s body", h.word)}
	}
	line := h.line
	if h.empty() {
		line = body[0].Line
	}
	p.emit(smkfmt.PlainText{
		Text:         text + "\n",
		TargetIndent: depth,
		Line:         line,
	})
	return nil
}

// dedentLines removes margin columns from each physical line of l, leaving
// lines inside string literals alone. Whitespace-only lines are emptied.
func dedentLines(l logicalLine, margin int) string {
	out := make([]string, len(l.Lines))
	for i, line := range l.Lines {
		switch {
		case l.InLiteral[i]:
			out[i] = line
		case strings.TrimSpace(line) == "":
			out[i] = ""
		default:
			out[i] = dedent(line, margin)
		}
	}
	return strings.Join(out, "\n")
}

func (p *parser) parseParams(h header, kw keyword, end, depth int, context string) error {
	values := append([]string{}, h.rest...)
	for _, l := range p.lines[p.pos:end] {
		values = append(values, l.Lines...)
	}
	p.pos = end

	params, leading := splitParams(strings.Join(values, "\n"), h.line)

	comment := h.comment
	if len(leading) > 0 && comment == "" {
		comment = spaceComment(leading[0])
		leading = leading[1:]
	}
	var orphans []string
	if len(leading) > 0 {
		if len(params) == 0 {
			orphans = leading
		} else if len(params[0].Comments) == 0 {
			params[0].Comments = append([]string{""}, leading...)
		} else {
			params[0].Comments = append(params[0].Comments, leading...)
		}
	}

	if kw.kind.Single() && len(params) != 1 {
		return &SyntaxError{Line: h.line, Msg: fmt.Sprintf("%s expects a single value, got %d", h.word, len(params))}
	}

	p.emit(&smkfmt.ParameterSyntax{
		Kind:         kw.kind,
		Keyword:      h.word,
		TargetIndent: depth,
		Comment:      comment,
		Context:      context,
		Params:       params,
		Line:         h.line,
	})
	for _, c := range orphans {
		p.emit(smkfmt.PlainText{
			Text:         indent(depth+1) + c + "\n",
			TargetIndent: depth + 1,
			Structural:   true,
			Line:         h.line,
		})
	}
	return nil
}

// parseUse handles "use rule" statements. With a trailing "with:" they open
// a rule body; otherwise they stand alone.
func (p *parser) parseUse(l logicalLine) error {
	p.pos++
	code, comment := splitComment(l.text())
	code = strings.Join(strings.Fields(code), " ")
	if !strings.HasSuffix(code, ":") {
		text := code + spaceComment(comment)
		p.emit(smkfmt.PlainText{
			Text:         text + "\n",
			TargetIndent: 0,
			Structural:   true,
			Line:         l.Line,
		})
		return nil
	}

	fields := strings.Fields(strings.TrimSuffix(code, ":"))
	if fields[len(fields)-1] != "with" {
		return &SyntaxError{Line: l.Line, Msg: "expected \"with:\" at the end of use statement"}
	}
	p.emit(smkfmt.KeywordContext{
		Name:         strings.Join(fields, " "),
		TargetIndent: 0,
		Comment:      spaceComment(comment),
		Line:         l.Line,
	})
	return p.parseSection(p.bodyEnd(l.Indent, len(p.lines)), 1, ruleKeywords, "rule")
}
