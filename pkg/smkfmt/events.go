package smkfmt

import "strings"

// indentUnit is one level of nesting.
const indentUnit = "    "

func indentation(depth int) string {
	return strings.Repeat(indentUnit, depth)
}

// Event is one item of the stream a Formatter consumes.
type Event interface {
	event()
}

// PlainText is a span of code at a nesting depth. Structural text is already
// shaped workflow syntax and is never handed to the code formatter.
type PlainText struct {
	Text         string
	TargetIndent int
	Structural   bool
	Line         int
}

// KeywordContext is a section header such as "rule a" or "run".
type KeywordContext struct {
	Name         string
	TargetIndent int
	// Comment is the inline comment on the header line, including its
	// leading spacing, e.g. "  # note".
	Comment string
	Line    int
}

func (PlainText) event()        {}
func (KeywordContext) event()   {}
func (*ParameterSyntax) event() {}
