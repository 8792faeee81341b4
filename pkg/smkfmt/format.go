// Package smkfmt renders workflow files into their canonical layout.
//
// A Formatter consumes the events produced by a workflow parser: spans of
// code, section headers, and parameter groups. Code goes through a
// pyfmt.Engine and is re-indented to its depth; headers and parameters are
// rendered directly. Between top-level blocks the Formatter enforces a fixed
// separator and keeps trailing comments with the block that follows them.
package smkfmt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vito/smkfmt/pkg/pyfmt"
)

// Formatter accumulates the formatted text of one file. It is not safe for
// concurrent use; create one per file.
type Formatter struct {
	engine pyfmt.Engine
	style  pyfmt.Style

	result strings.Builder

	// pending plain text and where it goes
	buffer           strings.Builder
	bufferIndent     int
	bufferStructural bool
	bufferLine       int

	// top-level comments trailing the last flushed block, waiting for the
	// block they precede
	laggingComments string
	// no top-level block has been written yet
	first bool
}

// NewFormatter creates a Formatter that formats code with engine.
func NewFormatter(engine pyfmt.Engine, style pyfmt.Style) *Formatter {
	return &Formatter{
		engine: engine,
		style:  style,
		first:  true,
	}
}

// Format processes every event, finishes, and returns the formatted text.
func (f *Formatter) Format(ctx context.Context, events []Event) (string, error) {
	for _, ev := range events {
		if err := f.Process(ctx, ev); err != nil {
			return "", err
		}
	}
	if err := f.Finish(ctx); err != nil {
		return "", err
	}
	return f.Formatted(), nil
}

// Process handles one event.
func (f *Formatter) Process(ctx context.Context, ev Event) error {
	switch ev := ev.(type) {
	case PlainText:
		return f.Write(ctx, ev)
	case KeywordContext:
		if err := f.FlushBuffer(ctx, false); err != nil {
			return err
		}
		f.ProcessKeywordContext(ev)
		return nil
	case *ParameterSyntax:
		if err := f.FlushBuffer(ctx, false); err != nil {
			return err
		}
		return f.ProcessKeywordParam(ctx, ev)
	default:
		return fmt.Errorf("unknown event %T", ev)
	}
}

// Write adds plain text to the pending buffer. Text for a different depth,
// or of a different kind, flushes what is pending first.
func (f *Formatter) Write(ctx context.Context, text PlainText) error {
	if f.buffer.Len() > 0 && (text.TargetIndent != f.bufferIndent || text.Structural != f.bufferStructural) {
		if err := f.FlushBuffer(ctx, false); err != nil {
			return err
		}
	}
	if f.buffer.Len() == 0 {
		f.bufferIndent = text.TargetIndent
		f.bufferStructural = text.Structural
		f.bufferLine = text.Line
	}
	f.buffer.WriteString(text.Text)
	return nil
}

// Finish flushes what is pending as the end of the file.
func (f *Formatter) Finish(ctx context.Context) error {
	if err := f.FlushBuffer(ctx, true); err != nil {
		return err
	}
	// nothing follows; comments still held trailed the last block
	f.result.WriteString(f.laggingComments)
	f.laggingComments = ""
	return nil
}

// Formatted returns the text produced so far.
func (f *Formatter) Formatted() string {
	return f.result.String()
}

// FlushBuffer formats and commits the pending plain text. final marks the
// last flush of the file.
func (f *Formatter) FlushBuffer(ctx context.Context, final bool) error {
	text := f.buffer.String()
	f.buffer.Reset()

	if strings.TrimSpace(text) == "" {
		f.result.WriteString(text)
		return nil
	}

	if f.bufferStructural {
		text = strings.TrimRight(text, " ")
		if f.bufferIndent == 0 {
			f.addNewlines(0, text, final)
		} else {
			f.result.WriteString(text)
		}
		return nil
	}

	// the code formatter normalises trailing blank lines away
	trailingBlank := strings.HasSuffix(text, "\n\n")

	formatted, err := f.engine.Format(ctx, text, f.style)
	if err != nil {
		return f.codeError(text, err)
	}
	formatted = IndentPreservingLiterals(formatted, f.bufferIndent)
	if trailingBlank {
		formatted += "\n"
	}

	slog.Debug("flushed code", "line", f.bufferLine, "indent", f.bufferIndent, "final", final)
	f.addNewlines(f.bufferIndent, formatted, final)
	return nil
}

func (f *Formatter) codeError(code string, err error) error {
	var serr *pyfmt.SyntaxError
	if errors.As(err, &serr) {
		return &InvalidCodeError{
			Line: f.bufferLine + serr.Line - 1,
			Code: code,
			Err:  err,
		}
	}
	return fmt.Errorf("format code at line %d: %w", f.bufferLine, err)
}

// ProcessKeywordContext writes a section header.
func (f *Formatter) ProcessKeywordContext(kc KeywordContext) {
	f.addNewlines(kc.TargetIndent, "", false)
	f.result.WriteString(indentation(kc.TargetIndent) + kc.Name + ":" + kc.Comment + "\n")
}

// ProcessKeywordParam writes a parameter group.
func (f *Formatter) ProcessKeywordParam(ctx context.Context, ps *ParameterSyntax) error {
	formatted, err := f.FormatParams(ctx, ps)
	if err != nil {
		return err
	}
	f.addNewlines(ps.TargetIndent, "", false)
	f.result.WriteString(formatted)
	return nil
}

// addNewlines commits formatted text at the given depth. At the top level it
// separates blocks, flushes lagging comments in front of the new block, and
// holds back the block's own trailing comments for whatever comes next.
// An empty formatted string announces a block the caller writes itself.
func (f *Formatter) addNewlines(indent int, formatted string, final bool) {
	if indent != 0 {
		f.result.WriteString(formatted)
		f.first = false
		return
	}

	lines := splitLines(formatted)
	trailing := trailingCommentLines(formatted, lines)
	body := lines[:len(lines)-trailing]

	if len(body) > 0 || len(lines) == 0 {
		f.separate()
		f.result.WriteString(f.laggingComments)
		f.laggingComments = ""
		if len(body) > 0 {
			f.result.WriteString(strings.TrimRight(strings.Join(body, "\n"), " \t\n") + "\n")
		}
		f.first = false
	}

	if trailing > 0 {
		f.laggingComments += strings.Join(lines[len(lines)-trailing:], "\n") + "\n"
	}

	if final && f.laggingComments != "" {
		if len(body) == 0 && len(lines) > 0 {
			// a comment-only block at the end stands on its own
			f.separate()
		}
		f.result.WriteString(f.laggingComments)
		f.laggingComments = ""
	}
}

func (f *Formatter) separate() {
	if !f.first {
		f.result.WriteString("\n")
	}
}

// splitLines splits text into lines without their line breaks. A trailing
// line break does not produce an empty last line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// trailingCommentLines counts the comment lines at the end of lines, which
// were split from text. Lines inside string literals are never comments.
func trailingCommentLines(text string, lines []string) int {
	spans := pyfmt.TripleQuotedSpans(text)

	starts := make([]int, len(lines))
	offset := 0
	for i, line := range lines {
		starts[i] = offset
		offset += len(line) + 1
	}

	n := 0
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if line == "" || line[0] != '#' || pyfmt.InLiteral(spans, starts[i]) {
			break
		}
		n++
	}
	return n
}
