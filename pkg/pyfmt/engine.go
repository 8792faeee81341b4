// Package pyfmt formats and validates the Python code embedded in workflow
// files.
package pyfmt

import (
	"context"
	"fmt"
	"strconv"
)

// DefaultLineLength is the line length used when nothing else is configured.
const DefaultLineLength = 88

// Engine formats a complete Python snippet.
//
// A snippet that does not parse is reported as a *SyntaxError. Any other
// error means the engine itself could not run, or ctx was done.
type Engine interface {
	Format(ctx context.Context, code string, style Style) (string, error)
}

// Style carries the options understood by the code formatter.
type Style struct {
	LineLength              int
	TargetVersions          []string
	SkipStringNormalization bool
	SkipMagicTrailingComma  bool
	Preview                 bool
	Pyi                     bool
}

// DefaultStyle returns the style for the given line length, falling back to
// DefaultLineLength when it is not positive.
func DefaultStyle(lineLength int) Style {
	if lineLength <= 0 {
		lineLength = DefaultLineLength
	}
	return Style{LineLength: lineLength}
}

// BlackArgs renders the style as black command line flags.
func (s Style) BlackArgs() []string {
	lineLength := s.LineLength
	if lineLength <= 0 {
		lineLength = DefaultLineLength
	}
	args := []string{"--line-length", strconv.Itoa(lineLength)}
	for _, v := range s.TargetVersions {
		args = append(args, "--target-version", v)
	}
	if s.SkipStringNormalization {
		args = append(args, "--skip-string-normalization")
	}
	if s.SkipMagicTrailingComma {
		args = append(args, "--skip-magic-trailing-comma")
	}
	if s.Preview {
		args = append(args, "--preview")
	}
	if s.Pyi {
		args = append(args, "--pyi")
	}
	return args
}

// SyntaxError reports code that is not valid Python. Line and Column are
// 1-indexed and relative to the formatted snippet.
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("cannot parse %d:%d: %s", e.Line, e.Column, e.Msg)
}
