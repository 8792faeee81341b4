package smkfmt

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/vito/smkfmt/pkg/pyfmt"
)

// Parameter is one value of a parameter list.
type Parameter struct {
	// Key is set for key=value parameters.
	Key   string
	Value string
	// Comments trail the value. The first one is written on the value's line
	// (e.g. "  # note"); an empty first entry puts them all on lines of their
	// own.
	Comments []string
	Line     int
}

// HasKey reports whether the parameter is written as key=value.
func (p Parameter) HasKey() bool {
	return p.Key != ""
}

func (p Parameter) String() string {
	if p.HasKey() {
		return p.Key + "=" + p.Value
	}
	return p.Value
}

// ParamKind decides how a parameter group is laid out.
type ParamKind int

const (
	// ParamList holds any number of parameters.
	ParamList ParamKind = iota
	// SingleParam holds exactly one parameter, laid out as a block inside
	// rules and inline elsewhere.
	SingleParam
	// InlineSingleParam holds exactly one parameter, always inline.
	InlineSingleParam
)

// Single reports whether the kind holds exactly one parameter.
func (k ParamKind) Single() bool {
	return k == SingleParam || k == InlineSingleParam
}

func (k ParamKind) String() string {
	switch k {
	case SingleParam:
		return "single"
	case InlineSingleParam:
		return "inline-single"
	default:
		return "list"
	}
}

// ParameterSyntax is a keyword with its parameters, e.g. an input section.
type ParameterSyntax struct {
	Kind    ParamKind
	Keyword string
	// TargetIndent is the depth of the keyword line; values go one deeper.
	TargetIndent int
	// Comment is the inline comment on the keyword line, e.g. "  # note".
	Comment string
	// Context names the section the keyword belongs to, e.g. "rule".
	Context string
	Params  []Parameter
	Line    int
}

var ruleLike = map[string]bool{
	"rule":       true,
	"checkpoint": true,
}

// IsRuleLike reports whether section is a rule or checkpoint.
func IsRuleLike(section string) bool {
	return ruleLike[section]
}

// Inline reports whether the group is written on the keyword's own line.
func (ps *ParameterSyntax) Inline() bool {
	if !ps.Kind.Single() {
		return false
	}
	// single values read better as blocks inside rules, unless the keyword
	// is always inline
	if IsRuleLike(ps.Context) && ps.Kind != InlineSingleParam {
		return false
	}
	return true
}

// FormatParams renders a parameter group.
func (f *Formatter) FormatParams(ctx context.Context, ps *ParameterSyntax) (string, error) {
	depth := ps.TargetIndent
	single := ps.Kind.Single()
	inline := ps.Inline()

	var sb strings.Builder
	sb.WriteString(indentation(depth))
	sb.WriteString(ps.Keyword)
	sb.WriteString(":")
	if inline {
		sb.WriteString(" ")
	} else {
		sb.WriteString(ps.Comment)
		sb.WriteString("\n")
	}

	for i, p := range ps.Params {
		trailer := ""
		if inline && i == 0 {
			trailer = ps.Comment
		}
		s, err := f.formatParam(ctx, p, depth+1, inline, single, trailer)
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
	}
	if inline && len(ps.Params) == 0 {
		return strings.TrimRight(sb.String(), " ") + ps.Comment + "\n", nil
	}
	return sb.String(), nil
}

// formatParam renders one value at depth. trailer is written right after the
// value, before any of the parameter's own comments.
func (f *Formatter) formatParam(ctx context.Context, p Parameter, depth int, inline, single bool, trailer string) (string, error) {
	commentDepth := depth
	if inline {
		// the value sits on the keyword line; own-line comments line up
		// with the keyword
		commentDepth, depth = depth-1, 0
	}
	comments := strings.Join(p.Comments, "\n"+indentation(commentDepth))
	val := p.String()

	if err := pyfmt.ValidateArgument(val); err != nil {
		return "", &InvalidParameterSyntaxError{Line: p.Line, Value: val, Err: err}
	}

	if inline {
		val = strings.ReplaceAll(val, "\n", "")
	}

	formatted, err := f.engine.Format(ctx, val, f.style)
	var serr *pyfmt.SyntaxError
	switch {
	case err == nil:
		val = IndentPreservingLiterals(formatted, depth)
		if p.HasKey() {
			// only the separator after the key, never an " = " in the value
			body := strings.TrimLeft(val, " \t")
			if value, ok := strings.CutPrefix(body, p.Key+" = "); ok {
				val = val[:len(val)-len(body)] + p.Key + "=" + value
			}
		}
	case errors.As(err, &serr):
		// valid as an argument but not as a statement, e.g. **kwargs: keep the
		// value as written
		if strings.Contains(val, "**") {
			val = strings.ReplaceAll(val, "** ", "**")
		}
		slog.Debug("keeping parameter unformatted", "line", p.Line, "value", val, "error", err)
		val = IndentPreservingLiterals(strings.TrimLeft(val, " \t"), depth)
	default:
		return "", err
	}

	val = strings.Trim(val, "\n")
	if single {
		return val + trailer + comments + "\n", nil
	}
	return val + "," + trailer + comments + "\n", nil
}
