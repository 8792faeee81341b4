package snakefile

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/vito/smkfmt/pkg/pyfmt"
	"github.com/vito/smkfmt/pkg/smkfmt"
)

// splitParams splits the values of a keyword into parameters by parsing them
// as the arguments of a call. line is the line of the keyword; the first
// entry of values belongs to it. Comments ahead of the first parameter are
// returned separately.
//
// Values that do not parse are returned as one parameter so that the
// formatter can report them.
func splitParams(values string, line int) ([]smkfmt.Parameter, []string) {
	if strings.TrimSpace(values) == "" {
		return nil, nil
	}

	src := []byte("param(\n" + values + "\n)")
	tree, err := pyfmt.Parse(src)
	if err != nil {
		return unsplit(values, line), nil
	}
	defer tree.Close()

	root := tree.RootNode()
	args := argumentList(root)
	if root.HasError() || args == nil {
		return unsplit(values, line), nil
	}

	var params []smkfmt.Parameter
	var leading []string
	lastRow := -1
	for i := 0; i < int(args.NamedChildCount()); i++ {
		n := args.NamedChild(i)
		row := int(n.StartPoint().Row)

		if n.Type() == "comment" {
			text := strings.TrimRight(n.Content(src), " \t")
			if len(params) == 0 {
				leading = append(leading, text)
				continue
			}
			prev := &params[len(params)-1]
			switch {
			case len(prev.Comments) == 0 && row == lastRow:
				prev.Comments = append(prev.Comments, "  "+text)
			case len(prev.Comments) == 0:
				prev.Comments = append(prev.Comments, "", text)
			default:
				prev.Comments = append(prev.Comments, text)
			}
			continue
		}

		col := int(n.StartPoint().Column)
		param := smkfmt.Parameter{
			Value: dedentValue(n.Content(src), col),
			Line:  line + row - 1,
		}
		if n.Type() == "keyword_argument" {
			if name, value := n.ChildByFieldName("name"), n.ChildByFieldName("value"); name != nil && value != nil {
				param.Key = name.Content(src)
				param.Value = dedentValue(value.Content(src), col)
			}
		}
		params = append(params, param)
		lastRow = int(n.EndPoint().Row)
	}
	return params, leading
}

// argumentList finds the argument list of the wrapping call.
func argumentList(root *sitter.Node) *sitter.Node {
	if root.NamedChildCount() != 1 {
		return nil
	}
	stmt := root.NamedChild(0)
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return nil
	}
	call := stmt.NamedChild(0)
	if call.Type() != "call" {
		return nil
	}
	args := call.ChildByFieldName("arguments")
	if args == nil || args.Type() != "argument_list" {
		return nil
	}
	return args
}

func unsplit(values string, line int) []smkfmt.Parameter {
	return []smkfmt.Parameter{{Value: strings.TrimSpace(values), Line: line}}
}

// dedentValue shifts the continuation lines of a value left by the column
// its first line started at. Lines inside triple-quoted literals are left
// alone.
func dedentValue(value string, col int) string {
	spans := pyfmt.TripleQuotedSpans(value)
	lines := strings.Split(value, "\n")
	offset := len(lines[0]) + 1
	for i := 1; i < len(lines); i++ {
		start := offset
		offset += len(lines[i]) + 1
		if pyfmt.InLiteral(spans, start-1) {
			continue
		}
		lines[i] = dedent(lines[i], col)
	}
	return strings.Join(lines, "\n")
}
