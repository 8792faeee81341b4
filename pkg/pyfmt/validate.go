package pyfmt

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Parse parses code with the tree-sitter Python grammar. The caller owns the
// returned tree and must close it.
func Parse(code []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, code)
	if err != nil {
		return nil, fmt.Errorf("parse python: %w", err)
	}
	return tree, nil
}

// Validate checks that code is syntactically valid Python.
func Validate(code string) error {
	tree, err := Parse([]byte(code))
	if err != nil {
		return err
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil
	}

	node, msg := firstError(root)
	if node == nil {
		return &SyntaxError{Line: 1, Column: 1, Msg: "invalid syntax"}
	}
	start := node.StartPoint()
	return &SyntaxError{
		Line:   int(start.Row) + 1,
		Column: int(start.Column) + 1,
		Msg:    msg,
	}
}

// ValidateArgument checks that value is valid as a single call argument,
// which covers positional, keyword and unpacked values alike.
func ValidateArgument(value string) error {
	return Validate("param(" + value + ")")
}

// firstError finds the first ERROR or MISSING node in document order.
func firstError(n *sitter.Node) (*sitter.Node, string) {
	if n.IsMissing() {
		return n, fmt.Sprintf("missing %q", n.Type())
	}
	if n.Type() == "ERROR" {
		return n, "invalid syntax"
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if found, msg := firstError(child); found != nil {
			return found, msg
		}
	}
	return nil, ""
}
