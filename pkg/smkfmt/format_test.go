package smkfmt

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/dagger/testctx"
	"github.com/dagger/testctx/oteltest"
	"github.com/stretchr/testify/require"

	"github.com/vito/smkfmt/pkg/pyfmt"
)

func TestMain(m *testing.M) {
	os.Exit(oteltest.Main(m))
}

type FormatterSuite struct{}

func TestFormatter(tT *testing.T) {
	testctx.New(tT,
		oteltest.WithTracing[*testing.T](),
		oteltest.WithLogging[*testing.T](),
	).RunTests(FormatterSuite{})
}

// stubEngine formats with a function and records what it was given.
type stubEngine struct {
	format func(code string) (string, error)
	calls  []string
}

func (e *stubEngine) Format(_ context.Context, code string, _ pyfmt.Style) (string, error) {
	e.calls = append(e.calls, code)
	if e.format == nil {
		return code, nil
	}
	return e.format(code)
}

func param(value string) Parameter {
	return Parameter{Value: value, Line: 1}
}

func formatEvents(t testing.TB, events ...Event) string {
	t.Helper()
	out, err := NewFormatter(pyfmt.Builtin{}, pyfmt.DefaultStyle(0)).Format(t.Context(), events)
	require.NoError(t, err)
	return out
}

func (FormatterSuite) TestBlankLines(ctx context.Context, t *testctx.T) {
	tests := []struct {
		name     string
		events   []Event
		expected string
	}{
		{
			name: "no separator before the first block",
			events: []Event{
				KeywordContext{Name: "rule a"},
				&ParameterSyntax{Kind: ParamList, Keyword: "input", TargetIndent: 1, Context: "rule", Params: []Parameter{param(`"a"`)}},
			},
			expected: "rule a:\n    input:\n        \"a\",\n",
		},
		{
			name: "fixed separator between top-level blocks",
			events: []Event{
				PlainText{Text: "import os\n", Line: 1},
				KeywordContext{Name: "rule a", Line: 2},
				&ParameterSyntax{Kind: InlineSingleParam, Keyword: "threads", TargetIndent: 1, Context: "rule", Params: []Parameter{param("2")}},
				KeywordContext{Name: "rule b", Line: 4},
				&ParameterSyntax{Kind: InlineSingleParam, Keyword: "threads", TargetIndent: 1, Context: "rule", Params: []Parameter{param("4")}},
				PlainText{Text: "x = 1\n", Line: 6},
			},
			expected: "import os\n\nrule a:\n    threads: 2\n\nrule b:\n    threads: 4\n\nx = 1\n",
		},
		{
			name: "top-level parameters are blocks too",
			events: []Event{
				&ParameterSyntax{Kind: SingleParam, Keyword: "configfile", Params: []Parameter{param(`"config.yaml"`)}},
				&ParameterSyntax{Kind: ParamList, Keyword: "localrules", Params: []Parameter{param("a"), param("b")}},
			},
			expected: "configfile: \"config.yaml\"\n\nlocalrules:\n    a,\n    b,\n",
		},
		{
			name: "nested blocks are not separated",
			events: []Event{
				KeywordContext{Name: "rule a"},
				KeywordContext{Name: "run", TargetIndent: 1},
				PlainText{Text: "x = 1\ny = 2\n", TargetIndent: 2},
			},
			expected: "rule a:\n    run:\n        x = 1\n        y = 2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(ctx context.Context, t *testctx.T) {
			require.Equal(t, tt.expected, formatEvents(t, tt.events...))
		})
	}
}

func (FormatterSuite) TestLaggingComments(ctx context.Context, t *testctx.T) {
	tests := []struct {
		name     string
		events   []Event
		expected string
	}{
		{
			name: "comment before a rule stays with the rule",
			events: []Event{
				PlainText{Text: "x = 1\n# builds b\n"},
				KeywordContext{Name: "rule b"},
			},
			expected: "x = 1\n\n# builds b\nrule b:\n",
		},
		{
			name: "comment-only span between rules",
			events: []Event{
				KeywordContext{Name: "rule a"},
				PlainText{Text: "# builds b\n# and more\n"},
				KeywordContext{Name: "rule b"},
			},
			expected: "rule a:\n\n# builds b\n# and more\nrule b:\n",
		},
		{
			name: "leading comments do not count as the first block",
			events: []Event{
				PlainText{Text: "# header\n"},
				KeywordContext{Name: "rule a"},
			},
			expected: "# header\nrule a:\n",
		},
		{
			name: "comments trailing the last block hug it",
			events: []Event{
				PlainText{Text: "x = 1\n# the end\n"},
			},
			expected: "x = 1\n# the end\n",
		},
		{
			name: "comment-only block at the end is separated",
			events: []Event{
				KeywordContext{Name: "rule a"},
				PlainText{Text: "# the end\n"},
			},
			expected: "rule a:\n\n# the end\n",
		},
		{
			name: "indented comments are not held back",
			events: []Event{
				PlainText{Text: "def f():\n    return 1\n    # inside\n"},
				KeywordContext{Name: "rule a"},
			},
			expected: "def f():\n    return 1\n    # inside\n\nrule a:\n",
		},
		{
			name: "hash lines inside literals are not comments",
			events: []Event{
				PlainText{Text: "s = \"\"\"\n# not a comment\"\"\"\n"},
				KeywordContext{Name: "rule a"},
			},
			expected: "s = \"\"\"\n# not a comment\"\"\"\n\nrule a:\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(ctx context.Context, t *testctx.T) {
			require.Equal(t, tt.expected, formatEvents(t, tt.events...))
		})
	}
}

func (FormatterSuite) TestFlushBuffer(ctx context.Context, t *testctx.T) {
	t.Run("whitespace is written verbatim", func(ctx context.Context, t *testctx.T) {
		engine := &stubEngine{}
		f := NewFormatter(engine, pyfmt.DefaultStyle(0))
		require.NoError(t, f.Write(ctx, PlainText{Text: "\n\n"}))
		require.NoError(t, f.FlushBuffer(ctx, false))
		require.Equal(t, "\n\n", f.Formatted())
		require.Empty(t, engine.calls)
	})

	t.Run("pending text is formatted as one unit", func(ctx context.Context, t *testctx.T) {
		engine := &stubEngine{}
		f := NewFormatter(engine, pyfmt.DefaultStyle(0))
		require.NoError(t, f.Write(ctx, PlainText{Text: "if x:\n"}))
		require.NoError(t, f.Write(ctx, PlainText{Text: "    y = 1\n"}))
		require.NoError(t, f.Finish(ctx))
		require.Equal(t, []string{"if x:\n    y = 1\n"}, engine.calls)
	})

	t.Run("a new depth flushes", func(ctx context.Context, t *testctx.T) {
		engine := &stubEngine{}
		f := NewFormatter(engine, pyfmt.DefaultStyle(0))
		require.NoError(t, f.Write(ctx, PlainText{Text: "a = 1\n"}))
		require.NoError(t, f.Write(ctx, PlainText{Text: "b = 2\n", TargetIndent: 1}))
		require.NoError(t, f.Finish(ctx))
		require.Equal(t, []string{"a = 1\n", "b = 2\n"}, engine.calls)
		require.Equal(t, "a = 1\n    b = 2\n", f.Formatted())
	})

	t.Run("trailing blank line is restored when nested", func(ctx context.Context, t *testctx.T) {
		out := formatEvents(t,
			KeywordContext{Name: "rule a"},
			KeywordContext{Name: "run", TargetIndent: 1},
			PlainText{Text: "x = 1\n\n", TargetIndent: 2},
			&ParameterSyntax{Kind: InlineSingleParam, Keyword: "threads", TargetIndent: 1, Context: "rule", Params: []Parameter{param("1")}},
		)
		require.Equal(t, "rule a:\n    run:\n        x = 1\n\n    threads: 1\n", out)
	})

	t.Run("structural text skips the code formatter", func(ctx context.Context, t *testctx.T) {
		engine := &stubEngine{}
		f := NewFormatter(engine, pyfmt.DefaultStyle(0))
		require.NoError(t, f.Process(ctx, KeywordContext{Name: "rule a"}))
		require.NoError(t, f.Process(ctx, PlainText{Text: "    # note\n    ", TargetIndent: 1, Structural: true}))
		require.NoError(t, f.Finish(ctx))
		require.Empty(t, engine.calls)
		require.Equal(t, "rule a:\n    # note\n", f.Formatted())
	})

	t.Run("top-level structural text is separated", func(ctx context.Context, t *testctx.T) {
		out := formatEvents(t,
			PlainText{Text: "x = 1\n"},
			PlainText{Text: "use rule a from m as b\n", Structural: true},
		)
		require.Equal(t, "x = 1\n\nuse rule a from m as b\n", out)
	})
}

func (FormatterSuite) TestInvalidCode(ctx context.Context, t *testctx.T) {
	t.Run("syntax errors are fatal", func(ctx context.Context, t *testctx.T) {
		f := NewFormatter(pyfmt.Builtin{}, pyfmt.DefaultStyle(0))
		_, err := f.Format(ctx, []Event{
			PlainText{Text: "x = 1\ndef(\n", Line: 10},
			KeywordContext{Name: "rule a", Line: 12},
		})
		var invalid *InvalidCodeError
		require.True(t, errors.As(err, &invalid))
		require.Contains(t, []int{10, 11}, invalid.Line)
		require.Contains(t, invalid.Error(), "def(")

		var serr *pyfmt.SyntaxError
		require.True(t, errors.As(err, &serr))
	})

	t.Run("engine failures are not syntax errors", func(ctx context.Context, t *testctx.T) {
		broken := errors.New("black: not found")
		engine := &stubEngine{format: func(string) (string, error) { return "", broken }}
		_, err := NewFormatter(engine, pyfmt.DefaultStyle(0)).Format(ctx, []Event{PlainText{Text: "x = 1\n", Line: 3}})
		require.ErrorIs(t, err, broken)

		var invalid *InvalidCodeError
		require.False(t, errors.As(err, &invalid))
	})
}

func (FormatterSuite) TestSeparatorInvariant(ctx context.Context, t *testctx.T) {
	var events []Event
	for _, name := range []string{"a", "b", "c", "d"} {
		events = append(events,
			PlainText{Text: "# about " + name + "\n"},
			KeywordContext{Name: "rule " + name},
			&ParameterSyntax{Kind: ParamList, Keyword: "output", TargetIndent: 1, Context: "rule", Params: []Parameter{param(`"` + name + `"`)}},
		)
	}
	out := formatEvents(t, events...)

	require.False(t, strings.HasPrefix(out, "\n"))
	require.NotContains(t, out, "\n\n\n")
	blocks := strings.Split(out, "\n\n")
	require.Len(t, blocks, 4)
	for _, block := range blocks {
		require.True(t, strings.HasPrefix(block, "# about "), block)
	}
}
