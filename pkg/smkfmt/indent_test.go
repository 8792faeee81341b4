package smkfmt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIndentPreservingLiterals(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		depth    int
		expected string
	}{
		{
			name:     "top level is untouched",
			code:     "x = \"\"\"\n  a\n\"\"\"\n",
			depth:    0,
			expected: "x = \"\"\"\n  a\n\"\"\"\n",
		},
		{
			name:     "blank lines stay empty",
			code:     "a = 1\n\nb = 2\n",
			depth:    1,
			expected: "    a = 1\n\n    b = 2\n",
		},
		{
			name:     "single-line literal",
			code:     "x = \"\"\"abc\"\"\"\ny = '''d'''\n",
			depth:    2,
			expected: "        x = \"\"\"abc\"\"\"\n        y = '''d'''\n",
		},
		{
			name:     "multi-line literal is dedented then indented as a unit",
			code:     "x = \"\"\"\n        body\n          more\n        \"\"\"\ny = 1\n",
			depth:    1,
			expected: "    x = \"\"\"\n    body\n      more\n    \"\"\"\n    y = 1\n",
		},
		{
			name:     "text on the opening line is kept",
			code:     "\"\"\"Summary.\n\n        Details.\n        \"\"\"\n",
			depth:    1,
			expected: "    \"\"\"Summary.\n\n    Details.\n    \"\"\"\n",
		},
		{
			name:     "docstring inside an indented block",
			code:     "def f():\n    \"\"\"Doc.\n\n    More.\n    \"\"\"\n    return 1\n",
			depth:    1,
			expected: "    def f():\n        \"\"\"Doc.\n\n        More.\n        \"\"\"\n        return 1\n",
		},
		{
			name:     "lines deeper than the closing delimiter keep their offset",
			code:     "def f():\n    \"\"\"Doc\n      indented\n    \"\"\"\n",
			depth:    1,
			expected: "    def f():\n        \"\"\"Doc\n          indented\n        \"\"\"\n",
		},
		{
			name:     "closing delimiter shallower than the body",
			code:     "x = \"\"\"\n    a\n      b\n\"\"\"\n",
			depth:    2,
			expected: "        x = \"\"\"\n            a\n              b\n        \"\"\"\n",
		},
		{
			name:     "single quotes",
			code:     "'''\n  a\n    b\n'''\n",
			depth:    1,
			expected: "    '''\n      a\n        b\n    '''\n",
		},
		{
			name:     "escaped delimiter inside a literal",
			code:     "s = \"\"\"a \\\"\"\" b\n  c\"\"\"\n",
			depth:    1,
			expected: "    s = \"\"\"a \\\"\"\" b\n    c\"\"\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, IndentPreservingLiterals(tt.code, tt.depth))
		})
	}
}

func TestIndentPreservesRelativeLiteralIndentation(t *testing.T) {
	code := "shell(\n    \"\"\"\n    for f in *; do\n        echo $f\n    done\n    \"\"\"\n)\n"

	relative := func(out string) []int {
		var widths []int
		for _, line := range strings.Split(out, "\n") {
			if strings.Contains(line, "echo") || strings.Contains(line, "for f") || strings.Contains(line, "done") {
				widths = append(widths, len(line)-len(strings.TrimLeft(line, " ")))
			}
		}
		require.Len(t, widths, 3)
		return []int{widths[1] - widths[0], widths[2] - widths[0]}
	}

	want := relative(code)
	for depth := 1; depth <= 4; depth++ {
		out := IndentPreservingLiterals(code, depth)
		require.Equal(t, want, relative(out), "depth %d", depth)
	}
}
