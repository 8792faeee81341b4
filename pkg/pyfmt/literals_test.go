package pyfmt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTripleQuotedSpans(t *testing.T) {
	t.Run("both quote styles", func(t *testing.T) {
		code := "a = \"\"\"x\"\"\"\nb = '''y\nz'''\n"
		spans := TripleQuotedSpans(code)
		require.Len(t, spans, 2)
		require.Equal(t, `"""x"""`, code[spans[0].Start:spans[0].End])
		require.False(t, spans[0].Multiline(code))
		require.Equal(t, "'''y\nz'''", code[spans[1].Start:spans[1].End])
		require.True(t, spans[1].Multiline(code))
	})

	t.Run("quotes inside comments and strings are ignored", func(t *testing.T) {
		code := "# a \"\"\" in a comment\nx = '\"\"\"'\ny = \"'''\"\n"
		require.Empty(t, TripleQuotedSpans(code))
	})

	t.Run("escaped delimiter stays inside the literal", func(t *testing.T) {
		code := `s = """a \""" b"""` + "\n"
		spans := TripleQuotedSpans(code)
		require.Len(t, spans, 1)
		require.Equal(t, `"""a \""" b"""`, code[spans[0].Start:spans[0].End])
		require.True(t, spans[0].Terminated(code))
	})

	t.Run("unterminated literal runs to the end", func(t *testing.T) {
		code := "s = \"\"\"abc\n"
		spans := TripleQuotedSpans(code)
		require.Len(t, spans, 1)
		require.Equal(t, len(code), spans[0].End)
		require.False(t, spans[0].Terminated(code))
	})

	t.Run("prefixed literal", func(t *testing.T) {
		code := "f\"\"\"{x}\n\"\"\""
		spans := TripleQuotedSpans(code)
		require.Len(t, spans, 1)
		require.Equal(t, 1, spans[0].Start)
	})
}

func TestInLiteral(t *testing.T) {
	code := "x\n\"\"\"\nab\n\"\"\"\n"
	spans := TripleQuotedSpans(code)
	require.False(t, InLiteral(spans, 0))
	require.False(t, InLiteral(spans, 2), "opening delimiter")
	require.True(t, InLiteral(spans, 6), "body")
	require.False(t, InLiteral(spans, len(code)-1), "after the closing delimiter")
}
