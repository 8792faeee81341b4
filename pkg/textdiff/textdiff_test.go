package textdiff

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnifiedEqual(t *testing.T) {
	require.Empty(t, Unified("a\nb\n", "a\nb\n", "a", "b"))
}

func TestUnifiedSingleChange(t *testing.T) {
	before := "rule a:\n    input: 'x'\n"
	after := "rule a:\n    input:\n        'x',\n"

	require.Equal(t, `--- Snakefile
+++ Snakefile (formatted)
@@ -1,2 +1,3 @@
 rule a:
-    input: 'x'
+    input:
+        'x',
`, Unified(before, after, "Snakefile", "Snakefile (formatted)"))
}

func TestUnifiedHunks(t *testing.T) {
	var before, after []string
	for i := 1; i <= 20; i++ {
		before = append(before, fmt.Sprint(i))
		after = append(after, fmt.Sprint(i))
	}
	after[1] = "two"
	after[17] = "eighteen"

	out := Unified(strings.Join(before, "\n")+"\n", strings.Join(after, "\n")+"\n", "a", "b")
	require.Equal(t, `--- a
+++ b
@@ -1,5 +1,5 @@
 1
-2
+two
 3
 4
 5
@@ -15,6 +15,6 @@
 15
 16
 17
-18
+eighteen
 19
 20
`, out)
}

func TestUnifiedNearbyChangesShareAHunk(t *testing.T) {
	before := "1\n2\n3\n4\n5\n6\n7\n8\n"
	after := "1\nb\n3\n4\n5\n6\ng\n8\n"

	out := Unified(before, after, "a", "b")
	require.Equal(t, 1, strings.Count(out, "@@ -"))
	require.Contains(t, out, "@@ -1,8 +1,8 @@\n")
}

func TestUnifiedInsertionIntoEmpty(t *testing.T) {
	require.Equal(t, "--- a\n+++ b\n@@ -0,0 +1 @@\n+x = 1\n", Unified("", "x = 1\n", "a", "b"))
}
