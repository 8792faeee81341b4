// Package textdiff renders line diffs between two versions of a file.
package textdiff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ContextLines is the number of unchanged lines shown around each change.
const ContextLines = 3

type line struct {
	op   byte
	text string
	// old and new are the 1-indexed positions the line has, or would have,
	// in each version.
	old, new int
}

func diffLines(before, after string) []line {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(beforeChars, afterChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var lines []line
	oldLine, newLine := 1, 1
	for _, diff := range diffs {
		chunk := strings.Split(diff.Text, "\n")
		if chunk[len(chunk)-1] == "" {
			chunk = chunk[:len(chunk)-1]
		}
		for _, text := range chunk {
			l := line{text: text, old: oldLine, new: newLine}
			switch diff.Type {
			case diffmatchpatch.DiffEqual:
				l.op = ' '
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				l.op = '-'
				oldLine++
			case diffmatchpatch.DiffInsert:
				l.op = '+'
				newLine++
			}
			lines = append(lines, l)
		}
	}
	return lines
}

// Unified returns a unified diff turning before into after, or "" when they
// are equal.
func Unified(before, after, fromName, toName string) string {
	if before == after {
		return ""
	}
	lines := diffLines(before, after)

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", fromName, toName)

	i := 0
	for i < len(lines) {
		for i < len(lines) && lines[i].op == ' ' {
			i++
		}
		if i == len(lines) {
			break
		}

		start := max(i-ContextLines, 0)
		end := i + 1
		for j := i + 1; j < len(lines); j++ {
			if lines[j].op != ' ' {
				end = j + 1
			} else if j-end >= 2*ContextLines {
				break
			}
		}
		end = min(end+ContextLines, len(lines))

		writeHunk(&sb, lines[start:end])
		i = end
	}
	return sb.String()
}

func writeHunk(sb *strings.Builder, hunk []line) {
	var oldCount, newCount int
	for _, l := range hunk {
		if l.op != '+' {
			oldCount++
		}
		if l.op != '-' {
			newCount++
		}
	}
	oldStart, newStart := hunk[0].old, hunk[0].new
	if oldCount == 0 {
		oldStart--
	}
	if newCount == 0 {
		newStart--
	}

	fmt.Fprintf(sb, "@@ -%s +%s @@\n", span(oldStart, oldCount), span(newStart, newCount))
	for _, l := range hunk {
		sb.WriteByte(l.op)
		sb.WriteString(l.text)
		sb.WriteByte('\n')
	}
}

func span(start, count int) string {
	if count == 1 {
		return fmt.Sprint(start)
	}
	return fmt.Sprintf("%d,%d", start, count)
}
