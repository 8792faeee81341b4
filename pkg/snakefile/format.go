// Package snakefile reads workflow files and formats them.
package snakefile

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kr/pretty"

	"github.com/vito/smkfmt/pkg/pyfmt"
	"github.com/vito/smkfmt/pkg/smkfmt"
)

// FormatSource formats a whole workflow file. The result ends with exactly
// one newline, or is empty when there is nothing to keep.
func FormatSource(ctx context.Context, src string, engine pyfmt.Engine, style pyfmt.Style) (string, error) {
	events, err := Parse(src)
	if err != nil {
		return "", err
	}
	if slog.Default().Enabled(ctx, slog.LevelDebug) {
		slog.Debug("parsed workflow", "events", len(events), "dump", pretty.Sprint(events))
	}

	out, err := smkfmt.NewFormatter(engine, style).Format(ctx, events)
	if err != nil {
		return "", err
	}
	out = strings.TrimRight(out, "\n")
	if out == "" {
		return "", nil
	}
	return out + "\n", nil
}
