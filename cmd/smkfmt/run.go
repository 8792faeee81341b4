package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/vito/smkfmt/pkg/snakefile"
	"github.com/vito/smkfmt/pkg/textdiff"
)

// result is the outcome of formatting one file.
type result struct {
	path      string
	source    string
	formatted string
	err       error
}

func (r result) changed() bool {
	return r.err == nil && r.source != r.formatted
}

func run(ctx context.Context, opts options, paths []string, stdin io.Reader, stdout, stderr io.Writer) error {
	files, err := collectFiles(paths, opts.selector)
	if err != nil {
		return &exitError{code: exitFailed, msg: err.Error()}
	}
	slog.Debug("collected files", "count", len(files))

	results, err := formatFiles(ctx, opts, files, stdin)
	if err != nil {
		return &exitError{code: exitFailed, msg: err.Error()}
	}
	return report(opts, results, stdout, stderr)
}

// formatFiles formats files in parallel, opts.jobs at a time. Results are in
// the order of files. A file that fails to format does not stop the others.
func formatFiles(ctx context.Context, opts options, files []string, stdin io.Reader) ([]result, error) {
	results := make([]result, len(files))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.jobs)
	for i, path := range files {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = formatPath(ctx, opts, path, stdin)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func formatPath(ctx context.Context, opts options, path string, stdin io.Reader) result {
	res := result{path: path}

	var source []byte
	var err error
	if path == stdinPath {
		source, err = io.ReadAll(stdin)
	} else {
		source, err = os.ReadFile(path)
	}
	if err != nil {
		res.err = err
		return res
	}
	res.source = string(source)

	// each file gets its own formatter state
	res.formatted, res.err = snakefile.FormatSource(ctx, res.source, opts.engine, opts.style)
	if res.err != nil {
		return res
	}
	slog.Debug("formatted", "path", path, "changed", res.changed())

	if path != stdinPath && !opts.check && !opts.diff && res.changed() {
		res.err = writeFile(path, res.formatted)
	}
	return res
}

// writeFile replaces the contents of path, keeping its permissions.
func writeFile(path, content string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), info.Mode().Perm())
}

func report(opts options, results []result, stdout, stderr io.Writer) error {
	var changed, unchanged, failed int
	for _, res := range results {
		name := res.path
		if name == stdinPath {
			name = "STDIN"
		}

		switch {
		case res.err != nil:
			failed++
			fmt.Fprintf(stderr, "error: cannot format %s: %v\n", name, res.err)
			continue
		case res.changed():
			changed++
		default:
			unchanged++
		}

		switch {
		case opts.diff:
			fmt.Fprint(stdout, textdiff.Unified(res.source, res.formatted, name, name+" (formatted)"))
		case res.path == stdinPath && !opts.check:
			fmt.Fprint(stdout, res.formatted)
		case res.changed() && opts.check:
			fmt.Fprintf(stderr, "would reformat %s\n", name)
		case res.changed() && res.path != stdinPath:
			fmt.Fprintf(stderr, "reformatted %s\n", name)
		}
	}

	verb := "reformatted"
	if opts.check || opts.diff {
		verb = "would be reformatted"
	}
	slog.Debug("done", "changed", changed, "unchanged", unchanged, "failed", failed)

	if failed > 0 {
		return &exitError{code: exitFailed, msg: fmt.Sprintf("%d file(s) %s, %d failed to format", changed, verb, failed)}
	}
	if opts.check && changed > 0 {
		return &exitError{code: exitChanged, msg: fmt.Sprintf("%d file(s) %s", changed, verb)}
	}
	return nil
}
