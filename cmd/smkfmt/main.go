package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/vito/smkfmt/pkg/pyfmt"
)

// Config holds the command line flags.
type Config struct {
	Debug      bool
	LineLength int
	ConfigPath string
	Check      bool
	Diff       bool
	Include    []string
	Exclude    []string
	Engine     string
	Jobs       int
	Watch      bool
}

// exitError carries a specific exit status out of fang.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string {
	return e.msg
}

const (
	exitChanged = 1
	exitFailed  = 123
)

func main() {
	if err := fang.Execute(context.Background(), newRootCmd(),
		fang.WithVersion("v0.1.0"),
		fang.WithCommit("dev"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		os.Exit(exitFailed)
	}
}

func newRootCmd() *cobra.Command {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:   "smkfmt [flags] [path...]",
		Short: "Format Snakemake workflow files",
		Long: `smkfmt formats Snakemake workflow files according to a canonical style.

Directories are searched for workflow files matching --include and not
matching --exclude. Files are rewritten in place unless --check or --diff
is given. Use "-" to read from stdin and write to stdout.

Embedded python is formatted with black when it is installed, falling back to
a builtin engine that only validates code and normalises whitespace.`,
		Example: `  # Format every workflow file below the current directory
  smkfmt .

  # Report files that would change, exiting 1 if any would
  smkfmt --check workflow/

  # Show what would change
  smkfmt --diff Snakefile

  # Format stdin
  cat Snakefile | smkfmt -

  # Reformat files as they are saved
  smkfmt --watch workflow/`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cfg.Debug)
			if len(args) == 0 {
				args = []string{"."}
			}

			opts, err := resolveOptions(cmd, cfg)
			if err != nil {
				return &exitError{code: exitFailed, msg: err.Error()}
			}

			if cfg.Watch {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return watch(ctx, opts, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
			}
			return run(cmd.Context(), opts, args, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := rootCmd.Flags()
	flags.BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	flags.IntVarP(&cfg.LineLength, "line-length", "l", pyfmt.DefaultLineLength, "Maximum line length")
	flags.StringVar(&cfg.ConfigPath, "config", "", "Read [tool.black] and [tool.smkfmt] from this pyproject.toml (searched for when unset)")
	flags.BoolVar(&cfg.Check, "check", false, "Don't write files; exit 1 if any would be reformatted")
	flags.BoolVar(&cfg.Diff, "diff", false, "Don't write files; print a diff of the changes instead")
	flags.StringSliceVar(&cfg.Include, "include", defaultInclude, "Glob patterns of files to format in directories")
	flags.StringSliceVar(&cfg.Exclude, "exclude", defaultExclude, "Glob patterns of files and directories to skip")
	flags.StringVar(&cfg.Engine, "engine", engineAuto, "Python formatting engine: auto, black or builtin")
	flags.IntVarP(&cfg.Jobs, "jobs", "j", runtime.NumCPU(), "Number of files formatted in parallel")
	flags.BoolVar(&cfg.Watch, "watch", false, "Keep running and format files when they change")

	return rootCmd
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
