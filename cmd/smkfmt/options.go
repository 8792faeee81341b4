package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/vito/smkfmt/pkg/pyfmt"
	"github.com/vito/smkfmt/pkg/smkfmt"
)

const (
	engineAuto    = "auto"
	engineBlack   = "black"
	engineBuiltin = "builtin"
)

var (
	defaultInclude = []string{"**/Snakefile", "**/*.smk"}
	defaultExclude = []string{"**/.snakemake/**", "**/.git/**"}
)

// options is everything a run needs, after flags and project configuration
// have been merged.
type options struct {
	engine   pyfmt.Engine
	style    pyfmt.Style
	selector selector
	jobs     int
	check    bool
	diff     bool
}

// resolveOptions merges flags with the project configuration. Flags given
// on the command line win over [tool.smkfmt]; a line length in [tool.black]
// wins over both.
func resolveOptions(cmd *cobra.Command, cfg Config) (options, error) {
	changed := cmd.Flags().Changed

	configPath := cfg.ConfigPath
	if configPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return options{}, err
		}
		configPath, err = smkfmt.FindProjectConfig(cwd)
		if err != nil {
			return options{}, err
		}
	}

	var project *smkfmt.ProjectConfig
	var settings smkfmt.Settings
	if configPath != "" {
		var err error
		project, err = smkfmt.LoadProjectConfig(configPath)
		if err != nil {
			return options{}, err
		}
		settings = project.Tool.Smkfmt
		slog.Debug("loaded project configuration", "path", configPath)
	}

	lineLength := cfg.LineLength
	if !changed("line-length") && settings.LineLength > 0 {
		lineLength = settings.LineLength
	}
	style := pyfmt.DefaultStyle(lineLength)
	if project != nil {
		var err error
		style, err = project.Style(lineLength)
		if err != nil {
			return options{}, err
		}
	}

	include := pick(changed("include"), cfg.Include, settings.Include)
	exclude := pick(changed("exclude"), cfg.Exclude, settings.Exclude)
	for _, pattern := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return options{}, fmt.Errorf("invalid glob pattern %q", pattern)
		}
	}

	engineName := cfg.Engine
	if !changed("engine") && settings.Engine != "" {
		engineName = settings.Engine
	}
	engine, err := selectEngine(engineName)
	if err != nil {
		return options{}, err
	}

	jobs := cfg.Jobs
	if jobs < 1 {
		jobs = 1
	}

	return options{
		engine:   engine,
		style:    style,
		selector: selector{include: include, exclude: exclude},
		jobs:     jobs,
		check:    cfg.Check,
		diff:     cfg.Diff,
	}, nil
}

func pick(flagSet bool, flag, configured []string) []string {
	if !flagSet && len(configured) > 0 {
		return configured
	}
	return flag
}

func selectEngine(name string) (pyfmt.Engine, error) {
	switch name {
	case engineAuto, "":
		if pyfmt.BlackAvailable("") {
			return pyfmt.Black{}, nil
		}
		slog.Warn("black not found on $PATH; using the builtin engine")
		return pyfmt.Builtin{}, nil
	case engineBlack:
		if !pyfmt.BlackAvailable("") {
			return nil, fmt.Errorf("black not found on $PATH")
		}
		return pyfmt.Black{}, nil
	case engineBuiltin:
		return pyfmt.Builtin{}, nil
	default:
		return nil, fmt.Errorf("unknown engine %q (want %s, %s or %s)", name, engineAuto, engineBlack, engineBuiltin)
	}
}
