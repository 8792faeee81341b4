package smkfmt

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/vito/smkfmt/pkg/pyfmt"
)

// ProjectConfigFile is the file searched for by FindProjectConfig.
const ProjectConfigFile = "pyproject.toml"

// ProjectConfig is the part of a pyproject.toml file the formatter reads.
type ProjectConfig struct {
	Tool struct {
		// Black holds the code formatter options, kept raw so unknown keys
		// can be reported.
		Black map[string]any `toml:"black"`
		// Smkfmt holds defaults for the command line.
		Smkfmt Settings `toml:"smkfmt"`
	} `toml:"tool"`

	path string
}

// Settings are command line defaults read from [tool.smkfmt].
type Settings struct {
	LineLength int      `toml:"line_length"`
	Include    []string `toml:"include"`
	Exclude    []string `toml:"exclude"`
	Engine     string   `toml:"engine"`
}

// black options that select files rather than shape output
var ignoredBlackKeys = map[string]bool{
	"include":          true,
	"exclude":          true,
	"extend_exclude":   true,
	"force_exclude":    true,
	"quiet":            true,
	"verbose":          true,
	"color":            true,
	"required_version": true,
	"workers":          true,
	"check":            true,
	"diff":             true,
	"fast":             true,
}

var targetVersions = map[string]bool{
	"py33": true, "py34": true, "py35": true, "py36": true, "py37": true,
	"py38": true, "py39": true, "py310": true, "py311": true, "py312": true,
	"py313": true,
}

// LoadProjectConfig reads a pyproject.toml file.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, errors.Wrap(ErrConfigNotFound, path)
	}

	config := &ProjectConfig{path: path}
	if _, err := toml.DecodeFile(path, config); err != nil {
		var perr toml.ParseError
		if errors.As(err, &perr) {
			return nil, &MalformedConfigError{Path: path, Err: err}
		}
		return nil, &InvalidConfigError{Path: path, Key: "tool", Msg: err.Error()}
	}
	return config, nil
}

// LoadStyle resolves the code formatter style. With no path the default
// style for lineLength is used. A line length in the file takes precedence
// over lineLength.
func LoadStyle(path string, lineLength int) (pyfmt.Style, error) {
	if path == "" {
		return pyfmt.DefaultStyle(lineLength), nil
	}
	config, err := LoadProjectConfig(path)
	if err != nil {
		return pyfmt.Style{}, err
	}
	return config.Style(lineLength)
}

// Style converts the [tool.black] table.
func (c *ProjectConfig) Style(lineLength int) (pyfmt.Style, error) {
	style := pyfmt.DefaultStyle(lineLength)

	keys := make([]string, 0, len(c.Tool.Black))
	for k := range c.Tool.Black {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, raw := range keys {
		value := c.Tool.Black[raw]
		invalid := func(msg string) (pyfmt.Style, error) {
			return pyfmt.Style{}, &InvalidConfigError{Path: c.path, Key: "tool.black." + raw, Msg: msg}
		}

		switch key := strings.ReplaceAll(raw, "-", "_"); key {
		case "line_length":
			n, ok := value.(int64)
			if !ok || n <= 0 {
				return invalid("must be a positive integer")
			}
			style.LineLength = int(n)
		case "target_version":
			versions, ok := stringList(value)
			if !ok {
				return invalid("must be a string or a list of strings")
			}
			for _, v := range versions {
				if !targetVersions[v] {
					return invalid("unknown target version " + v)
				}
			}
			style.TargetVersions = versions
		case "skip_string_normalization", "skip_magic_trailing_comma", "preview", "pyi":
			b, ok := value.(bool)
			if !ok {
				return invalid("must be a boolean")
			}
			switch key {
			case "skip_string_normalization":
				style.SkipStringNormalization = b
			case "skip_magic_trailing_comma":
				style.SkipMagicTrailingComma = b
			case "preview":
				style.Preview = b
			case "pyi":
				style.Pyi = b
			}
		default:
			if ignoredBlackKeys[key] {
				continue
			}
			return invalid("unsupported option")
		}
	}
	return style, nil
}

func stringList(value any) ([]string, bool) {
	switch v := value.(type) {
	case string:
		return []string{v}, true
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// FindProjectConfig searches for pyproject.toml starting from dir and
// walking up to parent directories, stopping at a .git boundary. It returns
// "" when there is none.
func FindProjectConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, ProjectConfigFile)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}

		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
