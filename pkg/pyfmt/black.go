package pyfmt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// Black formats code by running the black executable.
type Black struct {
	// Path to the executable; "black" is looked up on $PATH when empty.
	Path string
}

var _ Engine = Black{}

// BlackAvailable reports whether the black executable can be found.
func BlackAvailable(path string) bool {
	if path == "" {
		path = "black"
	}
	_, err := exec.LookPath(path)
	return err == nil
}

func (b Black) Format(ctx context.Context, code string, style Style) (string, error) {
	path := b.Path
	if path == "" {
		path = "black"
	}

	args := append([]string{"--quiet"}, style.BlackArgs()...)
	args = append(args, "-")

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = strings.NewReader(code)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if !errors.As(err, &exitErr) {
			return "", fmt.Errorf("run %s: %w", path, err)
		}
		if serr := parseBlackError(stderr.String()); serr != nil {
			return "", serr
		}
		return "", fmt.Errorf("%s exited with status %d: %s", path, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// black reports e.g. "error: cannot format -: Cannot parse: 1:4: def(" or,
// with target versions, "Cannot parse for target version Python 3.12: 1:4: ..."
var cannotParse = regexp.MustCompile(`Cannot parse[^:\n]*: (\d+):(\d+): ?(.*)`)

func parseBlackError(stderr string) *SyntaxError {
	m := cannotParse.FindStringSubmatch(stderr)
	if m == nil {
		return nil
	}
	line, _ := strconv.Atoi(m[1])
	col, _ := strconv.Atoi(m[2])
	return &SyntaxError{Line: line, Column: col, Msg: strings.TrimSpace(m[3])}
}
