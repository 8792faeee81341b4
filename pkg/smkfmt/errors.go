package smkfmt

import (
	"errors"
	"fmt"
	"strings"
)

// InvalidCodeError reports a span of code the code formatter could not
// parse. Line is the 1-indexed line of the workflow file where the span (or
// the reported position inside it) starts.
type InvalidCodeError struct {
	Line int
	Code string
	Err  error
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("L%d: invalid python code: %v\n```\n%s\n```", e.Line, e.Err, strings.TrimRight(e.Code, "\n"))
}

func (e *InvalidCodeError) Unwrap() error {
	return e.Err
}

// InvalidParameterSyntaxError reports a parameter value that is not a valid
// call argument.
type InvalidParameterSyntaxError struct {
	Line  int
	Value string
	Err   error
}

func (e *InvalidParameterSyntaxError) Error() string {
	return fmt.Sprintf("L%d: invalid parameter syntax: %s", e.Line, e.Value)
}

func (e *InvalidParameterSyntaxError) Unwrap() error {
	return e.Err
}

// ErrConfigNotFound is returned when an explicitly given configuration file
// does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// MalformedConfigError reports a configuration file that is not valid TOML.
type MalformedConfigError struct {
	Path string
	Err  error
}

func (e *MalformedConfigError) Error() string {
	return fmt.Sprintf("malformed configuration %s: %v", e.Path, e.Err)
}

func (e *MalformedConfigError) Unwrap() error {
	return e.Err
}

// InvalidConfigError reports a configuration key that is unknown or carries
// an unsupported value.
type InvalidConfigError struct {
	Path string
	Key  string
	Msg  string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s: %s", e.Path, e.Key, e.Msg)
}
