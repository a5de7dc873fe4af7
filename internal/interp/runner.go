// Package interp queries Python interpreters installed on the build machine.
package interp

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
)

// DefaultPython is the build interpreter used when none is configured.
const DefaultPython = "python3"

// Runner executes a program and returns its standard output.
type Runner interface {
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func (f RunnerFunc) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return f(ctx, name, args...)
}

// ExecRunner runs commands with os/exec. Standard error is kept and attached
// to the returned *exec.ExitError.
type ExecRunner struct {
	// Env is appended to the inherited environment when non-empty.
	Env []string
}

func (r ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	// #nosec G204 -- interpreter paths come from configuration or CLI flags
	cmd := exec.CommandContext(ctx, name, args...)
	if len(r.Env) > 0 {
		cmd.Env = append(cmd.Environ(), r.Env...)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	var ee *exec.ExitError
	if errors.As(err, &ee) && len(ee.Stderr) == 0 {
		ee.Stderr = bytes.TrimSpace(stderr.Bytes())
	}
	return out, err
}

// Eval runs python -c code and returns trimmed stdout.
func Eval(ctx context.Context, r Runner, python, code string) (string, error) {
	out, err := r.Output(ctx, python, "-c", code)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
