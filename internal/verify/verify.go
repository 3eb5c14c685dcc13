// Package verify runs the package's test suite after a patch.
package verify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sokinpui/hyfix/internal/fs"
	"github.com/sokinpui/hyfix/model"
)

// Result is the outcome of one test run.
type Result struct {
	Status   model.VerifyStatus
	Dir      string
	ExitCode int
	// Output is the combined stdout and stderr of the runner.
	Output   string
	Duration time.Duration
	// Reason explains a skipped run.
	Reason string
}

// Passed reports whether the tests ran and succeeded.
func (r Result) Passed() bool {
	return r.Status == model.VerifyPassed
}

// Func runs the tests found in dir. A nonzero exit of the runner is a
// failed Result, not an error; errors mean the runner could not be started.
type Func func(ctx context.Context, dir string) (Result, error)

// Skipped builds a skipped Result.
func Skipped(dir, reason string) Result {
	return Result{Status: model.VerifySkipped, Dir: dir, ExitCode: -1, Reason: reason}
}

// Run skips verification when dir does not exist and otherwise calls run.
func Run(ctx context.Context, dir string, run Func) (Result, error) {
	if strings.TrimSpace(dir) == "" {
		return Skipped(dir, "no test directory configured"), nil
	}
	if !fs.IsDir(dir) {
		return Skipped(dir, fmt.Sprintf("test directory not found at %s", dir)), nil
	}
	if run == nil {
		return Skipped(dir, "no test runner configured"), nil
	}
	return run(ctx, dir)
}

const waitDelay = 2 * time.Second

// CommandRunner runs an external test command with the test directory as
// its last argument.
type CommandRunner struct {
	// Command is the program and its leading arguments.
	Command []string
	// Timeout bounds the run. Zero means no limit beyond ctx.
	Timeout time.Duration
}

// Pytest returns the default runner: <python> -m pytest -v <dir>.
func Pytest(python string) *CommandRunner {
	if strings.TrimSpace(python) == "" {
		python = "python3"
	}
	return &CommandRunner{Command: []string{python, "-m", "pytest", "-v"}}
}

// Func adapts the runner to a Func.
func (r *CommandRunner) Func() Func {
	return r.Run
}

// Run executes the command from the parent of dir and captures its output.
func (r *CommandRunner) Run(ctx context.Context, dir string) (Result, error) {
	if len(r.Command) == 0 {
		return Result{}, errors.New("verify: empty test command")
	}

	runCtx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return Result{}, fmt.Errorf("verify: %w", err)
	}

	args := append(append([]string{}, r.Command[1:]...), abs)
	cmd := exec.CommandContext(runCtx, r.Command[0], args...)
	cmd.Dir = filepath.Dir(abs)
	// Children of the runner may hold the output pipe open after it is killed.
	cmd.WaitDelay = waitDelay

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	start := time.Now()
	runErr := cmd.Run()
	res := Result{
		Dir:      abs,
		Output:   output.String(),
		Duration: time.Since(start),
	}

	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
		res.Status = model.VerifyPassed
		res.ExitCode = 0
		return res, nil
	case runCtx.Err() != nil:
		res.Status = model.VerifyFailed
		res.ExitCode = -1
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			res.Reason = fmt.Sprintf("timed out after %s", r.Timeout)
			return res, nil
		}
		return res, fmt.Errorf("verify: interrupted: %w", ctx.Err())
	case errors.As(runErr, &exitErr):
		res.Status = model.VerifyFailed
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	default:
		return res, fmt.Errorf("verify: start %s: %w", r.Command[0], runErr)
	}
}
