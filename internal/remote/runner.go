package remote

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// waitDelay bounds how long Run waits for output pipes after the context kills the process.
const waitDelay = time.Second

// Output is what a finished local process produced.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner starts local processes. A non-zero exit is reported through
// Output.ExitCode; the error is reserved for processes that could not run to
// completion (missing binary, timeout, cancellation).
type Runner interface {
	Run(ctx context.Context, name string, args []string) (Output, error)
}

// ExecRunner implements Runner with os/exec.
type ExecRunner struct{}

// Run executes name with args and captures its output.
func (ExecRunner) Run(ctx context.Context, name string, args []string) (Output, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return out, err
	}
	return out, nil
}
