package remote

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/conn-castle/agent-deploy/internal/logging"
)

// sshChannelExitCode is what ssh exits with when the channel itself failed.
const sshChannelExitCode = 255

var authFailureMarkers = []string{
	"Permission denied",
	"Host key verification failed",
	"Too many authentication failures",
	"no such identity",
}

// SSHProbe implements Probe by running the local ssh client in batch mode.
type SSHProbe struct {
	runner Runner
	binary string
	logger logging.Logger
}

// NewSSHProbe returns a probe that runs ssh through runner.
func NewSSHProbe(runner Runner, logger logging.Logger) *SSHProbe {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = logging.Component(nil, "remote")
	}
	return &SSHProbe{runner: runner, binary: "ssh", logger: logger}
}

// Args returns the ssh argument list for running cmd on target.
func (p *SSHProbe) Args(target Target, cmd Command, timeout time.Duration) []string {
	args := SSHOptions(target, timeout)
	return append(args, target.Destination(), "--", cmd.String())
}

// SSHOptions returns the non-interactive ssh options for target.
// BatchMode makes a missing credential fail fast instead of prompting.
func SSHOptions(target Target, timeout time.Duration) []string {
	args := []string{
		"-o", "BatchMode=yes",
		"-o", "ConnectTimeout=" + strconv.Itoa(connectTimeoutSeconds(timeout)),
		"-o", "StrictHostKeyChecking=accept-new",
	}
	if target.Port != 0 && target.Port != DefaultSSHPort {
		args = append(args, "-p", strconv.Itoa(target.Port))
	}
	if target.IdentityFile != "" {
		args = append(args, "-i", target.IdentityFile)
	}
	return args
}

// Run executes cmd on target within timeout.
func (p *SSHProbe) Run(ctx context.Context, target Target, name string, cmd Command, timeout time.Duration) Result {
	start := time.Now()
	result := p.run(ctx, target, name, cmd, timeout)
	entry := p.logger.WithField("check", name).
		WithField("target", target.String()).
		WithField("ok", result.Succeeded).
		WithField("elapsed", time.Since(start).Round(time.Millisecond))
	if result.Err != nil {
		entry = entry.WithError(result.Err)
	}
	entry.Debug("probe finished")
	return result
}

// RunCaptured executes cmd on target and returns its trimmed stdout.
func (p *SSHProbe) RunCaptured(ctx context.Context, target Target, name string, cmd Command, timeout time.Duration) (string, bool) {
	result := p.Run(ctx, target, name, cmd, timeout)
	return result.Output, result.Succeeded
}

func (p *SSHProbe) run(ctx context.Context, target Target, name string, cmd Command, timeout time.Duration) Result {
	result := Result{CheckName: name}
	if !target.Valid() {
		result.Err = &ConnectError{Target: target.String(), Detail: "no target address configured"}
		return result
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := p.runner.Run(runCtx, p.binary, p.Args(target, cmd, timeout))
	result.Output = strings.TrimSpace(out.Stdout)
	result.Err = classify(target, cmd, out, err)
	result.Succeeded = result.Err == nil
	return result
}

// classify maps a finished ssh invocation onto the failure taxonomy.
func classify(target Target, cmd Command, out Output, err error) error {
	if err != nil {
		return &ConnectError{
			Target:  target.String(),
			Timeout: errors.Is(err, context.DeadlineExceeded),
			Err:     err,
		}
	}
	if out.ExitCode == 0 {
		return nil
	}
	stderr := strings.TrimSpace(out.Stderr)
	if out.ExitCode == sshChannelExitCode {
		for _, marker := range authFailureMarkers {
			if strings.Contains(stderr, marker) {
				return &AuthError{Target: target.String(), Detail: firstLine(stderr)}
			}
		}
		return &ConnectError{Target: target.String(), Detail: firstLine(stderr)}
	}
	return &ExitError{Command: cmd.String(), ExitCode: out.ExitCode, Stderr: firstLine(stderr)}
}

// connectTimeoutSeconds rounds timeout up to whole seconds, minimum one.
func connectTimeoutSeconds(timeout time.Duration) int {
	seconds := int(math.Ceil(timeout.Seconds()))
	if seconds < 1 {
		return 1
	}
	return seconds
}
