// Package remote runs short-lived commands on the target host over ssh.
package remote

import (
	"context"
	"time"
)

// Probe executes one command against a target and reports the outcome.
// Probes never retry; callers decide how to treat transient failures.
type Probe interface {
	// Run executes cmd and reports success, the trimmed stdout, and the failure cause.
	Run(ctx context.Context, target Target, name string, cmd Command, timeout time.Duration) Result
	// RunCaptured executes cmd and returns the trimmed stdout and whether it succeeded.
	RunCaptured(ctx context.Context, target Target, name string, cmd Command, timeout time.Duration) (string, bool)
}

// Connectivity is the no-op command used for preflight checks.
var Connectivity = Cmd("true")
