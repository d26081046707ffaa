// Package status classifies how much of the agent install is present on a target host.
package status

import (
	"context"
	"time"

	"github.com/conn-castle/agent-deploy/internal/config"
	"github.com/conn-castle/agent-deploy/internal/logging"
	"github.com/conn-castle/agent-deploy/internal/messages"
	"github.com/conn-castle/agent-deploy/internal/remote"
)

// Status is the deployment classification of a target.
type Status int

const (
	// NotDeployed means no battery check passed, the host is unreachable, or no target is configured.
	NotDeployed Status = iota
	// Partial means some but not all battery checks passed.
	Partial
	// Deployed means every battery check passed.
	Deployed
)

// String returns the operator-facing name of the status.
func (s Status) String() string {
	switch s {
	case NotDeployed:
		return "not-deployed"
	case Partial:
		return "partial"
	case Deployed:
		return "deployed"
	default:
		return "unknown"
	}
}

// Check names.
const (
	CheckConnectivity   = "connectivity"
	CheckServiceAccount = "service-account"
	CheckCLI            = "cli-entrypoint"
	CheckServiceUnit    = "service-unit"
	CheckWorkspace      = "workspace"
	CheckRuntime        = "runtime"
)

// Check is one battery entry.
type Check struct {
	Name    string
	Label   string
	Command remote.Command
}

// Battery returns the ordered deployment battery for the configured service layout.
func Battery(service config.ServiceSettings, account string) []Check {
	return []Check{
		{Name: CheckServiceAccount, Label: messages.StatusLabelServiceAccount, Command: remote.Cmd("id", "-u", account)},
		{Name: CheckCLI, Label: messages.StatusLabelCLI, Command: remote.Cmd("command", "-v", service.CLI)},
		{Name: CheckServiceUnit, Label: messages.StatusLabelServiceUnit, Command: remote.Cmd("systemctl", "cat", service.Unit)},
		{Name: CheckWorkspace, Label: messages.StatusLabelWorkspace, Command: remote.Cmd("test", "-d", service.Workspace)},
		{Name: CheckRuntime, Label: messages.StatusLabelRuntime, Command: remote.Cmd("command", "-v", service.Runtime)},
	}
}

// Report is the detailed outcome of one resolution pass.
type Report struct {
	Status   Status
	Score    int
	MaxScore int
	// Preflight is the connectivity result; zero when no target was configured.
	Preflight remote.Result
	// Results holds one entry per battery check that ran, in battery order.
	Results []remote.Result
	// Skipped is set when the battery did not run.
	Skipped bool
}

// Reachable reports whether the preflight succeeded.
func (r Report) Reachable() bool {
	return r.Preflight.Succeeded
}

// Resolver runs the deployment battery against a target.
type Resolver struct {
	probe   remote.Probe
	battery []Check
	timeout time.Duration
	logger  logging.Logger
}

// NewResolver returns a resolver running battery through probe with a per-check timeout.
func NewResolver(probe remote.Probe, battery []Check, timeout time.Duration, logger logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.Component(nil, "status")
	}
	return &Resolver{probe: probe, battery: battery, timeout: timeout, logger: logger}
}

// Resolve classifies the target.
func (r *Resolver) Resolve(ctx context.Context, target remote.Target) Status {
	return r.ResolveDetailed(ctx, target).Status
}

// ResolveDetailed classifies the target and returns every probe result.
// An invalid target returns NotDeployed without touching the network; an
// unreachable target returns NotDeployed after the single preflight.
func (r *Resolver) ResolveDetailed(ctx context.Context, target remote.Target) Report {
	report := Report{Status: NotDeployed, MaxScore: len(r.battery)}
	if !target.Valid() {
		report.Skipped = true
		r.logger.Debug("no valid target configured; skipping deployment probes")
		return report
	}

	report.Preflight = r.probe.Run(ctx, target, CheckConnectivity, remote.Connectivity, r.timeout)
	if !report.Preflight.Succeeded {
		report.Skipped = true
		r.logger.WithError(report.Preflight.Err).Warn("preflight failed; skipping deployment battery")
		return report
	}

	for _, check := range r.battery {
		result := r.probe.Run(ctx, target, check.Name, check.Command, r.timeout)
		if result.Succeeded {
			report.Score++
		}
		report.Results = append(report.Results, result)
	}
	report.Status = Classify(report.Score, report.MaxScore)
	r.logger.WithField("score", report.Score).
		WithField("max", report.MaxScore).
		WithField("status", report.Status.String()).
		Debug("deployment resolved")
	return report
}

// Classify maps a battery score onto a Status.
func Classify(score int, maxScore int) Status {
	switch {
	case score <= 0:
		return NotDeployed
	case score >= maxScore:
		return Deployed
	default:
		return Partial
	}
}
