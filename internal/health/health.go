package health

import (
	"context"
	"fmt"
	"time"

	"github.com/conn-castle/agent-deploy/internal/config"
	"github.com/conn-castle/agent-deploy/internal/logging"
	"github.com/conn-castle/agent-deploy/internal/messages"
	"github.com/conn-castle/agent-deploy/internal/remote"
)

// Check names. Remediation maps failing names onto fixes.
const (
	CheckConnectivity   = "connectivity"
	CheckPrimaryService = "primary-service"
	CheckAuditService   = "audit-service"
	CheckMemory         = "memory"
	CheckDisk           = "disk"
	CheckCLI            = "cli"
	CheckFirewall       = "firewall"

	// checkAuditInstalled decides whether CheckAuditService applies.
	checkAuditInstalled = "audit-installed"
	// checkDiskRoot measures the root filesystem when the workspace is missing.
	checkDiskRoot = "disk-root"
)

// Check weights.
const (
	WeightConnectivity   = 10
	WeightPrimaryService = 30
	WeightAuditService   = 10
	WeightMemory         = 15
	WeightDisk           = 15
	WeightCLI            = 10
	WeightFirewall       = 10
)

const serviceActive = "active"

// CheckResult is the scored outcome of one health check.
type CheckResult struct {
	Name       string
	Label      string
	Weight     int
	Applicable bool
	Passed     bool
	Detail     string
	Err        error
}

// Report is the terse classification and the verbose explanation from one probe pass.
type Report struct {
	Tier         Tier
	Score        int
	PassedWeight int
	MaxWeight    int
	Checks       []CheckResult
	// Failing lists applicable checks that did not pass, in battery order.
	Failing []string

	Reachable      bool
	ConnectErr     error
	PrimaryState   string
	AuditInstalled bool
	AuditState     string
	Memory         Usage
	Disk           Usage
	FirewallStatus string
	CLIVersion     string
}

// Failed reports whether name is among the failing checks.
func (r Report) Failed(name string) bool {
	for _, failing := range r.Failing {
		if failing == name {
			return true
		}
	}
	return false
}

// Resolver runs the weighted health battery.
type Resolver struct {
	probe      remote.Probe
	service    config.ServiceSettings
	thresholds config.ThresholdSettings
	timeout    time.Duration
	logger     logging.Logger
}

// NewResolver returns a health resolver using settings for unit names, thresholds, and timeouts.
func NewResolver(probe remote.Probe, settings config.Settings, logger logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.Component(nil, "health")
	}
	return &Resolver{
		probe:      probe,
		service:    settings.Service,
		thresholds: settings.Thresholds,
		timeout:    settings.Probe.Timeout.Std(),
		logger:     logger,
	}
}

// Resolve runs every applicable check once and scores the target.
// A connectivity failure stops the pass and yields Unhealthy with score 0.
// An invalid target is treated as unreachable without touching the network.
func (r *Resolver) Resolve(ctx context.Context, target remote.Target) Report {
	var report Report

	var connectivity remote.Result
	if target.Valid() {
		connectivity = r.probe.Run(ctx, target, CheckConnectivity, remote.Connectivity, r.timeout)
	}
	if !connectivity.Succeeded {
		report.Tier = Unhealthy
		report.ConnectErr = connectivity.Err
		report.Checks = []CheckResult{{
			Name:       CheckConnectivity,
			Label:      messages.HealthLabelConnectivity,
			Weight:     WeightConnectivity,
			Applicable: true,
			Err:        connectivity.Err,
		}}
		report.Failing = []string{CheckConnectivity}
		r.logger.WithError(connectivity.Err).Warn("connectivity failed; target is unhealthy")
		return report
	}
	report.Reachable = true
	report.add(CheckResult{Name: CheckConnectivity, Label: messages.HealthLabelConnectivity, Weight: WeightConnectivity, Applicable: true, Passed: true})

	report.add(r.primaryService(ctx, target, &report))
	report.add(r.auditService(ctx, target, &report))
	report.add(r.memory(ctx, target, &report))
	report.add(r.disk(ctx, target, &report))
	report.add(r.cli(ctx, target, &report))
	report.add(r.firewall(ctx, target, &report))

	report.Score = Score(report.PassedWeight, report.MaxWeight)
	report.Tier = TierFor(report.Score)
	r.logger.WithField("score", report.Score).
		WithField("tier", report.Tier.String()).
		WithField("failing", report.Failing).
		Debug("health resolved")
	return report
}

// add records a check and folds it into the weights.
func (r *Report) add(check CheckResult) {
	r.Checks = append(r.Checks, check)
	if !check.Applicable {
		return
	}
	r.MaxWeight += check.Weight
	if check.Passed {
		r.PassedWeight += check.Weight
		return
	}
	r.Failing = append(r.Failing, check.Name)
}

func (r *Resolver) primaryService(ctx context.Context, target remote.Target, report *Report) CheckResult {
	result := r.probe.Run(ctx, target, CheckPrimaryService, remote.Cmd("systemctl", "is-active", r.service.Unit), r.timeout)
	report.PrimaryState = stateOrUnknown(result.Output)
	return CheckResult{
		Name:       CheckPrimaryService,
		Label:      fmt.Sprintf(messages.HealthLabelServiceFmt, r.service.Unit),
		Weight:     WeightPrimaryService,
		Applicable: true,
		Passed:     result.Output == serviceActive,
		Detail:     report.PrimaryState,
		Err:        result.Err,
	}
}

func (r *Resolver) auditService(ctx context.Context, target remote.Target, report *Report) CheckResult {
	check := CheckResult{
		Name:   CheckAuditService,
		Label:  fmt.Sprintf(messages.HealthLabelServiceFmt, r.service.AuditUnit),
		Weight: WeightAuditService,
	}
	unitFile := "/etc/systemd/system/" + r.service.AuditUnit + ".service"
	installed := r.probe.Run(ctx, target, checkAuditInstalled, remote.Cmd("test", "-f", unitFile), r.timeout)
	report.AuditInstalled = installed.Succeeded
	if !installed.Succeeded {
		check.Detail = messages.HealthDetailNotInstalled
		return check
	}
	result := r.probe.Run(ctx, target, CheckAuditService, remote.Cmd("systemctl", "is-active", r.service.AuditUnit), r.timeout)
	report.AuditState = stateOrUnknown(result.Output)
	check.Applicable = true
	check.Passed = result.Output == serviceActive
	check.Detail = report.AuditState
	check.Err = result.Err
	return check
}

func (r *Resolver) memory(ctx context.Context, target remote.Target, report *Report) CheckResult {
	check := CheckResult{Name: CheckMemory, Label: messages.HealthLabelMemory, Weight: WeightMemory, Applicable: true}
	result := r.probe.Run(ctx, target, CheckMemory, remote.Cmd("cat", "/proc/meminfo"), r.timeout)
	if !result.Succeeded {
		check.Err = result.Err
		return check
	}
	usage, err := parseMeminfo(result.Output)
	if err != nil {
		check.Err = err
		return check
	}
	report.Memory = usage
	check.Passed = usage.FreePercent() >= float64(r.thresholds.MinFreeMemoryPercent)
	check.Detail = usage.String()
	return check
}

func (r *Resolver) disk(ctx context.Context, target remote.Target, report *Report) CheckResult {
	check := CheckResult{Name: CheckDisk, Label: messages.HealthLabelDisk, Weight: WeightDisk, Applicable: true}
	result := r.probe.Run(ctx, target, CheckDisk, remote.Cmd("df", "-Pk", r.service.Workspace), r.timeout)
	if !result.Succeeded {
		// The workspace may not exist yet on a damaged install; fall back to the root filesystem.
		result = r.probe.Run(ctx, target, checkDiskRoot, remote.Cmd("df", "-Pk", "/"), r.timeout)
	}
	if !result.Succeeded {
		check.Err = result.Err
		return check
	}
	usage, err := parseDF(result.Output)
	if err != nil {
		check.Err = err
		return check
	}
	report.Disk = usage
	check.Passed = usage.FreePercent() >= float64(r.thresholds.MinFreeDiskPercent)
	check.Detail = usage.String()
	return check
}

func (r *Resolver) cli(ctx context.Context, target remote.Target, report *Report) CheckResult {
	result := r.probe.Run(ctx, target, CheckCLI, remote.Cmd(r.service.CLI, "--version"), r.timeout)
	if result.Succeeded {
		report.CLIVersion = firstLine(result.Output)
	}
	return CheckResult{
		Name:       CheckCLI,
		Label:      fmt.Sprintf(messages.HealthLabelCLIFmt, r.service.CLI),
		Weight:     WeightCLI,
		Applicable: true,
		Passed:     result.Succeeded,
		Detail:     report.CLIVersion,
		Err:        result.Err,
	}
}

func (r *Resolver) firewall(ctx context.Context, target remote.Target, report *Report) CheckResult {
	result := r.probe.Run(ctx, target, CheckFirewall, remote.Sudo(remote.Cmd("ufw", "status")), r.timeout)
	report.FirewallStatus = messages.HealthDetailUnknown
	passed := false
	if result.Succeeded {
		passed = firewallActive(result.Output)
		report.FirewallStatus = firstLine(result.Output)
	}
	return CheckResult{
		Name:       CheckFirewall,
		Label:      messages.HealthLabelFirewall,
		Weight:     WeightFirewall,
		Applicable: true,
		Passed:     passed,
		Detail:     report.FirewallStatus,
		Err:        result.Err,
	}
}

func stateOrUnknown(output string) string {
	if output == "" {
		return messages.HealthDetailUnknown
	}
	return firstLine(output)
}
