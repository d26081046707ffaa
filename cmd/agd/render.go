package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/conn-castle/agent-deploy/internal/doctor"
	"github.com/conn-castle/agent-deploy/internal/health"
	"github.com/conn-castle/agent-deploy/internal/messages"
	"github.com/conn-castle/agent-deploy/internal/remote"
	"github.com/conn-castle/agent-deploy/internal/status"
)

// printResults renders every result and reports whether any failed.
func printResults(out io.Writer, results []doctor.Result) bool {
	for _, r := range results {
		printResult(out, r)
	}
	return doctor.HasFailure(results)
}

func printResult(out io.Writer, r doctor.Result) {
	var label string
	switch r.Status {
	case doctor.StatusOK:
		label = color.GreenString(messages.DoctorStatusOKLabel)
	case doctor.StatusWarn:
		label = color.YellowString(messages.DoctorStatusWarnLabel)
	case doctor.StatusFail:
		label = color.RedString(messages.DoctorStatusFailLabel)
	}

	_, _ = fmt.Fprintf(out, messages.DoctorResultLineFmt, label, r.CheckName, r.Message)
	if r.Recommendation != "" {
		printRecommendation(out, r.Recommendation)
	}
}

// printRecommendation renders a multi-line recommendation under its result line.
func printRecommendation(out io.Writer, recommendation string) {
	for i, line := range strings.Split(recommendation, "\n") {
		switch {
		case i == 0:
			_, _ = fmt.Fprintf(out, "%s%s\n", messages.DoctorRecommendationPrefix, line)
		case line == "":
			_, _ = fmt.Fprintln(out, messages.DoctorRecommendationIndent)
		default:
			_, _ = fmt.Fprintf(out, "%s%s\n", messages.DoctorRecommendationIndent, line)
		}
	}
}

func printTarget(out io.Writer, target remote.Target) {
	name := messages.CLINoTarget
	if target.Valid() {
		name = target.String()
	}
	_, _ = fmt.Fprintf(out, messages.CLITargetFmt, name)
}

func printStatusLine(out io.Writer, report status.Report) {
	_, _ = fmt.Fprintf(out, messages.CLIDeployStatusFmt, colorStatus(report.Status), report.Score, report.MaxScore)
}

func printHealthLine(out io.Writer, report health.Report) {
	_, _ = fmt.Fprintf(out, messages.CLIHealthFmt, colorTier(report.Tier), report.Score, report.PassedWeight, report.MaxWeight)
}

// printHealthDetail adds the numbers behind the memory, disk, CLI and firewall checks.
func printHealthDetail(out io.Writer, report health.Report) {
	if report.CLIVersion != "" {
		_, _ = fmt.Fprintf(out, messages.CLIVersionFmt, report.CLIVersion)
	}
	if report.Memory.TotalKB > 0 {
		_, _ = fmt.Fprintf(out, messages.CLIMemoryFmt, report.Memory)
	}
	if report.Disk.TotalKB > 0 {
		_, _ = fmt.Fprintf(out, messages.CLIDiskFmt, report.Disk)
	}
	if report.FirewallStatus != "" {
		_, _ = fmt.Fprintf(out, messages.CLIFirewallFmt, report.FirewallStatus)
	}
}

func colorStatus(s status.Status) string {
	switch s {
	case status.Deployed:
		return color.GreenString(s.String())
	case status.Partial:
		return color.YellowString(s.String())
	default:
		return color.RedString(s.String())
	}
}

func colorTier(t health.Tier) string {
	switch t {
	case health.Healthy:
		return color.GreenString(t.String())
	case health.Degraded:
		return color.YellowString(t.String())
	default:
		return color.RedString(t.String())
	}
}
