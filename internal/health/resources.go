package health

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/conn-castle/agent-deploy/internal/messages"
)

// Usage is a capacity reading in kibibytes.
type Usage struct {
	TotalKB     int64
	AvailableKB int64
}

// String renders the free share and the absolute numbers in MiB.
func (u Usage) String() string {
	return fmt.Sprintf(messages.HealthDetailUsageFmt, u.FreePercent(), u.AvailableKB/1024, u.TotalKB/1024)
}

// FreePercent returns the available share of the total as a percentage.
func (u Usage) FreePercent() float64 {
	if u.TotalKB <= 0 {
		return 0
	}
	return 100 * float64(u.AvailableKB) / float64(u.TotalKB)
}

// parseMeminfo reads MemTotal and MemAvailable from /proc/meminfo content.
func parseMeminfo(content string) (Usage, error) {
	var usage Usage
	var haveTotal, haveAvailable bool
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		value, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			usage.TotalKB, haveTotal = value, true
		case "MemAvailable:":
			usage.AvailableKB, haveAvailable = value, true
		}
	}
	if !haveTotal || !haveAvailable || usage.TotalKB <= 0 {
		return Usage{}, fmt.Errorf(messages.HealthMeminfoUnparsable)
	}
	return usage, nil
}

// parseDF reads total and available 1K blocks from POSIX `df -Pk` output.
func parseDF(content string) (Usage, error) {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) < 2 {
		return Usage{}, fmt.Errorf(messages.HealthDFUnparsable)
	}
	fields := strings.Fields(lines[len(lines)-1])
	if len(fields) < 4 {
		return Usage{}, fmt.Errorf(messages.HealthDFUnparsable)
	}
	total, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || total <= 0 {
		return Usage{}, fmt.Errorf(messages.HealthDFUnparsable)
	}
	available, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return Usage{}, fmt.Errorf(messages.HealthDFUnparsable)
	}
	return Usage{TotalKB: total, AvailableKB: available}, nil
}

// firewallActive reports whether `ufw status` output says the firewall is on.
func firewallActive(output string) bool {
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "Status:") {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, "Status:")) == "active"
		}
	}
	return false
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
