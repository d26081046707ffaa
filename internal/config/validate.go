package config

import (
	"fmt"
	"strings"

	"github.com/conn-castle/agent-deploy/internal/messages"
)

// Validate ensures the settings are complete and consistent.
func (s *Settings) Validate(path string) error {
	required := []struct {
		name  string
		value string
	}{
		{"service.unit", s.Service.Unit},
		{"service.audit_unit", s.Service.AuditUnit},
		{"service.cli", s.Service.CLI},
		{"service.runtime", s.Service.Runtime},
		{"service.workspace", s.Service.Workspace},
		{"installer.script", s.Installer.Script},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf(messages.SettingsFieldRequiredFmt, path, field.name)
		}
	}
	if s.Probe.Timeout <= 0 {
		return fmt.Errorf(messages.SettingsPositiveDurationFmt, path, "probe.timeout")
	}
	if s.Readiness.AttemptTimeout <= 0 {
		return fmt.Errorf(messages.SettingsPositiveDurationFmt, path, "readiness.attempt_timeout")
	}
	if s.Readiness.BaseBackoff < 0 || s.Readiness.MaxBackoff < s.Readiness.BaseBackoff {
		return fmt.Errorf(messages.SettingsBackoffInvalidFmt, path)
	}
	if s.Readiness.Attempts < 1 {
		return fmt.Errorf(messages.SettingsAttemptsInvalidFmt, path)
	}
	if !validPercent(s.Thresholds.MinFreeMemoryPercent) {
		return fmt.Errorf(messages.SettingsPercentInvalidFmt, path, "thresholds.min_free_memory_percent")
	}
	if !validPercent(s.Thresholds.MinFreeDiskPercent) {
		return fmt.Errorf(messages.SettingsPercentInvalidFmt, path, "thresholds.min_free_disk_percent")
	}
	return nil
}

func validPercent(v int) bool {
	return v >= 0 && v <= 100
}
