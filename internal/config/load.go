package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/conn-castle/agent-deploy/internal/messages"
)

// ErrConfigValidation wraps settings validation failures (as opposed to TOML
// syntax or filesystem errors).
var ErrConfigValidation = errors.New("settings validation failed")

// Duration is a time.Duration decoded from TOML strings such as "5s".
type Duration time.Duration

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText renders the duration as a Go duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Settings holds the tunables for probing, remediation and readiness.
type Settings struct {
	Service    ServiceSettings   `toml:"service"`
	Probe      ProbeSettings     `toml:"probe"`
	Thresholds ThresholdSettings `toml:"thresholds"`
	Readiness  ReadinessSettings `toml:"readiness"`
	Installer  InstallerSettings `toml:"installer"`
}

// ServiceSettings names what the agent install puts on the target host.
type ServiceSettings struct {
	Unit      string `toml:"unit"`
	AuditUnit string `toml:"audit_unit"`
	CLI       string `toml:"cli"`
	Runtime   string `toml:"runtime"`
	Workspace string `toml:"workspace"`
}

// ProbeSettings bounds individual remote checks.
type ProbeSettings struct {
	Timeout Duration `toml:"timeout"`
}

// ThresholdSettings are the resource floors used by the health battery.
type ThresholdSettings struct {
	MinFreeMemoryPercent int `toml:"min_free_memory_percent"`
	MinFreeDiskPercent   int `toml:"min_free_disk_percent"`
}

// ReadinessSettings bounds the post-install readiness poll.
type ReadinessSettings struct {
	Attempts       int      `toml:"attempts"`
	AttemptTimeout Duration `toml:"attempt_timeout"`
	BaseBackoff    Duration `toml:"base_backoff"`
	MaxBackoff     Duration `toml:"max_backoff"`
}

// InstallerSettings locates the external install collaborator.
type InstallerSettings struct {
	Script string `toml:"script"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{
		Service: ServiceSettings{
			Unit:      "agent",
			AuditUnit: "agent-audit",
			CLI:       "agent",
			Runtime:   "node",
			Workspace: "/opt/agent/workspace",
		},
		Probe: ProbeSettings{Timeout: Duration(5 * time.Second)},
		Thresholds: ThresholdSettings{
			MinFreeMemoryPercent: 10,
			MinFreeDiskPercent:   10,
		},
		Readiness: ReadinessSettings{
			Attempts:       6,
			AttemptTimeout: Duration(30 * time.Second),
			BaseBackoff:    Duration(2 * time.Second),
			MaxBackoff:     Duration(10 * time.Second),
		},
		Installer: InstallerSettings{Script: "scripts/install.sh"},
	}
}

// LoadSettings reads the settings file at path over the defaults.
// A missing file yields the defaults.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSettings(), nil
		}
		return Settings{}, fmt.Errorf(messages.SettingsReadFailedFmt, path, err)
	}
	return ParseSettings(data, path)
}

// ParseSettings decodes TOML data over the defaults and validates the result.
// data is the TOML content; source is used in error messages.
func ParseSettings(data []byte, source string) (Settings, error) {
	settings := DefaultSettings()
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&settings); err != nil {
		return Settings{}, fmt.Errorf(messages.SettingsInvalidFmt, source, err)
	}
	if err := settings.Validate(source); err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}
	return settings, nil
}
