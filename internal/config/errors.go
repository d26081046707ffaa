package config

import (
	"fmt"
	"strings"

	"github.com/conn-castle/agent-deploy/internal/messages"
)

// ConfigError reports required keys that are unset or still hold their placeholder.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf(messages.ConfigErrorFmt, strings.Join(e.Missing, ", "))
}
