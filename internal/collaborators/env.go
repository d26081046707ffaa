package collaborators

import (
	"fmt"
	"strings"

	"github.com/conn-castle/agent-deploy/internal/config"
)

// EnvPrefix marks variables agd sets for collaborator processes.
const EnvPrefix = "AGD_"

// BuildEnv returns base with the store's settled values exported for a
// collaborator. Store values override inherited ones; placeholder and empty
// values are not exported so scripts can apply their own defaults. An empty
// target clears any inherited AGD_TARGET.
func BuildEnv(base []string, snap config.Snapshot, target string) []string {
	env := make([]string, len(base))
	copy(env, base)
	overrides := make(map[string]string)
	for _, entry := range snap.Entries() {
		if entry.Value == "" || entry.IsPlaceholder {
			continue
		}
		overrides[entry.Key] = entry.Value
	}
	env = mergeEnv(env, overrides)
	if target == "" {
		return UnsetEnv(env, EnvPrefix+"TARGET")
	}
	return SetEnv(env, EnvPrefix+"TARGET", target)
}

// GetEnv returns the value for the key from an env slice.
func GetEnv(env []string, key string) (string, bool) {
	for _, entry := range env {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) == 2 && parts[0] == key {
			return parts[1], true
		}
	}
	return "", false
}

// SetEnv sets or appends a key=value entry in an env slice.
func SetEnv(env []string, key string, value string) []string {
	entry := fmt.Sprintf("%s=%s", key, value)
	for i, existing := range env {
		if strings.HasPrefix(existing, key+"=") {
			env[i] = entry
			return env
		}
	}
	return append(env, entry)
}

// UnsetEnv removes all entries for the given key from an env slice.
// If key is empty, it returns env unchanged.
func UnsetEnv(env []string, key string) []string {
	if key == "" {
		return env
	}
	prefix := key + "="
	result := make([]string, 0, len(env))
	for _, entry := range env {
		if !strings.HasPrefix(entry, prefix) {
			result = append(result, entry)
		}
	}
	return result
}

func mergeEnv(base []string, overrides map[string]string) []string {
	for key, value := range overrides {
		base = SetEnv(base, key, value)
	}
	return base
}
