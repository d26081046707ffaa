package config

import (
	"regexp"
	"strings"
)

var (
	secretKeyPattern        = regexp.MustCompile(`(?i)(api[_-]?key|token|secret|password|authorization)`)
	secretAssignmentPattern = regexp.MustCompile(`^([+\- ]?\s*(?:export\s+)?)([A-Za-z_][A-Za-z0-9_]*)(\s*=\s*).*$`)
)

const redacted = `"********"`

// IsSecretKey reports whether key holds a credential that must not be echoed.
func IsSecretKey(key string) bool {
	if def, ok := LookupKey(key); ok && def.Secret {
		return true
	}
	return secretKeyPattern.MatchString(key)
}

// RedactSecrets masks the values of secret-looking assignments in store or diff content.
// Placeholder values are left visible since they carry no credential.
func RedactSecrets(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		match := secretAssignmentPattern.FindStringSubmatch(line)
		if match == nil || !IsSecretKey(match[2]) {
			continue
		}
		if placeholder := PlaceholderFor(match[2]); placeholder != "" && strings.Contains(line, `"`+placeholder+`"`) {
			continue
		}
		lines[i] = match[1] + match[2] + match[3] + redacted
	}
	return strings.Join(lines, "\n")
}
