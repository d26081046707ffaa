// Package envfile reads and rewrites line-oriented KEY="VALUE" store content.
package envfile

import (
	"bufio"
	"fmt"
	"sort"
	"strings"

	"github.com/conn-castle/agent-deploy/internal/messages"
)

// Entry is a live (uncommented) assignment in store content, in file order.
type Entry struct {
	Key   string
	Value string
	Line  int
}

// Parse reads store content into a key-value map.
// content is the raw file content; returns parsed key/value pairs or an error
// for the first malformed line. Later assignments of a key win.
func Parse(content string) (map[string]string, error) {
	env := make(map[string]string)
	entries, err := Entries(content)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		env[entry.Key] = entry.Value
	}
	return env, nil
}

// Entries returns the live assignments in content in file order.
func Entries(content string) ([]Entry, error) {
	if content == "" {
		return nil, nil
	}

	var entries []Entry
	scanner := bufio.NewScanner(strings.NewReader(content))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		key, value, ok, err := parseLine(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf(messages.EnvfileLineErrorFmt, lineNo, err)
		}
		if !ok {
			continue
		}
		entries = append(entries, Entry{Key: key, Value: value, Line: lineNo})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf(messages.EnvfileReadFailedFmt, err)
	}

	return entries, nil
}

// ParseLenient is like Parse but skips malformed lines instead of failing.
func ParseLenient(content string) map[string]string {
	env := make(map[string]string)
	for _, line := range strings.Split(content, "\n") {
		key, value, ok, err := parseLine(line)
		if err != nil || !ok {
			continue
		}
		env[key] = value
	}
	return env
}

// Patch updates store content with the provided key/value pairs.
// An uncommented assignment of a key is replaced in place at its first
// occurrence and any later live duplicates are dropped. Keys that are absent,
// or present only in commented form, are appended in sorted order.
// Empty values are written as KEY="".
func Patch(content string, updates map[string]string) string {
	var lines []string
	if content != "" {
		lines = strings.Split(content, "\n")
	}
	if len(updates) == 0 {
		return content
	}

	firstIndex := make(map[string]int)
	for i, line := range lines {
		key, _, ok, err := parseLine(line)
		if err != nil || !ok {
			continue
		}
		if _, exists := firstIndex[key]; !exists {
			firstIndex[key] = i
		}
	}

	keys := make([]string, 0, len(updates))
	for key := range updates {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		assignment := Format(key, updates[key])
		if idx, ok := firstIndex[key]; ok {
			lines[idx] = assignment
			continue
		}
		// Drop a trailing empty element so appends do not leave a gap before the new line.
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		lines = append(lines, assignment)
		firstIndex[key] = len(lines) - 1
	}

	filtered := make([]string, 0, len(lines)+1)
	for i, line := range lines {
		key, _, ok, err := parseLine(line)
		if err == nil && ok {
			if _, updated := updates[key]; updated && firstIndex[key] != i {
				continue
			}
		}
		filtered = append(filtered, line)
	}

	out := strings.Join(filtered, "\n")
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}

// Format renders a single KEY="VALUE" assignment.
func Format(key string, value string) string {
	return fmt.Sprintf("%s=%s", key, encodeValue(value))
}

// parseLine parses a single store line and returns key/value when present.
// line is the raw line; returns key/value, a boolean for presence, and an error for invalid syntax.
func parseLine(line string) (string, string, bool, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", "", false, nil
	}
	if strings.HasPrefix(trimmed, "export ") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "export "))
	}
	idx := strings.Index(trimmed, "=")
	if idx <= 0 {
		return "", "", false, fmt.Errorf(messages.EnvfileExpectedKeyValue)
	}
	key := strings.TrimSpace(trimmed[:idx])
	if key == "" {
		return "", "", false, fmt.Errorf(messages.EnvfileExpectedKeyValue)
	}
	value := strings.TrimSpace(trimmed[idx+1:])
	switch {
	case strings.HasPrefix(value, `"`), strings.HasPrefix(value, `'`):
		unquoted, err := unquote(value)
		if err != nil {
			return "", "", false, err
		}
		value = unquoted
	default:
		if hash := strings.Index(value, " #"); hash >= 0 {
			value = strings.TrimSpace(value[:hash])
		}
	}
	return key, value, true, nil
}

var (
	valueEscaper   = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`)
	valueUnescaper = strings.NewReplacer(`\\`, `\`, `\"`, `"`, `\n`, "\n", `\r`, "\r")
)

// unquote strips the quotes around value, which starts with ' or ".
// Double-quoted bodies have their escapes decoded; single-quoted bodies are
// literal. Only whitespace and a # comment may follow the closing quote.
func unquote(value string) (string, error) {
	quote := value[0]
	end := -1
	for i := 1; i < len(value) && end < 0; i++ {
		switch {
		case quote == '"' && value[i] == '\\':
			i++
		case value[i] == quote:
			end = i
		}
	}
	if end < 0 {
		return "", fmt.Errorf(messages.EnvfileUnterminatedQuotedValue)
	}
	if rest := strings.TrimSpace(value[end+1:]); rest != "" && rest[0] != '#' {
		return "", fmt.Errorf(messages.EnvfileInvalidQuotedSuffix)
	}
	body := value[1:end]
	if quote == '"' {
		body = valueUnescaper.Replace(body)
	}
	return body, nil
}

// encodeValue escapes and double-quotes a value.
func encodeValue(val string) string {
	return `"` + valueEscaper.Replace(val) + `"`
}
