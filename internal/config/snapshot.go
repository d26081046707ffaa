package config

import (
	"sort"
	"strconv"

	"github.com/conn-castle/agent-deploy/internal/envfile"
)

// Entry is a single store key with its value and placeholder state.
type Entry struct {
	Key           string
	Value         string
	IsPlaceholder bool
}

// Snapshot is an immutable view of the store taken at one checkpoint.
type Snapshot struct {
	values map[string]string
	order  []string
}

// NewSnapshot builds a snapshot from key/value pairs; intended for callers and
// tests that do not read from disk.
func NewSnapshot(values map[string]string) Snapshot {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	copied := make(map[string]string, len(values))
	for key, value := range values {
		copied[key] = value
	}
	return Snapshot{values: copied, order: keys}
}

func newSnapshot(entries []envfile.Entry) Snapshot {
	values := make(map[string]string, len(entries))
	var order []string
	for _, entry := range entries {
		if _, seen := values[entry.Key]; !seen {
			order = append(order, entry.Key)
		}
		values[entry.Key] = entry.Value
	}
	return Snapshot{values: values, order: order}
}

// Get returns the value for key, or def when the key is absent or empty.
func (s Snapshot) Get(key string, def string) string {
	value := s.values[key]
	if value == "" {
		return def
	}
	return value
}

// Resolved returns the value for key, or def when it is absent, empty, or a placeholder.
func (s Snapshot) Resolved(key string, def string) string {
	value := s.values[key]
	if value == "" || IsPlaceholder(key, value) {
		return def
	}
	return value
}

// Int returns the integer value for key, or def when it is unset or not a number.
func (s Snapshot) Int(key string, def int) int {
	value, err := strconv.Atoi(s.Get(key, ""))
	if err != nil {
		return def
	}
	return value
}

// Entries returns the live entries in store order.
func (s Snapshot) Entries() []Entry {
	out := make([]Entry, 0, len(s.order))
	for _, key := range s.order {
		value := s.values[key]
		out = append(out, Entry{Key: key, Value: value, IsPlaceholder: IsPlaceholder(key, value)})
	}
	return out
}

// Kind returns the configured target kind.
func (s Snapshot) Kind() TargetKind {
	return ParseTargetKind(s.Get(KeyTargetKind, string(TargetLocal)))
}

// ValidateRequired reports whether every requirement is set to a non-placeholder value.
// Both empty and placeholder values are reported as missing, in requirement order.
func (s Snapshot) ValidateRequired(reqs []RequiredVariable) (bool, []string) {
	var missing []string
	for _, req := range reqs {
		value := s.values[req.Key]
		if value == "" || (req.Placeholder != "" && value == req.Placeholder) {
			missing = append(missing, req.Key)
		}
	}
	return len(missing) == 0, missing
}
