package config

import "github.com/conn-castle/agent-deploy/internal/messages"

// Store keys.
const (
	KeyTargetKind   = "TARGET_KIND"
	KeyTargetHost   = "TARGET_HOST"
	KeyTargetUser   = "TARGET_USER"
	KeySSHKeyPath   = "SSH_KEY_PATH"
	KeySSHPort      = "SSH_PORT"
	KeyGCPProjectID = "GCP_PROJECT_ID"
	KeyGCPRegion    = "GCP_REGION"
	KeyGCPZone      = "GCP_ZONE"
	KeyAgentAccount = "AGENT_ACCOUNT"
	KeyAgentToken   = "AGENT_TOKEN"
)

// TargetKind selects which required-variable set applies.
type TargetKind string

const (
	// TargetLocal is an existing host reachable over SSH.
	TargetLocal TargetKind = "local"
	// TargetCloud is a host provisioned from GCP project/region/zone settings.
	TargetCloud TargetKind = "cloud"
)

// ParseTargetKind maps a store value to a TargetKind, defaulting to TargetLocal.
func ParseTargetKind(value string) TargetKind {
	if TargetKind(value) == TargetCloud {
		return TargetCloud
	}
	return TargetLocal
}

// KeyDef describes a single store key: its placeholder sentinel and how guided input presents it.
type KeyDef struct {
	Key         string
	Placeholder string // empty when the key has no sentinel
	Default     string // used by Get callers when the key is unset
	Prompt      string
	Secret      bool
}

// keys is the canonical ordered registry of store keys.
// Order matches the guided input flow.
var keys = []KeyDef{
	{Key: KeyTargetKind, Default: string(TargetLocal), Prompt: messages.KeyPromptTargetKind},
	{Key: KeyTargetHost, Placeholder: "your-server-ip", Prompt: messages.KeyPromptTargetHost},
	{Key: KeyTargetUser, Placeholder: "your-ssh-user", Prompt: messages.KeyPromptTargetUser},
	{Key: KeySSHKeyPath, Prompt: messages.KeyPromptSSHKeyPath},
	{Key: KeySSHPort, Default: "22", Prompt: messages.KeyPromptSSHPort},
	{Key: KeyGCPProjectID, Placeholder: "your-project-id", Prompt: messages.KeyPromptGCPProjectID},
	{Key: KeyGCPRegion, Placeholder: "your-region", Prompt: messages.KeyPromptGCPRegion},
	{Key: KeyGCPZone, Placeholder: "your-zone", Prompt: messages.KeyPromptGCPZone},
	{Key: KeyAgentAccount, Default: "agent", Prompt: messages.KeyPromptAgentAccount},
	{Key: KeyAgentToken, Placeholder: "your-agent-token", Prompt: messages.KeyPromptAgentToken, Secret: true},
}

// keyIndex provides O(1) lookup by key.
var keyIndex = buildKeyIndex()

func buildKeyIndex() map[string]int {
	idx := make(map[string]int, len(keys))
	for i, k := range keys {
		idx[k.Key] = i
	}
	return idx
}

// LookupKey returns the definition for a store key.
// Returns false when the key is not in the registry.
func LookupKey(key string) (KeyDef, bool) {
	i, ok := keyIndex[key]
	if !ok {
		return KeyDef{}, false
	}
	return keys[i], true
}

// Keys returns a copy of all registered key definitions in registry order.
func Keys() []KeyDef {
	out := make([]KeyDef, len(keys))
	copy(out, keys)
	return out
}

// PlaceholderFor returns the registered sentinel for key, or "" when none is registered.
func PlaceholderFor(key string) string {
	def, ok := LookupKey(key)
	if !ok {
		return ""
	}
	return def.Placeholder
}

// IsPlaceholder reports whether value is exactly the sentinel registered for key.
func IsPlaceholder(key string, value string) bool {
	sentinel := PlaceholderFor(key)
	return sentinel != "" && value == sentinel
}

// RequiredVariable names a key that must be resolved before deployment proceeds.
type RequiredVariable struct {
	Key         string
	Placeholder string
}

// Require builds a RequiredVariable carrying the key's registered sentinel.
func Require(key string) RequiredVariable {
	return RequiredVariable{Key: key, Placeholder: PlaceholderFor(key)}
}

// RequiredFor returns the required-variable set for a target kind.
func RequiredFor(kind TargetKind) []RequiredVariable {
	switch kind {
	case TargetCloud:
		return []RequiredVariable{
			Require(KeyGCPProjectID),
			Require(KeyGCPRegion),
			Require(KeyGCPZone),
			Require(KeyTargetUser),
		}
	default:
		return []RequiredVariable{
			Require(KeyTargetHost),
			Require(KeyTargetUser),
		}
	}
}
