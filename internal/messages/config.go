package messages

// Config messages for the store, its lock, and the settings file.
const (
	// StoreStatFailedFmt formats store stat failures.
	StoreStatFailedFmt         = "check store %s: %w"
	StoreNoTemplateFmt         = "%w: no template available to create %s"
	StoreTemplateReadFailedFmt = "%w: read store template: %w"
	StoreCreateDirFailedFmt    = "%w: create %s: %w"
	StoreWriteFailedFmt        = "write store %s: %w"
	StoreReadFailedFmt         = "read store %s: %w"
	StoreInvalidFmt            = "invalid store %s: %w"
	StoreKeyRequired           = "store key is required"
	StoreKeyInvalidFmt         = "invalid store key %q: keys may not contain whitespace, quotes, '=' or '#'"

	StoreOpenLockFmt    = "open store lock %s: %w"
	StoreLockFmt        = "lock store %s: %w"
	StoreLockTimeoutFmt = "%w (%s; waited %s)"

	// ConfigErrorFmt formats missing or placeholder required keys.
	ConfigErrorFmt = "configuration incomplete: %s must be set (placeholder values count as unset)"

	SettingsReadFailedFmt       = "read settings %s: %w"
	SettingsInvalidFmt          = "invalid settings %s: %w"
	SettingsFieldRequiredFmt    = "%s: %s is required"
	SettingsPositiveDurationFmt = "%s: %s must be a positive duration"
	SettingsBackoffInvalidFmt   = "%s: readiness.base_backoff must be >= 0 and <= readiness.max_backoff"
	SettingsAttemptsInvalidFmt  = "%s: readiness.attempts must be at least 1"
	SettingsPercentInvalidFmt   = "%s: %s must be between 0 and 100"

	// KeyPromptTargetKind is shown when guided input asks for TARGET_KIND.
	KeyPromptTargetKind   = "Where should the agent run? (local = existing host over SSH, cloud = provisioned GCP host)"
	KeyPromptTargetHost   = "Target host address (IP or DNS name)"
	KeyPromptTargetUser   = "SSH user on the target host"
	KeyPromptSSHKeyPath   = "SSH private key path (leave empty to use your ssh-agent/defaults)"
	KeyPromptSSHPort      = "SSH port"
	KeyPromptGCPProjectID = "GCP project ID"
	KeyPromptGCPRegion    = "GCP region (for example us-central1)"
	KeyPromptGCPZone      = "GCP zone (for example us-central1-a)"
	KeyPromptAgentAccount = "Service account the agent runs as on the target"
	KeyPromptAgentToken   = "Agent token passed to the installer"
)
