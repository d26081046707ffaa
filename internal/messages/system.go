package messages

// System messages for internal operations.
const (
	// EnvfileLineErrorFmt formats envfile line errors.
	EnvfileLineErrorFmt            = "line %d: %w"
	EnvfileReadFailedFmt           = "failed to read store content: %w"
	EnvfileExpectedKeyValue        = "expected KEY=VALUE"
	EnvfileUnterminatedQuotedValue = "unterminated quoted value"
	EnvfileInvalidQuotedSuffix     = "invalid trailing characters after quoted value"
)

// Remote channel messages.
const (
	// RemoteConnectTimeoutFmt formats connect timeouts.
	RemoteConnectTimeoutFmt = "connection to %s timed out"
	RemoteConnectFailedFmt  = "cannot connect to %s: %v"
	RemoteAuthFailedFmt     = "authentication to %s failed: %s"
	RemoteExitWithStderrFmt = "%s exited with status %d: %s"
	RemoteExitFmt           = "%s exited with status %d"
)

// Deployment battery labels.
const (
	// StatusLabelServiceAccount labels the service account check.
	StatusLabelServiceAccount = "Service account exists"
	StatusLabelCLI            = "Agent CLI on PATH"
	StatusLabelServiceUnit    = "Service unit registered"
	StatusLabelWorkspace      = "Workspace directory exists"
	StatusLabelRuntime        = "Runtime on PATH"
)

// Health battery labels and details.
const (
	// HealthLabelConnectivity labels the gating connectivity check.
	HealthLabelConnectivity = "SSH connectivity"
	HealthLabelServiceFmt   = "Service %s active"
	HealthLabelMemory       = "Free memory"
	HealthLabelDisk         = "Free disk"
	HealthLabelCLIFmt       = "%s --version"
	HealthLabelFirewall     = "Firewall (ufw) active"

	HealthDetailNotInstalled = "not installed (check skipped)"
	HealthDetailUnknown      = "unknown"
	HealthDetailUsageFmt     = "%.0f%% free (%d of %d MiB)"

	HealthMeminfoUnparsable = "could not read MemTotal/MemAvailable from /proc/meminfo"
	HealthDFUnparsable      = "could not read capacity from df output"
)

// Workspace root discovery.
const (
	RootStartRequired       = "start path is required"
	RootPathNotDirFmt       = "%s exists but is not a directory; move or remove it and retry"
	RootPathNotDirOrFileFmt = "%s exists but is not a directory or file"
)
