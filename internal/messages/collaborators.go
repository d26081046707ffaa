package messages

// Collaborator messages.
const (
	// CollabInstallerMissing is returned when no installer script is configured.
	CollabInstallerMissing     = "no installer script configured (set installer.script in deploy.toml)"
	CollabInstallerNotFoundFmt = "installer script %s: %w"
	CollabInstallerFailedFmt   = "installer %s: %w"
	CollabHandoffFailedFmt     = "interactive session on %s: %w"
)
