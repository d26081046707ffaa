package messages

// Orchestrator messages.
const (
	// InputPreviewTitleFmt titles the store diff shown before writing.
	InputPreviewTitleFmt = "Proposed changes to %s"
	InputConfirmWriteFmt = "Write these values to %s?"

	OrchestratorStoreInitWarning = "could not create the store from its template; continuing with an empty store"
	OrchestratorIncompleteFmt    = "%w: %w"
	OrchestratorUnreachableFmt   = "target %s is unreachable: %w"
	OrchestratorNoTargetFmt      = "no target address configured; set %s or let the installer provision one"
)
