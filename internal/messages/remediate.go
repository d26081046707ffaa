package messages

// Remediation messages.
const (
	// RemediateConfirmInstallFmt asks before a full install.
	RemediateConfirmInstallFmt  = "The agent is not deployed on %s. Run the full install now?"
	RemediateConfirmCompleteFmt = "The agent install on %s is incomplete. Run the installer to complete it?"
	RemediateConfirmFixesFmt    = "Run fixes [%s] on %s?"

	RemediateActionExitFmt   = "%s exited with status %d: %v"
	RemediateActionFailedFmt = "%s failed: %v"
)
