package messages

// Prompt messages.
const (
	// PromptRequiresTerminal is returned when a form is shown without a terminal.
	PromptRequiresTerminal = "this prompt requires an interactive terminal; rerun in a terminal or pass --yes"
	PromptKeyTitleFmt      = "%s (%s)"
	PromptAutoAcceptedFmt  = "%s yes (--yes)\n"
	PromptAutoDeclinedFmt  = "%s no (no interactive terminal; pass --yes to accept)\n"
	PromptConfirmRequired  = "confirm prompt handler is required"
	PromptAskRequired      = "value prompt handler is required"
	PromptDiffTruncatedFmt = "... (truncated to %d lines)"
)
