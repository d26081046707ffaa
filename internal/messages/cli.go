package messages

// CLI command text.
const (
	RootUse   = "agd"
	RootShort = "Deploy and maintain the agent on a remote host"
	RootLong  = `agd checks the local deployment store, installs the agent on the configured
host when it is missing, verifies its health, offers fixes, and opens an
interactive session once everything is in order.

Running agd without a subcommand is the same as agd run.`

	VersionTemplate  = "{{.Version}}\n"
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"

	FlagStoreUsage     = "path to the deployment store (default .agent-deploy/deploy.env in the workspace)"
	FlagSettingsUsage  = "path to the settings file (default .agent-deploy/deploy.toml in the workspace)"
	FlagYesUsage       = "accept every confirmation without asking"
	FlagNoHandoffUsage = "do not open the interactive session at the end of a successful run"
	FlagLogLevelUsage  = "log level (debug, info, warn, error)"
	FlagLogFormatUsage = "log record format (text, json)"
	FlagQuietUsage     = "only print errors and the final summary"
	FlagVerboseUsage   = "show every health check with its detail"

	RunUse   = "run"
	RunShort = "Validate config, deploy, verify health, fix, and hand off"

	StatusUse   = "status"
	StatusShort = "Show the deployment status of the target"

	HealthUse   = "health"
	HealthShort = "Score the health of the deployed agent"

	FixUse   = "fix"
	FixShort = "Offer remediation for the current deployment and health state"

	DoctorUse   = "doctor"
	DoctorShort = "Check the store, settings, target, deployment and health in one report"

	ConfigUse           = "config"
	ConfigShort         = "Manage the deployment store"
	ConfigInitUse       = "init"
	ConfigInitShort     = "Create the store and settings file from the built-in templates"
	ConfigGetUse        = "get KEY"
	ConfigGetShort      = "Print one store value"
	ConfigSetUse        = "set KEY VALUE"
	ConfigSetShort      = "Write one store value"
	ConfigValidateUse   = "validate"
	ConfigValidateShort = "Report which required values are missing"
)

// CLI output.
const (
	CLIWorkspaceFmt        = "Workspace: %s\n"
	CLITargetFmt           = "Target:    %s\n"
	CLINoTarget            = "(none)"
	CLISummaryFmt          = "\nResult: %s\n"
	CLIConfigIncomplete    = "configuration incomplete"
	CLIMissingKeysFmt      = "Missing: %s\n"
	CLIDeployStatusFmt     = "Deployment: %s (%d/%d)\n"
	CLIHealthFmt           = "Health:     %s (score %d, %d/%d weight)\n"
	CLIVersionFmt          = "CLI version: %s\n"
	CLIMemoryFmt           = "Memory: %s\n"
	CLIDiskFmt             = "Disk:   %s\n"
	CLIFirewallFmt         = "Firewall: %s\n"
	CLIHandedOff           = "Interactive session closed."
	CLIDoctorHeaderFmt     = "Checking deployment from %s\n\n"
	CLIDoctorAllOK         = "\nEverything looks good."
	CLIDoctorFailures      = "\nSome checks failed; see the recommendations above."
	CLIConfigCreatedFmt    = "Created %s\n"
	CLIConfigExistsFmt     = "%s already exists\n"
	CLIConfigUnknownKeyFmt = "unknown key %q; known keys: %s"
	CLIConfigValueSetFmt   = "Set %s\n"
	CLIConfigValid         = "All required values are set."
	CLISettingsInvalidFmt  = "settings: %w"
	CLIFixNothingToDo      = "Nothing to fix."
)
