package messages

// Doctor report labels and formats.
const (
	DoctorStatusOKLabel        = "[OK]  "
	DoctorStatusWarnLabel      = "[WARN]"
	DoctorStatusFailLabel      = "[FAIL]"
	DoctorResultLineFmt        = "%s %-10s %s\n"
	DoctorRecommendationPrefix = "         💡 "
	DoctorRecommendationIndent = "            "

	DoctorCheckNameConfig    = "Config"
	DoctorCheckNameSettings  = "Settings"
	DoctorCheckNameTarget    = "Target"
	DoctorCheckNameDeploy    = "Deploy"
	DoctorCheckNameHealth    = "Health"
	DoctorCheckNameRemediate = "Remediate"

	DoctorTargetKindFmt          = "target kind: %s"
	DoctorKeySetFmt              = "%s = %s"
	DoctorKeyMissingFmt          = "%s is not set"
	DoctorKeyMissingRecommendFmt = "Run `agd config set %s <value>` or `agd run` to be prompted."
	DoctorSettingsLoadedFmt      = "loaded %s"
	DoctorSettingsRecommendFmt   = "Fix %s or remove it to use the built-in defaults."

	DoctorNoTarget             = "no target host is configured"
	DoctorReachable            = "target is reachable"
	DoctorUnreachableRecommend = "Check the host address, port, and network path, then retry."
	DoctorAuthRecommend        = "Check TARGET_USER and SSH_KEY_PATH, and that the key is authorized on the host."

	DoctorProbeFailedFmt       = "%s: %v"
	DoctorCheckDetailFmt       = "%s: %s"
	DoctorDeployScoreFmt       = "deployment %s (%d/%d checks)"
	DoctorPartialRecommend     = "Run `agd run` to complete the install."
	DoctorNotDeployedRecommend = "Run `agd run` to install the agent."
	DoctorHealthScoreFmt       = "health %s (score %d)"

	DoctorActionRanFmt               = "%s completed"
	DoctorRemediationFailedRecommend = "Inspect the target manually; the automatic fix did not succeed."
	DoctorUnfixableFmt               = "no automatic fix for: %s"
	DoctorUnfixableRecommend         = "These checks need manual intervention on the target."
	DoctorSkippedFmt                 = "already attempted this run: %s"
	DoctorDeclined                   = "remediation was declined"
	DoctorFixesAttempted             = "fixes ran but health is still below healthy"
	DoctorReverifyRecommend          = "Run `agd health` to re-check once the services settle."
)
