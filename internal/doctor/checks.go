package doctor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/conn-castle/agent-deploy/internal/config"
	"github.com/conn-castle/agent-deploy/internal/health"
	"github.com/conn-castle/agent-deploy/internal/messages"
	"github.com/conn-castle/agent-deploy/internal/remediate"
	"github.com/conn-castle/agent-deploy/internal/remote"
	"github.com/conn-castle/agent-deploy/internal/status"
)

// CheckStore reports each required key for the snapshot's target kind.
func CheckStore(snap config.Snapshot) []Result {
	kind := snap.Kind()
	results := []Result{{
		Status:    StatusOK,
		CheckName: messages.DoctorCheckNameConfig,
		Message:   fmt.Sprintf(messages.DoctorTargetKindFmt, kind),
	}}
	_, missing := snap.ValidateRequired(config.RequiredFor(kind))
	missingSet := make(map[string]bool, len(missing))
	for _, key := range missing {
		missingSet[key] = true
	}
	for _, req := range config.RequiredFor(kind) {
		if missingSet[req.Key] {
			results = append(results, Result{
				Status:         StatusFail,
				CheckName:      messages.DoctorCheckNameConfig,
				Message:        fmt.Sprintf(messages.DoctorKeyMissingFmt, req.Key),
				Recommendation: fmt.Sprintf(messages.DoctorKeyMissingRecommendFmt, req.Key),
			})
			continue
		}
		value := snap.Get(req.Key, "")
		if config.IsSecretKey(req.Key) {
			value = "********"
		}
		results = append(results, Result{
			Status:    StatusOK,
			CheckName: messages.DoctorCheckNameConfig,
			Message:   fmt.Sprintf(messages.DoctorKeySetFmt, req.Key, value),
		})
	}
	return results
}

// CheckSettings reports whether the settings file loaded.
func CheckSettings(path string, err error) Result {
	if err != nil {
		return Result{
			Status:         StatusFail,
			CheckName:      messages.DoctorCheckNameSettings,
			Message:        err.Error(),
			Recommendation: fmt.Sprintf(messages.DoctorSettingsRecommendFmt, path),
		}
	}
	return Result{Status: StatusOK, CheckName: messages.DoctorCheckNameSettings, Message: fmt.Sprintf(messages.DoctorSettingsLoadedFmt, path)}
}

// FromStatus reports the connectivity preflight and each battery check,
// labelled from battery.
func FromStatus(report status.Report, battery []status.Check) []Result {
	if report.Skipped && !report.Preflight.Succeeded && report.Preflight.Err == nil {
		return []Result{{
			Status:         StatusFail,
			CheckName:      messages.DoctorCheckNameTarget,
			Message:        messages.DoctorNoTarget,
			Recommendation: fmt.Sprintf(messages.DoctorKeyMissingRecommendFmt, config.KeyTargetHost),
		}}
	}
	results := []Result{connectivity(report.Preflight.Err)}
	if !report.Reachable() {
		return results
	}
	labels := make(map[string]string, len(battery))
	for _, check := range battery {
		labels[check.Name] = check.Label
	}
	for _, probe := range report.Results {
		label := labels[probe.CheckName]
		if label == "" {
			label = probe.CheckName
		}
		r := Result{Status: StatusOK, CheckName: messages.DoctorCheckNameDeploy, Message: label}
		if !probe.Succeeded {
			r.Status = StatusFail
			r.Message = fmt.Sprintf(messages.DoctorProbeFailedFmt, label, probe.Err)
		}
		results = append(results, r)
	}
	results = append(results, Result{
		Status:         statusSeverity(report.Status),
		CheckName:      messages.DoctorCheckNameDeploy,
		Message:        fmt.Sprintf(messages.DoctorDeployScoreFmt, report.Status, report.Score, report.MaxScore),
		Recommendation: statusRecommendation(report.Status),
	})
	return results
}

// FromHealth reports each health check and the overall tier.
// Checks that did not apply are shown as warnings.
func FromHealth(report health.Report) []Result {
	if !report.Reachable {
		return []Result{connectivity(report.ConnectErr)}
	}
	var results []Result
	for _, check := range report.Checks {
		r := Result{CheckName: messages.DoctorCheckNameHealth}
		switch {
		case !check.Applicable:
			r.Status = StatusWarn
			r.Message = fmt.Sprintf(messages.DoctorCheckDetailFmt, check.Label, check.Detail)
		case check.Passed:
			r.Status = StatusOK
			r.Message = withDetail(check.Label, check.Detail, nil)
		default:
			r.Status = StatusFail
			r.Message = withDetail(check.Label, check.Detail, check.Err)
		}
		results = append(results, r)
	}
	results = append(results, Result{
		Status:    tierSeverity(report.Tier),
		CheckName: messages.DoctorCheckNameHealth,
		Message:   fmt.Sprintf(messages.DoctorHealthScoreFmt, report.Tier, report.Score),
	})
	return results
}

// FromRemediation reports each attempted action plus what could not be fixed.
func FromRemediation(result remediate.Result) []Result {
	var results []Result
	for _, attempted := range result.Attempted {
		if attempted.Err != nil {
			results = append(results, Result{
				Status:         StatusFail,
				CheckName:      messages.DoctorCheckNameRemediate,
				Message:        attempted.Err.Error(),
				Recommendation: messages.DoctorRemediationFailedRecommend,
			})
			continue
		}
		results = append(results, Result{
			Status:    StatusOK,
			CheckName: messages.DoctorCheckNameRemediate,
			Message:   fmt.Sprintf(messages.DoctorActionRanFmt, attempted.Name),
		})
	}
	if len(result.Unfixable) > 0 {
		results = append(results, Result{
			Status:         StatusWarn,
			CheckName:      messages.DoctorCheckNameRemediate,
			Message:        fmt.Sprintf(messages.DoctorUnfixableFmt, strings.Join(result.Unfixable, ", ")),
			Recommendation: messages.DoctorUnfixableRecommend,
		})
	}
	if len(result.Skipped) > 0 {
		results = append(results, Result{
			Status:    StatusWarn,
			CheckName: messages.DoctorCheckNameRemediate,
			Message:   fmt.Sprintf(messages.DoctorSkippedFmt, strings.Join(result.Skipped, ", ")),
		})
	}
	if result.Declined {
		results = append(results, Result{
			Status:    StatusWarn,
			CheckName: messages.DoctorCheckNameRemediate,
			Message:   messages.DoctorDeclined,
		})
	}
	if result.Outcome == remediate.FixesAttempted {
		results = append(results, Result{
			Status:         StatusWarn,
			CheckName:      messages.DoctorCheckNameRemediate,
			Message:        messages.DoctorFixesAttempted,
			Recommendation: messages.DoctorReverifyRecommend,
		})
	}
	return results
}

func connectivity(err error) Result {
	if err == nil {
		return Result{Status: StatusOK, CheckName: messages.DoctorCheckNameTarget, Message: messages.DoctorReachable}
	}
	recommendation := messages.DoctorUnreachableRecommend
	var authErr *remote.AuthError
	if errors.As(err, &authErr) {
		recommendation = messages.DoctorAuthRecommend
	}
	return Result{
		Status:         StatusFail,
		CheckName:      messages.DoctorCheckNameTarget,
		Message:        err.Error(),
		Recommendation: recommendation,
	}
}

func withDetail(label string, detail string, err error) string {
	switch {
	case detail != "":
		return fmt.Sprintf(messages.DoctorCheckDetailFmt, label, detail)
	case err != nil:
		return fmt.Sprintf(messages.DoctorProbeFailedFmt, label, err)
	default:
		return label
	}
}

func statusSeverity(s status.Status) Status {
	switch s {
	case status.Deployed:
		return StatusOK
	case status.Partial:
		return StatusWarn
	default:
		return StatusFail
	}
}

func statusRecommendation(s status.Status) string {
	switch s {
	case status.Partial:
		return messages.DoctorPartialRecommend
	case status.NotDeployed:
		return messages.DoctorNotDeployedRecommend
	default:
		return ""
	}
}

func tierSeverity(t health.Tier) Status {
	switch t {
	case health.Healthy:
		return StatusOK
	case health.Degraded:
		return StatusWarn
	default:
		return StatusFail
	}
}
