package doctor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/agent-deploy/internal/config"
	"github.com/conn-castle/agent-deploy/internal/health"
	"github.com/conn-castle/agent-deploy/internal/remediate"
	"github.com/conn-castle/agent-deploy/internal/remote"
	"github.com/conn-castle/agent-deploy/internal/status"
)

func statuses(results []Result) []Status {
	out := make([]Status, 0, len(results))
	for _, r := range results {
		out = append(out, r.Status)
	}
	return out
}

func TestCheckStore(t *testing.T) {
	snap := config.NewSnapshot(map[string]string{
		config.KeyTargetHost: "10.0.0.5",
		config.KeyTargetUser: config.PlaceholderFor(config.KeyTargetUser),
	})
	results := CheckStore(snap)
	require.Len(t, results, 3)
	assert.Equal(t, []Status{StatusOK, StatusOK, StatusFail}, statuses(results))
	assert.Contains(t, results[1].Message, "10.0.0.5")
	assert.Contains(t, results[2].Message, config.KeyTargetUser)
	assert.Contains(t, results[2].Recommendation, "agd config set TARGET_USER")
	assert.False(t, HasFailure(results[:2]))
	assert.True(t, HasFailure(results))
}

func TestCheckStoreCloudKind(t *testing.T) {
	snap := config.NewSnapshot(map[string]string{
		config.KeyTargetKind:   string(config.TargetCloud),
		config.KeyGCPProjectID: "proj",
		config.KeyGCPRegion:    "us-east1",
		config.KeyGCPZone:      "us-east1-b",
		config.KeyTargetUser:   "ops",
	})
	results := CheckStore(snap)
	assert.Len(t, results, 5)
	assert.False(t, HasFailure(results))
	assert.Contains(t, results[0].Message, "cloud")
}

func TestCheckSettings(t *testing.T) {
	ok := CheckSettings("/x/settings.toml", nil)
	assert.Equal(t, StatusOK, ok.Status)

	bad := CheckSettings("/x/settings.toml", errors.New("bad toml"))
	assert.Equal(t, StatusFail, bad.Status)
	assert.Equal(t, "bad toml", bad.Message)
	assert.Contains(t, bad.Recommendation, "/x/settings.toml")
}

func TestFromStatusNoTarget(t *testing.T) {
	results := FromStatus(status.Report{Skipped: true}, nil)
	require.Len(t, results, 1)
	assert.Equal(t, StatusFail, results[0].Status)
	assert.Equal(t, "Target", results[0].CheckName)
}

func TestFromStatusUnreachable(t *testing.T) {
	report := status.Report{
		Skipped:   true,
		Preflight: remote.Result{Err: &remote.AuthError{Target: "ops@h", Detail: "denied"}},
	}
	results := FromStatus(report, nil)
	require.Len(t, results, 1)
	assert.Equal(t, StatusFail, results[0].Status)
	assert.Contains(t, results[0].Recommendation, "SSH_KEY_PATH")
}

func TestFromStatusPartial(t *testing.T) {
	battery := status.Battery(config.DefaultSettings().Service, "agent")
	report := status.Report{
		Status:    status.Partial,
		Score:     1,
		MaxScore:  2,
		Preflight: remote.Result{Succeeded: true},
		Results: []remote.Result{
			{CheckName: status.CheckServiceAccount, Succeeded: true},
			{CheckName: status.CheckCLI, Err: &remote.ExitError{Command: "command -v agent", ExitCode: 1}},
		},
	}
	results := FromStatus(report, battery)
	require.Len(t, results, 4)
	assert.Equal(t, []Status{StatusOK, StatusOK, StatusFail, StatusWarn}, statuses(results))
	assert.Equal(t, battery[0].Label, results[1].Message)
	assert.Contains(t, results[3].Message, "partial")
	assert.NotEmpty(t, results[3].Recommendation)
}

func TestFromHealth(t *testing.T) {
	report := health.Report{
		Tier:      health.Degraded,
		Score:     70,
		Reachable: true,
		Checks: []health.CheckResult{
			{Name: health.CheckConnectivity, Label: "connectivity", Applicable: true, Passed: true},
			{Name: health.CheckPrimaryService, Label: "service", Applicable: true, Detail: "inactive"},
			{Name: health.CheckAuditService, Label: "audit", Detail: "not installed"},
		},
	}
	results := FromHealth(report)
	require.Len(t, results, 4)
	assert.Equal(t, []Status{StatusOK, StatusFail, StatusWarn, StatusWarn}, statuses(results))
	assert.Equal(t, "service: inactive", results[1].Message)
	assert.Contains(t, results[3].Message, "70")
}

func TestFromHealthUnreachable(t *testing.T) {
	results := FromHealth(health.Report{ConnectErr: &remote.ConnectError{Target: "h", Timeout: true}})
	require.Len(t, results, 1)
	assert.Equal(t, StatusFail, results[0].Status)
}

func TestFromRemediation(t *testing.T) {
	result := remediate.Result{
		Outcome: remediate.FixesAttempted,
		Attempted: []remediate.ActionResult{
			{Name: remediate.ActionServiceRestart},
			{Name: remediate.ActionFirewallEnable, Err: &remediate.RemediationError{Action: remediate.ActionFirewallEnable, ExitCode: 1, Err: errors.New("exit 1")}},
		},
		Unfixable: []string{health.CheckMemory},
	}
	results := FromRemediation(result)
	require.Len(t, results, 4)
	assert.Equal(t, []Status{StatusOK, StatusFail, StatusWarn, StatusWarn}, statuses(results))
	assert.Contains(t, results[2].Message, "memory")
}

func TestFromRemediationDeclined(t *testing.T) {
	results := FromRemediation(remediate.Result{Outcome: remediate.ManualInterventionRequired, Declined: true})
	require.Len(t, results, 1)
	assert.Equal(t, StatusWarn, results[0].Status)
}
