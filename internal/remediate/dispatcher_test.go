package remediate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/agent-deploy/internal/config"
	"github.com/conn-castle/agent-deploy/internal/health"
	"github.com/conn-castle/agent-deploy/internal/remote"
	"github.com/conn-castle/agent-deploy/internal/remote/remotetest"
	"github.com/conn-castle/agent-deploy/internal/status"
)

var target = remote.Target{Address: "10.0.0.5", User: "ops", Port: 22}

type recordingConfirmer struct {
	answer    bool
	err       error
	questions []string
}

func (c *recordingConfirmer) Confirm(question string) (bool, error) {
	c.questions = append(c.questions, question)
	return c.answer, c.err
}

// sequenceResolver returns statuses in order and repeats the last one.
type sequenceResolver struct {
	statuses []status.Status
	calls    int
}

func (r *sequenceResolver) Resolve(context.Context, remote.Target) status.Status {
	i := r.calls
	if i >= len(r.statuses) {
		i = len(r.statuses) - 1
	}
	r.calls++
	return r.statuses[i]
}

type recordingCollaborator struct {
	calls [][]string
	err   error
}

func (c *recordingCollaborator) Invoke(_ context.Context, _ remote.Target, flags []string) error {
	c.calls = append(c.calls, flags)
	return c.err
}

type harness struct {
	installer *recordingCollaborator
	confirm   *recordingConfirmer
	resolver  *sequenceResolver
	probe     *remotetest.Probe
	dispatch  *Dispatcher
}

func newHarness(answer bool, statuses ...status.Status) *harness {
	if len(statuses) == 0 {
		statuses = []status.Status{status.Deployed}
	}
	h := &harness{
		installer: &recordingCollaborator{},
		confirm:   &recordingConfirmer{answer: answer},
		resolver:  &sequenceResolver{statuses: statuses},
		probe:     remotetest.NewProbe(nil),
	}
	h.dispatch = NewDispatcher(Options{
		Installer: h.installer,
		Fixes:     Fixes(h.probe, config.DefaultSettings().Service, time.Second),
		Status:    h.resolver,
		Readiness: RetryPolicy{Attempts: 4, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond},
		Confirm:   h.confirm,
	})
	return h
}

func degraded(failing ...string) State {
	return State{Status: status.Deployed, Health: health.Report{Tier: health.Degraded, Score: 60, Failing: failing}}
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "resolved", Resolved.String())
	assert.Equal(t, "manual-intervention-required", ManualInterventionRequired.String())
	assert.Equal(t, "installed", Installed.String())
	assert.Equal(t, "fixes-attempted", FixesAttempted.String())
	assert.True(t, Resolved.Terminal())
	assert.True(t, ManualInterventionRequired.Terminal())
	assert.False(t, Installed.Terminal())
	assert.False(t, FixesAttempted.Terminal())
}

func TestDispatch_NotDeployedInstallsAndWaits(t *testing.T) {
	h := newHarness(true, status.Partial, status.Deployed)

	result, err := h.dispatch.Dispatch(context.Background(), target, State{Status: status.NotDeployed})

	require.NoError(t, err)
	assert.Equal(t, Installed, result.Outcome)
	assert.Equal(t, status.Deployed, result.Status)
	assert.Equal(t, [][]string{nil}, h.installer.calls)
	assert.Equal(t, 2, h.resolver.calls)
	require.Len(t, h.confirm.questions, 1)
	assert.Contains(t, h.confirm.questions[0], "ops@10.0.0.5")
}

func TestDispatch_DeclineIsManualIntervention(t *testing.T) {
	h := newHarness(false)

	result, err := h.dispatch.Dispatch(context.Background(), target, State{Status: status.NotDeployed})

	require.NoError(t, err)
	assert.Equal(t, ManualInterventionRequired, result.Outcome)
	assert.True(t, result.Declined)
	assert.Empty(t, h.installer.calls)
	assert.Zero(t, h.resolver.calls)
}

func TestDispatch_PartialRunsCompletionInstall(t *testing.T) {
	h := newHarness(true, status.Deployed)

	result, err := h.dispatch.Dispatch(context.Background(), target, State{Status: status.Partial})

	require.NoError(t, err)
	assert.Equal(t, Installed, result.Outcome)
	assert.Equal(t, [][]string{{CompleteFlag}}, h.installer.calls)
	require.Len(t, result.Attempted, 1)
	assert.Equal(t, ActionCompleteInstall, result.Attempted[0].Name)
	assert.Nil(t, result.Attempted[0].Err)
}

func TestDispatch_FailedInstallIsReportedAndResolvedOnce(t *testing.T) {
	h := newHarness(true, status.Partial)
	h.installer.err = &remote.ExitError{Command: "install.sh", ExitCode: 2}

	result, err := h.dispatch.Dispatch(context.Background(), target, State{Status: status.NotDeployed})

	require.NoError(t, err)
	assert.Equal(t, Installed, result.Outcome)
	assert.Equal(t, status.Partial, result.Status)
	assert.Equal(t, 1, h.resolver.calls)
	errs := result.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, ActionInstall, errs[0].Action)
	assert.Equal(t, 2, errs[0].ExitCode)
}

func TestDispatch_ReadinessIsBounded(t *testing.T) {
	h := newHarness(true, status.Partial)

	result, err := h.dispatch.Dispatch(context.Background(), target, State{Status: status.Partial})

	require.NoError(t, err)
	assert.Equal(t, status.Partial, result.Status)
	assert.Equal(t, 4, h.resolver.calls)
}

// targetResolver reports Deployed once it sees an addressed target.
type targetResolver struct {
	seen []remote.Target
}

func (r *targetResolver) Resolve(_ context.Context, target remote.Target) status.Status {
	r.seen = append(r.seen, target)
	if !target.Valid() {
		return status.NotDeployed
	}
	return status.Deployed
}

func stubSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var delays []time.Duration
	orig := sleepCh
	t.Cleanup(func() { sleepCh = orig })
	sleepCh = func(d time.Duration) <-chan time.Time {
		delays = append(delays, d)
		ch := make(chan time.Time, 1)
		ch <- time.Time{}
		return ch
	}
	return &delays
}

func TestDispatch_UnaddressedTargetIsResolvedOnce(t *testing.T) {
	delays := stubSleep(t)
	resolver := &targetResolver{}
	d := NewDispatcher(Options{
		Installer: &recordingCollaborator{},
		Status:    resolver,
		Readiness: RetryPolicy{Attempts: 6, AttemptTimeout: 30 * time.Second, BaseBackoff: 2 * time.Second, MaxBackoff: 10 * time.Second},
		Confirm:   &recordingConfirmer{answer: true},
	})

	result, err := d.Dispatch(context.Background(), remote.Target{User: "ops"}, State{Status: status.NotDeployed})

	require.NoError(t, err)
	assert.Equal(t, Installed, result.Outcome)
	assert.Equal(t, status.NotDeployed, result.Status)
	assert.Len(t, resolver.seen, 1)
	assert.Empty(t, *delays)
}

func TestDispatch_ReadinessUsesRefreshedTarget(t *testing.T) {
	delays := stubSleep(t)
	resolver := &targetResolver{}
	provisioned := remote.Target{Address: "10.0.0.9", User: "ops", Port: 22}
	refreshes := 0
	d := NewDispatcher(Options{
		Installer: &recordingCollaborator{},
		Status:    resolver,
		Readiness: RetryPolicy{Attempts: 6, BaseBackoff: 2 * time.Second, MaxBackoff: 10 * time.Second},
		Refresh: func() (remote.Target, error) {
			refreshes++
			return provisioned, nil
		},
		Confirm: &recordingConfirmer{answer: true},
	})

	result, err := d.Dispatch(context.Background(), remote.Target{User: "ops"}, State{Status: status.NotDeployed})

	require.NoError(t, err)
	assert.Equal(t, status.Deployed, result.Status)
	assert.Equal(t, []remote.Target{provisioned}, resolver.seen)
	assert.Equal(t, 1, refreshes)
	assert.Empty(t, *delays)
}

func TestDispatch_RefreshFailureKeepsTarget(t *testing.T) {
	resolver := &targetResolver{}
	d := NewDispatcher(Options{
		Installer: &recordingCollaborator{},
		Status:    resolver,
		Readiness: RetryPolicy{Attempts: 3, BaseBackoff: time.Millisecond, MaxBackoff: time.Millisecond},
		Refresh: func() (remote.Target, error) {
			return remote.Target{}, errors.New("store unreadable")
		},
		Confirm: &recordingConfirmer{answer: true},
	})

	result, err := d.Dispatch(context.Background(), target, State{Status: status.NotDeployed})

	require.NoError(t, err)
	assert.Equal(t, status.Deployed, result.Status)
	assert.Equal(t, []remote.Target{target}, resolver.seen)
}

func TestDispatch_InstallAttemptedOncePerRun(t *testing.T) {
	h := newHarness(true, status.Partial)
	_, err := h.dispatch.Dispatch(context.Background(), target, State{Status: status.Partial})
	require.NoError(t, err)

	result, err := h.dispatch.Dispatch(context.Background(), target, State{Status: status.Partial})

	require.NoError(t, err)
	assert.Equal(t, ManualInterventionRequired, result.Outcome)
	assert.Equal(t, []string{ConditionPartial}, result.Skipped)
	assert.Len(t, h.installer.calls, 1)
	assert.Len(t, h.confirm.questions, 1)
}

func TestDispatch_MissingInstaller(t *testing.T) {
	d := NewDispatcher(Options{Confirm: &recordingConfirmer{answer: true}, Status: &sequenceResolver{statuses: []status.Status{status.NotDeployed}}})

	result, err := d.Dispatch(context.Background(), target, State{Status: status.NotDeployed})

	require.NoError(t, err)
	assert.Equal(t, ManualInterventionRequired, result.Outcome)
	assert.Len(t, result.Errors(), 1)
}

func TestDispatch_HealthyIsResolved(t *testing.T) {
	h := newHarness(true)

	result, err := h.dispatch.Dispatch(context.Background(), target, State{
		Status: status.Deployed,
		Health: health.Report{Tier: health.Healthy, Score: 100},
	})

	require.NoError(t, err)
	assert.Equal(t, Resolved, result.Outcome)
	assert.Empty(t, h.confirm.questions)
	assert.Zero(t, h.probe.CallCount())
}

func TestDispatch_OffersExactlyTheKnownFixes(t *testing.T) {
	h := newHarness(true)
	h.probe.Set("restart agent", remotetest.Response{OK: true})
	h.probe.Set("enable firewall", remotetest.Response{OK: true})

	result, err := h.dispatch.Dispatch(context.Background(), target, degraded(health.CheckPrimaryService, health.CheckFirewall))

	require.NoError(t, err)
	assert.Equal(t, FixesAttempted, result.Outcome)
	require.Len(t, h.confirm.questions, 1)
	assert.Contains(t, h.confirm.questions[0], "[service-restart, firewall-enable]")
	require.Len(t, result.Attempted, 2)
	assert.Equal(t, ActionServiceRestart, result.Attempted[0].Name)
	assert.Equal(t, ActionFirewallEnable, result.Attempted[1].Name)
	assert.Empty(t, result.Errors())
	assert.Empty(t, result.Unfixable)

	var commands []string
	for _, call := range h.probe.Calls() {
		commands = append(commands, call.Command.String())
	}
	assert.Equal(t, []string{"sudo -n systemctl restart agent", "sudo -n ufw --force enable"}, commands)
}

func TestDispatch_FixFailureDoesNotBlockSiblings(t *testing.T) {
	h := newHarness(true)
	h.probe.Set("enable firewall", remotetest.Response{OK: true})

	result, err := h.dispatch.Dispatch(context.Background(), target,
		degraded(health.CheckPrimaryService, health.CheckFirewall, health.CheckMemory))

	require.NoError(t, err)
	assert.Equal(t, FixesAttempted, result.Outcome)
	assert.Len(t, result.Attempted, 2)
	errs := result.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, ActionServiceRestart, errs[0].Action)
	assert.Equal(t, 1, errs[0].ExitCode)
	assert.Equal(t, []string{health.CheckMemory}, result.Unfixable)
}

func TestDispatch_OnlyUnknownFailures(t *testing.T) {
	h := newHarness(true)

	result, err := h.dispatch.Dispatch(context.Background(), target, degraded(health.CheckMemory, health.CheckDisk))

	require.NoError(t, err)
	assert.Equal(t, ManualInterventionRequired, result.Outcome)
	assert.Equal(t, []string{health.CheckMemory, health.CheckDisk}, result.Unfixable)
	assert.Empty(t, h.confirm.questions)
}

func TestDispatch_FixAttemptedOncePerCondition(t *testing.T) {
	h := newHarness(true)
	state := degraded(health.CheckPrimaryService)

	_, err := h.dispatch.Dispatch(context.Background(), target, state)
	require.NoError(t, err)
	result, err := h.dispatch.Dispatch(context.Background(), target, state)

	require.NoError(t, err)
	assert.Equal(t, ManualInterventionRequired, result.Outcome)
	assert.Equal(t, []string{health.CheckPrimaryService}, result.Skipped)
	assert.Equal(t, 1, h.probe.CallCount())
}

func TestDispatch_DeclinedFixes(t *testing.T) {
	h := newHarness(false)

	result, err := h.dispatch.Dispatch(context.Background(), target, degraded(health.CheckFirewall))

	require.NoError(t, err)
	assert.Equal(t, ManualInterventionRequired, result.Outcome)
	assert.True(t, result.Declined)
	assert.Zero(t, h.probe.CallCount())
}

func TestDispatch_ConfirmErrorPropagates(t *testing.T) {
	h := newHarness(true)
	boom := errors.New("cancelled")
	h.confirm.err = boom

	_, err := h.dispatch.Dispatch(context.Background(), target, degraded(health.CheckFirewall))
	assert.ErrorIs(t, err, boom)

	_, err = h.dispatch.Dispatch(context.Background(), target, State{Status: status.NotDeployed})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, h.installer.calls)
}

func TestFixes(t *testing.T) {
	settings := config.DefaultSettings()
	fixes := Fixes(remotetest.NewProbe(nil), settings.Service, time.Second)

	assert.Len(t, fixes, 3)
	assert.Equal(t, ActionServiceRestart, fixes[health.CheckPrimaryService].Name)
	assert.Equal(t, ActionFirewallEnable, fixes[health.CheckFirewall].Name)
	assert.Equal(t, ActionAuditRestart, fixes[health.CheckAuditService].Name)
	_, ok := fixes[health.CheckMemory]
	assert.False(t, ok)
}

func TestRemediationError(t *testing.T) {
	err := newRemediationError(ActionFirewallEnable, &remote.ExitError{Command: "ufw", ExitCode: 4})
	assert.Equal(t, 4, err.ExitCode)
	assert.Contains(t, err.Error(), "firewall-enable exited with status 4")

	plain := newRemediationError(ActionInstall, errors.New("no such file"))
	assert.Equal(t, -1, plain.ExitCode)
	assert.Contains(t, plain.Error(), "install failed")
	assert.ErrorContains(t, errors.Unwrap(plain), "no such file")
}
