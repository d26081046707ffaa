package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/conn-castle/agent-deploy/internal/config"
	"github.com/conn-castle/agent-deploy/internal/health"
	"github.com/conn-castle/agent-deploy/internal/logging"
	"github.com/conn-castle/agent-deploy/internal/prompt"
	"github.com/conn-castle/agent-deploy/internal/remediate"
	"github.com/conn-castle/agent-deploy/internal/remote"
	"github.com/conn-castle/agent-deploy/internal/remote/remotetest"
	"github.com/conn-castle/agent-deploy/internal/status"
)

const completeStore = "TARGET_KIND=\"local\"\nTARGET_HOST=\"10.0.0.5\"\nTARGET_USER=\"ops\"\n"

const (
	meminfo = "MemTotal: 4000000 kB\nMemAvailable: 2000000 kB\n"
	df      = "Filesystem 1024-blocks Used Available Capacity Mounted on\n/dev/sda1 1000000 500000 500000 50% /\n"
)

// healthyProbe scripts a reachable, fully deployed and healthy target.
func healthyProbe() *remotetest.Probe {
	return remotetest.NewProbe(map[string]remotetest.Response{
		status.CheckConnectivity:   {OK: true},
		status.CheckServiceAccount: {OK: true},
		status.CheckCLI:            {OK: true},
		status.CheckServiceUnit:    {OK: true},
		status.CheckWorkspace:      {OK: true},
		status.CheckRuntime:        {OK: true},
		health.CheckPrimaryService: {OK: true, Output: "active"},
		"audit-installed":          {OK: true},
		health.CheckAuditService:   {OK: true, Output: "active"},
		health.CheckMemory:         {OK: true, Output: meminfo},
		health.CheckDisk:           {OK: true, Output: df},
		health.CheckCLI:            {OK: true, Output: "agent 1.0.0"},
		health.CheckFirewall:       {OK: true, Output: "Status: active"},
	})
}

type harness struct {
	root     string
	probe    *remotetest.Probe
	handoffs int
}

// newHarness points the CLI at a temp workspace holding store and swaps the
// probe, prompter and handoff seams for fakes.
func newHarness(t *testing.T, store string, probe *remotetest.Probe) *harness {
	t.Helper()
	h := &harness{root: t.TempDir(), probe: probe}
	stateDir := filepath.Join(h.root, config.StateDirName)
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		t.Fatalf("mkdir state dir: %v", err)
	}
	if store != "" {
		if err := os.WriteFile(filepath.Join(stateDir, "deploy.env"), []byte(store), 0o600); err != nil {
			t.Fatalf("write store: %v", err)
		}
	}

	origGetwd, origProbe, origPrompter, origHandoff := getwd, newProbe, newPrompter, newHandoff
	t.Cleanup(func() {
		getwd, newProbe, newPrompter, newHandoff = origGetwd, origProbe, origPrompter, origHandoff
	})
	getwd = func() (string, error) { return h.root, nil }
	newProbe = func(logging.Logger) remote.Probe { return h.probe }
	newPrompter = func(assumeYes bool, out io.Writer) prompt.Prompter {
		if assumeYes {
			return prompt.AssumeYes{Out: out, Inner: prompt.Declining{Out: out}}
		}
		return prompt.Declining{Out: out}
	}
	newHandoff = func() remediate.Collaborator {
		return remediate.CollaboratorFunc(func(context.Context, remote.Target, []string) error {
			h.handoffs++
			return nil
		})
	}
	return h
}

func (h *harness) run(args ...string) (string, error) {
	var out bytes.Buffer
	err := execute(append([]string{"agd"}, args...), &out, &out)
	return out.String(), err
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var silent *SilentExitError
	if errors.As(err, &silent) {
		return silent.Code
	}
	return 1
}

func TestRunHealthyHandsOff(t *testing.T) {
	h := newHarness(t, completeStore, healthyProbe())
	out, err := h.run()
	if err != nil {
		t.Fatalf("run error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Result: resolved") {
		t.Fatalf("expected resolved summary, got %q", out)
	}
	if h.handoffs != 1 {
		t.Fatalf("expected one handoff, got %d", h.handoffs)
	}
}

func TestRunNoHandoff(t *testing.T) {
	h := newHarness(t, completeStore, healthyProbe())
	if out, err := h.run("run", "--no-handoff"); err != nil {
		t.Fatalf("run error: %v\n%s", err, out)
	}
	if h.handoffs != 0 {
		t.Fatalf("expected no handoff, got %d", h.handoffs)
	}
}

func TestRunIncompleteConfigExitsOne(t *testing.T) {
	h := newHarness(t, "TARGET_KIND=\"local\"\n", healthyProbe())
	out, err := h.run("run")
	if exitCodeOf(err) != 1 {
		t.Fatalf("expected exit 1, got %v", err)
	}
	if !strings.Contains(out, "configuration incomplete") || !strings.Contains(out, config.KeyTargetHost) {
		t.Fatalf("expected incomplete summary, got %q", out)
	}
	if h.probe.CallCount() != 0 {
		t.Fatalf("expected no remote calls, got %d", h.probe.CallCount())
	}
}

func TestRunUnreachableExitsOne(t *testing.T) {
	probe := remotetest.NewProbe(map[string]remotetest.Response{
		status.CheckConnectivity: {Err: &remote.ConnectError{Target: "ops@10.0.0.5", Timeout: true}},
	})
	h := newHarness(t, completeStore, probe)
	_, err := h.run("run")
	if err == nil || !remote.IsConnectivity(err) {
		t.Fatalf("expected connectivity error, got %v", err)
	}
}

func TestRunDeclinedFixesExitsOne(t *testing.T) {
	probe := healthyProbe()
	probe.Set(health.CheckPrimaryService, remotetest.Response{Output: "inactive"})
	h := newHarness(t, completeStore, probe)
	out, err := h.run("run")
	if exitCodeOf(err) != 1 {
		t.Fatalf("expected exit 1, got %v\n%s", err, out)
	}
	if !strings.Contains(out, "manual-intervention-required") {
		t.Fatalf("expected manual intervention, got %q", out)
	}
	if h.handoffs != 0 {
		t.Fatalf("expected no handoff")
	}
}

func TestRunFixesThatDoNotTakeExitOne(t *testing.T) {
	probe := healthyProbe()
	probe.Set(health.CheckPrimaryService, remotetest.Response{Output: "inactive"})
	probe.Set(health.CheckFirewall, remotetest.Response{OK: true, Output: "Status: inactive"})
	h := newHarness(t, completeStore, probe)
	out, err := h.run("run", "--yes")
	if exitCodeOf(err) != 1 {
		t.Fatalf("expected exit 1, got %v\n%s", err, out)
	}
	if !strings.Contains(out, "fixes-attempted") {
		t.Fatalf("expected fixes-attempted, got %q", out)
	}
	if h.handoffs != 0 {
		t.Fatalf("expected no handoff")
	}
}

func TestStatusCommand(t *testing.T) {
	h := newHarness(t, completeStore, healthyProbe())
	out, err := h.run("status")
	if err != nil {
		t.Fatalf("status error: %v", err)
	}
	if !strings.Contains(out, "deployment deployed (5/5 checks)") {
		t.Fatalf("unexpected status output %q", out)
	}
}

func TestHealthCommandVerbose(t *testing.T) {
	h := newHarness(t, completeStore, healthyProbe())
	out, err := h.run("health", "--verbose")
	if err != nil {
		t.Fatalf("health error: %v", err)
	}
	for _, want := range []string{"score 100", "agent 1.0.0", "50% free"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestFixNothingToDo(t *testing.T) {
	h := newHarness(t, completeStore, healthyProbe())
	out, err := h.run("fix")
	if err != nil {
		t.Fatalf("fix error: %v", err)
	}
	if !strings.Contains(out, "Nothing to fix.") {
		t.Fatalf("unexpected fix output %q", out)
	}
}

func TestFixRechecksHealthAfterFixes(t *testing.T) {
	probe := healthyProbe()
	probe.Set(health.CheckPrimaryService, remotetest.Response{Output: "inactive"})
	h := newHarness(t, completeStore, probe)
	out, err := h.run("fix", "--yes")
	if exitCodeOf(err) != 1 {
		t.Fatalf("expected exit 1, got %v\n%s", err, out)
	}
	if got := probe.Count(health.CheckPrimaryService); got != 2 {
		t.Fatalf("expected health to be checked twice, got %d", got)
	}
	if !strings.Contains(out, "fixes-attempted") {
		t.Fatalf("expected fixes-attempted, got %q", out)
	}
}

func TestDoctorHealthy(t *testing.T) {
	h := newHarness(t, completeStore, healthyProbe())
	out, err := h.run("doctor")
	if err != nil {
		t.Fatalf("doctor error: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Everything looks good.") {
		t.Fatalf("unexpected doctor output %q", out)
	}
}

func TestDoctorBadSettings(t *testing.T) {
	h := newHarness(t, completeStore, healthyProbe())
	settings := filepath.Join(h.root, config.StateDirName, "deploy.toml")
	if err := os.WriteFile(settings, []byte("[nope]\nx = 1\n"), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	out, err := h.run("doctor")
	if exitCodeOf(err) != 1 {
		t.Fatalf("expected exit 1, got %v", err)
	}
	if !strings.Contains(out, "[FAIL]") {
		t.Fatalf("expected a failure line, got %q", out)
	}
}

func TestConfigSetGetValidate(t *testing.T) {
	h := newHarness(t, "", healthyProbe())
	if _, err := h.run("config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(filepath.Join(h.root, config.StateDirName, "deploy.toml")); err != nil {
		t.Fatalf("expected settings file: %v", err)
	}
	if _, err := h.run("config", "validate"); exitCodeOf(err) != 1 {
		t.Fatalf("expected validate to fail on a fresh store, got %v", err)
	}

	for key, value := range map[string]string{
		config.KeyTargetHost: "10.0.0.5",
		config.KeyTargetUser: "ops",
	} {
		if _, err := h.run("config", "set", key, value); err != nil {
			t.Fatalf("config set %s: %v", key, err)
		}
	}
	out, err := h.run("config", "get", config.KeyTargetHost)
	if err != nil || strings.TrimSpace(out) != "10.0.0.5" {
		t.Fatalf("config get: %v %q", err, out)
	}
	out, err = h.run("config", "validate")
	if err != nil || !strings.Contains(out, "All required values are set.") {
		t.Fatalf("config validate: %v %q", err, out)
	}
}

func TestConfigUnknownKey(t *testing.T) {
	h := newHarness(t, completeStore, healthyProbe())
	_, err := h.run("config", "set", "NOPE", "x")
	if err == nil || !strings.Contains(err.Error(), "unknown key") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}
