// Package orchestrator drives one agd run from configuration through
// deployment, health, remediation and handoff.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/conn-castle/agent-deploy/internal/config"
	"github.com/conn-castle/agent-deploy/internal/health"
	"github.com/conn-castle/agent-deploy/internal/logging"
	"github.com/conn-castle/agent-deploy/internal/messages"
	"github.com/conn-castle/agent-deploy/internal/remediate"
	"github.com/conn-castle/agent-deploy/internal/remote"
	"github.com/conn-castle/agent-deploy/internal/status"
)

// ConfigState is whether the store holds every required value.
type ConfigState int

const (
	// ConfigIncomplete means a required key is empty or a placeholder.
	ConfigIncomplete ConfigState = iota
	// ConfigComplete means validation passed.
	ConfigComplete
)

// String returns the operator-facing name of the state.
func (s ConfigState) String() string {
	if s == ConfigComplete {
		return "complete"
	}
	return "incomplete"
}

// StatusResolver classifies the deployment.
type StatusResolver interface {
	ResolveDetailed(ctx context.Context, target remote.Target) status.Report
}

// HealthResolver scores a deployed target.
type HealthResolver interface {
	Resolve(ctx context.Context, target remote.Target) health.Report
}

// Dispatcher runs remediation for a (status, health) pair.
type Dispatcher interface {
	Dispatch(ctx context.Context, target remote.Target, state remediate.State) (remediate.Result, error)
}

// Options wires an Orchestrator.
type Options struct {
	Store  *config.Store
	Status StatusResolver
	Health HealthResolver
	// NewDispatcher builds the run's dispatcher from the validated snapshot.
	NewDispatcher func(snap config.Snapshot) Dispatcher
	// Input collects missing values; nil means incomplete config ends the run.
	Input GuidedInput
	// Handoff opens the interactive session; nil skips it.
	Handoff      remediate.Collaborator
	HandoffFlags []string
	Logger       logging.Logger
}

// Result is the final state of a run.
type Result struct {
	ConfigState ConfigState
	Missing     []string
	Target      remote.Target

	Status       status.Status
	StatusReport status.Report

	HealthChecked bool
	Health        health.Tier
	Score         int
	Report        health.Report

	Terminal   remediate.Outcome
	Dispatches []remediate.Result
	HandedOff  bool
	// ConnectErr is set when the run stopped because the target was unreachable.
	ConnectErr error
}

// ExitCode maps the result onto the process exit code.
func (r Result) ExitCode() int {
	switch {
	case r.ConfigState == ConfigIncomplete, r.ConnectErr != nil:
		return 1
	case r.Terminal == remediate.ManualInterventionRequired, r.Terminal == remediate.FixesAttempted:
		return 1
	default:
		return 0
	}
}

// Orchestrator runs the deployment state machine.
type Orchestrator struct {
	opts   Options
	logger logging.Logger
}

// New returns an orchestrator.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Component(nil, "orchestrator")
	}
	return &Orchestrator{opts: opts, logger: logger}
}

// Run executes one pass. The error is set for incomplete configuration
// (wrapping *config.ConfigError), unreachable targets, store failures, and
// prompt cancellation; ManualInterventionRequired is reported through Result.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	result := Result{Terminal: remediate.ManualInterventionRequired}
	store := o.opts.Store

	if err := store.Ensure(); err != nil {
		if !errors.Is(err, config.ErrStoreInit) {
			return result, err
		}
		o.logger.WithError(err).Warn(messages.OrchestratorStoreInitWarning)
	}
	unlock, err := store.Lock()
	if err != nil {
		return result, err
	}
	defer func() {
		if err := unlock(); err != nil {
			o.logger.WithError(err).Warn("release store lock")
		}
	}()

	snap, err := o.completeConfig(ctx, &result)
	if err != nil {
		return result, err
	}

	dispatcher := o.opts.NewDispatcher(snap)
	result.Target = remote.TargetFromSnapshot(snap)
	if err := o.resolveStatus(ctx, &result); err != nil {
		return result, err
	}

	for result.Status != status.Deployed {
		outcome, err := dispatcher.Dispatch(ctx, result.Target, remediate.State{Status: result.Status})
		o.record(&result, outcome)
		if err != nil {
			return result, err
		}
		if outcome.Outcome.Terminal() {
			return result, nil
		}
		// An install may have provisioned the host; re-read the store and
		// re-resolve instead of trusting the installer's exit code.
		if snap, err = store.Snapshot(); err != nil {
			return result, err
		}
		result.Target = remote.TargetFromSnapshot(snap)
		if err := o.resolveStatus(ctx, &result); err != nil {
			return result, err
		}
	}

	if err := o.resolveHealth(ctx, &result); err != nil {
		return result, err
	}
	outcome, err := dispatcher.Dispatch(ctx, result.Target, remediate.State{Status: result.Status, Health: result.Report})
	o.record(&result, outcome)
	if err != nil {
		return result, err
	}
	if outcome.Outcome == remediate.FixesAttempted {
		if snap, err = store.Snapshot(); err != nil {
			return result, err
		}
		result.Target = remote.TargetFromSnapshot(snap)
		if err := o.resolveHealth(ctx, &result); err != nil {
			return result, err
		}
		if result.Health == health.Healthy {
			result.Terminal = remediate.Resolved
		}
	}

	if result.Terminal != remediate.Resolved || o.opts.Handoff == nil {
		return result, nil
	}
	o.logger.WithField("target", result.Target.String()).Info("handing off to interactive session")
	if err := o.opts.Handoff.Invoke(ctx, result.Target, o.opts.HandoffFlags); err != nil {
		return result, err
	}
	result.HandedOff = true
	return result, nil
}

// record appends one dispatch to the run and logs its failed actions.
func (o *Orchestrator) record(result *Result, outcome remediate.Result) {
	result.Dispatches = append(result.Dispatches, outcome)
	result.Terminal = outcome.Outcome
	for _, failed := range outcome.Errors() {
		o.logger.WithError(failed).WithField("action", failed.Action).Warn("remediation action failed")
	}
}

// completeConfig validates the store, running guided input until the
// required set is satisfied or the operator stops.
func (o *Orchestrator) completeConfig(ctx context.Context, result *Result) (config.Snapshot, error) {
	for {
		snap, err := o.opts.Store.Snapshot()
		if err != nil {
			return config.Snapshot{}, err
		}
		ok, missing := snap.ValidateRequired(config.RequiredFor(snap.Kind()))
		result.Missing = missing
		if ok {
			result.ConfigState = ConfigComplete
			return snap, nil
		}
		incomplete := &config.ConfigError{Missing: missing}
		if o.opts.Input == nil {
			return config.Snapshot{}, incomplete
		}
		o.logger.WithField("missing", missing).Info("configuration incomplete; starting guided input")
		if err := o.opts.Input.Collect(ctx, snap, missing); err != nil {
			return config.Snapshot{}, fmt.Errorf(messages.OrchestratorIncompleteFmt, incomplete, err)
		}
	}
}

func (o *Orchestrator) resolveStatus(ctx context.Context, result *Result) error {
	report := o.opts.Status.ResolveDetailed(ctx, result.Target)
	result.StatusReport = report
	result.Status = report.Status
	if result.Target.Valid() && !report.Reachable() {
		result.ConnectErr = report.Preflight.Err
		return fmt.Errorf(messages.OrchestratorUnreachableFmt, result.Target, report.Preflight.Err)
	}
	if !result.Target.Valid() {
		o.logger.Warn(fmt.Sprintf(messages.OrchestratorNoTargetFmt, config.KeyTargetHost))
	}
	return nil
}

func (o *Orchestrator) resolveHealth(ctx context.Context, result *Result) error {
	report := o.opts.Health.Resolve(ctx, result.Target)
	result.HealthChecked = true
	result.Report = report
	result.Health = report.Tier
	result.Score = report.Score
	if !report.Reachable {
		result.ConnectErr = report.ConnectErr
		return fmt.Errorf(messages.OrchestratorUnreachableFmt, result.Target, report.ConnectErr)
	}
	return nil
}
