package remediate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/conn-castle/agent-deploy/internal/health"
	"github.com/conn-castle/agent-deploy/internal/logging"
	"github.com/conn-castle/agent-deploy/internal/messages"
	"github.com/conn-castle/agent-deploy/internal/remote"
	"github.com/conn-castle/agent-deploy/internal/status"
)

// Outcome is where one dispatch left the run.
type Outcome int

const (
	// Resolved means the target is deployed and healthy.
	Resolved Outcome = iota
	// ManualInterventionRequired means nothing more can be done automatically.
	ManualInterventionRequired
	// Installed means an install ran and the status was re-resolved.
	Installed
	// FixesAttempted means fixes ran against an unhealthy target; health must be re-checked.
	FixesAttempted
)

// String returns the operator-facing name of the outcome.
func (o Outcome) String() string {
	switch o {
	case Resolved:
		return "resolved"
	case ManualInterventionRequired:
		return "manual-intervention-required"
	case Installed:
		return "installed"
	case FixesAttempted:
		return "fixes-attempted"
	default:
		return "unknown"
	}
}

// Terminal reports whether the outcome ends the run.
func (o Outcome) Terminal() bool {
	return o == Resolved || o == ManualInterventionRequired
}

// State is the resolver output a dispatch starts from.
// Health is only consulted when Status is Deployed.
type State struct {
	Status status.Status
	Health health.Report
}

// ActionResult records one attempted action.
type ActionResult struct {
	Name      string
	Condition string
	Err       *RemediationError
}

// Result is what one dispatch did.
type Result struct {
	Outcome Outcome
	// Status is the re-resolved deployment status after an install.
	Status    status.Status
	Attempted []ActionResult
	// Unfixable lists failing checks with no known fix.
	Unfixable []string
	// Skipped lists conditions already attempted earlier in this run.
	Skipped  []string
	Declined bool
}

// Errors returns the failed actions.
func (r Result) Errors() []*RemediationError {
	var out []*RemediationError
	for _, attempted := range r.Attempted {
		if attempted.Err != nil {
			out = append(out, attempted.Err)
		}
	}
	return out
}

// Confirmer asks the operator before an action runs.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// StatusResolver re-classifies the deployment after an install.
type StatusResolver interface {
	Resolve(ctx context.Context, target remote.Target) status.Status
}

// Options wires a Dispatcher.
type Options struct {
	Installer Collaborator
	// Fixes maps a failing health check to the action that addresses it.
	Fixes     map[string]Action
	Status    StatusResolver
	Readiness RetryPolicy
	// Refresh re-reads the target before readiness checks. An installer that
	// provisions the host writes its address into the store.
	Refresh func() (remote.Target, error)
	Confirm Confirmer
	Logger  logging.Logger
}

// Dispatcher maps (status, health) onto remediation actions.
// It remembers attempted conditions, so one Dispatcher covers exactly one run.
type Dispatcher struct {
	installer Collaborator
	fixes     map[string]Action
	status    StatusResolver
	readiness RetryPolicy
	refresh   func() (remote.Target, error)
	confirm   Confirmer
	logger    logging.Logger
	attempted map[string]bool
}

var errNotReady = errors.New("target not deployed yet")

// NewDispatcher returns a dispatcher for one run.
func NewDispatcher(opts Options) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Component(nil, "remediate")
	}
	return &Dispatcher{
		installer: opts.Installer,
		fixes:     opts.Fixes,
		status:    opts.Status,
		readiness: opts.Readiness,
		refresh:   opts.Refresh,
		confirm:   opts.Confirm,
		logger:    logger,
		attempted: make(map[string]bool),
	}
}

// Dispatch runs the remediation for state. The error is reserved for
// prompt failures and cancellation; action failures are in the Result.
func (d *Dispatcher) Dispatch(ctx context.Context, target remote.Target, state State) (Result, error) {
	switch state.Status {
	case status.NotDeployed:
		return d.install(ctx, target, Action{
			Name:      ActionInstall,
			Condition: ConditionNotDeployed,
			Command:   d.installer,
		}, fmt.Sprintf(messages.RemediateConfirmInstallFmt, target))
	case status.Partial:
		return d.install(ctx, target, Action{
			Name:      ActionCompleteInstall,
			Condition: ConditionPartial,
			Command:   d.installer,
			Flags:     []string{CompleteFlag},
		}, fmt.Sprintf(messages.RemediateConfirmCompleteFmt, target))
	default:
		return d.fix(ctx, target, state.Health)
	}
}

// Offer returns the fix actions Dispatch would offer for report, and the
// failing checks that have no known fix.
func (d *Dispatcher) Offer(report health.Report) ([]Action, []string) {
	var offer []Action
	var unfixable []string
	for _, check := range report.Failing {
		action, ok := d.fixes[check]
		if !ok {
			unfixable = append(unfixable, check)
			continue
		}
		offer = append(offer, action)
	}
	return offer, unfixable
}

func (d *Dispatcher) install(ctx context.Context, target remote.Target, action Action, question string) (Result, error) {
	result := Result{Outcome: ManualInterventionRequired, Status: status.NotDeployed}
	if action.Condition == ConditionPartial {
		result.Status = status.Partial
	}
	if d.attempted[action.Condition] {
		result.Skipped = []string{action.Condition}
		d.logger.WithField("condition", action.Condition).Warn("install already attempted in this run")
		return result, nil
	}
	if action.Command == nil {
		missing := &RemediationError{Action: action.Name, ExitCode: -1, Err: errors.New(messages.CollabInstallerMissing)}
		result.Attempted = []ActionResult{{Name: action.Name, Condition: action.Condition, Err: missing}}
		return result, nil
	}

	ok, err := d.confirm.Confirm(question)
	if err != nil {
		return result, err
	}
	if !ok {
		result.Declined = true
		return result, nil
	}

	attempted := d.run(ctx, target, action)
	result.Attempted = []ActionResult{attempted}
	result.Outcome = Installed
	result.Status = d.waitReady(ctx, target, attempted.Err == nil)
	return result, ctx.Err()
}

// waitReady re-resolves the status. After a clean install it polls until
// Deployed or the readiness policy runs out. After a failed install, or when
// the target still has no address, it looks once.
func (d *Dispatcher) waitReady(ctx context.Context, target remote.Target, poll bool) status.Status {
	target = d.current(target)
	policy := d.readiness
	if !poll || !target.Valid() {
		policy.Attempts = 1
	}
	last := status.NotDeployed
	attempt := 0
	_ = Retry(ctx, policy, func(attemptCtx context.Context) error {
		attempt++
		if attempt > 1 {
			target = d.current(target)
		}
		last = d.status.Resolve(attemptCtx, target)
		d.logger.WithField("attempt", attempt).WithField("target", target.String()).WithField("status", last.String()).Debug("readiness check")
		if last != status.Deployed {
			return errNotReady
		}
		return nil
	})
	return last
}

// current returns the refreshed target, or target itself when no refresh is
// wired or the refresh fails.
func (d *Dispatcher) current(target remote.Target) remote.Target {
	if d.refresh == nil {
		return target
	}
	next, err := d.refresh()
	if err != nil {
		d.logger.WithError(err).Warn("re-reading target failed")
		return target
	}
	return next
}

func (d *Dispatcher) fix(ctx context.Context, target remote.Target, report health.Report) (Result, error) {
	result := Result{Outcome: Resolved, Status: status.Deployed}
	if report.Tier == health.Healthy {
		return result, nil
	}

	candidates, unfixable := d.Offer(report)
	result.Unfixable = unfixable
	var offer []Action
	for _, action := range candidates {
		if d.attempted[action.Condition] {
			result.Skipped = append(result.Skipped, action.Condition)
			continue
		}
		offer = append(offer, action)
	}
	if len(offer) == 0 {
		result.Outcome = ManualInterventionRequired
		return result, nil
	}

	names := make([]string, len(offer))
	for i, action := range offer {
		names[i] = action.Name
	}
	ok, err := d.confirm.Confirm(fmt.Sprintf(messages.RemediateConfirmFixesFmt, strings.Join(names, ", "), target))
	if err != nil {
		result.Outcome = ManualInterventionRequired
		return result, err
	}
	if !ok {
		result.Outcome = ManualInterventionRequired
		result.Declined = true
		return result, nil
	}

	for _, action := range offer {
		result.Attempted = append(result.Attempted, d.run(ctx, target, action))
	}
	result.Outcome = FixesAttempted
	return result, ctx.Err()
}

// run invokes action once and marks its condition attempted.
func (d *Dispatcher) run(ctx context.Context, target remote.Target, action Action) ActionResult {
	d.attempted[action.Condition] = true
	entry := d.logger.WithField("action", action.Name).WithField("condition", action.Condition)
	entry.Info("running remediation")

	attempted := ActionResult{Name: action.Name, Condition: action.Condition}
	if err := action.Command.Invoke(ctx, target, action.Flags); err != nil {
		attempted.Err = newRemediationError(action.Name, err)
		entry.WithError(err).Warn("remediation did not take")
	}
	return attempted
}
