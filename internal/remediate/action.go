// Package remediate picks and runs the actions that move a target toward a
// deployed, healthy state.
package remediate

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/conn-castle/agent-deploy/internal/collaborators"
	"github.com/conn-castle/agent-deploy/internal/config"
	"github.com/conn-castle/agent-deploy/internal/health"
	"github.com/conn-castle/agent-deploy/internal/messages"
	"github.com/conn-castle/agent-deploy/internal/remote"
)

// Action names.
const (
	ActionInstall         = "install"
	ActionCompleteInstall = "install-complete"
	ActionServiceRestart  = "service-restart"
	ActionFirewallEnable  = "firewall-enable"
	ActionAuditRestart    = "audit-restart"
)

// Conditions for the install actions. Fix actions use health check names.
const (
	ConditionNotDeployed = "not-deployed"
	ConditionPartial     = "partial"
)

// CompleteFlag asks the installer to finish a partial install only.
const CompleteFlag = "--complete"

// Collaborator is an external process invoked as (target, flags).
// Implementations must be safe to invoke when the condition no longer holds.
type Collaborator interface {
	Invoke(ctx context.Context, target remote.Target, flags []string) error
}

// CollaboratorFunc adapts a function into a Collaborator.
type CollaboratorFunc func(ctx context.Context, target remote.Target, flags []string) error

// Invoke calls f.
func (f CollaboratorFunc) Invoke(ctx context.Context, target remote.Target, flags []string) error {
	return f(ctx, target, flags)
}

// Action is a named remediation for one failing condition.
type Action struct {
	Name      string
	Condition string
	Command   Collaborator
	Flags     []string
}

// Fixes returns the known fix actions keyed by the health check they address.
func Fixes(probe remote.Probe, service config.ServiceSettings, timeout time.Duration) map[string]Action {
	return map[string]Action{
		health.CheckPrimaryService: {
			Name:      ActionServiceRestart,
			Condition: health.CheckPrimaryService,
			Command:   collaborators.ServiceRestart(probe, service.Unit, timeout),
		},
		health.CheckFirewall: {
			Name:      ActionFirewallEnable,
			Condition: health.CheckFirewall,
			Command:   collaborators.FirewallEnable(probe, timeout),
		},
		health.CheckAuditService: {
			Name:      ActionAuditRestart,
			Condition: health.CheckAuditService,
			Command:   collaborators.ServiceRestart(probe, service.AuditUnit, timeout),
		},
	}
}

// RemediationError reports that an action ran and did not take.
type RemediationError struct {
	Action   string
	ExitCode int // -1 when the process did not produce an exit status
	Err      error
}

func (e *RemediationError) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf(messages.RemediateActionExitFmt, e.Action, e.ExitCode, e.Err)
	}
	return fmt.Sprintf(messages.RemediateActionFailedFmt, e.Action, e.Err)
}

func (e *RemediationError) Unwrap() error { return e.Err }

func newRemediationError(action string, err error) *RemediationError {
	code := -1
	var execErr *exec.ExitError
	var remoteErr *remote.ExitError
	switch {
	case errors.As(err, &execErr):
		code = execErr.ExitCode()
	case errors.As(err, &remoteErr):
		code = remoteErr.ExitCode
	}
	return &RemediationError{Action: action, ExitCode: code, Err: err}
}
