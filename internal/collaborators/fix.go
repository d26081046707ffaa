package collaborators

import (
	"context"
	"time"

	"github.com/conn-castle/agent-deploy/internal/remote"
)

// RemoteFix runs one typed command on the target over the probe channel.
// Extra flags are appended to the command's arguments.
type RemoteFix struct {
	Name    string
	Probe   remote.Probe
	Command remote.Command
	Timeout time.Duration
}

// Invoke runs the fix. A non-zero remote exit is returned as *remote.ExitError.
func (f RemoteFix) Invoke(ctx context.Context, target remote.Target, flags []string) error {
	cmd := f.Command
	if len(flags) > 0 {
		cmd.Args = append(append([]string{}, cmd.Args...), flags...)
	}
	result := f.Probe.Run(ctx, target, f.Name, cmd, f.Timeout)
	if result.Succeeded {
		return nil
	}
	return result.Err
}

// ServiceRestart returns the fix that restarts unit.
func ServiceRestart(probe remote.Probe, unit string, timeout time.Duration) RemoteFix {
	return RemoteFix{
		Name:    "restart " + unit,
		Probe:   probe,
		Command: remote.Sudo(remote.Cmd("systemctl", "restart", unit)),
		Timeout: timeout,
	}
}

// FirewallEnable returns the fix that turns on ufw non-interactively.
func FirewallEnable(probe remote.Probe, timeout time.Duration) RemoteFix {
	return RemoteFix{
		Name:    "enable firewall",
		Probe:   probe,
		Command: remote.Sudo(remote.Cmd("ufw", "--force", "enable")),
		Timeout: timeout,
	}
}
