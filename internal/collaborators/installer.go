// Package collaborators runs the external processes agd hands work to:
// the install script, remote fix commands, and the interactive session.
package collaborators

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/conn-castle/agent-deploy/internal/logging"
	"github.com/conn-castle/agent-deploy/internal/messages"
	"github.com/conn-castle/agent-deploy/internal/remote"
)

var commandContext = exec.CommandContext

// Installer runs the local install script as
// `<script> <targetAddress> <userIdentity> [flags...]`.
type Installer struct {
	Script string
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger logging.Logger
}

// NewInstaller returns an installer wired to the process stdio.
func NewInstaller(script string, env []string, logger logging.Logger) *Installer {
	if logger == nil {
		logger = logging.Component(nil, "installer")
	}
	return &Installer{
		Script: script,
		Env:    env,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: logger,
	}
}

// Invoke runs the script against target. A non-zero exit is returned as an
// error wrapping *exec.ExitError.
func (i *Installer) Invoke(ctx context.Context, target remote.Target, flags []string) error {
	if i.Script == "" {
		return fmt.Errorf(messages.CollabInstallerMissing)
	}
	if _, err := os.Stat(i.Script); err != nil {
		return fmt.Errorf(messages.CollabInstallerNotFoundFmt, i.Script, err)
	}
	args := append([]string{target.Address, target.User}, flags...)
	cmd := commandContext(ctx, i.Script, args...)
	cmd.Stdin = i.Stdin
	cmd.Stdout = i.Stdout
	cmd.Stderr = i.Stderr
	if i.Env != nil {
		cmd.Env = i.Env
	}

	entry := i.Logger.WithField("script", i.Script).WithField("args", args)
	if exported, ok := GetEnv(i.Env, EnvPrefix+"TARGET"); ok {
		entry = entry.WithField("env_target", exported)
	}
	entry.Info("running installer")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf(messages.CollabInstallerFailedFmt, i.Script, err)
	}
	return nil
}
