package main

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/conn-castle/agent-deploy/internal/collaborators"
	"github.com/conn-castle/agent-deploy/internal/config"
	"github.com/conn-castle/agent-deploy/internal/health"
	"github.com/conn-castle/agent-deploy/internal/logging"
	"github.com/conn-castle/agent-deploy/internal/prompt"
	"github.com/conn-castle/agent-deploy/internal/remediate"
	"github.com/conn-castle/agent-deploy/internal/remote"
	"github.com/conn-castle/agent-deploy/internal/root"
	"github.com/conn-castle/agent-deploy/internal/status"
)

// Seams replaced by tests.
var (
	getwd    = os.Getwd
	newProbe = func(logger logging.Logger) remote.Probe {
		return remote.NewSSHProbe(remote.ExecRunner{}, logger)
	}
	newPrompter = prompt.New
	newHandoff  = func() remediate.Collaborator { return collaborators.NewHandoff() }
	environ     = os.Environ
)

// app holds the dependencies one command invocation works with.
type app struct {
	flags       *globalFlags
	out         io.Writer
	errOut      io.Writer
	paths       config.Paths
	store       *config.Store
	settings    config.Settings
	settingsErr error
	logger      *logrus.Logger
	probe       remote.Probe
	prompter    prompt.Prompter
}

// newApp resolves the workspace and builds the shared dependencies.
// A broken settings file is kept in settingsErr so doctor can report it;
// every other command fails on it through requireSettings.
func newApp(cmd *cobra.Command, flags *globalFlags) (*app, error) {
	cwd, err := getwd()
	if err != nil {
		return nil, err
	}
	workspace, err := root.FindWorkspaceRoot(cwd)
	if err != nil {
		return nil, err
	}
	paths := config.DefaultPaths(workspace)
	if flags.store != "" {
		paths.StorePath = absPath(cwd, flags.store)
	}
	if flags.settings != "" {
		paths.SettingsPath = absPath(cwd, flags.settings)
	}

	level := flags.logLevel
	if flags.quiet {
		level = logrus.ErrorLevel.String()
	}
	var setters []logging.Setter
	if flags.logFormat == logFormatJSON {
		setters = append(setters, logging.JSON())
	}
	logger := logging.New(cmd.ErrOrStderr(), level, setters...)

	settings, settingsErr := config.LoadSettings(paths.SettingsPath)
	if settingsErr != nil {
		settings = config.DefaultSettings()
	}

	return &app{
		flags:       flags,
		out:         cmd.OutOrStdout(),
		errOut:      cmd.ErrOrStderr(),
		paths:       paths,
		store:       config.NewStore(paths.StorePath),
		settings:    settings,
		settingsErr: settingsErr,
		logger:      logger,
		probe:       newProbe(logging.Component(logger, "remote")),
		prompter:    newPrompter(flags.yes, cmd.OutOrStdout()),
	}, nil
}

func (a *app) requireSettings() error {
	return a.settingsErr
}

func (a *app) probeTimeout() time.Duration {
	return a.settings.Probe.Timeout.Std()
}

func (a *app) account() string {
	return a.store.Get(config.KeyAgentAccount, "agent")
}

func (a *app) battery() []status.Check {
	return status.Battery(a.settings.Service, a.account())
}

func (a *app) statusResolver() *status.Resolver {
	return status.NewResolver(a.probe, a.battery(), a.probeTimeout(), logging.Component(a.logger, "status"))
}

func (a *app) healthResolver() *health.Resolver {
	return health.NewResolver(a.probe, a.settings, logging.Component(a.logger, "health"))
}

// installerScript resolves the configured script against the workspace root.
func (a *app) installerScript() string {
	script := config.ExpandPath(a.settings.Installer.Script)
	if script == "" || filepath.IsAbs(script) {
		return script
	}
	return filepath.Join(a.paths.Root, script)
}

func (a *app) readiness() remediate.RetryPolicy {
	r := a.settings.Readiness
	return remediate.RetryPolicy{
		Attempts:       r.Attempts,
		AttemptTimeout: r.AttemptTimeout.Std(),
		BaseBackoff:    r.BaseBackoff.Std(),
		MaxBackoff:     r.MaxBackoff.Std(),
	}
}

// dispatcher builds a fresh dispatcher whose installer sees the snapshot's
// values in its environment.
func (a *app) dispatcher(snap config.Snapshot, resolver remediate.StatusResolver) *remediate.Dispatcher {
	exported := ""
	if target := remote.TargetFromSnapshot(snap); target.Valid() {
		exported = target.String()
	}
	env := collaborators.BuildEnv(environ(), snap, exported)
	installer := collaborators.NewInstaller(a.installerScript(), env, logging.Component(a.logger, "installer"))
	installer.Stdout = a.out
	installer.Stderr = a.errOut
	return remediate.NewDispatcher(remediate.Options{
		Installer: installer,
		Fixes:     remediate.Fixes(a.probe, a.settings.Service, a.probeTimeout()),
		Status:    resolver,
		Readiness: a.readiness(),
		Refresh: func() (remote.Target, error) {
			snap, err := a.store.Snapshot()
			if err != nil {
				return remote.Target{}, err
			}
			return remote.TargetFromSnapshot(snap), nil
		},
		Confirm: a.prompter,
		Logger:  logging.Component(a.logger, "remediate"),
	})
}

// snapshot reads the store, creating it from the template when absent.
func (a *app) snapshot() (config.Snapshot, error) {
	if err := a.store.Ensure(); err != nil {
		a.logger.WithError(err).Warn("store could not be created")
	}
	return a.store.Snapshot()
}

func absPath(cwd string, path string) string {
	path = config.ExpandPath(path)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cwd, path)
}
