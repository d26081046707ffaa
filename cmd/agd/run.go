package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conn-castle/agent-deploy/internal/config"
	"github.com/conn-castle/agent-deploy/internal/doctor"
	"github.com/conn-castle/agent-deploy/internal/logging"
	"github.com/conn-castle/agent-deploy/internal/messages"
	"github.com/conn-castle/agent-deploy/internal/orchestrator"
)

func newRunCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   messages.RunUse,
		Short: messages.RunShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd, flags)
		},
	}
}

// runDeploy performs one orchestrator pass and maps its result onto the exit code.
func runDeploy(cmd *cobra.Command, flags *globalFlags) error {
	a, err := newApp(cmd, flags)
	if err != nil {
		return err
	}
	if err := a.requireSettings(); err != nil {
		return fmt.Errorf(messages.CLISettingsInvalidFmt, err)
	}

	statusResolver := a.statusResolver()
	opts := orchestrator.Options{
		Store:  a.store,
		Status: statusResolver,
		Health: a.healthResolver(),
		NewDispatcher: func(snap config.Snapshot) orchestrator.Dispatcher {
			return a.dispatcher(snap, statusResolver)
		},
		Input:  &orchestrator.PromptInput{Store: a.store, Prompter: a.prompter},
		Logger: logging.Component(a.logger, "orchestrator"),
	}
	if !flags.noHandoff {
		opts.Handoff = newHandoff()
	}

	if !flags.quiet {
		_, _ = fmt.Fprintf(a.out, messages.CLIWorkspaceFmt, a.paths.Root)
	}
	result, runErr := orchestrator.New(opts).Run(cmd.Context())
	var configErr *config.ConfigError
	if runErr != nil && result.ConfigState == orchestrator.ConfigIncomplete && !errors.As(runErr, &configErr) {
		return runErr
	}
	a.renderRun(result)
	if runErr != nil {
		return runErr
	}
	if code := result.ExitCode(); code != 0 {
		return &SilentExitError{Code: code}
	}
	return nil
}

func (a *app) renderRun(result orchestrator.Result) {
	out := a.out
	if result.ConfigState == orchestrator.ConfigIncomplete {
		if len(result.Missing) > 0 {
			_, _ = fmt.Fprintf(out, messages.CLIMissingKeysFmt, strings.Join(result.Missing, ", "))
		}
		_, _ = fmt.Fprintf(out, messages.CLISummaryFmt, messages.CLIConfigIncomplete)
		return
	}

	if !a.flags.quiet {
		printTarget(out, result.Target)
		if result.ConnectErr == nil {
			printStatusLine(out, result.StatusReport)
		}
		if result.HealthChecked {
			printHealthLine(out, result.Report)
		}
		for _, dispatch := range result.Dispatches {
			printResults(out, doctor.FromRemediation(dispatch))
		}
	}
	if result.ConnectErr != nil {
		return
	}
	_, _ = fmt.Fprintf(out, messages.CLISummaryFmt, result.Terminal)
	if result.HandedOff && !a.flags.quiet {
		_, _ = fmt.Fprintln(out, messages.CLIHandedOff)
	}
}
