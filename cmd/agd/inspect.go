package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conn-castle/agent-deploy/internal/doctor"
	"github.com/conn-castle/agent-deploy/internal/health"
	"github.com/conn-castle/agent-deploy/internal/messages"
	"github.com/conn-castle/agent-deploy/internal/remediate"
	"github.com/conn-castle/agent-deploy/internal/remote"
	"github.com/conn-castle/agent-deploy/internal/status"
)

func newStatusCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   messages.StatusUse,
		Short: messages.StatusShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			if err := a.requireSettings(); err != nil {
				return fmt.Errorf(messages.CLISettingsInvalidFmt, err)
			}
			target, err := a.target()
			if err != nil {
				return err
			}
			report := a.statusResolver().ResolveDetailed(cmd.Context(), target)

			printTarget(a.out, target)
			printResults(a.out, doctor.FromStatus(report, a.battery()))
			if !report.Reachable() {
				return &SilentExitError{Code: 1}
			}
			return nil
		},
	}
}

func newHealthCmd(flags *globalFlags) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   messages.HealthUse,
		Short: messages.HealthShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			if err := a.requireSettings(); err != nil {
				return fmt.Errorf(messages.CLISettingsInvalidFmt, err)
			}
			target, err := a.target()
			if err != nil {
				return err
			}
			report := a.healthResolver().Resolve(cmd.Context(), target)

			printTarget(a.out, target)
			if !report.Reachable {
				printResults(a.out, doctor.FromHealth(report))
				return &SilentExitError{Code: 1}
			}
			printHealthLine(a.out, report)
			if verbose {
				printResults(a.out, doctor.FromHealth(report))
				printHealthDetail(a.out, report)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, flagVerbose, "v", false, messages.FlagVerboseUsage)
	return cmd
}

func newFixCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   messages.FixUse,
		Short: messages.FixShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			if err := a.requireSettings(); err != nil {
				return fmt.Errorf(messages.CLISettingsInvalidFmt, err)
			}
			if err := a.store.Ensure(); err != nil {
				a.logger.WithError(err).Warn("store could not be created")
			}
			unlock, err := a.store.Lock()
			if err != nil {
				return err
			}
			defer func() { _ = unlock() }()

			snap, err := a.store.Snapshot()
			if err != nil {
				return err
			}
			target := remote.TargetFromSnapshot(snap)
			statusResolver := a.statusResolver()
			report := statusResolver.ResolveDetailed(cmd.Context(), target)
			if target.Valid() && !report.Reachable() {
				printTarget(a.out, target)
				printResults(a.out, doctor.FromStatus(report, a.battery()))
				return &SilentExitError{Code: 1}
			}

			state := remediate.State{Status: report.Status}
			if report.Status == status.Deployed {
				state.Health = a.healthResolver().Resolve(cmd.Context(), target)
			}
			result, err := a.dispatcher(snap, statusResolver).Dispatch(cmd.Context(), target, state)
			if err != nil {
				return err
			}

			printTarget(a.out, target)
			printStatusLine(a.out, report)
			if report.Status == status.Deployed {
				printHealthLine(a.out, state.Health)
			}
			if len(result.Attempted) == 0 && result.Outcome == remediate.Resolved {
				_, _ = fmt.Fprintln(a.out, messages.CLIFixNothingToDo)
				return nil
			}
			printResults(a.out, doctor.FromRemediation(result))
			_, _ = fmt.Fprintf(a.out, messages.CLISummaryFmt, result.Outcome)
			switch result.Outcome {
			case remediate.ManualInterventionRequired:
				return &SilentExitError{Code: 1}
			case remediate.FixesAttempted:
				recheck := a.healthResolver().Resolve(cmd.Context(), target)
				printHealthLine(a.out, recheck)
				if recheck.Tier != health.Healthy {
					return &SilentExitError{Code: 1}
				}
			}
			return nil
		},
	}
}

func newDoctorCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   messages.DoctorUse,
		Short: messages.DoctorShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(a.out, messages.CLIDoctorHeaderFmt, a.paths.Root)

			results := []doctor.Result{doctor.CheckSettings(a.paths.SettingsPath, a.settingsErr)}
			snap, err := a.snapshot()
			if err != nil {
				return err
			}
			storeResults := doctor.CheckStore(snap)
			results = append(results, storeResults...)
			if !doctor.HasFailure(storeResults) {
				target := remote.TargetFromSnapshot(snap)
				report := a.statusResolver().ResolveDetailed(cmd.Context(), target)
				results = append(results, doctor.FromStatus(report, a.battery())...)
				if report.Status == status.Deployed {
					results = append(results, doctor.FromHealth(a.healthResolver().Resolve(cmd.Context(), target))...)
				}
			}

			if printResults(a.out, results) {
				_, _ = fmt.Fprintln(a.out, messages.CLIDoctorFailures)
				return &SilentExitError{Code: 1}
			}
			_, _ = fmt.Fprintln(a.out, messages.CLIDoctorAllOK)
			return nil
		},
	}
}

// target reads the store and builds the target it names.
func (a *app) target() (remote.Target, error) {
	snap, err := a.snapshot()
	if err != nil {
		return remote.Target{}, err
	}
	return remote.TargetFromSnapshot(snap), nil
}
