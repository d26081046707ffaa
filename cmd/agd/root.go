package main

import (
	"github.com/spf13/cobra"

	"github.com/conn-castle/agent-deploy/internal/messages"
)

const (
	flagStore     = "store"
	flagSettings  = "settings"
	flagYes       = "yes"
	flagNoHandoff = "no-handoff"
	flagLogLevel  = "log-level"
	flagLogFormat = "log-format"
	flagQuiet     = "quiet"
	flagVerbose   = "verbose"

	defaultLogLevel = "warn"
	logFormatText   = "text"
	logFormatJSON   = "json"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	store     string
	settings  string
	yes       bool
	noHandoff bool
	logLevel  string
	logFormat string
	quiet     bool
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		Long:          messages.RootLong,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd, flags)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.store, flagStore, "", messages.FlagStoreUsage)
	pf.StringVar(&flags.settings, flagSettings, "", messages.FlagSettingsUsage)
	pf.BoolVarP(&flags.yes, flagYes, "y", false, messages.FlagYesUsage)
	pf.BoolVar(&flags.noHandoff, flagNoHandoff, false, messages.FlagNoHandoffUsage)
	pf.StringVar(&flags.logLevel, flagLogLevel, defaultLogLevel, messages.FlagLogLevelUsage)
	pf.StringVar(&flags.logFormat, flagLogFormat, logFormatText, messages.FlagLogFormatUsage)
	pf.BoolVarP(&flags.quiet, flagQuiet, "q", false, messages.FlagQuietUsage)

	cmd.AddCommand(
		newRunCmd(flags),
		newStatusCmd(flags),
		newHealthCmd(flags),
		newFixCmd(flags),
		newDoctorCmd(flags),
		newConfigCmd(flags),
	)
	return cmd
}
