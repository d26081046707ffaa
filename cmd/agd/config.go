package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conn-castle/agent-deploy/internal/config"
	"github.com/conn-castle/agent-deploy/internal/doctor"
	"github.com/conn-castle/agent-deploy/internal/messages"
	"github.com/conn-castle/agent-deploy/internal/templates"
)

const settingsTemplateName = "deploy.toml"

func newConfigCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   messages.ConfigUse,
		Short: messages.ConfigShort,
		Args:  cobra.NoArgs,
	}
	cmd.AddCommand(
		newConfigInitCmd(flags),
		newConfigGetCmd(flags),
		newConfigSetCmd(flags),
		newConfigValidateCmd(flags),
	)
	return cmd
}

func newConfigInitCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   messages.ConfigInitUse,
		Short: messages.ConfigInitShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			if _, err := os.Stat(a.paths.StorePath); err == nil {
				_, _ = fmt.Fprintf(a.out, messages.CLIConfigExistsFmt, a.paths.StorePath)
			} else {
				if err := a.store.Ensure(); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(a.out, messages.CLIConfigCreatedFmt, a.paths.StorePath)
			}
			created, err := writeSettingsTemplate(a.paths.SettingsPath)
			if err != nil {
				return err
			}
			if created {
				_, _ = fmt.Fprintf(a.out, messages.CLIConfigCreatedFmt, a.paths.SettingsPath)
			} else {
				_, _ = fmt.Fprintf(a.out, messages.CLIConfigExistsFmt, a.paths.SettingsPath)
			}
			return nil
		},
	}
}

// writeSettingsTemplate writes the embedded settings file when path is absent.
func writeSettingsTemplate(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	data, err := templates.Read(settingsTemplateName)
	if err != nil {
		return false, err
	}
	sys := config.RealSystem{}
	if err := sys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	if err := sys.WriteFileAtomic(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

func newConfigGetCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   messages.ConfigGetUse,
		Short: messages.ConfigGetShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := lookupKey(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(a.out, a.store.Get(def.Key, def.Default))
			return nil
		},
	}
}

func newConfigSetCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   messages.ConfigSetUse,
		Short: messages.ConfigSetShort,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := lookupKey(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			if err := a.store.Ensure(); err != nil {
				a.logger.WithError(err).Warn("store could not be created")
			}
			unlock, err := a.store.Lock()
			if err != nil {
				return err
			}
			defer func() { _ = unlock() }()
			if err := a.store.Set(def.Key, strings.TrimSpace(args[1])); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(a.out, messages.CLIConfigValueSetFmt, def.Key)
			return nil
		},
	}
}

func newConfigValidateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   messages.ConfigValidateUse,
		Short: messages.ConfigValidateShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			snap, err := a.snapshot()
			if err != nil {
				return err
			}
			results := doctor.CheckStore(snap)
			if a.settingsErr != nil {
				results = append(results, doctor.CheckSettings(a.paths.SettingsPath, a.settingsErr))
			}
			if printResults(a.out, results) {
				return &SilentExitError{Code: 1}
			}
			_, _ = fmt.Fprintln(a.out, messages.CLIConfigValid)
			return nil
		},
	}
}

func lookupKey(key string) (config.KeyDef, error) {
	def, ok := config.LookupKey(strings.TrimSpace(key))
	if !ok {
		names := make([]string, 0, len(config.Keys()))
		for _, known := range config.Keys() {
			names = append(names, known.Key)
		}
		return config.KeyDef{}, fmt.Errorf(messages.CLIConfigUnknownKeyFmt, key, strings.Join(names, ", "))
	}
	return def, nil
}
