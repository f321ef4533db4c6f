package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/determined-ai/memberpanel/pkg/check"
	"github.com/determined-ai/memberpanel/pkg/logger"
	"github.com/determined-ai/memberpanel/version"
)

func newRootCmd() *cobra.Command {
	logOpts := logger.DefaultConfig()

	cmd := &cobra.Command{
		Use:           "memberpanel",
		Short:         "control panel for a simulated processor group",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := bindEnv(envPrefix, cmd); err != nil {
				return err
			}
			if err := check.Validate(*logOpts); err != nil {
				return errors.Wrap(err, "invalid logging configuration")
			}
			return logger.SetLogrus(*logOpts)
		},
	}

	cmd.PersistentFlags().StringVarP(&logOpts.Level, "log-level", "l", logOpts.Level,
		"set the logging level (can be one of: trace, debug, info, warn, error, or fatal)")
	cmd.PersistentFlags().BoolVar(&logOpts.Color, "log-color", logOpts.Color, "enable colored output")
	cmd.PersistentFlags().BoolVar(&logOpts.JSON, "log-json", logOpts.JSON, "write logs as JSON")

	registerConfig(cmd.PersistentFlags())

	cmd.AddCommand(newCompletionCmd())
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newStartCmd())
	cmd.AddCommand(newCrashCmd())

	return cmd
}
