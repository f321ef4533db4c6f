package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/determined-ai/memberpanel/internal"
	"github.com/determined-ai/memberpanel/internal/dispatch"
	"github.com/determined-ai/memberpanel/internal/view"
	"github.com/determined-ai/memberpanel/pkg/model"
)

func newStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "start a simulation with the --simulation-* parameters and print the roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := loadOptions()
			if err != nil {
				return err
			}
			cfg := opts.Simulation
			return internal.Once(context.Background(), *opts,
				func(ctx context.Context, d *dispatch.Dispatcher) error {
					return d.SubmitInit(ctx, cfg)
				}, cmd.OutOrStdout())
		},
	}
}

func newCrashCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "crash PROCESSOR",
		Short:   "crash a processor and print the roster",
		Example: "  memberpanel crash 3\n  memberpanel crash \"Processor 3\"",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := processorArg(args[0])
			if err != nil {
				return err
			}
			opts, err := loadOptions()
			if err != nil {
				return err
			}
			return internal.Once(context.Background(), *opts,
				func(ctx context.Context, d *dispatch.Dispatcher) error {
					return d.SubmitCrash(ctx, id)
				}, cmd.OutOrStdout())
		},
	}
}

// processorArg accepts either a bare processor id or a selection label.
func processorArg(arg string) (model.ProcessorID, error) {
	if strings.HasPrefix(arg, view.LabelPrefix) {
		return dispatch.ProcessorIDFromLabel(arg)
	}
	return model.ProcessorID(arg), nil
}
