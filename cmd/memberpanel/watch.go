package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/determined-ai/memberpanel/internal"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "print the processor roster whenever it changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := loadOptions()
			if err != nil {
				return err
			}
			return internal.Watch(context.Background(), *opts, cmd.OutOrStdout())
		},
	}
}
