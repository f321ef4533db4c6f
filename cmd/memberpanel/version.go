package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/determined-ai/memberpanel/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "memberpanel %s (built with %s)\n", version.Version, runtime.Version())
		},
	}
}
