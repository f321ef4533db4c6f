package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const (
	bashCompletion       = "bash"
	zshCompletion        = "zsh"
	fishCompletion       = "fish"
	powerShellCompletion = "power"
)

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "completion",
		Short:     "generates shell completion scripts",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{bashCompletion, zshCompletion, fishCompletion, powerShellCompletion},
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			out := cmd.OutOrStdout()
			switch shell := args[0]; shell {
			case bashCompletion:
				return root.GenBashCompletion(out)
			case zshCompletion:
				return root.GenZshCompletion(out)
			case fishCompletion:
				return root.GenFishCompletion(out, true)
			case powerShellCompletion:
				return root.GenPowerShellCompletion(out)
			default:
				return errors.Errorf("unexpected shell provided: %s", shell)
			}
		},
	}
}
