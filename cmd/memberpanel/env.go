package main

import (
	"strings"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const envPrefix = "MP_"

// bindEnv sets every flag that was not given on the command line from its environment variable.
func bindEnv(prefix string, cmd *cobra.Command) error {
	var result *multierror.Error
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if flag.Changed {
			return
		}
		envName := prefix + strings.ReplaceAll(strings.ToUpper(flag.Name), "-", "_")
		if value, ok := syscall.Getenv(envName); ok {
			if err := flag.Value.Set(value); err != nil {
				result = multierror.Append(result,
					errors.Wrapf(err, "failed to parse %s (%s)", envName, flag.Value.Type()))
			}
		}
	})
	return result.ErrorOrNil()
}
