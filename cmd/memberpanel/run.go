package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/determined-ai/memberpanel/internal"
	"github.com/determined-ai/memberpanel/internal/options"
	"github.com/determined-ai/memberpanel/pkg/check"
	"github.com/determined-ai/memberpanel/version"
)

const defaultConfigPath = "/etc/memberpanel/panel.yaml"

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "serve the control panel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := loadOptions()
			if err != nil {
				return err
			}
			return internal.Run(context.Background(), version.Version, *opts)
		},
	}
}

// loadOptions resolves options from defaults, the config file, environment variables and flags,
// in increasing order of precedence.
func loadOptions() (*options.Options, error) {
	opts, err := getOptions(v.AllSettings())
	if err != nil {
		return nil, err
	}

	bs, err := readConfigFile(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := mergeConfigBytesIntoViper(bs); err != nil {
		return nil, err
	}
	if opts, err = getOptions(v.AllSettings()); err != nil {
		return nil, err
	}

	opts.Resolve()
	if err := check.Validate(*opts); err != nil {
		return nil, errors.Wrap(err, "command-line arguments specify illegal configuration")
	}
	return opts, nil
}

func readConfigFile(configPath string) ([]byte, error) {
	isDefault := configPath == ""
	if isDefault {
		configPath = defaultConfigPath
	}

	var err error
	if _, err = os.Stat(configPath); err != nil {
		if isDefault && os.IsNotExist(err) {
			log.Debugf("no configuration file at %s, skipping", configPath)
			return nil, nil
		}
		return nil, errors.Wrap(err, "error finding configuration file")
	}
	bs, err := os.ReadFile(configPath) // #nosec G304
	if err != nil {
		return nil, errors.Wrap(err, "error reading configuration file")
	}
	return bs, nil
}

func mergeConfigBytesIntoViper(bs []byte) error {
	var configMap map[string]interface{}
	if err := yaml.Unmarshal(bs, &configMap); err != nil {
		return errors.Wrap(err, "error unmarshal yaml configuration file")
	}
	if err := v.MergeConfigMap(configMap); err != nil {
		return errors.Wrap(err, "error merge configuration to viper")
	}
	return nil
}

func getOptions(configMap map[string]interface{}) (*options.Options, error) {
	opts := options.DefaultOptions()
	bs, err := json.Marshal(configMap)
	if err != nil {
		return nil, errors.Wrap(err, "cannot marshal configuration map into json bytes")
	}
	if err = yaml.Unmarshal(bs, opts, yaml.DisallowUnknownFields); err != nil {
		return nil, errors.Wrap(err, "cannot unmarshal configuration")
	}
	return opts, nil
}
