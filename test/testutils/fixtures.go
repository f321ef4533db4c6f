package testutils

import (
	"github.com/ghodss/yaml"

	"github.com/determined-ai/memberpanel/internal/options"
	"github.com/determined-ai/memberpanel/pkg/check"
)

const defaultPanelConfig = `
poll_interval: 20ms
bind_ip: 127.0.0.1
bind_port: 0
simulator:
  request_timeout: 2s
`

// DefaultOptions returns panel options pointed at the given simulator.
func DefaultOptions(simulatorURL string) (*options.Options, error) {
	opts := options.DefaultOptions()
	if err := yaml.Unmarshal([]byte(defaultPanelConfig), opts, yaml.DisallowUnknownFields); err != nil {
		return nil, err
	}
	opts.Simulator.URL = simulatorURL
	opts.Resolve()
	if err := check.Validate(*opts); err != nil {
		return nil, err
	}
	return opts, nil
}
