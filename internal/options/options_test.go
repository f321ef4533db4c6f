package options

import (
	"testing"
	"time"

	"github.com/ghodss/yaml"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/determined-ai/memberpanel/pkg/check"
	"github.com/determined-ai/memberpanel/pkg/model"
)

func TestDefaultOptionsAreValid(t *testing.T) {
	opts := DefaultOptions()
	opts.Resolve()
	require.NoError(t, check.Validate(*opts))
	require.Equal(t, "127.0.0.1:8090", opts.BindAddr())
}

func TestValidate(t *testing.T) {
	opts := DefaultOptions()
	opts.Simulator.URL = "ftp://sim"
	opts.PollInterval = 0
	opts.Simulation.CheckInPeriod = decimal.NewFromInt(1)

	err := check.Validate(*opts)
	require.ErrorContains(t, err, "poll_interval must be positive")
	require.ErrorContains(t, err, "simulator url scheme: ftp not in [http https]")
	require.ErrorContains(t, err, "error found at root.Simulation")
	require.ErrorContains(t, err, "check in period is too small")
}

func TestUnmarshalYAML(t *testing.T) {
	raw := `
simulator:
  url: http://sim:5000
  init_path: /init-processors
  request_timeout: 2s
poll_interval: 500ms
simulation:
  num_processors: 5
  max_clock_sync_error: 0.5
  broadcast_delay: "1"
  datagram_delay: 1
  check_in_period: 3
`
	opts := DefaultOptions()
	require.NoError(t, yaml.Unmarshal([]byte(raw), opts, yaml.DisallowUnknownFields))
	opts.Resolve()

	require.Equal(t, "http://sim:5000", opts.Simulator.URL)
	require.Equal(t, "/init-processors", opts.Simulator.Paths().Init)
	require.Equal(t, "/all-processors", opts.Simulator.Paths().Roster)
	require.Equal(t, model.Duration(2*time.Second), opts.Simulator.RequestTimeout)
	require.Equal(t, model.Duration(500*time.Millisecond), opts.PollInterval)
	require.Equal(t, 5, opts.Simulation.NumProcessors)
	require.Equal(t, "0.5", opts.Simulation.MaxClockSyncError.String())
	require.NoError(t, check.Validate(*opts))

	require.Error(t, yaml.Unmarshal([]byte("colour: true"), DefaultOptions(), yaml.DisallowUnknownFields))
}

func TestPrintable(t *testing.T) {
	bs, err := DefaultOptions().Printable()
	require.NoError(t, err)
	require.Contains(t, string(bs), `"poll_interval":"1s"`)
}
