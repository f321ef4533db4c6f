package options

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/determined-ai/memberpanel/internal/backend"
	"github.com/determined-ai/memberpanel/internal/poller"
	"github.com/determined-ai/memberpanel/pkg/check"
	"github.com/determined-ai/memberpanel/pkg/model"
	"github.com/determined-ai/memberpanel/pkg/simconfig"
)

// Options stores all the configurable options for the panel.
type Options struct {
	ConfigFile string `json:"config_file"`

	Simulator SimulatorOptions `json:"simulator"`

	PollInterval model.Duration `json:"poll_interval"`

	BindIP   string `json:"bind_ip"`
	BindPort int    `json:"bind_port"`

	// Simulation prefills the start form.
	Simulation simconfig.Config `json:"simulation"`
}

// SimulatorOptions locates the process-group simulator.
type SimulatorOptions struct {
	URL            string         `json:"url"`
	InitPath       string         `json:"init_path"`
	CrashPath      string         `json:"crash_path"`
	RosterPath     string         `json:"roster_path"`
	RequestTimeout model.Duration `json:"request_timeout"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() *Options {
	return &Options{
		Simulator: SimulatorOptions{
			URL:            "http://localhost:5000",
			InitPath:       backend.DefaultInitPath,
			CrashPath:      backend.DefaultCrashPath,
			RosterPath:     backend.DefaultRosterPath,
			RequestTimeout: model.Duration(10 * time.Second),
		},
		PollInterval: model.Duration(poller.DefaultInterval),
		BindIP:       "127.0.0.1",
		BindPort:     8090,
		Simulation:   simconfig.Defaults(),
	}
}

// Validate implements the check.Validatable interface.
func (o Options) Validate() []error {
	return []error{
		check.True(o.PollInterval > 0, "poll_interval must be positive"),
		check.True(o.BindPort >= 0 && o.BindPort <= 65535, "bind_port %d is out of range", o.BindPort),
	}
}

// Validate implements the check.Validatable interface.
func (s SimulatorOptions) Validate() []error {
	errs := []error{
		check.NotEmpty(s.URL, "simulator url must be provided"),
		check.True(s.RequestTimeout >= 0, "simulator request_timeout must not be negative"),
	}
	if s.URL != "" {
		if u, err := url.Parse(s.URL); err != nil {
			errs = append(errs, errors.Wrap(err, "invalid simulator url"))
		} else {
			errs = append(errs, check.In(u.Scheme, []string{"http", "https"}, "simulator url scheme"))
		}
	}
	return errs
}

// Resolve fills in defaults that depend on other settings.
func (o *Options) Resolve() {
	if o.Simulator.InitPath == "" {
		o.Simulator.InitPath = backend.DefaultInitPath
	}
	if o.Simulator.CrashPath == "" {
		o.Simulator.CrashPath = backend.DefaultCrashPath
	}
	if o.Simulator.RosterPath == "" {
		o.Simulator.RosterPath = backend.DefaultRosterPath
	}
	if o.BindIP == "" {
		o.BindIP = "0.0.0.0"
	}
}

// Paths returns the simulator routes.
func (s SimulatorOptions) Paths() backend.Paths {
	return backend.Paths{Init: s.InitPath, Crash: s.CrashPath, Roster: s.RosterPath}
}

// BindAddr is the address the panel listens on.
func (o Options) BindAddr() string {
	return fmt.Sprintf("%s:%d", o.BindIP, o.BindPort)
}

// Printable returns a printable string.
func (o Options) Printable() ([]byte, error) {
	optJSON, err := json.Marshal(o)
	if err != nil {
		return nil, errors.Wrap(err, "unable to convert config to JSON")
	}
	return optJSON, nil
}
