package main

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/determined-ai/memberpanel/internal/options"
)

var v *viper.Viper

// viperKeyDelimiter marks nested values in the configuration, so `simulator..url` is the `url`
// key of the `simulator` section.
const viperKeyDelimiter = ".."

type configKey []string

func (c configKey) EnvName() string {
	return envPrefix + strings.ReplaceAll(strings.ToUpper(c.FlagName()), "-", "_")
}

func (c configKey) AccessPath() string {
	return strings.ReplaceAll(strings.Join(c, viperKeyDelimiter), "-", "_")
}

func (c configKey) FlagName() string {
	return strings.Join(c, "-")
}

func bindKey(flags *pflag.FlagSet, name configKey, value interface{}) {
	_ = v.BindEnv(name.AccessPath(), name.EnvName())
	_ = v.BindPFlag(name.AccessPath(), flags.Lookup(name.FlagName()))
	v.SetDefault(name.AccessPath(), value)
}

func registerString(flags *pflag.FlagSet, name configKey, value string, usage string) {
	flags.String(name.FlagName(), value, usage)
	bindKey(flags, name, value)
}

func registerInt(flags *pflag.FlagSet, name configKey, value int, usage string) {
	flags.Int(name.FlagName(), value, usage)
	bindKey(flags, name, value)
}

func registerDuration(flags *pflag.FlagSet, name configKey, value time.Duration, usage string) {
	flags.Duration(name.FlagName(), value, usage)
	bindKey(flags, name, value)
}

func registerConfig(flags *pflag.FlagSet) {
	v = viper.NewWithOptions(viper.KeyDelimiter(viperKeyDelimiter))
	v.SetTypeByDefaultValue(true)

	defaults := options.DefaultOptions()
	name := func(components ...string) configKey { return components }

	registerString(flags, name("config-file"),
		defaults.ConfigFile, "location of config file")

	registerString(flags, name("simulator", "url"),
		defaults.Simulator.URL, "base URL of the process-group simulator")
	registerString(flags, name("simulator", "init-path"),
		defaults.Simulator.InitPath, "simulator route that starts a simulation")
	registerString(flags, name("simulator", "crash-path"),
		defaults.Simulator.CrashPath, "simulator route that crashes a processor")
	registerString(flags, name("simulator", "roster-path"),
		defaults.Simulator.RosterPath, "simulator route that returns every processor")
	registerDuration(flags, name("simulator", "request-timeout"),
		time.Duration(defaults.Simulator.RequestTimeout), "timeout for each simulator request")

	registerDuration(flags, name("poll-interval"),
		time.Duration(defaults.PollInterval), "delay between the end of one poll and the next")
	registerString(flags, name("bind-ip"),
		defaults.BindIP, "address the panel listens on")
	registerInt(flags, name("bind-port"),
		defaults.BindPort, "port the panel listens on")

	registerInt(flags, name("simulation", "num-processors"),
		defaults.Simulation.NumProcessors, "number of processors to start")
	registerString(flags, name("simulation", "max-clock-sync-error"),
		defaults.Simulation.MaxClockSyncError.String(), "maximum clock synchronization error")
	registerString(flags, name("simulation", "broadcast-delay"),
		defaults.Simulation.BroadcastDelay.String(), "broadcast delay")
	registerString(flags, name("simulation", "datagram-delay"),
		defaults.Simulation.DatagramDelay.String(), "datagram delay")
	registerString(flags, name("simulation", "check-in-period"),
		defaults.Simulation.CheckInPeriod.String(), "check-in period")
}
