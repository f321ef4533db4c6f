// Package simconfig holds the parameters an operator submits to start a membership simulation
// and the timing rule that keeps failure detection meaningful.
package simconfig

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/determined-ai/memberpanel/pkg/check"
)

// ErrCheckInPeriodTooSmall is reported when the check-in period cannot cover the combined clock
// synchronization error and broadcast delay.
var ErrCheckInPeriodTooSmall = errors.New("check in period is too small")

// Config is the simulation configuration sent to the backend's init endpoint. Timing values are
// kept as decimals so that the values an operator types compare exactly.
type Config struct {
	NumProcessors     int             `json:"num_processors"`
	MaxClockSyncError decimal.Decimal `json:"max_clock_sync_error"`
	BroadcastDelay    decimal.Decimal `json:"broadcast_delay"`
	DatagramDelay     decimal.Decimal `json:"datagram_delay"`
	CheckInPeriod     decimal.Decimal `json:"check_in_period"`
}

// Defaults returns the parameters the simulator itself starts with.
func Defaults() Config {
	return Config{
		NumProcessors:     3,
		MaxClockSyncError: decimal.NewFromInt(1),
		BroadcastDelay:    decimal.NewFromInt(1),
		DatagramDelay:     decimal.NewFromInt(1),
		CheckInPeriod:     decimal.NewFromInt(5),
	}
}

// IsCheckInPeriodValid reports whether checkInPeriod >= maxClockSyncError + broadcastDelay.
//
// datagramDelay is accepted but does not take part in the comparison, matching the simulator.
func IsCheckInPeriodValid(
	maxClockSyncError, broadcastDelay, datagramDelay, checkInPeriod decimal.Decimal,
) bool {
	return checkInPeriod.GreaterThanOrEqual(maxClockSyncError.Add(broadcastDelay))
}

// Validate implements the check.Validatable interface.
func (c Config) Validate() []error {
	errs := []error{
		check.GreaterThanOrEqualTo(int64(c.NumProcessors), 1, "num_processors must be at least 1"),
		nonNegative(c.MaxClockSyncError, "max_clock_sync_error"),
		nonNegative(c.BroadcastDelay, "broadcast_delay"),
		nonNegative(c.DatagramDelay, "datagram_delay"),
		nonNegative(c.CheckInPeriod, "check_in_period"),
	}
	if !IsCheckInPeriodValid(c.MaxClockSyncError, c.BroadcastDelay, c.DatagramDelay, c.CheckInPeriod) {
		errs = append(errs, errors.Wrapf(ErrCheckInPeriodTooSmall,
			"check_in_period %s < max_clock_sync_error %s + broadcast_delay %s",
			c.CheckInPeriod, c.MaxClockSyncError, c.BroadcastDelay))
	}
	return errs
}

func nonNegative(d decimal.Decimal, name string) error {
	return check.True(!d.IsNegative(), "%s must not be negative, got %s", name, d)
}

// UnmarshalJSON implements the json.Unmarshaler interface. Every field, num_processors included,
// may be sent as a JSON number or as a string holding one.
func (c *Config) UnmarshalJSON(b []byte) error {
	type plain Config
	var raw struct {
		plain
		NumProcessors decimal.Decimal `json:"num_processors"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	n, err := wholeNumber(raw.NumProcessors)
	if err != nil {
		return err
	}
	*c = Config(raw.plain)
	c.NumProcessors = n
	return nil
}

func wholeNumber(n decimal.Decimal) (int, error) {
	if !n.Equal(n.Truncate(0)) {
		return 0, errors.Errorf("num_processors must be a whole number, got %s", n)
	}
	return int(n.IntPart()), nil
}

// Parse builds a Config from the textual values of a submitted form.
func Parse(numProcessors, maxClockSyncError, broadcastDelay, datagramDelay, checkInPeriod string) (
	Config, error,
) {
	var c Config
	n, err := decimal.NewFromString(numProcessors)
	if err != nil {
		return c, errors.Wrap(err, "parsing num_processors")
	}
	if c.NumProcessors, err = wholeNumber(n); err != nil {
		return c, err
	}

	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"max_clock_sync_error", maxClockSyncError, &c.MaxClockSyncError},
		{"broadcast_delay", broadcastDelay, &c.BroadcastDelay},
		{"datagram_delay", datagramDelay, &c.DatagramDelay},
		{"check_in_period", checkInPeriod, &c.CheckInPeriod},
	}
	for _, f := range fields {
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return c, errors.Wrapf(err, "parsing %s", f.name)
		}
		*f.dst = d
	}
	return c, nil
}
