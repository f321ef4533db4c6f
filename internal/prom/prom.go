// Package prom holds the panel's Prometheus metrics.
package prom

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric the panel exports.
const Namespace = "memberpanel"

// Label values for the kind of poll cycle.
const (
	CycleFull       = "full"
	CycleBackground = "background"
)

var (
	// PollCycles counts completed poll cycles by kind and outcome.
	PollCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "poller",
		Name:      "cycles_total",
		Help:      "Completed roster poll cycles.",
	}, []string{"kind", "outcome"})

	// FetchSeconds observes how long roster retrievals take.
	FetchSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Subsystem: "poller",
		Name:      "fetch_seconds",
		Help:      "Latency of roster retrievals.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"})

	// Commands counts operator commands by type.
	Commands = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "dispatch",
		Name:      "commands_total",
		Help:      "Operator commands submitted to the simulator.",
	}, []string{"command"})

	// CommandErrors counts failed operator commands by type.
	CommandErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Subsystem: "dispatch",
		Name:      "command_errors_total",
		Help:      "Operator commands that failed validation, submission or the follow-up refresh.",
	}, []string{"command"})
)

// Outcome returns the outcome label for an error.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ErrCount increments the counter if the error pointed to is non-nil. It is meant to be deferred.
func ErrCount(counter prometheus.Counter, err *error) {
	if err != nil && *err != nil {
		counter.Inc()
	}
}
