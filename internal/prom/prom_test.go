package prom_test

import (
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/determined-ai/memberpanel/internal/prom"
)

func TestErrCount(t *testing.T) {
	counter := prometheus.NewCounter(prometheus.CounterOpts{Namespace: prom.Namespace, Name: "test_errors"})

	run := func(input string) (err error) {
		defer prom.ErrCount(counter, &err)
		_, err = strconv.Atoi(input)
		return err
	}

	require.NoError(t, run("12"))
	require.Error(t, run("abc"))
	require.Equal(t, float64(1), testutil.ToFloat64(counter))
}

func TestOutcome(t *testing.T) {
	require.Equal(t, "ok", prom.Outcome(nil))
	require.Equal(t, "error", prom.Outcome(strconv.ErrSyntax))
}
