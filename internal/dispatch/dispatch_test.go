package dispatch

import (
	"context"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/determined-ai/memberpanel/internal/backend"
	"github.com/determined-ai/memberpanel/pkg/check"
	"github.com/determined-ai/memberpanel/pkg/model"
	"github.com/determined-ai/memberpanel/pkg/simconfig"
)

type fakeSimulator struct {
	inits   []simconfig.Config
	crashes []model.ProcessorID
	err     error
}

func (f *fakeSimulator) Init(_ context.Context, cfg simconfig.Config) error {
	f.inits = append(f.inits, cfg)
	return f.err
}

func (f *fakeSimulator) Crash(_ context.Context, id model.ProcessorID) error {
	f.crashes = append(f.crashes, id)
	return f.err
}

type fakeRefresher struct {
	starts []bool
	err    error
	hang   bool
}

func (f *fakeRefresher) Start(fullRefresh bool) <-chan error {
	f.starts = append(f.starts, fullRefresh)
	ch := make(chan error, 1)
	if !f.hang {
		ch <- f.err
	}
	return ch
}

func TestSubmitInit(t *testing.T) {
	sim, ref := &fakeSimulator{}, &fakeRefresher{}
	d := New(sim, ref)

	require.NoError(t, d.SubmitInit(context.Background(), simconfig.Defaults()))
	require.Len(t, sim.inits, 1)
	require.Equal(t, []bool{true}, ref.starts)
}

func TestSubmitInitRejectsShortCheckInPeriod(t *testing.T) {
	sim, ref := &fakeSimulator{}, &fakeRefresher{}
	d := New(sim, ref)

	cfg := simconfig.Defaults()
	cfg.MaxClockSyncError = decimal.NewFromInt(2)
	cfg.BroadcastDelay = decimal.NewFromInt(3)
	cfg.DatagramDelay = decimal.NewFromInt(100)
	cfg.CheckInPeriod = decimal.NewFromInt(4)

	err := d.SubmitInit(context.Background(), cfg)
	var verr check.ValidationError
	require.True(t, errors.As(err, &verr))
	require.ErrorIs(t, verr.Errs[0], simconfig.ErrCheckInPeriodTooSmall)
	require.Empty(t, sim.inits, "nothing may be sent for an invalid config")
	require.Empty(t, ref.starts)
}

func TestSubmitInitSimulatorFailure(t *testing.T) {
	sim := &fakeSimulator{err: backend.StatusError{
		Op:   "initializing simulation",
		Code: http.StatusInternalServerError,
	}}
	ref := &fakeRefresher{}
	d := New(sim, ref)

	err := d.SubmitInit(context.Background(), simconfig.Defaults())
	var serr backend.StatusError
	require.True(t, errors.As(err, &serr))
	require.Empty(t, ref.starts, "a failed command must not disturb polling")
}

func TestSubmitCrash(t *testing.T) {
	sim, ref := &fakeSimulator{}, &fakeRefresher{}
	d := New(sim, ref)

	require.NoError(t, d.SubmitCrash(context.Background(), "12"))
	require.Equal(t, []model.ProcessorID{"12"}, sim.crashes)
	require.Equal(t, []bool{true}, ref.starts)

	require.Error(t, d.SubmitCrash(context.Background(), ""))
	require.Len(t, sim.crashes, 1)
}

func TestSubmitCrashFailures(t *testing.T) {
	d := New(&fakeSimulator{err: errors.New("boom")}, &fakeRefresher{})
	require.EqualError(t, d.SubmitCrash(context.Background(), "1"), "boom")

	ref := &fakeRefresher{err: errors.New("fetching roster: connection refused")}
	d = New(&fakeSimulator{}, ref)
	require.ErrorContains(t, d.SubmitCrash(context.Background(), "1"), "refreshing roster: fetching roster")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d = New(&fakeSimulator{}, &fakeRefresher{hang: true})
	require.ErrorIs(t, d.SubmitCrash(ctx, "1"), context.Canceled)
}

func TestProcessorIDFromLabel(t *testing.T) {
	id, err := ProcessorIDFromLabel("Processor 12")
	require.NoError(t, err)
	require.Equal(t, model.ProcessorID("12"), id)

	id, err = ProcessorIDFromLabel("Processor 5")
	require.NoError(t, err)
	require.Equal(t, model.ProcessorID("5"), id)

	for _, bad := range []string{"", "Processor ", "Proc 5", "5"} {
		_, err := ProcessorIDFromLabel(bad)
		require.Error(t, err, bad)
	}
}
