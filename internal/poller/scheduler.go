// Package poller keeps the panel in step with the simulator by repeatedly fetching the roster and
// rendering it. A new retrieval is only scheduled once the previous one has completed, so the
// backend never sees overlapping polls from the timer.
package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/determined-ai/memberpanel/internal/prom"
	"github.com/determined-ai/memberpanel/pkg/model"
)

// DefaultInterval is the delay between the end of one poll and the start of the next.
const DefaultInterval = time.Second

// eventBufferSize is how many loop events may queue before posting goroutines block.
const eventBufferSize = 64

// ErrStopped is delivered to callers whose refresh could not complete because the loop exited.
var ErrStopped = errors.New("poller stopped")

// Fetcher retrieves the full roster.
type Fetcher interface {
	FetchSnapshot(ctx context.Context) (model.Snapshot, error)
}

// Renderer draws a snapshot and the poll clock.
type Renderer interface {
	Render(snap model.Snapshot, fullRefresh bool)
	SetClock(t time.Time)
}

// State is the scheduler's coarse state.
type State int32

// Scheduler states.
const (
	// Idle means no retrieval is in flight and no timer is pending.
	Idle State = iota
	// Polling means a retrieval is in flight or a timer is counting down to the next one.
	Polling
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Polling:
		return "polling"
	default:
		return "unknown"
	}
}

type cycle struct {
	id     uuid.UUID
	full   bool
	result chan<- error
}

func (c cycle) kind() string {
	if c.full {
		return prom.CycleFull
	}
	return prom.CycleBackground
}

// event is a unit of work for the loop. If the loop stops before handling it, a waiting caller is
// sent ErrStopped on result.
type event struct {
	handle func()
	result chan<- error
}

func (e event) abort() {
	if e.result != nil {
		e.result <- ErrStopped
		close(e.result)
	}
}

type pendingTimer struct {
	seq   uint64
	timer clockwork.Timer
	stop  chan struct{}
}

// Scheduler runs poll cycles on a single event loop. Every field below "Loop state" is only
// touched from the loop goroutine.
type Scheduler struct {
	// System dependencies.
	log      *log.Entry
	clock    clockwork.Clock
	fetcher  Fetcher
	renderer Renderer

	// Configuration details.
	interval time.Duration

	// Internal state.
	events  chan event
	done    chan struct{}
	mu      sync.Mutex
	stopped bool
	ctx     context.Context
	state   atomic.Int32

	// Loop state.
	timer    *pendingTimer
	timerSeq uint64
	inFlight int
}

// New returns an idle scheduler. Nothing happens until Run is called.
func New(fetcher Fetcher, renderer Renderer, clock clockwork.Clock, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		log:      log.WithField("component", "poller"),
		clock:    clock,
		fetcher:  fetcher,
		renderer: renderer,
		interval: interval,
		events:   make(chan event, eventBufferSize),
		done:     make(chan struct{}),
	}
}

// Run processes scheduler events until the context is canceled. It must be called exactly once.
func (s *Scheduler) Run(ctx context.Context) error {
	s.ctx = ctx
	defer s.stop()

	for {
		select {
		case ev := <-s.events:
			ev.handle()
		case <-ctx.Done():
			return nil
		}
	}
}

// stop refuses further events and fails every event still queued.
func (s *Scheduler) stop() {
	close(s.done)
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	for {
		select {
		case ev := <-s.events:
			ev.abort()
		default:
			s.cancelTimer()
			s.state.Store(int32(Idle))
			return
		}
	}
}

// Start requests a refresh cycle. Any pending timer is canceled and a retrieval is issued
// immediately. A full refresh also rebuilds the selection control; if its retrieval fails the
// error is delivered on the returned channel and polling stops until the next Start. Background
// cycles keep polling through failures and their errors are only logged.
func (s *Scheduler) Start(fullRefresh bool) <-chan error {
	result := make(chan error, 1)
	ev := event{handle: func() { s.start(fullRefresh, result) }, result: result}
	if !s.post(ev) {
		ev.abort()
	}
	return result
}

// State reports whether the scheduler is idle or polling.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// post queues an event for the loop. It reports false once the loop has stopped; an event it
// accepted is either handled or aborted.
func (s *Scheduler) post(ev event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	select {
	case s.events <- ev:
		return true
	case <-s.done:
		return false
	}
}

func (s *Scheduler) start(full bool, result chan<- error) {
	s.cancelTimer()
	s.renderer.SetClock(s.clock.Now())

	c := cycle{id: uuid.New(), full: full, result: result}
	s.inFlight++
	s.updateState()
	s.log.WithField("cycle-id", c.id).Tracef("starting %s poll", c.kind())

	ctx := s.ctx
	go func() {
		timer := prometheus.NewTimer(prom.FetchSeconds.WithLabelValues(c.kind()))
		snap, err := s.fetcher.FetchSnapshot(ctx)
		timer.ObserveDuration()

		ev := event{handle: func() { s.complete(c, snap, err) }, result: c.result}
		if !s.post(ev) {
			ev.abort()
		}
	}()
}

func (s *Scheduler) complete(c cycle, snap model.Snapshot, err error) {
	s.inFlight--
	prom.PollCycles.WithLabelValues(c.kind(), prom.Outcome(err)).Inc()

	switch {
	case err == nil:
		s.renderer.Render(snap, c.full)
		s.arm()
	case !c.full:
		s.log.WithError(err).WithField("cycle-id", c.id).Debug("background poll failed, keeping current view")
		s.arm()
	default:
		s.log.WithError(err).WithField("cycle-id", c.id).Warn("refresh failed, polling paused")
	}
	s.updateState()

	if c.result != nil {
		c.result <- err
		close(c.result)
	}
}

// arm replaces any pending timer with one that starts a background cycle after the interval.
func (s *Scheduler) arm() {
	s.cancelTimer()
	s.timerSeq++
	p := &pendingTimer{seq: s.timerSeq, timer: s.clock.NewTimer(s.interval), stop: make(chan struct{})}
	s.timer = p

	go func() {
		select {
		case <-p.timer.Chan():
			s.post(event{handle: func() { s.fire(p.seq) }})
		case <-p.stop:
		}
	}()
}

// fire runs when a timer expires. A timer canceled after it expired but before its event was
// processed no longer matches the pending sequence and is ignored.
func (s *Scheduler) fire(seq uint64) {
	if s.timer == nil || s.timer.seq != seq {
		return
	}
	s.timer = nil
	s.start(false, nil)
}

func (s *Scheduler) cancelTimer() {
	if s.timer == nil {
		return
	}
	s.timer.timer.Stop()
	close(s.timer.stop)
	s.timer = nil
}

func (s *Scheduler) updateState() {
	if s.inFlight > 0 || s.timer != nil {
		s.state.Store(int32(Polling))
		return
	}
	s.state.Store(int32(Idle))
}
