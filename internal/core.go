package internal

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"runtime"
	"slices"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/determined-ai/memberpanel/internal/backend"
	"github.com/determined-ai/memberpanel/internal/dispatch"
	"github.com/determined-ai/memberpanel/internal/options"
	"github.com/determined-ai/memberpanel/internal/panel"
	"github.com/determined-ai/memberpanel/internal/poller"
	"github.com/determined-ai/memberpanel/internal/view"
)

const shutdownTimeout = 5 * time.Second

// system is the set of collaborators every mode of the panel shares.
type system struct {
	client     *backend.Client
	page       *view.Page
	scheduler  *poller.Scheduler
	dispatcher *dispatch.Dispatcher
}

func newSystem(opts options.Options, clock clockwork.Clock) (*system, error) {
	client, err := backend.New(
		opts.Simulator.URL, opts.Simulator.Paths(), time.Duration(opts.Simulator.RequestTimeout),
	)
	if err != nil {
		return nil, err
	}
	page := view.NewPage()
	scheduler := poller.New(client, page, clock, time.Duration(opts.PollInterval))
	return &system{
		client:     client,
		page:       page,
		scheduler:  scheduler,
		dispatcher: dispatch.New(client, scheduler),
	}, nil
}

// initialRefresh performs the first full refresh. A simulator that is not up yet is not fatal; the
// operator can start a simulation from the panel.
func (s *system) initialRefresh(ctx context.Context) {
	select {
	case err := <-s.scheduler.Start(true):
		if err != nil && !errors.Is(err, poller.ErrStopped) {
			log.WithError(err).Warn("initial roster fetch failed, waiting for an operator command")
		}
	case <-ctx.Done():
	}
}

// Run serves the control panel until the context is canceled or SIGINT/SIGTERM is received.
func Run(parent context.Context, version string, opts options.Options) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infof("memberpanel %s (built with %s)", version, runtime.Version())
	printableConfig, err := opts.Printable()
	if err != nil {
		return err
	}
	log.Infof("panel configuration: %s", printableConfig)

	sys, err := newSystem(opts, clockwork.NewRealClock())
	if err != nil {
		return err
	}
	srv := panel.New(opts.BindAddr(), opts.Simulation, sys.dispatcher, sys.page)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sys.scheduler.Run(gctx)
	})
	g.Go(func() error {
		if err := srv.Serve(); err != nil {
			return errors.Wrap(err, "panel server crashed")
		}
		return nil
	})
	g.Go(func() error {
		sys.initialRefresh(gctx)
		return nil
	})

	<-gctx.Done()
	var result *multierror.Error
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		result = multierror.Append(result, errors.Wrap(err, "shutting down panel server"))
	}
	if err := g.Wait(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// Watch polls the simulator and writes the roster to out every time it changes.
func Watch(parent context.Context, opts options.Options, out io.Writer) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return watch(ctx, opts, clockwork.NewRealClock(), out)
}

func watch(ctx context.Context, opts options.Options, clock clockwork.Clock, out io.Writer) error {
	sys, err := newSystem(opts, clock)
	if err != nil {
		return err
	}
	updates, unsubscribe := sys.page.Subscribe()
	defer unsubscribe()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sys.scheduler.Run(gctx)
	})
	g.Go(func() error {
		select {
		case err := <-sys.scheduler.Start(true):
			if errors.Is(err, poller.ErrStopped) || gctx.Err() != nil {
				return nil
			}
			if err != nil {
				return errors.Wrap(err, "fetching initial roster")
			}
		case <-gctx.Done():
			return nil
		}
		last := sys.page.State().Entries
		if _, err := fmt.Fprintln(out, sys.page.State().Text()); err != nil {
			return err
		}
		for {
			select {
			case st := <-updates:
				if slices.Equal(last, st.Entries) {
					continue
				}
				last = st.Entries
				if _, err := fmt.Fprintln(out, st.Text()); err != nil {
					return err
				}
			case <-gctx.Done():
				return nil
			}
		}
	})
	return g.Wait()
}

// Command is a one-shot operation run against the simulator.
type Command func(ctx context.Context, d *dispatch.Dispatcher) error

// Once runs a single command, waits for the roster refresh it triggers, and writes the refreshed
// roster to out.
func Once(ctx context.Context, opts options.Options, command Command, out io.Writer) error {
	return once(ctx, opts, clockwork.NewRealClock(), command, out)
}

func once(
	ctx context.Context, opts options.Options, clock clockwork.Clock, command Command, out io.Writer,
) error {
	sys, err := newSystem(opts, clock)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = sys.scheduler.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	if err := command(ctx, sys.dispatcher); err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, sys.page.State().Text())
	return err
}
