// Package dispatch submits operator commands to the simulator and refreshes the panel once the
// simulator accepts them.
package dispatch

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/determined-ai/memberpanel/internal/prom"
	"github.com/determined-ai/memberpanel/internal/view"
	"github.com/determined-ai/memberpanel/pkg/check"
	"github.com/determined-ai/memberpanel/pkg/model"
	"github.com/determined-ai/memberpanel/pkg/simconfig"
)

// Command names, used for logging and metrics.
const (
	CommandInit  = "init"
	CommandCrash = "crash"
)

// Simulator accepts operator commands.
type Simulator interface {
	Init(ctx context.Context, cfg simconfig.Config) error
	Crash(ctx context.Context, id model.ProcessorID) error
}

// Refresher starts a refresh cycle and reports its outcome on the returned channel.
type Refresher interface {
	Start(fullRefresh bool) <-chan error
}

// Dispatcher runs operator commands.
type Dispatcher struct {
	log       *log.Entry
	simulator Simulator
	refresher Refresher
}

// New returns a dispatcher.
func New(simulator Simulator, refresher Refresher) *Dispatcher {
	return &Dispatcher{
		log:       log.WithField("component", "dispatcher"),
		simulator: simulator,
		refresher: refresher,
	}
}

// SubmitInit validates the configuration and, if it is sound, starts a simulation with it and
// performs a full refresh. An invalid configuration is returned as a check.ValidationError and
// nothing is sent to the simulator.
func (d *Dispatcher) SubmitInit(ctx context.Context, cfg simconfig.Config) (err error) {
	logCtx := d.commandLog(CommandInit)
	defer prom.ErrCount(prom.CommandErrors.WithLabelValues(CommandInit), &err)
	prom.Commands.WithLabelValues(CommandInit).Inc()

	if err := check.Validate(cfg); err != nil {
		logCtx.WithError(err).Info("rejected simulation config")
		return err
	}
	if err := d.simulator.Init(ctx, cfg); err != nil {
		logCtx.WithError(err).Error("simulator rejected init")
		return err
	}
	logCtx.Infof("simulation started with %d processors", cfg.NumProcessors)
	return d.refresh(ctx, logCtx)
}

// SubmitCrash crashes the given processor and performs a full refresh.
func (d *Dispatcher) SubmitCrash(ctx context.Context, id model.ProcessorID) (err error) {
	logCtx := d.commandLog(CommandCrash).WithField("processor-id", id)
	defer prom.ErrCount(prom.CommandErrors.WithLabelValues(CommandCrash), &err)
	prom.Commands.WithLabelValues(CommandCrash).Inc()

	if id == "" {
		return errors.New("no processor selected")
	}
	if err := d.simulator.Crash(ctx, id); err != nil {
		logCtx.WithError(err).Error("crash failed")
		return err
	}
	logCtx.Info("processor crashed")
	return d.refresh(ctx, logCtx)
}

// ProcessorIDFromLabel recovers a processor id from a selection label of the form
// "Processor <id>".
func ProcessorIDFromLabel(label string) (model.ProcessorID, error) {
	if !strings.HasPrefix(label, view.LabelPrefix) || len(label) == len(view.LabelPrefix) {
		return "", errors.Errorf("label %q is not of the form %q", label, view.LabelPrefix+"<id>")
	}
	return model.ProcessorID(label[len(view.LabelPrefix):]), nil
}

func (d *Dispatcher) refresh(ctx context.Context, logCtx *log.Entry) error {
	select {
	case err := <-d.refresher.Start(true):
		if err != nil {
			logCtx.WithError(err).Warn("refresh after command failed")
			return errors.Wrap(err, "refreshing roster")
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) commandLog(command string) *log.Entry {
	return d.log.WithFields(log.Fields{"command": command, "command-id": uuid.New()})
}
