package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pixil98/go-service"
	"github.com/pixil98/go-timeloop/internal/driver"
	"github.com/pixil98/go-timeloop/internal/messaging"
	"github.com/pixil98/go-timeloop/internal/observability"
	"github.com/pixil98/go-timeloop/internal/sim"
)

// Version is reported on traces.
var Version = "dev"

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}
	ctx := context.Background()

	tracing, err := cfg.Tracing.buildProvider(ctx, Version)
	if err != nil {
		return nil, fmt.Errorf("creating tracer: %w", err)
	}

	s, err := buildSimulation(cfg, tracing)
	if err != nil {
		return nil, err
	}

	// Built before the simulation starts so the opening events are forwarded.
	natsServer, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	forwarder := messaging.NewForwarder(s, natsServer)

	managers, closer, err := startSimulation(ctx, cfg, s)
	if err != nil {
		return nil, err
	}

	workers := service.WorkerList{
		"driver":    driver.NewDriver(managers, driver.WithTickLength(cfg.tickInterval())),
		"nats":      natsServer,
		"forwarder": forwarder,
		"tracing":   tracing,
	}
	if closer != nil {
		workers["save"] = &closeOnDone{closer: closer}
	}

	return workers, nil
}

func buildSimulation(cfg *Config, tracing *observability.TracerProvider) (*sim.Simulation, error) {
	dict, err := cfg.Storage.BuildDictionary()
	if err != nil {
		return nil, fmt.Errorf("building dictionary: %w", err)
	}

	clockOpts, err := cfg.Clock.clockOpts()
	if err != nil {
		return nil, fmt.Errorf("configuring clock: %w", err)
	}

	opts := []sim.SimOpt{
		sim.WithClockOpts(clockOpts...),
		sim.WithTraits(cfg.Player.Traits...),
		sim.WithTracer(tracing.Tracer("timeloop")),
	}
	if cfg.Player.StartLocation != "" {
		opts = append(opts, sim.WithStartLocation(cfg.Player.StartLocation))
	}

	s, err := sim.New(dict, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}
	return s, nil
}

// startSimulation resumes from the configured save slot, or starts fresh, and
// returns the managers the driver should tick.
func startSimulation(ctx context.Context, cfg *Config, s *sim.Simulation) ([]driver.Manager, io.Closer, error) {
	managers := []driver.Manager{s}

	store, closer, err := cfg.Save.buildStore()
	if err != nil {
		return nil, nil, fmt.Errorf("opening save store: %w", err)
	}
	if store == nil {
		if err := s.Start(ctx); err != nil {
			return nil, nil, fmt.Errorf("starting simulation: %w", err)
		}
		return managers, nil, nil
	}

	slot := cfg.Save.slot()
	loaded, err := s.LoadOrFresh(ctx, store, slot)
	if err != nil {
		if closer != nil {
			if cerr := closer.Close(); cerr != nil {
				slog.WarnContext(ctx, "closing save store", "error", cerr)
			}
		}
		return nil, nil, fmt.Errorf("starting simulation: %w", err)
	}
	slog.InfoContext(ctx, "simulation ready", "slot", slot, "resumed", loaded, "time", s.FormatTime())

	if cfg.Save.Autosave {
		managers = append(managers, sim.NewAutosave(s, store, slot))
	}
	return managers, closer, nil
}

// closeOnDone releases a resource once the application stops.
type closeOnDone struct {
	closer io.Closer
}

func (c *closeOnDone) Start(ctx context.Context) error {
	<-ctx.Done()
	return c.closer.Close()
}
