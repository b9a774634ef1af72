// Package sim ties the clock, the registries and the player together into one
// simulation owned by the caller.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/go-timeloop/internal/clock"
	"github.com/pixil98/go-timeloop/internal/event"
	"github.com/pixil98/go-timeloop/internal/knowledge"
	"github.com/pixil98/go-timeloop/internal/npc"
	"github.com/pixil98/go-timeloop/internal/player"
	"github.com/pixil98/go-timeloop/internal/quest"
	"github.com/pixil98/go-timeloop/internal/storage"
	"github.com/pixil98/go-timeloop/internal/world"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const DefaultStartLocation storage.Identifier = "inn"

var ErrAlreadyStarted = errors.New("simulation already started")

type Simulation struct {
	dict      *Dictionary
	start     storage.Identifier
	traits    []string
	clockOpts []clock.ClockOpt
	tracer    trace.Tracer

	bus    *event.Bus
	know   *knowledge.Store
	rels   *knowledge.Relationships
	inv    *player.Inventory
	growth *player.Growth
	world  *world.Registry
	npcs   *npc.Registry
	quests *quest.Log
	clock  *clock.Clock
}

// New builds a simulation from resolved content. It does not accept ticks until
// Start or Load has been called.
func New(dict *Dictionary, opts ...SimOpt) (*Simulation, error) {
	if dict == nil {
		return nil, fmt.Errorf("%w: no content", ErrLoadFailure)
	}
	if err := dict.Resolve(); err != nil {
		return nil, err
	}

	s := &Simulation{
		dict:   dict,
		start:  DefaultStartLocation,
		tracer: noop.NewTracerProvider().Tracer("sim"),
		bus:    event.NewBus(),
		know:   knowledge.NewStore(),
		rels:   knowledge.NewRelationships(),
		inv:    player.NewInventory(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if dict.Locations.Get(s.start) == nil {
		return nil, fmt.Errorf("%w: unknown start location %q", ErrLoadFailure, s.start)
	}

	s.growth = player.NewGrowth(s.know, dict.Milestones, s.traits, s.bus)
	s.world = world.NewRegistry(dict.Locations, s.know, s.bus)
	s.npcs = npc.NewRegistry(dict.Characters, s.know, s.rels, s.world, s.bus)
	s.quests = quest.NewLog(dict.Quests, s.know, s.bus)

	clockOpts := append([]clock.ClockOpt{}, s.clockOpts...)
	clockOpts = append(clockOpts, clock.WithListener(s), clock.WithPublisher(s.bus))
	c, err := clock.NewClock(clockOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating clock: %w", err)
	}
	s.clock = c

	return s, nil
}

// Start begins a fresh game on the clock's first day.
func (s *Simulation) Start(ctx context.Context) error {
	if s.clock.IsReady() {
		return ErrAlreadyStarted
	}

	ctx, span := s.tracer.Start(ctx, "sim.start")
	defer span.End()

	st := s.clock.State()
	if err := s.beginDay(ctx, st, s.start); err != nil {
		return err
	}
	s.OnHourChanged(ctx, st)
	s.clock.Ready()

	slog.InfoContext(ctx, "simulation started", "day", st.Day, "location", s.start)
	return nil
}

func (s *Simulation) Ready() bool {
	return s.clock.IsReady()
}

// Tick feeds real elapsed time into the clock.
func (s *Simulation) Tick(ctx context.Context, delta time.Duration) error {
	ctx, span := s.tracer.Start(ctx, "sim.tick", trace.WithAttributes(attribute.Int64("delta_ms", delta.Milliseconds())))
	defer span.End()

	if err := s.clock.Advance(ctx, delta); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// AdvanceToNextPeriod skips ahead to the start of the next period of the day.
func (s *Simulation) AdvanceToNextPeriod(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "sim.advance_period")
	defer span.End()

	if err := s.clock.AdvanceToNextPeriod(ctx); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// OnDayBoundary rebuilds the day. It is called by the clock and should not be
// called directly.
func (s *Simulation) OnDayBoundary(ctx context.Context, st clock.State) {
	ctx, span := s.tracer.Start(ctx, "sim.day_reset", trace.WithAttributes(attribute.Int("day", st.Day)))
	defer span.End()

	if err := s.beginDay(ctx, st, s.start); err != nil {
		span.RecordError(err)
		slog.ErrorContext(ctx, "resetting day", "day", st.Day, "error", err)
	}
}

// OnHourChanged moves the world along. It is called by the clock and should
// not be called directly.
func (s *Simulation) OnHourChanged(ctx context.Context, st clock.State) {
	s.world.OnHourChanged(ctx, st.Hour)
	s.npcs.OnHourChanged(ctx, st.Hour)
}

// beginDay resets every per-day registry as of st and places the player. The
// world goes first so characters arrive in fresh locations.
func (s *Simulation) beginDay(ctx context.Context, st clock.State, loc storage.Identifier) error {
	s.world.ResetDay(ctx, st.Day, st.Hour)
	s.npcs.ResetDay(ctx, st.Hour)
	if err := s.quests.ResetDay(ctx); err != nil {
		return fmt.Errorf("resetting quests: %w", err)
	}
	if err := s.world.Place(ctx, loc); err != nil {
		return fmt.Errorf("placing player: %w", err)
	}
	slog.InfoContext(ctx, "day begun", "day", st.Day, "hour", st.Hour, "facts", s.know.Len())
	return nil
}

// Subscribe registers fn for events of one kind.
func (s *Simulation) Subscribe(kind event.Kind, fn event.Handler) (unsubscribe func()) {
	return s.bus.Subscribe(kind, fn)
}

// SubscribeAll registers fn for every event.
func (s *Simulation) SubscribeAll(fn event.Handler) (unsubscribe func()) {
	return s.bus.SubscribeAll(fn)
}

func (s *Simulation) Bus() *event.Bus {
	return s.bus
}

// notify reports a failed action to the player.
func (s *Simulation) notify(err error) {
	msg := err.Error()
	var me *world.MoveError
	if errors.As(err, &me) {
		msg = me.Detail
	}
	s.bus.Publish(event.Notice{Message: msg})
}
