package sim

import (
	"github.com/pixil98/go-timeloop/internal/clock"
	"github.com/pixil98/go-timeloop/internal/storage"
	"go.opentelemetry.io/otel/trace"
)

type SimOpt func(*Simulation)

// WithStartLocation sets where the player wakes up every day.
func WithStartLocation(id storage.Identifier) SimOpt {
	return func(s *Simulation) {
		s.start = id
	}
}

// WithTraits sets the player's traits before any growth.
func WithTraits(traits ...string) SimOpt {
	return func(s *Simulation) {
		s.traits = traits
	}
}

func WithClockOpts(opts ...clock.ClockOpt) SimOpt {
	return func(s *Simulation) {
		s.clockOpts = append(s.clockOpts, opts...)
	}
}

func WithTracer(t trace.Tracer) SimOpt {
	return func(s *Simulation) {
		s.tracer = t
	}
}
