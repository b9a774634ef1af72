package sim

import (
	"context"
	"log/slog"
	"time"

	"github.com/pixil98/go-timeloop/internal/save"
)

// Autosave writes the simulation to a slot whenever a tick carried it into a
// new day. It is ticked by the driver right after the simulation itself so no
// store I/O happens inside a clock tick.
type Autosave struct {
	sim   *Simulation
	store save.Store
	slot  string

	lastDay int
}

func NewAutosave(s *Simulation, store save.Store, slot string) *Autosave {
	return &Autosave{
		sim:     s,
		store:   store,
		slot:    slot,
		lastDay: s.Clock().Day,
	}
}

// Tick saves when the day has changed since the last save. Store failures are
// logged and retried on the next tick.
func (a *Autosave) Tick(ctx context.Context, _ time.Duration) error {
	if !a.sim.Ready() {
		return nil
	}
	day := a.sim.Clock().Day
	if day == a.lastDay {
		return nil
	}

	if err := a.sim.Save(ctx, a.store, a.slot); err != nil {
		slog.WarnContext(ctx, "autosave failed", "slot", a.slot, "day", day, "error", err)
		return nil
	}
	slog.InfoContext(ctx, "autosaved", "slot", a.slot, "day", day)
	a.lastDay = day
	return nil
}
