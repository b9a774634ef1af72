package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/go-timeloop/internal/clock"
	"github.com/pixil98/go-timeloop/internal/knowledge"
	"github.com/pixil98/go-timeloop/internal/quest"
	"github.com/pixil98/go-timeloop/internal/save"
)

// Snapshot captures everything that survives a save.
func (s *Simulation) Snapshot() *save.Snapshot {
	st := s.clock.State()
	return &save.Snapshot{
		Version: save.Version,
		SavedAt: time.Now().UTC(),
		State: save.State{
			Day:            st.Day,
			TimeOfDay:      st.Hour,
			Minutes:        st.Minute,
			KnowledgeBase:  s.know.Snapshot(),
			Relationships:  s.rels.Snapshot(),
			Inventory:      s.inv.Items(),
			PlayerLocation: s.world.Current(),
		},
	}
}

// Save writes a snapshot to a slot.
func (s *Simulation) Save(ctx context.Context, store save.Store, slot string) error {
	ctx, span := s.tracer.Start(ctx, "sim.save")
	defer span.End()

	if err := store.Save(ctx, slot, s.Snapshot()); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// Load restores a snapshot and rebuilds the day around it. The snapshot is
// checked in full before anything is applied, so a bad snapshot leaves the
// simulation as it was.
func (s *Simulation) Load(ctx context.Context, snap *save.Snapshot) error {
	ctx, span := s.tracer.Start(ctx, "sim.load")
	defer span.End()

	if err := s.checkSnapshot(snap); err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: %w", save.ErrCorruptSave, err)
	}

	st := snap.State
	cs := clock.State{Day: st.Day, Hour: st.TimeOfDay, Minute: st.Minutes}
	if err := s.clock.Restore(cs); err != nil {
		return err
	}

	if err := s.know.Restore(st.KnowledgeBase); err != nil {
		return err
	}
	s.rels.Restore(st.Relationships)
	if err := s.inv.Restore(st.Inventory); err != nil {
		return err
	}

	if err := s.beginDay(ctx, cs, st.PlayerLocation); err != nil {
		return err
	}
	s.clock.Ready()

	slog.InfoContext(ctx, "save loaded", "day", st.Day, "location", st.PlayerLocation)
	return nil
}

func (s *Simulation) checkSnapshot(snap *save.Snapshot) error {
	if snap == nil {
		return errors.New("no snapshot")
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	st := snap.State
	if st.TimeOfDay < s.clock.DayStart() || st.TimeOfDay >= s.clock.DayEnd() {
		return fmt.Errorf("time_of_day %d outside day bounds", st.TimeOfDay)
	}
	if s.dict.Locations.Get(st.PlayerLocation) == nil {
		return fmt.Errorf("unknown player location %q", st.PlayerLocation)
	}

	staged := knowledge.NewStore()
	if err := staged.Restore(st.KnowledgeBase); err != nil {
		return err
	}
	for _, id := range s.dict.Quests.Ids() {
		if !s.dict.Quests.Get(id).Persist {
			continue
		}
		var p quest.Progress
		if _, err := staged.Get(quest.Key(id), &p); err != nil {
			return fmt.Errorf("quest %s: %w", id, err)
		}
	}
	return nil
}

// LoadOrFresh resumes from a slot. A missing or corrupt save starts a fresh
// game instead. It reports whether a save was loaded.
func (s *Simulation) LoadOrFresh(ctx context.Context, store save.Store, slot string) (bool, error) {
	snap, err := store.Load(ctx, slot)
	if err == nil {
		err = s.Load(ctx, snap)
	}

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, save.ErrNotFound):
		slog.InfoContext(ctx, "no save found, starting fresh", "slot", slot)
	case errors.Is(err, save.ErrCorruptSave):
		slog.WarnContext(ctx, "save is corrupt, starting fresh", "slot", slot, "error", err)
	default:
		return false, err
	}

	return false, s.Start(ctx)
}
