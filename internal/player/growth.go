// Package player tracks what carries over for the player between loops: the
// inventory and personal growth.
package player

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"sync"

	"github.com/pixil98/go-timeloop/internal/event"
	"github.com/pixil98/go-timeloop/internal/knowledge"
	"github.com/pixil98/go-timeloop/internal/storage"
)

// GrowthKey is the knowledge key holding a growth counter.
func GrowthKey(a Area) string {
	return "growth_" + string(a)
}

// MilestoneKey is the knowledge key marking a milestone as reached. Its value
// is the order in which the milestone was reached, starting at 1.
func MilestoneKey(id storage.Identifier) string {
	return "milestone_" + id.String()
}

// Growth keeps growth counters and milestone markers in the knowledge store so
// they survive every reset.
type Growth struct {
	know       *knowledge.Store
	milestones storage.Storer[*Milestone]
	base       []string
	pub        event.Publisher

	mu sync.Mutex
}

func NewGrowth(know *knowledge.Store, milestones storage.Storer[*Milestone], baseTraits []string, pub event.Publisher) *Growth {
	return &Growth{
		know:       know,
		milestones: milestones,
		base:       slices.Clone(baseTraits),
		pub:        pub,
	}
}

func (g *Growth) Level(a Area) int {
	return g.know.Int(GrowthKey(a))
}

// Levels returns every growth counter.
func (g *Growth) Levels() map[Area]int {
	out := make(map[Area]int, len(Areas))
	for _, a := range Areas {
		out[a] = g.Level(a)
	}
	return out
}

// AddGrowth raises a growth counter and checks for newly reached milestones.
func (g *Growth) AddGrowth(ctx context.Context, a Area, amount int) ([]storage.Identifier, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("unknown growth area %q", a)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("growth amount must be positive")
	}

	g.mu.Lock()
	err := g.know.Add(GrowthKey(a), g.Level(a)+amount)
	g.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("recording growth: %w", err)
	}

	return g.CheckMilestones(ctx)
}

// CheckMilestones records every milestone whose requirements are now met and
// which has not been reached before. Calling it again at the same growth
// levels does nothing.
func (g *Growth) CheckMilestones(ctx context.Context) ([]storage.Identifier, error) {
	g.mu.Lock()

	var reached []storage.Identifier
	var events []event.Event
	order := len(g.achievedLocked())
	for _, id := range g.milestones.Ids() {
		if g.know.Has(MilestoneKey(id)) {
			continue
		}
		m := g.milestones.Get(id)
		if !g.met(m) {
			continue
		}

		before := g.traitsLocked()
		order++
		facts := map[string]any{MilestoneKey(id): order}
		if m.Knowledge != "" {
			facts[m.Knowledge] = true
		}
		if err := g.know.AddAll(facts); err != nil {
			g.mu.Unlock()
			return reached, fmt.Errorf("recording milestone %s: %w", id, err)
		}

		ev := event.GrowthMilestone{Milestone: id, Message: m.Message}
		if m.WithTrait != "" && !slices.Equal(before, g.traitsLocked()) {
			ev.OldTrait = m.ReplaceTrait
			ev.NewTrait = m.WithTrait
		}
		reached = append(reached, id)
		events = append(events, ev)
	}
	g.mu.Unlock()

	for i, ev := range events {
		slog.InfoContext(ctx, "growth milestone reached", "milestone", reached[i])
		g.pub.Publish(ev)
	}
	return reached, nil
}

func (g *Growth) met(m *Milestone) bool {
	for a, n := range m.Requires {
		if g.Level(a) < n {
			return false
		}
	}
	return true
}

// Achieved lists reached milestones in the order they were reached.
func (g *Growth) Achieved() []storage.Identifier {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.achievedLocked()
}

func (g *Growth) achievedLocked() []storage.Identifier {
	type reachedAt struct {
		id    storage.Identifier
		order int
	}
	var all []reachedAt
	for _, id := range g.milestones.Ids() {
		if g.know.Has(MilestoneKey(id)) {
			all = append(all, reachedAt{id: id, order: g.know.Int(MilestoneKey(id))})
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].order < all[j].order })

	out := make([]storage.Identifier, len(all))
	for i, r := range all {
		out[i] = r.id
	}
	return out
}

// Traits derives the player's current traits from the base traits and every
// milestone reached so far.
func (g *Growth) Traits() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.traitsLocked()
}

func (g *Growth) traitsLocked() []string {
	traits := slices.Clone(g.base)
	for _, id := range g.achievedLocked() {
		m := g.milestones.Get(id)
		if m.WithTrait == "" {
			continue
		}
		if i := slices.Index(traits, m.ReplaceTrait); m.ReplaceTrait != "" && i >= 0 {
			traits[i] = m.WithTrait
			continue
		}
		if !slices.Contains(traits, m.WithTrait) {
			traits = append(traits, m.WithTrait)
		}
	}
	return traits
}
