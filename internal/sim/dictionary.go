package sim

import (
	"errors"
	"fmt"

	goerrors "github.com/pixil98/go-errors"
	"github.com/pixil98/go-timeloop/internal/npc"
	"github.com/pixil98/go-timeloop/internal/player"
	"github.com/pixil98/go-timeloop/internal/quest"
	"github.com/pixil98/go-timeloop/internal/storage"
	"github.com/pixil98/go-timeloop/internal/world"
)

var ErrLoadFailure = errors.New("load failure")

// Dictionary holds all static content the simulation is built from.
type Dictionary struct {
	Locations  storage.Storer[*world.Location]
	Characters storage.Storer[*npc.Character]
	Quests     storage.Storer[*quest.Quest]
	Milestones storage.Storer[*player.Milestone]
}

// Resolve checks every reference between definitions. Content that fails is
// never used to build a simulation.
func (d *Dictionary) Resolve() error {
	if d.Locations == nil || d.Characters == nil || d.Quests == nil || d.Milestones == nil {
		return fmt.Errorf("%w: incomplete dictionary", ErrLoadFailure)
	}
	if len(d.Locations.Ids()) == 0 {
		return fmt.Errorf("%w: no locations defined", ErrLoadFailure)
	}

	el := goerrors.NewErrorList()
	for _, id := range d.Locations.Ids() {
		el.Add(d.resolveLocation(id, d.Locations.Get(id)))
	}
	for _, id := range d.Characters.Ids() {
		el.Add(d.resolveCharacter(id, d.Characters.Get(id)))
	}
	for _, id := range d.Quests.Ids() {
		el.Add(d.resolveQuest(id, d.Quests.Get(id)))
	}

	if err := el.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailure, err)
	}
	return nil
}

func (d *Dictionary) hasLocation(id storage.Identifier) bool {
	return d.Locations.Get(id) != nil
}

func (d *Dictionary) resolveLocation(id storage.Identifier, l *world.Location) error {
	el := goerrors.NewErrorList()

	for _, c := range l.Connections {
		if !d.hasLocation(c) {
			el.Add(fmt.Errorf("connection to unknown location %q", c))
		}
	}
	if l.Precondition != nil && !d.hasLocation(l.Precondition.Location) {
		el.Add(fmt.Errorf("precondition on unknown location %q", l.Precondition.Location))
	}
	for i, r := range l.Rules {
		if r.Discovery != "" && !d.hasLocation(r.Discovery) {
			el.Add(fmt.Errorf("rule %d: discovers unknown location %q", i, r.Discovery))
		}
		for area := range r.Growth {
			if !player.Area(area).Valid() {
				el.Add(fmt.Errorf("rule %d: unknown growth area %q", i, area))
			}
		}
	}

	if err := el.Err(); err != nil {
		return fmt.Errorf("location %s: %w", id, err)
	}
	return nil
}

func (d *Dictionary) resolveCharacter(id storage.Identifier, c *npc.Character) error {
	el := goerrors.NewErrorList()

	if !d.hasLocation(c.Location) {
		el.Add(fmt.Errorf("starts at unknown location %q", c.Location))
	}
	for i, e := range c.Schedule {
		if !d.hasLocation(e.Location) {
			el.Add(fmt.Errorf("schedule entry %d: unknown location %q", i, e.Location))
		}
	}
	for i, se := range c.SpecialEvents {
		if se.Location != "" && !d.hasLocation(se.Location) {
			el.Add(fmt.Errorf("special event %d: unknown location %q", i, se.Location))
		}
	}
	for _, q := range c.Quests {
		if d.Quests.Get(q) == nil {
			el.Add(fmt.Errorf("unknown quest %q", q))
		}
	}

	if err := el.Err(); err != nil {
		return fmt.Errorf("character %s: %w", id, err)
	}
	return nil
}

func (d *Dictionary) resolveQuest(id storage.Identifier, q *quest.Quest) error {
	el := goerrors.NewErrorList()

	if q.Giver != "" && d.Characters.Get(q.Giver) == nil {
		el.Add(fmt.Errorf("unknown giver %q", q.Giver))
	}
	for area := range q.Growth {
		if !player.Area(area).Valid() {
			el.Add(fmt.Errorf("unknown growth area %q", area))
		}
	}

	if err := el.Err(); err != nil {
		return fmt.Errorf("quest %s: %w", id, err)
	}
	return nil
}
