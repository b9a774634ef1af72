package sim

import (
	"github.com/pixil98/go-timeloop/internal/clock"
	"github.com/pixil98/go-timeloop/internal/npc"
	"github.com/pixil98/go-timeloop/internal/player"
	"github.com/pixil98/go-timeloop/internal/quest"
	"github.com/pixil98/go-timeloop/internal/storage"
	"github.com/pixil98/go-timeloop/internal/world"
)

func (s *Simulation) Clock() clock.State {
	return s.clock.State()
}

func (s *Simulation) Period() clock.Period {
	return s.clock.Period()
}

// FormatTime renders the current game time, for example "2:05 PM".
func (s *Simulation) FormatTime() string {
	return s.clock.FormatTime()
}

func (s *Simulation) PlayerLocation() storage.Identifier {
	return s.world.Current()
}

// CurrentLocation describes where the player is, including who is there and
// where they can go next.
func (s *Simulation) CurrentLocation() (world.LocationView, error) {
	return s.world.GetCurrentLocationData(s.inv)
}

func (s *Simulation) LocationState(id storage.Identifier) (world.LocationState, bool) {
	return s.world.State(id)
}

func (s *Simulation) IsAvailable(id storage.Identifier) bool {
	return s.world.IsAvailable(id, s.clock.State().Hour)
}

func (s *Simulation) NPCsAt(loc storage.Identifier) []npc.Summary {
	return s.npcs.GetNPCsAtLocation(loc)
}

// NPCsHere lists the characters at the player's location.
func (s *Simulation) NPCsHere() []npc.Summary {
	return s.npcs.GetNPCsAtLocation(s.world.Current())
}

func (s *Simulation) CharacterDetails(id storage.Identifier) (*npc.Details, error) {
	return s.npcs.GetCharacterDetails(id)
}

func (s *Simulation) CharacterState(id storage.Identifier) (npc.State, bool) {
	return s.npcs.State(id)
}

func (s *Simulation) Relationship(id storage.Identifier) int {
	return s.rels.Get(id)
}

func (s *Simulation) Knows(key string) bool {
	return s.know.Has(key)
}

// Knowledge decodes a fact into out and reports whether it exists.
func (s *Simulation) Knowledge(key string, out any) (bool, error) {
	return s.know.Get(key, out)
}

func (s *Simulation) Inventory() []player.Item {
	return s.inv.Items()
}

func (s *Simulation) Traits() []string {
	return s.growth.Traits()
}

func (s *Simulation) Growth() map[player.Area]int {
	return s.growth.Levels()
}

func (s *Simulation) Milestones() []storage.Identifier {
	return s.growth.Achieved()
}

func (s *Simulation) Quest(id storage.Identifier) (quest.Progress, bool) {
	return s.quests.Get(id)
}

func (s *Simulation) ActiveQuests() []storage.Identifier {
	return s.quests.Active()
}

func (s *Simulation) CompletedQuests() []storage.Identifier {
	return s.quests.Completed()
}
