package sim

import (
	"context"
	"testing"
	"time"

	"github.com/pixil98/go-timeloop/internal/clock"
	"github.com/pixil98/go-timeloop/internal/event"
	"github.com/pixil98/go-timeloop/internal/npc"
	"github.com/pixil98/go-timeloop/internal/player"
	"github.com/pixil98/go-timeloop/internal/quest"
	"github.com/pixil98/go-timeloop/internal/schedule"
	"github.com/pixil98/go-timeloop/internal/storage"
	"github.com/pixil98/go-timeloop/internal/world"
)

// gameHour is how much real time one game hour takes in tests.
const gameHour = time.Minute

type content struct {
	locations  map[storage.Identifier]*world.Location
	characters map[storage.Identifier]*npc.Character
	quests     map[storage.Identifier]*quest.Quest
	milestones map[storage.Identifier]*player.Milestone
}

func testContent() *content {
	return &content{
		locations: map[storage.Identifier]*world.Location{
			"inn": {
				Name:        "The Inn",
				Connections: []storage.Identifier{"square"},
				Objects: map[storage.Identifier]*world.Object{
					"window": {State: "closed", Interactable: true},
					"drawer": {State: "closed", Interactable: true},
				},
				Rules: []world.Rule{
					{Object: "window", WhenState: "closed", SetState: "open", Message: "You open the window."},
					{Object: "drawer", WhenState: "closed", SetState: "open", GiveItem: "tower_key", Message: "There is a key inside."},
				},
			},
			"square": {
				Name:        "Town Square",
				Connections: []storage.Identifier{"inn", "tower"},
				Objects: map[storage.Identifier]*world.Object{
					"stage": {State: "setup", Interactable: true, Schedule: []world.StatePhase{{Hour: 6, State: "setup"}, {Hour: 12, State: "ready"}}},
				},
				Rules: []world.Rule{
					{Object: "stage", WhenState: "setup", SetState: "ready", Growth: map[string]int{"community_spirit": 2}, Message: "You help with the {{ .Object }}."},
				},
			},
			"tower": {
				Name:        "Clock Tower",
				Connections: []storage.Identifier{"square"},
				Hours:       &world.Hours{Open: 7, Close: 21},
				Locked:      true,
				KeyRequired: "tower_key",
				Objects: map[storage.Identifier]*world.Object{
					"mechanism": {State: "running", Interactable: true},
				},
				Patches: []world.Patch{{Knowledge: "clockTowerFixed", Object: "mechanism", State: "fixed"}},
				Rules: []world.Rule{
					{Object: "mechanism", WhenState: "running", Requires: "clockTowerHistory", Missing: "You don't know how.", SetState: "fixed", AddKnowledge: "clockTowerFixed", Message: "Fixed."},
				},
			},
		},
		characters: map[storage.Identifier]*npc.Character{
			"sophie": {
				Name:     "Sophie",
				Location: "inn",
				Secrets:  []string{"first", "second", "third"},
				Schedule: schedule.Schedule{
					{Hour: 6, Location: "inn", Activity: "breakfast"},
					{Hour: 12, Location: "square", Activity: "lunch"},
				},
				SpecialEvents: []npc.SpecialEvent{{Hour: 12, Location: "square", Type: "toast", Description: "Sophie raises a toast."}},
			},
		},
		quests: map[storage.Identifier]*quest.Quest{
			"fix_tower": {
				Title:      "Fix the Tower",
				Persist:    true,
				Objectives: []quest.Objective{{Id: "research"}, {Id: "repair"}},
				Reward:     "towerQuestDone",
				Growth:     map[string]int{"patience": 1},
			},
			"help_out": {
				Title:      "Help Out",
				Giver:      "sophie",
				Objectives: []quest.Objective{{Id: "stage"}},
			},
		},
		milestones: map[storage.Identifier]*player.Milestone{
			"patient": {
				Title:        "Patient",
				Requires:     map[player.Area]int{player.Patience: 1},
				ReplaceTrait: "impatient",
				WithTrait:    "patient",
				Message:      "You feel calmer.",
			},
		},
	}
}

func (c *content) dictionary(t *testing.T) *Dictionary {
	t.Helper()

	locs, err := storage.NewMemoryStore(c.locations)
	if err != nil {
		t.Fatalf("locations: %v", err)
	}
	chars, err := storage.NewMemoryStore(c.characters)
	if err != nil {
		t.Fatalf("characters: %v", err)
	}
	quests, err := storage.NewMemoryStore(c.quests)
	if err != nil {
		t.Fatalf("quests: %v", err)
	}
	milestones, err := storage.NewMemoryStore(c.milestones)
	if err != nil {
		t.Fatalf("milestones: %v", err)
	}

	return &Dictionary{Locations: locs, Characters: chars, Quests: quests, Milestones: milestones}
}

func newTestSim(t *testing.T, opts ...SimOpt) (*Simulation, *event.Recorder) {
	t.Helper()

	base := []SimOpt{
		WithClockOpts(clock.WithHourLength(gameHour)),
		WithTraits("impatient", "cynical"),
	}
	s, err := New(testContent().dictionary(t), append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rec := &event.Recorder{}
	s.SubscribeAll(rec.Publish)
	return s, rec
}

func startTestSim(t *testing.T, opts ...SimOpt) (*Simulation, *event.Recorder) {
	t.Helper()

	s, rec := newTestSim(t, opts...)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	rec.Reset()
	return s, rec
}
