package sim

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/go-timeloop/internal/clock"
	"github.com/pixil98/go-timeloop/internal/event"
	"github.com/pixil98/go-timeloop/internal/npc"
	"github.com/pixil98/go-timeloop/internal/quest"
	"github.com/pixil98/go-timeloop/internal/storage"
	"github.com/pixil98/go-timeloop/internal/world"
)

func TestNew_LoadFailure(t *testing.T) {
	tests := map[string]struct {
		mutate func(*content)
		opts   []SimOpt
		expErr string
	}{
		"unknown connection": {
			mutate: func(c *content) { c.locations["inn"].Connections = append(c.locations["inn"].Connections, "nowhere") },
			expErr: `location inn: connection to unknown location "nowhere"`,
		},
		"unknown character location": {
			mutate: func(c *content) { c.characters["sophie"].Location = "moon" },
			expErr: `character sophie: starts at unknown location "moon"`,
		},
		"unknown schedule location": {
			mutate: func(c *content) { c.characters["sophie"].Schedule[1].Location = "moon" },
			expErr: `schedule entry 1: unknown location "moon"`,
		},
		"unknown quest giver": {
			mutate: func(c *content) { c.quests["help_out"].Giver = "ghost" },
			expErr: `quest help_out: unknown giver "ghost"`,
		},
		"unknown growth area": {
			mutate: func(c *content) { c.locations["square"].Rules[0].Growth = map[string]int{"charisma": 1} },
			expErr: `rule 0: unknown growth area "charisma"`,
		},
		"unknown discovery": {
			mutate: func(c *content) { c.locations["inn"].Rules[0].Discovery = "attic" },
			expErr: `rule 0: discovers unknown location "attic"`,
		},
		"unknown start location": {
			mutate: func(*content) {},
			opts:   []SimOpt{WithStartLocation("attic")},
			expErr: `unknown start location "attic"`,
		},
		"no locations": {
			mutate: func(c *content) { c.locations = nil; c.characters = nil; c.quests = nil },
			expErr: "no locations defined",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := testContent()
			tt.mutate(c)

			s, err := New(c.dictionary(t), tt.opts...)
			testutil.AssertErrorContains(t, err, tt.expErr)
			testutil.AssertEqual(t, "load failure", errors.Is(err, ErrLoadFailure), true)
			testutil.AssertEqual(t, "no simulation", s == nil, true)
		})
	}
}

func TestNew_NilDictionary(t *testing.T) {
	_, err := New(nil)
	testutil.AssertEqual(t, "load failure", errors.Is(err, ErrLoadFailure), true)
}

func TestSimulation_NotReady(t *testing.T) {
	ctx := context.Background()
	s, rec := newTestSim(t)

	testutil.AssertEqual(t, "ready", s.Ready(), false)
	testutil.AssertEqual(t, "tick", errors.Is(s.Tick(ctx, gameHour), clock.ErrNotReady), true)
	testutil.AssertEqual(t, "period", errors.Is(s.AdvanceToNextPeriod(ctx), clock.ErrNotReady), true)
	testutil.AssertEqual(t, "move", errors.Is(s.Move(ctx, "square"), clock.ErrNotReady), true)
	testutil.AssertEqual(t, "clock untouched", s.Clock(), clock.State{Day: 1, Hour: 6})
	testutil.AssertEqual(t, "no events", len(rec.Events), 0)
}

func TestSimulation_Start(t *testing.T) {
	ctx := context.Background()
	s, rec := newTestSim(t)

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	testutil.AssertEqual(t, "ready", s.Ready(), true)
	testutil.AssertEqual(t, "location", s.PlayerLocation(), storage.Identifier("inn"))
	testutil.AssertEqual(t, "time", s.FormatTime(), "6:00 AM")
	testutil.AssertEqual(t, "period", s.Period(), clock.Morning)

	moved := rec.OfKind(event.KindLocationChanged)
	testutil.AssertEqual(t, "placed", len(moved), 1)
	testutil.AssertEqual(t, "placed at", moved[0], event.Event(event.LocationChanged{To: "inn", Name: "The Inn"}))

	here := s.NPCsHere()
	testutil.AssertEqual(t, "npcs", len(here), 1)
	testutil.AssertEqual(t, "sophie", here[0].Activity, "breakfast")

	testutil.AssertEqual(t, "restart", errors.Is(s.Start(ctx), ErrAlreadyStarted), true)
}

func TestSimulation_DayLoop(t *testing.T) {
	ctx := context.Background()
	s, rec := startTestSim(t)

	if _, err := s.InteractObject(ctx, "window"); err != nil {
		t.Fatalf("InteractObject: %v", err)
	}
	if _, err := s.InteractObject(ctx, "drawer"); err != nil {
		t.Fatalf("InteractObject: %v", err)
	}
	if err := s.AddKnowledge(ctx, "clockTowerFixed", true); err != nil {
		t.Fatalf("AddKnowledge: %v", err)
	}
	if _, err := s.ChangeRelationship(ctx, "sophie", 15); err != nil {
		t.Fatalf("ChangeRelationship: %v", err)
	}
	if err := s.Move(ctx, "square"); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if _, err := s.Talk(ctx, "sophie"); !errors.Is(err, npc.ErrCharacterNotPresent) {
		t.Fatalf("Talk before noon: %v", err)
	}
	rec.Reset()

	// 6:00 to 24:00 crosses one day boundary.
	if err := s.Tick(ctx, 18*gameHour); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	testutil.AssertEqual(t, "clock", s.Clock(), clock.State{Day: 2, Hour: 6})
	testutil.AssertEqual(t, "day resets", len(rec.OfKind(event.KindDayReset)), 1)
	testutil.AssertEqual(t, "hours", len(rec.OfKind(event.KindHourChanged)), 18)
	testutil.AssertEqual(t, "special events", len(rec.OfKind(event.KindSpecialEvent)), 1)

	// Per-day state is rebuilt, persistent state is not.
	testutil.AssertEqual(t, "player woke at inn", s.PlayerLocation(), storage.Identifier("inn"))
	inn, _ := s.LocationState("inn")
	testutil.AssertEqual(t, "window", inn.Objects["window"].State, "closed")
	tower, _ := s.LocationState("tower")
	testutil.AssertEqual(t, "mechanism patched", tower.Objects["mechanism"].State, "fixed")
	testutil.AssertEqual(t, "relationship", s.Relationship("sophie"), 15)
	testutil.AssertEqual(t, "inventory", len(s.Inventory()), 1)
	testutil.AssertEqual(t, "sophie home", s.NPCsHere()[0].Activity, "breakfast")

	sophie, _ := s.CharacterState("sophie")
	testutil.AssertEqual(t, "special event reset", sophie.SpecialEventTriggered, false)
}

func TestSimulation_TickLargeDelta(t *testing.T) {
	ctx := context.Background()
	s, rec := startTestSim(t)

	if err := s.Tick(ctx, 3*18*gameHour+30*gameHour/60); err != nil {
		t.Fatalf("Tick: %v", err)
	}

	testutil.AssertEqual(t, "clock", s.Clock(), clock.State{Day: 4, Hour: 6, Minute: 30})
	testutil.AssertEqual(t, "day resets", len(rec.OfKind(event.KindDayReset)), 3)
	testutil.AssertEqual(t, "hours", len(rec.OfKind(event.KindHourChanged)), 54)
}

func TestSimulation_AdvanceToNextPeriod(t *testing.T) {
	ctx := context.Background()
	s, _ := startTestSim(t)

	if err := s.AdvanceToNextPeriod(ctx); err != nil {
		t.Fatalf("AdvanceToNextPeriod: %v", err)
	}
	testutil.AssertEqual(t, "clock", s.Clock(), clock.State{Day: 1, Hour: 10})
	testutil.AssertEqual(t, "period", s.Period(), clock.Day)
}

func TestSimulation_Move(t *testing.T) {
	ctx := context.Background()

	tests := map[string]struct {
		setup     func(*testing.T, *Simulation)
		to        storage.Identifier
		expErr    error
		expNotice string
	}{
		"not connected": {
			to:        "tower",
			expErr:    world.ErrNotConnected,
			expNotice: "you can't get to Clock Tower from The Inn",
		},
		"invalid": {
			to:     "attic",
			expErr: world.ErrInvalidLocation,
		},
		"not available": {
			setup: func(t *testing.T, s *Simulation) {
				mustMove(t, s, "square")
			},
			to:        "tower",
			expErr:    world.ErrNotAvailable,
			expNotice: "Clock Tower is closed at this hour",
		},
		"locked": {
			setup: func(t *testing.T, s *Simulation) {
				mustMove(t, s, "square")
				mustTick(t, s, gameHour)
			},
			to:        "tower",
			expErr:    world.ErrAccessDenied,
			expNotice: "Clock Tower is locked",
		},
		"with key": {
			setup: func(t *testing.T, s *Simulation) {
				if _, err := s.InteractObject(ctx, "drawer"); err != nil {
					t.Fatalf("InteractObject: %v", err)
				}
				mustMove(t, s, "square")
				mustTick(t, s, gameHour)
			},
			to: "tower",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			s, rec := startTestSim(t)
			if tt.setup != nil {
				tt.setup(t, s)
			}
			before := s.PlayerLocation()
			rec.Reset()

			err := s.Move(ctx, tt.to)
			if tt.expErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				testutil.AssertEqual(t, "location", s.PlayerLocation(), tt.to)
				return
			}

			testutil.AssertEqual(t, "reason", errors.Is(err, tt.expErr), true)
			testutil.AssertEqual(t, "stayed", s.PlayerLocation(), before)
			notices := rec.OfKind(event.KindNotice)
			testutil.AssertEqual(t, "notices", len(notices), 1)
			if tt.expNotice != "" {
				testutil.AssertEqual(t, "notice", notices[0], event.Event(event.Notice{Message: tt.expNotice}))
			}
		})
	}
}

func TestSimulation_InteractObject(t *testing.T) {
	ctx := context.Background()
	s, rec := startTestSim(t)

	out, err := s.InteractObject(ctx, "drawer")
	if err != nil {
		t.Fatalf("InteractObject: %v", err)
	}
	testutil.AssertEqual(t, "item", out.Item, storage.Identifier("tower_key"))
	items := s.Inventory()
	testutil.AssertEqual(t, "inventory", len(items), 1)
	testutil.AssertEqual(t, "item name", items[0].Name, "Tower Key")

	mustMove(t, s, "square")
	out, err = s.InteractObject(ctx, "stage")
	if err != nil {
		t.Fatalf("InteractObject: %v", err)
	}
	testutil.AssertEqual(t, "message", out.Message, "You help with the stage.")
	testutil.AssertEqual(t, "growth", s.Growth()["community_spirit"], 2)

	mustTick(t, s, gameHour)
	mustMove(t, s, "tower")
	rec.Reset()

	out, err = s.InteractObject(ctx, "mechanism")
	if err != nil {
		t.Fatalf("InteractObject: %v", err)
	}
	testutil.AssertEqual(t, "refused", out.Success, false)
	testutil.AssertEqual(t, "notice", rec.OfKind(event.KindNotice)[0], event.Event(event.Notice{Message: "You don't know how."}))
	testutil.AssertEqual(t, "not fixed", s.Knows("clockTowerFixed"), false)

	_, err = s.InteractObject(ctx, "anvil")
	testutil.AssertEqual(t, "unknown object", errors.Is(err, world.ErrUnknownObject), true)
}

func TestSimulation_QuestsAndGrowth(t *testing.T) {
	ctx := context.Background()
	s, rec := startTestSim(t)

	for _, id := range []storage.Identifier{"fix_tower", "help_out"} {
		if err := s.StartQuest(ctx, id); err != nil {
			t.Fatalf("StartQuest %s: %v", id, err)
		}
	}

	done, err := s.CompleteObjective(ctx, "fix_tower", "research")
	if err != nil {
		t.Fatalf("CompleteObjective: %v", err)
	}
	testutil.AssertEqual(t, "not done", done, false)

	done, err = s.CompleteObjective(ctx, "fix_tower", "repair")
	if err != nil {
		t.Fatalf("CompleteObjective: %v", err)
	}
	testutil.AssertEqual(t, "done", done, true)
	testutil.AssertEqual(t, "reward", s.Knows("towerQuestDone"), true)
	testutil.AssertEqual(t, "patience", s.Growth()["patience"], 1)
	testutil.AssertEqual(t, "milestones", len(s.Milestones()), 1)
	testutil.AssertEqual(t, "traits", strings.Join(s.Traits(), ","), "patient,cynical")
	testutil.AssertEqual(t, "milestone events", len(rec.OfKind(event.KindGrowthMilestone)), 1)

	mustTick(t, s, 18*gameHour)

	fix, _ := s.Quest("fix_tower")
	testutil.AssertEqual(t, "persisted", fix.Status, quest.StatusCompleted)
	help, _ := s.Quest("help_out")
	testutil.AssertEqual(t, "reset", help.Status, quest.StatusAvailable)
	testutil.AssertEqual(t, "active", len(s.ActiveQuests()), 0)
	testutil.AssertEqual(t, "completed", len(s.CompletedQuests()), 1)
	testutil.AssertEqual(t, "traits kept", strings.Join(s.Traits(), ","), "patient,cynical")

	err = s.FailQuest(ctx, "fix_tower")
	testutil.AssertErrorContains(t, err, "fix_tower is completed")
}

func TestSimulation_Talk(t *testing.T) {
	ctx := context.Background()
	s, _ := startTestSim(t)

	in, err := s.Talk(ctx, "sophie")
	if err != nil {
		t.Fatalf("Talk: %v", err)
	}
	testutil.AssertEqual(t, "first today", in.FirstToday, true)

	_, err = s.Talk(ctx, "sophie")
	testutil.AssertEqual(t, "in progress", errors.Is(err, npc.ErrInteractionInProgress), true)

	if err := s.EndTalk(ctx, "sophie", in.Id); err != nil {
		t.Fatalf("EndTalk: %v", err)
	}
	again, err := s.Talk(ctx, "sophie")
	if err != nil {
		t.Fatalf("Talk again: %v", err)
	}
	testutil.AssertEqual(t, "second talk", again.FirstToday, false)

	err = s.EndTalk(ctx, "sophie", in.Id)
	testutil.AssertEqual(t, "stale id", errors.Is(err, npc.ErrNoInteraction), true)

	_, err = s.Talk(ctx, "nobody")
	testutil.AssertEqual(t, "unknown", errors.Is(err, npc.ErrUnknownCharacter), true)
}

func TestSimulation_RevealSecret(t *testing.T) {
	ctx := context.Background()
	s, _ := startTestSim(t)

	_, ok, err := s.RevealSecret(ctx, "sophie")
	if err != nil {
		t.Fatalf("RevealSecret: %v", err)
	}
	testutil.AssertEqual(t, "too low", ok, false)

	score, err := s.UpdateMood(ctx, "sophie", "happy", 25)
	if err != nil {
		t.Fatalf("UpdateMood: %v", err)
	}
	testutil.AssertEqual(t, "score", score, 25)

	secret, ok, err := s.RevealSecret(ctx, "sophie")
	if err != nil {
		t.Fatalf("RevealSecret: %v", err)
	}
	testutil.AssertEqual(t, "revealed", ok, true)
	testutil.AssertEqual(t, "secret", secret, "second")
	testutil.AssertEqual(t, "recorded", s.Knows(npc.SecretKey("sophie", 1)), true)

	_, ok, _ = s.RevealSecret(ctx, "sophie")
	testutil.AssertEqual(t, "once a day", ok, false)

	mustTick(t, s, 18*gameHour)
	sophie, _ := s.CharacterState("sophie")
	testutil.AssertEqual(t, "mood reset", sophie.Mood, npc.DefaultMood)

	_, ok, _ = s.RevealSecret(ctx, "sophie")
	testutil.AssertEqual(t, "next day", ok, true)
}

func TestSimulation_ChangeRelationshipUnknown(t *testing.T) {
	s, rec := startTestSim(t)

	_, err := s.ChangeRelationship(context.Background(), "ghost", 5)
	testutil.AssertEqual(t, "unknown", errors.Is(err, npc.ErrUnknownCharacter), true)
	testutil.AssertEqual(t, "score", s.Relationship("ghost"), 0)
	testutil.AssertEqual(t, "notice", len(rec.OfKind(event.KindNotice)), 1)
}

func mustMove(t *testing.T, s *Simulation, to storage.Identifier) {
	t.Helper()
	if err := s.Move(context.Background(), to); err != nil {
		t.Fatalf("Move %s: %v", to, err)
	}
}

func mustTick(t *testing.T, s *Simulation, d time.Duration) {
	t.Helper()
	if err := s.Tick(context.Background(), d); err != nil {
		t.Fatalf("Tick: %v", err)
	}
}
