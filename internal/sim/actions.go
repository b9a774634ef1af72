package sim

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/pixil98/go-timeloop/internal/clock"
	"github.com/pixil98/go-timeloop/internal/display"
	"github.com/pixil98/go-timeloop/internal/event"
	"github.com/pixil98/go-timeloop/internal/npc"
	"github.com/pixil98/go-timeloop/internal/player"
	"github.com/pixil98/go-timeloop/internal/storage"
	"github.com/pixil98/go-timeloop/internal/world"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// act wraps a player action in a span. Failures are also published as notices.
func (s *Simulation) act(ctx context.Context, name string, attrs []attribute.KeyValue, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "sim."+name, trace.WithAttributes(attrs...))
	defer span.End()

	if !s.clock.IsReady() {
		return clock.ErrNotReady
	}

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		slog.DebugContext(ctx, "action rejected", "action", name, "error", err)
		s.notify(err)
		return err
	}
	return nil
}

// Move takes the player to a connected location.
func (s *Simulation) Move(ctx context.Context, to storage.Identifier) error {
	return s.act(ctx, "move", []attribute.KeyValue{attribute.String("to", to.String())}, func(ctx context.Context) error {
		return s.world.Move(ctx, s.world.Current(), to, s.inv)
	})
}

// InteractObject uses an object at the player's location. Items and growth
// granted by the outcome are applied to the player.
func (s *Simulation) InteractObject(ctx context.Context, obj storage.Identifier) (*world.Outcome, error) {
	var out *world.Outcome
	err := s.act(ctx, "interact", []attribute.KeyValue{attribute.String("object", obj.String())}, func(ctx context.Context) error {
		var err error
		out, err = s.world.Interact(ctx, s.world.Current(), obj, s.inv)
		if err != nil {
			return err
		}
		if !out.Success {
			s.bus.Publish(event.Notice{Message: out.Message})
			return nil
		}

		if out.Item != "" && s.inv.Add(player.Item{Id: out.Item, Name: display.Humanize(out.Item.String())}) {
			slog.InfoContext(ctx, "item received", "item", out.Item)
		}
		return s.applyGrowth(ctx, out.Growth)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// applyGrowth adds growth in area order.
func (s *Simulation) applyGrowth(ctx context.Context, growth map[string]int) error {
	areas := make([]string, 0, len(growth))
	for a := range growth {
		areas = append(areas, a)
	}
	slices.Sort(areas)

	for _, a := range areas {
		if _, err := s.growth.AddGrowth(ctx, player.Area(a), growth[a]); err != nil {
			return err
		}
	}
	return nil
}

// Talk starts a conversation with a character at the player's location.
func (s *Simulation) Talk(ctx context.Context, id storage.Identifier) (*npc.Interaction, error) {
	var in *npc.Interaction
	err := s.act(ctx, "talk", []attribute.KeyValue{attribute.String("character", id.String())}, func(ctx context.Context) error {
		var err error
		in, err = s.npcs.Interact(ctx, id, s.world.Current())
		return err
	})
	if err != nil {
		return nil, err
	}
	return in, nil
}

// EndTalk finishes a conversation started with Talk.
func (s *Simulation) EndTalk(ctx context.Context, id storage.Identifier, interactionId string) error {
	return s.act(ctx, "end_talk", []attribute.KeyValue{attribute.String("character", id.String())}, func(context.Context) error {
		return s.npcs.EndInteraction(id, interactionId)
	})
}

// RevealSecret asks a character for a secret. The bool is false when nothing
// was shared.
func (s *Simulation) RevealSecret(ctx context.Context, id storage.Identifier) (string, bool, error) {
	var secret string
	var ok bool
	err := s.act(ctx, "reveal_secret", []attribute.KeyValue{attribute.String("character", id.String())}, func(ctx context.Context) error {
		var err error
		secret, ok, err = s.npcs.RevealSecret(ctx, id)
		return err
	})
	return secret, ok, err
}

// UpdateMood sets a character's mood for today and changes the relationship
// score by delta.
func (s *Simulation) UpdateMood(ctx context.Context, id storage.Identifier, mood string, delta int) (int, error) {
	var score int
	err := s.act(ctx, "update_mood", []attribute.KeyValue{attribute.String("character", id.String())}, func(ctx context.Context) error {
		var err error
		score, err = s.npcs.UpdateMood(ctx, id, mood, delta)
		return err
	})
	return score, err
}

// ChangeRelationship changes a relationship score and returns the new value.
func (s *Simulation) ChangeRelationship(ctx context.Context, id storage.Identifier, delta int) (int, error) {
	var score int
	err := s.act(ctx, "change_relationship", []attribute.KeyValue{attribute.String("character", id.String())}, func(ctx context.Context) error {
		if s.dict.Characters.Get(id) == nil {
			return fmt.Errorf("%w: %s", npc.ErrUnknownCharacter, id)
		}
		score = s.rels.Change(id, delta)
		slog.DebugContext(ctx, "relationship changed", "character", id, "score", score)
		return nil
	})
	return score, err
}

// AddKnowledge records a permanent fact.
func (s *Simulation) AddKnowledge(ctx context.Context, key string, value any) error {
	return s.act(ctx, "add_knowledge", []attribute.KeyValue{attribute.String("key", key)}, func(ctx context.Context) error {
		if err := s.know.Add(key, value); err != nil {
			return err
		}
		slog.InfoContext(ctx, "knowledge added", "key", key)
		return nil
	})
}

// AddGrowth raises a growth area and returns the milestones it unlocked.
func (s *Simulation) AddGrowth(ctx context.Context, area player.Area, amount int) ([]storage.Identifier, error) {
	var reached []storage.Identifier
	err := s.act(ctx, "add_growth", []attribute.KeyValue{attribute.String("area", string(area))}, func(ctx context.Context) error {
		var err error
		reached, err = s.growth.AddGrowth(ctx, area, amount)
		return err
	})
	return reached, err
}

func (s *Simulation) StartQuest(ctx context.Context, id storage.Identifier) error {
	return s.act(ctx, "start_quest", []attribute.KeyValue{attribute.String("quest", id.String())}, func(ctx context.Context) error {
		return s.quests.Start(ctx, id)
	})
}

// CompleteObjective marks a quest objective done. When that completes the
// quest its growth is granted.
func (s *Simulation) CompleteObjective(ctx context.Context, id, objective storage.Identifier) (bool, error) {
	var done bool
	err := s.act(ctx, "complete_objective", []attribute.KeyValue{attribute.String("quest", id.String())}, func(ctx context.Context) error {
		var err error
		done, err = s.quests.CompleteObjective(ctx, id, objective)
		if err != nil || !done {
			return err
		}
		return s.applyGrowth(ctx, s.quests.Definition(id).Growth)
	})
	return done, err
}

func (s *Simulation) FailQuest(ctx context.Context, id storage.Identifier) error {
	return s.act(ctx, "fail_quest", []attribute.KeyValue{attribute.String("quest", id.String())}, func(ctx context.Context) error {
		return s.quests.Fail(ctx, id)
	})
}
