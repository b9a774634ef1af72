// Package npc holds the character registry: who lives in town, where their day
// takes them and what they are willing to share.
package npc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/pixil98/go-timeloop/internal/clock"
	"github.com/pixil98/go-timeloop/internal/event"
	"github.com/pixil98/go-timeloop/internal/knowledge"
	"github.com/pixil98/go-timeloop/internal/schedule"
	"github.com/pixil98/go-timeloop/internal/storage"
)

var (
	ErrUnknownCharacter      = errors.New("unknown character")
	ErrCharacterNotPresent   = errors.New("character is not here")
	ErrInteractionInProgress = errors.New("interaction already in progress")
	ErrNoInteraction         = errors.New("no such interaction")
)

// Occupancy is the part of the location registry that tracks who is where.
type Occupancy interface {
	Arrive(loc, who storage.Identifier)
	Depart(loc, who storage.Identifier)
	Name(loc storage.Identifier) string
}

// KnowledgeKey holds how well the player knows a character.
func KnowledgeKey(id storage.Identifier) string {
	return "knowledge_" + id.String()
}

// SecretKey records a revealed secret.
func SecretKey(id storage.Identifier, idx int) string {
	return fmt.Sprintf("secret_%s_%d", id, idx)
}

// SecretIndex picks which secret a relationship score unlocks out of n. It
// returns -1 when the score is below the first threshold.
func SecretIndex(relationship, n int) int {
	if n == 0 || relationship < 10 {
		return -1
	}
	return max(min(relationship/10-1, n-1), 0)
}

type Registry struct {
	defs  storage.Storer[*Character]
	know  *knowledge.Store
	rels  *knowledge.Relationships
	world Occupancy
	pub   event.Publisher

	mu   sync.RWMutex
	live map[storage.Identifier]*State
}

func NewRegistry(defs storage.Storer[*Character], know *knowledge.Store, rels *knowledge.Relationships, world Occupancy, pub event.Publisher) *Registry {
	return &Registry{
		defs:  defs,
		know:  know,
		rels:  rels,
		world: world,
		pub:   pub,
		live:  map[storage.Identifier]*State{},
	}
}

// ResetDay rebuilds every character's state from its definition as of hour and
// re-applies mood rules from knowledge and relationships.
func (r *Registry) ResetDay(ctx context.Context, hour int) {
	live := make(map[storage.Identifier]*State, len(r.defs.Ids()))
	for _, id := range r.defs.Ids() {
		def := r.defs.Get(id)
		p := schedule.Resolve(def.Schedule, hour, def.Location)
		live[id] = &State{
			Location:         p.Location,
			Activity:         p.Activity,
			Mood:             r.mood(id, def),
			RevealsAvailable: true,
		}
	}

	r.mu.Lock()
	old := r.live
	r.live = live
	for id, st := range old {
		r.world.Depart(st.Location, id)
	}
	for id, st := range live {
		r.world.Arrive(st.Location, id)
	}
	r.mu.Unlock()

	slog.DebugContext(ctx, "characters reset", "count", len(live))
}

// mood applies mood rules in order, the last match wins.
func (r *Registry) mood(id storage.Identifier, def *Character) string {
	mood := def.startMood()
	rel := r.rels.Get(id)
	for _, m := range def.Moods {
		if m.Knowledge != "" && !r.know.Flag(m.Knowledge) {
			continue
		}
		if m.MinRelationship != nil && rel < *m.MinRelationship {
			continue
		}
		mood = m.Mood
	}
	return mood
}

// OnHourChanged moves characters along their schedules and fires any special
// events due at hour.
func (r *Registry) OnHourChanged(ctx context.Context, hour int) {
	var events []event.Event

	r.mu.Lock()
	for _, id := range r.defs.Ids() {
		def := r.defs.Get(id)
		st, ok := r.live[id]
		if !ok {
			continue
		}

		p := schedule.Resolve(def.Schedule, hour, def.Location)
		if p.Location != st.Location {
			r.world.Depart(st.Location, id)
			r.world.Arrive(p.Location, id)
			events = append(events, event.CharacterMoved{
				Character: id,
				Name:      def.Name,
				From:      st.Location,
				To:        p.Location,
				Activity:  p.Activity,
			})
			st.Location = p.Location
		}
		st.Activity = p.Activity

		if st.SpecialEventTriggered {
			continue
		}
		for _, se := range def.SpecialEvents {
			if se.Hour != hour || (se.Location != "" && se.Location != st.Location) {
				continue
			}
			if se.Requires != "" && !r.know.Flag(se.Requires) {
				continue
			}
			st.SpecialEventTriggered = true
			events = append(events, event.SpecialEvent{
				Type:        se.Type,
				Character:   id,
				Location:    st.Location,
				Description: se.Description,
			})
			break
		}
	}
	r.mu.Unlock()

	for _, ev := range events {
		if se, ok := ev.(event.SpecialEvent); ok {
			slog.InfoContext(ctx, "special event", "character", se.Character, "type", se.Type)
		}
		r.pub.Publish(ev)
	}
}

// Interact starts a conversation with a character at the player's location.
// Only one conversation per character may be in progress.
func (r *Registry) Interact(ctx context.Context, id, playerLoc storage.Identifier) (*Interaction, error) {
	def := r.defs.Get(id)
	if def == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCharacter, id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.live[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no state", ErrUnknownCharacter, id)
	}
	if st.Location != playerLoc {
		return nil, fmt.Errorf("%w: %s is at %s", ErrCharacterNotPresent, def.Name, r.world.Name(st.Location))
	}
	if st.Interaction != "" {
		return nil, fmt.Errorf("%w: %s", ErrInteractionInProgress, def.Name)
	}

	first := !st.InteractedToday
	st.Interaction = uuid.NewString()
	st.InteractedToday = true

	slog.DebugContext(ctx, "interaction started", "character", id, "interaction", st.Interaction)
	return &Interaction{
		Id:           st.Interaction,
		Character:    id,
		Name:         def.Name,
		Title:        def.Title,
		Activity:     st.Activity,
		Mood:         st.Mood,
		Dialogue:     def.Dialogue,
		Relationship: r.rels.Get(id),
		FirstToday:   first,
	}, nil
}

// EndInteraction finishes a conversation started with Interact.
func (r *Registry) EndInteraction(id storage.Identifier, interactionId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.live[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCharacter, id)
	}
	if interactionId == "" || st.Interaction != interactionId {
		return fmt.Errorf("%w: %q with %s", ErrNoInteraction, interactionId, id)
	}
	st.Interaction = ""
	return nil
}

// RevealSecret shares the secret a character's relationship score unlocks.
// It reports false when the score is too low or a secret was already shared
// today. A revealed secret is written to the knowledge store permanently.
func (r *Registry) RevealSecret(ctx context.Context, id storage.Identifier) (string, bool, error) {
	def := r.defs.Get(id)
	if def == nil {
		return "", false, fmt.Errorf("%w: %s", ErrUnknownCharacter, id)
	}

	r.mu.Lock()
	st, ok := r.live[id]
	if !ok {
		r.mu.Unlock()
		return "", false, fmt.Errorf("%w: %s has no state", ErrUnknownCharacter, id)
	}
	if !st.RevealsAvailable {
		r.mu.Unlock()
		return "", false, nil
	}

	idx := SecretIndex(r.rels.Get(id), len(def.Secrets))
	if idx < 0 {
		r.mu.Unlock()
		return "", false, nil
	}

	secret := def.Secrets[idx]
	if err := r.know.Add(SecretKey(id, idx), secret); err != nil {
		r.mu.Unlock()
		return "", false, fmt.Errorf("recording secret: %w", err)
	}
	st.RevealsAvailable = false
	r.mu.Unlock()

	slog.InfoContext(ctx, "secret revealed", "character", id, "index", idx)
	r.pub.Publish(event.SecretRevealed{Character: id, Index: idx, Secret: secret})
	return secret, true, nil
}

// UpdateMood sets today's mood and applies a relationship change. An empty
// mood leaves the current mood alone. It returns the new relationship score.
func (r *Registry) UpdateMood(ctx context.Context, id storage.Identifier, mood string, delta int) (int, error) {
	if r.defs.Get(id) == nil {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCharacter, id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.live[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s has no state", ErrUnknownCharacter, id)
	}
	if mood != "" {
		st.Mood = mood
	}

	score := r.rels.Get(id)
	if delta != 0 {
		score = r.rels.Change(id, delta)
	}
	slog.DebugContext(ctx, "mood updated", "character", id, "mood", st.Mood, "relationship", score)
	return score, nil
}

// GetNPCsAtLocation lists the characters currently at a location.
func (r *Registry) GetNPCsAtLocation(loc storage.Identifier) []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Summary
	for _, id := range r.defs.Ids() {
		st, ok := r.live[id]
		if !ok || st.Location != loc {
			continue
		}
		def := r.defs.Get(id)
		out = append(out, Summary{Id: id, Name: def.Name, Title: def.Title, Activity: st.Activity, Mood: st.Mood})
	}
	return out
}

// GetCharacterDetails describes a character. Personality is revealed at
// knowledge level 1, the daily schedule at 2 and relationships at 3.
func (r *Registry) GetCharacterDetails(id storage.Identifier) (*Details, error) {
	def := r.defs.Get(id)
	if def == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCharacter, id)
	}

	st, ok := r.State(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no state", ErrUnknownCharacter, id)
	}

	level := r.know.Int(KnowledgeKey(id))
	d := &Details{
		Id:             id,
		Name:           def.Name,
		Title:          def.Title,
		Description:    def.Description,
		Location:       st.Location,
		Activity:       st.Activity,
		Mood:           st.Mood,
		Relationship:   r.rels.Get(id),
		KnowledgeLevel: level,
	}
	if level >= 1 {
		d.Personality = slices.Clone(def.Personality)
	}
	if level >= 2 {
		for _, e := range def.Schedule {
			d.Schedule = append(d.Schedule, ScheduleLine{Time: clock.FormatTime(e.Hour, 0), Location: e.Location, Activity: e.Activity})
		}
	}
	if level >= 3 {
		d.Relationships = maps.Clone(def.Relationships)
	}
	return d, nil
}

// State returns a copy of a character's live state.
func (r *Registry) State(id storage.Identifier) (State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.live[id]
	if !ok {
		return State{}, false
	}
	return *st, true
}
