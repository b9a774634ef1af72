package world

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/pixil98/go-timeloop/internal/display"
	"github.com/pixil98/go-timeloop/internal/event"
	"github.com/pixil98/go-timeloop/internal/storage"
)

const defaultMissing = "Something is missing."

// Outcome is the result of interacting with an object.
type Outcome struct {
	Success   bool               `json:"success"`
	Message   string             `json:"message"`
	Object    storage.Identifier `json:"object"`
	OldState  string             `json:"old_state"`
	NewState  string             `json:"new_state"`
	Knowledge string             `json:"knowledge,omitempty"`
	Item      storage.Identifier `json:"item,omitempty"`
	Growth    map[string]int     `json:"growth,omitempty"`
	Discovery *event.Discovery   `json:"discovery,omitempty"`
}

// messageData is what interaction message templates see.
type messageData struct {
	Object   string
	State    string
	Location string
	Day      int
	Hour     int
}

// Interact resolves an action against an object in a location. The outcome
// depends only on the object, its current state, persistent knowledge and the
// items the player holds.
func (r *Registry) Interact(ctx context.Context, loc, objId storage.Identifier, holder KeyHolder) (*Outcome, error) {
	def := r.defs.Get(loc)
	if def == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLocation, loc)
	}

	r.mu.Lock()
	out, disc, err := r.interact(loc, def, objId, holder)
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "object interaction", "location", loc, "object", objId, "success", out.Success)
	if disc != nil {
		slog.InfoContext(ctx, "location discovered", "location", disc.Location)
		r.pub.Publish(*disc)
	}
	return out, nil
}

// interact evaluates and applies the first matching rule. Callers hold mu.
func (r *Registry) interact(loc storage.Identifier, def *Location, objId storage.Identifier, holder KeyHolder) (*Outcome, *event.Discovery, error) {
	st := r.live[loc]
	if st == nil {
		return nil, nil, fmt.Errorf("%w: %q has no state", ErrInvalidLocation, loc)
	}
	obj, ok := st.Objects[objId]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q in %s", ErrUnknownObject, objId, loc)
	}
	if !obj.Interactable {
		return nil, nil, fmt.Errorf("%w: %q", ErrNotInteractable, objId)
	}

	data := messageData{
		Object:   def.objectName(objId),
		State:    obj.State,
		Location: def.Name,
		Day:      r.day,
		Hour:     r.hour,
	}

	var rule *Rule
	for i := range def.Rules {
		if def.Rules[i].matches(objId, obj.State) {
			rule = &def.Rules[i]
			break
		}
	}
	if rule == nil {
		return &Outcome{
			Success:  true,
			Message:  fmt.Sprintf("You examine the %s.", data.Object),
			Object:   objId,
			OldState: obj.State,
			NewState: obj.State,
		}, nil, nil
	}

	if !r.satisfied(rule, holder) {
		tmpl := rule.Missing
		if tmpl == "" {
			tmpl = defaultMissing
		}
		msg, err := display.ExpandTemplate(tmpl, data)
		if err != nil {
			return nil, nil, fmt.Errorf("rendering %s message: %w", objId, err)
		}
		return &Outcome{Success: false, Message: msg, Object: objId, OldState: obj.State, NewState: obj.State}, nil, nil
	}

	oldState := obj.State
	newState := obj.State
	if rule.SetState != "" {
		newState = rule.SetState
	}
	data.State = newState

	msg, err := display.ExpandTemplate(rule.Message, data)
	if err != nil {
		return nil, nil, fmt.Errorf("rendering %s message: %w", objId, err)
	}

	if rule.AddKnowledge != "" {
		if err := r.know.Add(rule.AddKnowledge, true); err != nil {
			return nil, nil, fmt.Errorf("recording %s: %w", rule.AddKnowledge, err)
		}
	}

	var disc *event.Discovery
	if rule.Discovery != "" {
		disc, err = r.discover(rule.Discovery)
		if err != nil {
			return nil, nil, err
		}
	}

	obj.State = newState
	st.Objects[objId] = obj
	if rule.SetFlag != "" {
		st.Flags[rule.SetFlag] = true
	}

	return &Outcome{
		Success:   true,
		Message:   msg,
		Object:    objId,
		OldState:  oldState,
		NewState:  newState,
		Knowledge: rule.AddKnowledge,
		Item:      rule.GiveItem,
		Growth:    maps.Clone(rule.Growth),
		Discovery: disc,
	}, disc, nil
}

func (r *Registry) satisfied(rule *Rule, holder KeyHolder) bool {
	if rule.Requires != "" && !r.know.Flag(rule.Requires) {
		return false
	}
	if rule.RequiresItem != "" && (holder == nil || !holder.HasItem(rule.RequiresItem)) {
		return false
	}
	return true
}
