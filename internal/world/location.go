package world

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-timeloop/internal/display"
	"github.com/pixil98/go-timeloop/internal/schedule"
	"github.com/pixil98/go-timeloop/internal/storage"
)

// Location is the static definition of a place. Live state is rebuilt from it
// every day.
type Location struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Connections []storage.Identifier `json:"connections"`
	Hours       *Hours               `json:"hours,omitempty"`

	// Hidden locations start undiscovered. Once found, DiscoveryKey is written
	// to the knowledge store and they stay discovered.
	Hidden       bool          `json:"hidden,omitempty"`
	DiscoveryKey string        `json:"discovery_key,omitempty"`
	Precondition *Precondition `json:"precondition,omitempty"`

	Locked      bool               `json:"locked,omitempty"`
	KeyRequired storage.Identifier `json:"key_required,omitempty"`

	Flags   []string                       `json:"flags,omitempty"`
	Objects map[storage.Identifier]*Object `json:"objects,omitempty"`
	Patches []Patch                        `json:"patches,omitempty"`
	Rules   []Rule                         `json:"rules,omitempty"`
}

// Hours is a half open opening window [Open, Close).
type Hours struct {
	Open  int `json:"open"`
	Close int `json:"close"`
}

func (h *Hours) Contains(hour int) bool {
	return hour >= h.Open && hour < h.Close
}

// Precondition is a flag that must be set on another location before an
// undiscovered location can be entered.
type Precondition struct {
	Location storage.Identifier `json:"location"`
	Flag     string             `json:"flag"`
}

type Object struct {
	Name         string       `json:"name,omitempty"`
	State        string       `json:"state"`
	Interactable bool         `json:"interactable"`
	Schedule     []StatePhase `json:"schedule,omitempty"`
}

// StatePhase sets an object's state from Hour onwards.
type StatePhase struct {
	Hour  int    `json:"hour"`
	State string `json:"state"`
}

func (p StatePhase) TriggerHour() int { return p.Hour }

// Patch mutates live state when Knowledge is set. Patches run after every
// reset in declaration order.
type Patch struct {
	Knowledge string             `json:"knowledge"`
	Object    storage.Identifier `json:"object,omitempty"`
	State     string             `json:"state,omitempty"`
	Discover  bool               `json:"discover,omitempty"`
	Unlock    bool               `json:"unlock,omitempty"`
	Flag      string             `json:"flag,omitempty"`
}

// Rule is one row of an object's outcome table. The first rule matching the
// object and its current state wins.
type Rule struct {
	Object       storage.Identifier `json:"object"`
	WhenState    string             `json:"when_state,omitempty"`
	Requires     string             `json:"requires,omitempty"`
	RequiresItem storage.Identifier `json:"requires_item,omitempty"`
	Missing      string             `json:"missing,omitempty"`
	SetState     string             `json:"set_state,omitempty"`
	SetFlag      string             `json:"set_flag,omitempty"`
	AddKnowledge string             `json:"add_knowledge,omitempty"`
	GiveItem     storage.Identifier `json:"give_item,omitempty"`
	Discovery    storage.Identifier `json:"discovery,omitempty"`
	Growth       map[string]int     `json:"growth,omitempty"`
	Message      string             `json:"message"`
}

func (r *Rule) matches(obj storage.Identifier, state string) bool {
	return r.Object == obj && (r.WhenState == "" || r.WhenState == state)
}

func (l *Location) Validate() error {
	el := errors.NewErrorList()

	if l.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}
	if l.Hours != nil && (l.Hours.Open < 0 || l.Hours.Close > 24 || l.Hours.Open >= l.Hours.Close) {
		el.Add(fmt.Errorf("hours [%d, %d) are invalid", l.Hours.Open, l.Hours.Close))
	}
	if l.Precondition != nil && (l.Precondition.Location == "" || l.Precondition.Flag == "") {
		el.Add(fmt.Errorf("precondition requires a location and a flag"))
	}

	for id, o := range l.Objects {
		if o == nil {
			el.Add(fmt.Errorf("object %s: definition is empty", id))
			continue
		}
		for i, p := range o.Schedule {
			if i > 0 && p.Hour <= o.Schedule[i-1].Hour {
				el.Add(fmt.Errorf("object %s: schedule phase %d is not after %d", id, p.Hour, o.Schedule[i-1].Hour))
			}
		}
	}

	for i, p := range l.Patches {
		if p.Knowledge == "" {
			el.Add(fmt.Errorf("patch %d: knowledge is required", i))
		}
		if p.Object != "" {
			if _, ok := l.Objects[p.Object]; !ok {
				el.Add(fmt.Errorf("patch %d: unknown object %s", i, p.Object))
			}
			if p.State == "" {
				el.Add(fmt.Errorf("patch %d: state is required with an object", i))
			}
		}
	}

	for i, r := range l.Rules {
		if _, ok := l.Objects[r.Object]; !ok {
			el.Add(fmt.Errorf("rule %d: unknown object %s", i, r.Object))
		}
		if err := display.ParseTemplate(r.Message); err != nil {
			el.Add(fmt.Errorf("rule %d: message: %w", i, err))
		}
		if err := display.ParseTemplate(r.Missing); err != nil {
			el.Add(fmt.Errorf("rule %d: missing: %w", i, err))
		}
	}

	return el.Err()
}

// objectName is the display name of an object.
func (l *Location) objectName(id storage.Identifier) string {
	if o, ok := l.Objects[id]; ok && o.Name != "" {
		return o.Name
	}
	return display.Lower(id.String())
}

func (o *Object) stateAt(hour int) string {
	if p, ok := schedule.Find(o.Schedule, hour); ok {
		return p.State
	}
	return o.State
}
