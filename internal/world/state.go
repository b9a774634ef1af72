package world

import (
	"sort"

	"github.com/pixil98/go-timeloop/internal/storage"
)

type ObjectState struct {
	State        string `json:"state"`
	Interactable bool   `json:"interactable"`
}

// LocationState is the per-day mutable state of a location. It is discarded
// at every reset.
type LocationState struct {
	Discovered bool                               `json:"discovered"`
	Locked     bool                               `json:"locked"`
	Flags      map[string]bool                    `json:"flags"`
	Objects    map[storage.Identifier]ObjectState `json:"objects"`
	Occupants  map[storage.Identifier]struct{}    `json:"-"`
}

// newState builds the default state of a location as of hour.
func newState(def *Location, hour int) *LocationState {
	st := &LocationState{
		Discovered: !def.Hidden,
		Locked:     def.Locked,
		Flags:      make(map[string]bool, len(def.Flags)),
		Objects:    make(map[storage.Identifier]ObjectState, len(def.Objects)),
		Occupants:  map[storage.Identifier]struct{}{},
	}
	for _, f := range def.Flags {
		st.Flags[f] = true
	}
	for id, o := range def.Objects {
		st.Objects[id] = ObjectState{State: o.stateAt(hour), Interactable: o.Interactable}
	}
	return st
}

func (s *LocationState) clone() LocationState {
	c := LocationState{
		Discovered: s.Discovered,
		Locked:     s.Locked,
		Flags:      make(map[string]bool, len(s.Flags)),
		Objects:    make(map[storage.Identifier]ObjectState, len(s.Objects)),
		Occupants:  make(map[storage.Identifier]struct{}, len(s.Occupants)),
	}
	for k, v := range s.Flags {
		c.Flags[k] = v
	}
	for k, v := range s.Objects {
		c.Objects[k] = v
	}
	for k := range s.Occupants {
		c.Occupants[k] = struct{}{}
	}
	return c
}

func (s *LocationState) occupantList() []storage.Identifier {
	out := make([]storage.Identifier, 0, len(s.Occupants))
	for id := range s.Occupants {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ObjectView describes an object for presentation.
type ObjectView struct {
	Id           storage.Identifier `json:"id"`
	Name         string             `json:"name"`
	State        string             `json:"state"`
	Interactable bool               `json:"interactable"`
}

type ConnectionView struct {
	Id   storage.Identifier `json:"id"`
	Name string             `json:"name"`
}

// LocationView is a read only snapshot of a location.
type LocationView struct {
	Id          storage.Identifier   `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Open        bool                 `json:"open"`
	Discovered  bool                 `json:"discovered"`
	Locked      bool                 `json:"locked"`
	Objects     []ObjectView         `json:"objects"`
	Occupants   []storage.Identifier `json:"occupants"`
	Connections []ConnectionView     `json:"connections"`
}
