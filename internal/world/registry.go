// Package world holds the location registry: static location definitions and
// the per-day state rebuilt from them.
package world

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/pixil98/go-timeloop/internal/event"
	"github.com/pixil98/go-timeloop/internal/knowledge"
	"github.com/pixil98/go-timeloop/internal/schedule"
	"github.com/pixil98/go-timeloop/internal/storage"
)

// KeyHolder reports whether the player carries an item.
type KeyHolder interface {
	HasItem(storage.Identifier) bool
}

type Registry struct {
	defs storage.Storer[*Location]
	know *knowledge.Store
	pub  event.Publisher

	mu      sync.RWMutex
	live    map[storage.Identifier]*LocationState
	current storage.Identifier
	day     int
	hour    int
}

func NewRegistry(defs storage.Storer[*Location], know *knowledge.Store, pub event.Publisher) *Registry {
	r := &Registry{
		defs: defs,
		know: know,
		pub:  pub,
		live: map[storage.Identifier]*LocationState{},
	}
	return r
}

// DiscoveryKey is the knowledge key that records a location as discovered.
func DiscoveryKey(id storage.Identifier, def *Location) string {
	if def.DiscoveryKey != "" {
		return def.DiscoveryKey
	}
	return "discovered_" + id.String()
}

// ResetDay replaces all live state with fresh copies of the templates as of
// hour, then replays knowledge patches. Locations are patched in id order and
// each location's patches in declaration order.
func (r *Registry) ResetDay(ctx context.Context, day, hour int) {
	live := make(map[storage.Identifier]*LocationState, len(r.defs.Ids()))
	for _, id := range r.defs.Ids() {
		def := r.defs.Get(id)
		st := newState(def, hour)
		if r.know.Flag(DiscoveryKey(id, def)) {
			st.Discovered = true
		}
		for _, p := range def.Patches {
			if !r.know.Flag(p.Knowledge) {
				continue
			}
			applyPatch(st, p)
		}
		live[id] = st
	}

	r.mu.Lock()
	r.live = live
	r.day = day
	r.hour = hour
	r.mu.Unlock()

	slog.DebugContext(ctx, "locations reset", "day", day, "count", len(live))
}

func applyPatch(st *LocationState, p Patch) {
	if p.Object != "" {
		o := st.Objects[p.Object]
		o.State = p.State
		st.Objects[p.Object] = o
	}
	if p.Discover {
		st.Discovered = true
	}
	if p.Unlock {
		st.Locked = false
	}
	if p.Flag != "" {
		st.Flags[p.Flag] = true
	}
}

// OnHourChanged applies object schedule phases that start at hour.
func (r *Registry) OnHourChanged(ctx context.Context, hour int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.hour = hour
	for id, st := range r.live {
		def := r.defs.Get(id)
		for objId, o := range def.Objects {
			p, ok := schedule.Find(o.Schedule, hour)
			if !ok || p.Hour != hour {
				continue
			}
			obj := st.Objects[objId]
			obj.State = p.State
			st.Objects[objId] = obj
		}
	}
}

// IsAvailable reports whether a location is open at hour.
func (r *Registry) IsAvailable(id storage.Identifier, hour int) bool {
	def := r.defs.Get(id)
	if def == nil {
		return false
	}
	return def.Hours == nil || def.Hours.Contains(hour)
}

// CheckAccess reports whether the player may enter a location.
func (r *Registry) CheckAccess(id storage.Identifier, holder KeyHolder) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.denial(id, holder) == ""
}

// denial explains why access is refused, or returns "". Callers hold mu.
func (r *Registry) denial(id storage.Identifier, holder KeyHolder) string {
	def := r.defs.Get(id)
	st := r.live[id]
	if def == nil || st == nil {
		return "there is no such place"
	}

	if st.Locked {
		if def.KeyRequired == "" || holder == nil || !holder.HasItem(def.KeyRequired) {
			return fmt.Sprintf("%s is locked", def.Name)
		}
	}

	if !st.Discovered && def.Precondition != nil {
		pre := r.live[def.Precondition.Location]
		if pre == nil || !pre.Flags[def.Precondition.Flag] {
			return fmt.Sprintf("you don't know the way to %s yet", def.Name)
		}
	}

	return ""
}

func (r *Registry) Current() storage.Identifier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Move takes the player from one location to a connected one. When from is
// empty the connection check is skipped. A refused move returns a *MoveError
// and leaves state untouched.
func (r *Registry) Move(ctx context.Context, from, to storage.Identifier, holder KeyHolder) error {
	r.mu.Lock()

	toDef := r.defs.Get(to)
	if toDef == nil || r.live[to] == nil {
		r.mu.Unlock()
		return &MoveError{From: from, To: to, Reason: ReasonInvalidLocation, Detail: "there is no such place"}
	}

	if from != "" {
		fromDef := r.defs.Get(from)
		if fromDef == nil {
			r.mu.Unlock()
			return &MoveError{From: from, To: to, Reason: ReasonInvalidLocation, Detail: "you are nowhere"}
		}
		if !slices.Contains(fromDef.Connections, to) {
			r.mu.Unlock()
			return &MoveError{From: from, To: to, Reason: ReasonNotConnected,
				Detail: fmt.Sprintf("you can't get to %s from %s", toDef.Name, fromDef.Name)}
		}
	}

	if !r.IsAvailable(to, r.hour) {
		r.mu.Unlock()
		return &MoveError{From: from, To: to, Reason: ReasonNotAvailable,
			Detail: fmt.Sprintf("%s is closed at this hour", toDef.Name)}
	}

	if d := r.denial(to, holder); d != "" {
		r.mu.Unlock()
		return &MoveError{From: from, To: to, Reason: ReasonAccessDenied, Detail: d}
	}

	disc, err := r.discover(to)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	r.current = to
	r.mu.Unlock()

	slog.DebugContext(ctx, "player moved", "from", from, "to", to)
	r.pub.Publish(event.LocationChanged{From: from, To: to, Name: toDef.Name})
	if disc != nil {
		slog.InfoContext(ctx, "location discovered", "location", to)
		r.pub.Publish(*disc)
	}
	return nil
}

// discover marks a location discovered and records it permanently. It returns
// nil if the location was already known. Callers hold mu.
func (r *Registry) discover(id storage.Identifier) (*event.Discovery, error) {
	def := r.defs.Get(id)
	st := r.live[id]
	if def == nil || st == nil || st.Discovered {
		return nil, nil
	}

	key := DiscoveryKey(id, def)
	if err := r.know.Add(key, true); err != nil {
		return nil, fmt.Errorf("recording discovery of %s: %w", id, err)
	}
	st.Discovered = true
	return &event.Discovery{Location: id, Name: def.Name, Key: key}, nil
}

// Place puts the player at a location without any movement checks.
func (r *Registry) Place(ctx context.Context, id storage.Identifier) error {
	def := r.defs.Get(id)
	if def == nil {
		return &MoveError{To: id, Reason: ReasonInvalidLocation, Detail: "there is no such place"}
	}

	r.mu.Lock()
	from := r.current
	r.current = id
	r.mu.Unlock()

	r.pub.Publish(event.LocationChanged{From: from, To: id, Name: def.Name})
	return nil
}

// Name returns a location's display name, or "" if it does not exist.
func (r *Registry) Name(id storage.Identifier) string {
	def := r.defs.Get(id)
	if def == nil {
		return ""
	}
	return def.Name
}

// Arrive adds a character to a location's occupants.
func (r *Registry) Arrive(loc, who storage.Identifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.live[loc]; ok {
		st.Occupants[who] = struct{}{}
	}
}

// Depart removes a character from a location's occupants.
func (r *Registry) Depart(loc, who storage.Identifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.live[loc]; ok {
		delete(st.Occupants, who)
	}
}

func (r *Registry) Occupants(loc storage.Identifier) []storage.Identifier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.live[loc]
	if !ok {
		return nil
	}
	return st.occupantList()
}

// State returns a copy of a location's live state.
func (r *Registry) State(id storage.Identifier) (LocationState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.live[id]
	if !ok {
		return LocationState{}, false
	}
	return st.clone(), true
}

// AvailableConnections lists the neighbours of a location the player could
// move to right now.
func (r *Registry) AvailableConnections(id storage.Identifier, holder KeyHolder) []ConnectionView {
	def := r.defs.Get(id)
	if def == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []ConnectionView
	for _, c := range def.Connections {
		if !r.IsAvailable(c, r.hour) || r.denial(c, holder) != "" {
			continue
		}
		out = append(out, ConnectionView{Id: c, Name: r.defs.Get(c).Name})
	}
	return out
}

// GetCurrentLocationData describes the player's current location.
func (r *Registry) GetCurrentLocationData(holder KeyHolder) (LocationView, error) {
	id := r.Current()
	def := r.defs.Get(id)
	if def == nil {
		return LocationView{}, fmt.Errorf("%w: %q", ErrInvalidLocation, id)
	}

	r.mu.RLock()
	st := r.live[id]
	if st == nil {
		r.mu.RUnlock()
		return LocationView{}, fmt.Errorf("%w: %q has no state", ErrInvalidLocation, id)
	}
	view := LocationView{
		Id:          id,
		Name:        def.Name,
		Description: def.Description,
		Open:        r.IsAvailable(id, r.hour),
		Discovered:  st.Discovered,
		Locked:      st.Locked,
		Occupants:   st.occupantList(),
	}
	for _, objId := range sortedKeys(st.Objects) {
		obj := st.Objects[objId]
		view.Objects = append(view.Objects, ObjectView{
			Id:           objId,
			Name:         def.objectName(objId),
			State:        obj.State,
			Interactable: obj.Interactable,
		})
	}
	r.mu.RUnlock()

	view.Connections = r.AvailableConnections(id, holder)
	return view, nil
}

func sortedKeys[V any](m map[storage.Identifier]V) []storage.Identifier {
	keys := make([]storage.Identifier, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
