// Package schedule resolves an entity's daily routine at a given hour.
//
// A schedule is a list of entries sorted by trigger hour. The entry in effect at
// hour h is the last one whose trigger hour is <= h, so the resolved value is
// constant between two trigger points.
package schedule

import (
	"fmt"
	"sort"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-timeloop/internal/storage"
)

// IdleActivity is returned when no entry has triggered yet.
const IdleActivity = "idle"

// Step is anything that takes effect at a trigger hour.
type Step interface {
	TriggerHour() int
}

// Entry places an entity at a location doing an activity from Hour onwards.
type Entry struct {
	Hour     int                `json:"hour"`
	Location storage.Identifier `json:"location"`
	Activity string             `json:"activity"`
}

func (e Entry) TriggerHour() int { return e.Hour }

// Placement is the outcome of resolving a schedule.
type Placement struct {
	Location storage.Identifier `json:"location"`
	Activity string             `json:"activity"`
}

// Schedule is an ordered daily routine.
type Schedule []Entry

// Validate checks hours are within a day and strictly ascending.
func (s Schedule) Validate() error {
	el := errors.NewErrorList()
	for i, e := range s {
		if e.Hour < 0 || e.Hour > 24 {
			el.Add(fmt.Errorf("entry %d: hour %d out of range", i, e.Hour))
		}
		if e.Location == "" {
			el.Add(fmt.Errorf("entry %d: location is required", i))
		}
		if i > 0 && e.Hour <= s[i-1].Hour {
			el.Add(fmt.Errorf("entry %d: hour %d is not after %d", i, e.Hour, s[i-1].Hour))
		}
	}
	return el.Err()
}

// Sorted returns a copy of s ordered by trigger hour.
func (s Schedule) Sorted() Schedule {
	out := make(Schedule, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out
}

// Resolve returns where the schedule places its entity at hour. Before the first
// trigger the entity is idle at its home location.
func Resolve(s Schedule, hour int, home storage.Identifier) Placement {
	e, ok := Find(s, hour)
	if !ok {
		return Placement{Location: home, Activity: IdleActivity}
	}
	return Placement{Location: e.Location, Activity: e.Activity}
}

// Find returns the last step whose trigger hour is <= hour. Steps must be
// sorted ascending.
func Find[S ~[]E, E Step](steps S, hour int) (E, bool) {
	for i := len(steps) - 1; i >= 0; i-- {
		if steps[i].TriggerHour() <= hour {
			return steps[i], true
		}
	}
	var zero E
	return zero, false
}
