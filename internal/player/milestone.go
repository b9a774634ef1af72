package player

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// Area is a dimension of the player's personal growth.
type Area string

const (
	Empathy         Area = "empathy"
	CommunitySpirit Area = "community_spirit"
	Patience        Area = "patience"
	Humility        Area = "humility"
)

var Areas = []Area{Empathy, CommunitySpirit, Patience, Humility}

func (a Area) Valid() bool {
	switch a {
	case Empathy, CommunitySpirit, Patience, Humility:
		return true
	}
	return false
}

// Milestone is reached once every required growth counter meets its threshold.
// Reaching it can swap one of the player's traits for another.
type Milestone struct {
	Title        string       `json:"title"`
	Requires     map[Area]int `json:"requires"`
	ReplaceTrait string       `json:"replace_trait,omitempty"`
	WithTrait    string       `json:"with_trait,omitempty"`
	Knowledge    string       `json:"knowledge,omitempty"`
	Message      string       `json:"message"`
}

func (m *Milestone) Validate() error {
	el := errors.NewErrorList()

	if m.Title == "" {
		el.Add(fmt.Errorf("title is required"))
	}
	if len(m.Requires) == 0 {
		el.Add(fmt.Errorf("at least one growth requirement is required"))
	}
	for a, n := range m.Requires {
		if !a.Valid() {
			el.Add(fmt.Errorf("unknown growth area %q", a))
		}
		if n <= 0 {
			el.Add(fmt.Errorf("requirement for %s must be positive", a))
		}
	}
	if m.ReplaceTrait != "" && m.WithTrait == "" {
		el.Add(fmt.Errorf("replace_trait requires with_trait"))
	}

	return el.Err()
}
