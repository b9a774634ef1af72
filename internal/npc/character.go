package npc

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-timeloop/internal/schedule"
	"github.com/pixil98/go-timeloop/internal/storage"
)

const DefaultMood = "neutral"

// Character is the static definition of a non player character.
type Character struct {
	Name        string             `json:"name"`
	Title       string             `json:"title,omitempty"`
	Description string             `json:"description"`
	Location    storage.Identifier `json:"location"`
	Mood        string             `json:"mood,omitempty"`
	Personality []string           `json:"personality,omitempty"`
	// Relationships describes how this character sees the rest of the town.
	Relationships map[storage.Identifier]string `json:"relationships,omitempty"`
	Secrets       []string                      `json:"secrets,omitempty"`
	Schedule      schedule.Schedule             `json:"schedule"`
	Dialogue      storage.Identifier            `json:"dialogue,omitempty"`
	Quests        []storage.Identifier          `json:"quests,omitempty"`
	SpecialEvents []SpecialEvent                `json:"special_events,omitempty"`
	Moods         []MoodRule                    `json:"moods,omitempty"`
}

// SpecialEvent fires at Hour when the character is at Location. Each character
// has at most one special event per day.
type SpecialEvent struct {
	Hour        int                `json:"hour"`
	Location    storage.Identifier `json:"location,omitempty"`
	Type        string             `json:"type"`
	Description string             `json:"description"`
	Requires    string             `json:"requires,omitempty"`
}

// MoodRule sets the starting mood of a day. Rules are checked in order and the
// last one that matches wins.
type MoodRule struct {
	Knowledge       string `json:"knowledge,omitempty"`
	MinRelationship *int   `json:"min_relationship,omitempty"`
	Mood            string `json:"mood"`
}

func (c *Character) Validate() error {
	el := errors.NewErrorList()

	if c.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}
	if c.Location == "" {
		el.Add(fmt.Errorf("location is required"))
	}
	if err := c.Schedule.Validate(); err != nil {
		el.Add(fmt.Errorf("schedule: %w", err))
	}

	for i, ev := range c.SpecialEvents {
		if ev.Type == "" {
			el.Add(fmt.Errorf("special event %d: type is required", i))
		}
		if ev.Hour < 0 || ev.Hour > 23 {
			el.Add(fmt.Errorf("special event %d: hour %d out of range", i, ev.Hour))
		}
	}

	for i, m := range c.Moods {
		if m.Mood == "" {
			el.Add(fmt.Errorf("mood rule %d: mood is required", i))
		}
		if m.Knowledge == "" && m.MinRelationship == nil {
			el.Add(fmt.Errorf("mood rule %d: knowledge or min_relationship is required", i))
		}
	}

	return el.Err()
}

func (c *Character) startMood() string {
	if c.Mood != "" {
		return c.Mood
	}
	return DefaultMood
}
