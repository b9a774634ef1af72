package npc

import "github.com/pixil98/go-timeloop/internal/storage"

// State is the per-day mutable state of a character.
type State struct {
	Location              storage.Identifier `json:"location"`
	Activity              string             `json:"activity"`
	Mood                  string             `json:"mood"`
	InteractedToday       bool               `json:"interacted_today"`
	RevealsAvailable      bool               `json:"reveals_available"`
	SpecialEventTriggered bool               `json:"special_event_triggered"`
	Interaction           string             `json:"interaction,omitempty"`
}

// Interaction describes a conversation that has just started.
type Interaction struct {
	Id           string             `json:"id"`
	Character    storage.Identifier `json:"character"`
	Name         string             `json:"name"`
	Title        string             `json:"title,omitempty"`
	Activity     string             `json:"activity"`
	Mood         string             `json:"mood"`
	Dialogue     storage.Identifier `json:"dialogue,omitempty"`
	Relationship int                `json:"relationship"`
	FirstToday   bool               `json:"first_today"`
}

// Summary is a short description of who is where.
type Summary struct {
	Id       storage.Identifier `json:"id"`
	Name     string             `json:"name"`
	Title    string             `json:"title,omitempty"`
	Activity string             `json:"activity"`
	Mood     string             `json:"mood"`
}

// Details describes a character. The more the player knows about them the more
// is filled in.
type Details struct {
	Id             storage.Identifier `json:"id"`
	Name           string             `json:"name"`
	Title          string             `json:"title,omitempty"`
	Description    string             `json:"description"`
	Location       storage.Identifier `json:"location"`
	Activity       string             `json:"activity"`
	Mood           string             `json:"mood"`
	Relationship   int                `json:"relationship"`
	KnowledgeLevel int                `json:"knowledge_level"`

	Personality   []string                      `json:"personality,omitempty"`
	Schedule      []ScheduleLine                `json:"schedule,omitempty"`
	Relationships map[storage.Identifier]string `json:"relationships,omitempty"`
}

type ScheduleLine struct {
	Time     string             `json:"time"`
	Location storage.Identifier `json:"location"`
	Activity string             `json:"activity"`
}
