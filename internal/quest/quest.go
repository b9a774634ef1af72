package quest

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-timeloop/internal/storage"
)

// Status is where a quest stands today.
type Status string

const (
	StatusAvailable  Status = "available"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Quest is a static quest definition.
type Quest struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Giver       storage.Identifier `json:"giver,omitempty"`
	// Persist quests keep their progress across resets. Others start over
	// every day.
	Persist    bool           `json:"persist,omitempty"`
	Objectives []Objective    `json:"objectives"`
	Reward     string         `json:"reward_knowledge,omitempty"`
	Growth     map[string]int `json:"growth,omitempty"`
}

type Objective struct {
	Id          storage.Identifier `json:"id"`
	Description string             `json:"description"`
}

func (q *Quest) Validate() error {
	el := errors.NewErrorList()

	if q.Title == "" {
		el.Add(fmt.Errorf("title is required"))
	}
	if len(q.Objectives) == 0 {
		el.Add(fmt.Errorf("at least one objective is required"))
	}

	seen := map[storage.Identifier]bool{}
	for i, o := range q.Objectives {
		if o.Id == "" {
			el.Add(fmt.Errorf("objective %d: id is required", i))
			continue
		}
		if seen[o.Id] {
			el.Add(fmt.Errorf("objective %d: duplicate id %s", i, o.Id))
		}
		seen[o.Id] = true
	}

	for area, n := range q.Growth {
		if n <= 0 {
			el.Add(fmt.Errorf("growth %s must be positive", area))
		}
	}

	return el.Err()
}

func (q *Quest) hasObjective(id storage.Identifier) bool {
	for _, o := range q.Objectives {
		if o.Id == id {
			return true
		}
	}
	return false
}
