// Package save persists the state that survives between sessions.
package save

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goerrors "github.com/pixil98/go-errors"
	"github.com/pixil98/go-timeloop/internal/player"
	"github.com/pixil98/go-timeloop/internal/storage"
)

const Version = 1

var (
	ErrCorruptSave = errors.New("corrupt save")
	ErrNotFound    = errors.New("save not found")
)

// State is everything a save restores. Nothing else is persisted.
type State struct {
	Day            int                        `json:"day"`
	TimeOfDay      int                        `json:"time_of_day"`
	Minutes        int                        `json:"minutes"`
	KnowledgeBase  map[string]json.RawMessage `json:"knowledge_base"`
	Relationships  map[storage.Identifier]int `json:"relationships"`
	Inventory      []player.Item              `json:"inventory"`
	PlayerLocation storage.Identifier         `json:"player_location"`
}

// Snapshot wraps a State with versioning information.
type Snapshot struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`
	State   State     `json:"state"`
}

func (s *Snapshot) Validate() error {
	el := goerrors.NewErrorList()

	if s.Version != Version {
		el.Add(fmt.Errorf("unsupported version %d", s.Version))
	}

	st := s.State
	if st.Day < 1 {
		el.Add(fmt.Errorf("day %d must be at least 1", st.Day))
	}
	if st.TimeOfDay < 0 || st.TimeOfDay > 23 {
		el.Add(fmt.Errorf("time_of_day %d out of range", st.TimeOfDay))
	}
	if st.Minutes < 0 || st.Minutes > 59 {
		el.Add(fmt.Errorf("minutes %d out of range", st.Minutes))
	}
	if st.PlayerLocation == "" {
		el.Add(fmt.Errorf("player_location is required"))
	}
	for k, v := range st.KnowledgeBase {
		if k == "" {
			el.Add(fmt.Errorf("knowledge key is required"))
		}
		if !json.Valid(v) {
			el.Add(fmt.Errorf("knowledge %q is not valid json", k))
		}
	}
	seen := map[storage.Identifier]bool{}
	for i, it := range st.Inventory {
		if it.Id == "" {
			el.Add(fmt.Errorf("inventory item %d: id is required", i))
		} else if seen[it.Id] {
			el.Add(fmt.Errorf("inventory item %d: duplicate id %s", i, it.Id))
		}
		seen[it.Id] = true
	}

	return el.Err()
}

// Encode validates and serialises a snapshot.
func Encode(s *Snapshot) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validating save: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling save: %w", err)
	}
	return data, nil
}

// Decode parses and validates a snapshot. Any problem is reported as
// ErrCorruptSave.
func Decode(data []byte) (*Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var s Snapshot
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSave, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data", ErrCorruptSave)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptSave, err)
	}
	if s.State.KnowledgeBase == nil {
		s.State.KnowledgeBase = map[string]json.RawMessage{}
	}
	if s.State.Relationships == nil {
		s.State.Relationships = map[storage.Identifier]int{}
	}
	return &s, nil
}
