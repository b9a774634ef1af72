package save

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

var slotPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Store keeps snapshots in named slots.
type Store interface {
	Save(ctx context.Context, slot string, s *Snapshot) error
	Load(ctx context.Context, slot string) (*Snapshot, error)
	List(ctx context.Context) ([]SlotInfo, error)
}

type SlotInfo struct {
	Slot    string    `json:"slot"`
	Day     int       `json:"day"`
	SavedAt time.Time `json:"saved_at"`
}

// ValidateSlot reports whether slot is a usable slot name.
func ValidateSlot(slot string) error {
	if !slotPattern.MatchString(slot) {
		return fmt.Errorf("invalid save slot %q", slot)
	}
	return nil
}
