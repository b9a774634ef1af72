package world

import (
	"errors"
	"fmt"

	"github.com/pixil98/go-timeloop/internal/storage"
)

var (
	ErrInvalidLocation = errors.New("invalid location")
	ErrNotConnected    = errors.New("not connected")
	ErrNotAvailable    = errors.New("not available")
	ErrAccessDenied    = errors.New("access denied")

	ErrUnknownObject   = errors.New("unknown object")
	ErrNotInteractable = errors.New("object is not interactable")
)

// Reason classifies why a move was refused.
type Reason string

const (
	ReasonInvalidLocation Reason = "invalid-location"
	ReasonNotConnected    Reason = "not-connected"
	ReasonNotAvailable    Reason = "not-available"
	ReasonAccessDenied    Reason = "access-denied"
)

func (r Reason) sentinel() error {
	switch r {
	case ReasonInvalidLocation:
		return ErrInvalidLocation
	case ReasonNotConnected:
		return ErrNotConnected
	case ReasonNotAvailable:
		return ErrNotAvailable
	case ReasonAccessDenied:
		return ErrAccessDenied
	}
	return nil
}

// MoveError is returned when a move is refused. Detail is a message suitable
// for showing to the player.
type MoveError struct {
	From   storage.Identifier
	To     storage.Identifier
	Reason Reason
	Detail string
}

func (e *MoveError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("moving to %s: %s: %s", e.To, e.Reason, e.Detail)
	}
	return fmt.Sprintf("moving to %s: %s", e.To, e.Reason)
}

func (e *MoveError) Is(target error) bool {
	return target != nil && target == e.Reason.sentinel()
}
