package knowledge

import (
	"sync"

	"github.com/pixil98/go-timeloop/internal/storage"
)

// Relationships tracks the player's standing with each character. Scores are
// only changed by interaction outcomes and are never reset by the loop.
type Relationships struct {
	mu     sync.RWMutex
	scores map[storage.Identifier]int
}

func NewRelationships() *Relationships {
	return &Relationships{scores: map[storage.Identifier]int{}}
}

// Change adjusts the score for id by delta and returns the new score.
func (r *Relationships) Change(id storage.Identifier, delta int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scores[id] += delta
	return r.scores[id]
}

// Get returns the score for id; unknown characters score zero.
func (r *Relationships) Get(id storage.Identifier) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.scores[id]
}

func (r *Relationships) Snapshot() map[storage.Identifier]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[storage.Identifier]int, len(r.scores))
	for id, v := range r.scores {
		out[id] = v
	}
	return out
}

// Restore replaces every score. Used when loading a save.
func (r *Relationships) Restore(scores map[storage.Identifier]int) {
	restored := make(map[storage.Identifier]int, len(scores))
	for id, v := range scores {
		restored[id] = v
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.scores = restored
}
