// Package quest tracks quest progress through the day loop.
package quest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/pixil98/go-timeloop/internal/event"
	"github.com/pixil98/go-timeloop/internal/knowledge"
	"github.com/pixil98/go-timeloop/internal/storage"
)

var (
	ErrUnknownQuest     = errors.New("unknown quest")
	ErrUnknownObjective = errors.New("unknown objective")
	ErrInvalidStatus    = errors.New("invalid quest status")
)

// Key is the knowledge key holding the progress of a persistent quest.
func Key(id storage.Identifier) string {
	return "quest_" + id.String()
}

// Progress is the state of one quest.
type Progress struct {
	Status Status               `json:"status"`
	Done   []storage.Identifier `json:"done,omitempty"`
}

func (p Progress) clone() Progress {
	return Progress{Status: p.Status, Done: slices.Clone(p.Done)}
}

// Log holds today's progress for every quest.
type Log struct {
	defs storage.Storer[*Quest]
	know *knowledge.Store
	pub  event.Publisher

	mu   sync.RWMutex
	live map[storage.Identifier]*Progress
}

func NewLog(defs storage.Storer[*Quest], know *knowledge.Store, pub event.Publisher) *Log {
	return &Log{
		defs: defs,
		know: know,
		pub:  pub,
		live: map[storage.Identifier]*Progress{},
	}
}

// ResetDay rebuilds quest progress. Persistent quests resume from the knowledge
// store, everything else becomes available again with no objectives done.
func (l *Log) ResetDay(ctx context.Context) error {
	live := make(map[storage.Identifier]*Progress, len(l.defs.Ids()))
	for _, id := range l.defs.Ids() {
		p := &Progress{Status: StatusAvailable}
		if l.defs.Get(id).Persist {
			if _, err := l.know.Get(Key(id), p); err != nil {
				return fmt.Errorf("restoring quest %s: %w", id, err)
			}
		}
		live[id] = p
	}

	l.mu.Lock()
	l.live = live
	l.mu.Unlock()

	slog.DebugContext(ctx, "quests reset", "count", len(live))
	return nil
}

// Start moves an available quest into progress.
func (l *Log) Start(ctx context.Context, id storage.Identifier) error {
	return l.transition(ctx, id, func(q *Quest, p *Progress) error {
		if p.Status != StatusAvailable {
			return fmt.Errorf("%w: %s is %s", ErrInvalidStatus, id, p.Status)
		}
		p.Status = StatusInProgress
		return nil
	})
}

// CompleteObjective marks an objective of an in progress quest done. The quest
// completes when every objective is done. Completing an objective twice is not
// an error.
func (l *Log) CompleteObjective(ctx context.Context, id, objective storage.Identifier) (bool, error) {
	completed := false
	err := l.transition(ctx, id, func(q *Quest, p *Progress) error {
		if p.Status != StatusInProgress {
			return fmt.Errorf("%w: %s is %s", ErrInvalidStatus, id, p.Status)
		}
		if !q.hasObjective(objective) {
			return fmt.Errorf("%w: %s in %s", ErrUnknownObjective, objective, id)
		}
		if !slices.Contains(p.Done, objective) {
			p.Done = append(p.Done, objective)
		}
		if len(p.Done) == len(q.Objectives) {
			p.Status = StatusCompleted
			completed = true
		}
		return nil
	})
	return completed, err
}

// Fail abandons an in progress quest.
func (l *Log) Fail(ctx context.Context, id storage.Identifier) error {
	return l.transition(ctx, id, func(q *Quest, p *Progress) error {
		if p.Status != StatusInProgress {
			return fmt.Errorf("%w: %s is %s", ErrInvalidStatus, id, p.Status)
		}
		p.Status = StatusFailed
		return nil
	})
}

// transition applies fn to a copy of a quest's progress and commits it only if
// fn and any persistence succeed.
func (l *Log) transition(ctx context.Context, id storage.Identifier, fn func(*Quest, *Progress) error) error {
	q := l.defs.Get(id)
	if q == nil {
		return fmt.Errorf("%w: %s", ErrUnknownQuest, id)
	}

	l.mu.Lock()
	cur, ok := l.live[id]
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s has no progress", ErrUnknownQuest, id)
	}
	next := cur.clone()
	if err := fn(q, &next); err != nil {
		l.mu.Unlock()
		return err
	}

	facts := map[string]any{}
	if q.Persist {
		facts[Key(id)] = next
	}
	if next.Status == StatusCompleted && cur.Status != StatusCompleted && q.Reward != "" {
		facts[q.Reward] = true
	}
	if len(facts) > 0 {
		if err := l.know.AddAll(facts); err != nil {
			l.mu.Unlock()
			return fmt.Errorf("recording quest %s: %w", id, err)
		}
	}
	l.live[id] = &next
	l.mu.Unlock()

	if next.Status != cur.Status {
		slog.InfoContext(ctx, "quest updated", "quest", id, "status", next.Status)
		l.pub.Publish(event.QuestUpdated{Quest: id, Title: q.Title, Old: string(cur.Status), New: string(next.Status)})
	}
	return nil
}

func (l *Log) Get(id storage.Identifier) (Progress, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.live[id]
	if !ok {
		return Progress{}, false
	}
	return p.clone(), true
}

// Definition returns the static quest definition.
func (l *Log) Definition(id storage.Identifier) *Quest {
	return l.defs.Get(id)
}

// Active lists in progress quests by id.
func (l *Log) Active() []storage.Identifier {
	return l.withStatus(StatusInProgress)
}

// Completed lists completed quests by id.
func (l *Log) Completed() []storage.Identifier {
	return l.withStatus(StatusCompleted)
}

func (l *Log) withStatus(s Status) []storage.Identifier {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []storage.Identifier
	for id, p := range l.live {
		if p.Status == s {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}
