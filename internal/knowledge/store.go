// Package knowledge holds the state that survives a day reset: facts the player
// has learned and their standing with each character.
package knowledge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Store maps opaque keys to JSON encoded facts. Keys are only ever added or
// overwritten; nothing in the simulation removes them.
type Store struct {
	mu    sync.RWMutex
	facts map[string]json.RawMessage
}

func NewStore() *Store {
	return &Store{facts: map[string]json.RawMessage{}}
}

// Add stores v under key after marshalling it to JSON.
func (s *Store) Add(key string, v any) error {
	raw, err := encode(key, v)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.facts[key] = raw
	return nil
}

// AddAll stores every fact or none of them.
func (s *Store) AddAll(facts map[string]any) error {
	encoded := make(map[string]json.RawMessage, len(facts))
	for k, v := range facts {
		raw, err := encode(k, v)
		if err != nil {
			return err
		}
		encoded[k] = raw
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, raw := range encoded {
		s.facts[k] = raw
	}
	return nil
}

func encode(key string, v any) (json.RawMessage, error) {
	if key == "" {
		return nil, fmt.Errorf("knowledge key is required")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal knowledge %q: %w", key, err)
	}
	return json.RawMessage(b), nil
}

// Get unmarshals the fact at key into out.
// Returns (found=false, nil) if not present.
func (s *Store) Get(key string, out any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.facts[key]
	s.mu.RUnlock()

	if !ok || len(raw) == 0 {
		return false, nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("unmarshal knowledge %q: %w", key, err)
	}
	return true, nil
}

// Has reports whether key has ever been recorded.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.facts[key]
	return ok
}

// Flag reports whether the fact at key is set to a truthy value: anything
// other than false, null, zero or the empty string.
func (s *Store) Flag(key string) bool {
	s.mu.RLock()
	raw, ok := s.facts[key]
	s.mu.RUnlock()
	if !ok {
		return false
	}

	switch string(bytes.TrimSpace(raw)) {
	case "", "false", "null", "0", `""`:
		return false
	}
	return true
}

// Int returns the numeric fact at key, or zero when it is missing or not a number.
func (s *Store) Int(key string) int {
	var n float64
	found, err := s.Get(key, &n)
	if !found || err != nil {
		return 0
	}
	return int(n)
}

// Keys returns every recorded key in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.facts))
	for k := range s.facts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.facts)
}

// Snapshot returns a copy of every fact.
func (s *Store) Snapshot() map[string]json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]json.RawMessage, len(s.facts))
	for k, raw := range s.facts {
		out[k] = append(json.RawMessage(nil), raw...)
	}
	return out
}

// Restore replaces the store contents with facts. It is only used when a save
// is loaded, before the simulation starts ticking.
func (s *Store) Restore(facts map[string]json.RawMessage) error {
	restored := make(map[string]json.RawMessage, len(facts))
	for k, raw := range facts {
		if k == "" {
			return fmt.Errorf("knowledge key is required")
		}
		if !json.Valid(raw) {
			return fmt.Errorf("knowledge %q is not valid json", k)
		}
		restored[k] = append(json.RawMessage(nil), raw...)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.facts = restored
	return nil
}
