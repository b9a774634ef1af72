package player

import (
	"fmt"
	"slices"
	"sync"

	"github.com/pixil98/go-timeloop/internal/storage"
)

// Item is something the player carries.
type Item struct {
	Id          storage.Identifier `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
}

// Inventory holds the player's items in the order they were picked up. It is
// not cleared by a day reset.
type Inventory struct {
	mu    sync.RWMutex
	items []Item
}

// NewInventory creates an inventory holding items.
func NewInventory(items ...Item) *Inventory {
	inv := &Inventory{}
	for _, it := range items {
		inv.Add(it)
	}
	return inv
}

// Add puts an item in the inventory. It returns false if an item with the same
// id is already held.
func (inv *Inventory) Add(item Item) bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if inv.indexOf(item.Id) >= 0 {
		return false
	}
	inv.items = append(inv.items, item)
	return true
}

// Remove takes an item out of the inventory. Returns false if it was not held.
func (inv *Inventory) Remove(id storage.Identifier) bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	i := inv.indexOf(id)
	if i < 0 {
		return false
	}
	inv.items = slices.Delete(inv.items, i, i+1)
	return true
}

func (inv *Inventory) Has(id storage.Identifier) bool {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.indexOf(id) >= 0
}

// HasItem lets the inventory act as a key holder for locked locations.
func (inv *Inventory) HasItem(id storage.Identifier) bool {
	return inv.Has(id)
}

// Items returns a copy of the items held.
func (inv *Inventory) Items() []Item {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return slices.Clone(inv.items)
}

// Restore replaces the contents of the inventory.
func (inv *Inventory) Restore(items []Item) error {
	seen := make(map[storage.Identifier]bool, len(items))
	for _, it := range items {
		if it.Id == "" {
			return fmt.Errorf("inventory item id is required")
		}
		if seen[it.Id] {
			return fmt.Errorf("duplicate inventory item %s", it.Id)
		}
		seen[it.Id] = true
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.items = slices.Clone(items)
	return nil
}

// indexOf finds an item by id. Callers hold mu.
func (inv *Inventory) indexOf(id storage.Identifier) int {
	return slices.IndexFunc(inv.items, func(it Item) bool { return it.Id == id })
}
