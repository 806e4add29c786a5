// Package inventory provides the in-process slot-indexed item store and the
// borrowed slot handles the editor mutates through. The editor never holds a
// reference into an inventory; it borrows a handle per call and every write
// is conditional on the slot still matching the expectation captured at
// validation time.
package inventory

import (
	"fmt"

	"itemforge/server/internal/host"
	"itemforge/server/internal/item"
)

// Inventory is a fixed-size slot array. Access is single-threaded by
// contract: the host delivers one event at a time.
type Inventory struct {
	slots []item.Item
}

// New creates an inventory with the given number of slots.
func New(size int) *Inventory {
	if size < 0 {
		size = 0
	}
	return &Inventory{slots: make([]item.Item, size)}
}

// Size returns the slot count.
func (inv *Inventory) Size() int {
	return len(inv.slots)
}

// Get returns a clone of the item at index. ok is false for empty slots and
// out-of-range indexes.
func (inv *Inventory) Get(index int) (item.Item, bool) {
	if index < 0 || index >= len(inv.slots) {
		return item.Item{}, false
	}
	it := inv.slots[index]
	if it.Empty() {
		return item.Item{}, false
	}
	return it.Clone(), true
}

// Set stores a clone of it at index.
func (inv *Inventory) Set(index int, it item.Item) error {
	if index < 0 || index >= len(inv.slots) {
		return fmt.Errorf("inventory: slot %d out of range", index)
	}
	inv.slots[index] = it.Clone()
	return nil
}

// Clear empties the slot at index.
func (inv *Inventory) Clear(index int) {
	if index >= 0 && index < len(inv.slots) {
		inv.slots[index] = item.Item{}
	}
}

// FirstEmpty returns the lowest empty slot index, or -1 when full.
func (inv *Inventory) FirstEmpty() int {
	for i, it := range inv.slots {
		if it.Empty() {
			return i
		}
	}
	return -1
}

// Add places a clone of it into the first empty slot. Returns the slot used
// and false when the inventory is full.
func (inv *Inventory) Add(it item.Item) (int, bool) {
	slot := inv.FirstEmpty()
	if slot < 0 {
		return -1, false
	}
	inv.slots[slot] = it.Clone()
	return slot, true
}

// Handle borrows the slot at index.
func (inv *Inventory) Handle(index int) host.SlotHandle {
	return slotHandle{inv: inv, index: index}
}

type slotHandle struct {
	inv   *Inventory
	index int
}

func (h slotHandle) ReadCurrent() (item.Item, bool) {
	return h.inv.Get(h.index)
}

func (h slotHandle) WriteIfUnchanged(expect item.Snapshot, updated item.Item) error {
	live, ok := h.inv.Get(h.index)
	if !ok || !expect.Matches(live) {
		return host.ErrSlotChanged
	}
	return h.inv.Set(h.index, updated)
}
