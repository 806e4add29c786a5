package item

import (
	"sort"
	"strings"
)

// Type represents a unique identifier for an item kind.
type Type string

// Class enumerates the canonical item classes the editor cares about.
type Class string

const (
	ClassWeapon     Class = "weapon"
	ClassTool       Class = "tool"
	ClassArmor      Class = "armor"
	ClassAccessory  Class = "accessory"
	ClassConsumable Class = "consumable"
	ClassBlock      Class = "block"
	// ClassTome holds modifiers for later transfer. Tomes accept any
	// modifier and are exempt from conflict checks.
	ClassTome Class = "tome"
)

var validClasses = map[Class]struct{}{
	ClassWeapon:     {},
	ClassTool:       {},
	ClassArmor:      {},
	ClassAccessory:  {},
	ClassConsumable: {},
	ClassBlock:      {},
	ClassTome:       {},
}

// ValidClass reports whether c is one of the known item classes.
func ValidClass(c Class) bool {
	_, ok := validClasses[c]
	return ok
}

// Item is a self-describing in-world item. The authoritative copy lives in an
// inventory the editor does not own; the editor only ever works on clones and
// writes back through a slot handle.
type Item struct {
	Type          Type           `json:"type"`
	Class         Class          `json:"class"`
	Quantity      int            `json:"quantity"`
	MaxStack      int            `json:"max_stack"`
	CustomName    string         `json:"custom_name,omitempty"`
	Lore          []string       `json:"lore,omitempty"`
	Damage        int            `json:"damage,omitempty"`
	MaxDurability int            `json:"max_durability,omitempty"`
	Modifiers     map[string]int `json:"modifiers,omitempty"`
}

// Empty reports whether the item is the zero value (an empty slot).
func (i Item) Empty() bool {
	return i.Type == "" || i.Quantity <= 0
}

// Stackable reports whether more than one of this item fits in a slot.
func (i Item) Stackable() bool {
	return i.MaxStack > 1
}

// Storage reports whether the item belongs to the modifier-storage class.
func (i Item) Storage() bool {
	return i.Class == ClassTome
}

// Damageable reports whether the item tracks durability at all.
func (i Item) Damageable() bool {
	return i.MaxDurability > 0
}

// DisplayName returns the custom name when set, otherwise a readable form of
// the item type ("iron_sword" becomes "Iron Sword").
func (i Item) DisplayName() string {
	if i.CustomName != "" {
		return i.CustomName
	}
	words := strings.Split(string(i.Type), "_")
	for idx, w := range words {
		if w == "" {
			continue
		}
		words[idx] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ModifierLevel returns the stored level for key, zero when absent.
func (i Item) ModifierLevel(key string) int {
	return i.Modifiers[key]
}

// ModifierKeys returns the keys of all modifiers present, sorted.
func (i Item) ModifierKeys() []string {
	if len(i.Modifiers) == 0 {
		return nil
	}
	keys := make([]string, 0, len(i.Modifiers))
	for key := range i.Modifiers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// SetModifier writes level for key, creating the map on first use.
func (i *Item) SetModifier(key string, level int) {
	if i.Modifiers == nil {
		i.Modifiers = make(map[string]int, 1)
	}
	i.Modifiers[key] = level
}

// RemoveModifier deletes key and reports whether it was present.
func (i *Item) RemoveModifier(key string) bool {
	if _, ok := i.Modifiers[key]; !ok {
		return false
	}
	delete(i.Modifiers, key)
	if len(i.Modifiers) == 0 {
		i.Modifiers = nil
	}
	return true
}

// Clone returns a deep copy. Sessions work exclusively on clones so the
// authoritative item is never aliased.
func (i Item) Clone() Item {
	clone := i
	if len(i.Lore) > 0 {
		clone.Lore = append([]string(nil), i.Lore...)
	}
	if len(i.Modifiers) > 0 {
		clone.Modifiers = make(map[string]int, len(i.Modifiers))
		for key, level := range i.Modifiers {
			clone.Modifiers[key] = level
		}
	}
	return clone
}

// Snapshot captures the fields the validation guard compares against the live
// backing slot: the type always, the count only for stackable items.
type Snapshot struct {
	Type      Type
	Quantity  int
	Stackable bool
}

// Snapshot derives the guard comparison view of the item.
func (i Item) Snapshot() Snapshot {
	return Snapshot{Type: i.Type, Quantity: i.Quantity, Stackable: i.Stackable()}
}

// Matches reports whether the live item still satisfies the snapshot.
func (s Snapshot) Matches(live Item) bool {
	if live.Empty() || live.Type != s.Type {
		return false
	}
	if s.Stackable && live.Quantity != s.Quantity {
		return false
	}
	return true
}
