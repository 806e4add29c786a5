// Package catalog enumerates the known item modifiers and their static
// compatibility data. Descriptors are loaded once from a designer-authored
// JSON document and treated as immutable; the rule engine layers policy and
// permissions on top.
package catalog

import (
	"sort"
	"sync"

	"itemforge/server/internal/item"
)

// Descriptor is the static definition of one modifier.
type Descriptor struct {
	Key      string
	Label    string
	Cap      int
	Treasure bool
	Cursed   bool

	applies   map[item.Class]struct{}
	conflicts map[string]struct{}
}

// AppliesTo reports whether the modifier is structurally compatible with the
// item. Storage-class items accept any modifier for later transfer.
func (d Descriptor) AppliesTo(it item.Item) bool {
	if it.Storage() {
		return true
	}
	if len(d.applies) == 0 {
		return true
	}
	_, ok := d.applies[it.Class]
	return ok
}

// ConflictsWith reports whether the modifier is declared mutually exclusive
// with the other key. Declarations are normalized to be symmetric at load.
func (d Descriptor) ConflictsWith(other string) bool {
	_, ok := d.conflicts[other]
	return ok
}

// ConflictKeys returns the sorted keys this descriptor excludes.
func (d Descriptor) ConflictKeys() []string {
	if len(d.conflicts) == 0 {
		return nil
	}
	keys := make([]string, 0, len(d.conflicts))
	for key := range d.conflicts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Catalog is a stable lookup table of descriptors. Reload swaps the whole
// table atomically so readers never observe a half-loaded catalog.
type Catalog struct {
	mu          sync.RWMutex
	descriptors map[string]Descriptor
	keys        []string
}

// Get returns the descriptor for key.
func (c *Catalog) Get(key string) (Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.descriptors[key]
	return d, ok
}

// All returns every descriptor ordered by key.
func (c *Catalog) All() []Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Descriptor, 0, len(c.keys))
	for _, key := range c.keys {
		out = append(out, c.descriptors[key])
	}
	return out
}

// Len returns the number of descriptors.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.keys)
}

func (c *Catalog) replace(descriptors map[string]Descriptor) {
	keys := make([]string, 0, len(descriptors))
	for key := range descriptors {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	c.mu.Lock()
	c.descriptors = descriptors
	c.keys = keys
	c.mu.Unlock()
}
