// Package host declares the narrow ports the embedding platform implements.
// The editor core never reaches into the host directly; every interaction
// with actors, inventories, and on-screen panels goes through these
// interfaces so the host can be a game server, a test harness, or the
// bundled websocket adapter interchangeably.
package host

import (
	"errors"

	"itemforge/server/internal/item"
	"itemforge/server/internal/panel"
)

// ClickKind distinguishes the four click gestures the panel recognizes.
type ClickKind int

const (
	ClickPrimary ClickKind = iota
	ClickPrimaryAlt
	ClickSecondary
	ClickSecondaryAlt
)

// ErrSlotChanged is returned by WriteIfUnchanged when the live slot no longer
// matches the expectation captured at validation time.
var ErrSlotChanged = errors.New("host: slot contents changed")

// SlotHandle borrows one inventory slot. It deliberately exposes only a
// read and a guarded write so every mutation is forced through the
// validation guard's check-then-write sequence.
type SlotHandle interface {
	// ReadCurrent returns the live item in the slot. ok is false when the
	// slot is empty.
	ReadCurrent() (live item.Item, ok bool)
	// WriteIfUnchanged replaces the slot contents with updated, but only if
	// the live item still matches expect. Returns ErrSlotChanged otherwise.
	WriteIfUnchanged(expect item.Snapshot, updated item.Item) error
}

// Actor is the user performing edits, as seen by the core.
type Actor interface {
	ID() string
	HasPermission(node string) bool
	Connected() bool
	// HeldSlot is the inventory index of the actor's currently held item.
	HeldSlot() int
	// Slot borrows the inventory slot at index.
	Slot(index int) SlotHandle
	// Give places a new item into the first free inventory slot. Returns
	// false when the inventory is full.
	Give(it item.Item) bool
}

// PanelHandle is the on-screen panel owned by one edit session.
type PanelHandle interface {
	// Present replaces the full slot contents of the panel.
	Present(tiles []panel.Tile)
	// Dismiss closes the panel if it is still on screen.
	Dismiss()
	// Displayed reports whether this panel is the one currently shown to
	// the actor.
	Displayed() bool
}

// Opener creates panels. Implemented by the host adapter.
type Opener interface {
	OpenPanel(actor Actor, title string, size int) (PanelHandle, error)
}

// Scheduler defers work to the host's next safe scheduling point. Panel
// dismissal during event dispatch must go through here so the host never
// re-enters its own event iteration.
type Scheduler interface {
	Defer(fn func())
}

// Notifier carries user-facing outcomes back to the actor. Rendering the
// outcome as text, markup, or audio is the host's concern.
type Notifier interface {
	Notify(actorID string, code string, params map[string]string)
}
