// Package session tracks the one live edit session each user may hold. A
// session owns a working clone of the edited item plus the snapshot the
// validation guard compares against the authoritative slot; the slot itself
// stays in the host's inventory and is only ever touched through its handle.
package session

import (
	"github.com/google/uuid"

	"itemforge/server/internal/host"
	"itemforge/server/internal/item"
	"itemforge/server/internal/panel"
)

// State is the session's input mode.
type State int

const (
	// StateViewing: the panel is on screen and clicks are routed.
	StateViewing State = iota
	// StateAwaitingRename: the panel is hidden while the user types a name.
	StateAwaitingRename
	// StateAwaitingLore: the panel is hidden while the user types a lore line.
	StateAwaitingLore
)

func (s State) String() string {
	switch s {
	case StateViewing:
		return "viewing"
	case StateAwaitingRename:
		return "awaiting_rename"
	case StateAwaitingLore:
		return "awaiting_lore"
	default:
		return "unknown"
	}
}

// Session is the mutable per-user edit state. All fields are owned by the
// app loop; nothing here is safe for concurrent mutation.
type Session struct {
	UserID  string
	TraceID string
	Actor   host.Actor

	// OriginalSlot is the inventory index the item was held in when the
	// session opened. Snapshot captures the guard comparison view of that
	// item at the same moment.
	OriginalSlot int
	Snapshot     item.Snapshot

	// Preview is the working clone every edit mutates. It becomes
	// authoritative only when a guarded write to the original slot succeeds.
	Preview item.Item

	Panel host.PanelHandle
	State State

	Page       int
	TotalPages int

	// Rendered mirrors the last tile set pushed to the panel so clicks can
	// be resolved back to the tile they landed on.
	Rendered []panel.Tile
}

// New builds a session in the viewing state with a fresh trace identifier.
func New(actor host.Actor, slot int, original item.Item) *Session {
	return &Session{
		UserID:       actor.ID(),
		TraceID:      uuid.NewString(),
		Actor:        actor,
		OriginalSlot: slot,
		Snapshot:     original.Snapshot(),
		Preview:      original.Clone(),
		State:        StateViewing,
		TotalPages:   1,
	}
}

// SetPage moves the page cursor, clamped into [0, TotalPages-1].
func (s *Session) SetPage(page int) {
	if page > s.TotalPages-1 {
		page = s.TotalPages - 1
	}
	if page < 0 {
		page = 0
	}
	s.Page = page
}

// TileAt returns the last-rendered tile at the panel slot.
func (s *Session) TileAt(slot int) (panel.Tile, bool) {
	if slot < 0 || slot >= len(s.Rendered) {
		return panel.Tile{}, false
	}
	return s.Rendered[slot], true
}
