// Package rules decides which modifiers an actor may see and apply on an
// item, and performs the apply/remove transforms with clamping. All
// decisions combine three inputs: the static catalog descriptor, the
// actor's permissions, and the global policy flags derived fresh from the
// settings for every call.
package rules

import (
	"errors"
	"fmt"

	"itemforge/server/internal/catalog"
	"itemforge/server/internal/host"
	"itemforge/server/internal/item"
)

// Permission nodes checked by the editor.
const (
	PermUse            = "itemforge.use"
	PermModifyBase     = "itemforge.modify.base"
	PermModifyTreasure = "itemforge.modify.treasure"
	PermModifyCursed   = "itemforge.modify.cursed"
	PermBypassCap      = "itemforge.modify.bypasscap"
	PermBypassConflict = "itemforge.modify.bypassconflict"
	PermRepair         = "itemforge.repair"
	PermClearLore      = "itemforge.lore.clear"
	PermDuplicate      = "itemforge.duplicate"
	PermReload         = "itemforge.admin.reload"
)

// DefaultCapCeiling is the fixed high ceiling used when cap bypass applies.
const DefaultCapCeiling = 255

// Policy carries the global configuration flags that gate modifier actions.
// It is derived per call and never cached across ticks.
type Policy struct {
	AllowTreasure       bool
	AllowCursed         bool
	AllowCapBypass      bool
	AllowConflictBypass bool
	CapBypassCeiling    int
}

// ErrPermissionDenied rejects an apply the actor is not entitled to.
var ErrPermissionDenied = errors.New("rules: permission denied")

// ConflictError rejects an apply that would pair mutually exclusive
// modifiers. Conflicting names the modifier already on the item.
type ConflictError struct {
	Candidate   string
	Conflicting string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("rules: %s conflicts with %s", e.Candidate, e.Conflicting)
}

// Engine evaluates modifier rules against one catalog.
type Engine struct {
	catalog *catalog.Catalog
}

// NewEngine wraps the catalog.
func NewEngine(cat *catalog.Catalog) *Engine {
	return &Engine{catalog: cat}
}

// Applicable returns the modifiers the actor may work with on the item,
// ordered by key for deterministic display.
func (e *Engine) Applicable(it item.Item, actor host.Actor, pol Policy) []catalog.Descriptor {
	var out []catalog.Descriptor
	for _, d := range e.catalog.All() {
		if !d.AppliesTo(it) {
			continue
		}
		if !e.CanApply(actor, d, pol) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// CanApply gates one modifier on the actor's permissions and the global
// policy. The base permission is required for everything; treasure and
// cursed modifiers each need both their policy flag and their permission.
func (e *Engine) CanApply(actor host.Actor, d catalog.Descriptor, pol Policy) bool {
	if !actor.HasPermission(PermModifyBase) {
		return false
	}
	if d.Treasure && (!pol.AllowTreasure || !actor.HasPermission(PermModifyTreasure)) {
		return false
	}
	if d.Cursed && (!pol.AllowCursed || !actor.HasPermission(PermModifyCursed)) {
		return false
	}
	return true
}

// EffectiveCap is the maximum level the actor may set for the modifier.
func (e *Engine) EffectiveCap(d catalog.Descriptor, actor host.Actor, pol Policy) int {
	if pol.AllowCapBypass && actor.HasPermission(PermBypassCap) {
		if pol.CapBypassCeiling > 0 {
			return pol.CapBypassCeiling
		}
		return DefaultCapCeiling
	}
	return d.Cap
}

// Conflicts returns the key of a modifier on the item that is mutually
// exclusive with the candidate. Storage-class items are exempt: they hold
// incompatible combinations for later transfer.
func (e *Engine) Conflicts(d catalog.Descriptor, it item.Item) (string, bool) {
	if it.Storage() {
		return "", false
	}
	for _, existing := range it.ModifierKeys() {
		if existing == d.Key {
			continue
		}
		if d.ConflictsWith(existing) {
			return existing, true
		}
	}
	return "", false
}

// CanBypassConflicts reports whether conflict checks are waived for the actor.
func (e *Engine) CanBypassConflicts(actor host.Actor, pol Policy) bool {
	return pol.AllowConflictBypass && actor.HasPermission(PermBypassConflict)
}

// Apply writes targetLevel for the modifier onto the item. A target of zero
// or below removes the modifier; changed is true only when a removal
// actually happened. Positive targets re-check permissions and conflicts,
// clamp into [1, EffectiveCap], and write the clamped level. The engine's
// clamping is authoritative; the item's own cap notion is not consulted.
func (e *Engine) Apply(it *item.Item, d catalog.Descriptor, targetLevel int, actor host.Actor, pol Policy) (changed bool, err error) {
	if targetLevel <= 0 {
		return it.RemoveModifier(d.Key), nil
	}
	if !e.CanApply(actor, d, pol) {
		return false, ErrPermissionDenied
	}
	if !it.Storage() && !e.CanBypassConflicts(actor, pol) {
		if conflicting, found := e.Conflicts(d, *it); found {
			return false, &ConflictError{Candidate: d.Key, Conflicting: conflicting}
		}
	}
	limit := e.EffectiveCap(d, actor, pol)
	level := targetLevel
	if level > limit {
		level = limit
	}
	if level < 1 {
		level = 1
	}
	it.SetModifier(d.Key, level)
	return true, nil
}

// RemoveAll strips every modifier and reports whether at least one was
// removed.
func (e *Engine) RemoveAll(it *item.Item) bool {
	if len(it.Modifiers) == 0 {
		return false
	}
	it.Modifiers = nil
	return true
}

// ClickTarget maps a click gesture on a modifier tile to the target level.
// explicitRemove distinguishes an intentional removal gesture from a level
// that merely computes to zero, so "removed" feedback only fires when
// something was present.
func ClickTarget(kind host.ClickKind, current, limit int) (target int, explicitRemove bool) {
	switch kind {
	case host.ClickPrimary:
		target = current + 1
		if target > limit {
			target = limit
		}
	case host.ClickPrimaryAlt:
		target = limit
	case host.ClickSecondary:
		target = current - 1
		if target < 0 {
			target = 0
		}
	case host.ClickSecondaryAlt:
		target = 0
		explicitRemove = current > 0
	default:
		target = current
	}
	return target, explicitRemove
}
