package editor

import (
	"context"
	"errors"
	"strconv"

	"itemforge/server/internal/catalog"
	"itemforge/server/internal/host"
	"itemforge/server/internal/item"
	"itemforge/server/internal/panel"
	"itemforge/server/internal/rules"
	"itemforge/server/internal/session"
	logediting "itemforge/server/logging/editing"
)

// Default permission nodes for actions whose panel element does not declare
// its own. Absent entries need no permission beyond opening the editor.
var actionPermissions = map[panel.ActionKind]string{
	panel.ActionClearModifiers: rules.PermModifyBase,
	panel.ActionClearLore:      rules.PermClearLore,
	panel.ActionRepair:         rules.PermRepair,
	panel.ActionDuplicate:      rules.PermDuplicate,
}

// PanelSlotClicked routes a click on the actor's panel. Clicks outside an
// active viewing session are ignored.
func (c *Core) PanelSlotClicked(actorID string, slot int, kind host.ClickKind) error {
	sess, ok := c.deps.Sessions.Get(actorID)
	if !ok {
		return ErrNoSession
	}
	if sess.State != session.StateViewing {
		return nil
	}

	tile, ok := sess.TileAt(slot)
	if !ok {
		return nil
	}
	if tile.Tag != "" {
		return c.modifierClicked(sess, tile.Tag, kind)
	}

	bundle := c.deps.Config.Bundle()
	if slot == bundle.Panel.PreviewSlot() {
		c.closeSession(actorID, "preview_clicked", false)
		return nil
	}
	el, ok := bundle.Panel.ElementBySlot(slot)
	if !ok {
		return nil
	}
	return c.elementClicked(sess, el)
}

func (c *Core) modifierClicked(sess *session.Session, key string, kind host.ClickKind) error {
	d, ok := c.deps.Catalog.Catalog().Get(key)
	if !ok {
		// Tile rendered from a catalog generation that was reloaded away.
		c.refresh(sess, c.deps.Config.Bundle())
		return nil
	}

	slot, err := c.validate(sess)
	if err != nil {
		return err
	}

	pol := c.deps.Config.Policy()
	current := sess.Preview.ModifierLevel(key)
	limit := c.rules.EffectiveCap(d, sess.Actor, pol)
	target, explicitRemove := rules.ClickTarget(kind, current, limit)
	if target == current && !explicitRemove {
		// The gesture cannot change anything: raise at the cap, lower at
		// zero. Distinct feedback, not silence and not a failure.
		c.notify(sess.Actor, OutcomeAtLimit, map[string]string{
			"modifier": d.Label,
			"level":    strconv.Itoa(current),
		})
		return nil
	}

	updated := sess.Preview.Clone()
	changed, err := c.rules.Apply(&updated, d, target, sess.Actor, pol)
	if err != nil {
		c.rejectModifier(sess, d, target, err)
		return err
	}
	if !changed {
		return nil
	}
	if err := c.commit(sess, slot, updated); err != nil {
		return err
	}

	c.deps.Metrics.ModifierApplied()
	level := updated.ModifierLevel(key)
	c.logModifier(sess, key, level, "")
	params := map[string]string{"modifier": d.Label, "level": strconv.Itoa(level)}
	if target <= 0 {
		c.notify(sess.Actor, OutcomeRemoved, params)
	} else {
		c.notify(sess.Actor, OutcomeApplied, params)
	}
	c.refresh(sess, c.deps.Config.Bundle())
	return nil
}

// rejectModifier reports a refused apply to the actor, metrics, and the
// event stream.
func (c *Core) rejectModifier(sess *session.Session, d catalog.Descriptor, target int, err error) {
	reason := "error"
	var conflict *rules.ConflictError
	switch {
	case errors.Is(err, rules.ErrPermissionDenied):
		reason = "permission"
		c.notify(sess.Actor, OutcomeNoPermission, nil)
	case errors.As(err, &conflict):
		reason = "conflict"
		conflictLabel := conflict.Conflicting
		if other, ok := c.deps.Catalog.Catalog().Get(conflict.Conflicting); ok {
			conflictLabel = other.Label
		}
		c.notify(sess.Actor, OutcomeConflict, map[string]string{
			"modifier":    d.Label,
			"conflicting": conflictLabel,
		})
	}
	c.deps.Metrics.ModifierRejected(reason)
	logediting.ModifierRejected(context.Background(), c.deps.Publisher, c.tick,
		actorRef(sess.Actor), sess.TraceID, logediting.ModifierPayload{
			Modifier: d.Key,
			Level:    target,
			Reason:   reason,
		})
}

func (c *Core) elementClicked(sess *session.Session, el panel.Element) error {
	perm := el.Permission
	if perm == "" {
		perm = actionPermissions[el.Action]
	}
	if perm != "" && !sess.Actor.HasPermission(perm) {
		c.notify(sess.Actor, OutcomeNoPermission, nil)
		return ErrPermissionDenied
	}

	switch el.Action {
	case panel.ActionRename:
		return c.promptText(sess, session.StateAwaitingRename, OutcomePromptRename)
	case panel.ActionAddLore:
		return c.promptText(sess, session.StateAwaitingLore, OutcomePromptLore)
	case panel.ActionClearLore:
		return c.mutate(sess, OutcomeLoreCleared, OutcomeLoreEmpty, item.ClearLore)
	case panel.ActionClearModifiers:
		return c.mutate(sess, OutcomeModifiersWiped, OutcomeNothingToWipe, c.rules.RemoveAll)
	case panel.ActionRepair:
		return c.mutate(sess, OutcomeRepaired, OutcomeNotRepairable, item.Repair)
	case panel.ActionDuplicate:
		return c.duplicate(sess)
	case panel.ActionPagePrev:
		sess.SetPage(sess.Page - 1)
		c.refresh(sess, c.deps.Config.Bundle())
	case panel.ActionPageNext:
		sess.SetPage(sess.Page + 1)
		c.refresh(sess, c.deps.Config.Bundle())
	}
	return nil
}

// mutate runs a validated edit transform. When the transform reports that
// nothing changed, no write happens and the noopCode outcome is sent.
func (c *Core) mutate(sess *session.Session, okCode, noopCode string, fn func(*item.Item) bool) error {
	slot, err := c.validate(sess)
	if err != nil {
		return err
	}
	updated := sess.Preview.Clone()
	if !fn(&updated) {
		c.notify(sess.Actor, noopCode, nil)
		return nil
	}
	if err := c.commit(sess, slot, updated); err != nil {
		return err
	}
	c.notify(sess.Actor, okCode, nil)
	c.refresh(sess, c.deps.Config.Bundle())
	return nil
}

func (c *Core) duplicate(sess *session.Session) error {
	if _, err := c.validate(sess); err != nil {
		return err
	}
	dup := sess.Preview.Clone()
	if !sess.Actor.Give(dup) {
		c.notify(sess.Actor, OutcomeInventoryFull, nil)
		return ErrCapacityExceeded
	}
	c.notify(sess.Actor, OutcomeDuplicated, map[string]string{"item": dup.DisplayName()})
	return nil
}

func (c *Core) promptText(sess *session.Session, state session.State, promptCode string) error {
	if _, err := c.validate(sess); err != nil {
		return err
	}
	sess.State = state
	pnl := sess.Panel
	if pnl != nil {
		c.deps.Scheduler.Defer(func() {
			if pnl.Displayed() {
				pnl.Dismiss()
			}
		})
	}
	c.notify(sess.Actor, promptCode, nil)
	return nil
}
