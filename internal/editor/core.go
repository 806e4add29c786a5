// Package editor is the session-facing core: it opens and tears down edit
// sessions, routes panel clicks and typed input, and guards every write so
// the authoritative inventory slot is only mutated when it still matches the
// state the session was opened against.
package editor

import (
	"context"
	"errors"
	"strconv"

	"itemforge/server/internal/catalog"
	"itemforge/server/internal/config"
	"itemforge/server/internal/host"
	"itemforge/server/internal/item"
	"itemforge/server/internal/panel"
	"itemforge/server/internal/rules"
	"itemforge/server/internal/session"
	"itemforge/server/internal/telemetry"
	"itemforge/server/logging"
	logediting "itemforge/server/logging/editing"
)

var (
	// ErrNoSession is returned when the actor has no active session.
	ErrNoSession = errors.New("editor: no active session")
	// ErrValidationMismatch is returned when the backing slot no longer
	// matches the session snapshot. The session is closed before return.
	ErrValidationMismatch = errors.New("editor: item changed behind session")
	// ErrCapacityExceeded is returned when a duplicate cannot be placed.
	ErrCapacityExceeded = errors.New("editor: inventory full")
	// ErrBlacklisted rejects editing an excluded item type.
	ErrBlacklisted = errors.New("editor: item type blacklisted")
	// ErrEmptyHand rejects opening a session on an empty slot.
	ErrEmptyHand = errors.New("editor: no item held")
	// ErrAlreadyEditing rejects a second session for the same actor.
	ErrAlreadyEditing = errors.New("editor: session already active")
	// ErrPermissionDenied mirrors the rules sentinel for editor-level gates.
	ErrPermissionDenied = rules.ErrPermissionDenied
)

// Deps wires the core to everything it collaborates with. All fields except
// Publisher, Logger and Metrics are required.
type Deps struct {
	Config    *config.Provider
	Catalog   *catalog.Loader
	Sessions  *session.Registry
	Opener    host.Opener
	Scheduler host.Scheduler
	Notifier  host.Notifier
	Publisher logging.Publisher
	Logger    telemetry.Logger
	Metrics   telemetry.Metrics
}

// Core drives the edit workflow. All methods except TextSubmitted must be
// called from the app loop; TextSubmitted may be called from any goroutine
// and is drained by Tick.
type Core struct {
	deps  Deps
	rules *rules.Engine
	tick  uint64

	pending pendingTexts
}

// New validates the dependency set and builds the core.
func New(deps Deps) (*Core, error) {
	switch {
	case deps.Config == nil:
		return nil, errors.New("editor: config provider required")
	case deps.Catalog == nil:
		return nil, errors.New("editor: catalog loader required")
	case deps.Sessions == nil:
		return nil, errors.New("editor: session registry required")
	case deps.Opener == nil:
		return nil, errors.New("editor: panel opener required")
	case deps.Scheduler == nil:
		return nil, errors.New("editor: scheduler required")
	}
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}
	if deps.Logger == nil {
		deps.Logger = telemetry.LoggerFunc(nil)
	}
	if deps.Metrics == nil {
		deps.Metrics = telemetry.NopMetrics{}
	}
	core := &Core{
		deps:  deps,
		rules: rules.NewEngine(deps.Catalog.Catalog()),
	}
	core.pending.init()
	return core, nil
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, string, map[string]string) {}

// BeginEdit opens an edit session on the actor's held item.
func (c *Core) BeginEdit(actor host.Actor) error {
	if !actor.HasPermission(rules.PermUse) {
		c.notify(actor, OutcomeNoPermission, nil)
		return ErrPermissionDenied
	}
	if c.deps.Sessions.IsActive(actor.ID()) {
		c.notify(actor, OutcomeAlreadyEditing, nil)
		return ErrAlreadyEditing
	}

	bundle := c.deps.Config.Bundle()
	slot := actor.HeldSlot()
	live, ok := actor.Slot(slot).ReadCurrent()
	if !ok || live.Empty() {
		c.notify(actor, OutcomeEmptyHand, nil)
		return ErrEmptyHand
	}
	if bundle.Blacklisted(live.Type) {
		c.notify(actor, OutcomeBlacklisted, map[string]string{"type": string(live.Type)})
		return ErrBlacklisted
	}

	sess := session.New(actor, slot, live)
	handle, err := c.deps.Opener.OpenPanel(actor, bundle.Panel.Title, bundle.Panel.Size)
	if err != nil {
		c.notify(actor, OutcomePanelFailed, nil)
		return err
	}
	sess.Panel = handle
	c.refresh(sess, bundle)

	if prior := c.deps.Sessions.Create(sess, c.deps.Scheduler); prior != nil {
		c.logSessionClosed(prior, "displaced")
	}
	c.deps.Metrics.SessionOpened()
	logediting.SessionOpened(context.Background(), c.deps.Publisher, c.tick,
		actorRef(actor), sess.TraceID, logediting.SessionPayload{
			ItemType: string(live.Type),
			Slot:     slot,
		})
	c.notify(actor, OutcomeOpened, map[string]string{"item": live.DisplayName()})
	return nil
}

// PanelClosed handles the host reporting that the actor's panel went away.
// While viewing, that ends the session; while awaiting typed input the panel
// was dismissed on purpose and the session stays.
func (c *Core) PanelClosed(actorID string) {
	sess, ok := c.deps.Sessions.Get(actorID)
	if !ok || sess.State != session.StateViewing {
		return
	}
	if removed, ok := c.deps.Sessions.Remove(actorID); ok {
		c.logSessionClosed(removed, "panel_closed")
	}
}

// ActorDisconnected tears down the actor's session, if any.
func (c *Core) ActorDisconnected(actorID string) {
	c.closeSession(actorID, "disconnected", false)
}

// ActorDied tears down the actor's session, if any.
func (c *Core) ActorDied(actorID string) {
	c.closeSession(actorID, "died", false)
}

// ActorChangedHeldSlot tears down the session: the edited item is keyed to
// the slot that was held when the session opened.
func (c *Core) ActorChangedHeldSlot(actorID string) {
	c.closeSession(actorID, "held_slot_changed", true)
}

// ActorDroppedItem tears down the session when the actor drops while editing.
func (c *Core) ActorDroppedItem(actorID string) {
	c.closeSession(actorID, "item_dropped", true)
}

// CloseSession ends the actor's session explicitly.
func (c *Core) CloseSession(actorID string) bool {
	return c.closeSession(actorID, "closed", false)
}

// CloseAll force-closes every session. Used on shutdown and reload.
func (c *Core) CloseAll() {
	for _, sess := range c.deps.Sessions.CloseAll() {
		c.logSessionClosed(sess, "shutdown")
	}
}

// Reload re-reads settings, panel layout, and the modifier catalog, and
// closes every open session so no panel keeps rendering a stale layout.
// actor is nil when triggered by the file watcher or console.
func (c *Core) Reload(actor host.Actor) error {
	if actor != nil && !actor.HasPermission(rules.PermReload) {
		c.notify(actor, OutcomeNoPermission, nil)
		return ErrPermissionDenied
	}
	err := c.deps.Config.Reload()
	if err == nil {
		err = c.deps.Catalog.Reload()
	}
	success := err == nil
	c.deps.Metrics.ConfigReload(success)
	payload := logediting.ReloadPayload{Source: "manual", Success: success}
	if actor == nil {
		payload.Source = "watcher"
	}
	if err != nil {
		payload.Error = err.Error()
	}
	logediting.ConfigReloaded(context.Background(), c.deps.Publisher, c.tick, payload)
	if err != nil {
		c.deps.Logger.Printf("editor: reload failed: %v", err)
		if actor != nil {
			c.notify(actor, OutcomeReloadFailed, map[string]string{"error": err.Error()})
		}
		return err
	}
	c.CloseAll()
	if actor != nil {
		c.notify(actor, OutcomeReloaded, nil)
	}
	return nil
}

// Tick advances the core clock and drains pending typed input.
func (c *Core) Tick() {
	c.tick++
	c.drainPending()
}

func (c *Core) closeSession(actorID, reason string, notifyActor bool) bool {
	sess, ok := c.deps.Sessions.Close(actorID, c.deps.Scheduler)
	if !ok {
		return false
	}
	c.logSessionClosed(sess, reason)
	if notifyActor {
		c.notify(sess.Actor, OutcomeClosed, map[string]string{"reason": reason})
	}
	return true
}

func (c *Core) logSessionClosed(sess *session.Session, reason string) {
	c.deps.Metrics.SessionClosed(reason)
	logediting.SessionClosed(context.Background(), c.deps.Publisher, c.tick,
		actorRef(sess.Actor), sess.TraceID, logediting.SessionPayload{
			ItemType: string(sess.Snapshot.Type),
			Slot:     sess.OriginalSlot,
			Reason:   reason,
		})
}

// validate re-reads the backing slot and compares it against the session
// snapshot. On mismatch the session is closed and ErrValidationMismatch is
// returned; every edit path calls this before touching anything.
func (c *Core) validate(sess *session.Session) (host.SlotHandle, error) {
	slot := sess.Actor.Slot(sess.OriginalSlot)
	live, ok := slot.ReadCurrent()
	if ok && sess.Snapshot.Matches(live) {
		return slot, nil
	}
	c.failValidation(sess)
	return nil, ErrValidationMismatch
}

func (c *Core) failValidation(sess *session.Session) {
	c.deps.Metrics.ValidationFailure()
	logediting.ValidationMismatch(context.Background(), c.deps.Publisher, c.tick,
		actorRef(sess.Actor), sess.TraceID, logediting.SessionPayload{
			ItemType: string(sess.Snapshot.Type),
			Slot:     sess.OriginalSlot,
			Reason:   "snapshot_mismatch",
		})
	c.notify(sess.Actor, OutcomeItemChanged, nil)
	if removed, ok := c.deps.Sessions.Close(sess.UserID, c.deps.Scheduler); ok {
		c.logSessionClosed(removed, "validation_mismatch")
	}
}

// commit writes the updated item through the guarded slot handle and, on
// success, adopts it as the session preview.
func (c *Core) commit(sess *session.Session, slot host.SlotHandle, updated item.Item) error {
	if err := slot.WriteIfUnchanged(sess.Snapshot, updated); err != nil {
		c.failValidation(sess)
		return ErrValidationMismatch
	}
	sess.Preview = updated
	return nil
}

// refresh recomputes the full tile set and pushes it to the panel.
func (c *Core) refresh(sess *session.Session, bundle *config.Bundle) {
	preview := c.previewTile(sess.Preview)
	mods := c.modifierTiles(sess)
	tiles, pg := panel.Render(bundle.Panel, preview, mods, sess.Page)
	sess.Rendered = tiles
	sess.Page = pg.Page
	sess.TotalPages = pg.TotalPages
	if sess.Panel != nil {
		sess.Panel.Present(tiles)
	}
}

func (c *Core) previewTile(it item.Item) panel.Tile {
	tile := panel.Tile{
		Material: string(it.Type),
		Name:     it.DisplayName(),
		Quantity: it.Quantity,
	}
	tile.Lore = append(tile.Lore, it.Lore...)
	cat := c.deps.Catalog.Catalog()
	for _, key := range it.ModifierKeys() {
		label := key
		if d, ok := cat.Get(key); ok {
			label = d.Label
		}
		tile.Lore = append(tile.Lore, label+" "+strconv.Itoa(it.ModifierLevel(key)))
	}
	return tile
}

func (c *Core) modifierTiles(sess *session.Session) []panel.ModifierTile {
	pol := c.deps.Config.Policy()
	applicable := c.rules.Applicable(sess.Preview, sess.Actor, pol)
	tiles := make([]panel.ModifierTile, 0, len(applicable))
	for _, d := range applicable {
		_, conflicting := c.rules.Conflicts(d, sess.Preview)
		if conflicting && c.rules.CanBypassConflicts(sess.Actor, pol) {
			conflicting = false
		}
		tiles = append(tiles, panel.ModifierTile{
			Key:         d.Key,
			Label:       d.Label,
			Level:       sess.Preview.ModifierLevel(d.Key),
			Cap:         c.rules.EffectiveCap(d, sess.Actor, pol),
			BaselineCap: d.Cap,
			Conflicting: conflicting,
		})
	}
	return tiles
}

func (c *Core) logModifier(sess *session.Session, key string, level int, reason string) {
	logediting.ModifierApplied(context.Background(), c.deps.Publisher, c.tick,
		actorRef(sess.Actor), sess.TraceID, logediting.ModifierPayload{
			Modifier: key,
			Level:    level,
			Reason:   reason,
		})
}

func (c *Core) notify(actor host.Actor, code string, params map[string]string) {
	if actor == nil {
		return
	}
	c.deps.Notifier.Notify(actor.ID(), code, params)
}

func actorRef(actor host.Actor) logging.EntityRef {
	if actor == nil {
		return logging.EntityRef{Kind: logging.EntityKindActor}
	}
	return logging.EntityRef{Kind: logging.EntityKindActor, ID: actor.ID()}
}
