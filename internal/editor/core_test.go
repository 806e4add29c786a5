package editor

import (
	"errors"
	"fmt"
	"testing"

	"itemforge/server/internal/catalog"
	"itemforge/server/internal/config"
	"itemforge/server/internal/host"
	"itemforge/server/internal/inventory"
	"itemforge/server/internal/item"
	"itemforge/server/internal/panel"
	"itemforge/server/internal/rules"
	"itemforge/server/internal/session"
)

type fakeActor struct {
	id    string
	perms map[string]bool
	inv   *inventory.Inventory
	held  int
}

func (a *fakeActor) ID() string                     { return a.id }
func (a *fakeActor) HasPermission(node string) bool { return a.perms[node] }
func (a *fakeActor) Connected() bool                { return true }
func (a *fakeActor) HeldSlot() int                  { return a.held }
func (a *fakeActor) Slot(index int) host.SlotHandle { return a.inv.Handle(index) }
func (a *fakeActor) Give(it item.Item) bool {
	_, ok := a.inv.Add(it)
	return ok
}

type fakePanel struct {
	displayed bool
	presented [][]panel.Tile
	dismissed int
}

func (p *fakePanel) Present(tiles []panel.Tile) {
	p.presented = append(p.presented, tiles)
}

func (p *fakePanel) Dismiss() {
	p.dismissed++
	p.displayed = false
}

func (p *fakePanel) Displayed() bool { return p.displayed }

type fakeOpener struct {
	panels []*fakePanel
	fail   bool
}

func (o *fakeOpener) OpenPanel(actor host.Actor, title string, size int) (host.PanelHandle, error) {
	if o.fail {
		return nil, errors.New("no screen")
	}
	pnl := &fakePanel{displayed: true}
	o.panels = append(o.panels, pnl)
	return pnl, nil
}

// immediateScheduler runs deferred work inline; re-entrancy is not a concern
// for these tests.
type immediateScheduler struct{}

func (immediateScheduler) Defer(fn func()) { fn() }

type notice struct {
	actorID string
	code    string
	params  map[string]string
}

type recordingNotifier struct {
	notices []notice
}

func (n *recordingNotifier) Notify(actorID, code string, params map[string]string) {
	n.notices = append(n.notices, notice{actorID: actorID, code: code, params: params})
}

func (n *recordingNotifier) has(code string) bool {
	for _, notice := range n.notices {
		if notice.code == code {
			return true
		}
	}
	return false
}

func (n *recordingNotifier) last() string {
	if len(n.notices) == 0 {
		return ""
	}
	return n.notices[len(n.notices)-1].code
}

type harness struct {
	core     *Core
	actor    *fakeActor
	opener   *fakeOpener
	notifier *recordingNotifier
	sessions *session.Registry
}

func testPanelConfig() *panel.Config {
	elements := map[string]panel.Element{
		"preview_item": {Key: "preview_item", Action: panel.ActionPreview, Enabled: true, Slot: 4},
	}
	static := []struct {
		key  string
		kind panel.ActionKind
		slot int
	}{
		{"rename", panel.ActionRename, 18},
		{"add_lore", panel.ActionAddLore, 19},
		{"clear_lore", panel.ActionClearLore, 20},
		{"clear_modifiers", panel.ActionClearModifiers, 21},
		{"repair", panel.ActionRepair, 22},
		{"duplicate", panel.ActionDuplicate, 23},
		{"page_prev", panel.ActionPagePrev, 24},
		{"page_info", panel.ActionPageInfo, 25},
		{"page_next", panel.ActionPageNext, 26},
	}
	for _, s := range static {
		elements[s.key] = panel.Element{
			Key: s.key, Action: s.kind, Enabled: true, Slot: s.slot,
			Appearance: panel.Appearance{Material: s.key, Name: s.key},
		}
	}
	return &panel.Config{
		Size:          27,
		Title:         "Editor",
		Placeholder:   panel.Appearance{Material: "gray_pane", Name: " "},
		Frame:         panel.Appearance{Material: "violet_pane", Name: " "},
		Elements:      elements,
		ModifierSlots: []int{10, 11, 12},
		ModifierTile:  panel.TileTemplate{Material: "rune_scroll", Name: "{modifier_name} {level}/{cap}"},
	}
}

func testDefinitions() []byte {
	docs := `[
		{"key": "keen_edge", "label": "Keen Edge", "cap": 3, "applies": ["weapon"], "conflicts": ["heavy_blow"]},
		{"key": "heavy_blow", "label": "Heavy Blow", "cap": 3, "applies": ["weapon"]},
		{"key": "flurry", "cap": 3, "applies": ["weapon"]},
		{"key": "venom", "cap": 3, "applies": ["weapon"]},
		{"key": "rending", "cap": 3, "applies": ["weapon"]},
		{"key": "cleave", "cap": 3, "applies": ["weapon"]},
		{"key": "warding", "cap": 3, "applies": ["weapon"]}
	]`
	return []byte(docs)
}

func newHarness(t *testing.T, perms ...string) *harness {
	t.Helper()
	return newHarnessWith(t, func(*config.Settings) {}, perms...)
}

func newHarnessWith(t *testing.T, tune func(*config.Settings), perms ...string) *harness {
	t.Helper()

	settings := config.DefaultSettings()
	settings.Blacklist = []string{"cursed_idol"}
	tune(&settings)
	provider := config.NewStaticProvider(settings, testPanelConfig())

	loader, err := catalog.LoadSources(catalog.MemorySource("defs.json", testDefinitions()))
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	inv := inventory.New(4)
	inv.Set(0, item.Item{
		Type: "iron_sword", Class: item.ClassWeapon, Quantity: 1, MaxStack: 1,
		Damage: 40, MaxDurability: 250,
	})

	permSet := map[string]bool{rules.PermUse: true, rules.PermModifyBase: true}
	for _, p := range perms {
		permSet[p] = true
	}

	h := &harness{
		actor:    &fakeActor{id: "tester", perms: permSet, inv: inv},
		opener:   &fakeOpener{},
		notifier: &recordingNotifier{},
		sessions: session.NewRegistry(),
	}
	core, err := New(Deps{
		Config:    provider,
		Catalog:   loader,
		Sessions:  h.sessions,
		Opener:    h.opener,
		Scheduler: immediateScheduler{},
		Notifier:  h.notifier,
	})
	if err != nil {
		t.Fatalf("core: %v", err)
	}
	h.core = core
	return h
}

func (h *harness) begin(t *testing.T) *session.Session {
	t.Helper()
	if err := h.core.BeginEdit(h.actor); err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	sess, ok := h.sessions.Get(h.actor.id)
	if !ok {
		t.Fatalf("session missing after BeginEdit")
	}
	return sess
}

// modifierSlot pages through the panel until the tile for key is on screen
// and returns its slot.
func (h *harness) modifierSlot(t *testing.T, sess *session.Session, key string) int {
	t.Helper()
	next := h.elementSlot("page_next")
	for page := 0; page < sess.TotalPages; page++ {
		for slot, tile := range sess.Rendered {
			if tile.Tag == key {
				return slot
			}
		}
		if err := h.core.PanelSlotClicked(h.actor.id, next, host.ClickPrimary); err != nil {
			t.Fatalf("paging to %q: %v", key, err)
		}
	}
	t.Fatalf("no rendered tile for modifier %q", key)
	return -1
}

func (h *harness) elementSlot(kind string) int {
	cfg := testPanelConfig()
	el, _ := cfg.Element(kind)
	return el.Slot
}

func TestBeginEditOpensSessionAndRenders(t *testing.T) {
	h := newHarness(t)
	sess := h.begin(t)

	if sess.State != session.StateViewing {
		t.Fatalf("new session should be viewing, got %v", sess.State)
	}
	if len(h.opener.panels) != 1 {
		t.Fatalf("expected one panel, got %d", len(h.opener.panels))
	}
	if got := sess.Rendered[4].Material; got != "iron_sword" {
		t.Fatalf("preview slot should show the held item, got %q", got)
	}
	if !h.notifier.has(OutcomeOpened) {
		t.Fatalf("expected %s outcome", OutcomeOpened)
	}
}

func TestBeginEditRejections(t *testing.T) {
	t.Run("no permission", func(t *testing.T) {
		h := newHarness(t)
		h.actor.perms[rules.PermUse] = false
		if err := h.core.BeginEdit(h.actor); !errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("expected permission denied, got %v", err)
		}
	})

	t.Run("empty hand", func(t *testing.T) {
		h := newHarness(t)
		h.actor.held = 3
		if err := h.core.BeginEdit(h.actor); !errors.Is(err, ErrEmptyHand) {
			t.Fatalf("expected empty hand, got %v", err)
		}
	})

	t.Run("blacklisted", func(t *testing.T) {
		h := newHarness(t)
		h.actor.inv.Set(0, item.Item{Type: "cursed_idol", Class: item.ClassAccessory, Quantity: 1, MaxStack: 1})
		if err := h.core.BeginEdit(h.actor); !errors.Is(err, ErrBlacklisted) {
			t.Fatalf("expected blacklist rejection, got %v", err)
		}
	})

	t.Run("already editing", func(t *testing.T) {
		h := newHarness(t)
		h.begin(t)
		if err := h.core.BeginEdit(h.actor); !errors.Is(err, ErrAlreadyEditing) {
			t.Fatalf("expected already editing, got %v", err)
		}
	})
}

func TestModifierClickWritesThrough(t *testing.T) {
	h := newHarness(t)
	sess := h.begin(t)
	slot := h.modifierSlot(t, sess, "flurry")

	if err := h.core.PanelSlotClicked(h.actor.id, slot, host.ClickPrimary); err != nil {
		t.Fatalf("click: %v", err)
	}

	live, _ := h.actor.inv.Get(0)
	if live.ModifierLevel("flurry") != 1 {
		t.Fatalf("expected level 1 written to the inventory, got %d", live.ModifierLevel("flurry"))
	}
	if sess.Preview.ModifierLevel("flurry") != 1 {
		t.Fatalf("preview should track the committed write")
	}
	if !h.notifier.has(OutcomeApplied) {
		t.Fatalf("expected %s outcome", OutcomeApplied)
	}
}

func TestModifierClickAtCapReportsLimit(t *testing.T) {
	h := newHarness(t)
	sess := h.begin(t)
	slot := h.modifierSlot(t, sess, "flurry")

	if err := h.core.PanelSlotClicked(h.actor.id, slot, host.ClickPrimaryAlt); err != nil {
		t.Fatalf("click: %v", err)
	}

	// Already at the cap: a further raise changes nothing but still gets its
	// own feedback.
	if err := h.core.PanelSlotClicked(h.actor.id, slot, host.ClickPrimary); err != nil {
		t.Fatalf("click at cap: %v", err)
	}
	if h.notifier.last() != OutcomeAtLimit {
		t.Fatalf("expected %s after a raise at the cap, got %s", OutcomeAtLimit, h.notifier.last())
	}
	live, _ := h.actor.inv.Get(0)
	if live.ModifierLevel("flurry") != 3 {
		t.Fatalf("level should stay at the cap")
	}

	// A lower gesture on an absent modifier hits the same boundary.
	other := h.modifierSlot(t, sess, "cleave")
	if err := h.core.PanelSlotClicked(h.actor.id, other, host.ClickSecondary); err != nil {
		t.Fatalf("lower at zero: %v", err)
	}
	if h.notifier.last() != OutcomeAtLimit {
		t.Fatalf("expected %s after a lower at zero, got %s", OutcomeAtLimit, h.notifier.last())
	}
}

func TestModifierRemoveGesture(t *testing.T) {
	h := newHarness(t)
	sess := h.begin(t)
	slot := h.modifierSlot(t, sess, "flurry")

	h.core.PanelSlotClicked(h.actor.id, slot, host.ClickPrimary)
	if err := h.core.PanelSlotClicked(h.actor.id, slot, host.ClickSecondaryAlt); err != nil {
		t.Fatalf("remove click: %v", err)
	}

	live, _ := h.actor.inv.Get(0)
	if live.ModifierLevel("flurry") != 0 {
		t.Fatalf("modifier should be removed")
	}
	if !h.notifier.has(OutcomeRemoved) {
		t.Fatalf("expected %s outcome", OutcomeRemoved)
	}

	// Removing an absent modifier reports the boundary, never a removal.
	h.core.PanelSlotClicked(h.actor.id, slot, host.ClickSecondaryAlt)
	if h.notifier.last() != OutcomeAtLimit {
		t.Fatalf("expected %s for removal of an absent modifier, got %s", OutcomeAtLimit, h.notifier.last())
	}
}

func TestModifierConflictRejected(t *testing.T) {
	h := newHarnessWith(t, func(s *config.Settings) {
		s.AllowConflictBypass = false
	})
	sword := item.Item{Type: "iron_sword", Class: item.ClassWeapon, Quantity: 1, MaxStack: 1}
	sword.SetModifier("heavy_blow", 2)
	h.actor.inv.Set(0, sword)

	sess := h.begin(t)
	slot := h.modifierSlot(t, sess, "keen_edge")

	err := h.core.PanelSlotClicked(h.actor.id, slot, host.ClickPrimary)
	var conflict *rules.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if conflict.Conflicting != "heavy_blow" {
		t.Fatalf("expected heavy_blow as the conflict, got %q", conflict.Conflicting)
	}
	if !h.notifier.has(OutcomeConflict) {
		t.Fatalf("expected %s outcome", OutcomeConflict)
	}
	live, _ := h.actor.inv.Get(0)
	if live.ModifierLevel("keen_edge") != 0 {
		t.Fatalf("conflicting modifier must not be written")
	}
}

func TestClickValidationMismatchClosesSession(t *testing.T) {
	h := newHarness(t)
	sess := h.begin(t)
	slot := h.modifierSlot(t, sess, "flurry")

	// The backing slot changes behind the session's back.
	h.actor.inv.Set(0, item.Item{Type: "apple", Quantity: 3, MaxStack: 16})

	err := h.core.PanelSlotClicked(h.actor.id, slot, host.ClickPrimary)
	if !errors.Is(err, ErrValidationMismatch) {
		t.Fatalf("expected validation mismatch, got %v", err)
	}
	if h.sessions.IsActive(h.actor.id) {
		t.Fatalf("session must be closed after a mismatch")
	}
	if !h.notifier.has(OutcomeItemChanged) {
		t.Fatalf("expected %s outcome", OutcomeItemChanged)
	}

	// The unauthoritative edit never lands.
	live, _ := h.actor.inv.Get(0)
	if live.Type != "apple" || len(live.Modifiers) != 0 {
		t.Fatalf("live slot should be untouched, got %+v", live)
	}
}

func TestPaginationStopsAtLastPage(t *testing.T) {
	h := newHarness(t)
	sess := h.begin(t)

	// 7 applicable modifiers over 3 slots: pages 0..2.
	if sess.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", sess.TotalPages)
	}
	next := h.elementSlot("page_next")
	for i := 0; i < 5; i++ {
		if err := h.core.PanelSlotClicked(h.actor.id, next, host.ClickPrimary); err != nil {
			t.Fatalf("page click %d: %v", i, err)
		}
	}
	if sess.Page != 2 {
		t.Fatalf("page must clamp at the last page, got %d", sess.Page)
	}

	prev := h.elementSlot("page_prev")
	for i := 0; i < 5; i++ {
		h.core.PanelSlotClicked(h.actor.id, prev, host.ClickPrimary)
	}
	if sess.Page != 0 {
		t.Fatalf("page must clamp at zero, got %d", sess.Page)
	}
}

func TestPreviewClickClosesSession(t *testing.T) {
	h := newHarness(t)
	h.begin(t)

	if err := h.core.PanelSlotClicked(h.actor.id, 4, host.ClickPrimary); err != nil {
		t.Fatalf("preview click: %v", err)
	}
	if h.sessions.IsActive(h.actor.id) {
		t.Fatalf("preview click should close the session")
	}
	if h.opener.panels[0].dismissed == 0 {
		t.Fatalf("panel should be dismissed")
	}
}

func TestRepairRequiresPermission(t *testing.T) {
	h := newHarness(t)
	h.begin(t)

	err := h.core.PanelSlotClicked(h.actor.id, h.elementSlot("repair"), host.ClickPrimary)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}

	h2 := newHarness(t, rules.PermRepair)
	h2.begin(t)
	if err := h2.core.PanelSlotClicked(h2.actor.id, h2.elementSlot("repair"), host.ClickPrimary); err != nil {
		t.Fatalf("repair: %v", err)
	}
	live, _ := h2.actor.inv.Get(0)
	if live.Damage != 0 {
		t.Fatalf("repair should zero damage, got %d", live.Damage)
	}
	if !h2.notifier.has(OutcomeRepaired) {
		t.Fatalf("expected %s outcome", OutcomeRepaired)
	}

	// Second repair is a no-op with its own outcome.
	h2.core.PanelSlotClicked(h2.actor.id, h2.elementSlot("repair"), host.ClickPrimary)
	if h2.notifier.last() != OutcomeNotRepairable {
		t.Fatalf("expected %s outcome, got %s", OutcomeNotRepairable, h2.notifier.last())
	}
}

func TestDuplicateHonorsCapacity(t *testing.T) {
	h := newHarness(t, rules.PermDuplicate)
	h.begin(t)

	if err := h.core.PanelSlotClicked(h.actor.id, h.elementSlot("duplicate"), host.ClickPrimary); err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if _, ok := h.actor.inv.Get(1); !ok {
		t.Fatalf("duplicate should land in the first free slot")
	}

	// Fill the inventory and try again.
	for i := 2; i < 4; i++ {
		h.actor.inv.Set(i, item.Item{Type: "apple", Quantity: 1, MaxStack: 16})
	}
	err := h.core.PanelSlotClicked(h.actor.id, h.elementSlot("duplicate"), host.ClickPrimary)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected capacity exceeded, got %v", err)
	}
	if !h.notifier.has(OutcomeInventoryFull) {
		t.Fatalf("expected %s outcome", OutcomeInventoryFull)
	}
}

func TestRenameFlow(t *testing.T) {
	h := newHarness(t)
	sess := h.begin(t)

	if err := h.core.PanelSlotClicked(h.actor.id, h.elementSlot("rename"), host.ClickPrimary); err != nil {
		t.Fatalf("rename click: %v", err)
	}
	if sess.State != session.StateAwaitingRename {
		t.Fatalf("expected awaiting rename, got %v", sess.State)
	}
	if h.opener.panels[0].dismissed == 0 {
		t.Fatalf("panel should be dismissed while typing")
	}
	if !h.notifier.has(OutcomePromptRename) {
		t.Fatalf("expected %s outcome", OutcomePromptRename)
	}

	if !h.core.TextSubmitted(h.actor.id, "Oathkeeper") {
		t.Fatalf("text should be captured while awaiting rename")
	}
	h.core.Tick()

	live, _ := h.actor.inv.Get(0)
	if live.CustomName != "Oathkeeper" {
		t.Fatalf("rename did not land, got %q", live.CustomName)
	}
	if sess.State != session.StateViewing {
		t.Fatalf("session should return to viewing")
	}
	if len(h.opener.panels) != 2 {
		t.Fatalf("panel should be reopened after the rename")
	}
}

func TestAddLoreFlow(t *testing.T) {
	h := newHarness(t)
	h.begin(t)

	h.core.PanelSlotClicked(h.actor.id, h.elementSlot("add_lore"), host.ClickPrimary)
	if !h.core.TextSubmitted(h.actor.id, "Forged in the deep") {
		t.Fatalf("text should be captured while awaiting lore")
	}
	h.core.Tick()

	live, _ := h.actor.inv.Get(0)
	if len(live.Lore) != 1 || live.Lore[0] != "Forged in the deep" {
		t.Fatalf("lore line did not land: %v", live.Lore)
	}
}

func TestTextCancelKeepsItem(t *testing.T) {
	h := newHarness(t)
	h.begin(t)

	h.core.PanelSlotClicked(h.actor.id, h.elementSlot("rename"), host.ClickPrimary)
	h.core.TextSubmitted(h.actor.id, "  CANCEL  ")
	h.core.Tick()

	live, _ := h.actor.inv.Get(0)
	if live.CustomName != "" {
		t.Fatalf("cancel must not rename, got %q", live.CustomName)
	}
	if !h.notifier.has(OutcomeInputCancelled) {
		t.Fatalf("expected %s outcome", OutcomeInputCancelled)
	}
	if len(h.opener.panels) != 2 {
		t.Fatalf("panel should be reopened after cancel")
	}
}

func TestPendingTextDroppedWhenSessionCloses(t *testing.T) {
	h := newHarness(t)
	h.begin(t)

	h.core.PanelSlotClicked(h.actor.id, h.elementSlot("rename"), host.ClickPrimary)
	h.core.TextSubmitted(h.actor.id, "Oathkeeper")
	h.core.CloseSession(h.actor.id)
	h.core.Tick()

	live, _ := h.actor.inv.Get(0)
	if live.CustomName != "" {
		t.Fatalf("text for a closed session must be discarded, got %q", live.CustomName)
	}
}

func TestTextIgnoredWhileViewing(t *testing.T) {
	h := newHarness(t)
	h.begin(t)

	if h.core.TextSubmitted(h.actor.id, "hello") {
		t.Fatalf("viewing sessions do not capture text")
	}
}

func TestPanelClosedWhileViewingEndsSession(t *testing.T) {
	h := newHarness(t)
	h.begin(t)

	h.core.PanelClosed(h.actor.id)
	if h.sessions.IsActive(h.actor.id) {
		t.Fatalf("session should end when the panel closes while viewing")
	}
}

func TestPanelClosedWhileTypingKeepsSession(t *testing.T) {
	h := newHarness(t)
	h.begin(t)

	h.core.PanelSlotClicked(h.actor.id, h.elementSlot("rename"), host.ClickPrimary)
	h.core.PanelClosed(h.actor.id)
	if !h.sessions.IsActive(h.actor.id) {
		t.Fatalf("session must survive the expected panel close during a prompt")
	}
}

func TestTeardownEvents(t *testing.T) {
	events := []struct {
		name string
		fire func(c *Core, id string)
	}{
		{"held slot change", func(c *Core, id string) { c.ActorChangedHeldSlot(id) }},
		{"item dropped", func(c *Core, id string) { c.ActorDroppedItem(id) }},
		{"death", func(c *Core, id string) { c.ActorDied(id) }},
		{"disconnect", func(c *Core, id string) { c.ActorDisconnected(id) }},
	}
	for _, ev := range events {
		t.Run(ev.name, func(t *testing.T) {
			h := newHarness(t)
			h.begin(t)
			ev.fire(h.core, h.actor.id)
			if h.sessions.IsActive(h.actor.id) {
				t.Fatalf("session should be closed on %s", ev.name)
			}
		})
	}
}

func TestCloseAll(t *testing.T) {
	h := newHarness(t)
	h.begin(t)
	h.core.CloseAll()
	if h.sessions.Count() != 0 {
		t.Fatalf("CloseAll should clear every session")
	}
	if h.opener.panels[0].displayed {
		t.Fatalf("CloseAll should dismiss panels")
	}
}

func TestClearModifiersAndLore(t *testing.T) {
	h := newHarness(t, rules.PermClearLore)
	sess := h.begin(t)

	slot := h.modifierSlot(t, sess, "flurry")
	h.core.PanelSlotClicked(h.actor.id, slot, host.ClickPrimary)

	if err := h.core.PanelSlotClicked(h.actor.id, h.elementSlot("clear_modifiers"), host.ClickPrimary); err != nil {
		t.Fatalf("clear modifiers: %v", err)
	}
	live, _ := h.actor.inv.Get(0)
	if len(live.Modifiers) != 0 {
		t.Fatalf("modifiers should be cleared")
	}

	// Clearing again is a distinct no-op outcome.
	h.core.PanelSlotClicked(h.actor.id, h.elementSlot("clear_modifiers"), host.ClickPrimary)
	if h.notifier.last() != OutcomeNothingToWipe {
		t.Fatalf("expected %s, got %s", OutcomeNothingToWipe, h.notifier.last())
	}

	// No lore on the demo sword yet.
	h.core.PanelSlotClicked(h.actor.id, h.elementSlot("clear_lore"), host.ClickPrimary)
	if h.notifier.last() != OutcomeLoreEmpty {
		t.Fatalf("expected %s, got %s", OutcomeLoreEmpty, h.notifier.last())
	}
}

func TestConflictBypassPermission(t *testing.T) {
	h := newHarness(t, rules.PermBypassConflict)
	sess := h.begin(t)

	if err := h.core.PanelSlotClicked(h.actor.id, h.modifierSlot(t, sess, "heavy_blow"), host.ClickPrimary); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	if err := h.core.PanelSlotClicked(h.actor.id, h.modifierSlot(t, sess, "keen_edge"), host.ClickPrimary); err != nil {
		t.Fatalf("bypass apply: %v", err)
	}

	live, _ := h.actor.inv.Get(0)
	if live.ModifierLevel("heavy_blow") != 1 || live.ModifierLevel("keen_edge") != 1 {
		t.Fatalf("both modifiers should coexist under bypass, got %v", live.Modifiers)
	}
}

func TestRefreshAfterApplyRerendersLevels(t *testing.T) {
	h := newHarness(t)
	sess := h.begin(t)
	slot := h.modifierSlot(t, sess, "cleave")

	h.core.PanelSlotClicked(h.actor.id, slot, host.ClickPrimary)
	tile, ok := sess.TileAt(slot)
	if !ok {
		t.Fatalf("tile missing after refresh")
	}
	if want := fmt.Sprintf("%s 1/3", "cleave"); tile.Name != want {
		t.Fatalf("expected %q, got %q", want, tile.Name)
	}
}
