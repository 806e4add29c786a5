package rules

import (
	"errors"
	"testing"

	"itemforge/server/internal/catalog"
	"itemforge/server/internal/host"
	"itemforge/server/internal/item"
)

type fakeActor struct {
	perms map[string]bool
}

func (f *fakeActor) ID() string                      { return "tester" }
func (f *fakeActor) HasPermission(node string) bool  { return f.perms[node] }
func (f *fakeActor) Connected() bool                 { return true }
func (f *fakeActor) HeldSlot() int                   { return 0 }
func (f *fakeActor) Slot(int) host.SlotHandle        { return nil }
func (f *fakeActor) Give(item.Item) bool             { return true }

func actorWith(perms ...string) *fakeActor {
	set := make(map[string]bool, len(perms))
	for _, p := range perms {
		set[p] = true
	}
	return &fakeActor{perms: set}
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	definitions := []byte(`[
		{"key": "keen_edge", "label": "Keen Edge", "cap": 5, "applies": ["weapon"], "conflicts": ["heavy_blow"]},
		{"key": "heavy_blow", "label": "Heavy Blow", "cap": 3, "applies": ["weapon"]},
		{"key": "gilded", "label": "Gilded", "cap": 2, "treasure": true},
		{"key": "withering", "label": "Withering", "cap": 1, "cursed": true},
		{"key": "sturdy", "label": "Sturdy", "cap": 3}
	]`)
	loader, err := catalog.LoadSources(catalog.MemorySource("definitions.json", definitions))
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return loader.Catalog()
}

func defaultPolicy() Policy {
	return Policy{
		AllowTreasure:       true,
		AllowCursed:         true,
		AllowCapBypass:      true,
		AllowConflictBypass: true,
		CapBypassCeiling:    DefaultCapCeiling,
	}
}

func sword() item.Item {
	return item.Item{Type: "iron_sword", Class: item.ClassWeapon, Quantity: 1, MaxStack: 1}
}

func TestApplyClampsToCap(t *testing.T) {
	engine := NewEngine(testCatalog(t))
	actor := actorWith(PermModifyBase)
	it := sword()
	d, _ := engine.catalog.Get("keen_edge")

	changed, err := engine.Apply(&it, d, 40, actor, defaultPolicy())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !changed {
		t.Fatalf("expected apply to report a change")
	}
	if got := it.ModifierLevel("keen_edge"); got != 5 {
		t.Fatalf("expected level clamped to 5, got %d", got)
	}
}

func TestApplyCapBypassUsesCeiling(t *testing.T) {
	engine := NewEngine(testCatalog(t))
	actor := actorWith(PermModifyBase, PermBypassCap)
	it := sword()
	d, _ := engine.catalog.Get("keen_edge")

	changed, err := engine.Apply(&it, d, 1000, actor, defaultPolicy())
	if err != nil || !changed {
		t.Fatalf("apply: changed=%v err=%v", changed, err)
	}
	if got := it.ModifierLevel("keen_edge"); got != DefaultCapCeiling {
		t.Fatalf("expected ceiling %d, got %d", DefaultCapCeiling, got)
	}
}

func TestApplyCapBypassDisabledByPolicy(t *testing.T) {
	engine := NewEngine(testCatalog(t))
	actor := actorWith(PermModifyBase, PermBypassCap)
	pol := defaultPolicy()
	pol.AllowCapBypass = false
	it := sword()
	d, _ := engine.catalog.Get("keen_edge")

	if _, err := engine.Apply(&it, d, 1000, actor, pol); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := it.ModifierLevel("keen_edge"); got != 5 {
		t.Fatalf("expected baseline cap 5, got %d", got)
	}
}

func TestApplyPermissionGates(t *testing.T) {
	engine := NewEngine(testCatalog(t))
	pol := defaultPolicy()
	cases := []struct {
		name  string
		key   string
		perms []string
		want  error
	}{
		{"missing base", "sturdy", nil, ErrPermissionDenied},
		{"treasure without node", "gilded", []string{PermModifyBase}, ErrPermissionDenied},
		{"cursed without node", "withering", []string{PermModifyBase}, ErrPermissionDenied},
		{"treasure with node", "gilded", []string{PermModifyBase, PermModifyTreasure}, nil},
		{"cursed with node", "withering", []string{PermModifyBase, PermModifyCursed}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			it := sword()
			d, _ := engine.catalog.Get(tc.key)
			_, err := engine.Apply(&it, d, 1, actorWith(tc.perms...), pol)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestApplyTreasurePolicyOverridesPermission(t *testing.T) {
	engine := NewEngine(testCatalog(t))
	pol := defaultPolicy()
	pol.AllowTreasure = false
	actor := actorWith(PermModifyBase, PermModifyTreasure)
	it := sword()
	d, _ := engine.catalog.Get("gilded")

	if _, err := engine.Apply(&it, d, 1, actor, pol); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
}

func TestApplyConflictRejected(t *testing.T) {
	engine := NewEngine(testCatalog(t))
	actor := actorWith(PermModifyBase)
	pol := defaultPolicy()
	pol.AllowConflictBypass = false

	it := sword()
	it.SetModifier("heavy_blow", 2)
	d, _ := engine.catalog.Get("keen_edge")

	_, err := engine.Apply(&it, d, 1, actor, pol)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if conflict.Conflicting != "heavy_blow" {
		t.Fatalf("expected heavy_blow as conflicting key, got %s", conflict.Conflicting)
	}
	if it.ModifierLevel("keen_edge") != 0 {
		t.Fatalf("conflicting apply must not write")
	}
}

func TestApplyConflictBypass(t *testing.T) {
	engine := NewEngine(testCatalog(t))
	actor := actorWith(PermModifyBase, PermBypassConflict)

	it := sword()
	it.SetModifier("heavy_blow", 2)
	d, _ := engine.catalog.Get("keen_edge")

	changed, err := engine.Apply(&it, d, 1, actor, defaultPolicy())
	if err != nil || !changed {
		t.Fatalf("apply: changed=%v err=%v", changed, err)
	}
	if it.ModifierLevel("keen_edge") != 1 {
		t.Fatalf("bypass apply should have written level 1")
	}
}

func TestConflictsExemptsStorageItems(t *testing.T) {
	engine := NewEngine(testCatalog(t))
	tome := item.Item{Type: "worn_tome", Class: item.ClassTome, Quantity: 1, MaxStack: 1}
	tome.SetModifier("heavy_blow", 2)
	d, _ := engine.catalog.Get("keen_edge")

	if key, found := engine.Conflicts(d, tome); found {
		t.Fatalf("storage items must be conflict exempt, got %s", key)
	}

	actor := actorWith(PermModifyBase)
	pol := defaultPolicy()
	pol.AllowConflictBypass = false
	if _, err := engine.Apply(&tome, d, 3, actor, pol); err != nil {
		t.Fatalf("apply on storage item: %v", err)
	}
}

func TestApplyZeroRemoves(t *testing.T) {
	engine := NewEngine(testCatalog(t))
	actor := actorWith(PermModifyBase)
	it := sword()
	it.SetModifier("keen_edge", 3)
	d, _ := engine.catalog.Get("keen_edge")

	changed, err := engine.Apply(&it, d, 0, actor, defaultPolicy())
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !changed {
		t.Fatalf("removal of a present modifier must report a change")
	}
	if it.ModifierLevel("keen_edge") != 0 {
		t.Fatalf("modifier still present after removal")
	}

	changed, err = engine.Apply(&it, d, 0, actor, defaultPolicy())
	if err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if changed {
		t.Fatalf("removing an absent modifier must not report a change")
	}
}

func TestRemoveAllTwice(t *testing.T) {
	engine := NewEngine(testCatalog(t))
	it := sword()
	it.SetModifier("keen_edge", 1)
	it.SetModifier("sturdy", 2)

	if !engine.RemoveAll(&it) {
		t.Fatalf("first RemoveAll should report a change")
	}
	if engine.RemoveAll(&it) {
		t.Fatalf("second RemoveAll should be a no-op")
	}
}

func TestApplicableFiltersAndSorts(t *testing.T) {
	engine := NewEngine(testCatalog(t))
	actor := actorWith(PermModifyBase)
	pol := defaultPolicy()

	got := engine.Applicable(sword(), actor, pol)
	want := []string{"heavy_blow", "keen_edge", "sturdy"}
	if len(got) != len(want) {
		t.Fatalf("expected %d applicable modifiers, got %d", len(want), len(got))
	}
	for i, d := range got {
		if d.Key != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], d.Key)
		}
	}
}

func TestApplicableIncludesEverythingForStorage(t *testing.T) {
	engine := NewEngine(testCatalog(t))
	actor := actorWith(PermModifyBase, PermModifyTreasure, PermModifyCursed)
	tome := item.Item{Type: "worn_tome", Class: item.ClassTome, Quantity: 1, MaxStack: 1}

	if got := len(engine.Applicable(tome, actor, defaultPolicy())); got != 5 {
		t.Fatalf("expected all 5 modifiers for storage item, got %d", got)
	}
}

func TestClickTarget(t *testing.T) {
	cases := []struct {
		name         string
		kind         host.ClickKind
		current      int
		limit        int
		wantTarget   int
		wantExplicit bool
	}{
		{"primary increments", host.ClickPrimary, 2, 5, 3, false},
		{"primary at limit holds", host.ClickPrimary, 5, 5, 5, false},
		{"primary alt jumps to limit", host.ClickPrimaryAlt, 1, 5, 5, false},
		{"secondary decrements", host.ClickSecondary, 2, 5, 1, false},
		{"secondary at zero holds", host.ClickSecondary, 0, 5, 0, false},
		{"secondary alt removes", host.ClickSecondaryAlt, 3, 5, 0, true},
		{"secondary alt on absent", host.ClickSecondaryAlt, 0, 5, 0, false},
		{"cap one toggles up", host.ClickPrimary, 0, 1, 1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target, explicit := ClickTarget(tc.kind, tc.current, tc.limit)
			if target != tc.wantTarget || explicit != tc.wantExplicit {
				t.Fatalf("got target=%d explicit=%v, want target=%d explicit=%v",
					target, explicit, tc.wantTarget, tc.wantExplicit)
			}
		})
	}
}
