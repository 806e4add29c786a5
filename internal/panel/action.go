package panel

import "fmt"

// ActionKind is the closed set of things a static panel element can do.
// Element keys in the panel config are resolved to an ActionKind once at
// load time; an unknown key is a load error, never a silent fall-through
// at click time.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionPreview
	ActionRename
	ActionAddLore
	ActionClearLore
	ActionClearModifiers
	ActionRepair
	ActionDuplicate
	ActionPagePrev
	ActionPageNext
	ActionPageInfo
)

var actionsByKey = map[string]ActionKind{
	"preview_item":    ActionPreview,
	"rename":          ActionRename,
	"add_lore":        ActionAddLore,
	"clear_lore":      ActionClearLore,
	"clear_modifiers": ActionClearModifiers,
	"repair":          ActionRepair,
	"duplicate":       ActionDuplicate,
	"page_prev":       ActionPagePrev,
	"page_next":       ActionPageNext,
	"page_info":       ActionPageInfo,
}

// ResolveAction maps a declarative element key to its action kind.
func ResolveAction(key string) (ActionKind, error) {
	kind, ok := actionsByKey[key]
	if !ok {
		return ActionNone, fmt.Errorf("panel: unknown element key %q", key)
	}
	return kind, nil
}

func (a ActionKind) String() string {
	for key, kind := range actionsByKey {
		if kind == a {
			return key
		}
	}
	return "none"
}

// paging reports whether the action belongs to the dynamically rendered
// pagination controls.
func (a ActionKind) paging() bool {
	return a == ActionPagePrev || a == ActionPageNext || a == ActionPageInfo
}
