package panel

// RowWidth is the fixed panel row width; panel sizes are multiples of it.
const RowWidth = 9

// MaxSize caps the panel at six rows.
const MaxSize = 54

// Appearance describes how a tile looks. Material and name/lore strings are
// opaque to the core; the host adapter renders them.
type Appearance struct {
	Material  string
	Name      string
	Lore      []string
	ModelData int
}

// Element is one enabled, validated static panel element. Instances come out
// of the config loader; the render engine treats them as read-only.
type Element struct {
	Key        string
	Action     ActionKind
	Enabled    bool
	Slot       int
	Permission string
	Appearance Appearance
}

// TileTemplate declares the appearance of the per-modifier display tiles.
// Name and lore lines accept the {modifier_name}, {level}, {cap},
// {baseline_cap} and {modifier_key} placeholders. Lore lines may begin with
// one of the conditional guards {when_conflict}, {when_can_increase},
// {when_can_decrease} or {when_absent}; guarded lines are emitted only when
// the tile state satisfies the guard.
type TileTemplate struct {
	Material  string
	Name      string
	Lore      []string
	ModelData int
}

// Config is the declarative panel layout. It is produced by the config
// loader and never mutated by the engine.
type Config struct {
	Size          int
	Title         string
	Placeholder   Appearance
	Frame         Appearance
	Elements      map[string]Element
	ModifierSlots []int
	ModifierTile  TileTemplate
}

// Element looks up a static element by key.
func (c *Config) Element(key string) (Element, bool) {
	el, ok := c.Elements[key]
	return el, ok
}

// ElementBySlot finds the enabled static element occupying slot, if any.
func (c *Config) ElementBySlot(slot int) (Element, bool) {
	for _, el := range c.Elements {
		if el.Enabled && el.Slot == slot {
			return el, true
		}
	}
	return Element{}, false
}

// PreviewSlot returns the configured preview slot, or -1 when absent.
func (c *Config) PreviewSlot() int {
	if el, ok := c.Elements["preview_item"]; ok && el.Enabled {
		return el.Slot
	}
	return -1
}
