// Package panel turns a declarative panel configuration and the current
// session state into concrete slot contents. Rendering is a pure function:
// the same inputs always produce identical tiles, so re-render calls are
// idempotent by construction.
package panel

import (
	"strconv"
	"strings"
)

// Tile is the rendered content of one panel slot. The zero value is an empty
// slot. Tag carries the modifier key for modifier display tiles so a click
// can be routed back to the right catalog entry; it has no other meaning.
type Tile struct {
	Material  string
	Name      string
	Lore      []string
	Quantity  int
	ModelData int
	Tag       string
}

// Empty reports whether the tile renders as an empty slot.
func (t Tile) Empty() bool {
	return t.Material == "" && t.Quantity == 0
}

// Equal compares two tiles field by field.
func (t Tile) Equal(other Tile) bool {
	if t.Material != other.Material || t.Name != other.Name ||
		t.Quantity != other.Quantity || t.ModelData != other.ModelData ||
		t.Tag != other.Tag || len(t.Lore) != len(other.Lore) {
		return false
	}
	for i := range t.Lore {
		if t.Lore[i] != other.Lore[i] {
			return false
		}
	}
	return true
}

// ModifierTile is the engine-computed state of one applicable modifier,
// ready for template substitution.
type ModifierTile struct {
	Key         string
	Label       string
	Level       int
	Cap         int
	BaselineCap int
	Conflicting bool
}

// Pagination reports the clamped page cursor after a render pass.
type Pagination struct {
	Page       int
	TotalPages int
}

// Render produces the full slot assignment for the panel: static buttons,
// decorative fill, the preview item, the paged modifier display, and the
// pagination controls. preview is the tile representing the session's
// preview item; mods is the ordered applicable-modifier list; page is the
// session's current page index, clamped into range here.
func Render(cfg *Config, preview Tile, mods []ModifierTile, page int) ([]Tile, Pagination) {
	tiles := make([]Tile, cfg.Size)

	occupied := make(map[int]bool, len(cfg.Elements)+len(cfg.ModifierSlots))
	for _, el := range cfg.Elements {
		if el.Enabled && el.Slot >= 0 && el.Slot < cfg.Size {
			occupied[el.Slot] = true
		}
	}
	for _, slot := range cfg.ModifierSlots {
		if slot >= 0 && slot < cfg.Size {
			occupied[slot] = true
		}
	}

	filler := appearanceTile(cfg.Placeholder)

	// Border rows: decorative filler in every unoccupied slot.
	for slot := 0; slot < RowWidth && slot < cfg.Size; slot++ {
		if !occupied[slot] {
			tiles[slot] = filler
		}
	}
	for slot := cfg.Size - RowWidth; slot < cfg.Size; slot++ {
		if slot >= 0 && !occupied[slot] {
			tiles[slot] = filler
		}
	}

	// Decorative frame around the preview slot.
	previewSlot := cfg.PreviewSlot()
	if previewSlot >= 0 {
		frame := appearanceTile(cfg.Frame)
		for _, slot := range frameSlots(previewSlot, cfg.Size) {
			if !occupied[slot] {
				tiles[slot] = frame
				occupied[slot] = true
			}
		}
	}

	// Static elements. The preview slot and pagination controls are placed
	// dynamically below.
	for _, el := range cfg.Elements {
		if !el.Enabled || el.Action == ActionPreview || el.Action.paging() {
			continue
		}
		if el.Slot >= 0 && el.Slot < cfg.Size {
			tiles[el.Slot] = appearanceTile(el.Appearance)
		}
	}

	// Live preview item.
	if previewSlot >= 0 && previewSlot < cfg.Size {
		tiles[previewSlot] = preview
	}

	// Paged modifier display. Trailing configured slots stay empty, not
	// filler, so a short page reads as a short page.
	slotsPerPage := len(cfg.ModifierSlots)
	totalPages := 1
	if slotsPerPage > 0 && len(mods) > 0 {
		totalPages = (len(mods) + slotsPerPage - 1) / slotsPerPage
	}
	if page > totalPages-1 {
		page = totalPages - 1
	}
	if page < 0 {
		page = 0
	}
	if slotsPerPage > 0 {
		start := page * slotsPerPage
		end := start + slotsPerPage
		if end > len(mods) {
			end = len(mods)
		}
		for i, slot := range cfg.ModifierSlots {
			if slot < 0 || slot >= cfg.Size {
				continue
			}
			idx := start + i
			if idx < end {
				tiles[slot] = modifierTile(cfg.ModifierTile, mods[idx])
			} else {
				tiles[slot] = Tile{}
			}
		}
	}

	// Pagination controls: inactive arrows collapse into filler, the info
	// tile always renders with the 1-based cursor substituted in.
	pg := Pagination{Page: page, TotalPages: totalPages}
	renderPagingElement(cfg, tiles, ActionPagePrev, page > 0, filler, pg)
	renderPagingElement(cfg, tiles, ActionPageNext, page < totalPages-1, filler, pg)
	renderPageInfo(cfg, tiles, pg)
	return tiles, pg
}

func renderPagingElement(cfg *Config, tiles []Tile, kind ActionKind, active bool, filler Tile, pg Pagination) {
	for _, el := range cfg.Elements {
		if el.Action != kind || !el.Enabled || el.Slot < 0 || el.Slot >= cfg.Size {
			continue
		}
		if active {
			tiles[el.Slot] = appearanceTile(el.Appearance)
		} else {
			tiles[el.Slot] = filler
		}
	}
}

func renderPageInfo(cfg *Config, tiles []Tile, pg Pagination) {
	for _, el := range cfg.Elements {
		if el.Action != ActionPageInfo || !el.Enabled || el.Slot < 0 || el.Slot >= cfg.Size {
			continue
		}
		repl := strings.NewReplacer(
			"{page}", strconv.Itoa(pg.Page+1),
			"{total_pages}", strconv.Itoa(pg.TotalPages),
		)
		tile := appearanceTile(el.Appearance)
		tile.Name = repl.Replace(tile.Name)
		for i, line := range tile.Lore {
			tile.Lore[i] = repl.Replace(line)
		}
		tiles[el.Slot] = tile
	}
}

func appearanceTile(a Appearance) Tile {
	tile := Tile{
		Material:  a.Material,
		Name:      a.Name,
		Quantity:  1,
		ModelData: a.ModelData,
	}
	if len(a.Lore) > 0 {
		tile.Lore = append([]string(nil), a.Lore...)
	}
	if tile.Material == "" {
		return Tile{}
	}
	return tile
}

const (
	guardConflict    = "{when_conflict}"
	guardCanIncrease = "{when_can_increase}"
	guardCanDecrease = "{when_can_decrease}"
	guardAbsent      = "{when_absent}"
)

func modifierTile(tpl TileTemplate, mod ModifierTile) Tile {
	repl := strings.NewReplacer(
		"{modifier_name}", mod.Label,
		"{level}", strconv.Itoa(mod.Level),
		"{cap}", strconv.Itoa(mod.Cap),
		"{baseline_cap}", strconv.Itoa(mod.BaselineCap),
		"{modifier_key}", mod.Key,
	)
	tile := Tile{
		Material:  tpl.Material,
		Name:      repl.Replace(tpl.Name),
		Quantity:  1,
		ModelData: tpl.ModelData,
		Tag:       mod.Key,
	}
	for _, line := range tpl.Lore {
		switch {
		case strings.HasPrefix(line, guardConflict):
			if !mod.Conflicting {
				continue
			}
			line = strings.TrimPrefix(line, guardConflict)
		case strings.HasPrefix(line, guardCanIncrease):
			if mod.Conflicting || mod.Level >= mod.Cap {
				continue
			}
			line = strings.TrimPrefix(line, guardCanIncrease)
		case strings.HasPrefix(line, guardCanDecrease):
			if mod.Conflicting || mod.Level <= 0 {
				continue
			}
			line = strings.TrimPrefix(line, guardCanDecrease)
		case strings.HasPrefix(line, guardAbsent):
			if mod.Conflicting || mod.Level != 0 {
				continue
			}
			line = strings.TrimPrefix(line, guardAbsent)
		}
		tile.Lore = append(tile.Lore, repl.Replace(line))
	}
	return tile
}

// frameSlots returns the in-bounds neighbors of the preview slot, forming a
// ring one slot wide.
func frameSlots(center, size int) []int {
	col := center % RowWidth
	slots := make([]int, 0, 8)
	for _, dRow := range []int{-1, 0, 1} {
		for _, dCol := range []int{-1, 0, 1} {
			if dRow == 0 && dCol == 0 {
				continue
			}
			c := col + dCol
			if c < 0 || c >= RowWidth {
				continue
			}
			slot := center + dRow*RowWidth + dCol
			if slot >= 0 && slot < size {
				slots = append(slots, slot)
			}
		}
	}
	return slots
}
