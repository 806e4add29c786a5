package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"itemforge/server/internal/panel"
	"itemforge/server/internal/telemetry"
)

// panelFile is the schema of panel.yaml.
type panelFile struct {
	Size          int                       `yaml:"size"`
	Title         string                    `yaml:"title"`
	Placeholder   appearanceYAML            `yaml:"placeholder"`
	Frame         appearanceYAML            `yaml:"frame"`
	Elements      map[string]elementYAML    `yaml:"elements"`
	ModifierSlots []int                     `yaml:"modifier-slots"`
	ModifierTile  tileTemplateYAML          `yaml:"modifier-tile"`
}

type appearanceYAML struct {
	Material  string   `yaml:"material"`
	Name      string   `yaml:"name"`
	Lore      []string `yaml:"lore"`
	ModelData int      `yaml:"model-data"`
}

type elementYAML struct {
	Enabled    *bool          `yaml:"enabled"`
	Slot       *int           `yaml:"slot"`
	Permission string         `yaml:"permission"`
	Material   string         `yaml:"material"`
	Name       string         `yaml:"name"`
	Lore       []string       `yaml:"lore"`
	ModelData  int            `yaml:"model-data"`
}

type tileTemplateYAML struct {
	Material  string   `yaml:"material"`
	Name      string   `yaml:"name"`
	Lore      []string `yaml:"lore"`
	ModelData int      `yaml:"model-data"`
}

func (a appearanceYAML) appearance() panel.Appearance {
	return panel.Appearance{
		Material:  a.Material,
		Name:      a.Name,
		Lore:      append([]string(nil), a.Lore...),
		ModelData: a.ModelData,
	}
}

// loadPanel reads and validates panel.yaml. Malformed elements are skipped
// with a warning; structural problems (bad size, no preview slot) are errors
// because the editor cannot open a panel without them.
func loadPanel(path string, logger telemetry.Logger) (*panel.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var file panelFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return buildPanel(&file, logger)
}

func buildPanel(file *panelFile, logger telemetry.Logger) (*panel.Config, error) {
	if file.Size <= 0 || file.Size > panel.MaxSize || file.Size%panel.RowWidth != 0 {
		return nil, fmt.Errorf("config: panel size %d must be a multiple of %d between %d and %d",
			file.Size, panel.RowWidth, panel.RowWidth, panel.MaxSize)
	}

	cfg := &panel.Config{
		Size:        file.Size,
		Title:       file.Title,
		Placeholder: file.Placeholder.appearance(),
		Frame:       file.Frame.appearance(),
		Elements:    make(map[string]panel.Element, len(file.Elements)),
		ModifierTile: panel.TileTemplate{
			Material:  file.ModifierTile.Material,
			Name:      file.ModifierTile.Name,
			Lore:      append([]string(nil), file.ModifierTile.Lore...),
			ModelData: file.ModifierTile.ModelData,
		},
	}

	// Elements are processed in sorted key order so a malformed file degrades
	// the same way on every load.
	keys := make([]string, 0, len(file.Elements))
	for key := range file.Elements {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	seen := make(map[int]string)
	for _, key := range keys {
		raw := file.Elements[key]
		action, err := panel.ResolveAction(key)
		if err != nil {
			logger.Printf("config: skipping element %q: %v", key, err)
			continue
		}
		enabled := true
		if raw.Enabled != nil {
			enabled = *raw.Enabled
		}
		if raw.Slot == nil {
			logger.Printf("config: skipping element %q: missing slot", key)
			continue
		}
		slot := *raw.Slot
		if slot < 0 || slot >= cfg.Size {
			logger.Printf("config: skipping element %q: slot %d out of range", key, slot)
			continue
		}
		if enabled {
			if prior, dup := seen[slot]; dup {
				logger.Printf("config: skipping element %q: shares slot %d with %q", key, slot, prior)
				continue
			}
			seen[slot] = key
		}
		cfg.Elements[key] = panel.Element{
			Key:        key,
			Action:     action,
			Enabled:    enabled,
			Slot:       slot,
			Permission: raw.Permission,
			Appearance: panel.Appearance{
				Material:  raw.Material,
				Name:      raw.Name,
				Lore:      append([]string(nil), raw.Lore...),
				ModelData: raw.ModelData,
			},
		}
	}

	if cfg.PreviewSlot() < 0 {
		return nil, fmt.Errorf("config: panel requires an enabled preview_item element")
	}

	for _, slot := range file.ModifierSlots {
		if slot < 0 || slot >= cfg.Size {
			logger.Printf("config: dropping modifier slot %d: out of range", slot)
			continue
		}
		cfg.ModifierSlots = append(cfg.ModifierSlots, slot)
	}
	if len(cfg.ModifierSlots) == 0 {
		return nil, fmt.Errorf("config: panel requires at least one modifier slot")
	}
	return cfg, nil
}
