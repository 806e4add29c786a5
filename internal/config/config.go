// Package config loads the editor's runtime configuration: the settings file
// with policy flags and the item blacklist, and the panel layout file. Both
// are YAML. A Provider holds the loaded bundle behind an atomic pointer so
// reloads swap everything at once and readers never see a half-applied
// configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"itemforge/server/internal/item"
	"itemforge/server/internal/rules"
)

// Settings is the schema of settings.yaml.
type Settings struct {
	AllowTreasure       bool     `yaml:"allow-treasure-modifiers"`
	AllowCursed         bool     `yaml:"allow-cursed-modifiers"`
	AllowCapBypass      bool     `yaml:"allow-cap-bypass"`
	AllowConflictBypass bool     `yaml:"allow-conflict-bypass"`
	CapBypassCeiling    int      `yaml:"cap-bypass-ceiling"`
	Blacklist           []string `yaml:"blacklisted-items"`
}

// DefaultSettings returns the values used when settings.yaml omits a key.
func DefaultSettings() Settings {
	return Settings{
		AllowTreasure:       true,
		AllowCursed:         true,
		AllowCapBypass:      true,
		AllowConflictBypass: true,
		CapBypassCeiling:    rules.DefaultCapCeiling,
	}
}

// Policy derives the rule engine policy from the settings.
func (s Settings) Policy() rules.Policy {
	return rules.Policy{
		AllowTreasure:       s.AllowTreasure,
		AllowCursed:         s.AllowCursed,
		AllowCapBypass:      s.AllowCapBypass,
		AllowConflictBypass: s.AllowConflictBypass,
		CapBypassCeiling:    s.CapBypassCeiling,
	}
}

func loadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if settings.CapBypassCeiling < 1 {
		settings.CapBypassCeiling = rules.DefaultCapCeiling
	}
	return settings, nil
}

func buildBlacklist(types []string) map[item.Type]struct{} {
	if len(types) == 0 {
		return nil
	}
	set := make(map[item.Type]struct{}, len(types))
	for _, t := range types {
		if t == "" {
			continue
		}
		set[item.Type(t)] = struct{}{}
	}
	return set
}
