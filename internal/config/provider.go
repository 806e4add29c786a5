package config

import (
	"sync/atomic"

	"itemforge/server/internal/item"
	"itemforge/server/internal/panel"
	"itemforge/server/internal/rules"
	"itemforge/server/internal/telemetry"
)

// Bundle is one immutable loaded configuration generation.
type Bundle struct {
	Settings  Settings
	Panel     *panel.Config
	blacklist map[item.Type]struct{}
}

// Blacklisted reports whether the item type is excluded from editing.
func (b *Bundle) Blacklisted(t item.Type) bool {
	_, ok := b.blacklist[t]
	return ok
}

// Provider owns the current configuration bundle. Readers take the whole
// bundle and work from it, so a concurrent reload never splits a decision
// across two generations.
type Provider struct {
	settingsPath string
	panelPath    string
	logger       telemetry.Logger
	current      atomic.Pointer[Bundle]
}

// NewProvider performs the initial load. Both files must parse; an editor
// without valid configuration cannot start.
func NewProvider(settingsPath, panelPath string, logger telemetry.Logger) (*Provider, error) {
	if logger == nil {
		logger = telemetry.LoggerFunc(nil)
	}
	p := &Provider{settingsPath: settingsPath, panelPath: panelPath, logger: logger}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewStaticProvider wraps an in-memory bundle. Used by tests.
func NewStaticProvider(settings Settings, panelCfg *panel.Config) *Provider {
	p := &Provider{logger: telemetry.LoggerFunc(nil)}
	p.current.Store(&Bundle{
		Settings:  settings,
		Panel:     panelCfg,
		blacklist: buildBlacklist(settings.Blacklist),
	})
	return p
}

// Reload re-reads both files and swaps the bundle atomically. On error the
// previous bundle stays in place.
func (p *Provider) Reload() error {
	settings, err := loadSettings(p.settingsPath)
	if err != nil {
		return err
	}
	panelCfg, err := loadPanel(p.panelPath, p.logger)
	if err != nil {
		return err
	}
	p.current.Store(&Bundle{
		Settings:  settings,
		Panel:     panelCfg,
		blacklist: buildBlacklist(settings.Blacklist),
	})
	return nil
}

// Bundle returns the current configuration generation.
func (p *Provider) Bundle() *Bundle {
	return p.current.Load()
}

// Settings returns the current settings.
func (p *Provider) Settings() Settings {
	return p.Bundle().Settings
}

// Panel returns the current panel layout.
func (p *Provider) Panel() *panel.Config {
	return p.Bundle().Panel
}

// Policy derives the rule engine policy from the current settings.
func (p *Provider) Policy() rules.Policy {
	return p.Settings().Policy()
}
