package providers

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/km-arc/go-dice/framework/config"
	"github.com/km-arc/go-dice/framework/container"
	"github.com/km-arc/go-dice/framework/inspect"
	"github.com/km-arc/go-dice/framework/rules"
	"github.com/km-arc/go-dice/framework/typeinfo"
)

// Type names under which the framework's own services are registered.
const (
	ConfigType = "dice.Config"
	LoggerType = "dice.Logger"
	RouterType = "dice.Router"
)

// RegisterTypes adds the framework service types to reg.
func RegisterTypes(reg *typeinfo.Registry) error {
	if err := reg.Register(ConfigType, (*config.Config)(nil)); err != nil {
		return fmt.Errorf("providers: %w", err)
	}
	if err := reg.Register(LoggerType, (*zap.Logger)(nil)); err != nil {
		return fmt.Errorf("providers: %w", err)
	}
	if err := reg.Register(RouterType, inspect.NewRouter, typeinfo.Params("container", "log")); err != nil {
		return fmt.Errorf("providers: %w", err)
	}
	return nil
}

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider seeds the loaded configuration and the logger as
// shared instances.
//
// Seeded types:
//   - dice.Config → *config.Config
//   - dice.Logger → *zap.Logger
type ConfigServiceProvider struct {
	container.BaseProvider
	Config *config.Config
	Logger *zap.Logger
}

func (p *ConfigServiceProvider) Register(c *container.Container) error {
	if p.Config == nil {
		return fmt.Errorf("providers: ConfigServiceProvider without a config")
	}
	log := p.Logger
	if log == nil {
		log = c.Logger()
	}
	return c.AddInstances(map[string]any{
		ConfigType: p.Config,
		LoggerType: log,
	})
}

// ── RulesServiceProvider ──────────────────────────────────────────────────────

// RulesServiceProvider loads a YAML rule file into the container.
// An empty Path registers nothing.
type RulesServiceProvider struct {
	container.BaseProvider
	Path string
}

func (p *RulesServiceProvider) Register(c *container.Container) error {
	if p.Path == "" {
		return nil
	}
	c.Logger().Info("loading rules", zap.String("path", p.Path))
	return rules.LoadInto(c, p.Path)
}

// ── InspectServiceProvider ────────────────────────────────────────────────────

// InspectServiceProvider registers the introspection router. It is deferred:
// the rule is only added when dice.Router is first resolved.
//
// Provided types:
//   - dice.Router → *routing.Router serving the inspect routes
type InspectServiceProvider struct {
	container.BaseProvider
}

func (p *InspectServiceProvider) Register(c *container.Container) error {
	return c.AddRule(RouterType, container.Shared(true))
}

func (p *InspectServiceProvider) Provides() []string { return []string{RouterType} }
func (p *InspectServiceProvider) IsDeferred() bool   { return true }
