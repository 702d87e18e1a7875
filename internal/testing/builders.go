package testing

import (
	"maps"
	"slices"

	"github.com/imamik/bundletester/internal/config"
	"github.com/imamik/bundletester/internal/environment"
)

// ConfigBuilder provides a fluent interface for constructing test configs.
// Each method returns a new builder (immutable) for chaining.
type ConfigBuilder struct {
	cfg config.Config
}

// NewConfigBuilder creates a new ConfigBuilder starting from config.Default().
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{cfg: *config.Default()}
}

// WithBootstrap sets whether a missing environment may be bootstrapped.
func (b *ConfigBuilder) WithBootstrap(enabled bool) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Bootstrap = enabled
	return newBuilder
}

// WithSources appends package sources.
func (b *ConfigBuilder) WithSources(sources ...string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Sources = append(newBuilder.cfg.Sources, sources...)
	return newBuilder
}

// WithPackages appends packages.
func (b *ConfigBuilder) WithPackages(pkgs ...string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Packages = append(newBuilder.cfg.Packages, pkgs...)
	return newBuilder
}

// Build returns the constructed config.
func (b *ConfigBuilder) Build() *config.Config {
	cfg := b.clone().cfg
	return &cfg
}

func (b *ConfigBuilder) clone() *ConfigBuilder {
	cfg := b.cfg
	cfg.Sources = slices.Clone(b.cfg.Sources)
	cfg.Packages = slices.Clone(b.cfg.Packages)
	return &ConfigBuilder{cfg: cfg}
}

// StatusBuilder constructs environment status snapshots.
type StatusBuilder struct {
	status environment.Status
}

// NewStatus creates a StatusBuilder with only the bootstrap machine.
func NewStatus() *StatusBuilder {
	return &StatusBuilder{status: environment.Status{
		Services: map[string]environment.ServiceStatus{},
		Machines: map[string]environment.MachineStatus{
			"0": {AgentState: "started"},
		},
	}}
}

// WithService adds a started service with the given units.
func (b *StatusBuilder) WithService(name string, units ...string) *StatusBuilder {
	newBuilder := b.clone()
	svc := environment.ServiceStatus{Charm: "cs:" + name, Units: map[string]environment.UnitStatus{}}
	for _, unit := range units {
		svc.Units[unit] = environment.UnitStatus{AgentState: "started"}
	}
	newBuilder.status.Services[name] = svc
	return newBuilder
}

// WithMachine adds a started machine.
func (b *StatusBuilder) WithMachine(id string) *StatusBuilder {
	newBuilder := b.clone()
	newBuilder.status.Machines[id] = environment.MachineStatus{AgentState: "started"}
	return newBuilder
}

// Build returns the constructed status.
func (b *StatusBuilder) Build() *environment.Status {
	status := b.clone().status
	return &status
}

func (b *StatusBuilder) clone() *StatusBuilder {
	return &StatusBuilder{status: environment.Status{
		Services: maps.Clone(b.status.Services),
		Machines: maps.Clone(b.status.Machines),
	}}
}
