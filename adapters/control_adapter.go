// File: adapters/control_adapter.go
// Author: momentics <momentics@gmail.com>
//
// ControlAdapter bundles the control package's three primitives (config,
// metrics, debug probes) behind a single façade a deployment wires into its
// own admin surface (HTTP handler, signal handler, whatever). Grounded on
// the teacher's own adapters/control_adapter.go bridging pattern, with the
// api.Control/api.Debug interface indirection dropped since the protocol
// layer it served is out of this repo's scope.

package adapters

import "github.com/momentics/ioreactor/control"

// ControlAdapter exposes a reactor deployment's runtime control surface.
type ControlAdapter struct {
	config  *control.ConfigStore
	metrics *control.MetricsRegistry
	debug   *control.DebugProbes
}

// NewControlAdapter constructs a ControlAdapter with platform probes registered.
func NewControlAdapter() *ControlAdapter {
	adapter := &ControlAdapter{
		config:  control.NewConfigStore(),
		metrics: control.NewMetricsRegistry(),
		debug:   control.NewDebugProbes(),
	}
	control.RegisterPlatformProbes(adapter.debug)
	return adapter
}

// Config returns the underlying config store.
func (c *ControlAdapter) Config() *control.ConfigStore { return c.config }

// Metrics returns the underlying metrics registry.
func (c *ControlAdapter) Metrics() *control.MetricsRegistry { return c.metrics }

// Debug returns the underlying debug probe set.
func (c *ControlAdapter) Debug() *control.DebugProbes { return c.debug }

// GetConfig returns a snapshot of the current configuration.
func (c *ControlAdapter) GetConfig() map[string]any {
	return c.config.GetSnapshot()
}

// SetConfig merges and applies new configuration, then triggers reload hooks.
func (c *ControlAdapter) SetConfig(cfg map[string]any) error {
	c.config.SetConfig(cfg)
	control.TriggerHotReload()
	return nil
}

// Stats returns a merged view of config, metrics and debug probe state.
func (c *ControlAdapter) Stats() map[string]any {
	combined := make(map[string]any)
	for k, v := range c.config.GetSnapshot() {
		combined[k] = v
	}
	for k, v := range c.metrics.GetSnapshot() {
		combined["metrics."+k] = v
	}
	for k, v := range c.debug.DumpState() {
		combined["debug."+k] = v
	}
	return combined
}

// OnReload registers a callback invoked on configuration changes.
func (c *ControlAdapter) OnReload(fn func()) {
	c.config.OnReload(fn)
	control.RegisterReloadHook(fn)
}

// RegisterDebugProbe registers a named debug probe function.
func (c *ControlAdapter) RegisterDebugProbe(name string, fn func() any) {
	c.debug.RegisterProbe(name, fn)
}
