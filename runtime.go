// runtime.go: Host-side table runtime composing resolution, lifecycle,
// hooks, and events
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gridplugins

import (
	"context"
	"sync"
)

// TableRuntime is the host component's entry point into the plugin system.
// It resolves the requested plugin set, owns the shared context and the
// scheduler, and exposes the surfaces the host drives: lifecycle, table
// events, and hook dispatch.
//
// The runtime assumes the host's single UI thread: Start, Mount, Emit,
// ApplyConfig, and Shutdown are called sequentially, and scheduled callbacks
// fire between host calls rather than concurrently with them. The internal
// mutex only guards the coarse started/stopped transitions.
type TableRuntime struct {
	config    TableConfig
	logger    Logger
	scheduler *Scheduler
	ctx       *PluginContext
	orch      *lifecycleOrchestrator
	hooks     *HookDispatcher
	events    *tableEventBus

	diagnostics []ResolutionDiagnostic

	mu      sync.Mutex
	started bool
	mounted bool
	stopped bool
}

// NewTableRuntime builds a runtime from the host configuration and an
// ordered list of plugin factories. Factory declaration order is the
// tiebreak for every ordering decision the runtime makes.
func NewTableRuntime(config TableConfig, factories ...PluginFactory) *TableRuntime {
	setTableConfigDefaults(&config)

	requested := make([]PluginDescriptor, 0, len(factories))
	for _, factory := range factories {
		if factory == nil {
			continue
		}
		requested = append(requested, factory(config))
	}

	return newTableRuntimeFromDescriptors(config, requested)
}

// NewTableRuntimeFromDescriptors builds a runtime from already-constructed
// descriptors. Mostly useful for tests and hosts that assemble descriptors
// themselves.
func NewTableRuntimeFromDescriptors(config TableConfig, descriptors []PluginDescriptor) *TableRuntime {
	setTableConfigDefaults(&config)
	return newTableRuntimeFromDescriptors(config, descriptors)
}

func newTableRuntimeFromDescriptors(config TableConfig, requested []PluginDescriptor) *TableRuntime {
	logger := config.Logger.With("component", "table-runtime")

	ordered, diagnostics := ResolvePlugins(requested, logger)

	scheduler := NewScheduler(config.Clock, logger)
	ctx := NewPluginContext(config.props(), scheduler, config.Store, config.Logger)
	hooks := NewHookDispatcher(logger)
	events := newTableEventBus(logger)
	orch := newLifecycleOrchestrator(ordered, ctx, scheduler, hooks, events, logger)

	logger.Info("Table runtime assembled",
		"table_id", config.EffectiveTableID(),
		"requested_plugins", len(requested),
		"active_plugins", len(ordered),
		"excluded_plugins", len(diagnostics))

	return &TableRuntime{
		config:      config,
		logger:      logger,
		scheduler:   scheduler,
		ctx:         ctx,
		orch:        orch,
		hooks:       hooks,
		events:      events,
		diagnostics: diagnostics,
	}
}

// Start runs the install and setup stages for every active plugin in
// resolved order. Idempotent: a second call is rejected without side
// effects.
func (r *TableRuntime) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return NewRuntimeStateError("runtime has been shut down")
	}
	if r.started {
		return NewRuntimeStateError("runtime is already started")
	}

	if err := r.config.Validate(); err != nil {
		return err
	}

	r.orch.installAll()
	r.orch.setupAll()
	r.started = true

	r.logger.Info("Table runtime started", "table_id", r.config.EffectiveTableID())
	return nil
}

// Mount attaches the render surface and runs the onMount stage. Must follow
// Start; mounting twice is rejected.
func (r *TableRuntime) Mount(surface RenderSurface) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return NewRuntimeNotStartedError("mount")
	}
	if r.mounted {
		return NewRuntimeStateError("runtime is already mounted")
	}

	r.orch.mountAll(surface)
	r.mounted = true
	return nil
}

// ApplyConfig replaces the host configuration snapshot and runs the update
// stage. Update callbacks are idempotent, so repeated application of the
// same configuration is safe. Runtime services (logger, store, clock) keep
// their original values.
func (r *TableRuntime) ApplyConfig(config TableConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return NewRuntimeNotStartedError("apply config")
	}

	config.Logger = r.config.Logger
	config.Store = r.config.Store
	config.Clock = r.config.Clock
	setTableConfigDefaults(&config)
	if err := config.Validate(); err != nil {
		return err
	}

	r.config = config
	r.orch.updateAll(config.props())
	r.logger.Info("Table runtime configuration applied", "table_id", config.EffectiveTableID())
	return nil
}

// Emit broadcasts a host-driven table event to every registered handler in
// resolved order. Nothing a handler does can propagate back into the host's
// render path.
func (r *TableRuntime) Emit(event TableEvent) {
	if event.Time.IsZero() {
		event.Time = cachedNow()
	}
	r.events.emit(event)
}

// EffectiveColumns runs the base column list through the effective-columns
// pipeline hook and returns the decorated list the host should render.
func (r *TableRuntime) EffectiveColumns(base []Column) []Column {
	result := r.hooks.Pipeline(HookEffectiveColumns, base)
	columns, ok := result.([]Column)
	if !ok {
		return base
	}
	return columns
}

// RowDecorators collects the row decorators contributed by active plugins.
func (r *TableRuntime) RowDecorators() []RowDecorator {
	var decorators []RowDecorator
	for _, result := range r.hooks.Collect(HookRowDecorators, nil) {
		if decorator, ok := result.(RowDecorator); ok {
			decorators = append(decorators, decorator)
		}
	}
	return decorators
}

// Hooks exposes the dispatcher for host-defined extension points beyond the
// well-known ones.
func (r *TableRuntime) Hooks() *HookDispatcher {
	return r.hooks
}

// Helpers returns the narrow read-only accessor over the shared helper
// namespace. External callers can invoke plugin operations through it but
// cannot register or replace helpers.
func (r *TableRuntime) Helpers() HelperReader {
	return r.ctx
}

// Diagnostics returns the resolution diagnostics recorded while the
// requested plugin set was validated.
func (r *TableRuntime) Diagnostics() []ResolutionDiagnostic {
	out := make([]ResolutionDiagnostic, len(r.diagnostics))
	copy(out, r.diagnostics)
	return out
}

// PluginState returns the lifecycle state of one plugin.
func (r *TableRuntime) PluginState(name string) (PluginState, bool) {
	state, ok := r.orch.states()[name]
	return state, ok
}

// Stats assembles a point-in-time snapshot of the runtime.
func (r *TableRuntime) Stats() RuntimeStats {
	states := r.orch.states()

	stats := RuntimeStats{
		PluginStates: states,
		Diagnostics:  r.Diagnostics(),
		PendingTasks: r.scheduler.Pending(),
	}
	for _, state := range states {
		if state == StateInert {
			stats.InertPlugins++
			continue
		}
		if state != StateUninstalled {
			stats.ActivePlugins++
		}
	}

	stats.PersistenceStatus = r.persistenceStatus()
	return stats
}

// persistenceStatus reads the column-width namespace to report whether
// persistence is active, degraded, or off.
func (r *TableRuntime) persistenceStatus() PersistenceStatus {
	raw, ok := r.ctx.state[ColumnWidthPluginName]
	if !ok {
		return PersistenceDisabled
	}
	state, ok := raw.(*columnWidthState)
	if !ok || !state.persist {
		return PersistenceDisabled
	}
	if state.degraded {
		return PersistenceDegraded
	}
	return PersistenceActive
}

// Shutdown cancels every pending scheduled task, runs the uninstall stage in
// reverse resolved order, and tears the shared context down. The context
// argument bounds nothing today (stores are local and synchronous) but keeps
// the call-site shape stable should a remote store ever appear.
func (r *TableRuntime) Shutdown(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return nil
	}
	if !r.started {
		r.stopped = true
		return nil
	}

	r.orch.uninstallAll()
	canceled := r.scheduler.CancelAll()

	r.started = false
	r.mounted = false
	r.stopped = true

	r.logger.Info("Table runtime shut down",
		"table_id", r.config.EffectiveTableID(),
		"canceled_tasks", canceled)
	return nil
}
