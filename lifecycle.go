// lifecycle.go: Per-plugin lifecycle orchestration with fault isolation
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gridplugins

import (
	"fmt"
)

// pluginRuntime tracks one resolved plugin through the lifecycle: its
// descriptor, its current state, and the scope binding it to the shared
// context.
type pluginRuntime struct {
	descriptor PluginDescriptor
	state      PluginState
	inert      bool
	scope      *PluginScope
}

// skip reports whether the plugin should be left out of hook dispatch and
// event delivery: it failed a stage, was uninstalled, or has not completed
// setup yet.
func (p *pluginRuntime) skip() bool {
	return p.inert || p.state == StateUninstalled || p.state < StateSetUp
}

// lifecycleOrchestrator drives each resolved plugin through the strict
// install → setup → onMount → update* → uninstall sequence. It owns the
// shared context's creation and teardown.
//
// Each callback runs behind a catch boundary: a returned error or a panic
// marks that plugin inert for every remaining stage while its siblings
// proceed unaffected. No failure propagates to the host render path.
type lifecycleOrchestrator struct {
	plugins   []*pluginRuntime
	ctx       *PluginContext
	scheduler *Scheduler
	hooks     *HookDispatcher
	events    *tableEventBus
	logger    Logger
}

// newLifecycleOrchestrator wires the resolved, ordered descriptors to the
// shared context and registers their hook contributions and event handlers
// in resolved order.
func newLifecycleOrchestrator(ordered []PluginDescriptor, ctx *PluginContext, scheduler *Scheduler, hooks *HookDispatcher, events *tableEventBus, logger Logger) *lifecycleOrchestrator {
	if logger == nil {
		logger = DefaultLogger()
	}
	orch := &lifecycleOrchestrator{
		ctx:       ctx,
		scheduler: scheduler,
		hooks:     hooks,
		events:    events,
		logger:    logger,
	}

	for _, desc := range ordered {
		plugin := &pluginRuntime{
			descriptor: desc,
			state:      StateUnregistered,
			scope:      ctx.scopeFor(desc.Name),
		}
		orch.plugins = append(orch.plugins, plugin)

		for name, reg := range desc.Hooks {
			if err := hooks.register(plugin, name, reg); err != nil {
				logger.Warn("Hook registration rejected",
					"plugin", desc.Name,
					"hook", name,
					"error", err)
			}
		}
		for name, handler := range desc.TableEvents {
			events.register(plugin, name, handler)
		}
	}

	return orch
}

// installAll runs the install stage in resolved order. Dependencies install
// before their dependents, so an install callback may rely on a dependency's
// namespace existing but on nothing else.
func (o *lifecycleOrchestrator) installAll() {
	for _, plugin := range o.plugins {
		o.runStage(plugin, "install", StateUnregistered, StateInstalled, plugin.descriptor.Lifecycle.Install)
	}
}

// setupAll runs the setup stage in resolved order. Helpers a plugin
// registers here are visible to same-or-later-ordered plugins within the
// same pass.
func (o *lifecycleOrchestrator) setupAll() {
	for _, plugin := range o.plugins {
		o.runStage(plugin, "setup", StateInstalled, StateSetUp, plugin.descriptor.Lifecycle.Setup)
	}
}

// mountAll runs onMount once the render surface exists. This is the first
// point where measurement against the surface is meaningful.
func (o *lifecycleOrchestrator) mountAll(surface RenderSurface) {
	o.ctx.attachSurface(surface)
	for _, plugin := range o.plugins {
		mount := plugin.descriptor.Lifecycle.OnMount
		var fn LifecycleFunc
		if mount != nil {
			fn = func(scope *PluginScope) error {
				return mount(scope, surface)
			}
		}
		o.runStage(plugin, "onMount", StateSetUp, StateMounted, fn)
	}
}

// updateAll runs the update stage. Update may fire repeatedly as host
// configuration changes and plugin callbacks are expected to be idempotent.
func (o *lifecycleOrchestrator) updateAll(props TableProps) {
	o.ctx.updateProps(props)
	for _, plugin := range o.plugins {
		from := plugin.state
		if from != StateMounted && from != StateUpdated {
			continue
		}
		o.runStage(plugin, "update", from, StateUpdated, plugin.descriptor.Lifecycle.Update)
	}
}

// uninstallAll runs uninstall in reverse resolved order, cancels every task
// each plugin still owns, and tears the context down. Inert plugins get
// their pending tasks canceled too; their uninstall callback is skipped like
// every other stage.
func (o *lifecycleOrchestrator) uninstallAll() {
	for i := len(o.plugins) - 1; i >= 0; i-- {
		plugin := o.plugins[i]
		name := plugin.descriptor.Name

		if plugin.inert || plugin.state == StateUninstalled {
			o.scheduler.CancelOwned(name)
			continue
		}
		if plugin.state == StateUnregistered {
			continue
		}

		o.callStage(plugin, "uninstall", plugin.descriptor.Lifecycle.Uninstall)
		o.scheduler.CancelOwned(name)
		plugin.state = StateUninstalled
	}
	o.ctx.teardown()
}

// states returns a snapshot of every plugin's lifecycle state. Inert
// plugins report StateInert regardless of where they failed.
func (o *lifecycleOrchestrator) states() map[string]PluginState {
	states := make(map[string]PluginState, len(o.plugins))
	for _, plugin := range o.plugins {
		if plugin.inert {
			states[plugin.descriptor.Name] = StateInert
			continue
		}
		states[plugin.descriptor.Name] = plugin.state
	}
	return states
}

// runStage advances one plugin through one stage, enforcing the strict
// transition order. A nil callback still advances the state.
func (o *lifecycleOrchestrator) runStage(plugin *pluginRuntime, stage string, from, to PluginState, fn LifecycleFunc) {
	if plugin.inert {
		return
	}
	if plugin.state != from {
		o.logger.Error("Lifecycle transition out of order",
			"plugin", plugin.descriptor.Name,
			"stage", stage,
			"state", plugin.state.String(),
			"error", NewInvalidTransitionError(plugin.descriptor.Name, plugin.state, stage))
		plugin.inert = true
		o.ctx.markInert(plugin.descriptor.Name)
		return
	}
	if !o.callStage(plugin, stage, fn) {
		return
	}
	plugin.state = to
}

// callStage invokes one callback behind the catch boundary. It reports
// whether the plugin is still healthy afterwards.
func (o *lifecycleOrchestrator) callStage(plugin *pluginRuntime, stage string, fn LifecycleFunc) bool {
	if fn == nil {
		return true
	}

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn(plugin.scope)
	}()

	if err != nil {
		plugin.inert = true
		o.ctx.markInert(plugin.descriptor.Name)
		o.logger.Warn("Lifecycle stage failed, plugin marked inert",
			"plugin", plugin.descriptor.Name,
			"stage", stage,
			"error", NewLifecycleStageError(plugin.descriptor.Name, stage, err))
		return false
	}
	return true
}
