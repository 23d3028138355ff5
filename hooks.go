// hooks.go: Named extension points dispatched across plugins in resolved order
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gridplugins

import (
	"fmt"
)

type hookEntry struct {
	plugin *pluginRuntime
	fn     HookFunc
}

// HookDispatcher routes hook dispatch to every plugin that registered a
// contribution for the hook's name, in the resolved plugin order.
//
// The dispatcher does not interpret hook names. Whether a hook threads a
// value through its contributions (pipeline) or fans the same input out and
// gathers results (collector) is decided by the explicit kind tag on each
// registration; the first registration fixes the hook's kind.
type HookDispatcher struct {
	kinds   map[string]HookKind
	entries map[string][]hookEntry
	logger  Logger
}

// NewHookDispatcher creates an empty dispatcher.
func NewHookDispatcher(logger Logger) *HookDispatcher {
	if logger == nil {
		logger = DefaultLogger()
	}
	return &HookDispatcher{
		kinds:   make(map[string]HookKind),
		entries: make(map[string][]hookEntry),
		logger:  logger,
	}
}

// register adds one plugin's contribution. Registration order follows the
// resolved plugin order because the orchestrator registers plugins in that
// order. A kind conflicting with the hook's fixed kind is rejected.
func (d *HookDispatcher) register(plugin *pluginRuntime, name string, reg HookRegistration) error {
	if reg.Fn == nil {
		return nil
	}
	if declared, ok := d.kinds[name]; ok {
		if declared != reg.Kind {
			return NewHookKindMismatchError(name, declared, reg.Kind)
		}
	} else {
		d.kinds[name] = reg.Kind
	}
	d.entries[name] = append(d.entries[name], hookEntry{plugin: plugin, fn: reg.Fn})
	return nil
}

// Kind returns the declared kind of a hook, if any plugin registered it.
func (d *HookDispatcher) Kind(name string) (HookKind, bool) {
	kind, ok := d.kinds[name]
	return kind, ok
}

// Pipeline threads input through every active contribution of a pipeline
// hook and returns the final value. A failing or panicking contribution is
// skipped: the value it received is passed through unchanged and a
// diagnostic is logged. Dispatching a collector hook through Pipeline
// returns the input untouched.
func (d *HookDispatcher) Pipeline(name string, input any) any {
	if kind, ok := d.kinds[name]; ok && kind != HookPipeline {
		d.logger.Warn("Pipeline dispatch on non-pipeline hook", "hook", name, "kind", kind.String())
		return input
	}
	value := input
	for _, entry := range d.entries[name] {
		if entry.plugin.skip() {
			continue
		}
		next, err := d.invoke(name, entry, value)
		if err != nil {
			continue
		}
		value = next
	}
	return value
}

// Collect passes the same input to every active contribution of a collector
// hook and returns the gathered results in dispatch order. Failing
// contributions are skipped.
func (d *HookDispatcher) Collect(name string, input any) []any {
	if kind, ok := d.kinds[name]; ok && kind != HookCollector {
		d.logger.Warn("Collector dispatch on non-collector hook", "hook", name, "kind", kind.String())
		return nil
	}
	var results []any
	for _, entry := range d.entries[name] {
		if entry.plugin.skip() {
			continue
		}
		result, err := d.invoke(name, entry, input)
		if err != nil {
			continue
		}
		results = append(results, result)
	}
	return results
}

// Dispatch folds or collects based on the hook's declared kind and returns
// either the threaded value or a []any of results. Unregistered hooks fold:
// the input comes back unchanged.
func (d *HookDispatcher) Dispatch(name string, input any) any {
	if kind, ok := d.kinds[name]; ok && kind == HookCollector {
		return d.Collect(name, input)
	}
	return d.Pipeline(name, input)
}

// invoke runs one contribution behind a catch boundary.
func (d *HookDispatcher) invoke(name string, entry hookEntry, value any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewHookFailedError(name, entry.plugin.descriptor.Name, fmt.Errorf("panic: %v", r))
			d.logger.Warn("Hook contribution panicked",
				"hook", name,
				"plugin", entry.plugin.descriptor.Name,
				"panic", fmt.Sprint(r))
		}
	}()

	result, err = entry.fn(entry.plugin.scope, value)
	if err != nil {
		d.logger.Warn("Hook contribution failed",
			"hook", name,
			"plugin", entry.plugin.descriptor.Name,
			"error", err)
		return nil, NewHookFailedError(name, entry.plugin.descriptor.Name, err)
	}
	return result, nil
}
