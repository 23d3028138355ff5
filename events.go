// events.go: Host-driven table event broadcast
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gridplugins

import (
	"fmt"
)

type eventEntry struct {
	plugin  *pluginRuntime
	handler EventHandler
}

// tableEventBus broadcasts host notifications to every plugin handler
// registered for the event's name, in resolved order. Handlers run
// synchronously on the UI thread; work that needs the render surface to
// settle first is scheduled through the scope and runs after the emitting
// call returns.
type tableEventBus struct {
	entries map[string][]eventEntry
	logger  Logger
}

func newTableEventBus(logger Logger) *tableEventBus {
	if logger == nil {
		logger = DefaultLogger()
	}
	return &tableEventBus{
		entries: make(map[string][]eventEntry),
		logger:  logger,
	}
}

// register adds one plugin's handlers. Called by the orchestrator in
// resolved order during setup.
func (b *tableEventBus) register(plugin *pluginRuntime, name string, handler EventHandler) {
	if handler == nil {
		return
	}
	b.entries[name] = append(b.entries[name], eventEntry{plugin: plugin, handler: handler})
}

// emit delivers the event to each active handler behind a per-plugin catch
// boundary. A failing handler is logged and skipped; it does not stop
// delivery to the remaining handlers and nothing reaches the host's render
// path.
func (b *tableEventBus) emit(event TableEvent) {
	for _, entry := range b.entries[event.Name] {
		if entry.plugin.skip() {
			continue
		}
		b.deliver(entry, event)
	}
}

func (b *tableEventBus) deliver(entry eventEntry, event TableEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warn("Table event handler panicked",
				"event", event.Name,
				"plugin", entry.plugin.descriptor.Name,
				"panic", fmt.Sprint(r))
		}
	}()

	if err := entry.handler(entry.plugin.scope, event); err != nil {
		b.logger.Warn("Table event handler failed",
			"event", event.Name,
			"plugin", entry.plugin.descriptor.Name,
			"error", err)
	}
}
