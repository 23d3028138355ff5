// Package gridplugins provides a composable plugin runtime for data-grid
// components. Independent, optional behaviors (column-width persistence,
// inline editing, pagination sync, smart cells) are declared as plugin
// descriptors, resolved into a deterministic execution order, and driven
// through a shared lifecycle, a hook dispatcher, and a table event bus.
//
// Key Features:
//   - Declarative plugin descriptors with dependency and conflict resolution
//   - Deterministic priority ordering (stable within a priority band)
//   - Strict per-plugin lifecycle with fault isolation
//   - Pipeline and collector hooks dispatched in resolved order
//   - Host-driven table events with cancelable deferred reapplication
//   - Persisted column widths with deterministic storage keys
//   - Per-cell inline-edit state machine with validation
//   - Hot-reloading of runtime configuration
//
// Basic Usage:
//
//	config := gridplugins.TableConfig{
//		Title:          "connections",
//		NavigationPath: "/admin/connections",
//		Persist:        true,
//		Store:          gridplugins.NewMemoryStore(),
//	}
//
//	runtime := gridplugins.NewTableRuntime(config,
//		gridplugins.ColumnWidthPlugin(gridplugins.ColumnWidthConfig{}),
//		gridplugins.InlineEditPlugin(gridplugins.InlineEditConfig{Data: source}),
//	)
//
//	if err := runtime.Start(); err != nil {
//		log.Fatal(err)
//	}
//	defer runtime.Shutdown(context.Background())
//
//	runtime.Mount(surface)
//	runtime.Emit(gridplugins.NewPageChangedEvent(2))
//
// Error Handling:
// Nothing in the runtime propagates a panic into the host render path. A
// failing plugin is excluded (resolution) or marked inert (lifecycle) and its
// siblings proceed. Persistence failures degrade to session-only behavior and
// are reported through Result-style outcomes rather than errors in the render
// path.
//
// Concurrency:
// The runtime assumes a single UI thread: all plugin code runs sequentially
// in response to host calls. The only concurrency-flavored constructs are the
// cancelable deferred and debounced tasks owned by the scheduler.
//
// Copyright (c) 2025 AGILira - A. Giordano
// SPDX-License-Identifier: MPL-2.0
package gridplugins
