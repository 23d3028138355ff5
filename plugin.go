// plugin.go: Plugin descriptor and host-facing collaborator interfaces
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gridplugins

// LifecycleFunc is a lifecycle callback bound to one plugin. It receives the
// plugin's scope over the shared context and reports failure through the
// returned error; a panic inside the callback is recovered by the
// orchestrator and treated the same way.
type LifecycleFunc func(scope *PluginScope) error

// MountFunc is the onMount callback. It additionally receives the render
// surface, which is the only point at which layout measurement is
// meaningful.
type MountFunc func(scope *PluginScope, surface RenderSurface) error

// HookFunc is a hook contribution. For pipeline hooks value is the previous
// contribution's output; for collector hooks every contribution receives the
// same input and the results are gathered into a slice.
type HookFunc func(scope *PluginScope, value any) (any, error)

// HookRegistration pairs a hook contribution with the explicit kind the hook
// is declared as. The kind tag, not the hook's name, decides whether the
// dispatcher folds or collects.
type HookRegistration struct {
	Kind HookKind
	Fn   HookFunc
}

// EventHandler handles one table event for one plugin. Handlers run on the
// UI thread during Emit; anything that needs the render surface to settle
// first must be scheduled through the scope's Defer/Debounce.
type EventHandler func(scope *PluginScope, event TableEvent) error

// Lifecycle groups a descriptor's optional lifecycle callbacks. Every field
// may be nil; a nil stage is simply skipped for that plugin.
type Lifecycle struct {
	Install   LifecycleFunc
	Setup     LifecycleFunc
	OnMount   MountFunc
	Update    LifecycleFunc
	Uninstall LifecycleFunc
}

// PluginDescriptor is a self-contained unit of optional grid behavior:
// identity, ordering and compatibility declarations, lifecycle callbacks,
// hook contributions, and table-event handlers.
//
// Invariants enforced at resolution time:
//   - Name is unique (case-sensitive) within a requested set; the first
//     declaration wins
//   - Dependencies and Conflicts must not overlap
//   - every dependency must be present and active in the same requested set
type PluginDescriptor struct {
	Name         string
	Version      string
	Priority     PluginPriority
	Enabled      bool
	Dependencies []string
	Conflicts    []string
	Lifecycle    Lifecycle
	Hooks        map[string]HookRegistration
	TableEvents  map[string]EventHandler
}

// PluginFactory builds a descriptor from the host configuration. The host
// registers an ordered list of factories; declaration order is the tiebreak
// for every subsequent ordering decision.
type PluginFactory func(config TableConfig) PluginDescriptor

// RenderSurface is the live render output of the hosted grid, abstracted to
// what plugins actually need: enumerating columns, measuring their rendered
// widths, and pushing width overrides back. Measurement is only meaningful
// once the surface has produced real output, which is why plugins first see
// it at onMount.
type RenderSurface interface {
	// ColumnKeys returns the keys of the currently rendered columns.
	ColumnKeys() []string

	// MeasureColumnWidth returns the rendered pixel width of a column, or
	// false if the column is not currently rendered.
	MeasureColumnWidth(columnKey string) (int, bool)

	// ApplyColumnWidths pushes width overrides onto the rendered columns.
	// Missing keys keep their current width.
	ApplyColumnWidths(widths map[string]int)
}

// Record is one row of the hosted data collection as seen by the inline-edit
// plugin. Records are treated as immutable: edits produce a replacement
// record, never an in-place mutation.
type Record map[string]any

// Clone returns a shallow copy of the record. Used to honor the
// data-replacement contract when committing an edit.
func (r Record) Clone() Record {
	clone := make(Record, len(r))
	for k, v := range r {
		clone[k] = v
	}
	return clone
}

// DataSource is the host's data collection, consumed by the inline-edit
// plugin. Implementations must honor the replacement contract: Replace
// installs the given record as a new element of a new collection snapshot so
// the host's own change detection stays correct. The runtime never mutates a
// record it obtained from Get.
type DataSource interface {
	// Get returns the record for a row key, or false if the row is unknown.
	Get(rowKey string) (Record, bool)

	// Replace swaps the record stored under rowKey for the given one.
	Replace(rowKey string, record Record) error

	// Keys returns the row keys of the current collection in display order.
	Keys() []string
}
