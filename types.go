// types.go: Common data types and enumerations for the grid plugin runtime
//
// This file contains the shared data models used by plugin descriptors, the
// resolution engine, the lifecycle orchestrator, and the worked plugin
// instances. Keeping these types separate from the behavioral components
// mirrors the rest of the library's file-per-concern layout.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gridplugins

import (
	"time"
)

// PluginPriority controls the execution order of plugins within a resolved
// set. Higher priorities run first at every lifecycle stage, in every hook
// dispatch, and on every table event. Plugins sharing a priority keep their
// declaration order (the sort is stable).
//
// The zero value is normalized to PriorityMedium during resolution, so a
// descriptor that never sets a priority behaves as a medium-priority plugin.
type PluginPriority int

const (
	PriorityLow    PluginPriority = 1
	PriorityMedium PluginPriority = 2
	PriorityHigh   PluginPriority = 3
)

// String returns a human-readable representation of the priority.
func (p PluginPriority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// PluginState represents a plugin's position in the lifecycle state machine.
//
// Transitions are strictly sequential and never skip a stage:
//
//	StateUnregistered → StateInstalled → StateSetUp → StateMounted →
//	{StateUpdated}* → StateUninstalled
//
// StateInert is terminal for the remaining stages: a plugin whose callback
// failed is parked there and contributes no further behavior, while its
// siblings proceed unaffected.
type PluginState int

const (
	StateUnregistered PluginState = iota
	StateInstalled
	StateSetUp
	StateMounted
	StateUpdated
	StateUninstalled
	StateInert
)

// String returns a human-readable representation of the plugin state.
func (s PluginState) String() string {
	switch s {
	case StateUnregistered:
		return "unregistered"
	case StateInstalled:
		return "installed"
	case StateSetUp:
		return "setup"
	case StateMounted:
		return "mounted"
	case StateUpdated:
		return "updated"
	case StateUninstalled:
		return "uninstalled"
	case StateInert:
		return "inert"
	default:
		return "unknown"
	}
}

// HookKind is the explicit discriminator supplied at hook registration time.
//
// The dispatcher itself is agnostic about what a hook means; it folds or
// collects purely based on this tag. The first registration of a hook name
// fixes its kind, and later registrations with a conflicting kind are
// rejected with a diagnostic.
type HookKind int

const (
	// HookPipeline threads a value through every registered function in
	// resolved order; each function receives the previous function's output.
	HookPipeline HookKind = iota

	// HookCollector passes the same input to every registered function and
	// collects each result into a slice.
	HookCollector
)

// String returns a human-readable representation of the hook kind.
func (k HookKind) String() string {
	switch k {
	case HookPipeline:
		return "pipeline"
	case HookCollector:
		return "collector"
	default:
		return "unknown"
	}
}

// Table event names emitted by the host and consumed by plugin handlers.
//
// Resize is intentionally not a discrete event of its own: live column
// dragging arrives as a burst of layout-change notifications that interested
// plugins debounce into a single detection pass.
const (
	EventPageChanged   = "page-changed"
	EventDataReplaced  = "data-replaced"
	EventLayoutChanged = "layout-changed"
)

// Well-known hook names used by the worked plugin instances. Hosts dispatch
// these at render time; any plugin may contribute to them.
const (
	// HookEffectiveColumns is a pipeline hook over []Column. The host seeds
	// it with the base column list and renders whatever comes out.
	HookEffectiveColumns = "effective-columns"

	// HookRowDecorators is a collector hook. Each contribution is a
	// RowDecorator the host applies when rendering row headers.
	HookRowDecorators = "row-decorators"
)

// Column describes one column of the hosted grid as seen by plugins: a stable
// key, a display title, and the width the host should render it at. Plugins
// transform column lists through HookEffectiveColumns rather than touching
// the host's own column model.
type Column struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Width int    `json:"width"`
}

// RowDecorator is the contract collected through HookRowDecorators. The host
// calls each decorator with a row key and merges the returned attributes into
// the row-header cell.
type RowDecorator func(rowKey string) map[string]any

// TableEvent is a host-driven notification broadcast to every plugin handler
// registered for its name. Events describe state the host already changed
// (the page flipped, the data set was replaced); they are not user input.
type TableEvent struct {
	Name string         `json:"name"`
	Page int            `json:"page,omitempty"`
	Rows int            `json:"rows,omitempty"`
	Data map[string]any `json:"data,omitempty"`
	Time time.Time      `json:"time"`
}

// NewPageChangedEvent builds the event the host emits after pagination moved
// to the given page.
func NewPageChangedEvent(page int) TableEvent {
	return TableEvent{Name: EventPageChanged, Page: page, Time: cachedNow()}
}

// NewDataReplacedEvent builds the event the host emits after the underlying
// data set was swapped for a new one of rows length.
func NewDataReplacedEvent(rows int) TableEvent {
	return TableEvent{Name: EventDataReplaced, Rows: rows, Time: cachedNow()}
}

// NewLayoutChangedEvent builds the layout-change notification the host emits
// while the render surface is being resized.
func NewLayoutChangedEvent() TableEvent {
	return TableEvent{Name: EventLayoutChanged, Time: cachedNow()}
}

// ResolutionDiagnostic records why a requested plugin was excluded from the
// active set. Exclusion is never fatal to the host; diagnostics exist so an
// operator console can explain a missing behavior.
type ResolutionDiagnostic struct {
	Plugin  string `json:"plugin"`
	Code    string `json:"code"`
	Reason  string `json:"reason"`
	Subject string `json:"subject,omitempty"` // the missing dependency or conflicting peer
}

// RuntimeStats is a point-in-time snapshot of the runtime for monitoring and
// debugging. It is assembled on demand and safe to serialize.
type RuntimeStats struct {
	ActivePlugins     int                    `json:"active_plugins"`
	InertPlugins      int                    `json:"inert_plugins"`
	PluginStates      map[string]PluginState `json:"plugin_states"`
	Diagnostics       []ResolutionDiagnostic `json:"diagnostics,omitempty"`
	PersistenceStatus PersistenceStatus      `json:"persistence_status"`
	PendingTasks      int                    `json:"pending_tasks"`
}

// PersistenceStatus summarizes whether persisted state is being written
// through to the external store or has degraded to session-only behavior.
type PersistenceStatus int

const (
	PersistenceDisabled PersistenceStatus = iota
	PersistenceActive
	PersistenceDegraded
)

// String returns a human-readable representation of the persistence status.
func (p PersistenceStatus) String() string {
	switch p {
	case PersistenceDisabled:
		return "disabled"
	case PersistenceActive:
		return "active"
	case PersistenceDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}
