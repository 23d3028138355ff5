// column_width_plugin.go: Column width persistence plugin
//
// Measures rendered column widths, debounces detection during live resizes,
// persists the width map to the external store under the table's storage
// key, restores it on setup before first paint, and re-applies it after
// pagination once the render surface has settled.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gridplugins

import (
	"encoding/json"
	"time"
)

// ColumnWidthPluginName is the descriptor name of the column width
// persistence plugin.
const ColumnWidthPluginName = "column-width-persistence"

// Helper names registered by the column width plugin. These are the public
// operations other plugins and the host call through the helper namespace;
// typed wrappers over the same names live below.
const (
	HelperSetColumnWidth       = "setPersistentColumnWidth"
	HelperSetBatchColumnWidths = "setBatchPersistentColumnWidths"
	HelperGetColumnWidth       = "getPersistentColumnWidth"
	HelperGetAllColumnWidths   = "getAllPersistentColumnWidths"
	HelperClearColumnWidths    = "clearPersistentColumnWidths"
	HelperDetectColumnWidths   = "detectAndSaveColumnWidths"
)

// PersistOutcome is the Result-style return of every persistence helper.
// Degraded means the in-memory state was updated but the external store
// write failed, so the behavior is session-only until the store recovers.
// Callers can surface a degraded-mode banner off this instead of the failure
// being swallowed entirely.
type PersistOutcome struct {
	Persisted bool
	Degraded  bool
	Reason    error
}

// ColumnWidthConfig carries per-plugin overrides merged over the host
// TableConfig. Zero fields inherit the table-level value.
type ColumnWidthConfig struct {
	Disabled          bool
	Priority          PluginPriority
	MinColumnWidth    int
	MaxColumnWidth    int
	DetectionDebounce time.Duration
	ReapplyDelay      time.Duration
}

// columnWidthState is the plugin's namespace in the shared context.
type columnWidthState struct {
	widths     map[string]int
	storageKey string
	persist    bool
	detection  bool
	degraded   bool

	minWidth     int
	maxWidth     int
	debounce     time.Duration
	reapplyDelay time.Duration
}

// ColumnWidthPlugin returns the factory for the column width persistence
// plugin. The descriptor registers a pipeline contribution on
// HookEffectiveColumns and handlers for pagination, data replacement, and
// layout changes.
func ColumnWidthPlugin(overrides ColumnWidthConfig) PluginFactory {
	return func(config TableConfig) PluginDescriptor {
		priority := overrides.Priority
		if priority < PriorityLow || priority > PriorityHigh {
			priority = PriorityHigh
		}

		return PluginDescriptor{
			Name:     ColumnWidthPluginName,
			Version:  "1.0.0",
			Priority: priority,
			Enabled:  !overrides.Disabled,
			Lifecycle: Lifecycle{
				Install:   columnWidthInstall,
				Setup:     columnWidthSetup(overrides),
				OnMount:   columnWidthMount,
				Update:    columnWidthUpdate(overrides),
				Uninstall: columnWidthUninstall,
			},
			Hooks: map[string]HookRegistration{
				HookEffectiveColumns: {Kind: HookPipeline, Fn: columnWidthEffectiveColumns},
			},
			TableEvents: map[string]EventHandler{
				EventPageChanged:   columnWidthReapplyHandler,
				EventDataReplaced:  columnWidthReapplyHandler,
				EventLayoutChanged: columnWidthLayoutHandler,
			},
		}
	}
}

// columnWidthInstall seeds the namespace with its initial shape. No other
// namespace may be assumed to exist yet.
func columnWidthInstall(scope *PluginScope) error {
	scope.SetState(&columnWidthState{widths: make(map[string]int)})
	return nil
}

// columnWidthSetup resolves effective settings from props, hydrates
// persisted widths from the store so the grid never jumps from default to
// remembered widths after first paint, and publishes the plugin's helpers.
func columnWidthSetup(overrides ColumnWidthConfig) LifecycleFunc {
	return func(scope *PluginScope) error {
		state, err := columnWidthStateOf(scope)
		if err != nil {
			return err
		}

		applyColumnWidthSettings(state, scope.Props().Config, overrides)
		state.storageKey = scope.Props().Config.StorageKey()
		state.persist = scope.Props().Config.Persist && scope.Store() != nil

		restoreColumnWidths(scope, state)

		return registerColumnWidthHelpers(scope, state)
	}
}

// columnWidthMount schedules the first debounced detection pass. Mount is
// the first moment the surface has measurable output.
func columnWidthMount(scope *PluginScope, surface RenderSurface) error {
	state, err := columnWidthStateOf(scope)
	if err != nil {
		return err
	}
	if state.detection {
		scheduleDetection(scope, state)
	}
	return nil
}

// columnWidthUpdate re-resolves settings from the possibly changed props and
// re-clamps stored widths into the new bounds. Safe to run repeatedly.
func columnWidthUpdate(overrides ColumnWidthConfig) LifecycleFunc {
	return func(scope *PluginScope) error {
		state, err := columnWidthStateOf(scope)
		if err != nil {
			return err
		}

		applyColumnWidthSettings(state, scope.Props().Config, overrides)
		state.storageKey = scope.Props().Config.StorageKey()
		state.persist = scope.Props().Config.Persist && scope.Store() != nil

		changed := false
		for key, width := range state.widths {
			clamped := clampWidth(width, state.minWidth, state.maxWidth)
			if clamped != width {
				state.widths[key] = clamped
				changed = true
			}
		}
		if changed {
			persistColumnWidths(scope, state)
			applyWidthsToSurface(scope, state)
		}
		return nil
	}
}

// columnWidthUninstall releases nothing directly: pending detection and
// reapply timers are canceled by the orchestrator through the scheduler's
// ownership index, and context teardown clears the namespace.
func columnWidthUninstall(scope *PluginScope) error {
	return nil
}

// columnWidthEffectiveColumns is the pipeline contribution that overlays
// persisted widths onto the host's base column list.
func columnWidthEffectiveColumns(scope *PluginScope, value any) (any, error) {
	columns, ok := value.([]Column)
	if !ok {
		return value, nil
	}
	state, err := columnWidthStateOf(scope)
	if err != nil {
		return value, nil
	}

	decorated := make([]Column, len(columns))
	copy(decorated, columns)
	for i := range decorated {
		if width, ok := state.widths[decorated[i].Key]; ok {
			decorated[i].Width = width
		}
	}
	return decorated, nil
}

// columnWidthReapplyHandler defers re-application of persisted widths until
// the render surface has settled after pagination or a data swap. The widths
// are observably reapplied after the event completes, never during it.
func columnWidthReapplyHandler(scope *PluginScope, event TableEvent) error {
	state, err := columnWidthStateOf(scope)
	if err != nil {
		return err
	}
	if len(state.widths) == 0 {
		return nil
	}
	scope.Defer(state.reapplyDelay, func() {
		applyWidthsToSurface(scope, state)
	})
	return nil
}

// columnWidthLayoutHandler collapses a burst of layout-change notifications
// (live resize dragging) into one detection pass after a quiet period.
func columnWidthLayoutHandler(scope *PluginScope, event TableEvent) error {
	state, err := columnWidthStateOf(scope)
	if err != nil {
		return err
	}
	if !state.detection {
		return nil
	}
	scheduleDetection(scope, state)
	return nil
}

func scheduleDetection(scope *PluginScope, state *columnWidthState) {
	scope.Debounce("detect-widths", state.debounce, func() {
		surface := scope.Surface()
		if surface == nil {
			return
		}
		outcome := detectAndSaveWidths(scope, state, surface)
		if outcome.Degraded {
			scope.Logger().Warn("Width detection persisted in degraded mode", "error", outcome.Reason)
		}
	})
}

func applyColumnWidthSettings(state *columnWidthState, config TableConfig, overrides ColumnWidthConfig) {
	state.minWidth = config.MinColumnWidth
	if overrides.MinColumnWidth > 0 {
		state.minWidth = overrides.MinColumnWidth
	}
	state.maxWidth = config.MaxColumnWidth
	if overrides.MaxColumnWidth > 0 {
		state.maxWidth = overrides.MaxColumnWidth
	}
	state.debounce = config.DetectionDebounce
	if overrides.DetectionDebounce > 0 {
		state.debounce = overrides.DetectionDebounce
	}
	state.reapplyDelay = config.ReapplyDelay
	if overrides.ReapplyDelay > 0 {
		state.reapplyDelay = overrides.ReapplyDelay
	}
	state.detection = !config.DisableDetection
}

// restoreColumnWidths hydrates state from the persisted record, if any. A
// read failure or malformed record is logged and treated as no persisted
// value (error taxonomy: persistence degrades to session-only).
func restoreColumnWidths(scope *PluginScope, state *columnWidthState) {
	if !state.persist {
		return
	}

	data, ok, err := scope.Store().Load(state.storageKey)
	if err != nil {
		state.degraded = true
		scope.Logger().Warn("Persisted widths unavailable, continuing session-only",
			"storage_key", state.storageKey,
			"error", err)
		return
	}
	if !ok {
		return
	}

	var restored map[string]int
	if err := json.Unmarshal(data, &restored); err != nil {
		scope.Logger().Warn("Persisted widths malformed, treating as absent",
			"storage_key", state.storageKey,
			"error", NewStoreCorruptError(state.storageKey, err))
		return
	}

	for key, width := range restored {
		state.widths[key] = clampWidth(width, state.minWidth, state.maxWidth)
	}
	scope.Logger().Debug("Restored persisted column widths",
		"storage_key", state.storageKey,
		"columns", len(state.widths))
}

func registerColumnWidthHelpers(scope *PluginScope, state *columnWidthState) error {
	helpers := map[string]HelperFunc{
		HelperSetColumnWidth: func(args ...any) (any, error) {
			key, width, err := columnWidthArgs(HelperSetColumnWidth, args)
			if err != nil {
				return nil, err
			}
			return setColumnWidth(scope, state, key, width), nil
		},
		HelperSetBatchColumnWidths: func(args ...any) (any, error) {
			if len(args) != 1 {
				return nil, NewHelperUsageError(HelperSetBatchColumnWidths, "expected one map[string]int argument")
			}
			widths, ok := args[0].(map[string]int)
			if !ok {
				return nil, NewHelperUsageError(HelperSetBatchColumnWidths, "argument must be map[string]int")
			}
			return setBatchColumnWidths(scope, state, widths), nil
		},
		HelperGetColumnWidth: func(args ...any) (any, error) {
			if len(args) != 1 {
				return nil, NewHelperUsageError(HelperGetColumnWidth, "expected one string argument")
			}
			key, ok := args[0].(string)
			if !ok {
				return nil, NewHelperUsageError(HelperGetColumnWidth, "column key must be a string")
			}
			width, found := state.widths[key]
			if !found {
				return nil, nil
			}
			return width, nil
		},
		HelperGetAllColumnWidths: func(args ...any) (any, error) {
			snapshot := make(map[string]int, len(state.widths))
			for key, width := range state.widths {
				snapshot[key] = width
			}
			return snapshot, nil
		},
		HelperClearColumnWidths: func(args ...any) (any, error) {
			return clearColumnWidths(scope, state), nil
		},
		HelperDetectColumnWidths: func(args ...any) (any, error) {
			surface := scope.Surface()
			if surface == nil {
				return PersistOutcome{}, NewRuntimeStateError("render surface not mounted")
			}
			return detectAndSaveWidths(scope, state, surface), nil
		},
	}

	for name, fn := range helpers {
		if err := scope.RegisterHelper(name, fn); err != nil {
			return err
		}
	}
	return nil
}

func columnWidthArgs(helper string, args []any) (string, int, error) {
	if len(args) != 2 {
		return "", 0, NewHelperUsageError(helper, "expected columnKey and width arguments")
	}
	key, ok := args[0].(string)
	if !ok {
		return "", 0, NewHelperUsageError(helper, "column key must be a string")
	}
	width, ok := args[1].(int)
	if !ok {
		return "", 0, NewHelperUsageError(helper, "width must be an int")
	}
	return key, width, nil
}

// setColumnWidth clamps the width into bounds, updates state, pushes the
// change to the surface, and persists the full width map. Applying the same
// input twice yields the same stored value.
func setColumnWidth(scope *PluginScope, state *columnWidthState, key string, width int) PersistOutcome {
	state.widths[key] = clampWidth(width, state.minWidth, state.maxWidth)
	applyWidthsToSurface(scope, state)
	return persistColumnWidths(scope, state)
}

// setBatchColumnWidths applies many widths atomically with a single store
// write. Used after bulk detection.
func setBatchColumnWidths(scope *PluginScope, state *columnWidthState, widths map[string]int) PersistOutcome {
	for key, width := range widths {
		state.widths[key] = clampWidth(width, state.minWidth, state.maxWidth)
	}
	applyWidthsToSurface(scope, state)
	return persistColumnWidths(scope, state)
}

// clearColumnWidths resets the namespace and deletes the storage key.
func clearColumnWidths(scope *PluginScope, state *columnWidthState) PersistOutcome {
	state.widths = make(map[string]int)
	if !state.persist {
		return PersistOutcome{}
	}
	if err := scope.Store().Delete(state.storageKey); err != nil {
		state.degraded = true
		wrapped := NewStoreDeleteError(state.storageKey, err)
		scope.Logger().Warn("Failed to delete persisted widths", "error", wrapped)
		return PersistOutcome{Degraded: true, Reason: wrapped}
	}
	state.degraded = false
	return PersistOutcome{Persisted: true}
}

// detectAndSaveWidths measures every rendered column, filters unchanged and
// invalid values, and persists the delta in one batch. This is the bridge
// between what the user visually resized and what is remembered.
func detectAndSaveWidths(scope *PluginScope, state *columnWidthState, surface RenderSurface) PersistOutcome {
	delta := make(map[string]int)
	for _, key := range surface.ColumnKeys() {
		measured, ok := surface.MeasureColumnWidth(key)
		if !ok || measured <= 0 {
			continue
		}
		clamped := clampWidth(measured, state.minWidth, state.maxWidth)
		if current, exists := state.widths[key]; exists && current == clamped {
			continue
		}
		delta[key] = clamped
	}
	if len(delta) == 0 {
		return PersistOutcome{}
	}

	scope.Logger().Debug("Detected column width changes", "columns", len(delta))
	return setBatchColumnWidths(scope, state, delta)
}

// persistColumnWidths writes the full current width map to the store. A
// write failure flips the state to degraded and is reported through the
// outcome, never thrown.
func persistColumnWidths(scope *PluginScope, state *columnWidthState) PersistOutcome {
	if !state.persist {
		return PersistOutcome{}
	}

	data, err := json.Marshal(state.widths)
	if err != nil {
		wrapped := NewStoreWriteError(state.storageKey, err)
		return PersistOutcome{Degraded: true, Reason: wrapped}
	}
	if err := scope.Store().Save(state.storageKey, data); err != nil {
		state.degraded = true
		wrapped := NewStoreWriteError(state.storageKey, err)
		scope.Logger().Warn("Persisting widths failed, degrading to session-only", "error", wrapped)
		return PersistOutcome{Degraded: true, Reason: wrapped}
	}
	state.degraded = false
	return PersistOutcome{Persisted: true}
}

func applyWidthsToSurface(scope *PluginScope, state *columnWidthState) {
	surface := scope.Surface()
	if surface == nil || len(state.widths) == 0 {
		return
	}
	snapshot := make(map[string]int, len(state.widths))
	for key, width := range state.widths {
		snapshot[key] = width
	}
	surface.ApplyColumnWidths(snapshot)
}

func clampWidth(width, minWidth, maxWidth int) int {
	if minWidth > 0 && width < minWidth {
		return minWidth
	}
	if maxWidth > 0 && width > maxWidth {
		return maxWidth
	}
	return width
}

func columnWidthStateOf(scope *PluginScope) (*columnWidthState, error) {
	raw, ok := scope.Peek(ColumnWidthPluginName)
	if !ok {
		return nil, NewRuntimeStateError("column width namespace not installed")
	}
	state, ok := raw.(*columnWidthState)
	if !ok {
		return nil, NewRuntimeStateError("column width namespace has unexpected shape")
	}
	return state, nil
}

// Typed wrappers over the helper namespace for host code.

// SetPersistentColumnWidth clamps and persists one column width through the
// registered helper.
func SetPersistentColumnWidth(helpers HelperReader, columnKey string, width int) (PersistOutcome, error) {
	result, err := helpers.Call(HelperSetColumnWidth, columnKey, width)
	if err != nil {
		return PersistOutcome{}, err
	}
	outcome, _ := result.(PersistOutcome)
	return outcome, nil
}

// SetBatchPersistentColumnWidths persists many column widths in one store
// write.
func SetBatchPersistentColumnWidths(helpers HelperReader, widths map[string]int) (PersistOutcome, error) {
	result, err := helpers.Call(HelperSetBatchColumnWidths, widths)
	if err != nil {
		return PersistOutcome{}, err
	}
	outcome, _ := result.(PersistOutcome)
	return outcome, nil
}

// GetPersistentColumnWidth reads one persisted column width.
func GetPersistentColumnWidth(helpers HelperReader, columnKey string) (int, bool, error) {
	result, err := helpers.Call(HelperGetColumnWidth, columnKey)
	if err != nil {
		return 0, false, err
	}
	if result == nil {
		return 0, false, nil
	}
	width, ok := result.(int)
	return width, ok, nil
}

// GetAllPersistentColumnWidths reads the full persisted width map.
func GetAllPersistentColumnWidths(helpers HelperReader) (map[string]int, error) {
	result, err := helpers.Call(HelperGetAllColumnWidths)
	if err != nil {
		return nil, err
	}
	widths, _ := result.(map[string]int)
	return widths, nil
}

// ClearPersistentColumnWidths resets the width state and deletes the
// storage key.
func ClearPersistentColumnWidths(helpers HelperReader) (PersistOutcome, error) {
	result, err := helpers.Call(HelperClearColumnWidths)
	if err != nil {
		return PersistOutcome{}, err
	}
	outcome, _ := result.(PersistOutcome)
	return outcome, nil
}

// DetectAndSaveColumnWidths runs one detection pass against the mounted
// render surface.
func DetectAndSaveColumnWidths(helpers HelperReader) (PersistOutcome, error) {
	result, err := helpers.Call(HelperDetectColumnWidths)
	if err != nil {
		return PersistOutcome{}, err
	}
	outcome, _ := result.(PersistOutcome)
	return outcome, nil
}
