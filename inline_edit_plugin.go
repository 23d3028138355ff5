// inline_edit_plugin.go: Per-cell inline editing with validation
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gridplugins

// InlineEditPluginName is the descriptor name of the inline-edit plugin.
const InlineEditPluginName = "inline-edit"

// Helper names registered by the inline-edit plugin.
const (
	HelperStartEdit       = "startEdit"
	HelperFinishEdit      = "finishEdit"
	HelperCancelEdit      = "cancelEdit"
	HelperStartBatchEdit  = "startBatchEdit"
	HelperIsEditing       = "isEditing"
	HelperValidationError = "validationError"
)

// cellKeySeparator joins a row key and a field name into a cell key.
const cellKeySeparator = ":"

// EditValidator validates a candidate value before it is committed. A
// non-nil return keeps the cell in editing with the error recorded against
// it; the underlying record is not touched.
type EditValidator func(rowKey, field string, value any) error

// BeforeEditFunc may veto entering edit mode for a cell.
type BeforeEditFunc func(rowKey, field string) bool

// AutoSaveFunc is the optional external save callback invoked after a value
// is committed into the data collection.
type AutoSaveFunc func(rowKey string, record Record) error

// InlineEditConfig configures the inline-edit plugin.
type InlineEditConfig struct {
	Disabled bool
	Priority PluginPriority

	// Data is the host's data collection. Required; the factory produces a
	// disabled descriptor without it.
	Data DataSource

	// RowMode marks the whole row as editing while any of its cells is.
	RowMode bool

	// BatchEnabled allows startBatchEdit; it is rejected outright otherwise.
	BatchEnabled bool

	// ReadOnlyFields cannot enter edit mode.
	ReadOnlyFields []string

	Validator  EditValidator
	BeforeEdit BeforeEditFunc
	AutoSave   AutoSaveFunc
}

// editingCellInfo tracks one cell's active editing session.
type editingCellInfo struct {
	RowKey string
	Field  string
}

// editState is the plugin's namespace in the shared context. It is created
// empty at setup, mutated only through the edit operations, and cleared
// wholesale at teardown.
type editState struct {
	config InlineEditConfig

	editingCells     map[string]editingCellInfo
	editingRows      map[string]struct{}
	originalValues   map[string]any
	validationErrors map[string]string

	readOnly map[string]bool
}

// CellKey builds the canonical cell key for a row and field.
func CellKey(rowKey, field string) string {
	return rowKey + cellKeySeparator + field
}

// InlineEditPlugin returns the factory for the inline-edit plugin.
func InlineEditPlugin(config InlineEditConfig) PluginFactory {
	return func(TableConfig) PluginDescriptor {
		priority := config.Priority
		if priority < PriorityLow || priority > PriorityHigh {
			priority = PriorityMedium
		}

		return PluginDescriptor{
			Name:     InlineEditPluginName,
			Version:  "1.0.0",
			Priority: priority,
			Enabled:  !config.Disabled && config.Data != nil,
			Lifecycle: Lifecycle{
				Install:   inlineEditInstall(config),
				Setup:     inlineEditSetup,
				Uninstall: inlineEditUninstall,
			},
			Hooks: map[string]HookRegistration{
				HookRowDecorators: {Kind: HookCollector, Fn: inlineEditRowDecorator},
			},
			TableEvents: map[string]EventHandler{
				EventDataReplaced: inlineEditDataReplaced,
			},
		}
	}
}

// inlineEditInstall seeds the namespace: empty bookkeeping maps plus the
// captured configuration.
func inlineEditInstall(config InlineEditConfig) LifecycleFunc {
	return func(scope *PluginScope) error {
		readOnly := make(map[string]bool, len(config.ReadOnlyFields))
		for _, field := range config.ReadOnlyFields {
			readOnly[field] = true
		}
		scope.SetState(&editState{
			config:           config,
			editingCells:     make(map[string]editingCellInfo),
			editingRows:      make(map[string]struct{}),
			originalValues:   make(map[string]any),
			validationErrors: make(map[string]string),
			readOnly:         readOnly,
		})
		return nil
	}
}

// inlineEditSetup publishes the edit operations into the helper namespace.
func inlineEditSetup(scope *PluginScope) error {
	state, err := editStateOf(scope)
	if err != nil {
		return err
	}

	helpers := map[string]HelperFunc{
		HelperStartEdit: func(args ...any) (any, error) {
			rowKey, field, err := cellArgs(HelperStartEdit, args)
			if err != nil {
				return nil, err
			}
			return nil, startEdit(scope, state, rowKey, field)
		},
		HelperFinishEdit: func(args ...any) (any, error) {
			if len(args) != 3 {
				return nil, NewHelperUsageError(HelperFinishEdit, "expected rowKey, field, and value arguments")
			}
			rowKey, field, err := cellArgs(HelperFinishEdit, args[:2])
			if err != nil {
				return nil, err
			}
			return nil, finishEdit(scope, state, rowKey, field, args[2])
		},
		HelperCancelEdit: func(args ...any) (any, error) {
			rowKey, field, err := cellArgs(HelperCancelEdit, args)
			if err != nil {
				return nil, err
			}
			cancelEdit(state, rowKey, field)
			return nil, nil
		},
		HelperStartBatchEdit: func(args ...any) (any, error) {
			if len(args) != 1 {
				return nil, NewHelperUsageError(HelperStartBatchEdit, "expected one []string argument")
			}
			rowKeys, ok := args[0].([]string)
			if !ok {
				return nil, NewHelperUsageError(HelperStartBatchEdit, "row keys must be []string")
			}
			return nil, startBatchEdit(scope, state, rowKeys)
		},
		HelperIsEditing: func(args ...any) (any, error) {
			rowKey, field, err := cellArgs(HelperIsEditing, args)
			if err != nil {
				return nil, err
			}
			_, editing := state.editingCells[CellKey(rowKey, field)]
			return editing, nil
		},
		HelperValidationError: func(args ...any) (any, error) {
			rowKey, field, err := cellArgs(HelperValidationError, args)
			if err != nil {
				return nil, err
			}
			message, ok := state.validationErrors[CellKey(rowKey, field)]
			if !ok {
				return nil, nil
			}
			return message, nil
		},
	}

	for name, fn := range helpers {
		if err := scope.RegisterHelper(name, fn); err != nil {
			return err
		}
	}
	return nil
}

// inlineEditUninstall clears the edit state wholesale.
func inlineEditUninstall(scope *PluginScope) error {
	state, err := editStateOf(scope)
	if err != nil {
		return err
	}
	state.editingCells = make(map[string]editingCellInfo)
	state.editingRows = make(map[string]struct{})
	state.originalValues = make(map[string]any)
	state.validationErrors = make(map[string]string)
	return nil
}

// inlineEditRowDecorator is the collector contribution that marks editing
// rows for the host's row-header rendering.
func inlineEditRowDecorator(scope *PluginScope, value any) (any, error) {
	state, err := editStateOf(scope)
	if err != nil {
		return nil, err
	}
	decorator := RowDecorator(func(rowKey string) map[string]any {
		if _, editing := state.editingRows[rowKey]; editing {
			return map[string]any{"editing": true}
		}
		return nil
	})
	return decorator, nil
}

// inlineEditDataReplaced drops editing sessions whose rows no longer exist
// after the data set was swapped.
func inlineEditDataReplaced(scope *PluginScope, event TableEvent) error {
	state, err := editStateOf(scope)
	if err != nil {
		return err
	}
	for cellKey, info := range state.editingCells {
		if _, ok := state.config.Data.Get(info.RowKey); !ok {
			delete(state.editingCells, cellKey)
			delete(state.originalValues, cellKey)
			delete(state.validationErrors, cellKey)
			clearRowIfIdle(state, info.RowKey)
		}
	}
	return nil
}

// startEdit enters editing for one cell. Read-only fields and unknown rows
// are no-ops surfaced as coded errors; the optional beforeEdit callback may
// veto entry. The original value is snapshotted for the editing session.
func startEdit(scope *PluginScope, state *editState, rowKey, field string) error {
	if state.readOnly[field] {
		return NewFieldReadOnlyError(rowKey, field)
	}
	record, ok := state.config.Data.Get(rowKey)
	if !ok {
		return NewRowNotFoundError(rowKey)
	}
	if state.config.BeforeEdit != nil && !state.config.BeforeEdit(rowKey, field) {
		return NewEditVetoedError(rowKey, field)
	}

	cellKey := CellKey(rowKey, field)
	if _, editing := state.editingCells[cellKey]; editing {
		return nil
	}

	state.editingCells[cellKey] = editingCellInfo{RowKey: rowKey, Field: field}
	state.originalValues[cellKey] = record[field]
	if state.config.RowMode {
		state.editingRows[rowKey] = struct{}{}
	}
	scope.Logger().Debug("Cell entered editing", "row", rowKey, "field", field)
	return nil
}

// finishEdit validates and commits the value. On validation failure the
// cell stays in editing with the message recorded and the record untouched.
// On success the field is replaced through the data-replacement contract and
// the cell's bookkeeping is cleared; in row mode the row flag clears once no
// sibling cell remains editing. An auto-save failure rolls the replacement
// back and keeps the cell editing.
func finishEdit(scope *PluginScope, state *editState, rowKey, field string, value any) error {
	cellKey := CellKey(rowKey, field)
	if _, editing := state.editingCells[cellKey]; !editing {
		return NewNotEditingError(rowKey, field)
	}

	if state.config.Validator != nil {
		if err := state.config.Validator(rowKey, field, value); err != nil {
			state.validationErrors[cellKey] = err.Error()
			return NewEditValidationError(rowKey, field, err.Error())
		}
	}

	record, ok := state.config.Data.Get(rowKey)
	if !ok {
		return NewRowNotFoundError(rowKey)
	}

	// Replacement contract: produce a new record, never mutate in place.
	updated := record.Clone()
	updated[field] = value
	if err := state.config.Data.Replace(rowKey, updated); err != nil {
		state.validationErrors[cellKey] = err.Error()
		return NewAutoSaveFailedError(rowKey, field, err)
	}

	if state.config.AutoSave != nil {
		if err := state.config.AutoSave(rowKey, updated); err != nil {
			// Roll the collection back so the failed save is not half-applied.
			reverted := record.Clone()
			if revertErr := state.config.Data.Replace(rowKey, reverted); revertErr != nil {
				scope.Logger().Error("Rollback after failed auto-save failed",
					"row", rowKey,
					"field", field,
					"error", revertErr)
			}
			state.validationErrors[cellKey] = err.Error()
			return NewAutoSaveFailedError(rowKey, field, err)
		}
	}

	delete(state.editingCells, cellKey)
	delete(state.originalValues, cellKey)
	delete(state.validationErrors, cellKey)
	clearRowIfIdle(state, rowKey)
	scope.Logger().Debug("Cell edit committed", "row", rowKey, "field", field)
	return nil
}

// cancelEdit discards the editing session. The original value was never
// mutated, so there is nothing to restore; only the bookkeeping clears.
func cancelEdit(state *editState, rowKey, field string) {
	cellKey := CellKey(rowKey, field)
	delete(state.editingCells, cellKey)
	delete(state.originalValues, cellKey)
	delete(state.validationErrors, cellKey)
	clearRowIfIdle(state, rowKey)
}

// startBatchEdit opens editing for every editable field of the given rows.
// Rejected outright when batch editing is not enabled.
func startBatchEdit(scope *PluginScope, state *editState, rowKeys []string) error {
	if !state.config.BatchEnabled {
		return NewBatchEditDeniedError()
	}

	for _, rowKey := range rowKeys {
		record, ok := state.config.Data.Get(rowKey)
		if !ok {
			continue
		}
		for field := range record {
			if state.readOnly[field] {
				continue
			}
			if err := startEdit(scope, state, rowKey, field); err != nil {
				scope.Logger().Debug("Batch edit skipped cell",
					"row", rowKey,
					"field", field,
					"error", err)
			}
		}
	}
	return nil
}

// clearRowIfIdle removes the row-editing flag once no cell of the row is
// still editing.
func clearRowIfIdle(state *editState, rowKey string) {
	for _, info := range state.editingCells {
		if info.RowKey == rowKey {
			return
		}
	}
	delete(state.editingRows, rowKey)
}

func cellArgs(helper string, args []any) (string, string, error) {
	if len(args) != 2 {
		return "", "", NewHelperUsageError(helper, "expected rowKey and field arguments")
	}
	rowKey, ok := args[0].(string)
	if !ok {
		return "", "", NewHelperUsageError(helper, "row key must be a string")
	}
	field, ok := args[1].(string)
	if !ok {
		return "", "", NewHelperUsageError(helper, "field must be a string")
	}
	return rowKey, field, nil
}

func editStateOf(scope *PluginScope) (*editState, error) {
	raw, ok := scope.Peek(InlineEditPluginName)
	if !ok {
		return nil, NewRuntimeStateError("inline-edit namespace not installed")
	}
	state, ok := raw.(*editState)
	if !ok {
		return nil, NewRuntimeStateError("inline-edit namespace has unexpected shape")
	}
	return state, nil
}

// Typed wrappers over the helper namespace for host code.

// StartEdit enters editing for a cell through the registered helper.
func StartEdit(helpers HelperReader, rowKey, field string) error {
	_, err := helpers.Call(HelperStartEdit, rowKey, field)
	return err
}

// FinishEdit validates and commits a value for a cell being edited.
func FinishEdit(helpers HelperReader, rowKey, field string, value any) error {
	_, err := helpers.Call(HelperFinishEdit, rowKey, field, value)
	return err
}

// CancelEdit discards the editing session for a cell.
func CancelEdit(helpers HelperReader, rowKey, field string) error {
	_, err := helpers.Call(HelperCancelEdit, rowKey, field)
	return err
}

// StartBatchEdit opens editing for every editable field of the given rows.
func StartBatchEdit(helpers HelperReader, rowKeys []string) error {
	_, err := helpers.Call(HelperStartBatchEdit, rowKeys)
	return err
}

// IsEditing reports whether a cell has an active editing session.
func IsEditing(helpers HelperReader, rowKey, field string) (bool, error) {
	result, err := helpers.Call(HelperIsEditing, rowKey, field)
	if err != nil {
		return false, err
	}
	editing, _ := result.(bool)
	return editing, nil
}

// ValidationError returns the recorded validation message for a cell, if
// any.
func ValidationError(helpers HelperReader, rowKey, field string) (string, bool, error) {
	result, err := helpers.Call(HelperValidationError, rowKey, field)
	if err != nil {
		return "", false, err
	}
	if result == nil {
		return "", false, nil
	}
	message, _ := result.(string)
	return message, true, nil
}
