// errors.go: structured error definitions for the grid plugin runtime
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gridplugins

import (
	"github.com/agilira/go-errors"
)

// Error codes for the grid plugin runtime
const (
	// Configuration errors (1000-1099)
	ErrCodeInvalidConfig = "GRID_1001"
	ErrCodeConfigParse   = "GRID_1002"
	ErrCodeConfigWatcher = "GRID_1003"
	ErrCodeConfigPath    = "GRID_1004"

	// Resolution errors (1100-1199)
	ErrCodeMissingDependency = "GRID_1101"
	ErrCodePluginConflict    = "GRID_1102"
	ErrCodeDuplicatePlugin   = "GRID_1103"
	ErrCodeInvalidDescriptor = "GRID_1104"
	ErrCodePluginDisabled    = "GRID_1105"

	// Lifecycle errors (1200-1299)
	ErrCodeLifecycleStage    = "GRID_1201"
	ErrCodeInvalidTransition = "GRID_1202"
	ErrCodePluginInert       = "GRID_1203"
	ErrCodeRuntimeNotStarted = "GRID_1204"
	ErrCodeRuntimeState      = "GRID_1205"

	// Context and helper errors (1300-1399)
	ErrCodeHelperRedefined = "GRID_1301"
	ErrCodeHelperNotFound  = "GRID_1302"
	ErrCodeHelperUsage     = "GRID_1303"

	// Hook errors (1400-1499)
	ErrCodeHookKindMismatch = "GRID_1401"
	ErrCodeHookFailed       = "GRID_1402"

	// Persistence errors (1500-1599)
	ErrCodeStoreRead    = "GRID_1501"
	ErrCodeStoreWrite   = "GRID_1502"
	ErrCodeStoreDelete  = "GRID_1503"
	ErrCodeStoreCorrupt = "GRID_1504"

	// Inline-edit errors (1600-1699)
	ErrCodeRowNotFound     = "GRID_1601"
	ErrCodeFieldReadOnly   = "GRID_1602"
	ErrCodeEditValidation  = "GRID_1603"
	ErrCodeBatchEditDenied = "GRID_1604"
	ErrCodeEditVetoed      = "GRID_1605"
	ErrCodeNotEditing      = "GRID_1606"
	ErrCodeAutoSaveFailed  = "GRID_1607"
)

// Configuration error constructors

func NewInvalidConfigError(message string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeInvalidConfig, "Invalid configuration: "+message).
		WithUserMessage("Table runtime configuration is invalid").
		WithSeverity("error")
}

func NewConfigParseError(path string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeConfigParse, "Configuration parse error").
		WithUserMessage("Failed to parse configuration file").
		WithContext("config_path", path).
		WithSeverity("error")
}

func NewConfigWatcherError(message string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeConfigWatcher, "Configuration watcher error: "+message).
		WithUserMessage("Configuration monitoring failed").
		WithSeverity("error")
}

func NewConfigPathError(path string, message string) *errors.Error {
	return errors.New(ErrCodeConfigPath, "Configuration path error: "+message).
		WithUserMessage("Invalid configuration file path").
		WithContext("config_path", path).
		WithSeverity("error")
}

// Resolution error constructors

func NewMissingDependencyError(plugin, dependency string) *errors.Error {
	return errors.New(ErrCodeMissingDependency, "Missing plugin dependency").
		WithUserMessage("Plugin was excluded because a dependency is not in the requested set").
		WithContext("plugin", plugin).
		WithContext("dependency", dependency).
		WithSeverity("warning")
}

func NewPluginConflictError(plugin, conflict string) *errors.Error {
	return errors.New(ErrCodePluginConflict, "Plugin conflict").
		WithUserMessage("Plugin was excluded because it conflicts with an earlier-declared plugin").
		WithContext("plugin", plugin).
		WithContext("conflicts_with", conflict).
		WithSeverity("warning")
}

func NewDuplicatePluginError(name string) *errors.Error {
	return errors.New(ErrCodeDuplicatePlugin, "Duplicate plugin name").
		WithUserMessage("Plugin names must be unique within a requested set").
		WithContext("plugin", name).
		WithSeverity("warning")
}

func NewInvalidDescriptorError(name, message string) *errors.Error {
	return errors.New(ErrCodeInvalidDescriptor, "Invalid plugin descriptor: "+message).
		WithUserMessage("Plugin descriptor failed validation").
		WithContext("plugin", name).
		WithSeverity("error")
}

func NewPluginDisabledError(name string) *errors.Error {
	return errors.New(ErrCodePluginDisabled, "Plugin is disabled").
		WithUserMessage("Plugin was requested but its descriptor disables it").
		WithContext("plugin", name).
		WithSeverity("info")
}

// Lifecycle error constructors

func NewLifecycleStageError(plugin, stage string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeLifecycleStage, "Lifecycle stage failed").
		WithUserMessage("Plugin lifecycle callback failed; plugin marked inert").
		WithContext("plugin", plugin).
		WithContext("stage", stage).
		WithSeverity("warning")
}

func NewInvalidTransitionError(plugin string, from PluginState, stage string) *errors.Error {
	return errors.New(ErrCodeInvalidTransition, "Invalid lifecycle transition").
		WithUserMessage("Lifecycle stages must run strictly in order").
		WithContext("plugin", plugin).
		WithContext("from_state", from.String()).
		WithContext("stage", stage).
		WithSeverity("error")
}

func NewPluginInertError(plugin, operation string) *errors.Error {
	return errors.New(ErrCodePluginInert, "Plugin is inert").
		WithUserMessage("The owning plugin failed a lifecycle stage and contributes no behavior").
		WithContext("plugin", plugin).
		WithContext("operation", operation).
		WithSeverity("warning")
}

func NewRuntimeNotStartedError(operation string) *errors.Error {
	return errors.New(ErrCodeRuntimeNotStarted, "Runtime not started").
		WithUserMessage("The table runtime must be started before this operation").
		WithContext("operation", operation).
		WithSeverity("error")
}

func NewRuntimeStateError(message string) *errors.Error {
	return errors.New(ErrCodeRuntimeState, "Runtime state error: "+message).
		WithUserMessage("Table runtime is not in a state that allows this operation").
		WithSeverity("error")
}

// Context and helper error constructors

func NewHelperRedefinedError(name, owner string) *errors.Error {
	return errors.New(ErrCodeHelperRedefined, "Helper already registered").
		WithUserMessage("Helpers are write-once; a later plugin tried to redefine one").
		WithContext("helper", name).
		WithContext("owner", owner).
		WithSeverity("error")
}

func NewHelperNotFoundError(name string) *errors.Error {
	return errors.New(ErrCodeHelperNotFound, "Helper not found").
		WithUserMessage("No plugin registered a helper under this name").
		WithContext("helper", name).
		WithSeverity("error")
}

func NewHelperUsageError(name, message string) *errors.Error {
	return errors.New(ErrCodeHelperUsage, "Helper usage error: "+message).
		WithUserMessage("Helper was called with unexpected arguments").
		WithContext("helper", name).
		WithSeverity("error")
}

// Hook error constructors

func NewHookKindMismatchError(hook string, declared, attempted HookKind) *errors.Error {
	return errors.New(ErrCodeHookKindMismatch, "Hook kind mismatch").
		WithUserMessage("A hook's kind is fixed by its first registration").
		WithContext("hook", hook).
		WithContext("declared_kind", declared.String()).
		WithContext("attempted_kind", attempted.String()).
		WithSeverity("warning")
}

func NewHookFailedError(hook, plugin string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeHookFailed, "Hook contribution failed").
		WithUserMessage("A plugin's hook contribution failed and was skipped").
		WithContext("hook", hook).
		WithContext("plugin", plugin).
		WithSeverity("warning")
}

// Persistence error constructors

func NewStoreReadError(key string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeStoreRead, "Store read failed").
		WithUserMessage("Persisted state could not be read; continuing without it").
		WithContext("storage_key", key).
		WithSeverity("warning").
		AsRetryable()
}

func NewStoreWriteError(key string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeStoreWrite, "Store write failed").
		WithUserMessage("Persisted state could not be written; degrading to session-only").
		WithContext("storage_key", key).
		WithSeverity("warning").
		AsRetryable()
}

func NewStoreDeleteError(key string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeStoreDelete, "Store delete failed").
		WithUserMessage("Persisted state could not be removed").
		WithContext("storage_key", key).
		WithSeverity("warning")
}

func NewStoreCorruptError(key string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeStoreCorrupt, "Stored record is malformed").
		WithUserMessage("Persisted state was unreadable and is treated as absent").
		WithContext("storage_key", key).
		WithSeverity("warning")
}

// Inline-edit error constructors

func NewRowNotFoundError(rowKey string) *errors.Error {
	return errors.New(ErrCodeRowNotFound, "Row not found").
		WithUserMessage("The requested row is not in the data collection").
		WithContext("row_key", rowKey).
		WithSeverity("warning")
}

func NewFieldReadOnlyError(rowKey, field string) *errors.Error {
	return errors.New(ErrCodeFieldReadOnly, "Field is read-only").
		WithUserMessage("Editing is disabled for this field").
		WithContext("row_key", rowKey).
		WithContext("field", field).
		WithSeverity("warning")
}

func NewEditValidationError(rowKey, field, message string) *errors.Error {
	return errors.New(ErrCodeEditValidation, "Edit validation failed: "+message).
		WithUserMessage("The entered value did not pass validation").
		WithContext("row_key", rowKey).
		WithContext("field", field).
		WithSeverity("warning")
}

func NewBatchEditDeniedError() *errors.Error {
	return errors.New(ErrCodeBatchEditDenied, "Batch editing not enabled").
		WithUserMessage("Batch editing must be enabled in the inline-edit configuration").
		WithSeverity("warning")
}

func NewEditVetoedError(rowKey, field string) *errors.Error {
	return errors.New(ErrCodeEditVetoed, "Edit vetoed").
		WithUserMessage("The beforeEdit callback rejected entering edit mode").
		WithContext("row_key", rowKey).
		WithContext("field", field).
		WithSeverity("warning")
}

func NewNotEditingError(rowKey, field string) *errors.Error {
	return errors.New(ErrCodeNotEditing, "Cell is not being edited").
		WithUserMessage("The cell has no active editing session").
		WithContext("row_key", rowKey).
		WithContext("field", field).
		WithSeverity("warning")
}

func NewAutoSaveFailedError(rowKey, field string, cause error) *errors.Error {
	return errors.Wrap(cause, ErrCodeAutoSaveFailed, "Auto-save failed").
		WithUserMessage("The external auto-save callback failed; the edit stays open").
		WithContext("row_key", rowKey).
		WithContext("field", field).
		WithSeverity("warning").
		AsRetryable()
}
