// inline_edit_plugin_test.go: Inline edit plugin tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gridplugins

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connectionRows() map[string]Record {
	return map[string]Record{
		"row-1": {"name": "alpha", "host": "alpha.local", "id": "row-1"},
		"row-2": {"name": "beta", "host": "beta.local", "id": "row-2"},
	}
}

// editRuntime assembles a started runtime carrying only the inline-edit
// plugin over the given data source.
func editRuntime(t *testing.T, config InlineEditConfig) *TableRuntime {
	t.Helper()
	runtime := NewTableRuntime(testTableConfig(nil, nil, nil), InlineEditPlugin(config))
	require.NoError(t, runtime.Start())
	return runtime
}

func TestInlineEdit_StartAndFinish(t *testing.T) {
	data := newFakeDataSource(connectionRows())
	runtime := editRuntime(t, InlineEditConfig{Data: data})

	require.NoError(t, StartEdit(runtime.Helpers(), "row-1", "name"))

	editing, err := IsEditing(runtime.Helpers(), "row-1", "name")
	require.NoError(t, err)
	assert.True(t, editing)

	require.NoError(t, FinishEdit(runtime.Helpers(), "row-1", "name", "renamed"))

	editing, err = IsEditing(runtime.Helpers(), "row-1", "name")
	require.NoError(t, err)
	assert.False(t, editing)
	assert.Equal(t, "renamed", data.value("row-1", "name"))

	// The commit went through the replacement contract, not an in-place write.
	assert.Equal(t, 1, data.version)
}

func TestInlineEdit_ReadOnlyField(t *testing.T) {
	data := newFakeDataSource(connectionRows())
	runtime := editRuntime(t, InlineEditConfig{
		Data:           data,
		ReadOnlyFields: []string{"id"},
	})

	err := StartEdit(runtime.Helpers(), "row-1", "id")
	assert.Error(t, err)

	editing, lookupErr := IsEditing(runtime.Helpers(), "row-1", "id")
	require.NoError(t, lookupErr)
	assert.False(t, editing)
	assert.Equal(t, "row-1", data.value("row-1", "id"))
}

func TestInlineEdit_UnknownRow(t *testing.T) {
	runtime := editRuntime(t, InlineEditConfig{Data: newFakeDataSource(connectionRows())})

	assert.Error(t, StartEdit(runtime.Helpers(), "row-99", "name"))
}

func TestInlineEdit_BeforeEditVeto(t *testing.T) {
	data := newFakeDataSource(connectionRows())
	runtime := editRuntime(t, InlineEditConfig{
		Data: data,
		BeforeEdit: func(rowKey, field string) bool {
			return rowKey != "row-2"
		},
	})

	require.NoError(t, StartEdit(runtime.Helpers(), "row-1", "name"))
	assert.Error(t, StartEdit(runtime.Helpers(), "row-2", "name"))
}

func TestInlineEdit_ValidationFailureKeepsEditing(t *testing.T) {
	data := newFakeDataSource(connectionRows())
	runtime := editRuntime(t, InlineEditConfig{
		Data: data,
		Validator: func(rowKey, field string, value any) error {
			if value == "" {
				return errors.New("name must not be empty")
			}
			return nil
		},
	})

	require.NoError(t, StartEdit(runtime.Helpers(), "row-1", "name"))
	err := FinishEdit(runtime.Helpers(), "row-1", "name", "")
	assert.Error(t, err)

	// The cell stays editing, the message is recorded, the record untouched.
	editing, lookupErr := IsEditing(runtime.Helpers(), "row-1", "name")
	require.NoError(t, lookupErr)
	assert.True(t, editing)

	message, found, lookupErr := ValidationError(runtime.Helpers(), "row-1", "name")
	require.NoError(t, lookupErr)
	assert.True(t, found)
	assert.Equal(t, "name must not be empty", message)
	assert.Equal(t, "alpha", data.value("row-1", "name"))
	assert.Equal(t, 0, data.version)

	// A subsequent valid commit clears the recorded message.
	require.NoError(t, FinishEdit(runtime.Helpers(), "row-1", "name", "fixed"))
	_, found, lookupErr = ValidationError(runtime.Helpers(), "row-1", "name")
	require.NoError(t, lookupErr)
	assert.False(t, found)
}

func TestInlineEdit_CancelNeverMutates(t *testing.T) {
	data := newFakeDataSource(connectionRows())
	runtime := editRuntime(t, InlineEditConfig{Data: data})

	require.NoError(t, StartEdit(runtime.Helpers(), "row-1", "name"))
	require.NoError(t, CancelEdit(runtime.Helpers(), "row-1", "name"))

	editing, err := IsEditing(runtime.Helpers(), "row-1", "name")
	require.NoError(t, err)
	assert.False(t, editing)
	assert.Equal(t, "alpha", data.value("row-1", "name"))
	assert.Equal(t, 0, data.version)
}

func TestInlineEdit_FinishWithoutStart(t *testing.T) {
	runtime := editRuntime(t, InlineEditConfig{Data: newFakeDataSource(connectionRows())})

	assert.Error(t, FinishEdit(runtime.Helpers(), "row-1", "name", "value"))
}

func TestInlineEdit_AutoSaveFailureRollsBack(t *testing.T) {
	data := newFakeDataSource(connectionRows())
	runtime := editRuntime(t, InlineEditConfig{
		Data: data,
		AutoSave: func(rowKey string, record Record) error {
			return errors.New("backend rejected the save")
		},
	})

	require.NoError(t, StartEdit(runtime.Helpers(), "row-1", "name"))
	err := FinishEdit(runtime.Helpers(), "row-1", "name", "renamed")
	assert.Error(t, err)

	// The replacement was rolled back and the cell stays editing.
	assert.Equal(t, "alpha", data.value("row-1", "name"))
	editing, lookupErr := IsEditing(runtime.Helpers(), "row-1", "name")
	require.NoError(t, lookupErr)
	assert.True(t, editing)
}

func TestInlineEdit_BatchDeniedWhenDisabled(t *testing.T) {
	runtime := editRuntime(t, InlineEditConfig{Data: newFakeDataSource(connectionRows())})

	assert.Error(t, StartBatchEdit(runtime.Helpers(), []string{"row-1"}))
}

func TestInlineEdit_BatchOpensEditableFields(t *testing.T) {
	data := newFakeDataSource(connectionRows())
	runtime := editRuntime(t, InlineEditConfig{
		Data:           data,
		BatchEnabled:   true,
		ReadOnlyFields: []string{"id"},
	})

	require.NoError(t, StartBatchEdit(runtime.Helpers(), []string{"row-1", "row-2", "row-99"}))

	for _, rowKey := range []string{"row-1", "row-2"} {
		for _, field := range []string{"name", "host"} {
			editing, err := IsEditing(runtime.Helpers(), rowKey, field)
			require.NoError(t, err)
			assert.True(t, editing, "expected %s/%s editing", rowKey, field)
		}
		editing, err := IsEditing(runtime.Helpers(), rowKey, "id")
		require.NoError(t, err)
		assert.False(t, editing, "read-only field must not enter editing")
	}
}

func TestInlineEdit_RowModeDecorator(t *testing.T) {
	data := newFakeDataSource(connectionRows())
	runtime := editRuntime(t, InlineEditConfig{Data: data, RowMode: true})

	require.NoError(t, StartEdit(runtime.Helpers(), "row-1", "name"))
	require.NoError(t, StartEdit(runtime.Helpers(), "row-1", "host"))

	decorators := runtime.RowDecorators()
	require.Len(t, decorators, 1)

	attrs := decorators[0]("row-1")
	assert.Equal(t, map[string]any{"editing": true}, attrs)
	assert.Nil(t, decorators[0]("row-2"))

	// The row flag clears only once the last sibling cell finishes.
	require.NoError(t, FinishEdit(runtime.Helpers(), "row-1", "name", "renamed"))
	assert.Equal(t, map[string]any{"editing": true}, decorators[0]("row-1"))

	require.NoError(t, FinishEdit(runtime.Helpers(), "row-1", "host", "new.local"))
	assert.Nil(t, decorators[0]("row-1"))
}

func TestInlineEdit_DataReplacedDropsVanishedSessions(t *testing.T) {
	data := newFakeDataSource(connectionRows())
	runtime := editRuntime(t, InlineEditConfig{Data: data, RowMode: true})

	require.NoError(t, StartEdit(runtime.Helpers(), "row-1", "name"))
	require.NoError(t, StartEdit(runtime.Helpers(), "row-2", "name"))

	// Swap the backing data: row-2 is gone.
	data.mu.Lock()
	delete(data.rows, "row-2")
	data.mu.Unlock()

	runtime.Emit(NewDataReplacedEvent(1))

	editing, err := IsEditing(runtime.Helpers(), "row-1", "name")
	require.NoError(t, err)
	assert.True(t, editing)

	editing, err = IsEditing(runtime.Helpers(), "row-2", "name")
	require.NoError(t, err)
	assert.False(t, editing)
}

func TestInlineEdit_DisabledWithoutData(t *testing.T) {
	runtime := editRuntime(t, InlineEditConfig{})

	_, ok := runtime.PluginState(InlineEditPluginName)
	assert.False(t, ok)
	_, err := IsEditing(runtime.Helpers(), "row-1", "name")
	assert.Error(t, err)
}

func TestInlineEdit_StartEditIdempotent(t *testing.T) {
	data := newFakeDataSource(connectionRows())
	runtime := editRuntime(t, InlineEditConfig{Data: data})

	require.NoError(t, StartEdit(runtime.Helpers(), "row-1", "name"))
	require.NoError(t, StartEdit(runtime.Helpers(), "row-1", "name"))

	require.NoError(t, FinishEdit(runtime.Helpers(), "row-1", "name", "renamed"))
	editing, err := IsEditing(runtime.Helpers(), "row-1", "name")
	require.NoError(t, err)
	assert.False(t, editing)
}
