// types_test.go: Shared type and enumeration tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gridplugins

import (
	"testing"
)

func TestPluginPriority_String(t *testing.T) {
	tests := []struct {
		priority PluginPriority
		expected string
	}{
		{PriorityLow, "low"},
		{PriorityMedium, "medium"},
		{PriorityHigh, "high"},
		{PluginPriority(0), "unknown"},
		{PluginPriority(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.priority.String(); got != tt.expected {
			t.Errorf("Priority %d: expected %q, got %q", tt.priority, tt.expected, got)
		}
	}
}

func TestPluginState_String(t *testing.T) {
	tests := []struct {
		state    PluginState
		expected string
	}{
		{StateUnregistered, "unregistered"},
		{StateInstalled, "installed"},
		{StateSetUp, "setup"},
		{StateMounted, "mounted"},
		{StateUpdated, "updated"},
		{StateUninstalled, "uninstalled"},
		{StateInert, "inert"},
		{PluginState(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("State %d: expected %q, got %q", tt.state, tt.expected, got)
		}
	}
}

func TestHookKind_String(t *testing.T) {
	if HookPipeline.String() != "pipeline" {
		t.Errorf("Expected pipeline, got %s", HookPipeline.String())
	}
	if HookCollector.String() != "collector" {
		t.Errorf("Expected collector, got %s", HookCollector.String())
	}
	if HookKind(9).String() != "unknown" {
		t.Errorf("Expected unknown, got %s", HookKind(9).String())
	}
}

func TestPersistenceStatus_String(t *testing.T) {
	tests := []struct {
		status   PersistenceStatus
		expected string
	}{
		{PersistenceDisabled, "disabled"},
		{PersistenceActive, "active"},
		{PersistenceDegraded, "degraded"},
		{PersistenceStatus(9), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.expected {
			t.Errorf("Status %d: expected %q, got %q", tt.status, tt.expected, got)
		}
	}
}

func TestEventConstructors(t *testing.T) {
	page := NewPageChangedEvent(3)
	if page.Name != EventPageChanged || page.Page != 3 || page.Time.IsZero() {
		t.Errorf("Unexpected page-changed event: %+v", page)
	}

	data := NewDataReplacedEvent(250)
	if data.Name != EventDataReplaced || data.Rows != 250 || data.Time.IsZero() {
		t.Errorf("Unexpected data-replaced event: %+v", data)
	}

	layout := NewLayoutChangedEvent()
	if layout.Name != EventLayoutChanged || layout.Time.IsZero() {
		t.Errorf("Unexpected layout-changed event: %+v", layout)
	}
}

func TestRecord_Clone(t *testing.T) {
	original := Record{"name": "alpha", "port": 8080}
	cloned := original.Clone()

	cloned["name"] = "mutated"
	if original["name"] != "alpha" {
		t.Error("Clone must not share storage with the original")
	}

	var nilRecord Record
	if nilRecord.Clone() == nil {
		t.Error("Cloning a nil record should yield an empty, usable record")
	}
}
