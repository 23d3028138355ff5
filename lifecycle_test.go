// lifecycle_test.go: Lifecycle orchestration and fault isolation tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gridplugins

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/agilira/go-errors"
)

// TestLifecycle_StageSequencing verifies the full stage sequence runs in
// resolved order with uninstall reversed.
func TestLifecycle_StageSequencing(t *testing.T) {
	var calls []string
	descriptors := []PluginDescriptor{
		stagePlugin("second", PriorityMedium, &calls),
		stagePlugin("first", PriorityHigh, &calls),
	}

	runtime := NewTableRuntimeFromDescriptors(testTableConfig(nil, nil, nil), descriptors)
	if err := runtime.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := runtime.Mount(newFakeSurface(nil)); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}
	if err := runtime.ApplyConfig(testTableConfig(nil, nil, nil)); err != nil {
		t.Fatalf("ApplyConfig failed: %v", err)
	}
	if err := runtime.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}

	expected := []string{
		"first:install", "second:install",
		"first:setup", "second:setup",
		"first:onMount", "second:onMount",
		"first:update", "second:update",
		"second:uninstall", "first:uninstall",
	}
	if len(calls) != len(expected) {
		t.Fatalf("Expected %d stage calls, got %v", len(expected), calls)
	}
	for i := range expected {
		if calls[i] != expected[i] {
			t.Fatalf("Stage order mismatch at %d: expected %v, got %v", i, expected, calls)
		}
	}
}

// TestLifecycle_FaultIsolation verifies a failing setup marks only that
// plugin inert; its siblings continue through every stage.
func TestLifecycle_FaultIsolation(t *testing.T) {
	var calls []string
	faulty := stagePlugin("faulty", PriorityHigh, &calls)
	faulty.Lifecycle.Setup = func(scope *PluginScope) error {
		return errors.New("setup exploded")
	}
	healthy := stagePlugin("healthy", PriorityMedium, &calls)

	logger := NewTestLogger()
	config := testTableConfig(nil, nil, logger)
	runtime := NewTableRuntimeFromDescriptors(config, []PluginDescriptor{faulty, healthy})
	if err := runtime.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := runtime.Mount(newFakeSurface(nil)); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}

	state, ok := runtime.PluginState("faulty")
	if !ok || state != StateInert {
		t.Errorf("Expected faulty plugin inert, got %s", state)
	}
	state, ok = runtime.PluginState("healthy")
	if !ok || state != StateMounted {
		t.Errorf("Expected healthy plugin mounted, got %s", state)
	}

	for _, call := range calls {
		if call == "faulty:onMount" {
			t.Error("Inert plugin should not reach onMount")
		}
	}
	if !logger.HasMessage("WARN", "Lifecycle stage failed, plugin marked inert") {
		t.Error("Expected stage failure to be logged")
	}
}

// TestLifecycle_PanicIsolation verifies a panicking callback is contained
// the same way a returned error is.
func TestLifecycle_PanicIsolation(t *testing.T) {
	var calls []string
	panicking := stagePlugin("panicking", PriorityMedium, &calls)
	panicking.Lifecycle.Install = func(scope *PluginScope) error {
		panic("install blew up")
	}
	healthy := stagePlugin("healthy", PriorityLow, &calls)

	runtime := NewTableRuntimeFromDescriptors(testTableConfig(nil, nil, nil), []PluginDescriptor{panicking, healthy})
	if err := runtime.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	state, _ := runtime.PluginState("panicking")
	if state != StateInert {
		t.Errorf("Expected panicking plugin inert, got %s", state)
	}
	state, _ = runtime.PluginState("healthy")
	if state != StateSetUp {
		t.Errorf("Expected healthy plugin set up, got %s", state)
	}
}

// TestLifecycle_InertPluginSkipsHooksAndEvents verifies an inert plugin's
// hook contributions and event handlers stop firing.
func TestLifecycle_InertPluginSkipsHooksAndEvents(t *testing.T) {
	eventsSeen := 0
	desc := PluginDescriptor{
		Name:    "broken",
		Enabled: true,
		Lifecycle: Lifecycle{
			Setup: func(scope *PluginScope) error {
				return errors.New("no setup")
			},
		},
		Hooks: map[string]HookRegistration{
			HookEffectiveColumns: {
				Kind: HookPipeline,
				Fn: func(scope *PluginScope, input any) (any, error) {
					t.Error("Inert plugin's hook should not run")
					return input, nil
				},
			},
		},
		TableEvents: map[string]EventHandler{
			EventPageChanged: func(scope *PluginScope, event TableEvent) error {
				eventsSeen++
				return nil
			},
		},
	}

	runtime := NewTableRuntimeFromDescriptors(testTableConfig(nil, nil, nil), []PluginDescriptor{desc})
	if err := runtime.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	base := []Column{{Key: "name", Title: "Name"}}
	runtime.EffectiveColumns(base)
	runtime.Emit(NewPageChangedEvent(2))

	if eventsSeen != 0 {
		t.Errorf("Expected no event deliveries to inert plugin, got %d", eventsSeen)
	}
}

// TestLifecycle_InertPluginHelpersUnavailable verifies helpers registered by
// a plugin that later fails a stage stop resolving: an inert plugin
// contributes no behavior, helpers included.
func TestLifecycle_InertPluginHelpersUnavailable(t *testing.T) {
	provider := PluginDescriptor{
		Name:    "provider",
		Version: "1.0.0",
		Enabled: true,
		Lifecycle: Lifecycle{
			Setup: func(scope *PluginScope) error {
				return scope.RegisterHelper("provider.value", func(args ...any) (any, error) {
					return 42, nil
				})
			},
			OnMount: func(scope *PluginScope, surface RenderSurface) error {
				return errors.New("mount exploded")
			},
		},
	}

	runtime := NewTableRuntimeFromDescriptors(testTableConfig(nil, nil, nil), []PluginDescriptor{provider})
	if err := runtime.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := runtime.Helpers().Call("provider.value"); err != nil {
		t.Fatalf("Helper should be callable before the failing stage: %v", err)
	}

	if err := runtime.Mount(newFakeSurface(nil)); err != nil {
		t.Fatalf("Mount failed: %v", err)
	}

	if _, ok := runtime.Helpers().Helper("provider.value"); ok {
		t.Error("Inert plugin's helper should no longer resolve")
	}
	_, err := runtime.Helpers().Call("provider.value")
	if err == nil {
		t.Fatal("Expected a coded error calling an inert plugin's helper")
	}
	var coded *goerrors.Error
	if !errors.As(err, &coded) || coded.ErrorCode() != goerrors.ErrorCode(ErrCodePluginInert) {
		t.Errorf("Expected code %s, got %v", ErrCodePluginInert, err)
	}
}

// TestLifecycle_UpdateBeforeMount verifies update is skipped for plugins
// that have not mounted yet instead of corrupting their state.
func TestLifecycle_UpdateBeforeMount(t *testing.T) {
	var calls []string
	runtime := NewTableRuntimeFromDescriptors(testTableConfig(nil, nil, nil), []PluginDescriptor{
		stagePlugin("plugin", PriorityMedium, &calls),
	})
	if err := runtime.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := runtime.ApplyConfig(testTableConfig(nil, nil, nil)); err != nil {
		t.Fatalf("ApplyConfig failed: %v", err)
	}

	for _, call := range calls {
		if call == "plugin:update" {
			t.Error("Update should not run before mount")
		}
	}
	state, _ := runtime.PluginState("plugin")
	if state != StateSetUp {
		t.Errorf("Expected plugin still set up, got %s", state)
	}
}

// TestLifecycle_ShutdownCancelsScheduledWork verifies pending deferred tasks
// are canceled during shutdown.
func TestLifecycle_ShutdownCancelsScheduledWork(t *testing.T) {
	clock := NewManualClock()
	fired := false
	desc := PluginDescriptor{
		Name:    "scheduling",
		Enabled: true,
		Lifecycle: Lifecycle{
			Setup: func(scope *PluginScope) error {
				scope.Defer(50*time.Millisecond, func() { fired = true })
				return nil
			},
		},
	}

	runtime := NewTableRuntimeFromDescriptors(testTableConfig(clock, nil, nil), []PluginDescriptor{desc})
	if err := runtime.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if runtime.Stats().PendingTasks != 1 {
		t.Fatalf("Expected one pending task, got %d", runtime.Stats().PendingTasks)
	}

	if err := runtime.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	clock.Advance(50 * time.Millisecond)

	if fired {
		t.Error("Canceled task should never fire")
	}
	if runtime.Stats().PendingTasks != 0 {
		t.Errorf("Expected no pending tasks after shutdown, got %d", runtime.Stats().PendingTasks)
	}
}

// TestLifecycle_StartIdempotence verifies repeated Start and Shutdown calls
// are rejected or absorbed without rerunning stages.
func TestLifecycle_StartIdempotence(t *testing.T) {
	var calls []string
	runtime := NewTableRuntimeFromDescriptors(testTableConfig(nil, nil, nil), []PluginDescriptor{
		stagePlugin("plugin", PriorityMedium, &calls),
	})
	if err := runtime.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := runtime.Start(); err == nil {
		t.Error("Expected second Start to be rejected")
	}

	installs := 0
	for _, call := range calls {
		if call == "plugin:install" {
			installs++
		}
	}
	if installs != 1 {
		t.Errorf("Expected exactly one install, got %d", installs)
	}

	if err := runtime.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if err := runtime.Shutdown(context.Background()); err != nil {
		t.Errorf("Second Shutdown should be a no-op, got %v", err)
	}
	if err := runtime.Start(); err == nil {
		t.Error("Expected Start after Shutdown to be rejected")
	}
}
