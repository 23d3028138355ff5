// testing_helpers_test.go: Shared fakes and fixtures for the runtime tests
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gridplugins

import (
	"sync"
)

// fakeSurface is an in-memory RenderSurface with settable measurements.
type fakeSurface struct {
	mu       sync.Mutex
	measured map[string]int
	applied  []map[string]int
}

func newFakeSurface(measured map[string]int) *fakeSurface {
	if measured == nil {
		measured = make(map[string]int)
	}
	return &fakeSurface{measured: measured}
}

func (s *fakeSurface) ColumnKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.measured))
	for key := range s.measured {
		keys = append(keys, key)
	}
	return keys
}

func (s *fakeSurface) MeasureColumnWidth(columnKey string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	width, ok := s.measured[columnKey]
	return width, ok
}

func (s *fakeSurface) ApplyColumnWidths(widths map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make(map[string]int, len(widths))
	for key, width := range widths {
		copied[key] = width
	}
	s.applied = append(s.applied, copied)
}

// applyCount returns how many times widths were pushed onto the surface.
func (s *fakeSurface) applyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.applied)
}

// lastApplied returns the most recent width map pushed onto the surface.
func (s *fakeSurface) lastApplied() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.applied) == 0 {
		return nil
	}
	return s.applied[len(s.applied)-1]
}

// fakeDataSource is an in-memory DataSource honoring the replacement
// contract: Replace installs the record into a fresh map snapshot.
type fakeDataSource struct {
	mu      sync.Mutex
	rows    map[string]Record
	order   []string
	version int
}

func newFakeDataSource(rows map[string]Record) *fakeDataSource {
	ds := &fakeDataSource{rows: make(map[string]Record, len(rows))}
	for key, record := range rows {
		ds.rows[key] = record.Clone()
		ds.order = append(ds.order, key)
	}
	return ds
}

func (d *fakeDataSource) Get(rowKey string) (Record, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	record, ok := d.rows[rowKey]
	if !ok {
		return nil, false
	}
	return record.Clone(), true
}

func (d *fakeDataSource) Replace(rowKey string, record Record) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.rows[rowKey]; !ok {
		return NewRowNotFoundError(rowKey)
	}
	next := make(map[string]Record, len(d.rows))
	for key, existing := range d.rows {
		next[key] = existing
	}
	next[rowKey] = record.Clone()
	d.rows = next
	d.version++
	return nil
}

func (d *fakeDataSource) Keys() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	keys := make([]string, len(d.order))
	copy(keys, d.order)
	return keys
}

// value reads a field directly, bypassing the clone in Get.
func (d *fakeDataSource) value(rowKey, field string) any {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rows[rowKey][field]
}

// failingStore wraps a WidthStore and fails selected operations, for
// degraded-persistence tests.
type failingStore struct {
	inner       WidthStore
	failSaves   bool
	failLoads   bool
	failDeletes bool
}

func (f *failingStore) Load(key string) ([]byte, bool, error) {
	if f.failLoads {
		return nil, false, NewStoreReadError(key, nil)
	}
	return f.inner.Load(key)
}

func (f *failingStore) Save(key string, value []byte) error {
	if f.failSaves {
		return NewStoreWriteError(key, nil)
	}
	return f.inner.Save(key, value)
}

func (f *failingStore) Delete(key string) error {
	if f.failDeletes {
		return NewStoreDeleteError(key, nil)
	}
	return f.inner.Delete(key)
}

// stagePlugin builds a descriptor that records lifecycle stage invocations
// into calls, keyed "name:stage".
func stagePlugin(name string, priority PluginPriority, calls *[]string) PluginDescriptor {
	record := func(stage string) LifecycleFunc {
		return func(scope *PluginScope) error {
			*calls = append(*calls, name+":"+stage)
			return nil
		}
	}
	return PluginDescriptor{
		Name:     name,
		Version:  "1.0.0",
		Priority: priority,
		Enabled:  true,
		Lifecycle: Lifecycle{
			Install: record("install"),
			Setup:   record("setup"),
			OnMount: func(scope *PluginScope, surface RenderSurface) error {
				*calls = append(*calls, name+":onMount")
				return nil
			},
			Update:    record("update"),
			Uninstall: record("uninstall"),
		},
	}
}

// testTableConfig returns a config wired to a manual clock, a memory store,
// and a capturing logger.
func testTableConfig(clock *ManualClock, store WidthStore, logger Logger) TableConfig {
	if logger == nil {
		logger = NewNoOpLogger()
	}
	config := TableConfig{
		Title:          "connections",
		NavigationPath: "/admin/connections",
		Persist:        store != nil,
		Logger:         logger,
		Store:          store,
	}
	if clock != nil {
		config.Clock = clock
	}
	return config
}
