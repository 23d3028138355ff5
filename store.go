// store.go: External persisted key-value store for table state
//
// Reads and writes are synchronous and local; there is no network in this
// path, so there is no timeout or retry policy beyond catch-and-log at the
// callers. Store failures never escape into the host render path: the
// column-width plugin converts them into degraded (session-only) outcomes.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gridplugins

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// WidthStore is the external persisted store the runtime writes table state
// to. Values are opaque JSON documents keyed by storage key.
type WidthStore interface {
	// Load returns the value stored under key. The second result is false
	// when no value exists; that is not an error.
	Load(key string) ([]byte, bool, error)

	// Save writes value under key, replacing any existing value.
	Save(key string, value []byte) error

	// Delete removes the value stored under key. Deleting a missing key is
	// not an error.
	Delete(key string) error
}

// MemoryStore is an in-process WidthStore. It is the default when the host
// supplies no store and the workhorse of the test suite.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

// Load implements WidthStore.
func (m *MemoryStore) Load(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	copied := make([]byte, len(value))
	copy(copied, value)
	return copied, true, nil
}

// Save implements WidthStore.
func (m *MemoryStore) Save(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([]byte, len(value))
	copy(copied, value)
	m.entries[key] = copied
	return nil
}

// Delete implements WidthStore.
func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Len returns the number of stored keys.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// fileStoreDocument is the on-disk shape of a FileStore: one JSON document
// holding every key, plus the time of the last write for debugging.
type fileStoreDocument struct {
	Entries   map[string]json.RawMessage `json:"entries"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// FileStore is a file-backed WidthStore holding all keys in a single JSON
// document. Writes go through a temp file followed by an atomic rename, so a
// crash mid-write leaves the previous document intact. A malformed document
// on disk is treated as empty rather than fatal, matching the runtime's
// degrade-to-session-only persistence policy.
type FileStore struct {
	path   string
	logger Logger
	mu     sync.Mutex
}

// NewFileStore creates a file store at the given path. The file and its
// directory are created lazily on first save.
func NewFileStore(path string, logger Logger) *FileStore {
	if logger == nil {
		logger = DefaultLogger()
	}
	return &FileStore{path: filepath.Clean(path), logger: logger}
}

// Load implements WidthStore.
func (f *FileStore) Load(key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return nil, false, err
	}
	value, ok := doc.Entries[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(value), true, nil
}

// Save implements WidthStore.
func (f *FileStore) Save(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return err
	}
	doc.Entries[key] = json.RawMessage(value)
	return f.write(doc)
}

// Delete implements WidthStore.
func (f *FileStore) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := doc.Entries[key]; !ok {
		return nil
	}
	delete(doc.Entries, key)
	return f.write(doc)
}

func (f *FileStore) read() (fileStoreDocument, error) {
	doc := fileStoreDocument{Entries: make(map[string]json.RawMessage)}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return doc, NewStoreReadError(f.path, err)
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		f.logger.Warn("Store document is malformed, treating as empty",
			"path", f.path,
			"error", err)
		return fileStoreDocument{Entries: make(map[string]json.RawMessage)}, nil
	}
	if doc.Entries == nil {
		doc.Entries = make(map[string]json.RawMessage)
	}
	return doc, nil
}

func (f *FileStore) write(doc fileStoreDocument) error {
	doc.UpdatedAt = cachedNow()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return NewStoreWriteError(f.path, err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return NewStoreWriteError(f.path, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return NewStoreWriteError(f.path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return NewStoreWriteError(f.path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return NewStoreWriteError(f.path, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return NewStoreWriteError(f.path, err)
	}
	return nil
}
