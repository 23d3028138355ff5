// storage_key.go: Deterministic external-store keys for table state
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gridplugins

import (
	"fmt"
	"hash/fnv"
)

// storageKeySeparator joins the prefix and the table ID. It is part of the
// persisted-key format and must not change, or existing stores stop
// resolving.
const storageKeySeparator = ":"

// DeriveTableID produces a stable identifier for a table from its display
// title and the navigation path it is rendered under. Including the path
// keeps two unrelated tables that happen to share a title from colliding in
// the store, while a given table maps to the same ID on every reload.
func DeriveTableID(title, navigationPath string) string {
	h := fnv.New64a()
	// The NUL separator keeps ("ab","c") and ("a","bc") distinct.
	_, _ = h.Write([]byte(title))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(navigationPath))
	return fmt.Sprintf("%016x", h.Sum64())
}

// BuildStorageKey assembles the external-store key for a table:
// "{prefix}{separator}{tableID}".
func BuildStorageKey(prefix, tableID string) string {
	if prefix == "" {
		prefix = DefaultStorageKeyPrefix
	}
	return prefix + storageKeySeparator + tableID
}
