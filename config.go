// config.go: Host configuration for the table runtime
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gridplugins

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/agilira/argus"
	"gopkg.in/yaml.v3"
)

// Default values applied to unset TableConfig fields.
const (
	DefaultMinColumnWidth    = 60
	DefaultMaxColumnWidth    = 600
	DefaultDetectionDebounce = 300 * time.Millisecond
	DefaultReapplyDelay      = 50 * time.Millisecond
	DefaultStorageKeyPrefix  = "grid-widths"
)

// TableConfig is the host-supplied configuration snapshot plugins consume at
// setup. All fields are optional; zero values are normalized by
// setTableConfigDefaults.
//
// Table identity: TableID scopes the persisted store key. When the host does
// not supply one it is derived deterministically from Title and
// NavigationPath, so the same logical table recovers the same widths across
// reloads while two tables sharing a title on different routes never
// collide.
type TableConfig struct {
	// Table identity
	TableID        string `json:"table_id" yaml:"table_id"`
	Title          string `json:"title" yaml:"title"`
	NavigationPath string `json:"navigation_path" yaml:"navigation_path"`

	// Column width persistence
	StorageKeyPrefix string `json:"storage_key_prefix" yaml:"storage_key_prefix"`
	MinColumnWidth   int    `json:"min_column_width" yaml:"min_column_width"`
	MaxColumnWidth   int    `json:"max_column_width" yaml:"max_column_width"`
	Persist          bool   `json:"persist" yaml:"persist"`

	// Width detection
	DisableDetection  bool          `json:"disable_detection" yaml:"disable_detection"`
	DetectionDebounce time.Duration `json:"detection_debounce" yaml:"detection_debounce"`
	ReapplyDelay      time.Duration `json:"reapply_delay" yaml:"reapply_delay"`

	// Free-form host props exposed to plugins through TableProps
	Props map[string]any `json:"props" yaml:"props"`

	// Runtime services, never serialized
	Logger Logger     `json:"-" yaml:"-"`
	Store  WidthStore `json:"-" yaml:"-"`
	Clock  Clock      `json:"-" yaml:"-"`
}

// setTableConfigDefaults fills unset fields with documented defaults.
func setTableConfigDefaults(config *TableConfig) {
	if config.Logger == nil {
		config.Logger = DefaultLogger()
	}
	if config.Clock == nil {
		config.Clock = SystemClock{}
	}
	if config.StorageKeyPrefix == "" {
		config.StorageKeyPrefix = DefaultStorageKeyPrefix
	}
	if config.MinColumnWidth == 0 {
		config.MinColumnWidth = DefaultMinColumnWidth
	}
	if config.MaxColumnWidth == 0 {
		config.MaxColumnWidth = DefaultMaxColumnWidth
	}
	if config.DetectionDebounce == 0 {
		config.DetectionDebounce = DefaultDetectionDebounce
	}
	if config.ReapplyDelay == 0 {
		config.ReapplyDelay = DefaultReapplyDelay
	}
}

// Validate checks the configuration for values the runtime cannot work with.
func (c TableConfig) Validate() error {
	if c.MinColumnWidth < 0 || c.MaxColumnWidth < 0 {
		return NewInvalidConfigError("column width bounds must be non-negative", nil)
	}
	if c.MaxColumnWidth > 0 && c.MinColumnWidth > c.MaxColumnWidth {
		return NewInvalidConfigError("min_column_width exceeds max_column_width", nil)
	}
	if c.DetectionDebounce < 0 || c.ReapplyDelay < 0 {
		return NewInvalidConfigError("delays must be non-negative", nil)
	}
	return nil
}

// EffectiveTableID returns the explicit table ID, or the deterministic
// derivation from title and navigation path.
func (c TableConfig) EffectiveTableID() string {
	if c.TableID != "" {
		return c.TableID
	}
	return DeriveTableID(c.Title, c.NavigationPath)
}

// StorageKey returns the external-store key scoping this table's persisted
// state.
func (c TableConfig) StorageKey() string {
	return BuildStorageKey(c.StorageKeyPrefix, c.EffectiveTableID())
}

// props snapshots the config into the read-only form plugins see.
func (c TableConfig) props() TableProps {
	return TableProps{Config: c, values: c.Props}
}

// LoadTableConfigFromFile reads a JSON or YAML configuration file. The
// format is auto-detected from the file extension; both formats share the
// same field names.
func LoadTableConfigFromFile(path string) (TableConfig, error) {
	var config TableConfig

	cleanPath := filepath.Clean(path)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, NewConfigPathError(cleanPath, "file does not exist")
		}
		return config, NewConfigParseError(cleanPath, err)
	}

	switch argus.DetectFormat(cleanPath) {
	case argus.FormatJSON:
		if err := json.Unmarshal(data, &config); err != nil {
			return config, NewConfigParseError(cleanPath, err)
		}
	case argus.FormatYAML:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return config, NewConfigParseError(cleanPath, err)
		}
	default:
		return config, NewConfigPathError(cleanPath, "unsupported configuration format")
	}

	setTableConfigDefaults(&config)
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}
