// config_watcher.go: Hot reload of table runtime configuration with Argus
//
// Watches the runtime's configuration file and re-applies validated changes
// through the update lifecycle stage, so width bounds, debounce delays, and
// table identity can change without recreating the runtime.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gridplugins

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/argus"
)

// ConfigWatcherOptions customizes the runtime configuration watcher.
type ConfigWatcherOptions struct {
	// PollInterval is how often Argus checks the file for changes.
	PollInterval time.Duration

	// ErrorHandler receives file-watching errors. Defaults to logging.
	ErrorHandler func(err error, path string)
}

// RuntimeConfigWatcher hot-reloads a TableRuntime's configuration from a
// JSON or YAML file. A change that fails to parse or validate is logged and
// skipped; the runtime keeps its current configuration.
type RuntimeConfigWatcher struct {
	runtime    *TableRuntime
	configPath string
	logger     Logger
	options    ConfigWatcherOptions

	watcher *argus.Watcher

	enabled  atomic.Bool
	stopped  atomic.Bool
	stopOnce sync.Once
	mutex    sync.Mutex
}

// NewRuntimeConfigWatcher creates a watcher for the given runtime and
// configuration file path.
func NewRuntimeConfigWatcher(runtime *TableRuntime, configPath string, options ConfigWatcherOptions) (*RuntimeConfigWatcher, error) {
	if runtime == nil {
		return nil, NewConfigWatcherError("runtime is required", nil)
	}
	if configPath == "" {
		return nil, NewConfigPathError(configPath, "config path is required")
	}
	if options.PollInterval == 0 {
		options.PollInterval = 2 * time.Second
	}

	logger := runtime.config.Logger.With("component", "config-watcher")

	rcw := &RuntimeConfigWatcher{
		runtime:    runtime,
		configPath: filepath.Clean(configPath),
		logger:     logger,
		options:    options,
	}

	rcw.watcher = argus.New(argus.Config{
		PollInterval:         options.PollInterval,
		MaxWatchedFiles:      1,
		OptimizationStrategy: argus.OptimizationSingleEvent,
		ErrorHandler: func(err error, path string) {
			if options.ErrorHandler != nil {
				options.ErrorHandler(err, path)
				return
			}
			logger.Error("Config file watching error", "error", err, "file", path)
		},
	})

	return rcw, nil
}

// Start loads and applies the initial configuration, then begins watching
// the file for changes.
func (rcw *RuntimeConfigWatcher) Start(ctx context.Context) error {
	if rcw.stopped.Load() {
		return NewConfigWatcherError("config watcher has been permanently stopped and cannot be restarted", nil)
	}

	rcw.mutex.Lock()
	defer rcw.mutex.Unlock()

	if !rcw.enabled.CompareAndSwap(false, true) {
		return NewConfigWatcherError("config watcher is already running", nil)
	}

	initial, err := LoadTableConfigFromFile(rcw.configPath)
	if err != nil {
		rcw.enabled.Store(false)
		return NewConfigWatcherError("failed to load initial configuration", err)
	}
	if err := rcw.runtime.ApplyConfig(initial); err != nil {
		rcw.enabled.Store(false)
		return NewConfigWatcherError("failed to apply initial configuration", err)
	}

	if err := rcw.watcher.Watch(rcw.configPath, rcw.handleConfigChange); err != nil {
		rcw.enabled.Store(false)
		return NewConfigWatcherError("failed to watch config file", err)
	}
	if err := rcw.watcher.Start(); err != nil {
		rcw.enabled.Store(false)
		return NewConfigWatcherError("failed to start config watcher", err)
	}

	rcw.logger.Info("Runtime config watcher started",
		"config_path", rcw.configPath,
		"poll_interval", rcw.options.PollInterval)
	return nil
}

// Stop permanently stops the watcher. Safe to call more than once.
func (rcw *RuntimeConfigWatcher) Stop() error {
	var err error
	rcw.stopOnce.Do(func() {
		rcw.mutex.Lock()
		defer rcw.mutex.Unlock()

		rcw.stopped.Store(true)
		rcw.enabled.Store(false)

		if stopErr := rcw.watcher.Stop(); stopErr != nil {
			err = NewConfigWatcherError("failed to stop config watcher", stopErr)
			return
		}
		rcw.logger.Info("Runtime config watcher stopped", "config_path", rcw.configPath)
	})
	return err
}

// IsRunning reports whether the watcher is active.
func (rcw *RuntimeConfigWatcher) IsRunning() bool {
	return rcw.enabled.Load() && !rcw.stopped.Load()
}

// handleConfigChange reacts to one file change event. Delete events are
// skipped; there is nothing to reload from a deleted file.
func (rcw *RuntimeConfigWatcher) handleConfigChange(event argus.ChangeEvent) {
	rcw.logger.Info("Configuration file change detected",
		"path", event.Path,
		"is_create", event.IsCreate,
		"is_delete", event.IsDelete,
		"is_modify", event.IsModify)

	if event.IsDelete {
		rcw.logger.Warn("Configuration file was deleted, keeping current configuration", "path", event.Path)
		return
	}

	config, err := LoadTableConfigFromFile(event.Path)
	if err != nil {
		rcw.logger.Error("Failed to load changed configuration", "error", err, "path", event.Path)
		return
	}

	if err := rcw.runtime.ApplyConfig(config); err != nil {
		rcw.logger.Error("Failed to apply changed configuration", "error", err, "path", event.Path)
		return
	}

	rcw.logger.Info("Configuration change applied", "path", event.Path)
}
