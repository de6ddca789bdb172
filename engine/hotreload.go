// hotreload.go: dynamic configuration reload via Argus.
//
// UniversalConfigWatcherWithConfig drives a Start/Stop/IsRunning
// lifecycle, narrowed to the subset of Config that can actually change
// without reconstructing the engine. Capacity, PersistenceMode, and
// DataDir determine the maplet's sizing and the storage backend's
// identity, so they require a fresh OpenEngine call rather than a live
// reload; only the sweeper's interval and enabled flag can change
// underneath a running engine.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/agilira/argus"
)

// HotConfig watches a configuration file and applies reloadable settings
// to a running Engine.
type HotConfig struct {
	engine  *Engine
	watcher *argus.Watcher
	mu      sync.RWMutex
	config  Config

	// OnReload is called after a reload is applied. Must be fast and
	// non-blocking.
	OnReload func(oldConfig, newConfig Config)
}

// HotConfigOptions configures hot reload behavior.
type HotConfigOptions struct {
	// ConfigPath is the file to watch. Supports JSON, YAML, TOML, HCL,
	// INI, Properties, matching Argus's format auto-detection.
	ConfigPath string

	// PollInterval is how often to check for changes. Default: 1s,
	// minimum 100ms.
	PollInterval time.Duration

	// OnReload is called after a successful reload.
	OnReload func(oldConfig, newConfig Config)

	// Logger defaults to the engine's own. HotConfig itself logs
	// nothing; reloads are reported only through OnReload.
	Logger Logger
}

// NewHotConfig creates a watcher for opts.ConfigPath that, once Start is
// called, applies reloadable settings (ttl_cleanup_interval_ms,
// ttl_enabled) to engine as the file changes.
//
// Recognized configuration keys (nested under an "engine" section, or at
// the document root):
//   - engine.ttl_cleanup_interval_ms (int)
//   - engine.ttl_enabled (bool)
func NewHotConfig(engine *Engine, opts HotConfigOptions) (*HotConfig, error) {
	if opts.ConfigPath == "" {
		return nil, fmt.Errorf("config_path is required")
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = time.Second
	} else if opts.PollInterval < 100*time.Millisecond {
		opts.PollInterval = 100 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = engine.cfg.Logger
	}

	hc := &HotConfig{
		engine:   engine,
		OnReload: opts.OnReload,
		config:   engine.cfg,
	}

	argusConfig := argus.Config{PollInterval: opts.PollInterval}
	watcher, err := argus.UniversalConfigWatcherWithConfig(opts.ConfigPath, hc.handleConfigChange, argusConfig)
	if err != nil {
		return nil, err
	}
	hc.watcher = watcher
	return hc, nil
}

// Start begins watching the configuration file.
func (hc *HotConfig) Start() error {
	if hc.watcher.IsRunning() {
		return nil
	}
	return hc.watcher.Start()
}

// Stop stops watching the configuration file.
func (hc *HotConfig) Stop() error {
	return hc.watcher.Stop()
}

// GetConfig returns the most recently applied configuration.
func (hc *HotConfig) GetConfig() Config {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.config
}

func (hc *HotConfig) handleConfigChange(data map[string]interface{}) {
	hc.mu.Lock()
	oldConfig := hc.config
	newConfig := hc.parseConfig(data)
	hc.config = newConfig
	hc.mu.Unlock()

	if newConfig.TTLCleanupIntervalMS != oldConfig.TTLCleanupIntervalMS ||
		newConfig.TTLDisabled != oldConfig.TTLDisabled {
		hc.engine.reconfigureSweepInterval(newConfig.sweepInterval(), newConfig.TTLDisabled)
	}

	if hc.OnReload != nil {
		hc.OnReload(oldConfig, newConfig)
	}
}

func (hc *HotConfig) parseConfig(data map[string]interface{}) Config {
	config := hc.config

	section, ok := data["engine"].(map[string]interface{})
	if !ok {
		_, hasInterval := data["ttl_cleanup_interval_ms"]
		_, hasEnabled := data["ttl_enabled"]
		if hasInterval || hasEnabled {
			section = data
		} else {
			return config
		}
	}

	if ms, ok := parsePositiveInt(section["ttl_cleanup_interval_ms"]); ok {
		config.TTLCleanupIntervalMS = ms
	}
	if enabled, ok := section["ttl_enabled"].(bool); ok {
		config.TTLDisabled = !enabled
	}

	return config
}

func parsePositiveInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		if v > 0 {
			return v, true
		}
	case float64:
		if v > 0 {
			return int(v), true
		}
	}
	return 0, false
}
