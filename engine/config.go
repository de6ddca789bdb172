// config.go: engine configuration and its defaults.
//
// Validate fills in sane defaults for most fields, except where a bad
// value can't safely be papered over: a missing data_dir in a
// non-memory mode or an out-of-range false_positive_rate are hard
// failures (InvalidConfig) rather than silently substituted defaults.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"time"

	"github.com/agilira/maplet/filter"
	"github.com/agilira/maplet/storage"
)

// Default tuning values.
const (
	DefaultCapacity               = 10000
	DefaultFalsePositiveRate      = 0.01
	DefaultPersistenceMode        = storage.ModeHybrid
	DefaultAOFSyncIntervalMS      = 1000
	DefaultTTLEnabled             = true
	DefaultTTLCleanupIntervalMS   = 1000
)

// Config controls an Engine's sizing, persistence mode, and TTL
// behavior. Every field is optional; Validate fills in the defaults
// above.
type Config struct {
	// Capacity is the maplet's initial logical capacity.
	Capacity int

	// FalsePositiveRate bounds the maplet's false-positive probability.
	FalsePositiveRate float64

	// PersistenceMode selects the storage backend: memory, disk, aof, or
	// hybrid.
	PersistenceMode storage.Mode

	// DataDir is the filesystem path for non-memory modes. Required
	// when PersistenceMode is disk, aof, or hybrid.
	DataDir string

	// MemoryCapacity bounds the hybrid backend's in-memory tier, in
	// bytes. 0 means unbounded.
	MemoryCapacity int64

	// AOFSyncIntervalMS is the background fsync interval for aof/hybrid.
	AOFSyncIntervalMS int

	// TTLDisabled turns off the background sweeper. Lazy expiry checks on
	// Get/Exists/Delete/Expire happen regardless. Named as the negation
	// of "TTL enabled" (default true) so the zero Config still gets a
	// running sweeper, without Validate needing to distinguish "caller
	// left this unset" from "caller explicitly disabled it" — Go's zero
	// value for bool can't carry that distinction directly.
	TTLDisabled bool

	// TTLCleanupIntervalMS is the sweeper's tick interval.
	TTLCleanupIntervalMS int

	// Operator merges values on duplicate-key Set calls within the
	// maplet's own membership bookkeeping. Most callers never need to
	// set this: the engine inserts the operator's identity sentinel,
	// not user data, into the maplet (see engine.go's Set).
	Operator filter.Operator

	// Logger receives debug/info/warn/error events. Defaults to
	// NoOpLogger.
	Logger Logger

	// TimeProvider supplies the current time. Defaults to a
	// go-timecache-backed system clock.
	TimeProvider TimeProvider

	// MetricsCollector receives operation telemetry. Defaults to
	// NoOpMetricsCollector.
	MetricsCollector MetricsCollector
}

// Validate returns a copy of c with defaults applied, or an error if a
// required field was left unset or out of its valid range
// (InvalidConfig).
func (c Config) Validate() (Config, error) {
	out := c

	if out.Capacity <= 0 {
		out.Capacity = DefaultCapacity
	}

	if out.FalsePositiveRate == 0 {
		out.FalsePositiveRate = DefaultFalsePositiveRate
	} else if out.FalsePositiveRate <= 0 || out.FalsePositiveRate >= 1 {
		return Config{}, NewErrInvalidConfig("false_positive_rate", out.FalsePositiveRate)
	}

	if out.PersistenceMode == "" {
		out.PersistenceMode = DefaultPersistenceMode
	}
	switch out.PersistenceMode {
	case storage.ModeMemory, storage.ModeDisk, storage.ModeAOF, storage.ModeHybrid:
	default:
		return Config{}, NewErrInvalidConfig("persistence_mode", out.PersistenceMode)
	}

	if out.PersistenceMode != storage.ModeMemory && out.DataDir == "" {
		return Config{}, NewErrInvalidConfig("data_dir", out.DataDir)
	}

	if out.AOFSyncIntervalMS <= 0 {
		out.AOFSyncIntervalMS = DefaultAOFSyncIntervalMS
	}

	if out.TTLCleanupIntervalMS <= 0 {
		out.TTLCleanupIntervalMS = DefaultTTLCleanupIntervalMS
	}

	if out.Operator == nil {
		out.Operator = filter.CounterOperator()
	}
	if out.Logger == nil {
		out.Logger = NoOpLogger{}
	}
	if out.TimeProvider == nil {
		out.TimeProvider = systemTimeProvider{}
	}
	if out.MetricsCollector == nil {
		out.MetricsCollector = NoOpMetricsCollector{}
	}

	return out, nil
}

// DefaultConfig returns a Config with every field at its default,
// immediately usable with OpenEngine. PersistenceMode defaults to memory
// here rather than DefaultPersistenceMode (hybrid), since hybrid/disk/aof
// all require a caller-supplied DataDir that DefaultConfig has no basis
// to invent; Validate cannot fail for this literal, so the error is safe
// to discard.
func DefaultConfig() Config {
	validated, _ := Config{PersistenceMode: storage.ModeMemory}.Validate()
	return validated
}

// ttlEnabled reports whether the background sweeper should run.
func (c Config) ttlEnabled() bool { return !c.TTLDisabled }

func (c Config) sweepInterval() time.Duration {
	return time.Duration(c.TTLCleanupIntervalMS) * time.Millisecond
}
