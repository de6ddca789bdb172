// interfaces.go: public interfaces for the engine package.
//
// Logger, NoOpLogger, and TimeProvider follow the small-interface-plus-
// no-op-default idiom used throughout this module; MetricsCollector is
// narrowed to the five operations the engine actually emits (Get/Set/
// Delete/Expiration/Resize).
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package engine

import "github.com/agilira/go-timecache"

// Logger is used for debugging and monitoring. If nil, NoOpLogger is used.
type Logger interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Warn(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
}

// NoOpLogger discards everything. It is the default Logger.
type NoOpLogger struct{}

func (NoOpLogger) Debug(msg string, keyvals ...interface{}) {}
func (NoOpLogger) Info(msg string, keyvals ...interface{})  {}
func (NoOpLogger) Warn(msg string, keyvals ...interface{})  {}
func (NoOpLogger) Error(msg string, keyvals ...interface{}) {}

// TimeProvider supplies the current time. Engine uses it for uptime
// accounting, operation latencies, and as the TTL index's clock; tests
// substitute a deterministic
// implementation.
type TimeProvider interface {
	// Now returns the current time as nanoseconds since the Unix epoch.
	Now() int64
}

// systemTimeProvider is the default TimeProvider, backed by
// go-timecache's coalesced clock read, avoiding a syscall-backed
// time.Now() on every hot-path operation.
type systemTimeProvider struct{}

func (systemTimeProvider) Now() int64 { return timecache.CachedTimeNano() }

// MetricsCollector receives operation telemetry. If nil,
// NoOpMetricsCollector is used (zero overhead).
type MetricsCollector interface {
	// RecordGet records a Get call's latency and whether it was a hit.
	RecordGet(latencyNs int64, hit bool)

	// RecordSet records a Set call's latency.
	RecordSet(latencyNs int64)

	// RecordDelete records a Delete call's latency.
	RecordDelete(latencyNs int64)

	// RecordExpiration records one key removed by the TTL sweeper.
	RecordExpiration()

	// RecordResize records one maplet resize event.
	RecordResize()
}

// NoOpMetricsCollector discards everything. It is the default
// MetricsCollector.
type NoOpMetricsCollector struct{}

func (NoOpMetricsCollector) RecordGet(latencyNs int64, hit bool) {}
func (NoOpMetricsCollector) RecordSet(latencyNs int64)           {}
func (NoOpMetricsCollector) RecordDelete(latencyNs int64)        {}
func (NoOpMetricsCollector) RecordExpiration()                   {}
func (NoOpMetricsCollector) RecordResize()                       {}
