// stats.go: point-in-time engine statistics — uptime, total operations,
// maplet capacity/size/load/error-rate/memory, storage operations/
// memory, and TTL entries/cleanups.
//
// A plain struct of counters computed on demand from the underlying
// components, rather than a live-updating object.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"sync/atomic"
	"time"
)

// Stats is a point-in-time snapshot of the engine's operational state.
type Stats struct {
	Uptime     time.Duration
	TotalOps   int64

	MapletCapacity   uint64
	MapletSize       uint64
	MapletLoadFactor float64
	MapletErrorRate  float64
	MapletMemory     int64

	StorageOps    int64
	StorageMemory int64

	TTLEntries  int
	TTLCleanups int64
}

// Stats returns a snapshot of the engine's current statistics. It does
// not require the engine to be open: stats remain readable after Close.
func (e *Engine) Stats() Stats {
	mapletStats := e.maplet.Stats()
	totalOps := atomic.LoadInt64(&e.totalOps)
	operatorErrors := atomic.LoadInt64(&e.operatorErrors)

	var errorRate float64
	if totalOps > 0 {
		errorRate = float64(operatorErrors) / float64(totalOps)
	}

	return Stats{
		Uptime:   time.Duration(e.cfg.TimeProvider.Now()-e.openedAt) * time.Nanosecond,
		TotalOps: totalOps,

		MapletCapacity:   mapletStats.Capacity,
		MapletSize:       mapletStats.Size,
		MapletLoadFactor: mapletStats.LoadFactor,
		MapletErrorRate:  errorRate,
		MapletMemory:     int64(mapletStats.Capacity) * int64(8+8+8), // quotient+remainder+value-pointer words per slot, approximate

		StorageOps:    atomic.LoadInt64(&e.storageOps),
		StorageMemory: e.backend.MemoryUsage(),

		TTLEntries:  e.ttl.Len(),
		TTLCleanups: atomic.LoadInt64(&e.ttlCleanups),
	}
}
