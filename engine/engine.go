// engine.go: the engine facade binding filter.Maplet, storage.Backend,
// and ttlindex.Index into one set of operations.
//
// A thin sequence of calls into the underlying components, with no
// independent algorithm of its own. State-machine handling (Open →
// Closing → Closed) uses an atomically-checked state flag so every
// error-returning operation after Close observes EngineClosed rather
// than racing it; TTL, Persist and KeysWithTTL return no error and do
// not check the flag.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/agilira/maplet/filter"
	"github.com/agilira/maplet/storage"
	"github.com/agilira/maplet/ttlindex"
)

type engineState int32

const (
	stateOpen engineState = iota
	stateClosing
	stateClosed
)

// Engine is the bound facade over a maplet, a storage backend, and a TTL
// index. The zero value is not usable; construct with OpenEngine.
type Engine struct {
	cfg      Config
	state    int32 // engineState, accessed atomically
	openedAt int64 // ns since epoch, per cfg.TimeProvider

	maplet  *filter.Maplet
	backend storage.Backend
	ttl     *ttlindex.Index
	sweeper *ttlindex.Sweeper

	mu sync.Mutex // serializes Close against sweeper restarts by HotConfig

	loadGroup singleflight.Group // collapses concurrent GetOrLoad misses for the same key

	totalOps       int64
	storageOps     int64
	ttlCleanups    int64
	operatorErrors int64
}

// OpenEngine validates cfg, opens the configured storage backend, warms
// the maplet and TTL index from any durable state found there, and
// starts the background sweeper (if enabled).
func OpenEngine(cfg Config) (*Engine, error) {
	cfg, err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	backend, err := storage.Open(storage.Config{
		Mode:              cfg.PersistenceMode,
		DataDir:           cfg.DataDir,
		MemoryCapacity:    cfg.MemoryCapacity,
		AOFSyncIntervalMS: cfg.AOFSyncIntervalMS,
	})
	if err != nil {
		if storage.IsCorruptedLog(err) {
			return nil, NewErrCorruptedLog(err)
		}
		return nil, NewErrStorageIO("open backend", err)
	}

	maplet, err := filter.New(filter.Config{
		Capacity:          cfg.Capacity,
		FalsePositiveRate: cfg.FalsePositiveRate,
		Operator:          cfg.Operator,
		OnResize:          func(uint) { cfg.MetricsCollector.RecordResize() },
	})
	if err != nil {
		_ = backend.Close()
		return nil, err
	}

	now := func() time.Time { return time.Unix(0, cfg.TimeProvider.Now()) }
	ttlIdx := ttlindex.New(now)

	e := &Engine{
		cfg:      cfg,
		openedAt: cfg.TimeProvider.Now(),
		maplet:   maplet,
		backend:  backend,
		ttl:      ttlIdx,
	}

	if err := e.warmUp(backend); err != nil {
		_ = backend.Close()
		return nil, err
	}

	if cfg.ttlEnabled() {
		e.sweeper = ttlindex.NewSweeper(ttlIdx, cfg.sweepInterval(), e.onSweepExpire)
		e.sweeper.Start()
	}

	return e, nil
}

// warmUp reconstructs the maplet's membership and the TTL index from any
// durable records the backend already holds, so a reopened engine never
// needs a storage fallback on its first read.
func (e *Engine) warmUp(backend storage.Backend) error {
	reconstructor, ok := backend.(storage.Reconstructor)
	if !ok {
		return nil // memory mode: nothing durable to replay
	}
	records, err := reconstructor.Reconstruct()
	if err != nil {
		return NewErrStorageIO("reconstruct backend", err)
	}
	sentinel := e.cfg.Operator.Identity()
	for _, rec := range records {
		if err := e.maplet.Insert(rec.Key, sentinel); err != nil {
			return err
		}
	}

	if expirer, ok := backend.(storage.ExpiryReconstructor); ok {
		for key, atMS := range expirer.Expiries() {
			e.ttl.ExpireAt(key, time.UnixMilli(atMS))
		}
	}
	return nil
}

// onSweepExpire is the sweeper's per-key callback: it removes the key
// from storage and the maplet to match the TTL index's own removal,
// keeping all three views consistent.
func (e *Engine) onSweepExpire(key string) {
	_, _ = e.backend.Delete([]byte(key))
	e.maplet.Delete([]byte(key))
	atomic.AddInt64(&e.ttlCleanups, 1)
	e.cfg.MetricsCollector.RecordExpiration()
}

func (e *Engine) checkOpen(op string) error {
	if engineState(atomic.LoadInt32(&e.state)) != stateOpen {
		return NewErrEngineClosed(op)
	}
	return nil
}

// checkExpired performs the lazy-expiry check required before every
// read/write touching key: if key's TTL has passed, it is removed from
// storage, maplet, and TTL index inline.
func (e *Engine) checkExpired(key string) {
	if e.ttl.CheckAndExpire(key) {
		_, _ = e.backend.Delete([]byte(key))
		e.maplet.Delete([]byte(key))
		atomic.AddInt64(&e.ttlCleanups, 1)
		e.cfg.MetricsCollector.RecordExpiration()
	}
}

// Set writes value under key: it is persisted to storage first, then
// the key is inserted into the maplet under the operator's identity
// sentinel (the maplet here tracks membership, not user data; value
// bytes live only in storage). If storage fails, no maplet change is
// made; if the maplet insert fails after a successful storage write,
// the write is rolled back.
func (e *Engine) Set(key string, value []byte) error {
	start := e.cfg.TimeProvider.Now()
	if err := e.checkOpen("set"); err != nil {
		return err
	}
	atomic.AddInt64(&e.totalOps, 1)
	e.checkExpired(key)

	var prev []byte
	hadPrev := false
	if e.maplet.Contains([]byte(key)) {
		if v, ok, err := e.backend.Get([]byte(key)); err == nil && ok {
			prev, hadPrev = v, true
		}
	}

	if err := e.backend.Put([]byte(key), value); err != nil {
		atomic.AddInt64(&e.storageOps, 1)
		return NewErrStorageIO("set", err)
	}
	atomic.AddInt64(&e.storageOps, 1)

	sentinel := e.cfg.Operator.Identity()
	if err := e.maplet.Insert([]byte(key), sentinel); err != nil {
		// roll back the storage write, restoring any previous value
		if hadPrev {
			_ = e.backend.Put([]byte(key), prev)
		} else {
			_, _ = e.backend.Delete([]byte(key))
		}
		atomic.AddInt64(&e.operatorErrors, 1)
		return NewErrOperatorError(err)
	}

	e.cfg.MetricsCollector.RecordSet(e.cfg.TimeProvider.Now() - start)
	return nil
}

// Get returns key's value and whether it was found. The TTL check runs
// first, then the maplet membership check (a miss there is authoritative
// — no false negatives), then a storage fetch (a miss there means the
// maplet reported a false positive).
func (e *Engine) Get(key string) ([]byte, bool, error) {
	start := e.cfg.TimeProvider.Now()
	if err := e.checkOpen("get"); err != nil {
		return nil, false, err
	}
	atomic.AddInt64(&e.totalOps, 1)
	e.checkExpired(key)

	if !e.maplet.Contains([]byte(key)) {
		e.cfg.MetricsCollector.RecordGet(e.cfg.TimeProvider.Now()-start, false)
		return nil, false, nil
	}

	value, ok, err := e.backend.Get([]byte(key))
	atomic.AddInt64(&e.storageOps, 1)
	if err != nil {
		return nil, false, NewErrStorageIO("get", err)
	}
	e.cfg.MetricsCollector.RecordGet(e.cfg.TimeProvider.Now()-start, ok)
	if !ok {
		return nil, false, nil
	}
	return value, true, nil
}

// Exists reports whether key is present, via the same TTL → maplet →
// storage sequence as Get but without fetching the value.
func (e *Engine) Exists(key string) (bool, error) {
	if err := e.checkOpen("exists"); err != nil {
		return false, err
	}
	atomic.AddInt64(&e.totalOps, 1)
	e.checkExpired(key)

	if !e.maplet.Contains([]byte(key)) {
		return false, nil
	}
	_, ok, err := e.backend.Get([]byte(key))
	atomic.AddInt64(&e.storageOps, 1)
	if err != nil {
		return false, NewErrStorageIO("exists", err)
	}
	return ok, nil
}

// Delete removes key from storage and, if it existed, from the maplet
// and TTL index too. It returns whether the key existed.
func (e *Engine) Delete(key string) (bool, error) {
	start := e.cfg.TimeProvider.Now()
	if err := e.checkOpen("delete"); err != nil {
		return false, err
	}
	atomic.AddInt64(&e.totalOps, 1)
	e.checkExpired(key)

	existed, err := e.backend.Delete([]byte(key))
	atomic.AddInt64(&e.storageOps, 1)
	if err != nil {
		return false, NewErrStorageIO("delete", err)
	}
	if existed {
		e.maplet.Delete([]byte(key))
		e.ttl.Remove(key)
	}
	e.cfg.MetricsCollector.RecordDelete(e.cfg.TimeProvider.Now() - start)
	return existed, nil
}

// Keys enumerates every stored key. Storage is authoritative — the
// maplet only ever holds fingerprints and cannot enumerate.
func (e *Engine) Keys() ([]string, error) {
	if err := e.checkOpen("keys"); err != nil {
		return nil, err
	}
	raw, err := e.backend.Keys()
	atomic.AddInt64(&e.storageOps, 1)
	if err != nil {
		return nil, NewErrStorageIO("keys", err)
	}
	out := make([]string, len(raw))
	for i, k := range raw {
		out[i] = string(k)
	}
	return out, nil
}

// Clear resets the maplet, storage, and TTL index to empty.
func (e *Engine) Clear() error {
	if err := e.checkOpen("clear"); err != nil {
		return err
	}
	keys, err := e.backend.Keys()
	if err != nil {
		return NewErrStorageIO("clear", err)
	}
	for _, k := range keys {
		if _, err := e.backend.Delete(k); err != nil {
			return NewErrStorageIO("clear", err)
		}
	}
	e.maplet.Clear()
	for _, k := range e.ttl.KeysWithTTL() {
		e.ttl.Remove(k)
	}
	return nil
}

// Expire sets key to expire after ttl, persisting the expiry durably
// when the backend supports it (aof/hybrid) so a reopen recovers the
// same deadline.
func (e *Engine) Expire(key string, ttl time.Duration) error {
	if err := e.checkOpen("expire"); err != nil {
		return err
	}
	exists, err := e.Exists(key)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	at := e.ttl.Expire(key, ttl)
	if recorder, ok := e.backend.(expiryRecorder); ok {
		if err := recorder.PutExpire([]byte(key), at.UnixMilli()); err != nil {
			return NewErrStorageIO("expire", err)
		}
	}
	return nil
}

// expiryRecorder is implemented by backends that can durably persist an
// EXPIRE record (aof, hybrid). disk and memory modes simply rely on the
// in-process ttlindex; neither durably records TTLs of its own.
type expiryRecorder interface {
	PutExpire(key []byte, expiresAtMS int64) error
}

// TTL returns the remaining time until key expires, and whether it
// currently carries a TTL.
func (e *Engine) TTL(key string) (time.Duration, bool) {
	return e.ttl.TTL(key)
}

// Persist removes key's TTL, reporting whether it had one.
func (e *Engine) Persist(key string) bool {
	return e.ttl.Persist(key)
}

// ExpireMany applies ttl to every key in keys that currently exists,
// skipping the rest (not an error), and returns how many were given a
// TTL.
func (e *Engine) ExpireMany(keys []string, ttl time.Duration) int {
	n := 0
	for _, k := range keys {
		exists, err := e.Exists(k)
		if err != nil || !exists {
			continue
		}
		if err := e.Expire(k, ttl); err == nil {
			n++
		}
	}
	return n
}

// KeysWithTTL returns every key currently carrying an expiry.
func (e *Engine) KeysWithTTL() []string {
	return e.ttl.KeysWithTTL()
}

// Flush forces durability of all prior mutations (no-op for memory mode).
func (e *Engine) Flush() error {
	if err := e.checkOpen("flush"); err != nil {
		return err
	}
	if err := e.backend.Flush(); err != nil {
		return NewErrStorageIO("flush", err)
	}
	return nil
}

// reconfigureSweepInterval restarts the background sweeper with a new
// tick interval and enabled state, used by HotConfig to apply a
// ttl_cleanup_interval_ms/ttl_enabled change without requiring a full
// engine reopen.
func (e *Engine) reconfigureSweepInterval(interval time.Duration, disabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if engineState(atomic.LoadInt32(&e.state)) != stateOpen {
		return
	}
	if e.sweeper != nil {
		e.sweeper.Stop()
	}
	e.cfg.TTLCleanupIntervalMS = int(interval / time.Millisecond)
	e.cfg.TTLDisabled = disabled
	if e.cfg.ttlEnabled() {
		e.sweeper = ttlindex.NewSweeper(e.ttl, interval, e.onSweepExpire)
		e.sweeper.Start()
	}
}

// Close stops the sweeper, flushes, and releases the storage backend.
// Error-returning operations after Close return EngineClosed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !atomic.CompareAndSwapInt32(&e.state, int32(stateOpen), int32(stateClosing)) {
		return nil // already closing or closed
	}

	if e.sweeper != nil {
		e.sweeper.Stop()
	}

	flushErr := e.backend.Flush()
	closeErr := e.backend.Close()

	atomic.StoreInt32(&e.state, int32(stateClosed))

	if flushErr != nil {
		return NewErrStorageIO("close: flush", flushErr)
	}
	if closeErr != nil {
		return NewErrStorageIO("close: release backend", closeErr)
	}
	return nil
}
