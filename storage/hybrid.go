// hybrid.go: memory tier for read-through, backed by an aof log for
// durability.
//
// Resolved Open Question (hybrid eviction): when the memory tier exceeds
// memory_capacity, the oldest entries are evicted from memory but remain
// recoverable — a Get miss in memory falls through to the aof backend's
// own full in-memory replay map and, on a hit there, resurrects the entry
// into the memory tier before returning it. This is chosen over "evicted
// means gone": every successful prior Put that hasn't been deleted since
// must still be gettable, and a hybrid backend that returned None for a
// merely-evicted key would break that for no durability benefit.
//
// Eviction order is a straightforward LRU via container/list rather than
// a sampling-based admission+eviction scheme: that complexity earns its
// keep by avoiding lock contention across a large concurrent cache, but
// the hybrid tier here only needs to keep memory_capacity roughly honest,
// so a single mutex plus an LRU list is the right amount of machinery.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package storage

import (
	"container/list"
	"sync"
)

// HybridConfig controls the hybrid backend's memory tier and underlying
// aof log.
type HybridConfig struct {
	DataDir        string
	SyncIntervalMS int
	MemoryCapacity int64 // byte budget; 0 means unbounded
}

type hybridEntry struct {
	key   string
	value []byte
}

// HybridBackend combines a bounded in-memory LRU tier with an AOFBackend
// for durability and resurrection.
type HybridBackend struct {
	aof *AOFBackend
	cap int64

	mu      sync.Mutex
	lru     *list.List
	index   map[string]*list.Element
	curSize int64
}

// OpenHybridBackend opens the underlying aof log and populates the
// memory tier from its replayed contents, up to MemoryCapacity. The
// records come from the aof backend's in-memory map in no particular
// order, so which of them remain in the tier after eviction is arbitrary.
func OpenHybridBackend(cfg HybridConfig) (*HybridBackend, error) {
	aof, err := OpenAOFBackend(AOFConfig{DataDir: cfg.DataDir, SyncIntervalMS: cfg.SyncIntervalMS})
	if err != nil {
		return nil, err
	}

	h := &HybridBackend{
		aof:   aof,
		cap:   cfg.MemoryCapacity,
		lru:   list.New(),
		index: make(map[string]*list.Element),
	}

	records, err := aof.Reconstruct()
	if err != nil {
		_ = aof.Close()
		return nil, err
	}
	for _, rec := range records {
		h.touchLocked(string(rec.Key), rec.Value)
	}
	return h, nil
}

// touchLocked inserts or refreshes key at the front of the LRU list and
// evicts from the tail until within budget. Caller must hold h.mu.
func (h *HybridBackend) touchLocked(key string, value []byte) {
	if el, ok := h.index[key]; ok {
		entry := el.Value.(*hybridEntry)
		h.curSize -= int64(len(key) + len(entry.value))
		entry.value = value
		h.curSize += int64(len(key) + len(value))
		h.lru.MoveToFront(el)
		h.evictIfOverBudgetLocked()
		return
	}

	entry := &hybridEntry{key: key, value: value}
	el := h.lru.PushFront(entry)
	h.index[key] = el
	h.curSize += int64(len(key) + len(value))
	h.evictIfOverBudgetLocked()
}

func (h *HybridBackend) evictIfOverBudgetLocked() {
	if h.cap <= 0 {
		return
	}
	for h.curSize > h.cap && h.lru.Len() > 0 {
		back := h.lru.Back()
		entry := back.Value.(*hybridEntry)
		h.lru.Remove(back)
		delete(h.index, entry.key)
		h.curSize -= int64(len(entry.key) + len(entry.value))
	}
}

func (h *HybridBackend) removeLocked(key string) {
	if el, ok := h.index[key]; ok {
		entry := el.Value.(*hybridEntry)
		h.lru.Remove(el)
		delete(h.index, key)
		h.curSize -= int64(len(key) + len(entry.value))
	}
}

func (h *HybridBackend) Put(key, value []byte) error {
	if err := h.aof.Put(key, value); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.touchLocked(string(key), append([]byte(nil), value...))
	return nil
}

func (h *HybridBackend) Get(key []byte) ([]byte, bool, error) {
	h.mu.Lock()
	if el, ok := h.index[string(key)]; ok {
		entry := el.Value.(*hybridEntry)
		h.lru.MoveToFront(el)
		out := make([]byte, len(entry.value))
		copy(out, entry.value)
		h.mu.Unlock()
		return out, true, nil
	}
	h.mu.Unlock()

	// Memory miss: fall through to the durable log and resurrect on hit.
	value, ok, err := h.aof.Get(key)
	if err != nil || !ok {
		return value, ok, err
	}
	h.mu.Lock()
	h.touchLocked(string(key), append([]byte(nil), value...))
	h.mu.Unlock()
	return value, true, nil
}

func (h *HybridBackend) Delete(key []byte) (bool, error) {
	existed, err := h.aof.Delete(key)
	if err != nil {
		return false, err
	}
	h.mu.Lock()
	h.removeLocked(string(key))
	h.mu.Unlock()
	return existed, nil
}

func (h *HybridBackend) Keys() ([][]byte, error) {
	return h.aof.Keys()
}

// PutExpire records key's absolute expiry durably, mirroring
// AOFBackend.PutExpire. It does not touch the memory tier directly; the
// expiry is enforced by the TTL index above this backend.
func (h *HybridBackend) PutExpire(key []byte, expiresAtMS int64) error {
	return h.aof.PutExpire(key, expiresAtMS)
}

// Reconstruct mirrors AOFBackend.Reconstruct, for maplet warm-up at open.
func (h *HybridBackend) Reconstruct() ([]Record, error) {
	return h.aof.Reconstruct()
}

// Expiries mirrors AOFBackend.Expiries, for TTL index warm-up at open.
func (h *HybridBackend) Expiries() map[string]int64 {
	return h.aof.Expiries()
}

func (h *HybridBackend) Flush() error {
	return h.aof.Flush()
}

func (h *HybridBackend) MemoryUsage() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.curSize
}

func (h *HybridBackend) Close() error {
	h.mu.Lock()
	h.lru.Init()
	h.index = make(map[string]*list.Element)
	h.curSize = 0
	h.mu.Unlock()
	return h.aof.Close()
}
