// heap.go: a container/heap min-heap of pending expirations.
//
// Entries are lazily invalidated: Persist and re-Expire do not search the
// heap for the superseded entry (an O(n) scan for an O(log n) structure
// defeats the point); instead the popped entry is checked against the
// authoritative expiryOf map and discarded if stale — detect-and-skip at
// pop time rather than search-and-fix at write time.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ttlindex

import "container/heap"

type expiryEntry struct {
	key      string
	expireAt int64 // unix ms
}

// expiryHeap orders entries by expireAt ascending.
type expiryHeap []expiryEntry

func (h expiryHeap) Len() int            { return len(h) }
func (h expiryHeap) Less(i, j int) bool  { return h[i].expireAt < h[j].expireAt }
func (h expiryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *expiryHeap) Push(x interface{}) { *h = append(*h, x.(expiryEntry)) }
func (h *expiryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func newExpiryHeap() *expiryHeap {
	h := &expiryHeap{}
	heap.Init(h)
	return h
}

func (h *expiryHeap) push(key string, expireAt int64) {
	heap.Push(h, expiryEntry{key: key, expireAt: expireAt})
}

// peek returns the minimum entry without removing it.
func (h *expiryHeap) peek() (expiryEntry, bool) {
	if h.Len() == 0 {
		return expiryEntry{}, false
	}
	return (*h)[0], true
}

func (h *expiryHeap) pop() (expiryEntry, bool) {
	if h.Len() == 0 {
		return expiryEntry{}, false
	}
	return heap.Pop(h).(expiryEntry), true
}
