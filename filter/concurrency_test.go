package filter

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
)

// TestConcurrentSetGetDelete covers property 9 at the filter layer: N
// goroutines performing random Insert/Query/Delete never corrupt the
// table, and a final single-threaded pass matches a ground-truth
// reference kept under a separate mutex.
func TestConcurrentSetGetDelete(t *testing.T) {
	m, _ := New(Config{Capacity: 256, Operator: CounterOperator()})

	const goroutines = 16
	const opsPerGoroutine = 500
	const keySpace = 64

	var refMu sync.Mutex
	ref := make(map[string]uint64)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < opsPerGoroutine; i++ {
				key := fmt.Sprintf("key-%d", rng.Intn(keySpace))
				switch rng.Intn(3) {
				case 0:
					if err := m.InsertString(key, uint64(1)); err == nil {
						refMu.Lock()
						ref[key]++
						refMu.Unlock()
					}
				case 1:
					m.QueryString(key)
				case 2:
					if m.DeleteString(key) {
						refMu.Lock()
						delete(ref, key)
						refMu.Unlock()
					}
				}
			}
		}(int64(g))
	}
	wg.Wait()

	if m.Len() != uint64(len(ref)) {
		t.Fatalf("Len() = %d, ground truth has %d keys", m.Len(), len(ref))
	}
	for key, want := range ref {
		v, ok := m.QueryString(key)
		if !ok || v.(uint64) != want {
			t.Fatalf("Query(%s) = %v, %v after concurrent run; want %d, true", key, v, ok, want)
		}
	}
}
