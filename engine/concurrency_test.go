package engine

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/agilira/maplet/storage"
)

// TestEngineConcurrentSetGetDelete exercises property 9: N goroutines
// performing random set/get/delete must never corrupt the engine, and
// the final Keys() must match a ground-truth reference built under a
// separate mutex.
func TestEngineConcurrentSetGetDelete(t *testing.T) {
	e, err := OpenEngine(Config{PersistenceMode: storage.ModeMemory, Capacity: 256})
	if err != nil {
		t.Fatalf("OpenEngine: %v", err)
	}
	defer e.Close()

	const goroutines = 16
	const opsPerGoroutine = 300
	const keySpace = 64

	var refMu sync.Mutex
	ref := make(map[string][]byte)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < opsPerGoroutine; i++ {
				key := fmt.Sprintf("k%d", rng.Intn(keySpace))
				switch rng.Intn(3) {
				case 0:
					value := []byte(fmt.Sprintf("v%d", rng.Int()))
					if err := e.Set(key, value); err == nil {
						refMu.Lock()
						ref[key] = value
						refMu.Unlock()
					}
				case 1:
					_, _, _ = e.Get(key)
				case 2:
					existed, err := e.Delete(key)
					if err == nil && existed {
						refMu.Lock()
						delete(ref, key)
						refMu.Unlock()
					}
				}
			}
		}(int64(g))
	}
	wg.Wait()

	keys, err := e.Keys()
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}

	refMu.Lock()
	defer refMu.Unlock()
	if len(keys) != len(ref) {
		t.Fatalf("Keys() len = %d, ground truth has %d", len(keys), len(ref))
	}
	for _, k := range keys {
		if _, ok := ref[k]; !ok {
			t.Fatalf("Keys() contains %q not in ground truth", k)
		}
	}
}
