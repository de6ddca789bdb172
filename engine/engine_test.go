package engine

import (
	"testing"
	"time"

	"github.com/agilira/maplet/storage"
)

func TestEngineMemorySetGetDeleteExists(t *testing.T) {
	e, err := OpenEngine(Config{PersistenceMode: storage.ModeMemory})
	if err != nil {
		t.Fatalf("OpenEngine: %v", err)
	}
	defer e.Close()

	if err := e.Set("k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	v, ok, err := e.Get("k")
	if err != nil || !ok || string(v) != "v" {
		t.Fatalf("Get = %q, %v, %v; want v, true, nil", v, ok, err)
	}

	exists, err := e.Exists("k")
	if err != nil || !exists {
		t.Fatalf("Exists = %v, %v; want true, nil", exists, err)
	}

	existed, err := e.Delete("k")
	if err != nil || !existed {
		t.Fatalf("Delete = %v, %v; want true, nil", existed, err)
	}

	_, ok, err = e.Get("k")
	if err != nil || ok {
		t.Fatalf("Get after delete = ok %v, err %v; want false, nil", ok, err)
	}
}

func TestEngineGetMissingKey(t *testing.T) {
	e, err := OpenEngine(Config{PersistenceMode: storage.ModeMemory})
	if err != nil {
		t.Fatalf("OpenEngine: %v", err)
	}
	defer e.Close()

	_, ok, err := e.Get("missing")
	if err != nil || ok {
		t.Fatalf("Get(missing) = %v, %v; want false, nil", ok, err)
	}
}

func TestEngineKeysAndClear(t *testing.T) {
	e, err := OpenEngine(Config{PersistenceMode: storage.ModeMemory})
	if err != nil {
		t.Fatalf("OpenEngine: %v", err)
	}
	defer e.Close()

	for _, k := range []string{"a", "b", "c"} {
		if err := e.Set(k, []byte(k)); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}

	keys, err := e.Keys()
	if err != nil || len(keys) != 3 {
		t.Fatalf("Keys() = %v, %v; want 3 keys", keys, err)
	}

	if err := e.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	keys, err = e.Keys()
	if err != nil || len(keys) != 0 {
		t.Fatalf("Keys() after Clear = %v, %v; want empty", keys, err)
	}
}

func TestEngineStateMachineAfterClose(t *testing.T) {
	e, err := OpenEngine(Config{PersistenceMode: storage.ModeMemory})
	if err != nil {
		t.Fatalf("OpenEngine: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := e.Set("k", []byte("v")); !IsEngineClosed(err) {
		t.Fatalf("Set after Close = %v, want EngineClosed", err)
	}
	if _, _, err := e.Get("k"); !IsEngineClosed(err) {
		t.Fatalf("Get after Close = %v, want EngineClosed", err)
	}

	// Close is idempotent.
	if err := e.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestEngineInvalidConfig(t *testing.T) {
	if _, err := OpenEngine(Config{PersistenceMode: storage.ModeDisk}); err == nil {
		t.Fatalf("OpenEngine with disk mode and no data_dir: want error")
	}
	if _, err := OpenEngine(Config{FalsePositiveRate: 1.5}); err == nil {
		t.Fatalf("OpenEngine with out-of-range false_positive_rate: want error")
	}
}

func TestEngineSetRollsBackOnOperatorError(t *testing.T) {
	vecOp := vectorOperatorForTest{}
	e, err := OpenEngine(Config{PersistenceMode: storage.ModeMemory, Operator: vecOp})
	if err != nil {
		t.Fatalf("OpenEngine: %v", err)
	}
	defer e.Close()

	if err := e.Set("k", []byte("v")); err != nil {
		t.Fatalf("first Set: %v", err)
	}
	if err := e.Set("k", []byte("v")); err == nil {
		t.Fatalf("second Set with same key under a failing operator: want error")
	}

	// The key still round-trips for an ordinary (non-duplicate) use:
	// a duplicate Set must not have left storage out of sync with the
	// maplet after rollback.
	exists, err := e.Exists("k")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Fatalf("Exists(k) = false after failed duplicate Set, want true")
	}
}

// vectorOperatorForTest always fails to merge, forcing engine.Set's
// rollback path on any duplicate key.
type vectorOperatorForTest struct{}

func (vectorOperatorForTest) Identity() interface{} { return 0 }
func (vectorOperatorForTest) Merge(a, b interface{}) (interface{}, error) {
	return nil, errAlwaysFails
}

var errAlwaysFails = &testOperatorError{"operator always fails"}

type testOperatorError struct{ msg string }

func (e *testOperatorError) Error() string { return e.msg }

func TestEngineTTLExpiryRemovesKey(t *testing.T) {
	e, err := OpenEngine(Config{PersistenceMode: storage.ModeMemory, TTLCleanupIntervalMS: 5})
	if err != nil {
		t.Fatalf("OpenEngine: %v", err)
	}
	defer e.Close()

	if err := e.Set("k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := e.Expire("k", 10*time.Millisecond); err != nil {
		t.Fatalf("Expire: %v", err)
	}

	time.Sleep(100 * time.Millisecond)

	exists, err := e.Exists("k")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Fatalf("Exists(k) after sweep = true, want false")
	}
}

func TestEngineExpireManyAndKeysWithTTL(t *testing.T) {
	e, err := OpenEngine(Config{PersistenceMode: storage.ModeMemory})
	if err != nil {
		t.Fatalf("OpenEngine: %v", err)
	}
	defer e.Close()

	for _, k := range []string{"a", "b"} {
		if err := e.Set(k, []byte(k)); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}
	n := e.ExpireMany([]string{"a", "b", "missing"}, time.Minute)
	if n != 2 {
		t.Fatalf("ExpireMany = %d, want 2", n)
	}

	keys := e.KeysWithTTL()
	if len(keys) != 2 {
		t.Fatalf("KeysWithTTL() = %v, want 2 keys", keys)
	}
}

func TestEngineStats(t *testing.T) {
	e, err := OpenEngine(Config{PersistenceMode: storage.ModeMemory})
	if err != nil {
		t.Fatalf("OpenEngine: %v", err)
	}
	defer e.Close()

	if err := e.Set("k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, _, err := e.Get("k"); err != nil {
		t.Fatalf("Get: %v", err)
	}

	stats := e.Stats()
	if stats.TotalOps < 2 {
		t.Fatalf("Stats().TotalOps = %d, want >= 2", stats.TotalOps)
	}
	if stats.MapletSize != 1 {
		t.Fatalf("Stats().MapletSize = %d, want 1", stats.MapletSize)
	}
}
