package filter

import "testing"

func TestInsertQueryRoundTrip(t *testing.T) {
	m, err := New(Config{Capacity: 64, Operator: CounterOperator()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := m.InsertString("alpha", uint64(1)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	v, ok := m.QueryString("alpha")
	if !ok || v.(uint64) != 1 {
		t.Fatalf("Query(alpha) = %v, %v; want 1, true", v, ok)
	}

	if _, ok := m.QueryString("missing"); ok {
		t.Fatalf("Query(missing) found a value in an otherwise-empty table")
	}
}

func TestInsertMergesDuplicateKeys(t *testing.T) {
	m, _ := New(Config{Capacity: 64, Operator: CounterOperator()})

	for i := 0; i < 5; i++ {
		if err := m.InsertString("k", uint64(1)); err != nil {
			t.Fatalf("Insert #%d: %v", i, err)
		}
	}
	v, ok := m.QueryString("k")
	if !ok || v.(uint64) != 5 {
		t.Fatalf("after 5 inserts, Query(k) = %v, %v; want 5, true", v, ok)
	}
	if m.Len() != 1 {
		t.Fatalf("Len() = %d; want 1 distinct key", m.Len())
	}
}

func TestDeleteRemovesKey(t *testing.T) {
	m, _ := New(Config{Capacity: 64})

	m.InsertString("a", uint64(1))
	m.InsertString("b", uint64(2))

	if !m.DeleteString("a") {
		t.Fatalf("Delete(a) = false, want true")
	}
	if _, ok := m.QueryString("a"); ok {
		t.Fatalf("Query(a) found a value after delete")
	}
	if v, ok := m.QueryString("b"); !ok || v.(uint64) != 2 {
		t.Fatalf("Query(b) = %v, %v after unrelated delete; want 2, true", v, ok)
	}
	if m.DeleteString("a") {
		t.Fatalf("second Delete(a) = true, want false")
	}
}

func TestDeleteMidRunPreservesSiblings(t *testing.T) {
	m, _ := New(Config{Capacity: 64})

	keys := []string{"k1", "k2", "k3", "k4", "k5"}
	for i, k := range keys {
		if err := m.InsertString(k, uint64(i)); err != nil {
			t.Fatalf("Insert(%s): %v", k, err)
		}
	}

	m.DeleteString("k3")

	for i, k := range keys {
		if k == "k3" {
			continue
		}
		v, ok := m.QueryString(k)
		if !ok || v.(uint64) != uint64(i) {
			t.Fatalf("after deleting k3, Query(%s) = %v, %v; want %d, true", k, v, ok, i)
		}
	}
}

func TestContainsAndLen(t *testing.T) {
	m, _ := New(Config{Capacity: 32})
	if m.Contains([]byte("x")) {
		t.Fatalf("Contains on empty maplet returned true")
	}
	m.Insert([]byte("x"), uint64(1))
	if !m.Contains([]byte("x")) {
		t.Fatalf("Contains(x) = false after insert")
	}
	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.Len())
	}
}

func TestClearEmptiesMaplet(t *testing.T) {
	m, _ := New(Config{Capacity: 32})
	m.InsertString("a", uint64(1))
	m.Clear()
	if m.Len() != 0 {
		t.Fatalf("Len() after Clear = %d, want 0", m.Len())
	}
	if _, ok := m.QueryString("a"); ok {
		t.Fatalf("Query(a) found a value after Clear")
	}
}

func TestFindSlotAndSnapshot(t *testing.T) {
	m, _ := New(Config{Capacity: 32})
	m.InsertString("a", uint64(1))
	m.InsertString("b", uint64(2))

	if _, ok := m.FindSlot([]byte("a")); !ok {
		t.Fatalf("FindSlot(a) not found")
	}

	snap := m.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Snapshot() returned %d entries, want 2", len(snap))
	}
}
