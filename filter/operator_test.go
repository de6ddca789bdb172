package filter

import (
	"math"
	"testing"
)

func TestCounterOperatorSumsAndSaturates(t *testing.T) {
	op := CounterOperator()
	got, err := op.Merge(uint64(2), uint64(3))
	if err != nil || got.(uint64) != 5 {
		t.Fatalf("Merge(2,3) = %v, %v; want 5, nil", got, err)
	}

	got, err = op.Merge(uint64(math.MaxUint64), uint64(1))
	if err != nil || got.(uint64) != math.MaxUint64 {
		t.Fatalf("overflow Merge = %v, %v; want MaxUint64, nil", got, err)
	}
}

func TestMaxMinOperators(t *testing.T) {
	max := MaxOperator()
	if v, _ := max.Merge(uint64(3), uint64(7)); v.(uint64) != 7 {
		t.Fatalf("MaxOperator.Merge(3,7) = %v, want 7", v)
	}

	min := MinOperator()
	if v, _ := min.Merge(uint64(3), uint64(7)); v.(uint64) != 3 {
		t.Fatalf("MinOperator.Merge(3,7) = %v, want 3", v)
	}
	if min.Identity().(uint64) != math.MaxUint64 {
		t.Fatalf("MinOperator.Identity() = %v, want MaxUint64", min.Identity())
	}
}

func TestVectorOperator(t *testing.T) {
	op := VectorOperator()

	v, err := op.Merge(op.Identity(), []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("Merge(identity, v) returned error: %v", err)
	}
	got := v.([]float64)
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("Merge(identity, [1,2,3]) = %v", got)
	}

	v, err = op.Merge(got, []float64{10, 10, 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sum := v.([]float64)
	if sum[0] != 11 || sum[1] != 12 || sum[2] != 13 {
		t.Fatalf("Merge elementwise add = %v", sum)
	}

	if _, err := op.Merge([]float64{1, 2}, []float64{1, 2, 3}); err == nil {
		t.Fatalf("expected length mismatch error")
	} else if !IsOperatorError(err) {
		t.Fatalf("expected OperatorError, got %v", err)
	}
}

func TestCustomOperator(t *testing.T) {
	op := CustomOperator("", func(a, b interface{}) (interface{}, error) {
		return a.(string) + b.(string), nil
	})
	v, err := op.Merge("foo", "bar")
	if err != nil || v.(string) != "foobar" {
		t.Fatalf("CustomOperator.Merge = %v, %v; want foobar, nil", v, err)
	}
}
