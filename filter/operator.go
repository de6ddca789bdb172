// operator.go: pluggable merge operators for aggregating values on
// duplicate-slot writes.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package filter

import "math"

// Operator combines two values for the same key into one. Merge must be
// associative and commutative for the stored aggregate to be
// deterministic regardless of insertion order; the filter does not
// verify this property for user-defined operators.
type Operator interface {
	// Identity returns the zero value of the semigroup. The filter itself
	// does not use it: empty slots hold nil and a key's first inserted
	// value is stored as given. The engine inserts it as its membership
	// sentinel.
	Identity() interface{}

	// Merge combines a, the value already stored for the key, with b,
	// the value being inserted.
	Merge(a, b interface{}) (interface{}, error)
}

// CounterOperator returns an Operator over uint64 that sums values with
// saturation at math.MaxUint64.
func CounterOperator() Operator { return counterOperator{} }

type counterOperator struct{}

func (counterOperator) Identity() interface{} { return uint64(0) }

func (counterOperator) Merge(a, b interface{}) (interface{}, error) {
	av, ok := a.(uint64)
	if !ok {
		return nil, NewErrOperator("counter", "left operand is not uint64")
	}
	bv, ok := b.(uint64)
	if !ok {
		return nil, NewErrOperator("counter", "right operand is not uint64")
	}
	sum := av + bv
	if sum < av { // overflow
		return uint64(math.MaxUint64), nil
	}
	return sum, nil
}

// MaxOperator returns an Operator over uint64 that keeps the maximum value.
func MaxOperator() Operator { return maxOperator{} }

type maxOperator struct{}

func (maxOperator) Identity() interface{} { return uint64(0) }

func (maxOperator) Merge(a, b interface{}) (interface{}, error) {
	av, ok := a.(uint64)
	if !ok {
		return nil, NewErrOperator("max", "left operand is not uint64")
	}
	bv, ok := b.(uint64)
	if !ok {
		return nil, NewErrOperator("max", "right operand is not uint64")
	}
	if bv > av {
		return bv, nil
	}
	return av, nil
}

// MinOperator returns an Operator over uint64 that keeps the minimum value.
// Its identity is math.MaxUint64 so the first insert for a key always wins.
func MinOperator() Operator { return minOperator{} }

type minOperator struct{}

func (minOperator) Identity() interface{} { return uint64(math.MaxUint64) }

func (minOperator) Merge(a, b interface{}) (interface{}, error) {
	av, ok := a.(uint64)
	if !ok {
		return nil, NewErrOperator("min", "left operand is not uint64")
	}
	bv, ok := b.(uint64)
	if !ok {
		return nil, NewErrOperator("min", "right operand is not uint64")
	}
	if bv < av {
		return bv, nil
	}
	return av, nil
}

// VectorOperator returns an Operator over []float64 that adds
// element-wise. The vector's length is fixed by the first insert for a
// given key; a later insert with a mismatched length is an OperatorError.
//
// VectorOperator is stateless: length is determined per-call from
// whichever operand is non-empty (the identity value is an empty slice),
// so a single VectorOperator instance may be shared by a Maplet whose
// different keys hold vectors of different (but individually fixed)
// lengths.
func VectorOperator() Operator { return vectorOperator{} }

type vectorOperator struct{}

func (vectorOperator) Identity() interface{} { return []float64(nil) }

func (vectorOperator) Merge(a, b interface{}) (interface{}, error) {
	av, ok := a.([]float64)
	if !ok {
		return nil, NewErrOperator("vector", "left operand is not []float64")
	}
	bv, ok := b.([]float64)
	if !ok {
		return nil, NewErrOperator("vector", "right operand is not []float64")
	}

	if len(av) == 0 {
		out := make([]float64, len(bv))
		copy(out, bv)
		return out, nil
	}
	if len(bv) == 0 {
		out := make([]float64, len(av))
		copy(out, av)
		return out, nil
	}
	if len(av) != len(bv) {
		return nil, NewErrOperator("vector", "length mismatch")
	}

	out := make([]float64, len(av))
	for i := range av {
		out[i] = av[i] + bv[i]
	}
	return out, nil
}

// CustomOperator adapts an arbitrary identity value and merge callback
// into an Operator. The callback must be associative and commutative;
// the filter trusts but does not verify this.
func CustomOperator(identity interface{}, merge func(a, b interface{}) (interface{}, error)) Operator {
	return customOperator{identity: identity, merge: merge}
}

type customOperator struct {
	identity interface{}
	merge    func(a, b interface{}) (interface{}, error)
}

func (c customOperator) Identity() interface{} { return c.identity }

func (c customOperator) Merge(a, b interface{}) (interface{}, error) {
	return c.merge(a, b)
}
