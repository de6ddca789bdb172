// Package filter implements a quotient-filter style fingerprint index: a
// compact, probabilistic slot table that supports insert, query, contains,
// delete and resize over string keys, with pluggable merge operators for
// aggregating values written to the same key.
//
// # Overview
//
// A Maplet hashes each key to a single 64-bit value and splits it into a
// quotient (the slot index) and a remainder (the fingerprint stored in the
// slot). Slots sharing a quotient form a run; runs packed contiguously
// without gaps form a cluster. Membership and aggregate lookups never touch
// the original key bytes again after insert — only the stored remainder is
// compared, which is what makes false positives possible and bounded.
//
// # Operators
//
// Values written to the same key are combined with an associative,
// commutative Operator (Counter, Max, Min, Vector, or a user-supplied
// callback). The filter does not interpret value bytes itself; it only
// calls the configured Operator's Merge function.
//
// # Example
//
//	m, err := filter.New(filter.Config{
//	    Capacity:          100_000,
//	    FalsePositiveRate: 0.01,
//	    Operator:          filter.CounterOperator(),
//	})
//	m.InsertString("requests", uint64(1))
//	m.InsertString("requests", uint64(1))
//	v, _ := m.QueryString("requests") // uint64(2)
package filter
