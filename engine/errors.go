// errors.go: structured errors for the engine facade.
//
// ErrorCode constants, NewWithContext/NewWithField constructors,
// .AsRetryable() markers, and HasCode-backed Is* predicates, covering
// the engine's error taxonomy: InvalidConfig, CapacityExceeded,
// OperatorError, StorageIO, CorruptedLog, EngineClosed, NotFound.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"github.com/agilira/go-errors"
)

// Error codes for engine operations.
const (
	ErrCodeInvalidConfig    errors.ErrorCode = "MAPLET_INVALID_CONFIG"
	ErrCodeCapacityExceeded errors.ErrorCode = "MAPLET_CAPACITY_EXCEEDED"
	ErrCodeOperatorError    errors.ErrorCode = "MAPLET_OPERATOR_ERROR"
	ErrCodeStorageIO        errors.ErrorCode = "MAPLET_STORAGE_IO"
	ErrCodeCorruptedLog     errors.ErrorCode = "MAPLET_CORRUPTED_LOG"
	ErrCodeEngineClosed     errors.ErrorCode = "MAPLET_ENGINE_CLOSED"
	ErrCodeNotFound         errors.ErrorCode = "MAPLET_NOT_FOUND"
)

// NewErrInvalidConfig reports a configuration field that failed
// validation (false_positive_rate outside (0,1), an unknown
// persistence_mode, or a missing data_dir where required).
func NewErrInvalidConfig(field string, value interface{}) error {
	return errors.NewWithContext(ErrCodeInvalidConfig, "invalid engine configuration", map[string]interface{}{
		"field": field,
		"value": value,
	})
}

// NewErrCapacityExceeded reports that the maplet could not grow to
// accommodate an insert even after a resize attempt.
func NewErrCapacityExceeded(capacity uint64) error {
	return errors.NewWithField(ErrCodeCapacityExceeded, "maplet capacity exceeded", "capacity", capacity).
		AsRetryable()
}

// NewErrOperatorError wraps a merge failure surfaced by a filter.Operator
// (e.g. a vector length mismatch).
func NewErrOperatorError(cause error) error {
	return errors.Wrap(cause, ErrCodeOperatorError, "operator merge failed")
}

// NewErrStorageIO wraps an underlying storage backend failure.
func NewErrStorageIO(op string, cause error) error {
	return errors.Wrap(cause, ErrCodeStorageIO, "storage operation failed").
		WithContext("op", op).
		AsRetryable()
}

// NewErrCorruptedLog reports a fatal AOF corruption discovered before any
// checkpoint, surfaced at OpenEngine.
func NewErrCorruptedLog(cause error) error {
	return errors.Wrap(cause, ErrCodeCorruptedLog, "append-only log corrupted before first checkpoint")
}

// NewErrEngineClosed reports an operation attempted after Close.
func NewErrEngineClosed(op string) error {
	return errors.NewWithField(ErrCodeEngineClosed, "engine is closed", "op", op)
}

// NewErrNotFound reports a key absent where the API cannot express
// absence as a plain boolean/ok return (see Engine.MustGet-style callers,
// if any are added; most engine methods prefer an (value, bool) shape).
func NewErrNotFound(key string) error {
	return errors.NewWithField(ErrCodeNotFound, "key not found", "key", key)
}

// IsEngineClosed reports whether err is (or wraps) an EngineClosed error.
func IsEngineClosed(err error) bool { return errors.HasCode(err, ErrCodeEngineClosed) }

// IsCapacityExceeded reports whether err is (or wraps) a CapacityExceeded
// error.
func IsCapacityExceeded(err error) bool { return errors.HasCode(err, ErrCodeCapacityExceeded) }

// IsCorruptedLog reports whether err is (or wraps) a CorruptedLog error.
func IsCorruptedLog(err error) bool { return errors.HasCode(err, ErrCodeCorruptedLog) }

// IsNotFound reports whether err is (or wraps) a NotFound error.
func IsNotFound(err error) bool { return errors.HasCode(err, ErrCodeNotFound) }
