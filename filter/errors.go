// errors.go: structured errors for the filter package
//
// Uses go-errors for rich, typed, inspectable errors instead of bare
// fmt.Errorf strings.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package filter

import (
	goerrors "errors"

	"github.com/agilira/go-errors"
)

// Error codes for the filter package.
const (
	ErrCodeCapacityExceeded errors.ErrorCode = "MAPLET_CAPACITY_EXCEEDED"
	ErrCodeOperatorError    errors.ErrorCode = "MAPLET_OPERATOR_ERROR"
	ErrCodeInvalidConfig    errors.ErrorCode = "MAPLET_INVALID_CONFIG"
)

// NewErrCapacityExceeded reports that an insert's cluster shift would run
// past the table's overflow area. Maplet.Insert grows the table and
// retries once when it sees this error.
func NewErrCapacityExceeded(size, capacity uint64) error {
	return errors.NewWithContext(ErrCodeCapacityExceeded, "maplet capacity exceeded", map[string]interface{}{
		"size":     size,
		"capacity": capacity,
	}).AsRetryable()
}

// NewErrOperator reports a merge failure (e.g. vector length mismatch, or
// a user-supplied operator returning an error).
func NewErrOperator(operator, reason string) error {
	return errors.NewWithContext(ErrCodeOperatorError, "operator merge failed", map[string]interface{}{
		"operator": operator,
		"reason":   reason,
	})
}

// NewErrInvalidConfig reports a Config field outside its valid range.
func NewErrInvalidConfig(field string, value interface{}) error {
	return errors.NewWithContext(ErrCodeInvalidConfig, "invalid maplet config", map[string]interface{}{
		"field": field,
		"value": value,
	})
}

// IsCapacityExceeded reports whether err is a capacity-exceeded error.
func IsCapacityExceeded(err error) bool {
	return errors.HasCode(err, ErrCodeCapacityExceeded)
}

// IsOperatorError reports whether err is an operator-merge error.
func IsOperatorError(err error) bool {
	return errors.HasCode(err, ErrCodeOperatorError)
}

// ErrorCode extracts the structured error code from err, if any.
func ErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}
