// errors.go: structured errors for the storage package.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package storage

import (
	goerrors "errors"

	"github.com/agilira/go-errors"
)

// Error codes for the storage package's persistence layer.
const (
	ErrCodeStorageIO     errors.ErrorCode = "STORAGE_IO"
	ErrCodeLockUnavailable errors.ErrorCode = "STORAGE_LOCK_UNAVAILABLE"
	ErrCodeCorruptedLog  errors.ErrorCode = "STORAGE_CORRUPTED_LOG"
	ErrCodeInvalidConfig errors.ErrorCode = "STORAGE_INVALID_CONFIG"
	ErrCodeClosed        errors.ErrorCode = "STORAGE_CLOSED"
)

// NewErrStorageIO wraps an underlying I/O failure (tree or log) with the
// operation that triggered it.
func NewErrStorageIO(op string, cause error) error {
	return errors.Wrap(cause, ErrCodeStorageIO, "storage I/O failed").
		WithContext("op", op).
		AsRetryable()
}

// NewErrLockUnavailable reports that data_dir is already locked by
// another engine instance.
func NewErrLockUnavailable(dataDir string) error {
	return errors.NewWithContext(ErrCodeLockUnavailable, "data directory is locked by another process", map[string]interface{}{
		"data_dir": dataDir,
	}).AsRetryable()
}

// NewErrCorruptedLog reports an AOF record with an invalid CRC encountered
// before the last checkpoint, which is fatal on startup.
func NewErrCorruptedLog(offset int64, cause error) error {
	return errors.Wrap(cause, ErrCodeCorruptedLog, "aof log corrupted before last checkpoint").
		WithContext("offset", offset)
}

// NewErrInvalidConfig reports a backend Config field outside its valid range.
func NewErrInvalidConfig(field string, value interface{}) error {
	return errors.NewWithContext(ErrCodeInvalidConfig, "invalid storage config", map[string]interface{}{
		"field": field,
		"value": value,
	})
}

// NewErrClosed reports an operation attempted after Close.
func NewErrClosed(backend string) error {
	return errors.NewWithContext(ErrCodeClosed, "storage backend is closed", map[string]interface{}{
		"backend": backend,
	})
}

// IsLockUnavailable reports whether err is a data-directory lock conflict.
func IsLockUnavailable(err error) bool {
	return errors.HasCode(err, ErrCodeLockUnavailable)
}

// IsCorruptedLog reports whether err is a fatal AOF corruption error.
func IsCorruptedLog(err error) bool {
	return errors.HasCode(err, ErrCodeCorruptedLog)
}

// IsClosed reports whether err indicates an operation on a closed backend.
func IsClosed(err error) bool {
	return errors.HasCode(err, ErrCodeClosed)
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
