// loading.go: GetOrLoad, a cache-aside helper that deduplicates
// concurrent loads for the same missing key.
//
// Built on golang.org/x/sync/singleflight rather than a hand-rolled
// inflight map of per-key WaitGroups: singleflight already provides
// exactly the call-collapsing semantics this needs, so only the
// cache-aside sequencing (check engine, on miss load-and-set-once,
// panic recovery around the loader) is this file's own.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"fmt"

	"github.com/agilira/go-errors"
)

// ErrCodeInvalidLoader reports a nil loader function passed to GetOrLoad.
const ErrCodeInvalidLoader errors.ErrorCode = "MAPLET_INVALID_LOADER"

// NewErrInvalidLoader reports that GetOrLoad was called with a nil
// loader for key.
func NewErrInvalidLoader(key string) error {
	return errors.NewWithField(ErrCodeInvalidLoader, "loader must not be nil", "key", key)
}

// GetOrLoad returns the value stored under key, or calls loader to
// produce it on a miss. Concurrent GetOrLoad calls for the same missing
// key run loader exactly once; the rest observe its result. A
// successful load is written through Set before being returned, so a
// subsequent Get observes it without calling loader again. The loader's
// result is never cached on error, and a panic inside loader is
// recovered and returned as an error rather than crashing the caller.
func (e *Engine) GetOrLoad(key string, loader func() ([]byte, error)) ([]byte, error) {
	if err := e.checkOpen("getorload"); err != nil {
		return nil, err
	}
	if value, found, err := e.Get(key); err != nil {
		return nil, err
	} else if found {
		return value, nil
	}
	if loader == nil {
		return nil, NewErrInvalidLoader(key)
	}

	v, err, _ := e.loadGroup.Do(key, func() (result interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("getorload: loader panicked for key %q: %v", key, r)
			}
		}()
		value, loadErr := loader()
		if loadErr != nil {
			return nil, loadErr
		}
		if setErr := e.Set(key, value); setErr != nil {
			return nil, setErr
		}
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// GetOrLoadWithContext is GetOrLoad with a context passed through to
// loader, so a caller waiting on someone else's in-flight load can still
// observe its own cancellation or deadline instead of blocking on
// singleflight.Do indefinitely.
func (e *Engine) GetOrLoadWithContext(ctx context.Context, key string, loader func(context.Context) ([]byte, error)) ([]byte, error) {
	if err := e.checkOpen("getorloadwithcontext"); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if value, found, err := e.Get(key); err != nil {
		return nil, err
	} else if found {
		return value, nil
	}
	if loader == nil {
		return nil, NewErrInvalidLoader(key)
	}

	resultCh := e.loadGroup.DoChan(key, func() (result interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("getorloadwithcontext: loader panicked for key %q: %v", key, r)
			}
		}()
		value, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		if setErr := e.Set(key, value); setErr != nil {
			return nil, setErr
		}
		return value, nil
	})

	select {
	case res := <-resultCh:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
