// lock.go: exclusive OS file lock guarding a data directory.
//
// Acquires a non-blocking exclusive flock on a dedicated LOCK file so a
// second engine opened on the same data_dir fails fast with
// LockUnavailable instead of silently corrupting the tree or log. No
// inode-replacement retry loop or shared/read-lock mode: a data
// directory only ever needs a single exclusive holder.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package storage

import (
	"os"
	"path/filepath"
	"syscall"
)

// dirLock holds an exclusive flock on <data_dir>/LOCK.
type dirLock struct {
	file *os.File
}

// acquireDirLock creates (if needed) and locks <dataDir>/LOCK, failing
// immediately with ErrCodeLockUnavailable if another process holds it.
func acquireDirLock(dataDir string) (*dirLock, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, NewErrStorageIO("mkdir data_dir", err)
	}

	path := filepath.Join(dataDir, "LOCK")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, NewErrStorageIO("open lock file", err)
	}

	if err := flockRetryEINTR(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = f.Close()
		if err == syscall.EWOULDBLOCK || err == syscall.EAGAIN {
			return nil, NewErrLockUnavailable(dataDir)
		}
		return nil, NewErrStorageIO("flock", err)
	}

	return &dirLock{file: f}, nil
}

func (l *dirLock) release() error {
	if l == nil || l.file == nil {
		return nil
	}
	_ = flockRetryEINTR(int(l.file.Fd()), syscall.LOCK_UN)
	err := l.file.Close()
	l.file = nil
	return err
}

func flockRetryEINTR(fd int, how int) error {
	const maxRetries = 10000
	var err error
	for i := 0; i < maxRetries; i++ {
		err = syscall.Flock(fd, how)
		if err != syscall.EINTR {
			return err
		}
	}
	return err
}
