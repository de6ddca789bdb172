// util.go: small filesystem helpers shared by the disk and aof backends.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package storage

import "os"

func ensureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return NewErrStorageIO("mkdir", err)
	}
	return nil
}
