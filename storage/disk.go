// disk.go: embedded ordered key-value tree backend, backed by SQLite.
//
// SQLite's own B-tree index on the key column gives the embedded ordered
// key-value tree this backend exposes; WAL-mode journaling plus an
// explicit Flush (PRAGMA wal_checkpoint(FULL), under synchronous=FULL) gives the
// fsync-on-flush durability contract. Pragmas: busy_timeout, WAL journal
// mode, full synchronous, a generous mmap, and a negative (KB) cache_size.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

const sqliteBusyTimeoutMS = 10000

// DiskBackend is the embedded, on-disk ordered KV tree mode. It holds an
// exclusive lock on data_dir for its entire lifetime.
type DiskBackend struct {
	db   *sql.DB
	lock *dirLock
}

// OpenDiskBackend opens (creating if needed) the SQLite-backed tree under
// <dataDir>/tree/maplet.db, after acquiring the directory's exclusive lock.
func OpenDiskBackend(dataDir string) (*DiskBackend, error) {
	lock, err := acquireDirLock(dataDir)
	if err != nil {
		return nil, err
	}

	treeDir := filepath.Join(dataDir, "tree")
	if err := ensureDir(treeDir); err != nil {
		_ = lock.release()
		return nil, err
	}

	dbPath := filepath.Join(treeDir, "maplet.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		_ = lock.release()
		return nil, NewErrStorageIO("open sqlite", err)
	}

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = lock.release()
		return nil, NewErrStorageIO("ping sqlite", err)
	}
	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		_ = lock.release()
		return nil, err
	}
	if err := createSchema(ctx, db); err != nil {
		_ = db.Close()
		_ = lock.release()
		return nil, err
	}

	return &DiskBackend{db: db, lock: lock}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		PRAGMA busy_timeout = %d;
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = FULL;
		PRAGMA mmap_size = 268435456;
		PRAGMA cache_size = -20000;
		PRAGMA temp_store = MEMORY;
	`, sqliteBusyTimeoutMS))
	if err != nil {
		return NewErrStorageIO("apply pragmas", err)
	}
	return nil
}

func createSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS entries (
			key   BLOB PRIMARY KEY,
			value BLOB NOT NULL
		) WITHOUT ROWID;
	`)
	if err != nil {
		return NewErrStorageIO("create schema", err)
	}
	return nil
}

func (b *DiskBackend) Put(key, value []byte) error {
	_, err := b.db.Exec(`
		INSERT INTO entries (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return NewErrStorageIO("put", err)
	}
	return nil
}

func (b *DiskBackend) Get(key []byte) ([]byte, bool, error) {
	var value []byte
	err := b.db.QueryRow(`SELECT value FROM entries WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, NewErrStorageIO("get", err)
	}
	return value, true, nil
}

func (b *DiskBackend) Delete(key []byte) (bool, error) {
	res, err := b.db.Exec(`DELETE FROM entries WHERE key = ?`, key)
	if err != nil {
		return false, NewErrStorageIO("delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, NewErrStorageIO("delete rows affected", err)
	}
	return n > 0, nil
}

func (b *DiskBackend) Keys() ([][]byte, error) {
	rows, err := b.db.Query(`SELECT key FROM entries ORDER BY key`)
	if err != nil {
		return nil, NewErrStorageIO("keys", err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var k []byte
		if err := rows.Scan(&k); err != nil {
			return nil, NewErrStorageIO("keys scan", err)
		}
		out = append(out, k)
	}
	if err := rows.Err(); err != nil {
		return nil, NewErrStorageIO("keys iterate", err)
	}
	return out, nil
}

// Reconstruct returns every stored record, for warming a freshly opened
// maplet (the resolved Open Question: disk mode reconstructs on open
// rather than starting the maplet empty).
func (b *DiskBackend) Reconstruct() ([]Record, error) {
	rows, err := b.db.Query(`SELECT key, value FROM entries ORDER BY key`)
	if err != nil {
		return nil, NewErrStorageIO("reconstruct", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var k, v []byte
		if err := rows.Scan(&k, &v); err != nil {
			return nil, NewErrStorageIO("reconstruct scan", err)
		}
		out = append(out, Record{Key: k, Value: v})
	}
	if err := rows.Err(); err != nil {
		return nil, NewErrStorageIO("reconstruct iterate", err)
	}
	return out, nil
}

func (b *DiskBackend) Flush() error {
	if _, err := b.db.Exec(`PRAGMA wal_checkpoint(FULL)`); err != nil {
		return NewErrStorageIO("flush checkpoint", err)
	}
	return nil
}

func (b *DiskBackend) MemoryUsage() int64 {
	var pageCount, pageSize int64
	_ = b.db.QueryRow(`PRAGMA page_count`).Scan(&pageCount)
	_ = b.db.QueryRow(`PRAGMA page_size`).Scan(&pageSize)
	return pageCount * pageSize
}

func (b *DiskBackend) Close() error {
	err := b.db.Close()
	lockErr := b.lock.release()
	if err != nil {
		return NewErrStorageIO("close", err)
	}
	if lockErr != nil {
		return NewErrStorageIO("release lock", lockErr)
	}
	return nil
}
