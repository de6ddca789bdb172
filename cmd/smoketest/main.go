// smoketest exercises the engine facade end-to-end against each
// persistence mode in turn. It is a fixed exerciser, not a configurable
// CLI — a request/response transport shim in front of the engine is
// intentionally out of scope for this module.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/agilira/maplet/engine"
	"github.com/agilira/maplet/storage"
)

func main() {
	fmt.Println("=== memory mode ===")
	runMemory()

	dir, err := os.MkdirTemp("", "maplet-smoketest-aof-")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)
	fmt.Println("\n=== aof mode ===")
	runDurable(storage.ModeAOF, dir)

	dir2, err := os.MkdirTemp("", "maplet-smoketest-hybrid-")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir2)
	fmt.Println("\n=== hybrid mode ===")
	runDurable(storage.ModeHybrid, dir2)

	dir3, err := os.MkdirTemp("", "maplet-smoketest-disk-")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir3)
	fmt.Println("\n=== disk mode ===")
	runDurable(storage.ModeDisk, dir3)
}

func runMemory() {
	e, err := engine.OpenEngine(engine.Config{PersistenceMode: storage.ModeMemory})
	if err != nil {
		log.Fatalf("OpenEngine: %v", err)
	}
	defer e.Close()

	exercise(e)
}

func runDurable(mode storage.Mode, dir string) {
	e, err := engine.OpenEngine(engine.Config{
		PersistenceMode: mode,
		DataDir:         dir,
	})
	if err != nil {
		log.Fatalf("OpenEngine(%s): %v", mode, err)
	}

	exercise(e)

	if err := e.Flush(); err != nil {
		log.Fatalf("Flush: %v", err)
	}
	if err := e.Close(); err != nil {
		log.Fatalf("Close: %v", err)
	}

	reopened, err := engine.OpenEngine(engine.Config{
		PersistenceMode: mode,
		DataDir:         dir,
	})
	if err != nil {
		log.Fatalf("reopen OpenEngine(%s): %v", mode, err)
	}
	defer reopened.Close()

	value, ok, err := reopened.Get("hello")
	if err != nil {
		log.Fatalf("Get after reopen: %v", err)
	}
	fmt.Printf("after reopen: get(hello) = %q, found=%v\n", value, ok)
}

func exercise(e *engine.Engine) {
	if err := e.Set("hello", []byte("world")); err != nil {
		log.Fatalf("Set: %v", err)
	}
	value, ok, err := e.Get("hello")
	if err != nil {
		log.Fatalf("Get: %v", err)
	}
	fmt.Printf("get(hello) = %q, found=%v\n", value, ok)

	if err := e.Expire("hello", 50*time.Millisecond); err != nil {
		log.Fatalf("Expire: %v", err)
	}
	ttl, ok := e.TTL("hello")
	fmt.Printf("ttl(hello) = %v, found=%v\n", ttl, ok)

	time.Sleep(200 * time.Millisecond)
	exists, err := e.Exists("hello")
	if err != nil {
		log.Fatalf("Exists: %v", err)
	}
	fmt.Printf("exists(hello) after expiry = %v\n", exists)

	for i := 0; i < 10; i++ {
		key := fmt.Sprintf("k%d", i)
		if err := e.Set(key, []byte(fmt.Sprintf("v%d", i))); err != nil {
			log.Fatalf("Set(%s): %v", key, err)
		}
	}
	keys, err := e.Keys()
	if err != nil {
		log.Fatalf("Keys: %v", err)
	}
	fmt.Printf("keys() = %d entries\n", len(keys))

	stats := e.Stats()
	fmt.Printf("stats: uptime=%v total_ops=%d maplet_size=%d maplet_load=%.3f storage_ops=%d\n",
		stats.Uptime, stats.TotalOps, stats.MapletSize, stats.MapletLoadFactor, stats.StorageOps)

	loaded, err := e.GetOrLoad("computed", func() ([]byte, error) {
		return []byte("expensive-result"), nil
	})
	if err != nil {
		log.Fatalf("GetOrLoad: %v", err)
	}
	fmt.Printf("getorload(computed) = %q\n", loaded)
}
