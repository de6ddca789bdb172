// Package engine binds the quotient-filter maplet, a pluggable storage
// backend, and the TTL index into a single facade: Open/Set/Get/Delete/
// Exists/Keys/Clear/Flush/Close, the TTL delegation operations (Expire/
// TTL/Persist/ExpireMany/KeysWithTTL), Stats, and the GetOrLoad
// cache-aside helper.
//
// The facade owns no algorithm of its own — every operation is a fixed
// sequence of calls into filter.Maplet, storage.Backend, and
// ttlindex.Index, with the orchestration logic confined to a handful of
// methods that call into those components in sequence.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package engine
