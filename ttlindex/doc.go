// Package ttlindex implements the engine's expiry bookkeeping: a reverse
// map from key to absolute expiry time plus an ordered min-heap of
// pending expirations, supporting both lazy expiry (checked inline on
// access) and a cancellable background sweeper.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0
package ttlindex
