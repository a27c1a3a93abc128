// Copyright 2024 The cauchy Authors
// This file is part of the cauchy library.
//
// The cauchy library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The cauchy library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the cauchy library. If not, see <http://www.gnu.org/licenses/>.

// Package mempool holds the node's pending transaction set, keyed by
// short-ID, and is the source of truth the player's state snapshot folds
// into its oddsketch and minisketch on every insert.
package mempool

import (
	"encoding/binary"
	"sync"

	"github.com/cauchy-team/cauchy/cauchycrypto"
	"github.com/cauchy-team/cauchy/wire"
	lru "github.com/hashicorp/golang-lru"
)

// recentCapacity bounds the recently-seen short-ID cache. It is sized
// generously relative to a typical heartbeat's reconcile batch so a
// single round of reconciliation doesn't evict its own earlier entries.
const recentCapacity = 4096

// Mempool is a concurrency-safe, insertion-only store of pending
// transactions, addressable both by their short-ID (8 bytes, used by the
// minisketch reconciliation path) and by their full ID (32 bytes, used by
// explicit TransactionInv lookups). It also tracks a bounded LRU of
// recently-ingested short-IDs so the reconciliation path can skip
// re-broadcasting a transaction it has already processed this round.
type Mempool struct {
	mu       sync.RWMutex
	byShort  map[uint64]wire.Transaction
	byFullID map[[cauchycrypto.DigestLen]byte]wire.Transaction
	recent   *lru.Cache
}

// New returns an empty mempool.
func New() *Mempool {
	recent, err := lru.New(recentCapacity)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// recentCapacity never is.
		panic(err)
	}
	return &Mempool{
		byShort:  make(map[uint64]wire.Transaction),
		byFullID: make(map[[cauchycrypto.DigestLen]byte]wire.Transaction),
		recent:   recent,
	}
}

// FullID returns the blake3 digest of a transaction's identity preimage:
// timestamp_be ‖ binary. The identity deliberately excludes aux_data,
// which carries side information that does not affect which transaction
// this is.
func FullID(tx wire.Transaction) [cauchycrypto.DigestLen]byte {
	return cauchycrypto.Hash(serializeForID(tx))
}

// ShortID returns the first 8 bytes of FullID, interpreted big-endian.
func ShortID(tx wire.Transaction) uint64 {
	id := FullID(tx)
	return cauchycrypto.ShortID(id[:])
}

func serializeForID(tx wire.Transaction) []byte {
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], tx.Timestamp)
	return append(ts[:], tx.Binary...)
}

// Insert adds tx to the mempool under both its short and full IDs, and
// returns the short-ID so the caller can fold it into the
// oddsketch/minisketch.
func (m *Mempool) Insert(tx wire.Transaction) uint64 {
	full := FullID(tx)
	short := cauchycrypto.ShortID(full[:])
	m.mu.Lock()
	m.byShort[short] = tx
	m.byFullID[full] = tx
	m.mu.Unlock()
	m.recent.Add(short, struct{}{})
	return short
}

// Get looks up a transaction by short-ID.
func (m *Mempool) Get(id uint64) (wire.Transaction, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tx, ok := m.byShort[id]
	return tx, ok
}

// GetMany looks up multiple short-IDs, silently omitting any that are not
// present in the mempool.
func (m *Mempool) GetMany(ids []uint64) []wire.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]wire.Transaction, 0, len(ids))
	for _, id := range ids {
		if tx, ok := m.byShort[id]; ok {
			out = append(out, tx)
		}
	}
	return out
}

// GetManyByFullID looks up multiple full IDs, silently omitting any that
// are not present in the mempool.
func (m *Mempool) GetManyByFullID(ids [][cauchycrypto.DigestLen]byte) []wire.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]wire.Transaction, 0, len(ids))
	for _, id := range ids {
		if tx, ok := m.byFullID[id]; ok {
			out = append(out, tx)
		}
	}
	return out
}

// AlreadySeen reports whether short has been marked seen before, then
// marks it seen. Callers on the reconciliation path use this to avoid
// reprocessing (re-spawning a VM actor for) a transaction they have
// already ingested recently, without needing to consult the full
// mempool map.
func (m *Mempool) AlreadySeen(short uint64) bool {
	seen := m.recent.Contains(short)
	m.recent.Add(short, struct{}{})
	return seen
}

// Len reports the number of transactions currently held.
func (m *Mempool) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byShort)
}
