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

// Package player implements the node's orchestrator: the glue between
// arena, mempool, mining coordinator and the shared state snapshot, plus
// the heartbeat loop that drives reconciliation.
package player

import (
	"sync"

	"github.com/cauchy-team/cauchy/cauchycrypto"
	"github.com/cauchy-team/cauchy/sketch"
)

// StateSnapshot is the node's locally-executed state as advertised to
// peers: the oddsketch and minisketch folded from every mempool insert,
// and the Merkle root of whatever the VM factory has executed so far.
// It is guarded by a shared-reader/exclusive-writer lock and must never
// be held across network I/O; writers are mempool-insert and
// reconcile-complete, readers are get_status.
type StateSnapshot struct {
	mu         sync.RWMutex
	radius     int
	oddsketch  *sketch.Oddsketch
	minisketch *sketch.Minisketch
	root       [cauchycrypto.DigestLen]byte
}

// NewStateSnapshot returns an empty snapshot sized for radius.
func NewStateSnapshot(radius int) *StateSnapshot {
	return &StateSnapshot{
		radius:     radius,
		oddsketch:  sketch.NewOddsketch(radius),
		minisketch: sketch.NewMinisketch(radius),
	}
}

// Oddsketch returns a copy of the current oddsketch bytes.
func (s *StateSnapshot) Oddsketch() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.oddsketch.Bytes()
}

// Minisketch returns a copy of the current minisketch bytes.
func (s *StateSnapshot) Minisketch() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.minisketch.Bytes()
}

// Root returns the current Merkle root.
func (s *StateSnapshot) Root() [cauchycrypto.DigestLen]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// AddShortID folds shortID into both the oddsketch and the minisketch,
// per the hydrate -> add -> re-serialize sequence broadcast_transaction
// and reconcile-ingestion both perform.
func (s *StateSnapshot) AddShortID(shortID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.oddsketch.Add(shortID)
	s.minisketch.Add(shortID)
}

// SetRoot updates the Merkle root, e.g. after the VM factory reports a
// new execution result.
func (s *StateSnapshot) SetRoot(root [cauchycrypto.DigestLen]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = root
}
