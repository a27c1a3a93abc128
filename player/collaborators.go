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

package player

import (
	"errors"

	"github.com/cauchy-team/cauchy/cauchycrypto"
	"github.com/cauchy-team/cauchy/wire"
)

// ErrVM wraps a failure reported by a VM factory during transaction
// ingestion. Per the current design, broadcast_transaction's mempool and
// snapshot updates proceed regardless of a VM failure; the error is only
// surfaced to the RPC caller that requested the broadcast.
var ErrVM = errors.New("player: vm execution failed")

// Retval describes a VM factory's outcome for one transaction: whether
// execution succeeded and what it cost, without prescribing any
// transaction-language semantics.
type Retval struct {
	Cost uint64
	Err  error
}

// VMFactory is invoked with a single transaction and returns its
// execution retval. The core node treats it as an opaque external
// collaborator: BroadcastTransaction calls it synchronously before the
// mempool/snapshot update, and an error from it does not prevent that
// update (see DESIGN.md Open Questions).
type VMFactory interface {
	Execute(tx wire.Transaction) (Retval, error)
}

// Storage is the narrow persistence collaborator the player holds. The
// core does not prescribe its schema; it exists so a concrete backend
// (e.g. an embedded key-value store) can be wired in without the player
// depending on it directly.
type Storage interface {
	Put(key, value []byte) error
	Get(key []byte) ([]byte, error)
	Close() error
}

// ErrStorage is the single error kind a Storage implementation reports;
// callers distinguish failure modes, if any, by wrapping this sentinel.
var ErrStorage = errors.New("player: storage error")

// MerkleAccumulator computes the root committing to the VM factory's
// current executed state. It is a narrow external collaborator exposing
// only that root. The Player holds no MerkleAccumulator; the snapshot's
// root changes only through StateSnapshot.SetRoot.
type MerkleAccumulator interface {
	Root() [cauchycrypto.DigestLen]byte
}

// NopVMFactory is a VMFactory that accepts every transaction at zero
// cost. It is the default collaborator wired by cmd/cauchy when no real
// execution backend is configured, matching the "spawn a VM actor
// best-effort" language of the heartbeat/broadcast spec: an absent VM is
// not a protocol error, it just never reports a cost.
type NopVMFactory struct{}

// Execute always succeeds with zero cost.
func (NopVMFactory) Execute(wire.Transaction) (Retval, error) { return Retval{}, nil }
