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

// Package peer implements one peer connection: a client half that issues
// locally-initiated requests and a server half that answers
// remotely-initiated ones, multiplexed over a single framed socket.
package peer

import (
	"errors"
	"net"
	"time"

	"github.com/cauchy-team/cauchy/wire"
)

// BufferSize bounds the per-peer request/response channel depth. A full
// channel blocks its producer, which is the arena fan-out's natural
// throttle.
const BufferSize = 128

// Metadata is immutable information about a peer connection.
type Metadata struct {
	StartTime time.Time
	Addr      net.Addr
}

// Player is the narrow slice of player behaviour a peer's server half
// needs to answer remotely-initiated requests.
type Player interface {
	// GetStatus returns the node's current minisketch bytes and status.
	GetStatus() (minisketch []byte, status wire.Status, err error)
	// GetTransactionsByFullID resolves a TransactionInv request.
	GetTransactionsByFullID(ids [][32]byte) []wire.Transaction
	// ReconcileAgainst merges a peer's minisketch against the perception
	// sketch captured at the prior Poll and returns the transactions
	// behind the decoded short-IDs.
	ReconcileAgainst(perception, peerSketch []byte) ([]wire.Transaction, error)
}

var (
	// ErrMissingStatus is returned by GetStatus when called before a
	// peer's client half has ever polled the remote side.
	ErrMissingStatus = errors.New("peer: no status has been polled yet")
	// ErrUnexpectedResponse is returned when a response's message kind
	// does not match what the outstanding local request expects.
	ErrUnexpectedResponse = errors.New("peer: unexpected response message")
	// ErrUnexpectedReconcile is returned when a Reconcile arrives with no
	// perception previously stored by a Poll.
	ErrUnexpectedReconcile = errors.New("peer: reconcile with no prior poll")
	// ErrClosed is returned by calls made after the peer has terminated.
	ErrClosed = errors.New("peer: connection closed")
)
