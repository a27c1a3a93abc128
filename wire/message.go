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

// Package wire implements the length-delimited binary codec for the
// node-to-node message set: a single octet tag followed by a kind-specific
// payload, all multi-byte integers big-endian.
package wire

import "errors"

// DigestLen is the width of a transaction ID / Merkle root on the wire.
const DigestLen = 32

// Kind identifies a message's wire tag.
type Kind byte

const (
	KindPoll Kind = iota
	KindStatus
	KindReconcile
	KindReconcileResponse
	KindTransaction
	KindTransactionInv
	KindTransactions
)

// ErrUnexpectedType is returned when a tag byte does not match any known
// Kind; per §4.1 this is fatal for the connection.
var ErrUnexpectedType = errors.New("wire: unexpected message type")

// ErrInvalidSketchLength is returned when encoding a Reconcile whose
// sketch is not a whole number of 32-byte wire words.
var ErrInvalidSketchLength = errors.New("wire: minisketch length not a multiple of 32")

// Message is the tagged union of the 7 message kinds.
type Message interface {
	Kind() Kind
}

// Poll requests the receiver's current Status.
type Poll struct{}

func (Poll) Kind() Kind { return KindPoll }

// Status advertises a node's oddsketch, Merkle root and current best nonce.
type Status struct {
	Oddsketch []byte
	Root      [DigestLen]byte
	Nonce     uint64
}

func (Status) Kind() Kind { return KindStatus }

// Reconcile carries the initiator's minisketch, raw serialized bytes.
type Reconcile struct {
	Sketch []byte
}

func (Reconcile) Kind() Kind { return KindReconcile }

// ReconcileResponse carries the transactions a Reconcile decoded.
type ReconcileResponse struct {
	Txs []Transaction
}

func (ReconcileResponse) Kind() Kind { return KindReconcileResponse }

// Transaction is a single mempool entry as seen on the wire.
type Transaction struct {
	Timestamp uint64
	Binary    []byte
	Aux       []byte
}

func (Transaction) Kind() Kind { return KindTransaction }

// TransactionInv requests the transactions behind a list of 32-byte IDs.
type TransactionInv struct {
	IDs [][DigestLen]byte
}

func (TransactionInv) Kind() Kind { return KindTransactionInv }

// Transactions is a batch of full transactions.
type Transactions struct {
	Txs []Transaction
}

func (Transactions) Kind() Kind { return KindTransactions }
