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

package wire

import (
	"bytes"
	"encoding/binary"
)

func putTransaction(dst *bytes.Buffer, tx Transaction) {
	var u64 [8]byte
	binary.BigEndian.PutUint64(u64[:], tx.Timestamp)
	dst.Write(u64[:])

	var u32 [4]byte
	binary.BigEndian.PutUint32(u32[:], uint32(len(tx.Binary)))
	dst.Write(u32[:])
	dst.Write(tx.Binary)

	binary.BigEndian.PutUint32(u32[:], uint32(len(tx.Aux)))
	dst.Write(u32[:])
	dst.Write(tx.Aux)
}

// Encode appends the wire encoding of m to dst and returns it.
func Encode(dst []byte, m Message) ([]byte, error) {
	buf := bytes.NewBuffer(dst)
	switch msg := m.(type) {
	case Poll:
		buf.WriteByte(byte(KindPoll))

	case Status:
		buf.WriteByte(byte(KindStatus))
		var u16 [2]byte
		binary.BigEndian.PutUint16(u16[:], uint16(len(msg.Oddsketch)))
		buf.Write(u16[:])
		buf.Write(msg.Oddsketch)
		buf.Write(msg.Root[:])
		var u64 [8]byte
		binary.BigEndian.PutUint64(u64[:], msg.Nonce)
		buf.Write(u64[:])

	case Reconcile:
		if len(msg.Sketch)%32 != 0 {
			return nil, ErrInvalidSketchLength
		}
		buf.WriteByte(byte(KindReconcile))
		var u32 [4]byte
		binary.BigEndian.PutUint32(u32[:], uint32(len(msg.Sketch)/32))
		buf.Write(u32[:])
		buf.Write(msg.Sketch)

	case ReconcileResponse:
		buf.WriteByte(byte(KindReconcileResponse))
		var u32 [4]byte
		binary.BigEndian.PutUint32(u32[:], uint32(len(msg.Txs)))
		buf.Write(u32[:])
		for _, tx := range msg.Txs {
			putTransaction(buf, tx)
		}

	case Transaction:
		buf.WriteByte(byte(KindTransaction))
		putTransaction(buf, msg)

	case TransactionInv:
		buf.WriteByte(byte(KindTransactionInv))
		var u32 [4]byte
		binary.BigEndian.PutUint32(u32[:], uint32(len(msg.IDs)))
		buf.Write(u32[:])
		for _, id := range msg.IDs {
			buf.Write(id[:])
		}

	case Transactions:
		buf.WriteByte(byte(KindTransactions))
		var u32 [4]byte
		binary.BigEndian.PutUint32(u32[:], uint32(len(msg.Txs)))
		buf.Write(u32[:])
		for _, tx := range msg.Txs {
			putTransaction(buf, tx)
		}

	default:
		return nil, ErrUnexpectedType
	}
	return buf.Bytes(), nil
}
