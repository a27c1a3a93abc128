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

import "encoding/binary"

// Decoder is a resumable decoder instance: it accumulates fed bytes and,
// once a full message is available, yields it and advances past it. Bytes
// fed before a complete message is available are retained verbatim, so
// Decoder tolerates being driven a single byte at a time.
type Decoder struct {
	buf []byte
}

// NewDecoder returns an empty resumable decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends newly received bytes to the decoder's working buffer.
func (d *Decoder) Feed(p []byte) {
	d.buf = append(d.buf, p...)
}

// Next attempts to decode one message from the front of the working
// buffer. ok is false when more bytes are required; the already-fed bytes
// are preserved for the next call. err is non-nil only for an unknown tag,
// which is fatal for the connection per §4.1.
func (d *Decoder) Next() (msg Message, ok bool, err error) {
	n, parsed, perr := tryParse(d.buf)
	if perr != nil {
		return nil, false, perr
	}
	if n == 0 {
		return nil, false, nil
	}
	d.buf = d.buf[n:]
	return parsed, true, nil
}

// cursor is a tiny bounds-checked reader over an in-memory buffer.
type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) remaining() int { return len(c.buf) - c.pos }

func (c *cursor) readByte() (byte, bool) {
	if c.remaining() < 1 {
		return 0, false
	}
	b := c.buf[c.pos]
	c.pos++
	return b, true
}

func (c *cursor) readU16() (uint16, bool) {
	if c.remaining() < 2 {
		return 0, false
	}
	v := binary.BigEndian.Uint16(c.buf[c.pos:])
	c.pos += 2
	return v, true
}

func (c *cursor) readU32() (uint32, bool) {
	if c.remaining() < 4 {
		return 0, false
	}
	v := binary.BigEndian.Uint32(c.buf[c.pos:])
	c.pos += 4
	return v, true
}

func (c *cursor) readU64() (uint64, bool) {
	if c.remaining() < 8 {
		return 0, false
	}
	v := binary.BigEndian.Uint64(c.buf[c.pos:])
	c.pos += 8
	return v, true
}

func (c *cursor) readN(n int) ([]byte, bool) {
	if c.remaining() < n {
		return nil, false
	}
	out := make([]byte, n)
	copy(out, c.buf[c.pos:c.pos+n])
	c.pos += n
	return out, true
}

func (c *cursor) readDigest() ([DigestLen]byte, bool) {
	var out [DigestLen]byte
	if c.remaining() < DigestLen {
		return out, false
	}
	copy(out[:], c.buf[c.pos:c.pos+DigestLen])
	c.pos += DigestLen
	return out, true
}

func readTransaction(c *cursor) (Transaction, bool) {
	ts, ok := c.readU64()
	if !ok {
		return Transaction{}, false
	}
	binLen, ok := c.readU32()
	if !ok {
		return Transaction{}, false
	}
	bin, ok := c.readN(int(binLen))
	if !ok {
		return Transaction{}, false
	}
	auxLen, ok := c.readU32()
	if !ok {
		return Transaction{}, false
	}
	aux, ok := c.readN(int(auxLen))
	if !ok {
		return Transaction{}, false
	}
	return Transaction{Timestamp: ts, Binary: bin, Aux: aux}, true
}

func readTransactions(c *cursor) ([]Transaction, bool) {
	n, ok := c.readU32()
	if !ok {
		return nil, false
	}
	txs := make([]Transaction, 0, n)
	for i := uint32(0); i < n; i++ {
		tx, ok := readTransaction(c)
		if !ok {
			return nil, false
		}
		txs = append(txs, tx)
	}
	return txs, true
}

// tryParse attempts to decode exactly one message starting at buf[0]. It
// returns the number of bytes consumed (0 meaning "need more data"), the
// parsed message, and a fatal error on an unrecognised tag.
func tryParse(buf []byte) (int, Message, error) {
	c := &cursor{buf: buf}
	tag, ok := c.readByte()
	if !ok {
		return 0, nil, nil
	}

	switch Kind(tag) {
	case KindPoll:
		return c.pos, Poll{}, nil

	case KindStatus:
		oddsketchLen, ok := c.readU16()
		if !ok {
			return 0, nil, nil
		}
		oddsketch, ok := c.readN(int(oddsketchLen))
		if !ok {
			return 0, nil, nil
		}
		root, ok := c.readDigest()
		if !ok {
			return 0, nil, nil
		}
		nonce, ok := c.readU64()
		if !ok {
			return 0, nil, nil
		}
		return c.pos, Status{Oddsketch: oddsketch, Root: root, Nonce: nonce}, nil

	case KindReconcile:
		words, ok := c.readU32()
		if !ok {
			return 0, nil, nil
		}
		sketch, ok := c.readN(int(words) * 32)
		if !ok {
			return 0, nil, nil
		}
		return c.pos, Reconcile{Sketch: sketch}, nil

	case KindReconcileResponse:
		txs, ok := readTransactions(c)
		if !ok {
			return 0, nil, nil
		}
		return c.pos, ReconcileResponse{Txs: txs}, nil

	case KindTransaction:
		tx, ok := readTransaction(c)
		if !ok {
			return 0, nil, nil
		}
		return c.pos, tx, nil

	case KindTransactionInv:
		n, ok := c.readU32()
		if !ok {
			return 0, nil, nil
		}
		ids := make([][DigestLen]byte, 0, n)
		for i := uint32(0); i < n; i++ {
			id, ok := c.readDigest()
			if !ok {
				return 0, nil, nil
			}
			ids = append(ids, id)
		}
		return c.pos, TransactionInv{IDs: ids}, nil

	case KindTransactions:
		txs, ok := readTransactions(c)
		if !ok {
			return 0, nil, nil
		}
		return c.pos, Transactions{Txs: txs}, nil

	default:
		return 0, nil, ErrUnexpectedType
	}
}
