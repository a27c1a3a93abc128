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

package sketch

import (
	"encoding/binary"
	"errors"
	"math/bits"

	"github.com/zeebo/blake3"
)

// bitsPerElement is the number of pseudo-random bit positions flipped per
// inserted short-ID. Spreading each element over several positions keeps
// the Hamming distance roughly proportional to symmetric-difference size
// for differences well inside the sketch's width, rather than saturating
// after a handful of insertions as a single-bit-per-element scheme would.
const bitsPerElement = 4

// Oddsketch is a fixed-width bitmap fingerprint of a set of short-IDs. Its
// width is 32·radius bits (4·radius bytes). Two sketches built over sets A
// and B have Hamming distance that grows with |A Δ B|.
type Oddsketch struct {
	bits  []byte
	radix int // radius the sketch was built for
}

// NewOddsketch returns an empty sketch sized for the given radius.
func NewOddsketch(radius int) *Oddsketch {
	return &Oddsketch{bits: make([]byte, 4*radius), radix: radius}
}

// OddsketchFromBytes wraps raw bytes as a sketch. The length must be a
// multiple of 4 so it corresponds to some radius; see §3 of the data model.
func OddsketchFromBytes(raw []byte) (*Oddsketch, error) {
	if len(raw)%4 != 0 {
		return nil, errors.New("sketch: oddsketch length must be a multiple of 4")
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return &Oddsketch{bits: out, radix: len(raw) / 4}, nil
}

// Bytes returns the raw wire representation of the sketch.
func (o *Oddsketch) Bytes() []byte {
	out := make([]byte, len(o.bits))
	copy(out, o.bits)
	return out
}

// Radius reports the capacity the sketch was constructed with.
func (o *Oddsketch) Radius() int { return o.radix }

// Add folds a short-ID's bit positions into the sketch.
func (o *Oddsketch) Add(shortID uint64) {
	nbits := len(o.bits) * 8
	if nbits == 0 {
		return
	}
	var seed [8]byte
	binary.BigEndian.PutUint64(seed[:], shortID)
	for i := 0; i < bitsPerElement; i++ {
		pos := bitPosition(seed[:], byte(i), nbits)
		o.bits[pos/8] ^= 1 << (pos % 8)
	}
}

// Merge XORs other into o in place. Sketches must share a width.
func (o *Oddsketch) Merge(other *Oddsketch) error {
	if len(o.bits) != len(other.bits) {
		return errors.New("sketch: oddsketch width mismatch")
	}
	for i := range o.bits {
		o.bits[i] ^= other.bits[i]
	}
	return nil
}

// Hamming returns the Hamming distance between two equal-width sketches.
func Hamming(a, b *Oddsketch) (int, error) {
	if len(a.bits) != len(b.bits) {
		return 0, errors.New("sketch: oddsketch width mismatch")
	}
	dist := 0
	for i := range a.bits {
		dist += bits.OnesCount8(a.bits[i] ^ b.bits[i])
	}
	return dist, nil
}

func bitPosition(seed []byte, domain byte, nbits int) int {
	h := blake3.New()
	h.Write(seed)
	h.Write([]byte{domain})
	sum := h.Sum(nil)
	return int(binary.BigEndian.Uint64(sum[:8]) % uint64(nbits))
}
