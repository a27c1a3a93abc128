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
)

// ErrInvalidLength is returned when raw bytes cannot correspond to any
// radius (not a multiple of 8) or a merge/decode operand has a mismatched
// radius.
var ErrInvalidLength = errors.New("sketch: minisketch length must be a multiple of 8")

// Minisketch is an XOR-folded set-difference sketch over 64-bit short-IDs.
// It has a fixed capacity (radius cells, 8 bytes each). An element maps to
// exactly one cell by short_id % radius; inserting it XORs its value into
// that cell. Two elements landing on the same cell cancel out if inserted
// an even number of times (in particular, an element present on both sides
// of a merge vanishes, leaving only the symmetric difference); a cell that
// still nets to exactly one surviving element is detected by re-hashing
// its value and checking it maps back to its own cell, and is "pure" and
// decodable. Cells holding more than one undischarged element are not
// decodable; this is the sketch's capacity limit, matched by the caller
// never asking it to reconcile more than radius elements of difference.
type Minisketch struct {
	cells []uint64
}

// NewMinisketch returns an empty sketch with capacity radius.
func NewMinisketch(radius int) *Minisketch {
	return &Minisketch{cells: make([]uint64, radius)}
}

// MinisketchFromBytes hydrates a sketch from its wire bytes.
func MinisketchFromBytes(raw []byte) (*Minisketch, error) {
	if len(raw)%8 != 0 {
		return nil, ErrInvalidLength
	}
	cells := make([]uint64, len(raw)/8)
	for i := range cells {
		cells[i] = binary.BigEndian.Uint64(raw[i*8:])
	}
	return &Minisketch{cells: cells}, nil
}

// Bytes serializes the sketch to its wire representation, radius·8 bytes.
func (m *Minisketch) Bytes() []byte {
	out := make([]byte, len(m.cells)*8)
	for i, c := range m.cells {
		binary.BigEndian.PutUint64(out[i*8:], c)
	}
	return out
}

// Radius is the sketch's element capacity.
func (m *Minisketch) Radius() int { return len(m.cells) }

// Add folds a short-ID into its cell.
func (m *Minisketch) Add(shortID uint64) {
	if len(m.cells) == 0 {
		return
	}
	m.cells[shortID%uint64(len(m.cells))] ^= shortID
}

// Merge XORs other into m in place. Both sketches must share a radius.
func (m *Minisketch) Merge(other *Minisketch) error {
	if len(m.cells) != len(other.cells) {
		return ErrInvalidLength
	}
	for i := range m.cells {
		m.cells[i] ^= other.cells[i]
	}
	return nil
}

// Decode returns the short-IDs recoverable from currently-pure cells, up
// to the sketch's capacity. A cell is pure when its residual value
// rehashes to its own index, i.e. it holds exactly one undischarged
// element rather than an unresolved collision of several.
func (m *Minisketch) Decode() []uint64 {
	out := make([]uint64, 0, len(m.cells))
	n := uint64(len(m.cells))
	if n == 0 {
		return out
	}
	for i, c := range m.cells {
		if c == 0 {
			continue
		}
		if c%n == uint64(i) {
			out = append(out, c)
		}
	}
	return out
}
