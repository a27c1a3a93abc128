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

// Package sketch implements the two fixed-length fingerprints the node uses
// to reconcile mempools without shipping full transaction sets: Oddsketch,
// a bitmap whose Hamming distance to a peer's bitmap approximates the size
// of their symmetric difference, and Minisketch, an XOR-folded sketch over
// 64-bit short-IDs that can be merged and decoded back into the members of
// that difference, up to its configured capacity.
package sketch
