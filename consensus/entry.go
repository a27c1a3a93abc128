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

// Package consensus implements the weighted Hamming-distance winner
// election the heartbeat uses to pick which peer's mempool state to
// reconcile against.
package consensus

import (
	"encoding/binary"
	"math/big"

	"github.com/cauchy-team/cauchy/cauchycrypto"
	"github.com/cauchy-team/cauchy/wire"
)

// Entry is one candidate in a winner election: a peer's oddsketch paired
// with its mass, a big-unsigned weight derived from its advertised status.
type Entry struct {
	Oddsketch []byte
	Mass      *big.Int
}

// EntryFromStatus derives an Entry from a peer's public key and advertised
// status: mass = bytes_be_to_uint(blake3(pubkey ‖ root ‖ nonce_be)).
func EntryFromStatus(pubkey []byte, status wire.Status) Entry {
	var nonceBE [8]byte
	binary.BigEndian.PutUint64(nonceBE[:], status.Nonce)

	digest := cauchycrypto.Hash(pubkey, status.Root[:], nonceBE[:])

	oddsketch := make([]byte, len(status.Oddsketch))
	copy(oddsketch, status.Oddsketch)

	return Entry{
		Oddsketch: oddsketch,
		Mass:      new(big.Int).SetBytes(digest[:]),
	}
}

func hamming(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	dist := 0
	for i := 0; i < n; i++ {
		dist += popcount(a[i] ^ b[i])
	}
	return dist
}

func popcount(b byte) int {
	c := 0
	for b != 0 {
		c += int(b & 1)
		b >>= 1
	}
	return c
}

// score computes Σ_b hamming(a, b) · mass_b over every candidate, including
// a itself (whose self-term is always zero since hamming(a, a) = 0).
func score(a Entry, entries []Entry) *big.Int {
	total := new(big.Int)
	weighted := new(big.Int)
	for _, b := range entries {
		dist := big.NewInt(int64(hamming(a.Oddsketch, b.Oddsketch)))
		weighted.Mul(dist, b.Mass)
		total.Add(total, weighted)
	}
	return total
}

// CalculateWinner returns the index of the entry minimizing its weighted
// Hamming-distance score against every other entry. Ties are broken by
// earliest index. The empty input reports no winner.
func CalculateWinner(entries []Entry) (int, bool) {
	if len(entries) == 0 {
		return 0, false
	}
	best := 0
	bestScore := score(entries[0], entries)
	for i := 1; i < len(entries); i++ {
		s := score(entries[i], entries)
		if s.Cmp(bestScore) < 0 {
			best = i
			bestScore = s
		}
	}
	return best, true
}
