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

// Package cauchycrypto centralizes the blake3 hashing used across the
// node: transaction identity, short-ID derivation, the mining digest and
// the consensus mass preimage.
package cauchycrypto

import (
	"encoding/binary"

	"github.com/zeebo/blake3"
)

// DigestLen is the length in bytes of a blake3 digest as used throughout
// the node (transaction ID, Merkle root, mining digest).
const DigestLen = 32

// Hash returns the blake3-256 digest of the concatenation of data.
func Hash(data ...[]byte) [DigestLen]byte {
	h := blake3.New()
	for _, d := range data {
		h.Write(d)
	}
	var out [DigestLen]byte
	copy(out[:], h.Sum(nil))
	return out
}

// ShortID interprets the first 8 bytes of a digest as a big-endian u64.
func ShortID(digest []byte) uint64 {
	return binary.BigEndian.Uint64(digest[:8])
}

// MiningDigest hashes site‖nonce_be, used by the mining coordinator.
func MiningDigest(site [DigestLen]byte, nonce uint64) [DigestLen]byte {
	var nonceBE [8]byte
	binary.BigEndian.PutUint64(nonceBE[:], nonce)
	return Hash(site[:], nonceBE[:])
}
