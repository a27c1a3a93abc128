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

// Package mining drives the background worker pool that searches for the
// highest-valued digest of (site ‖ nonce) and exposes the current best
// nonce to the player's status snapshot.
package mining

import (
	"bytes"
	"sync"
	"sync/atomic"

	"github.com/cauchy-team/cauchy/cauchycrypto"
	"github.com/cauchy-team/cauchy/internal/log"
)

var logger = log.New("pkg", "mining")

// Site is the 32-byte value a session mines against.
type Site = [cauchycrypto.DigestLen]byte

// worstDigest sorts below every real digest under byte-wise comparison.
var worstDigest [cauchycrypto.DigestLen]byte

// digestFn computes the mining digest for a (site, nonce) pair. It is a
// package-level seam so tests can substitute a panicking stand-in for one
// worker without perturbing the others.
var digestFn = cauchycrypto.MiningDigest

// Session is one mining run over a fixed site. Workers race to improve
// bestDigest; BestNonce() always reflects the nonce behind the best digest
// any worker has found so far.
type Session struct {
	site       Site
	bestNonce  uint64 // atomic
	digestMu   sync.Mutex
	bestDigest [cauchycrypto.DigestLen]byte
	terminated int32 // atomic bool
}

// BestNonce returns the best nonce found so far in this session.
func (s *Session) BestNonce() uint64 {
	return atomic.LoadUint64(&s.bestNonce)
}

// Site returns the value this session is mining against.
func (s *Session) Site() Site { return s.site }

func (s *Session) terminate() {
	atomic.StoreInt32(&s.terminated, 1)
}

func (s *Session) isTerminated() bool {
	return atomic.LoadInt32(&s.terminated) == 1
}

// offer records a candidate digest/nonce pair if it beats the current best,
// re-checking under the lock since another worker may have raced ahead.
func (s *Session) offer(nonce uint64, digest [cauchycrypto.DigestLen]byte) {
	s.digestMu.Lock()
	defer s.digestMu.Unlock()
	if bytes.Compare(s.bestDigest[:], digest[:]) < 0 {
		s.bestDigest = digest
		atomic.StoreUint64(&s.bestNonce, nonce)
	}
}

// runWorker scans nonces starting at offset, keeping a lock-free local best
// and only touching the shared session state when it has actually improved.
// A panic is contained here so one bad worker never takes down the pool or
// the session; the surviving workers keep searching.
func (s *Session) runWorker(offset uint64) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("mining worker panicked, worker stopped", "offset", offset, "panic", r)
		}
	}()

	best := worstDigest
	for nonce := offset; !s.isTerminated(); nonce++ {
		digest := digestFn(s.site, nonce)
		if bytes.Compare(best[:], digest[:]) < 0 {
			best = digest
			s.offer(nonce, digest)
		}
	}
}
