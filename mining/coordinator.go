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

package mining

import (
	"math"
	"sync"
)

// Coordinator owns the fixed-size worker pool and the currently running
// session. Starting a new session terminates the previous one's workers
// before spawning fresh ones at disjoint nonce offsets.
type Coordinator struct {
	nWorkers int

	mu      sync.RWMutex
	current *Session
}

// NewCoordinator returns a coordinator that spreads each session across
// nWorkers goroutines. nWorkers must be at least 1.
func NewCoordinator(nWorkers int) *Coordinator {
	if nWorkers < 1 {
		nWorkers = 1
	}
	return &Coordinator{nWorkers: nWorkers}
}

// NWorkers reports the configured worker pool size.
func (c *Coordinator) NWorkers() int { return c.nWorkers }

// CurrentSession returns the session presently running, if any.
func (c *Coordinator) CurrentSession() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// NewSession terminates the previous session's workers and starts a new
// one mining against site, with each of the nWorkers goroutines assigned a
// disjoint starting nonce (MaxUint64 / n * i).
func (c *Coordinator) NewSession(site Site) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		c.current.terminate()
	}

	session := &Session{site: site, bestDigest: worstDigest}
	n := uint64(c.nWorkers)
	stride := math.MaxUint64 / n
	for i := uint64(0); i < n; i++ {
		go session.runWorker(stride * i)
	}

	c.current = session
	return session
}
