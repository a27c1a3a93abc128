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

// Package arena is the concurrent live-peer registry, addr → peer-client,
// with the three fan-out query shapes the heartbeat and management layer
// use to talk to many peers at once: Directed, Sample and All.
package arena

import (
	"crypto/rand"
	"errors"
	"math/big"
	"sync"

	"github.com/cauchy-team/cauchy/peer"
	mapset "github.com/deckarep/golang-set"
)

// ErrPreexisting is returned by Insert when addr is already present.
var ErrPreexisting = errors.New("arena: peer already present")

// ErrMissing is returned by Directed when addr is not present.
var ErrMissing = errors.New("arena: peer not found")

// evictionThreshold is how many recorded failures against an address mark
// it for eviction. Successes do not reset the tally.
const evictionThreshold = 3

// Arena is a concurrency-safe addr → *peer.Client registry. It also
// tallies per-address failures reported by callers (e.g. a heartbeat's
// failed reconcile) and tracks which addresses have crossed the eviction
// threshold, in a dedup set rather than a second map since membership,
// not count, is all a caller needs once an address is flagged.
type Arena struct {
	mu    sync.RWMutex
	peers map[string]*peer.Client

	failureMu sync.Mutex
	failures  map[string]int
	evicted   mapset.Set
}

// New returns an empty arena.
func New() *Arena {
	return &Arena{
		peers:    make(map[string]*peer.Client),
		failures: make(map[string]int),
		evicted:  mapset.NewSet(),
	}
}

// RecordFailure tallies one failure against addr, returning true the
// moment addr crosses evictionThreshold (at which point its failure
// count is reset and it is added to the evicted set). Callers typically
// follow a true result by removing the peer from the arena.
func (a *Arena) RecordFailure(addr string) bool {
	a.failureMu.Lock()
	defer a.failureMu.Unlock()
	a.failures[addr]++
	if a.failures[addr] < evictionThreshold {
		return false
	}
	delete(a.failures, addr)
	a.evicted.Add(addr)
	return true
}

// IsEvicted reports whether addr has previously crossed the eviction
// threshold.
func (a *Arena) IsEvicted(addr string) bool {
	return a.evicted.Contains(addr)
}

// Insert adds client, keyed by its metadata address. It is rejected with
// ErrPreexisting if that address is already present.
func (a *Arena) Insert(client *peer.Client) error {
	addr := client.GetMetadata().Addr.String()
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.peers[addr]; ok {
		return ErrPreexisting
	}
	a.evicted.Remove(addr)
	a.peers[addr] = client
	return nil
}

// Remove drops addr's entry, returning the removed client so the caller
// can close it (dropping the client half cancels its server half).
func (a *Arena) Remove(addr string) (*peer.Client, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	client, ok := a.peers[addr]
	if ok {
		delete(a.peers, addr)
	}
	return client, ok
}

// Get returns the client for addr, if present.
func (a *Arena) Get(addr string) (*peer.Client, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	client, ok := a.peers[addr]
	return client, ok
}

// Len reports the number of peers currently registered.
func (a *Arena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.peers)
}

// snapshot returns a point-in-time copy of the registry so fan-out
// operators never hold the map lock across a peer call.
func (a *Arena) snapshot() map[string]*peer.Client {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string]*peer.Client, len(a.peers))
	for addr, client := range a.peers {
		out[addr] = client
	}
	return out
}

// Directed invokes fn against exactly the peer at addr, or ErrMissing if
// no such peer is registered.
func Directed[T any](a *Arena, addr string, fn func(*peer.Client) (T, error)) (T, error) {
	var zero T
	client, ok := a.Get(addr)
	if !ok {
		return zero, ErrMissing
	}
	return fn(client)
}

// Sample invokes fn concurrently against up to k peers chosen uniformly at
// random without replacement, returning only the successful results.
func Sample[T any](a *Arena, k int, fn func(*peer.Client) (T, error)) map[string]T {
	all := a.snapshot()
	addrs := make([]string, 0, len(all))
	for addr := range all {
		addrs = append(addrs, addr)
	}
	shuffle(addrs)
	if k < len(addrs) {
		addrs = addrs[:k]
	}

	targets := make(map[string]*peer.Client, len(addrs))
	for _, addr := range addrs {
		targets[addr] = all[addr]
	}
	return fanOut(targets, fn)
}

// All invokes fn concurrently against every registered peer, returning
// only the successful results.
func All[T any](a *Arena, fn func(*peer.Client) (T, error)) map[string]T {
	return fanOut(a.snapshot(), fn)
}

func fanOut[T any](targets map[string]*peer.Client, fn func(*peer.Client) (T, error)) map[string]T {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		out = make(map[string]T, len(targets))
	)
	for addr, client := range targets {
		wg.Add(1)
		go func(addr string, client *peer.Client) {
			defer wg.Done()
			res, err := fn(client)
			if err != nil {
				return
			}
			mu.Lock()
			out[addr] = res
			mu.Unlock()
		}(addr, client)
	}
	wg.Wait()
	return out
}

// shuffle performs an in-place Fisher-Yates shuffle using a cryptographic
// random source, so Sample's truncation to the first k elements is an
// unbiased sample without replacement.
func shuffle(addrs []string) {
	for i := len(addrs) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			continue
		}
		jj := int(j.Int64())
		addrs[i], addrs[jj] = addrs[jj], addrs[i]
	}
}
