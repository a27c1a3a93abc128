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

package player

import (
	"context"
	"time"

	"github.com/cauchy-team/cauchy/arena"
	"github.com/cauchy-team/cauchy/consensus"
	"github.com/cauchy-team/cauchy/mempool"
	"github.com/cauchy-team/cauchy/peer"
	"github.com/cauchy-team/cauchy/wire"
)

// rpcTimeout bounds every individual peer round-trip the heartbeat and
// reconciliation paths issue, so one unresponsive peer cannot stall a
// heartbeat tick indefinitely. §5 does not prescribe a value for this; it
// notes the per-RPC timeout "may be added at the boundary."
const rpcTimeout = 5 * time.Second

// BeginHeartbeat runs the sample-elect-reconcile cycle every interval
// until ctx is cancelled. Each tick samples up to sampleSize peers,
// elects a winner by weighted Hamming distance including the player's
// own entry, and if a peer wins, issues a Reconcile against it. All
// per-peer failures are best-effort and do not interrupt the loop.
func (p *Player) BeginHeartbeat(ctx context.Context, interval time.Duration, sampleSize int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.heartbeatTick(sampleSize)
		}
	}
}

func (p *Player) heartbeatTick(sampleSize int) {
	sampled := arena.Sample(p.Arena, sampleSize, func(c *peer.Client) (wire.Status, error) {
		ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
		defer cancel()
		return c.PollStatus(ctx)
	})

	addrs := make([]string, 0, len(sampled)+1)
	entries := make([]consensus.Entry, 0, len(sampled)+1)
	for addr, status := range sampled {
		addrs = append(addrs, addr)
		entries = append(entries, consensus.EntryFromStatus(p.pubkey, status))
	}

	_, ownStatus, err := p.GetStatus()
	if err != nil {
		logger.Warn("heartbeat: failed reading own status", "err", err)
		return
	}
	addrs = append(addrs, "")
	entries = append(entries, consensus.EntryFromStatus(p.pubkey, ownStatus))
	selfIndex := len(entries) - 1

	winner, ok := consensus.CalculateWinner(entries)
	if !ok {
		return
	}
	if winner == selfIndex {
		logger.Debug("heartbeat: own entry won, nothing to reconcile")
		return
	}

	winnerAddr := addrs[winner]
	minisketch := p.Snapshot.Minisketch()
	txs, err := arena.Directed(p.Arena, winnerAddr, func(c *peer.Client) ([]wire.Transaction, error) {
		ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
		defer cancel()
		return c.Reconcile(ctx, minisketch)
	})
	if err != nil {
		logger.Debug("heartbeat: reconcile against winner failed", "addr", winnerAddr, "err", err)
		p.recordPeerFailure(winnerAddr)
		return
	}
	for _, tx := range txs {
		if p.Mempool.AlreadySeen(mempool.ShortID(tx)) {
			continue
		}
		p.BroadcastTransaction(tx)
	}
}

// recordPeerFailure tallies a failed reconcile against addr and, once it
// crosses the eviction threshold, drops the peer from the arena. This is
// the "peers that repeatedly fail may be logged for eviction" behaviour
// left unspecified in detail by the core design.
func (p *Player) recordPeerFailure(addr string) {
	if p.Arena.RecordFailure(addr) {
		logger.Warn("evicting repeatedly-failing peer", "addr", addr)
		p.RemovePeer(addr)
	}
}
