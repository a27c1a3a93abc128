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
	"fmt"
	"net"

	"github.com/cauchy-team/cauchy/arena"
	"github.com/cauchy-team/cauchy/internal/log"
	"github.com/cauchy-team/cauchy/mempool"
	"github.com/cauchy-team/cauchy/mining"
	"github.com/cauchy-team/cauchy/peer"
	"github.com/cauchy-team/cauchy/sketch"
	"github.com/cauchy-team/cauchy/wire"
)

var logger = log.New("pkg", "player")

// Player is the node's orchestrator: it holds the arena, the mempool, the
// mining coordinator and the shared state snapshot, and is the implementation
// of peer.Player that answers remotely-initiated requests.
type Player struct {
	Arena       *arena.Arena
	Mempool     *mempool.Mempool
	Snapshot    *StateSnapshot
	Coordinator *mining.Coordinator
	VM          VMFactory
	Storage     Storage // nil unless a persistence backend is wired in

	radius int

	// pubkey identifies this node in consensus mass derivation. The
	// reference implementation passes an empty slice here; see
	// DESIGN.md for the open question this leaves about peer identity
	// in the mass computation.
	pubkey []byte
}

// New returns a player with an empty arena and mempool, a zeroed state
// snapshot sized for radius, and vm as its VM-factory collaborator. vm may
// be NopVMFactory{} when no execution backend is configured.
func New(radius int, coordinator *mining.Coordinator, vm VMFactory) *Player {
	return &Player{
		Arena:       arena.New(),
		Mempool:     mempool.New(),
		Snapshot:    NewStateSnapshot(radius),
		Coordinator: coordinator,
		VM:          vm,
		radius:      radius,
	}
}

// GetStatus reads the state snapshot and packages it with the mining
// coordinator's current best nonce, satisfying peer.Player for inbound
// Poll requests and serving the heartbeat's own status, too.
func (p *Player) GetStatus() (minisketch []byte, status wire.Status, err error) {
	var nonce uint64
	if session := p.Coordinator.CurrentSession(); session != nil {
		nonce = session.BestNonce()
	}
	status = wire.Status{
		Oddsketch: p.Snapshot.Oddsketch(),
		Root:      p.Snapshot.Root(),
		Nonce:     nonce,
	}
	return p.Snapshot.Minisketch(), status, nil
}

// GetTransactionsByFullID resolves a TransactionInv request; missing IDs
// are silently omitted, per §4.5.
func (p *Player) GetTransactionsByFullID(ids [][wire.DigestLen]byte) []wire.Transaction {
	return p.Mempool.GetManyByFullID(ids)
}

// ReconcileAgainst hydrates both sketches at this node's radius, merges
// peerSketch into the perception captured at the prior Poll, decodes up
// to radius short-IDs, and resolves each against the local mempool,
// silently omitting any the mempool does not hold.
func (p *Player) ReconcileAgainst(perception, peerSketch []byte) ([]wire.Transaction, error) {
	mine, err := sketch.MinisketchFromBytes(perception)
	if err != nil {
		return nil, err
	}
	theirs, err := sketch.MinisketchFromBytes(peerSketch)
	if err != nil {
		return nil, err
	}
	if err := mine.Merge(theirs); err != nil {
		return nil, err
	}
	ids := mine.Decode()
	return p.Mempool.GetMany(ids), nil
}

// NewPeer frames an accepted socket, builds its client/server halves and
// inserts the client into the arena. The peer is closed and the error
// returned if the arena rejects the insertion (e.g. a stale entry at the
// same remote address has not yet been evicted). Once inserted, a watcher
// goroutine removes the arena entry as soon as the connection's server
// half terminates (I/O error, decode error, or explicit Close), so a peer
// that simply drops its TCP connection does not linger in the arena per
// §3's "entries are removed ... when the peer's server half terminates".
func (p *Player) NewPeer(conn net.Conn) error {
	peerConn := peer.New(conn, p)
	if err := p.Arena.Insert(peerConn.Client); err != nil {
		peerConn.Close()
		return err
	}

	addr := peerConn.Client.GetMetadata().Addr.String()
	go p.watchPeer(addr, peerConn.Client)
	return nil
}

// watchPeer blocks until client's connection terminates, then removes it
// from the arena if it is still the entry registered at addr (a later
// peer may have since reconnected and replaced it).
func (p *Player) watchPeer(addr string, client *peer.Client) {
	<-client.Done()
	if current, ok := p.Arena.Get(addr); ok && current == client {
		p.Arena.Remove(addr)
	}
}

// RemovePeer drops the arena entry at addr, which cancels that peer's
// server half.
func (p *Player) RemovePeer(addr string) {
	client, ok := p.Arena.Remove(addr)
	if !ok {
		return
	}
	client.Close()
}

// BroadcastTransaction runs the VM factory on tx synchronously, then
// unconditionally inserts tx into the mempool and folds its short-ID into
// both sketches under the snapshot's write lock. A VM failure is logged
// and wrapped as ErrVM but does not prevent the mempool/snapshot update;
// see DESIGN.md Open Questions for why the current design proceeds
// regardless.
func (p *Player) BroadcastTransaction(tx wire.Transaction) error {
	var vmErr error
	if p.VM != nil {
		if _, err := p.VM.Execute(tx); err != nil {
			logger.Warn("vm execution failed", "err", err)
			vmErr = err
		}
	}

	short := p.Mempool.Insert(tx)
	p.Snapshot.AddShortID(short)

	if vmErr != nil {
		return fmt.Errorf("%w: %w", ErrVM, vmErr)
	}
	return nil
}
