package player

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/cauchy-team/cauchy/mining"
	"github.com/cauchy-team/cauchy/sketch"
	"github.com/cauchy-team/cauchy/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPlayer(radius int) *Player {
	return New(radius, mining.NewCoordinator(1), NopVMFactory{})
}

func sampleTx(seed byte) wire.Transaction {
	return wire.Transaction{Timestamp: uint64(seed), Binary: []byte{seed, seed + 1}, Aux: []byte{}}
}

func TestBroadcastTransactionReflectsInStatus(t *testing.T) {
	p := newTestPlayer(8)

	tx := sampleTx(1)
	require.NoError(t, p.BroadcastTransaction(tx))

	_, status, err := p.GetStatus()
	require.NoError(t, err)

	odd, err := sketch.OddsketchFromBytes(status.Oddsketch)
	require.NoError(t, err)
	empty := sketch.NewOddsketch(8)
	dist, err := sketch.Hamming(odd, empty)
	require.NoError(t, err)
	assert.Greater(t, dist, 0)
}

func TestGetTransactionsByFullIDOmitsMissing(t *testing.T) {
	p := newTestPlayer(8)
	tx := sampleTx(2)
	require.NoError(t, p.BroadcastTransaction(tx))

	full := [wire.DigestLen]byte{0xff}
	got := p.GetTransactionsByFullID([][wire.DigestLen]byte{full})
	assert.Len(t, got, 0)
}

func TestReconcileAgainstResolvesSymmetricDifference(t *testing.T) {
	a := newTestPlayer(16)
	b := newTestPlayer(16)

	shared := sampleTx(10)
	onlyOnA := sampleTx(11)
	onlyOnB := sampleTx(12)

	require.NoError(t, a.BroadcastTransaction(shared))
	require.NoError(t, a.BroadcastTransaction(onlyOnA))
	require.NoError(t, b.BroadcastTransaction(shared))
	require.NoError(t, b.BroadcastTransaction(onlyOnB))

	aMinisketch := a.Snapshot.Minisketch()
	bMinisketch := b.Snapshot.Minisketch()

	txs, err := b.ReconcileAgainst(bMinisketch, aMinisketch)
	require.NoError(t, err)

	// The responder (b) can only return transactions it actually holds;
	// onlyOnA decodes as a symmetric-difference short-ID but is absent
	// from b's mempool and so is silently omitted, per §4.6.
	found := make(map[uint64]bool)
	for _, tx := range txs {
		found[tx.Timestamp] = true
	}
	assert.True(t, found[onlyOnB.Timestamp])
	assert.False(t, found[onlyOnA.Timestamp])
	assert.False(t, found[shared.Timestamp])
}

func TestNewPeerInsertsIntoArena(t *testing.T) {
	p := newTestPlayer(8)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	acceptedCh := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			acceptedCh <- conn
		}
	}()

	dialConn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { dialConn.Close() })
	acceptConn := <-acceptedCh

	require.NoError(t, p.NewPeer(acceptConn))
	assert.Equal(t, 1, p.Arena.Len())
}

func TestNewPeerRemovesFromArenaOnDisconnect(t *testing.T) {
	p := newTestPlayer(8)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	acceptedCh := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			acceptedCh <- conn
		}
	}()

	dialConn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	acceptConn := <-acceptedCh

	require.NoError(t, p.NewPeer(acceptConn))
	require.Equal(t, 1, p.Arena.Len())

	// Dropping the remote end without any explicit Disconnect RPC must
	// still surface as a server-half termination and drain the arena
	// entry, per §3's "entries are removed ... when the peer's server
	// half terminates" invariant.
	require.NoError(t, dialConn.Close())

	require.Eventually(t, func() bool {
		return p.Arena.Len() == 0
	}, time.Second, time.Millisecond, "disconnected peer should be removed from the arena")
}

func TestHeartbeatTickStopsWhenOwnEntryWins(t *testing.T) {
	p := newTestPlayer(8)
	// An empty arena means the heartbeat always finds only the player's
	// own entry, so calculate_winner trivially selects it and the tick
	// returns without attempting any reconcile.
	p.heartbeatTick(4)
}

func TestBeginHeartbeatStopsOnCancel(t *testing.T) {
	p := newTestPlayer(8)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		p.BeginHeartbeat(ctx, 5*time.Millisecond, 4)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BeginHeartbeat did not stop after cancellation")
	}
}
