package arena

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/cauchy-team/cauchy/peer"
	"github.com/cauchy-team/cauchy/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlayer struct {
	status wire.Status
}

func (f *fakePlayer) GetStatus() ([]byte, wire.Status, error) {
	return []byte{}, f.status, nil
}
func (f *fakePlayer) GetTransactionsByFullID(ids [][32]byte) []wire.Transaction { return nil }
func (f *fakePlayer) ReconcileAgainst(perception, peerSketch []byte) ([]wire.Transaction, error) {
	return nil, nil
}

// newConnectedPeer establishes a real loopback TCP connection and returns
// the accept-side Peer, whose RemoteAddr (the dialer's ephemeral port) is
// unique per call — unlike net.Pipe, whose two ends always report the
// same fixed pseudo-address, which would collide in the arena's
// addr-keyed map.
func newConnectedPeer(t *testing.T, nonce uint64) *peer.Peer {
	t.Helper()

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

	status := wire.Status{Oddsketch: make([]byte, 4), Nonce: nonce}
	dialer := peer.New(dialConn, &fakePlayer{status: status})
	acceptor := peer.New(acceptConn, &fakePlayer{})
	t.Cleanup(func() {
		dialer.Close()
		acceptor.Close()
	})
	return acceptor
}

func TestInsertRejectsDuplicate(t *testing.T) {
	a := New()
	p := newConnectedPeer(t, 1)

	require.NoError(t, a.Insert(p.Client))
	assert.ErrorIs(t, a.Insert(p.Client), ErrPreexisting)
}

func TestDirectedMissingReturnsError(t *testing.T) {
	a := New()
	_, err := Directed(a, "127.0.0.1:9", func(c *peer.Client) (wire.Status, error) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return c.PollStatus(ctx)
	})
	assert.ErrorIs(t, err, ErrMissing)
}

func TestDirectedPollsTargetPeer(t *testing.T) {
	a := New()
	p := newConnectedPeer(t, 7)
	addr := p.Client.GetMetadata().Addr.String()
	require.NoError(t, a.Insert(p.Client))

	status, err := Directed(a, addr, func(c *peer.Client) (wire.Status, error) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return c.PollStatus(ctx)
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), status.Nonce)
}

func TestSampleBoundsCountAndDedups(t *testing.T) {
	a := New()
	for i := uint64(0); i < 5; i++ {
		p := newConnectedPeer(t, i)
		require.NoError(t, a.Insert(p.Client))
	}

	results := Sample(a, 3, func(c *peer.Client) (wire.Status, error) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return c.PollStatus(ctx)
	})
	assert.Len(t, results, 3)
}

func TestAllReturnsEverySuccessfulPeer(t *testing.T) {
	a := New()
	for i := uint64(0); i < 3; i++ {
		p := newConnectedPeer(t, i)
		require.NoError(t, a.Insert(p.Client))
	}

	results := All(a, func(c *peer.Client) (wire.Status, error) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return c.PollStatus(ctx)
	})
	assert.Len(t, results, 3)
}

func TestRecordFailureEvictsAfterThreshold(t *testing.T) {
	a := New()
	assert.False(t, a.RecordFailure("peer-1"))
	assert.False(t, a.RecordFailure("peer-1"))
	assert.True(t, a.RecordFailure("peer-1"))
	assert.True(t, a.IsEvicted("peer-1"))
}

func TestInsertClearsPriorEviction(t *testing.T) {
	a := New()
	p := newConnectedPeer(t, 1)
	addr := p.Client.GetMetadata().Addr.String()

	a.RecordFailure(addr)
	a.RecordFailure(addr)
	require.True(t, a.RecordFailure(addr))
	require.True(t, a.IsEvicted(addr))

	require.NoError(t, a.Insert(p.Client))
	assert.False(t, a.IsEvicted(addr))
}

func TestRemoveThenDirectedMisses(t *testing.T) {
	a := New()
	p := newConnectedPeer(t, 1)
	addr := p.Client.GetMetadata().Addr.String()
	require.NoError(t, a.Insert(p.Client))

	client, ok := a.Remove(addr)
	require.True(t, ok)
	client.Close()

	_, err := Directed(a, addr, func(c *peer.Client) (wire.Status, error) {
		return wire.Status{}, nil
	})
	assert.ErrorIs(t, err, ErrMissing)
}
