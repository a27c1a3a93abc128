package peer

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/cauchy-team/cauchy/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlayer struct {
	minisketch []byte
	status     wire.Status
	statusErr  error

	txsByFullID []wire.Transaction

	reconcileTxs []wire.Transaction
	reconcileErr error
}

func (f *fakePlayer) GetStatus() ([]byte, wire.Status, error) {
	return f.minisketch, f.status, f.statusErr
}

func (f *fakePlayer) GetTransactionsByFullID(ids [][32]byte) []wire.Transaction {
	return f.txsByFullID
}

func (f *fakePlayer) ReconcileAgainst(perception, peerSketch []byte) ([]wire.Transaction, error) {
	return f.reconcileTxs, f.reconcileErr
}

func newPipePair(t *testing.T, playerA, playerB Player) (*Peer, *Peer) {
	t.Helper()
	connA, connB := net.Pipe()
	a := New(connA, playerA)
	b := New(connB, playerB)
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return a, b
}

func TestPollRoundTrip(t *testing.T) {
	status := wire.Status{Oddsketch: make([]byte, 128), Root: [32]byte{}, Nonce: 42}
	serverPlayer := &fakePlayer{minisketch: []byte("perception"), status: status}

	a, _ := newPipePair(t, &fakePlayer{}, serverPlayer)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := a.Client.PollStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, status, got)

	cached, err := a.Client.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, status, cached)
}

func TestGetStatusBeforePollFails(t *testing.T) {
	a, _ := newPipePair(t, &fakePlayer{}, &fakePlayer{})
	_, err := a.Client.GetStatus()
	assert.ErrorIs(t, err, ErrMissingStatus)
}

func TestReconcileWithoutPriorPollFails(t *testing.T) {
	serverPlayer := &fakePlayer{}
	a, _ := newPipePair(t, &fakePlayer{}, serverPlayer)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	_, err := a.Client.Reconcile(ctx, make([]byte, 32))
	// The reconcile request itself errors server-side (UnexpectedReconcile)
	// which is swallowed at the exchange level, so the initiator simply
	// times out waiting for a reply that never comes; bound the wait.
	assert.Error(t, err)
}

func TestReconcileAfterPollSucceeds(t *testing.T) {
	status := wire.Status{Oddsketch: make([]byte, 16), Nonce: 1}
	wantTxs := []wire.Transaction{{Timestamp: 1, Binary: []byte("x"), Aux: []byte{}}}
	serverPlayer := &fakePlayer{
		minisketch:   []byte("perception"),
		status:       status,
		reconcileTxs: wantTxs,
	}
	a, _ := newPipePair(t, &fakePlayer{}, serverPlayer)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := a.Client.PollStatus(ctx)
	require.NoError(t, err)

	txs, err := a.Client.Reconcile(ctx, make([]byte, 32))
	require.NoError(t, err)
	assert.Equal(t, wantTxs, txs)
}

func TestCloseTerminatesPeerPromptly(t *testing.T) {
	a, b := newPipePair(t, &fakePlayer{}, &fakePlayer{})
	a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_, err := b.Client.PollStatus(ctx)
	assert.Error(t, err)
}

func TestDoneClosesOnClose(t *testing.T) {
	a, _ := newPipePair(t, &fakePlayer{}, &fakePlayer{})
	assert.False(t, a.Client.Closed())

	a.Client.Close()

	select {
	case <-a.Client.Done():
	case <-time.After(time.Second):
		t.Fatal("Done() did not close after Close()")
	}
	assert.True(t, a.Client.Closed())
}

func TestDoneClosesWhenPeerHangsUp(t *testing.T) {
	a, b := newPipePair(t, &fakePlayer{}, &fakePlayer{})
	b.Close()

	select {
	case <-a.Client.Done():
	case <-time.After(time.Second):
		t.Fatal("Done() did not close after the remote end hung up")
	}
	assert.True(t, a.Client.Closed())
}
