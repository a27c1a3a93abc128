package mining

import (
	"bytes"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cauchy-team/cauchy/cauchycrypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionTerminatesPrevious(t *testing.T) {
	c := NewCoordinator(2)
	var site Site
	site[0] = 1

	first := c.NewSession(site)
	time.Sleep(5 * time.Millisecond)

	var site2 Site
	site2[0] = 2
	second := c.NewSession(site2)

	assert.True(t, first.isTerminated())
	assert.False(t, second.isTerminated())
	assert.Same(t, second, c.CurrentSession())
}

func TestWorkerPanicDoesNotCrashSession(t *testing.T) {
	origDigestFn := digestFn
	defer func() { digestFn = origDigestFn }()

	var panicked int32
	var calls int64
	digestFn = func(site Site, nonce uint64) [cauchycrypto.DigestLen]byte {
		atomic.AddInt64(&calls, 1)
		if nonce%7 == 3 && atomic.CompareAndSwapInt32(&panicked, 0, 1) {
			panic("synthetic panic in mining worker")
		}
		return cauchycrypto.MiningDigest(site, nonce)
	}

	c := NewCoordinator(4)
	var site Site
	session := c.NewSession(site)

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&panicked) == 1
	}, time.Second, time.Millisecond, "expected a worker to hit the synthetic panic")

	// The panicking worker is gone for good, but the surviving 3 must keep
	// calling digestFn — the panic must not have stopped the pool.
	callsAfterPanic := atomic.LoadInt64(&calls)
	require.Eventually(t, func() bool {
		return atomic.LoadInt64(&calls) > callsAfterPanic
	}, time.Second, time.Millisecond, "surviving workers should keep searching after a worker panics")

	session.terminate()
	assert.Same(t, session, c.CurrentSession())
}

func TestBestNonceMonotoneDigest(t *testing.T) {
	c := NewCoordinator(4)
	var site Site
	session := c.NewSession(site)

	var lastDigest [32]byte
	for i := 0; i < 20; i++ {
		time.Sleep(2 * time.Millisecond)
		nonce := session.BestNonce()
		digest := cauchycrypto.MiningDigest(site, nonce)
		require.True(t, bytes.Compare(lastDigest[:], digest[:]) <= 0)
		lastDigest = digest
	}
	session.terminate()
}
