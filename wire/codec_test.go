package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStatus() Status {
	var root [DigestLen]byte
	for i := range root {
		root[i] = byte(i)
	}
	return Status{
		Oddsketch: []byte{0x00, 0x00, 0x00, 0x00},
		Root:      root,
		Nonce:     42,
	}
}

func roundTrip(t *testing.T, m Message) Message {
	t.Helper()
	raw, err := Encode(nil, m)
	require.NoError(t, err)

	d := NewDecoder()
	d.Feed(raw)
	got, ok, err := d.Next()
	require.NoError(t, err)
	require.True(t, ok)
	return got
}

func TestRoundTripAllKinds(t *testing.T) {
	status := sampleStatus()
	var id [DigestLen]byte
	id[0] = 0xFF

	cases := []Message{
		Poll{},
		status,
		Reconcile{Sketch: make([]byte, 64)},
		ReconcileResponse{Txs: []Transaction{{Timestamp: 7, Binary: []byte("hi"), Aux: []byte{}}}},
		Transaction{Timestamp: 1, Binary: []byte("hello"), Aux: []byte{}},
		TransactionInv{IDs: [][DigestLen]byte{id}},
		Transactions{Txs: []Transaction{{Timestamp: 2, Binary: []byte("a"), Aux: []byte("b")}}},
	}

	for _, c := range cases {
		got := roundTrip(t, c)
		assert.Equal(t, c, got)
	}
}

// TestByteAtATime verifies the decoder converges on the same message when
// fed one byte at a time as it does when given the whole buffer at once.
func TestByteAtATime(t *testing.T) {
	status := sampleStatus()
	raw, err := Encode(nil, status)
	require.NoError(t, err)

	d := NewDecoder()
	var got Message
	ok := false
	for i := 0; i < len(raw); i++ {
		d.Feed(raw[i : i+1])
		var err error
		got, ok, err = d.Next()
		require.NoError(t, err)
		if ok {
			break
		}
	}
	require.True(t, ok)
	assert.Equal(t, status, got)
}

func TestDecodeIncompleteReturnsFalse(t *testing.T) {
	raw, err := Encode(nil, Poll{})
	require.NoError(t, err)
	raw = append(raw, byte(KindStatus))

	d := NewDecoder()
	d.Feed(raw)

	_, ok, err := d.Next()
	require.NoError(t, err)
	require.True(t, ok)

	// Only the tag byte of a Status follows; nothing should decode yet.
	_, ok, err = d.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecodeUnknownTagIsFatal(t *testing.T) {
	d := NewDecoder()
	d.Feed([]byte{0xFF})
	_, ok, err := d.Next()
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrUnexpectedType)
}

func TestEncodeRejectsMisalignedSketch(t *testing.T) {
	_, err := Encode(nil, Reconcile{Sketch: make([]byte, 5)})
	assert.ErrorIs(t, err, ErrInvalidSketchLength)
}
