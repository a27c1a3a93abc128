package sketch

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeSorted(m *Minisketch) []uint64 {
	out := m.Decode()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestMinisketchEmptyDecodesEmpty(t *testing.T) {
	m := NewMinisketch(8)
	assert.Empty(t, m.Decode())
}

func TestMinisketchSingleInsertDecodes(t *testing.T) {
	m := NewMinisketch(8)
	m.Add(5)
	assert.Equal(t, []uint64{5}, m.Decode())
}

func TestMinisketchSymmetricDifference(t *testing.T) {
	// Short-IDs chosen to land on distinct cells under radius 16 so the
	// test isolates reconciliation behaviour from collision handling.
	a := NewMinisketch(16)
	for _, id := range []uint64{1, 2, 3, 4} {
		a.Add(id)
	}
	b := NewMinisketch(16)
	for _, id := range []uint64{3, 4, 5, 6} {
		b.Add(id)
	}

	require.NoError(t, a.Merge(b))
	assert.Equal(t, []uint64{1, 2, 5, 6}, decodeSorted(a))
}

func TestMinisketchBytesRoundTrip(t *testing.T) {
	m := NewMinisketch(4)
	m.Add(9)
	raw := m.Bytes()
	assert.Len(t, raw, 32)

	n, err := MinisketchFromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, m.Decode(), n.Decode())
}

func TestMinisketchMergeRadiusMismatch(t *testing.T) {
	a := NewMinisketch(4)
	b := NewMinisketch(8)
	assert.ErrorIs(t, a.Merge(b), ErrInvalidLength)
}

func TestMinisketchFromBytesInvalidLength(t *testing.T) {
	_, err := MinisketchFromBytes(make([]byte, 5))
	assert.ErrorIs(t, err, ErrInvalidLength)
}
