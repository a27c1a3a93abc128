package sketch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOddsketchEmptyHasZeroDistance(t *testing.T) {
	a := NewOddsketch(4)
	b := NewOddsketch(4)
	d, err := Hamming(a, b)
	require.NoError(t, err)
	assert.Equal(t, 0, d)
}

func TestOddsketchSameSetZeroDistance(t *testing.T) {
	a := NewOddsketch(8)
	b := NewOddsketch(8)
	for _, id := range []uint64{1, 2, 3, 4} {
		a.Add(id)
		b.Add(id)
	}
	d, err := Hamming(a, b)
	require.NoError(t, err)
	assert.Equal(t, 0, d)
}

func TestOddsketchDisjointSetsGrowDistance(t *testing.T) {
	a := NewOddsketch(32)
	b := NewOddsketch(32)
	a.Add(1)
	d1, err := Hamming(a, b)
	require.NoError(t, err)
	assert.Greater(t, d1, 0)

	a.Add(2)
	a.Add(3)
	d2, err := Hamming(a, b)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, d2, d1)
}

func TestOddsketchBytesRoundTrip(t *testing.T) {
	a := NewOddsketch(4)
	a.Add(123)
	raw := a.Bytes()
	assert.Len(t, raw, 16)

	b, err := OddsketchFromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, b.Bytes())
}

func TestOddsketchMergeMismatchedWidth(t *testing.T) {
	a := NewOddsketch(4)
	b := NewOddsketch(8)
	require.Error(t, a.Merge(b))
}
