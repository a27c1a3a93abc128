package consensus

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func onesSketch(n int) []byte {
	s := make([]byte, n)
	for i := range s {
		s[i] = 0xFF
	}
	return s
}

func zerosSketch(n int) []byte {
	return make([]byte, n)
}

func TestCalculateWinnerEmpty(t *testing.T) {
	_, ok := CalculateWinner(nil)
	assert.False(t, ok)
}

func TestCalculateWinnerSingleton(t *testing.T) {
	entries := []Entry{{Oddsketch: onesSketch(4), Mass: big.NewInt(1)}}
	idx, ok := CalculateWinner(entries)
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestCalculateWinnerWeighted(t *testing.T) {
	entries := []Entry{
		{Oddsketch: onesSketch(4), Mass: big.NewInt(1)},
		{Oddsketch: onesSketch(4), Mass: big.NewInt(1)},
		{Oddsketch: zerosSketch(4), Mass: big.NewInt(100)},
	}
	idx, ok := CalculateWinner(entries)
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	pidx, ok := CalculateWinnerParallel(entries)
	assert.True(t, ok)
	assert.Equal(t, idx, pidx)
}

func TestCalculateWinnerTieBreaksEarliest(t *testing.T) {
	entries := []Entry{
		{Oddsketch: zerosSketch(4), Mass: big.NewInt(5)},
		{Oddsketch: zerosSketch(4), Mass: big.NewInt(5)},
	}
	idx, ok := CalculateWinner(entries)
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestCalculateWinnerHigherMassWins(t *testing.T) {
	entries := []Entry{
		{Oddsketch: onesSketch(4), Mass: big.NewInt(10)},
		{Oddsketch: zerosSketch(4), Mass: big.NewInt(11)},
	}
	idx, ok := CalculateWinner(entries)
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
}
