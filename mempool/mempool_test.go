package mempool

import (
	"testing"

	"github.com/cauchy-team/cauchy/wire"
	"github.com/stretchr/testify/assert"
)

func TestInsertAndGet(t *testing.T) {
	m := New()
	tx := wire.Transaction{Timestamp: 1, Binary: []byte("hello"), Aux: []byte{}}

	id := m.Insert(tx)
	got, ok := m.Get(id)
	assert.True(t, ok)
	assert.Equal(t, tx, got)
	assert.Equal(t, 1, m.Len())
}

func TestShortIDIgnoresAux(t *testing.T) {
	a := wire.Transaction{Timestamp: 1, Binary: []byte("hello"), Aux: []byte("one")}
	b := wire.Transaction{Timestamp: 1, Binary: []byte("hello"), Aux: []byte("two")}
	assert.Equal(t, ShortID(a), ShortID(b))
}

func TestGetManyOmitsMissing(t *testing.T) {
	m := New()
	tx := wire.Transaction{Timestamp: 1, Binary: []byte("a"), Aux: []byte{}}
	id := m.Insert(tx)

	got := m.GetMany([]uint64{id, 0xdeadbeef})
	assert.Len(t, got, 1)
	assert.Equal(t, tx, got[0])
}

func TestGetManyByFullIDOmitsMissing(t *testing.T) {
	m := New()
	tx := wire.Transaction{Timestamp: 1, Binary: []byte("a"), Aux: []byte{}}
	m.Insert(tx)
	full := FullID(tx)

	var missing [32]byte
	missing[0] = 0xAA

	got := m.GetManyByFullID([][32]byte{full, missing})
	assert.Len(t, got, 1)
	assert.Equal(t, tx, got[0])
}
