// SPDX-License-Identifier: Apache-2.0
package mir

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantPoolInterningIsIdempotent(t *testing.T) {
	pool := newConstantPool()
	a := pool.Intern(ConstantItem{Kind: ConstSmallInt, Int: big.NewInt(42)})
	b := pool.Intern(ConstantItem{Kind: ConstSmallInt, Int: big.NewInt(42)})
	assert.Equal(t, a, b)
	assert.Equal(t, 1, pool.Len())
}

func TestConstantPoolDistinctValuesGetDistinctIDs(t *testing.T) {
	pool := newConstantPool()
	a := pool.Intern(ConstantItem{Kind: ConstAtom, Atom: "ok"})
	b := pool.Intern(ConstantItem{Kind: ConstAtom, Atom: "error"})
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, pool.Len())
}

func TestConstantPoolBigIntegerRoundTrips(t *testing.T) {
	pool := newConstantPool()
	big1, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)
	id := pool.Intern(ConstantItem{Kind: ConstBigInt, Int: big1})
	got := pool.Get(id)
	assert.Equal(t, 0, big1.Cmp(got.Int))
}

func TestConstantPoolRecursiveTupleDedup(t *testing.T) {
	pool := newConstantPool()
	okAtom := pool.Intern(ConstantItem{Kind: ConstAtom, Atom: "ok"})
	one := pool.Intern(ConstantItem{Kind: ConstSmallInt, Int: big.NewInt(1)})
	tup1 := pool.Intern(ConstantItem{Kind: ConstTuple, Elems: []ConstID{okAtom, one}})
	tup2 := pool.Intern(ConstantItem{Kind: ConstTuple, Elems: []ConstID{okAtom, one}})
	assert.Equal(t, tup1, tup2)
}

func TestConstantPoolTypeOf(t *testing.T) {
	pool := newConstantPool()
	atomID := pool.Intern(ConstantItem{Kind: ConstAtom, Atom: "ok"})
	assert.Equal(t, TermT(TermAtom), pool.TypeOf(atomID))

	binID := pool.Intern(ConstantItem{Kind: ConstBitstring, Bits: BitLit{Data: []byte{1}, TrailBits: 0}})
	assert.Equal(t, TermT(TermBinary), pool.TypeOf(binID))

	bitsID := pool.Intern(ConstantItem{Kind: ConstBitstring, Bits: BitLit{Data: []byte{1}, TrailBits: 3}})
	assert.Equal(t, TermT(TermBitstring), pool.TypeOf(bitsID))
}
