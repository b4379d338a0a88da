// SPDX-License-Identifier: Apache-2.0
package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFreeVarsExcludesLocalBindings(t *testing.T) {
	// fun() -> X = 99 end, evaluated where X is already known outside.
	body := &Match{
		Pattern: &PatVar{Name: "X"},
		Value:   &Literal{Value: IntLit(99)},
	}
	fn := &Fun{Params: nil, Body: body}

	free := FreeVars(fn)
	assert.Empty(t, free, "a fun that only binds its own local X captures nothing")
}

func TestFreeVarsTupleCapturesOuterBindings(t *testing.T) {
	// fun() -> {X, Y} end captures both X and Y.
	fn := &Fun{
		Body: &TupleLit{Elems: []Expr{&Var{Name: "X"}, &Var{Name: "Y"}}},
	}
	free := FreeVars(fn)
	assert.Contains(t, free, Name("X"))
	assert.Contains(t, free, Name("Y"))
}

func TestBoundNamesOrderAndDuplicates(t *testing.T) {
	p := &PatTuple{Elems: []Pattern{
		&PatVar{Name: "X"},
		&PatVar{Name: "X"},
		&PatVar{Name: "Y"},
	}}
	names := BoundNames(p)
	assert.Equal(t, []Name{"X", "X", "Y"}, names)
}

func TestIsTrivial(t *testing.T) {
	assert.True(t, IsTrivial(&PatVar{Name: "X"}))
	assert.True(t, IsTrivial(&PatWildcard{}))
	assert.False(t, IsTrivial(&PatTuple{}))
	assert.False(t, IsTrivial(&PatLiteral{Value: IntLit(1)}))
}

func TestLiteralStringForms(t *testing.T) {
	assert.Equal(t, "7", IntLit(7).String())
	assert.Equal(t, "true", BoolLit(true).String())
	assert.Equal(t, "ok", AtomLit("ok").String())
	assert.Equal(t, "[]", NilLit().String())
}

func TestBinSpecWholeByteBinaryNarrowing(t *testing.T) {
	spec := BinSpec{Kind: BinSpecBinary, Unit: 8}
	assert.True(t, spec.IsWholeByteBinary())

	bits := BinSpec{Kind: BinSpecBinary, Unit: 1}
	assert.False(t, bits.IsWholeByteBinary())
}
