// SPDX-License-Identifier: Apache-2.0
package typedop

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "beamc/internal/errors"
	"beamc/internal/mir"
)

func intAddSig() mir.Signature {
	return mir.Signature{Module: "math", Function: "add", Arity: 2,
		Params: []mir.Type{mir.TermT(mir.TermInteger), mir.TermT(mir.TermInteger)}, Result: mir.TermT(mir.TermInteger)}
}

func TestLowerFastPathsIntegerAdditionAndBoxesTheResult(t *testing.T) {
	b := mir.NewBuilder(intAddSig())
	params := b.BlockParams(b.Function().Entry)
	sum, err := b.EmitBinary(mir.ArithAdd, params[0], params[1])
	require.NoError(t, err)
	require.NoError(t, b.Ret([]mir.ValueID{sum}))

	lw := &Lowerer{}
	fn, diags := lw.LowerFunction(b.Function())
	require.Empty(t, diags)

	entry := fn.Block(fn.Entry)
	var sawUnbox, sawIntArith, sawBox int
	for _, id := range entry.Ops {
		switch d := fn.Op(id).Data.(type) {
		case CastData:
			if d.Dir == CastUnbox {
				sawUnbox++
			} else {
				sawBox++
			}
		case IntArithData:
			sawIntArith++
			assert.Equal(t, mir.ArithAdd, d.Arith)
		}
	}
	assert.Equal(t, 2, sawUnbox, "both boxed integer params must be unboxed before the fast add")
	assert.Equal(t, 1, sawIntArith)
	assert.GreaterOrEqual(t, sawBox, 1, "the raw i64 sum must be boxed back up before it can be returned")
}

func TestLowerMixedArithmeticFallsBackToRuntimeCall(t *testing.T) {
	sig := mir.Signature{Module: "math", Function: "mix", Arity: 2,
		Params: []mir.Type{mir.TermT(mir.TermInteger), mir.TermT(mir.TermFloat)}, Result: mir.TermT(mir.TermFloat)}
	b := mir.NewBuilder(sig)
	params := b.BlockParams(b.Function().Entry)
	sum, err := b.EmitBinary(mir.ArithAdd, params[0], params[1])
	require.NoError(t, err)
	require.NoError(t, b.Ret([]mir.ValueID{sum}))

	lw := &Lowerer{}
	fn, diags := lw.LowerFunction(b.Function())
	require.Empty(t, diags)

	entry := fn.Block(fn.Entry)
	var call *RuntimeCallData
	for _, id := range entry.Ops {
		if d, ok := fn.Op(id).Data.(RuntimeCallData); ok {
			call = &d
		}
	}
	require.NotNil(t, call, "an integer/float mix must not take the typed fast path")
	assert.Equal(t, mir.RuntimeSymbol(mir.ArithAdd), call.Callee)
}

func TestLowerReturnConventionCarriesBothValues(t *testing.T) {
	b := mir.NewBuilder(intAddSig())
	params := b.BlockParams(b.Function().Entry)
	require.NoError(t, b.RetOk(params[0], params[1]))

	lw := &Lowerer{}
	fn, diags := lw.LowerFunction(b.Function())
	require.Empty(t, diags)

	entry := fn.Block(fn.Entry)
	last := fn.Op(entry.Ops[len(entry.Ops)-1])
	ret, ok := last.Data.(RetData)
	require.True(t, ok)
	assert.Len(t, ret.Values, 2)
}

func TestLowerBigIntegerConstantIsUnsupported(t *testing.T) {
	sig := mir.Signature{Module: "math", Function: "huge", Arity: 0, Result: mir.TermT(mir.TermInteger)}
	b := mir.NewBuilder(sig)
	huge, ok := new(big.Int).SetString("999999999999999999999999999999", 10)
	require.True(t, ok)
	c := b.EmitConst(mir.ConstantItem{Kind: mir.ConstBigInt, Int: huge})
	require.NoError(t, b.Ret([]mir.ValueID{c}))

	lw := &Lowerer{}
	_, diags := lw.LowerFunction(b.Function())
	require.Len(t, diags, 1)
	assert.Equal(t, cerrors.Unsupported, diags[0].Kind)
	assert.Equal(t, cerrors.ErrorDeferredConstant, diags[0].Code)
}

func TestNaNBoxedFloatSkipsCastOnArithmetic(t *testing.T) {
	sig := mir.Signature{Module: "math", Function: "fadd", Arity: 2,
		Params: []mir.Type{mir.TermT(mir.TermFloat), mir.TermT(mir.TermFloat)}, Result: mir.TermT(mir.TermFloat)}
	b := mir.NewBuilder(sig)
	params := b.BlockParams(b.Function().Entry)
	sum, err := b.EmitBinary(mir.ArithAdd, params[0], params[1])
	require.NoError(t, err)
	require.NoError(t, b.Ret([]mir.ValueID{sum}))

	lw := &Lowerer{NaNBoxed: true}
	fn, diags := lw.LowerFunction(b.Function())
	require.Empty(t, diags)

	entry := fn.Block(fn.Entry)
	for _, p := range entry.Params {
		_, packed := fn.ValueType(p).(*PackedFloat)
		assert.True(t, packed, "a NaN-boxed float parameter must translate to PackedFloat, not Boxed")
	}
	var unboxCount int
	for _, id := range entry.Ops {
		if c, ok := fn.Op(id).Data.(CastData); ok && c.Dir == CastUnbox {
			unboxCount++
		}
	}
	assert.Equal(t, 0, unboxCount, "NaN-boxed floats feed the float fast path without an unbox cast")
}
