// SPDX-License-Identifier: Apache-2.0
package mir

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beamc/internal/ast"
)

func addTwoSig() Signature {
	return Signature{Module: "math", Function: "add", Arity: 2,
		Params: []Type{TermT(TermInteger), TermT(TermInteger)}, Result: TermT(TermInteger)}
}

func TestBuilderSimpleReturnLowering(t *testing.T) {
	b := NewBuilder(addTwoSig())
	params := b.BlockParams(b.Function().Entry)
	require.Len(t, params, 2)
	sum, err := b.EmitBinary(ArithAdd, params[0], params[1])
	require.NoError(t, err)
	require.NoError(t, b.Ret([]ValueID{sum}))

	fn := b.Function()
	errs := Sanity(fn)
	assert.Empty(t, errs)
	assert.Equal(t, TermT(TermInteger), fn.DFG.ValueType(sum))
}

func TestBuilderNumericJoinPromotesToFloat(t *testing.T) {
	sig := Signature{Module: "math", Function: "mix", Arity: 2,
		Params: []Type{TermT(TermInteger), TermT(TermFloat)}, Result: TermT(TermFloat)}
	b := NewBuilder(sig)
	params := b.BlockParams(b.Function().Entry)
	sum, err := b.EmitBinary(ArithAdd, params[0], params[1])
	require.NoError(t, err)
	assert.Equal(t, TermT(TermFloat), b.Function().DFG.ValueType(sum))
}

func TestBuilderComparisonYieldsI1(t *testing.T) {
	b := NewBuilder(addTwoSig())
	params := b.BlockParams(b.Function().Entry)
	eq, err := b.EmitBinary(ArithEq, params[0], params[1])
	require.NoError(t, err)
	assert.Equal(t, PrimT(I1), b.Function().DFG.ValueType(eq))

	lt, err := b.EmitBinary(ArithLt, params[0], params[1])
	require.NoError(t, err)
	assert.Equal(t, PrimT(I1), b.Function().DFG.ValueType(lt))
}

func TestBuilderRejectsNonNumericOperand(t *testing.T) {
	sig := Signature{Module: "math", Function: "bad", Arity: 2,
		Params: []Type{TermT(TermAtom), TermT(TermInteger)}, Result: TermT(TermInteger)}
	b := NewBuilder(sig)
	params := b.BlockParams(b.Function().Entry)
	_, err := b.EmitBinary(ArithAdd, params[0], params[1])
	require.Error(t, err)
}

func TestBuilderBranchArityMismatchIsRejected(t *testing.T) {
	b := NewBuilder(addTwoSig())
	target := b.CreateBlock([]Type{TermT(TermInteger), TermT(TermInteger)})
	params := b.BlockParams(b.Function().Entry)
	err := b.Br(target, []ValueID{params[0]})
	require.Error(t, err)
}

func TestBuilderBranchTypeMismatchIsRejected(t *testing.T) {
	b := NewBuilder(addTwoSig())
	target := b.CreateBlock([]Type{TermT(TermAtom)})
	params := b.BlockParams(b.Function().Entry)
	err := b.Br(target, []ValueID{params[0]})
	require.Error(t, err)
}

func TestBuilderDuplicateTerminatorRejected(t *testing.T) {
	b := NewBuilder(addTwoSig())
	params := b.BlockParams(b.Function().Entry)
	require.NoError(t, b.Ret([]ValueID{params[0]}))
	err := b.Ret([]ValueID{params[1]})
	require.Error(t, err)
}

func TestBuilderSwitchRejectsDuplicateCaseKeys(t *testing.T) {
	b := NewBuilder(addTwoSig())
	okTarget := b.CreateBlock(nil)
	errTarget := b.CreateBlock(nil)
	defTarget := b.CreateBlock(nil)
	one := b.fn.DFG.Const(ConstantItem{Kind: ConstSmallInt, Int: big.NewInt(1)})
	params := b.BlockParams(b.Function().Entry)
	err := b.Switch(params[0], []SwitchCase{
		{Value: one, Target: okTarget},
		{Value: one, Target: errTarget},
	}, defTarget, nil)
	require.Error(t, err)
}

func TestBuilderSetElementGenPositions(t *testing.T) {
	b := NewBuilder(addTwoSig())
	sp := ast.GeneratedSpan(ast.Span{})
	b.SetSpan(sp)
	params := b.BlockParams(b.Function().Entry)
	require.NoError(t, b.Ret([]ValueID{params[0]}))
	fn := b.Function()
	term := fn.DFG.Inst(fn.DFG.Block(fn.Entry).Terminator(fn.DFG))
	assert.True(t, term.Span.Generated)
}
