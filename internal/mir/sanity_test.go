// SPDX-License-Identifier: Apache-2.0
package mir

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanityAcceptsWellFormedFunction(t *testing.T) {
	b := NewBuilder(addTwoSig())
	params := b.BlockParams(b.Function().Entry)
	sum, err := b.EmitBinary(ArithAdd, params[0], params[1])
	require.NoError(t, err)
	require.NoError(t, b.Ret([]ValueID{sum}))

	assert.Empty(t, Sanity(b.Function()))
}

func TestSanityCatchesBranchToBlockWithMismatchedArity(t *testing.T) {
	b := NewBuilder(addTwoSig())
	target := b.CreateBlock([]Type{TermT(TermInteger)})
	// Bypass the builder's own check to simulate a hand-corrupted graph
	// reaching the sanity pass, the same way x/tools' sanity checker
	// re-validates state a malicious or buggy upstream pass could have
	// produced directly in the arena.
	fn := b.Function()
	block := fn.DFG.Block(fn.Entry)
	block.Insts = append(block.Insts, fn.DFG.addInst(fn.Entry, OpBr, BrData{Target: target, Args: nil}))
	block.Sealed = true

	errs := Sanity(fn)
	require.NotEmpty(t, errs)
}

func TestSanityCatchesNonDominatingUse(t *testing.T) {
	b := NewBuilder(addTwoSig())
	entry := b.Function().Entry
	branchB := b.CreateBlock(nil)
	branchC := b.CreateBlock(nil)
	merge := b.CreateBlock(nil)

	params := b.BlockParams(entry)
	require.NoError(t, b.CondBr(params[0], branchB, nil, branchC, nil))

	require.NoError(t, b.SetInsertionPoint(branchB))
	five := b.EmitConst(ConstantItem{Kind: ConstSmallInt, Int: big.NewInt(5)})
	require.NoError(t, b.Br(merge, nil))

	// branchC never runs after branchB, so five does not dominate this
	// use — the same way x/tools' sanity checker would reject an SSA
	// value referenced outside its defining block's dominance subtree.
	require.NoError(t, b.SetInsertionPoint(branchC))
	_, err := b.EmitUnary(ArithNeg, five)
	require.NoError(t, err)
	require.NoError(t, b.Br(merge, nil))

	require.NoError(t, b.SetInsertionPoint(merge))
	require.NoError(t, b.Ret([]ValueID{params[0]}))

	errs := Sanity(b.Function())
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if e.Code == "M0006" {
			found = true
		}
	}
	assert.True(t, found, "expected a non-dominating-use error, got %v", errs)
}

func TestSanityCatchesMissingTerminator(t *testing.T) {
	sig := addTwoSig()
	fn := newFunction(sig)
	entry := fn.DFG.addBlock()
	fn.Entry = entry
	fn.Layout = append(fn.Layout, entry)
	block := fn.DFG.Block(entry)
	one := fn.DFG.Const(ConstantItem{Kind: ConstBool, Bool: true})
	instID := fn.DFG.addInst(entry, OpUnaryConst, UnaryConstData{Result: one})
	block.Insts = append(block.Insts, instID)

	errs := Sanity(fn)
	require.NotEmpty(t, errs)
}
