// SPDX-License-Identifier: Apache-2.0
package corelower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beamc/internal/ast"
	"beamc/internal/corenorm"
	"beamc/internal/mir"
	"beamc/internal/symtab"
)

// freshEnv returns a registry/module pair with sig already declared in
// both, the bookkeeping every caller of Lowerer.LowerFunction is
// expected to have done first.
func freshEnv(t *testing.T, sig mir.Signature) (*symtab.Registry, *mir.Module) {
	t.Helper()
	registry := symtab.NewRegistry()
	module := mir.NewModule("test")
	require.NoError(t, registry.Declare(sig, ast.Span{}))
	_, err := module.DeclareFunction(sig)
	require.NoError(t, err)
	return registry, module
}

func classifySig() mir.Signature {
	return mir.Signature{
		Module: "t", Function: "classify", Arity: 1,
		Params: []mir.Type{mir.TermT(mir.TermAny)},
		Result: mir.TermT(mir.TermAny),
	}
}

func classifyAST() *ast.Function {
	sp := ast.Span{}
	x := ast.Name("X")
	v := ast.Name("V")
	return &ast.Function{
		Module: "t", Name: "classify", Arity: 1,
		Params: []ast.Pattern{&ast.PatVar{Name: x, Sp: sp}},
		Body: &ast.Case{
			Subject: &ast.Var{Name: x, Sp: sp},
			Clauses: []ast.Clause{
				{
					Pattern: &ast.PatTuple{Elems: []ast.Pattern{
						&ast.PatLiteral{Value: ast.AtomLit("ok"), Sp: sp},
						&ast.PatVar{Name: v, Sp: sp},
					}, Sp: sp},
					Guard: &ast.BinOp{Op: ">", Left: &ast.Var{Name: v, Sp: sp}, Right: &ast.Literal{Value: ast.IntLit(0), Sp: sp}, Sp: sp},
					Body:  &ast.Var{Name: v, Sp: sp},
					Sp:    sp,
				},
				{
					Pattern: &ast.PatTuple{Elems: []ast.Pattern{
						&ast.PatLiteral{Value: ast.AtomLit("ok"), Sp: sp},
						&ast.PatWildcard{Sp: sp},
					}, Sp: sp},
					Body: &ast.Literal{Value: ast.IntLit(0), Sp: sp},
					Sp:   sp,
				},
				{
					Pattern: &ast.PatTuple{Elems: []ast.Pattern{
						&ast.PatLiteral{Value: ast.AtomLit("error"), Sp: sp},
						&ast.PatWildcard{Sp: sp},
					}, Sp: sp},
					Body: &ast.Literal{Value: ast.IntLit(-1), Sp: sp},
					Sp:   sp,
				},
			},
			Sp: sp,
		},
		Visibility: ast.Public,
		Sp:         sp,
	}
}

func TestLowerFunctionClassifyProducesSaneFunction(t *testing.T) {
	sig := classifySig()
	registry, module := freshEnv(t, sig)

	normalized, errs := corenorm.NewNormalizer().NormalizeFunction(classifyAST())
	require.Empty(t, errs)

	lw := NewLowerer(registry, module)
	fn, errs := lw.LowerFunction(normalized, sig)
	require.Empty(t, errs)
	require.NotNil(t, fn)

	assert.Empty(t, mir.Sanity(fn))
	// three guarded/literal clauses, the last of which can fail and so
	// ends in a badmatch-raising fail block, means at least four
	// distinct blocks are laid out: entry, the merge join, and at least
	// two fail-chain blocks.
	assert.GreaterOrEqual(t, len(fn.Layout), 4)
}

func waitForPongSig() mir.Signature {
	return mir.Signature{
		Module: "t", Function: "wait_for_pong", Arity: 0,
		Result: mir.TermT(mir.TermAny),
	}
}

func waitForPongAST() *ast.Function {
	sp := ast.Span{}
	n := ast.Name("N")
	return &ast.Function{
		Module: "t", Name: "wait_for_pong", Arity: 0,
		Body: &ast.Receive{
			Clauses: []ast.Clause{
				{
					Pattern: &ast.PatTuple{Elems: []ast.Pattern{
						&ast.PatLiteral{Value: ast.AtomLit("pong"), Sp: sp},
						&ast.PatVar{Name: n, Sp: sp},
					}, Sp: sp},
					Body: &ast.Var{Name: n, Sp: sp},
					Sp:   sp,
				},
			},
			After: &ast.AfterClause{
				Timeout: &ast.Literal{Value: ast.IntLit(1000), Sp: sp},
				Body:    &ast.Literal{Value: ast.AtomLit("timeout"), Sp: sp},
			},
			Sp: sp,
		},
		Visibility: ast.Public,
		Sp:         sp,
	}
}

func TestLowerFunctionWaitForPongLowersReceiveLoop(t *testing.T) {
	sig := waitForPongSig()
	registry, module := freshEnv(t, sig)

	normalized, errs := corenorm.NewNormalizer().NormalizeFunction(waitForPongAST())
	require.Empty(t, errs)
	require.IsType(t, &ast.ReceiveLoop{}, normalized.Body)

	lw := NewLowerer(registry, module)
	fn, errs := lw.LowerFunction(normalized, sig)
	require.Empty(t, errs)
	require.NotNil(t, fn)

	assert.Empty(t, mir.Sanity(fn))
	// loop, ready, blocked, timeout, done, entry: six blocks minimum.
	assert.GreaterOrEqual(t, len(fn.Layout), 6)
}

func noTimeoutWaitSig() mir.Signature {
	return mir.Signature{Module: "t", Function: "wait_forever", Arity: 0, Result: mir.TermT(mir.TermAny)}
}

func noTimeoutWaitAST() *ast.Function {
	sp := ast.Span{}
	n := ast.Name("N")
	return &ast.Function{
		Module: "t", Name: "wait_forever", Arity: 0,
		Body: &ast.Receive{
			Clauses: []ast.Clause{
				{
					Pattern: &ast.PatTuple{Elems: []ast.Pattern{
						&ast.PatLiteral{Value: ast.AtomLit("pong"), Sp: sp},
						&ast.PatVar{Name: n, Sp: sp},
					}, Sp: sp},
					Body: &ast.Var{Name: n, Sp: sp},
					Sp:   sp,
				},
			},
			Sp: sp,
		},
		Visibility: ast.Public,
		Sp:         sp,
	}
}

// TestLowerFunctionReceiveWithoutTimeoutSkipsTimeoutBlock exercises the
// no-After path: blocked waits on 'infinity' and there is no timeout
// block to switch into.
func TestLowerFunctionReceiveWithoutTimeoutSkipsTimeoutBlock(t *testing.T) {
	sig := noTimeoutWaitSig()
	registry, module := freshEnv(t, sig)

	normalized, errs := corenorm.NewNormalizer().NormalizeFunction(noTimeoutWaitAST())
	require.Empty(t, errs)

	lw := NewLowerer(registry, module)
	fn, errs := lw.LowerFunction(normalized, sig)
	require.Empty(t, errs)

	assert.Empty(t, mir.Sanity(fn))
}

func TestLowerFunctionApplyResolvesRegisteredCallee(t *testing.T) {
	addSig := mir.Signature{
		Module: "t", Function: "add", Arity: 2,
		Params: []mir.Type{mir.TermT(mir.TermInteger), mir.TermT(mir.TermInteger)},
		Result: mir.TermT(mir.TermInteger),
	}
	callerSig := mir.Signature{
		Module: "t", Function: "caller", Arity: 0,
		Result: mir.TermT(mir.TermAny),
	}

	registry := symtab.NewRegistry()
	module := mir.NewModule("test")
	require.NoError(t, registry.Declare(addSig, ast.Span{}))
	require.NoError(t, registry.Declare(callerSig, ast.Span{}))
	_, err := module.DeclareFunction(callerSig)
	require.NoError(t, err)

	sp := ast.Span{}
	callerAST := &ast.Function{
		Module: "t", Name: "caller", Arity: 0,
		Body: &ast.Apply{
			Module:   "t",
			Function: "add",
			Args: []ast.Expr{
				&ast.Literal{Value: ast.IntLit(1), Sp: sp},
				&ast.Literal{Value: ast.IntLit(2), Sp: sp},
			},
			Sp: sp,
		},
		Visibility: ast.Public,
		Sp:         sp,
	}

	lw := NewLowerer(registry, module)
	fn, errs := lw.LowerFunction(callerAST, callerSig)
	require.Empty(t, errs)
	assert.Empty(t, mir.Sanity(fn))
}

// TestLowerFunctionApplyToUndeclaredCalleeReportsDiagnostic confirms an
// unresolved call target is reported rather than silently accepted.
func TestLowerFunctionApplyToUndeclaredCalleeReportsDiagnostic(t *testing.T) {
	callerSig := mir.Signature{Module: "t", Function: "caller", Arity: 0, Result: mir.TermT(mir.TermAny)}
	registry, module := freshEnv(t, callerSig)

	sp := ast.Span{}
	callerAST := &ast.Function{
		Module: "t", Name: "caller", Arity: 0,
		Body: &ast.Apply{
			Module: "t", Function: "missing", Args: nil, Sp: sp,
		},
		Visibility: ast.Public,
		Sp:         sp,
	}

	lw := NewLowerer(registry, module)
	_, errs := lw.LowerFunction(callerAST, callerSig)
	require.NotEmpty(t, errs)
}

func TestLowerFunctionFunLiftsClosureAndDeclaresIt(t *testing.T) {
	outerSig := mir.Signature{Module: "t", Function: "make_adder", Arity: 1, Params: []mir.Type{mir.TermT(mir.TermAny)}, Result: mir.TermT(mir.TermAny)}
	registry, module := freshEnv(t, outerSig)

	sp := ast.Span{}
	k := ast.Name("K")
	y := ast.Name("Y")
	outerAST := &ast.Function{
		Module: "t", Name: "make_adder", Arity: 1,
		Params: []ast.Pattern{&ast.PatVar{Name: k, Sp: sp}},
		Body: &ast.Fun{
			Params:   []ast.Pattern{&ast.PatVar{Name: y, Sp: sp}},
			Captures: []ast.Name{k},
			Body:     &ast.BinOp{Op: "+", Left: &ast.Var{Name: k, Sp: sp}, Right: &ast.Var{Name: y, Sp: sp}, Sp: sp},
			Sp:       sp,
		},
		Visibility: ast.Public,
		Sp:         sp,
	}

	lw := NewLowerer(registry, module)
	fn, errs := lw.LowerFunction(outerAST, outerSig)
	require.Empty(t, errs)
	assert.Empty(t, mir.Sanity(fn))

	// the closure body was declared as its own module function.
	assert.Greater(t, len(module.FunctionNames()), 1)
}
