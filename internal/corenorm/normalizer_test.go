// SPDX-License-Identifier: Apache-2.0
package corenorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beamc/internal/ast"
)

func fn(params []ast.Pattern, body ast.Expr) *ast.Function {
	return &ast.Function{Module: "t", Name: "f", Arity: len(params), Params: params, Body: body}
}

// collectVarNames gathers every distinct Var name appearing anywhere
// in e, for assertions that don't want to pattern-match the whole tree.
func collectVarNames(e ast.Expr) map[ast.Name]int {
	counts := map[ast.Name]int{}
	var walk func(ast.Expr)
	walkPat := func(p ast.Pattern) {
		for _, n := range ast.BoundNames(p) {
			counts[n]++
		}
	}
	walk = func(e ast.Expr) {
		switch e := e.(type) {
		case *ast.Var:
			counts[e.Name]++
		case *ast.Match:
			walkPat(e.Pattern)
			walk(e.Value)
		case *ast.Seq:
			for _, x := range e.Exprs {
				walk(x)
			}
		case *ast.BinOp:
			walk(e.Left)
			walk(e.Right)
		case *ast.Case:
			walk(e.Subject)
			for _, c := range e.Clauses {
				walkPat(c.Pattern)
				if c.Guard != nil {
					walk(c.Guard)
				}
				walk(c.Body)
			}
		case *ast.Raise:
			walk(e.Class)
			walk(e.Reason)
		case *ast.TupleLit:
			for _, el := range e.Elems {
				walk(el)
			}
		case *ast.Fun:
			walk(e.Body)
		}
	}
	walk(e)
	return counts
}

func TestRebindingAllocatesFreshNamesAndGuard(t *testing.T) {
	// X = 1, X = 2
	body := &ast.Seq{Exprs: []ast.Expr{
		&ast.Match{Pattern: &ast.PatVar{Name: "X"}, Value: &ast.Literal{Value: ast.IntLit(1)}},
		&ast.Match{Pattern: &ast.PatVar{Name: "X"}, Value: &ast.Literal{Value: ast.IntLit(2)}},
	}}
	out, errs := NewNormalizer().NormalizeFunction(fn(nil, body))
	require.Empty(t, errs)

	// Expect two distinct fresh bindings and a nested Case somewhere
	// performing the equality-strict guard + badmatch raise.
	var foundCase bool
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		switch e := e.(type) {
		case *ast.Seq:
			for _, x := range e.Exprs {
				walk(x)
			}
		case *ast.Case:
			foundCase = true
			require.Len(t, e.Clauses, 2)
			assert.NotNil(t, e.Clauses[0].Guard)
			_, isRaise := e.Clauses[1].Body.(*ast.Raise)
			assert.True(t, isRaise)
		}
	}
	walk(out.Body)
	assert.True(t, foundCase, "expected a synthesized Case for the second X binding")

	names := collectVarNames(out.Body)
	assert.NotContains(t, names, ast.Name("X"), "source name X should never survive normalization unrenamed")
}

func TestGroupIndependentRebindingInBinOp(t *testing.T) {
	// (X=A) + (X=B)
	left := &ast.Match{Pattern: &ast.PatVar{Name: "X"}, Value: &ast.Var{Name: "A"}}
	right := &ast.Match{Pattern: &ast.PatVar{Name: "X"}, Value: &ast.Var{Name: "B"}}
	body := &ast.BinOp{Op: "+", Left: left, Right: right}
	out, errs := NewNormalizer().NormalizeFunction(fn([]ast.Pattern{&ast.PatVar{Name: "A"}, &ast.PatVar{Name: "B"}}, body))
	require.Empty(t, errs)

	var finalOp *ast.BinOp
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		switch e := e.(type) {
		case *ast.Seq:
			for _, x := range e.Exprs {
				walk(x)
			}
		case *ast.Case:
			for _, c := range e.Clauses {
				walk(c.Body)
			}
		case *ast.BinOp:
			if e.Op == "+" {
				finalOp = e
			}
		}
	}
	walk(out.Body)
	require.NotNil(t, finalOp, "expected the final + to survive lowering")
	lv, ok := finalOp.Left.(*ast.Var)
	require.True(t, ok)
	rv, ok := finalOp.Right.(*ast.Var)
	require.True(t, ok)
	assert.NotEqual(t, lv.Name, rv.Name, "the two operands of + must be distinct SSA values")
}

func TestClosureExcludesSiblingBindings(t *testing.T) {
	// {X=2, fun() -> X = 99 end}
	outerBind := &ast.Match{Pattern: &ast.PatVar{Name: "X"}, Value: &ast.Literal{Value: ast.IntLit(2)}}
	closure := &ast.Fun{Body: &ast.Match{Pattern: &ast.PatVar{Name: "X"}, Value: &ast.Literal{Value: ast.IntLit(99)}}}
	body := &ast.TupleLit{Elems: []ast.Expr{outerBind, closure}}
	out, errs := NewNormalizer().NormalizeFunction(fn(nil, body))
	require.Empty(t, errs)

	var innerFun *ast.Fun
	var findFun func(ast.Expr)
	findFun = func(e ast.Expr) {
		switch e := e.(type) {
		case *ast.Seq:
			for _, x := range e.Exprs {
				findFun(x)
			}
		case *ast.Case:
			for _, c := range e.Clauses {
				findFun(c.Body)
			}
		case *ast.TupleLit:
			for _, el := range e.Elems {
				findFun(el)
			}
		case *ast.Fun:
			innerFun = e
		}
	}
	findFun(out.Body)
	require.NotNil(t, innerFun)
	assert.Empty(t, innerFun.Captures, "the closure must not capture the sibling tuple element's X")
	assert.Equal(t, 0, countCases(innerFun.Body),
		"the closure's own X binding is fresh, not a rebind, so it needs no guard case")
}

func TestReceiveLoweredToReceiveLoop(t *testing.T) {
	recv := &ast.Receive{
		Clauses: []ast.Clause{{Pattern: &ast.PatVar{Name: "M"}, Body: &ast.Var{Name: "M"}}},
		After: &ast.AfterClause{
			Timeout: &ast.Literal{Value: ast.IntLit(100)},
			Body:    &ast.Literal{Value: ast.AtomLit("timeout")},
		},
	}
	out, errs := NewNormalizer().NormalizeFunction(fn(nil, recv))
	require.Empty(t, errs)

	loop, ok := out.Body.(*ast.ReceiveLoop)
	require.True(t, ok, "Receive must be fully replaced by ReceiveLoop")
	require.Len(t, loop.Clauses, 1)
	assert.NotNil(t, loop.Timeout)
	assert.NotNil(t, loop.AfterBody)
}

func countCases(e ast.Expr) int {
	n := 0
	var walk func(ast.Expr)
	walk = func(e ast.Expr) {
		switch e := e.(type) {
		case *ast.Seq:
			for _, x := range e.Exprs {
				walk(x)
			}
		case *ast.Case:
			n++
			for _, c := range e.Clauses {
				walk(c.Body)
			}
		}
	}
	walk(e)
	return n
}

func TestNormalizerIsIdempotent(t *testing.T) {
	body := &ast.Seq{Exprs: []ast.Expr{
		&ast.Match{Pattern: &ast.PatVar{Name: "X"}, Value: &ast.Literal{Value: ast.IntLit(1)}},
		&ast.Match{Pattern: &ast.PatVar{Name: "X"}, Value: &ast.Literal{Value: ast.IntLit(2)}},
	}}
	once, errs := NewNormalizer().NormalizeFunction(fn(nil, body))
	require.Empty(t, errs)
	twice, errs2 := NewNormalizer().NormalizeFunction(once)
	require.Empty(t, errs2)

	assert.Equal(t, countCases(once.Body), countCases(twice.Body),
		"re-normalizing already-fresh, non-repeating names must not introduce new rebinding cases")
}

func TestSetElementSurvivesAsOrdinaryApply(t *testing.T) {
	body := &ast.Apply{Function: "setelement", Args: []ast.Expr{
		&ast.Var{Name: "T"}, &ast.Literal{Value: ast.IntLit(2)}, &ast.Var{Name: "V"},
	}}
	out, errs := NewNormalizer().NormalizeFunction(fn([]ast.Pattern{&ast.PatVar{Name: "T"}, &ast.PatVar{Name: "V"}}, body))
	require.Empty(t, errs)
	apply, ok := out.Body.(*ast.Apply)
	require.True(t, ok)
	assert.Equal(t, ast.Name("setelement"), apply.Function)
	assert.Len(t, apply.Args, 3)
}
