// SPDX-License-Identifier: Apache-2.0
package corelower

import (
	"math/big"

	"beamc/internal/ast"
	cerrors "beamc/internal/errors"
	"beamc/internal/mir"
)

// compileClauseChain lowers an ordered clause list — a Case's
// Clauses, or the matched-message dispatch inside a ReceiveLoop — as
// a chain of structural tests, each falling through to the next
// clause's test block on failure. When every clause can fail, the
// chain's final fail block raises badmatch on the subject. A Case the
// normalizer synthesizes ends in its own catch-all clause, so its
// chain never reaches that block.
//
// onMatched, if non-nil, runs after a clause's pattern and guard have
// both succeeded but before its body is evaluated — ReceiveLoop uses
// this to pop the matched message off the mailbox at exactly that
// point.
func (c *fnCtx) compileClauseChain(subject mir.ValueID, clauses []ast.Clause, onMatched func()) mir.ValueID {
	var merge mir.BlockID
	mergeCreated := false
	exhausted := len(clauses) > 0

	for _, clause := range clauses {
		var failBlock mir.BlockID
		failCreated := false
		fail := func() mir.BlockID {
			if !failCreated {
				failBlock = c.b.CreateBlock(nil)
				failCreated = true
			}
			return failBlock
		}

		c.matchPattern(subject, clause.Pattern, fail)
		c.evalGuard(clause.Guard, fail)

		if raiseExpr, ok := clause.Body.(*ast.Raise); ok {
			c.emitRaise(raiseExpr)
		} else {
			if onMatched != nil {
				onMatched()
			}
			bodyVal := c.evalValue(clause.Body)
			if !mergeCreated {
				merge = c.b.CreateBlock([]mir.Type{c.b.Function().DFG.ValueType(bodyVal)})
				mergeCreated = true
			}
			c.checkErr(c.b.Br(merge, []mir.ValueID{bodyVal}))
		}

		if !failCreated {
			// this clause's pattern and guard can never fail; any
			// clauses after it are unreachable.
			exhausted = false
			break
		}
		c.checkErr(c.b.SetInsertionPoint(fail()))
	}
	if exhausted {
		c.raiseBadmatch(subject)
	}

	if !mergeCreated {
		// every clause raised; the chain's own last block is still
		// open and sealed with a raise, nothing to merge into.
		return c.alwaysFalse()
	}
	c.checkErr(c.b.SetInsertionPoint(merge))
	return c.b.BlockParams(merge)[0]
}

// branchOnTest conditionally branches to a fresh continuation block
// when ok holds, or to fail() otherwise, leaving the builder's
// insertion point at the continuation.
func (c *fnCtx) branchOnTest(ok mir.ValueID, fail func() mir.BlockID) {
	cont := c.b.CreateBlock(nil)
	c.checkErr(c.b.CondBr(ok, cont, nil, fail(), nil))
	c.checkErr(c.b.SetInsertionPoint(cont))
}

// matchPattern lowers a structural pattern test against subject,
// branching to fail() on the first failing sub-test and binding every
// PatVar it encounters directly into the shared name environment.
// PatBinary (bitstring pattern matching) is deliberately out of scope:
// it is an orthogonal subsystem with no literal-parsing front end in
// this repository yet, and is reported as an unsupported construct
// rather than silently accepted.
func (c *fnCtx) matchPattern(subject mir.ValueID, pat ast.Pattern, fail func() mir.BlockID) {
	switch p := pat.(type) {
	case *ast.PatVar:
		c.env[p.Name] = subject

	case *ast.PatWildcard:
		// matches anything, binds nothing

	case *ast.PatLiteral:
		lit := c.b.EmitConst(litConst(p.Value))
		ok, err := c.b.EmitBinary(mir.ArithExactEq, subject, lit)
		c.checkErr(err)
		c.branchOnTest(ok, fail)

	case *ast.PatNil:
		ok := c.b.EmitIsType(subject, mir.TermNil)
		c.branchOnTest(ok, fail)

	case *ast.PatTuple:
		ok := c.b.EmitIsType(subject, mir.TermTupleKind)
		c.branchOnTest(ok, fail)
		for i, el := range p.Elems {
			idx := c.b.EmitConst(mir.ConstantItem{Kind: mir.ConstSmallInt, Int: big.NewInt(int64(i))})
			elemVal := c.b.EmitPrimOp(mir.PrimTupleElement, []mir.ValueID{subject, idx}, mir.TermT(mir.TermAny))
			c.matchPattern(elemVal, el, fail)
		}

	case *ast.PatCons:
		ok := c.b.EmitIsType(subject, mir.TermConsKind)
		c.branchOnTest(ok, fail)
		head := c.b.EmitPrimOp(mir.PrimHead, []mir.ValueID{subject}, mir.TermT(mir.TermAny))
		tail := c.b.EmitPrimOp(mir.PrimTail, []mir.ValueID{subject}, mir.TermT(mir.TermAny))
		c.matchPattern(head, p.Head, fail)
		c.matchPattern(tail, p.Tail, fail)

	case *ast.PatMap:
		for _, pr := range p.Pairs {
			keyVal := c.evalValue(pr.Key)
			isKey := c.b.EmitPrimOp(mir.PrimMapIsKey, []mir.ValueID{subject, keyVal}, mir.PrimT(mir.I1))
			c.branchOnTest(isKey, fail)
			val := c.b.EmitPrimOp(mir.PrimMapGet, []mir.ValueID{subject, keyVal}, mir.TermT(mir.TermAny))
			c.matchPattern(val, pr.Value, fail)
		}

	default:
		c.errf(cerrors.ErrorUnsupportedConstruct, pat.Span(),
			"tree-to-MIR lowering does not yet support %T patterns", pat)
		c.branchOnTest(c.alwaysFalse(), fail)
	}
}

// evalGuard lowers an optional clause guard, branching to fail() if
// it evaluates to false. A nil guard always passes.
func (c *fnCtx) evalGuard(guard ast.Expr, fail func() mir.BlockID) {
	if guard == nil {
		return
	}
	ok := c.evalCond(guard)
	c.branchOnTest(ok, fail)
}
