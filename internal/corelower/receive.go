// SPDX-License-Identifier: Apache-2.0
package corelower

import (
	"beamc/internal/ast"
	"beamc/internal/mir"
)

// evalReceiveLoop lowers a normalized ReceiveLoop into the four-state
// mailbox protocol: recv_start opens a cursor once, then each trip
// through the loop block asks recv_next which of ready/timeout/blocked
// the mailbox is in. ready peeks the head message, dispatches it
// through the same clause-chain machinery Case uses (popping the
// message only once a clause actually matches), timeout evaluates the
// after-body, and blocked waits before looping back.
//
// PrimRecvNext's result is modeled as an atom ('ready'/'timeout'/
// 'blocked') rather than the opaque AuxReceiveState aux type, so it
// can drive an ordinary Switch.
func (c *fnCtx) evalReceiveLoop(rl *ast.ReceiveLoop) mir.ValueID {
	cursor := c.b.EmitPrimOp(mir.PrimRecvStart, nil, mir.AuxT(mir.AuxReceiveContext))

	loop := c.b.CreateBlock(nil)
	c.checkErr(c.b.Br(loop, nil))
	c.checkErr(c.b.SetInsertionPoint(loop))

	state := c.b.EmitPrimOp(mir.PrimRecvNext, []mir.ValueID{cursor}, mir.TermT(mir.TermAtom))

	ready := c.b.CreateBlock(nil)
	blocked := c.b.CreateBlock(nil)
	hasTimeout := rl.Timeout != nil
	var timeoutBlk mir.BlockID
	if hasTimeout {
		timeoutBlk = c.b.CreateBlock(nil)
	}

	readyConst := c.b.InternConst(mir.ConstantItem{Kind: mir.ConstAtom, Atom: "ready"})
	cases := []mir.SwitchCase{{Value: readyConst, Target: ready}}
	if hasTimeout {
		timeoutConst := c.b.InternConst(mir.ConstantItem{Kind: mir.ConstAtom, Atom: "timeout"})
		cases = append(cases, mir.SwitchCase{Value: timeoutConst, Target: timeoutBlk})
	}
	c.checkErr(c.b.Switch(state, cases, blocked, nil))

	c.checkErr(c.b.SetInsertionPoint(ready))
	msg := c.b.EmitPrimOp(mir.PrimRecvPeek, []mir.ValueID{cursor}, mir.TermT(mir.TermAny))
	c.env[rl.Message] = msg
	matched := c.compileClauseChain(msg, rl.Clauses, func() {
		c.b.EmitPrimOp(mir.PrimRecvPop, []mir.ValueID{cursor}, nil)
	})

	// done's parameter type is fixed from the ready path's result here;
	// the timeout path below must produce an operand of the exact same
	// declared type; this dialect has no generic widening/cast
	// instruction to reconcile two different declared types at a merge
	// point (see DESIGN.md).
	done := c.b.CreateBlock([]mir.Type{c.b.Function().DFG.ValueType(matched)})
	c.checkErr(c.b.Br(done, []mir.ValueID{matched}))

	c.checkErr(c.b.SetInsertionPoint(blocked))
	var timeoutArg mir.ValueID
	if hasTimeout {
		timeoutArg = c.evalValue(rl.Timeout)
	} else {
		timeoutArg = c.b.EmitConst(mir.ConstantItem{Kind: mir.ConstAtom, Atom: "infinity"})
	}
	c.b.EmitPrimOp(mir.PrimRecvWait, []mir.ValueID{cursor, timeoutArg}, nil)
	c.checkErr(c.b.Br(loop, nil))

	if hasTimeout {
		c.checkErr(c.b.SetInsertionPoint(timeoutBlk))
		var afterVal mir.ValueID
		if rl.AfterBody != nil {
			afterVal = c.evalValue(rl.AfterBody)
		} else {
			afterVal = c.b.EmitConst(mir.ConstantItem{Kind: mir.ConstNil})
		}
		c.checkErr(c.b.Br(done, []mir.ValueID{afterVal}))
	}

	c.checkErr(c.b.SetInsertionPoint(done))
	return c.b.BlockParams(done)[0]
}
