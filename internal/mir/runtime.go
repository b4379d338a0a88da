// SPDX-License-Identifier: Apache-2.0
package mir

// runtimeSymbols names the canonical module:op/arity callee a runtime
// must provide for each ArithOp (spec.md §6). Lowering never invents
// its own names for these; it looks them up here so the typed-op
// dialect and any future codegen agree on one table.
var runtimeSymbols = map[ArithOp]string{
	ArithAdd:          Callee("erlang", "+", 2),
	ArithSub:          Callee("erlang", "-", 2),
	ArithMul:          Callee("erlang", "*", 2),
	ArithFDiv:         Callee("erlang", "/", 2),
	ArithIDiv:         Callee("erlang", "div", 2),
	ArithRem:          Callee("erlang", "rem", 2),
	ArithBAnd:         Callee("erlang", "band", 2),
	ArithBOr:          Callee("erlang", "bor", 2),
	ArithBXor:         Callee("erlang", "bxor", 2),
	ArithBSL:          Callee("erlang", "bsl", 2),
	ArithBSR:          Callee("erlang", "bsr", 2),
	ArithEq:           Callee("erlang", "==", 2),
	ArithExactEq:      Callee("erlang", "=:=", 2),
	ArithNeq:          Callee("erlang", "/=", 2),
	ArithExactNeq:     Callee("erlang", "=/=", 2),
	ArithLt:           Callee("erlang", "<", 2),
	ArithLte:          Callee("erlang", "=<", 2),
	ArithGt:           Callee("erlang", ">", 2),
	ArithGte:          Callee("erlang", ">=", 2),
	ArithListConcat:   Callee("erlang", "++", 2),
	ArithListSubtract: Callee("erlang", "--", 2),
	ArithNeg:          Callee("erlang", "-", 1),
	ArithBNot:         Callee("erlang", "bnot", 1),
}

// RuntimeSymbol resolves the canonical callee for an arithmetic
// operator. Every ArithOp value has an entry; a missing one is a
// programmer error in this table, not a user-facing condition.
func RuntimeSymbol(op ArithOp) string {
	sym, ok := runtimeSymbols[op]
	if !ok {
		panic("mir: no runtime symbol registered for arith op " + op.String())
	}
	return sym
}

// PrimOpSymbols lists the module-qualified callees the four-state
// receive protocol and exception primitives lower to, for the
// benefit of a typed-op dialect that needs concrete link targets
// rather than PrimOp instructions.
var PrimOpSymbols = map[PrimOpKind]string{
	PrimSend:            Callee("erlang", "send", 2),
	PrimSelf:            Callee("erlang", "self", 0),
	PrimMonitor:         Callee("erlang", "monitor", 2),
	PrimDemonitor:       Callee("erlang", "demonitor", 1),
	PrimBuildStacktrace: Callee("erlang", "build_stacktrace", 0),
	PrimRaise:           Callee("erlang", "raise", 3),
	PrimRecvStart:       Callee("erlang", "recv_start", 0),
	PrimRecvPeek:        Callee("erlang", "recv_peek", 1),
	PrimRecvNext:        Callee("erlang", "recv_next", 1),
	PrimRecvWait:        Callee("erlang", "recv_wait", 2),
	PrimRecvPop:         Callee("erlang", "recv_pop", 1),
}
