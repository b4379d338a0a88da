// SPDX-License-Identifier: Apache-2.0
package mir

// Opcode discriminates the instruction taxonomy of spec.md §4.2. The
// MIR deliberately uses one tagged-variant Inst type rather than a
// per-opcode struct hierarchy; Opcode plus InstData together are the
// sum type.
type Opcode int

const (
	OpUnary Opcode = iota
	OpUnaryImm
	OpUnaryConst
	OpBinary
	OpBinaryImm
	OpBinaryConst
	OpSetElement
	OpSetElementImm
	OpSetElementConst
	OpSetElementMut
	OpIsType
	OpBr
	OpBrIf
	OpBrUnless
	OpCondBr
	OpSwitch
	OpRet
	OpRetImm
	OpCall
	OpCallIndirect
	OpEnter
	OpEnterIndirect
	OpPrimOp
	OpPrimOpImm
	OpMakeFun
	OpBitsMatchStart
	OpBitsMatch
	OpBitsMatchSkip
	OpBitsPush
)

func (op Opcode) String() string {
	names := [...]string{
		"unary", "unary_imm", "unary_const",
		"binary", "binary_imm", "binary_const",
		"setelement", "setelement_imm", "setelement_const", "setelement_mut",
		"is_type",
		"br", "br_if", "br_unless", "cond_br", "switch",
		"ret", "ret_imm",
		"call", "call_indirect", "enter", "enter_indirect",
		"prim_op", "prim_op_imm",
		"make_fun",
		"bits_match_start", "bits_match", "bits_match_skip", "bits_push",
	}
	if int(op) < len(names) {
		return names[op]
	}
	return "op?"
}

// IsTerminator reports whether op ends a block (spec.md §3 invariant 1).
func (op Opcode) IsTerminator() bool {
	switch op {
	case OpBr, OpBrIf, OpBrUnless, OpCondBr, OpSwitch, OpRet, OpRetImm, OpEnter, OpEnterIndirect:
		return true
	default:
		return false
	}
}

// PrimOpKind names the closed set of non-arithmetic primitive
// operations (spec.md §3: tuple/cons/map/binary construction and
// projection, message send, process/port introspection).
type PrimOpKind int

const (
	PrimMakeTuple PrimOpKind = iota
	PrimTupleElement
	PrimMakeCons
	PrimHead
	PrimTail
	PrimMakeMap
	PrimMapGet
	PrimMapPut
	PrimMapIsKey
	PrimMakeBinary
	PrimBinaryConcat
	PrimSend
	PrimSelf
	PrimMonitor
	PrimDemonitor
	PrimBuildStacktrace
	PrimRaise
	PrimRecvStart
	PrimRecvPeek
	PrimRecvNext
	PrimRecvWait
	PrimRecvPop
)

func (p PrimOpKind) String() string {
	names := [...]string{
		"make_tuple", "tuple_element", "make_cons", "head", "tail",
		"make_map", "map_get", "map_put", "map_is_key",
		"make_binary", "binary_concat",
		"send", "self", "monitor", "demonitor",
		"build_stacktrace", "raise",
		"recv_start", "recv_peek", "recv_next", "recv_wait", "recv_pop",
	}
	if int(p) < len(names) {
		return names[p]
	}
	return "primop?"
}

// ArithOp names the closed set of runtime-dispatched binary and unary
// arithmetic/comparison operators lowered to §6 canonical callees.
type ArithOp int

const (
	ArithAdd ArithOp = iota
	ArithSub
	ArithMul
	ArithFDiv
	ArithIDiv
	ArithRem
	ArithBAnd
	ArithBOr
	ArithBXor
	ArithBSL
	ArithBSR
	ArithEq
	ArithExactEq
	ArithNeq
	ArithExactNeq
	ArithLt
	ArithLte
	ArithGt
	ArithGte
	ArithListConcat
	ArithListSubtract
	ArithNeg
	ArithBNot
)

func (a ArithOp) String() string {
	names := [...]string{
		"+", "-", "*", "/", "div", "rem",
		"band", "bor", "bxor", "bsl", "bsr",
		"==", "=:=", "/=", "=/=", "<", "=<", ">", ">=",
		"++", "--", "neg", "bnot",
	}
	if int(a) < len(names) {
		return names[a]
	}
	return "arith?"
}

// Arity returns how many term operands the operator consumes.
func (a ArithOp) Arity() int {
	if a == ArithNeg || a == ArithBNot {
		return 1
	}
	return 2
}
