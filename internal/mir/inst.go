// SPDX-License-Identifier: Apache-2.0
package mir

import "beamc/internal/ast"

// InstData is the payload half of the Inst sum type. Each Opcode has
// exactly one InstData implementation; the builder is the only code
// that is allowed to pair an Opcode with a mismatched InstData.
type InstData interface {
	isInstData()
	Opcode() Opcode
}

// Inst is one instruction: a stable handle, the block it lives in, its
// opcode/payload, the SSA value it defines (noValue if it defines
// none), and the span it was synthesized or translated from.
type Inst struct {
	ID     InstID
	Block  BlockID
	Op     Opcode
	Data   InstData
	Result ValueID
	Span   ast.Span
}

type UnaryData struct {
	Arith ArithOp
	X     ValueID
}

func (UnaryData) isInstData()      {}
func (UnaryData) Opcode() Opcode   { return OpUnary }

type UnaryImmData struct {
	Arith ArithOp
	Imm   ConstID
}

func (UnaryImmData) isInstData()    {}
func (UnaryImmData) Opcode() Opcode { return OpUnaryImm }

type UnaryConstData struct {
	Arith  ArithOp
	Result ConstID
}

func (UnaryConstData) isInstData()    {}
func (UnaryConstData) Opcode() Opcode { return OpUnaryConst }

type BinaryData struct {
	Arith ArithOp
	X, Y  ValueID
}

func (BinaryData) isInstData()    {}
func (BinaryData) Opcode() Opcode { return OpBinary }

type BinaryImmData struct {
	Arith ArithOp
	X     ValueID
	Imm   ConstID
}

func (BinaryImmData) isInstData()    {}
func (BinaryImmData) Opcode() Opcode { return OpBinaryImm }

type BinaryConstData struct {
	Arith ArithOp
	X, Y  ConstID
}

func (BinaryConstData) isInstData()    {}
func (BinaryConstData) Opcode() Opcode { return OpBinaryConst }

// SetElementData updates the element at a runtime index of an
// aggregate as a copying update; the in-place setelement/3-style
// update is the separate SetElementMutData (spec.md §3 tuple update
// note).
type SetElementData struct {
	Base, Index, Value ValueID
}

func (SetElementData) isInstData()    {}
func (SetElementData) Opcode() Opcode { return OpSetElement }

type SetElementImmData struct {
	Base  ValueID
	Index ConstID
	Value ValueID
}

func (SetElementImmData) isInstData()    {}
func (SetElementImmData) Opcode() Opcode { return OpSetElementImm }

type SetElementConstData struct {
	Base  ConstID
	Index ConstID
	Value ValueID
}

func (SetElementConstData) isInstData()    {}
func (SetElementConstData) Opcode() Opcode { return OpSetElementConst }

type SetElementMutData struct {
	Base, Index, Value ValueID
}

func (SetElementMutData) isInstData()    {}
func (SetElementMutData) Opcode() Opcode { return OpSetElementMut }

// IsTypeData is a term-kind predicate test, the building block of
// guard lowering and match-failure dispatch.
type IsTypeData struct {
	X    ValueID
	Term TermKind
}

func (IsTypeData) isInstData()    {}
func (IsTypeData) Opcode() Opcode { return OpIsType }

type BrData struct {
	Target BlockID
	Args   []ValueID
}

func (BrData) isInstData()    {}
func (BrData) Opcode() Opcode { return OpBr }

type BrIfData struct {
	Cond             ValueID
	Target, Fallthru BlockID
	Args             []ValueID
}

func (BrIfData) isInstData()    {}
func (BrIfData) Opcode() Opcode { return OpBrIf }

type BrUnlessData struct {
	Cond             ValueID
	Target, Fallthru BlockID
	Args             []ValueID
}

func (BrUnlessData) isInstData()    {}
func (BrUnlessData) Opcode() Opcode { return OpBrUnless }

type CondBrData struct {
	Cond                   ValueID
	TrueTarget, FalseTarget BlockID
	TrueArgs, FalseArgs    []ValueID
}

func (CondBrData) isInstData()    {}
func (CondBrData) Opcode() Opcode { return OpCondBr }

// SwitchCase is one arm of a Switch: a constant discriminant, the
// target block, and its block-parameter arguments.
type SwitchCase struct {
	Value  ConstID
	Target BlockID
	Args   []ValueID
}

type SwitchData struct {
	Scrutinee           ValueID
	Cases               []SwitchCase
	Default             BlockID
	DefaultArgs         []ValueID
}

func (SwitchData) isInstData()    {}
func (SwitchData) Opcode() Opcode { return OpSwitch }

type RetData struct{ Values []ValueID }

func (RetData) isInstData()    {}
func (RetData) Opcode() Opcode { return OpRet }

// RetImmData is a return whose is-error flag is a literal i1 rather
// than a computed value, carrying the payload as an ordinary operand.
type RetImmData struct {
	Flag    ConstID
	Payload ValueID
}

func (RetImmData) isInstData()    {}
func (RetImmData) Opcode() Opcode { return OpRetImm }

// CallData is a non-tail direct call to a canonical module:function/arity
// symbol; its result feeds later instructions in the same block.
type CallData struct {
	Callee string
	Args   []ValueID
}

func (CallData) isInstData()    {}
func (CallData) Opcode() Opcode { return OpCall }

type CallIndirectData struct {
	Fn   ValueID
	Args []ValueID
}

func (CallIndirectData) isInstData()    {}
func (CallIndirectData) Opcode() Opcode { return OpCallIndirect }

// EnterData is a tail call: a terminator that transfers control
// without returning to the current frame.
type EnterData struct {
	Callee string
	Args   []ValueID
}

func (EnterData) isInstData()    {}
func (EnterData) Opcode() Opcode { return OpEnter }

type EnterIndirectData struct {
	Fn   ValueID
	Args []ValueID
}

func (EnterIndirectData) isInstData()    {}
func (EnterIndirectData) Opcode() Opcode { return OpEnterIndirect }

type PrimOpData struct {
	Prim PrimOpKind
	Args []ValueID
}

func (PrimOpData) isInstData()    {}
func (PrimOpData) Opcode() Opcode { return OpPrimOp }

type PrimOpImmData struct {
	Prim PrimOpKind
	Args []ValueID
	Imm  ConstID
}

func (PrimOpImmData) isInstData()    {}
func (PrimOpImmData) Opcode() Opcode { return OpPrimOpImm }

// MakeFunData packages a closure: a callee symbol plus the captured
// free-variable values, in the order the normalizer fixed them.
type MakeFunData struct {
	Callee   string
	Captures []ValueID
}

func (MakeFunData) isInstData()    {}
func (MakeFunData) Opcode() Opcode { return OpMakeFun }

// BitsMatchStartData begins a binary-match context over a term value.
type BitsMatchStartData struct{ Src ValueID }

func (BitsMatchStartData) isInstData()    {}
func (BitsMatchStartData) Opcode() Opcode { return OpBitsMatchStart }

// BitsMatchData extracts a value of the given segment spec from a
// match context, advancing it.
type BitsMatchData struct {
	Ctx  ValueID
	Spec ast.BinSpec
	Size ValueID // noValue if the segment has a fixed/default size
}

func (BitsMatchData) isInstData()    {}
func (BitsMatchData) Opcode() Opcode { return OpBitsMatch }

// BitsMatchSkipData advances a match context over a segment without
// materializing its value (used for `_:N` discard segments).
type BitsMatchSkipData struct {
	Ctx  ValueID
	Spec ast.BinSpec
	Size ValueID
}

func (BitsMatchSkipData) isInstData()    {}
func (BitsMatchSkipData) Opcode() Opcode { return OpBitsMatchSkip }

// BitsPushData appends a segment to a binary builder.
type BitsPushData struct {
	Dest  ValueID
	Spec  ast.BinSpec
	Value ValueID
	Size  ValueID
}

func (BitsPushData) isInstData()    {}
func (BitsPushData) Opcode() Opcode { return OpBitsPush }
