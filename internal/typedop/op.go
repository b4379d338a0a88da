// SPDX-License-Identifier: Apache-2.0
package typedop

import (
	"beamc/internal/ast"
	"beamc/internal/mir"
)

// OpKind discriminates the dialect's instruction taxonomy, one level
// below mir.Opcode: where MIR leaves an ArithOp to be dispatched at
// runtime, the typed-op dialect has already decided, per operand, fast
// primitive path or boxed runtime call.
type OpKind int

const (
	OpCast OpKind = iota
	OpIntArith
	OpFloatArith
	OpCmp
	OpRuntimeCall
	OpCallIndirect
	OpBr
	OpBrIf
	OpBrUnless
	OpCondBr
	OpSwitch
	OpRet
	OpRetImm
	OpEnter
	OpEnterIndirect
	OpPrimTerm
	OpMakeFun
	OpBitsMatchStart
	OpBitsMatch
	OpBitsMatchSkip
	OpBitsPush
	OpSetElement
	OpIsType
	OpConstMaterialize
	OpUnsupportedConst
)

func (k OpKind) String() string {
	names := [...]string{
		"cast", "int_arith", "float_arith", "cmp", "runtime_call",
		"call_indirect", "br", "br_if", "br_unless", "cond_br", "switch",
		"ret", "ret_imm", "enter", "enter_indirect", "prim_term",
		"make_fun", "bits_match_start", "bits_match", "bits_match_skip",
		"bits_push", "set_element", "is_type", "const", "unsupported_const",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "op?"
}

// IsTerminator mirrors mir.Opcode.IsTerminator one level down.
func (k OpKind) IsTerminator() bool {
	switch k {
	case OpBr, OpBrIf, OpBrUnless, OpCondBr, OpSwitch, OpRet, OpRetImm, OpEnter, OpEnterIndirect:
		return true
	default:
		return false
	}
}

// CastKind is the direction of a cast-insertion Op.
type CastKind int

const (
	// CastUnbox strips tagging, producing a bare machine scalar from a
	// Boxed operand, for feeding a fast primitive op.
	CastUnbox CastKind = iota
	// CastBox tags a bare machine scalar into the generic Boxed term
	// representation, for feeding a boxed consumer (a Ret, a Call
	// argument, a PrimTerm argument) or boxing a fast-path result back
	// to its term type. Branch arguments are passed through uncast.
	CastBox
)

func (k CastKind) String() string {
	if k == CastBox {
		return "box"
	}
	return "unbox"
}

// OpData is the payload half of the Op sum type, mirroring
// mir.InstData one level down.
type OpData interface {
	isOpData()
	Kind() OpKind
}

// Op is one typed-op dialect instruction.
type Op struct {
	ID     OpID
	Block  BlockID
	Kind   OpKind
	Data   OpData
	Result ValueID
	Span   ast.Span
}

type CastData struct {
	Dir  CastKind
	Src  ValueID
	Term mir.TermKind // which term kind is being boxed/unboxed, for printing
}

func (CastData) isOpData()  {}
func (CastData) Kind() OpKind { return OpCast }

// IntArithData is a typed fast-path integer op: both operands are
// already unboxed machine integers.
type IntArithData struct {
	Arith mir.ArithOp
	X, Y  ValueID
}

func (IntArithData) isOpData()  {}
func (IntArithData) Kind() OpKind { return OpIntArith }

type FloatArithData struct {
	Arith mir.ArithOp
	X, Y  ValueID
}

func (FloatArithData) isOpData()  {}
func (FloatArithData) Kind() OpKind { return OpFloatArith }

// CmpData is a typed fast-path comparison over unboxed operands,
// producing an i1 result.
type CmpData struct {
	Arith mir.ArithOp
	X, Y  ValueID
}

func (CmpData) isOpData()  {}
func (CmpData) Kind() OpKind { return OpCmp }

// RuntimeCallData is a direct call to a canonical module:function/arity
// symbol operating on Boxed operands: either an ordinary mir.CallData
// carried across, or the boxed fallback path for an ArithOp the
// lowerer could not prove safe to unbox.
type RuntimeCallData struct {
	Callee string
	Args   []ValueID
}

func (RuntimeCallData) isOpData()  {}
func (RuntimeCallData) Kind() OpKind { return OpRuntimeCall }

type CallIndirectData struct {
	Fn   ValueID
	Args []ValueID
}

func (CallIndirectData) isOpData()  {}
func (CallIndirectData) Kind() OpKind { return OpCallIndirect }

type BrData struct {
	Target BlockID
	Args   []ValueID
}

func (BrData) isOpData()  {}
func (BrData) Kind() OpKind { return OpBr }

type BrIfData struct {
	Cond             ValueID
	Target, Fallthru BlockID
	Args             []ValueID
}

func (BrIfData) isOpData()  {}
func (BrIfData) Kind() OpKind { return OpBrIf }

type BrUnlessData struct {
	Cond             ValueID
	Target, Fallthru BlockID
	Args             []ValueID
}

func (BrUnlessData) isOpData()  {}
func (BrUnlessData) Kind() OpKind { return OpBrUnless }

type CondBrData struct {
	Cond                    ValueID
	TrueTarget, FalseTarget BlockID
	TrueArgs, FalseArgs     []ValueID
}

func (CondBrData) isOpData()  {}
func (CondBrData) Kind() OpKind { return OpCondBr }

type SwitchCase struct {
	Value  ValueID
	Target BlockID
	Args   []ValueID
}

type SwitchData struct {
	Scrutinee   ValueID
	Cases       []SwitchCase
	Default     BlockID
	DefaultArgs []ValueID
}

func (SwitchData) isOpData()  {}
func (SwitchData) Kind() OpKind { return OpSwitch }

type RetData struct{ Values []ValueID }

func (RetData) isOpData()  {}
func (RetData) Kind() OpKind { return OpRet }

type RetImmData struct {
	Flag    ValueID
	Payload ValueID
}

func (RetImmData) isOpData()  {}
func (RetImmData) Kind() OpKind { return OpRetImm }

type EnterData struct {
	Callee string
	Args   []ValueID
}

func (EnterData) isOpData()  {}
func (EnterData) Kind() OpKind { return OpEnter }

type EnterIndirectData struct {
	Fn   ValueID
	Args []ValueID
}

func (EnterIndirectData) isOpData()  {}
func (EnterIndirectData) Kind() OpKind { return OpEnterIndirect }

// PrimTermData is the structural carry-over of a mir.PrimOpData: every
// tuple/cons/map/binary/process primitive already operates on Boxed
// terms, so it translates 1:1 with no cast insertion of its own (the
// cast rule runs on whatever fed its arguments).
type PrimTermData struct {
	Prim mir.PrimOpKind
	Args []ValueID
}

func (PrimTermData) isOpData()  {}
func (PrimTermData) Kind() OpKind { return OpPrimTerm }

type MakeFunData struct {
	Callee   string
	Captures []ValueID
}

func (MakeFunData) isOpData()  {}
func (MakeFunData) Kind() OpKind { return OpMakeFun }

type BitsMatchStartData struct{ Src ValueID }

func (BitsMatchStartData) isOpData()  {}
func (BitsMatchStartData) Kind() OpKind { return OpBitsMatchStart }

type BitsMatchData struct {
	Ctx  ValueID
	Spec ast.BinSpec
	Size ValueID
}

func (BitsMatchData) isOpData()  {}
func (BitsMatchData) Kind() OpKind { return OpBitsMatch }

type BitsMatchSkipData struct {
	Ctx  ValueID
	Spec ast.BinSpec
	Size ValueID
}

func (BitsMatchSkipData) isOpData()  {}
func (BitsMatchSkipData) Kind() OpKind { return OpBitsMatchSkip }

type BitsPushData struct {
	Dest  ValueID
	Spec  ast.BinSpec
	Value ValueID
	Size  ValueID
}

func (BitsPushData) isOpData()  {}
func (BitsPushData) Kind() OpKind { return OpBitsPush }

// SetElementData carries both the copying and in-place mir variants;
// Mut distinguishes them since the dialect keeps the same op shape for
// both (the distinction matters to the back end, not to this pass).
type SetElementData struct {
	Base, Index, Value ValueID
	Mut                bool
}

func (SetElementData) isOpData()  {}
func (SetElementData) Kind() OpKind { return OpSetElement }

type IsTypeData struct {
	X    ValueID
	Term mir.TermKind
}

func (IsTypeData) isOpData()  {}
func (IsTypeData) Kind() OpKind { return OpIsType }

// ConstMaterializeData loads a scalar constant pool entry into a fresh
// value of the constant's translated term type (Boxed, or PackedFloat
// for a float when NaN boxing is selected).
type ConstMaterializeData struct {
	Item mir.ConstantItem
}

func (ConstMaterializeData) isOpData()  {}
func (ConstMaterializeData) Kind() OpKind { return OpConstMaterialize }

// UnsupportedConstData is a placeholder left in place of a constant
// the lowerer has no translation for yet (spec.md §9 Open Question
// (a)): big integers, binaries, tuples, lists and maps. The Lowerer
// also returns an Unsupported CompilerError alongside it; this Op exists so
// the resulting Function stays structurally well-formed for printing.
type UnsupportedConstData struct {
	Kind mir.ConstKind
}

func (UnsupportedConstData) isOpData()  {}
func (UnsupportedConstData) Kind() OpKind { return OpUnsupportedConst }
