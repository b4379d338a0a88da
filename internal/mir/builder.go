// SPDX-License-Identifier: Apache-2.0
package mir

import (
	"beamc/internal/ast"
	cerrors "beamc/internal/errors"
)

// Builder is the typed construction surface for one Function: every
// method either returns a well-formed value/instruction or a
// StructuralViolation CompilerError, never a panic, mirroring the
// validate-at-construction-time discipline of x/tools/go/ssa.Builder.
type Builder struct {
	fn      *Function
	dfg     *DataFlowGraph
	current BlockID
	span    ast.Span
}

// NewBuilder starts building a fresh function for sig, with one
// unsealed entry block whose parameters are the function's own
// parameters.
func NewBuilder(sig Signature) *Builder {
	fn := newFunction(sig)
	entry := fn.DFG.addBlock()
	fn.Entry = entry
	fn.Layout = append(fn.Layout, entry)
	b := &Builder{fn: fn, dfg: fn.DFG, current: entry}
	block := fn.DFG.Block(entry)
	for _, pt := range sig.Params {
		v := fn.DFG.addValue(ValueData{Kind: ValueBlockParam, Type: pt, Block: entry, Index: len(block.Params)})
		block.Params = append(block.Params, v)
	}
	return b
}

// Function returns the function under construction. Call it only
// after every block has been sealed.
func (b *Builder) Function() *Function { return b.fn }

// SetSpan attaches span to every instruction subsequently emitted,
// until changed again.
func (b *Builder) SetSpan(span ast.Span) { b.span = span }

// CreateBlock allocates a new unsealed block, not yet reachable from
// any other block until some terminator branches to it.
func (b *Builder) CreateBlock(paramTypes []Type) BlockID {
	id := b.fn.DFG.addBlock()
	b.fn.Layout = append(b.fn.Layout, id)
	block := b.fn.DFG.Block(id)
	for _, pt := range paramTypes {
		v := b.fn.DFG.addValue(ValueData{Kind: ValueBlockParam, Type: pt, Block: id, Index: len(block.Params)})
		block.Params = append(block.Params, v)
	}
	return id
}

// SetInsertionPoint moves subsequent emit calls to target, which must
// not yet be sealed.
func (b *Builder) SetInsertionPoint(target BlockID) error {
	if b.fn.DFG.Block(target).Sealed {
		return cerrors.Structural(cerrors.ErrorDuplicateTerminator,
			"cannot resume emitting into a sealed block", ast.GeneratedSpan(b.span))
	}
	b.current = target
	return nil
}

// InsertionPoint returns the block subsequent emit calls target.
func (b *Builder) InsertionPoint() BlockID { return b.current }

// BlockParams returns the SSA values bound to a block's own parameter
// list, in order.
func (b *Builder) BlockParams(block BlockID) []ValueID {
	return append([]ValueID(nil), b.fn.DFG.Block(block).Params...)
}

func (b *Builder) emit(op Opcode, data InstData, resultType Type) ValueID {
	id := b.fn.DFG.addInst(b.current, op, data)
	inst := b.fn.DFG.Inst(id)
	inst.Span = b.span
	block := b.fn.DFG.Block(b.current)
	block.Insts = append(block.Insts, id)
	if resultType == nil {
		return noValue
	}
	v := b.fn.DFG.addValue(ValueData{Kind: ValueInstResult, Type: resultType, Inst: id})
	inst.Result = v
	return v
}

func (b *Builder) seal(op Opcode, data InstData) error {
	block := b.fn.DFG.Block(b.current)
	if block.Sealed {
		return cerrors.Structural(cerrors.ErrorDuplicateTerminator,
			"block already has a terminator", ast.GeneratedSpan(b.span))
	}
	b.emit(op, data, nil)
	block.Sealed = true
	return nil
}

// EmitBinary appends a runtime-dispatched binary arithmetic/comparison
// instruction. Both operands must be numeric terms for arithmetic ops
// (spec.md §3 type rule); the result is the numeric join of the two.
func (b *Builder) EmitBinary(op ArithOp, x, y ValueID) (ValueID, error) {
	xt, yt := b.fn.DFG.ValueType(x), b.fn.DFG.ValueType(y)
	if op != ArithListConcat && op != ArithListSubtract && op.Arity() == 2 &&
		!isComparison(op) && (!IsNumericTerm(xt) || !IsNumericTerm(yt)) {
		return noValue, cerrors.Structural(cerrors.ErrorNonNumericOperand,
			"binary arithmetic operand is not a numeric term", ast.GeneratedSpan(b.span))
	}
	var result Type
	switch {
	case isComparison(op):
		result = PrimT(I1)
	case op == ArithListConcat || op == ArithListSubtract:
		result = TermT(TermAny)
	default:
		result = NumericJoin(xt, yt)
	}
	return b.emit(OpBinary, BinaryData{Arith: op, X: x, Y: y}, result), nil
}

// EmitUnary appends a runtime-dispatched unary arithmetic instruction.
func (b *Builder) EmitUnary(op ArithOp, x ValueID) (ValueID, error) {
	xt := b.fn.DFG.ValueType(x)
	if op == ArithNeg && !IsNumericTerm(xt) {
		return noValue, cerrors.Structural(cerrors.ErrorNonNumericOperand,
			"unary arithmetic operand is not a numeric term", ast.GeneratedSpan(b.span))
	}
	result := xt
	if op == ArithNeg {
		result = NumericJoin(xt, xt)
	}
	return b.emit(OpUnary, UnaryData{Arith: op, X: x}, result), nil
}

func isComparison(op ArithOp) bool {
	switch op {
	case ArithEq, ArithExactEq, ArithNeq, ArithExactNeq, ArithLt, ArithLte, ArithGt, ArithGte:
		return true
	default:
		return false
	}
}

// EmitConst materializes an interned constant as an SSA value.
func (b *Builder) EmitConst(item ConstantItem) ValueID {
	id := b.InternConst(item)
	return b.emit(OpUnaryConst, UnaryConstData{Result: id}, b.fn.DFG.ConstType(id))
}

// InternConst interns item into the function's constant pool without
// materializing it as an SSA value, for callers that only need a
// ConstID (e.g. a Switch case key).
func (b *Builder) InternConst(item ConstantItem) ConstID {
	return b.fn.DFG.Const(item)
}

// EmitIsType appends a term-kind predicate test, yielding a boolean.
func (b *Builder) EmitIsType(x ValueID, kind TermKind) ValueID {
	return b.emit(OpIsType, IsTypeData{X: x, Term: kind}, TermT(TermBoolean))
}

// EmitPrimOp appends a primitive operation and returns its result
// value (PrimOp kinds that produce no value, like send, return noValue).
func (b *Builder) EmitPrimOp(prim PrimOpKind, args []ValueID, resultType Type) ValueID {
	return b.emit(OpPrimOp, PrimOpData{Prim: prim, Args: args}, resultType)
}

// EmitCall appends a non-tail direct call.
func (b *Builder) EmitCall(callee string, args []ValueID, resultType Type) ValueID {
	return b.emit(OpCall, CallData{Callee: callee, Args: args}, resultType)
}

// EmitCallIndirect appends a non-tail call through a closure value
// rather than a canonical module:function/arity symbol.
func (b *Builder) EmitCallIndirect(fn ValueID, args []ValueID, resultType Type) ValueID {
	return b.emit(OpCallIndirect, CallIndirectData{Fn: fn, Args: args}, resultType)
}

// EmitMakeFun appends a closure-construction instruction.
func (b *Builder) EmitMakeFun(callee string, captures []ValueID, sig *FuncSig) ValueID {
	return b.emit(OpMakeFun, MakeFunData{Callee: callee, Captures: captures}, FunT(sig))
}

// Br seals the current block with an unconditional branch, checking
// the target's parameter arity and types against the supplied
// arguments (spec.md §3 invariant 2, §8 "branch arity mismatch").
func (b *Builder) Br(target BlockID, args []ValueID) error {
	if err := b.checkBranchArgs(target, args); err != nil {
		return err
	}
	return b.seal(OpBr, BrData{Target: target, Args: args})
}

// CondBr seals the current block with a two-way conditional branch.
func (b *Builder) CondBr(cond ValueID, trueTarget BlockID, trueArgs []ValueID, falseTarget BlockID, falseArgs []ValueID) error {
	if err := b.checkBranchArgs(trueTarget, trueArgs); err != nil {
		return err
	}
	if err := b.checkBranchArgs(falseTarget, falseArgs); err != nil {
		return err
	}
	return b.seal(OpCondBr, CondBrData{Cond: cond, TrueTarget: trueTarget, TrueArgs: trueArgs,
		FalseTarget: falseTarget, FalseArgs: falseArgs})
}

// Switch seals the current block with a multi-way dispatch over a
// scrutinee value against a set of constant cases, falling through to
// Default. Duplicate case constants are a structural violation
// (spec.md §8 "duplicate switch key").
func (b *Builder) Switch(scrutinee ValueID, cases []SwitchCase, def BlockID, defArgs []ValueID) error {
	seen := make(map[ConstID]bool, len(cases))
	for _, c := range cases {
		if seen[c.Value] {
			return cerrors.Structural(cerrors.ErrorDuplicateSwitchKey,
				"switch has duplicate case constant", ast.GeneratedSpan(b.span))
		}
		seen[c.Value] = true
		if err := b.checkBranchArgs(c.Target, c.Args); err != nil {
			return err
		}
	}
	if err := b.checkBranchArgs(def, defArgs); err != nil {
		return err
	}
	return b.seal(OpSwitch, SwitchData{Scrutinee: scrutinee, Cases: cases, Default: def, DefaultArgs: defArgs})
}

// Ret seals the current block with a raw return of values. Prefer
// RetOk/RetErr, which enforce the two-element (is-error, payload)
// return convention every function must honor (spec.md §4.2).
func (b *Builder) Ret(values []ValueID) error {
	return b.seal(OpRet, RetData{Values: values})
}

// RetOk seals the current block with a plain Ret of the (flag, value)
// pair. The flag is passed through as given; RetOk does not set or
// check it.
func (b *Builder) RetOk(flag, value ValueID) error {
	return b.Ret([]ValueID{flag, value})
}

// RetImmFlag seals the current block with an immediate i1 error flag
// (RetImm per spec.md §4.2) and a value payload.
func (b *Builder) RetImmFlag(isError bool, value ValueID) error {
	flagConst := b.fn.DFG.Const(ConstantItem{Kind: ConstBool, Bool: isError})
	return b.seal(OpRetImm, RetImmData{Flag: flagConst, Payload: value})
}

// Enter seals the current block with a tail call.
func (b *Builder) Enter(callee string, args []ValueID) error {
	return b.seal(OpEnter, EnterData{Callee: callee, Args: args})
}

func (b *Builder) checkBranchArgs(target BlockID, args []ValueID) error {
	block := b.fn.DFG.Block(target)
	if len(args) != len(block.Params) {
		return cerrors.Structural(cerrors.ErrorBranchArity,
			"branch argument count does not match target block parameter count",
			ast.GeneratedSpan(b.span))
	}
	for i, a := range args {
		want := b.fn.DFG.ValueType(block.Params[i])
		got := b.fn.DFG.ValueType(a)
		if !TypesEqual(want, got) {
			return cerrors.Structural(cerrors.ErrorBranchArity,
				"branch argument type does not match target block parameter type",
				ast.GeneratedSpan(b.span))
		}
	}
	return nil
}
