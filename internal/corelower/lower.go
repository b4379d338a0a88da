// SPDX-License-Identifier: Apache-2.0

// Package corelower translates a normalized internal/ast tree — every
// Match trivial or desugared to Case, every Fun's Captures already
// computed, every Receive already rewritten to a ReceiveLoop (see
// internal/corenorm) — into internal/mir's arena-backed SSA form. It
// is the one pass that actually drives a mir.Builder from source
// syntax rather than hand-built blocks.
package corelower

import (
	"fmt"
	"sync"

	"beamc/internal/ast"
	cerrors "beamc/internal/errors"
	"beamc/internal/mir"
	"beamc/internal/symtab"
)

// Lowerer owns the shared state a module's functions are lowered
// against: the declaration registry sibling functions resolve each
// other's calls through, the module their finished bodies are filed
// into, and a counter for naming closures lifted out of Fun literals.
// Mirrors internal/symtab's own single-writer-registry framing: many
// functions may be lowered concurrently, so every mutation here is
// guarded.
type Lowerer struct {
	registry *symtab.Registry
	module   *mir.Module

	mu      sync.Mutex
	counter int
}

// NewLowerer returns a Lowerer that declares into registry and files
// finished functions into module.
func NewLowerer(registry *symtab.Registry, module *mir.Module) *Lowerer {
	return &Lowerer{registry: registry, module: module}
}

// LowerFunction builds fn's body as a single mir.Function under sig.
// fn.Params is assumed trivial (bare PatVar/PatWildcard) — the shape
// Function's own doc comment says the front end guarantees by having
// already merged multi-clause definitions into a Case over a
// synthetic parameter tuple.
func (lw *Lowerer) LowerFunction(fn *ast.Function, sig mir.Signature) (*mir.Function, []*cerrors.CompilerError) {
	b := mir.NewBuilder(sig)
	c := &fnCtx{lw: lw, fn: fn, b: b, env: make(map[ast.Name]mir.ValueID)}

	params := b.BlockParams(b.Function().Entry)
	for i, p := range fn.Params {
		if i >= len(params) {
			break
		}
		switch pv := p.(type) {
		case *ast.PatVar:
			c.env[pv.Name] = params[i]
		case *ast.PatWildcard:
			// binds nothing
		default:
			c.errf(cerrors.ErrorUnsupportedConstruct, pv.Span(),
				"function parameter %d is not a trivial pattern after normalization", i)
		}
	}

	result := c.evalValue(fn.Body)
	c.checkErr(b.RetImmFlag(false, result))
	return b.Function(), c.errs
}

// freshClosureName mints a unique local symbol for a Fun literal's
// lifted body, scoped under the enclosing function's own name so two
// closures in unrelated functions never collide.
func (lw *Lowerer) freshClosureName(parent ast.Name) string {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	lw.counter++
	return fmt.Sprintf("%s$fun%d", parent, lw.counter)
}

// declareAndBuild registers sig in both the module and the registry,
// lowers fn's body against it, and files the finished function —
// the sequence every closure synthesized out of a Fun literal goes
// through, alongside LowerFunction's direct top-level callers.
func (lw *Lowerer) declareAndBuild(fn *ast.Function, sig mir.Signature) (*mir.Function, []*cerrors.CompilerError) {
	var errs []*cerrors.CompilerError

	if err := lw.registry.Declare(sig, fn.Sp); err != nil {
		if ce, ok := err.(*cerrors.CompilerError); ok {
			errs = append(errs, ce)
		}
	}

	built, buildErrs := lw.LowerFunction(fn, sig)
	errs = append(errs, buildErrs...)

	lw.mu.Lock()
	lw.module.Functions[sig.Canonical()] = built
	lw.mu.Unlock()

	return built, errs
}

// fnCtx is the per-function lowering state: the builder under
// construction, the name environment (source name to already-bound
// SSA value — this dialect has no mutable locals, so one map per
// function suffices), and the enclosing function for closure naming.
type fnCtx struct {
	lw   *Lowerer
	fn   *ast.Function
	b    *mir.Builder
	env  map[ast.Name]mir.ValueID
	errs []*cerrors.CompilerError
}

func (c *fnCtx) errf(code string, span ast.Span, format string, args ...interface{}) {
	c.errs = append(c.errs, cerrors.UnsupportedErr(code, fmt.Sprintf(format, args...), span))
}

func (c *fnCtx) checkErr(err error) {
	if err == nil {
		return
	}
	if ce, ok := err.(*cerrors.CompilerError); ok {
		c.errs = append(c.errs, ce)
		return
	}
	c.errs = append(c.errs, cerrors.Structural(cerrors.ErrorUnsupportedConstruct, err.Error(), ast.GeneratedSpan(ast.Span{})))
}

// alwaysFalse materializes a genuine i1 false by comparing two
// distinct boolean constants, for use as a placeholder value in error
// paths that must still hand the caller something of the right kind.
func (c *fnCtx) alwaysFalse() mir.ValueID {
	t := c.b.EmitConst(mir.ConstantItem{Kind: mir.ConstBool, Bool: true})
	f := c.b.EmitConst(mir.ConstantItem{Kind: mir.ConstBool, Bool: false})
	v, _ := c.b.EmitBinary(mir.ArithExactEq, t, f)
	return v
}

// evalValue lowers e, returning the SSA value its evaluation
// produces. Every case leaves the builder's insertion point at a
// live, unsealed block, including the cases (Raise, and indirectly
// Case/ReceiveLoop clauses that raise) whose own block terminates:
// those open a fresh unreachable block first, so a caller that
// threads further code after an expression always has somewhere
// well-formed to emit into.
func (c *fnCtx) evalValue(e ast.Expr) mir.ValueID {
	switch e := e.(type) {
	case *ast.Var:
		if v, ok := c.env[e.Name]; ok {
			return v
		}
		c.errf(cerrors.ErrorUnsupportedConstruct, e.Sp, "reference to unbound name %q", e.Name)
		return c.alwaysFalse()

	case *ast.Literal:
		return c.b.EmitConst(litConst(e.Value))

	case *ast.NilLitExpr:
		return c.b.EmitConst(mir.ConstantItem{Kind: mir.ConstNil})

	case *ast.TupleLit:
		elems := make([]mir.ValueID, len(e.Elems))
		for i, el := range e.Elems {
			elems[i] = c.evalValue(el)
		}
		return c.b.EmitPrimOp(mir.PrimMakeTuple, elems, mir.TermT(mir.TermTupleKind))

	case *ast.Cons:
		h := c.evalValue(e.Head)
		t := c.evalValue(e.Tail)
		return c.b.EmitPrimOp(mir.PrimMakeCons, []mir.ValueID{h, t}, mir.TermT(mir.TermConsKind))

	case *ast.MapLit:
		args := make([]mir.ValueID, 0, len(e.Pairs)*2)
		for _, p := range e.Pairs {
			args = append(args, c.evalValue(p.Key), c.evalValue(p.Value))
		}
		return c.b.EmitPrimOp(mir.PrimMakeMap, args, mir.TermT(mir.TermMapKind))

	case *ast.BinaryLit:
		c.errf(cerrors.ErrorUnsupportedConstruct, e.Sp,
			"bitstring construction is not yet lowered by this builder")
		return c.alwaysFalse()

	case *ast.BinOp:
		return c.evalBinOp(e)

	case *ast.UnOp:
		return c.evalUnOp(e)

	case *ast.Apply:
		return c.evalApply(e)

	case *ast.ApplyValue:
		return c.evalApplyValue(e)

	case *ast.Match:
		return c.evalMatch(e)

	case *ast.Seq:
		var v mir.ValueID
		for _, sub := range e.Exprs {
			v = c.evalValue(sub)
		}
		return v

	case *ast.Case:
		return c.evalCase(e)

	case *ast.Fun:
		return c.evalFun(e)

	case *ast.Receive:
		c.errf(cerrors.ErrorUnsupportedConstruct, e.Sp,
			"a Receive node reached tree-to-MIR lowering without being normalized to a ReceiveLoop")
		return c.alwaysFalse()

	case *ast.ReceiveLoop:
		return c.evalReceiveLoop(e)

	case *ast.Raise:
		c.emitRaise(e)
		unreachable := c.b.CreateBlock(nil)
		c.checkErr(c.b.SetInsertionPoint(unreachable))
		return c.alwaysFalse()

	default:
		c.errf(cerrors.ErrorUnsupportedConstruct, e.Span(),
			"tree-to-MIR lowering does not yet support %T", e)
		return c.alwaysFalse()
	}
}

// evalMatch handles the let-binding and defensive refutable-pattern
// cases of Match. corenorm.Normalizer guarantees every surviving Match
// is trivial (PatVar/PatWildcard); the refutable branch below exists
// only as a hardening fallback for a hand-built or future front end
// that feeds this package an un-normalized tree directly.
func (c *fnCtx) evalMatch(e *ast.Match) mir.ValueID {
	val := c.evalValue(e.Value)
	switch p := e.Pattern.(type) {
	case *ast.PatVar:
		c.env[p.Name] = val
		return val
	case *ast.PatWildcard:
		return val
	}

	var failBlock mir.BlockID
	failCreated := false
	fail := func() mir.BlockID {
		if !failCreated {
			failBlock = c.b.CreateBlock(nil)
			failCreated = true
		}
		return failBlock
	}
	c.matchPattern(val, e.Pattern, fail)
	if failCreated {
		cont := c.b.InsertionPoint()
		c.checkErr(c.b.SetInsertionPoint(failBlock))
		c.raiseBadmatch(val)
		c.checkErr(c.b.SetInsertionPoint(cont))
	}
	return val
}

var arithByOp = map[string]mir.ArithOp{
	"+": mir.ArithAdd, "-": mir.ArithSub, "*": mir.ArithMul, "/": mir.ArithFDiv,
	"div": mir.ArithIDiv, "rem": mir.ArithRem,
	"band": mir.ArithBAnd, "bor": mir.ArithBOr, "bxor": mir.ArithBXor,
	"bsl": mir.ArithBSL, "bsr": mir.ArithBSR,
	"==": mir.ArithEq, "=:=": mir.ArithExactEq, "/=": mir.ArithNeq, "=/=": mir.ArithExactNeq,
	"<": mir.ArithLt, "=<": mir.ArithLte, ">": mir.ArithGt, ">=": mir.ArithGte,
	"++": mir.ArithListConcat, "--": mir.ArithListSubtract,
}

func (c *fnCtx) evalBinOp(e *ast.BinOp) mir.ValueID {
	if e.Op == "andalso" || e.Op == "orelse" {
		return c.evalCond(e)
	}
	l := c.evalValue(e.Left)
	r := c.evalValue(e.Right)
	op, ok := arithByOp[e.Op]
	if !ok {
		c.errf(cerrors.ErrorUnsupportedConstruct, e.Sp, "unknown binary operator %q", e.Op)
		return l
	}
	v, err := c.b.EmitBinary(op, l, r)
	c.checkErr(err)
	return v
}

func (c *fnCtx) evalUnOp(e *ast.UnOp) mir.ValueID {
	v := c.evalValue(e.Operand)
	switch e.Op {
	case "-":
		r, err := c.b.EmitUnary(mir.ArithNeg, v)
		c.checkErr(err)
		return r
	case "bnot":
		r, err := c.b.EmitUnary(mir.ArithBNot, v)
		c.checkErr(err)
		return r
	case "not":
		// not X ≡ X =:= false, avoiding a dedicated ArithOp for it.
		f := c.b.EmitConst(mir.ConstantItem{Kind: mir.ConstBool, Bool: false})
		r, err := c.b.EmitBinary(mir.ArithExactEq, v, f)
		c.checkErr(err)
		return r
	default:
		c.errf(cerrors.ErrorUnsupportedConstruct, e.Sp, "unknown unary operator %q", e.Op)
		return v
	}
}

// evalCond lowers a boolean-valued expression used as a branch
// condition (a Case/clause guard, or a nested andalso/orelse),
// short-circuiting andalso/orelse via explicit control flow rather
// than materializing both operands unconditionally.
func (c *fnCtx) evalCond(e ast.Expr) mir.ValueID {
	if bin, ok := e.(*ast.BinOp); ok && (bin.Op == "andalso" || bin.Op == "orelse") {
		left := c.evalCond(bin.Left)
		rightBlk := c.b.CreateBlock(nil)
		merge := c.b.CreateBlock([]mir.Type{mir.PrimT(mir.I1)})
		if bin.Op == "andalso" {
			c.checkErr(c.b.CondBr(left, rightBlk, nil, merge, []mir.ValueID{left}))
		} else {
			c.checkErr(c.b.CondBr(left, merge, []mir.ValueID{left}, rightBlk, nil))
		}
		c.checkErr(c.b.SetInsertionPoint(rightBlk))
		right := c.evalCond(bin.Right)
		c.checkErr(c.b.Br(merge, []mir.ValueID{right}))
		c.checkErr(c.b.SetInsertionPoint(merge))
		return c.b.BlockParams(merge)[0]
	}
	return c.evalValue(e)
}

func (c *fnCtx) evalApply(e *ast.Apply) mir.ValueID {
	args := make([]mir.ValueID, len(e.Args))
	for i, a := range e.Args {
		args[i] = c.evalValue(a)
	}
	module := e.Module
	if module == "" {
		module = c.fn.Module
	}
	symbol := mir.Callee(string(module), string(e.Function), len(e.Args))
	resultType := mir.Type(mir.TermT(mir.TermAny))
	if sig, ok := c.lw.registry.Lookup(symbol); ok {
		resultType = sig.Result
	} else {
		c.errf(cerrors.ErrorUnresolvedCallTarget, e.Sp, "call to undeclared symbol %s", symbol)
	}
	return c.b.EmitCall(symbol, args, resultType)
}

func (c *fnCtx) evalApplyValue(e *ast.ApplyValue) mir.ValueID {
	callee := c.evalValue(e.Callee)
	args := make([]mir.ValueID, len(e.Args))
	for i, a := range e.Args {
		args[i] = c.evalValue(a)
	}
	return c.b.EmitCallIndirect(callee, args, mir.TermT(mir.TermAny))
}

// evalFun lifts a closure literal into a freshly synthesized top-level
// function — captures become its leading parameters, in the order
// corenorm recorded them — and replaces the literal with a MakeFun
// over the capture values already bound in the enclosing scope.
func (c *fnCtx) evalFun(e *ast.Fun) mir.ValueID {
	name := c.lw.freshClosureName(c.fn.Name)

	params := make([]ast.Pattern, 0, len(e.Captures)+len(e.Params))
	paramTypes := make([]mir.Type, 0, cap(params))
	for _, capName := range e.Captures {
		params = append(params, &ast.PatVar{Name: capName, Sp: e.Sp})
		paramTypes = append(paramTypes, mir.TermT(mir.TermAny))
	}
	for _, p := range e.Params {
		params = append(params, p)
		paramTypes = append(paramTypes, mir.TermT(mir.TermAny))
	}

	sig := mir.Signature{
		Module: string(c.fn.Module), Function: name, Arity: len(params),
		Params: paramTypes, Result: mir.TermT(mir.TermAny), Visibility: ast.Private,
	}
	closureFn := &ast.Function{
		Module: c.fn.Module, Name: ast.Name(name), Arity: len(params),
		Params: params, Body: e.Body, Visibility: ast.Private, Sp: e.Sp,
	}
	_, errs := c.lw.declareAndBuild(closureFn, sig)
	c.errs = append(c.errs, errs...)

	captures := make([]mir.ValueID, len(e.Captures))
	for i, capName := range e.Captures {
		if v, ok := c.env[capName]; ok {
			captures[i] = v
		} else {
			c.errf(cerrors.ErrorUnsupportedConstruct, e.Sp,
				"closure capture %q is not bound at its definition site", capName)
		}
	}

	funcSig := &mir.FuncSig{Params: paramTypes[len(e.Captures):], Result: mir.TermT(mir.TermAny)}
	return c.b.EmitMakeFun(sig.Canonical(), captures, funcSig)
}

func (c *fnCtx) evalCase(e *ast.Case) mir.ValueID {
	subject := c.evalValue(e.Subject)
	return c.compileClauseChain(subject, e.Clauses, nil)
}

func (c *fnCtx) emitRaise(r *ast.Raise) {
	class := c.evalValue(r.Class)
	reason := c.evalValue(r.Reason)
	var trace mir.ValueID
	if r.Trace != nil {
		trace = c.evalValue(r.Trace)
	} else {
		trace = c.b.EmitConst(mir.ConstantItem{Kind: mir.ConstNil})
	}
	c.b.EmitPrimOp(mir.PrimRaise, []mir.ValueID{class, reason, trace}, nil)
	c.checkErr(c.b.RetImmFlag(true, reason))
}

func (c *fnCtx) raiseBadmatch(subject mir.ValueID) {
	class := c.b.EmitConst(mir.ConstantItem{Kind: mir.ConstAtom, Atom: "error"})
	badmatch := c.b.EmitConst(mir.ConstantItem{Kind: mir.ConstAtom, Atom: "badmatch"})
	reason := c.b.EmitPrimOp(mir.PrimMakeTuple, []mir.ValueID{badmatch, subject}, mir.TermT(mir.TermTupleKind))
	trace := c.b.EmitConst(mir.ConstantItem{Kind: mir.ConstNil})
	c.b.EmitPrimOp(mir.PrimRaise, []mir.ValueID{class, reason, trace}, nil)
	c.checkErr(c.b.RetImmFlag(true, reason))
}

// litConst converts a scalar ast.Lit to the ConstantItem it
// materializes as, splitting integers on int64 range the way the
// typed-op lowerer's own deferred-constant boundary expects.
func litConst(l ast.Lit) mir.ConstantItem {
	switch l.Kind {
	case ast.LitInt:
		if l.Int.IsInt64() {
			return mir.ConstantItem{Kind: mir.ConstSmallInt, Int: l.Int}
		}
		return mir.ConstantItem{Kind: mir.ConstBigInt, Int: l.Int}
	case ast.LitFloat:
		return mir.ConstantItem{Kind: mir.ConstFloat, Float: l.Float}
	case ast.LitBool:
		return mir.ConstantItem{Kind: mir.ConstBool, Bool: l.Bool}
	case ast.LitAtom:
		return mir.ConstantItem{Kind: mir.ConstAtom, Atom: string(l.Atom)}
	case ast.LitString:
		return mir.ConstantItem{Kind: mir.ConstString, Str: l.Str}
	default:
		return mir.ConstantItem{Kind: mir.ConstNil}
	}
}
