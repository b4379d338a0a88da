// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"math/big"
	"os"
	"sync"

	"github.com/fatih/color"

	"beamc/internal/ast"
	"beamc/internal/corelower"
	"beamc/internal/corenorm"
	cerrors "beamc/internal/errors"
	"beamc/internal/mir"
	"beamc/internal/symtab"
	"beamc/internal/typedop"
)

// main demonstrates the MIR pipeline end to end: a pair of hand-built
// functions built directly against mir.Builder, standing in for a
// front end this repository deliberately does not have, plus a pair
// of functions driven the way a real front end would drive this
// pipeline — a hand-authored ast.Function tree, run through
// corenorm.Normalizer and then corelower.Lowerer. It declares every
// signature in a shared registry, verifies the dense arenas, lowers
// every function to the typed-op dialect, and prints both textual
// forms.
func main() {
	registry := symtab.NewRegistry()
	module := mir.NewModule("demo")

	sigs := []mir.Signature{addSignature(), receiveLoopSignature(), classifySignature(), waitForPongSignature()}
	for _, sig := range sigs {
		if _, err := module.DeclareFunction(sig); err != nil {
			fail(err)
		}
		if err := registry.Declare(sig, ast.GeneratedSpan(ast.Span{})); err != nil {
			fail(err)
		}
	}

	builders := map[string]func() (*mir.Function, error){
		addSignature().Canonical():         buildAdd,
		receiveLoopSignature().Canonical(): buildReceiveLoop,
	}

	type result struct {
		name string
		fn   *mir.Function
		err  error
	}
	results := make(chan result, len(builders))
	var wg sync.WaitGroup
	for name, build := range builders {
		wg.Add(1)
		go func(name string, build func() (*mir.Function, error)) {
			defer wg.Done()
			fn, err := build()
			results <- result{name: name, fn: fn, err: err}
		}(name, build)
	}
	wg.Wait()
	close(results)

	for r := range results {
		if r.err != nil {
			fail(r.err)
		}
		module.Functions[r.name] = r.fn
	}

	lw := corelower.NewLowerer(registry, module)
	for _, treeFn := range []*ast.Function{classifyTree(), waitForPongTree()} {
		normalized, errs := corenorm.NewNormalizer().NormalizeFunction(treeFn)
		if len(errs) > 0 {
			for _, e := range errs {
				color.Red("beamc: %s", e)
			}
			os.Exit(1)
		}
		sig, _ := registry.Lookup(normalized.Symbol())
		built, errs := lw.LowerFunction(normalized, sig)
		if len(errs) > 0 {
			for _, e := range errs {
				color.Red("beamc: %s", e)
			}
			os.Exit(1)
		}
		module.Functions[sig.Canonical()] = built
	}

	reporter := cerrors.NewReporter("<builtin>", "")
	var diags []*cerrors.CompilerError
	for _, name := range module.FunctionNames() {
		diags = append(diags, mir.Sanity(module.Functions[name])...)
	}
	if len(diags) > 0 {
		for _, d := range diags {
			fmt.Print(reporter.Format(d))
		}
		os.Exit(1)
	}

	typedLw := &typedop.Lowerer{NaNBoxed: false}
	lowered, diags := typedLw.LowerModule(module)
	for _, d := range diags {
		fmt.Print(reporter.Format(d))
	}

	for _, name := range module.FunctionNames() {
		color.Cyan("-- mir: %s --", name)
		fmt.Println(mir.Print(module.Functions[name]))
		color.Cyan("-- typedop: %s --", name)
		fmt.Println(typedop.Print(lowered.Functions[name]))
	}

	color.Green("lowered %d functions", len(module.FunctionNames()))
}

func addSignature() mir.Signature {
	return mir.Signature{
		Module: "demo", Function: "add", Arity: 2,
		Params: []mir.Type{mir.TermT(mir.TermInteger), mir.TermT(mir.TermInteger)},
		Result: mir.TermT(mir.TermInteger),
	}
}

func buildAdd() (*mir.Function, error) {
	b := mir.NewBuilder(addSignature())
	params := b.BlockParams(b.Function().Entry)
	sum, err := b.EmitBinary(mir.ArithAdd, params[0], params[1])
	if err != nil {
		return nil, err
	}
	if err := b.RetImmFlag(false, sum); err != nil {
		return nil, err
	}
	return b.Function(), nil
}

func receiveLoopSignature() mir.Signature {
	return mir.Signature{
		Module: "demo", Function: "receive_loop", Arity: 0,
		Result: mir.TermT(mir.TermAny),
	}
}

// buildReceiveLoop walks the four-state receive protocol (spec.md §3
// PrimOp kinds recv_start/recv_wait/recv_peek/recv_pop) explicitly,
// since this repository has no scheduler to drive a real mailbox.
func buildReceiveLoop() (*mir.Function, error) {
	b := mir.NewBuilder(receiveLoopSignature())
	timeout := b.EmitConst(mir.ConstantItem{Kind: mir.ConstSmallInt, Int: big.NewInt(5000)})
	cursor := b.EmitPrimOp(mir.PrimRecvStart, nil, mir.TermT(mir.TermAny))
	b.EmitPrimOp(mir.PrimRecvWait, []mir.ValueID{cursor, timeout}, mir.TermT(mir.TermAny))
	msg := b.EmitPrimOp(mir.PrimRecvPeek, []mir.ValueID{cursor}, mir.TermT(mir.TermAny))
	b.EmitPrimOp(mir.PrimRecvPop, []mir.ValueID{cursor}, nil)
	if err := b.RetImmFlag(false, msg); err != nil {
		return nil, err
	}
	return b.Function(), nil
}

func classifySignature() mir.Signature {
	return mir.Signature{
		Module: "demo", Function: "classify", Arity: 1,
		Params: []mir.Type{mir.TermT(mir.TermAny)},
		Result: mir.TermT(mir.TermAny),
	}
}

// classifyTree hand-authors the tree a front end would hand the
// normalizer for:
//
//	classify(X) ->
//	    case X of
//	        {ok, V} when V > 0 -> V;
//	        {ok, _} -> 0;
//	        {error, _} -> -1
//	    end.
//
// exercising tuple/wildcard patterns, a guard, and the clause-chain
// compiler's multi-clause dispatch all the way through corelower.
func classifyTree() *ast.Function {
	sp := ast.Span{}
	x := ast.Name("X")
	v := ast.Name("V")
	return &ast.Function{
		Module: "demo", Name: "classify", Arity: 1,
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

func waitForPongSignature() mir.Signature {
	return mir.Signature{
		Module: "demo", Function: "wait_for_pong", Arity: 0,
		Result: mir.TermT(mir.TermAny),
	}
}

// waitForPongTree hand-authors the tree a front end would hand the
// normalizer for:
//
//	wait_for_pong() ->
//	    receive
//	        {pong, N} -> N
//	    after 1000 ->
//	        timeout
//	    end.
//
// exercising corenorm's Receive-to-ReceiveLoop rewrite and corelower's
// four-state mailbox protocol lowering.
func waitForPongTree() *ast.Function {
	sp := ast.Span{}
	n := ast.Name("N")
	return &ast.Function{
		Module: "demo", Name: "wait_for_pong", Arity: 0,
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

func fail(err error) {
	color.Red("beamc: %s", err)
	os.Exit(1)
}
