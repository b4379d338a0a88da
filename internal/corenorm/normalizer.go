// SPDX-License-Identifier: Apache-2.0
package corenorm

import (
	"fmt"

	"github.com/iancoleman/strcase"

	"beamc/internal/ast"
	cerrors "beamc/internal/errors"
)

// cont is the success continuation threaded through the CPS-style
// walk: given the (already-normalized) value an expression reduced
// to and the known-set as of that point, it produces the rest of the
// computation. A Match that needs a Case hoists itself by wrapping
// whatever its continuation produces inside that Case; a trivial
// Match becomes a plain binding in front of it instead.
type cont func(value ast.Expr, known *Known) (ast.Expr, *Known, []*cerrors.CompilerError)

// Normalizer rewrites one function's body into the canonical core
// tree: every Match is either a plain let-binding or fully desugared
// into an explicit Case with a synthesized badmatch branch, every
// Fun's Captures list is filled in, and every Receive is replaced by
// the cooperative mailbox protocol.
type Normalizer struct {
	counter int
}

// NewNormalizer returns a fresh Normalizer with its own name counter,
// scoped to one function (fresh names must not collide across a
// single function's rewrite, but need not be globally unique).
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// fresh synthesizes a new SSA-friendly name derived from base, unique
// within this Normalizer's lifetime.
func (n *Normalizer) fresh(base string) ast.Name {
	name := fmt.Sprintf("%s%d", strcase.ToSnake(base), n.counter)
	n.counter++
	return ast.Name(name)
}

// NormalizeFunction rewrites fn.Body in place and returns the
// rewritten function. Parameters are bound as their own alias at
// entry.
func (n *Normalizer) NormalizeFunction(fn *ast.Function) (*ast.Function, []*cerrors.CompilerError) {
	known := NewKnown()
	for _, p := range fn.Params {
		for _, name := range ast.BoundNames(p) {
			known = known.Union(map[ast.Name]ast.Name{name: name})
		}
	}
	body, _, errs := n.normalize(fn.Body, known, identityCont)
	return &ast.Function{
		Module: fn.Module, Name: fn.Name, Arity: fn.Arity,
		Params: fn.Params, Body: body, Visibility: fn.Visibility, Sp: fn.Sp,
	}, errs
}

func identityCont(value ast.Expr, known *Known) (ast.Expr, *Known, []*cerrors.CompilerError) {
	return value, known, nil
}

// normalize walks e under known, invoking k with the normalized
// replacement expression once e itself has fully reduced. Compound
// expressions recurse into their own children as a "group": siblings
// thread a running known-set but a closure opened partway through is
// isolated from bindings its not-yet-processed (or already processed)
// siblings contribute.
func (n *Normalizer) normalize(e ast.Expr, known *Known, k cont) (ast.Expr, *Known, []*cerrors.CompilerError) {
	switch e := e.(type) {
	case nil:
		return k(nil, known)

	case *ast.Var:
		resolved := e.Name
		if alias, ok := known.AliasOf(e.Name); ok {
			resolved = alias
		}
		return k(&ast.Var{Name: resolved, Sp: e.Sp}, known)

	case *ast.Literal, *ast.NilLitExpr:
		return k(e, known)

	case *ast.Match:
		return n.normalizeMatch(e, known, k)

	case *ast.Seq:
		return n.normalizeSeq(e.Exprs, known, k)

	case *ast.BinOp:
		return n.normalizeGroup2(e.Left, e.Right, known, func(l, r ast.Expr, known2 *Known) (ast.Expr, *Known, []*cerrors.CompilerError) {
			return k(&ast.BinOp{Op: e.Op, Left: l, Right: r, Sp: e.Sp}, known2)
		})

	case *ast.UnOp:
		return n.normalize(e.Operand, known, func(v ast.Expr, known2 *Known) (ast.Expr, *Known, []*cerrors.CompilerError) {
			return k(&ast.UnOp{Op: e.Op, Operand: v, Sp: e.Sp}, known2)
		})

	case *ast.TupleLit:
		return n.normalizeGroupN(e.Elems, known, func(elems []ast.Expr, known2 *Known) (ast.Expr, *Known, []*cerrors.CompilerError) {
			return k(&ast.TupleLit{Elems: elems, Sp: e.Sp}, known2)
		})

	case *ast.Cons:
		return n.normalizeGroup2(e.Head, e.Tail, known, func(h, t ast.Expr, known2 *Known) (ast.Expr, *Known, []*cerrors.CompilerError) {
			return k(&ast.Cons{Head: h, Tail: t, Sp: e.Sp}, known2)
		})

	case *ast.MapLit:
		keys := make([]ast.Expr, len(e.Pairs))
		vals := make([]ast.Expr, len(e.Pairs))
		for i, p := range e.Pairs {
			keys[i], vals[i] = p.Key, p.Value
		}
		return n.normalizeGroupN(append(append([]ast.Expr(nil), keys...), vals...), known,
			func(flat []ast.Expr, known2 *Known) (ast.Expr, *Known, []*cerrors.CompilerError) {
				pairs := make([]ast.MapPair, len(e.Pairs))
				for i := range e.Pairs {
					pairs[i] = ast.MapPair{Key: flat[i], Value: flat[len(e.Pairs)+i]}
				}
				return k(&ast.MapLit{Pairs: pairs, Sp: e.Sp}, known2)
			})

	case *ast.BinaryLit:
		vals := make([]ast.Expr, len(e.Segments))
		for i, s := range e.Segments {
			vals[i] = s.Value
		}
		return n.normalizeGroupN(vals, known, func(flat []ast.Expr, known2 *Known) (ast.Expr, *Known, []*cerrors.CompilerError) {
			segs := make([]ast.BinSegExpr, len(e.Segments))
			for i, s := range e.Segments {
				segs[i] = ast.BinSegExpr{Value: flat[i], Size: s.Size, Spec: s.Spec}
			}
			return k(&ast.BinaryLit{Segments: segs, Sp: e.Sp}, known2)
		})

	case *ast.Apply:
		return n.normalizeGroupN(e.Args, known, func(args []ast.Expr, known2 *Known) (ast.Expr, *Known, []*cerrors.CompilerError) {
			return k(&ast.Apply{Module: e.Module, Function: e.Function, Args: args, Sp: e.Sp}, known2)
		})

	case *ast.ApplyValue:
		all := append([]ast.Expr{e.Callee}, e.Args...)
		return n.normalizeGroupN(all, known, func(flat []ast.Expr, known2 *Known) (ast.Expr, *Known, []*cerrors.CompilerError) {
			return k(&ast.ApplyValue{Callee: flat[0], Args: flat[1:], Sp: e.Sp}, known2)
		})

	case *ast.Case:
		return n.normalize(e.Subject, known, func(subj ast.Expr, known2 *Known) (ast.Expr, *Known, []*cerrors.CompilerError) {
			clauses, errs := n.normalizeClauses(e.Clauses, known2)
			res, known3, errs2 := k(&ast.Case{Subject: subj, Clauses: clauses, Sp: e.Sp}, known2)
			return res, known3, append(errs, errs2...)
		})

	case *ast.Fun:
		return n.normalizeFun(e, known, k)

	case *ast.Receive:
		return n.lowerReceive(e, known, k)

	case *ast.Raise:
		return n.normalizeGroup2(e.Class, e.Reason, known, func(c, r ast.Expr, known2 *Known) (ast.Expr, *Known, []*cerrors.CompilerError) {
			return k(&ast.Raise{Class: c, Reason: r, Trace: e.Trace, Sp: e.Sp}, known2)
		})

	default:
		return k(e, known)
	}
}

// normalizeGroup2 processes two sibling subexpressions (e.g. a binary
// operator's operands) as a group.
func (n *Normalizer) normalizeGroup2(a, b ast.Expr, known *Known, k func(a, b ast.Expr, known *Known) (ast.Expr, *Known, []*cerrors.CompilerError)) (ast.Expr, *Known, []*cerrors.CompilerError) {
	return n.normalizeGroupN([]ast.Expr{a, b}, known, func(flat []ast.Expr, known2 *Known) (ast.Expr, *Known, []*cerrors.CompilerError) {
		return k(flat[0], flat[1], known2)
	})
}

// normalizeGroupN processes an ordered list of sibling subexpressions
// whose relative evaluation order is unspecified, bracketing them
// with StartGroup/EndBody/EndGroup so a closure opened inside one
// sibling excludes bindings any sibling contributes (spec.md §4.1).
func (n *Normalizer) normalizeGroupN(exprs []ast.Expr, known *Known, k func(flat []ast.Expr, known *Known) (ast.Expr, *Known, []*cerrors.CompilerError)) (ast.Expr, *Known, []*cerrors.CompilerError) {
	grouped := known.StartGroup()
	var allErrs []*cerrors.CompilerError
	out := make([]ast.Expr, len(exprs))
	var step func(i int, cur *Known) (ast.Expr, *Known, []*cerrors.CompilerError)
	step = func(i int, cur *Known) (ast.Expr, *Known, []*cerrors.CompilerError) {
		if i == len(exprs) {
			final := cur.EndGroup()
			res, known3, errs := k(out, final)
			return res, known3, append(allErrs, errs...)
		}
		return n.normalize(exprs[i], cur, func(v ast.Expr, known2 *Known) (ast.Expr, *Known, []*cerrors.CompilerError) {
			out[i] = v
			return step(i+1, known2.EndBody())
		})
	}
	return step(0, grouped)
}

// normalizeSeq walks a statement sequence; each Match hoists into a
// Case enclosing the rest of the sequence when it needs one, so the
// recursion naturally produces nested Seq/Case trees rather than a
// flat list once any hoisting occurs.
func (n *Normalizer) normalizeSeq(exprs []ast.Expr, known *Known, k cont) (ast.Expr, *Known, []*cerrors.CompilerError) {
	if len(exprs) == 0 {
		return k(&ast.NilLitExpr{}, known)
	}
	if len(exprs) == 1 {
		return n.normalize(exprs[0], known, k)
	}
	head, rest := exprs[0], exprs[1:]
	return n.normalize(head, known, func(v ast.Expr, known2 *Known) (ast.Expr, *Known, []*cerrors.CompilerError) {
		restExpr, known3, errs := n.normalizeSeq(rest, known2, k)
		return flattenSeq(v, restExpr), known3, errs
	})
}

func flattenSeq(first, rest ast.Expr) ast.Expr {
	if s, ok := rest.(*ast.Seq); ok {
		return &ast.Seq{Exprs: append([]ast.Expr{first}, s.Exprs...)}
	}
	return &ast.Seq{Exprs: []ast.Expr{first, rest}}
}

func (n *Normalizer) normalizeClauses(clauses []ast.Clause, known *Known) ([]ast.Clause, []*cerrors.CompilerError) {
	var allErrs []*cerrors.CompilerError
	out := make([]ast.Clause, len(clauses))
	for i, c := range clauses {
		newPattern, clauseKnown, _ := n.substitutePattern(c.Pattern, known)
		guard := c.Guard
		if guard != nil {
			g, k2, errs := n.normalize(guard, clauseKnown, identityCont)
			guard = g
			clauseKnown = k2
			allErrs = append(allErrs, errs...)
		}
		body, _, errs := n.normalize(c.Body, clauseKnown, identityCont)
		allErrs = append(allErrs, errs...)
		out[i] = ast.Clause{Pattern: newPattern, Guard: guard, Body: body, Sp: c.Sp}
	}
	return out, allErrs
}

func (n *Normalizer) normalizeFun(fn *ast.Fun, known *Known, k cont) (ast.Expr, *Known, []*cerrors.CompilerError) {
	allowed := known.EnterFun()
	free := ast.FreeVars(fn.Body)

	paramAlias := map[ast.Name]ast.Name{}
	for _, p := range fn.Params {
		for _, name := range ast.BoundNames(p) {
			paramAlias[name] = name
		}
	}

	innerKnown := NewKnown()
	var captures []ast.Name
	for name := range free {
		if _, isParam := paramAlias[name]; isParam {
			continue
		}
		if alias, ok := allowed[name]; ok {
			captures = append(captures, name)
			innerKnown = innerKnown.Union(map[ast.Name]ast.Name{name: alias})
		}
	}
	sortNames(captures)
	innerKnown = innerKnown.Union(paramAlias)

	body, _, errs := n.normalize(fn.Body, innerKnown, identityCont)
	newFun := &ast.Fun{Params: fn.Params, Body: body, Captures: captures, Sp: fn.Sp}
	return k(newFun, known)
}

func sortNames(names []ast.Name) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j-1] > names[j]; j-- {
			names[j-1], names[j] = names[j], names[j-1]
		}
	}
}
