// SPDX-License-Identifier: Apache-2.0
package corenorm

import (
	"beamc/internal/ast"
	cerrors "beamc/internal/errors"
)

// guardEq is one equality-strict check the rebinding rewrite must
// insert: the freshly bound alias must equal the value its source
// name was already bound to.
type guardEq struct {
	Fresh ast.Name
	Prev  ast.Name
}

// normalizeMatch lowers `Pattern = Value`. Every name the pattern
// binds gets a brand new SSA alias, whether or not it rebinds an
// outer name; when it does rebind, an equality-strict guard plus a
// synthesized badmatch raise is inserted. Refutable patterns (any
// shape besides a bare variable or wildcard) always get an explicit
// Case so a genuine structural mismatch also raises badmatch.
func (n *Normalizer) normalizeMatch(m *ast.Match, known *Known, k cont) (ast.Expr, *Known, []*cerrors.CompilerError) {
	return n.normalize(m.Value, known, func(vExpr ast.Expr, known1 *Known) (ast.Expr, *Known, []*cerrors.CompilerError) {
		tmp := n.fresh("m")
		tmpVar := &ast.Var{Name: tmp, Sp: ast.GeneratedSpan(m.Sp)}
		bindTmp := &ast.Match{Pattern: &ast.PatVar{Name: tmp, Sp: ast.GeneratedSpan(m.Sp)}, Value: vExpr, Sp: m.Sp}

		newPattern, known2, guards := n.substitutePattern(m.Pattern, known1)

		bodyExpr, known3, errs := k(tmpVar, known2)

		if len(guards) == 0 && ast.IsTrivial(m.Pattern) {
			letExpr := &ast.Match{Pattern: newPattern, Value: tmpVar, Sp: m.Sp}
			return flattenSeq(bindTmp, flattenSeq(letExpr, bodyExpr)), known3, errs
		}

		guard := buildGuardChain(guards)
		failValue := tmp
		if len(guards) > 0 {
			failValue = guards[0].Fresh
		}
		failExpr := badmatchRaise(failValue, m.Sp)

		successClause := ast.Clause{Pattern: newPattern, Guard: guard, Body: bodyExpr, Sp: m.Sp}
		catchAll := ast.Clause{
			Pattern: &ast.PatWildcard{Sp: ast.GeneratedSpan(m.Sp)},
			Body:    failExpr,
			Sp:      ast.GeneratedSpan(m.Sp),
		}
		caseExpr := &ast.Case{
			Subject: tmpVar,
			Clauses: []ast.Clause{successClause, catchAll},
			Sp:      ast.GeneratedSpan(m.Sp),
		}
		return flattenSeq(bindTmp, caseExpr), known3, errs
	})
}

// buildGuardChain ANDs every rebind's equality-strict check together
// with the left-to-right "andalso" short-circuit operator.
func buildGuardChain(guards []guardEq) ast.Expr {
	if len(guards) == 0 {
		return nil
	}
	gen := ast.GeneratedSpan(ast.Span{})
	var chain ast.Expr = eqCheck(guards[0], gen)
	for _, g := range guards[1:] {
		chain = &ast.BinOp{Op: "andalso", Left: chain, Right: eqCheck(g, gen), Sp: gen}
	}
	return chain
}

func eqCheck(g guardEq, sp ast.Span) ast.Expr {
	return &ast.BinOp{
		Op:    "=:=",
		Left:  &ast.Var{Name: g.Fresh, Sp: sp},
		Right: &ast.Var{Name: g.Prev, Sp: sp},
		Sp:    sp,
	}
}

// badmatchRaise synthesizes `raise(error, {badmatch, Var(name)})`.
func badmatchRaise(name ast.Name, near ast.Span) ast.Expr {
	gen := ast.GeneratedSpan(near)
	return &ast.Raise{
		Class:  &ast.Literal{Value: ast.AtomLit("error"), Sp: gen},
		Reason: &ast.TupleLit{Elems: []ast.Expr{
			&ast.Literal{Value: ast.AtomLit("badmatch"), Sp: gen},
			&ast.Var{Name: name, Sp: gen},
		}, Sp: gen},
		Sp: gen,
	}
}

// substitutePattern walks p left-to-right, giving every bound
// variable a fresh alias and collecting a guardEq for each one that
// rebinds a name already known at this point in the walk (spec.md
// §4.1: "processed left-to-right over the same known set").
func (n *Normalizer) substitutePattern(p ast.Pattern, known *Known) (ast.Pattern, *Known, []guardEq) {
	switch p := p.(type) {
	case *ast.PatVar:
		fresh := n.fresh(string(p.Name))
		var guards []guardEq
		if prev, rebind := known.AliasOf(p.Name); rebind {
			guards = append(guards, guardEq{Fresh: fresh, Prev: prev})
		}
		newKnown := known.Union(map[ast.Name]ast.Name{p.Name: fresh})
		return &ast.PatVar{Name: fresh, Sp: p.Sp}, newKnown, guards

	case *ast.PatWildcard, *ast.PatLiteral, *ast.PatNil:
		return p, known, nil

	case *ast.PatTuple:
		elems := make([]ast.Pattern, len(p.Elems))
		cur := known
		var guards []guardEq
		for i, el := range p.Elems {
			var g []guardEq
			elems[i], cur, g = n.substitutePattern(el, cur)
			guards = append(guards, g...)
		}
		return &ast.PatTuple{Elems: elems, Sp: p.Sp}, cur, guards

	case *ast.PatCons:
		head, cur, g1 := n.substitutePattern(p.Head, known)
		tail, cur2, g2 := n.substitutePattern(p.Tail, cur)
		return &ast.PatCons{Head: head, Tail: tail, Sp: p.Sp}, cur2, append(g1, g2...)

	case *ast.PatMap:
		pairs := make([]ast.PatMapPair, len(p.Pairs))
		cur := known
		var guards []guardEq
		for i, pr := range p.Pairs {
			var g []guardEq
			var v ast.Pattern
			v, cur, g = n.substitutePattern(pr.Value, cur)
			pairs[i] = ast.PatMapPair{Key: pr.Key, Value: v}
			guards = append(guards, g...)
		}
		return &ast.PatMap{Pairs: pairs, Sp: p.Sp}, cur, guards

	case *ast.PatBinary:
		return n.substituteBinaryPattern(p, known)

	default:
		return p, known, nil
	}
}

// substituteBinaryPattern applies the ordinary left-to-right fresh
// binding walk, and additionally splits the pattern into two
// sequential matches when an earlier segment's bound name is also
// used as a later segment's size expression — the same name
// occurrence can either define or consume a value, never both, so
// the dependent segment is re-matched against a context already
// advanced past the defining one (spec.md §4.1 binary splitting rule).
func (n *Normalizer) substituteBinaryPattern(p *ast.PatBinary, known *Known) (ast.Pattern, *Known, []guardEq) {
	cur := known
	var guards []guardEq
	segs := make([]ast.BinSeg, len(p.Segments))
	boundSoFar := map[ast.Name]bool{}
	splitAt := -1
	for i, seg := range p.Segments {
		if seg.Size != nil {
			if sizeVar, ok := seg.Size.(*ast.Var); ok && boundSoFar[sizeVar.Name] {
				splitAt = i
				break
			}
		}
		var v ast.Pattern
		var g []guardEq
		v, cur, g = n.substitutePattern(seg.Value, cur)
		segs[i] = ast.BinSeg{Value: v, Size: seg.Size, Spec: seg.Spec}
		guards = append(guards, g...)
		for _, nm := range ast.BoundNames(seg.Value) {
			boundSoFar[nm] = true
		}
	}
	if splitAt < 0 {
		return &ast.PatBinary{Segments: segs, Sp: p.Sp}, cur, guards
	}
	// Resolve the size reference's current alias, then leave the
	// dependent tail segments for a second sequential match (the
	// typed-op lowerer's BitsMatchStart/BitsMatch pair naturally
	// continues from where the first match context left off).
	dependent := p.Segments[splitAt:]
	depSegs := make([]ast.BinSeg, len(dependent))
	for i, seg := range dependent {
		size := seg.Size
		if sizeVar, ok := size.(*ast.Var); ok {
			if alias, ok2 := cur.AliasOf(sizeVar.Name); ok2 {
				size = &ast.Var{Name: alias, Sp: sizeVar.Sp}
			}
		}
		var v ast.Pattern
		var g []guardEq
		v, cur, g = n.substitutePattern(seg.Value, cur)
		guards = append(guards, g...)
		depSegs[i] = ast.BinSeg{Value: v, Size: size, Spec: seg.Spec}
	}
	return &ast.PatBinary{Segments: append(segs[:splitAt:splitAt], depSegs...), Sp: p.Sp}, cur, guards
}
