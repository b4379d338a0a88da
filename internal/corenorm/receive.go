// SPDX-License-Identifier: Apache-2.0
package corenorm

import (
	"beamc/internal/ast"
	cerrors "beamc/internal/errors"
)

// lowerReceive replaces a Receive with a ReceiveLoop: the clause
// patterns are substituted against a synthesized message name exactly
// as any other match would be, and the timeout/after expressions are
// normalized in the enclosing scope. MIR construction turns the
// result into the four-state mailbox protocol (spec.md §4.1).
func (n *Normalizer) lowerReceive(r *ast.Receive, known *Known, k cont) (ast.Expr, *Known, []*cerrors.CompilerError) {
	msg := n.fresh("msg")
	var allErrs []*cerrors.CompilerError

	clauses := make([]ast.Clause, len(r.Clauses))
	for i, c := range r.Clauses {
		newPattern, clauseKnown, _ := n.substitutePattern(c.Pattern, known)
		clauseKnown = clauseKnown.Union(map[ast.Name]ast.Name{msg: msg})
		guard := c.Guard
		if guard != nil {
			g, k2, errs := n.normalize(guard, clauseKnown, identityCont)
			guard = g
			clauseKnown = k2
			allErrs = append(allErrs, errs...)
		}
		body, _, errs := n.normalize(c.Body, clauseKnown, identityCont)
		allErrs = append(allErrs, errs...)
		clauses[i] = ast.Clause{Pattern: newPattern, Guard: guard, Body: body, Sp: c.Sp}
	}

	var timeout, afterBody ast.Expr
	known2 := known
	if r.After != nil {
		t, k2, errs := n.normalize(r.After.Timeout, known, identityCont)
		allErrs = append(allErrs, errs...)
		timeout, known2 = t, k2
		b, _, errs2 := n.normalize(r.After.Body, known2, identityCont)
		allErrs = append(allErrs, errs2...)
		afterBody = b
	}

	loop := &ast.ReceiveLoop{
		Message:   msg,
		Clauses:   clauses,
		Timeout:   timeout,
		AfterBody: afterBody,
		Sp:        ast.GeneratedSpan(r.Sp),
	}
	res, known3, errs := k(loop, known2)
	return res, known3, append(allErrs, errs...)
}
