// SPDX-License-Identifier: Apache-2.0
package ast

// FreeVars returns the set of names e reads without first binding
// them locally. It is used by the normalizer both to decide a Fun's
// Captures list and by the §8 known-set property test, which asserts
// that set is always a subset of enter_fun(known at the closure site).
func FreeVars(e Expr) map[Name]struct{} {
	free := make(map[Name]struct{})
	var walk func(Expr, map[Name]struct{})
	walk = func(e Expr, bound map[Name]struct{}) {
		switch e := e.(type) {
		case *Var:
			if _, ok := bound[e.Name]; !ok {
				free[e.Name] = struct{}{}
			}
		case *Literal, *NilLitExpr:
			// no sub-expressions
		case *TupleLit:
			for _, el := range e.Elems {
				walk(el, bound)
			}
		case *Cons:
			walk(e.Head, bound)
			walk(e.Tail, bound)
		case *MapLit:
			for _, p := range e.Pairs {
				walk(p.Key, bound)
				walk(p.Value, bound)
			}
		case *BinaryLit:
			for _, seg := range e.Segments {
				walk(seg.Value, bound)
				if seg.Size != nil {
					walk(seg.Size, bound)
				}
			}
		case *BinOp:
			walk(e.Left, bound)
			walk(e.Right, bound)
		case *UnOp:
			walk(e.Operand, bound)
		case *Apply:
			for _, a := range e.Args {
				walk(a, bound)
			}
		case *ApplyValue:
			walk(e.Callee, bound)
			for _, a := range e.Args {
				walk(a, bound)
			}
		case *Match:
			walk(e.Value, bound)
			for _, n := range BoundNames(e.Pattern) {
				bound[n] = struct{}{}
			}
		case *Seq:
			inner := cloneSet(bound)
			for _, x := range e.Exprs {
				walk(x, inner)
				if m, ok := x.(*Match); ok {
					for _, n := range BoundNames(m.Pattern) {
						inner[n] = struct{}{}
					}
				}
			}
		case *Case:
			walk(e.Subject, bound)
			for _, c := range e.Clauses {
				inner := cloneSet(bound)
				for _, n := range BoundNames(c.Pattern) {
					inner[n] = struct{}{}
				}
				if c.Guard != nil {
					walk(c.Guard, inner)
				}
				walk(c.Body, inner)
			}
		case *Fun:
			inner := make(map[Name]struct{})
			for _, p := range e.Params {
				for _, n := range BoundNames(p) {
					inner[n] = struct{}{}
				}
			}
			walk(e.Body, inner)
		case *Receive:
			for _, c := range e.Clauses {
				inner := cloneSet(bound)
				for _, n := range BoundNames(c.Pattern) {
					inner[n] = struct{}{}
				}
				if c.Guard != nil {
					walk(c.Guard, inner)
				}
				walk(c.Body, inner)
			}
			if e.After != nil {
				walk(e.After.Timeout, bound)
				walk(e.After.Body, bound)
			}
		case *ReceiveLoop:
			for _, c := range e.Clauses {
				inner := cloneSet(bound)
				inner[e.Message] = struct{}{}
				for _, n := range BoundNames(c.Pattern) {
					inner[n] = struct{}{}
				}
				if c.Guard != nil {
					walk(c.Guard, inner)
				}
				walk(c.Body, inner)
			}
			if e.Timeout != nil {
				walk(e.Timeout, bound)
			}
			if e.AfterBody != nil {
				walk(e.AfterBody, bound)
			}
		case *Raise:
			walk(e.Class, bound)
			walk(e.Reason, bound)
			if e.Trace != nil {
				walk(e.Trace, bound)
			}
		}
	}
	walk(e, make(map[Name]struct{}))
	return free
}

func cloneSet(s map[Name]struct{}) map[Name]struct{} {
	out := make(map[Name]struct{}, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}
