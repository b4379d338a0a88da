// SPDX-License-Identifier: Apache-2.0
package ast

import (
	"fmt"
	"math/big"
)

// LitKind discriminates the scalar constant shapes the front-end can
// hand the normalizer. Composite literals (tuple, cons, map, binary)
// are their own Expr/Pattern node kinds, not LitKinds, so that their
// sub-elements remain ordinary child expressions.
type LitKind int

const (
	LitInt LitKind = iota
	LitFloat
	LitBool
	LitAtom
	LitString
	LitNil
)

// Lit is a scalar constant: a small or big integer, a float, a
// boolean, an atom, an interned string, or nil (the empty list).
type Lit struct {
	Kind  LitKind
	Int   *big.Int // LitInt
	Float float64  // LitFloat
	Bool  bool     // LitBool
	Atom  Name     // LitAtom
	Str   string   // LitString
}

func IntLit(i int64) Lit   { return Lit{Kind: LitInt, Int: big.NewInt(i)} }
func BigLit(i *big.Int) Lit { return Lit{Kind: LitInt, Int: i} }
func FloatLit(f float64) Lit { return Lit{Kind: LitFloat, Float: f} }
func BoolLit(b bool) Lit    { return Lit{Kind: LitBool, Bool: b} }
func AtomLit(a Name) Lit    { return Lit{Kind: LitAtom, Atom: a} }
func StringLit(s string) Lit { return Lit{Kind: LitString, Str: s} }
func NilLit() Lit           { return Lit{Kind: LitNil} }

func (l Lit) String() string {
	switch l.Kind {
	case LitInt:
		return l.Int.String()
	case LitFloat:
		return fmt.Sprintf("%g", l.Float)
	case LitBool:
		return fmt.Sprintf("%t", l.Bool)
	case LitAtom:
		return string(l.Atom)
	case LitString:
		return fmt.Sprintf("%q", l.Str)
	case LitNil:
		return "[]"
	default:
		return "<bad-lit>"
	}
}

// IsNumeric reports whether the literal is an integer or float, the
// two kinds that participate in the numeric-join arithmetic rule.
func (l Lit) IsNumeric() bool {
	return l.Kind == LitInt || l.Kind == LitFloat
}
