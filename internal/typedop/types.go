// SPDX-License-Identifier: Apache-2.0

// Package typedop is the Typed-Op Lowerer (spec.md §4.3): it walks a
// finished mir.Module and produces the typed operation dialect the
// (out of scope) back end consumes, translating the dynamic Term
// algebra down to a concrete machine representation and inserting
// casts wherever a primitive value meets a boxed consumer or vice
// versa.
package typedop

import (
	"fmt"

	"beamc/internal/mir"
)

// Type is the typed-op dialect's small type algebra: every mir.Type
// translates to exactly one of these five shapes.
type Type interface {
	String() string
	isType()
}

// Prim is a primitive machine type carried over 1:1 from mir.Primitive.
type Prim struct{ Kind mir.PrimKind }

func (*Prim) isType()          {}
func (p *Prim) String() string { return p.Kind.String() }

// Boxed is a tagged, heap-allocated representation of a dynamic term.
// Term records which mir.TermKind it boxes, purely for diagnostics and
// printing; the dialect itself treats every Boxed value identically
// (an opaque tagged pointer).
type Boxed struct{ Term mir.TermKind }

func (*Boxed) isType()          {}
func (b *Boxed) String() string { return "boxed(" + b.Term.String() + ")" }

// PackedFloat is the NaN-boxed encoding of a term float: an f64 word
// carried directly in a generic term slot without a heap allocation,
// selected when the Lowerer's NaNBoxed flag is set (spec.md §4.3
// "encoding rule").
type PackedFloat struct{}

func (*PackedFloat) isType()          {}
func (*PackedFloat) String() string   { return "packed_f64" }

// Aggregate mirrors a mir.Struct/mir.Array positionally; only those
// two mir types translate to it (term values and the Aux types
// translate to Boxed).
type Aggregate struct{ Fields []Type }

func (*Aggregate) isType() {}
func (a *Aggregate) String() string {
	out := "agg{"
	for i, f := range a.Fields {
		if i > 0 {
			out += ", "
		}
		out += f.String()
	}
	return out + "}"
}

// PtrTo mirrors mir.Pointer.
type PtrTo struct{ Elem Type }

func (*PtrTo) isType()          {}
func (p *PtrTo) String() string { return "*" + p.Elem.String() }

// TranslateType maps a mir.Type to its typed-op representation. Term
// types become Boxed (or PackedFloat for TermFloat, when nanBoxed is
// set); Primitive types carry straight across; Struct/Array/Pointer
// translate positionally; the Aux types become Boxed any.
func TranslateType(t mir.Type, nanBoxed bool) Type {
	switch t := t.(type) {
	case *mir.Primitive:
		return &Prim{Kind: t.Kind}
	case *mir.Pointer:
		return &PtrTo{Elem: TranslateType(t.Elem, nanBoxed)}
	case *mir.Struct:
		fields := make([]Type, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = TranslateType(f, nanBoxed)
		}
		return &Aggregate{Fields: fields}
	case *mir.Array:
		fields := make([]Type, t.Len)
		for i := range fields {
			fields[i] = TranslateType(t.Elem, nanBoxed)
		}
		return &Aggregate{Fields: fields}
	case *mir.Term:
		if nanBoxed && t.Kind == mir.TermFloat {
			return &PackedFloat{}
		}
		return &Boxed{Term: t.Kind}
	case *mir.Aux:
		return &Boxed{Term: mir.TermAny}
	default:
		panic(fmt.Sprintf("typedop: unhandled mir.Type %T", t))
	}
}

// IsBoxed reports whether t is a Boxed term representation (PackedFloat
// is deliberately excluded: it is unboxed for arithmetic purposes even
// though it flows through Term-typed slots).
func IsBoxed(t Type) bool {
	_, ok := t.(*Boxed)
	return ok
}

// IsPrimitive reports whether t is a bare machine scalar with no
// tagging, the shape the fast arithmetic ops require.
func IsPrimitive(t Type) bool {
	switch t.(type) {
	case *Prim, *PackedFloat:
		return true
	default:
		return false
	}
}
