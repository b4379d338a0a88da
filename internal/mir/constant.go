// SPDX-License-Identifier: Apache-2.0
package mir

import (
	"fmt"
	"math/big"

	"beamc/internal/ast"
)

// ConstKind discriminates the ConstantItem variants from spec.md §3.
type ConstKind int

const (
	ConstSmallInt ConstKind = iota
	ConstBigInt
	ConstFloat
	ConstBool
	ConstAtom
	ConstString
	ConstBytes
	ConstBitstring
	ConstTuple
	ConstCons
	ConstMap
	ConstNil
)

func (k ConstKind) String() string {
	names := [...]string{
		"small_int", "big_int", "float", "bool", "atom", "string",
		"bytes", "bitstring", "tuple", "cons", "map", "nil",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "const?"
}

// ConstantItem is one interned literal in a function's constant pool.
// Tuple, Cons and Map are recursive: their elements are themselves
// ConstIDs into the same pool.
type ConstantItem struct {
	Kind ConstKind

	Int    *big.Int // ConstSmallInt, ConstBigInt
	Float  float64   // ConstFloat
	Bool   bool      // ConstBool
	Atom   string    // ConstAtom
	Str    string    // ConstString
	Bytes  []byte    // ConstBytes
	Bits   BitLit    // ConstBitstring

	Elems []ConstID         // ConstTuple, ConstCons (Elems[0]=head, Elems[1]=tail)
	Pairs []ConstMapPairIDs // ConstMap
}

// BitLit is a fully-materialized bitstring constant: raw bytes plus
// the count of valid bits in the trailing partial byte (0 means the
// bitstring is a whole number of bytes).
type BitLit struct {
	Data       []byte
	TrailBits  int
}

// ConstMapPairIDs is one key/value entry of a ConstMap, both already
// interned as ConstIDs.
type ConstMapPairIDs struct {
	Key   ConstID
	Value ConstID
}

// key returns a structural fingerprint used for interning dedup. Two
// ConstantItems with the same key are guaranteed value-equal.
func (c ConstantItem) key() string {
	switch c.Kind {
	case ConstSmallInt, ConstBigInt:
		return fmt.Sprintf("i:%s", c.Int.String())
	case ConstFloat:
		return fmt.Sprintf("f:%x", c.Float)
	case ConstBool:
		return fmt.Sprintf("b:%t", c.Bool)
	case ConstAtom:
		return "a:" + c.Atom
	case ConstString:
		return "s:" + c.Str
	case ConstBytes:
		return "y:" + string(c.Bytes)
	case ConstBitstring:
		return fmt.Sprintf("x:%d:%s", c.Bits.TrailBits, string(c.Bits.Data))
	case ConstTuple:
		return fmt.Sprintf("t:%v", c.Elems)
	case ConstCons:
		return fmt.Sprintf("c:%v", c.Elems)
	case ConstMap:
		return fmt.Sprintf("m:%v", c.Pairs)
	case ConstNil:
		return "n:"
	default:
		return "?"
	}
}

// ConstantPool is the append-only, structurally-deduplicated store
// backing a function's constant table (spec.md §3 invariant 5).
type ConstantPool struct {
	items []ConstantItem
	index map[string]ConstID
}

func newConstantPool() *ConstantPool {
	return &ConstantPool{index: make(map[string]ConstID)}
}

// Intern adds item if not already present, returning its stable
// handle. Interning the same literal twice yields the same handle
// (spec.md §8 round-trip property).
func (p *ConstantPool) Intern(item ConstantItem) ConstID {
	k := item.key()
	if id, ok := p.index[k]; ok {
		return id
	}
	p.items = append(p.items, item)
	id := ConstID(len(p.items)) // 1-based; 0 is the sentinel noConst
	p.index[k] = id
	return id
}

// Get retrieves a previously interned item.
func (p *ConstantPool) Get(id ConstID) ConstantItem {
	return p.items[id-1]
}

// Len returns the number of distinct interned items.
func (p *ConstantPool) Len() int { return len(p.items) }

// TypeOf returns the static Type a constant materializes to. Composite
// kinds with unknown/heterogeneous element shape return the
// unrefined term type.
func (p *ConstantPool) TypeOf(id ConstID) Type {
	item := p.Get(id)
	switch item.Kind {
	case ConstSmallInt, ConstBigInt:
		return TermT(TermInteger)
	case ConstFloat:
		return TermT(TermFloat)
	case ConstBool:
		return TermT(TermBoolean)
	case ConstAtom:
		return TermT(TermAtom)
	case ConstString, ConstBytes:
		return TermT(TermBinary)
	case ConstBitstring:
		if item.Bits.TrailBits == 0 {
			return TermT(TermBinary)
		}
		return TermT(TermBitstring)
	case ConstTuple:
		return TermT(TermTupleKind)
	case ConstCons:
		return TermT(TermConsKind)
	case ConstMap:
		return TermT(TermMapKind)
	case ConstNil:
		return TermT(TermNil)
	default:
		return TermT(TermAny)
	}
}

// genSpan is the span attached to purely compiler-synthesized
// constants that have no literal source occurrence.
func genSpan() ast.Span { return ast.GeneratedSpan(ast.Span{}) }
