// SPDX-License-Identifier: Apache-2.0

// Package corenorm implements the Scope Normalizer: it rewrites a
// dynamically-scoped source tree's implicit rebinding into explicit
// fresh bindings plus equality checks, converts refutable matches
// into explicit case dispatch with a synthesized badmatch raise,
// fixes closure capture sets, and replaces the receive/after construct
// with the cooperative four-state mailbox protocol.
package corenorm

import "beamc/internal/ast"

// Known carries the known-set algebra through the tree walk. Unlike a
// bare name set, it tracks each source name's *current* SSA alias, so
// that re-walking a Var after a rebind resolves to the right fresh
// name, and a closure's capture set can be frozen to the aliases
// valid before its enclosing group started.
type Known struct {
	alias  map[ast.Name]ast.Name
	base   []map[ast.Name]ast.Name
	prevKs []map[ast.Name]ast.Name
}

// NewKnown returns an empty known-set, the state at function entry
// before any parameters are bound.
func NewKnown() *Known {
	return &Known{alias: map[ast.Name]ast.Name{}}
}

func cloneAliasMap(m map[ast.Name]ast.Name) map[ast.Name]ast.Name {
	out := make(map[ast.Name]ast.Name, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (k *Known) clone() *Known {
	nk := &Known{alias: cloneAliasMap(k.alias)}
	nk.base = append([]map[ast.Name]ast.Name(nil), k.base...)
	nk.prevKs = append([]map[ast.Name]ast.Name(nil), k.prevKs...)
	return nk
}

// Contains reports whether name already has a binding in scope.
func (k *Known) Contains(name ast.Name) bool {
	_, ok := k.alias[name]
	return ok
}

// AliasOf returns the current SSA alias bound to name, if any.
func (k *Known) AliasOf(name ast.Name) (ast.Name, bool) {
	a, ok := k.alias[name]
	return a, ok
}

// StartGroup brackets a set of sibling subexpressions whose relative
// evaluation order is unspecified (binary operator operands, call
// arguments, tuple/cons/map elements).
func (k *Known) StartGroup() *Known {
	nk := k.clone()
	nk.prevKs = append(nk.prevKs, map[ast.Name]ast.Name{})
	nk.base = append(nk.base, cloneAliasMap(k.alias))
	return nk
}

// EndBody records the bindings the just-finished sibling contributed.
func (k *Known) EndBody() *Known {
	nk := k.clone()
	if len(nk.prevKs) > 0 {
		nk.prevKs[len(nk.prevKs)-1] = cloneAliasMap(nk.alias)
	}
	return nk
}

// EndGroup closes the innermost group.
func (k *Known) EndGroup() *Known {
	nk := k.clone()
	if len(nk.prevKs) > 0 {
		nk.prevKs = nk.prevKs[:len(nk.prevKs)-1]
		nk.base = nk.base[:len(nk.base)-1]
	}
	return nk
}

// Union returns a new Known with delta's bindings merged in.
func (k *Known) Union(delta map[ast.Name]ast.Name) *Known {
	nk := k.clone()
	for name, alias := range delta {
		nk.alias[name] = alias
	}
	return nk
}

// Bind removes names from the top of prevKs: they are now established
// bindings of the current group, not contributions still pending.
func (k *Known) Bind(names map[ast.Name]struct{}) *Known {
	nk := k.clone()
	if len(nk.prevKs) > 0 {
		top := nk.prevKs[len(nk.prevKs)-1]
		for n := range names {
			delete(top, n)
		}
	}
	return nk
}

// EnterFun returns the alias environment visible inside a closure
// opened at this point: everything currently known, minus whatever
// the current group's already-finished siblings contributed, plus
// whatever was known when the group started. This excludes names a
// sibling subexpression introduces, regardless of evaluation order,
// while preserving names bound before the group began (spec's closure
// capture rule).
func (k *Known) EnterFun() map[ast.Name]ast.Name {
	result := cloneAliasMap(k.alias)
	if len(k.prevKs) > 0 {
		for n := range k.prevKs[len(k.prevKs)-1] {
			delete(result, n)
		}
	}
	if len(k.base) > 0 {
		for n, a := range k.base[len(k.base)-1] {
			result[n] = a
		}
	}
	return result
}
