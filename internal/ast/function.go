// SPDX-License-Identifier: Apache-2.0
package ast

import "fmt"

// Visibility mirrors spec.md §3's per-signature visibility: public
// functions are callable cross-module, private ones only from within
// their own module, and externally-defined ones are declared but
// implemented outside the module currently being lowered (a NIF or
// runtime builtin).
type Visibility int

const (
	Private Visibility = iota
	Public
	ExternallyDefined
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case ExternallyDefined:
		return "external"
	default:
		return "private"
	}
}

// Function is one source-level function clause set, already merged by
// the front end into a single parameter-pattern-matching body (the
// normalizer does not itself merge multi-clause function definitions;
// it assumes Body already embodies that as a Case over a synthetic
// tuple of the parameters, or a single trivial-pattern body when there
// is only one clause).
type Function struct {
	Module     Name
	Name       Name
	Arity      int
	Params     []Pattern
	Body       Expr
	Visibility Visibility
	Sp         Span
}

// Symbol renders the function's fully-qualified module:function/arity
// triple, the canonical form used for registry keys, call targets and
// diagnostics.
func (f *Function) Symbol() string {
	return fmt.Sprintf("%s:%s/%d", f.Module, f.Name, f.Arity)
}
