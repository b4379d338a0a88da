// SPDX-License-Identifier: Apache-2.0
package ast

// Name is a source identifier: a variable, an atom, a module name or a
// function name. The front-end is assumed to have already resolved
// lexical scoping of modules/functions; Name here is just the text.
type Name string

// Node is implemented by every AST expression and pattern. Front-end
// supplied nodes always have Span().Generated == false; nodes the
// normalizer fabricates set it so diagnostics can tell synthetic code
// from source.
type Node interface {
	Span() Span
	String() string
}
