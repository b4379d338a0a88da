// SPDX-License-Identifier: Apache-2.0
package mir

import (
	"strconv"

	"beamc/internal/ast"
)

// Dense arena handles. They are only meaningful relative to the
// DataFlowGraph that allocated them; a function's arena is dropped as
// a unit once lowering completes (spec.md §3 "Lifecycle").
type (
	BlockID uint32
	InstID  uint32
	ValueID uint32
	ConstID uint32
)

const (
	noBlock BlockID = 0
	noInst  InstID  = 0
	noValue ValueID = 0
	noConst ConstID = 0
)

// Signature is the fully-qualified (module, function, arity) triple
// plus parameter/result types and visibility from spec.md §3.
type Signature struct {
	Module     string
	Function   string
	Arity      int
	Params     []Type
	Result     Type
	Visibility ast.Visibility
}

// Canonical renders the module:function/arity symbol used for direct
// calls and the §6 runtime symbol table.
func (s *Signature) Canonical() string {
	return Callee(s.Module, s.Function, s.Arity)
}

// Callee formats a canonical runtime/module symbol string.
func Callee(module, function string, arity int) string {
	return module + ":" + function + "/" + strconv.Itoa(arity)
}
