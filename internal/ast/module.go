// SPDX-License-Identifier: Apache-2.0
package ast

// Module is a named compilation unit: an ordered set of function
// signatures and bodies, matching spec.md §3's Module data model.
type Module struct {
	Name      Name
	Functions []*Function
	Sp        Span
}

// ByArity looks up a function declared in this module by name/arity,
// the lookup shape the normalizer and MIR builder both need when
// resolving local calls.
func (m *Module) ByArity(name Name, arity int) *Function {
	for _, fn := range m.Functions {
		if fn.Name == name && fn.Arity == arity {
			return fn
		}
	}
	return nil
}
