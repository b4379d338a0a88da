// SPDX-License-Identifier: Apache-2.0
package mir

import "fmt"

// Module is the MIR translation unit: every function defined in one
// source module, keyed by its canonical module:function/arity symbol.
type Module struct {
	Name      string
	Functions map[string]*Function
	order     []string
}

func NewModule(name string) *Module {
	return &Module{Name: name, Functions: make(map[string]*Function)}
}

// DeclareFunction allocates an empty Function for sig and registers it
// under its canonical symbol. Returns an error if the symbol already
// exists (the single-writer registry in internal/symtab enforces this
// across modules; this is the intra-module fallback).
func (m *Module) DeclareFunction(sig Signature) (*Function, error) {
	name := sig.Canonical()
	if _, exists := m.Functions[name]; exists {
		return nil, fmt.Errorf("mir: function %s already declared in module %s", name, m.Name)
	}
	fn := newFunction(sig)
	m.Functions[name] = fn
	m.order = append(m.order, name)
	return fn, nil
}

// FunctionNames returns declared functions in declaration order.
func (m *Module) FunctionNames() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}
