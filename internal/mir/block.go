// SPDX-License-Identifier: Apache-2.0
package mir

// BlockData is one basic block: an ordered parameter list (the SSA
// replacement for phi nodes) and an ordered instruction list whose
// last element, once sealed, must be a terminator (spec.md §3
// invariant 1).
type BlockData struct {
	Params []ValueID
	Insts  []InstID
	Sealed bool
}

// ParamTypes returns the static types of a block's parameters, used by
// the builder's branch-arity/type check (spec.md §8).
func (b *BlockData) ParamTypes(dfg *DataFlowGraph) []Type {
	out := make([]Type, len(b.Params))
	for i, v := range b.Params {
		out[i] = dfg.ValueType(v)
	}
	return out
}

// Terminator returns the block's terminating instruction, or noInst if
// the block has not been sealed with one yet.
func (b *BlockData) Terminator(dfg *DataFlowGraph) InstID {
	if len(b.Insts) == 0 {
		return noInst
	}
	last := b.Insts[len(b.Insts)-1]
	if dfg.Inst(last).Op.IsTerminator() {
		return last
	}
	return noInst
}
