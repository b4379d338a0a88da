// SPDX-License-Identifier: Apache-2.0
package mir

// DataFlowGraph is the dense-arena store backing one function: blocks,
// instructions, values and interned constants, each addressed by a
// small integer handle rather than a pointer (spec.md §3 "Lifecycle"
// and §4.2, grounded on the arena style of golang.org/x/tools/go/ssa).
type DataFlowGraph struct {
	blocks   []BlockData
	insts    []Inst
	values   []ValueData
	constant *ConstantPool
}

func newDataFlowGraph() *DataFlowGraph {
	return &DataFlowGraph{constant: newConstantPool()}
}

func (g *DataFlowGraph) addBlock() BlockID {
	g.blocks = append(g.blocks, BlockData{})
	return BlockID(len(g.blocks)) // 1-based
}

func (g *DataFlowGraph) Block(id BlockID) *BlockData { return &g.blocks[id-1] }

func (g *DataFlowGraph) NumBlocks() int { return len(g.blocks) }

// BlockIDs returns every block handle in allocation order.
func (g *DataFlowGraph) BlockIDs() []BlockID {
	out := make([]BlockID, len(g.blocks))
	for i := range g.blocks {
		out[i] = BlockID(i + 1)
	}
	return out
}

func (g *DataFlowGraph) addInst(block BlockID, op Opcode, data InstData) InstID {
	id := InstID(len(g.insts) + 1)
	g.insts = append(g.insts, Inst{ID: id, Block: block, Op: op, Data: data})
	return id
}

func (g *DataFlowGraph) Inst(id InstID) *Inst { return &g.insts[id-1] }

func (g *DataFlowGraph) NumInsts() int { return len(g.insts) }

func (g *DataFlowGraph) addValue(data ValueData) ValueID {
	id := ValueID(len(g.values) + 1)
	g.values = append(g.values, data)
	return id
}

func (g *DataFlowGraph) Value(id ValueID) *ValueData { return &g.values[id-1] }

// ValueType returns the static type of an SSA value.
func (g *DataFlowGraph) ValueType(id ValueID) Type { return g.values[id-1].Type }

// Const interns a constant, returning its stable handle.
func (g *DataFlowGraph) Const(item ConstantItem) ConstID { return g.constant.Intern(item) }

func (g *DataFlowGraph) ConstItem(id ConstID) ConstantItem { return g.constant.Get(id) }

func (g *DataFlowGraph) ConstType(id ConstID) Type { return g.constant.TypeOf(id) }

func (g *DataFlowGraph) NumConsts() int { return g.constant.Len() }
