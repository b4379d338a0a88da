// SPDX-License-Identifier: Apache-2.0
package typedop

// ValueData records the typed-op representation of one SSA value: its
// dialect Type plus which Op defines it (Params define themselves via
// their Block/Index instead).
type ValueData struct {
	Type  Type
	Op    OpID
	Block BlockID
	Index int // -1 unless this value is a block parameter
}

// Function is one lowered function: its own dense arena of blocks,
// ops and values, plus the block layout order carried over unchanged
// from the source mir.Function (the lowerer never changes control
// flow shape, only per-instruction representation).
type Function struct {
	Name   string
	Sig    Signature
	Entry  BlockID
	Layout []BlockID

	blocks []Block
	ops    []Op
	values []ValueData
}

// Signature is the typed-op dialect's translation of a mir.Signature:
// every parameter and result Type already run through TranslateType.
type Signature struct {
	Params []Type
	Result Type
}

func newFunction(name string, sig Signature) *Function {
	return &Function{Name: name, Sig: sig}
}

func (f *Function) addBlock() BlockID {
	f.blocks = append(f.blocks, Block{})
	return BlockID(len(f.blocks))
}

func (f *Function) Block(id BlockID) *Block { return &f.blocks[id-1] }

func (f *Function) NumBlocks() int { return len(f.blocks) }

func (f *Function) addOp(block BlockID, kind OpKind, data OpData) OpID {
	id := OpID(len(f.ops) + 1)
	f.ops = append(f.ops, Op{ID: id, Block: block, Kind: kind, Data: data})
	return id
}

func (f *Function) Op(id OpID) *Op { return &f.ops[id-1] }

func (f *Function) NumOps() int { return len(f.ops) }

func (f *Function) addValue(data ValueData) ValueID {
	id := ValueID(len(f.values) + 1)
	f.values = append(f.values, data)
	return id
}

func (f *Function) Value(id ValueID) *ValueData { return &f.values[id-1] }

func (f *Function) ValueType(id ValueID) Type { return f.values[id-1].Type }

// BlockByIndex returns the nth block in layout order, mirroring
// mir.Function.
func (f *Function) BlockByIndex(i int) BlockID { return f.Layout[i] }
