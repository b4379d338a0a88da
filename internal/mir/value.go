// SPDX-License-Identifier: Apache-2.0
package mir

// ValueKind discriminates what defines an SSA value: either the
// result of an instruction, or a block parameter bound by whichever
// predecessor transferred control in (spec.md §4.2 "no phi nodes").
type ValueKind int

const (
	ValueInstResult ValueKind = iota
	ValueBlockParam
)

// ValueData is the arena entry for one SSA value.
type ValueData struct {
	Kind  ValueKind
	Type  Type
	Inst  InstID  // ValueInstResult
	Block BlockID // ValueBlockParam: owning block
	Index int     // ValueBlockParam: position in the block's parameter list
}
