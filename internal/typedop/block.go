// SPDX-License-Identifier: Apache-2.0
package typedop

// Block is one basic block in the typed-op dialect, mirroring
// mir.BlockData one level down: the same block-parameter SSA shape,
// just carrying typed-op handles instead of mir ones.
type Block struct {
	Params []ValueID
	Ops    []OpID
}
