// SPDX-License-Identifier: Apache-2.0
package typedop

// Dense arena handles, one generation below mir's: a typed-op Function
// owns its own arena, never shared across functions.
type (
	BlockID uint32
	OpID    uint32
	ValueID uint32
)

const (
	noBlock BlockID = 0
	noOp    OpID    = 0
	noValue ValueID = 0
)
