// SPDX-License-Identifier: Apache-2.0
package errors

// Error codes for the compiler core.
//
// Code ranges:
// N0001-N0099: Scope Normalizer (§4.1)
// M0001-M0099: MIR Core builder (§4.2)
// T0001-T0099: Typed-Op Lowerer (§4.3)
// R0001-R0099: symbol registry (§5)

const (
	// N0001: a rebinding's synthesized equality test failed — emitted
	// as data (BadmatchRuntime), not raised by the compiler.
	ErrorBadmatch = "N0001"

	// N0002: a binary pattern segment's size expression cannot be
	// resolved because it is not bound by an earlier segment in the
	// same pattern and the split rule could not separate it.
	ErrorUnresolvedBinSize = "N0002"

	// M0001: a branch supplies the wrong argument count or types for
	// its target block's parameters.
	ErrorBranchArity = "M0001"

	// M0002: a block already has a terminator when another is added.
	ErrorDuplicateTerminator = "M0002"

	// M0003: an arithmetic op's operand is not a numeric term type.
	ErrorNonNumericOperand = "M0003"

	// M0004: a direct call's argument or result types disagree with
	// the callee's declared signature.
	ErrorSignatureMismatch = "M0004"

	// M0005: a switch statement repeats a case key.
	ErrorDuplicateSwitchKey = "M0005"

	// M0006: an instruction operand is defined in a block that does
	// not dominate the block of its use.
	ErrorNonDominatingUse = "M0006"

	// M0007: the tree-to-MIR builder met a normalized-tree construct
	// it does not yet translate.
	ErrorUnsupportedConstruct = "M0007"

	// M0008: an Apply targets a module:function/arity symbol the
	// registry has no declaration for.
	ErrorUnresolvedCallTarget = "M0008"

	// T0001: a constant-pool item has no typed-op lowering yet (big
	// integer, binary, tuple, list, map literal) — see §9 Open
	// Question (a).
	ErrorDeferredConstant = "T0001"

	// T0002: an instruction kind has no registered typed-op
	// translation.
	ErrorUnlowerableOp = "T0002"

	// R0001: a symbol was declared twice with incompatible signatures.
	ErrorDeclarationRace = "R0001"
)

// GetErrorDescription returns a human-readable description of the
// error code.
func GetErrorDescription(code string) string {
	switch code {
	case ErrorBadmatch:
		return "pattern match failed against an already-bound value"
	case ErrorUnresolvedBinSize:
		return "binary pattern segment size could not be resolved"
	case ErrorBranchArity:
		return "branch argument count or types do not match the target block's parameters"
	case ErrorDuplicateTerminator:
		return "block already ends with a terminator"
	case ErrorNonNumericOperand:
		return "arithmetic operator applied to a non-numeric term"
	case ErrorSignatureMismatch:
		return "call arguments or result do not match the callee's signature"
	case ErrorDuplicateSwitchKey:
		return "switch statement has a duplicate case key"
	case ErrorNonDominatingUse:
		return "value used in a block its definition does not dominate"
	case ErrorUnsupportedConstruct:
		return "tree-to-MIR lowering does not yet handle this construct"
	case ErrorUnresolvedCallTarget:
		return "call targets a symbol with no registered declaration"
	case ErrorDeferredConstant:
		return "constant kind is not yet lowered by the typed-op dialect"
	case ErrorUnlowerableOp:
		return "instruction has no typed-op translation"
	case ErrorDeclarationRace:
		return "symbol redeclared with a different signature"
	default:
		return "unknown error"
	}
}
