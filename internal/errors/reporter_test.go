// SPDX-License-Identifier: Apache-2.0
package errors

import (
	"fmt"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"beamc/internal/ast"
)

func span(line, col int) ast.Span {
	pos := ast.Position{Filename: "t.erl", Line: line, Column: col}
	return ast.Span{Start: pos, End: ast.Position{Filename: "t.erl", Line: line, Column: col + 1}}
}

func TestFormatIncludesCodeAndLocation(t *testing.T) {
	r := NewReporter("t.erl", "a = 1.\nb = a + 1.\n")
	err := Structural(ErrorBranchArity, "branch to block1 supplies 1 argument, expected 2", span(2, 5))
	out := r.Format(err)
	assert.Contains(t, out, ErrorBranchArity)
	assert.Contains(t, out, "t.erl:2:5")
	assert.Contains(t, out, "b = a + 1.")
}

func TestFormatGeneratedSpanOmitsLineSnippet(t *testing.T) {
	r := NewReporter("t.erl", "a = 1.\n")
	generated := ast.GeneratedSpan(span(1, 1))
	err := Structural(ErrorDuplicateTerminator, "block already terminated", generated)
	out := r.Format(err)
	assert.Contains(t, out, "compiler-generated")
}

func TestWithCausePreservesUnwrap(t *testing.T) {
	base := stderrors.New("underlying failure")
	err := Structural(ErrorNonNumericOperand, "bad operand", span(1, 1)).WithCause(base)
	assert.ErrorIs(t, err, base)
}

func TestCompilerErrorMessageFormat(t *testing.T) {
	err := Race("redeclared with different arity", span(3, 1))
	assert.Equal(t, fmt.Sprintf("%s[%s]: %s (%s)", DeclarationRace, ErrorDeclarationRace,
		"redeclared with different arity", span(3, 1)), err.Error())
}

func TestGetErrorDescriptionKnownAndUnknown(t *testing.T) {
	assert.NotEqual(t, "unknown error", GetErrorDescription(ErrorBadmatch))
	assert.Equal(t, "unknown error", GetErrorDescription("Z9999"))
}
