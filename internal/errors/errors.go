// SPDX-License-Identifier: Apache-2.0
package errors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
	"beamc/internal/ast"
)

// CompilerError is a structured diagnostic carrying the §7 taxonomy,
// a stable code, a source span, and an optional wrapped cause.
type CompilerError struct {
	Kind    Kind
	Code    string
	Message string
	Span    ast.Span
	Notes   []string
	cause   error
}

func (e *CompilerError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s[%s]: %s (%s)", e.Kind, e.Code, e.Message, e.Span)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Span)
}

// Unwrap exposes the wrapped cause, if any, so errors.Is/As work
// across CompilerError boundaries.
func (e *CompilerError) Unwrap() error { return e.cause }

// WithCause wraps an underlying error using github.com/pkg/errors,
// preserving its stack trace for debugging builder failures that
// originate deeper in the pipeline.
func (e *CompilerError) WithCause(cause error) *CompilerError {
	e.cause = pkgerrors.WithStack(cause)
	return e
}

// Structural builds a fatal StructuralViolation diagnostic.
func Structural(code, message string, span ast.Span) *CompilerError {
	return &CompilerError{Kind: StructuralViolation, Code: code, Message: message, Span: span}
}

// UnsupportedErr builds a non-fatal Unsupported diagnostic.
func UnsupportedErr(code, message string, span ast.Span) *CompilerError {
	return &CompilerError{Kind: Unsupported, Code: code, Message: message, Span: span}
}

// Race builds a DeclarationRace diagnostic.
func Race(message string, span ast.Span) *CompilerError {
	return &CompilerError{Kind: DeclarationRace, Code: ErrorDeclarationRace, Message: message, Span: span}
}
