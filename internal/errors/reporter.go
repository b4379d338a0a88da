// SPDX-License-Identifier: Apache-2.0
package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"beamc/internal/ast"
)

// Reporter formats CompilerErrors with Rust-like caret styling against
// a known source text.
type Reporter struct {
	filename string
	lines    []string
}

// NewReporter creates a reporter for a file's source text. source may
// be empty when formatting diagnostics for compiler-generated spans.
func NewReporter(filename, source string) *Reporter {
	return &Reporter{filename: filename, lines: strings.Split(source, "\n")}
}

// Format renders a single CompilerError.
func (r *Reporter) Format(err *CompilerError) string {
	var out strings.Builder

	levelColor := r.levelColor(err.Kind)
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if err.Code != "" {
		fmt.Fprintf(&out, "%s[%s]: %s\n", levelColor(err.Kind.String()), err.Code, err.Message)
	} else {
		fmt.Fprintf(&out, "%s: %s\n", levelColor(err.Kind.String()), err.Message)
	}

	if err.Span.Generated {
		fmt.Fprintf(&out, "  %s %s\n", dim("-->"), "compiler-generated")
		r.appendNotes(&out, err)
		return out.String()
	}

	pos := err.Span.Start
	width := r.lineNumberWidth(pos.Line)
	indent := strings.Repeat(" ", width)

	fmt.Fprintf(&out, "%s %s %s:%d:%d\n", indent, dim("-->"), r.filename, pos.Line, pos.Column)
	fmt.Fprintf(&out, "%s %s\n", indent, dim("│"))

	if pos.Line > 0 && pos.Line <= len(r.lines) {
		line := r.lines[pos.Line-1]
		fmt.Fprintf(&out, "%s %s %s\n", bold(fmt.Sprintf("%*d", width, pos.Line)), dim("│"), line)
		length := r.spanLength(err.Span)
		marker := r.marker(pos.Column, length)
		fmt.Fprintf(&out, "%s %s %s\n", indent, dim("│"), marker)
	}

	r.appendNotes(&out, err)
	return out.String()
}

func (r *Reporter) appendNotes(out *strings.Builder, err *CompilerError) {
	noteColor := color.New(color.FgBlue).SprintFunc()
	for _, note := range err.Notes {
		fmt.Fprintf(out, "  %s %s\n", noteColor("note:"), note)
	}
	if err.cause != nil {
		fmt.Fprintf(out, "  %s %s\n", noteColor("caused by:"), err.cause.Error())
	}
	out.WriteString("\n")
}

func (r *Reporter) levelColor(kind Kind) func(...interface{}) string {
	switch kind {
	case Unsupported:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case BadmatchRuntime:
		return color.New(color.FgMagenta, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

func (r *Reporter) marker(column, length int) string {
	if length <= 0 {
		length = 1
	}
	spaces := strings.Repeat(" ", maxInt(0, column-1))
	markerColor := color.New(color.FgRed, color.Bold).SprintFunc()
	return spaces + markerColor(strings.Repeat("^", length))
}

func (r *Reporter) spanLength(span ast.Span) int {
	if span.Start.Line == span.End.Line && span.End.Column > span.Start.Column {
		return span.End.Column - span.Start.Column
	}
	return 1
}

func (r *Reporter) lineNumberWidth(line int) int {
	width := len(fmt.Sprintf("%d", line))
	if width < 3 {
		width = 3
	}
	return width
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
