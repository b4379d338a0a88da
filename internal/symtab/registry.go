// SPDX-License-Identifier: Apache-2.0

// Package symtab is the single-writer declaration registry from
// spec.md §5: every function a module defines is declared here before
// its body is lowered, so sibling functions lowered concurrently can
// resolve each other's calls without waiting on one another's bodies.
package symtab

import (
	"sync"

	"beamc/internal/ast"
	cerrors "beamc/internal/errors"
	"beamc/internal/mir"
)

// Registry is a concurrency-safe map from canonical module:function/arity
// symbol to its declared Signature, hardened for concurrent writers
// since distinct functions here are lowered in parallel.
type Registry struct {
	mu  sync.Mutex
	sig map[string]mir.Signature
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sig: make(map[string]mir.Signature)}
}

// Declare records sig under its canonical symbol. Declaring the exact
// same signature twice is a no-op (idempotent re-declaration, e.g. a
// forward reference followed by the real definition). Declaring a
// different signature under a name already taken is a DeclarationRace
// (spec.md §7).
func (r *Registry) Declare(sig mir.Signature, span ast.Span) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := sig.Canonical()
	existing, ok := r.sig[name]
	if !ok {
		r.sig[name] = sig
		return nil
	}
	if signaturesEqual(existing, sig) {
		return nil
	}
	return cerrors.Race("symbol "+name+" redeclared with an incompatible signature", span)
}

// Lookup resolves a canonical symbol, reporting whether it was found.
func (r *Registry) Lookup(symbol string) (mir.Signature, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sig, ok := r.sig[symbol]
	return sig, ok
}

// Symbols returns every declared canonical symbol, in no particular
// order; callers that need determinism should sort the result.
func (r *Registry) Symbols() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.sig))
	for name := range r.sig {
		out = append(out, name)
	}
	return out
}

func signaturesEqual(a, b mir.Signature) bool {
	if a.Module != b.Module || a.Function != b.Function || a.Arity != b.Arity || a.Visibility != b.Visibility {
		return false
	}
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if !mir.TypesEqual(a.Params[i], b.Params[i]) {
			return false
		}
	}
	return mir.TypesEqual(a.Result, b.Result)
}
