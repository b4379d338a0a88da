// SPDX-License-Identifier: Apache-2.0
package symtab

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beamc/internal/ast"
	"beamc/internal/mir"
)

func sig(module, fn string, arity int) mir.Signature {
	params := make([]mir.Type, arity)
	for i := range params {
		params[i] = mir.TermT(mir.TermAny)
	}
	return mir.Signature{Module: module, Function: fn, Arity: arity, Params: params, Result: mir.TermT(mir.TermAny)}
}

func TestDeclareThenLookup(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Declare(sig("math", "add", 2), ast.Span{}))
	got, ok := r.Lookup("math:add/2")
	require.True(t, ok)
	assert.Equal(t, "math", got.Module)
}

func TestDeclareSameSignatureTwiceIsIdempotent(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Declare(sig("math", "add", 2), ast.Span{}))
	require.NoError(t, r.Declare(sig("math", "add", 2), ast.Span{}))
}

func TestDeclareConflictingSignatureIsRace(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Declare(sig("math", "add", 2), ast.Span{}))
	s2 := sig("math", "add", 2)
	s2.Result = mir.TermT(mir.TermInteger)
	err := r.Declare(s2, ast.Span{})
	require.Error(t, err)
}

func TestConcurrentDeclarationsOfDistinctFunctionsAreSafe(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	names := []string{"add", "sub", "mul", "div", "rem"}
	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			_ = r.Declare(sig("math", name, 2), ast.Span{})
		}(name)
	}
	wg.Wait()
	assert.Len(t, r.Symbols(), len(names))
}
