// SPDX-License-Identifier: Apache-2.0
package mir

import (
	"fmt"

	"beamc/internal/ast"
	cerrors "beamc/internal/errors"
)

// sanity walks an already-built Function looking for invariant
// violations the typed Builder should have prevented, the way
// golang.org/x/tools/go/ssa's sanity checker re-validates a built
// ssa.Function before it trusts later passes to run over it.
type sanity struct {
	fn     *Function
	errors []*cerrors.CompilerError
}

// Sanity checks every invariant in spec.md §3/§8 against fn, returning
// one CompilerError per violation found. An empty result means fn is
// well-formed.
func Sanity(fn *Function) []*cerrors.CompilerError {
	s := &sanity{fn: fn}
	s.checkFunction()
	return s.errors
}

func (s *sanity) errorf(code, format string, args ...interface{}) {
	s.errors = append(s.errors, cerrors.Structural(code, fmt.Sprintf(format, args...),
		ast.GeneratedSpan(ast.Span{})))
}

func (s *sanity) checkFunction() {
	if len(s.fn.Layout) == 0 {
		s.errorf(cerrors.ErrorDuplicateTerminator, "function %s has no blocks", s.fn.Name())
		return
	}
	if s.fn.Layout[0] != s.fn.Entry {
		s.errorf(cerrors.ErrorDuplicateTerminator, "function %s entry block is not first in layout", s.fn.Name())
	}
	for _, id := range s.fn.Layout {
		s.checkBlock(id)
	}
	s.checkDominance()
}

func (s *sanity) checkBlock(id BlockID) {
	block := s.fn.DFG.Block(id)
	if len(block.Insts) == 0 {
		s.errorf(cerrors.ErrorDuplicateTerminator, "block %d in %s is empty", id, s.fn.Name())
		return
	}
	for i, instID := range block.Insts {
		inst := s.fn.DFG.Inst(instID)
		isLast := i == len(block.Insts)-1
		if inst.Op.IsTerminator() && !isLast {
			s.errorf(cerrors.ErrorDuplicateTerminator,
				"block %d in %s has a terminator before its last instruction", id, s.fn.Name())
		}
		if !inst.Op.IsTerminator() && isLast {
			s.errorf(cerrors.ErrorDuplicateTerminator,
				"block %d in %s does not end in a terminator", id, s.fn.Name())
		}
		s.checkInst(inst)
	}
	s.checkBranchTargets(id, block)
}

func (s *sanity) checkInst(inst *Inst) {
	if inst.Op != inst.Data.Opcode() {
		s.errorf(cerrors.ErrorDuplicateTerminator,
			"instruction %d opcode %s does not match its payload variant %s",
			inst.ID, inst.Op, inst.Data.Opcode())
	}
}

func (s *sanity) checkBranchTargets(id BlockID, block *BlockData) {
	term := block.Terminator(s.fn.DFG)
	if term == noInst {
		return
	}
	inst := s.fn.DFG.Inst(term)
	switch data := inst.Data.(type) {
	case BrData:
		s.checkArity(data.Target, data.Args)
	case CondBrData:
		s.checkArity(data.TrueTarget, data.TrueArgs)
		s.checkArity(data.FalseTarget, data.FalseArgs)
	case SwitchData:
		for _, c := range data.Cases {
			s.checkArity(c.Target, c.Args)
		}
		s.checkArity(data.Default, data.DefaultArgs)
	}
}

func (s *sanity) checkArity(target BlockID, args []ValueID) {
	block := s.fn.DFG.Block(target)
	if len(args) != len(block.Params) {
		s.errorf(cerrors.ErrorBranchArity,
			"branch to block %d supplies %d arguments, expected %d",
			target, len(args), len(block.Params))
		return
	}
	for i, a := range args {
		if !TypesEqual(s.fn.DFG.ValueType(block.Params[i]), s.fn.DFG.ValueType(a)) {
			s.errorf(cerrors.ErrorBranchArity,
				"branch to block %d argument %d has mismatched type", target, i)
		}
	}
}

// checkDominance verifies spec.md §8's "every use is dominated by its
// definition (or is a block parameter)" over the real CFG (predecessors
// derived from every terminator's targets), using the Cooper/Harvey/
// Kennedy iterative dominator algorithm — the same style
// golang.org/x/tools/go/ssa's lift.go computes dominance with, rather
// than the weaker approximation of trusting Layout order outright.
func (s *sanity) checkDominance() {
	succs := s.successors()
	idom, postIndex := s.computeDominators(succs)

	instIndex := make(map[InstID]int)
	for _, bid := range s.fn.Layout {
		for i, id := range s.fn.DFG.Block(bid).Insts {
			instIndex[id] = i
		}
	}

	for _, bid := range s.fn.Layout {
		block := s.fn.DFG.Block(bid)
		for i, id := range block.Insts {
			inst := s.fn.DFG.Inst(id)
			for _, operand := range operandsOf(inst.Data) {
				if operand == noValue {
					continue
				}
				if !s.dominatesUse(idom, postIndex, instIndex, operand, bid, i) {
					s.errorf(cerrors.ErrorNonDominatingUse,
						"value %%%d used in block %d is not dominated by its definition",
						operand, bid)
				}
			}
		}
	}
}

func (s *sanity) dominatesUse(idom map[BlockID]BlockID, postIndex map[BlockID]int, instIndex map[InstID]int, operand ValueID, useBlock BlockID, usePos int) bool {
	vd := s.fn.DFG.Value(operand)
	var defBlock BlockID
	defPos := -1 // block parameters dominate every instruction in their own block
	if vd.Kind == ValueBlockParam {
		defBlock = vd.Block
	} else {
		inst := s.fn.DFG.Inst(vd.Inst)
		defBlock = inst.Block
		if p, ok := instIndex[vd.Inst]; ok {
			defPos = p
		}
	}
	if defBlock == useBlock {
		return defPos < usePos
	}
	if _, ok := postIndex[defBlock]; !ok {
		return true
	}
	if _, ok := postIndex[useBlock]; !ok {
		return true
	}
	return dominates(idom, s.fn.Entry, defBlock, useBlock)
}

func (s *sanity) successors() map[BlockID][]BlockID {
	out := make(map[BlockID][]BlockID)
	for _, bid := range s.fn.Layout {
		block := s.fn.DFG.Block(bid)
		term := block.Terminator(s.fn.DFG)
		if term == noInst {
			continue
		}
		switch d := s.fn.DFG.Inst(term).Data.(type) {
		case BrData:
			out[bid] = append(out[bid], d.Target)
		case BrIfData:
			out[bid] = append(out[bid], d.Target, d.Fallthru)
		case BrUnlessData:
			out[bid] = append(out[bid], d.Target, d.Fallthru)
		case CondBrData:
			out[bid] = append(out[bid], d.TrueTarget, d.FalseTarget)
		case SwitchData:
			for _, c := range d.Cases {
				out[bid] = append(out[bid], c.Target)
			}
			out[bid] = append(out[bid], d.Default)
		}
	}
	return out
}

// computeDominators returns each reachable block's immediate dominator
// plus a reverse-postorder index usable for the intersect step, using
// Cooper/Harvey/Kennedy's fixpoint algorithm.
func (s *sanity) computeDominators(succs map[BlockID][]BlockID) (map[BlockID]BlockID, map[BlockID]int) {
	entry := s.fn.Entry

	var postorder []BlockID
	visited := make(map[BlockID]bool)
	var visit func(BlockID)
	visit = func(b BlockID) {
		if visited[b] {
			return
		}
		visited[b] = true
		for _, s2 := range succs[b] {
			visit(s2)
		}
		postorder = append(postorder, b)
	}
	visit(entry)

	postIndex := make(map[BlockID]int, len(postorder))
	for i, b := range postorder {
		postIndex[b] = i
	}
	rpo := make([]BlockID, len(postorder))
	for i, b := range postorder {
		rpo[len(postorder)-1-i] = b
	}

	preds := make(map[BlockID][]BlockID)
	for b, ss := range succs {
		for _, s2 := range ss {
			if visited[b] && visited[s2] {
				preds[s2] = append(preds[s2], b)
			}
		}
	}

	idom := map[BlockID]BlockID{entry: entry}
	for changed := true; changed; {
		changed = false
		for _, b := range rpo {
			if b == entry {
				continue
			}
			var newIdom BlockID
			picked := false
			for _, p := range preds[b] {
				if _, ok := idom[p]; !ok {
					continue
				}
				if !picked {
					newIdom = p
					picked = true
					continue
				}
				newIdom = intersect(idom, postIndex, newIdom, p)
			}
			if !picked {
				continue
			}
			if cur, ok := idom[b]; !ok || cur != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}

	return idom, postIndex
}

func intersect(idom map[BlockID]BlockID, postIndex map[BlockID]int, a, b BlockID) BlockID {
	for a != b {
		for postIndex[a] < postIndex[b] {
			a = idom[a]
		}
		for postIndex[b] < postIndex[a] {
			b = idom[b]
		}
	}
	return a
}

// dominates reports whether a == b or a is a strict ancestor of b in
// the dominator tree rooted at the function's entry block.
func dominates(idom map[BlockID]BlockID, entry, a, b BlockID) bool {
	cur := b
	for {
		if cur == a {
			return true
		}
		if cur == entry {
			return cur == a
		}
		next, ok := idom[cur]
		if !ok || next == cur {
			return false
		}
		cur = next
	}
}

// operandsOf lists the ValueID operands InstData carries, excluding
// ConstID/BlockID fields (a dominance check only cares about SSA
// values, which are the only operand kind a prior instruction's
// absence could actually violate).
func operandsOf(data InstData) []ValueID {
	switch d := data.(type) {
	case UnaryData:
		return []ValueID{d.X}
	case BinaryData:
		return []ValueID{d.X, d.Y}
	case BinaryImmData:
		return []ValueID{d.X}
	case SetElementData:
		return []ValueID{d.Base, d.Index, d.Value}
	case SetElementImmData:
		return []ValueID{d.Base, d.Value}
	case SetElementConstData:
		return []ValueID{d.Value}
	case SetElementMutData:
		return []ValueID{d.Base, d.Index, d.Value}
	case IsTypeData:
		return []ValueID{d.X}
	case BrData:
		return append([]ValueID(nil), d.Args...)
	case BrIfData:
		return append([]ValueID{d.Cond}, d.Args...)
	case BrUnlessData:
		return append([]ValueID{d.Cond}, d.Args...)
	case CondBrData:
		out := append([]ValueID{d.Cond}, d.TrueArgs...)
		return append(out, d.FalseArgs...)
	case SwitchData:
		out := []ValueID{d.Scrutinee}
		for _, c := range d.Cases {
			out = append(out, c.Args...)
		}
		return append(out, d.DefaultArgs...)
	case RetData:
		return append([]ValueID(nil), d.Values...)
	case RetImmData:
		return []ValueID{d.Payload}
	case CallData:
		return append([]ValueID(nil), d.Args...)
	case CallIndirectData:
		return append([]ValueID{d.Fn}, d.Args...)
	case EnterData:
		return append([]ValueID(nil), d.Args...)
	case EnterIndirectData:
		return append([]ValueID{d.Fn}, d.Args...)
	case PrimOpData:
		return append([]ValueID(nil), d.Args...)
	case PrimOpImmData:
		return append([]ValueID(nil), d.Args...)
	case MakeFunData:
		return append([]ValueID(nil), d.Captures...)
	case BitsMatchStartData:
		return []ValueID{d.Src}
	case BitsMatchData:
		return []ValueID{d.Ctx, d.Size}
	case BitsMatchSkipData:
		return []ValueID{d.Ctx, d.Size}
	case BitsPushData:
		return []ValueID{d.Dest, d.Value, d.Size}
	default:
		return nil
	}
}
