// SPDX-License-Identifier: Apache-2.0
package mir

import (
	"fmt"
	"strings"
)

// Print renders fn as a textual debug dump, one line per instruction,
// in the style of x/tools/go/ssa's function printer: not a wire
// format, just enough to read back what the builder produced.
func Print(fn *Function) string {
	var out strings.Builder
	fmt.Fprintf(&out, "func %s {\n", fn.Name())
	for _, id := range fn.Layout {
		printBlock(&out, fn, id)
	}
	out.WriteString("}\n")
	return out.String()
}

func printBlock(out *strings.Builder, fn *Function, id BlockID) {
	block := fn.DFG.Block(id)
	fmt.Fprintf(out, "block%d(", id)
	for i, p := range block.Params {
		if i > 0 {
			out.WriteString(", ")
		}
		fmt.Fprintf(out, "%%%d %s", p, fn.DFG.ValueType(p))
	}
	out.WriteString("):\n")
	for _, instID := range block.Insts {
		printInst(out, fn, instID)
	}
}

func printInst(out *strings.Builder, fn *Function, id InstID) {
	inst := fn.DFG.Inst(id)
	out.WriteString("    ")
	if inst.Result != noValue {
		fmt.Fprintf(out, "%%%d %s = ", inst.Result, fn.DFG.ValueType(inst.Result))
	}
	fmt.Fprintf(out, "%s %s\n", inst.Op, describeData(inst.Data))
}

func describeData(data InstData) string {
	switch d := data.(type) {
	case BinaryData:
		return fmt.Sprintf("%s %%%d, %%%d", d.Arith, d.X, d.Y)
	case UnaryData:
		return fmt.Sprintf("%s %%%d", d.Arith, d.X)
	case UnaryConstData:
		return fmt.Sprintf("const%d", d.Result)
	case IsTypeData:
		return fmt.Sprintf("%%%d is %s", d.X, d.Term)
	case BrData:
		return fmt.Sprintf("block%d%s", d.Target, argList(d.Args))
	case CondBrData:
		return fmt.Sprintf("%%%d ? block%d%s : block%d%s", d.Cond, d.TrueTarget, argList(d.TrueArgs), d.FalseTarget, argList(d.FalseArgs))
	case SwitchData:
		return fmt.Sprintf("%%%d (%d cases) default block%d%s", d.Scrutinee, len(d.Cases), d.Default, argList(d.DefaultArgs))
	case RetData:
		return fmt.Sprintf("%s", argList(d.Values))
	case RetImmData:
		return fmt.Sprintf("const%d, %%%d", d.Flag, d.Payload)
	case CallData:
		return fmt.Sprintf("%s%s", d.Callee, argList(d.Args))
	case EnterData:
		return fmt.Sprintf("%s%s", d.Callee, argList(d.Args))
	case PrimOpData:
		return fmt.Sprintf("%s%s", d.Prim, argList(d.Args))
	case MakeFunData:
		return fmt.Sprintf("%s%s", d.Callee, argList(d.Captures))
	default:
		return ""
	}
}

func argList(args []ValueID) string {
	var b strings.Builder
	b.WriteString("(")
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%%%d", a)
	}
	b.WriteString(")")
	return b.String()
}
