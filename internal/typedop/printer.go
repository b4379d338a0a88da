// SPDX-License-Identifier: Apache-2.0
package typedop

import (
	"fmt"
	"strings"
)

// Print renders fn in the same one-line-per-op style as mir.Print, one
// level down the pipeline.
func Print(fn *Function) string {
	var out strings.Builder
	fmt.Fprintf(&out, "func %s {\n", fn.Name)
	for _, id := range fn.Layout {
		printBlock(&out, fn, id)
	}
	out.WriteString("}\n")
	return out.String()
}

func printBlock(out *strings.Builder, fn *Function, id BlockID) {
	block := fn.Block(id)
	fmt.Fprintf(out, "block%d(", id)
	for i, p := range block.Params {
		if i > 0 {
			out.WriteString(", ")
		}
		fmt.Fprintf(out, "%%%d %s", p, fn.ValueType(p))
	}
	out.WriteString("):\n")
	for _, opID := range block.Ops {
		printOp(out, fn, opID)
	}
}

func printOp(out *strings.Builder, fn *Function, id OpID) {
	op := fn.Op(id)
	out.WriteString("    ")
	if op.Result != noValue {
		fmt.Fprintf(out, "%%%d %s = ", op.Result, fn.ValueType(op.Result))
	}
	fmt.Fprintf(out, "%s %s\n", op.Kind, describeData(op.Data))
}

func describeData(data OpData) string {
	switch d := data.(type) {
	case CastData:
		return fmt.Sprintf("%s %%%d", d.Dir, d.Src)
	case IntArithData:
		return fmt.Sprintf("%s %%%d, %%%d", d.Arith, d.X, d.Y)
	case FloatArithData:
		return fmt.Sprintf("%s %%%d, %%%d", d.Arith, d.X, d.Y)
	case CmpData:
		return fmt.Sprintf("%s %%%d, %%%d", d.Arith, d.X, d.Y)
	case RuntimeCallData:
		return fmt.Sprintf("%s%s", d.Callee, argList(d.Args))
	case BrData:
		return fmt.Sprintf("block%d%s", d.Target, argList(d.Args))
	case CondBrData:
		return fmt.Sprintf("%%%d ? block%d%s : block%d%s", d.Cond, d.TrueTarget, argList(d.TrueArgs), d.FalseTarget, argList(d.FalseArgs))
	case SwitchData:
		return fmt.Sprintf("%%%d (%d cases) default block%d%s", d.Scrutinee, len(d.Cases), d.Default, argList(d.DefaultArgs))
	case RetData:
		return argList(d.Values)
	case RetImmData:
		return fmt.Sprintf("%%%d, %%%d", d.Flag, d.Payload)
	case EnterData:
		return fmt.Sprintf("%s%s", d.Callee, argList(d.Args))
	case PrimTermData:
		return fmt.Sprintf("%s%s", d.Prim, argList(d.Args))
	case MakeFunData:
		return fmt.Sprintf("%s%s", d.Callee, argList(d.Captures))
	case ConstMaterializeData:
		return fmt.Sprintf("const(%s)", d.Item.Kind)
	case UnsupportedConstData:
		return fmt.Sprintf("<unsupported %s>", d.Kind)
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
