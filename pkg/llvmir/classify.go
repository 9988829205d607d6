package llvmir

import (
	lir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"

	"github.com/l3aro/go-cdfg/pkg/ir"
)

// classify assigns the opcode category of a non-terminator instruction.
func classify(inst lir.Instruction) (ir.Category, string) {
	switch inst.(type) {
	case *lir.InstAlloca:
		return ir.CategoryAlloca, "alloca"
	case *lir.InstLoad:
		return ir.CategoryLoad, "load"
	case *lir.InstStore:
		return ir.CategoryStore, "store"
	case *lir.InstGetElementPtr:
		return ir.CategoryAddress, "getelementptr"
	case *lir.InstICmp:
		return ir.CategoryCompare, "icmp"
	case *lir.InstFCmp:
		return ir.CategoryCompare, "fcmp"
	case *lir.InstCall:
		return ir.CategoryCall, "call"
	case *lir.InstFNeg:
		return ir.CategoryArith, "fneg"
	}
	if op, ok := castOpcode(inst); ok {
		return ir.CategoryCast, op
	}
	if op, ok := binaryOpcode(inst); ok {
		return ir.CategoryArith, op
	}
	return ir.CategoryUnmodeled, opcodeOf(inst.LLString())
}

// classifyTerm assigns the opcode category of a terminator.
func classifyTerm(term lir.Terminator) (ir.Category, string) {
	switch term.(type) {
	case *lir.TermRet:
		return ir.CategoryReturn, "ret"
	case *lir.TermBr, *lir.TermCondBr:
		return ir.CategoryBranch, "br"
	}
	return ir.CategoryUnmodeled, opcodeOf(term.LLString())
}

func castOpcode(inst lir.Instruction) (string, bool) {
	switch inst.(type) {
	case *lir.InstTrunc:
		return "trunc", true
	case *lir.InstZExt:
		return "zext", true
	case *lir.InstSExt:
		return "sext", true
	case *lir.InstFPTrunc:
		return "fptrunc", true
	case *lir.InstFPExt:
		return "fpext", true
	case *lir.InstFPToUI:
		return "fptoui", true
	case *lir.InstFPToSI:
		return "fptosi", true
	case *lir.InstUIToFP:
		return "uitofp", true
	case *lir.InstSIToFP:
		return "sitofp", true
	case *lir.InstPtrToInt:
		return "ptrtoint", true
	case *lir.InstIntToPtr:
		return "inttoptr", true
	case *lir.InstBitCast:
		return "bitcast", true
	case *lir.InstAddrSpaceCast:
		return "addrspacecast", true
	}
	return "", false
}

func castOperands(inst lir.Instruction) []value.Value {
	var from value.Value
	switch inst := inst.(type) {
	case *lir.InstTrunc:
		from = inst.From
	case *lir.InstZExt:
		from = inst.From
	case *lir.InstSExt:
		from = inst.From
	case *lir.InstFPTrunc:
		from = inst.From
	case *lir.InstFPExt:
		from = inst.From
	case *lir.InstFPToUI:
		from = inst.From
	case *lir.InstFPToSI:
		from = inst.From
	case *lir.InstUIToFP:
		from = inst.From
	case *lir.InstSIToFP:
		from = inst.From
	case *lir.InstPtrToInt:
		from = inst.From
	case *lir.InstIntToPtr:
		from = inst.From
	case *lir.InstBitCast:
		from = inst.From
	case *lir.InstAddrSpaceCast:
		from = inst.From
	default:
		return nil
	}
	return []value.Value{from}
}

func binaryOpcode(inst lir.Instruction) (string, bool) {
	switch inst.(type) {
	case *lir.InstAdd:
		return "add", true
	case *lir.InstFAdd:
		return "fadd", true
	case *lir.InstSub:
		return "sub", true
	case *lir.InstFSub:
		return "fsub", true
	case *lir.InstMul:
		return "mul", true
	case *lir.InstFMul:
		return "fmul", true
	case *lir.InstUDiv:
		return "udiv", true
	case *lir.InstSDiv:
		return "sdiv", true
	case *lir.InstFDiv:
		return "fdiv", true
	case *lir.InstURem:
		return "urem", true
	case *lir.InstSRem:
		return "srem", true
	case *lir.InstFRem:
		return "frem", true
	case *lir.InstShl:
		return "shl", true
	case *lir.InstLShr:
		return "lshr", true
	case *lir.InstAShr:
		return "ashr", true
	case *lir.InstAnd:
		return "and", true
	case *lir.InstOr:
		return "or", true
	case *lir.InstXor:
		return "xor", true
	}
	return "", false
}

func binaryOperands(inst lir.Instruction) []value.Value {
	switch inst := inst.(type) {
	case *lir.InstAdd:
		return []value.Value{inst.X, inst.Y}
	case *lir.InstFAdd:
		return []value.Value{inst.X, inst.Y}
	case *lir.InstSub:
		return []value.Value{inst.X, inst.Y}
	case *lir.InstFSub:
		return []value.Value{inst.X, inst.Y}
	case *lir.InstMul:
		return []value.Value{inst.X, inst.Y}
	case *lir.InstFMul:
		return []value.Value{inst.X, inst.Y}
	case *lir.InstUDiv:
		return []value.Value{inst.X, inst.Y}
	case *lir.InstSDiv:
		return []value.Value{inst.X, inst.Y}
	case *lir.InstFDiv:
		return []value.Value{inst.X, inst.Y}
	case *lir.InstURem:
		return []value.Value{inst.X, inst.Y}
	case *lir.InstSRem:
		return []value.Value{inst.X, inst.Y}
	case *lir.InstFRem:
		return []value.Value{inst.X, inst.Y}
	case *lir.InstShl:
		return []value.Value{inst.X, inst.Y}
	case *lir.InstLShr:
		return []value.Value{inst.X, inst.Y}
	case *lir.InstAShr:
		return []value.Value{inst.X, inst.Y}
	case *lir.InstAnd:
		return []value.Value{inst.X, inst.Y}
	case *lir.InstOr:
		return []value.Value{inst.X, inst.Y}
	case *lir.InstXor:
		return []value.Value{inst.X, inst.Y}
	}
	return nil
}
