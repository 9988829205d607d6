// Package llvmir converts textual LLVM IR into the ir program model using
// github.com/llir/llvm.
package llvmir

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"os"
	"strings"

	"github.com/llir/llvm/asm"
	lir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/l3aro/go-cdfg/pkg/ir"
)

// ErrParse wraps every failure to parse an IR file.
var ErrParse = errors.New("failed to parse LLVM IR")

// ParseFile reads and converts the .ll file at path.
func ParseFile(path string) (*ir.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseBytes(path, data)
}

// ParseBytes converts IR source text. name is used in error messages and
// as the module name.
func ParseBytes(name string, content []byte) (*ir.Module, error) {
	m, err := asm.ParseBytes(name, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, name, err)
	}
	return Convert(name, m), nil
}

// Convert maps an llir module to the ir model. Only function definitions are
// kept; declarations have no blocks to analyze.
func Convert(name string, m *lir.Module) *ir.Module {
	mod := ir.NewModule(name)
	for _, f := range m.Funcs {
		if len(f.Blocks) == 0 {
			continue
		}
		mod.Functions = append(mod.Functions, convertFunc(f))
	}
	return mod
}

type converter struct {
	fn     *ir.Function
	blocks map[*lir.Block]*ir.Block
	values map[value.Value]*ir.Instruction
}

func convertFunc(f *lir.Func) *ir.Function {
	var params []string
	for _, p := range f.Params {
		params = append(params, p.Name())
	}

	c := &converter{
		fn:     ir.NewFunction(f.Name(), params...),
		blocks: make(map[*lir.Block]*ir.Block, len(f.Blocks)),
		values: make(map[value.Value]*ir.Instruction),
	}

	// first pass creates every block and instruction so operands can refer
	// to instructions defined later in the function
	type pending struct {
		inst *ir.Instruction
		src  interface{}
	}
	var work []pending

	for _, b := range f.Blocks {
		blk := c.fn.NewBlock(b.Name())
		c.blocks[b] = blk

		for _, inst := range b.Insts {
			cat, opcode := classify(inst)
			ni := blk.NewInstruction(cat, opcode, resultName(inst))
			ni.Text = inst.LLString()
			if v, ok := inst.(value.Value); ok {
				c.values[v] = ni
			}
			work = append(work, pending{inst: ni, src: inst})
		}

		if b.Term != nil {
			cat, opcode := classifyTerm(b.Term)
			ni := blk.NewInstruction(cat, opcode, resultName(b.Term))
			ni.Text = b.Term.LLString()
			ni.Terminator = true
			if v, ok := b.Term.(value.Value); ok {
				c.values[v] = ni
			}
			work = append(work, pending{inst: ni, src: b.Term})
		}
	}

	for _, w := range work {
		switch src := w.src.(type) {
		case lir.Terminator:
			c.fillTerm(w.inst, src)
		case lir.Instruction:
			c.fillInst(w.inst, src)
		}
	}
	return c.fn
}

func (c *converter) fillInst(ni *ir.Instruction, inst lir.Instruction) {
	var ops []value.Value

	switch inst := inst.(type) {
	case *lir.InstLoad:
		ops = []value.Value{inst.Src}
		ni.Align = uint64(inst.Align)
	case *lir.InstStore:
		ops = []value.Value{inst.Src, inst.Dst}
		ni.Align = uint64(inst.Align)
	case *lir.InstGetElementPtr:
		ops = append([]value.Value{inst.Src}, inst.Indices...)
	case *lir.InstICmp:
		ops = []value.Value{inst.X, inst.Y}
	case *lir.InstFCmp:
		ops = []value.Value{inst.X, inst.Y}
	case *lir.InstCall:
		ops = append(append(ops, inst.Args...), inst.Callee)
	case *lir.InstFNeg:
		ops = []value.Value{inst.X}
	default:
		ops = castOperands(inst)
		if ops == nil {
			ops = binaryOperands(inst)
		}
	}

	for _, op := range ops {
		ni.Operands = append(ni.Operands, c.value(op))
	}
}

func (c *converter) fillTerm(ni *ir.Instruction, term lir.Terminator) {
	switch term := term.(type) {
	case *lir.TermRet:
		if term.X != nil {
			ni.Operands = []ir.Value{c.value(term.X)}
		}
	case *lir.TermCondBr:
		ni.Operands = []ir.Value{c.value(term.Cond)}
	}
	for _, s := range term.Succs() {
		if blk, ok := c.blocks[s]; ok {
			ni.Succs = append(ni.Succs, blk)
		}
	}
}

// value classifies an operand.
func (c *converter) value(v value.Value) ir.Value {
	switch v.(type) {
	case lir.Instruction, lir.Terminator:
		if inst, ok := c.values[v]; ok {
			return ir.InstValue(inst)
		}
		return ir.UnknownValue(v.Ident())
	}

	switch v := v.(type) {
	case *constant.Int:
		return ir.IntValue(signExtend(v.X, v.Typ.BitSize))
	case *constant.Float:
		return floatValue(v)
	case *lir.Param:
		return ir.ArgValue(v.Name())
	case *lir.Global:
		return ir.GlobalValue(v.Name())
	case *lir.Func:
		return ir.GlobalValue(v.Name())
	case *lir.Alias:
		return ir.GlobalValue(v.Name())
	case *lir.IFunc:
		return ir.GlobalValue(v.Name())
	case constant.Constant:
		return ir.ConstValue(v.Ident())
	}
	return ir.UnknownValue(v.Ident())
}

func floatValue(v *constant.Float) ir.Value {
	var f float64
	switch {
	case v.NaN:
		f = math.NaN()
	case v.X != nil:
		f, _ = v.X.Float64()
	}

	switch v.Typ.Kind {
	case types.FloatKindFloat:
		return ir.FloatValue(float32(f))
	case types.FloatKindDouble:
		return ir.DoubleValue(f)
	}
	return ir.ConstValue(v.Ident())
}

// signExtend interprets the low bits of x as a two's complement integer.
func signExtend(x *big.Int, bits uint64) int64 {
	var v int64
	if x.IsInt64() {
		v = x.Int64()
	} else {
		mask := new(big.Int).SetUint64(math.MaxUint64)
		v = int64(new(big.Int).And(x, mask).Uint64())
	}
	if bits == 0 || bits >= 64 {
		return v
	}
	shift := 64 - bits
	return v << shift >> shift
}

func resultName(inst interface{}) string {
	v, ok := inst.(value.Named)
	if !ok {
		return ""
	}
	if _, void := v.Type().(*types.VoidType); void {
		return ""
	}
	return v.Name()
}

// opcodeOf extracts the opcode keyword from an instruction's text.
func opcodeOf(text string) string {
	if i := strings.Index(text, " = "); i >= 0 {
		text = text[i+3:]
	}
	fields := strings.Fields(text)
	for _, f := range fields {
		switch f {
		case "tail", "musttail", "notail":
			continue
		}
		return f
	}
	return "unknown"
}
