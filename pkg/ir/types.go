// Package ir is the read-only program model consumed by the CDFG builder:
// modules hold functions, functions hold ordered basic blocks, and blocks
// hold ordered instructions with classified operands.
package ir

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrFunctionNotFound is returned when no function matches a requested name.
var ErrFunctionNotFound = errors.New("function not found")

// Category is the opcode class an instruction is dispatched on.
type Category int

const (
	CategoryUnmodeled Category = iota // no data-flow treatment
	CategoryAlloca                    // stack allocation
	CategoryReturn                    // function return
	CategoryCall                      // direct or indirect call
	CategoryBranch                    // conditional or unconditional branch
	CategoryLoad                      // memory read
	CategoryStore                     // memory write
	CategoryAddress                   // address computation (getelementptr)
	CategoryCompare                   // integer or floating compare
	CategoryCast                      // type conversion
	CategoryArith                     // binary, bitwise and unary arithmetic
)

var categoryNames = [...]string{
	CategoryUnmodeled: "unmodeled",
	CategoryAlloca:    "alloca",
	CategoryReturn:    "return",
	CategoryCall:      "call",
	CategoryBranch:    "branch",
	CategoryLoad:      "load",
	CategoryStore:     "store",
	CategoryAddress:   "address",
	CategoryCompare:   "compare",
	CategoryCast:      "cast",
	CategoryArith:     "arith",
}

func (c Category) String() string {
	if c >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// ValueKind classifies an operand.
type ValueKind int

const (
	KindUnknown ValueKind = iota
	KindInstruction
	KindIntConst
	KindFloatConst
	KindDoubleConst
	KindOtherConst // undef, null, constant expressions, aggregates
	KindArgument
	KindGlobal
)

var valueKindNames = [...]string{
	KindUnknown:     "unknown",
	KindInstruction: "instruction",
	KindIntConst:    "int",
	KindFloatConst:  "float",
	KindDoubleConst: "double",
	KindOtherConst:  "const",
	KindArgument:    "argument",
	KindGlobal:      "global",
}

func (k ValueKind) String() string {
	if k >= 0 && int(k) < len(valueKindNames) {
		return valueKindNames[k]
	}
	return fmt.Sprintf("ValueKind(%d)", int(k))
}

// Value is an instruction operand.
type Value struct {
	Kind  ValueKind
	Inst  *Instruction // KindInstruction
	Int   int64        // KindIntConst, sign-extended
	Float float64      // KindFloatConst and KindDoubleConst
	Name  string       // argument or global name; source text otherwise
}

// IsConstant reports whether v is a literal constant of any kind.
func (v Value) IsConstant() bool {
	switch v.Kind {
	case KindIntConst, KindFloatConst, KindDoubleConst, KindOtherConst:
		return true
	}
	return false
}

func (v Value) String() string {
	switch v.Kind {
	case KindInstruction:
		if v.Inst == nil {
			return "<nil>"
		}
		return v.Inst.Ref()
	case KindIntConst:
		return strconv.FormatInt(v.Int, 10)
	case KindFloatConst:
		return strconv.FormatFloat(v.Float, 'g', -1, 32)
	case KindDoubleConst:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindArgument:
		return "%" + v.Name
	case KindGlobal:
		return "@" + v.Name
	default:
		return v.Name
	}
}

// Module is a parsed program.
type Module struct {
	Name      string
	Functions []*Function
}

// FindFunction returns the first function, in declaration order, whose name
// contains substr.
func (m *Module) FindFunction(substr string) (*Function, error) {
	for _, fn := range m.Functions {
		if strings.Contains(fn.Name, substr) {
			return fn, nil
		}
	}
	return nil, fmt.Errorf("%w: no function name contains %q", ErrFunctionNotFound, substr)
}

// Function is a function definition with its blocks in declaration order.
type Function struct {
	Name   string
	Params []string
	Blocks []*Block

	nextIndex int
}

// Block returns the block with the given name, or nil.
func (f *Function) Block(name string) *Block {
	for _, b := range f.Blocks {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// NumInstructions returns the number of instructions across all blocks.
func (f *Function) NumInstructions() int {
	return f.nextIndex
}

// Block is a basic block. The terminator, when present, is the last
// instruction.
type Block struct {
	Name         string
	Index        int
	Function     *Function
	Instructions []*Instruction
}

// Terminator returns the block's terminator instruction, or nil.
func (b *Block) Terminator() *Instruction {
	if len(b.Instructions) == 0 {
		return nil
	}
	last := b.Instructions[len(b.Instructions)-1]
	if !last.Terminator {
		return nil
	}
	return last
}

// Succs returns the terminator's successor blocks in declared order.
func (b *Block) Succs() []*Block {
	if term := b.Terminator(); term != nil {
		return term.Succs
	}
	return nil
}

// Instruction is a single IR instruction.
type Instruction struct {
	Index      int // program-order position within the function
	Category   Category
	Opcode     string
	Name       string // result name; empty when the instruction yields no value
	Text       string
	Operands   []Value
	Align      uint64 // memory access alignment for loads and stores
	Block      *Block
	Terminator bool
	Succs      []*Block
}

// Ref returns the name the instruction's result is referenced by.
func (i *Instruction) Ref() string {
	if i.Name != "" {
		return "%" + i.Name
	}
	return fmt.Sprintf("%s#%d", i.Opcode, i.Index)
}

func (i *Instruction) String() string {
	if i.Text != "" {
		return i.Text
	}
	return render(i)
}

// StoreOperands returns the pointer written to and the value stored.
// Store operands are laid out as [value, pointer].
func (i *Instruction) StoreOperands() (ptr, val Value, ok bool) {
	if i.Category != CategoryStore || len(i.Operands) < 2 {
		return Value{}, Value{}, false
	}
	return i.Operands[1], i.Operands[0], true
}

// Callee returns the called value. Call operands are laid out as
// [args..., callee].
func (i *Instruction) Callee() (Value, bool) {
	if i.Category != CategoryCall || len(i.Operands) == 0 {
		return Value{}, false
	}
	return i.Operands[len(i.Operands)-1], true
}

// Condition returns the condition of a conditional branch.
func (i *Instruction) Condition() (Value, bool) {
	if i.Category != CategoryBranch || len(i.Operands) == 0 {
		return Value{}, false
	}
	return i.Operands[0], true
}

func render(i *Instruction) string {
	var sb strings.Builder
	if i.Name != "" {
		sb.WriteString("%" + i.Name + " = ")
	}
	sb.WriteString(i.Opcode)
	for n, op := range i.Operands {
		if n == 0 {
			sb.WriteString(" ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(op.String())
	}
	for n, s := range i.Succs {
		if n == 0 && len(i.Operands) == 0 {
			sb.WriteString(" ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString("label %" + s.Name)
	}
	return sb.String()
}
