package ir

// NewModule creates a module holding fns in order.
func NewModule(name string, fns ...*Function) *Module {
	return &Module{Name: name, Functions: fns}
}

// NewFunction creates a function with no blocks.
func NewFunction(name string, params ...string) *Function {
	return &Function{Name: name, Params: params}
}

// NewBlock appends an empty block to f.
func (f *Function) NewBlock(name string) *Block {
	b := &Block{Name: name, Index: len(f.Blocks), Function: f}
	f.Blocks = append(f.Blocks, b)
	return b
}

// NewInstruction appends an instruction to b and assigns its program-order
// index. Returns and branches are marked as terminators.
func (b *Block) NewInstruction(cat Category, opcode, name string, operands ...Value) *Instruction {
	inst := &Instruction{
		Index:      b.Function.nextIndex,
		Category:   cat,
		Opcode:     opcode,
		Name:       name,
		Operands:   operands,
		Block:      b,
		Terminator: cat == CategoryReturn || cat == CategoryBranch,
	}
	b.Function.nextIndex++
	b.Instructions = append(b.Instructions, inst)
	return inst
}

// To marks i as a terminator transferring control to succs.
func (i *Instruction) To(succs ...*Block) *Instruction {
	i.Terminator = true
	i.Succs = append(i.Succs, succs...)
	return i
}

// WithAlign sets the memory access alignment.
func (i *Instruction) WithAlign(align uint64) *Instruction {
	i.Align = align
	return i
}

// InstValue references the result of inst.
func InstValue(inst *Instruction) Value {
	return Value{Kind: KindInstruction, Inst: inst}
}

// IntValue is an integer constant.
func IntValue(v int64) Value {
	return Value{Kind: KindIntConst, Int: v}
}

// FloatValue is a single-precision constant.
func FloatValue(v float32) Value {
	return Value{Kind: KindFloatConst, Float: float64(v)}
}

// DoubleValue is a double-precision constant.
func DoubleValue(v float64) Value {
	return Value{Kind: KindDoubleConst, Float: v}
}

// ArgValue references a function parameter.
func ArgValue(name string) Value {
	return Value{Kind: KindArgument, Name: name}
}

// GlobalValue references a global variable or function.
func GlobalValue(name string) Value {
	return Value{Kind: KindGlobal, Name: name}
}

// ConstValue is a constant that is not a plain int or floating literal.
func ConstValue(text string) Value {
	return Value{Kind: KindOtherConst, Name: text}
}

// UnknownValue is an operand the front end could not classify.
func UnknownValue(text string) Value {
	return Value{Kind: KindUnknown, Name: text}
}
