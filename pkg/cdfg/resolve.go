package cdfg

import "github.com/l3aro/go-cdfg/pkg/ir"

// resolve maps op to a vertex of the current block. Instruction operands go
// through the function-wide memo table and never produce edges. Every other
// operand yields a fresh leaf, registered with empty use/def entries and
// connected to consumer. align tags argument, global and unresolved leaves
// that feed a load.
func (b *builder) resolve(op ir.Value, consumer Vertex, align uint64) (Vertex, bool, error) {
	if op.Kind == ir.KindInstruction {
		if v, ok := b.memo[op.Inst]; ok {
			return v, true, nil
		}
		// forward reference: placeholder until the producer is visited
		v := &Computed{Inst: op.Inst}
		b.memo[op.Inst] = v
		b.cur.register(v)
		return v, true, nil
	}

	leaf := newLeaf(op, align)
	b.cur.register(leaf)
	if err := b.cur.connect(leaf, consumer, op); err != nil {
		return nil, false, err
	}
	return leaf, false, nil
}

func newLeaf(op ir.Value, align uint64) Vertex {
	switch op.Kind {
	case ir.KindIntConst:
		return &IntConst{Value: op.Int}
	case ir.KindFloatConst:
		return &FloatConst{Value: float32(op.Float)}
	case ir.KindDoubleConst:
		return &DoubleConst{Value: op.Float}
	case ir.KindArgument:
		return &NamedExternal{Name: op.Name, Origin: OriginArgument, Align: align}
	case ir.KindGlobal:
		return &NamedExternal{Name: op.Name, Origin: OriginGlobal, Align: align}
	default:
		return &Unresolved{Operand: op.String(), Align: align}
	}
}

// consume resolves op for consumer and appends the producing instruction to
// uses when op is an instruction.
func (b *builder) consume(op ir.Value, consumer Vertex, align uint64, uses []*ir.Instruction) ([]*ir.Instruction, error) {
	_, isInst, err := b.resolve(op, consumer, align)
	if err != nil {
		return uses, err
	}
	if isInst {
		uses = append(uses, op.Inst)
	}
	return uses, nil
}
