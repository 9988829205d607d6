package cdfg

import (
	"errors"
	"fmt"

	"github.com/l3aro/go-cdfg/internal/log"
	"github.com/l3aro/go-cdfg/pkg/ir"
)

// ErrInvariant is returned when the input violates an assumption the builder
// depends on, such as a return operand that cannot be classified.
var ErrInvariant = errors.New("cdfg invariant violated")

// Option configures a build.
type Option func(*builder)

// WithLogger routes build tracing to l. Per-instruction detail is logged at
// debug level.
func WithLogger(l log.Logger) Option {
	return func(b *builder) {
		if l != nil {
			b.log = l
		}
	}
}

// WithBlockGraphDOT writes the block graph to path once it is built.
// Write failures are logged and do not fail the build.
func WithBlockGraphDOT(path string) Option {
	return func(b *builder) {
		b.dotPath = path
	}
}

type builder struct {
	log     log.Logger
	dotPath string

	memo map[*ir.Instruction]*Computed
	cur  *CDFG
}

// Build selects the first function of mod whose name contains target and
// builds its graphs.
func Build(mod *ir.Module, target string, opts ...Option) (*Result, error) {
	fn, err := mod.FindFunction(target)
	if err != nil {
		return nil, err
	}
	return BuildFunction(fn, opts...)
}

// BuildFunction builds the block graph and the per-block data-flow graphs of
// fn. Each call starts from empty state.
func BuildFunction(fn *ir.Function, opts ...Option) (*Result, error) {
	b := &builder{
		log:  log.Nop(),
		memo: make(map[*ir.Instruction]*Computed),
	}
	for _, opt := range opts {
		opt(b)
	}

	bg, err := BuildBlockGraph(fn)
	if err != nil {
		return nil, fmt.Errorf("building block graph for %s: %w", fn.Name, err)
	}
	b.log.Info("built block graph", "function", fn.Name, "blocks", bg.NumVertices(), "edges", bg.NumEdges())

	if b.dotPath != "" {
		if err := ExportBlockGraph(bg, fn.Name, b.dotPath); err != nil {
			b.log.Warn("block graph export failed", "path", b.dotPath, "error", err)
		}
	}

	res := &Result{
		Function:   fn,
		BlockGraph: bg,
		byBlock:    make(map[*ir.Block]*CDFG, len(fn.Blocks)),
	}

	for _, blk := range fn.Blocks {
		c := newCDFG(blk)
		res.Blocks = append(res.Blocks, c)
		res.byBlock[blk] = c
		b.cur = c

		for _, inst := range blk.Instructions {
			if err := b.visit(inst); err != nil {
				return nil, fmt.Errorf("block %s: %w", blk.Name, err)
			}
		}
		b.log.Debug("finished block", "block", blk.Name, "vertices", c.Graph.NumVertices(), "edges", c.Graph.NumEdges())
	}

	res.memo = b.memo
	return res, nil
}

// output returns the vertex computing inst, creating it on first sight and
// making sure it belongs to the current block.
func (b *builder) output(inst *ir.Instruction) *Computed {
	v, ok := b.memo[inst]
	if !ok {
		v = &Computed{Inst: inst}
		b.memo[inst] = v
	}
	if !b.cur.Contains(v) {
		b.cur.add(v)
	}
	return v
}

func (b *builder) visit(inst *ir.Instruction) error {
	self := b.output(inst)

	var (
		uses []*ir.Instruction
		defs []*ir.Instruction
		err  error
	)

	switch inst.Category {
	case ir.CategoryAlloca:
		defs = []*ir.Instruction{inst}

	case ir.CategoryReturn:
		if len(inst.Operands) > 0 {
			op := inst.Operands[0]
			switch op.Kind {
			case ir.KindInstruction:
				uses, err = b.consume(op, self, 0, uses)
			case ir.KindUnknown:
				return fmt.Errorf("%w: unclassifiable return operand %q in %q", ErrInvariant, op.String(), inst.String())
			}
			// constants, arguments and globals stay unconnected
		}

	case ir.CategoryCall:
		for _, op := range inst.Operands {
			if op.IsConstant() {
				continue
			}
			if uses, err = b.consume(op, self, 0, uses); err != nil {
				break
			}
		}
		defs = []*ir.Instruction{inst}

	case ir.CategoryBranch:
		if cond, ok := inst.Condition(); ok {
			uses, err = b.consume(cond, self, 0, uses)
		}

	case ir.CategoryLoad:
		if len(inst.Operands) == 0 {
			return fmt.Errorf("%w: load without pointer operand: %q", ErrInvariant, inst.String())
		}
		uses, err = b.consume(inst.Operands[0], self, inst.Align, uses)
		defs = []*ir.Instruction{inst}

	case ir.CategoryStore:
		ptr, val, ok := inst.StoreOperands()
		if !ok {
			return fmt.Errorf("%w: store needs a value and a pointer: %q", ErrInvariant, inst.String())
		}
		if uses, err = b.consume(ptr, self, 0, uses); err == nil {
			uses, err = b.consume(val, self, 0, uses)
		}
		defs = []*ir.Instruction{inst}

	case ir.CategoryAddress, ir.CategoryCompare, ir.CategoryCast, ir.CategoryArith:
		for _, op := range inst.Operands {
			if uses, err = b.consume(op, self, 0, uses); err != nil {
				break
			}
		}
		defs = []*ir.Instruction{inst}

	default:
		// unmodeled: operands are not inspected
	}

	if err != nil {
		return err
	}

	b.cur.Uses.Set(self, uses)
	b.cur.Defs.Set(self, defs)

	b.log.Debug("visited instruction",
		"index", inst.Index,
		"category", inst.Category,
		"inst", inst.String(),
		"uses", len(uses),
		"defs", len(defs),
	)
	return nil
}
