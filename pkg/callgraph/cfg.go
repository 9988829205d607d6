package callgraph

import (
	"github.com/zboralski/lattice"
	"github.com/zboralski/lattice/render"

	"github.com/l3aro/go-cdfg/pkg/ir"
)

// BuildFuncCFG maps fn's blocks to a lattice.FuncCFG. Block ranges are
// instruction indices, and the two successors of a conditional branch are
// tagged "T" and "F".
func BuildFuncCFG(fn *ir.Function) *lattice.FuncCFG {
	lcfg := &lattice.FuncCFG{Name: fn.Name}
	for _, b := range fn.Blocks {
		lb := &lattice.BasicBlock{ID: b.Index}
		if n := len(b.Instructions); n > 0 {
			lb.Start = b.Instructions[0].Index
			lb.End = b.Instructions[n-1].Index + 1
		}

		succs := b.Succs()
		lb.Term = len(succs) == 0
		conditional := false
		if term := b.Terminator(); term != nil {
			_, conditional = term.Condition()
		}
		for i, s := range succs {
			cond := ""
			if conditional && len(succs) == 2 {
				cond = [2]string{"T", "F"}[i]
			}
			lb.Succs = append(lb.Succs, lattice.Successor{BlockID: s.Index, Cond: cond})
		}

		for _, inst := range b.Instructions {
			callee, ok := inst.Callee()
			if !ok {
				continue
			}
			name := callee.String()
			if callee.Kind == ir.KindGlobal {
				name = callee.Name
			}
			lb.Calls = append(lb.Calls, lattice.CallSite{Offset: inst.Index, Callee: name})
		}

		lcfg.Blocks = append(lcfg.Blocks, lb)
	}
	return lcfg
}

// CFGDOT renders fn's block CFG as lattice-styled DOT text.
func CFGDOT(fn *ir.Function) string {
	g := &lattice.CFGGraph{Funcs: []*lattice.FuncCFG{BuildFuncCFG(fn)}}
	return render.DOTCFG(g, fn.Name)
}

// DOT renders the module call graph.
func DOT(mod *ir.Module, title string) string {
	return render.DOT(Build(mod), title)
}
