package cdfg

import (
	"fmt"

	"github.com/l3aro/go-cdfg/pkg/graph"
	"github.com/l3aro/go-cdfg/pkg/ir"
)

// BlockGraph holds one vertex per basic block and one edge per control
// successor.
type BlockGraph = graph.Graph[*ir.Block, struct{}]

// BuildBlockGraph creates the successor graph of fn. Vertex ids follow
// block order. Every declared successor yields one edge, duplicates
// included.
func BuildBlockGraph(fn *ir.Function) (*BlockGraph, error) {
	g := graph.New[*ir.Block, struct{}]()
	for _, b := range fn.Blocks {
		g.AddVertex(b)
	}

	vertices := g.Vertices()
	for i, b := range fn.Blocks {
		for _, succ := range b.Succs() {
			found := false
			for _, v := range vertices {
				if v.Value != succ {
					continue
				}
				if err := g.AddEdge(graph.ID(i), v.ID); err != nil {
					return nil, err
				}
				found = true
				break
			}
			if !found {
				return nil, fmt.Errorf("%w: successor %q of block %q is not in function %s",
					ErrInvariant, succ.Name, b.Name, fn.Name)
			}
		}
	}
	return g, nil
}

// ExportBlockGraph writes the block graph as DOT text to path.
func ExportBlockGraph(g *BlockGraph, name, path string) error {
	return g.ExportText(path, name, blockLabels)
}

var blockLabels = graph.Labels[*ir.Block, struct{}]{
	Vertex: func(b *ir.Block) string { return b.Name },
}
