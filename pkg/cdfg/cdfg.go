// Package cdfg builds per-basic-block control/data-flow graphs for a
// function: one data-flow graph with use and def tables per block, plus a
// block-level successor graph for the whole function.
package cdfg

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/l3aro/go-cdfg/pkg/graph"
	"github.com/l3aro/go-cdfg/pkg/ir"
)

// DataGraph is the vertex/edge store of one block.
type DataGraph = graph.Graph[Vertex, EdgeProperty]

// CDFG is the data-flow graph of a single basic block.
type CDFG struct {
	Block    *ir.Block
	Graph    *DataGraph
	Vertices []Vertex // in id order
	Uses     *Table
	Defs     *Table

	ids map[Vertex]graph.ID
}

func newCDFG(b *ir.Block) *CDFG {
	return &CDFG{
		Block: b,
		Graph: graph.New[Vertex, EdgeProperty](),
		Uses:  newTable(),
		Defs:  newTable(),
		ids:   make(map[Vertex]graph.ID),
	}
}

// add inserts v into the block graph and returns its id.
func (c *CDFG) add(v Vertex) graph.ID {
	id := c.Graph.AddVertex(v)
	c.ids[v] = id
	c.Vertices = append(c.Vertices, v)
	return id
}

// register adds v with empty use and def entries.
func (c *CDFG) register(v Vertex) {
	c.add(v)
	c.Uses.Set(v, nil)
	c.Defs.Set(v, nil)
}

func (c *CDFG) connect(from, to Vertex, op ir.Value) error {
	src, ok := c.ids[from]
	if !ok {
		return fmt.Errorf("%w: %s is not in block %s", ErrInvariant, from.Label(), c.Block.Name)
	}
	dst, ok := c.ids[to]
	if !ok {
		return fmt.Errorf("%w: %s is not in block %s", ErrInvariant, to.Label(), c.Block.Name)
	}
	return c.Graph.AddEdgeProperty(src, dst, EdgeProperty{Operand: op})
}

// ID returns the block-local id of v.
func (c *CDFG) ID(v Vertex) (graph.ID, bool) {
	id, ok := c.ids[v]
	return id, ok
}

// Contains reports whether v is part of this block's graph.
func (c *CDFG) Contains(v Vertex) bool {
	_, ok := c.ids[v]
	return ok
}

// WriteDOT renders the block graph.
func (c *CDFG) WriteDOT(w io.Writer) error {
	return c.Graph.WriteDOT(w, c.Block.Name, dataLabels)
}

var dataLabels = graph.Labels[Vertex, EdgeProperty]{
	Vertex: func(v Vertex) string { return v.Label() },
	Edge:   func(p EdgeProperty) string { return p.Operand.String() },
}

// Result is everything one build produces for a function.
type Result struct {
	Function   *ir.Function
	BlockGraph *BlockGraph
	Blocks     []*CDFG // in block order

	byBlock map[*ir.Block]*CDFG
	memo    map[*ir.Instruction]*Computed
}

// CDFG returns the graph built for b, or nil.
func (r *Result) CDFG(b *ir.Block) *CDFG {
	return r.byBlock[b]
}

// VertexOf returns the vertex computing inst.
func (r *Result) VertexOf(inst *ir.Instruction) (*Computed, bool) {
	v, ok := r.memo[inst]
	return v, ok
}

// ComputedCount returns the number of distinct instruction vertices.
func (r *Result) ComputedCount() int {
	return len(r.memo)
}

// Dependencies returns the vertices of the instructions v uses within b.
func (r *Result) Dependencies(b *ir.Block, v Vertex) []Vertex {
	c := r.CDFG(b)
	if c == nil {
		return nil
	}
	uses, _ := c.Uses.Get(v)
	deps := make([]Vertex, 0, len(uses))
	for _, inst := range uses {
		if dep, ok := r.memo[inst]; ok {
			deps = append(deps, dep)
		}
	}
	return deps
}

// ExportBlocks writes one DOT file per block into dir, named after the
// block. Path separators in block names are replaced so every file lands
// directly in dir.
func (r *Result) ExportBlocks(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	var paths []string
	for _, c := range r.Blocks {
		path := filepath.Join(dir, fmt.Sprintf("%02d_%s.dot", c.Block.Index, fileSafe(c.Block.Name)))
		if err := c.Graph.ExportText(path, c.Block.Name, dataLabels); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func fileSafe(name string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return '_'
		}
		return r
	}, name)
}
