package cdfg

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/l3aro/go-cdfg/pkg/graph"
	"github.com/l3aro/go-cdfg/pkg/ir"
)

// Snapshot is a self-contained, serializable view of a Result. Instructions
// are referenced by their program-order index.
type Snapshot struct {
	Function     string          `json:"function" msgpack:"function"`
	Blocks       []BlockSnapshot `json:"blocks" msgpack:"blocks"`
	ControlEdges []ControlEdge   `json:"control_edges" msgpack:"control_edges"`
}

// BlockSnapshot is one block's data-flow graph.
type BlockSnapshot struct {
	Name     string         `json:"name" msgpack:"name"`
	Vertices []VertexRecord `json:"vertices" msgpack:"vertices"`
	Edges    []EdgeRecord   `json:"edges" msgpack:"edges"`
}

// VertexRecord describes a vertex and its use/def entries.
type VertexRecord struct {
	ID          int    `json:"id" msgpack:"id"`
	Kind        string `json:"kind" msgpack:"kind"`
	Label       string `json:"label" msgpack:"label"`
	Instruction int    `json:"instruction" msgpack:"instruction"` // -1 for leaves
	Uses        []int  `json:"uses" msgpack:"uses"`
	Defs        []int  `json:"defs" msgpack:"defs"`
}

// EdgeRecord is a data edge between block-local vertex ids.
type EdgeRecord struct {
	From    int    `json:"from" msgpack:"from"`
	To      int    `json:"to" msgpack:"to"`
	Operand string `json:"operand,omitempty" msgpack:"operand,omitempty"`
}

// ControlEdge is a block graph edge between block names.
type ControlEdge struct {
	From string `json:"from" msgpack:"from"`
	To   string `json:"to" msgpack:"to"`
}

// NewSnapshot captures r.
func NewSnapshot(r *Result) *Snapshot {
	s := &Snapshot{
		Function:     r.Function.Name,
		Blocks:       make([]BlockSnapshot, 0, len(r.Blocks)),
		ControlEdges: []ControlEdge{},
	}

	for _, e := range r.BlockGraph.Edges() {
		from, _ := r.BlockGraph.Vertex(e.From)
		to, _ := r.BlockGraph.Vertex(e.To)
		s.ControlEdges = append(s.ControlEdges, ControlEdge{From: from.Value.Name, To: to.Value.Name})
	}

	for _, c := range r.Blocks {
		bs := BlockSnapshot{
			Name:     c.Block.Name,
			Vertices: make([]VertexRecord, 0, len(c.Vertices)),
			Edges:    []EdgeRecord{},
		}
		for _, v := range c.Graph.Vertices() {
			rec := VertexRecord{
				ID:          int(v.ID),
				Kind:        v.Value.Kind().String(),
				Label:       v.Value.Label(),
				Instruction: -1,
			}
			if comp, ok := v.Value.(*Computed); ok {
				rec.Instruction = comp.Inst.Index
			}
			uses, _ := c.Uses.Get(v.Value)
			defs, _ := c.Defs.Get(v.Value)
			rec.Uses = indices(uses)
			rec.Defs = indices(defs)
			bs.Vertices = append(bs.Vertices, rec)
		}
		for _, e := range c.Graph.Edges() {
			rec := EdgeRecord{From: int(e.From), To: int(e.To)}
			if e.Property != nil {
				rec.Operand = e.Property.Operand.String()
			}
			bs.Edges = append(bs.Edges, rec)
		}
		s.Blocks = append(s.Blocks, bs)
	}
	return s
}

// Encode serializes s with msgpack.
func (s *Snapshot) Encode() ([]byte, error) {
	data, err := msgpack.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot restores a snapshot produced by Encode.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &s, nil
}

// NumVertices returns the vertex count summed over blocks.
func (s *Snapshot) NumVertices() int {
	n := 0
	for _, b := range s.Blocks {
		n += len(b.Vertices)
	}
	return n
}

// BlockGraph rebuilds the block graph from the recorded block names and
// control edges. Vertex ids follow block order.
func (s *Snapshot) BlockGraph() (*graph.Graph[string, struct{}], error) {
	g := graph.New[string, struct{}]()
	ids := make(map[string]graph.ID, len(s.Blocks))
	for _, b := range s.Blocks {
		ids[b.Name] = g.AddVertex(b.Name)
	}
	for _, e := range s.ControlEdges {
		from, ok := ids[e.From]
		if !ok {
			return nil, fmt.Errorf("%w: control edge from unknown block %q", ErrInvariant, e.From)
		}
		to, ok := ids[e.To]
		if !ok {
			return nil, fmt.Errorf("%w: control edge to unknown block %q", ErrInvariant, e.To)
		}
		if err := g.AddEdge(from, to); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// ExportBlockGraph writes the same DOT text ExportBlockGraph produces for
// the live result.
func (s *Snapshot) ExportBlockGraph(path string) error {
	g, err := s.BlockGraph()
	if err != nil {
		return err
	}
	return g.ExportText(path, s.Function, graph.Labels[string, struct{}]{
		Vertex: func(name string) string { return name },
	})
}

func indices(insts []*ir.Instruction) []int {
	out := make([]int, 0, len(insts))
	for _, inst := range insts {
		out = append(out, inst.Index)
	}
	return out
}
