// Package graph provides an append-only directed multigraph whose vertices
// are addressed by dense integer ids assigned in insertion order. Storage is
// a gonum multi.DirectedGraph.
package graph

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/multi"
)

// ErrVertexNotFound is returned when an id does not name a vertex of the graph.
var ErrVertexNotFound = errors.New("vertex not found")

// ID identifies a vertex within one graph. Ids start at 0.
type ID int

// Vertex wraps a value stored in the graph.
type Vertex[V any] struct {
	ID    ID
	Value V
}

// Edge is a directed edge. Property is nil for edges added with AddEdge.
type Edge[P any] struct {
	From     ID
	To       ID
	Property *P
}

// node is the gonum node carrying a vertex.
type node[V any] struct{ v *Vertex[V] }

func (n node[V]) ID() int64 { return int64(n.v.ID) }

// line is the gonum line carrying an edge. Line ids count up from 0, so
// sorting by id restores insertion order.
type line[P any] struct {
	from, to graph.Node
	id       int64
	e        *Edge[P]
}

func (l line[P]) From() graph.Node { return l.from }
func (l line[P]) To() graph.Node   { return l.to }
func (l line[P]) ID() int64        { return l.id }

func (l line[P]) ReversedLine() graph.Line {
	return line[P]{from: l.to, to: l.from, id: l.id, e: l.e}
}

// Graph is a directed multigraph. Vertices and edges are never removed.
type Graph[V, P any] struct {
	g     *multi.DirectedGraph
	count int // vertices
	lines int64
}

// New creates an empty graph.
func New[V, P any]() *Graph[V, P] {
	return &Graph[V, P]{g: multi.NewDirectedGraph()}
}

// AddVertex appends a vertex and returns its id.
func (g *Graph[V, P]) AddVertex(value V) ID {
	id := ID(g.count)
	g.g.AddNode(node[V]{v: &Vertex[V]{ID: id, Value: value}})
	g.count++
	return id
}

// Vertex returns the vertex with the given id.
func (g *Graph[V, P]) Vertex(id ID) (*Vertex[V], error) {
	n, ok := g.node(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrVertexNotFound, id)
	}
	return n.v, nil
}

// Vertices returns every vertex ordered by id.
func (g *Graph[V, P]) Vertices() []*Vertex[V] {
	nodes := graph.NodesOf(g.g.Nodes())
	out := make([]*Vertex[V], 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.(node[V]).v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NumVertices returns the number of vertices.
func (g *Graph[V, P]) NumVertices() int {
	return g.count
}

// AddEdge adds an edge without a property.
func (g *Graph[V, P]) AddEdge(from, to ID) error {
	return g.addEdge(from, to, nil)
}

// AddEdgeProperty adds an edge carrying prop.
func (g *Graph[V, P]) AddEdgeProperty(from, to ID, prop P) error {
	return g.addEdge(from, to, &prop)
}

func (g *Graph[V, P]) addEdge(from, to ID, prop *P) error {
	fn, ok := g.node(from)
	if !ok {
		return fmt.Errorf("edge source: %w: %d", ErrVertexNotFound, from)
	}
	tn, ok := g.node(to)
	if !ok {
		return fmt.Errorf("edge destination: %w: %d", ErrVertexNotFound, to)
	}
	g.g.SetLine(line[P]{
		from: fn,
		to:   tn,
		id:   g.lines,
		e:    &Edge[P]{From: from, To: to, Property: prop},
	})
	g.lines++
	return nil
}

// Edges returns every edge in insertion order.
func (g *Graph[V, P]) Edges() []*Edge[P] {
	var ls []graph.Line
	for _, n := range graph.NodesOf(g.g.Nodes()) {
		ls = append(ls, g.outLines(n.ID())...)
	}
	return edgesOf[P](ls)
}

// NumEdges returns the number of edges.
func (g *Graph[V, P]) NumEdges() int {
	return int(g.lines)
}

// OutEdges returns the edges leaving id in insertion order.
func (g *Graph[V, P]) OutEdges(id ID) []*Edge[P] {
	if _, ok := g.node(id); !ok {
		return nil
	}
	return edgesOf[P](g.outLines(int64(id)))
}

// InEdges returns the edges entering id in insertion order.
func (g *Graph[V, P]) InEdges(id ID) []*Edge[P] {
	if _, ok := g.node(id); !ok {
		return nil
	}
	var ls []graph.Line
	for _, from := range graph.NodesOf(g.g.To(int64(id))) {
		ls = append(ls, graph.LinesOf(g.g.Lines(from.ID(), int64(id)))...)
	}
	return edgesOf[P](ls)
}

// Successors returns the destination ids of the edges leaving id.
// Parallel edges yield repeated ids.
func (g *Graph[V, P]) Successors(id ID) []ID {
	var ids []ID
	for _, e := range g.OutEdges(id) {
		ids = append(ids, e.To)
	}
	return ids
}

func (g *Graph[V, P]) outLines(id int64) []graph.Line {
	var ls []graph.Line
	for _, to := range graph.NodesOf(g.g.From(id)) {
		ls = append(ls, graph.LinesOf(g.g.Lines(id, to.ID()))...)
	}
	return ls
}

func edgesOf[P any](ls []graph.Line) []*Edge[P] {
	sort.Slice(ls, func(i, j int) bool { return ls[i].ID() < ls[j].ID() })
	edges := make([]*Edge[P], 0, len(ls))
	for _, l := range ls {
		edges = append(edges, l.(line[P]).e)
	}
	return edges
}

func (g *Graph[V, P]) node(id ID) (node[V], bool) {
	if id < 0 || int(id) >= g.count {
		return node[V]{}, false
	}
	n, ok := g.g.Node(int64(id)).(node[V])
	return n, ok
}
