package graph

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/multi"
)

// Labels controls how vertices and edges are rendered in DOT output.
// A nil Vertex labels vertices by id; a nil Edge leaves edges unlabeled.
type Labels[V, P any] struct {
	Vertex func(V) string
	Edge   func(P) string
}

// dotGraph sets the graph-wide node style.
type dotGraph struct {
	*multi.DirectedGraph
}

func (dotGraph) DOTAttributers() (g, n, e encoding.Attributer) {
	return &encoding.Attributes{}, &encoding.Attributes{{Key: "shape", Value: "box"}}, &encoding.Attributes{}
}

type dotNode struct {
	id    int64
	label string
}

func (n dotNode) ID() int64     { return n.id }
func (n dotNode) DOTID() string { return "n" + strconv.FormatInt(n.id, 10) }

func (n dotNode) Attributes() []encoding.Attribute {
	return []encoding.Attribute{{Key: "label", Value: strconv.Quote(n.label)}}
}

type dotLine struct {
	from, to graph.Node
	id       int64
	label    *string
}

func (l dotLine) From() graph.Node { return l.from }
func (l dotLine) To() graph.Node   { return l.to }
func (l dotLine) ID() int64        { return l.id }

func (l dotLine) ReversedLine() graph.Line {
	return dotLine{from: l.to, to: l.from, id: l.id, label: l.label}
}

func (l dotLine) Attributes() []encoding.Attribute {
	if l.label == nil {
		return nil
	}
	return []encoding.Attribute{{Key: "label", Value: strconv.Quote(*l.label)}}
}

// WriteDOT writes the graph in Graphviz DOT syntax. gonum emits nodes and
// lines sorted by id, so writing the same graph twice yields identical bytes.
func (g *Graph[V, P]) WriteDOT(w io.Writer, name string, labels Labels[V, P]) error {
	out := multi.NewDirectedGraph()
	for _, v := range g.Vertices() {
		label := strconv.Itoa(int(v.ID))
		if labels.Vertex != nil {
			label = labels.Vertex(v.Value)
		}
		out.AddNode(dotNode{id: int64(v.ID), label: label})
	}
	for i, e := range g.Edges() {
		l := dotLine{
			from: out.Node(int64(e.From)),
			to:   out.Node(int64(e.To)),
			id:   int64(i),
		}
		if labels.Edge != nil && e.Property != nil {
			label := labels.Edge(*e.Property)
			l.label = &label
		}
		out.SetLine(l)
	}

	data, err := dot.MarshalMulti(dotGraph{out}, strconv.Quote(name), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode dot: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}

// ExportText writes the DOT rendering of the graph to path, replacing any
// existing file.
func (g *Graph[V, P]) ExportText(path, name string, labels Labels[V, P]) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dot file: %w", err)
	}
	if err := g.WriteDOT(f, name, labels); err != nil {
		f.Close()
		return fmt.Errorf("failed to write dot file %s: %w", path, err)
	}
	return f.Close()
}
