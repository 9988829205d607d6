package cdfg

import "github.com/l3aro/go-cdfg/pkg/ir"

// Table maps vertices to ordered instruction lists. It backs both the use
// and the def table of a block.
type Table struct {
	entries map[Vertex][]*ir.Instruction
	order   []Vertex
}

func newTable() *Table {
	return &Table{entries: make(map[Vertex][]*ir.Instruction)}
}

// Set records insts for v, replacing any previous entry. A nil or empty
// list still creates the entry.
func (t *Table) Set(v Vertex, insts []*ir.Instruction) {
	if _, ok := t.entries[v]; !ok {
		t.order = append(t.order, v)
	}
	if insts == nil {
		insts = []*ir.Instruction{}
	}
	t.entries[v] = insts
}

// Get returns the list recorded for v.
func (t *Table) Get(v Vertex) ([]*ir.Instruction, bool) {
	insts, ok := t.entries[v]
	return insts, ok
}

// Has reports whether v has an entry.
func (t *Table) Has(v Vertex) bool {
	_, ok := t.entries[v]
	return ok
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.order) }

// Vertices returns the keys in first-insertion order.
func (t *Table) Vertices() []Vertex {
	out := make([]Vertex, len(t.order))
	copy(out, t.order)
	return out
}
