// Package callgraph derives module-level call graphs and styled block CFGs
// from the ir model and renders them through lattice.
package callgraph

import (
	"github.com/zboralski/lattice"

	"github.com/l3aro/go-cdfg/pkg/ir"
)

// CallType represents the type of function call
type CallType string

const (
	// LocalCall targets a function defined in the same module
	LocalCall CallType = "local"
	// ExternalCall targets a named global with no definition in the module
	ExternalCall CallType = "external"
	// IndirectCall goes through a computed function pointer
	IndirectCall CallType = "indirect"
)

// CallSite is a single call instruction.
type CallSite struct {
	Caller string   `json:"caller"`
	Callee string   `json:"callee"` // empty for indirect calls
	Block  string   `json:"block"`
	Index  int      `json:"index"` // instruction index within the caller
	Type   CallType `json:"type"`
}

// Sites lists every call instruction of mod in program order.
func Sites(mod *ir.Module) []CallSite {
	defined := make(map[string]bool, len(mod.Functions))
	for _, fn := range mod.Functions {
		defined[fn.Name] = true
	}

	var sites []CallSite
	for _, fn := range mod.Functions {
		for _, b := range fn.Blocks {
			for _, inst := range b.Instructions {
				callee, ok := inst.Callee()
				if !ok {
					continue
				}
				site := CallSite{Caller: fn.Name, Block: b.Name, Index: inst.Index, Type: IndirectCall}
				if callee.Kind == ir.KindGlobal {
					site.Callee = callee.Name
					site.Type = ExternalCall
					if defined[callee.Name] {
						site.Type = LocalCall
					}
				}
				sites = append(sites, site)
			}
		}
	}
	return sites
}

// Build constructs a lattice.Graph with one node per defined function and
// one edge per distinct direct caller/callee pair. Indirect calls are
// skipped.
func Build(mod *ir.Module) *lattice.Graph {
	g := &lattice.Graph{}
	for _, fn := range mod.Functions {
		g.Nodes = append(g.Nodes, fn.Name)
	}
	for _, s := range Sites(mod) {
		if s.Type == IndirectCall {
			continue
		}
		g.Edges = append(g.Edges, lattice.Edge{Caller: s.Caller, Callee: s.Callee})
	}
	g.Dedup()
	return g
}
