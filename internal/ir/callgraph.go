package ir

import (
	"sort"

	"github.com/xab-mack/tactscan/internal/model"
)

// CallSite is one call-graph edge: a call node in a caller's CFG targeting a
// callee symbol, with the source position of the call as provenance.
type CallSite struct {
	Caller Symbol
	Node   NodeIdx // index of the call node in the caller's CFG
	Callee Symbol
	Pos    model.Position
}

// CallGraph tracks the callable symbols of a unit and the call-site edges
// between them. Callees that were never declared in the unit are kept and
// reported as external.
type CallGraph struct {
	declared map[Symbol]bool
	edges    []CallSite
	byCallee map[Symbol][]int
	byCaller map[Symbol][]int
}

func NewCallGraph() *CallGraph {
	return &CallGraph{
		declared: make(map[Symbol]bool),
		byCallee: make(map[Symbol][]int),
		byCaller: make(map[Symbol][]int),
	}
}

// AddSymbol declares a callable symbol present in the unit.
func (cg *CallGraph) AddSymbol(sym Symbol) { cg.declared[sym] = true }

// AddCall records a call-site edge. The callee does not have to be declared;
// unresolved callees stay in the graph as external symbols.
func (cg *CallGraph) AddCall(site CallSite) {
	i := len(cg.edges)
	cg.edges = append(cg.edges, site)
	cg.byCallee[site.Callee] = append(cg.byCallee[site.Callee], i)
	cg.byCaller[site.Caller] = append(cg.byCaller[site.Caller], i)
}

// IsExternal reports whether sym was never declared inside the unit.
func (cg *CallGraph) IsExternal(sym Symbol) bool { return !cg.declared[sym] }

// Symbols returns every declared symbol in a stable order.
func (cg *CallGraph) Symbols() []Symbol {
	out := make([]Symbol, 0, len(cg.declared))
	for s := range cg.declared {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// CallersOf enumerates every call site that targets sym. Detectors use this
// for interprocedural questions such as "does every caller pass the same
// argument".
func (cg *CallGraph) CallersOf(sym Symbol) []CallSite {
	return cg.collect(cg.byCallee[sym])
}

// CalleesOf enumerates every call site originating in sym's body.
func (cg *CallGraph) CalleesOf(sym Symbol) []CallSite {
	return cg.collect(cg.byCaller[sym])
}

func (cg *CallGraph) collect(idxs []int) []CallSite {
	out := make([]CallSite, 0, len(idxs))
	for _, i := range idxs {
		out = append(out, cg.edges[i])
	}
	return out
}
