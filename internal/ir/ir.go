// Package ir models a program as control-flow graphs grouped into a
// compilation unit with call-graph edges. Units are built once per analysis
// run and are read-only afterwards; every detector works against this model.
package ir

import (
	"fmt"
	"sort"

	"github.com/xab-mack/tactscan/internal/ast"
	"github.com/xab-mack/tactscan/internal/model"
)

type NodeIdx int

type EdgeIdx int

type NodeKind int

const (
	KindRegular NodeKind = iota
	KindCall
	KindBranch
	KindJoin
)

func (k NodeKind) String() string {
	switch k {
	case KindCall:
		return "call"
	case KindBranch:
		return "branch"
	case KindJoin:
		return "join"
	default:
		return "regular"
	}
}

// Symbol names a callable: a free function or a contract method.
type Symbol struct {
	Contract string
	Name     string
}

func (s Symbol) String() string {
	if s.Contract == "" {
		return s.Name
	}
	return s.Contract + "." + s.Name
}

// Node is one element of a CFG. Nodes never change identity after creation;
// they are valid for as long as the owning CFG is.
type Node struct {
	Idx     NodeIdx
	Kind    NodeKind
	Stmt    ast.Stmt // originating statement; synthetic join nodes borrow the branch statement
	Callees []Symbol // populated for KindCall nodes
	In      []EdgeIdx
	Out     []EdgeIdx
}

// Edge is a directed control transfer between two nodes of one CFG. Loop
// back-edges are ordinary edges; consumers must tolerate cycles.
type Edge struct {
	From NodeIdx
	To   NodeIdx
}

// CFG owns the nodes and edges of one function or method.
type CFG struct {
	Name   string
	Origin model.Origin

	nodes []Node
	edges []Edge
}

func NewCFG(name string, origin model.Origin) *CFG {
	return &CFG{Name: name, Origin: origin}
}

// AddNode appends a node and returns its index. Only the builder calls this;
// once the unit is handed to the pipeline the CFG does not change.
func (g *CFG) AddNode(kind NodeKind, stmt ast.Stmt, callees ...Symbol) NodeIdx {
	idx := NodeIdx(len(g.nodes))
	g.nodes = append(g.nodes, Node{Idx: idx, Kind: kind, Stmt: stmt, Callees: callees})
	return idx
}

// AddEdge wires a directed edge between two existing nodes. Out-of-range
// endpoints are a programming error and panic.
func (g *CFG) AddEdge(from, to NodeIdx) EdgeIdx {
	g.checkIdx(from)
	g.checkIdx(to)
	idx := EdgeIdx(len(g.edges))
	g.edges = append(g.edges, Edge{From: from, To: to})
	g.nodes[from].Out = append(g.nodes[from].Out, idx)
	g.nodes[to].In = append(g.nodes[to].In, idx)
	return idx
}

func (g *CFG) checkIdx(idx NodeIdx) {
	if idx < 0 || int(idx) >= len(g.nodes) {
		panic(fmt.Sprintf("ir: node index %d out of range in cfg %q (%d nodes)", idx, g.Name, len(g.nodes)))
	}
}

// Node returns the node at idx. Out-of-range indices panic: the unit is
// constructed once and never partially built, so a bad index is a defect.
func (g *CFG) Node(idx NodeIdx) *Node {
	g.checkIdx(idx)
	return &g.nodes[idx]
}

func (g *CFG) Nodes() []Node { return g.nodes }

func (g *CFG) Edges() []Edge { return g.edges }

func (g *CFG) NumNodes() int { return len(g.nodes) }

// Preds returns the predecessor node indices of idx in edge insertion order.
func (g *CFG) Preds(idx NodeIdx) []NodeIdx {
	n := g.Node(idx)
	out := make([]NodeIdx, 0, len(n.In))
	for _, e := range n.In {
		out = append(out, g.edges[e].From)
	}
	return out
}

// Succs returns the successor node indices of idx in edge insertion order.
func (g *CFG) Succs(idx NodeIdx) []NodeIdx {
	n := g.Node(idx)
	out := make([]NodeIdx, 0, len(n.Out))
	for _, e := range n.Out {
		out = append(out, g.edges[e].To)
	}
	return out
}

// Reverse returns a new CFG with every edge flipped. Backward analyses feed
// the reversed graph to the dataflow solver.
func (g *CFG) Reverse() *CFG {
	r := NewCFG(g.Name, g.Origin)
	for _, n := range g.nodes {
		r.AddNode(n.Kind, n.Stmt, n.Callees...)
	}
	for _, e := range g.edges {
		r.AddEdge(e.To, e.From)
	}
	return r
}

// ContractMeta carries per-contract metadata surfaced to detectors.
type ContractMeta struct {
	Name   string
	Origin model.Origin
	Pos    model.Position
}

// Contract groups the method CFGs of one contract.
type Contract struct {
	Meta    ContractMeta
	Methods map[string]*CFG
}

// CompilationUnit is the full IR of one logical project. It is immutable
// after Finalize and owned exclusively by the run that built it.
type CompilationUnit struct {
	Name  string
	Files []*ast.File

	functions map[string]*CFG
	contracts map[string]*Contract
	callGraph *CallGraph
}

func NewCompilationUnit(name string) *CompilationUnit {
	return &CompilationUnit{
		Name:      name,
		functions: make(map[string]*CFG),
		contracts: make(map[string]*Contract),
		callGraph: NewCallGraph(),
	}
}

func (u *CompilationUnit) Functions() map[string]*CFG { return u.functions }

func (u *CompilationUnit) Contracts() map[string]*Contract { return u.contracts }

func (u *CompilationUnit) CallGraph() *CallGraph { return u.callGraph }

// AddFunction registers a free function CFG under its name.
func (u *CompilationUnit) AddFunction(cfg *CFG) {
	u.functions[cfg.Name] = cfg
	u.callGraph.AddSymbol(Symbol{Name: cfg.Name})
}

// AddMethod registers a method CFG under its contract, creating the contract
// entry on first use.
func (u *CompilationUnit) AddMethod(meta ContractMeta, cfg *CFG) {
	c, ok := u.contracts[meta.Name]
	if !ok {
		c = &Contract{Meta: meta, Methods: make(map[string]*CFG)}
		u.contracts[meta.Name] = c
	}
	c.Methods[cfg.Name] = cfg
	u.callGraph.AddSymbol(Symbol{Contract: meta.Name, Name: cfg.Name})
}

// FindMethodCFG returns the CFG of contract.method, or ok=false when either
// is absent. Absence is not an error; callers decide whether it matters.
func (u *CompilationUnit) FindMethodCFG(contract, method string) (*CFG, bool) {
	c, ok := u.contracts[contract]
	if !ok {
		return nil, false
	}
	cfg, ok := c.Methods[method]
	return cfg, ok
}

// FindFunctionCFG returns the CFG of a free function by name.
func (u *CompilationUnit) FindFunctionCFG(name string) (*CFG, bool) {
	cfg, ok := u.functions[name]
	return cfg, ok
}

// ForEachCFG visits every (symbol, CFG, node, originating statement) tuple
// in the unit: free functions first, then contract methods, both in name
// order. The symbol qualifies methods by contract; CFG names alone collide
// when two contracts declare the same method. Nothing is skipped; callers
// filter library code via the CFG origin tag.
func (u *CompilationUnit) ForEachCFG(visit func(sym Symbol, cfg *CFG, node *Node, stmt ast.Stmt)) {
	for _, name := range sortedKeys(u.functions) {
		visitCFG(Symbol{Name: name}, u.functions[name], visit)
	}
	for _, cname := range sortedKeys(u.contracts) {
		c := u.contracts[cname]
		for _, mname := range sortedKeys(c.Methods) {
			visitCFG(Symbol{Contract: cname, Name: mname}, c.Methods[mname], visit)
		}
	}
}

func visitCFG(sym Symbol, g *CFG, visit func(Symbol, *CFG, *Node, ast.Stmt)) {
	for i := range g.nodes {
		n := &g.nodes[i]
		visit(sym, g, n, n.Stmt)
	}
}

// Validate checks the structural invariants of every CFG reachable from the
// unit. A violation means the builder is defective, so it panics.
func (u *CompilationUnit) Validate() {
	check := func(g *CFG) {
		for _, e := range g.edges {
			g.checkIdx(e.From)
			g.checkIdx(e.To)
		}
	}
	for _, g := range u.functions {
		check(g)
	}
	for _, c := range u.contracts {
		for _, g := range c.Methods {
			check(g)
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
