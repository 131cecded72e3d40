package ir

import (
	"github.com/xab-mack/tactscan/internal/ast"
	"github.com/xab-mack/tactscan/internal/model"
)

// BuildUnit lowers a set of finished AST files into the IR of one logical
// project: one CFG per function and method, plus the call graph. The returned
// unit is validated and must not be mutated afterwards.
func BuildUnit(name string, files []*ast.File) *CompilationUnit {
	u := NewCompilationUnit(name)
	u.Files = files
	// declare all symbols first so call edges can tell external callees apart
	for _, f := range files {
		for _, fn := range f.Functions {
			u.AddFunction(NewCFG(fn.Name, f.Origin))
		}
		for _, c := range f.Contracts {
			meta := ContractMeta{Name: c.Name, Origin: f.Origin, Pos: c.Pos}
			for _, m := range c.Methods {
				u.AddMethod(meta, NewCFG(m.Name, f.Origin))
			}
		}
	}
	for _, f := range files {
		for _, fn := range f.Functions {
			lowerBody(u, u.functions[fn.Name], Symbol{Name: fn.Name}, fn)
		}
		for _, c := range f.Contracts {
			for _, m := range c.Methods {
				lowerBody(u, u.contracts[c.Name].Methods[m.Name], Symbol{Contract: c.Name, Name: m.Name}, m)
			}
		}
	}
	u.Validate()
	return u
}

func lowerBody(u *CompilationUnit, g *CFG, caller Symbol, fn *ast.Function) {
	b := &cfgBuilder{unit: u, g: g, caller: caller}
	b.seq(fn.Body, nil)
}

type cfgBuilder struct {
	unit   *CompilationUnit
	g      *CFG
	caller Symbol
}

// seq lowers a statement sequence, wiring each new node to the given
// predecessor set, and returns the node(s) control falls out of. An empty
// sequence falls straight through to its predecessors.
func (b *cfgBuilder) seq(stmts []ast.Stmt, preds []NodeIdx) []NodeIdx {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.IfStmt:
			branch := b.addNode(KindBranch, s)
			b.wire(preds, branch)
			thenOut := b.seq(n.Then, []NodeIdx{branch})
			elseOut := b.seq(n.Else, []NodeIdx{branch})
			join := b.addNode(KindJoin, s)
			// a missing else arm leaves branch itself in elseOut, so the
			// fall-through edge branch->join comes out of the same wiring
			b.wire(thenOut, join)
			b.wire(elseOut, join)
			preds = []NodeIdx{join}
		case *ast.WhileStmt:
			branch := b.addNode(KindBranch, s)
			b.wire(preds, branch)
			bodyOut := b.seq(n.Body, []NodeIdx{branch})
			// back-edges close the loop; the solver must terminate on them
			b.wire(bodyOut, branch)
			preds = []NodeIdx{branch}
		case *ast.ReturnStmt:
			ret := b.addNode(b.stmtKind(s), s)
			b.wire(preds, ret)
			preds = nil
		default:
			nd := b.addNode(b.stmtKind(s), s)
			b.wire(preds, nd)
			preds = []NodeIdx{nd}
		}
	}
	return preds
}

func (b *cfgBuilder) wire(from []NodeIdx, to NodeIdx) {
	for _, f := range from {
		b.g.AddEdge(f, to)
	}
}

// addNode creates the node and records call-graph edges for every call
// appearing in the statement's expressions.
func (b *cfgBuilder) addNode(kind NodeKind, s ast.Stmt) NodeIdx {
	calls := stmtCalls(s)
	callees := make([]Symbol, 0, len(calls))
	for _, c := range calls {
		callees = append(callees, Symbol{Contract: c.Contract, Name: c.Callee})
	}
	idx := b.g.AddNode(kind, s, callees...)
	for _, c := range calls {
		b.unit.callGraph.AddCall(CallSite{
			Caller: b.caller,
			Node:   idx,
			Callee: Symbol{Contract: c.Contract, Name: c.Callee},
			Pos:    c.Pos,
		})
	}
	return idx
}

func (b *cfgBuilder) stmtKind(s ast.Stmt) NodeKind {
	if len(stmtCalls(s)) > 0 {
		return KindCall
	}
	return KindRegular
}

func stmtCalls(s ast.Stmt) []*ast.CallExpr {
	var calls []*ast.CallExpr
	for _, e := range ast.StmtExprs(s) {
		calls = ast.FoldExpressions(e, calls, func(acc []*ast.CallExpr, e ast.Expr) []*ast.CallExpr {
			if c, ok := e.(*ast.CallExpr); ok {
				acc = append(acc, c)
			}
			return acc
		}, nil)
	}
	return calls
}

// StmtOrigin resolves the origin of a statement's position, defaulting to
// user code when the statement has no position.
func StmtOrigin(s ast.Stmt) model.Origin {
	if s == nil {
		return model.OriginUser
	}
	if o := s.StmtPos().Origin; o != "" {
		return o
	}
	return model.OriginUser
}
