package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xab-mack/tactscan/internal/ast"
	"github.com/xab-mack/tactscan/internal/model"
)

func pos(file string, line int) model.Position {
	return model.Position{File: file, Line: line, Origin: model.OriginUser}
}

func TestAddEdgeOutOfRangePanics(t *testing.T) {
	g := NewCFG("f", model.OriginUser)
	g.AddNode(KindRegular, nil)
	assert.Panics(t, func() { g.AddEdge(0, 5) })
	assert.Panics(t, func() { g.Node(-1) })
}

func TestPredsAndSuccs(t *testing.T) {
	g := NewCFG("f", model.OriginUser)
	a := g.AddNode(KindRegular, nil)
	b := g.AddNode(KindRegular, nil)
	c := g.AddNode(KindRegular, nil)
	g.AddEdge(a, b)
	g.AddEdge(a, c)
	g.AddEdge(b, c)

	assert.Equal(t, []NodeIdx{b, c}, g.Succs(a))
	assert.Equal(t, []NodeIdx{a, b}, g.Preds(c))
	assert.Empty(t, g.Preds(a))
}

func TestReverseFlipsEdges(t *testing.T) {
	g := NewCFG("f", model.OriginUser)
	a := g.AddNode(KindRegular, nil)
	b := g.AddNode(KindBranch, nil)
	g.AddEdge(a, b)

	r := g.Reverse()
	assert.Equal(t, g.NumNodes(), r.NumNodes())
	assert.Equal(t, []NodeIdx{b}, r.Preds(a))
	assert.Equal(t, []NodeIdx{a}, r.Succs(b))
	assert.Equal(t, KindBranch, r.Node(b).Kind)
}

func testFile() *ast.File {
	// fun main() { let x = 1; if (x) { x = 2; } while (x) { helper(); } }
	// fun helper() { return; }
	return &ast.File{
		Path:   "main.tact",
		Origin: model.OriginUser,
		Functions: []*ast.Function{
			{
				Name: "main",
				Body: []ast.Stmt{
					&ast.LetStmt{Name: "x", Init: &ast.IntLit{Value: 1, Pos: pos("main.tact", 1)}, Pos: pos("main.tact", 1)},
					&ast.IfStmt{
						Cond: &ast.Ident{Name: "x", Pos: pos("main.tact", 2)},
						Then: []ast.Stmt{&ast.AssignStmt{Name: "x", Value: &ast.IntLit{Value: 2, Pos: pos("main.tact", 3)}, Pos: pos("main.tact", 3)}},
						Pos:  pos("main.tact", 2),
					},
					&ast.WhileStmt{
						Cond: &ast.Ident{Name: "x", Pos: pos("main.tact", 5)},
						Body: []ast.Stmt{&ast.ExprStmt{X: &ast.CallExpr{Callee: "helper", Pos: pos("main.tact", 6)}, Pos: pos("main.tact", 6)}},
						Pos:  pos("main.tact", 5),
					},
				},
				Pos: pos("main.tact", 1),
			},
			{
				Name: "helper",
				Body: []ast.Stmt{&ast.ReturnStmt{Pos: pos("main.tact", 9)}},
				Pos:  pos("main.tact", 9),
			},
		},
	}
}

func TestBuildUnitShapes(t *testing.T) {
	unit := BuildUnit("proj", []*ast.File{testFile()})

	mainCFG, ok := unit.FindFunctionCFG("main")
	require.True(t, ok)

	// let, branch(if), assign, join, branch(while), call
	require.Equal(t, 6, mainCFG.NumNodes())
	kinds := make([]NodeKind, 0, 6)
	for _, n := range mainCFG.Nodes() {
		kinds = append(kinds, n.Kind)
	}
	assert.Equal(t, []NodeKind{KindRegular, KindBranch, KindRegular, KindJoin, KindBranch, KindCall}, kinds)

	// while back-edge: the call node loops back to the while branch
	assert.Contains(t, mainCFG.Succs(5), NodeIdx(4))
	assert.Contains(t, mainCFG.Preds(4), NodeIdx(5))

	// if with no else falls through: branch -> join directly
	assert.Contains(t, mainCFG.Succs(1), NodeIdx(3))
}

func TestBuildUnitCallGraph(t *testing.T) {
	unit := BuildUnit("proj", []*ast.File{testFile()})
	cg := unit.CallGraph()

	callers := cg.CallersOf(Symbol{Name: "helper"})
	require.Len(t, callers, 1)
	assert.Equal(t, Symbol{Name: "main"}, callers[0].Caller)
	assert.Equal(t, 6, callers[0].Pos.Line)
	assert.False(t, cg.IsExternal(Symbol{Name: "helper"}))
	assert.True(t, cg.IsExternal(Symbol{Name: "missing"}))
}

func TestForEachCFGVisitsFunctionsThenMethods(t *testing.T) {
	f := testFile()
	f.Contracts = []*ast.Contract{{
		Name: "Wallet",
		Methods: []*ast.Function{{
			Name: "deposit",
			Body: []ast.Stmt{&ast.ReturnStmt{Pos: pos("main.tact", 20)}},
			Pos:  pos("main.tact", 20),
		}},
	}}
	unit := BuildUnit("proj", []*ast.File{f})

	var order []string
	seen := map[Symbol]bool{}
	unit.ForEachCFG(func(sym Symbol, cfg *CFG, node *Node, stmt ast.Stmt) {
		if !seen[sym] {
			seen[sym] = true
			order = append(order, sym.String())
		}
	})
	assert.Equal(t, []string{"helper", "main", "Wallet.deposit"}, order)
}

func TestForEachCFGQualifiesSameNamedMethods(t *testing.T) {
	mkContract := func(name string) *ast.Contract {
		return &ast.Contract{
			Name: name,
			Methods: []*ast.Function{{
				Name: "run",
				Body: []ast.Stmt{&ast.ReturnStmt{Pos: pos("c.tact", 1)}},
				Pos:  pos("c.tact", 1),
			}},
		}
	}
	f := &ast.File{Path: "c.tact", Contracts: []*ast.Contract{mkContract("Alpha"), mkContract("Beta")}}
	unit := BuildUnit("proj", []*ast.File{f})

	seen := map[Symbol]bool{}
	unit.ForEachCFG(func(sym Symbol, cfg *CFG, node *Node, stmt ast.Stmt) {
		seen[sym] = true
	})
	assert.Equal(t, map[Symbol]bool{
		{Contract: "Alpha", Name: "run"}: true,
		{Contract: "Beta", Name: "run"}:  true,
	}, seen)
}

func TestFindMethodCFG(t *testing.T) {
	f := &ast.File{
		Path: "wallet.tact",
		Contracts: []*ast.Contract{{
			Name:    "Wallet",
			Methods: []*ast.Function{{Name: "deposit", Pos: pos("wallet.tact", 1)}},
		}},
	}
	unit := BuildUnit("proj", []*ast.File{f})

	_, ok := unit.FindMethodCFG("Wallet", "deposit")
	assert.True(t, ok)
	_, ok = unit.FindMethodCFG("Wallet", "withdraw")
	assert.False(t, ok)
	_, ok = unit.FindMethodCFG("Bank", "deposit")
	assert.False(t, ok)
}
