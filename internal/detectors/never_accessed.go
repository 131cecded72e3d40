package detectors

import (
	"context"
	"fmt"

	"github.com/xab-mack/tactscan/internal/ast"
	"github.com/xab-mack/tactscan/internal/dataflow"
	"github.com/xab-mack/tactscan/internal/ir"
	"github.com/xab-mack/tactscan/internal/lattice"
	"github.com/xab-mack/tactscan/internal/model"
)

// neverAccessed flags local variables that are declared but never read.
// It is the dataflow-variant detector: a forward solve over the
// declared/used set lattice, then a fold over all node states so uses on any
// path count, not only those reaching the exit.
type neverAccessed struct{}

func (d *neverAccessed) ID() string               { return "never-accessed" }
func (d *neverAccessed) Severity() model.Severity { return model.SeverityMedium }
func (d *neverAccessed) SharingPolicy() Policy    { return PolicyUnion }

func (d *neverAccessed) Check(ctx context.Context, unit *ir.CompilationUnit) ([]model.Warning, error) {
	var out []model.Warning
	seen := make(map[ir.Symbol]bool)
	unit.ForEachCFG(func(sym ir.Symbol, cfg *ir.CFG, node *ir.Node, stmt ast.Stmt) {
		if cfg.Origin == model.OriginStdlib || seen[sym] {
			return
		}
		seen[sym] = true
		out = append(out, d.checkCFG(sym, cfg)...)
	})
	return out, nil
}

func (d *neverAccessed) checkCFG(sym ir.Symbol, cfg *ir.CFG) []model.Warning {
	solver := dataflow.NewSolver[lattice.VarState](lattice.VarLattice{}, transferVars)
	result := solver.Solve(cfg)

	// union every node's state: a variable used anywhere in the function
	// counts as accessed, regardless of where the solve converged
	lat := lattice.VarLattice{}
	total := lat.Bottom()
	for _, st := range result.States() {
		total = lat.Join(total, st)
	}

	declPos := make(map[string]model.Position)
	for _, n := range cfg.Nodes() {
		if let, ok := n.Stmt.(*ast.LetStmt); ok {
			if _, have := declPos[let.Name]; !have {
				declPos[let.Name] = let.Pos
			}
		}
	}

	var out []model.Warning
	for _, name := range total.Declared.Elems() {
		if total.Used.Has(name) {
			continue
		}
		out = append(out, model.Warning{
			DetectorID: d.ID(),
			Severity:   d.Severity(),
			Position:   declPos[name],
			Message:    fmt.Sprintf("variable %q is declared but never accessed in %s", name, sym),
			Suggestion: "remove the declaration or use the variable",
		})
	}
	return out
}

// transferVars adds declarations from let statements and uses from every
// identifier read by the node's expressions. Monotone: it only ever grows
// the incoming sets.
func transferVars(node *ir.Node, in lattice.VarState) lattice.VarState {
	out := in
	switch s := node.Stmt.(type) {
	case *ast.LetStmt:
		out.Declared = out.Declared.With(s.Name)
	}
	for _, e := range ast.StmtExprs(node.Stmt) {
		out.Used = ast.FoldExpressions(e, out.Used, func(acc lattice.Set, e ast.Expr) lattice.Set {
			if id, ok := e.(*ast.Ident); ok {
				return acc.With(id.Name)
			}
			return acc
		}, nil)
	}
	return out
}
