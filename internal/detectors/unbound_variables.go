package detectors

import (
	"context"
	"fmt"

	"github.com/xab-mack/tactscan/internal/ast"
	"github.com/xab-mack/tactscan/internal/cache"
	"github.com/xab-mack/tactscan/internal/ir"
	"github.com/xab-mack/tactscan/internal/model"
	"github.com/xab-mack/tactscan/internal/souffle"
)

// unboundVariables flags identifiers that are used without a reachable
// declaration. It is the relational-variant detector: facts are derived by
// walking the IR, the check itself is one Datalog rule evaluated by the
// external engine.
type unboundVariables struct {
	exec *souffle.Executor
}

func (d *unboundVariables) ID() string               { return "unbound-variables" }
func (d *unboundVariables) Severity() model.Severity { return model.SeverityHigh }
func (d *unboundVariables) SharingPolicy() Policy    { return PolicyUnion }

func (d *unboundVariables) Check(ctx context.Context, unit *ir.CompilationUnit) ([]model.Warning, error) {
	prog, err := d.buildProgram(unit)
	if err != nil {
		return nil, err
	}

	// the program text is identical for every unit; the fact files are what
	// changes with the source, so they must be part of the key
	parts := []string{"unbound-v1", unit.Name, prog.Text()}
	for _, r := range prog.InputRelations() {
		parts = append(parts, r.FactFile())
	}
	key := cache.Key(parts...)

	var rows []souffle.Row
	if !cache.Load(key, &rows) {
		res, err := d.exec.Run(ctx, prog)
		if err != nil {
			return nil, err
		}
		rows = res.Rows("unbound")
		_ = cache.Store(key, rows)
	}

	var out []model.Warning
	for _, row := range rows {
		out = append(out, model.Warning{
			DetectorID: d.ID(),
			Severity:   d.Severity(),
			Position:   row.Pos,
			Message:    fmt.Sprintf("identifier %q is used in %s but never declared", row.Values[0], row.Values[1]),
			Suggestion: "declare the identifier before use",
		})
	}
	return out, nil
}

// buildProgram derives declared/used facts per CFG and states the check as
// unbound(v, f) :- used(v, f), !declared(v, f).
func (d *unboundVariables) buildProgram(unit *ir.CompilationUnit) (*souffle.Program, error) {
	prog := souffle.NewProgram("unbound-" + unit.Name)
	varFunc := []souffle.Attr{
		{Name: "v", Kind: souffle.KindSymbol},
		{Name: "f", Kind: souffle.KindSymbol},
	}
	if err := prog.AddRelation("declared", souffle.IOInput, varFunc...); err != nil {
		return nil, err
	}
	if err := prog.AddRelation("used", souffle.IOInput, varFunc...); err != nil {
		return nil, err
	}
	if err := prog.AddRelation("unbound", souffle.IOOutput, varFunc...); err != nil {
		return nil, err
	}
	if err := prog.AddRule(souffle.Rule{
		Heads: []souffle.Atom{{Relation: "unbound", Args: []string{"v", "f"}}},
		Body: []souffle.Atom{
			{Relation: "used", Args: []string{"v", "f"}},
			{Relation: "declared", Args: []string{"v", "f"}, Negated: true},
		},
	}); err != nil {
		return nil, err
	}

	var addErr error
	add := func(rel, name, fn string, pos model.Position) {
		if addErr == nil {
			addErr = prog.AddFact(rel, pos, name, fn)
		}
	}
	// facts key on the qualified symbol so same-named methods of different
	// contracts keep separate declared/used namespaces
	unit.ForEachCFG(func(sym ir.Symbol, cfg *ir.CFG, node *ir.Node, stmt ast.Stmt) {
		if cfg.Origin == model.OriginStdlib {
			return
		}
		if let, ok := stmt.(*ast.LetStmt); ok {
			add("declared", let.Name, sym.String(), let.Pos)
		}
		for _, e := range ast.StmtExprs(stmt) {
			ast.FoldExpressions(e, struct{}{}, func(_ struct{}, e ast.Expr) struct{} {
				if id, ok := e.(*ast.Ident); ok {
					add("used", id.Name, sym.String(), id.Pos)
				}
				return struct{}{}
			}, nil)
		}
	})
	// function parameters are declarations too
	for _, f := range unit.Files {
		for _, fn := range f.Functions {
			for _, p := range fn.Params {
				add("declared", p.Name, ir.Symbol{Name: fn.Name}.String(), p.Pos)
			}
		}
		for _, c := range f.Contracts {
			for _, m := range c.Methods {
				for _, p := range m.Params {
					add("declared", p.Name, ir.Symbol{Contract: c.Name, Name: m.Name}.String(), p.Pos)
				}
			}
		}
	}
	if addErr != nil {
		return nil, addErr
	}
	return prog, nil
}
