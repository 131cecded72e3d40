package detectors

import (
	"context"
	"fmt"

	"github.com/xab-mack/tactscan/internal/ast"
	"github.com/xab-mack/tactscan/internal/ir"
	"github.com/xab-mack/tactscan/internal/model"
)

// unusedConstants flags module-level constants that are never read anywhere
// in the project. It is the direct-AST variant: a fold over statements and
// expressions, no solver and no external engine.
//
// The sharing policy is intersect: a constant declared in a file imported by
// several projects may be unused in one project but used in a sibling, and
// must only be reported when every importing project agrees.
type unusedConstants struct{}

func (d *unusedConstants) ID() string               { return "unused-constants" }
func (d *unusedConstants) Severity() model.Severity { return model.SeverityLow }
func (d *unusedConstants) SharingPolicy() Policy    { return PolicyIntersect }

func (d *unusedConstants) Check(ctx context.Context, unit *ir.CompilationUnit) ([]model.Warning, error) {
	decls := make(map[string]model.Position)
	for _, f := range unit.Files {
		for _, c := range f.Constants {
			decls[c.Name] = c.Pos
		}
	}
	if len(decls) == 0 {
		return nil, nil
	}

	used := make(map[string]bool)
	markIdents := func(acc struct{}, e ast.Expr) struct{} {
		if id, ok := e.(*ast.Ident); ok {
			used[id.Name] = true
		}
		return acc
	}
	for _, f := range unit.Files {
		for _, fn := range f.Functions {
			ast.FoldFunctionExprs(fn, struct{}{}, markIdents)
		}
		for _, c := range f.Contracts {
			for _, m := range c.Methods {
				ast.FoldFunctionExprs(m, struct{}{}, markIdents)
			}
		}
		// a constant initializer may read another constant
		for _, c := range f.Constants {
			ast.FoldExpressions(c.Init, struct{}{}, func(acc struct{}, e ast.Expr) struct{} {
				if id, ok := e.(*ast.Ident); ok && id.Name != c.Name {
					used[id.Name] = true
				}
				return acc
			}, nil)
		}
	}

	var out []model.Warning
	for _, f := range unit.Files {
		for _, c := range f.Constants {
			if used[c.Name] {
				continue
			}
			out = append(out, model.Warning{
				DetectorID: d.ID(),
				Severity:   d.Severity(),
				Position:   c.Pos,
				Message:    fmt.Sprintf("constant %q is never used", c.Name),
				Suggestion: "remove the constant or reference it",
			})
		}
	}
	return out, nil
}
