package detectors

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xab-mack/tactscan/internal/ast"
	"github.com/xab-mack/tactscan/internal/ir"
	"github.com/xab-mack/tactscan/internal/souffle"
)

// stubEngine stands in for souffle and evaluates exactly the
// used-minus-declared negation the detector's rule expresses.
func stubEngine(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "souffle-stub")
	script := `#!/bin/sh
fdir=${1#-F}
ddir=${2#-D}
grep -vxFf "$fdir/declared.facts" "$fdir/used.facts" > "$ddir/unbound.csv"
exit 0
`
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func unboundUnit(t *testing.T) *ir.CompilationUnit {
	t.Helper()
	f := &ast.File{
		Path: "main.tact",
		Functions: []*ast.Function{{
			Name:   "main",
			Params: []ast.Param{{Name: "amount", Pos: at("main.tact", 1)}},
			Body: []ast.Stmt{
				&ast.LetStmt{Name: "x", Init: &ast.Ident{Name: "amount", Pos: at("main.tact", 2)}, Pos: at("main.tact", 2)},
				&ast.ReturnStmt{Value: &ast.Ident{Name: "typo", Pos: at("main.tact", 3)}, Pos: at("main.tact", 3)},
			},
		}},
	}
	return unitOf(t, "proj", f)
}

func TestUnboundVariablesBuildProgram(t *testing.T) {
	d := &unboundVariables{}
	prog, err := d.buildProgram(unboundUnit(t))
	require.NoError(t, err)

	declared, ok := prog.Relation("declared")
	require.True(t, ok)
	used, ok := prog.Relation("used")
	require.True(t, ok)

	// x from the let, amount from the parameter list
	assert.Equal(t, "x\tmain\namount\tmain\n", declared.FactFile())
	assert.Equal(t, "amount\tmain\ntypo\tmain\n", used.FactFile())
	assert.Contains(t, prog.Text(), "unbound(v, f) :- used(v, f), !declared(v, f).")
}

func TestUnboundVariablesBuildProgramSkipsStdlib(t *testing.T) {
	f := &ast.File{
		Path:   "stdlib/std.tact",
		Origin: "stdlib",
		Functions: []*ast.Function{{
			Name: "send",
			Body: []ast.Stmt{
				&ast.ExprStmt{X: &ast.Ident{Name: "nativeReserve"}, Pos: at("stdlib/std.tact", 1)},
			},
		}},
	}
	d := &unboundVariables{}
	prog, err := d.buildProgram(unitOf(t, "proj", f))
	require.NoError(t, err)

	used, _ := prog.Relation("used")
	assert.Empty(t, used.Facts())
}

func TestUnboundVariablesCheck(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	d := &unboundVariables{exec: &souffle.Executor{Binary: stubEngine(t), Dir: t.TempDir()}}
	warnings, err := d.Check(context.Background(), unboundUnit(t))
	require.NoError(t, err)

	require.Len(t, warnings, 1)
	assert.Equal(t, "unbound-variables", warnings[0].DetectorID)
	assert.Equal(t, at("main.tact", 3), warnings[0].Position)
	assert.Contains(t, warnings[0].Message, `"typo"`)
}

func TestUnboundVariablesCheckCacheMissesOnSourceChange(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	d := &unboundVariables{exec: &souffle.Executor{Binary: stubEngine(t), Dir: t.TempDir()}}

	warnings, err := d.Check(context.Background(), unboundUnit(t))
	require.NoError(t, err)
	require.Len(t, warnings, 1)

	// the fixed source declares what it uses; the same unit name must not
	// serve the previous run's rows
	fixed := &ast.File{
		Path: "main.tact",
		Functions: []*ast.Function{{
			Name:   "main",
			Params: []ast.Param{{Name: "amount", Pos: at("main.tact", 1)}},
			Body: []ast.Stmt{
				&ast.LetStmt{Name: "x", Init: &ast.Ident{Name: "amount", Pos: at("main.tact", 2)}, Pos: at("main.tact", 2)},
				&ast.ReturnStmt{Value: &ast.Ident{Name: "x", Pos: at("main.tact", 3)}, Pos: at("main.tact", 3)},
			},
		}},
	}
	warnings, err = d.Check(context.Background(), unitOf(t, "proj", fixed))
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestUnboundVariablesFactsQualifyMethodsByContract(t *testing.T) {
	mkContract := func(name string, body ...ast.Stmt) *ast.Contract {
		return &ast.Contract{Name: name, Methods: []*ast.Function{{Name: "run", Body: body, Pos: at("c.tact", 1)}}}
	}
	f := &ast.File{
		Path: "c.tact",
		Contracts: []*ast.Contract{
			mkContract("Alpha", &ast.LetStmt{Name: "x", Init: &ast.IntLit{Value: 1}, Pos: at("c.tact", 2)}),
			mkContract("Beta", &ast.ExprStmt{X: &ast.Ident{Name: "x", Pos: at("c.tact", 5)}, Pos: at("c.tact", 5)}),
		},
	}

	d := &unboundVariables{}
	prog, err := d.buildProgram(unitOf(t, "proj", f))
	require.NoError(t, err)

	// Alpha.run's declaration must not cover Beta.run's use
	declared, _ := prog.Relation("declared")
	used, _ := prog.Relation("used")
	assert.Equal(t, "x\tAlpha.run\n", declared.FactFile())
	assert.Equal(t, "x\tBeta.run\n", used.FactFile())
}

func TestUnboundVariablesCheckUsesCache(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	unit := unboundUnit(t)

	d := &unboundVariables{exec: &souffle.Executor{Binary: stubEngine(t), Dir: t.TempDir()}}
	first, err := d.Check(context.Background(), unit)
	require.NoError(t, err)

	// second run must be served from the cache: the engine binary is gone
	d2 := &unboundVariables{exec: &souffle.Executor{Binary: "/nonexistent/souffle", Dir: t.TempDir()}}
	second, err := d2.Check(context.Background(), unit)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
