package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xab-mack/tactscan/internal/ast"
	"github.com/xab-mack/tactscan/internal/config"
	"github.com/xab-mack/tactscan/internal/ir"
	"github.com/xab-mack/tactscan/internal/model"
)

// localDetectors avoids the relational detector so tests never need the
// external engine binary.
var localDetectors = []string{"never-accessed", "unused-constants"}

func at(file string, line int) model.Position {
	return model.Position{File: file, Line: line, Origin: model.OriginUser}
}

func sharedConstFile() *ast.File {
	return &ast.File{
		Path: "shared.tact",
		Constants: []*ast.Constant{
			{Name: "MAX", Init: &ast.IntLit{Value: 7}, Pos: at("shared.tact", 1)},
		},
	}
}

func mainFile(path string, body ...ast.Stmt) *ast.File {
	return &ast.File{
		Path:      path,
		Functions: []*ast.Function{{Name: "main", Body: body, Pos: at(path, 1)}},
	}
}

func TestRunIntersectDropsDisagreedWarning(t *testing.T) {
	// projectA never reads MAX, projectB does; the shared constant must not
	// be reported because the importing projects disagree
	unitA := ir.BuildUnit("projectA", []*ast.File{
		sharedConstFile(),
		mainFile("a.tact", &ast.ReturnStmt{Pos: at("a.tact", 2)}),
	})
	unitB := ir.BuildUnit("projectB", []*ast.File{
		sharedConstFile(),
		mainFile("b.tact", &ast.ReturnStmt{Value: &ast.Ident{Name: "MAX", Pos: at("b.tact", 2)}, Pos: at("b.tact", 2)}),
	})

	cfg := config.Default()
	cfg.Detectors = localDetectors
	warnings, err := New(cfg).Run(context.Background(), []*ir.CompilationUnit{unitA, unitB})
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestRunIntersectReportsAgreedWarningOnce(t *testing.T) {
	unitA := ir.BuildUnit("projectA", []*ast.File{
		sharedConstFile(),
		mainFile("a.tact", &ast.ReturnStmt{Pos: at("a.tact", 2)}),
	})
	unitB := ir.BuildUnit("projectB", []*ast.File{
		sharedConstFile(),
		mainFile("b.tact", &ast.ReturnStmt{Pos: at("b.tact", 2)}),
	})

	cfg := config.Default()
	cfg.Detectors = localDetectors
	warnings, err := New(cfg).Run(context.Background(), []*ir.CompilationUnit{unitA, unitB})
	require.NoError(t, err)

	require.Len(t, warnings, 1)
	assert.Equal(t, "unused-constants", warnings[0].DetectorID)
	assert.Equal(t, at("shared.tact", 1), warnings[0].Position)
	assert.NotEmpty(t, warnings[0].Fingerprint)
}

func TestRunUnionKeepsPerProjectWarnings(t *testing.T) {
	mk := func(project, path string) *ir.CompilationUnit {
		return ir.BuildUnit(project, []*ast.File{
			mainFile(path, &ast.LetStmt{Name: "dead", Init: &ast.IntLit{Value: 1}, Pos: at(path, 2)}),
		})
	}
	cfg := config.Default()
	cfg.Detectors = localDetectors
	warnings, err := New(cfg).Run(context.Background(), []*ir.CompilationUnit{
		mk("projectA", "a.tact"),
		mk("projectB", "b.tact"),
	})
	require.NoError(t, err)

	require.Len(t, warnings, 2)
	assert.Equal(t, "a.tact", warnings[0].Position.File)
	assert.Equal(t, "b.tact", warnings[1].Position.File)
}

func TestRunFiltersBySeverityThreshold(t *testing.T) {
	unit := ir.BuildUnit("proj", []*ast.File{
		sharedConstFile(), // low severity finding
		mainFile("a.tact", &ast.LetStmt{Name: "dead", Init: &ast.IntLit{Value: 1}, Pos: at("a.tact", 2)}), // medium
	})

	cfg := config.Default()
	cfg.Detectors = localDetectors
	cfg.SeverityThreshold = "medium"
	warnings, err := New(cfg).Run(context.Background(), []*ir.CompilationUnit{unit})
	require.NoError(t, err)

	require.Len(t, warnings, 1)
	assert.Equal(t, "never-accessed", warnings[0].DetectorID)
}

func TestRunAppliesConfigSuppressions(t *testing.T) {
	unit := ir.BuildUnit("proj", []*ast.File{
		mainFile("a.tact", &ast.LetStmt{Name: "dead", Init: &ast.IntLit{Value: 1}, Pos: at("a.tact", 2)}),
	})

	cfg := config.Default()
	cfg.Detectors = localDetectors
	cfg.Suppressions = []config.Suppression{{Detector: "never-accessed", Path: "a.tact"}}
	warnings, err := New(cfg).Run(context.Background(), []*ir.CompilationUnit{unit})
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestSortWarningsSeverityThenLocation(t *testing.T) {
	ws := []model.Warning{
		{DetectorID: "b", Severity: model.SeverityLow, Position: at("z.tact", 1)},
		{DetectorID: "a", Severity: model.SeverityHigh, Position: at("z.tact", 9)},
		{DetectorID: "c", Severity: model.SeverityHigh, Position: at("a.tact", 5)},
		{DetectorID: "a", Severity: model.SeverityLow, Position: at("z.tact", 1)},
	}
	sortWarnings(ws)

	assert.Equal(t, "c", ws[0].DetectorID) // high, a.tact
	assert.Equal(t, "a", ws[1].DetectorID) // high, z.tact
	assert.Equal(t, "a", ws[2].DetectorID) // low, z.tact:1, detector a before b
	assert.Equal(t, "b", ws[3].DetectorID)
}
