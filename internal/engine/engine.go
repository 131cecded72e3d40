// Package engine runs the detector pipeline: every enabled detector over
// every compilation unit, cross-project reconciliation, suppressions,
// filters and ordering.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/xab-mack/tactscan/internal/config"
	"github.com/xab-mack/tactscan/internal/detectors"
	"github.com/xab-mack/tactscan/internal/ir"
	"github.com/xab-mack/tactscan/internal/log"
	"github.com/xab-mack/tactscan/internal/model"
	"github.com/xab-mack/tactscan/internal/souffle"
	"github.com/xab-mack/tactscan/internal/util"
)

type Engine struct {
	registry *detectors.Registry
	cfg      config.Config
}

func New(cfg config.Config) *Engine {
	reg := detectors.NewRegistry()
	reg.RegisterBuiltin()
	return &Engine{registry: reg, cfg: cfg}
}

func (e *Engine) Registry() *detectors.Registry { return e.registry }

// Run executes every enabled detector against every unit, sequentially
// within a unit. A detector error means that detector crashed; detectors are
// trusted in-process code, so the whole run aborts rather than degrading.
func (e *Engine) Run(ctx context.Context, units []*ir.CompilationUnit) ([]model.Warning, error) {
	exec := souffle.NewExecutor(filepath.Join(os.TempDir(), "tactscan"))
	if e.cfg.Souffle.Binary != "" {
		exec.Binary = e.cfg.Souffle.Binary
	}
	exec.Keep = e.cfg.Souffle.KeepDirs

	dets := e.registry.Instantiate(e.cfg.Detectors, detectors.Options{Souffle: exec})

	// warnings indexed by detector, then by unit, for reconciliation
	byDetector := make(map[string][][]model.Warning)
	for _, d := range dets {
		byDetector[d.ID()] = make([][]model.Warning, len(units))
	}
	for ui, unit := range units {
		for _, d := range dets {
			log.Debug("running detector", "detector", d.ID(), "unit", unit.Name)
			ws, err := d.Check(ctx, unit)
			if err != nil {
				return nil, fmt.Errorf("detector %s failed on %s: %w", d.ID(), unit.Name, err)
			}
			byDetector[d.ID()][ui] = ws
		}
	}

	merged := reconcile(dets, units, byDetector)
	merged = applySuppressions(merged, e.cfg)
	merged = filterBySeverity(merged, e.cfg)

	for i := range merged {
		w := &merged[i]
		w.Fingerprint = util.Fingerprint(w.DetectorID, w.Position.File, w.Position.Line, w.Position.EndLine, w.Message)
		if w.Snippet == "" {
			if b, err := os.ReadFile(w.Position.File); err == nil {
				w.Snippet = util.ExtractSnippet(string(b), w.Position.Line, w.Position.EndLine, 8)
			}
		}
	}

	sortWarnings(merged)
	return merged, nil
}

// reconcile applies each detector's cross-project sharing policy. Union
// warnings pass through. An intersect warning tied to a file imported by
// several units survives only when every one of those units independently
// produced a warning at an equal position, and is then reported once.
func reconcile(dets []detectors.Detector, units []*ir.CompilationUnit, byDetector map[string][][]model.Warning) []model.Warning {
	// which units include which files
	fileUnits := make(map[string][]int)
	for ui, unit := range units {
		for _, f := range unit.Files {
			fileUnits[f.Path] = append(fileUnits[f.Path], ui)
		}
	}

	var out []model.Warning
	for _, d := range dets {
		perUnit := byDetector[d.ID()]
		if d.SharingPolicy() == detectors.PolicyUnion {
			for _, ws := range perUnit {
				out = append(out, ws...)
			}
			continue
		}

		produced := make(map[model.Position]map[int]bool)
		first := make(map[model.Position]model.Warning)
		for ui, ws := range perUnit {
			for _, w := range ws {
				if produced[w.Position] == nil {
					produced[w.Position] = make(map[int]bool)
					first[w.Position] = w
				}
				produced[w.Position][ui] = true
			}
		}
		for pos, seen := range produced {
			importing := fileUnits[pos.File]
			agreed := true
			for _, ui := range importing {
				if !seen[ui] {
					agreed = false
					break
				}
			}
			if agreed {
				out = append(out, first[pos])
			}
		}
	}
	return out
}

// sortWarnings orders by descending severity, then by location and detector
// for a stable report.
func sortWarnings(ws []model.Warning) {
	sort.SliceStable(ws, func(i, j int) bool {
		ri, rj := model.SeverityRank(ws[i].Severity), model.SeverityRank(ws[j].Severity)
		if ri != rj {
			return ri > rj
		}
		if ws[i].Position.File != ws[j].Position.File {
			return ws[i].Position.File < ws[j].Position.File
		}
		if ws[i].Position.Line != ws[j].Position.Line {
			return ws[i].Position.Line < ws[j].Position.Line
		}
		return ws[i].DetectorID < ws[j].DetectorID
	})
}
