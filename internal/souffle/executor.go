package souffle

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/xab-mack/tactscan/internal/model"
)

// DefaultBinary is the engine looked up on PATH when none is configured.
const DefaultBinary = "souffle"

// Row is one decoded output tuple with its side-channel position attached.
type Row struct {
	Values []string
	Pos    model.Position
}

// Results holds one decoded table per output relation.
type Results struct {
	rows map[string][]Row
}

// Rows returns the decoded rows of an output relation; nil when the engine
// derived nothing for it.
func (r *Results) Rows(relation string) []Row { return r.rows[relation] }

// Executor writes a program and its facts to an isolated working directory,
// invokes the external engine as a subprocess, and reads the output tables
// back. The subprocess wait is the only blocking point in the whole
// analysis; callers wanting bounded latency wrap ctx with a deadline.
type Executor struct {
	Binary string
	Dir    string // base working directory; per-run subdirectories are created inside
	Keep   bool   // keep working directories for debugging
}

func NewExecutor(dir string) *Executor {
	return &Executor{Binary: DefaultBinary, Dir: dir}
}

// Run executes one program synchronously. Each run gets its own working
// directory named after the program and a fresh id, so concurrent runs over
// different compilation units never clobber each other's fact files.
func (e *Executor) Run(ctx context.Context, p *Program) (*Results, error) {
	bin := e.Binary
	if bin == "" {
		bin = DefaultBinary
	}
	dir := filepath.Join(e.Dir, fmt.Sprintf("%s-%s", p.Name, uuid.NewString()[:8]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("souffle: create workdir: %w", err)
	}
	if !e.Keep {
		defer os.RemoveAll(dir)
	}

	programFile := filepath.Join(dir, p.Name+".dl")
	if err := os.WriteFile(programFile, []byte(p.Text()), 0o644); err != nil {
		return nil, fmt.Errorf("souffle: write program: %w", err)
	}
	for _, r := range p.InputRelations() {
		factFile := filepath.Join(dir, r.Name+".facts")
		if err := os.WriteFile(factFile, []byte(r.FactFile()), 0o644); err != nil {
			return nil, fmt.Errorf("souffle: write facts for %s: %w", r.Name, err)
		}
	}

	cmd := exec.CommandContext(ctx, bin, "-F"+dir, "-D"+dir, programFile)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("souffle: engine failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return e.decode(p, dir)
}

// RunAll executes several programs concurrently, one goroutine per program.
// Results line up with the input order.
func (e *Executor) RunAll(ctx context.Context, programs []*Program) ([]*Results, error) {
	results := make([]*Results, len(programs))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range programs {
		g.Go(func() error {
			res, err := e.Run(ctx, p)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// decode reads one table per output relation and zips every row back to the
// position stored when the matching fact was added. A row whose values match
// no stored fact means the side channel was built incorrectly, which is
// fatal.
func (e *Executor) decode(p *Program, dir string) (*Results, error) {
	out := &Results{rows: make(map[string][]Row)}
	for _, r := range p.OutputRelations() {
		path := filepath.Join(dir, r.Name+".csv")
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("souffle: read output for %s: %w", r.Name, err)
		}
		rows, err := p.decodeTable(r, data)
		if err != nil {
			return nil, err
		}
		out.rows[r.Name] = rows
	}
	return out, nil
}

func (p *Program) decodeTable(r *Relation, data []byte) ([]Row, error) {
	var rows []Row
	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		values := strings.Split(line, "\t")
		if len(values) != len(r.Attrs) {
			return nil, fmt.Errorf("souffle: output row for %s has %d columns, want %d", r.Name, len(values), len(r.Attrs))
		}
		pos, ok := p.PositionOf(values)
		if !ok {
			return nil, fmt.Errorf("souffle: output row %s(%s) matches no stored fact", r.Name, strings.Join(values, ", "))
		}
		rows = append(rows, Row{Values: values, Pos: pos})
	}
	return rows, nil
}
