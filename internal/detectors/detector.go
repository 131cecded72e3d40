// Package detectors defines the detector contract and the built-in
// registration table. A detector inspects one compilation unit and returns
// positioned warnings; how it gets there (direct AST walk, dataflow solve,
// or a relational program) is its own business.
package detectors

import (
	"context"
	"sort"

	"github.com/xab-mack/tactscan/internal/ir"
	"github.com/xab-mack/tactscan/internal/model"
	"github.com/xab-mack/tactscan/internal/souffle"
)

// Policy controls how a detector's warnings are reconciled across projects
// that share imported files.
type Policy int

const (
	// PolicyUnion keeps every warning on its own merit per project.
	PolicyUnion Policy = iota
	// PolicyIntersect keeps a warning tied to an imported file only when
	// every project importing that file independently reproduces it at the
	// same position. Used for "never used" style checks.
	PolicyIntersect
)

// Detector is the plugin contract. Check is the only operation that does
// work; it may block on an external process (the relational detectors do).
// Detectors keep no state across units: any accumulator is local to one
// Check call.
type Detector interface {
	ID() string
	Severity() model.Severity
	SharingPolicy() Policy
	Check(ctx context.Context, unit *ir.CompilationUnit) ([]model.Warning, error)
}

// Options carries the shared collaborators a detector may need. Detectors
// that never shell out ignore it.
type Options struct {
	Souffle *souffle.Executor
}

// Constructor builds a fresh detector instance. Registration is a fixed
// table populated at process start; there is no dynamic loading.
type Constructor func(Options) Detector

type Registry struct {
	ctors map[string]Constructor
}

func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

func (r *Registry) Register(name string, ctor Constructor) { r.ctors[name] = ctor }

// RegisterBuiltin installs the built-in detectors.
func (r *Registry) RegisterBuiltin() {
	r.Register("never-accessed", func(o Options) Detector { return &neverAccessed{} })
	r.Register("unbound-variables", func(o Options) Detector { return &unboundVariables{exec: o.Souffle} })
	r.Register("unused-constants", func(o Options) Detector { return &unusedConstants{} })
}

// Names returns the registered detector names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.ctors))
	for name := range r.ctors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Instantiate constructs the named detectors; an empty list means all
// registered ones.
func (r *Registry) Instantiate(names []string, opts Options) []Detector {
	if len(names) == 0 {
		names = r.Names()
	}
	var out []Detector
	for _, name := range names {
		if ctor, ok := r.ctors[name]; ok {
			out = append(out, ctor(opts))
		}
	}
	return out
}
