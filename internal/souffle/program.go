// Package souffle compiles IR-derived facts and Datalog rules into a Soufflé
// program, executes the external solver, and decodes its output rows back
// into positioned facts. The Datalog evaluator itself stays an external
// collaborator; this package only writes its inputs and reads its outputs.
package souffle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xab-mack/tactscan/internal/model"
)

// AttrKind is a primitive Soufflé attribute type.
type AttrKind string

const (
	KindSymbol   AttrKind = "symbol"
	KindNumber   AttrKind = "number"
	KindUnsigned AttrKind = "unsigned"
	KindFloat    AttrKind = "float"
)

type Attr struct {
	Name string
	Kind AttrKind
}

// IO marks how a relation crosses the engine boundary.
type IO int

const (
	IONone IO = iota
	IOInput
	IOOutput
)

// Fact is one ground tuple plus the source position it was derived from.
// The position is provenance only; it is not part of the dedup key.
type Fact struct {
	Values []any
	Pos    model.Position
}

// Relation is a declared relation: schema, direction, and a deduplicated
// fact set.
type Relation struct {
	Name  string
	Attrs []Attr
	IO    IO

	facts []Fact
	seen  map[string]struct{}
}

func (r *Relation) Facts() []Fact { return r.facts }

// Atom is one (possibly negated) literal of a rule. Args are variable names
// or literal constants exactly as they should appear in the program text.
type Atom struct {
	Relation string
	Args     []string
	Negated  bool
}

// Rule derives its head atoms from a conjunction of body atoms.
type Rule struct {
	Heads []Atom
	Body  []Atom
}

// Program owns the relations, facts and rules of one generated Soufflé
// program, plus the value-tuple side index that maps engine output rows back
// to source positions.
type Program struct {
	Name string

	relations map[string]*Relation
	order     []string
	rules     []Rule
	positions map[string]model.Position
}

func NewProgram(name string) *Program {
	return &Program{
		Name:      name,
		relations: make(map[string]*Relation),
		positions: make(map[string]model.Position),
	}
}

// AddRelation declares a relation. Re-declaring a name is a programming
// defect and fails.
func (p *Program) AddRelation(name string, io IO, attrs ...Attr) error {
	if _, dup := p.relations[name]; dup {
		return fmt.Errorf("souffle: relation %q declared twice", name)
	}
	if len(attrs) == 0 {
		return fmt.Errorf("souffle: relation %q has no attributes", name)
	}
	p.relations[name] = &Relation{Name: name, Attrs: attrs, IO: io, seen: make(map[string]struct{})}
	p.order = append(p.order, name)
	return nil
}

// AddFact appends a ground tuple to a declared relation after checking arity
// and value types. Re-adding a tuple that is structurally equal to an
// existing one is a no-op, so facts can be added from multiple call sites
// without blowing up the relation.
func (p *Program) AddFact(relation string, pos model.Position, values ...any) error {
	r, ok := p.relations[relation]
	if !ok {
		return fmt.Errorf("souffle: fact for undeclared relation %q", relation)
	}
	if len(values) != len(r.Attrs) {
		return fmt.Errorf("souffle: relation %q expects %d values, got %d", relation, len(r.Attrs), len(values))
	}
	for i, v := range values {
		if err := checkValue(r.Attrs[i].Kind, v); err != nil {
			return fmt.Errorf("souffle: relation %q attribute %q: %w", relation, r.Attrs[i].Name, err)
		}
	}
	key := tupleKey(values)
	if _, dup := r.seen[key]; dup {
		return nil
	}
	r.seen[key] = struct{}{}
	r.facts = append(r.facts, Fact{Values: values, Pos: pos})
	if _, have := p.positions[key]; !have {
		p.positions[key] = pos
	}
	return nil
}

// AddRule appends a rule. Every head and body relation must be declared
// before use.
func (p *Program) AddRule(rule Rule) error {
	if len(rule.Heads) == 0 || len(rule.Body) == 0 {
		return fmt.Errorf("souffle: rule needs at least one head and one body atom")
	}
	for _, a := range append(append([]Atom{}, rule.Heads...), rule.Body...) {
		r, ok := p.relations[a.Relation]
		if !ok {
			return fmt.Errorf("souffle: rule references undeclared relation %q", a.Relation)
		}
		if len(a.Args) != len(r.Attrs) {
			return fmt.Errorf("souffle: atom %s/%d does not match declared arity %d", a.Relation, len(a.Args), len(r.Attrs))
		}
	}
	p.rules = append(p.rules, rule)
	return nil
}

// Relation returns a declared relation by name.
func (p *Program) Relation(name string) (*Relation, bool) {
	r, ok := p.relations[name]
	return r, ok
}

// InputRelations returns the relations marked input, in declaration order.
func (p *Program) InputRelations() []*Relation {
	return p.relationsWithIO(IOInput)
}

// OutputRelations returns the relations marked output, in declaration order.
func (p *Program) OutputRelations() []*Relation {
	return p.relationsWithIO(IOOutput)
}

func (p *Program) relationsWithIO(io IO) []*Relation {
	var out []*Relation
	for _, name := range p.order {
		if r := p.relations[name]; r.IO == io {
			out = append(out, r)
		}
	}
	return out
}

// PositionOf resolves the side-channel position for an output row's values.
func (p *Program) PositionOf(values []string) (model.Position, bool) {
	pos, ok := p.positions[strings.Join(values, "\t")]
	return pos, ok
}

func checkValue(kind AttrKind, v any) error {
	switch kind {
	case KindSymbol:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("want string for symbol, got %T", v)
		}
		// tabs and newlines are the fact-file delimiters; a symbol carrying
		// one would corrupt the TSV and the provenance index
		if strings.ContainsAny(s, "\t\n") {
			return fmt.Errorf("symbol value %q contains a tab or newline", s)
		}
	case KindNumber:
		switch v.(type) {
		case int, int32, int64:
		default:
			return fmt.Errorf("want integer for number, got %T", v)
		}
	case KindUnsigned:
		switch n := v.(type) {
		case uint, uint32, uint64:
		case int:
			if n < 0 {
				return fmt.Errorf("negative value for unsigned")
			}
		default:
			return fmt.Errorf("want unsigned integer, got %T", v)
		}
	case KindFloat:
		switch v.(type) {
		case float32, float64:
		default:
			return fmt.Errorf("want float, got %T", v)
		}
	default:
		return fmt.Errorf("unknown attribute kind %q", kind)
	}
	return nil
}

// tupleKey canonicalizes a value tuple; it is both the dedup key and the
// side-channel index key, matching how the engine prints each value.
func tupleKey(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatValue(v)
	}
	return strings.Join(parts, "\t")
}

func formatValue(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case float32:
		return strconv.FormatFloat(float64(n), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64)
	default:
		return fmt.Sprintf("%d", v)
	}
}
