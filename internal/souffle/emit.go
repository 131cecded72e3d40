package souffle

import (
	"fmt"
	"strings"
)

// Text renders the program in Soufflé's source dialect: declarations, I/O
// directives, then rules. Facts for input relations travel separately as
// fact files, matching how the engine is invoked with -F.
func (p *Program) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "// generated by tactscan: %s\n", p.Name)
	for _, name := range p.order {
		r := p.relations[name]
		attrs := make([]string, len(r.Attrs))
		for i, a := range r.Attrs {
			attrs[i] = fmt.Sprintf("%s: %s", a.Name, a.Kind)
		}
		fmt.Fprintf(&b, ".decl %s(%s)\n", r.Name, strings.Join(attrs, ", "))
		switch r.IO {
		case IOInput:
			fmt.Fprintf(&b, ".input %s\n", r.Name)
		case IOOutput:
			fmt.Fprintf(&b, ".output %s\n", r.Name)
		}
	}
	for _, rule := range p.rules {
		b.WriteString(formatRule(rule))
		b.WriteByte('\n')
	}
	return b.String()
}

func formatRule(rule Rule) string {
	heads := make([]string, len(rule.Heads))
	for i, h := range rule.Heads {
		heads[i] = formatAtom(h)
	}
	body := make([]string, len(rule.Body))
	for i, a := range rule.Body {
		body[i] = formatAtom(a)
	}
	return strings.Join(heads, ", ") + " :- " + strings.Join(body, ", ") + "."
}

func formatAtom(a Atom) string {
	s := fmt.Sprintf("%s(%s)", a.Relation, strings.Join(a.Args, ", "))
	if a.Negated {
		return "!" + s
	}
	return s
}

// FactFile renders a relation's facts in the engine's tab-separated fact
// format, one tuple per line.
func (r *Relation) FactFile() string {
	var b strings.Builder
	for _, f := range r.facts {
		b.WriteString(tupleKey(f.Values))
		b.WriteByte('\n')
	}
	return b.String()
}
