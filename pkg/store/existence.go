package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/aleksaelezovic/sparqlee/pkg/rdf"
	"github.com/aleksaelezovic/sparqlee/pkg/sparql/expr"
)

// BasicPattern is a conjunction of quad patterns, the operation of an
// EXISTS expression.
type BasicPattern []*Pattern

func (bp BasicPattern) String() string {
	parts := make([]string, len(bp))
	for i, p := range bp {
		parts[i] = p.String()
	}
	return strings.Join(parts, " . ")
}

// Variables returns the distinct variable names of bp in order of first
// appearance.
func (bp BasicPattern) Variables() []string {
	seen := make(map[string]bool)
	var names []string
	for _, p := range bp {
		for _, v := range p.positions() {
			if variable, ok := v.(*Variable); ok && !seen[variable.Name] {
				seen[variable.Name] = true
				names = append(names, variable.Name)
			}
		}
	}
	return names
}

// PatternExistence decides EXISTS over a TripleStore.
type PatternExistence struct {
	store *TripleStore
}

var _ expr.ExistenceEvaluator = (*PatternExistence)(nil)

func NewPatternExistence(store *TripleStore) *PatternExistence {
	return &PatternExistence{store: store}
}

// Exists reports whether the pattern has at least one solution compatible
// with b. Variables bound in b are substituted before matching.
func (pe *PatternExistence) Exists(ctx context.Context, op expr.Operation, b expr.Bindings) (bool, error) {
	var pattern BasicPattern
	switch p := op.(type) {
	case BasicPattern:
		pattern = p
	case *BasicPattern:
		pattern = *p
	default:
		return false, &expr.UnimplementedError{What: fmt.Sprintf("existence over %T", op)}
	}

	solution := make(map[string]rdf.Term)
	for _, name := range pattern.Variables() {
		if term, ok := b.Get(name); ok {
			solution[name] = term.ToRDF()
		}
	}
	return pe.match(ctx, pattern, solution)
}

// match is a backtracking nested-loop join: it solves patterns in order and
// stops at the first complete solution.
func (pe *PatternExistence) match(ctx context.Context, patterns BasicPattern, solution map[string]rdf.Term) (bool, error) {
	if len(patterns) == 0 {
		return true, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	it, err := pe.store.Query(substitute(patterns[0], solution))
	if err != nil {
		return false, err
	}
	defer func() { _ = it.Close() }()

	for it.Next() {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		quad, err := it.Quad()
		if err != nil {
			return false, err
		}
		extended, ok := extend(patterns[0], quad, solution)
		if !ok {
			continue
		}
		found, err := pe.match(ctx, patterns[1:], extended)
		if err != nil || found {
			return found, err
		}
	}
	return false, it.Err()
}

// substitute replaces the variables of p that solution binds.
func substitute(p *Pattern, solution map[string]rdf.Term) *Pattern {
	bind := func(v any) any {
		if variable, ok := v.(*Variable); ok {
			if term, ok := solution[variable.Name]; ok {
				return term
			}
		}
		return v
	}
	return &Pattern{
		Subject:   bind(p.Subject),
		Predicate: bind(p.Predicate),
		Object:    bind(p.Object),
		Graph:     bind(p.Graph),
	}
}

// extend binds the unbound variables of p to the terms of quad. It fails
// when a variable occurring twice in p meets two different terms.
func extend(p *Pattern, quad *rdf.Quad, solution map[string]rdf.Term) (map[string]rdf.Term, bool) {
	extended := make(map[string]rdf.Term, len(solution)+4)
	for k, v := range solution {
		extended[k] = v
	}
	terms := [4]rdf.Term{quad.Subject, quad.Predicate, quad.Object, quad.Graph}
	for pos, v := range p.positions() {
		variable, ok := v.(*Variable)
		if !ok {
			continue
		}
		if _, fixed := solution[variable.Name]; fixed {
			continue
		}
		if prev, ok := extended[variable.Name]; ok {
			if !prev.Equals(terms[pos]) {
				return nil, false
			}
			continue
		}
		extended[variable.Name] = terms[pos]
	}
	return extended, true
}
