package store

import (
	"fmt"

	"github.com/aleksaelezovic/sparqlee/pkg/rdf"
)

// Pattern is a quad pattern. Each position holds an rdf.Term or a
// *Variable. A nil Graph matches the default graph only.
type Pattern struct {
	Subject   any
	Predicate any
	Object    any
	Graph     any
}

func (p *Pattern) positions() [4]any {
	return [4]any{p.Subject, p.Predicate, p.Object, p.Graph}
}

func (p *Pattern) String() string {
	s := fmt.Sprintf("%s %s %s", positionString(p.Subject), positionString(p.Predicate), positionString(p.Object))
	if p.Graph != nil {
		s = "GRAPH " + positionString(p.Graph) + " { " + s + " }"
	}
	return s
}

func positionString(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v)
}

// Variable is a pattern variable.
type Variable struct {
	Name string
}

func NewVariable(name string) *Variable {
	return &Variable{Name: name}
}

func (v *Variable) String() string {
	return "?" + v.Name
}

func isVariable(v any) bool {
	_, ok := v.(*Variable)
	return ok
}

// QuadIterator iterates over the quads matching a pattern.
type QuadIterator interface {
	Next() bool
	Quad() (*rdf.Quad, error)
	// Err returns the error that ended iteration, if any.
	Err() error
	Close() error
}

// Query returns the quads matching pattern. The caller must close the
// iterator.
func (s *TripleStore) Query(pattern *Pattern) (QuadIterator, error) {
	positions := pattern.positions()
	defaultGraph := positions[posGraph] == nil
	if g, ok := positions[posGraph].(rdf.Term); ok && g.Type() == rdf.TermTypeDefaultGraph {
		defaultGraph = true
	}

	var (
		bound   [4]*EncodedTerm
		isBound [4]bool
	)
	for pos, v := range positions {
		term, ok := v.(rdf.Term)
		if !ok || (pos == posGraph && defaultGraph) {
			continue
		}
		enc, _, err := s.codec.EncodeTerm(term)
		if err != nil {
			return nil, fmt.Errorf("failed to encode pattern: %w", err)
		}
		bound[pos], isBound[pos] = &enc, true
	}

	candidates := graphIndexes
	if defaultGraph {
		candidates = defaultGraphIndexes
	}
	ix := selectIndex(isBound, candidates)

	var prefix []byte
	for _, pos := range ix.order {
		if bound[pos] == nil {
			break
		}
		prefix = append(prefix, bound[pos][:]...)
	}

	txn, err := s.storage.Begin(false)
	if err != nil {
		return nil, err
	}
	it, err := txn.Scan(ix.table, prefix)
	if err != nil {
		_ = txn.Rollback()
		return nil, err
	}
	return &quadIterator{store: s, txn: txn, it: it, index: ix, bound: bound}, nil
}

// selectIndex picks the candidate whose key starts with the longest run of
// bound positions.
func selectIndex(isBound [4]bool, candidates []index) index {
	best, bestRun := candidates[0], -1
	for _, ix := range candidates {
		run := 0
		for _, pos := range ix.order {
			if !isBound[pos] {
				break
			}
			run++
		}
		if run > bestRun {
			best, bestRun = ix, run
		}
	}
	return best
}

type quadIterator struct {
	store   *TripleStore
	txn     Transaction
	it      Iterator
	index   index
	bound   [4]*EncodedTerm
	current [4]EncodedTerm
	err     error
	closed  bool
}

// Next advances to the next key whose bound positions all match; the scan
// prefix only covers the leading ones.
func (qi *quadIterator) Next() bool {
	if qi.closed || qi.err != nil {
		return false
	}
	for qi.it.Next() {
		key := qi.it.Key()
		if len(key) != len(qi.index.order)*EncodedTermSize {
			qi.err = fmt.Errorf("invalid key length %d in %s", len(key), qi.index.table)
			return false
		}
		var terms [4]EncodedTerm
		for i, pos := range qi.index.order {
			copy(terms[pos][:], key[i*EncodedTermSize:(i+1)*EncodedTermSize])
		}
		if qi.matches(terms) {
			qi.current = terms
			return true
		}
	}
	return false
}

func (qi *quadIterator) matches(terms [4]EncodedTerm) bool {
	for pos, want := range qi.bound {
		if want != nil && *want != terms[pos] {
			return false
		}
	}
	return true
}

func (qi *quadIterator) Quad() (*rdf.Quad, error) {
	if qi.closed {
		return nil, fmt.Errorf("iterator closed")
	}
	names := [4]string{"subject", "predicate", "object", "graph"}
	var terms [4]rdf.Term
	for pos := range len(qi.index.order) {
		term, err := qi.store.decodeTerm(qi.txn, qi.current[pos])
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", names[pos], err)
		}
		terms[pos] = term
	}
	if len(qi.index.order) == 3 {
		terms[posGraph] = rdf.NewDefaultGraph()
	}
	return rdf.NewQuad(terms[posSubject], terms[posPredicate], terms[posObject], terms[posGraph]), nil
}

func (qi *quadIterator) Err() error {
	return qi.err
}

func (qi *quadIterator) Close() error {
	if qi.closed {
		return nil
	}
	qi.closed = true
	_ = qi.it.Close()
	return qi.txn.Rollback()
}
