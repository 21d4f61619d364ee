package store

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/aleksaelezovic/sparqlee/pkg/rdf"
)

// Positions of a quad inside an index key.
const (
	posSubject = iota
	posPredicate
	posObject
	posGraph
)

// index is a table together with the quad positions of its key, in order.
type index struct {
	table Table
	order []int
}

var (
	defaultGraphIndexes = []index{
		{TableSPO, []int{posSubject, posPredicate, posObject}},
		{TablePOS, []int{posPredicate, posObject, posSubject}},
		{TableOSP, []int{posObject, posSubject, posPredicate}},
	}
	graphIndexes = []index{
		{TableSPOG, []int{posSubject, posPredicate, posObject, posGraph}},
		{TablePOSG, []int{posPredicate, posObject, posSubject, posGraph}},
		{TableOSPG, []int{posObject, posSubject, posPredicate, posGraph}},
		{TableGSPO, []int{posGraph, posSubject, posPredicate, posObject}},
		{TableGPOS, []int{posGraph, posPredicate, posObject, posSubject}},
		{TableGOSP, []int{posGraph, posObject, posSubject, posPredicate}},
	}
)

func (ix index) key(terms [4]EncodedTerm) []byte {
	ordered := make([]EncodedTerm, len(ix.order))
	for i, pos := range ix.order {
		ordered[i] = terms[pos]
	}
	return quadKey(ordered...)
}

// insertBatchSize bounds the quads written per transaction by InsertQuads.
const insertBatchSize = 1000

// TripleStore keeps quads in nine permutation indexes over a Storage.
type TripleStore struct {
	storage Storage
	codec   Codec
}

// NewTripleStore creates a triple store over storage, encoding terms with
// codec.
func NewTripleStore(storage Storage, codec Codec) *TripleStore {
	return &TripleStore{storage: storage, codec: codec}
}

// Close closes the underlying storage.
func (s *TripleStore) Close() error {
	return s.storage.Close()
}

// InsertQuad inserts a single quad.
func (s *TripleStore) InsertQuad(quad *rdf.Quad) error {
	_, err := s.InsertQuads([]*rdf.Quad{quad})
	return err
}

// InsertQuads inserts quads in batches and returns how many were written.
// On error, the batches committed so far remain.
func (s *TripleStore) InsertQuads(quads []*rdf.Quad) (int, error) {
	written := 0
	for start := 0; start < len(quads); start += insertBatchSize {
		end := min(start+insertBatchSize, len(quads))
		if err := s.update(func(txn Transaction) error {
			for _, quad := range quads[start:end] {
				if err := s.insertQuadInTxn(txn, quad); err != nil {
					return fmt.Errorf("failed to insert %s: %w", quad, err)
				}
			}
			return nil
		}); err != nil {
			return written, err
		}
		written = end
	}
	return written, nil
}

func (s *TripleStore) update(fn func(Transaction) error) error {
	txn, err := s.storage.Begin(true)
	if err != nil {
		return err
	}
	defer func() { _ = txn.Rollback() }()

	if err := fn(txn); err != nil {
		return err
	}
	return txn.Commit()
}

// encodeQuad encodes the four positions of quad. A nil graph is the
// default graph.
func (s *TripleStore) encodeQuad(quad *rdf.Quad) ([4]EncodedTerm, [4]*string, error) {
	var (
		encoded [4]EncodedTerm
		strs    [4]*string
	)
	graph := quad.Graph
	if graph == nil {
		graph = rdf.NewDefaultGraph()
	}
	names := [4]string{"subject", "predicate", "object", "graph"}
	for i, term := range [4]rdf.Term{quad.Subject, quad.Predicate, quad.Object, graph} {
		enc, str, err := s.codec.EncodeTerm(term)
		if err != nil {
			return encoded, strs, fmt.Errorf("failed to encode %s: %w", names[i], err)
		}
		encoded[i], strs[i] = enc, str
	}
	return encoded, strs, nil
}

func isDefaultGraph(quad *rdf.Quad) bool {
	return quad.Graph == nil || quad.Graph.Type() == rdf.TermTypeDefaultGraph
}

func (s *TripleStore) insertQuadInTxn(txn Transaction, quad *rdf.Quad) error {
	encoded, strs, err := s.encodeQuad(quad)
	if err != nil {
		return err
	}
	for i := range encoded {
		if err := s.storeString(txn, encoded[i], strs[i]); err != nil {
			return err
		}
	}

	empty := []byte{}
	if isDefaultGraph(quad) {
		for _, ix := range defaultGraphIndexes {
			if err := txn.Set(ix.table, ix.key(encoded), empty); err != nil {
				return err
			}
		}
	} else if err := txn.Set(TableGraphs, encoded[posGraph][:], empty); err != nil {
		return err
	}
	for _, ix := range graphIndexes {
		if err := txn.Set(ix.table, ix.key(encoded), empty); err != nil {
			return err
		}
	}
	return nil
}

// storeString records str under the hash part of encoded.
func (s *TripleStore) storeString(txn Transaction, encoded EncodedTerm, str *string) error {
	if str == nil {
		return nil
	}
	key := encoded[1:]
	value := []byte(*str)

	existing, err := txn.Get(TableID2Str, key)
	if err == nil && bytes.Equal(existing, value) {
		return nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return txn.Set(TableID2Str, key, value)
}

// DeleteQuad removes quad from every index. Strings in TableID2Str are kept,
// as other quads may reference them.
func (s *TripleStore) DeleteQuad(quad *rdf.Quad) error {
	encoded, _, err := s.encodeQuad(quad)
	if err != nil {
		return err
	}
	return s.update(func(txn Transaction) error {
		if isDefaultGraph(quad) {
			for _, ix := range defaultGraphIndexes {
				if err := txn.Delete(ix.table, ix.key(encoded)); err != nil {
					return err
				}
			}
		}
		for _, ix := range graphIndexes {
			if err := txn.Delete(ix.table, ix.key(encoded)); err != nil {
				return err
			}
		}
		return nil
	})
}

// ContainsQuad reports whether quad is stored.
func (s *TripleStore) ContainsQuad(quad *rdf.Quad) (bool, error) {
	encoded, _, err := s.encodeQuad(quad)
	if err != nil {
		return false, err
	}
	txn, err := s.storage.Begin(false)
	if err != nil {
		return false, err
	}
	defer func() { _ = txn.Rollback() }()

	_, err = txn.Get(TableSPOG, graphIndexes[0].key(encoded))
	switch {
	case errors.Is(err, ErrNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// Count returns the number of stored quads.
func (s *TripleStore) Count() (int64, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return 0, err
	}
	defer func() { _ = txn.Rollback() }()

	it, err := txn.Scan(TableSPOG, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = it.Close() }()

	var count int64
	for it.Next() {
		count++
	}
	return count, nil
}

// decodeTerm decodes encoded, fetching its string form when needed.
func (s *TripleStore) decodeTerm(txn Transaction, encoded EncodedTerm) (rdf.Term, error) {
	var stringValue *string
	if s.codec.NeedsString(encoded) {
		str, err := txn.Get(TableID2Str, encoded[1:])
		if err != nil {
			return nil, fmt.Errorf("failed to resolve term string: %w", err)
		}
		v := string(str)
		stringValue = &v
	}
	return s.codec.DecodeTerm(encoded, stringValue)
}
