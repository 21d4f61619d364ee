package store

import (
	"github.com/aleksaelezovic/sparqlee/pkg/rdf"
)

// EncodedTermSize is the width of an encoded term: a type byte followed by
// 16 bytes of inline data or hash.
const EncodedTermSize = 17

// EncodedTerm is the fixed-width key form of a term.
type EncodedTerm [EncodedTermSize]byte

// TermEncoder turns terms into index keys.
type TermEncoder interface {
	// EncodeTerm returns the encoded term and, when the term does not fit
	// inline, the string to store in TableID2Str.
	EncodeTerm(term rdf.Term) (EncodedTerm, *string, error)
}

// TermDecoder is the inverse of TermEncoder. stringValue is the TableID2Str
// entry of encoded, if it has one.
type TermDecoder interface {
	DecodeTerm(encoded EncodedTerm, stringValue *string) (rdf.Term, error)
}

// Codec encodes and decodes terms.
type Codec interface {
	TermEncoder
	TermDecoder
	// NeedsString reports whether encoded can only be decoded with its
	// TableID2Str entry.
	NeedsString(encoded EncodedTerm) bool
}

// quadKey concatenates encoded terms into an index key.
func quadKey(terms ...EncodedTerm) []byte {
	key := make([]byte, 0, len(terms)*EncodedTermSize)
	for _, term := range terms {
		key = append(key, term[:]...)
	}
	return key
}
