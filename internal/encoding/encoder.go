package encoding

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aleksaelezovic/sparqlee/pkg/rdf"
	"github.com/aleksaelezovic/sparqlee/pkg/store"
	"github.com/zeebo/xxh3"
)

// MaxInlineStringSize is the longest string stored inside the encoded term.
const MaxInlineStringSize = store.EncodedTermSize - 1

// Encoded term type bytes.
const (
	typeNamedNode byte = iota + 1
	typeBlankNode
	typeNumericBlankNode
	typeDefaultGraph
	typeInlineString
	typeString
	typeLangString
	typeInteger
	typeBoolean
	typeDateTime
	typeTypedLiteral
)

// Packed dateTimes are nanoseconds since the epoch, which covers these years.
const (
	minPackedYear = 1678
	maxPackedYear = 2261
)

// Codec encodes terms as a type byte and 16 bytes of inline value or
// xxh3-128 hash. Only canonical lexical forms are packed, so decoding
// always returns the literal that was encoded.
type Codec struct{}

var _ store.Codec = (*Codec)(nil)

func NewCodec() *Codec {
	return &Codec{}
}

// Hash128 returns the big-endian xxh3-128 hash of s.
func (c *Codec) Hash128(s string) [16]byte {
	hash := xxh3.HashString128(s)
	var result [16]byte
	binary.BigEndian.PutUint64(result[0:8], hash.Hi)
	binary.BigEndian.PutUint64(result[8:16], hash.Lo)
	return result
}

// EncodeTerm encodes term. Terms that do not fit inline return the string
// to keep in the id2str table.
func (c *Codec) EncodeTerm(term rdf.Term) (store.EncodedTerm, *string, error) {
	switch t := term.(type) {
	case *rdf.NamedNode:
		return c.hashed(typeNamedNode, t.IRI)
	case *rdf.BlankNode:
		return c.encodeBlankNode(t)
	case *rdf.Literal:
		return c.encodeLiteral(t)
	case *rdf.DefaultGraph:
		return store.EncodedTerm{typeDefaultGraph}, nil, nil
	default:
		return store.EncodedTerm{}, nil, fmt.Errorf("unknown term type: %T", term)
	}
}

func (c *Codec) hashed(typ byte, s string) (store.EncodedTerm, *string, error) {
	encoded := store.EncodedTerm{typ}
	hash := c.Hash128(s)
	copy(encoded[1:], hash[:])
	return encoded, &s, nil
}

func (c *Codec) encodeBlankNode(node *rdf.BlankNode) (store.EncodedTerm, *string, error) {
	num, err := strconv.ParseUint(node.ID, 10, 64)
	if err != nil || strconv.FormatUint(num, 10) != node.ID {
		return c.hashed(typeBlankNode, node.ID)
	}
	encoded := store.EncodedTerm{typeNumericBlankNode}
	binary.BigEndian.PutUint64(encoded[1:9], num)
	return encoded, nil, nil
}

func (c *Codec) encodeLiteral(lit *rdf.Literal) (store.EncodedTerm, *string, error) {
	switch {
	case lit.Language != "":
		return c.hashed(typeLangString, lit.Value+"@"+lit.Language)
	case lit.Datatype == nil || lit.Datatype.IRI == rdf.XSDString.IRI:
		return c.encodeString(lit.Value)
	}

	encoded := store.EncodedTerm{}
	switch lit.Datatype.IRI {
	case rdf.XSDInteger.IRI:
		if v, err := strconv.ParseInt(lit.Value, 10, 64); err == nil && strconv.FormatInt(v, 10) == lit.Value {
			encoded[0] = typeInteger
			binary.BigEndian.PutUint64(encoded[1:9], uint64(v)) // #nosec G115 - bit pattern is decoded back as int64
			return encoded, nil, nil
		}
	case rdf.XSDBoolean.IRI:
		if lit.Value == "true" || lit.Value == "false" {
			encoded[0] = typeBoolean
			if lit.Value == "true" {
				encoded[1] = 1
			}
			return encoded, nil, nil
		}
	case rdf.XSDDateTime.IRI:
		if t, ok := packableDateTime(lit.Value); ok {
			encoded[0] = typeDateTime
			binary.BigEndian.PutUint64(encoded[1:9], uint64(t.UnixNano())) // #nosec G115 - bit pattern is decoded back as int64
			return encoded, nil, nil
		}
	}
	return c.hashed(typeTypedLiteral, lit.Value+"^^"+lit.Datatype.IRI)
}

func (c *Codec) encodeString(s string) (store.EncodedTerm, *string, error) {
	if len(s) > MaxInlineStringSize || strings.IndexByte(s, 0) >= 0 {
		return c.hashed(typeString, s)
	}
	encoded := store.EncodedTerm{typeInlineString}
	copy(encoded[1:], s)
	return encoded, nil, nil
}

// packableDateTime accepts UTC dateTimes in canonical RFC 3339 form.
func packableDateTime(lexical string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339Nano, lexical)
	if err != nil || t.Year() < minPackedYear || t.Year() > maxPackedYear {
		return time.Time{}, false
	}
	t = t.UTC()
	return t, t.Format(time.RFC3339Nano) == lexical
}
