package encoding

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aleksaelezovic/sparqlee/pkg/rdf"
	"github.com/aleksaelezovic/sparqlee/pkg/store"
)

// NeedsString reports whether encoded holds a hash rather than its value.
func (c *Codec) NeedsString(encoded store.EncodedTerm) bool {
	switch encoded[0] {
	case typeNamedNode, typeBlankNode, typeString, typeLangString, typeTypedLiteral:
		return true
	}
	return false
}

// DecodeTerm decodes encoded. stringValue must be set for hashed terms.
func (c *Codec) DecodeTerm(encoded store.EncodedTerm, stringValue *string) (rdf.Term, error) {
	typ := encoded[0]
	if c.NeedsString(encoded) && stringValue == nil {
		return nil, fmt.Errorf("string value required for term type %d", typ)
	}

	switch typ {
	case typeNamedNode:
		return rdf.NewNamedNode(*stringValue), nil

	case typeBlankNode:
		return rdf.NewBlankNode(*stringValue), nil

	case typeNumericBlankNode:
		return rdf.NewBlankNode(strconv.FormatUint(binary.BigEndian.Uint64(encoded[1:9]), 10)), nil

	case typeDefaultGraph:
		return rdf.NewDefaultGraph(), nil

	case typeInlineString:
		data := encoded[1:]
		if end := bytes.IndexByte(data, 0); end >= 0 {
			data = data[:end]
		}
		return rdf.NewLiteral(string(data)), nil

	case typeString:
		return rdf.NewLiteral(*stringValue), nil

	case typeLangString:
		i := strings.LastIndexByte(*stringValue, '@')
		if i < 0 {
			return nil, fmt.Errorf("malformed language-tagged literal %q", *stringValue)
		}
		return rdf.NewLiteralWithLanguage((*stringValue)[:i], (*stringValue)[i+1:]), nil

	case typeInteger:
		return rdf.NewIntegerLiteral(int64(binary.BigEndian.Uint64(encoded[1:9]))), nil // #nosec G115 - reverses the encoder's bit pattern

	case typeBoolean:
		return rdf.NewBooleanLiteral(encoded[1] != 0), nil

	case typeDateTime:
		nanos := int64(binary.BigEndian.Uint64(encoded[1:9])) // #nosec G115 - reverses the encoder's bit pattern
		lexical := time.Unix(0, nanos).UTC().Format(time.RFC3339Nano)
		return rdf.NewLiteralWithDatatype(lexical, rdf.XSDDateTime), nil

	case typeTypedLiteral:
		i := strings.LastIndex(*stringValue, "^^")
		if i < 0 {
			return nil, fmt.Errorf("malformed typed literal %q", *stringValue)
		}
		return rdf.NewLiteralWithDatatype((*stringValue)[:i], rdf.NewNamedNode((*stringValue)[i+2:])), nil

	default:
		return nil, fmt.Errorf("unknown term type: %d", typ)
	}
}
