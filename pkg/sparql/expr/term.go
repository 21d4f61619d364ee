package expr

import (
	"fmt"
	"math"
	"time"

	"github.com/aleksaelezovic/sparqlee/pkg/rdf"
	"github.com/cockroachdb/apd/v3"
)

// TermType discriminates the term variants.
type TermType string

const (
	TermTypeNamedNode TermType = "namedNode"
	TermTypeBlankNode TermType = "blankNode"
	TermTypeLiteral   TermType = "literal"
)

// Type returns the term type as an argument type.
func (t TermType) Type() ArgumentType {
	return ArgumentType(t)
}

// Term is an evaluated SPARQL value. It is also the leaf Expression.
//
// The set of terms is closed: *NamedNode, *BlankNode and *Literal.
type Term interface {
	Expression

	TermType() TermType

	// DispatchKey is the argument type this term presents to function
	// resolution: the category for literals, the term type otherwise.
	DispatchKey() ArgumentType

	// EBV computes the effective boolean value. Terms without a truthiness
	// rule fail with an *EBVCoercionError.
	EBV() (bool, error)

	// ToRDF materializes the term as a wire-level RDF term. It never fails.
	ToRDF() rdf.Term

	String() string

	isTerm()
}

// ===== Named nodes =====

// NamedNode is an IRI.
type NamedNode struct {
	IRI string
}

func NewNamedNode(iri string) *NamedNode {
	return &NamedNode{IRI: iri}
}

func (n *NamedNode) ExpressionType() ExpressionType { return ExpressionTerm }
func (n *NamedNode) TermType() TermType             { return TermTypeNamedNode }
func (n *NamedNode) DispatchKey() ArgumentType      { return TermTypeNamedNode.Type() }
func (n *NamedNode) ToRDF() rdf.Term                { return rdf.NewNamedNode(n.IRI) }
func (n *NamedNode) String() string                 { return "<" + n.IRI + ">" }
func (n *NamedNode) expression()                    {}
func (n *NamedNode) isTerm()                        {}

func (n *NamedNode) EBV() (bool, error) {
	return false, &EBVCoercionError{Term: n}
}

// ===== Blank nodes =====

// BlankNode is a blank node label as it appears in a binding.
type BlankNode struct {
	ID string
}

func NewBlankNode(id string) *BlankNode {
	return &BlankNode{ID: id}
}

func (b *BlankNode) ExpressionType() ExpressionType { return ExpressionTerm }
func (b *BlankNode) TermType() TermType             { return TermTypeBlankNode }
func (b *BlankNode) DispatchKey() ArgumentType      { return TermTypeBlankNode.Type() }
func (b *BlankNode) ToRDF() rdf.Term                { return rdf.NewBlankNode(b.ID) }
func (b *BlankNode) String() string                 { return "_:" + b.ID }
func (b *BlankNode) expression()                    {}
func (b *BlankNode) isTerm()                        {}

func (b *BlankNode) EBV() (bool, error) {
	return false, &EBVCoercionError{Term: b}
}

// ===== Literals =====

// Literal is an RDF literal together with its parsed value.
//
// The typed value depends on the category:
//
//	integer family    int64, or an integral *apd.Decimal outside int64
//	decimal           *apd.Decimal
//	float, double     float64
//	boolean           bool
//	dateTime          time.Time
//	string/plain/simple  string
//	other, invalid    nil
//
// The category is derived from the datatype when the literal is built and
// cannot be changed afterwards.
type Literal struct {
	value    any
	lexical  string
	datatype string
	language string
	category Category
}

func (l *Literal) ExpressionType() ExpressionType { return ExpressionTerm }
func (l *Literal) TermType() TermType             { return TermTypeLiteral }
func (l *Literal) DispatchKey() ArgumentType      { return l.category.Type() }
func (l *Literal) expression()                    {}
func (l *Literal) isTerm()                        {}

// Category returns the datatype category.
func (l *Literal) Category() Category { return l.category }

// Lexical returns the lexical form.
func (l *Literal) Lexical() string { return l.lexical }

// Language returns the language tag, or "" if the literal has none.
func (l *Literal) Language() string { return l.language }

// Datatype returns the datatype IRI. Simple literals report xsd:string and
// language-tagged literals rdf:langString.
func (l *Literal) Datatype() string {
	switch l.category {
	case CategorySimple:
		return rdf.XSDString.IRI
	case CategoryPlain:
		return rdf.RDFLangString.IRI
	}
	return l.datatype
}

// Value returns the typed value, or nil when the literal has none.
func (l *Literal) Value() any { return l.value }

// Int64 returns the value of an integer-family literal that fits in int64.
func (l *Literal) Int64() (int64, bool) {
	v, ok := l.value.(int64)
	return v, ok
}

// Decimal returns the value of an xsd:decimal literal, or of an
// integer-family literal outside the int64 range.
func (l *Literal) Decimal() (*apd.Decimal, bool) {
	v, ok := l.value.(*apd.Decimal)
	return v, ok
}

// Float64 returns the value of an xsd:float or xsd:double literal.
func (l *Literal) Float64() (float64, bool) {
	v, ok := l.value.(float64)
	return v, ok
}

// Bool returns the value of an xsd:boolean literal.
func (l *Literal) Bool() (bool, bool) {
	v, ok := l.value.(bool)
	return v, ok
}

// Time returns the value of an xsd:dateTime literal.
func (l *Literal) Time() (time.Time, bool) {
	v, ok := l.value.(time.Time)
	return v, ok
}

// Str returns the value of a string, plain or simple literal.
func (l *Literal) Str() (string, bool) {
	v, ok := l.value.(string)
	return v, ok
}

func (l *Literal) EBV() (bool, error) {
	rule, ok := ebvRules[l.category]
	if !ok {
		return false, &EBVCoercionError{Term: l}
	}
	return rule(l), nil
}

func (l *Literal) ToRDF() rdf.Term {
	switch {
	case l.language != "":
		return rdf.NewLiteralWithLanguage(l.lexical, l.language)
	case l.category == CategorySimple:
		return rdf.NewLiteral(l.lexical)
	default:
		return rdf.NewLiteralWithDatatype(l.lexical, rdf.NewNamedNode(l.datatype))
	}
}

func (l *Literal) String() string {
	return l.ToRDF().String()
}

// ===== Literal constructors =====

// NewTypedLiteral builds a literal from a lexical form and datatype IRI. A
// lexical form that is not valid for the datatype yields a non-lexical
// literal; it is never an error.
func NewTypedLiteral(lexical, datatype string) *Literal {
	category := Categorize(datatype)
	if category == CategoryOther {
		return &Literal{lexical: lexical, datatype: datatype, category: CategoryOther}
	}
	parse, ok := lexicalParsers[category]
	if !ok {
		return &Literal{lexical: lexical, datatype: datatype, category: category}
	}
	value, ok := parse(lexical, category)
	if !ok {
		return NewNonLexicalLiteral(nil, lexical, datatype, "")
	}
	return &Literal{value: value, lexical: lexical, datatype: datatype, category: category}
}

// NewNonLexicalLiteral builds a literal whose lexical form failed to parse
// against its datatype. Whatever typed value is passed, the literal has no
// value and its category is CategoryInvalid.
func NewNonLexicalLiteral(_ any, lexical, datatype, language string) *Literal {
	return &Literal{lexical: lexical, datatype: datatype, language: language, category: CategoryInvalid}
}

// NewStringLiteral builds an xsd:string literal.
func NewStringLiteral(s string) *Literal {
	return &Literal{value: s, lexical: s, datatype: rdf.XSDString.IRI, category: CategoryString}
}

// NewSimpleLiteral builds a literal with neither datatype nor language.
func NewSimpleLiteral(s string) *Literal {
	return &Literal{value: s, lexical: s, category: CategorySimple}
}

// NewPlainLiteral builds a language-tagged literal. An empty language gives
// a simple literal.
func NewPlainLiteral(s, language string) *Literal {
	if language == "" {
		return NewSimpleLiteral(s)
	}
	return &Literal{value: s, lexical: s, language: language, datatype: rdf.RDFLangString.IRI, category: CategoryPlain}
}

// NewInteger builds an xsd:integer literal.
func NewInteger(v int64) *Literal {
	return &Literal{value: v, lexical: formatInteger(v), datatype: rdf.XSDInteger.IRI, category: CategoryInteger}
}

// NewBigInteger builds an xsd:integer literal from an integral decimal.
func NewBigInteger(d *apd.Decimal) *Literal {
	if v, err := d.Int64(); err == nil {
		return NewInteger(v)
	}
	return &Literal{value: d, lexical: formatBigInteger(d), datatype: rdf.XSDInteger.IRI, category: CategoryInteger}
}

// NewDecimal builds an xsd:decimal literal.
func NewDecimal(d *apd.Decimal) *Literal {
	return &Literal{value: d, lexical: formatDecimal(d), datatype: rdf.XSDDecimal.IRI, category: CategoryDecimal}
}

// NewDouble builds an xsd:double literal.
func NewDouble(v float64) *Literal {
	return &Literal{value: v, lexical: formatFloat(v, 64), datatype: rdf.XSDDouble.IRI, category: CategoryDouble}
}

// NewFloat builds an xsd:float literal, rounding v to single precision.
func NewFloat(v float64) *Literal {
	v = float64(float32(v))
	return &Literal{value: v, lexical: formatFloat(v, 32), datatype: rdf.XSDFloat.IRI, category: CategoryFloat}
}

// NewBoolean builds an xsd:boolean literal.
func NewBoolean(v bool) *Literal {
	lexical := "false"
	if v {
		lexical = "true"
	}
	return &Literal{value: v, lexical: lexical, datatype: rdf.XSDBoolean.IRI, category: CategoryBoolean}
}

// NewDateTime builds an xsd:dateTime literal.
func NewDateTime(t time.Time) *Literal {
	return &Literal{value: t, lexical: t.Format(time.RFC3339Nano), datatype: rdf.XSDDateTime.IRI, category: CategoryDateTime}
}

// ===== Conversion from wire-level terms =====

// FromRDF reconstructs a term from a wire-level RDF term.
func FromRDF(term rdf.Term) (Term, error) {
	switch t := term.(type) {
	case *rdf.NamedNode:
		return NewNamedNode(t.IRI), nil
	case *rdf.BlankNode:
		return NewBlankNode(t.ID), nil
	case *rdf.Literal:
		return literalFromRDF(t), nil
	case nil:
		return nil, fmt.Errorf("cannot convert nil term")
	default:
		return nil, fmt.Errorf("cannot convert %s to an expression term", term)
	}
}

func literalFromRDF(l *rdf.Literal) *Literal {
	switch {
	case l.Language != "":
		if l.Datatype != nil && l.Datatype.IRI != rdf.RDFLangString.IRI {
			return NewNonLexicalLiteral(nil, l.Value, l.Datatype.IRI, l.Language)
		}
		return NewPlainLiteral(l.Value, l.Language)
	case l.Datatype == nil:
		return NewSimpleLiteral(l.Value)
	case l.Datatype.IRI == rdf.XSDString.IRI:
		return NewStringLiteral(l.Value)
	case l.Datatype.IRI == rdf.RDFLangString.IRI:
		// rdf:langString requires a language tag
		return NewNonLexicalLiteral(nil, l.Value, l.Datatype.IRI, "")
	default:
		return NewTypedLiteral(l.Value, l.Datatype.IRI)
	}
}

// ===== Term identity =====

// SameTerm reports whether a and b are the same RDF term. Simple literals and
// xsd:string literals with equal lexical forms are the same term.
func SameTerm(a, b Term) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.TermType() != b.TermType() {
		return false
	}
	switch at := a.(type) {
	case *NamedNode:
		return at.IRI == b.(*NamedNode).IRI
	case *BlankNode:
		return at.ID == b.(*BlankNode).ID
	case *Literal:
		bt := b.(*Literal)
		return at.lexical == bt.lexical && at.language == bt.language && at.Datatype() == bt.Datatype()
	}
	return false
}

// IsNaN reports whether l is a float or double NaN.
func (l *Literal) IsNaN() bool {
	v, ok := l.Float64()
	return ok && math.IsNaN(v)
}
