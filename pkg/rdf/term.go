// Package rdf holds wire-level RDF terms and quads as they are read from
// N-Quads, stored, and handed to the expression layer.
package rdf

import (
	"strconv"
	"strings"
)

// TermType discriminates the wire-level term kinds.
type TermType byte

const (
	TermTypeNamedNode TermType = iota + 1
	TermTypeBlankNode
	TermTypeLiteral
	TermTypeDefaultGraph
)

// Term is an IRI, blank node, literal or the default graph.
type Term interface {
	Type() TermType
	// String renders the term in N-Triples syntax.
	String() string
	Equals(other Term) bool
}

// NamedNode is an IRI.
type NamedNode struct {
	IRI string
}

func NewNamedNode(iri string) *NamedNode {
	return &NamedNode{IRI: iri}
}

func (n *NamedNode) Type() TermType { return TermTypeNamedNode }
func (n *NamedNode) String() string { return "<" + n.IRI + ">" }

func (n *NamedNode) Equals(other Term) bool {
	on, ok := other.(*NamedNode)
	return ok && n.IRI == on.IRI
}

// BlankNode is a blank node label without the _: prefix.
type BlankNode struct {
	ID string
}

func NewBlankNode(id string) *BlankNode {
	return &BlankNode{ID: id}
}

func (b *BlankNode) Type() TermType { return TermTypeBlankNode }
func (b *BlankNode) String() string { return "_:" + b.ID }

func (b *BlankNode) Equals(other Term) bool {
	ob, ok := other.(*BlankNode)
	return ok && b.ID == ob.ID
}

// Literal is a lexical form with either a language tag, a datatype, or
// neither for a simple literal.
type Literal struct {
	Value    string
	Language string
	Datatype *NamedNode
}

func NewLiteral(value string) *Literal {
	return &Literal{Value: value}
}

func NewLiteralWithLanguage(value, language string) *Literal {
	return &Literal{Value: value, Language: language}
}

func NewLiteralWithDatatype(value string, datatype *NamedNode) *Literal {
	return &Literal{Value: value, Datatype: datatype}
}

// NewIntegerLiteral builds a canonical xsd:integer literal.
func NewIntegerLiteral(value int64) *Literal {
	return NewLiteralWithDatatype(strconv.FormatInt(value, 10), XSDInteger)
}

// NewBooleanLiteral builds a canonical xsd:boolean literal.
func NewBooleanLiteral(value bool) *Literal {
	return NewLiteralWithDatatype(strconv.FormatBool(value), XSDBoolean)
}

func (l *Literal) Type() TermType { return TermTypeLiteral }

func (l *Literal) String() string {
	var sb strings.Builder
	sb.WriteByte('"')
	sb.WriteString(literalEscaper.Replace(l.Value))
	sb.WriteByte('"')
	switch {
	case l.Language != "":
		sb.WriteString("@" + l.Language)
	case l.Datatype != nil:
		sb.WriteString("^^" + l.Datatype.String())
	}
	return sb.String()
}

// Equals is syntactic equality: lexical form, language tag and datatype.
func (l *Literal) Equals(other Term) bool {
	ol, ok := other.(*Literal)
	if !ok || l.Value != ol.Value || l.Language != ol.Language {
		return false
	}
	if l.Datatype == nil || ol.Datatype == nil {
		return l.Datatype == nil && ol.Datatype == nil
	}
	return l.Datatype.IRI == ol.Datatype.IRI
}

// literalEscaper covers the characters N-Quads requires escaped inside a
// quoted string. ParseTerm reverses it.
var literalEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// DefaultGraph is the graph position of a triple outside any named graph.
type DefaultGraph struct{}

func NewDefaultGraph() *DefaultGraph {
	return &DefaultGraph{}
}

func (d *DefaultGraph) Type() TermType { return TermTypeDefaultGraph }
func (d *DefaultGraph) String() string { return "DEFAULT" }

func (d *DefaultGraph) Equals(other Term) bool {
	_, ok := other.(*DefaultGraph)
	return ok
}

// Quad is a triple in a graph. Graph is *DefaultGraph or nil for the default
// graph.
type Quad struct {
	Subject   Term
	Predicate Term
	Object    Term
	Graph     Term
}

func NewQuad(subject, predicate, object, graph Term) *Quad {
	return &Quad{Subject: subject, Predicate: predicate, Object: object, Graph: graph}
}

// String renders the quad as an N-Quads line. The default graph is omitted.
func (q *Quad) String() string {
	parts := []string{q.Subject.String(), q.Predicate.String(), q.Object.String()}
	if q.Graph != nil && q.Graph.Type() != TermTypeDefaultGraph {
		parts = append(parts, q.Graph.String())
	}
	return strings.Join(parts, " ") + " ."
}

const (
	XSDNamespace = "http://www.w3.org/2001/XMLSchema#"
	RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
)

// XSD returns the datatype IRI for an XSD local name.
func XSD(local string) *NamedNode {
	return NewNamedNode(XSDNamespace + local)
}

var (
	XSDString   = XSD("string")
	XSDInteger  = XSD("integer")
	XSDDecimal  = XSD("decimal")
	XSDDouble   = XSD("double")
	XSDFloat    = XSD("float")
	XSDBoolean  = XSD("boolean")
	XSDDateTime = XSD("dateTime")

	RDFLangString = NewNamedNode(RDFNamespace + "langString")
	RDFType       = NewNamedNode(RDFNamespace + "type")
)
