package parser

import (
	"strconv"

	"github.com/aleksaelezovic/sparqlee/pkg/rdf"
	"github.com/aleksaelezovic/sparqlee/pkg/sparql/expr"
	"github.com/aleksaelezovic/sparqlee/pkg/store"
)

// parseExists reads the group graph pattern of an EXISTS test. Groups hold
// triples blocks and GRAPH blocks; the result is a store.BasicPattern.
func (p *Parser) parseExists(not bool) (expr.Expression, error) {
	p.skipWhitespace()
	if !p.match("{") {
		return nil, p.errorf("expected '{' after EXISTS")
	}
	var bp store.BasicPattern
	if err := p.parseGroup(&bp, nil); err != nil {
		return nil, err
	}
	return &expr.Existence{Not: not, Input: bp}, nil
}

// parseGroup reads patterns up to the closing '}' into bp, placing them in
// graph.
func (p *Parser) parseGroup(bp *store.BasicPattern, graph any) error {
	for {
		p.skipWhitespace()
		switch {
		case p.match("}"):
			return nil
		case p.peek() == 0:
			return p.errorf("unterminated group pattern")
		case p.match("."):
			continue
		case p.matchKeyword("GRAPH"):
			if graph != nil {
				return p.errorf("nested GRAPH is not supported")
			}
			p.skipWhitespace()
			g, err := p.parsePatternTerm(false)
			if err != nil {
				return err
			}
			if _, ok := g.(*rdf.Literal); ok {
				return p.errorf("graph name cannot be a literal")
			}
			p.skipWhitespace()
			if !p.match("{") {
				return p.errorf("expected '{' after GRAPH name")
			}
			if err := p.parseGroup(bp, g); err != nil {
				return err
			}
		case p.peek() == '{':
			return p.errorf("nested groups are not supported in EXISTS")
		default:
			for _, kw := range []string{"FILTER", "OPTIONAL", "MINUS", "UNION", "BIND", "VALUES", "SERVICE"} {
				if p.matchKeyword(kw) {
					return p.errorf("%s is not supported in EXISTS", kw)
				}
			}
			if err := p.parseTriplesSameSubject(bp, graph); err != nil {
				return err
			}
		}
	}
}

// parseTriplesSameSubject reads subject predicate object lists with the ';'
// and ',' abbreviations.
func (p *Parser) parseTriplesSameSubject(bp *store.BasicPattern, graph any) error {
	subject, err := p.parsePatternTerm(false)
	if err != nil {
		return err
	}
	if _, ok := subject.(*rdf.Literal); ok {
		return p.errorf("subject cannot be a literal")
	}
	for {
		p.skipWhitespace()
		predicate, err := p.parsePredicate()
		if err != nil {
			return err
		}
		for {
			p.skipWhitespace()
			object, err := p.parsePatternTerm(true)
			if err != nil {
				return err
			}
			*bp = append(*bp, &store.Pattern{Subject: subject, Predicate: predicate, Object: object, Graph: graph})
			p.skipWhitespace()
			if !p.match(",") {
				break
			}
		}
		if !p.match(";") {
			return nil
		}
		// a dangling ';' is allowed before '.' or '}'
		p.skipWhitespace()
		if c := p.peek(); c == '.' || c == '}' {
			return nil
		}
	}
}

func (p *Parser) parsePredicate() (any, error) {
	if p.peek() == 'a' {
		if next := p.peekAt(1); !isNameChar(next) && next != ':' {
			p.advance()
			return rdf.RDFType, nil
		}
	}
	term, err := p.parsePatternTerm(false)
	if err != nil {
		return nil, err
	}
	if _, ok := term.(*store.Variable); !ok {
		if _, ok := term.(*rdf.NamedNode); !ok {
			return nil, p.errorf("predicate must be an IRI or variable")
		}
	}
	return term, nil
}

// parsePatternTerm reads a variable, IRI, blank node or, when literals is
// set, a literal. Blank nodes become variables scoped to the pattern.
func (p *Parser) parsePatternTerm(literals bool) (any, error) {
	ch := p.peek()
	switch {
	case ch == '?' || ch == '$':
		name, err := p.parseVariableName()
		if err != nil {
			return nil, err
		}
		return store.NewVariable(name), nil

	case ch == '<':
		iri, err := p.parseIRIRef()
		if err != nil {
			return nil, err
		}
		return rdf.NewNamedNode(iri), nil

	case ch == '_' && p.peekAt(1) == ':':
		p.pos += 2
		label := p.readWhile(isNameChar)
		if label == "" {
			return nil, p.errorf("invalid blank node label")
		}
		return store.NewVariable("_:" + label), nil

	case ch == '[':
		p.advance()
		p.skipWhitespace()
		if !p.match("]") {
			return nil, p.errorf("blank node property lists are not supported")
		}
		p.anonymous++
		return store.NewVariable("_:anon" + strconv.Itoa(p.anonymous)), nil
	}

	if literals {
		switch {
		case ch == '"' || ch == '\'':
			return p.parseRDFLiteral()
		case isDigit(ch) || ch == '+' || ch == '-' || (ch == '.' && isDigit(p.peekAt(1))):
			return p.parseSignedNumber()
		}
		if p.matchKeyword("true") {
			return rdf.NewBooleanLiteral(true), nil
		}
		if p.matchKeyword("false") {
			return rdf.NewBooleanLiteral(false), nil
		}
	}

	if ch == ':' || isNameStart(ch) {
		iri, err := p.parsePrefixedName()
		if err != nil {
			return nil, err
		}
		return rdf.NewNamedNode(iri), nil
	}
	return nil, p.errorf("unexpected character %q in pattern", ch)
}

func (p *Parser) parseSignedNumber() (*rdf.Literal, error) {
	sign := ""
	if c := p.peek(); c == '+' || c == '-' {
		sign = string(c)
		p.advance()
	}
	if !isDigit(p.peek()) && p.peek() != '.' {
		return nil, p.errorf("expected number")
	}
	lit := p.parseNumber()
	if sign == "" {
		return lit, nil
	}
	return rdf.NewLiteralWithDatatype(sign+lit.Value, lit.Datatype), nil
}
