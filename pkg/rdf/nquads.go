package rdf

import (
	"fmt"
	"strconv"
	"strings"
)

// NQuadsParser parses N-Quads documents and single terms in N-Triples syntax.
// N-Quads format: <subject> <predicate> <object> [<graph>] .
// Lines with three positions are placed in the default graph.
type NQuadsParser struct {
	input      string
	pos        int
	length     int
	strictMode bool // When false, bare numerics and booleans are accepted as terms
}

// NewNQuadsParser creates a new N-Quads parser with strict validation
func NewNQuadsParser(input string) *NQuadsParser {
	return &NQuadsParser{
		input:      input,
		pos:        0,
		length:     len(input),
		strictMode: true,
	}
}

// ParseTerm parses a single RDF term in N-Triples syntax, e.g. <http://ex/a>,
// "chat"@fr, "5"^^<http://www.w3.org/2001/XMLSchema#integer> or _:b0.
// Bare numbers (42, 1.5, 1e3) and true/false are accepted as shorthand.
func ParseTerm(input string) (Term, error) {
	p := &NQuadsParser{input: input, length: len(input)}
	p.skipWhitespaceAndComments()
	if p.pos >= p.length {
		return nil, fmt.Errorf("empty term")
	}
	term, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	p.skipWhitespaceAndComments()
	if p.pos < p.length {
		return nil, fmt.Errorf("unexpected trailing input at position %d: %q", p.pos, p.input[p.pos:])
	}
	return term, nil
}

// Parse parses the N-Quads document and returns quads
func (p *NQuadsParser) Parse() ([]*Quad, error) {
	var quads []*Quad

	for p.pos < p.length {
		p.skipWhitespaceAndComments()
		if p.pos >= p.length {
			break
		}

		quad, err := p.parseQuad()
		if err != nil {
			return nil, err
		}
		quads = append(quads, quad)
	}

	return quads, nil
}

// skipWhitespaceAndComments skips whitespace and comments
func (p *NQuadsParser) skipWhitespaceAndComments() {
	for p.pos < p.length {
		ch := p.input[p.pos]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			p.pos++
			continue
		}
		if ch == '#' {
			// Skip comment until end of line
			for p.pos < p.length && p.input[p.pos] != '\n' {
				p.pos++
			}
			continue
		}
		break
	}
}

func (p *NQuadsParser) parseQuad() (*Quad, error) {
	subject, err := p.parseTerm()
	if err != nil {
		return nil, fmt.Errorf("error parsing subject: %w", err)
	}
	if _, ok := subject.(*Literal); ok {
		return nil, fmt.Errorf("literals cannot be used as subjects in N-Quads")
	}

	p.skipWhitespaceAndComments()

	predicate, err := p.parseTerm()
	if err != nil {
		return nil, fmt.Errorf("error parsing predicate: %w", err)
	}
	if _, ok := predicate.(*NamedNode); !ok {
		return nil, fmt.Errorf("predicate must be an IRI in N-Quads")
	}

	p.skipWhitespaceAndComments()

	object, err := p.parseTerm()
	if err != nil {
		return nil, fmt.Errorf("error parsing object: %w", err)
	}

	p.skipWhitespaceAndComments()

	// Parse optional graph (4th position)
	var graph Term
	if p.pos < p.length && p.input[p.pos] == '<' {
		iri, err := p.parseIRI()
		if err != nil {
			return nil, fmt.Errorf("error parsing graph: %w", err)
		}
		graph = NewNamedNode(iri)
		p.skipWhitespaceAndComments()
	} else if p.pos < p.length && p.input[p.pos] == '_' {
		graph, err = p.parseBlankNode()
		if err != nil {
			return nil, fmt.Errorf("error parsing graph: %w", err)
		}
		p.skipWhitespaceAndComments()
	}

	// Expect '.' at end
	if p.pos >= p.length || p.input[p.pos] != '.' {
		return nil, fmt.Errorf("expected '.' at end of quad")
	}
	p.pos++ // skip '.'

	if graph == nil {
		graph = NewDefaultGraph()
	}
	return NewQuad(subject, predicate, object, graph), nil
}

// parseTerm parses an RDF term (IRI, blank node or literal)
func (p *NQuadsParser) parseTerm() (Term, error) {
	if p.pos >= p.length {
		return nil, fmt.Errorf("unexpected end of input")
	}
	ch := p.input[p.pos]

	switch ch {
	case '<':
		iri, err := p.parseIRI()
		if err != nil {
			return nil, err
		}
		return NewNamedNode(iri), nil

	case '_':
		return p.parseBlankNode()

	case '"':
		return p.parseLiteral()

	case '-', '+', '.', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		if p.strictMode {
			return nil, fmt.Errorf("bare numeric literals not allowed in N-Quads at position %d", p.pos)
		}
		return p.parseNumber()

	default:
		if !p.strictMode {
			if term, ok := p.parseBooleanKeyword(); ok {
				return term, nil
			}
		}
		return nil, fmt.Errorf("unexpected character at position %d: %c", p.pos, ch)
	}
}

// parseIRI parses an IRI enclosed in < >
func (p *NQuadsParser) parseIRI() (string, error) {
	if p.pos >= p.length || p.input[p.pos] != '<' {
		return "", fmt.Errorf("expected '<' at start of IRI")
	}
	p.pos++ // skip '<'

	var result strings.Builder
	for p.pos < p.length && p.input[p.pos] != '>' {
		ch := p.input[p.pos]

		if ch == '\\' {
			if p.pos+1 < p.length && (p.input[p.pos+1] == 'u' || p.input[p.pos+1] == 'U') {
				escaped, err := p.processUnicodeEscape()
				if err != nil {
					return "", err
				}
				result.WriteString(escaped)
				continue
			}
			return "", fmt.Errorf("invalid escape sequence in IRI at position %d", p.pos)
		}

		// IRIs cannot contain: space, <, >, ", {, }, |, ^, ` or control characters
		if ch == ' ' || ch == '<' || ch == '"' || ch == '{' || ch == '}' ||
			ch == '|' || ch == '^' || ch == '`' || ch <= 0x1F {
			return "", fmt.Errorf("invalid character in IRI: %q at position %d", ch, p.pos)
		}

		result.WriteByte(ch)
		p.pos++
	}

	if p.pos >= p.length {
		return "", fmt.Errorf("unclosed IRI")
	}
	p.pos++ // skip '>'

	iri := result.String()
	if !strings.Contains(iri, ":") {
		return "", fmt.Errorf("relative IRI not allowed in N-Quads: %s", iri)
	}

	return iri, nil
}

// parseBlankNode parses a blank node
func (p *NQuadsParser) parseBlankNode() (Term, error) {
	if p.pos+1 >= p.length || p.input[p.pos] != '_' || p.input[p.pos+1] != ':' {
		return nil, fmt.Errorf("expected '_:' at start of blank node")
	}
	p.pos += 2

	start := p.pos
	for p.pos < p.length {
		ch := p.input[p.pos]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '<' {
			break
		}
		// A trailing '.' terminates the statement rather than the label
		if ch == '.' && (p.pos+1 >= p.length || isTermBoundary(p.input[p.pos+1])) {
			break
		}
		p.pos++
	}

	label := p.input[start:p.pos]
	if label == "" {
		return nil, fmt.Errorf("empty blank node label")
	}
	return NewBlankNode(label), nil
}

func isTermBoundary(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '#'
}

// parseLiteral parses a quoted literal with optional language tag or datatype
func (p *NQuadsParser) parseLiteral() (Term, error) {
	p.pos++ // skip opening '"'

	var value strings.Builder
	for p.pos < p.length {
		ch := p.input[p.pos]
		if ch == '"' {
			break
		}
		if ch != '\\' {
			value.WriteByte(ch)
			p.pos++
			continue
		}

		p.pos++
		if p.pos >= p.length {
			return nil, fmt.Errorf("unexpected end of input in escape sequence")
		}
		switch escCh := p.input[p.pos]; escCh {
		case 'n':
			value.WriteByte('\n')
		case 't':
			value.WriteByte('\t')
		case 'r':
			value.WriteByte('\r')
		case 'b':
			value.WriteByte('\b')
		case 'f':
			value.WriteByte('\f')
		case '"':
			value.WriteByte('"')
		case '\'':
			value.WriteByte('\'')
		case '\\':
			value.WriteByte('\\')
		case 'u', 'U':
			p.pos-- // let processUnicodeEscape consume the backslash
			escaped, err := p.processUnicodeEscape()
			if err != nil {
				return nil, err
			}
			value.WriteString(escaped)
			continue
		default:
			return nil, fmt.Errorf("invalid escape sequence \\%c at position %d", escCh, p.pos)
		}
		p.pos++
	}

	if p.pos >= p.length {
		return nil, fmt.Errorf("unclosed string literal")
	}
	p.pos++ // skip closing '"'

	if p.pos < p.length && p.input[p.pos] == '@' {
		p.pos++
		start := p.pos
		for p.pos < p.length {
			ch := p.input[p.pos]
			if !((ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '-') {
				break
			}
			p.pos++
		}
		langTag := p.input[start:p.pos]
		if langTag == "" {
			return nil, fmt.Errorf("empty language tag")
		}
		if first := langTag[0]; !((first >= 'a' && first <= 'z') || (first >= 'A' && first <= 'Z')) {
			return nil, fmt.Errorf("invalid language tag: must start with a letter, got %q", first)
		}
		return NewLiteralWithLanguage(value.String(), langTag), nil
	}

	if p.pos+1 < p.length && p.input[p.pos] == '^' && p.input[p.pos+1] == '^' {
		p.pos += 2
		datatypeIRI, err := p.parseIRI()
		if err != nil {
			return nil, fmt.Errorf("error parsing datatype: %w", err)
		}
		return NewLiteralWithDatatype(value.String(), NewNamedNode(datatypeIRI)), nil
	}

	return NewLiteral(value.String()), nil
}

// processUnicodeEscape processes \uXXXX or \UXXXXXXXX escape sequences
func (p *NQuadsParser) processUnicodeEscape() (string, error) {
	p.pos++ // skip '\'
	if p.pos >= p.length {
		return "", fmt.Errorf("unexpected end of input in Unicode escape")
	}

	hexDigits := 4
	if p.input[p.pos] == 'U' {
		hexDigits = 8
	}
	p.pos++ // skip 'u' or 'U'

	if p.pos+hexDigits > p.length {
		return "", fmt.Errorf("incomplete Unicode escape sequence")
	}

	hexStr := p.input[p.pos : p.pos+hexDigits]
	p.pos += hexDigits

	codePoint, err := strconv.ParseUint(hexStr, 16, 32)
	if err != nil {
		return "", fmt.Errorf("invalid hex digits in Unicode escape: %s", hexStr)
	}

	return string(rune(codePoint)), nil
}

// parseNumber parses a bare numeric literal using the SPARQL/Turtle rules:
// integers have no '.', decimals have a '.', doubles have an exponent.
func (p *NQuadsParser) parseNumber() (Term, error) {
	start := p.pos

	if p.pos < p.length && (p.input[p.pos] == '-' || p.input[p.pos] == '+') {
		p.pos++
	}

	hasDigits := false
	for p.pos < p.length && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
		p.pos++
		hasDigits = true
	}

	isDecimal := false
	if p.pos+1 < p.length && p.input[p.pos] == '.' && p.input[p.pos+1] >= '0' && p.input[p.pos+1] <= '9' {
		isDecimal = true
		p.pos++
		for p.pos < p.length && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
			p.pos++
			hasDigits = true
		}
	}

	isDouble := false
	if hasDigits && p.pos < p.length && (p.input[p.pos] == 'e' || p.input[p.pos] == 'E') {
		isDouble = true
		p.pos++
		if p.pos < p.length && (p.input[p.pos] == '-' || p.input[p.pos] == '+') {
			p.pos++
		}
		expStart := p.pos
		for p.pos < p.length && p.input[p.pos] >= '0' && p.input[p.pos] <= '9' {
			p.pos++
		}
		if p.pos == expStart {
			return nil, fmt.Errorf("invalid exponent at position %d", start)
		}
	}

	if !hasDigits {
		return nil, fmt.Errorf("invalid number at position %d", start)
	}

	numStr := p.input[start:p.pos]
	switch {
	case isDouble:
		return NewLiteralWithDatatype(numStr, XSDDouble), nil
	case isDecimal:
		return NewLiteralWithDatatype(numStr, XSDDecimal), nil
	default:
		return NewLiteralWithDatatype(numStr, XSDInteger), nil
	}
}

// parseBooleanKeyword accepts the bare keywords true and false
func (p *NQuadsParser) parseBooleanKeyword() (Term, bool) {
	for _, kw := range []string{"true", "false"} {
		end := p.pos + len(kw)
		if end > p.length || p.input[p.pos:end] != kw {
			continue
		}
		if end < p.length && !isTermBoundary(p.input[end]) {
			continue
		}
		p.pos = end
		return NewLiteralWithDatatype(kw, XSDBoolean), true
	}
	return nil, false
}
