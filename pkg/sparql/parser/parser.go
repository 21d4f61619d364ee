// Package parser compiles SPARQL expression text into expression trees.
//
// The input is an optional prelude of PREFIX and BASE declarations followed
// by a single expression, as it would appear in a FILTER, BIND or HAVING
// clause. Built-in operators are resolved against a function catalogue at
// compile time.
package parser

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/aleksaelezovic/sparqlee/pkg/rdf"
	"github.com/aleksaelezovic/sparqlee/pkg/sparql/expr"
	"github.com/aleksaelezovic/sparqlee/pkg/sparql/functions"
)

var ErrSyntax = errors.New("syntax error")

// SyntaxError reports malformed input at a byte offset.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Msg)
}

func (e *SyntaxError) Is(target error) bool { return target == ErrSyntax }

// Parser compiles one expression.
type Parser struct {
	input     string
	pos       int
	length    int
	prefixes  map[string]string
	baseURI   string
	functions expr.FunctionResolver
	anonymous int
}

// Option configures a Parser.
type Option func(*Parser)

// WithPrefixes predeclares prefixes. Declarations in the input override
// them.
func WithPrefixes(prefixes map[string]string) Option {
	return func(p *Parser) {
		for k, v := range prefixes {
			p.prefixes[k] = v
		}
	}
}

// WithBase sets the base IRI for relative IRIs.
func WithBase(base string) Option {
	return func(p *Parser) { p.baseURI = base }
}

// WithFunctions sets the catalogue built-ins are resolved against. The
// default is functions.Builtins().
func WithFunctions(resolver expr.FunctionResolver) Option {
	return func(p *Parser) { p.functions = resolver }
}

// NewParser creates a parser for input.
func NewParser(input string, opts ...Option) *Parser {
	p := &Parser{
		input:     input,
		length:    len(input),
		prefixes:  make(map[string]string),
		functions: functions.Builtins(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseExpression compiles input with opts.
func ParseExpression(input string, opts ...Option) (expr.Expression, error) {
	return NewParser(input, opts...).Parse()
}

// Parse reads the prelude and the expression. Trailing input is an error.
func (p *Parser) Parse() (expr.Expression, error) {
	if err := p.parsePrelude(); err != nil {
		return nil, err
	}
	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if p.pos < p.length {
		return nil, p.errorf("unexpected %q after expression", p.rest(10))
	}
	return e, nil
}

// Prefixes returns the prefixes in effect after parsing.
func (p *Parser) Prefixes() map[string]string {
	out := make(map[string]string, len(p.prefixes))
	for k, v := range p.prefixes {
		out[k] = v
	}
	return out
}

func (p *Parser) parsePrelude() error {
	for {
		p.skipWhitespace()
		switch {
		case p.matchKeyword("PREFIX"):
			if err := p.parsePrefixDecl(); err != nil {
				return err
			}
		case p.matchKeyword("BASE"):
			p.skipWhitespace()
			iri, err := p.parseIRIRef()
			if err != nil {
				return err
			}
			p.baseURI = iri
		default:
			return nil
		}
	}
}

// parsePrefixDecl reads "name: <iri>" after the PREFIX keyword.
func (p *Parser) parsePrefixDecl() error {
	p.skipWhitespace()
	prefix := p.readWhile(isNameChar)
	if p.peek() != ':' {
		return p.errorf("expected ':' in PREFIX declaration")
	}
	p.advance()
	p.skipWhitespace()
	iri, err := p.parseIRIRef()
	if err != nil {
		return err
	}
	p.prefixes[prefix] = iri
	return nil
}

// Expression grammar, lowest precedence first:
//
//	Expression     → OrExpression
//	OrExpression   → AndExpression ( '||' AndExpression )*
//	AndExpression  → Relational ( '&&' Relational )*
//	Relational     → Additive ( CompareOp Additive | [NOT] IN '(' List ')' )?
//	Additive       → Multiplicative ( ('+' | '-') Multiplicative )*
//	Multiplicative → Unary ( ('*' | '/') Unary )*
//	Unary          → ('!' | '+' | '-') Unary | Primary
//	Primary        → '(' Expression ')' | Variable | Term | Call | Aggregate | [NOT] EXISTS Group

func (p *Parser) parseExpression() (expr.Expression, error) {
	return p.parseOrExpression()
}

func (p *Parser) parseOrExpression() (expr.Expression, error) {
	left, err := p.parseAndExpression()
	if err != nil {
		return nil, err
	}
	for {
		p.skipWhitespace()
		if !p.match("||") {
			return left, nil
		}
		right, err := p.parseAndExpression()
		if err != nil {
			return nil, err
		}
		left, err = p.operator(expr.OpOr, left, right)
		if err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseAndExpression() (expr.Expression, error) {
	left, err := p.parseRelationalExpression()
	if err != nil {
		return nil, err
	}
	for {
		p.skipWhitespace()
		if !p.match("&&") {
			return left, nil
		}
		right, err := p.parseRelationalExpression()
		if err != nil {
			return nil, err
		}
		left, err = p.operator(expr.OpAnd, left, right)
		if err != nil {
			return nil, err
		}
	}
}

// comparisonOperators is ordered so that two-character operators match
// first.
var comparisonOperators = []expr.Operator{
	expr.OpLessEqual, expr.OpGreaterEqual, expr.OpNotEqual,
	expr.OpEqual, expr.OpLess, expr.OpGreater,
}

func (p *Parser) parseRelationalExpression() (expr.Expression, error) {
	left, err := p.parseAdditiveExpression()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()

	saved := p.pos
	switch {
	case p.matchKeyword("IN"):
		return p.parseInList(expr.OpIn, left)
	case p.matchKeyword("NOT"):
		if p.matchKeyword("IN") {
			return p.parseInList(expr.OpNotIn, left)
		}
		p.pos = saved
		return left, nil
	}

	for _, op := range comparisonOperators {
		if p.match(string(op)) {
			right, err := p.parseAdditiveExpression()
			if err != nil {
				return nil, err
			}
			return p.operator(op, left, right)
		}
	}
	return left, nil
}

func (p *Parser) parseInList(op expr.Operator, left expr.Expression) (expr.Expression, error) {
	list, err := p.parseArgList()
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s list: %w", op, err)
	}
	return p.operator(op, append([]expr.Expression{left}, list...)...)
}

func (p *Parser) parseAdditiveExpression() (expr.Expression, error) {
	left, err := p.parseMultiplicativeExpression()
	if err != nil {
		return nil, err
	}
	for {
		p.skipWhitespace()
		var op expr.Operator
		switch {
		case p.match("+"):
			op = expr.OpAdd
		case p.match("-"):
			op = expr.OpSubtract
		default:
			return left, nil
		}
		right, err := p.parseMultiplicativeExpression()
		if err != nil {
			return nil, err
		}
		if left, err = p.operator(op, left, right); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseMultiplicativeExpression() (expr.Expression, error) {
	left, err := p.parseUnaryExpression()
	if err != nil {
		return nil, err
	}
	for {
		p.skipWhitespace()
		var op expr.Operator
		switch {
		case p.match("*"):
			op = expr.OpMultiply
		case p.match("/"):
			op = expr.OpDivide
		default:
			return left, nil
		}
		right, err := p.parseUnaryExpression()
		if err != nil {
			return nil, err
		}
		if left, err = p.operator(op, left, right); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseUnaryExpression() (expr.Expression, error) {
	p.skipWhitespace()
	var op expr.Operator
	switch {
	case p.peek() == '!' && p.peekAt(1) != '=':
		op = expr.OpNot
	case p.peek() == '+':
		op = expr.OpUnaryPlus
	case p.peek() == '-':
		op = expr.OpUnaryMinus
	default:
		return p.parsePrimaryExpression()
	}
	p.advance()
	operand, err := p.parseUnaryExpression()
	if err != nil {
		return nil, err
	}
	return p.operator(op, operand)
}

func (p *Parser) parsePrimaryExpression() (expr.Expression, error) {
	p.skipWhitespace()
	ch := p.peek()

	switch {
	case ch == 0:
		return nil, p.errorf("unexpected end of input")

	case ch == '(':
		p.advance()
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		p.skipWhitespace()
		if !p.match(")") {
			return nil, p.errorf("expected ')' after expression")
		}
		return e, nil

	case ch == '?' || ch == '$':
		name, err := p.parseVariableName()
		if err != nil {
			return nil, err
		}
		return expr.NewVariable(name), nil

	case ch == '<':
		iri, err := p.parseIRIRef()
		if err != nil {
			return nil, err
		}
		return p.parseIRIOrCall(iri)

	case ch == '"' || ch == '\'':
		lit, err := p.parseRDFLiteral()
		if err != nil {
			return nil, err
		}
		return expr.FromRDF(lit)

	case isDigit(ch) || (ch == '.' && isDigit(p.peekAt(1))):
		return expr.FromRDF(p.parseNumber())

	case ch == '_' && p.peekAt(1) == ':':
		return nil, p.errorf("blank nodes are not allowed in expressions")

	case ch == ':' || isNameStart(ch):
		return p.parseNameExpression()
	}
	return nil, p.errorf("unexpected character %q", ch)
}

// parseNameExpression handles everything that starts with a name: boolean
// literals, EXISTS, aggregates, built-in calls and prefixed names.
func (p *Parser) parseNameExpression() (expr.Expression, error) {
	start := p.pos
	name := p.readWhile(isNameChar)
	if p.peek() == ':' {
		p.pos = start
		iri, err := p.parsePrefixedName()
		if err != nil {
			return nil, err
		}
		return p.parseIRIOrCall(iri)
	}

	keyword := strings.ToUpper(name)
	switch keyword {
	case "TRUE", "FALSE":
		return expr.NewBoolean(keyword == "TRUE"), nil
	case "EXISTS":
		return p.parseExists(false)
	case "NOT":
		if !p.matchKeyword("EXISTS") {
			return nil, p.errorf("expected EXISTS after NOT")
		}
		return p.parseExists(true)
	}
	if aggregators[keyword] {
		return p.parseAggregate(keyword)
	}

	f, ok := p.functions.Operator(expr.Operator(keyword))
	if !ok {
		p.pos = start
		return nil, p.errorf("unknown function %s", name)
	}
	p.skipWhitespace()
	if p.peek() != '(' {
		return nil, p.errorf("expected '(' after %s", name)
	}
	args, err := p.parseArgList()
	if err != nil {
		return nil, fmt.Errorf("failed to parse arguments of %s: %w", keyword, err)
	}
	return &expr.OperatorCall{Operator: f.Operator(), Args: args, Func: f}, nil
}

// parseIRIOrCall returns a call if iri is followed by an argument list and
// the IRI as a term otherwise.
func (p *Parser) parseIRIOrCall(iri string) (expr.Expression, error) {
	p.skipWhitespace()
	node := expr.NewNamedNode(iri)
	if p.peek() != '(' {
		return node, nil
	}
	args, err := p.parseArgList()
	if err != nil {
		return nil, fmt.Errorf("failed to parse arguments of <%s>: %w", iri, err)
	}
	call := &expr.NamedCall{Name: node, Args: args}
	if f, ok := p.functions.Named(iri); ok {
		call.Func = f
	}
	return call, nil
}

// parseArgList reads '(' [Expression (',' Expression)*] ')'.
func (p *Parser) parseArgList() ([]expr.Expression, error) {
	p.skipWhitespace()
	if !p.match("(") {
		return nil, p.errorf("expected '('")
	}
	args := []expr.Expression{}
	p.skipWhitespace()
	if p.match(")") {
		return args, nil
	}
	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		p.skipWhitespace()
		if p.match(",") {
			continue
		}
		if p.match(")") {
			return args, nil
		}
		return nil, p.errorf("expected ',' or ')' in argument list")
	}
}

var aggregators = map[string]bool{
	"COUNT": true, "SUM": true, "MIN": true, "MAX": true,
	"AVG": true, "SAMPLE": true, "GROUP_CONCAT": true,
}

// parseAggregate reads '(' DISTINCT? ('*' | Expression) (';' SEPARATOR '=' String)? ')'.
func (p *Parser) parseAggregate(aggregator string) (expr.Expression, error) {
	p.skipWhitespace()
	if !p.match("(") {
		return nil, p.errorf("expected '(' after %s", aggregator)
	}
	agg := &expr.Aggregate{Aggregator: aggregator, Distinct: p.matchKeyword("DISTINCT")}

	p.skipWhitespace()
	if p.peek() == '*' {
		if aggregator != "COUNT" {
			return nil, p.errorf("only COUNT accepts '*'")
		}
		p.advance()
	} else {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		agg.Expression = e
	}

	p.skipWhitespace()
	if p.match(";") {
		if aggregator != "GROUP_CONCAT" {
			return nil, p.errorf("only GROUP_CONCAT accepts a separator")
		}
		if !p.matchKeyword("SEPARATOR") {
			return nil, p.errorf("expected SEPARATOR")
		}
		p.skipWhitespace()
		if !p.match("=") {
			return nil, p.errorf("expected '=' after SEPARATOR")
		}
		p.skipWhitespace()
		sep, err := p.parseString()
		if err != nil {
			return nil, err
		}
		agg.Separator = &sep
		p.skipWhitespace()
	}
	if !p.match(")") {
		return nil, p.errorf("expected ')' after %s argument", aggregator)
	}
	return agg, nil
}

// operator builds a call to a built-in operator.
func (p *Parser) operator(op expr.Operator, args ...expr.Expression) (expr.Expression, error) {
	f, ok := p.functions.Operator(op)
	if !ok {
		return nil, p.errorf("operator %s is not available", op)
	}
	return &expr.OperatorCall{Operator: f.Operator(), Args: args, Func: f}, nil
}

// ===== Terms =====

func (p *Parser) parseVariableName() (string, error) {
	if p.peek() != '?' && p.peek() != '$' {
		return "", p.errorf("expected variable")
	}
	p.advance()
	name := p.readWhile(isVarChar)
	if name == "" {
		return "", p.errorf("invalid variable name")
	}
	return name, nil
}

// parseIRIRef reads <iri> and resolves it against the base.
func (p *Parser) parseIRIRef() (string, error) {
	if !p.match("<") {
		return "", p.errorf("expected '<' to start IRI")
	}
	iri := p.readWhile(func(ch byte) bool {
		return ch != '>' && ch != ' ' && ch != '\n' && ch != '\t' && ch != '"'
	})
	if !p.match(">") {
		return "", p.errorf("expected '>' to end IRI")
	}
	return p.resolveIRI(iri), nil
}

// parsePrefixedName reads prefix:local and expands it.
func (p *Parser) parsePrefixedName() (string, error) {
	start := p.pos
	prefix := p.readWhile(isNameChar)
	if !p.match(":") {
		return "", p.errorf("expected ':' in prefixed name")
	}
	local := p.readWhile(func(ch byte) bool { return isNameChar(ch) || ch == '.' || ch == '%' })
	// a trailing '.' ends a triple, it is not part of the name
	for strings.HasSuffix(local, ".") {
		local = local[:len(local)-1]
		p.pos--
	}
	ns, ok := p.prefixes[prefix]
	if !ok {
		p.pos = start
		return "", p.errorf("undefined prefix '%s'", prefix)
	}
	return ns + local, nil
}

// parseRDFLiteral reads a string with an optional language tag or datatype.
func (p *Parser) parseRDFLiteral() (*rdf.Literal, error) {
	value, err := p.parseString()
	if err != nil {
		return nil, err
	}
	switch {
	case p.match("@"):
		lang := p.readWhile(func(ch byte) bool { return isAlpha(ch) || isDigit(ch) || ch == '-' })
		if lang == "" {
			return nil, p.errorf("expected language tag after '@'")
		}
		return rdf.NewLiteralWithLanguage(value, lang), nil
	case p.match("^^"):
		var datatype string
		if p.peek() == '<' {
			datatype, err = p.parseIRIRef()
		} else {
			datatype, err = p.parsePrefixedName()
		}
		if err != nil {
			return nil, err
		}
		return rdf.NewLiteralWithDatatype(value, rdf.NewNamedNode(datatype)), nil
	}
	return rdf.NewLiteral(value), nil
}

var stringEscapes = map[byte]string{
	't': "\t", 'n': "\n", 'r': "\r", 'b': "\b", 'f': "\f",
	'"': "\"", '\'': "'", '\\': "\\",
}

// parseString reads a short or long string in either quote style.
func (p *Parser) parseString() (string, error) {
	quote := p.peek()
	if quote != '"' && quote != '\'' {
		return "", p.errorf("expected string")
	}
	long := p.peekAt(1) == quote && p.peekAt(2) == quote
	if long {
		p.pos += 3
	} else {
		p.advance()
	}

	var sb strings.Builder
	for p.pos < p.length {
		ch := p.input[p.pos]
		switch {
		case long && ch == quote && p.peekAt(1) == quote && p.peekAt(2) == quote:
			p.pos += 3
			return sb.String(), nil
		case !long && ch == quote:
			p.advance()
			return sb.String(), nil
		case !long && (ch == '\n' || ch == '\r'):
			return "", p.errorf("line break in string")
		case ch == '\\':
			p.advance()
			if err := p.parseEscape(&sb); err != nil {
				return "", err
			}
		default:
			r, size := utf8.DecodeRuneInString(p.input[p.pos:])
			if r == utf8.RuneError && size == 1 {
				return "", p.errorf("invalid UTF-8 in string")
			}
			sb.WriteString(p.input[p.pos : p.pos+size])
			p.pos += size
		}
	}
	return "", p.errorf("unterminated string")
}

func (p *Parser) parseEscape(sb *strings.Builder) error {
	ch := p.peek()
	if s, ok := stringEscapes[ch]; ok {
		sb.WriteString(s)
		p.advance()
		return nil
	}
	digits := 0
	switch ch {
	case 'u':
		digits = 4
	case 'U':
		digits = 8
	default:
		return p.errorf("invalid escape \\%c", ch)
	}
	p.advance()
	if p.pos+digits > p.length {
		return p.errorf("truncated unicode escape")
	}
	var r rune
	for _, c := range []byte(p.input[p.pos : p.pos+digits]) {
		v, ok := hexValue(c)
		if !ok {
			return p.errorf("invalid unicode escape")
		}
		r = r<<4 | rune(v)
	}
	if !utf8.ValidRune(r) {
		return p.errorf("invalid code point U+%X", r)
	}
	sb.WriteRune(r)
	p.pos += digits
	return nil
}

// parseNumber reads an unsigned numeric literal: integer, decimal, or
// double when it has an exponent.
func (p *Parser) parseNumber() *rdf.Literal {
	start := p.pos
	p.readWhile(isDigit)
	datatype := rdf.XSDInteger
	if p.peek() == '.' && isDigit(p.peekAt(1)) || p.peek() == '.' && (p.peekAt(1) == 'e' || p.peekAt(1) == 'E') {
		p.advance()
		p.readWhile(isDigit)
		datatype = rdf.XSDDecimal
	}
	if c := p.peek(); c == 'e' || c == 'E' {
		saved := p.pos
		p.advance()
		if c := p.peek(); c == '+' || c == '-' {
			p.advance()
		}
		if isDigit(p.peek()) {
			p.readWhile(isDigit)
			datatype = rdf.XSDDouble
		} else {
			p.pos = saved
		}
	}
	return rdf.NewLiteralWithDatatype(p.input[start:p.pos], datatype)
}

// resolveIRI resolves a relative reference against the base IRI.
func (p *Parser) resolveIRI(iri string) string {
	if p.baseURI == "" || isAbsoluteIRI(iri) {
		return iri
	}
	base, err := url.Parse(p.baseURI)
	if err != nil {
		return p.baseURI + iri
	}
	ref, err := url.Parse(iri)
	if err != nil {
		return p.baseURI + iri
	}
	return base.ResolveReference(ref).String()
}

func isAbsoluteIRI(iri string) bool {
	colon := strings.IndexByte(iri, ':')
	if colon <= 0 || !isAlpha(iri[0]) {
		return false
	}
	for i := 1; i < colon; i++ {
		c := iri[i]
		if !isAlpha(c) && !isDigit(c) && c != '+' && c != '-' && c != '.' {
			return false
		}
	}
	return true
}

// ===== Scanning =====

func (p *Parser) peek() byte {
	return p.peekAt(0)
}

func (p *Parser) peekAt(offset int) byte {
	if p.pos+offset >= p.length {
		return 0
	}
	return p.input[p.pos+offset]
}

func (p *Parser) advance() {
	if p.pos < p.length {
		p.pos++
	}
}

func (p *Parser) rest(n int) string {
	return p.input[p.pos:min(p.pos+n, p.length)]
}

// skipWhitespace skips spaces and '#' comments.
func (p *Parser) skipWhitespace() {
	for p.pos < p.length {
		switch ch := p.input[p.pos]; {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			p.pos++
		case ch == '#':
			for p.pos < p.length && p.input[p.pos] != '\n' && p.input[p.pos] != '\r' {
				p.pos++
			}
		default:
			return
		}
	}
}

func (p *Parser) readWhile(predicate func(byte) bool) string {
	start := p.pos
	for p.pos < p.length && predicate(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos]
}

// match consumes s if the input continues with it.
func (p *Parser) match(s string) bool {
	if !strings.HasPrefix(p.input[p.pos:], s) {
		return false
	}
	p.pos += len(s)
	return true
}

// matchKeyword consumes keyword, case-insensitively, when it is followed by
// a non-name character.
func (p *Parser) matchKeyword(keyword string) bool {
	p.skipWhitespace()
	end := p.pos + len(keyword)
	if end > p.length || !strings.EqualFold(p.input[p.pos:end], keyword) {
		return false
	}
	if end < p.length && (isNameChar(p.input[end]) || p.input[end] == ':') {
		return false
	}
	p.pos = end
	return true
}

func (p *Parser) errorf(format string, args ...any) error {
	return &SyntaxError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func isAlpha(ch byte) bool     { return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') }
func isDigit(ch byte) bool     { return ch >= '0' && ch <= '9' }
func isNameStart(ch byte) bool { return isAlpha(ch) || ch == '_' }
func isNameChar(ch byte) bool  { return isVarChar(ch) || ch == '-' }
func isVarChar(ch byte) bool   { return isAlpha(ch) || isDigit(ch) || ch == '_' }

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
