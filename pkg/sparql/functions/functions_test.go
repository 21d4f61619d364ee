package functions_test

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/aleksaelezovic/sparqlee/pkg/rdf"
	"github.com/aleksaelezovic/sparqlee/pkg/sparql/evaluator"
	"github.com/aleksaelezovic/sparqlee/pkg/sparql/expr"
	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(op expr.Operator, args ...expr.Expression) *expr.OperatorCall {
	return &expr.OperatorCall{Operator: op, Args: args}
}

func cast(local string, arg expr.Expression) *expr.NamedCall {
	return &expr.NamedCall{Name: expr.NewNamedNode(rdf.XSD(local).IRI), Args: []expr.Expression{arg}}
}

func typed(lexical string, datatype *rdf.NamedNode) *expr.Literal {
	return expr.NewTypedLiteral(lexical, datatype.IRI)
}

func decimal(s string) *expr.Literal {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return expr.NewDecimal(d)
}

var unbound = expr.NewVariable("unbound")

func eval(ex expr.Expression) (expr.Term, error) {
	return evaluator.NewEvaluator().Evaluate(context.Background(), ex, expr.Bindings{})
}

func assertTerm(t *testing.T, want expr.Term, ex expr.Expression) {
	t.Helper()
	got, err := eval(ex)
	require.NoError(t, err, ex.String())
	assert.Truef(t, expr.SameTerm(want, got), "%s: expected %s, got %s", ex, want, got)
}

func assertErrorIs(t *testing.T, kind error, ex expr.Expression) {
	t.Helper()
	_, err := eval(ex)
	assert.ErrorIs(t, err, kind, ex.String())
}

var (
	yes = expr.NewBoolean(true)
	no  = expr.NewBoolean(false)
)

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name string
		ex   expr.Expression
		want expr.Term
	}{
		{"integer add", call(expr.OpAdd, expr.NewInteger(2), expr.NewInteger(3)), expr.NewInteger(5)},
		{"derived integers add to integer", call(expr.OpAdd, typed("2", rdf.XSD("byte")), typed("3", rdf.XSD("short"))), expr.NewInteger(5)},
		{"integer subtract", call(expr.OpSubtract, expr.NewInteger(2), expr.NewInteger(5)), expr.NewInteger(-3)},
		{"integer multiply", call(expr.OpMultiply, expr.NewInteger(-4), expr.NewInteger(5)), expr.NewInteger(-20)},
		{"integer divide is decimal", call(expr.OpDivide, expr.NewInteger(1), expr.NewInteger(4)), decimal("0.25")},
		{"integer plus decimal", call(expr.OpAdd, expr.NewInteger(1), decimal("0.5")), decimal("1.5")},
		{"decimal plus float", call(expr.OpAdd, decimal("0.5"), expr.NewFloat(1)), expr.NewFloat(1.5)},
		{"float plus double", call(expr.OpAdd, expr.NewFloat(1), expr.NewDouble(2)), expr.NewDouble(3)},
		{"double divide by zero", call(expr.OpDivide, expr.NewDouble(1), expr.NewDouble(0)), expr.NewDouble(math.Inf(1))},
		{"unary minus", call(expr.OpUnaryMinus, expr.NewInteger(4)), expr.NewInteger(-4)},
		{"unary minus decimal", call(expr.OpUnaryMinus, decimal("2.5")), decimal("-2.5")},
		{"unary plus", call(expr.OpUnaryPlus, expr.NewDouble(4)), expr.NewDouble(4)},
		{"decimal quotient is reduced", call(expr.OpDivide, decimal("1"), decimal("8")), typed("0.125", rdf.XSDDecimal)},
		{"decimal product is reduced", call(expr.OpMultiply, decimal("1.50"), expr.NewInteger(2)), typed("3.0", rdf.XSDDecimal)},
		{"int64 overflow widens", call(expr.OpAdd, expr.NewInteger(math.MaxInt64), expr.NewInteger(1)), typed("9223372036854775808", rdf.XSDInteger)},
		{"int64 product widens", call(expr.OpMultiply, expr.NewInteger(math.MaxInt64), expr.NewInteger(2)), typed("18446744073709551614", rdf.XSDInteger)},
		{"unsignedLong max plus zero", call(expr.OpAdd, typed("18446744073709551615", rdf.XSD("unsignedLong")), expr.NewInteger(0)), typed("18446744073709551615", rdf.XSDInteger)},
		{"large integer narrows", call(expr.OpSubtract, typed("9223372036854775808", rdf.XSDInteger), expr.NewInteger(1)), expr.NewInteger(math.MaxInt64)},
		{"large integer divide", call(expr.OpDivide, typed("18446744073709551616", rdf.XSDInteger), expr.NewInteger(4)), typed("4611686018427387904.0", rdf.XSDDecimal)},
		{"negate min int64", call(expr.OpUnaryMinus, expr.NewInteger(math.MinInt64)), typed("9223372036854775808", rdf.XSDInteger)},
		{"large integer plus double", call(expr.OpAdd, typed("9223372036854775808", rdf.XSDInteger), expr.NewDouble(0)), expr.NewDouble(9223372036854775808)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTerm(t, tt.want, tt.ex)
		})
	}
}

func TestArithmetic_Errors(t *testing.T) {
	assertErrorIs(t, expr.ErrExpression, call(expr.OpDivide, expr.NewInteger(1), expr.NewInteger(0)))
	assertErrorIs(t, expr.ErrExpression, call(expr.OpDivide, decimal("1.0"), decimal("0.0")))
	// beyond decimal precision
	wide := typed("1000000000000000000000000000001", rdf.XSDInteger)
	assertErrorIs(t, expr.ErrExpression, call(expr.OpMultiply, wide, wide))
	assertErrorIs(t, expr.ErrInvalidArgumentTypes, call(expr.OpAdd, expr.NewInteger(1), expr.NewStringLiteral("1")))
	assertErrorIs(t, expr.ErrInvalidArgumentTypes, call(expr.OpAdd, expr.NewInteger(1), typed("x", rdf.XSDInteger)))
	assertErrorIs(t, expr.ErrInvalidArity, call(expr.OpAdd, expr.NewInteger(1)))
}

func TestComparison(t *testing.T) {
	tests := []struct {
		name string
		ex   expr.Expression
		want expr.Term
	}{
		{"numeric equal across types", call(expr.OpEqual, expr.NewInteger(1), expr.NewDouble(1)), yes},
		{"decimal less than integer", call(expr.OpLess, decimal("1.5"), expr.NewInteger(2)), yes},
		{"large integer ordering", call(expr.OpGreater, typed("18446744073709551615", rdf.XSD("unsignedLong")), expr.NewInteger(math.MaxInt64)), yes},
		{"large integer equals decimal", call(expr.OpEqual, typed("9223372036854775808", rdf.XSDInteger), decimal("9223372036854775808.0")), yes},
		{"NaN not equal to itself", call(expr.OpEqual, expr.NewDouble(math.NaN()), expr.NewDouble(math.NaN())), no},
		{"NaN != NaN", call(expr.OpNotEqual, expr.NewDouble(math.NaN()), expr.NewDouble(math.NaN())), yes},
		{"NaN ordering", call(expr.OpLess, expr.NewDouble(math.NaN()), expr.NewDouble(1)), no},
		{"simple and string compare", call(expr.OpEqual, expr.NewSimpleLiteral("a"), expr.NewStringLiteral("a")), yes},
		{"string ordering", call(expr.OpLess, expr.NewStringLiteral("abc"), expr.NewStringLiteral("abd")), yes},
		{"boolean ordering", call(expr.OpLess, no, yes), yes},
		{"boolean greater-equal", call(expr.OpGreaterEqual, no, yes), no},
		{"plain equal", call(expr.OpEqual, expr.NewPlainLiteral("chat", "fr"), expr.NewPlainLiteral("chat", "FR")), yes},
		{"plain different language", call(expr.OpEqual, expr.NewPlainLiteral("chat", "fr"), expr.NewPlainLiteral("chat", "en")), no},
		{"IRIs equal", call(expr.OpEqual, expr.NewNamedNode("http://a"), expr.NewNamedNode("http://a")), yes},
		{"IRIs differ", call(expr.OpNotEqual, expr.NewNamedNode("http://a"), expr.NewNamedNode("http://b")), yes},
		{"IRI and literal", call(expr.OpEqual, expr.NewNamedNode("http://a"), expr.NewSimpleLiteral("http://a")), no},
		{"same invalid literals", call(expr.OpEqual, typed("x", rdf.XSDInteger), typed("x", rdf.XSDInteger)), yes},
		{"dateTime", call(expr.OpLess, typed("2020-01-01T00:00:00Z", rdf.XSDDateTime), typed("2020-01-01T00:00:00-01:00", rdf.XSDDateTime)), yes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTerm(t, tt.want, tt.ex)
		})
	}
}

func TestComparison_Errors(t *testing.T) {
	assertErrorIs(t, expr.ErrInvalidArgumentTypes, call(expr.OpLess, expr.NewInteger(1), expr.NewSimpleLiteral("1")))
	assertErrorIs(t, expr.ErrInvalidArgumentTypes, call(expr.OpLess, expr.NewNamedNode("http://a"), expr.NewNamedNode("http://b")))
	assertErrorIs(t, expr.ErrExpression, call(expr.OpEqual, expr.NewInteger(1), expr.NewSimpleLiteral("1")))
	assertErrorIs(t, expr.ErrExpression, call(expr.OpEqual, typed("x", rdf.XSDInteger), typed("y", rdf.XSDInteger)))
}

func TestLogical(t *testing.T) {
	tests := []struct {
		name string
		ex   expr.Expression
		want expr.Term
	}{
		{"and", call(expr.OpAnd, yes, expr.NewInteger(1)), yes},
		{"and false", call(expr.OpAnd, yes, expr.NewStringLiteral("")), no},
		{"false and error", call(expr.OpAnd, no, unbound), no},
		{"error and false", call(expr.OpAnd, unbound, no), no},
		{"or", call(expr.OpOr, no, yes), yes},
		{"true or error", call(expr.OpOr, yes, unbound), yes},
		{"error or true", call(expr.OpOr, unbound, yes), yes},
		{"not", call(expr.OpNot, expr.NewInteger(0)), yes},
		{"if true", call(expr.OpIf, yes, expr.NewInteger(1), unbound), expr.NewInteger(1)},
		{"if false", call(expr.OpIf, expr.NewDouble(0), unbound, expr.NewInteger(2)), expr.NewInteger(2)},
		{"coalesce", call(expr.OpCoalesce, unbound, call(expr.OpDivide, expr.NewInteger(1), expr.NewInteger(0)), expr.NewInteger(3)), expr.NewInteger(3)},
		{"in", call(expr.OpIn, expr.NewInteger(2), expr.NewInteger(1), expr.NewDouble(2)), yes},
		{"in after error", call(expr.OpIn, expr.NewInteger(2), unbound, expr.NewInteger(2)), yes},
		{"in empty", call(expr.OpIn, expr.NewInteger(2)), no},
		{"not in", call(expr.OpNotIn, expr.NewInteger(2), expr.NewInteger(1), expr.NewInteger(3)), yes},
		{"not in match", call(expr.OpNotIn, expr.NewInteger(2), expr.NewInteger(2)), no},
		{"bound", call(expr.OpBound, unbound), no},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTerm(t, tt.want, tt.ex)
		})
	}
}

func TestLogical_Errors(t *testing.T) {
	assertErrorIs(t, expr.ErrUnboundVariable, call(expr.OpAnd, yes, unbound))
	assertErrorIs(t, expr.ErrUnboundVariable, call(expr.OpAnd, unbound, yes))
	assertErrorIs(t, expr.ErrUnboundVariable, call(expr.OpOr, no, unbound))
	assertErrorIs(t, expr.ErrEBVCoercion, call(expr.OpAnd, expr.NewNamedNode("http://a"), yes))
	assertErrorIs(t, expr.ErrEBVCoercion, call(expr.OpNot, typed("x", rdf.XSDInteger)))
	assertErrorIs(t, expr.ErrUnboundVariable, call(expr.OpIf, unbound, yes, no))
	assertErrorIs(t, expr.ErrExpression, call(expr.OpCoalesce, unbound))
	assertErrorIs(t, expr.ErrExpression, call(expr.OpCoalesce))
	assertErrorIs(t, expr.ErrUnboundVariable, call(expr.OpIn, expr.NewInteger(2), unbound, expr.NewInteger(3)))
	assertErrorIs(t, expr.ErrExpression, call(expr.OpBound, expr.NewInteger(1)))
	assertErrorIs(t, expr.ErrInvalidArity, call(expr.OpIf, yes, no))
}

func TestBound(t *testing.T) {
	b := expr.Bindings{}.Extend("x", expr.NewInteger(1))
	got, err := evaluator.NewEvaluator().Evaluate(context.Background(), call(expr.OpBound, expr.NewVariable("x")), b)
	require.NoError(t, err)
	assert.True(t, expr.SameTerm(yes, got))
}

func TestTermFunctions(t *testing.T) {
	iri := expr.NewNamedNode("http://example.org/a")
	blank := expr.NewBlankNode("b0")
	tests := []struct {
		name string
		ex   expr.Expression
		want expr.Term
	}{
		{"isIRI", call(expr.OpIsIRI, iri), yes},
		{"isURI literal", call(expr.OpIsURI, expr.NewSimpleLiteral("a")), no},
		{"isBlank", call(expr.OpIsBlank, blank), yes},
		{"isLiteral", call(expr.OpIsLiteral, expr.NewInteger(1)), yes},
		{"isNumeric", call(expr.OpIsNumeric, typed("12", rdf.XSD("unsignedByte"))), yes},
		{"isNumeric invalid", call(expr.OpIsNumeric, typed("1200", rdf.XSD("unsignedByte"))), no},
		{"STR of IRI", call(expr.OpStr, iri), expr.NewSimpleLiteral("http://example.org/a")},
		{"STR of literal", call(expr.OpStr, expr.NewInteger(7)), expr.NewSimpleLiteral("7")},
		{"LANG", call(expr.OpLang, expr.NewPlainLiteral("hi", "en")), expr.NewSimpleLiteral("en")},
		{"LANG of simple", call(expr.OpLang, expr.NewSimpleLiteral("hi")), expr.NewSimpleLiteral("")},
		{"DATATYPE", call(expr.OpDatatype, expr.NewInteger(1)), expr.NewNamedNode(rdf.XSDInteger.IRI)},
		{"DATATYPE of simple", call(expr.OpDatatype, expr.NewSimpleLiteral("a")), expr.NewNamedNode(rdf.XSDString.IRI)},
		{"sameTerm", call(expr.OpSameTerm, expr.NewInteger(1), expr.NewInteger(1)), yes},
		{"sameTerm differs from =", call(expr.OpSameTerm, expr.NewInteger(1), expr.NewDouble(1)), no},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTerm(t, tt.want, tt.ex)
		})
	}

	assertErrorIs(t, expr.ErrInvalidArgumentTypes, call(expr.OpStr, blank))
	assertErrorIs(t, expr.ErrInvalidArgumentTypes, call(expr.OpLang, iri))
}

func TestStringFunctions(t *testing.T) {
	tests := []struct {
		name string
		ex   expr.Expression
		want expr.Term
	}{
		{"STRLEN counts characters", call(expr.OpStrLen, expr.NewStringLiteral("chät")), expr.NewInteger(4)},
		{"UCASE keeps language", call(expr.OpUCase, expr.NewPlainLiteral("abc", "en")), expr.NewPlainLiteral("ABC", "en")},
		{"UCASE Turkish", call(expr.OpUCase, expr.NewPlainLiteral("i", "tr")), expr.NewPlainLiteral("İ", "tr")},
		{"LCASE keeps type", call(expr.OpLCase, expr.NewStringLiteral("AbC")), expr.NewStringLiteral("abc")},
		{"CONTAINS", call(expr.OpContains, expr.NewPlainLiteral("foobar", "en"), expr.NewSimpleLiteral("oba")), yes},
		{"STRSTARTS", call(expr.OpStrStarts, expr.NewStringLiteral("foobar"), expr.NewSimpleLiteral("foo")), yes},
		{"STRENDS", call(expr.OpStrEnds, expr.NewSimpleLiteral("foobar"), expr.NewSimpleLiteral("foo")), no},
		{"CONCAT same language", call(expr.OpConcat, expr.NewPlainLiteral("a", "en"), expr.NewPlainLiteral("b", "en")), expr.NewPlainLiteral("ab", "en")},
		{"CONCAT strings", call(expr.OpConcat, expr.NewStringLiteral("a"), expr.NewStringLiteral("b")), expr.NewStringLiteral("ab")},
		{"CONCAT mixed", call(expr.OpConcat, expr.NewPlainLiteral("a", "en"), expr.NewStringLiteral("b")), expr.NewSimpleLiteral("ab")},
		{"CONCAT empty", call(expr.OpConcat), expr.NewSimpleLiteral("")},
		{"SUBSTR", call(expr.OpSubstr, expr.NewStringLiteral("motor car"), expr.NewInteger(6)), expr.NewStringLiteral(" car")},
		{"SUBSTR length", call(expr.OpSubstr, expr.NewSimpleLiteral("metadata"), expr.NewInteger(4), expr.NewInteger(3)), expr.NewSimpleLiteral("ada")},
		{"SUBSTR rounding", call(expr.OpSubstr, expr.NewSimpleLiteral("12345"), expr.NewDouble(1.5), expr.NewDouble(2.6)), expr.NewSimpleLiteral("234")},
		{"langMatches", call(expr.OpLangMatches, expr.NewSimpleLiteral("de-CH"), expr.NewSimpleLiteral("de")), yes},
		{"langMatches no prefix", call(expr.OpLangMatches, expr.NewSimpleLiteral("deu"), expr.NewSimpleLiteral("de")), no},
		{"langMatches star", call(expr.OpLangMatches, expr.NewSimpleLiteral("fr"), expr.NewSimpleLiteral("*")), yes},
		{"langMatches empty", call(expr.OpLangMatches, expr.NewSimpleLiteral(""), expr.NewSimpleLiteral("*")), no},
		{"langMatches case", call(expr.OpLangMatches, expr.NewSimpleLiteral("EN-us"), expr.NewSimpleLiteral("en-US")), yes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTerm(t, tt.want, tt.ex)
		})
	}

	assertErrorIs(t, expr.ErrExpression, call(expr.OpContains, expr.NewSimpleLiteral("abc"), expr.NewPlainLiteral("b", "en")))
	assertErrorIs(t, expr.ErrInvalidArgumentTypes, call(expr.OpStrLen, expr.NewInteger(1)))
	assertErrorIs(t, expr.ErrInvalidArgumentTypes, call(expr.OpConcat, expr.NewSimpleLiteral("a"), expr.NewInteger(1)))
}

func TestRegex(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		pat   string
		flags string
		want  bool
	}{
		{"plain match", "Alice", "^ali", "", false},
		{"case insensitive", "Alice", "^ali", "i", true},
		{"dot all", "a\nb", "a.b", "s", true},
		{"multi line", "x\nab", "^ab$", "m", true},
		{"extended", "abc", "a b c", "x", true},
		{"quoted", "a.c", "a.c", "q", true},
		{"quoted no metachar", "abc", "a.c", "q", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := []expr.Expression{expr.NewSimpleLiteral(tt.text), expr.NewSimpleLiteral(tt.pat)}
			if tt.flags != "" {
				args = append(args, expr.NewSimpleLiteral(tt.flags))
			}
			assertTerm(t, expr.NewBoolean(tt.want), call(expr.OpRegex, args...))
		})
	}

	assertErrorIs(t, expr.ErrExpression, call(expr.OpRegex, expr.NewSimpleLiteral("a"), expr.NewSimpleLiteral("(")))
	assertErrorIs(t, expr.ErrExpression, call(expr.OpRegex, expr.NewSimpleLiteral("a"), expr.NewSimpleLiteral("a"), expr.NewSimpleLiteral("z")))
	assertErrorIs(t, expr.ErrInvalidArgumentTypes, call(expr.OpRegex, expr.NewSimpleLiteral("a"), expr.NewPlainLiteral("a", "en")))
	assertErrorIs(t, expr.ErrInvalidArity, call(expr.OpRegex, expr.NewSimpleLiteral("a")))
}

func TestNumericFunctions(t *testing.T) {
	tests := []struct {
		name string
		ex   expr.Expression
		want expr.Term
	}{
		{"ABS integer", call(expr.OpAbs, expr.NewInteger(-3)), expr.NewInteger(3)},
		{"ABS decimal", call(expr.OpAbs, decimal("-1.5")), decimal("1.5")},
		{"ABS double", call(expr.OpAbs, expr.NewDouble(-2)), expr.NewDouble(2)},
		{"CEIL decimal", call(expr.OpCeil, decimal("1.2")), decimal("2")},
		{"CEIL integer", call(expr.OpCeil, expr.NewInteger(4)), expr.NewInteger(4)},
		{"FLOOR double", call(expr.OpFloor, expr.NewDouble(-1.5)), expr.NewDouble(-2)},
		{"ROUND half up", call(expr.OpRound, expr.NewDouble(2.5)), expr.NewDouble(3)},
		{"ROUND negative half", call(expr.OpRound, decimal("-2.5")), decimal("-2")},
		{"ROUND float", call(expr.OpRound, expr.NewFloat(1.4)), expr.NewFloat(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTerm(t, tt.want, tt.ex)
		})
	}
	assertErrorIs(t, expr.ErrInvalidArgumentTypes, call(expr.OpAbs, expr.NewSimpleLiteral("1")))
	assertTerm(t, typed("9223372036854775808", rdf.XSDInteger), call(expr.OpAbs, expr.NewInteger(math.MinInt64)))
	assertTerm(t, typed("0.0", rdf.XSDDecimal), call(expr.OpCeil, decimal("-0.5")))
	assertTerm(t, typed("2.0", rdf.XSDDecimal), call(expr.OpCeil, decimal("1.2")))
	assertTerm(t, typed("18446744073709551615", rdf.XSDInteger), call(expr.OpFloor, typed("18446744073709551615", rdf.XSD("unsignedLong"))))
}

func TestIdentifierFunctions(t *testing.T) {
	got, err := eval(call(expr.OpUUID))
	require.NoError(t, err)
	iri, ok := got.(*expr.NamedNode)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(iri.IRI, "urn:uuid:"))

	other, err := eval(call(expr.OpUUID))
	require.NoError(t, err)
	assert.False(t, expr.SameTerm(got, other))

	got, err = eval(call(expr.OpStrUUID))
	require.NoError(t, err)
	l := got.(*expr.Literal)
	assert.Equal(t, expr.CategorySimple, l.Category())
	assert.Len(t, l.Lexical(), 36)
}

func TestCasts(t *testing.T) {
	tests := []struct {
		name string
		ex   expr.Expression
		want expr.Term
	}{
		{"string to integer", cast("integer", expr.NewSimpleLiteral("42")), expr.NewInteger(42)},
		{"double to integer truncates", cast("integer", expr.NewDouble(-2.7)), expr.NewInteger(-2)},
		{"decimal to integer truncates", cast("integer", decimal("3.9")), expr.NewInteger(3)},
		{"boolean to integer", cast("integer", yes), expr.NewInteger(1)},
		{"integer to double", cast("double", expr.NewInteger(5)), expr.NewDouble(5)},
		{"integer to decimal", cast("decimal", expr.NewInteger(5)), decimal("5")},
		{"double to decimal", cast("decimal", expr.NewDouble(0.25)), decimal("0.25")},
		{"string to float", cast("float", expr.NewSimpleLiteral("1.5")), expr.NewFloat(1.5)},
		{"integer to boolean", cast("boolean", expr.NewInteger(0)), no},
		{"string to boolean", cast("boolean", expr.NewSimpleLiteral("1")), yes},
		{"integer to string", cast("string", expr.NewInteger(12)), expr.NewStringLiteral("12")},
		{"IRI to string", cast("string", expr.NewNamedNode("http://a")), expr.NewStringLiteral("http://a")},
		{"string to dateTime", cast("dateTime", expr.NewSimpleLiteral("2020-05-01T10:00:00Z")), typed("2020-05-01T10:00:00Z", rdf.XSDDateTime)},
		{"dateTime without timezone", cast("dateTime", expr.NewSimpleLiteral("2024-01-01T00:00:00")), typed("2024-01-01T00:00:00", rdf.XSDDateTime)},
		{"dateTime with offset", cast("dateTime", expr.NewSimpleLiteral("2024-01-01T00:00:00+02:00")), typed("2024-01-01T00:00:00+02:00", rdf.XSDDateTime)},
		{"decimal to string is reduced", cast("string", call(expr.OpDivide, expr.NewInteger(1), expr.NewInteger(4))), expr.NewStringLiteral("0.25")},
		{"large string to integer", cast("integer", expr.NewSimpleLiteral("18446744073709551616")), typed("18446744073709551616", rdf.XSDInteger)},
		{"large double to integer", cast("integer", expr.NewDouble(1e20)), typed("100000000000000000000", rdf.XSDInteger)},
		{"large integer to double", cast("double", typed("18446744073709551616", rdf.XSDInteger)), expr.NewDouble(18446744073709551616)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTerm(t, tt.want, tt.ex)
		})
	}

	assertErrorIs(t, expr.ErrExpression, cast("integer", expr.NewSimpleLiteral("4.5")))
	assertErrorIs(t, expr.ErrExpression, cast("integer", expr.NewDouble(math.NaN())))
	assertErrorIs(t, expr.ErrExpression, cast("boolean", expr.NewSimpleLiteral("yes")))
	assertErrorIs(t, expr.ErrExpression, cast("double", typed("x", rdf.XSDInteger)))
	assertErrorIs(t, expr.ErrInvalidArgumentTypes, cast("integer", expr.NewNamedNode("http://a")))
	assertErrorIs(t, expr.ErrInvalidArgumentTypes, cast("string", expr.NewBlankNode("b")))
}
