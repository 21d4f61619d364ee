package expr

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/aleksaelezovic/sparqlee/pkg/rdf"
	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		datatype string
		want     Category
	}{
		{rdf.XSDString.IRI, CategoryString},
		{rdf.XSDInteger.IRI, CategoryInteger},
		{rdf.XSDDecimal.IRI, CategoryDecimal},
		{rdf.XSDDouble.IRI, CategoryDouble},
		{rdf.XSDFloat.IRI, CategoryFloat},
		{rdf.XSDBoolean.IRI, CategoryBoolean},
		{rdf.XSDDateTime.IRI, CategoryDateTime},
		{rdf.XSD("byte").IRI, CategoryByte},
		{rdf.XSD("unsignedInt").IRI, CategoryUnsignedInt},
		{rdf.XSD("date").IRI, CategoryOther},
		{"http://example.org/custom", CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.datatype, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.datatype))
		})
	}
}

func TestCategory_Predicates(t *testing.T) {
	for _, c := range IntegerCategories {
		assert.True(t, c.IsInteger(), c)
		assert.True(t, c.IsNumeric(), c)
		dt, ok := DatatypeOf(c)
		require.True(t, ok)
		assert.Equal(t, c, Categorize(dt))
	}
	assert.True(t, CategoryDouble.IsNumeric())
	assert.False(t, CategoryDouble.IsInteger())
	assert.False(t, CategoryString.IsNumeric())
	assert.True(t, CategoryPlain.IsString())
	assert.False(t, CategoryInvalid.IsString())

	_, ok := DatatypeOf(CategoryPlain)
	assert.False(t, ok)
}

func TestNewTypedLiteral_Values(t *testing.T) {
	tests := []struct {
		name     string
		lexical  string
		datatype *rdf.NamedNode
		category Category
		value    any
	}{
		{"integer", "42", rdf.XSDInteger, CategoryInteger, int64(42)},
		{"signed integer", "+7", rdf.XSDInteger, CategoryInteger, int64(7)},
		{"negative integer", "-3", rdf.XSD("negativeInteger"), CategoryNegativeInteger, int64(-3)},
		{"byte", "-128", rdf.XSD("byte"), CategoryByte, int64(-128)},
		{"double", "1.5e2", rdf.XSDDouble, CategoryDouble, 150.0},
		{"double INF", "INF", rdf.XSDDouble, CategoryDouble, math.Inf(1)},
		{"float", "0.5", rdf.XSDFloat, CategoryFloat, 0.5},
		{"boolean true", "true", rdf.XSDBoolean, CategoryBoolean, true},
		{"boolean 0", "0", rdf.XSDBoolean, CategoryBoolean, false},
		{"string", "abc", rdf.XSDString, CategoryString, "abc"},
		{"dateTime", "2020-01-02T03:04:05Z", rdf.XSDDateTime, CategoryDateTime, time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewTypedLiteral(tt.lexical, tt.datatype.IRI)
			assert.Equal(t, tt.category, l.Category())
			assert.Equal(t, tt.lexical, l.Lexical())
			if want, ok := tt.value.(time.Time); ok {
				got, ok := l.Time()
				require.True(t, ok)
				assert.True(t, want.Equal(got))
				return
			}
			assert.Equal(t, tt.value, l.Value())
		})
	}
}

func TestNewTypedLiteral_Decimal(t *testing.T) {
	for _, lexical := range []string{"1.50", ".5", "-.5", "+2", "3."} {
		l := NewTypedLiteral(lexical, rdf.XSDDecimal.IRI)
		require.Equal(t, CategoryDecimal, l.Category(), lexical)
		_, ok := l.Decimal()
		assert.True(t, ok, lexical)
	}
	d, _ := NewTypedLiteral("-.5", rdf.XSDDecimal.IRI).Decimal()
	assert.Equal(t, "-0.5", d.Text('f'))
}

func TestNewTypedLiteral_Invalid(t *testing.T) {
	tests := []struct {
		lexical  string
		datatype *rdf.NamedNode
	}{
		{"abc", rdf.XSDInteger},
		{"1.5", rdf.XSDInteger},
		{"128", rdf.XSD("byte")},
		{"0", rdf.XSD("positiveInteger")},
		{"-1", rdf.XSD("unsignedShort")},
		{"-1", rdf.XSD("unsignedLong")},
		{"18446744073709551616", rdf.XSD("unsignedLong")},
		{"9223372036854775808", rdf.XSD("long")},
		{"-9223372036854775809", rdf.XSD("nonNegativeInteger")},
		{"1e3", rdf.XSDDecimal},
		{"maybe", rdf.XSDBoolean},
		{"1.0.0", rdf.XSDDouble},
		{"yesterday", rdf.XSDDateTime},
	}
	for _, tt := range tests {
		t.Run(tt.lexical+"^^"+tt.datatype.IRI, func(t *testing.T) {
			l := NewTypedLiteral(tt.lexical, tt.datatype.IRI)
			assert.Equal(t, CategoryInvalid, l.Category())
			assert.Nil(t, l.Value())

			// the wire form is preserved
			assert.True(t, l.ToRDF().Equals(rdf.NewLiteralWithDatatype(tt.lexical, tt.datatype)))
		})
	}
}

func TestNewTypedLiteral_LargeIntegers(t *testing.T) {
	tests := []struct {
		lexical  string
		datatype *rdf.NamedNode
		category Category
	}{
		{"18446744073709551615", rdf.XSD("unsignedLong"), CategoryUnsignedLong},
		{"9223372036854775808", rdf.XSDInteger, CategoryInteger},
		{"-9223372036854775809", rdf.XSD("negativeInteger"), CategoryNegativeInteger},
		{"+100000000000000000000000000000000000000000", rdf.XSD("positiveInteger"), CategoryPositiveInteger},
	}
	for _, tt := range tests {
		t.Run(tt.lexical, func(t *testing.T) {
			l := NewTypedLiteral(tt.lexical, tt.datatype.IRI)
			require.Equal(t, tt.category, l.Category())
			assert.True(t, l.Category().IsNumeric())
			_, ok := l.Int64()
			assert.False(t, ok)
			d, ok := l.Decimal()
			require.True(t, ok)
			assert.Equal(t, strings.TrimPrefix(tt.lexical, "+"), d.Text('f'))

			ebv, err := l.EBV()
			require.NoError(t, err)
			assert.True(t, ebv)
		})
	}

	// int64 values stay int64 whatever the datatype
	v, ok := NewTypedLiteral("007", rdf.XSD("unsignedLong").IRI).Int64()
	assert.True(t, ok)
	assert.Equal(t, int64(7), v)
}

func TestNewBigInteger(t *testing.T) {
	big, _, err := apd.NewFromString("18446744073709551616")
	require.NoError(t, err)
	l := NewBigInteger(big)
	assert.Equal(t, "18446744073709551616", l.Lexical())
	assert.Equal(t, rdf.XSDInteger.IRI, l.Datatype())

	small := NewBigInteger(apd.New(42, 0))
	v, ok := small.Int64()
	assert.True(t, ok)
	assert.Equal(t, int64(42), v)

	scaled := NewBigInteger(apd.New(3, 20))
	assert.Equal(t, "300000000000000000000", scaled.Lexical())
}

func TestNewNonLexicalLiteral_IgnoresValue(t *testing.T) {
	l := NewNonLexicalLiteral(int64(3), "three", rdf.XSDInteger.IRI, "")
	assert.Equal(t, CategoryInvalid, l.Category())
	assert.Nil(t, l.Value())
	assert.Equal(t, ArgumentType("invalid"), l.DispatchKey())
}

func TestCanonicalLexicalForms(t *testing.T) {
	tests := []struct {
		literal *Literal
		want    string
	}{
		{NewInteger(-12), "-12"},
		{NewDecimal(apd.New(5, 0)), "5.0"},
		{NewDecimal(apd.New(125, -2)), "1.25"},
		{NewDecimal(apd.New(2500, -4)), "0.25"},
		{NewDecimal(apd.New(300, -2)), "3.0"},
		{NewDecimal(apd.New(12, 3)), "12000.0"},
		{NewDecimal(new(apd.Decimal).Neg(apd.New(0, -1))), "0.0"},
		{NewDouble(150), "1.5E2"},
		{NewDouble(0.5), "5.0E-1"},
		{NewDouble(math.Inf(-1)), "-INF"},
		{NewDouble(math.NaN()), "NaN"},
		{NewFloat(2), "2.0E0"},
		{NewBoolean(true), "true"},
		{NewDateTime(time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)), "2021-06-01T12:00:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.literal.Lexical())
		})
	}
}

func TestLiteral_EBV(t *testing.T) {
	tests := []struct {
		name string
		term Term
		want bool
	}{
		{"empty string", NewStringLiteral(""), false},
		{"string", NewStringLiteral("x"), true},
		{"empty simple", NewSimpleLiteral(""), false},
		{"plain", NewPlainLiteral("hi", "en"), true},
		{"zero", NewInteger(0), false},
		{"one", NewInteger(1), true},
		{"zero decimal", NewDecimal(apd.New(0, 0)), false},
		{"decimal", NewDecimal(apd.New(1, -1)), true},
		{"NaN", NewDouble(math.NaN()), false},
		{"double", NewDouble(-0.1), true},
		{"zero float", NewFloat(0), false},
		{"false", NewBoolean(false), false},
		{"true", NewBoolean(true), true},
		{"derived integer", NewTypedLiteral("5", rdf.XSD("short").IRI), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.term.EBV()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEBV_Undefined(t *testing.T) {
	terms := []Term{
		NewNamedNode("http://example.org/a"),
		NewBlankNode("b0"),
		NewDateTime(time.Now()),
		NewTypedLiteral("abc", rdf.XSDInteger.IRI),
		NewTypedLiteral("x", "http://example.org/custom"),
	}
	for _, term := range terms {
		_, err := term.EBV()
		assert.ErrorIs(t, err, ErrEBVCoercion, term.String())

		var coercion *EBVCoercionError
		require.ErrorAs(t, err, &coercion)
		assert.Same(t, term, coercion.Term)
	}
}

func TestDispatchKey(t *testing.T) {
	assert.Equal(t, TypeNamedNode, NewNamedNode("http://a").DispatchKey())
	assert.Equal(t, TypeBlankNode, NewBlankNode("b").DispatchKey())
	assert.Equal(t, CategoryInteger.Type(), NewInteger(1).DispatchKey())
	assert.Equal(t, CategorySimple.Type(), NewSimpleLiteral("a").DispatchKey())
	assert.Equal(t, CategoryPlain.Type(), NewPlainLiteral("a", "en").DispatchKey())
}

func TestFromRDF(t *testing.T) {
	tests := []struct {
		name     string
		in       rdf.Term
		termType TermType
		category Category
	}{
		{"named node", rdf.NewNamedNode("http://a"), TermTypeNamedNode, ""},
		{"blank node", rdf.NewBlankNode("x"), TermTypeBlankNode, ""},
		{"simple", rdf.NewLiteral("a"), TermTypeLiteral, CategorySimple},
		{"plain", rdf.NewLiteralWithLanguage("a", "en"), TermTypeLiteral, CategoryPlain},
		{"string", rdf.NewLiteralWithDatatype("a", rdf.XSDString), TermTypeLiteral, CategoryString},
		{"integer", rdf.NewIntegerLiteral(4), TermTypeLiteral, CategoryInteger},
		{"unknown", rdf.NewLiteralWithDatatype("P1D", rdf.XSD("duration")), TermTypeLiteral, CategoryOther},
		{"langString without tag", rdf.NewLiteralWithDatatype("a", rdf.RDFLangString), TermTypeLiteral, CategoryInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromRDF(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.termType, got.TermType())
			if l, ok := got.(*Literal); ok {
				assert.Equal(t, tt.category, l.Category())
			}
		})
	}

	_, err := FromRDF(rdf.NewDefaultGraph())
	assert.Error(t, err)
	_, err = FromRDF(nil)
	assert.Error(t, err)
}

func TestFromRDF_RoundTrip(t *testing.T) {
	terms := []Term{
		NewNamedNode("http://example.org/a"),
		NewBlankNode("b1"),
		NewSimpleLiteral("plain text"),
		NewPlainLiteral("bonjour", "fr"),
		NewStringLiteral("typed"),
		NewInteger(-99),
		NewDecimal(apd.New(314, -2)),
		NewDouble(2.5),
		NewFloat(0.25),
		NewBoolean(false),
		NewDateTime(time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC)),
		NewTypedLiteral("junk", rdf.XSDInteger.IRI),
		NewTypedLiteral("x", "http://example.org/dt"),
	}
	for _, term := range terms {
		t.Run(term.String(), func(t *testing.T) {
			back, err := FromRDF(term.ToRDF())
			require.NoError(t, err)
			assert.Equal(t, term.TermType(), back.TermType())
			assert.Equal(t, term.DispatchKey(), back.DispatchKey())
			assert.True(t, SameTerm(term, back))
			if l, ok := term.(*Literal); ok {
				bl := back.(*Literal)
				if d, ok := l.Decimal(); ok {
					bd, _ := bl.Decimal()
					assert.Zero(t, d.Cmp(bd))
					return
				}
				if tm, ok := l.Time(); ok {
					btm, _ := bl.Time()
					assert.True(t, tm.Equal(btm))
					return
				}
				assert.Equal(t, l.Value(), bl.Value())
			}
		})
	}
}

func TestSameTerm(t *testing.T) {
	assert.True(t, SameTerm(NewSimpleLiteral("a"), NewStringLiteral("a")))
	assert.False(t, SameTerm(NewSimpleLiteral("a"), NewPlainLiteral("a", "en")))
	assert.False(t, SameTerm(NewTypedLiteral("01", rdf.XSDInteger.IRI), NewInteger(1)))
	assert.True(t, SameTerm(NewNamedNode("http://a"), NewNamedNode("http://a")))
	assert.False(t, SameTerm(NewNamedNode("http://a"), NewBlankNode("http://a")))
	assert.False(t, SameTerm(nil, NewInteger(1)))
}

func TestLiteral_Datatype(t *testing.T) {
	assert.Equal(t, rdf.XSDString.IRI, NewSimpleLiteral("a").Datatype())
	assert.Equal(t, rdf.RDFLangString.IRI, NewPlainLiteral("a", "en").Datatype())
	assert.Equal(t, rdf.XSDInteger.IRI, NewInteger(1).Datatype())
	assert.Equal(t, "", NewPlainLiteral("a", "").Language())
}

func TestLiteral_String(t *testing.T) {
	assert.Equal(t, `"5"^^<http://www.w3.org/2001/XMLSchema#integer>`, NewInteger(5).String())
	assert.Equal(t, `"hi"@en`, NewPlainLiteral("hi", "en").String())
	assert.Equal(t, `"a\"b"`, NewSimpleLiteral(`a"b`).String())
}
