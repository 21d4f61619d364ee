package functions

import (
	"cmp"
	"math"
	"strings"

	"github.com/aleksaelezovic/sparqlee/pkg/sparql/expr"
)

// ordering is the outcome of comparing two values. unordered covers NaN.
type ordering struct {
	cmp       int
	unordered bool
}

type comparison struct {
	op     expr.Operator
	accept func(o ordering) bool
}

var comparisons = []comparison{
	{expr.OpEqual, func(o ordering) bool { return !o.unordered && o.cmp == 0 }},
	{expr.OpNotEqual, func(o ordering) bool { return o.unordered || o.cmp != 0 }},
	{expr.OpLess, func(o ordering) bool { return !o.unordered && o.cmp < 0 }},
	{expr.OpGreater, func(o ordering) bool { return !o.unordered && o.cmp > 0 }},
	{expr.OpLessEqual, func(o ordering) bool { return !o.unordered && o.cmp <= 0 }},
	{expr.OpGreaterEqual, func(o ordering) bool { return !o.unordered && o.cmp >= 0 }},
}

func compareNumeric(a, b *expr.Literal) ordering {
	switch promote(a, b) {
	case kindInteger:
		x, xok := a.Int64()
		y, yok := b.Int64()
		if xok && yok {
			return ordering{cmp: cmp.Compare(x, y)}
		}
		return ordering{cmp: toDecimal(a).Cmp(toDecimal(b))}
	case kindDecimal:
		return ordering{cmp: toDecimal(a).Cmp(toDecimal(b))}
	default:
		x, y := toFloat(a), toFloat(b)
		if math.IsNaN(x) || math.IsNaN(y) {
			return ordering{unordered: true}
		}
		return ordering{cmp: cmp.Compare(x, y)}
	}
}

func compareLexical(a, b *expr.Literal) ordering {
	return ordering{cmp: strings.Compare(a.Lexical(), b.Lexical())}
}

func compareBoolean(a, b *expr.Literal) ordering {
	x, _ := a.Bool()
	y, _ := b.Bool()
	switch {
	case x == y:
		return ordering{}
	case !x:
		return ordering{cmp: -1}
	default:
		return ordering{cmp: 1}
	}
}

func compareDateTime(a, b *expr.Literal) ordering {
	x, _ := a.Time()
	y, _ := b.Time()
	return ordering{cmp: x.Compare(y)}
}

func (c comparison) impl(compare func(a, b *expr.Literal) ordering) expr.Application {
	return func(args []expr.Term) (expr.Term, error) {
		return expr.NewBoolean(c.accept(compare(literal(args[0]), literal(args[1])))), nil
	}
}

// langStringEqual compares language-tagged literals. Tags compare
// case-insensitively.
func (c comparison) langStringEqual(args []expr.Term) (expr.Term, error) {
	a, b := literal(args[0]), literal(args[1])
	equal := a.Lexical() == b.Lexical() && strings.EqualFold(a.Language(), b.Language())
	if c.op == expr.OpNotEqual {
		equal = !equal
	}
	return expr.NewBoolean(equal), nil
}

// termEqual is RDF term equality: terms that are the same are equal, two
// different literals cannot be compared, anything else is unequal.
func (c comparison) termEqual(args []expr.Term) (expr.Term, error) {
	same := expr.SameTerm(args[0], args[1])
	if !same && args[0].TermType() == expr.TermTypeLiteral && args[1].TermType() == expr.TermTypeLiteral {
		return nil, expr.NewExpressionError(c.op, "cannot test %s and %s for equality", args[0], args[1])
	}
	if c.op == expr.OpNotEqual {
		same = !same
	}
	return expr.NewBoolean(same), nil
}

func (c comparison) function() *expr.OverloadedFunction {
	t := newTable(2)
	for _, left := range expr.NumericCategories {
		for _, right := range expr.NumericCategories {
			t.add(c.impl(compareNumeric), left.Type(), right.Type())
		}
	}
	for _, left := range []expr.Category{expr.CategoryString, expr.CategorySimple} {
		for _, right := range []expr.Category{expr.CategoryString, expr.CategorySimple} {
			t.add(c.impl(compareLexical), left.Type(), right.Type())
		}
	}
	t.add(c.impl(compareBoolean), types(expr.CategoryBoolean, expr.CategoryBoolean)...)
	t.add(c.impl(compareDateTime), types(expr.CategoryDateTime, expr.CategoryDateTime)...)

	if c.op == expr.OpEqual || c.op == expr.OpNotEqual {
		t.add(c.langStringEqual, types(expr.CategoryPlain, expr.CategoryPlain)...)
		t.add(c.termEqual, expr.GenericSignature(2)...)
	}
	return t.function(c.op)
}

// equals is the '=' operator, used by IN and NOT IN.
var equals = comparisons[0].function()

func comparisonFunctions() []expr.Function {
	fns := []expr.Function{equals}
	for _, c := range comparisons[1:] {
		fns = append(fns, c.function())
	}
	return fns
}
