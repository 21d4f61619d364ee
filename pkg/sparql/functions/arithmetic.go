package functions

import (
	"math"

	"github.com/aleksaelezovic/sparqlee/pkg/sparql/expr"
	"github.com/cockroachdb/apd/v3"
)

// numericKind orders the numeric types for promotion:
// integer < decimal < float < double.
type numericKind int

const (
	kindInteger numericKind = iota
	kindDecimal
	kindFloat
	kindDouble
)

func kindOf(c expr.Category) numericKind {
	switch {
	case c.IsInteger():
		return kindInteger
	case c == expr.CategoryDecimal:
		return kindDecimal
	case c == expr.CategoryFloat:
		return kindFloat
	default:
		return kindDouble
	}
}

// decimalContext is used for all decimal arithmetic.
var decimalContext = apd.BaseContext.WithPrecision(34)

func toDecimal(l *expr.Literal) *apd.Decimal {
	if d, ok := l.Decimal(); ok {
		return d
	}
	v, _ := l.Int64()
	return apd.New(v, 0)
}

func toFloat(l *expr.Literal) float64 {
	if v, ok := l.Float64(); ok {
		return v
	}
	if v, ok := l.Int64(); ok {
		return float64(v)
	}
	d, _ := l.Decimal()
	f, _ := d.Float64()
	return f
}

func promote(a, b *expr.Literal) numericKind {
	return max(kindOf(a.Category()), kindOf(b.Category()))
}

type arithmetic struct {
	op      expr.Operator
	integer func(a, b int64) (int64, bool) // false on overflow
	decimal func(d, a, b *apd.Decimal) (apd.Condition, error)
	float   func(a, b float64) float64
}

func (ar arithmetic) apply(args []expr.Term) (expr.Term, error) {
	a, b := literal(args[0]), literal(args[1])
	switch promote(a, b) {
	case kindInteger:
		if ar.integer == nil {
			return ar.applyDecimal(toDecimal(a), toDecimal(b))
		}
		x, xok := a.Int64()
		y, yok := b.Int64()
		if xok && yok {
			if r, ok := ar.integer(x, y); ok {
				return expr.NewInteger(r), nil
			}
		}
		return ar.applyBigInteger(toDecimal(a), toDecimal(b))
	case kindDecimal:
		return ar.applyDecimal(toDecimal(a), toDecimal(b))
	case kindFloat:
		return expr.NewFloat(ar.float(toFloat(a), toFloat(b))), nil
	default:
		return expr.NewDouble(ar.float(toFloat(a), toFloat(b))), nil
	}
}

func (ar arithmetic) applyDecimal(x, y *apd.Decimal) (expr.Term, error) {
	if ar.op == expr.OpDivide && y.IsZero() {
		return nil, expr.NewExpressionError(ar.op, "division by zero")
	}
	r := new(apd.Decimal)
	if _, err := ar.decimal(r, x, y); err != nil {
		return nil, &expr.ExpressionError{Operator: ar.op, Err: err}
	}
	return expr.NewDecimal(r), nil
}

// applyBigInteger computes integer results outside int64 exactly. A result
// that does not fit decimalContext's precision is an overflow.
func (ar arithmetic) applyBigInteger(x, y *apd.Decimal) (expr.Term, error) {
	r := new(apd.Decimal)
	cond, err := ar.decimal(r, x, y)
	if err != nil {
		return nil, &expr.ExpressionError{Operator: ar.op, Err: err}
	}
	if cond.Inexact() {
		return nil, expr.NewExpressionError(ar.op, "integer overflow in %s %s %s", x, ar.op, y)
	}
	return expr.NewBigInteger(r), nil
}

func (ar arithmetic) function() expr.Function {
	t := newTable(2)
	for _, left := range expr.NumericCategories {
		for _, right := range expr.NumericCategories {
			t.add(ar.apply, left.Type(), right.Type())
		}
	}
	return t.function(ar.op)
}

func addInt(a, b int64) (int64, bool) {
	r := a + b
	return r, (r > a) == (b > 0)
}

func subtractInt(a, b int64) (int64, bool) {
	r := a - b
	return r, (r < a) == (b > 0)
}

func multiplyInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	r := a * b
	if r/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	return r, true
}

func arithmeticFunctions() []expr.Function {
	return []expr.Function{
		arithmetic{
			op:      expr.OpAdd,
			integer: addInt,
			decimal: decimalContext.Add,
			float:   func(a, b float64) float64 { return a + b },
		}.function(),
		arithmetic{
			op:      expr.OpSubtract,
			integer: subtractInt,
			decimal: decimalContext.Sub,
			float:   func(a, b float64) float64 { return a - b },
		}.function(),
		arithmetic{
			op:      expr.OpMultiply,
			integer: multiplyInt,
			decimal: decimalContext.Mul,
			float:   func(a, b float64) float64 { return a * b },
		}.function(),
		// integer division yields a decimal
		arithmetic{
			op:      expr.OpDivide,
			decimal: decimalContext.Quo,
			float:   func(a, b float64) float64 { return a / b },
		}.function(),
		unaryMinus(),
		unaryPlus(),
	}
}

func unaryMinus() expr.Function {
	t := newTable(1)
	for _, c := range expr.NumericCategories {
		t.add(func(args []expr.Term) (expr.Term, error) {
			l := literal(args[0])
			switch kindOf(l.Category()) {
			case kindInteger:
				if v, ok := l.Int64(); ok && v != math.MinInt64 {
					return expr.NewInteger(-v), nil
				}
				return expr.NewBigInteger(new(apd.Decimal).Neg(toDecimal(l))), nil
			case kindDecimal:
				d, _ := l.Decimal()
				return expr.NewDecimal(new(apd.Decimal).Neg(d)), nil
			case kindFloat:
				return expr.NewFloat(-toFloat(l)), nil
			default:
				return expr.NewDouble(-toFloat(l)), nil
			}
		}, c.Type())
	}
	return t.function(expr.OpUnaryMinus)
}

func unaryPlus() expr.Function {
	t := newTable(1)
	for _, c := range expr.NumericCategories {
		t.add(func(args []expr.Term) (expr.Term, error) {
			return args[0], nil
		}, c.Type())
	}
	return t.function(expr.OpUnaryPlus)
}
