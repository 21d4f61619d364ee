package functions

import (
	"math"

	"github.com/aleksaelezovic/sparqlee/pkg/sparql/expr"
	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
)

// rounding describes one of ABS, CEIL, FLOOR and ROUND per numeric kind.
// Integers are returned unchanged unless integer is set.
type rounding struct {
	op      expr.Operator
	integer func(int64) (int64, bool)
	decimal func(d, x *apd.Decimal) (apd.Condition, error)
	float   func(float64) float64
}

func (r rounding) apply(args []expr.Term) (expr.Term, error) {
	l := literal(args[0])
	switch kindOf(l.Category()) {
	case kindInteger:
		if v, ok := l.Int64(); ok {
			if r.integer == nil {
				return expr.NewInteger(v), nil
			}
			if res, ok := r.integer(v); ok {
				return expr.NewInteger(res), nil
			}
		}
		d := toDecimal(l)
		if r.integer == nil {
			return expr.NewBigInteger(d), nil
		}
		// only ABS changes an integer
		return expr.NewBigInteger(new(apd.Decimal).Abs(d)), nil
	case kindDecimal:
		d, _ := l.Decimal()
		res := new(apd.Decimal)
		if _, err := r.decimal(res, d); err != nil {
			return nil, &expr.ExpressionError{Operator: r.op, Err: err}
		}
		return expr.NewDecimal(res), nil
	case kindFloat:
		return expr.NewFloat(r.float(toFloat(l))), nil
	default:
		return expr.NewDouble(r.float(toFloat(l))), nil
	}
}

func (r rounding) function() expr.Function {
	t := newTable(1)
	for _, c := range expr.NumericCategories {
		t.add(r.apply, c.Type())
	}
	return t.function(r.op)
}

func absInt(v int64) (int64, bool) {
	if v == math.MinInt64 {
		return 0, false
	}
	if v < 0 {
		return -v, true
	}
	return v, true
}

var half = apd.New(5, -1)

// roundDecimal rounds half towards positive infinity, as fn:round does.
func roundDecimal(d, x *apd.Decimal) (apd.Condition, error) {
	shifted := new(apd.Decimal)
	if _, err := decimalContext.Add(shifted, x, half); err != nil {
		return 0, err
	}
	return decimalContext.Floor(d, shifted)
}

func roundFloat(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Floor(v + 0.5)
}

func numericFunctions() []expr.Function {
	return []expr.Function{
		rounding{op: expr.OpAbs, integer: absInt, decimal: decimalContext.Abs, float: math.Abs}.function(),
		rounding{op: expr.OpCeil, decimal: decimalContext.Ceil, float: math.Ceil}.function(),
		rounding{op: expr.OpFloor, decimal: decimalContext.Floor, float: math.Floor}.function(),
		rounding{op: expr.OpRound, decimal: roundDecimal, float: roundFloat}.function(),
	}
}

func identifierFunctions() []expr.Function {
	return []expr.Function{
		expr.NewSimpleFunction(expr.OpUUID, nil, func([]expr.Term) (expr.Term, error) {
			return expr.NewNamedNode("urn:uuid:" + uuid.NewString()), nil
		}),
		expr.NewSimpleFunction(expr.OpStrUUID, nil, func([]expr.Term) (expr.Term, error) {
			return expr.NewSimpleLiteral(uuid.NewString()), nil
		}),
	}
}
