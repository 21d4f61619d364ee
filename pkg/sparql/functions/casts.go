package functions

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aleksaelezovic/sparqlee/pkg/sparql/expr"
	"github.com/cockroachdb/apd/v3"
)

var truncateContext = func() *apd.Context {
	c := apd.BaseContext.WithPrecision(34)
	c.Rounding = apd.RoundDown
	return c
}()

// castTargets are the datatypes with a constructor function, xsd:T(arg).
var castTargets = []expr.Category{
	expr.CategoryString,
	expr.CategoryBoolean,
	expr.CategoryInteger,
	expr.CategoryDecimal,
	expr.CategoryFloat,
	expr.CategoryDouble,
	expr.CategoryDateTime,
}

// cast converts a term to target. The source is reduced to a candidate
// lexical form, which must then parse under the target datatype.
func cast(target expr.Category) expr.Application {
	datatype, _ := expr.DatatypeOf(target)
	op := expr.Operator(datatype)
	return func(args []expr.Term) (expr.Term, error) {
		var lexical string
		switch t := args[0].(type) {
		case *expr.NamedNode:
			if target != expr.CategoryString {
				return nil, &expr.InvalidArgumentTypesError{Operator: op, Args: args}
			}
			return expr.NewStringLiteral(t.IRI), nil
		case *expr.Literal:
			var err error
			if lexical, err = castLexical(op, t, target); err != nil {
				return nil, err
			}
		default:
			return nil, &expr.InvalidArgumentTypesError{Operator: op, Args: args}
		}
		if target == expr.CategoryString {
			return expr.NewStringLiteral(lexical), nil
		}
		result := expr.NewTypedLiteral(lexical, datatype)
		if result.Category() == expr.CategoryInvalid {
			return nil, expr.NewExpressionError(op, "cannot cast %s to %s", args[0], datatype)
		}
		return canonical(result), nil
	}
}

// localDateTime is the dateTime layout for values without a timezone.
const localDateTime = "2006-01-02T15:04:05.999999999"

// canonical rebuilds l from its value, giving it the canonical lexical form.
func canonical(l *expr.Literal) *expr.Literal {
	switch v := l.Value().(type) {
	case int64:
		return expr.NewInteger(v)
	case *apd.Decimal:
		if l.Category().IsInteger() {
			return expr.NewBigInteger(v)
		}
		return expr.NewDecimal(v)
	case float64:
		if l.Category() == expr.CategoryFloat {
			return expr.NewFloat(v)
		}
		return expr.NewDouble(v)
	case bool:
		return expr.NewBoolean(v)
	case time.Time:
		if !hasTimezone(l.Lexical()) {
			return expr.NewTypedLiteral(v.Format(localDateTime), l.Datatype())
		}
		return expr.NewDateTime(v)
	}
	return l
}

// hasTimezone reports whether a dateTime lexical form ends in Z or an offset.
func hasTimezone(lexical string) bool {
	lexical = strings.TrimSpace(lexical)
	if strings.HasSuffix(lexical, "Z") {
		return true
	}
	n := len(lexical)
	return n >= 6 && (lexical[n-6] == '+' || lexical[n-6] == '-') && lexical[n-3] == ':'
}

func castLexical(op expr.Operator, l *expr.Literal, target expr.Category) (string, error) {
	source := l.Category()
	switch {
	case source == expr.CategoryInvalid:
		return "", expr.NewExpressionError(op, "cannot cast ill-formed literal %s", l)
	case source.IsNumeric() && target == expr.CategoryBoolean:
		v, _ := l.EBV()
		return strconv.FormatBool(v), nil
	case source.IsNumeric() && target == expr.CategoryInteger:
		return truncate(op, l)
	case source == expr.CategoryBoolean && target.IsNumeric():
		v, _ := l.Bool()
		if v {
			return "1", nil
		}
		return "0", nil
	case (source == expr.CategoryFloat || source == expr.CategoryDouble) && target == expr.CategoryDecimal:
		v := toFloat(l)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", expr.NewExpressionError(op, "cannot cast %s to decimal", l)
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}
	return l.Lexical(), nil
}

func truncate(op expr.Operator, l *expr.Literal) (string, error) {
	switch kindOf(l.Category()) {
	case kindInteger:
		if v, ok := l.Int64(); ok {
			return strconv.FormatInt(v, 10), nil
		}
		d, _ := l.Decimal()
		return d.Text('f'), nil
	case kindDecimal:
		d, _ := l.Decimal()
		truncated := new(apd.Decimal)
		if _, err := truncateContext.RoundToIntegralValue(truncated, d); err != nil {
			return "", &expr.ExpressionError{Operator: op, Err: err}
		}
		return truncated.Text('f'), nil
	default:
		v := math.Trunc(toFloat(l))
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", expr.NewExpressionError(op, "cannot cast %s to integer", l)
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}
}

func castFunctions() map[string]expr.Function {
	fns := make(map[string]expr.Function, len(castTargets))
	for _, target := range castTargets {
		datatype, _ := expr.DatatypeOf(target)
		fns[datatype] = expr.NewSimpleFunction(expr.Operator(datatype), expr.GenericSignature(1), cast(target))
	}
	return fns
}
