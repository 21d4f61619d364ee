package expr

import "math"

type ebvRule func(*Literal) bool

// ebvRules holds the effective boolean value rule for each category that has
// one. Categories without an entry cannot be coerced to a boolean.
var ebvRules = func() map[Category]ebvRule {
	rules := map[Category]ebvRule{
		CategoryBoolean: func(l *Literal) bool {
			v, _ := l.Bool()
			return v
		},
		CategoryDecimal: func(l *Literal) bool {
			d, _ := l.Decimal()
			return !d.IsZero()
		},
		CategoryFloat:  floatingEBV,
		CategoryDouble: floatingEBV,
	}
	for _, c := range StringCategories {
		rules[c] = func(l *Literal) bool {
			return l.lexical != ""
		}
	}
	for _, c := range IntegerCategories {
		rules[c] = func(l *Literal) bool {
			if d, ok := l.Decimal(); ok {
				return !d.IsZero()
			}
			v, _ := l.Int64()
			return v != 0
		}
	}
	return rules
}()

func floatingEBV(l *Literal) bool {
	v, _ := l.Float64()
	return v != 0 && !math.IsNaN(v)
}
