package expr

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// bounds is an inclusive value range. A nil end is unbounded.
type bounds struct {
	min, max *apd.Decimal
}

func bound(v int64) *apd.Decimal { return apd.New(v, 0) }

var maxUnsignedLong = func() *apd.Decimal {
	d, _, err := apd.NewFromString("18446744073709551615")
	if err != nil {
		panic(err)
	}
	return d
}()

// Value spaces of the integer family. Values that fit in int64 are held as
// int64, larger ones as integral *apd.Decimal values.
var integerBounds = map[Category]bounds{
	CategoryInteger:            {nil, nil},
	CategoryNonPositiveInteger: {nil, bound(0)},
	CategoryNegativeInteger:    {nil, bound(-1)},
	CategoryLong:               {bound(math.MinInt64), bound(math.MaxInt64)},
	CategoryInt:                {bound(math.MinInt32), bound(math.MaxInt32)},
	CategoryShort:              {bound(math.MinInt16), bound(math.MaxInt16)},
	CategoryByte:               {bound(math.MinInt8), bound(math.MaxInt8)},
	CategoryNonNegativeInteger: {bound(0), nil},
	CategoryUnsignedLong:       {bound(0), maxUnsignedLong},
	CategoryUnsignedInt:        {bound(0), bound(math.MaxUint32)},
	CategoryUnsignedShort:      {bound(0), bound(math.MaxUint16)},
	CategoryUnsignedByte:       {bound(0), bound(math.MaxUint8)},
	CategoryPositiveInteger:    {bound(1), nil},
}

func (b bounds) contains(d *apd.Decimal) bool {
	return (b.min == nil || d.Cmp(b.min) >= 0) && (b.max == nil || d.Cmp(b.max) <= 0)
}

var (
	integerPattern = regexp.MustCompile(`^[+-]?[0-9]+$`)
	decimalPattern = regexp.MustCompile(`^[+-]?([0-9]+(\.[0-9]*)?|\.[0-9]+)$`)
	doublePattern  = regexp.MustCompile(`^[+-]?([0-9]+(\.[0-9]*)?|\.[0-9]+)([eE][+-]?[0-9]+)?$`)
)

type lexicalParser func(lexical string, c Category) (any, bool)

var lexicalParsers = func() map[Category]lexicalParser {
	parsers := map[Category]lexicalParser{
		CategoryString:   parseString,
		CategoryPlain:    parseString,
		CategorySimple:   parseString,
		CategoryBoolean:  parseBoolean,
		CategoryDateTime: parseDateTime,
		CategoryDecimal:  parseDecimal,
		CategoryFloat:    parseFloating,
		CategoryDouble:   parseFloating,
	}
	for _, c := range IntegerCategories {
		parsers[c] = parseInteger
	}
	return parsers
}()

func parseString(lexical string, _ Category) (any, bool) {
	return lexical, true
}

func parseBoolean(lexical string, _ Category) (any, bool) {
	switch strings.TrimSpace(lexical) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	}
	return nil, false
}

func parseInteger(lexical string, c Category) (any, bool) {
	lexical = strings.TrimSpace(lexical)
	if !integerPattern.MatchString(lexical) {
		return nil, false
	}
	d, _, err := apd.NewFromString(strings.TrimPrefix(lexical, "+"))
	if err != nil || !integerBounds[c].contains(d) {
		return nil, false
	}
	return integerValue(d), true
}

// integerValue narrows an integral decimal to int64 when it fits.
func integerValue(d *apd.Decimal) any {
	if v, err := d.Int64(); err == nil {
		return v
	}
	return d
}

func parseDecimal(lexical string, _ Category) (any, bool) {
	lexical = strings.TrimSpace(lexical)
	if !decimalPattern.MatchString(lexical) {
		return nil, false
	}
	lexical = strings.TrimPrefix(lexical, "+")
	if strings.HasSuffix(lexical, ".") {
		lexical += "0"
	}
	if strings.HasPrefix(lexical, ".") || strings.HasPrefix(lexical, "-.") {
		lexical = strings.Replace(lexical, ".", "0.", 1)
	}
	d, _, err := apd.NewFromString(lexical)
	if err != nil {
		return nil, false
	}
	return d, true
}

func parseFloating(lexical string, c Category) (any, bool) {
	lexical = strings.TrimSpace(lexical)
	switch lexical {
	case "INF", "+INF":
		return math.Inf(1), true
	case "-INF":
		return math.Inf(-1), true
	case "NaN":
		return math.NaN(), true
	}
	if !doublePattern.MatchString(lexical) {
		return nil, false
	}
	bitSize := 64
	if c == CategoryFloat {
		bitSize = 32
	}
	v, err := strconv.ParseFloat(lexical, bitSize)
	if err != nil {
		// out of range values round to infinity
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return v, true
		}
		return nil, false
	}
	return v, true
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

func parseDateTime(lexical string, _ Category) (any, bool) {
	lexical = strings.TrimSpace(lexical)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, lexical); err == nil {
			return t, true
		}
	}
	return nil, false
}

// ===== Canonical lexical forms =====

func formatInteger(v int64) string {
	return strconv.FormatInt(v, 10)
}

// formatDecimal renders d without trailing zeros and with at least one
// fractional digit. Negative zero renders as 0.0.
func formatDecimal(d *apd.Decimal) string {
	if d.IsZero() {
		return "0.0"
	}
	var reduced apd.Decimal
	reduced.Reduce(d)
	s := reduced.Text('f')
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// formatBigInteger renders an integral decimal without exponent.
func formatBigInteger(d *apd.Decimal) string {
	if d.IsZero() {
		return "0"
	}
	var reduced apd.Decimal
	reduced.Reduce(d)
	return reduced.Text('f')
}

// formatFloat renders v as an XSD double or float: a mantissa with at least
// one fractional digit and an unpadded exponent, e.g. 1.5E2.
func formatFloat(v float64, bitSize int) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "INF"
	case math.IsInf(v, -1):
		return "-INF"
	}
	s := strconv.FormatFloat(v, 'E', -1, bitSize)
	mantissa, exponent, _ := strings.Cut(s, "E")
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}
	exp, err := strconv.Atoi(exponent)
	if err != nil {
		return s
	}
	return mantissa + "E" + strconv.Itoa(exp)
}
