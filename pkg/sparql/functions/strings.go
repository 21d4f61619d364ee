package functions

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aleksaelezovic/sparqlee/pkg/sparql/expr"
	"github.com/dgraph-io/ristretto/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// xsdStrings are the categories accepted where SPARQL expects a simple
// literal or xsd:string.
var xsdStrings = []expr.Category{expr.CategoryString, expr.CategorySimple}

// stringArg evaluates e and requires a string-like literal.
func stringArg(ctx context.Context, op expr.Operator, e expr.Expression, b expr.Bindings, ev expr.Evaluator, allowed []expr.Category) (*expr.Literal, error) {
	term, err := ev.Evaluate(ctx, e, b)
	if err != nil {
		return nil, err
	}
	if l, ok := term.(*expr.Literal); ok {
		for _, c := range allowed {
			if l.Category() == c {
				return l, nil
			}
		}
	}
	return nil, &expr.InvalidArgumentTypesError{Operator: op, Args: []expr.Term{term}}
}

// like builds a literal of the same kind as l: same language for plain
// literals, xsd:string for typed strings.
func like(l *expr.Literal, s string) *expr.Literal {
	switch l.Category() {
	case expr.CategoryPlain:
		return expr.NewPlainLiteral(s, l.Language())
	case expr.CategoryString:
		return expr.NewStringLiteral(s)
	default:
		return expr.NewSimpleLiteral(s)
	}
}

// compatible reports whether b may be searched for in a: b has no language,
// or both share the same language.
func compatible(a, b *expr.Literal) bool {
	if b.Category() != expr.CategoryPlain {
		return true
	}
	return a.Category() == expr.CategoryPlain && strings.EqualFold(a.Language(), b.Language())
}

func strlen(args []expr.Term) (expr.Term, error) {
	return expr.NewInteger(int64(utf8.RuneCountInString(literal(args[0]).Lexical()))), nil
}

// caseMapping applies a language-aware case mapping. Casers are not safe for
// concurrent use, so one is built per call.
func caseMapping(mapper func(language.Tag, ...cases.Option) cases.Caser) expr.Application {
	return func(args []expr.Term) (expr.Term, error) {
		l := literal(args[0])
		tag := language.Und
		if l.Language() != "" {
			if parsed, err := language.Parse(l.Language()); err == nil {
				tag = parsed
			}
		}
		return like(l, mapper(tag).String(l.Lexical())), nil
	}
}

func stringTest(op expr.Operator, test func(s, substr string) bool) expr.Application {
	return func(args []expr.Term) (expr.Term, error) {
		a, b := literal(args[0]), literal(args[1])
		if !compatible(a, b) {
			return nil, expr.NewExpressionError(op, "incompatible arguments %s and %s", a, b)
		}
		return expr.NewBoolean(test(a.Lexical(), b.Lexical())), nil
	}
}

func stringPairs(t *table, impl expr.Application) *table {
	for _, left := range expr.StringCategories {
		for _, right := range expr.StringCategories {
			t.add(impl, left.Type(), right.Type())
		}
	}
	return t
}

func concat(ctx context.Context, args []expr.Expression, b expr.Bindings, ev expr.Evaluator) (expr.Term, error) {
	var sb strings.Builder
	var first *expr.Literal
	sameLanguage, allStrings := true, true
	for _, arg := range args {
		l, err := stringArg(ctx, expr.OpConcat, arg, b, ev, expr.StringCategories)
		if err != nil {
			return nil, err
		}
		if first == nil {
			first = l
		}
		sameLanguage = sameLanguage && l.Category() == expr.CategoryPlain && strings.EqualFold(l.Language(), first.Language())
		allStrings = allStrings && l.Category() == expr.CategoryString
		sb.WriteString(l.Lexical())
	}
	switch {
	case first == nil:
		return expr.NewSimpleLiteral(""), nil
	case sameLanguage:
		return expr.NewPlainLiteral(sb.String(), first.Language()), nil
	case allStrings:
		return expr.NewStringLiteral(sb.String()), nil
	}
	return expr.NewSimpleLiteral(sb.String()), nil
}

// regexCache holds compiled REGEX patterns, one cost unit each.
var regexCache = func() *ristretto.Cache[string, *regexp.Regexp] {
	cache, err := ristretto.NewCache(&ristretto.Config[string, *regexp.Regexp]{
		NumCounters:        10_000,
		MaxCost:            1_000,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		panic(err)
	}
	return cache
}()

// compileRegex returns the compiled pattern for pattern and flags, reusing
// earlier compilations.
func compileRegex(pattern, flags string) (*regexp.Regexp, error) {
	key := strconv.Itoa(len(flags)) + ":" + flags + pattern
	if re, ok := regexCache.Get(key); ok {
		return re, nil
	}
	re, err := translateRegex(pattern, flags)
	if err != nil {
		return nil, err
	}
	regexCache.Set(key, re, 1)
	return re, nil
}

// translateRegex translates SPARQL flags: i, m, s and x become inline Go
// flags, q quotes the pattern.
func translateRegex(pattern, flags string) (*regexp.Regexp, error) {
	var inline strings.Builder
	for _, flag := range flags {
		switch flag {
		case 'i', 'm', 's':
			inline.WriteRune(flag)
		case 'x':
			pattern = stripRegexWhitespace(pattern)
		case 'q':
			pattern = regexp.QuoteMeta(pattern)
		default:
			return nil, expr.NewExpressionError(expr.OpRegex, "unsupported flag %q", flag)
		}
	}
	if inline.Len() > 0 {
		pattern = "(?" + inline.String() + ")" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &expr.ExpressionError{Operator: expr.OpRegex, Err: err}
	}
	return re, nil
}

// stripRegexWhitespace removes whitespace outside character classes. Go's
// regexp has no extended mode.
func stripRegexWhitespace(pattern string) string {
	var sb strings.Builder
	inClass, escaped := false, false
	for _, r := range pattern {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '[':
			inClass = true
		case r == ']':
			inClass = false
		case !inClass && (r == ' ' || r == '\t' || r == '\n' || r == '\r'):
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func regex(ctx context.Context, args []expr.Expression, b expr.Bindings, ev expr.Evaluator) (expr.Term, error) {
	text, err := stringArg(ctx, expr.OpRegex, args[0], b, ev, expr.StringCategories)
	if err != nil {
		return nil, err
	}
	pattern, err := stringArg(ctx, expr.OpRegex, args[1], b, ev, xsdStrings)
	if err != nil {
		return nil, err
	}
	var flags string
	if len(args) == 3 {
		f, err := stringArg(ctx, expr.OpRegex, args[2], b, ev, xsdStrings)
		if err != nil {
			return nil, err
		}
		flags = f.Lexical()
	}
	re, err := compileRegex(pattern.Lexical(), flags)
	if err != nil {
		return nil, err
	}
	return expr.NewBoolean(re.MatchString(text.Lexical())), nil
}

// substr follows fn:substring: characters at 1-based positions p with
// round(start) <= p < round(start)+round(length).
func substr(ctx context.Context, args []expr.Expression, b expr.Bindings, ev expr.Evaluator) (expr.Term, error) {
	source, err := stringArg(ctx, expr.OpSubstr, args[0], b, ev, expr.StringCategories)
	if err != nil {
		return nil, err
	}
	start, err := numericArg(ctx, expr.OpSubstr, args[1], b, ev)
	if err != nil {
		return nil, err
	}
	end := math.Inf(1)
	if len(args) == 3 {
		length, err := numericArg(ctx, expr.OpSubstr, args[2], b, ev)
		if err != nil {
			return nil, err
		}
		end = roundHalfUp(start) + roundHalfUp(length)
	}
	start = roundHalfUp(start)

	var sb strings.Builder
	position := 1.0
	for _, r := range source.Lexical() {
		if position >= start && position < end {
			sb.WriteRune(r)
		}
		position++
	}
	return like(source, sb.String()), nil
}

func numericArg(ctx context.Context, op expr.Operator, e expr.Expression, b expr.Bindings, ev expr.Evaluator) (float64, error) {
	term, err := ev.Evaluate(ctx, e, b)
	if err != nil {
		return 0, err
	}
	if l, ok := term.(*expr.Literal); ok && l.Category().IsNumeric() {
		return toFloat(l), nil
	}
	return 0, &expr.InvalidArgumentTypesError{Operator: op, Args: []expr.Term{term}}
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// langMatches implements basic filtering: "*" matches any tag, otherwise the
// range must equal the tag or be a prefix of it ending at a subtag boundary.
// Tags that are not well-formed BCP 47 never match.
func langMatches(args []expr.Term) (expr.Term, error) {
	tag := strings.ToLower(literal(args[0]).Lexical())
	langRange := strings.ToLower(literal(args[1]).Lexical())

	if tag == "" {
		return expr.NewBoolean(false), nil
	}
	if _, err := language.Parse(tag); err != nil {
		return expr.NewBoolean(false), nil
	}
	if langRange == "*" {
		return expr.NewBoolean(true), nil
	}
	return expr.NewBoolean(tag == langRange || strings.HasPrefix(tag, langRange+"-")), nil
}

func stringFunctions() []expr.Function {
	single := func(op expr.Operator, impl expr.Application) expr.Function {
		t := newTable(1)
		for _, c := range expr.StringCategories {
			t.add(impl, c.Type())
		}
		return t.function(op)
	}

	matches := newTable(2)
	for _, left := range xsdStrings {
		for _, right := range xsdStrings {
			matches.add(langMatches, left.Type(), right.Type())
		}
	}

	return []expr.Function{
		single(expr.OpStrLen, strlen),
		single(expr.OpUCase, caseMapping(cases.Upper)),
		single(expr.OpLCase, caseMapping(cases.Lower)),
		stringPairs(newTable(2), stringTest(expr.OpContains, strings.Contains)).function(expr.OpContains),
		stringPairs(newTable(2), stringTest(expr.OpStrStarts, strings.HasPrefix)).function(expr.OpStrStarts),
		stringPairs(newTable(2), stringTest(expr.OpStrEnds, strings.HasSuffix)).function(expr.OpStrEnds),
		matches.function(expr.OpLangMatches),
		expr.NewSpecialFunction(expr.OpConcat, 0, -1, concat),
		expr.NewSpecialFunction(expr.OpRegex, 2, 3, regex),
		expr.NewSpecialFunction(expr.OpSubstr, 2, 3, substr),
	}
}
