package evaluator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/aleksaelezovic/sparqlee/pkg/rdf"
	"github.com/aleksaelezovic/sparqlee/pkg/sparql/expr"
	"github.com/aleksaelezovic/sparqlee/pkg/sparql/functions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(op expr.Operator, args ...expr.Expression) *expr.OperatorCall {
	return &expr.OperatorCall{Operator: op, Args: args}
}

func variable(name string) *expr.Variable {
	return expr.NewVariable(name)
}

// countingExistence records how often it is asked and answers a fixed value.
type countingExistence struct {
	calls  atomic.Int32
	answer bool
	err    error
}

func (c *countingExistence) Exists(context.Context, expr.Operation, expr.Bindings) (bool, error) {
	c.calls.Add(1)
	return c.answer, c.err
}

type fixedAggregate struct {
	term expr.Term
}

func (f fixedAggregate) Aggregate(context.Context, *expr.Aggregate, expr.Bindings) (expr.Term, error) {
	return f.term, nil
}

func evaluate(t *testing.T, ev *Evaluator, ex expr.Expression, b expr.Bindings) expr.Term {
	t.Helper()
	term, err := ev.Evaluate(context.Background(), ex, b)
	require.NoError(t, err)
	return term
}

func TestEvaluate_IntegerAddition(t *testing.T) {
	ev := NewEvaluator()
	two := expr.NewTypedLiteral("2", rdf.XSDInteger.IRI)
	three := expr.NewTypedLiteral("3", rdf.XSDInteger.IRI)

	got := evaluate(t, ev, call(expr.OpAdd, two, three), expr.Bindings{})

	l, ok := got.(*expr.Literal)
	require.True(t, ok)
	assert.Equal(t, expr.CategoryInteger, l.Category())
	v, _ := l.Int64()
	assert.Equal(t, int64(5), v)
}

func TestEvaluate_Term(t *testing.T) {
	term := expr.NewNamedNode("http://example.org/a")
	got := evaluate(t, NewEvaluator(), term, expr.Bindings{})
	assert.Same(t, term, got)
}

func TestEvaluate_Variable(t *testing.T) {
	ev := NewEvaluator()
	b := expr.Bindings{}.Extend("x", expr.NewInteger(7))

	got := evaluate(t, ev, variable("x"), b)
	assert.True(t, expr.SameTerm(expr.NewInteger(7), got))

	_, err := ev.Evaluate(context.Background(), variable("x"), expr.Bindings{})
	assert.ErrorIs(t, err, expr.ErrUnboundVariable)
	var unbound *expr.UnboundVariableError
	require.ErrorAs(t, err, &unbound)
	assert.Equal(t, "x", unbound.Name)
}

func TestEvaluate_AndShortCircuits(t *testing.T) {
	probe := &countingExistence{answer: true}
	ev := NewEvaluator(WithExistence(probe))

	got := evaluate(t, ev, call(expr.OpAnd, expr.NewBoolean(false), &expr.Existence{Input: "probe"}), expr.Bindings{})
	assert.True(t, expr.SameTerm(expr.NewBoolean(false), got))
	assert.Equal(t, int32(0), probe.calls.Load())

	got = evaluate(t, ev, call(expr.OpAnd, expr.NewBoolean(true), &expr.Existence{Input: "probe"}), expr.Bindings{})
	assert.True(t, expr.SameTerm(expr.NewBoolean(true), got))
	assert.Equal(t, int32(1), probe.calls.Load())
}

func TestEvaluate_AndDoesNotEvaluateFailingOperand(t *testing.T) {
	got := evaluate(t, NewEvaluator(), call(expr.OpAnd, expr.NewBoolean(false), variable("unbound")), expr.Bindings{})
	assert.True(t, expr.SameTerm(expr.NewBoolean(false), got))
}

func TestEvaluate_ArgumentsLeftToRight(t *testing.T) {
	_, err := NewEvaluator().Evaluate(context.Background(), call(expr.OpAdd, variable("a"), variable("b")), expr.Bindings{})
	var unbound *expr.UnboundVariableError
	require.ErrorAs(t, err, &unbound)
	assert.Equal(t, "a", unbound.Name)
}

func TestEvaluate_Unimplemented(t *testing.T) {
	ev := NewEvaluator()
	tests := []struct {
		name string
		ex   expr.Expression
	}{
		{"nil expression", nil},
		{"unknown named function", &expr.NamedCall{Name: expr.NewNamedNode("http://example.org/fn"), Args: nil}},
		{"unknown operator", call("FROBNICATE")},
		{"existence without evaluator", &expr.Existence{Input: "pattern"}},
		{"aggregate without evaluator", &expr.Aggregate{Aggregator: "COUNT"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ev.Evaluate(context.Background(), tt.ex, expr.Bindings{})
			assert.ErrorIs(t, err, expr.ErrUnimplemented)
		})
	}
}

func TestEvaluate_Existence(t *testing.T) {
	yes := &countingExistence{answer: true}
	ev := NewEvaluator(WithExistence(yes))

	got := evaluate(t, ev, &expr.Existence{Input: "p"}, expr.Bindings{})
	assert.True(t, expr.SameTerm(expr.NewBoolean(true), got))
	got = evaluate(t, ev, &expr.Existence{Not: true, Input: "p"}, expr.Bindings{})
	assert.True(t, expr.SameTerm(expr.NewBoolean(false), got))

	failing := &countingExistence{err: errors.New("store closed")}
	_, err := NewEvaluator(WithExistence(failing)).Evaluate(context.Background(), &expr.Existence{Input: "p"}, expr.Bindings{})
	assert.EqualError(t, err, "store closed")
}

func TestEvaluate_Aggregate(t *testing.T) {
	ev := NewEvaluator(WithAggregates(fixedAggregate{term: expr.NewInteger(3)}))
	got := evaluate(t, ev, &expr.Aggregate{Aggregator: "COUNT"}, expr.Bindings{})
	assert.True(t, expr.SameTerm(expr.NewInteger(3), got))
}

func TestEvaluate_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEvaluator().Evaluate(ctx, expr.NewInteger(1), expr.Bindings{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluate_InvalidArgumentTypes(t *testing.T) {
	_, err := NewEvaluator().Evaluate(context.Background(), call(expr.OpAdd, expr.NewInteger(1), expr.NewSimpleLiteral("a")), expr.Bindings{})
	assert.ErrorIs(t, err, expr.ErrInvalidArgumentTypes)
}

func TestEvaluate_ExtensionFunction(t *testing.T) {
	const iri = "http://example.org/double-it"
	catalogue := functions.NewBuiltinCatalogue()
	require.NoError(t, catalogue.RegisterNamed(iri, expr.NewSimpleFunction(expr.Operator(iri),
		[]expr.ArgumentType{expr.CategoryInteger.Type()},
		func(args []expr.Term) (expr.Term, error) {
			v, _ := args[0].(*expr.Literal).Int64()
			return expr.NewInteger(2 * v), nil
		})))
	ev := NewEvaluator(WithFunctions(catalogue.Freeze()))

	got := evaluate(t, ev, &expr.NamedCall{Name: expr.NewNamedNode(iri), Args: []expr.Expression{expr.NewInteger(21)}}, expr.Bindings{})
	assert.True(t, expr.SameTerm(expr.NewInteger(42), got))
}

func TestEvaluate_PreResolvedFunction(t *testing.T) {
	negate := expr.NewSimpleFunction("NEG", []expr.ArgumentType{expr.CategoryBoolean.Type()}, func(args []expr.Term) (expr.Term, error) {
		v, _ := args[0].(*expr.Literal).Bool()
		return expr.NewBoolean(!v), nil
	})
	ex := &expr.OperatorCall{Operator: "NEG", Args: []expr.Expression{expr.NewBoolean(true)}, Func: negate}

	got := evaluate(t, NewEvaluator(WithFunctions(functions.NewCatalogue())), ex, expr.Bindings{})
	assert.True(t, expr.SameTerm(expr.NewBoolean(false), got))
}

func TestEBV(t *testing.T) {
	ev := NewEvaluator()
	ok, err := ev.EBV(context.Background(), expr.NewStringLiteral("x"), expr.Bindings{})
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = ev.EBV(context.Background(), expr.NewNamedNode("http://a"), expr.Bindings{})
	assert.ErrorIs(t, err, expr.ErrEBVCoercion)
}
