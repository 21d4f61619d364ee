package evaluator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aleksaelezovic/sparqlee/pkg/sparql/expr"
)

// Evaluator evaluates SPARQL expressions against bindings. It is safe for
// concurrent use once built.
type Evaluator struct {
	functions   expr.FunctionResolver
	existence   expr.ExistenceEvaluator
	aggregates  expr.AggregateEvaluator
	logger      *slog.Logger
	concurrency int
	telemetry   telemetry
}

// NewEvaluator creates a new expression evaluator. Without options it
// resolves functions from the built-in catalogue and rejects EXISTS and
// aggregate expressions.
func NewEvaluator(opts ...Option) *Evaluator {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Evaluator{
		functions:   cfg.functions,
		existence:   cfg.existence,
		aggregates:  cfg.aggregates,
		logger:      cfg.logger.With("component", "evaluator"),
		concurrency: cfg.concurrency,
		telemetry:   newTelemetry(cfg.tracer, cfg.meter, cfg.logger),
	}
}

// Evaluate evaluates an expression against bindings and returns the result
// term. Argument expressions are evaluated left to right and the first
// failure aborts the call; errors are returned unchanged.
func (e *Evaluator) Evaluate(ctx context.Context, ex expr.Expression, b expr.Bindings) (expr.Term, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ex == nil {
		return nil, &expr.UnimplementedError{What: "nil expression"}
	}

	switch ex := ex.(type) {
	case expr.Term:
		return ex, nil
	case *expr.Variable:
		return e.evaluateVariable(ex, b)
	case *expr.OperatorCall:
		return e.evaluateOperator(ctx, ex, b)
	case *expr.NamedCall:
		return e.evaluateNamed(ctx, ex, b)
	case *expr.Existence:
		return e.evaluateExistence(ctx, ex, b)
	case *expr.Aggregate:
		return e.evaluateAggregate(ctx, ex, b)
	default:
		return nil, &expr.UnimplementedError{What: fmt.Sprintf("expression type %s", ex.ExpressionType())}
	}
}

// EBV evaluates an expression and returns its effective boolean value.
func (e *Evaluator) EBV(ctx context.Context, ex expr.Expression, b expr.Bindings) (bool, error) {
	term, err := e.Evaluate(ctx, ex, b)
	if err != nil {
		return false, err
	}
	return term.EBV()
}

func (e *Evaluator) evaluateVariable(v *expr.Variable, b expr.Bindings) (expr.Term, error) {
	term, ok := b.Get(v.Name)
	if !ok {
		return nil, &expr.UnboundVariableError{Name: v.Name}
	}
	return term, nil
}

func (e *Evaluator) evaluateOperator(ctx context.Context, call *expr.OperatorCall, b expr.Bindings) (expr.Term, error) {
	f := call.Func
	if f == nil {
		var ok bool
		if f, ok = e.functions.Operator(call.Operator); !ok {
			return nil, &expr.UnimplementedError{What: fmt.Sprintf("operator %s", call.Operator)}
		}
	}
	return e.apply(ctx, f, call.Args, b)
}

func (e *Evaluator) evaluateNamed(ctx context.Context, call *expr.NamedCall, b expr.Bindings) (expr.Term, error) {
	f := call.Func
	if f == nil {
		var ok bool
		if f, ok = e.functions.Named(call.Name.IRI); !ok {
			return nil, &expr.UnimplementedError{What: fmt.Sprintf("function %s", call.Name)}
		}
	}
	return e.apply(ctx, f, call.Args, b)
}

// apply runs f. Special functions receive their arguments unevaluated
// together with the evaluator; the others get evaluated terms.
func (e *Evaluator) apply(ctx context.Context, f expr.Function, args []expr.Expression, b expr.Bindings) (expr.Term, error) {
	switch f := f.(type) {
	case *expr.SpecialFunction:
		return f.Apply(ctx, args, b, e)
	case expr.Applicable:
		terms := make([]expr.Term, len(args))
		for i, arg := range args {
			term, err := e.Evaluate(ctx, arg, b)
			if err != nil {
				return nil, err
			}
			terms[i] = term
		}
		return f.Apply(terms)
	default:
		return nil, &expr.UnimplementedError{What: fmt.Sprintf("function class %s", f.Class())}
	}
}

func (e *Evaluator) evaluateExistence(ctx context.Context, ex *expr.Existence, b expr.Bindings) (expr.Term, error) {
	if e.existence == nil {
		return nil, &expr.UnimplementedError{What: "EXISTS without an existence evaluator"}
	}
	exists, err := e.existence.Exists(ctx, ex.Input, b)
	if err != nil {
		return nil, err
	}
	return expr.NewBoolean(exists != ex.Not), nil
}

func (e *Evaluator) evaluateAggregate(ctx context.Context, a *expr.Aggregate, b expr.Bindings) (expr.Term, error) {
	if e.aggregates == nil {
		return nil, &expr.UnimplementedError{What: fmt.Sprintf("aggregate %s without an aggregate evaluator", a.Aggregator)}
	}
	return e.aggregates.Aggregate(ctx, a, b)
}
