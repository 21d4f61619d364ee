package functions

import (
	"context"

	"github.com/aleksaelezovic/sparqlee/pkg/sparql/expr"
)

// ebvOf evaluates e and takes its effective boolean value.
func ebvOf(ctx context.Context, e expr.Expression, b expr.Bindings, ev expr.Evaluator) (bool, error) {
	term, err := ev.Evaluate(ctx, e, b)
	if err != nil {
		return false, err
	}
	return term.EBV()
}

// and evaluates the right operand only when the left one is not false. An
// error on one side is overridden by false on the other.
func and(ctx context.Context, args []expr.Expression, b expr.Bindings, ev expr.Evaluator) (expr.Term, error) {
	left, leftErr := ebvOf(ctx, args[0], b, ev)
	if leftErr == nil && !left {
		return expr.NewBoolean(false), nil
	}
	right, rightErr := ebvOf(ctx, args[1], b, ev)
	switch {
	case rightErr == nil && !right:
		return expr.NewBoolean(false), nil
	case leftErr != nil:
		return nil, leftErr
	case rightErr != nil:
		return nil, rightErr
	}
	return expr.NewBoolean(true), nil
}

// or is the dual of and: true on either side wins over an error.
func or(ctx context.Context, args []expr.Expression, b expr.Bindings, ev expr.Evaluator) (expr.Term, error) {
	left, leftErr := ebvOf(ctx, args[0], b, ev)
	if leftErr == nil && left {
		return expr.NewBoolean(true), nil
	}
	right, rightErr := ebvOf(ctx, args[1], b, ev)
	switch {
	case rightErr == nil && right:
		return expr.NewBoolean(true), nil
	case leftErr != nil:
		return nil, leftErr
	case rightErr != nil:
		return nil, rightErr
	}
	return expr.NewBoolean(false), nil
}

func not(args []expr.Term) (expr.Term, error) {
	v, err := args[0].EBV()
	if err != nil {
		return nil, err
	}
	return expr.NewBoolean(!v), nil
}

func ifThenElse(ctx context.Context, args []expr.Expression, b expr.Bindings, ev expr.Evaluator) (expr.Term, error) {
	cond, err := ebvOf(ctx, args[0], b, ev)
	if err != nil {
		return nil, err
	}
	if cond {
		return ev.Evaluate(ctx, args[1], b)
	}
	return ev.Evaluate(ctx, args[2], b)
}

func coalesce(ctx context.Context, args []expr.Expression, b expr.Bindings, ev expr.Evaluator) (expr.Term, error) {
	for _, arg := range args {
		term, err := ev.Evaluate(ctx, arg, b)
		if err == nil {
			return term, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
	}
	return nil, expr.NewExpressionError(expr.OpCoalesce, "all %d arguments failed", len(args))
}

// in evaluates the needle once, then each candidate in order. A match wins;
// otherwise the first candidate error is returned, if any.
func in(negate bool) expr.SpecialApplication {
	return func(ctx context.Context, args []expr.Expression, b expr.Bindings, ev expr.Evaluator) (expr.Term, error) {
		needle, err := ev.Evaluate(ctx, args[0], b)
		if err != nil {
			return nil, err
		}
		var firstErr error
		for _, arg := range args[1:] {
			candidate, err := ev.Evaluate(ctx, arg, b)
			if err == nil {
				var result expr.Term
				result, err = equals.Apply([]expr.Term{needle, candidate})
				if err == nil {
					if v, _ := literal(result).Bool(); v {
						return expr.NewBoolean(!negate), nil
					}
					continue
				}
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if firstErr == nil {
				firstErr = err
			}
		}
		if firstErr != nil {
			return nil, firstErr
		}
		return expr.NewBoolean(negate), nil
	}
}

// bound inspects the bindings; its argument is never evaluated.
func bound(_ context.Context, args []expr.Expression, b expr.Bindings, _ expr.Evaluator) (expr.Term, error) {
	v, ok := args[0].(*expr.Variable)
	if !ok {
		return nil, expr.NewExpressionError(expr.OpBound, "argument must be a variable, got %s", args[0])
	}
	return expr.NewBoolean(b.Has(v.Name)), nil
}

func logicalFunctions() []expr.Function {
	return []expr.Function{
		expr.NewSpecialFunction(expr.OpAnd, 2, 2, and),
		expr.NewSpecialFunction(expr.OpOr, 2, 2, or),
		expr.NewSimpleFunction(expr.OpNot, expr.GenericSignature(1), not),
		expr.NewSpecialFunction(expr.OpIf, 3, 3, ifThenElse),
		expr.NewSpecialFunction(expr.OpCoalesce, 0, -1, coalesce),
		expr.NewSpecialFunction(expr.OpIn, 1, -1, in(false)),
		expr.NewSpecialFunction(expr.OpNotIn, 1, -1, in(true)),
		expr.NewSpecialFunction(expr.OpBound, 1, 1, bound),
	}
}
