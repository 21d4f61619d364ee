package evaluator

import (
	"context"

	"github.com/aleksaelezovic/sparqlee/pkg/sparql/expr"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of evaluating an expression for one row.
type Result struct {
	Index    int
	Bindings expr.Bindings
	Term     expr.Term
	Err      error
}

// EvaluateAll evaluates ex for every row on a bounded pool of goroutines.
// A row's failure is reported in its Result and does not affect other rows;
// only cancellation of ctx aborts the batch. Results are in row order.
func (e *Evaluator) EvaluateAll(ctx context.Context, ex expr.Expression, rows []expr.Bindings) ([]Result, error) {
	ctx, span := e.telemetry.startBatch(ctx, "evaluate_all", expressionString(ex), len(rows))
	results, failed, err := e.evaluateRows(ctx, rows, func(ctx context.Context, b expr.Bindings) (expr.Term, error) {
		return e.Evaluate(ctx, ex, b)
	})
	e.telemetry.record(ctx, "evaluate_all", len(rows), failed)
	endSpan(span, err)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("evaluated rows", "rows", len(rows), "failed", failed)
	return results, nil
}

// Filter returns the rows for which ex has a true effective boolean value,
// in input order. Rows whose evaluation fails are excluded.
func (e *Evaluator) Filter(ctx context.Context, ex expr.Expression, rows []expr.Bindings) ([]expr.Bindings, error) {
	ctx, span := e.telemetry.startBatch(ctx, "filter", expressionString(ex), len(rows))
	results, failed, err := e.evaluateRows(ctx, rows, func(ctx context.Context, b expr.Bindings) (expr.Term, error) {
		ok, err := e.EBV(ctx, ex, b)
		if err != nil {
			return nil, err
		}
		return expr.NewBoolean(ok), nil
	})
	e.telemetry.record(ctx, "filter", len(rows), failed)
	endSpan(span, err)
	if err != nil {
		return nil, err
	}

	kept := make([]expr.Bindings, 0, len(rows))
	for _, r := range results {
		if r.Err != nil {
			e.logger.Debug("row excluded by filter", "row", r.Index, "bindings", r.Bindings.String(), "error", r.Err)
			continue
		}
		if v, _ := r.Term.(*expr.Literal).Bool(); v {
			kept = append(kept, r.Bindings)
		}
	}
	e.logger.Debug("filtered rows", "rows", len(rows), "kept", len(kept), "failed", failed)
	return kept, nil
}

func (e *Evaluator) evaluateRows(ctx context.Context, rows []expr.Bindings, eval func(context.Context, expr.Bindings) (expr.Term, error)) ([]Result, int, error) {
	results := make([]Result, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, row := range rows {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			term, err := eval(gctx, row)
			if ctxErr := gctx.Err(); ctxErr != nil {
				return ctxErr
			}
			results[i] = Result{Index: i, Bindings: row, Term: term, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	return results, failed, nil
}

func expressionString(ex expr.Expression) string {
	if ex == nil {
		return "<nil>"
	}
	return ex.String()
}
