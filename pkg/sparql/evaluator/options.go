package evaluator

import (
	"log/slog"
	"runtime"

	"github.com/aleksaelezovic/sparqlee/pkg/sparql/expr"
	"github.com/aleksaelezovic/sparqlee/pkg/sparql/functions"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/aleksaelezovic/sparqlee/pkg/sparql/evaluator"

// config holds the evaluator configuration.
type config struct {
	functions   expr.FunctionResolver
	existence   expr.ExistenceEvaluator
	aggregates  expr.AggregateEvaluator
	logger      *slog.Logger
	concurrency int
	tracer      trace.Tracer
	meter       metric.Meter
}

func defaultConfig() config {
	return config{
		functions:   functions.Builtins(),
		logger:      slog.Default(),
		concurrency: runtime.GOMAXPROCS(0),
		tracer:      otel.Tracer(instrumentationName),
		meter:       otel.Meter(instrumentationName),
	}
}

// Option configures an Evaluator.
type Option func(*config)

// WithFunctions sets the function catalogue.
// Default: functions.Builtins()
func WithFunctions(r expr.FunctionResolver) Option {
	return func(c *config) {
		if r != nil {
			c.functions = r
		}
	}
}

// WithExistence sets the evaluator for EXISTS and NOT EXISTS. Without one,
// existence expressions fail with an UnimplementedError.
func WithExistence(e expr.ExistenceEvaluator) Option {
	return func(c *config) {
		c.existence = e
	}
}

// WithAggregates sets the evaluator for aggregate expressions. Without one,
// aggregates fail with an UnimplementedError.
func WithAggregates(a expr.AggregateEvaluator) Option {
	return func(c *config) {
		c.aggregates = a
	}
}

// WithLogger sets the logger.
// Default: slog.Default()
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithConcurrency bounds the number of rows evaluated at once by EvaluateAll
// and Filter.
// Default: runtime.GOMAXPROCS(0)
func WithConcurrency(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithTracer sets the tracer used for batch spans.
// Default: the global OTel tracer provider.
func WithTracer(t trace.Tracer) Option {
	return func(c *config) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithMeter sets the meter used for row counters.
// Default: the global OTel meter provider.
func WithMeter(m metric.Meter) Option {
	return func(c *config) {
		if m != nil {
			c.meter = m
		}
	}
}
