// Package functions holds the built-in SPARQL operators and functions and the
// catalogue that the evaluator and the expression compiler resolve them from.
package functions

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/aleksaelezovic/sparqlee/pkg/sparql/expr"
)

var (
	ErrFrozen            = errors.New("catalogue is frozen")
	ErrDuplicateFunction = errors.New("function already registered")
)

// Catalogue maps operators and function IRIs to implementations. It is
// populated at start-up, frozen, then shared read-only; lookups take no lock.
type Catalogue struct {
	operators map[expr.Operator]expr.Function
	named     map[string]expr.Function
	frozen    bool
}

// NewCatalogue returns an empty catalogue.
func NewCatalogue() *Catalogue {
	return &Catalogue{
		operators: make(map[expr.Operator]expr.Function),
		named:     make(map[string]expr.Function),
	}
}

// NewBuiltinCatalogue returns an unfrozen catalogue holding every built-in,
// ready for extension functions to be registered.
func NewBuiltinCatalogue() *Catalogue {
	c := NewCatalogue()
	for _, f := range builtinOperators() {
		if err := c.RegisterOperator(f); err != nil {
			panic(err)
		}
	}
	for iri, f := range builtinNamed() {
		if err := c.RegisterNamed(iri, f); err != nil {
			panic(err)
		}
	}
	return c
}

var (
	builtinsOnce sync.Once
	builtins     *Catalogue
)

// Builtins returns the shared frozen catalogue of built-ins.
func Builtins() *Catalogue {
	builtinsOnce.Do(func() {
		builtins = NewBuiltinCatalogue().Freeze()
	})
	return builtins
}

// RegisterOperator adds f under its operator. Keyword operators are stored
// upper-case.
func (c *Catalogue) RegisterOperator(f expr.Function) error {
	if c.frozen {
		return ErrFrozen
	}
	op := normalize(f.Operator())
	if _, exists := c.operators[op]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateFunction, op)
	}
	c.operators[op] = f
	return nil
}

// RegisterNamed adds f under a function IRI.
func (c *Catalogue) RegisterNamed(iri string, f expr.Function) error {
	if c.frozen {
		return ErrFrozen
	}
	if _, exists := c.named[iri]; exists {
		return fmt.Errorf("%w: <%s>", ErrDuplicateFunction, iri)
	}
	c.named[iri] = f
	return nil
}

// Freeze forbids further registration and returns c.
func (c *Catalogue) Freeze() *Catalogue {
	c.frozen = true
	return c
}

// Frozen reports whether Freeze has been called.
func (c *Catalogue) Frozen() bool { return c.frozen }

// Operator looks up a built-in operator, case-insensitively.
func (c *Catalogue) Operator(op expr.Operator) (expr.Function, bool) {
	f, ok := c.operators[normalize(op)]
	return f, ok
}

// Named looks up a function by IRI.
func (c *Catalogue) Named(iri string) (expr.Function, bool) {
	f, ok := c.named[iri]
	return f, ok
}

// Operators returns the registered operators in sorted order.
func (c *Catalogue) Operators() []expr.Operator {
	ops := make([]expr.Operator, 0, len(c.operators))
	for op := range c.operators {
		ops = append(ops, op)
	}
	slices.Sort(ops)
	return ops
}

// NamedFunctions returns the registered function IRIs in sorted order.
func (c *Catalogue) NamedFunctions() []string {
	iris := make([]string, 0, len(c.named))
	for iri := range c.named {
		iris = append(iris, iri)
	}
	slices.Sort(iris)
	return iris
}

func normalize(op expr.Operator) expr.Operator {
	return expr.Operator(strings.ToUpper(string(op)))
}

func builtinOperators() []expr.Function {
	var fns []expr.Function
	fns = append(fns, logicalFunctions()...)
	fns = append(fns, arithmeticFunctions()...)
	fns = append(fns, comparisonFunctions()...)
	fns = append(fns, termFunctions()...)
	fns = append(fns, stringFunctions()...)
	fns = append(fns, numericFunctions()...)
	fns = append(fns, identifierFunctions()...)
	return fns
}

func builtinNamed() map[string]expr.Function {
	return castFunctions()
}

// table builds the overload map of a built-in.
type table struct {
	overloads *expr.OverloadMap
}

func newTable(arity int) *table {
	return &table{overloads: expr.NewOverloadMap(arity)}
}

// add panics on a bad signature: the built-in tables are static.
func (t *table) add(impl expr.Application, sig ...expr.ArgumentType) *table {
	if err := t.overloads.Add(sig, impl); err != nil {
		panic(err)
	}
	return t
}

func (t *table) function(op expr.Operator) *expr.OverloadedFunction {
	return expr.NewOverloadedFunction(op, t.overloads)
}

func types(categories ...expr.Category) []expr.ArgumentType {
	out := make([]expr.ArgumentType, len(categories))
	for i, c := range categories {
		out[i] = c.Type()
	}
	return out
}

func literal(t expr.Term) *expr.Literal {
	return t.(*expr.Literal)
}
