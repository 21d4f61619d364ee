package expr

import (
	"context"
	"slices"
)

// ArgumentType is a dispatch key: TypeTerm, a term type or a literal
// category.
type ArgumentType string

// TypeTerm matches any term. A signature made only of TypeTerm is the
// generic signature of its arity.
const TypeTerm ArgumentType = "term"

// Term-type argument types, for convenience.
const (
	TypeNamedNode = ArgumentType(TermTypeNamedNode)
	TypeBlankNode = ArgumentType(TermTypeBlankNode)
	TypeLiteral   = ArgumentType(TermTypeLiteral)
)

// FunctionClass discriminates how a function receives its arguments.
type FunctionClass string

const (
	ClassSimple     FunctionClass = "simple"
	ClassOverloaded FunctionClass = "overloaded"
	ClassSpecial    FunctionClass = "special"
)

// Function is a catalogue entry. The set is closed: *SimpleFunction,
// *OverloadedFunction and *SpecialFunction.
type Function interface {
	Class() FunctionClass
	Operator() Operator
	isFunction()
}

// Applicable is implemented by functions applied to evaluated arguments.
type Applicable interface {
	Function
	Apply(args []Term) (Term, error)
}

// Application is the implementation of a simple function or of one overload.
type Application func(args []Term) (Term, error)

// Evaluator evaluates an expression against bindings. Special functions
// receive one to evaluate their arguments on demand.
type Evaluator interface {
	Evaluate(ctx context.Context, e Expression, b Bindings) (Term, error)
}

// SpecialApplication receives its arguments unevaluated.
type SpecialApplication func(ctx context.Context, args []Expression, b Bindings, ev Evaluator) (Term, error)

// ExistenceEvaluator decides EXISTS operations for a row.
type ExistenceEvaluator interface {
	Exists(ctx context.Context, op Operation, b Bindings) (bool, error)
}

// AggregateEvaluator supplies the value of an aggregate for the current
// group.
type AggregateEvaluator interface {
	Aggregate(ctx context.Context, a *Aggregate, b Bindings) (Term, error)
}

// FunctionResolver looks up catalogue entries.
type FunctionResolver interface {
	Operator(op Operator) (Function, bool)
	Named(iri string) (Function, bool)
}

// GenericSignature returns [TypeTerm]×arity.
func GenericSignature(arity int) []ArgumentType {
	sig := make([]ArgumentType, arity)
	for i := range sig {
		sig[i] = TypeTerm
	}
	return sig
}

func isGeneric(sig []ArgumentType) bool {
	for _, t := range sig {
		if t != TypeTerm {
			return false
		}
	}
	return true
}

// DispatchKeys returns the dispatch key of each argument.
func DispatchKeys(args []Term) []ArgumentType {
	keys := make([]ArgumentType, len(args))
	for i, arg := range args {
		keys[i] = arg.DispatchKey()
	}
	return keys
}

// ===== Simple functions =====

// SimpleFunction has a single signature and implementation.
type SimpleFunction struct {
	op    Operator
	types []ArgumentType
	apply Application
}

func NewSimpleFunction(op Operator, types []ArgumentType, apply Application) *SimpleFunction {
	return &SimpleFunction{op: op, types: slices.Clone(types), apply: apply}
}

func (f *SimpleFunction) Class() FunctionClass { return ClassSimple }
func (f *SimpleFunction) Operator() Operator   { return f.op }
func (f *SimpleFunction) Arity() int           { return len(f.types) }
func (f *SimpleFunction) isFunction()          {}

// Signature returns a copy of the declared argument types.
func (f *SimpleFunction) Signature() []ArgumentType {
	return slices.Clone(f.types)
}

// Accepts reports whether args match the signature exactly, or the
// signature is generic.
func (f *SimpleFunction) Accepts(args []Term) bool {
	if len(args) != len(f.types) {
		return false
	}
	return isGeneric(f.types) || slices.Equal(DispatchKeys(args), f.types)
}

func (f *SimpleFunction) Apply(args []Term) (Term, error) {
	if len(args) != len(f.types) {
		return nil, &InvalidArityError{Operator: f.op, Got: len(args), Min: len(f.types), Max: len(f.types)}
	}
	if !f.Accepts(args) {
		return nil, &InvalidArgumentTypesError{Operator: f.op, Args: args}
	}
	return f.apply(args)
}

// ===== Special functions =====

// SpecialFunction evaluates its own arguments. MaxArity -1 means variadic.
type SpecialFunction struct {
	op       Operator
	minArity int
	maxArity int
	apply    SpecialApplication
}

func NewSpecialFunction(op Operator, minArity, maxArity int, apply SpecialApplication) *SpecialFunction {
	return &SpecialFunction{op: op, minArity: minArity, maxArity: maxArity, apply: apply}
}

func (f *SpecialFunction) Class() FunctionClass { return ClassSpecial }
func (f *SpecialFunction) Operator() Operator   { return f.op }
func (f *SpecialFunction) isFunction()          {}

// Arity returns the accepted argument count bounds.
func (f *SpecialFunction) Arity() (minArity, maxArity int) {
	return f.minArity, f.maxArity
}

func (f *SpecialFunction) Apply(ctx context.Context, args []Expression, b Bindings, ev Evaluator) (Term, error) {
	if len(args) < f.minArity || (f.maxArity >= 0 && len(args) > f.maxArity) {
		return nil, &InvalidArityError{Operator: f.op, Got: len(args), Min: f.minArity, Max: f.maxArity}
	}
	return f.apply(ctx, args, b, ev)
}
