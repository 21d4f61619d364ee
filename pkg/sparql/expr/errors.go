package expr

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error produced during evaluation matches exactly one of
// these with errors.Is.
var (
	ErrInvalidArgumentTypes = errors.New("invalid argument types")
	ErrInvalidArity         = errors.New("invalid arity")
	ErrEBVCoercion          = errors.New("cannot coerce term to EBV")
	ErrUnboundVariable      = errors.New("unbound variable")
	ErrUnimplemented        = errors.New("unimplemented")
	ErrExpression           = errors.New("expression error")
)

// ErrDuplicateOverload is returned when an overload map already holds an
// implementation for a signature. It is a construction error, not an
// evaluation error.
var ErrDuplicateOverload = errors.New("duplicate overload")

// InvalidArgumentTypesError reports that no implementation accepts the
// dispatch keys of the evaluated arguments.
type InvalidArgumentTypesError struct {
	Operator Operator
	Args     []Term
}

func (e *InvalidArgumentTypesError) Error() string {
	keys := make([]string, len(e.Args))
	for i, arg := range e.Args {
		if arg == nil {
			keys[i] = "<nil>"
			continue
		}
		keys[i] = string(arg.DispatchKey())
	}
	return fmt.Sprintf("%s: no implementation of %s for (%s)", ErrInvalidArgumentTypes, e.Operator, strings.Join(keys, ", "))
}

func (e *InvalidArgumentTypesError) Is(target error) bool {
	return target == ErrInvalidArgumentTypes
}

// InvalidArityError reports a call with too few or too many arguments. Max
// is -1 for variadic functions.
type InvalidArityError struct {
	Operator Operator
	Got      int
	Min      int
	Max      int
}

func (e *InvalidArityError) Error() string {
	switch {
	case e.Min == e.Max:
		return fmt.Sprintf("%s: %s expects %d arguments, got %d", ErrInvalidArity, e.Operator, e.Min, e.Got)
	case e.Max < 0:
		return fmt.Sprintf("%s: %s expects at least %d arguments, got %d", ErrInvalidArity, e.Operator, e.Min, e.Got)
	default:
		return fmt.Sprintf("%s: %s expects %d to %d arguments, got %d", ErrInvalidArity, e.Operator, e.Min, e.Max, e.Got)
	}
}

func (e *InvalidArityError) Is(target error) bool {
	return target == ErrInvalidArity
}

// EBVCoercionError reports a term with no effective boolean value.
type EBVCoercionError struct {
	Term Term
}

func (e *EBVCoercionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrEBVCoercion, e.Term)
}

func (e *EBVCoercionError) Is(target error) bool {
	return target == ErrEBVCoercion
}

// UnboundVariableError reports a variable missing from the bindings.
type UnboundVariableError struct {
	Name string
}

func (e *UnboundVariableError) Error() string {
	return fmt.Sprintf("%s: ?%s", ErrUnboundVariable, e.Name)
}

func (e *UnboundVariableError) Is(target error) bool {
	return target == ErrUnboundVariable
}

// UnimplementedError reports an expression or function the evaluator cannot
// handle, such as a named function missing from the catalogue.
type UnimplementedError struct {
	What string
}

func (e *UnimplementedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnimplemented, e.What)
}

func (e *UnimplementedError) Is(target error) bool {
	return target == ErrUnimplemented
}

// ExpressionError is a domain error raised by a function implementation,
// e.g. division by zero or an invalid regular expression.
type ExpressionError struct {
	Operator Operator
	Err      error
}

func (e *ExpressionError) Error() string {
	return fmt.Sprintf("%s in %s: %v", ErrExpression, e.Operator, e.Err)
}

func (e *ExpressionError) Is(target error) bool {
	return target == ErrExpression
}

func (e *ExpressionError) Unwrap() error {
	return e.Err
}

// NewExpressionError wraps a domain failure of op.
func NewExpressionError(op Operator, format string, args ...any) *ExpressionError {
	return &ExpressionError{Operator: op, Err: fmt.Errorf(format, args...)}
}
