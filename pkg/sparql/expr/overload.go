package expr

import (
	"fmt"
	"strings"
)

// OverloadMap maps argument signatures of a fixed arity to implementations.
type OverloadMap struct {
	arity int
	impls map[string]Application
}

func NewOverloadMap(arity int) *OverloadMap {
	return &OverloadMap{arity: arity, impls: make(map[string]Application)}
}

func signatureKey(sig []ArgumentType) string {
	parts := make([]string, len(sig))
	for i, t := range sig {
		parts[i] = string(t)
	}
	return strings.Join(parts, "\x00")
}

// Arity returns the arity shared by every signature in the map.
func (m *OverloadMap) Arity() int { return m.arity }

// Len returns the number of registered signatures.
func (m *OverloadMap) Len() int { return len(m.impls) }

// Add registers impl for sig.
func (m *OverloadMap) Add(sig []ArgumentType, impl Application) error {
	if len(sig) != m.arity {
		return fmt.Errorf("%w: signature %v has %d types, map arity is %d", ErrInvalidArity, sig, len(sig), m.arity)
	}
	key := signatureKey(sig)
	if _, exists := m.impls[key]; exists {
		return fmt.Errorf("%w: %v", ErrDuplicateOverload, sig)
	}
	m.impls[key] = impl
	return nil
}

// Lookup finds the implementation registered for exactly sig.
func (m *OverloadMap) Lookup(sig []ArgumentType) (Application, bool) {
	impl, ok := m.impls[signatureKey(sig)]
	return impl, ok
}

// Resolve finds the implementation for the dispatch keys of args, falling
// back to the generic signature.
func (m *OverloadMap) Resolve(args []Term) (Application, bool) {
	if impl, ok := m.Lookup(DispatchKeys(args)); ok {
		return impl, true
	}
	return m.Lookup(GenericSignature(len(args)))
}

// OverloadedFunction dispatches on the argument signature. The overload map
// must not be modified once the function is built.
type OverloadedFunction struct {
	op        Operator
	overloads *OverloadMap
}

func NewOverloadedFunction(op Operator, overloads *OverloadMap) *OverloadedFunction {
	return &OverloadedFunction{op: op, overloads: overloads}
}

func (f *OverloadedFunction) Class() FunctionClass { return ClassOverloaded }
func (f *OverloadedFunction) Operator() Operator   { return f.op }
func (f *OverloadedFunction) Arity() int           { return f.overloads.arity }
func (f *OverloadedFunction) isFunction()          {}

// Overloads returns the number of registered signatures.
func (f *OverloadedFunction) Overloads() int { return f.overloads.Len() }

func (f *OverloadedFunction) Apply(args []Term) (Term, error) {
	if len(args) != f.overloads.arity {
		return nil, &InvalidArityError{Operator: f.op, Got: len(args), Min: f.overloads.arity, Max: f.overloads.arity}
	}
	impl, ok := f.overloads.Resolve(args)
	if !ok {
		return nil, &InvalidArgumentTypesError{Operator: f.op, Args: args}
	}
	return impl(args)
}
