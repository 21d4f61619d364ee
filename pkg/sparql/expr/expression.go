package expr

import (
	"fmt"
	"strings"
)

// ExpressionType discriminates expression nodes.
type ExpressionType string

const (
	ExpressionTerm      ExpressionType = "term"
	ExpressionVariable  ExpressionType = "variable"
	ExpressionNamed     ExpressionType = "named"
	ExpressionOperator  ExpressionType = "operator"
	ExpressionAggregate ExpressionType = "aggregate"
	ExpressionExistence ExpressionType = "existence"
)

// Expression is a node of a compiled expression tree. Trees are immutable
// once built and may be shared between goroutines.
type Expression interface {
	ExpressionType() ExpressionType
	String() string
	expression()
}

// Variable references a binding by name, without the leading '?'.
type Variable struct {
	Name string
}

func NewVariable(name string) *Variable {
	return &Variable{Name: strings.TrimPrefix(strings.TrimPrefix(name, "?"), "$")}
}

func (v *Variable) ExpressionType() ExpressionType { return ExpressionVariable }
func (v *Variable) String() string                 { return "?" + v.Name }
func (v *Variable) expression()                    {}

// OperatorCall applies a built-in operator. Func is resolved when the tree
// is compiled.
type OperatorCall struct {
	Operator Operator
	Args     []Expression
	Func     Function
}

func (o *OperatorCall) ExpressionType() ExpressionType { return ExpressionOperator }
func (o *OperatorCall) expression()                    {}

func (o *OperatorCall) String() string {
	return fmt.Sprintf("%s(%s)", o.Operator, joinExpressions(o.Args))
}

// NamedCall applies a function identified by IRI, such as an XSD cast.
type NamedCall struct {
	Name *NamedNode
	Args []Expression
	Func Function
}

func (n *NamedCall) ExpressionType() ExpressionType { return ExpressionNamed }
func (n *NamedCall) expression()                    {}

func (n *NamedCall) String() string {
	return fmt.Sprintf("%s(%s)", n.Name, joinExpressions(n.Args))
}

// Operation is an opaque algebra operation, the input of an EXISTS test. Its
// meaning belongs to whatever ExistenceEvaluator receives it.
type Operation any

// Existence is an EXISTS or NOT EXISTS test.
type Existence struct {
	Not   bool
	Input Operation
}

func (e *Existence) ExpressionType() ExpressionType { return ExpressionExistence }
func (e *Existence) expression()                    {}

func (e *Existence) String() string {
	if e.Not {
		return fmt.Sprintf("NOT EXISTS {%v}", e.Input)
	}
	return fmt.Sprintf("EXISTS {%v}", e.Input)
}

// Aggregate is a set function. A nil Expression means '*', as in COUNT(*).
type Aggregate struct {
	Aggregator string
	Distinct   bool
	Separator  *string
	Expression Expression
}

func (a *Aggregate) ExpressionType() ExpressionType { return ExpressionAggregate }
func (a *Aggregate) expression()                    {}

func (a *Aggregate) String() string {
	var sb strings.Builder
	sb.WriteString(a.Aggregator)
	sb.WriteString("(")
	if a.Distinct {
		sb.WriteString("DISTINCT ")
	}
	if a.Expression == nil {
		sb.WriteString("*")
	} else {
		sb.WriteString(a.Expression.String())
	}
	if a.Separator != nil {
		fmt.Fprintf(&sb, "; SEPARATOR=%q", *a.Separator)
	}
	sb.WriteString(")")
	return sb.String()
}

func joinExpressions(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
