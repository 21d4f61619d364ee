package functions

import (
	"github.com/aleksaelezovic/sparqlee/pkg/sparql/expr"
)

func termTest(op expr.Operator, test func(expr.Term) bool) expr.Function {
	return expr.NewSimpleFunction(op, expr.GenericSignature(1), func(args []expr.Term) (expr.Term, error) {
		return expr.NewBoolean(test(args[0])), nil
	})
}

func isIRI(t expr.Term) bool {
	return t.TermType() == expr.TermTypeNamedNode
}

func isNumeric(t expr.Term) bool {
	l, ok := t.(*expr.Literal)
	return ok && l.Category().IsNumeric()
}

func str(args []expr.Term) (expr.Term, error) {
	switch t := args[0].(type) {
	case *expr.NamedNode:
		return expr.NewSimpleLiteral(t.IRI), nil
	case *expr.Literal:
		return expr.NewSimpleLiteral(t.Lexical()), nil
	}
	return nil, &expr.InvalidArgumentTypesError{Operator: expr.OpStr, Args: args}
}

func lang(args []expr.Term) (expr.Term, error) {
	l, ok := args[0].(*expr.Literal)
	if !ok {
		return nil, &expr.InvalidArgumentTypesError{Operator: expr.OpLang, Args: args}
	}
	return expr.NewSimpleLiteral(l.Language()), nil
}

func datatype(args []expr.Term) (expr.Term, error) {
	l, ok := args[0].(*expr.Literal)
	if !ok {
		return nil, &expr.InvalidArgumentTypesError{Operator: expr.OpDatatype, Args: args}
	}
	return expr.NewNamedNode(l.Datatype()), nil
}

func sameTerm(args []expr.Term) (expr.Term, error) {
	return expr.NewBoolean(expr.SameTerm(args[0], args[1])), nil
}

func termFunctions() []expr.Function {
	return []expr.Function{
		termTest(expr.OpIsIRI, isIRI),
		termTest(expr.OpIsURI, isIRI),
		termTest(expr.OpIsBlank, func(t expr.Term) bool { return t.TermType() == expr.TermTypeBlankNode }),
		termTest(expr.OpIsLiteral, func(t expr.Term) bool { return t.TermType() == expr.TermTypeLiteral }),
		termTest(expr.OpIsNumeric, isNumeric),
		expr.NewSimpleFunction(expr.OpStr, expr.GenericSignature(1), str),
		expr.NewSimpleFunction(expr.OpLang, expr.GenericSignature(1), lang),
		expr.NewSimpleFunction(expr.OpDatatype, expr.GenericSignature(1), datatype),
		expr.NewSimpleFunction(expr.OpSameTerm, expr.GenericSignature(2), sameTerm),
	}
}
