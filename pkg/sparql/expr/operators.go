package expr

// Operator identifies a built-in operator or function. Keyword operators use
// their upper-case SPARQL name; named functions use their IRI.
type Operator string

// Logical and conditional forms
const (
	OpAnd      Operator = "&&"
	OpOr       Operator = "||"
	OpNot      Operator = "!"
	OpIf       Operator = "IF"
	OpCoalesce Operator = "COALESCE"
	OpIn       Operator = "IN"
	OpNotIn    Operator = "NOT IN"
	OpBound    Operator = "BOUND"
)

// Comparison
const (
	OpEqual        Operator = "="
	OpNotEqual     Operator = "!="
	OpLess         Operator = "<"
	OpGreater      Operator = ">"
	OpLessEqual    Operator = "<="
	OpGreaterEqual Operator = ">="
)

// Arithmetic
const (
	OpAdd        Operator = "+"
	OpSubtract   Operator = "-"
	OpMultiply   Operator = "*"
	OpDivide     Operator = "/"
	OpUnaryPlus  Operator = "UPLUS"
	OpUnaryMinus Operator = "UMINUS"
)

// Functions on terms
const (
	OpSameTerm  Operator = "SAMETERM"
	OpIsIRI     Operator = "ISIRI"
	OpIsURI     Operator = "ISURI"
	OpIsBlank   Operator = "ISBLANK"
	OpIsLiteral Operator = "ISLITERAL"
	OpIsNumeric Operator = "ISNUMERIC"
	OpStr       Operator = "STR"
	OpLang      Operator = "LANG"
	OpDatatype  Operator = "DATATYPE"
)

// Functions on strings
const (
	OpStrLen      Operator = "STRLEN"
	OpSubstr      Operator = "SUBSTR"
	OpUCase       Operator = "UCASE"
	OpLCase       Operator = "LCASE"
	OpContains    Operator = "CONTAINS"
	OpStrStarts   Operator = "STRSTARTS"
	OpStrEnds     Operator = "STRENDS"
	OpConcat      Operator = "CONCAT"
	OpRegex       Operator = "REGEX"
	OpLangMatches Operator = "LANGMATCHES"
)

// Functions on numerics
const (
	OpAbs   Operator = "ABS"
	OpCeil  Operator = "CEIL"
	OpFloor Operator = "FLOOR"
	OpRound Operator = "ROUND"
)

// Identifier generation
const (
	OpUUID    Operator = "UUID"
	OpStrUUID Operator = "STRUUID"
)
