package expr

import "github.com/aleksaelezovic/sparqlee/pkg/rdf"

// Category classifies a literal by its datatype. It, rather than the datatype
// IRI, is what function resolution dispatches on.
type Category string

const (
	CategoryString   Category = "string"
	CategoryPlain    Category = "plain"  // language-tagged
	CategorySimple   Category = "simple" // no datatype, no language
	CategoryBoolean  Category = "boolean"
	CategoryDateTime Category = "dateTime"
	CategoryOther    Category = "other"   // well-formed but unknown datatype
	CategoryInvalid  Category = "invalid" // lexical form failed to parse

	// Numeric categories
	CategoryInteger            Category = "integer"
	CategoryDecimal            Category = "decimal"
	CategoryFloat              Category = "float"
	CategoryDouble             Category = "double"
	CategoryNonPositiveInteger Category = "nonPositiveInteger"
	CategoryNegativeInteger    Category = "negativeInteger"
	CategoryLong               Category = "long"
	CategoryInt                Category = "int"
	CategoryShort              Category = "short"
	CategoryByte               Category = "byte"
	CategoryNonNegativeInteger Category = "nonNegativeInteger"
	CategoryUnsignedLong       Category = "unsignedLong"
	CategoryUnsignedInt        Category = "unsignedInt"
	CategoryUnsignedShort      Category = "unsignedShort"
	CategoryUnsignedByte       Category = "unsignedByte"
	CategoryPositiveInteger    Category = "positiveInteger"
)

// IntegerCategories lists xsd:integer and every type derived from it.
var IntegerCategories = []Category{
	CategoryInteger,
	CategoryNonPositiveInteger,
	CategoryNegativeInteger,
	CategoryLong,
	CategoryInt,
	CategoryShort,
	CategoryByte,
	CategoryNonNegativeInteger,
	CategoryUnsignedLong,
	CategoryUnsignedInt,
	CategoryUnsignedShort,
	CategoryUnsignedByte,
	CategoryPositiveInteger,
}

// NumericCategories lists every numeric category.
var NumericCategories = append(append([]Category{}, IntegerCategories...),
	CategoryDecimal, CategoryFloat, CategoryDouble)

// StringCategories lists the categories whose value is their lexical form.
var StringCategories = []Category{CategoryString, CategoryPlain, CategorySimple}

var datatypeCategories = map[string]Category{
	rdf.XSDNamespace + "string":             CategoryString,
	rdf.XSDNamespace + "boolean":            CategoryBoolean,
	rdf.XSDNamespace + "dateTime":           CategoryDateTime,
	rdf.XSDNamespace + "integer":            CategoryInteger,
	rdf.XSDNamespace + "decimal":            CategoryDecimal,
	rdf.XSDNamespace + "float":              CategoryFloat,
	rdf.XSDNamespace + "double":             CategoryDouble,
	rdf.XSDNamespace + "nonPositiveInteger": CategoryNonPositiveInteger,
	rdf.XSDNamespace + "negativeInteger":    CategoryNegativeInteger,
	rdf.XSDNamespace + "long":               CategoryLong,
	rdf.XSDNamespace + "int":                CategoryInt,
	rdf.XSDNamespace + "short":              CategoryShort,
	rdf.XSDNamespace + "byte":               CategoryByte,
	rdf.XSDNamespace + "nonNegativeInteger": CategoryNonNegativeInteger,
	rdf.XSDNamespace + "unsignedLong":       CategoryUnsignedLong,
	rdf.XSDNamespace + "unsignedInt":        CategoryUnsignedInt,
	rdf.XSDNamespace + "unsignedShort":      CategoryUnsignedShort,
	rdf.XSDNamespace + "unsignedByte":       CategoryUnsignedByte,
	rdf.XSDNamespace + "positiveInteger":    CategoryPositiveInteger,
}

// Categorize maps a datatype IRI to its category. Unknown datatypes are
// CategoryOther.
func Categorize(datatype string) Category {
	if c, ok := datatypeCategories[datatype]; ok {
		return c
	}
	return CategoryOther
}

// DatatypeOf returns the datatype IRI for a typed category. It reports false
// for plain, simple, other and invalid, which carry no fixed datatype.
func DatatypeOf(c Category) (string, bool) {
	switch c {
	case CategoryPlain, CategorySimple, CategoryOther, CategoryInvalid:
		return "", false
	}
	return rdf.XSDNamespace + string(c), true
}

// IsNumeric reports whether c is one of the numeric categories.
func (c Category) IsNumeric() bool {
	return c.IsInteger() || c == CategoryDecimal || c == CategoryFloat || c == CategoryDouble
}

// IsInteger reports whether c is xsd:integer or derived from it.
func (c Category) IsInteger() bool {
	_, ok := integerBounds[c]
	return ok
}

// IsString reports whether c is string, plain or simple.
func (c Category) IsString() bool {
	return c == CategoryString || c == CategoryPlain || c == CategorySimple
}

// Type returns the category as an argument type.
func (c Category) Type() ArgumentType {
	return ArgumentType(c)
}
