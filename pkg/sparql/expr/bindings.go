package expr

import (
	"maps"
	"slices"
	"strings"
)

// maxLayers bounds the number of single-entry layers stacked on a flat map
// before Extend flattens them.
const maxLayers = 8

// Bindings is an immutable mapping from variable names to terms. The zero
// value is empty and ready to use. Extend returns a new mapping and leaves
// the receiver untouched, so Bindings may be shared between goroutines.
type Bindings struct {
	top *layer
}

// A layer is either a flat map (flat != nil) or a single entry on top of a
// parent layer.
type layer struct {
	parent *layer
	flat   map[string]Term
	name   string
	term   Term
	depth  int // single-entry layers down to the nearest flat map
	size   int
}

// NewBindings copies m into a new mapping. Nil terms are skipped.
func NewBindings(m map[string]Term) Bindings {
	flat := make(map[string]Term, len(m))
	for name, term := range m {
		if term != nil {
			flat[name] = term
		}
	}
	return Bindings{top: &layer{flat: flat, size: len(flat)}}
}

// Get returns the term bound to name.
func (b Bindings) Get(name string) (Term, bool) {
	for l := b.top; l != nil; l = l.parent {
		if l.flat != nil {
			t, ok := l.flat[name]
			return t, ok
		}
		if l.name == name {
			return l.term, true
		}
	}
	return nil, false
}

// Has reports whether name is bound.
func (b Bindings) Has(name string) bool {
	_, ok := b.Get(name)
	return ok
}

// Len returns the number of bound variables.
func (b Bindings) Len() int {
	if b.top == nil {
		return 0
	}
	return b.top.size
}

// Extend returns a mapping with name bound to term, replacing any previous
// binding of name. A nil term returns b unchanged.
func (b Bindings) Extend(name string, term Term) Bindings {
	if term == nil {
		return b
	}
	size := b.Len()
	if !b.Has(name) {
		size++
	}
	depth := 1
	if b.top != nil {
		depth = b.top.depth + 1
	}
	if depth > maxLayers {
		flat := b.ToMap()
		flat[name] = term
		return Bindings{top: &layer{flat: flat, size: len(flat)}}
	}
	return Bindings{top: &layer{parent: b.top, name: name, term: term, depth: depth, size: size}}
}

// ToMap returns a fresh map holding every binding.
func (b Bindings) ToMap() map[string]Term {
	out := make(map[string]Term, b.Len())
	var chain []*layer
	for l := b.top; l != nil; l = l.parent {
		if l.flat != nil {
			maps.Copy(out, l.flat)
			break
		}
		chain = append(chain, l)
	}
	// apply from the bottom so later extensions win
	for i := len(chain) - 1; i >= 0; i-- {
		out[chain[i].name] = chain[i].term
	}
	return out
}

// Names returns the bound variable names in sorted order.
func (b Bindings) Names() []string {
	return slices.Sorted(maps.Keys(b.ToMap()))
}

// Range calls fn for each binding in name order until fn returns false.
func (b Bindings) Range(fn func(name string, term Term) bool) {
	m := b.ToMap()
	for _, name := range slices.Sorted(maps.Keys(m)) {
		if !fn(name, m[name]) {
			return
		}
	}
}

// Equal reports whether both mappings bind the same names to the same terms.
func (b Bindings) Equal(other Bindings) bool {
	if b.Len() != other.Len() {
		return false
	}
	equal := true
	b.Range(func(name string, term Term) bool {
		o, ok := other.Get(name)
		equal = ok && SameTerm(term, o)
		return equal
	})
	return equal
}

func (b Bindings) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	first := true
	b.Range(func(name string, term Term) bool {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString("?")
		sb.WriteString(name)
		sb.WriteString("=")
		sb.WriteString(term.String())
		return true
	})
	sb.WriteString("}")
	return sb.String()
}
