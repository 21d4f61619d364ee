package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/aleksaelezovic/sparqlee/pkg/rdf"
	"github.com/aleksaelezovic/sparqlee/pkg/sparql/expr"
	"gopkg.in/yaml.v3"
)

// LoadBindings reads rows from a YAML file. See ParseBindings.
func LoadBindings(path string) ([]expr.Bindings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bindings file: %w", err)
	}
	return ParseBindings(data)
}

// ParseBindings decodes a YAML list of rows. Each row maps variable names to
// terms in N-Triples syntax:
//
//   - x: '"chat"@fr'
//     n: 42
//   - x: <http://example.org/a>
func ParseBindings(data []byte) ([]expr.Bindings, error) {
	var raw []map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse bindings: %w", err)
	}

	rows := make([]expr.Bindings, 0, len(raw))
	for i, r := range raw {
		row := expr.Bindings{}
		for name, text := range r {
			term, err := parseTerm(text)
			if err != nil {
				return nil, fmt.Errorf("row %d, variable %s: %w", i+1, name, err)
			}
			row = row.Extend(strings.TrimLeft(name, "?$"), term)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseTerm(text string) (expr.Term, error) {
	term, err := rdf.ParseTerm(text)
	if err != nil {
		return nil, err
	}
	return expr.FromRDF(term)
}
