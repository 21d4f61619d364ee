package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aleksaelezovic/sparqlee/pkg/sparql/expr"
	"github.com/aleksaelezovic/sparqlee/pkg/sparql/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const xsd = "http://www.w3.org/2001/XMLSchema#"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "sparqlee", cmd.Use)

	for _, name := range []string{"eval", "filter", "load"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestEval_NoBindings(t *testing.T) {
	out, err := execute(t, "eval", "1 + 2")
	require.NoError(t, err)
	assert.Equal(t, `row 1: "3"^^<`+xsd+"integer>\n", out)
}

func TestEval_DefaultPrefixes(t *testing.T) {
	out, err := execute(t, "eval", `xsd:integer("12") * 2`)
	require.NoError(t, err)
	assert.Equal(t, `row 1: "24"^^<`+xsd+"integer>\n", out)
}

func TestEval_Bindings(t *testing.T) {
	rows := writeFile(t, t.TempDir(), "rows.yaml", `
- n: 2
- n: '"x"'
- {}
`)
	out, err := execute(t, "eval", "?n * 2", "--bindings", rows)
	require.NoError(t, err)

	got := lines(out)
	require.Len(t, got, 3)
	assert.Equal(t, `row 1: "4"^^<`+xsd+"integer>", got[0])
	assert.True(t, strings.HasPrefix(got[1], "row 2: error: "), got[1])
	assert.True(t, strings.HasPrefix(got[2], "row 3: error: "), got[2])
}

func TestEval_SyntaxError(t *testing.T) {
	_, err := execute(t, "eval", "1 +")
	assert.True(t, errors.Is(err, parser.ErrSyntax), "got %v", err)
}

func TestFilter(t *testing.T) {
	rows := writeFile(t, t.TempDir(), "rows.yaml", `
- n: 1
- n: 5
- n: 10
- n: <http://example.org/a>
`)
	out, err := execute(t, "filter", "?n > 3", "--bindings", rows)
	require.NoError(t, err)
	assert.Equal(t, []string{
		`{?n="5"^^<` + xsd + `integer>}`,
		`{?n="10"^^<` + xsd + `integer>}`,
	}, lines(out))

	_, err = execute(t, "filter", "?n > 3")
	assert.Error(t, err)
}

func TestLoadAndExists(t *testing.T) {
	dir := t.TempDir()
	storeDir := filepath.Join(dir, "store")
	data := writeFile(t, dir, "data.nq", `
<http://example.org/alice> <http://example.org/knows> <http://example.org/bob> .
<http://example.org/bob> <http://example.org/name> "Bob" <http://example.org/g> .
`)
	out, err := execute(t, "load", data, "--store", storeDir)
	require.NoError(t, err)
	assert.Equal(t, "loaded 2 quads into "+storeDir+" (2 total)\n", out)

	cfg := writeFile(t, dir, "sparqlee.yaml", `
prefixes:
  ex: http://example.org/
store:
  path: `+storeDir+`
concurrency: 2
`)
	rows := writeFile(t, dir, "rows.yaml", `
- who: <http://example.org/alice>
- who: <http://example.org/bob>
`)
	out, err = execute(t, "--config", cfg, "eval", "EXISTS { ?who ex:knows ?x }", "--bindings", rows)
	require.NoError(t, err)
	assert.Equal(t, []string{
		`row 1: "true"^^<` + xsd + "boolean>",
		`row 2: "false"^^<` + xsd + "boolean>",
	}, lines(out))

	out, err = execute(t, "--config", cfg, "filter", "EXISTS { GRAPH ex:g { ?who ex:name ?name } }", "--bindings", rows)
	require.NoError(t, err)
	assert.Equal(t, "{?who=<http://example.org/bob>}\n", out)
}

func TestEval_ExistsWithoutStore(t *testing.T) {
	out, err := execute(t, "eval", "EXISTS { ?s ?p ?o }")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "row 1: error: "), out)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	data := writeFile(t, dir, "data.nq", "<http://example.org/a> <http://example.org/b> <http://example.org/c> .\n")

	_, err := execute(t, "load", data)
	assert.ErrorContains(t, err, "no store")

	bad := writeFile(t, dir, "bad.nq", "not n-quads\n")
	_, err = execute(t, "load", bad, "--store", filepath.Join(dir, "store"))
	assert.Error(t, err)
}

func TestConfigErrors(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "eval", "1")
	assert.ErrorContains(t, err, "failed to load config")
}

func TestParseBindings(t *testing.T) {
	rows, err := ParseBindings([]byte(`
- ?x: '"chat"@fr'
  $y: _:b0
`))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	x, ok := rows[0].Get("x")
	require.True(t, ok)
	assert.True(t, expr.SameTerm(expr.NewPlainLiteral("chat", "fr"), x))
	y, ok := rows[0].Get("y")
	require.True(t, ok)
	assert.Equal(t, expr.TermTypeBlankNode, y.TermType())

	_, err = ParseBindings([]byte("- x: '<unterminated'\n"))
	assert.ErrorContains(t, err, "row 1, variable x")

	_, err = ParseBindings([]byte("x: 1\n"))
	assert.Error(t, err)
}
