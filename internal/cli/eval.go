package cli

import (
	"fmt"

	"github.com/aleksaelezovic/sparqlee/internal/encoding"
	"github.com/aleksaelezovic/sparqlee/internal/storage"
	"github.com/aleksaelezovic/sparqlee/pkg/sparql/evaluator"
	"github.com/aleksaelezovic/sparqlee/pkg/sparql/expr"
	"github.com/aleksaelezovic/sparqlee/pkg/sparql/parser"
	"github.com/aleksaelezovic/sparqlee/pkg/store"
	"github.com/spf13/cobra"
)

type evalOptions struct {
	bindings string
	store    string
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &evalOptions{}
	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate an expression for every row",
		Long: `Evaluate an expression for every row of a bindings file and print one
result per row. Without --bindings the expression is evaluated once over an
empty row.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, rootOpts, opts, args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.bindings, "bindings", "b", "", "YAML file of rows")
	cmd.Flags().StringVarP(&opts.store, "store", "s", "", "badger directory answering EXISTS (overrides store.path)")
	return cmd
}

// NewFilterCommand creates the filter command.
func NewFilterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &evalOptions{}
	cmd := &cobra.Command{
		Use:   "filter <expression>",
		Short: "Print the rows an expression accepts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilter(cmd, rootOpts, opts, args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.bindings, "bindings", "b", "", "YAML file of rows")
	cmd.Flags().StringVarP(&opts.store, "store", "s", "", "badger directory answering EXISTS (overrides store.path)")
	_ = cmd.MarkFlagRequired("bindings")
	return cmd
}

func runEval(cmd *cobra.Command, rootOpts *RootOptions, opts *evalOptions, input string) error {
	e, rows, err := prepare(rootOpts, opts, input)
	if err != nil {
		return err
	}
	ev, closeStore, err := newEvaluator(rootOpts, opts)
	if err != nil {
		return err
	}
	defer closeStore()

	results, err := ev.EvaluateAll(cmd.Context(), e, rows)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(out, "row %d: error: %v\n", r.Index+1, r.Err)
			continue
		}
		fmt.Fprintf(out, "row %d: %s\n", r.Index+1, r.Term)
	}
	return nil
}

func runFilter(cmd *cobra.Command, rootOpts *RootOptions, opts *evalOptions, input string) error {
	e, rows, err := prepare(rootOpts, opts, input)
	if err != nil {
		return err
	}
	ev, closeStore, err := newEvaluator(rootOpts, opts)
	if err != nil {
		return err
	}
	defer closeStore()

	kept, err := ev.Filter(cmd.Context(), e, rows)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, row := range kept {
		fmt.Fprintln(out, row.String())
	}
	rootOpts.Logger.Info("filter done", "rows", len(rows), "kept", len(kept))
	return nil
}

// prepare compiles the expression and reads the rows.
func prepare(rootOpts *RootOptions, opts *evalOptions, input string) (expr.Expression, []expr.Bindings, error) {
	e, err := parser.ParseExpression(input,
		parser.WithPrefixes(rootOpts.Config.Prefixes),
		parser.WithBase(rootOpts.Config.Base),
	)
	if err != nil {
		return nil, nil, err
	}
	rootOpts.Logger.Debug("compiled expression", "expression", e.String())

	rows := []expr.Bindings{{}}
	if opts.bindings != "" {
		if rows, err = LoadBindings(opts.bindings); err != nil {
			return nil, nil, err
		}
	}
	return e, rows, nil
}

// newEvaluator builds an evaluator, backed by a store when one is
// configured. The returned func closes the store.
func newEvaluator(rootOpts *RootOptions, opts *evalOptions) (*evaluator.Evaluator, func(), error) {
	evalOpts := []evaluator.Option{
		evaluator.WithLogger(rootOpts.Logger),
		evaluator.WithConcurrency(rootOpts.Config.Concurrency),
	}

	path := opts.store
	if path == "" {
		path = rootOpts.Config.Store.Path
	}
	if path == "" {
		return evaluator.NewEvaluator(evalOpts...), func() {}, nil
	}

	ts, err := openStore(rootOpts, path)
	if err != nil {
		return nil, nil, err
	}
	evalOpts = append(evalOpts, evaluator.WithExistence(store.NewPatternExistence(ts)))
	closeStore := func() {
		if err := ts.Close(); err != nil {
			rootOpts.Logger.Warn("failed to close store", "path", path, "error", err)
		}
	}
	return evaluator.NewEvaluator(evalOpts...), closeStore, nil
}

func openStore(rootOpts *RootOptions, path string) (*store.TripleStore, error) {
	kv, err := storage.OpenBadger(path, storage.Options{Logger: rootOpts.Logger})
	if err != nil {
		return nil, err
	}
	rootOpts.Logger.Debug("opened store", "path", path)
	return store.NewTripleStore(kv, encoding.NewCodec()), nil
}
