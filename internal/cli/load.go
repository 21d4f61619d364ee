package cli

import (
	"fmt"
	"os"

	"github.com/aleksaelezovic/sparqlee/pkg/rdf"
	"github.com/spf13/cobra"
)

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	var storePath string
	cmd := &cobra.Command{
		Use:   "load <file.nq>",
		Short: "Load N-Quads into a store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, rootOpts, storePath, args[0])
		},
	}
	cmd.Flags().StringVarP(&storePath, "store", "s", "", "badger directory (overrides store.path)")
	return cmd
}

func runLoad(cmd *cobra.Command, rootOpts *RootOptions, storePath, file string) error {
	if storePath == "" {
		storePath = rootOpts.Config.Store.Path
	}
	if storePath == "" {
		return fmt.Errorf("no store: pass --store or set store.path")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}
	quads, err := rdf.NewNQuadsParser(string(data)).Parse()
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", file, err)
	}

	ts, err := openStore(rootOpts, storePath)
	if err != nil {
		return err
	}
	defer func() { _ = ts.Close() }()

	written, err := ts.InsertQuads(quads)
	if err != nil {
		return fmt.Errorf("failed to insert quads: %w", err)
	}
	count, err := ts.Count()
	if err != nil {
		return err
	}
	rootOpts.Logger.Debug("loaded quads", "file", file, "parsed", len(quads), "written", written)
	fmt.Fprintf(cmd.OutOrStdout(), "loaded %d quads into %s (%d total)\n", written, storePath, count)
	return nil
}
