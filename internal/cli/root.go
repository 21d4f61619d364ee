// Package cli implements the sparqlee command line.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/aleksaelezovic/sparqlee/internal/config"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags and the configuration they resolve to.
type RootOptions struct {
	ConfigPath string
	Verbose    bool

	Config config.Config
	Logger *slog.Logger
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sparqlee",
		Short: "Evaluate SPARQL expressions",
		Long: `sparqlee compiles SPARQL expressions, as found in FILTER and BIND clauses,
and evaluates them over rows of variable bindings. EXISTS tests are answered
from a local quad store.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "YAML configuration file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging on stderr")

	cmd.AddCommand(NewEvalCommand(opts))
	cmd.AddCommand(NewFilterCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))

	return cmd
}

// resolve loads the configuration and sets up logging.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	o.Config = config.Default()
	if o.ConfigPath != "" {
		cfg, err := config.Load(o.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		o.Config = cfg
	}

	level, err := o.Config.LogLevel()
	if err != nil {
		return err
	}
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}
