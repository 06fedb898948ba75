package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// Environment variables consulted when the matching flag is not set.
const (
	EnvSource   = "BOOKSHELF_SOURCE"
	EnvDatabase = "BOOKSHELF_DB"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string
	Source   string
	Locale   string
	Timeout  time.Duration
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the bookshelf CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "bookshelf",
		Short: "bookshelf - browse a book catalog",
		Long: `Browse a book catalog fetched from a data service.

The catalog is loaded from --source (an http(s) URL serving a JSON array of
books, or a YAML/JSON file). The sort preference is remembered across runs in
the SQLite database given by --db.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			applyEnv(cmd, "source", EnvSource, &opts.Source)
			applyEnv(cmd, "db", EnvDatabase, &opts.Database)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "bookshelf.db", "path to SQLite preferences database")
	cmd.PersistentFlags().StringVar(&opts.Source, "source", "", "catalog source: http(s) URL or YAML/JSON file")
	cmd.PersistentFlags().StringVar(&opts.Locale, "locale", "en", "collation locale for title/author ordering (BCP 47)")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "timeout for loading the catalog")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewSortCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewKeysCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// applyEnv fills *dst from the environment when flag was not given.
func applyEnv(cmd *cobra.Command, flag, env string, dst *string) {
	if cmd.Flags().Changed(flag) {
		return
	}
	if v, ok := os.LookupEnv(env); ok && v != "" {
		*dst = v
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
