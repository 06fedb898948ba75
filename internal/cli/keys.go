package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/bookshelf/internal/catalog"
)

// NewKeysCommand creates the keys command.
func NewKeysCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "keys",
		Short:         "List the available sort keys",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			keys := catalog.ByValues()
			if f.IsJSON() {
				return f.Success(keys)
			}
			for _, k := range keys {
				fmt.Fprintln(f.Writer, k)
			}
			return nil
		},
	}
}
