package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/bookshelf/internal/catalog"
)

// SortResult is the JSON payload of the sort command.
type SortResult struct {
	SortBy catalog.SortKey `json:"sort_by"`
}

// NewSortCommand creates the sort command.
func NewSortCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sort <title|author|year>",
		Short: "Save the sort preference",
		Long: `Save the sort key used by later list commands.

Example:
  bookshelf sort year`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSort(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runSort(opts *RootOptions, arg string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	key, err := catalog.ParseSortKey(arg)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidSortKey, "invalid sort key", err)
	}

	sess, err := openSession(cmd, opts, f)
	if err != nil {
		return err
	}
	defer sess.Close()

	// A failed load does not matter here; only the preference is written.
	if err := sess.catalog.SortBy(key); err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidSortKey, "invalid sort key", err)
	}

	if f.IsJSON() {
		return f.Success(SortResult{SortBy: key})
	}
	fmt.Fprintf(f.Writer, "Sort preference set to %s\n", key)
	return nil
}
