package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/bookshelf/internal/catalog"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Sort string
}

// ListResult is the JSON payload of the list command.
type ListResult struct {
	SortBy catalog.SortKey `json:"sort_by"`
	Total  int             `json:"total"`
	Books  []catalog.Book  `json:"books"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books in the preferred order",
		Long: `List every book in the catalog, ordered by the saved sort preference.

Passing --sort changes the order and saves it as the new preference.

Examples:
  bookshelf list --source ./books.yaml
  bookshelf list --source https://example.com/api/books --sort year
  bookshelf list --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Sort, "sort", "s", "", "sort key to apply and save (title|author|year)")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	var key catalog.SortKey
	if opts.Sort != "" {
		k, err := catalog.ParseSortKey(opts.Sort)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeInvalidSortKey, "invalid --sort", err)
		}
		key = k
	}

	sess, err := openSession(cmd, opts.RootOptions, f)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.requireLoaded(f); err != nil {
		return err
	}
	if key != "" {
		if err := sess.catalog.SortBy(key); err != nil {
			return f.Fail(ExitCommandError, ErrCodeInvalidSortKey, "invalid --sort", err)
		}
	}

	books := sess.catalog.Books()
	if f.IsJSON() {
		return f.Success(ListResult{
			SortBy: sess.catalog.CurrentSort(),
			Total:  len(books),
			Books:  books,
		})
	}

	rows := make([][]any, 0, len(books))
	for _, b := range books {
		rows = append(rows, []any{b.ID, b.Title, b.Author, b.Year, b.Pages})
	}
	f.Table([]any{"ID", "Title", "Author", "Year", "Pages"}, rows)
	return nil
}
