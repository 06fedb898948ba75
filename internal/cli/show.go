package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Select a book and show its details",
		Long: `Select the book with the given ID and print it.

Exits with status 1 if no book has that ID.

Example:
  bookshelf show 42 --source ./books.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runShow(opts *RootOptions, id string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	sess, err := openSession(cmd, opts, f)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.requireLoaded(f); err != nil {
		return err
	}

	sess.catalog.Select(id)
	book, found := sess.catalog.SelectedEntity()
	if !found {
		return f.Fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("book %q not found", id), nil)
	}

	if f.IsJSON() {
		return f.Success(book)
	}
	w := f.Writer
	fmt.Fprintf(w, "ID:      %s\n", book.ID)
	fmt.Fprintf(w, "Title:   %s\n", book.Title)
	fmt.Fprintf(w, "Author:  %s\n", book.Author)
	fmt.Fprintf(w, "Year:    %d\n", book.Year)
	fmt.Fprintf(w, "Pages:   %d\n", book.Pages)
	return nil
}
