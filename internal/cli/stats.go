package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/roach88/bookshelf/internal/catalog"
)

// StatsResult is the JSON payload of the stats command.
// Year bounds and average are null for an empty catalog.
type StatsResult struct {
	SortBy                  catalog.SortKey `json:"sort_by"`
	BooksTotal              int             `json:"books_total"`
	EarliestYearPublished   *int            `json:"earliest_year_published"`
	MostRecentYearPublished *int            `json:"most_recent_year_published"`
	AverageNumberOfPages    *float64        `json:"average_number_of_pages"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show catalog aggregates",
		Long: `Show the number of books, the earliest and most recent publication
years and the average page count.

Example:
  bookshelf stats --source ./books.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(rootOpts, cmd)
		},
	}
	return cmd
}

func runStats(opts *RootOptions, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	sess, err := openSession(cmd, opts, f)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.requireLoaded(f); err != nil {
		return err
	}

	result := newStatsResult(sess.catalog.Stats())
	if f.IsJSON() {
		return f.Success(result)
	}

	w := f.Writer
	fmt.Fprintf(w, "Books:             %d\n", result.BooksTotal)
	fmt.Fprintf(w, "Earliest year:     %s\n", formatOptionalInt(result.EarliestYearPublished))
	fmt.Fprintf(w, "Most recent year:  %s\n", formatOptionalInt(result.MostRecentYearPublished))
	if result.AverageNumberOfPages != nil {
		fmt.Fprintf(w, "Average pages:     %.1f\n", *result.AverageNumberOfPages)
	} else {
		fmt.Fprintln(w, "Average pages:     -")
	}
	fmt.Fprintf(w, "Sorted by:         %s\n", result.SortBy)
	return nil
}

// newStatsResult maps the empty-catalog sentinels to nil.
func newStatsResult(s catalog.Stats) StatsResult {
	result := StatsResult{
		SortBy:     s.SortBy,
		BooksTotal: s.BooksTotal,
	}
	if s.BooksTotal == 0 {
		return result
	}
	earliest, latest := s.EarliestYearPublished, s.MostRecentYearPublished
	result.EarliestYearPublished = &earliest
	result.MostRecentYearPublished = &latest
	if !math.IsNaN(s.AverageNumberOfPages) {
		avg := s.AverageNumberOfPages
		result.AverageNumberOfPages = &avg
	}
	return result
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
