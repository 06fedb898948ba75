package catalog

import (
	"cmp"
	"math"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Sentinels returned by the year bounds on an empty catalog. They are the
// identity elements of the min/max reductions, not real years; callers that
// display them should check BooksTotal first.
const (
	NoEarliestYear   = math.MaxInt
	NoMostRecentYear = math.MinInt
)

// DefaultLocale is the collation locale used when none is configured.
var DefaultLocale = language.English

// Stats bundles the aggregate views of a snapshot.
type Stats struct {
	SortBy                  SortKey
	BooksTotal              int
	EarliestYearPublished   int
	MostRecentYearPublished int
	AverageNumberOfPages    float64 // NaN when BooksTotal is 0
}

// Comparator orders books by a sort key.
//
// Title and author use locale-aware collation over NFC-normalized text;
// year is numeric. Compare always returns -1, 0 or 1.
//
// A Comparator is not safe for concurrent use; the underlying collator keeps
// internal buffers.
type Comparator struct {
	key SortKey
	col *collate.Collator
}

// NewComparator creates a comparator for key in the given locale.
func NewComparator(key SortKey, locale language.Tag) *Comparator {
	return &Comparator{key: key, col: collate.New(locale)}
}

// Compare returns -1 if a sorts before b, 1 if after, 0 if equal.
func (c *Comparator) Compare(a, b Book) int {
	switch c.key {
	case SortByYear:
		return cmp.Compare(a.Year, b.Year)
	case SortByAuthor:
		return c.col.CompareString(norm.NFC.String(a.Author), norm.NFC.String(b.Author))
	default:
		return c.col.CompareString(norm.NFC.String(a.Title), norm.NFC.String(b.Title))
	}
}

// SortedBooks returns all entities ordered by st.SortBy.
//
// Books are pre-ordered by ID so that ties under the active key come out in
// a deterministic order.
func SortedBooks(st State, locale language.Tag) []Book {
	books := make([]Book, 0, len(st.Entities))
	for _, b := range st.Entities {
		books = append(books, b)
	}
	sort.Slice(books, func(i, j int) bool {
		return books[i].ID < books[j].ID
	})

	c := NewComparator(st.SortBy, locale)
	sort.SliceStable(books, func(i, j int) bool {
		return c.Compare(books[i], books[j]) < 0
	})
	return books
}

// BooksTotal returns the number of entities.
func BooksTotal(st State) int {
	return len(st.Entities)
}

// EarliestYearPublished returns the minimum year, or NoEarliestYear when empty.
func EarliestYearPublished(st State) int {
	earliest := NoEarliestYear
	for _, b := range st.Entities {
		if b.Year < earliest {
			earliest = b.Year
		}
	}
	return earliest
}

// MostRecentYearPublished returns the maximum year, or NoMostRecentYear when empty.
func MostRecentYearPublished(st State) int {
	latest := NoMostRecentYear
	for _, b := range st.Entities {
		if b.Year > latest {
			latest = b.Year
		}
	}
	return latest
}

// AverageNumberOfPages returns the mean page count, or NaN when empty.
func AverageNumberOfPages(st State) float64 {
	if len(st.Entities) == 0 {
		return math.NaN()
	}
	sum := 0
	for _, b := range st.Entities {
		sum += b.Pages
	}
	return float64(sum) / float64(len(st.Entities))
}

// Summarize computes all aggregate views of st.
func Summarize(st State) Stats {
	return Stats{
		SortBy:                  st.SortBy,
		BooksTotal:              BooksTotal(st),
		EarliestYearPublished:   EarliestYearPublished(st),
		MostRecentYearPublished: MostRecentYearPublished(st),
		AverageNumberOfPages:    AverageNumberOfPages(st),
	}
}
