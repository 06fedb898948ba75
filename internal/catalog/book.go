package catalog

import "fmt"

// Book is a single catalog record.
type Book struct {
	ID     string `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Author string `json:"author" yaml:"author"`
	Year   int    `json:"year" yaml:"year"`
	Pages  int    `json:"pages" yaml:"pages"`
}

// SortKey names the field the catalog is ordered by.
type SortKey string

const (
	SortByTitle  SortKey = "title"
	SortByAuthor SortKey = "author"
	SortByYear   SortKey = "year"
)

// DefaultSortKey is the sort key of a freshly constructed store.
const DefaultSortKey = SortByTitle

var byValues = [...]SortKey{SortByTitle, SortByAuthor, SortByYear}

// ByValues returns the selectable sort keys in display order.
// The returned slice is a copy and may be modified by the caller.
func ByValues() []SortKey {
	out := make([]SortKey, len(byValues))
	copy(out, byValues[:])
	return out
}

// Valid reports whether k is one of the selectable sort keys.
func (k SortKey) Valid() bool {
	for _, v := range byValues {
		if v == k {
			return true
		}
	}
	return false
}

func (k SortKey) String() string {
	return string(k)
}

// ParseSortKey converts s to a SortKey.
// Matching is exact; anything outside ByValues yields ErrInvalidSortKey.
func ParseSortKey(s string) (SortKey, error) {
	k := SortKey(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q (want one of %v)", ErrInvalidSortKey, s, ByValues())
	}
	return k, nil
}
