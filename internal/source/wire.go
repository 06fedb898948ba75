package source

import (
	"fmt"
	"math"
	"strconv"

	"github.com/roach88/bookshelf/internal/catalog"
)

// wireBook is the on-the-wire book shape. Data services emit numeric or
// string identifiers; both are normalized to strings.
type wireBook struct {
	ID     any    `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Author string `json:"author" yaml:"author"`
	Year   int    `json:"year" yaml:"year"`
	Pages  int    `json:"pages" yaml:"pages"`
}

func toBooks(wire []wireBook) ([]catalog.Book, error) {
	books := make([]catalog.Book, 0, len(wire))
	for i, w := range wire {
		id, err := formatID(w.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: book %d: %v", ErrInvalidPayload, i, err)
		}
		books = append(books, catalog.Book{
			ID:     id,
			Title:  w.Title,
			Author: w.Author,
			Year:   w.Year,
			Pages:  w.Pages,
		})
	}
	return books, nil
}

func formatID(v any) (string, error) {
	switch id := v.(type) {
	case string:
		return id, nil
	case int:
		return strconv.Itoa(id), nil
	case int64:
		return strconv.FormatInt(id, 10), nil
	case uint64:
		return strconv.FormatUint(id, 10), nil
	case float64:
		if id != math.Trunc(id) || math.IsInf(id, 0) {
			return "", fmt.Errorf("non-integer id %v", id)
		}
		return strconv.FormatFloat(id, 'f', -1, 64), nil
	case nil:
		return "", fmt.Errorf("missing id")
	default:
		return "", fmt.Errorf("unsupported id type %T", v)
	}
}
