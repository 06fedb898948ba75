package source

import (
	"context"
	"slices"

	"github.com/roach88/bookshelf/internal/catalog"
)

// StaticSource serves a fixed list of books. It is not validated.
type StaticSource struct {
	books []catalog.Book
}

// NewStaticSource creates a source serving a copy of books.
func NewStaticSource(books []catalog.Book) *StaticSource {
	return &StaticSource{books: slices.Clone(books)}
}

// FetchAll implements catalog.Source.
func (s *StaticSource) FetchAll(ctx context.Context) ([]catalog.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(s.books), nil
}
