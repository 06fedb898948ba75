package source

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/bookshelf/internal/catalog"
)

// FileSource reads the catalog from a YAML or JSON file holding an array of
// books. The file is re-read on every fetch.
type FileSource struct {
	path string
}

// NewFileSource creates a source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Path returns the file this source reads.
func (f *FileSource) Path() string {
	return f.path
}

// FetchAll implements catalog.Source.
func (f *FileSource) FetchAll(ctx context.Context) ([]catalog.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	// YAML is a superset of JSON, so one decoder covers both formats.
	var wire []wireBook
	if err := yaml.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidPayload, f.path, err)
	}

	books, err := toBooks(wire)
	if err != nil {
		return nil, err
	}
	if err := validate(books); err != nil {
		return nil, err
	}
	return books, nil
}
