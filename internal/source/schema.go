package source

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/bookshelf/internal/catalog"
)

//go:embed schema.cue
var schemaCUE string

// ErrInvalidPayload is returned when fetched books fail schema validation.
var ErrInvalidPayload = errors.New("invalid catalog payload")

// Validator checks book lists against the #Catalog CUE definition.
//
// Thread-safety: a cue.Context is not safe for concurrent use, so Validate
// serializes callers.
type Validator struct {
	mu      sync.Mutex
	ctx     *cue.Context
	catalog cue.Value
}

// NewValidator compiles the embedded schema.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Catalog"))
	if !def.Exists() {
		return nil, errors.New("compile catalog schema: #Catalog not defined")
	}

	return &Validator{ctx: ctx, catalog: def}, nil
}

// Validate returns ErrInvalidPayload describing every violation in books.
func (v *Validator) Validate(books []catalog.Book) error {
	if len(books) == 0 {
		return nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	data := v.ctx.Encode(books)
	if err := data.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if err := v.catalog.Unify(data).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPayload, cueerrors.Details(err, nil))
	}
	return nil
}

var defaultValidator = sync.OnceValues(NewValidator)

func validate(books []catalog.Book) error {
	v, err := defaultValidator()
	if err != nil {
		return err
	}
	return v.Validate(books)
}
