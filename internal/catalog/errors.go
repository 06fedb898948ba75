package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSortKey is returned for sort keys outside ByValues.
	ErrInvalidSortKey = errors.New("invalid sort key")

	// ErrSuperseded is returned by Load when a newer load was started
	// before this one completed. Its result was discarded.
	ErrSuperseded = errors.New("load superseded by a newer request")

	// ErrClosed is returned by Load after Close.
	ErrClosed = errors.New("catalog store closed")
)

// FetchError wraps a data source failure with the load that observed it.
type FetchError struct {
	Token string // load token, for log correlation
	Seq   int64  // load sequence number
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch books (load=%s seq=%d): %v", e.Token, e.Seq, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsSuperseded reports whether err means a load result was discarded
// in favour of a newer load.
func IsSuperseded(err error) bool {
	return errors.Is(err, ErrSuperseded)
}
