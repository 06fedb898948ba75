// Package catalog provides the in-memory book catalog store.
//
// A Store holds three pieces of state:
//   - Entities: books keyed by ID, replaced wholesale on every successful load
//   - SortBy: the active sort key (title, author or year)
//   - Selection: an optional weak reference to one book ID
//
// Every mutation produces a new immutable State snapshot with a bumped
// Version. Derived views (sorted books, totals, year bounds, average pages)
// are pure functions of a snapshot; the Store memoizes the sorted list per
// Version.
//
// # Loading
//
// Loads follow switch-latest ordering. Each load is stamped with a sequence
// number from a monotonic Clock; starting a new load cancels the previous
// one, and a result is applied only when its sequence number is still the
// latest issued. Superseded results are discarded with ErrSuperseded.
//
// # Persistence
//
// On construction the Store restores the sort preference from Preferences
// under DefaultStorageKey and then registers an observer that writes
// {"by": <key>} after every patch. Malformed records are logged and ignored.
package catalog
