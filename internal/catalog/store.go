package catalog

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/text/language"
)

// DefaultStorageKey is the Preferences key holding the sort preference.
const DefaultStorageKey = "sortBy"

// Source fetches the full book list from the remote data service.
type Source interface {
	FetchAll(ctx context.Context) ([]Book, error)
}

// Preferences is the persistent key-value storage used for the sort
// preference. Get reports false when the key is absent.
type Preferences interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// LoadOutcome describes a load that was not superseded.
// Err is nil when the fetched books were applied.
type LoadOutcome struct {
	Token string
	Seq   int64
	Count int
	Err   error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load and persistence diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLocale sets the collation locale for title and author ordering.
func WithLocale(tag language.Tag) Option {
	return func(s *Store) {
		s.locale = tag
	}
}

// WithTokenGenerator overrides the load token generator (for testing).
func WithTokenGenerator(gen TokenGenerator) Option {
	return func(s *Store) {
		if gen != nil {
			s.tokens = gen
		}
	}
}

// WithStorageKey overrides the Preferences key of the sort preference.
func WithStorageKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.storageKey = key
		}
	}
}

// WithLoadTimeout bounds each load. Zero means no timeout.
func WithLoadTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.loadTimeout = d
	}
}

// WithLoadHook registers fn to be called once per load that was not
// superseded, after its result was applied or rejected.
func WithLoadHook(fn func(LoadOutcome)) Option {
	return func(s *Store) {
		s.loadHook = fn
	}
}

type observer struct {
	id int64
	fn func(State)
}

// Store is the book catalog state container.
//
// All methods are safe for concurrent use. Observers registered with
// Subscribe run synchronously after each patch, one patch at a time and in
// patch order; they must not call mutating Store methods.
type Store struct {
	source      Source
	prefs       Preferences
	logger      *slog.Logger
	locale      language.Tag
	tokens      TokenGenerator
	storageKey  string
	loadTimeout time.Duration
	loadHook    func(LoadOutcome)

	clock *Clock

	// notifyMu serializes patch+notify so observers see patches in order.
	notifyMu sync.Mutex

	mu           sync.Mutex
	state        State
	latest       int64
	cancelLoad   context.CancelFunc
	observers    []observer
	nextObserver int64
	booksCache   []Book
	booksVersion int64
	closed       bool

	ctx    context.Context
	cancel context.CancelFunc
	loads  sync.WaitGroup
}

// New creates a Store and runs its initialization hook:
//  1. start one background load from source
//  2. restore the persisted sort preference, if any
//  3. register the observer that persists the sort preference on every patch
//
// Cancelling ctx cancels in-flight loads. Call Close when done.
func New(ctx context.Context, source Source, prefs Preferences, opts ...Option) (*Store, error) {
	if source == nil {
		return nil, errors.New("catalog: nil source")
	}
	if prefs == nil {
		return nil, errors.New("catalog: nil preferences")
	}

	s := &Store{
		source:       source,
		prefs:        prefs,
		logger:       slog.Default(),
		locale:       DefaultLocale,
		tokens:       UUIDv7Generator{},
		storageKey:   DefaultStorageKey,
		clock:        NewClock(),
		state:        initialState(),
		booksVersion: -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.LoadServerData()
	s.restoreSortPreference(ctx)
	s.Subscribe(s.persistSortPreference)

	return s, nil
}

// Close cancels in-flight loads, waits for them to return and detaches all
// observers. It is safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.loads.Wait()

	s.mu.Lock()
	s.observers = nil
	s.mu.Unlock()
	return nil
}

// Subscribe registers fn to receive the snapshot after every patch.
// The returned function removes the registration.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextObserver++
	id := s.nextObserver
	s.observers = append(s.observers, observer{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.observers = slices.DeleteFunc(s.observers, func(o observer) bool {
			return o.id == id
		})
	}
}

// patch applies update to a copy of the current state. If update returns an
// error nothing changes and no observer runs.
func (s *Store) patch(update func(st *State) error) (State, error) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	next := s.state
	if err := update(&next); err != nil {
		s.mu.Unlock()
		return State{}, err
	}
	next.Version = s.state.Version + 1
	s.state = next
	observers := slices.Clone(s.observers)
	s.mu.Unlock()

	for _, o := range observers {
		o.fn(next)
	}
	return next, nil
}

// State returns the current snapshot. Its Entities map must not be modified;
// use State.Clone for a mutable copy.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SortBy sets the active sort key.
func (s *Store) SortBy(key SortKey) error {
	if _, err := ParseSortKey(string(key)); err != nil {
		return err
	}
	_, err := s.patch(func(st *State) error {
		st.SortBy = key
		return nil
	})
	return err
}

// CurrentSort returns the active sort key.
func (s *Store) CurrentSort() SortKey {
	return s.State().SortBy
}

// Books returns all entities in the active order. The result is memoized per
// state version; callers receive their own copy.
func (s *Store) Books() []Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.booksVersion != s.state.Version {
		s.booksCache = SortedBooks(s.state, s.locale)
		s.booksVersion = s.state.Version
	}
	return slices.Clone(s.booksCache)
}

// BooksTotal returns the number of entities.
func (s *Store) BooksTotal() int {
	return BooksTotal(s.State())
}

// EarliestYearPublished returns the minimum year, or NoEarliestYear when empty.
func (s *Store) EarliestYearPublished() int {
	return EarliestYearPublished(s.State())
}

// MostRecentYearPublished returns the maximum year, or NoMostRecentYear when empty.
func (s *Store) MostRecentYearPublished() int {
	return MostRecentYearPublished(s.State())
}

// AverageNumberOfPages returns the mean page count, or NaN when empty.
func (s *Store) AverageNumberOfPages() float64 {
	return AverageNumberOfPages(s.State())
}

// ByValues returns the selectable sort keys.
func (s *Store) ByValues() []SortKey {
	return ByValues()
}

// Stats returns all aggregate views of the current snapshot.
func (s *Store) Stats() Stats {
	return Summarize(s.State())
}
