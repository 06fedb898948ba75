package catalog_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bookshelf/internal/catalog"
	"github.com/roach88/bookshelf/internal/source"
	"github.com/roach88/bookshelf/internal/store"
	"github.com/roach88/bookshelf/internal/testutil"
)

var (
	setA = []catalog.Book{
		{ID: "1", Title: "B", Author: "Zed", Year: 2001, Pages: 100},
		{ID: "2", Title: "A", Author: "Amy", Year: 1999, Pages: 200},
	}
	setB = []catalog.Book{
		{ID: "2", Title: "A", Author: "Amy", Year: 1999, Pages: 200},
		{ID: "3", Title: "C", Author: "Kim", Year: 2010, Pages: 50},
	}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestStore creates a store and waits for its initial load.
func newTestStore(t *testing.T, src catalog.Source, prefs catalog.Preferences, opts ...catalog.Option) *catalog.Store {
	t.Helper()
	base := []catalog.Option{
		catalog.WithLogger(discardLogger()),
		catalog.WithTokenGenerator(testutil.NewFixedTokenGenerator("")),
	}
	st, err := catalog.New(context.Background(), src, prefs, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	st.Wait()
	return st
}

// sequenceSource returns the given results in order, repeating the last one.
func sequenceSource(results ...func() ([]catalog.Book, error)) catalog.Source {
	var mu sync.Mutex
	n := 0
	return testutil.FuncSource(func(ctx context.Context) ([]catalog.Book, error) {
		mu.Lock()
		defer mu.Unlock()
		r := results[min(n, len(results)-1)]
		n++
		return r()
	})
}

func ok(books []catalog.Book) func() ([]catalog.Book, error) {
	return func() ([]catalog.Book, error) { return books, nil }
}

func fail(err error) func() ([]catalog.Book, error) {
	return func() ([]catalog.Book, error) { return nil, err }
}

func bookIDs(books []catalog.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.ID
	}
	return out
}

func TestNew_RejectsNilDependencies(t *testing.T) {
	_, err := catalog.New(context.Background(), nil, store.NewMemory())
	assert.Error(t, err)

	_, err = catalog.New(context.Background(), source.NewStaticSource(nil), nil)
	assert.Error(t, err)
}

func TestStore_InitialLoadAndViews(t *testing.T) {
	st := newTestStore(t, source.NewStaticSource(setA), store.NewMemory())

	assert.Equal(t, catalog.SortByTitle, st.CurrentSort())
	assert.Equal(t, []string{"2", "1"}, bookIDs(st.Books()))
	assert.Equal(t, 2, st.BooksTotal())
	assert.Equal(t, 1999, st.EarliestYearPublished())
	assert.Equal(t, 2001, st.MostRecentYearPublished())
	assert.Equal(t, 150.0, st.AverageNumberOfPages())
	assert.Equal(t, []catalog.SortKey{"title", "author", "year"}, st.ByValues())
}

func TestStore_EmptyCatalog(t *testing.T) {
	st := newTestStore(t, source.NewStaticSource(nil), store.NewMemory())

	assert.Empty(t, st.Books())
	assert.Equal(t, 0, st.BooksTotal())
	assert.True(t, math.IsNaN(st.AverageNumberOfPages()))
	assert.Equal(t, catalog.NoEarliestYear, st.EarliestYearPublished())
	assert.Equal(t, catalog.NoMostRecentYear, st.MostRecentYearPublished())
}

func TestStore_SortByReordersWithoutMutatingEntities(t *testing.T) {
	st := newTestStore(t, source.NewStaticSource(setA), store.NewMemory())
	before := st.State().Clone()

	require.NoError(t, st.SortBy(catalog.SortByYear))
	assert.Equal(t, []string{"2", "1"}, bookIDs(st.Books()))

	require.NoError(t, st.SortBy(catalog.SortByAuthor))
	assert.Equal(t, []string{"2", "1"}, bookIDs(st.Books()))

	require.NoError(t, st.SortBy(catalog.SortByTitle))
	assert.Equal(t, []string{"2", "1"}, bookIDs(st.Books()))

	assert.Equal(t, before.Entities, st.State().Entities)
}

func TestStore_SortByYearThenBack(t *testing.T) {
	books := []catalog.Book{
		{ID: "1", Title: "Alpha", Year: 2020},
		{ID: "2", Title: "Omega", Year: 1950},
	}
	st := newTestStore(t, source.NewStaticSource(books), store.NewMemory())

	assert.Equal(t, []string{"1", "2"}, bookIDs(st.Books()))
	require.NoError(t, st.SortBy(catalog.SortByYear))
	assert.Equal(t, []string{"2", "1"}, bookIDs(st.Books()))
	require.NoError(t, st.SortBy(catalog.SortByTitle))
	assert.Equal(t, []string{"1", "2"}, bookIDs(st.Books()))
}

func TestStore_SortByRejectsUnknownKey(t *testing.T) {
	st := newTestStore(t, source.NewStaticSource(setA), store.NewMemory())
	version := st.State().Version

	err := st.SortBy("pages")
	require.ErrorIs(t, err, catalog.ErrInvalidSortKey)
	assert.Equal(t, catalog.SortByTitle, st.CurrentSort())
	assert.Equal(t, version, st.State().Version)
}

func TestStore_BooksReturnsCopy(t *testing.T) {
	st := newTestStore(t, source.NewStaticSource(setA), store.NewMemory())

	books := st.Books()
	books[0].Title = "mutated"
	assert.Equal(t, "A", st.Books()[0].Title)
}

func TestStore_ReloadReplacesEntities(t *testing.T) {
	st := newTestStore(t, sequenceSource(ok(setA), ok(setB)), store.NewMemory())
	require.Len(t, st.State().Entities, 2)

	require.NoError(t, st.Load(context.Background()))

	entities := st.State().Entities
	assert.Len(t, entities, 2)
	assert.NotContains(t, entities, "1")
	assert.Equal(t, setB[0], entities["2"])
	assert.Equal(t, setB[1], entities["3"])
	assert.Equal(t, 2, st.BooksTotal())
}

func TestStore_FetchFailureLeavesStateUnchanged(t *testing.T) {
	boom := errors.New("service unavailable")
	st := newTestStore(t, sequenceSource(ok(setA), fail(boom)), store.NewMemory())
	before := st.State()

	err := st.Load(context.Background())

	var fetchErr *catalog.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "test-load-2", fetchErr.Token)
	assert.Equal(t, before.Version, st.State().Version)
	assert.Equal(t, before.Entities, st.State().Entities)
}

func TestStore_InitialLoadFailureIsAbsorbed(t *testing.T) {
	var mu sync.Mutex
	var outcomes []catalog.LoadOutcome
	hook := func(o catalog.LoadOutcome) {
		mu.Lock()
		defer mu.Unlock()
		outcomes = append(outcomes, o)
	}

	st := newTestStore(t, sequenceSource(fail(errors.New("offline"))), store.NewMemory(),
		catalog.WithLoadHook(hook))

	assert.Equal(t, 0, st.BooksTotal())
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, outcomes, 1)
	assert.Error(t, outcomes[0].Err)
	assert.Equal(t, int64(1), outcomes[0].Seq)
}

func TestStore_SwitchLatestDiscardsLateResult(t *testing.T) {
	src := testutil.NewGatedSource()
	src.IgnoreCancel = true

	var mu sync.Mutex
	var outcomes []catalog.LoadOutcome
	st, err := catalog.New(context.Background(), src, store.NewMemory(),
		catalog.WithLogger(discardLogger()),
		catalog.WithLoadHook(func(o catalog.LoadOutcome) {
			mu.Lock()
			defer mu.Unlock()
			outcomes = append(outcomes, o)
		}))
	require.NoError(t, err)
	defer st.Close()

	first := src.Next(t)

	errc := make(chan error, 1)
	go func() { errc <- st.Load(context.Background()) }()
	second := src.Next(t)

	// The newer load finishes first and is applied.
	second.Respond(setB, nil)
	require.NoError(t, <-errc)
	assert.Equal(t, []string{"2", "3"}, bookIDs(st.Books()))

	// The superseded load answers late and must not win.
	first.Respond(setA, nil)
	st.Wait()
	assert.Equal(t, []string{"2", "3"}, bookIDs(st.Books()))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, outcomes, 1)
	assert.Equal(t, int64(2), outcomes[0].Seq)
	assert.NoError(t, outcomes[0].Err)
}

func TestStore_SwitchLatestCancelsPreviousFetch(t *testing.T) {
	src := testutil.NewGatedSource()
	st, err := catalog.New(context.Background(), src, store.NewMemory(), catalog.WithLogger(discardLogger()))
	require.NoError(t, err)
	defer st.Close()

	first := src.Next(t)

	errc := make(chan error, 1)
	go func() { errc <- st.Load(context.Background()) }()
	second := src.Next(t)

	assert.ErrorIs(t, first.Ctx.Err(), context.Canceled)
	assert.NoError(t, second.Ctx.Err())

	second.Respond(setA, nil)
	require.NoError(t, <-errc)
	st.Wait()
	assert.Equal(t, 2, st.BooksTotal())
}

func TestStore_SupersededLoadReturnsErrSuperseded(t *testing.T) {
	src := testutil.NewGatedSource()
	src.IgnoreCancel = true
	st, err := catalog.New(context.Background(), src, store.NewMemory(), catalog.WithLogger(discardLogger()))
	require.NoError(t, err)
	defer st.Close()

	initial := src.Next(t)
	initial.Respond(nil, nil)
	st.Wait()

	older := make(chan error, 1)
	go func() { older <- st.Load(context.Background()) }()
	olderCall := src.Next(t)

	newer := make(chan error, 1)
	go func() { newer <- st.Load(context.Background()) }()
	newerCall := src.Next(t)

	olderCall.Respond(setA, nil)
	err = <-older
	assert.ErrorIs(t, err, catalog.ErrSuperseded)
	assert.True(t, catalog.IsSuperseded(err))

	newerCall.Respond(setB, nil)
	require.NoError(t, <-newer)
	assert.Equal(t, []string{"2", "3"}, bookIDs(st.Books()))
}

func TestStore_PersistenceRoundTrip(t *testing.T) {
	prefs := store.NewMemory()
	src := source.NewStaticSource(setA)

	first := newTestStore(t, src, prefs)
	require.NoError(t, first.SortBy(catalog.SortByYear))
	require.NoError(t, first.Close())

	raw, found, err := prefs.Get(context.Background(), catalog.DefaultStorageKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"by":"year"}`, raw)

	second := newTestStore(t, src, prefs)
	assert.Equal(t, catalog.SortByYear, second.CurrentSort())
}

func TestStore_PersistsOnEveryPatch(t *testing.T) {
	prefs := store.NewMemory()
	st := newTestStore(t, source.NewStaticSource(setA), prefs)
	writes := prefs.Writes()

	require.NoError(t, st.SortBy(catalog.SortByAuthor))
	st.Select("1")
	st.ClearSelection()

	assert.Equal(t, writes+3, prefs.Writes())
}

func TestStore_RestoreIgnoresMalformedRecords(t *testing.T) {
	tests := []struct {
		name   string
		stored string
	}{
		{name: "invalid json", stored: `{not json`},
		{name: "unknown key", stored: `{"by":"pages"}`},
		{name: "missing field", stored: `{}`},
		{name: "wrong type", stored: `{"by":3}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			prefs := store.NewMemory()
			require.NoError(t, prefs.Set(context.Background(), catalog.DefaultStorageKey, tc.stored))

			st := newTestStore(t, source.NewStaticSource(setA), prefs)
			assert.Equal(t, catalog.SortByTitle, st.CurrentSort())
		})
	}
}

func TestStore_RestoreOnlyAppliesSortKey(t *testing.T) {
	prefs := store.NewMemory()
	stored := `{"by":"author","selectedId":"2","entities":{"9":{"id":"9"}}}`
	require.NoError(t, prefs.Set(context.Background(), catalog.DefaultStorageKey, stored))

	st := newTestStore(t, source.NewStaticSource(setA), prefs)

	assert.Equal(t, catalog.SortByAuthor, st.CurrentSort())
	_, selected := st.SelectedBook()
	assert.False(t, selected)
	assert.NotContains(t, st.State().Entities, "9")
}

func TestStore_CustomStorageKey(t *testing.T) {
	prefs := store.NewMemory()
	st := newTestStore(t, source.NewStaticSource(setA), prefs, catalog.WithStorageKey("shelf.sort"))
	require.NoError(t, st.SortBy(catalog.SortByYear))

	_, found, err := prefs.Get(context.Background(), catalog.DefaultStorageKey)
	require.NoError(t, err)
	assert.False(t, found)

	raw, found, err := prefs.Get(context.Background(), "shelf.sort")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"by":"year"}`, raw)
}

func TestStore_WithSQLitePreferences(t *testing.T) {
	prefs, err := store.Open(t.TempDir() + "/prefs.db")
	require.NoError(t, err)
	defer prefs.Close()

	first := newTestStore(t, source.NewStaticSource(setA), prefs)
	require.NoError(t, first.SortBy(catalog.SortByAuthor))
	require.NoError(t, first.Close())

	second := newTestStore(t, source.NewStaticSource(setA), prefs)
	assert.Equal(t, catalog.SortByAuthor, second.CurrentSort())
}

func TestStore_Selection(t *testing.T) {
	st := newTestStore(t, sequenceSource(ok(setA), ok(setB)), store.NewMemory())

	_, selected := st.SelectedBook()
	assert.False(t, selected)

	st.Select("1")
	id, selected := st.SelectedBook()
	assert.True(t, selected)
	assert.Equal(t, "1", id)

	book, found := st.SelectedEntity()
	require.True(t, found)
	assert.Equal(t, "B", book.Title)

	// Reload without book 1 leaves the selection dangling.
	require.NoError(t, st.Load(context.Background()))
	id, selected = st.SelectedBook()
	assert.True(t, selected)
	assert.Equal(t, "1", id)
	_, found = st.SelectedEntity()
	assert.False(t, found)

	st.ClearSelection()
	_, selected = st.SelectedBook()
	assert.False(t, selected)
}

func TestStore_ObserversSeePatchesInOrder(t *testing.T) {
	st := newTestStore(t, source.NewStaticSource(setA), store.NewMemory())

	var seen []catalog.State
	unsubscribe := st.Subscribe(func(s catalog.State) {
		seen = append(seen, s)
	})

	require.NoError(t, st.SortBy(catalog.SortByYear))
	st.Select("2")
	unsubscribe()
	require.NoError(t, st.SortBy(catalog.SortByAuthor))

	require.Len(t, seen, 2)
	assert.Equal(t, catalog.SortByYear, seen[0].SortBy)
	assert.Equal(t, "2", seen[1].SelectedID)
	assert.Equal(t, seen[0].Version+1, seen[1].Version)
}

func TestStore_Stats(t *testing.T) {
	st := newTestStore(t, source.NewStaticSource(setA), store.NewMemory())

	stats := st.Stats()
	assert.Equal(t, 2, stats.BooksTotal)
	assert.Equal(t, 1999, stats.EarliestYearPublished)
	assert.Equal(t, 2001, stats.MostRecentYearPublished)
	assert.Equal(t, 150.0, stats.AverageNumberOfPages)
	assert.Equal(t, catalog.SortByTitle, stats.SortBy)
}

func TestStore_Close(t *testing.T) {
	src := testutil.NewGatedSource()
	st, err := catalog.New(context.Background(), src, store.NewMemory(), catalog.WithLogger(discardLogger()))
	require.NoError(t, err)

	call := src.Next(t)
	require.NoError(t, st.Close())
	assert.ErrorIs(t, call.Ctx.Err(), context.Canceled)

	assert.ErrorIs(t, st.Load(context.Background()), catalog.ErrClosed)
	assert.NoError(t, st.Close())
}
