package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/roach88/bookshelf/internal/catalog"
	"github.com/roach88/bookshelf/internal/store"
	"github.com/roach88/bookshelf/internal/testutil"
)

// Snapshot is the observable store state after one step.
// Year bounds and average are omitted for an empty catalog.
type Snapshot struct {
	Step       int      `json:"step"`
	Action     string   `json:"action"`
	SortBy     string   `json:"sort_by"`
	Order      []string `json:"order"`
	Total      int      `json:"total"`
	Earliest   *int     `json:"earliest,omitempty"`
	MostRecent *int     `json:"most_recent,omitempty"`
	Average    *float64 `json:"average,omitempty"`
	Selected   string   `json:"selected,omitempty"`
	Resolved   bool     `json:"resolved"`
}

// Result holds the trace of a scenario run and any failed expectations.
type Result struct {
	Trace    []Snapshot
	Failures []string
}

// Passed reports whether every expectation held.
func (r *Result) Passed() bool {
	return len(r.Failures) == 0
}

// switchSource serves whichever named catalog is current.
type switchSource struct {
	mu       sync.Mutex
	catalogs map[string][]catalog.Book
	current  string
}

func (s *switchSource) use(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = name
}

func (s *switchSource) FetchAll(ctx context.Context) ([]catalog.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.catalogs[s.current]), nil
}

type runner struct {
	scenario *Scenario
	source   *switchSource
	prefs    *store.Memory
	logger   *slog.Logger
	store    *catalog.Store
}

// Run executes scenario against a fresh store with in-memory preferences.
// Expectation mismatches are collected in Result.Failures; an error is
// returned only when the scenario cannot be executed.
func Run(scenario *Scenario) (*Result, error) {
	r := &runner{
		scenario: scenario,
		source:   &switchSource{catalogs: scenario.Catalogs, current: scenario.Initial},
		prefs:    store.NewMemory(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if err := r.open(); err != nil {
		return nil, err
	}
	defer func() { r.store.Close() }()

	result := &Result{Trace: []Snapshot{r.snapshot(0, "init")}}

	for i, step := range scenario.Steps {
		if err := r.apply(step); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Action(), err)
		}
		snap := r.snapshot(i+1, step.Action())
		result.Trace = append(result.Trace, snap)
		if step.Expect != nil {
			for _, f := range check(snap, *step.Expect) {
				result.Failures = append(result.Failures, fmt.Sprintf("step %d (%s): %s", i+1, step.Action(), f))
			}
		}
	}

	return result, nil
}

func (r *runner) open() error {
	st, err := catalog.New(context.Background(), r.source, r.prefs,
		catalog.WithLogger(r.logger),
		catalog.WithTokenGenerator(testutil.NewFixedTokenGenerator(r.scenario.Name)),
	)
	if err != nil {
		return err
	}
	st.Wait()
	r.store = st
	return nil
}

func (r *runner) apply(step Step) error {
	switch {
	case step.Load != "":
		r.source.use(step.Load)
		return r.store.Load(context.Background())
	case step.SortBy != "":
		return r.store.SortBy(catalog.SortKey(step.SortBy))
	case step.Select != "":
		r.store.Select(step.Select)
	case step.ClearSelection:
		r.store.ClearSelection()
	case step.Restart:
		if err := r.store.Close(); err != nil {
			return err
		}
		return r.open()
	}
	return nil
}

func (r *runner) snapshot(step int, action string) Snapshot {
	st := r.store
	books := st.Books()
	order := make([]string, 0, len(books))
	for _, b := range books {
		order = append(order, b.ID)
	}

	snap := Snapshot{
		Step:   step,
		Action: action,
		SortBy: string(st.CurrentSort()),
		Order:  order,
		Total:  st.BooksTotal(),
	}
	if snap.Total > 0 {
		earliest, latest := st.EarliestYearPublished(), st.MostRecentYearPublished()
		snap.Earliest, snap.MostRecent = &earliest, &latest
		if avg := st.AverageNumberOfPages(); !math.IsNaN(avg) {
			snap.Average = &avg
		}
	}
	if id, ok := st.SelectedBook(); ok {
		snap.Selected = id
		_, snap.Resolved = st.SelectedEntity()
	}
	return snap
}

// check compares snap against the set fields of want.
func check(snap Snapshot, want Expect) []string {
	var failures []string
	if want.Order != nil && !slices.Equal(want.Order, snap.Order) {
		failures = append(failures, fmt.Sprintf("order: want %v, got %v", want.Order, snap.Order))
	}
	if want.Total != nil && *want.Total != snap.Total {
		failures = append(failures, fmt.Sprintf("total: want %d, got %d", *want.Total, snap.Total))
	}
	if want.Earliest != nil && (snap.Earliest == nil || *want.Earliest != *snap.Earliest) {
		failures = append(failures, fmt.Sprintf("earliest: want %d, got %s", *want.Earliest, optional(snap.Earliest)))
	}
	if want.MostRecent != nil && (snap.MostRecent == nil || *want.MostRecent != *snap.MostRecent) {
		failures = append(failures, fmt.Sprintf("most_recent: want %d, got %s", *want.MostRecent, optional(snap.MostRecent)))
	}
	if want.Average != nil && (snap.Average == nil || math.Abs(*want.Average-*snap.Average) > 1e-9) {
		failures = append(failures, fmt.Sprintf("average: want %g, got %s", *want.Average, optional(snap.Average)))
	}
	if want.Selected != nil && *want.Selected != snap.Selected {
		failures = append(failures, fmt.Sprintf("selected: want %q, got %q", *want.Selected, snap.Selected))
	}
	if want.Resolved != nil && *want.Resolved != snap.Resolved {
		failures = append(failures, fmt.Sprintf("resolved: want %t, got %t", *want.Resolved, snap.Resolved))
	}
	if want.SortBy != "" && want.SortBy != snap.SortBy {
		failures = append(failures, fmt.Sprintf("sort_by: want %s, got %s", want.SortBy, snap.SortBy))
	}
	return failures
}

func optional[T any](v *T) string {
	if v == nil {
		return "none"
	}
	return fmt.Sprint(*v)
}
