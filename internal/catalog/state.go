package catalog

import "maps"

// State is an immutable snapshot of the store.
//
// Entities is shared between snapshots and must never be modified in place;
// a load replaces the whole map.
type State struct {
	Entities     map[string]Book
	SortBy       SortKey
	SelectedID   string
	HasSelection bool

	// Version increases by one on every applied patch.
	Version int64
}

// SortState is the persisted sort preference record.
type SortState struct {
	By SortKey `json:"by"`
}

func initialState() State {
	return State{
		Entities: map[string]Book{},
		SortBy:   DefaultSortKey,
	}
}

// Clone returns a copy of s whose Entities map may be modified freely.
func (s State) Clone() State {
	s.Entities = maps.Clone(s.Entities)
	return s
}

// indexBooks builds an entity map from a fetched list.
// Duplicate IDs collapse to the last occurrence.
func indexBooks(books []Book) map[string]Book {
	entities := make(map[string]Book, len(books))
	for _, b := range books {
		entities[b.ID] = b
	}
	return entities
}
