package catalog

// Select marks id as the selected book. The id is not checked against the
// current entities; a later load may leave it dangling.
func (s *Store) Select(id string) {
	_, _ = s.patch(func(st *State) error {
		st.SelectedID = id
		st.HasSelection = true
		return nil
	})
}

// ClearSelection removes the current selection.
func (s *Store) ClearSelection() {
	_, _ = s.patch(func(st *State) error {
		st.SelectedID = ""
		st.HasSelection = false
		return nil
	})
}

// SelectedBook returns the selected identifier as stored, whether or not it
// still refers to an entity.
func (s *Store) SelectedBook() (string, bool) {
	st := s.State()
	return st.SelectedID, st.HasSelection
}

// SelectedEntity resolves the selection against the current entities.
// It reports false when nothing is selected or the selection dangles.
func (s *Store) SelectedEntity() (Book, bool) {
	st := s.State()
	if !st.HasSelection {
		return Book{}, false
	}
	b, ok := st.Entities[st.SelectedID]
	return b, ok
}
